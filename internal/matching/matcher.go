package matching

import (
	"log/slog"
	"sort"
	"time"

	"github.com/zsy-dream/aigcguard/internal/config"
	"github.com/zsy-dream/aigcguard/internal/corpus"
	"github.com/zsy-dream/aigcguard/internal/fingerprint"
	"github.com/zsy-dream/aigcguard/internal/logging"
	"github.com/zsy-dream/aigcguard/internal/phash"
)

// Tier buckets a candidate score for reporting.
type Tier string

const (
	TierHigh   Tier = "HIGH"
	TierMedium Tier = "MEDIUM"
	TierLow    Tier = "LOW"
)

// Query carries the signals extracted from suspect media.
type Query struct {
	Fingerprint string
	PHash       string
	ObservedAt  time.Time
}

// verifiedSimilarity is the bit similarity at which a match is beyond
// coincidence for 256-bit fingerprints, independent of score bonuses.
const verifiedSimilarity = 0.85

// Candidate is one corpus record scored against a query.
type Candidate struct {
	Record       corpus.Record
	Similarity   float64
	Score        float64
	HashDistance int // -1 when either hash is missing or unparseable
	Confirmed    bool
	Verified     bool
	Tier         Tier
}

// Matcher scores and ranks corpus records against extracted fingerprints.
type Matcher struct {
	cfg    config.Matching
	logger *slog.Logger
}

// NewMatcher builds a Matcher with the given scoring weights.
func NewMatcher(cfg config.Matching, logger *slog.Logger) *Matcher {
	return &Matcher{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, "matcher"),
	}
}

// Rank scores every record against the query and returns the top
// candidates, best first. Records whose combined score falls below the
// candidate floor are dropped, so a weak bit similarity can still be
// rescued by the hash and temporal bonuses.
func (m *Matcher) Rank(query Query, records []corpus.Record) []Candidate {
	if query.Fingerprint == "" || len(records) == 0 {
		return nil
	}

	floor := m.cfg.CandidateFloor * 100
	candidates := make([]Candidate, 0, len(records))
	for _, rec := range records {
		sim := fingerprint.Similarity(query.Fingerprint, rec.Fingerprint)
		candidate := m.score(query, rec, sim)
		if candidate.Score < floor {
			continue
		}
		candidates = append(candidates, candidate)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if m.cfg.TopK > 0 && len(candidates) > m.cfg.TopK {
		candidates = candidates[:m.cfg.TopK]
	}

	if len(candidates) > 0 {
		m.logger.Debug("ranked candidates",
			logging.Int("considered", len(records)),
			logging.Int("kept", len(candidates)),
			logging.Float64("best_score", candidates[0].Score))
	}
	return candidates
}

// Best returns the highest scoring candidate, or false when nothing
// cleared the floor.
func (m *Matcher) Best(query Query, records []corpus.Record) (Candidate, bool) {
	ranked := m.Rank(query, records)
	if len(ranked) == 0 {
		return Candidate{}, false
	}
	return ranked[0], true
}

func (m *Matcher) score(query Query, rec corpus.Record, sim float64) Candidate {
	score := sim * 100

	hashDistance := -1
	if query.PHash != "" && rec.PHash != "" {
		if d, ok := phash.Distance(query.PHash, rec.PHash); ok {
			hashDistance = d
			if d < m.cfg.HashBonusThreshold {
				score += (1 - float64(d)/float64(m.cfg.HashBonusThreshold)) * m.cfg.HashBonusWeight
			}
		}
	}

	if !query.ObservedAt.IsZero() && !rec.CreatedAt.IsZero() {
		window := time.Duration(m.cfg.TemporalWindowSeconds) * time.Second
		gap := query.ObservedAt.Sub(rec.CreatedAt)
		if gap < 0 {
			gap = -gap
		}
		if gap <= window {
			score += m.cfg.TemporalBonus
		}
	}

	return Candidate{
		Record:       rec,
		Similarity:   sim,
		Score:        score,
		HashDistance: hashDistance,
		Confirmed:    sim >= m.cfg.MinSimilarity,
		Verified:     sim >= verifiedSimilarity,
		Tier:         tierFor(score),
	}
}

func tierFor(score float64) Tier {
	switch {
	case score > 85:
		return TierHigh
	case score > 70:
		return TierMedium
	default:
		return TierLow
	}
}
