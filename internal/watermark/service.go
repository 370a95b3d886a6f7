package watermark

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/zsy-dream/aigcguard/internal/blocks"
	"github.com/zsy-dream/aigcguard/internal/config"
	"github.com/zsy-dream/aigcguard/internal/corpus"
	"github.com/zsy-dream/aigcguard/internal/fingerprint"
	"github.com/zsy-dream/aigcguard/internal/imaging"
	"github.com/zsy-dream/aigcguard/internal/logging"
	"github.com/zsy-dream/aigcguard/internal/matching"
	"github.com/zsy-dream/aigcguard/internal/phash"
)

// ErrAlreadyMarked is returned when the quick pre-check finds an existing
// watermark and the caller did not force a re-embed.
var ErrAlreadyMarked = errors.New("image already carries a watermark")

// Source labels where a detection verdict came from.
type Source string

const (
	SourceCorpusMatch Source = "corpus_match"
	SourceSignalOnly  Source = "signal_only"
	SourceNone        Source = "none"
)

// The pre-check calls an image marked only when both readings agree:
// most quick hex chars are non-zero (rules out smooth content, which
// extracts as zeros) and the carrier coefficients hug the quantization
// lattice (rules out textured content, whose residual averages 0.5).
const (
	quickMarkChars   = 6
	quickResidualMax = 0.35
)

// Strength at or above this clears signal-only reporting even without a
// corpus hit.
const veryStrongStrength = 20

// EmbedOptions tunes a single embed call.
type EmbedOptions struct {
	// Force skips the duplicate-mark pre-check.
	Force bool
	// OwnerID, when set, registers the embedded fingerprint in the corpus.
	OwnerID  string
	AssetRef string
}

// EmbedResult reports a completed embed.
type EmbedResult struct {
	Output       []byte
	BitsEmbedded int
	PSNR         float64
	Record       *corpus.Record
}

// ExtractResult reports an adaptive extraction.
type ExtractResult struct {
	Fingerprint string
	Strength    int
	StepUsed    float64
	Weak        bool
}

// Detection is the full verdict for one suspect image.
type Detection struct {
	ID          string
	Fingerprint string
	Strength    int
	StepUsed    float64
	PHash       string
	Source      Source
	Candidates  []matching.Candidate
	OwnerNames  map[string]string
	ObservedAt  time.Time
}

// Best returns the leading candidate, or false when there is none.
func (d Detection) Best() (matching.Candidate, bool) {
	if len(d.Candidates) == 0 {
		return matching.Candidate{}, false
	}
	return d.Candidates[0], true
}

// Registry is the corpus surface the service writes through.
type Registry interface {
	Add(ctx context.Context, record corpus.Record) (corpus.Record, error)
}

// Service wires the fingerprint engine, corpus cache, and matcher into
// the embed/extract/detect operations.
type Service struct {
	cfg      *config.Config
	engine   *fingerprint.Engine
	registry Registry
	cache    *corpus.Cache
	matcher  *matching.Matcher
	deep     matching.DeepSearcher
	logger   *slog.Logger
	clock    func() time.Time
}

// NewService builds the orchestration service. registry and cache may be
// nil for extract-only callers; deep may be nil to disable deep search.
func NewService(cfg *config.Config, registry Registry, cache *corpus.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{
		cfg:      cfg,
		engine:   fingerprint.NewEngine(cfg.Watermark.BlockSize, cfg.Watermark.CoefRow, cfg.Watermark.CoefCol),
		registry: registry,
		cache:    cache,
		matcher:  matching.NewMatcher(cfg.Matching, logger),
		deep:     matching.NoopDeepSearcher{},
		logger:   logging.NewComponentLogger(logger, "watermark"),
		clock:    time.Now,
	}
}

// SetDeepSearcher installs an optional secondary lookup backend.
func (s *Service) SetDeepSearcher(deep matching.DeepSearcher) {
	if deep != nil {
		s.deep = deep
	}
}

// Engine exposes the fingerprint engine for the video sampler.
func (s *Service) Engine() *fingerprint.Engine { return s.engine }

// EmbedImage embeds the fingerprint into the image and re-encodes it as
// JPEG. Unless forced, an image that already carries a mark is refused.
func (s *Service) EmbedImage(ctx context.Context, data []byte, fp string, opts EmbedOptions) (EmbedResult, error) {
	fp, err := normalizeFingerprint(fp)
	if err != nil {
		return EmbedResult{}, err
	}

	pic, err := imaging.Decode(data)
	if err != nil {
		return EmbedResult{}, err
	}

	if !opts.Force {
		quick, residual := s.engine.QuickProbe(pic.Luma, s.cfg.Watermark.QIMStep)
		if fingerprint.Strength(quick) >= quickMarkChars && residual <= quickResidualMax {
			return EmbedResult{}, ErrAlreadyMarked
		}
	}

	marked, bits := s.engine.Embed(pic.Luma, fp, s.cfg.Watermark.QIMStep)
	if bits == 0 {
		return EmbedResult{}, fmt.Errorf("image %dx%d too small to carry a watermark", pic.Width, pic.Height)
	}

	output, err := pic.EncodeJPEG(marked, s.cfg.Watermark.JPEGQuality)
	if err != nil {
		return EmbedResult{}, fmt.Errorf("encode marked image: %w", err)
	}

	result := EmbedResult{
		Output:       output,
		BitsEmbedded: bits,
		PSNR:         imaging.PSNR(pic.Luma, marked),
	}

	if opts.OwnerID != "" && s.registry != nil {
		record, err := s.registry.Add(ctx, corpus.Record{
			Fingerprint: fp,
			PHash:       phash.FromPlane(marked),
			OwnerID:     opts.OwnerID,
			AssetRef:    opts.AssetRef,
		})
		if err != nil {
			return EmbedResult{}, fmt.Errorf("register fingerprint: %w", err)
		}
		if s.cache != nil {
			s.cache.Inject(record)
		}
		result.Record = &record
	}

	s.logger.Info("embedded watermark",
		logging.String(logging.FieldFingerprint, fp),
		logging.Int("bits", bits),
		logging.Float64("psnr", result.PSNR))
	return result, nil
}

// ExtractImage recovers the fingerprint from an image, trying the active
// quantization step first and falling back to the legacy ladder.
func (s *Service) ExtractImage(_ context.Context, data []byte) (ExtractResult, error) {
	pic, err := imaging.Decode(data)
	if err != nil {
		return ExtractResult{}, err
	}
	rec := s.recover(pic.Luma)
	return ExtractResult{
		Fingerprint: rec.Fingerprint,
		Strength:    rec.Strength,
		StepUsed:    rec.StepUsed,
		Weak:        rec.Strength < s.cfg.Watermark.MinStrength,
	}, nil
}

// DetectImage runs the full pipeline: adaptive extraction, perceptual
// hash, corpus prefilter, and candidate ranking.
func (s *Service) DetectImage(ctx context.Context, data []byte) (Detection, error) {
	pic, err := imaging.Decode(data)
	if err != nil {
		return Detection{}, err
	}
	return s.detectPlane(ctx, pic.Luma)
}

// DetectPlane runs detection on an already decoded luma plane. The video
// sampler calls this per sampled frame.
func (s *Service) DetectPlane(ctx context.Context, plane blocks.Plane) (Detection, error) {
	return s.detectPlane(ctx, plane)
}

func (s *Service) detectPlane(ctx context.Context, plane blocks.Plane) (Detection, error) {
	now := s.clock()
	detection := Detection{
		ID:         ulid.Make().String(),
		PHash:      phash.FromPlane(plane),
		Source:     SourceNone,
		ObservedAt: now,
	}

	rec := s.recover(plane)
	detection.Fingerprint = rec.Fingerprint
	detection.Strength = rec.Strength
	detection.StepUsed = rec.StepUsed

	if rec.Strength < s.cfg.Watermark.MinMarkStrength {
		s.logger.Debug("no meaningful signal",
			logging.String(logging.FieldDetectionID, detection.ID),
			logging.Int("strength", rec.Strength))
		return detection, nil
	}

	query := matching.Query{
		Fingerprint: rec.Fingerprint,
		PHash:       detection.PHash,
		ObservedAt:  now,
	}

	if s.cache != nil {
		records, err := s.cache.All(ctx)
		if err != nil {
			return Detection{}, fmt.Errorf("load corpus: %w", err)
		}
		detection.Candidates = s.matcher.Rank(query, s.prefilter(detection.PHash, records))
	}

	if len(detection.Candidates) == 0 && s.deep.Enabled() {
		found, err := s.deep.Search(ctx, query)
		if err != nil {
			s.logger.Warn("deep search failed", logging.Error(err))
		} else {
			detection.Candidates = found
		}
	}

	if best, ok := detection.Best(); ok && best.Confirmed {
		detection.Source = SourceCorpusMatch
		detection.OwnerNames = s.resolveOwners(ctx, detection.Candidates)
	} else if rec.Strength >= veryStrongStrength {
		detection.Source = SourceSignalOnly
	}

	s.logger.Info("detection complete",
		logging.String(logging.FieldDetectionID, detection.ID),
		logging.Int("strength", rec.Strength),
		logging.Int("candidates", len(detection.Candidates)),
		logging.String("source", string(detection.Source)))
	return detection, nil
}

// prefilter drops corpus records whose perceptual hash is far from the
// query before the expensive bit comparison. Records without a stored
// hash always pass.
func (s *Service) prefilter(queryHash string, records []corpus.Record) []corpus.Record {
	if queryHash == "" {
		return records
	}
	kept := make([]corpus.Record, 0, len(records))
	for _, rec := range records {
		if rec.PHash == "" || phash.Within(queryHash, rec.PHash, s.cfg.Prefilter.HashThreshold) {
			kept = append(kept, rec)
		}
	}
	return kept
}

func (s *Service) resolveOwners(ctx context.Context, candidates []matching.Candidate) map[string]string {
	if s.cache == nil || len(candidates) == 0 {
		return nil
	}
	ids := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if id := c.Record.OwnerID; id != "" && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	names, err := s.cache.Profiles(ctx, ids)
	if err != nil {
		s.logger.Warn("profile lookup failed", logging.Error(err))
		return nil
	}
	return names
}

func (s *Service) recover(plane blocks.Plane) fingerprint.Recovery {
	return s.engine.Recover(plane,
		fingerprint.FingerprintBits,
		s.cfg.Watermark.QIMStep,
		s.cfg.Watermark.LegacySteps,
		s.cfg.Watermark.MinStrength)
}

func normalizeFingerprint(fp string) (string, error) {
	fp = strings.ToLower(strings.TrimSpace(fp))
	if fp == "" {
		return "", errors.New("fingerprint cannot be empty")
	}
	for i := 0; i < len(fp); i++ {
		c := fp[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("fingerprint contains non-hex character %q", c)
		}
	}
	return fp, nil
}
