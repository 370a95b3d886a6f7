package matching

import (
	"strings"
	"testing"
	"time"

	"github.com/zsy-dream/aigcguard/internal/config"
	"github.com/zsy-dream/aigcguard/internal/corpus"
)

func newTestMatcher() *Matcher {
	return NewMatcher(config.Default().Matching, nil)
}

// flipChars corrupts n hex characters of fp, each flip disturbing four
// fingerprint bits.
func flipChars(fp string, n int) string {
	out := []byte(fp)
	for i := 0; i < n && i < len(out); i++ {
		if out[i] == 'f' {
			out[i] = '0'
		} else {
			out[i] = 'f'
		}
	}
	return string(out)
}

func TestRankExactMatch(t *testing.T) {
	m := newTestMatcher()
	fp := strings.Repeat("a7", 32)

	ranked := m.Rank(Query{Fingerprint: fp}, []corpus.Record{
		{ID: "hit", Fingerprint: fp},
	})
	if len(ranked) != 1 {
		t.Fatalf("got %d candidates, want 1", len(ranked))
	}
	c := ranked[0]
	if c.Similarity != 1.0 {
		t.Fatalf("similarity = %v, want 1.0", c.Similarity)
	}
	if !c.Confirmed || !c.Verified {
		t.Fatal("exact match should be confirmed and verified")
	}
	if c.Tier != TierHigh {
		t.Fatalf("tier = %s, want HIGH", c.Tier)
	}
	if c.HashDistance != -1 {
		t.Fatalf("hash distance = %d without hashes, want -1", c.HashDistance)
	}
}

func TestRankDropsBelowFloor(t *testing.T) {
	m := newTestMatcher()

	ranked := m.Rank(Query{Fingerprint: strings.Repeat("f", 64)}, []corpus.Record{
		{ID: "opposite", Fingerprint: strings.Repeat("0", 64)},
	})
	if len(ranked) != 0 {
		t.Fatalf("all-zero reference scored %d candidates, want 0", len(ranked))
	}
}

func TestRankBonusRescuesWeakSimilarity(t *testing.T) {
	m := newTestMatcher()
	queryHash := "00000000000000ff"

	// Zero bit similarity, but an identical perceptual hash contributes
	// the full bonus and lifts the combined score to the floor.
	ranked := m.Rank(
		Query{Fingerprint: strings.Repeat("f", 64), PHash: queryHash},
		[]corpus.Record{{ID: "visual-twin", Fingerprint: strings.Repeat("0", 64), PHash: queryHash}},
	)
	if len(ranked) != 1 {
		t.Fatalf("got %d candidates, want the bonus-rescued record", len(ranked))
	}
	c := ranked[0]
	if c.Score != m.cfg.HashBonusWeight {
		t.Fatalf("score = %v, want full hash bonus %v", c.Score, m.cfg.HashBonusWeight)
	}
	if c.Confirmed || c.Tier != TierLow {
		t.Fatalf("rescued candidate should stay low confidence, got confirmed=%v tier=%s", c.Confirmed, c.Tier)
	}
}

func TestRankDegradedCopyStillConfirmed(t *testing.T) {
	m := newTestMatcher()
	fp := strings.Repeat("b3", 32)

	// Corrupt a quarter of the hex chars; at most 64 of 256 bits differ,
	// leaving similarity at or above 0.75.
	degraded := flipChars(fp, 16)
	c, ok := m.Best(Query{Fingerprint: degraded}, []corpus.Record{{ID: "orig", Fingerprint: fp}})
	if !ok {
		t.Fatal("expected a candidate")
	}
	if c.Similarity < 0.75 {
		t.Fatalf("similarity = %v, want >= 0.75", c.Similarity)
	}
	if !c.Confirmed {
		t.Fatal("degraded copy should still clear the confirmation threshold")
	}
}

func TestRankConfirmedButNotVerified(t *testing.T) {
	m := newTestMatcher()
	fp := strings.Repeat("b3", 32)

	// Corrupting half the hex chars flips 48 of 256 bits here, landing
	// similarity at 0.8125: above the confirmation floor, below verified.
	battered := flipChars(fp, 32)
	c, ok := m.Best(Query{Fingerprint: battered}, []corpus.Record{{ID: "orig", Fingerprint: fp}})
	if !ok {
		t.Fatal("expected a candidate")
	}
	if !c.Confirmed {
		t.Fatalf("similarity %v should confirm", c.Similarity)
	}
	if c.Verified {
		t.Fatalf("similarity %v should not verify", c.Similarity)
	}
}

func TestRankHashBonusBreaksTie(t *testing.T) {
	m := newTestMatcher()
	fp := strings.Repeat("c5", 32)
	queryHash := "0000000000000000"

	ranked := m.Rank(
		Query{Fingerprint: fp, PHash: queryHash},
		[]corpus.Record{
			{ID: "far-hash", Fingerprint: fp, PHash: "ffffffffffffffff"},
			{ID: "near-hash", Fingerprint: fp, PHash: "0000000000000003"},
		},
	)
	if len(ranked) != 2 {
		t.Fatalf("got %d candidates, want 2", len(ranked))
	}
	if ranked[0].Record.ID != "near-hash" {
		t.Fatalf("expected hash-adjacent record first, got %q", ranked[0].Record.ID)
	}
	if ranked[0].HashDistance != 2 {
		t.Fatalf("hash distance = %d, want 2", ranked[0].HashDistance)
	}
	if ranked[0].Score <= ranked[1].Score {
		t.Fatalf("bonus did not separate scores: %v vs %v", ranked[0].Score, ranked[1].Score)
	}
}

func TestRankTemporalBonus(t *testing.T) {
	m := newTestMatcher()
	fp := strings.Repeat("d9", 32)
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	ranked := m.Rank(
		Query{Fingerprint: fp, ObservedAt: now},
		[]corpus.Record{
			{ID: "old", Fingerprint: fp, CreatedAt: now.Add(-2 * time.Hour)},
			{ID: "recent", Fingerprint: fp, CreatedAt: now.Add(-90 * time.Second)},
		},
	)
	if ranked[0].Record.ID != "recent" {
		t.Fatalf("expected recent record first, got %q", ranked[0].Record.ID)
	}
	if diff := ranked[0].Score - ranked[1].Score; diff != m.cfg.TemporalBonus {
		t.Fatalf("score gap = %v, want temporal bonus %v", diff, m.cfg.TemporalBonus)
	}
}

func TestRankTopK(t *testing.T) {
	cfg := config.Default().Matching
	cfg.TopK = 3
	m := NewMatcher(cfg, nil)
	fp := strings.Repeat("e1", 32)

	records := make([]corpus.Record, 8)
	for i := range records {
		records[i] = corpus.Record{ID: string(rune('a' + i)), Fingerprint: fp}
	}
	ranked := m.Rank(Query{Fingerprint: fp}, records)
	if len(ranked) != 3 {
		t.Fatalf("got %d candidates, want top 3", len(ranked))
	}
}

func TestBestEmptyInputs(t *testing.T) {
	m := newTestMatcher()
	if _, ok := m.Best(Query{}, []corpus.Record{{ID: "x", Fingerprint: "ffff"}}); ok {
		t.Fatal("empty query fingerprint should yield no match")
	}
	if _, ok := m.Best(Query{Fingerprint: strings.Repeat("f", 64)}, nil); ok {
		t.Fatal("empty corpus should yield no match")
	}
}

func TestTiers(t *testing.T) {
	cases := []struct {
		score float64
		want  Tier
	}{
		{100, TierHigh},
		{86, TierHigh},
		{85, TierMedium},
		{71, TierMedium},
		{70, TierLow},
		{30, TierLow},
	}
	for _, tc := range cases {
		if got := tierFor(tc.score); got != tc.want {
			t.Fatalf("tierFor(%v) = %s, want %s", tc.score, got, tc.want)
		}
	}
}
