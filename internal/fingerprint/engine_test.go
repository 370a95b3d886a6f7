package fingerprint

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/zsy-dream/aigcguard/internal/blocks"
)

// gradientPlane builds a smooth luma ramp: mid-frequency coefficients are
// near zero, so an unmarked plane extracts as mostly zeros.
func gradientPlane(width, height int) blocks.Plane {
	p := blocks.NewPlane(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p.Pix[y*width+x] = 40 + 0.3*float64(x) + 0.2*float64(y)
		}
	}
	return p
}

func randomHex(rng *rand.Rand, n int) string {
	const digits = "0123456789abcdef"
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(digits[rng.Intn(16)])
	}
	return b.String()
}

// quantize simulates the uint8 round trip a saved image goes through.
func quantize(p blocks.Plane) blocks.Plane {
	out := p.Clone()
	for i, v := range out.Pix {
		r := math.Round(v)
		if r < 0 {
			r = 0
		}
		if r > 255 {
			r = 255
		}
		out.Pix[i] = r
	}
	return out
}

func TestEmbedExtractRoundTrip(t *testing.T) {
	engine := NewEngine(8, 2, 3)
	rng := rand.New(rand.NewSource(11))
	fp := randomHex(rng, 64)

	plane := gradientPlane(640, 480)
	marked, n := engine.Embed(plane, fp, 30.0)
	if n != FingerprintBits {
		t.Fatalf("embedded %d bits, want %d", n, FingerprintBits)
	}

	got := engine.Extract(marked, FingerprintBits, 30.0)
	if sim := Similarity(got, fp); sim < 0.99 {
		t.Fatalf("float-domain round trip similarity %v, want ~1", sim)
	}

	// Survives uint8 quantization: Q=30 tolerates ±7.5 of coefficient error.
	got = engine.Extract(quantize(marked), FingerprintBits, 30.0)
	if sim := Similarity(got, fp); sim < 0.85 {
		t.Fatalf("quantized round trip similarity %v, want >= 0.85", sim)
	}
}

func TestEmbedIsPure(t *testing.T) {
	engine := NewEngine(8, 2, 3)
	plane := gradientPlane(200, 200)
	snapshot := plane.Clone()

	engine.Embed(plane, "deadbeef", 30.0)
	for i := range plane.Pix {
		if plane.Pix[i] != snapshot.Pix[i] {
			t.Fatal("Embed mutated its input plane")
		}
	}
}

func TestEmbedTruncatesOnSmallPlane(t *testing.T) {
	engine := NewEngine(8, 2, 3)
	rng := rand.New(rand.NewSource(3))
	fp := randomHex(rng, 64)

	// 80x80 fits 9x9=81 blocks.
	plane := gradientPlane(80, 80)
	marked, n := engine.Embed(plane, fp, 30.0)
	if n != 81 {
		t.Fatalf("embedded %d bits, want 81", n)
	}

	got := engine.Extract(marked, FingerprintBits, 30.0)
	// 81 bits yields 20 full hex characters.
	if len(got) != 20 {
		t.Fatalf("extracted %d hex chars, want 20", len(got))
	}
	if sim := Similarity(got, fp); sim < 0.99 {
		t.Fatalf("truncated round trip similarity %v", sim)
	}
}

func TestEmbedTinyPlaneYieldsNothing(t *testing.T) {
	engine := NewEngine(8, 2, 3)
	plane := gradientPlane(8, 8)
	_, n := engine.Embed(plane, "deadbeef", 30.0)
	if n != 0 {
		t.Fatalf("embedded %d bits into a plane with no usable blocks", n)
	}
	if got := engine.Extract(plane, 32, 30.0); got != "" {
		t.Fatalf("extraction from tiny plane = %q, want empty", got)
	}
}

func TestUnmarkedPlaneHasWeakSignal(t *testing.T) {
	engine := NewEngine(8, 2, 3)
	plane := gradientPlane(640, 480)
	got := engine.Extract(plane, FingerprintBits, 30.0)
	if s := Strength(got); s >= 15 {
		t.Fatalf("unmarked plane extraction strength %d, want < 15 (%q)", s, got)
	}
}

func TestNoSignalBaselineSimilarity(t *testing.T) {
	// A textured unmarked plane against random references scores near
	// chance. Averaged over trials the similarity stays around 0.5.
	engine := NewEngine(8, 2, 3)
	rng := rand.New(rand.NewSource(29))
	plane := blocks.NewPlane(640, 480)
	for i := range plane.Pix {
		plane.Pix[i] = float64(rng.Intn(256))
	}
	extracted := engine.Extract(plane, FingerprintBits, 30.0)

	var total float64
	const trials = 20
	for i := 0; i < trials; i++ {
		total += Similarity(extracted, randomHex(rng, 64))
	}
	mean := total / trials
	if mean < 0.38 || mean > 0.62 {
		t.Fatalf("baseline mean similarity %v, want near 0.5", mean)
	}
}

func TestQuickExtractLength(t *testing.T) {
	engine := NewEngine(8, 2, 3)
	plane := gradientPlane(640, 480)
	marked, _ := engine.Embed(plane, "ffffffffffffffff", 30.0)
	got := engine.QuickExtract(marked, 30.0)
	if len(got) != QuickBits/4 {
		t.Fatalf("quick extract length %d, want %d", len(got), QuickBits/4)
	}
}

func TestQuickProbeSeparatesMarkedFromNatural(t *testing.T) {
	engine := NewEngine(8, 2, 3)
	rng := rand.New(rand.NewSource(7))
	fp := randomHex(rng, 64)

	marked, _ := engine.Embed(gradientPlane(640, 480), fp, 30.0)
	_, residual := engine.QuickProbe(quantize(marked), 30.0)
	if residual > 0.3 {
		t.Fatalf("marked plane residual %v, want near lattice", residual)
	}

	// Textured natural content extracts random-looking bits but sits
	// nowhere near the lattice.
	noisy := blocks.NewPlane(640, 480)
	for i := range noisy.Pix {
		noisy.Pix[i] = float64(rng.Intn(256))
	}
	_, residual = engine.QuickProbe(noisy, 30.0)
	if residual < 0.3 {
		t.Fatalf("natural plane residual %v, want well off the lattice", residual)
	}

	if _, residual := engine.QuickProbe(gradientPlane(8, 8), 30.0); residual != 1 {
		t.Fatalf("tiny plane residual %v, want sentinel 1", residual)
	}
}

func TestRecoverLegacyStep(t *testing.T) {
	engine := NewEngine(8, 2, 3)
	rng := rand.New(rand.NewSource(17))
	fp := randomHex(rng, 64)

	// Mark embedded by an older deployment at Q=8.
	plane := gradientPlane(640, 480)
	marked, _ := engine.Embed(plane, fp, 8.0)

	rec := engine.Recover(marked, FingerprintBits, 30.0, []float64{8.0}, 15)
	if rec.StepUsed != 8.0 {
		t.Fatalf("recovery used step %v, want 8", rec.StepUsed)
	}
	if sim := Similarity(rec.Fingerprint, fp); sim < 0.99 {
		t.Fatalf("legacy recovery similarity %v", sim)
	}
}

func TestRecoverPrefersPrimaryWhenStrong(t *testing.T) {
	engine := NewEngine(8, 2, 3)
	rng := rand.New(rand.NewSource(23))
	fp := randomHex(rng, 64)

	plane := gradientPlane(640, 480)
	marked, _ := engine.Embed(plane, fp, 30.0)

	rec := engine.Recover(marked, FingerprintBits, 30.0, []float64{8.0}, 15)
	if rec.StepUsed != 30.0 {
		t.Fatalf("recovery used step %v, want primary 30", rec.StepUsed)
	}
}

func TestRecoverNeverRegresses(t *testing.T) {
	engine := NewEngine(8, 2, 3)
	rng := rand.New(rand.NewSource(41))
	plane := blocks.NewPlane(320, 240)
	for i := range plane.Pix {
		plane.Pix[i] = float64(rng.Intn(256))
	}

	primaryOnly := Strength(engine.Extract(plane, FingerprintBits, 30.0))
	rec := engine.Recover(plane, FingerprintBits, 30.0, []float64{8.0}, 15)
	if rec.Strength < primaryOnly {
		t.Fatalf("adaptive recovery strength %d regressed below primary-only %d", rec.Strength, primaryOnly)
	}
}
