package phash

import (
	"math/rand"
	"testing"

	"github.com/zsy-dream/aigcguard/internal/blocks"
)

// texturedPlane renders a seed-dependent 16×16 grid of flat cells, so
// different seeds produce genuinely different visual structure while the
// same seed at any resolution produces the same scene.
func texturedPlane(seed int64, width, height int) blocks.Plane {
	rng := rand.New(rand.NewSource(seed))
	var cells [16][16]float64
	for i := range cells {
		for j := range cells[i] {
			cells[i][j] = rng.Float64() * 255
		}
	}
	p := blocks.NewPlane(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p.Pix[y*width+x] = cells[y*16/height][x*16/width]
		}
	}
	return p
}

func TestHashFormat(t *testing.T) {
	h := FromPlane(texturedPlane(1, 256, 256))
	if len(h) != 16 {
		t.Fatalf("hash %q has length %d, want 16", h, len(h))
	}
}

func TestHashStableUnderResize(t *testing.T) {
	// The same scene at two resolutions should land close together.
	big := texturedPlane(2, 512, 512)
	small := texturedPlane(2, 128, 128)

	d, ok := Distance(FromPlane(big), FromPlane(small))
	if !ok {
		t.Fatal("distance not computable")
	}
	if d > DefaultThreshold {
		t.Fatalf("resized image distance %d, want <= %d", d, DefaultThreshold)
	}
}

func TestDifferentScenesAreFar(t *testing.T) {
	a := FromPlane(texturedPlane(3, 256, 256))
	b := FromPlane(texturedPlane(97, 256, 256))
	d, ok := Distance(a, b)
	if !ok {
		t.Fatal("distance not computable")
	}
	// Unrelated structure should sit near half the bits.
	if d <= DefaultThreshold {
		t.Fatalf("unrelated scenes distance %d, expected > %d", d, DefaultThreshold)
	}
}

func TestDistanceBadInput(t *testing.T) {
	if _, ok := Distance("", "ffffffffffffffff"); ok {
		t.Fatal("empty hash should not be comparable")
	}
	if _, ok := Distance("zzzz", "ffffffffffffffff"); ok {
		t.Fatal("unparseable hash should not be comparable")
	}
	if Within("zzzz", "ffffffffffffffff", 64) {
		t.Fatal("unparseable hash should never be within threshold")
	}
}

func TestDistanceIdentity(t *testing.T) {
	h := FromPlane(texturedPlane(5, 200, 150))
	d, ok := Distance(h, h)
	if !ok || d != 0 {
		t.Fatalf("self distance = %d ok=%v, want 0 true", d, ok)
	}
}
