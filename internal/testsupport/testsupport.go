// Package testsupport provides shared helpers for package tests:
// deterministic synthetic planes, encodable test images, and configs
// wired to per-test temp directories.
package testsupport

import (
	"bytes"
	"image"
	"image/jpeg"
	"math/rand"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zsy-dream/aigcguard/internal/blocks"
	"github.com/zsy-dream/aigcguard/internal/config"
)

// NewConfig produces a config seeded with unique temp directories per test.
func NewConfig(t testing.TB) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.OutputDir = filepath.Join(base, "outputs")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	return &cfg
}

// GradientPlane builds a smooth luma ramp. Mid-frequency coefficients are
// near zero, so an unmarked gradient extracts as silence.
func GradientPlane(width, height int) blocks.Plane {
	p := blocks.NewPlane(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p.Pix[y*width+x] = 40 + 0.3*float64(x) + 0.2*float64(y)
		}
	}
	return p
}

// NoisePlane builds seed-deterministic textured content.
func NoisePlane(seed int64, width, height int) blocks.Plane {
	rng := rand.New(rand.NewSource(seed))
	p := blocks.NewPlane(width, height)
	for i := range p.Pix {
		p.Pix[i] = float64(rng.Intn(256))
	}
	return p
}

// RandomHex returns n deterministic hex characters for the seed.
func RandomHex(seed int64, n int) string {
	rng := rand.New(rand.NewSource(seed))
	const digits = "0123456789abcdef"
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteByte(digits[rng.Intn(16)])
	}
	return b.String()
}

// JPEGFromPlane encodes a luma plane as a high quality grayscale JPEG,
// the shape image operations receive in tests.
func JPEGFromPlane(t testing.TB, p blocks.Plane, quality int) []byte {
	t.Helper()

	img := image.NewYCbCr(image.Rect(0, 0, p.Width, p.Height), image.YCbCrSubsampleRatio444)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			v := p.Pix[y*p.Width+x]
			if v < 0 {
				v = 0
			}
			if v > 255 {
				v = 255
			}
			img.Y[y*img.YStride+x] = uint8(v + 0.5)
			img.Cb[y*img.CStride+x] = 128
			img.Cr[y*img.CStride+x] = 128
		}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}
