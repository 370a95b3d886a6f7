package phash

import (
	"fmt"
	"math/bits"
	"sort"
	"strconv"

	"github.com/zsy-dream/aigcguard/internal/blocks"
	"github.com/zsy-dream/aigcguard/internal/dct"
)

const (
	sampleSize = 32
	hashBand   = 8

	// DefaultThreshold is the Hamming distance (of 64 bits) at or below
	// which two hashes are considered visually related.
	DefaultThreshold = 15
)

var kernel = dct.NewKernel(sampleSize)

// FromPlane computes the perceptual hash of a luma plane and returns it as
// 16 lowercase hex characters. Planes smaller than the sample grid still
// hash; they are stretched by the area mapping.
func FromPlane(p blocks.Plane) string {
	if p.Width <= 0 || p.Height <= 0 || len(p.Pix) < p.Width*p.Height {
		return ""
	}

	small := resample(p)
	kernel.ForwardBatch(small, 1)

	// Collect the low-frequency band and threshold against its median.
	band := make([]float64, 0, hashBand*hashBand)
	for r := 0; r < hashBand; r++ {
		for c := 0; c < hashBand; c++ {
			band = append(band, small[r*sampleSize+c])
		}
	}
	sorted := make([]float64, len(band))
	copy(sorted, band)
	sort.Float64s(sorted)
	median := (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2

	var hash uint64
	for _, v := range band {
		hash <<= 1
		if v > median {
			hash |= 1
		}
	}
	return fmt.Sprintf("%016x", hash)
}

// resample area-averages the plane onto the fixed sample grid.
func resample(p blocks.Plane) []float64 {
	out := make([]float64, sampleSize*sampleSize)
	for gy := 0; gy < sampleSize; gy++ {
		y0 := gy * p.Height / sampleSize
		y1 := (gy + 1) * p.Height / sampleSize
		if y1 <= y0 {
			y1 = y0 + 1
		}
		for gx := 0; gx < sampleSize; gx++ {
			x0 := gx * p.Width / sampleSize
			x1 := (gx + 1) * p.Width / sampleSize
			if x1 <= x0 {
				x1 = x0 + 1
			}
			var sum float64
			for y := y0; y < y1 && y < p.Height; y++ {
				for x := x0; x < x1 && x < p.Width; x++ {
					sum += p.Pix[y*p.Width+x]
				}
			}
			out[gy*sampleSize+gx] = sum / float64((y1-y0)*(x1-x0))
		}
	}
	return out
}

// Distance returns the Hamming distance between two hex hashes. The second
// return is false when either hash is empty or unparseable; such pairs can
// never pass a threshold gate.
func Distance(a, b string) (int, bool) {
	if a == "" || b == "" {
		return 0, false
	}
	ua, err := strconv.ParseUint(a, 16, 64)
	if err != nil {
		return 0, false
	}
	ub, err := strconv.ParseUint(b, 16, 64)
	if err != nil {
		return 0, false
	}
	return bits.OnesCount64(ua ^ ub), true
}

// Within reports whether the two hashes are at or below the threshold
// distance. Unparseable inputs never match.
func Within(a, b string, threshold int) bool {
	d, ok := Distance(a, b)
	return ok && d <= threshold
}
