package fingerprint

import (
	"math"

	"github.com/zsy-dream/aigcguard/internal/blocks"
	"github.com/zsy-dream/aigcguard/internal/dct"
)

// QuickBits is the sample size used by QuickExtract pre-checks.
const QuickBits = 32

// Engine embeds and extracts fingerprints. Its fields are structural
// (block geometry and carrier coefficient) and immutable after
// construction; the quantization step is passed per call.
type Engine struct {
	kernel    *dct.Kernel
	blockSize int
	coefRow   int
	coefCol   int
}

// NewEngine builds an engine for the given block size and carrier
// coefficient position. The (2,3) coefficient of an 8×8 block is the
// conventional choice: high enough in frequency to stay invisible, low
// enough to survive re-encoding.
func NewEngine(blockSize, coefRow, coefCol int) *Engine {
	if blockSize <= 0 {
		blockSize = 8
	}
	if coefRow <= 0 && coefCol <= 0 {
		coefRow, coefCol = 2, 3
	}
	return &Engine{
		kernel:    dct.NewKernel(blockSize),
		blockSize: blockSize,
		coefRow:   coefRow,
		coefCol:   coefCol,
	}
}

// BlockSize returns the engine's block edge length.
func (e *Engine) BlockSize() int { return e.blockSize }

// Embed writes the fingerprint into a copy of the plane using
// quantization-index modulation at step q and returns the modified plane
// together with the number of bits actually embedded. When the plane has
// fewer blocks than fingerprint bits the payload is truncated, not
// rejected.
func (e *Engine) Embed(plane blocks.Plane, fingerprint string, q float64) (blocks.Plane, int) {
	out := plane.Clone()
	bits := bitsFromHex(fingerprint, FingerprintBits)

	positions := blocks.Positions(plane.Height, plane.Width, e.blockSize, len(bits))
	if len(positions) == 0 {
		return out, 0
	}
	bits = bits[:len(positions)]

	batch := blocks.Extract(out, positions, e.blockSize)
	e.kernel.ForwardBatch(batch.Data, batch.Count())

	// Bit b selects one of two lattices interleaved at q/2: coefficients
	// land on multiples of q for b=0 and on odd multiples of q/2 for b=1.
	half := q / 2
	for i, b := range bits {
		c := batch.Coef(i, e.coefRow, e.coefCol)
		base := math.Round(c/q) * q
		batch.SetCoef(i, e.coefRow, e.coefCol, base+float64(b)*half)
	}

	e.kernel.InverseBatch(batch.Data, batch.Count())
	blocks.Place(out, batch, positions)
	return out, len(bits)
}

// Extract blindly recovers up to length bits from the plane at step q and
// returns them as lowercase hex. No reference image is needed: the lattice
// the coefficient sits on encodes the bit. Fewer blocks than requested bits
// shortens the result.
func (e *Engine) Extract(plane blocks.Plane, length int, q float64) string {
	positions := blocks.Positions(plane.Height, plane.Width, e.blockSize, length)
	if len(positions) == 0 {
		return ""
	}

	batch := blocks.Extract(plane, positions, e.blockSize)
	e.kernel.ForwardBatch(batch.Data, batch.Count())

	half := q / 2
	binary := make([]byte, len(positions))
	for i := range positions {
		c := batch.Coef(i, e.coefRow, e.coefCol)
		if int64(math.Round(c/half))&1 == 1 {
			binary[i] = '1'
		} else {
			binary[i] = '0'
		}
	}
	return BinaryToHex(string(binary))
}

// QuickExtract samples only the first QuickBits bits, enough to decide
// whether an asset already carries a mark at a fraction of the full cost.
func (e *Engine) QuickExtract(plane blocks.Plane, q float64) string {
	return e.Extract(plane, QuickBits, q)
}

// QuickProbe samples the first QuickBits carrier coefficients and returns
// the extracted hex together with the mean lattice residual, normalized to
// [0, 1]. Marked coefficients sit on multiples of q/2, so their residual is
// near zero; unmarked textured content averages around 0.5 and smooth
// content extracts as all zeros. The two readings together separate marked
// images from both.
func (e *Engine) QuickProbe(plane blocks.Plane, q float64) (hex string, residual float64) {
	positions := blocks.Positions(plane.Height, plane.Width, e.blockSize, QuickBits)
	if len(positions) == 0 {
		return "", 1
	}

	batch := blocks.Extract(plane, positions, e.blockSize)
	e.kernel.ForwardBatch(batch.Data, batch.Count())

	half := q / 2
	binary := make([]byte, len(positions))
	total := 0.0
	for i := range positions {
		c := batch.Coef(i, e.coefRow, e.coefCol)
		nearest := math.Round(c / half)
		total += math.Abs(c-nearest*half) / (half / 2)
		if int64(nearest)&1 == 1 {
			binary[i] = '1'
		} else {
			binary[i] = '0'
		}
	}
	return BinaryToHex(string(binary)), total / float64(len(positions))
}
