package dct

import "math"

// Kernel holds the orthogonal DCT-II basis for n×n blocks and its transpose.
// Because the basis is orthogonal, the transpose is the exact inverse and
// forward/inverse round-trips are lossless up to floating-point precision.
type Kernel struct {
	n      int
	basis  []float64 // n*n, row-major
	basisT []float64
}

// NewKernel builds the transform basis for n×n blocks. The basis matches the
// standard DCT-II normalization: row 0 is 1/sqrt(n), remaining rows are
// sqrt(2/n)*cos(pi*k*(2i+1)/(2n)).
func NewKernel(n int) *Kernel {
	basis := make([]float64, n*n)
	basisT := make([]float64, n*n)
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			var v float64
			if k == 0 {
				v = 1.0 / math.Sqrt(float64(n))
			} else {
				v = math.Sqrt(2.0/float64(n)) * math.Cos(math.Pi*float64(k)*float64(2*i+1)/float64(2*n))
			}
			basis[k*n+i] = v
			basisT[i*n+k] = v
		}
	}
	return &Kernel{n: n, basis: basis, basisT: basisT}
}

// Size returns the block edge length the kernel was built for.
func (k *Kernel) Size() int { return k.n }

// ForwardBatch replaces each n×n block in data with its transform
// coefficients. Data holds count consecutive row-major blocks.
func (k *Kernel) ForwardBatch(data []float64, count int) {
	k.applyBatch(data, count, k.basis, k.basisT)
}

// InverseBatch replaces each coefficient block in data with its spatial
// samples.
func (k *Kernel) InverseBatch(data []float64, count int) {
	k.applyBatch(data, count, k.basisT, k.basis)
}

// applyBatch computes left * block * right for every block in the stacked
// batch, reusing one scratch buffer across blocks.
func (k *Kernel) applyBatch(data []float64, count int, left, right []float64) {
	n := k.n
	if count <= 0 || len(data) < count*n*n {
		return
	}
	tmp := make([]float64, n*n)
	for b := 0; b < count; b++ {
		block := data[b*n*n : (b+1)*n*n]

		// tmp = left * block
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				var sum float64
				for i := 0; i < n; i++ {
					sum += left[r*n+i] * block[i*n+c]
				}
				tmp[r*n+c] = sum
			}
		}
		// block = tmp * right
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				var sum float64
				for i := 0; i < n; i++ {
					sum += tmp[r*n+i] * right[i*n+c]
				}
				block[r*n+c] = sum
			}
		}
	}
}
