package blocks

// Plane is a single channel of floating-point samples in row-major order.
type Plane struct {
	Pix    []float64
	Width  int
	Height int
}

// NewPlane allocates a zeroed plane.
func NewPlane(width, height int) Plane {
	return Plane{Pix: make([]float64, width*height), Width: width, Height: height}
}

// Clone returns an independent copy of the plane.
func (p Plane) Clone() Plane {
	pix := make([]float64, len(p.Pix))
	copy(pix, p.Pix)
	return Plane{Pix: pix, Width: p.Width, Height: p.Height}
}

// Position identifies the top-left corner of a block.
type Position struct {
	Row int
	Col int
}

// Positions enumerates up to count non-overlapping block coordinates in
// row-major scan order. If fewer than count blocks fit, all that fit are
// returned; callers handle the truncation. Only blocks whose far edge stays
// strictly inside the plane are used, so a trailing partial stripe is never
// touched.
func Positions(height, width, size, count int) []Position {
	if size <= 0 || count <= 0 || height <= size || width <= size {
		return nil
	}
	positions := make([]Position, 0, count)
	for r := 0; r+size < height; r += size {
		for c := 0; c+size < width; c += size {
			if len(positions) >= count {
				return positions
			}
			positions = append(positions, Position{Row: r, Col: c})
		}
	}
	return positions
}

// Batch holds len(positions) consecutive row-major blocks of edge size.
type Batch struct {
	Size int
	Data []float64
}

// Count returns the number of blocks in the batch.
func (b Batch) Count() int {
	if b.Size <= 0 {
		return 0
	}
	return len(b.Data) / (b.Size * b.Size)
}

// Coef returns the (row, col) value of block i.
func (b Batch) Coef(i, row, col int) float64 {
	return b.Data[i*b.Size*b.Size+row*b.Size+col]
}

// SetCoef writes the (row, col) value of block i.
func (b *Batch) SetCoef(i, row, col int, v float64) {
	b.Data[i*b.Size*b.Size+row*b.Size+col] = v
}

// Extract copies the blocks at the given positions out of the plane.
func Extract(p Plane, positions []Position, size int) Batch {
	data := make([]float64, len(positions)*size*size)
	for i, pos := range positions {
		dst := data[i*size*size:]
		for r := 0; r < size; r++ {
			src := p.Pix[(pos.Row+r)*p.Width+pos.Col:]
			copy(dst[r*size:r*size+size], src[:size])
		}
	}
	return Batch{Size: size, Data: data}
}

// Place writes the batch back into the plane at the given positions.
func Place(p Plane, b Batch, positions []Position) {
	size := b.Size
	for i, pos := range positions {
		src := b.Data[i*size*size:]
		for r := 0; r < size; r++ {
			dst := p.Pix[(pos.Row+r)*p.Width+pos.Col:]
			copy(dst[:size], src[r*size:r*size+size])
		}
	}
}
