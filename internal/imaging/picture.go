package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"math"

	"github.com/zsy-dream/aigcguard/internal/blocks"
)

// ErrInvalidMedia reports a buffer that could not be decoded as an image.
// It is fatal for the call; there is nothing to retry.
var ErrInvalidMedia = errors.New("media buffer cannot be decoded")

// Picture holds a decoded image split into a float64 luma plane and the
// untouched chroma planes.
type Picture struct {
	Luma   blocks.Plane
	cb     []uint8
	cr     []uint8
	Width  int
	Height int
	Format string
}

// Decode parses an encoded image buffer (JPEG or PNG) and splits it into
// luma and chroma.
func Decode(data []byte) (*Picture, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMedia, err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	pic := &Picture{
		Luma:   blocks.NewPlane(w, h),
		cb:     make([]uint8, w*h),
		cr:     make([]uint8, w*h),
		Width:  w,
		Height: h,
		Format: format,
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			yy, cb, cr := color.RGBToYCbCr(uint8(r>>8), uint8(g>>8), uint8(b>>8))
			idx := y*w + x
			pic.Luma.Pix[idx] = float64(yy)
			pic.cb[idx] = cb
			pic.cr[idx] = cr
		}
	}
	return pic, nil
}

// Compose recombines a (possibly modified) luma plane with the picture's
// original chroma. Luma samples are clamped to [0, 255].
func (p *Picture) Compose(luma blocks.Plane) *image.YCbCr {
	rect := image.Rect(0, 0, p.Width, p.Height)
	out := image.NewYCbCr(rect, image.YCbCrSubsampleRatio444)
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			idx := y*p.Width + x
			out.Y[y*out.YStride+x] = clampByte(luma.Pix[idx])
			out.Cb[y*out.CStride+x] = p.cb[idx]
			out.Cr[y*out.CStride+x] = p.cr[idx]
		}
	}
	return out
}

// EncodeJPEG recomposes the picture with the given luma plane and encodes
// it as JPEG at the given quality.
func (p *Picture) EncodeJPEG(luma blocks.Plane, quality int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		quality = 95
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, p.Compose(luma), &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func clampByte(v float64) uint8 {
	r := math.Round(v)
	if r < 0 {
		return 0
	}
	if r > 255 {
		return 255
	}
	return uint8(r)
}

// PSNR measures reconstruction fidelity between two equally sized planes in
// decibels. Identical planes report +Inf.
func PSNR(a, b blocks.Plane) float64 {
	if len(a.Pix) == 0 || len(a.Pix) != len(b.Pix) {
		return 0
	}
	var mse float64
	for i := range a.Pix {
		d := a.Pix[i] - b.Pix[i]
		mse += d * d
	}
	mse /= float64(len(a.Pix))
	if mse == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(255*255/mse)
}
