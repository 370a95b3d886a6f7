package video

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zsy-dream/aigcguard/internal/blocks"
)

// ErrInvalidStream is returned when the input is not a YUV4MPEG2 stream.
var ErrInvalidStream = errors.New("not a YUV4MPEG2 stream")

const streamMagic = "YUV4MPEG2"

// Header describes a YUV4MPEG2 stream. Only 4:2:0 chroma layouts are
// supported; the tag is preserved verbatim so rewritten streams keep the
// source's siting variant.
type Header struct {
	Width     int
	Height    int
	FrameNum  int
	FrameDen  int
	ChromaTag string
	Interlace string
	Aspect    string
}

// FPS returns the frame rate as a float, or 0 when the header carried none.
func (h Header) FPS() float64 {
	if h.FrameDen == 0 {
		return 0
	}
	return float64(h.FrameNum) / float64(h.FrameDen)
}

// Frame is one decoded 4:2:0 frame. Luma is lifted to the float plane the
// fingerprint engine works on; chroma stays as raw bytes since the mark
// never touches it.
type Frame struct {
	Luma blocks.Plane
	Cb   []byte
	Cr   []byte
}

// Reader decodes frames from a YUV4MPEG2 stream.
type Reader struct {
	r      *bufio.Reader
	header Header
}

// NewReader parses the stream header and prepares for frame reads.
func NewReader(r io.Reader) (*Reader, error) {
	br := bufio.NewReader(r)
	line, err := br.ReadString('\n')
	if err != nil {
		return nil, ErrInvalidStream
	}
	line = strings.TrimRight(line, "\n")

	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != streamMagic {
		return nil, ErrInvalidStream
	}

	header := Header{FrameNum: 25, FrameDen: 1, ChromaTag: "C420jpeg"}
	for _, field := range fields[1:] {
		if len(field) < 2 {
			continue
		}
		value := field[1:]
		switch field[0] {
		case 'W':
			header.Width, err = strconv.Atoi(value)
		case 'H':
			header.Height, err = strconv.Atoi(value)
		case 'F':
			num, den, ok := strings.Cut(value, ":")
			if !ok {
				return nil, fmt.Errorf("%w: malformed frame rate %q", ErrInvalidStream, value)
			}
			if header.FrameNum, err = strconv.Atoi(num); err == nil {
				header.FrameDen, err = strconv.Atoi(den)
			}
		case 'C':
			header.ChromaTag = field
		case 'I':
			header.Interlace = field
		case 'A':
			header.Aspect = field
		}
		if err != nil {
			return nil, fmt.Errorf("%w: bad header field %q", ErrInvalidStream, field)
		}
	}

	if header.Width <= 0 || header.Height <= 0 {
		return nil, fmt.Errorf("%w: missing dimensions", ErrInvalidStream)
	}
	if !strings.HasPrefix(header.ChromaTag, "C420") {
		return nil, fmt.Errorf("unsupported chroma layout %q, only 4:2:0 streams are handled", header.ChromaTag)
	}
	if header.Width%2 != 0 || header.Height%2 != 0 {
		return nil, fmt.Errorf("%w: odd dimensions %dx%d for 4:2:0", ErrInvalidStream, header.Width, header.Height)
	}

	return &Reader{r: br, header: header}, nil
}

// Header returns the parsed stream header.
func (r *Reader) Header() Header { return r.header }

// ReadFrame returns the next frame, or io.EOF at end of stream.
func (r *Reader) ReadFrame() (Frame, error) {
	line, err := r.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line == "" {
			return Frame{}, io.EOF
		}
		return Frame{}, fmt.Errorf("read frame marker: %w", err)
	}
	if !strings.HasPrefix(line, "FRAME") {
		return Frame{}, fmt.Errorf("%w: expected FRAME marker, got %q", ErrInvalidStream, strings.TrimSpace(line))
	}

	w, h := r.header.Width, r.header.Height
	raw := make([]byte, w*h)
	if _, err := io.ReadFull(r.r, raw); err != nil {
		return Frame{}, fmt.Errorf("read luma plane: %w", err)
	}

	frame := Frame{
		Luma: blocks.NewPlane(w, h),
		Cb:   make([]byte, w*h/4),
		Cr:   make([]byte, w*h/4),
	}
	for i, v := range raw {
		frame.Luma.Pix[i] = float64(v)
	}
	if _, err := io.ReadFull(r.r, frame.Cb); err != nil {
		return Frame{}, fmt.Errorf("read cb plane: %w", err)
	}
	if _, err := io.ReadFull(r.r, frame.Cr); err != nil {
		return Frame{}, fmt.Errorf("read cr plane: %w", err)
	}
	return frame, nil
}

// Writer encodes frames into a YUV4MPEG2 stream.
type Writer struct {
	w      *bufio.Writer
	header Header
}

// NewWriter writes the stream header and prepares for frame writes.
func NewWriter(w io.Writer, header Header) (*Writer, error) {
	bw := bufio.NewWriter(w)

	parts := []string{
		streamMagic,
		"W" + strconv.Itoa(header.Width),
		"H" + strconv.Itoa(header.Height),
		fmt.Sprintf("F%d:%d", header.FrameNum, header.FrameDen),
	}
	if header.Interlace != "" {
		parts = append(parts, header.Interlace)
	}
	if header.Aspect != "" {
		parts = append(parts, header.Aspect)
	}
	if header.ChromaTag != "" {
		parts = append(parts, header.ChromaTag)
	}
	if _, err := bw.WriteString(strings.Join(parts, " ") + "\n"); err != nil {
		return nil, fmt.Errorf("write stream header: %w", err)
	}
	return &Writer{w: bw, header: header}, nil
}

// WriteFrame appends one frame, clamping luma samples back to bytes.
func (w *Writer) WriteFrame(frame Frame) error {
	if _, err := w.w.WriteString("FRAME\n"); err != nil {
		return fmt.Errorf("write frame marker: %w", err)
	}
	raw := make([]byte, len(frame.Luma.Pix))
	for i, v := range frame.Luma.Pix {
		switch {
		case v < 0:
			raw[i] = 0
		case v > 255:
			raw[i] = 255
		default:
			raw[i] = byte(v + 0.5)
		}
	}
	if _, err := w.w.Write(raw); err != nil {
		return fmt.Errorf("write luma plane: %w", err)
	}
	if _, err := w.w.Write(frame.Cb); err != nil {
		return fmt.Errorf("write cb plane: %w", err)
	}
	if _, err := w.w.Write(frame.Cr); err != nil {
		return fmt.Errorf("write cr plane: %w", err)
	}
	return nil
}

// Flush drains buffered output. Call once after the last frame.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
