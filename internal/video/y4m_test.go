package video

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/zsy-dream/aigcguard/internal/testsupport"
)

func testFrame(seed int64, width, height int) Frame {
	frame := Frame{
		Luma: testsupport.NoisePlane(seed, width, height),
		Cb:   make([]byte, width*height/4),
		Cr:   make([]byte, width*height/4),
	}
	for i := range frame.Cb {
		frame.Cb[i] = 128
		frame.Cr[i] = 130
	}
	return frame
}

func TestStreamRoundTrip(t *testing.T) {
	header := Header{Width: 64, Height: 48, FrameNum: 25, FrameDen: 1, ChromaTag: "C420jpeg"}

	var buf bytes.Buffer
	writer, err := NewWriter(&buf, header)
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	for seed := int64(0); seed < 3; seed++ {
		if err := writer.WriteFrame(testFrame(seed, 64, 48)); err != nil {
			t.Fatalf("write frame %d: %v", seed, err)
		}
	}
	if err := writer.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	reader, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	got := reader.Header()
	if got.Width != 64 || got.Height != 48 {
		t.Fatalf("header %dx%d, want 64x48", got.Width, got.Height)
	}
	if got.FPS() != 25 {
		t.Fatalf("fps = %v, want 25", got.FPS())
	}

	for seed := int64(0); seed < 3; seed++ {
		frame, err := reader.ReadFrame()
		if err != nil {
			t.Fatalf("read frame %d: %v", seed, err)
		}
		want := testFrame(seed, 64, 48)
		for i := range frame.Luma.Pix {
			if frame.Luma.Pix[i] != want.Luma.Pix[i] {
				t.Fatalf("frame %d luma sample %d = %v, want %v", seed, i, frame.Luma.Pix[i], want.Luma.Pix[i])
			}
		}
		if !bytes.Equal(frame.Cb, want.Cb) || !bytes.Equal(frame.Cr, want.Cr) {
			t.Fatalf("frame %d chroma mismatch", seed)
		}
	}
	if _, err := reader.ReadFrame(); !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF after last frame, got %v", err)
	}
}

func TestReaderRejectsGarbage(t *testing.T) {
	cases := map[string]string{
		"not y4m":     "RIFF....",
		"no dims":     "YUV4MPEG2 F25:1\n",
		"bad rate":    "YUV4MPEG2 W64 H48 F25\n",
		"odd dims":    "YUV4MPEG2 W63 H48 F25:1\n",
		"4:4:4 input": "YUV4MPEG2 W64 H48 F25:1 C444\n",
	}
	for name, input := range cases {
		if _, err := NewReader(strings.NewReader(input)); err == nil {
			t.Fatalf("%s: expected header error", name)
		}
	}
}

func TestReaderTruncatedFrame(t *testing.T) {
	input := "YUV4MPEG2 W64 H48 F25:1 C420jpeg\nFRAME\nshort"
	reader, err := NewReader(strings.NewReader(input))
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	if _, err := reader.ReadFrame(); err == nil {
		t.Fatal("expected error for truncated frame payload")
	}
}

func TestWriterClampsLuma(t *testing.T) {
	frame := testFrame(1, 64, 48)
	frame.Luma.Pix[0] = -12
	frame.Luma.Pix[1] = 300

	var buf bytes.Buffer
	writer, err := NewWriter(&buf, Header{Width: 64, Height: 48, FrameNum: 1, FrameDen: 1, ChromaTag: "C420jpeg"})
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	if err := writer.WriteFrame(frame); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	if err := writer.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	reader, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	got, err := reader.ReadFrame()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if got.Luma.Pix[0] != 0 || got.Luma.Pix[1] != 255 {
		t.Fatalf("clamped samples = %v, %v; want 0, 255", got.Luma.Pix[0], got.Luma.Pix[1])
	}
}
