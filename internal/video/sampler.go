package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/zsy-dream/aigcguard/internal/config"
	"github.com/zsy-dream/aigcguard/internal/logging"
	"github.com/zsy-dream/aigcguard/internal/watermark"
)

// EmbedStats summarizes a video embed run.
type EmbedStats struct {
	FramesProcessed  int
	FramesMarked     int
	FPS              float64
	EffectiveSeconds float64
}

// DetectResult is the verdict for a video stream. FrameIndex and Offset
// locate the first frame that carried a usable mark; Found is false when
// the scan window ended without one.
type DetectResult struct {
	Found         bool
	Detection     watermark.Detection
	FrameIndex    int
	Offset        float64
	FramesScanned int
}

// Sampler embeds into and detects from Y4M streams by sampling frames at
// configured intervals.
type Sampler struct {
	cfg    *config.Config
	svc    *watermark.Service
	logger *slog.Logger
}

// NewSampler builds a sampler around the watermark service.
func NewSampler(cfg *config.Config, svc *watermark.Service, logger *slog.Logger) *Sampler {
	return &Sampler{
		cfg:    cfg,
		svc:    svc,
		logger: logging.NewComponentLogger(logger, "video"),
	}
}

// Embed copies the stream from in to out, marking one frame per embed
// interval. Every frame inside the processing window is rewritten, marked
// or not; processing stops after the configured maximum duration.
func (s *Sampler) Embed(ctx context.Context, in io.Reader, out io.Writer, fp string) (EmbedStats, error) {
	reader, err := NewReader(in)
	if err != nil {
		return EmbedStats{}, err
	}
	header := reader.Header()
	writer, err := NewWriter(out, header)
	if err != nil {
		return EmbedStats{}, err
	}

	fps := header.FPS()
	stride := frameStride(fps, s.cfg.Video.EmbedIntervalSeconds)
	engine := s.svc.Engine()
	q := s.cfg.Watermark.QIMStep
	maxFrames := frameWindow(fps, s.cfg.Video.MaxSeconds)

	stats := EmbedStats{FPS: fps}
	for index := 0; index < maxFrames; index++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		frame, err := reader.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return stats, err
		}

		if index%stride == 0 {
			marked, bits := engine.Embed(frame.Luma, fp, q)
			if bits > 0 {
				frame.Luma = marked
				stats.FramesMarked++
			}
		}
		if err := writer.WriteFrame(frame); err != nil {
			return stats, err
		}
		stats.FramesProcessed++
	}

	if err := writer.Flush(); err != nil {
		return stats, fmt.Errorf("flush output stream: %w", err)
	}
	if fps > 0 {
		stats.EffectiveSeconds = float64(stats.FramesProcessed) / fps
	}

	s.logger.Info("video embed complete",
		logging.Int("frames", stats.FramesProcessed),
		logging.Int("marked", stats.FramesMarked),
		logging.Float64("seconds", stats.EffectiveSeconds))
	return stats, nil
}

// Detect samples frames at the detect interval and runs full detection on
// each until one carries a meaningful mark. The first hit wins; scanning
// stops after the configured window even if the stream continues.
func (s *Sampler) Detect(ctx context.Context, in io.Reader) (DetectResult, error) {
	reader, err := NewReader(in)
	if err != nil {
		return DetectResult{}, err
	}
	header := reader.Header()
	fps := header.FPS()
	stride := frameStride(fps, s.cfg.Video.DetectIntervalSeconds)
	maxFrames := frameWindow(fps, s.cfg.Video.MaxSeconds)

	var result DetectResult
	for index := 0; index < maxFrames; index++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		frame, err := reader.ReadFrame()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, err
		}
		if index%stride != 0 {
			continue
		}

		result.FramesScanned++
		detection, err := s.svc.DetectPlane(ctx, frame.Luma)
		if err != nil {
			return result, err
		}
		if detection.Strength >= s.cfg.Watermark.MinMarkStrength {
			result.Found = true
			result.Detection = detection
			result.FrameIndex = index
			if fps > 0 {
				result.Offset = float64(index) / fps
			}
			s.logger.Info("video mark found",
				logging.String(logging.FieldDetectionID, detection.ID),
				logging.Int("frame", index),
				logging.Int("strength", detection.Strength))
			return result, nil
		}
	}

	s.logger.Info("video scan ended without a mark",
		logging.Int("frames_scanned", result.FramesScanned))
	return result, nil
}

// frameStride converts a sampling interval in seconds to a frame count,
// never below one.
func frameStride(fps, interval float64) int {
	stride := int(math.Round(fps * interval))
	if stride < 1 {
		stride = 1
	}
	return stride
}

// frameWindow converts the maximum processing duration to a frame cap.
// Both embed and detect stop there even if the stream continues.
func frameWindow(fps float64, maxSeconds int) int {
	if fps <= 0 || maxSeconds <= 0 {
		return math.MaxInt
	}
	return int(fps * float64(maxSeconds))
}
