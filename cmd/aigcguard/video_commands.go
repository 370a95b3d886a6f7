package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zsy-dream/aigcguard/internal/config"
	"github.com/zsy-dream/aigcguard/internal/video"
)

func newVideoCommand(ctx *commandContext) *cobra.Command {
	videoCmd := &cobra.Command{
		Use:   "video",
		Short: "Watermark operations on Y4M video streams",
	}
	videoCmd.AddCommand(newVideoEmbedCommand(ctx))
	videoCmd.AddCommand(newVideoDetectCommand(ctx))
	return videoCmd
}

func newVideoEmbedCommand(ctx *commandContext) *cobra.Command {
	var (
		outputPath string
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "embed <stream.y4m> <fingerprint>",
		Short: "Embed a fingerprint into a Y4M stream",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSampler(func(cfg *config.Config, sampler *video.Sampler) error {
				sourcePath, err := config.ExpandPath(args[0])
				if err != nil {
					return err
				}
				in, err := os.Open(sourcePath)
				if err != nil {
					return fmt.Errorf("open stream: %w", err)
				}
				defer in.Close()

				target := strings.TrimSpace(outputPath)
				if target == "" {
					base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
					target = filepath.Join(cfg.Paths.OutputDir, base+"_marked.y4m")
				} else if target, err = config.ExpandPath(target); err != nil {
					return err
				}
				out, err := os.Create(target)
				if err != nil {
					return fmt.Errorf("create output stream: %w", err)
				}
				defer out.Close()

				stats, err := sampler.Embed(cmd.Context(), in, out, args[1])
				if err != nil {
					return err
				}
				if err := out.Close(); err != nil {
					return fmt.Errorf("finalize output stream: %w", err)
				}

				if jsonOut {
					return writeJSON(cmd, map[string]any{
						"output":            target,
						"frames_processed":  stats.FramesProcessed,
						"frames_marked":     stats.FramesMarked,
						"fps":               stats.FPS,
						"effective_seconds": stats.EffectiveSeconds,
					})
				}

				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "Wrote %s\n", target)
				fmt.Fprintf(w, "Processed %d frames (%.2f s at %.2f fps), marked %d\n",
					stats.FramesProcessed, stats.EffectiveSeconds, stats.FPS, stats.FramesMarked)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination for the marked stream")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newVideoDetectCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "detect <stream.y4m>",
		Short: "Scan a Y4M stream for a watermark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withSampler(func(cfg *config.Config, sampler *video.Sampler) error {
				path, err := config.ExpandPath(args[0])
				if err != nil {
					return err
				}
				in, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open stream: %w", err)
				}
				defer in.Close()

				result, err := sampler.Detect(cmd.Context(), in)
				if err != nil {
					return err
				}

				if jsonOut {
					payload := map[string]any{
						"found":          result.Found,
						"frames_scanned": result.FramesScanned,
					}
					if result.Found {
						payload["frame_index"] = result.FrameIndex
						payload["offset_seconds"] = result.Offset
						payload["detection"] = detectionPayload(result.Detection)
					}
					return writeJSON(cmd, payload)
				}

				w := cmd.OutOrStdout()
				if !result.Found {
					fmt.Fprintf(w, "No watermark found in %d scanned frames\n", result.FramesScanned)
					return nil
				}
				fmt.Fprintf(w, "Watermark found at frame %d (%.2f s)\n", result.FrameIndex, result.Offset)
				printDetection(cmd, result.Detection)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	return cmd
}
