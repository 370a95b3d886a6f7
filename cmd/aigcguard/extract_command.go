package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zsy-dream/aigcguard/internal/config"
	"github.com/zsy-dream/aigcguard/internal/watermark"
)

func newExtractCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "extract <image>",
		Short: "Extract the embedded fingerprint from an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(cfg *config.Config, svc *watermark.Service) error {
				path, err := config.ExpandPath(args[0])
				if err != nil {
					return err
				}
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}

				result, err := svc.ExtractImage(cmd.Context(), data)
				if err != nil {
					return err
				}

				if jsonOut {
					return writeJSON(cmd, map[string]any{
						"fingerprint": result.Fingerprint,
						"strength":    result.Strength,
						"step_used":   result.StepUsed,
						"weak":        result.Weak,
					})
				}

				out := cmd.OutOrStdout()
				if result.Weak {
					fmt.Fprintf(out, "No watermark found (strength %d below threshold %d)\n",
						result.Strength, cfg.Watermark.MinStrength)
					return nil
				}
				fmt.Fprintf(out, "Fingerprint: %s\n", result.Fingerprint)
				fmt.Fprintf(out, "Strength:    %d\n", result.Strength)
				fmt.Fprintf(out, "Step used:   %g\n", result.StepUsed)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	return cmd
}
