package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zsy-dream/aigcguard/internal/config"
	"github.com/zsy-dream/aigcguard/internal/watermark"
)

func newEmbedCommand(ctx *commandContext) *cobra.Command {
	var (
		outputPath string
		ownerID    string
		assetRef   string
		force      bool
		jsonOut    bool
	)

	cmd := &cobra.Command{
		Use:   "embed <image> <fingerprint>",
		Short: "Embed a fingerprint into an image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withService(func(cfg *config.Config, svc *watermark.Service) error {
				sourcePath, err := config.ExpandPath(args[0])
				if err != nil {
					return err
				}
				data, err := os.ReadFile(sourcePath)
				if err != nil {
					return fmt.Errorf("read image: %w", err)
				}

				ref := strings.TrimSpace(assetRef)
				if ref == "" {
					ref = filepath.Base(sourcePath)
				}
				result, err := svc.EmbedImage(cmd.Context(), data, args[1], watermark.EmbedOptions{
					Force:    force,
					OwnerID:  strings.TrimSpace(ownerID),
					AssetRef: ref,
				})
				if err != nil {
					return err
				}

				target := strings.TrimSpace(outputPath)
				if target == "" {
					base := strings.TrimSuffix(filepath.Base(sourcePath), filepath.Ext(sourcePath))
					target = filepath.Join(cfg.Paths.OutputDir, base+"_marked.jpg")
				} else if target, err = config.ExpandPath(target); err != nil {
					return err
				}
				if err := os.WriteFile(target, result.Output, 0o644); err != nil {
					return fmt.Errorf("write marked image: %w", err)
				}

				if jsonOut {
					payload := map[string]any{
						"output":        target,
						"bits_embedded": result.BitsEmbedded,
						"psnr":          result.PSNR,
					}
					if result.Record != nil {
						payload["record_id"] = result.Record.ID
					}
					return writeJSON(cmd, payload)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Wrote %s\n", target)
				fmt.Fprintf(out, "Embedded %d bits, PSNR %.2f dB\n", result.BitsEmbedded, result.PSNR)
				if result.Record != nil {
					fmt.Fprintf(out, "Registered corpus record %s\n", result.Record.ID)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination for the marked image")
	cmd.Flags().StringVar(&ownerID, "owner", "", "Owner ID; registers the fingerprint in the corpus")
	cmd.Flags().StringVar(&assetRef, "asset-ref", "", "Asset reference stored with the corpus record")
	cmd.Flags().BoolVar(&force, "force", false, "Embed even if the image already carries a mark")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	return cmd
}
