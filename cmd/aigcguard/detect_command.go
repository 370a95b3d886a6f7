package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zsy-dream/aigcguard/internal/config"
	"github.com/zsy-dream/aigcguard/internal/watermark"
)

func newDetectCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "detect <image>",
		Short: "Detect a watermark and match it against the corpus",
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

				detection, err := svc.DetectImage(cmd.Context(), data)
				if err != nil {
					return err
				}

				if jsonOut {
					return writeJSON(cmd, detectionPayload(detection))
				}
				printDetection(cmd, detection)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	return cmd
}

func detectionPayload(d watermark.Detection) map[string]any {
	candidates := make([]map[string]any, 0, len(d.Candidates))
	for _, c := range d.Candidates {
		entry := map[string]any{
			"record_id":  c.Record.ID,
			"owner_id":   c.Record.OwnerID,
			"similarity": c.Similarity,
			"score":      c.Score,
			"tier":       string(c.Tier),
			"confirmed":  c.Confirmed,
			"verified":   c.Verified,
		}
		if c.HashDistance >= 0 {
			entry["hash_distance"] = c.HashDistance
		}
		if name, ok := d.OwnerNames[c.Record.OwnerID]; ok {
			entry["owner_name"] = name
		}
		candidates = append(candidates, entry)
	}
	return map[string]any{
		"detection_id":     d.ID,
		"fingerprint":      d.Fingerprint,
		"strength":         d.Strength,
		"step_used":        d.StepUsed,
		"phash":            d.PHash,
		"detection_source": string(d.Source),
		"candidates":       candidates,
	}
}

func printDetection(cmd *cobra.Command, d watermark.Detection) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Detection %s\n", d.ID)
	fmt.Fprintf(out, "Source:   %s\n", d.Source)
	fmt.Fprintf(out, "Strength: %d (step %g)\n", d.Strength, d.StepUsed)

	if len(d.Candidates) == 0 {
		if d.Source == watermark.SourceNone {
			fmt.Fprintln(out, "No watermark signal found.")
		} else {
			fmt.Fprintln(out, "Signal present but no corpus record matches.")
		}
		return
	}

	rows := make([][]string, 0, len(d.Candidates))
	for _, c := range d.Candidates {
		owner := c.Record.OwnerID
		if name, ok := d.OwnerNames[owner]; ok {
			owner = fmt.Sprintf("%s (%s)", name, c.Record.OwnerID)
		}
		hashDist := "-"
		if c.HashDistance >= 0 {
			hashDist = fmt.Sprintf("%d", c.HashDistance)
		}
		rows = append(rows, []string{
			c.Record.ID,
			owner,
			fmt.Sprintf("%.1f%%", c.Similarity*100),
			hashDist,
			fmt.Sprintf("%.1f", c.Score),
			string(c.Tier),
			yesNo(c.Confirmed),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Record", "Owner", "Similarity", "Hash dist", "Score", "Tier", "Confirmed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft},
	))
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
