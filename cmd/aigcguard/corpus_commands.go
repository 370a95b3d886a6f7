package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zsy-dream/aigcguard/internal/config"
	"github.com/zsy-dream/aigcguard/internal/corpus"
)

func newCorpusCommand(ctx *commandContext) *cobra.Command {
	corpusCmd := &cobra.Command{
		Use:   "corpus",
		Short: "Manage the fingerprint corpus",
	}
	corpusCmd.AddCommand(newCorpusListCommand(ctx))
	corpusCmd.AddCommand(newCorpusAddCommand(ctx))
	corpusCmd.AddCommand(newCorpusImportCommand(ctx))
	corpusCmd.AddCommand(newCorpusRemoveCommand(ctx))
	return corpusCmd
}

func newCorpusListCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered fingerprints",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *corpus.Store) error {
				records, err := store.All(cmd.Context())
				if err != nil {
					return err
				}

				if jsonOut {
					return writeJSON(cmd, records)
				}

				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Corpus is empty")
					return nil
				}
				rows := make([][]string, 0, len(records))
				for _, rec := range records {
					rows = append(rows, []string{
						rec.ID,
						shortFingerprint(rec.Fingerprint),
						rec.OwnerID,
						rec.AssetRef,
						rec.CreatedAt.Format(time.RFC3339),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Fingerprint", "Owner", "Asset", "Created"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	return cmd
}

func newCorpusAddCommand(ctx *commandContext) *cobra.Command {
	var (
		ownerID   string
		assetRef  string
		phashHex  string
		ownerName string
	)

	cmd := &cobra.Command{
		Use:   "add <fingerprint>",
		Short: "Register a fingerprint without embedding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *corpus.Store) error {
				record, err := store.Add(cmd.Context(), corpus.Record{
					Fingerprint: args[0],
					PHash:       strings.TrimSpace(phashHex),
					OwnerID:     strings.TrimSpace(ownerID),
					AssetRef:    strings.TrimSpace(assetRef),
				})
				if err != nil {
					return err
				}
				if name := strings.TrimSpace(ownerName); name != "" {
					if err := store.UpsertProfile(cmd.Context(), record.OwnerID, name); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added record %s\n", record.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&ownerID, "owner", "", "Owner ID for the record")
	cmd.Flags().StringVar(&assetRef, "asset-ref", "", "Asset reference for the record")
	cmd.Flags().StringVar(&phashHex, "phash", "", "Perceptual hash of the source asset")
	cmd.Flags().StringVar(&ownerName, "owner-name", "", "Display name stored in the owner profile")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}

// importRecord is the JSON-lines row shape accepted by corpus import.
type importRecord struct {
	Fingerprint string `json:"fingerprint"`
	PHash       string `json:"phash"`
	OwnerID     string `json:"owner_id"`
	AssetRef    string `json:"asset_ref"`
}

func newCorpusImportCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <records.jsonl>",
		Short: "Batch add records from a JSON-lines file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *corpus.Store) error {
				path, err := config.ExpandPath(args[0])
				if err != nil {
					return err
				}
				file, err := os.Open(path)
				if err != nil {
					return fmt.Errorf("open import file: %w", err)
				}
				defer file.Close()

				added := 0
				scanner := bufio.NewScanner(file)
				scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
				for line := 1; scanner.Scan(); line++ {
					text := strings.TrimSpace(scanner.Text())
					if text == "" {
						continue
					}
					var row importRecord
					if err := json.Unmarshal([]byte(text), &row); err != nil {
						return fmt.Errorf("line %d: %w", line, err)
					}
					if _, err := store.Add(cmd.Context(), corpus.Record{
						Fingerprint: row.Fingerprint,
						PHash:       row.PHash,
						OwnerID:     row.OwnerID,
						AssetRef:    row.AssetRef,
					}); err != nil {
						return fmt.Errorf("line %d: %w", line, err)
					}
					added++
				}
				if err := scanner.Err(); err != nil {
					return fmt.Errorf("read import file: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records\n", added)
				return nil
			})
		},
	}
	return cmd
}

func newCorpusRemoveCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <record-id>",
		Short: "Remove a corpus record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *corpus.Store) error {
				if err := store.Remove(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
				return nil
			})
		},
	}
	return cmd
}

func shortFingerprint(fp string) string {
	if len(fp) <= 16 {
		return fp
	}
	return fp[:16] + "…"
}
