package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/zsy-dream/aigcguard/internal/config"
	"github.com/zsy-dream/aigcguard/internal/textmark"
)

func newTextCommand() *cobra.Command {
	textCmd := &cobra.Command{
		Use:         "text",
		Short:       "Zero-width watermarks in plain text",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}
	textCmd.AddCommand(newTextEmbedCommand())
	textCmd.AddCommand(newTextExtractCommand())
	return textCmd
}

func newTextEmbedCommand() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "embed <file|-> <payload>",
		Short: "Hide a payload inside a text file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			carrier, err := readTextArg(cmd, args[0])
			if err != nil {
				return err
			}

			marked := textmark.Embed(carrier, args[1])
			if outputPath == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), marked)
				return err
			}
			target, err := config.ExpandPath(outputPath)
			if err != nil {
				return err
			}
			if err := os.WriteFile(target, []byte(marked), 0o644); err != nil {
				return fmt.Errorf("write marked text: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Destination file (default: stdout)")
	return cmd
}

func newTextExtractCommand() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "extract <file|->",
		Short: "Recover a hidden payload from text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readTextArg(cmd, args[0])
			if err != nil {
				return err
			}

			payload, status := textmark.Extract(text)
			if jsonOut {
				return writeJSON(cmd, map[string]any{
					"status":  status.String(),
					"payload": payload,
				})
			}

			out := cmd.OutOrStdout()
			if status != textmark.StatusFound {
				fmt.Fprintln(out, status.String())
				return nil
			}
			fmt.Fprintln(out, payload)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit machine-readable JSON")
	return cmd
}

func readTextArg(cmd *cobra.Command, arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	path, err := config.ExpandPath(arg)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read text file: %w", err)
	}
	return string(data), nil
}
