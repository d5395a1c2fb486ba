package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/toolgate/internal/hooks"
)

func newSanitizeCmd(opts *globalOptions) *cobra.Command {
	var deep bool

	cmd := &cobra.Command{
		Use:   "sanitize [file]",
		Short: "Redact secrets from a file or stdin",
		Long: `Redact secrets from a file or stdin with the same rules the audit log uses.

Examples:
  # Sanitize a file
  toolgate sanitize .env

  # Sanitize from stdin, including the gitleaks rule set
  cat output.log | toolgate sanitize --deep -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			cfg, logger := loadConfig(cmd.Context(), opts.configPath)
			defer func() { _ = logger.Sync() }()
			if deep {
				cfg.DeepScan = true
			}

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			san := hooks.NewSanitizer(cmd.Context(), cfg, cwd, logger)
			_, err = io.WriteString(cmd.OutOrStdout(), san.Text(string(content)))
			return err
		},
	}

	cmd.Flags().BoolVar(&deep, "deep", false, "also apply the gitleaks rule set")
	return cmd
}

func readInput(stdin io.Reader, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		content, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
		return content, nil
	}

	content, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", args[0], err)
	}
	return content, nil
}
