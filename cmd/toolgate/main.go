// Package main implements the toolgate CLI: the pre-tool-use hook entry point
// and operator commands for trying the gate by hand.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/toolgate/internal/config"
	"github.com/fyrsmithlabs/toolgate/internal/hooks"
	"github.com/fyrsmithlabs/toolgate/internal/logging"
)

// version is set at build time.
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// exitError carries a process exit status out of a command without printing
// anything further.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// run executes the CLI and returns the process exit status.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(context.Background()); err != nil {
		var ee exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		fmt.Fprintln(stderr, "Error:", err)
		return 1
	}
	return 0
}

// globalOptions are shared by every subcommand.
type globalOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "toolgate",
		Short: "Policy gate for agent tool calls",
		Long: `toolgate inspects each tool call an agent is about to make and blocks the
dangerous ones: secrets access, sudo, destructive deletes, force pushes to
protected branches, whole-tree scans and command injection. Every decision
is written to a sanitized audit log.

Register "toolgate pre-tool-use" as the PreToolUse hook.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/toolgate/config.yaml)")

	root.AddCommand(newPreToolUseCmd(opts))
	root.AddCommand(newCheckCmd(opts))
	root.AddCommand(newSanitizeCmd(opts))
	root.AddCommand(newVersionCmd())
	return root
}

func newPreToolUseCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pre-tool-use",
		Short: "Evaluate one hook request read from stdin",
		Long: `Reads a PreToolUse hook request as JSON from stdin.

Allowed actions print an approval payload on stdout and exit 0. Blocked
actions print "BLOCKED: <reason>" on stderr and exit 2. Malformed input is
allowed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, logger := loadConfig(ctx, opts.configPath)
			defer func() { _ = logger.Sync() }()

			code := hooks.NewRunner(cfg, logger).Run(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
			if code != hooks.ExitAllow {
				return exitError{code: code}
			}
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "toolgate", version)
		},
	}
}

// loadConfig never fails: a hook that cannot read its config still gates with
// the defaults.
func loadConfig(ctx context.Context, path string) (*config.Config, *logging.Logger) {
	cfg, loadErr := config.Load(path)
	if loadErr != nil {
		cfg = config.Default()
	}

	logger := newLogger(cfg.LogLevel)
	if loadErr != nil {
		logger.Warn(ctx, "failed to load config, using defaults", zap.Error(loadErr))
	}
	return cfg, logger
}

func newLogger(level string) *logging.Logger {
	logCfg := logging.NewDefaultConfig()
	if l, err := logging.LevelFromString(level); err == nil {
		logCfg.Level = l
	}
	logger, err := logging.NewLogger(logCfg)
	if err != nil {
		return logging.NewNop()
	}
	return logger
}
