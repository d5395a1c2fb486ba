package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/toolgate/internal/action"
	"github.com/fyrsmithlabs/toolgate/internal/gate"
	"github.com/fyrsmithlabs/toolgate/internal/hooks"
)

type checkOptions struct {
	tool string
	path string
	cwd  string
}

func newCheckCmd(opts *globalOptions) *cobra.Command {
	co := &checkOptions{}

	cmd := &cobra.Command{
		Use:   "check [command...]",
		Short: "Evaluate an action without running it or auditing it",
		Long: `Evaluate a shell command or file access against the gate and print the
verdict. Nothing is written to the audit log. Exits 2 when the action would
be blocked.

Examples:
  # Shell command
  toolgate check -- git push --force origin main

  # File access
  toolgate check --tool Read --path .env`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := co.request(args)
			if err != nil {
				return err
			}

			cfg, logger := loadConfig(cmd.Context(), opts.configPath)
			defer func() { _ = logger.Sync() }()

			v := gate.NewEngine(cfg, logger.Named("gate")).Evaluate(cmd.Context(), req)
			if err := printVerdict(cmd.OutOrStdout(), v); err != nil {
				return err
			}
			if v.Blocked() {
				return exitError{code: hooks.ExitBlock}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&co.tool, "tool", action.ToolBash, "tool name")
	cmd.Flags().StringVar(&co.path, "path", "", "file path for file tools")
	cmd.Flags().StringVar(&co.cwd, "cwd", "", "working directory of the action (default current directory)")
	return cmd
}

// request builds the action the hook would receive for these arguments.
func (co *checkOptions) request(args []string) (*action.Request, error) {
	cwd := co.cwd
	if cwd == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		cwd = wd
	}

	req := &action.Request{
		Tool:      co.tool,
		SessionID: "check",
		Cwd:       cwd,
		HookEvent: string(hooks.HookPreToolUse),
	}

	switch {
	case co.tool == action.ToolBash:
		if len(args) == 0 {
			return nil, fmt.Errorf("a command is required for %s", action.ToolBash)
		}
		command := strings.Join(args, " ")
		req.Input = action.ShellInput{Command: command}
		req.Raw = map[string]any{"command": command}
	case co.path == "":
		return nil, fmt.Errorf("--path is required for %s", co.tool)
	case action.IsFileTool(co.tool):
		req.Input = action.FileInput{Tool: co.tool, Path: co.path}
		req.Raw = map[string]any{"file_path": co.path}
	default:
		req.Raw = map[string]any{"path": co.path}
		req.Input = action.OtherInput{Fields: req.Raw}
	}
	return req, nil
}

func printVerdict(w io.Writer, v gate.Verdict) error {
	r := lipgloss.NewRenderer(w)
	faint := r.NewStyle().Faint(true)

	color := lipgloss.Color("10")
	switch v.Decision {
	case gate.AllowWithWarning:
		color = lipgloss.Color("11")
	case gate.Block:
		color = lipgloss.Color("9")
	}
	decision := r.NewStyle().Bold(true).Foreground(color).Render(v.Decision.String())

	var b strings.Builder
	if v.Blocked() {
		fmt.Fprintf(&b, "%s %s: %s\n", decision, v.Detector, v.Reason)
		for _, h := range v.Hints {
			fmt.Fprintf(&b, "  %s\n", faint.Render(h))
		}
	} else {
		fmt.Fprintln(&b, decision)
	}
	for _, warning := range v.Warnings {
		fmt.Fprintf(&b, "  warning: %s\n", warning)
	}
	if len(v.Matched) > 1 {
		fmt.Fprintf(&b, "  %s\n", faint.Render("matched: "+strings.Join(v.Matched, ", ")))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
