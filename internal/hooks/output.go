package hooks

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/fyrsmithlabs/toolgate/internal/action"
	"github.com/fyrsmithlabs/toolgate/internal/gate"
	"github.com/fyrsmithlabs/toolgate/internal/sanitize"
)

// Output is the approval payload written to stdout.
type Output struct {
	Approved  bool     `json:"approved"`
	Logged    bool     `json:"logged"`
	Tool      string   `json:"tool"`
	SessionID string   `json:"session_id"`
	Warnings  []string `json:"warnings"`
}

// NewOutput builds the approval payload for req.
func NewOutput(req *action.Request, res Result) Output {
	warnings := res.Verdict.Warnings
	if warnings == nil {
		warnings = []string{}
	}
	return Output{
		Approved:  true,
		Logged:    res.Logged,
		Tool:      req.Tool,
		SessionID: sanitize.SessionID(req.SessionID),
		Warnings:  warnings,
	}
}

// WriteAllow writes out as a single JSON line.
func WriteAllow(w io.Writer, out Output) error {
	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal hook output: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteBlock writes the block diagnostic: "BLOCKED: <reason>" followed by one
// line per hint. Styling is dropped when w is not a terminal.
func WriteBlock(w io.Writer, v gate.Verdict) error {
	r := lipgloss.NewRenderer(w)
	label := r.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	hint := r.NewStyle().Faint(true)

	if _, err := fmt.Fprintf(w, "%s %s\n", label.Render("BLOCKED:"), v.Reason); err != nil {
		return err
	}
	for _, h := range v.Hints {
		if _, err := fmt.Fprintln(w, hint.Render(h)); err != nil {
			return err
		}
	}
	return nil
}
