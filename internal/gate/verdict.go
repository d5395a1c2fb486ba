package gate

import (
	"fmt"

	"github.com/fyrsmithlabs/toolgate/internal/audit"
)

// Decision is the outcome of evaluating one action.
type Decision int

const (
	Allow Decision = iota
	AllowWithWarning
	Block
)

// String returns the name recorded in audit records.
func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case AllowWithWarning:
		return "allow_with_warning"
	case Block:
		return "block"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// MarshalText encodes the decision by name.
func (d Decision) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Verdict is the engine's answer for one action.
type Verdict struct {
	Decision Decision

	// Reason, Detector and Label are set only for Block.
	Reason   string
	Detector string
	Label    string

	// Hints are extra diagnostic lines printed after the reason.
	Hints []string

	Warnings []string

	// Matched lists every check that matched, in evaluation order, including
	// those after the one that decided.
	Matched []string
}

// Blocked reports whether the action must not run.
func (v Verdict) Blocked() bool {
	return v.Decision == Block
}

// Summary converts the verdict for an audit record.
func (v Verdict) Summary() audit.Summary {
	return audit.Summary{
		Decision: v.Decision.String(),
		Reason:   v.Reason,
		Detector: v.Detector,
		Matched:  v.Matched,
		Warnings: v.Warnings,
	}
}
