// Package audit persists one sanitized record per gate decision.
//
// Records are written twice: to <log_dir>/<session>/<file> and to the master
// <log_dir>/<file>. The jsonl format appends a single line with O_APPEND. The
// json format keeps a pretty-printed array, rewritten under an advisory file
// lock and replaced atomically.
package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/fyrsmithlabs/toolgate/internal/action"
)

// Summary is the verdict part of a record.
type Summary struct {
	Decision string   `json:"decision"`
	Reason   string   `json:"reason,omitempty"`
	Detector string   `json:"detector,omitempty"`
	Matched  []string `json:"matched,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Record is a single audit entry.
type Record struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	SessionID      string    `json:"session_id"`
	Tool           string    `json:"tool"`
	HookEvent      string    `json:"hook_event_name,omitempty"`
	Cwd            string    `json:"cwd,omitempty"`
	TranscriptPath string    `json:"transcript_path,omitempty"`
	Input          any       `json:"tool_input"`
	Summary

	// truncate marks inputs of unknown tools, whose long strings are cut
	// after redaction.
	truncate bool
}

// NewRecord builds an unsanitized record for req. The sink sanitizes it on
// write.
func NewRecord(req *action.Request, s Summary) Record {
	_, other := req.Input.(action.OtherInput)
	return Record{
		ID:             uuid.NewString(),
		Timestamp:      time.Now().UTC(),
		SessionID:      req.SessionID,
		Tool:           req.Tool,
		HookEvent:      req.HookEvent,
		Cwd:            req.Cwd,
		TranscriptPath: req.TranscriptPath,
		Input:          req.Projection(),
		Summary:        s,
		truncate:       other,
	}
}
