package action

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// MaxRequestSize bounds how much stdin is read.
const MaxRequestSize = 10 << 20

const (
	maxProjectedString = 500
	truncatedSuffix    = "... (truncated)"
)

// ErrMalformed is returned when the host payload cannot be decoded.
var ErrMalformed = errors.New("malformed hook input")

type wireRequest struct {
	ToolName       string          `json:"tool_name"`
	ToolInput      json.RawMessage `json:"tool_input"`
	SessionID      string          `json:"session_id"`
	Cwd            string          `json:"cwd"`
	HookEventName  string          `json:"hook_event_name"`
	TranscriptPath string          `json:"transcript_path"`
}

// Decode reads one hook payload from r.
func Decode(r io.Reader) (*Request, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxRequestSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	if len(data) > MaxRequestSize {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrMalformed, MaxRequestSize)
	}

	var w wireRequest
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	raw := map[string]any{}
	if len(w.ToolInput) > 0 && string(w.ToolInput) != "null" {
		if err := json.Unmarshal(w.ToolInput, &raw); err != nil {
			return nil, fmt.Errorf("%w: tool_input: %w", ErrMalformed, err)
		}
	}

	return &Request{
		Tool:           w.ToolName,
		SessionID:      w.SessionID,
		Cwd:            w.Cwd,
		HookEvent:      w.HookEventName,
		TranscriptPath: w.TranscriptPath,
		Input:          typedInput(w.ToolName, raw),
		Raw:            raw,
	}, nil
}

func typedInput(tool string, raw map[string]any) Input {
	switch {
	case tool == ToolBash:
		return ShellInput{
			Command:     str(raw, "command"),
			Description: str(raw, "description"),
		}
	case IsFileTool(tool):
		in := FileInput{
			Tool:      tool,
			Path:      str(raw, "file_path"),
			Content:   str(raw, "content"),
			OldString: str(raw, "old_string"),
			NewString: str(raw, "new_string"),
		}
		if tool == ToolNotebookEdit {
			if in.Path == "" {
				in.Path = str(raw, "notebook_path")
			}
			in.Content = str(raw, "new_source")
		}
		if edits, ok := raw["edits"].([]any); ok {
			for _, e := range edits {
				m, ok := e.(map[string]any)
				if !ok {
					continue
				}
				in.Edits = append(in.Edits, Edit{
					OldString: str(m, "old_string"),
					NewString: str(m, "new_string"),
				})
			}
		}
		return in
	}
	return OtherInput{Fields: raw}
}

func str(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}

// Projection returns the subset of the input that is persisted in audit
// records. File content is reduced to its size. Fields of unknown tools are
// copied whole; the audit sink truncates them after redaction so a secret is
// never cut in a way that hides it from the rules.
func (r *Request) Projection() map[string]any {
	switch in := r.Input.(type) {
	case ShellInput:
		p := map[string]any{"command": in.Command}
		if in.Description != "" {
			p["description"] = in.Description
		}
		return p
	case FileInput:
		p := map[string]any{"file_path": in.Path}
		if in.Content != "" {
			p["content_bytes"] = len(in.Content)
		}
		if in.NewString != "" {
			p["new_string_bytes"] = len(in.NewString)
		}
		if len(in.Edits) > 0 {
			p["edit_count"] = len(in.Edits)
		}
		return p
	case OtherInput:
		p := make(map[string]any, len(in.Fields))
		for k, v := range in.Fields {
			p[k] = v
		}
		return p
	}
	return map[string]any{}
}

// Truncate returns a copy of v with every string longer than 500 bytes cut at
// a rune boundary and suffixed with "... (truncated)".
func Truncate(v any) any {
	switch t := v.(type) {
	case string:
		if len(t) <= maxProjectedString {
			return t
		}
		cut := maxProjectedString
		for cut > 0 && !utf8.RuneStart(t[cut]) {
			cut--
		}
		return t[:cut] + truncatedSuffix
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Truncate(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Truncate(e)
		}
		return out
	}
	return v
}
