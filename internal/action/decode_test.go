package action

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_Shell(t *testing.T) {
	req, err := Decode(strings.NewReader(`{
		"tool_name": "Bash",
		"tool_input": {"command": "ls -la", "description": "list"},
		"session_id": "abc-123",
		"cwd": "/work",
		"hook_event_name": "PreToolUse",
		"transcript_path": "/tmp/t.jsonl"
	}`))
	require.NoError(t, err)

	assert.Equal(t, ToolBash, req.Tool)
	assert.Equal(t, "abc-123", req.SessionID)
	assert.Equal(t, "/work", req.Cwd)
	assert.Equal(t, "PreToolUse", req.HookEvent)
	assert.Equal(t, "/tmp/t.jsonl", req.TranscriptPath)

	shell, ok := req.Shell()
	require.True(t, ok)
	assert.Equal(t, "ls -la", shell.Command)
	assert.Equal(t, "list", shell.Description)

	_, ok = req.File()
	assert.False(t, ok)
}

func TestDecode_FileTools(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    FileInput
		write   bool
	}{
		{
			name:    "read",
			payload: `{"tool_name":"Read","tool_input":{"file_path":"/p/a.go"}}`,
			want:    FileInput{Tool: ToolRead, Path: "/p/a.go"},
		},
		{
			name:    "write",
			payload: `{"tool_name":"Write","tool_input":{"file_path":"a.txt","content":"hi"}}`,
			want:    FileInput{Tool: ToolWrite, Path: "a.txt", Content: "hi"},
			write:   true,
		},
		{
			name:    "edit",
			payload: `{"tool_name":"Edit","tool_input":{"file_path":"a.txt","old_string":"x","new_string":"y"}}`,
			want:    FileInput{Tool: ToolEdit, Path: "a.txt", OldString: "x", NewString: "y"},
			write:   true,
		},
		{
			name:    "multi edit",
			payload: `{"tool_name":"MultiEdit","tool_input":{"file_path":"a.txt","edits":[{"old_string":"a","new_string":"b"},"junk"]}}`,
			want:    FileInput{Tool: ToolMultiEdit, Path: "a.txt", Edits: []Edit{{OldString: "a", NewString: "b"}}},
			write:   true,
		},
		{
			name:    "notebook",
			payload: `{"tool_name":"NotebookEdit","tool_input":{"notebook_path":"n.ipynb","new_source":"print(1)"}}`,
			want:    FileInput{Tool: ToolNotebookEdit, Path: "n.ipynb", Content: "print(1)"},
			write:   true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Decode(strings.NewReader(tt.payload))
			require.NoError(t, err)

			file, ok := req.File()
			require.True(t, ok)
			assert.Equal(t, tt.want, file)
			assert.Equal(t, tt.write, file.IsWrite())
		})
	}
}

func TestDecode_Other(t *testing.T) {
	req, err := Decode(strings.NewReader(`{"tool_name":"WebFetch","tool_input":{"url":"https://example.com"}}`))
	require.NoError(t, err)

	other, ok := req.Input.(OtherInput)
	require.True(t, ok)
	assert.Equal(t, "https://example.com", other.Fields["url"])
}

func TestDecode_MissingToolInput(t *testing.T) {
	req, err := Decode(strings.NewReader(`{"tool_name":"Bash","session_id":"s"}`))
	require.NoError(t, err)

	shell, ok := req.Shell()
	require.True(t, ok)
	assert.Empty(t, shell.Command)
	assert.NotNil(t, req.Raw)
}

func TestDecode_NonStringFieldsIgnored(t *testing.T) {
	req, err := Decode(strings.NewReader(`{"tool_name":"Bash","tool_input":{"command":42}}`))
	require.NoError(t, err)

	shell, _ := req.Shell()
	assert.Empty(t, shell.Command)
}

func TestDecode_Malformed(t *testing.T) {
	tests := []string{
		``,
		`not json`,
		`{"tool_name": "Bash", "tool_input": "rm -rf /"}`,
		`[1,2,3]`,
	}
	for _, payload := range tests {
		_, err := Decode(strings.NewReader(payload))
		assert.ErrorIs(t, err, ErrMalformed, payload)
	}
}

func TestDecode_TooLarge(t *testing.T) {
	payload := `{"tool_name":"Bash","tool_input":{"command":"` + strings.Repeat("a", MaxRequestSize) + `"}}`
	_, err := Decode(strings.NewReader(payload))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestProjection(t *testing.T) {
	long := strings.Repeat("x", 600)

	tests := []struct {
		name    string
		payload string
		want    map[string]any
	}{
		{
			name:    "shell",
			payload: `{"tool_name":"Bash","tool_input":{"command":"ls","description":"list"}}`,
			want:    map[string]any{"command": "ls", "description": "list"},
		},
		{
			name:    "write keeps size only",
			payload: `{"tool_name":"Write","tool_input":{"file_path":"a.txt","content":"hello"}}`,
			want:    map[string]any{"file_path": "a.txt", "content_bytes": 5},
		},
		{
			name:    "multi edit",
			payload: `{"tool_name":"MultiEdit","tool_input":{"file_path":"a.txt","edits":[{"old_string":"a","new_string":"b"}]}}`,
			want:    map[string]any{"file_path": "a.txt", "edit_count": 1},
		},
		{
			name:    "other is copied whole",
			payload: `{"tool_name":"Task","tool_input":{"prompt":"` + long + `","n":1}}`,
			want:    map[string]any{"prompt": long, "n": float64(1)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := Decode(strings.NewReader(tt.payload))
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Projection())
		})
	}
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", 600)
	cut := strings.Repeat("x", 500) + "... (truncated)"

	in := map[string]any{
		"prompt": long,
		"short":  "ok",
		"n":      float64(1),
		"nested": []any{long, map[string]any{"deep": long}},
	}

	assert.Equal(t, map[string]any{
		"prompt": cut,
		"short":  "ok",
		"n":      float64(1),
		"nested": []any{cut, map[string]any{"deep": cut}},
	}, Truncate(in))
	assert.Equal(t, long, in["prompt"])
}

func TestTruncate_RuneBoundary(t *testing.T) {
	s := strings.Repeat("a", 499) + "é" + "tail"

	out, ok := Truncate(s).(string)
	require.True(t, ok)
	assert.Equal(t, strings.Repeat("a", 499)+"... (truncated)", out)
}
