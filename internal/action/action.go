// Package action models the agent-issued action a hook is asked to judge.
package action

// Tool names understood by the gate.
const (
	ToolBash         = "Bash"
	ToolRead         = "Read"
	ToolWrite        = "Write"
	ToolEdit         = "Edit"
	ToolMultiEdit    = "MultiEdit"
	ToolNotebookEdit = "NotebookEdit"
)

// Request is one action submitted by the host. It is never mutated after
// decoding.
type Request struct {
	Tool           string
	SessionID      string
	Cwd            string
	HookEvent      string
	TranscriptPath string

	// Input is the typed view of tool_input.
	Input Input

	// Raw is tool_input as decoded, kept for audit projection.
	Raw map[string]any
}

// Input is the closed set of tool input shapes.
type Input interface {
	isInput()
}

// ShellInput is the input of the Bash tool.
type ShellInput struct {
	Command     string
	Description string
}

// FileInput is the input of file tools.
type FileInput struct {
	Tool      string
	Path      string
	Content   string
	OldString string
	NewString string
	Edits     []Edit
}

// Edit is one replacement of a MultiEdit.
type Edit struct {
	OldString string
	NewString string
}

// OtherInput is the input of tools the gate has no typed view of.
type OtherInput struct {
	Fields map[string]any
}

func (ShellInput) isInput() {}
func (FileInput) isInput()  {}
func (OtherInput) isInput() {}

// IsWrite reports whether the file tool modifies the file.
func (f FileInput) IsWrite() bool {
	switch f.Tool {
	case ToolWrite, ToolEdit, ToolMultiEdit, ToolNotebookEdit:
		return true
	}
	return false
}

// IsFileTool reports whether tool operates on a single file path.
func IsFileTool(tool string) bool {
	switch tool {
	case ToolRead, ToolWrite, ToolEdit, ToolMultiEdit, ToolNotebookEdit:
		return true
	}
	return false
}

// Shell returns the shell input, if any.
func (r *Request) Shell() (ShellInput, bool) {
	s, ok := r.Input.(ShellInput)
	return s, ok
}

// File returns the file input, if any.
func (r *Request) File() (FileInput, bool) {
	f, ok := r.Input.(FileInput)
	return f, ok
}
