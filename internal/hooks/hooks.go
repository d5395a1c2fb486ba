package hooks

import (
	"context"
	"fmt"

	"github.com/fyrsmithlabs/toolgate/internal/action"
	"github.com/fyrsmithlabs/toolgate/internal/gate"
)

// HookType is the host's lifecycle event name (hook_event_name).
type HookType string

const (
	// HookPreToolUse runs before the agent executes a tool.
	HookPreToolUse HookType = "PreToolUse"

	// HookPostToolUse runs after a tool has executed.
	HookPostToolUse HookType = "PostToolUse"

	// HookUserPromptSubmit runs when the user submits a prompt.
	HookUserPromptSubmit HookType = "UserPromptSubmit"

	// HookSessionStart runs when a session starts.
	HookSessionStart HookType = "SessionStart"

	// HookStop runs when the agent stops.
	HookStop HookType = "Stop"
)

// Exit statuses understood by the host.
const (
	ExitAllow = 0
	ExitBlock = 2
)

// Result is what a handler decided about a request.
type Result struct {
	Verdict gate.Verdict
	Logged  bool
}

// HookHandler handles one decoded request.
type HookHandler func(ctx context.Context, req *action.Request) (Result, error)

// HookManager dispatches requests to the handler registered for their event.
type HookManager struct {
	handlers map[HookType]HookHandler
}

// NewHookManager creates an empty manager.
func NewHookManager() *HookManager {
	return &HookManager{
		handlers: make(map[HookType]HookHandler),
	}
}

// RegisterHandler sets the handler for a hook type, replacing any previous one.
func (h *HookManager) RegisterHandler(hookType HookType, handler HookHandler) {
	h.handlers[hookType] = handler
}

// Handles reports whether a handler is registered for hookType.
func (h *HookManager) Handles(hookType HookType) bool {
	_, ok := h.handlers[hookType]
	return ok
}

// Execute runs the handler for hookType. Events without a handler are
// allowed and not logged.
func (h *HookManager) Execute(ctx context.Context, hookType HookType, req *action.Request) (Result, error) {
	handler, ok := h.handlers[hookType]
	if !ok {
		return Result{Verdict: gate.Verdict{Decision: gate.Allow}}, nil
	}

	res, err := handler(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("hook %s failed: %w", hookType, err)
	}
	return res, nil
}
