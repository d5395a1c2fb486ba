// internal/logging/context.go
package logging

import (
	"context"

	"go.uber.org/zap"
)

// ContextFields extracts correlation data from context.
func ContextFields(ctx context.Context) []zap.Field {
	fields := make([]zap.Field, 0, 3)

	if sessionID := SessionIDFromContext(ctx); sessionID != "" {
		fields = append(fields, zap.String("session.id", sessionID))
	}

	if tool := ToolFromContext(ctx); tool != "" {
		fields = append(fields, zap.String("tool", tool))
	}

	if recordID := RecordIDFromContext(ctx); recordID != "" {
		fields = append(fields, zap.String("record.id", recordID))
	}

	return fields
}

// Context key types
type sessionCtxKey struct{}
type toolCtxKey struct{}
type recordCtxKey struct{}

// SessionIDFromContext extracts session ID from context.
func SessionIDFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(sessionCtxKey{}).(string); ok {
		return s
	}
	return ""
}

// WithSessionID adds an already validated session ID to context.
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, sessionID)
}

// ToolFromContext extracts the tool name of the action under evaluation.
func ToolFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(toolCtxKey{}).(string); ok {
		return s
	}
	return ""
}

// WithTool adds the tool name to context.
func WithTool(ctx context.Context, tool string) context.Context {
	return context.WithValue(ctx, toolCtxKey{}, tool)
}

// RecordIDFromContext extracts the audit record ID from context.
func RecordIDFromContext(ctx context.Context) string {
	if r, ok := ctx.Value(recordCtxKey{}).(string); ok {
		return r
	}
	return ""
}

// WithRecordID adds the audit record ID to context.
func WithRecordID(ctx context.Context, recordID string) context.Context {
	return context.WithValue(ctx, recordCtxKey{}, recordID)
}
