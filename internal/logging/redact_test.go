package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func encodeString(t *testing.T, enc zapcore.Encoder, key, val string) string {
	t.Helper()
	buf, err := enc.EncodeEntry(zapcore.Entry{Message: "m"}, []zap.Field{zap.String(key, val)})
	require.NoError(t, err)
	defer buf.Free()
	return buf.String()
}

func TestRedactingEncoder(t *testing.T) {
	enc, err := NewRedactingEncoder(newEncoder("json"), NewDefaultConfig().Redaction)
	require.NoError(t, err)

	tests := []struct {
		name     string
		key      string
		val      string
		contains string
		absent   string
	}{
		{"sensitive key", "password", "hunter2", `"password":"[REDACTED]"`, "hunter2"},
		{"key case insensitive", "Token", "abc", `"Token":"[REDACTED]"`, `"abc"`},
		{"bearer value", "header", "Bearer abc.def", "[REDACTED:pattern]", "abc.def"},
		{"api key value", "cmd", "curl -d api_key=zzz9", "[REDACTED:pattern]", "zzz9"},
		{"plain value", "path", "src/main.go", "src/main.go", "REDACTED"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := encodeString(t, enc.Clone(), tt.key, tt.val)
			assert.Contains(t, out, tt.contains)
			assert.NotContains(t, out, tt.absent)
		})
	}
}

func TestRedactingEncoder_Disabled(t *testing.T) {
	enc, err := NewRedactingEncoder(newEncoder("json"), RedactionConfig{})
	require.NoError(t, err)

	out := encodeString(t, enc, "password", "hunter2")
	assert.Contains(t, out, "hunter2")
}

func TestRedactingEncoder_InvalidPattern(t *testing.T) {
	_, err := NewRedactingEncoder(newEncoder("json"), RedactionConfig{
		Enabled:  true,
		Patterns: []string{"("},
	})
	assert.Error(t, err)
}

func TestRedactedString(t *testing.T) {
	f := RedactedString("authorization", "secret-value")
	assert.Equal(t, "[REDACTED:12]", f.String)
}
