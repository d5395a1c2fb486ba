package logging

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestLogger records every entry, down to Trace, for assertions.
type TestLogger struct {
	*Logger
	observed *observer.ObservedLogs
}

// NewTestLogger creates a logger whose entries can be inspected.
func NewTestLogger() *TestLogger {
	core, observed := observer.New(TraceLevel)
	return &TestLogger{
		Logger: &Logger{
			zap:    zap.New(core),
			config: NewDefaultConfig(),
		},
		observed: observed,
	}
}

// All returns every recorded entry.
func (t *TestLogger) All() []observer.LoggedEntry {
	return t.observed.All()
}

func (t *TestLogger) find(level zapcore.Level, msgContains string) []observer.LoggedEntry {
	var found []observer.LoggedEntry
	for _, entry := range t.observed.All() {
		if entry.Level == level && strings.Contains(entry.Message, msgContains) {
			found = append(found, entry)
		}
	}
	return found
}

// AssertLogged fails unless an entry at level contains msgContains.
func (t *TestLogger) AssertLogged(tb testing.TB, level zapcore.Level, msgContains string) {
	tb.Helper()
	if len(t.find(level, msgContains)) == 0 {
		tb.Errorf("expected log at %v containing %q, logs: %+v", level, msgContains, t.observed.All())
	}
}

// AssertNotLogged fails if any entry at level contains msgContains.
func (t *TestLogger) AssertNotLogged(tb testing.TB, level zapcore.Level, msgContains string) {
	tb.Helper()
	for _, entry := range t.find(level, msgContains) {
		tb.Errorf("unexpected log at %v: %q", level, entry.Message)
	}
}

// AssertField fails unless an entry with message msg carries key=expected.
func (t *TestLogger) AssertField(tb testing.TB, msg, key string, expected interface{}) {
	tb.Helper()
	for _, entry := range t.observed.FilterMessage(msg).All() {
		if v, ok := entry.ContextMap()[key]; ok && reflect.DeepEqual(v, expected) {
			return
		}
	}
	tb.Errorf("field %q=%v not found in message %q", key, expected, msg)
}

// AssertCorrelated fails unless every entry with message msg carries the
// session and tool of the action it was logged for.
func (t *TestLogger) AssertCorrelated(tb testing.TB, msg string) {
	tb.Helper()
	entries := t.observed.FilterMessage(msg).All()
	if len(entries) == 0 {
		tb.Errorf("no log with message %q", msg)
	}
	for _, entry := range entries {
		fields := entry.ContextMap()
		for _, key := range []string{"session.id", "tool"} {
			if _, ok := fields[key]; !ok {
				tb.Errorf("message %q missing %s", msg, key)
			}
		}
	}
}

// AssertNoSecrets fails if any secret appears in a message or field value.
func (t *TestLogger) AssertNoSecrets(tb testing.TB, secrets ...string) {
	tb.Helper()
	for _, entry := range t.observed.All() {
		text := entry.Message + " " + fmt.Sprint(entry.ContextMap())
		for _, secret := range secrets {
			if strings.Contains(text, secret) {
				tb.Errorf("secret %q leaked in log %q", secret, entry.Message)
			}
		}
	}
}
