// Package sanitize redacts secret-shaped substrings before data reaches the
// audit log, and validates the identifiers and paths used to place it.
//
// Redaction is idempotent: running Text over its own output changes nothing,
// because a labelled value that is exactly the "***REDACTED***" marker is
// kept as is.
package sanitize

import (
	"bytes"
	"encoding/json"
)

// Redacted replaces every secret value.
const Redacted = "***REDACTED***"

// UnsanitizableMessage is recorded in place of data that cannot be copied.
const UnsanitizableMessage = "Unable to sanitize data"

// Text redacts labelled key/value secrets and vendor tokens from s.
//
// Examples:
//
//	"Authorization: Bearer abc123"  -> "Authorization=***REDACTED***"
//	"X-Auth-Token: Bearer abc123"   -> "X-Auth-Token=***REDACTED***"
//	"export API_KEY=sk123"          -> "export API_KEY=***REDACTED***"
//	"clone ghp_<36 chars>"          -> "clone ***REDACTED***"
func Text(s string) string {
	if s == "" {
		return s
	}
	for _, r := range vendorRules {
		s = r.apply(s)
	}
	for _, r := range labelRules {
		s = r.apply(s)
	}
	return s
}

// Value returns a deep copy of v with Text applied to every string leaf.
// Values that cannot round-trip through JSON are replaced by a single
// {"error": UnsanitizableMessage} object.
func Value(v any) any {
	return New().Value(v)
}

// Sanitizer applies the built-in rules and, when configured, a gitleaks deep
// scan. The zero value is not usable; call New.
type Sanitizer struct {
	deep *DeepScanner
}

// Option configures a Sanitizer.
type Option func(*Sanitizer)

// WithDeepScanner adds a gitleaks pass after the built-in rules.
func WithDeepScanner(d *DeepScanner) Option {
	return func(s *Sanitizer) {
		s.deep = d
	}
}

// New creates a Sanitizer.
func New(opts ...Option) *Sanitizer {
	s := &Sanitizer{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DeepScan reports whether a gitleaks pass is configured.
func (s *Sanitizer) DeepScan() bool {
	return s.deep != nil
}

// Text redacts s.
func (s *Sanitizer) Text(str string) string {
	out := Text(str)
	if s.deep != nil {
		out = s.deep.Redact(out)
	}
	return out
}

// Value deep-copies v through JSON and redacts every string leaf.
func (s *Sanitizer) Value(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return unsanitizable()
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var copied any
	if err := dec.Decode(&copied); err != nil {
		return unsanitizable()
	}
	return s.walk(copied)
}

func (s *Sanitizer) walk(v any) any {
	switch t := v.(type) {
	case string:
		return s.Text(t)
	case map[string]any:
		for k, child := range t {
			t[k] = s.walk(child)
		}
		return t
	case []any:
		for i, child := range t {
			t[i] = s.walk(child)
		}
		return t
	default:
		return v
	}
}

func unsanitizable() map[string]any {
	return map[string]any{"error": UnsanitizableMessage}
}
