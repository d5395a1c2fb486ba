// Package hooks connects the host's hook protocol to the gate.
//
// A Runner reads one JSON request from stdin, dispatches it by
// hook_event_name, writes an audit record, and reports the verdict: an
// approval payload on stdout with exit status 0, or a "BLOCKED:" diagnostic
// on stderr with exit status 2. Malformed input, internal errors and panics
// all allow the action; the gate never fails closed on its own bugs.
package hooks
