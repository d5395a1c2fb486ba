package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/toolgate/internal/action"
	"github.com/fyrsmithlabs/toolgate/internal/config"
	"github.com/fyrsmithlabs/toolgate/internal/logging"
	"github.com/fyrsmithlabs/toolgate/internal/sanitize"
)

// File names written in each directory.
const (
	FileJSONL = "pre_tool_use.jsonl"
	FileJSON  = "pre_tool_use.json"
)

const (
	dirPerm  = 0700
	filePerm = 0600

	defaultLockTimeout = 5 * time.Second
	lockRetryDelay     = 20 * time.Millisecond
)

// ErrLockTimeout is returned when the json-format lock cannot be acquired.
var ErrLockTimeout = errors.New("timeout waiting for audit lock")

// FileName returns the record file name for an audit format.
func FileName(format string) string {
	if format == config.AuditJSON {
		return FileJSON
	}
	return FileJSONL
}

// Sink writes audit records below a log directory.
type Sink struct {
	dir         string
	format      string
	sanitizer   *sanitize.Sanitizer
	logger      *logging.Logger
	lockTimeout time.Duration
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithLockTimeout bounds how long a json-format write waits for the lock.
func WithLockTimeout(d time.Duration) SinkOption {
	return func(s *Sink) {
		s.lockTimeout = d
	}
}

// NewSink creates a sink for dir in the given format ("jsonl" or "json").
// A relative dir is resolved against the process working directory.
// A nil sanitizer uses the built-in rules only; a nil logger discards.
func NewSink(dir, format string, san *sanitize.Sanitizer, logger *logging.Logger, opts ...SinkOption) *Sink {
	if san == nil {
		san = sanitize.New()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	s := &Sink{
		dir:         dir,
		format:      format,
		sanitizer:   san,
		logger:      logger,
		lockTimeout: defaultLockTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Paths returns the session and master file paths for a session ID.
func (s *Sink) Paths(sessionID string) (session, master string) {
	name := FileName(s.format)
	sid := sanitize.SessionID(sessionID)
	return filepath.Join(s.dir, sid, name), filepath.Join(s.dir, name)
}

// Write sanitizes rec and persists it to the session and master files.
// Both files are attempted; the returned error joins any failures.
func (s *Sink) Write(ctx context.Context, rec Record) error {
	rec = s.sanitize(rec)

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	sessionPath, masterPath := s.Paths(rec.SessionID)
	if _, err := sanitize.ValidatePath(sessionPath, s.dir); err != nil {
		return fmt.Errorf("invalid session log path: %w", err)
	}

	var errs []error
	for _, path := range []string{sessionPath, masterPath} {
		if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
			errs = append(errs, fmt.Errorf("failed to create log directory: %w", err))
			continue
		}
		if s.format == config.AuditJSON {
			err = s.rewriteArray(ctx, path, line)
		} else {
			err = appendLine(path, line)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}
	return errors.Join(errs...)
}

// Append writes rec and reports whether it was persisted. Failures are
// logged, never returned.
func (s *Sink) Append(ctx context.Context, rec Record) bool {
	ctx = logging.WithRecordID(ctx, rec.ID)
	if err := s.Write(ctx, rec); err != nil {
		s.logger.Warn(ctx, "failed to write audit record",
			zap.String("dir", s.dir),
			zap.String("format", s.format),
			zap.Error(err))
		return false
	}
	s.logger.Debug(ctx, "audit record written", zap.String("decision", rec.Decision))
	return true
}

func (s *Sink) sanitize(rec Record) Record {
	rec.SessionID = sanitize.SessionID(rec.SessionID)
	rec.Tool = s.sanitizer.Text(rec.Tool)
	rec.HookEvent = s.sanitizer.Text(rec.HookEvent)
	rec.Cwd = s.sanitizer.Text(rec.Cwd)
	rec.TranscriptPath = s.sanitizer.Text(rec.TranscriptPath)
	rec.Input = s.sanitizer.Value(rec.Input)
	if rec.truncate {
		rec.Input = action.Truncate(rec.Input)
	}
	rec.Reason = s.sanitizer.Text(rec.Reason)

	if len(rec.Warnings) > 0 {
		warnings := make([]string, len(rec.Warnings))
		for i, w := range rec.Warnings {
			warnings[i] = s.sanitizer.Text(w)
		}
		rec.Warnings = warnings
	}
	return rec
}

// appendLine writes line plus a newline in one write so concurrent appenders
// never interleave within a record.
func appendLine(path string, line []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		return fmt.Errorf("failed to open audit file: %w", err)
	}

	buf := make([]byte, 0, len(line)+1)
	buf = append(append(buf, line...), '\n')
	if _, err := f.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return f.Close()
}

// rewriteArray appends line to the JSON array at path. The lock file
// persists after Unlock; only the lock itself is released.
func (s *Sink) rewriteArray(ctx context.Context, path string, line []byte) error {
	fileLock := flock.New(path + ".lock")

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	locked, err := fileLock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLockTimeout, err)
	}
	if !locked {
		return ErrLockTimeout
	}
	defer func() {
		if err := fileLock.Unlock(); err != nil {
			s.logger.Warn(ctx, "failed to release audit lock", zap.String("path", path), zap.Error(err))
		}
	}()

	var records []json.RawMessage
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("failed to read audit file: %w", err)
	default:
		if err := json.Unmarshal(data, &records); err != nil {
			s.logger.Warn(ctx, "audit file is not a JSON array, starting a new one",
				zap.String("path", path), zap.Error(err))
			records = nil
		}
	}

	records = append(records, json.RawMessage(line))
	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal audit array: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, out, filePerm); err != nil {
		return fmt.Errorf("failed to write audit file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace audit file: %w", err)
	}
	return nil
}
