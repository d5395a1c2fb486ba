// Package logging provides structured diagnostic logging for the gate.
//
// # Overview
//
// Logging package wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - Automatic context field injection (session, tool, audit record)
//   - Encoder-level secret redaction
//
// Diagnostics never go to stdout. The hook protocol reserves stdout for the
// verdict payload, so the default output is stderr and Validate rejects
// "stdout" as an output path.
//
// # Usage
//
//	cfg := logging.NewDefaultConfig()
//	logger, err := logging.NewLogger(cfg)
//	if err != nil {
//	    return err
//	}
//	defer logger.Sync()
//
//	ctx = logging.WithSessionID(ctx, "sess_123")
//	logger.Warn(ctx, "audit write failed", zap.Error(err))
//
// # Secret Redaction
//
// Field names such as "token" or "password" are replaced with [REDACTED],
// and string values matching the configured patterns are replaced with
// [REDACTED:pattern]. Use RedactedString to log only the length of a value.
//
// # Testing
//
//	tl := logging.NewTestLogger()
//	tl.Info(ctx, "test message", zap.String("key", "value"))
//	tl.AssertLogged(t, zapcore.InfoLevel, "test message")
//	tl.AssertField(t, "test message", "key", "value")
//	tl.AssertNotLogged(t, zapcore.WarnLevel, "audit write failed")
//	tl.AssertNoSecrets(t, "hunter2")
package logging
