package hooks

import (
	"context"
	"io"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/toolgate/internal/action"
	"github.com/fyrsmithlabs/toolgate/internal/audit"
	"github.com/fyrsmithlabs/toolgate/internal/config"
	"github.com/fyrsmithlabs/toolgate/internal/gate"
	"github.com/fyrsmithlabs/toolgate/internal/logging"
	"github.com/fyrsmithlabs/toolgate/internal/sanitize"
)

// Runner handles one hook invocation.
type Runner struct {
	cfg     *config.Config
	engine  *gate.Engine
	logger  *logging.Logger
	manager *HookManager

	// defaultEvent is used when the payload has no hook_event_name.
	defaultEvent HookType
}

// NewRunner creates a runner with the PreToolUse gate registered. engineOpts
// are passed to gate.NewEngine.
func NewRunner(cfg *config.Config, logger *logging.Logger, engineOpts ...gate.Option) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:          cfg,
		engine:       gate.NewEngine(cfg, logger.Named("gate"), engineOpts...),
		logger:       logger,
		manager:      NewHookManager(),
		defaultEvent: HookPreToolUse,
	}
	r.manager.RegisterHandler(HookPreToolUse, r.preToolUse)
	return r
}

// Run reads a request from stdin and returns the process exit status.
func (r *Runner) Run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer) (code int) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error(ctx, "hook panicked, allowing action", zap.Any("panic", p), zap.Stack("stack"))
			code = ExitAllow
		}
	}()

	req, err := action.Decode(stdin)
	if err != nil {
		r.logger.Warn(ctx, "ignoring malformed hook input", zap.Error(err))
		return ExitAllow
	}

	ctx = logging.WithSessionID(ctx, sanitize.SessionID(req.SessionID))
	ctx = logging.WithTool(ctx, req.Tool)

	if r.cfg.Disabled {
		r.logger.Debug(ctx, "gate disabled, allowing action")
		r.writeAllow(ctx, stdout, NewOutput(req, Result{}))
		return ExitAllow
	}

	event := HookType(req.HookEvent)
	if event == "" {
		event = r.defaultEvent
	}

	res, err := r.manager.Execute(ctx, event, req)
	if err != nil {
		r.logger.Error(ctx, "hook failed, allowing action", zap.Error(err))
		return ExitAllow
	}

	if res.Verdict.Blocked() {
		if err := WriteBlock(stderr, res.Verdict); err != nil {
			r.logger.Warn(ctx, "failed to write block diagnostic", zap.Error(err))
		}
		return ExitBlock
	}

	r.writeAllow(ctx, stdout, NewOutput(req, res))
	return ExitAllow
}

// preToolUse evaluates req and audits the verdict, blocked or not.
func (r *Runner) preToolUse(ctx context.Context, req *action.Request) (Result, error) {
	v := r.engine.Evaluate(ctx, req)

	sink := audit.NewSink(r.cfg.LogDir, r.cfg.AuditFormat, NewSanitizer(ctx, r.cfg, req.Cwd, r.logger), r.logger)
	logged := sink.Append(ctx, audit.NewRecord(req, v.Summary()))

	return Result{Verdict: v, Logged: logged}, nil
}

func (r *Runner) writeAllow(ctx context.Context, w io.Writer, out Output) {
	if err := WriteAllow(w, out); err != nil {
		r.logger.Warn(ctx, "failed to write hook output", zap.Error(err))
	}
}
