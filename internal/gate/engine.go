// Package gate combines detector results and advisory warnings into a single
// verdict per action.
//
// Checks run in a fixed order: sensitive path, sudo, destructive delete,
// force push, directory scan, command injection. Every enabled check runs so
// the audit record lists all matches; the first match decides. Warnings are
// generated only when nothing blocks.
package gate

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/toolgate/internal/action"
	"github.com/fyrsmithlabs/toolgate/internal/config"
	"github.com/fyrsmithlabs/toolgate/internal/detect"
	"github.com/fyrsmithlabs/toolgate/internal/logging"
	"github.com/fyrsmithlabs/toolgate/internal/warn"
	"github.com/fyrsmithlabs/toolgate/pkg/git"
)

// BranchLookup returns the branch checked out in dir.
type BranchLookup func(ctx context.Context, dir string, timeout time.Duration) (string, error)

// Engine evaluates actions against a configuration.
type Engine struct {
	cfg    *config.Config
	warn   *warn.Generator
	branch BranchLookup
	logger *logging.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithBranchLookup replaces the go-git branch lookup.
func WithBranchLookup(fn BranchLookup) Option {
	return func(e *Engine) {
		e.branch = fn
	}
}

// NewEngine creates an engine. A nil cfg uses config.Default().
func NewEngine(cfg *config.Config, logger *logging.Logger, opts ...Option) *Engine {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	e := &Engine{
		cfg:    cfg,
		warn:   warn.NewGenerator(cfg.LargeFileBytes(), cfg.ProtectedBranches),
		branch: git.CurrentBranch,
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// check is one entry in the evaluation order.
type check struct {
	name string
	run  func() detect.Result
}

// Evaluate returns the verdict for req.
func (e *Engine) Evaluate(ctx context.Context, req *action.Request) Verdict {
	currentBranch := e.branchOnce(ctx, req.Cwd)

	var (
		matched  []string
		decided  *check
		decision detect.Result
		command  string
	)
	for _, c := range e.checks(req, currentBranch, &command) {
		if !e.cfg.CheckEnabled(c.name) {
			continue
		}
		res := c.run()
		e.logger.Trace(ctx, "check evaluated",
			zap.String("check", c.name),
			zap.Bool("matched", res.Matched),
			zap.String("label", res.Label))
		if !res.Matched {
			continue
		}
		matched = append(matched, c.name)
		if decided == nil {
			decided, decision = &c, res
		}
	}

	if decided != nil {
		reason, hints := explain(decided.name, decision.Label, command)
		e.logger.Info(ctx, "action blocked",
			zap.String("check", decided.name),
			zap.String("label", decision.Label),
			zap.Strings("matched", matched),
			logging.RedactedString("command", command))
		return Verdict{
			Decision: Block,
			Reason:   reason,
			Detector: decided.name,
			Label:    decision.Label,
			Hints:    hints,
			Matched:  matched,
		}
	}

	v := Verdict{Decision: Allow, Matched: matched}
	if in, ok := req.File(); ok && e.cfg.WarningsEnabled() {
		v.Warnings = e.warn.Check(in, req.Cwd, currentBranch)
	}
	if len(v.Warnings) > 0 {
		v.Decision = AllowWithWarning
		e.logger.Debug(ctx, "action allowed with warnings", zap.Strings("warnings", v.Warnings))
	}
	return v
}

// checks builds the ordered check list for req. Shell checks share one parse.
func (e *Engine) checks(req *action.Request, currentBranch func() string, command *string) []check {
	if in, ok := req.Shell(); ok {
		*command = in.Command
		cmd := detect.ParseCommand(in.Command)

		checks := []check{
			{config.CheckSensitivePath, func() detect.Result { return detect.SensitiveCommand(cmd) }},
		}
		if !e.cfg.AllowSudo {
			checks = append(checks, check{config.CheckSudo, func() detect.Result { return detect.Sudo(cmd) }})
		}
		return append(checks,
			check{config.CheckDestructiveDelete, func() detect.Result { return detect.DestructiveDelete(cmd) }},
			check{config.CheckForcePush, func() detect.Result {
				return detect.ForcePush(cmd, e.cfg.ProtectedBranches, currentBranch)
			}},
			check{config.CheckDirectoryScan, func() detect.Result { return detect.DirectoryScan(cmd) }},
			check{config.CheckCommandInjection, func() detect.Result { return detect.CommandInjection(cmd) }},
		)
	}

	paths := requestPaths(req)
	return []check{
		{config.CheckSensitivePath, func() detect.Result {
			for _, p := range paths {
				if r := detect.SensitivePath(p); r.Matched {
					return r
				}
			}
			return detect.NoMatch
		}},
	}
}

// otherPathKeys are the tool_input fields treated as paths for tools the
// decoder does not model.
var otherPathKeys = []string{"file_path", "path", "notebook_path"}

func requestPaths(req *action.Request) []string {
	switch in := req.Input.(type) {
	case action.FileInput:
		return []string{in.Path}
	case action.OtherInput:
		var paths []string
		for _, k := range otherPathKeys {
			if s, ok := in.Fields[k].(string); ok && s != "" {
				paths = append(paths, s)
			}
		}
		return paths
	}
	return nil
}

// branchOnce returns a memoized branch lookup for dir. Lookup failures are
// logged and reported as "".
func (e *Engine) branchOnce(ctx context.Context, dir string) func() string {
	var (
		done   bool
		branch string
	)
	return func() string {
		if done {
			return branch
		}
		done = true

		if dir == "" {
			dir = "."
		}
		b, err := e.branch(ctx, dir, e.cfg.BranchTimeout.Duration())
		switch {
		case err == nil:
			branch = b
		case errors.Is(err, git.ErrTimeout):
			e.logger.Warn(ctx, "branch lookup timed out", zap.String("dir", dir), zap.Error(err))
		default:
			e.logger.Debug(ctx, "branch unknown", zap.String("dir", dir), zap.Error(err))
		}
		return branch
	}
}
