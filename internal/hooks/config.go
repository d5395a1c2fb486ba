package hooks

import (
	"context"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/toolgate/internal/config"
	"github.com/fyrsmithlabs/toolgate/internal/logging"
	"github.com/fyrsmithlabs/toolgate/internal/sanitize"
)

// UserAllowlistFile is the user-wide deep scan allowlist under config.UserDir.
const UserAllowlistFile = "allowlist.toml"

// NewSanitizer returns the sanitizer for a request in cwd. With deep_scan
// enabled it loads the project .gitleaks.toml and the user allowlist; any
// failure there is logged and the built-in rules are used alone.
func NewSanitizer(ctx context.Context, cfg *config.Config, cwd string, logger *logging.Logger) *sanitize.Sanitizer {
	if !cfg.DeepScan {
		return sanitize.New()
	}

	userFile := ""
	if dir, err := config.UserDir(); err == nil {
		userFile = filepath.Join(dir, UserAllowlistFile)
	}

	allowlist, err := sanitize.LoadAllowlists(cwd, userFile)
	if err != nil {
		logger.Warn(ctx, "ignoring secret allowlists", zap.Error(err))
		allowlist = nil
	}

	deep, err := sanitize.NewDeepScanner(allowlist)
	if err != nil {
		logger.Warn(ctx, "deep scan unavailable", zap.Error(err))
		return sanitize.New()
	}
	return sanitize.New(sanitize.WithDeepScanner(deep))
}
