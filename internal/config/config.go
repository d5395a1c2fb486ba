// Package config provides configuration loading for toolgate.
//
// A Config is built once per hook invocation from defaults, an optional YAML
// file and environment variables, then passed explicitly to every component.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Check names used by the decision engine and the disable map.
const (
	CheckSensitivePath     = "sensitive_path"
	CheckSudo              = "sudo"
	CheckDestructiveDelete = "destructive_delete"
	CheckForcePush         = "force_push"
	CheckDirectoryScan     = "directory_scan"
	CheckCommandInjection  = "command_injection"
	CheckWarnings          = "warnings"
)

// Checks lists every check in evaluation order.
var Checks = []string{
	CheckSensitivePath,
	CheckSudo,
	CheckDestructiveDelete,
	CheckForcePush,
	CheckDirectoryScan,
	CheckCommandInjection,
	CheckWarnings,
}

// Warning modes.
const (
	WarningsSmart = "smart"
	WarningsOff   = "off"
)

// Audit formats.
const (
	AuditJSONL = "jsonl"
	AuditJSON  = "json"
)

const (
	DefaultLogDir        = ".claude/data/logs"
	DefaultLargeFileKB   = 100
	DefaultBranchTimeout = 2 * time.Second
	maxBranchTimeout     = 30 * time.Second
)

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the complete toolgate configuration.
type Config struct {
	// LogDir is the audit root. Relative paths resolve against the hook's
	// working directory.
	LogDir      string `koanf:"log_dir" validate:"required"`
	AllowSudo   bool   `koanf:"allow_sudo"`
	Warnings    string `koanf:"warnings" validate:"oneof=smart off"`
	AuditFormat string `koanf:"audit_format" validate:"oneof=jsonl json"`
	LargeFileKB int    `koanf:"large_file_kb" validate:"gte=1"`

	BranchTimeout     Duration `koanf:"branch_timeout"`
	ProtectedBranches []string `koanf:"protected_branches" validate:"min=1,dive,required"`

	// DeepScan enables the gitleaks pass over audit records.
	DeepScan bool `koanf:"deep_scan"`

	// Disable turns individual checks off by name.
	Disable map[string]bool `koanf:"disable"`

	// Disabled is the kill switch: every action is allowed and nothing is audited.
	Disabled bool `koanf:"disabled"`

	LogLevel string `koanf:"log_level" validate:"oneof=trace debug info warn error"`
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// CheckEnabled reports whether the named check should run.
func (c *Config) CheckEnabled(name string) bool {
	return !c.Disable[name]
}

// WarningsEnabled reports whether advisory warnings are generated.
func (c *Config) WarningsEnabled() bool {
	return c.Warnings == WarningsSmart && c.CheckEnabled(CheckWarnings)
}

// LargeFileBytes returns the large-file threshold in bytes.
func (c *Config) LargeFileBytes() int64 {
	return int64(c.LargeFileKB) * 1024
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	timeout := c.BranchTimeout.Duration()
	if timeout <= 0 || timeout > maxBranchTimeout {
		return fmt.Errorf("%w: branch_timeout must be within (0, %s], got %s", ErrInvalid, maxBranchTimeout, timeout)
	}

	for name := range c.Disable {
		if !slices.Contains(Checks, name) {
			return fmt.Errorf("%w: unknown check %q in disable (known: %s)", ErrInvalid, name, strings.Join(Checks, ", "))
		}
	}

	return nil
}
