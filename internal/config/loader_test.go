package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestHome points HOME at a temp dir and returns the config directory.
func setupTestHome(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(ConfigPathEnv, "")

	configDir := filepath.Join(home, ".config", "toolgate")
	require.NoError(t, os.MkdirAll(configDir, 0700))
	return configDir
}

func writeConfig(t *testing.T, dir, content string, perm os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	setupTestHome(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultLogDir, cfg.LogDir)
	assert.False(t, cfg.AllowSudo)
	assert.Equal(t, WarningsSmart, cfg.Warnings)
	assert.Equal(t, AuditJSONL, cfg.AuditFormat)
	assert.Equal(t, DefaultLargeFileKB, cfg.LargeFileKB)
	assert.Equal(t, DefaultBranchTimeout, cfg.BranchTimeout.Duration())
	assert.Equal(t, []string{"main", "master"}, cfg.ProtectedBranches)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.False(t, cfg.Disabled)
	for _, check := range Checks {
		assert.True(t, cfg.CheckEnabled(check), check)
	}
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, `log_dir: /var/log/toolgate
allow_sudo: true
warnings: "off"
audit_format: json
large_file_kb: 512
branch_timeout: 500ms
protected_branches: [main, release]
deep_scan: true
disable:
  directory_scan: true
`, 0600)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/var/log/toolgate", cfg.LogDir)
	assert.True(t, cfg.AllowSudo)
	assert.Equal(t, WarningsOff, cfg.Warnings)
	assert.False(t, cfg.WarningsEnabled())
	assert.Equal(t, AuditJSON, cfg.AuditFormat)
	assert.Equal(t, int64(512*1024), cfg.LargeFileBytes())
	assert.Equal(t, 500*time.Millisecond, cfg.BranchTimeout.Duration())
	assert.Equal(t, []string{"main", "release"}, cfg.ProtectedBranches)
	assert.True(t, cfg.DeepScan)
	assert.False(t, cfg.CheckEnabled(CheckDirectoryScan))
	assert.True(t, cfg.CheckEnabled(CheckSudo))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "log_dir: /from/file\nlarge_file_kb: 10\n", 0600)

	t.Setenv("TOOLGATE_LOG_DIR", "/from/env")
	t.Setenv("TOOLGATE_ALLOW_SUDO", "true")
	t.Setenv("TOOLGATE_BRANCH_TIMEOUT", "1s")
	t.Setenv("TOOLGATE_PROTECTED_BRANCHES", "trunk, prod")
	t.Setenv("TOOLGATE_DISABLE_FORCE_PUSH", "1")
	t.Setenv("TOOLGATE_DISABLED", "1")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/from/env", cfg.LogDir)
	assert.Equal(t, 10, cfg.LargeFileKB)
	assert.True(t, cfg.AllowSudo)
	assert.Equal(t, time.Second, cfg.BranchTimeout.Duration())
	assert.Equal(t, []string{"trunk", "prod"}, cfg.ProtectedBranches)
	assert.False(t, cfg.CheckEnabled(CheckForcePush))
	assert.True(t, cfg.Disabled)
}

func TestLoad_LegacyEnv(t *testing.T) {
	setupTestHome(t)
	t.Setenv("LAZYDEV_LOG_DIR", "/legacy/logs")
	t.Setenv("LAZYDEV_ALLOW_SUDO", "1")
	t.Setenv("LAZYDEV_WARNINGS", "bogus")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/legacy/logs", cfg.LogDir)
	assert.True(t, cfg.AllowSudo)
	assert.Equal(t, WarningsSmart, cfg.Warnings)

	t.Setenv("TOOLGATE_LOG_DIR", "/new/logs")
	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, "/new/logs", cfg.LogDir)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	dir := setupTestHome(t)
	path := writeConfig(t, dir, "audit_format: json\n", 0600)
	t.Setenv(ConfigPathEnv, path)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, AuditJSON, cfg.AuditFormat)
}

func TestLoad_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, dir string) string
		wantErr string
	}{
		{
			name: "outside allowed dirs",
			setup: func(t *testing.T, _ string) string {
				return filepath.Join(t.TempDir(), "config.yaml")
			},
			wantErr: "config path validation failed",
		},
		{
			name: "world readable",
			setup: func(t *testing.T, dir string) string {
				return writeConfig(t, dir, "allow_sudo: true\n", 0644)
			},
			wantErr: "insecure config file permissions",
		},
		{
			name: "too large",
			setup: func(t *testing.T, dir string) string {
				return writeConfig(t, dir, "# "+strings.Repeat("x", maxConfigFileSize)+"\n", 0600)
			},
			wantErr: "config file too large",
		},
		{
			name: "bad warnings mode",
			setup: func(t *testing.T, dir string) string {
				return writeConfig(t, dir, "warnings: loud\n", 0600)
			},
			wantErr: "invalid configuration",
		},
		{
			name: "unknown check",
			setup: func(t *testing.T, dir string) string {
				return writeConfig(t, dir, "disable:\n  everything: true\n", 0600)
			},
			wantErr: "unknown check",
		},
		{
			name: "bad duration",
			setup: func(t *testing.T, dir string) string {
				return writeConfig(t, dir, "branch_timeout: soon\n", 0600)
			},
			wantErr: "failed to unmarshal config",
		},
		{
			name: "timeout too long",
			setup: func(t *testing.T, dir string) string {
				return writeConfig(t, dir, "branch_timeout: 5m\n", 0600)
			},
			wantErr: "branch_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := setupTestHome(t)
			path := tt.setup(t, dir)

			_, err := Load(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTransformEnv(t *testing.T) {
	tests := []struct {
		key       string
		value     string
		wantKey   string
		wantValue interface{}
	}{
		{"TOOLGATE_LOG_DIR", "/x", "log_dir", "/x"},
		{"TOOLGATE_DISABLE_SUDO", "1", "disable.sudo", "1"},
		{"TOOLGATE_DISABLED", "1", "disabled", "1"},
		{"TOOLGATE_CONFIG", "/etc/toolgate/c.yaml", "", nil},
		{"TOOLGATE_PROTECTED_BRANCHES", "main,,dev", "protected_branches", []string{"main", "dev"}},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			key, value := transformEnv(tt.key, tt.value)
			assert.Equal(t, tt.wantKey, key)
			assert.Equal(t, tt.wantValue, value)
		})
	}
}
