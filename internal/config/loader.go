package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	envPrefix       = "TOOLGATE_"
	legacyEnvPrefix = "LAZYDEV_"
	disablePrefix   = "disable_"

	// ConfigPathEnv names the variable holding an explicit config file path.
	ConfigPathEnv = envPrefix + "CONFIG"
)

// legacyKeys are the only settings honoured under the LAZYDEV_ prefix.
var legacyKeys = map[string]bool{
	"log_dir":    true,
	"allow_sudo": true,
}

// UserDir returns ~/.config/toolgate, which holds config.yaml and the user
// secret allowlist.
func UserDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "toolgate"), nil
}

// Load loads configuration from an optional YAML file, then overrides with
// environment variables.
//
// Configuration precedence (highest to lowest):
//  1. TOOLGATE_* environment variables
//  2. Legacy LAZYDEV_LOG_DIR and LAZYDEV_ALLOW_SUDO
//  3. YAML config file (~/.config/toolgate/config.yaml)
//  4. Hardcoded defaults
//
// configPath selects the YAML file. When empty, TOOLGATE_CONFIG is consulted
// and then the default path. A missing file is not an error.
//
// # Security Considerations
//
// Only files under ~/.config/toolgate/ or /etc/toolgate/ can be loaded, they
// must have 0600 or 0400 permissions, and they must not exceed 1MB.
//
// # Environment Variable Mapping
//
//	TOOLGATE_LOG_DIR            -> log_dir
//	TOOLGATE_BRANCH_TIMEOUT     -> branch_timeout
//	TOOLGATE_DISABLE_FORCE_PUSH -> disable.force_push
//	TOOLGATE_PROTECTED_BRANCHES -> protected_branches (comma separated)
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		configPath = os.Getenv(ConfigPathEnv)
	}
	if configPath == "" {
		dir, err := UserDir()
		if err != nil {
			return nil, err
		}
		configPath = filepath.Join(dir, "config.yaml")
	}

	if err := validateConfigPath(configPath); err != nil {
		return nil, fmt.Errorf("config path validation failed: %w", err)
	}
	if err := loadFile(k, configPath); err != nil {
		return nil, err
	}

	if err := k.Load(env.ProviderWithValue(legacyEnvPrefix, ".", func(key, value string) (string, interface{}) {
		name := strings.ToLower(strings.TrimPrefix(key, legacyEnvPrefix))
		if !legacyKeys[name] {
			return "", nil
		}
		return name, value
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load legacy environment variables: %w", err)
	}

	if err := k.Load(env.ProviderWithValue(envPrefix, ".", transformEnv), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// transformEnv maps TOOLGATE_* variables onto config keys.
func transformEnv(key, value string) (string, interface{}) {
	name := strings.ToLower(strings.TrimPrefix(key, envPrefix))

	switch {
	case name == "config":
		return "", nil
	case name == "protected_branches":
		var branches []string
		for _, b := range strings.Split(value, ",") {
			if b = strings.TrimSpace(b); b != "" {
				branches = append(branches, b)
			}
		}
		return name, branches
	case strings.HasPrefix(name, disablePrefix):
		return "disable." + strings.TrimPrefix(name, disablePrefix), value
	}
	return name, value
}

// loadFile loads the YAML file at path into k if it exists.
func loadFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}

	// Validate the already-opened descriptor to avoid a TOCTOU race.
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := validateConfigFileProperties(info); err != nil {
		return fmt.Errorf("config file validation failed: %w", err)
	}

	content, err := io.ReadAll(io.LimitReader(f, maxConfigFileSize+1))
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	return nil
}

// validateConfigPath checks if path is in allowed directories.
// This validation runs even if the file doesn't exist yet.
func validateConfigPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	// Follow symlinks so a link cannot escape the allowed directories.
	resolvedPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		resolvedPath = absPath
	}

	userDir, err := UserDir()
	if err != nil {
		return err
	}

	allowedDirs := []string{userDir, "/etc/toolgate"}

	for _, dir := range allowedDirs {
		if resolvedPath == dir || strings.HasPrefix(resolvedPath, dir+string(filepath.Separator)) {
			return nil
		}
	}

	return fmt.Errorf("config file must be in ~/.config/toolgate/ or /etc/toolgate/")
}

// validateConfigFileProperties checks file permissions and size.
func validateConfigFileProperties(info os.FileInfo) error {
	// Skip on Windows (different permission model)
	if runtime.GOOS != "windows" {
		perm := info.Mode().Perm()
		if perm != 0600 && perm != 0400 {
			return fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
		}
	}

	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.LogDir == "" {
		cfg.LogDir = DefaultLogDir
	}
	if cfg.Warnings == "" {
		cfg.Warnings = WarningsSmart
	}
	if cfg.AuditFormat == "" {
		cfg.AuditFormat = AuditJSONL
	}
	if cfg.LargeFileKB == 0 {
		cfg.LargeFileKB = DefaultLargeFileKB
	}
	if cfg.BranchTimeout == 0 {
		cfg.BranchTimeout = Duration(DefaultBranchTimeout)
	}
	if len(cfg.ProtectedBranches) == 0 {
		cfg.ProtectedBranches = []string{"main", "master"}
	}
	if cfg.Disable == nil {
		cfg.Disable = map[string]bool{}
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "warn"
	}
}
