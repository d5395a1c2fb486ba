package config

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefault_Validates(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty log dir", func(c *Config) { c.LogDir = "" }},
		{"bad audit format", func(c *Config) { c.AuditFormat = "csv" }},
		{"zero large file", func(c *Config) { c.LargeFileKB = 0 }},
		{"no protected branches", func(c *Config) { c.ProtectedBranches = nil }},
		{"blank protected branch", func(c *Config) { c.ProtectedBranches = []string{""} }},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }},
		{"zero timeout", func(c *Config) { c.BranchTimeout = 0 }},
		{"huge timeout", func(c *Config) { c.BranchTimeout = Duration(time.Hour) }},
		{"unknown disable", func(c *Config) { c.Disable = map[string]bool{"nope": true} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.True(t, errors.Is(err, ErrInvalid), "got %v", err)
		})
	}
}

func TestConfig_WarningsEnabled(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.WarningsEnabled())

	cfg.Disable[CheckWarnings] = true
	assert.False(t, cfg.WarningsEnabled())

	cfg = Default()
	cfg.Warnings = WarningsOff
	assert.False(t, cfg.WarningsEnabled())
}

func TestDuration_UnmarshalText(t *testing.T) {
	var d Duration
	assert.NoError(t, d.UnmarshalText([]byte("250ms")))
	assert.Equal(t, 250*time.Millisecond, d.Duration())

	assert.Error(t, d.UnmarshalText([]byte("-1s")))
	assert.Error(t, d.UnmarshalText([]byte("later")))

	out, err := d.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "250ms", string(out))
}
