package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gpuwatch/gpuwatch/internal/errors"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 500*time.Millisecond, cfg.Interval)
	assert.Equal(t, 60, cfg.HistorySize)
	assert.Equal(t, BackendAuto, cfg.Backend)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"interval at minimum", func(c *Config) { c.Interval = MinInterval }, true},
		{"interval too short", func(c *Config) { c.Interval = 50 * time.Millisecond }, false},
		{"zero history", func(c *Config) { c.HistorySize = 0 }, false},
		{"negative history", func(c *Config) { c.HistorySize = -1 }, false},
		{"smi backend", func(c *Config) { c.Backend = BackendSMI }, true},
		{"nvml backend", func(c *Config) { c.Backend = BackendNVML }, true},
		{"unknown backend", func(c *Config) { c.Backend = "cuda" }, false},
		{"warn above crit", func(c *Config) { c.WarnThreshold = 95; c.CritThreshold = 90 }, false},
		{"warn equals crit", func(c *Config) { c.WarnThreshold = 90; c.CritThreshold = 90 }, false},
		{"crit above 100", func(c *Config) { c.CritThreshold = 120 }, false},
		{"negative warn", func(c *Config) { c.WarnThreshold = -1 }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
			}
		})
	}
}

func TestMarshalYAMLWritesReadableDurations(t *testing.T) {
	cfg := DefaultConfig()

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "interval: 500ms")
	assert.Contains(t, out, "poll_timeout: 5s")
	assert.Contains(t, out, "backend: auto")
	// Unset optional fields are omitted.
	assert.NotContains(t, out, "host:")
	assert.NotContains(t, out, "smi_path:")
}
