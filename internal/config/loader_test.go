package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/gpuwatch/gpuwatch/internal/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadParsesValues(t *testing.T) {
	path := writeConfig(t, `
interval: 250ms
history: 120
backend: smi
smi_path: /opt/nvidia/bin/nvidia-smi
warn_threshold: 60
crit_threshold: 85
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.Equal(t, 120, cfg.HistorySize)
	assert.Equal(t, BackendSMI, cfg.Backend)
	assert.Equal(t, "/opt/nvidia/bin/nvidia-smi", cfg.SMIPath)
	assert.Equal(t, 60.0, cfg.WarnThreshold)
	assert.Equal(t, 85.0, cfg.CritThreshold)
}

func TestLoadMergesDefaultsIntoPartialFile(t *testing.T) {
	path := writeConfig(t, "interval: 1s\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.Interval)
	assert.Equal(t, DefaultHistorySize, cfg.HistorySize)
	assert.Equal(t, BackendAuto, cfg.Backend)
	assert.Equal(t, float64(DefaultWarnThreshold), cfg.WarnThreshold)
}

func TestLoadRejectsBrokenYAML(t *testing.T) {
	path := writeConfig(t, "interval: [unclosed\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFindExplicitMissingFileFails(t *testing.T) {
	_, err := Find(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFindExplicitExistingFile(t *testing.T) {
	path := writeConfig(t, "backend: smi\n")

	found, err := Find(path)
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestLoadOrDefaultWithoutAnyFile(t *testing.T) {
	// Point HOME at an empty directory so no global config is discovered.
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestInitOutputRoundTrips(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Interval = 250 * time.Millisecond
	cfg.Backend = BackendSMI

	data, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	path := writeConfig(t, string(data))
	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.Interval, loaded.Interval)
	assert.Equal(t, cfg.Backend, loaded.Backend)
	assert.Equal(t, cfg.WarnThreshold, loaded.WarnThreshold)
	require.NoError(t, loaded.Validate())
}
