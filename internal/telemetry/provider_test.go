package telemetry

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpuwatch/gpuwatch/internal/config"
	"github.com/gpuwatch/gpuwatch/internal/errors"
)

func TestNewProviderSMIMissingBinary(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendSMI
	cfg.SMIPath = filepath.Join(t.TempDir(), "nvidia-smi")

	_, err := NewProvider(cfg)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrStartup))
}

func TestNewProviderSMIWithExistingBinary(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on unix exec permissions")
	}

	path := filepath.Join(t.TempDir(), "nvidia-smi")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))

	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendSMI
	cfg.SMIPath = path

	p, err := NewProvider(cfg)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, "nvidia-smi", p.Name())
}

func TestNewProviderNVMLBackend(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Backend = config.BackendNVML

	// NVML init is lazy, so construction succeeds even without a driver.
	p, err := NewProvider(cfg)
	require.NoError(t, err)
	defer p.Close()

	assert.Equal(t, "nvml", p.Name())
}
