package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpuwatch/gpuwatch/internal/errors"
)

func fakeSMI(t *testing.T, script string) *SMIProvider {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("relies on shell scripts")
	}
	path := filepath.Join(t.TempDir(), "nvidia-smi")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return NewSMI(path, 2*time.Second)
}

func TestSMIProviderPoll(t *testing.T) {
	p := fakeSMI(t, `#!/bin/sh
case "$*" in
  *query-gpu*) echo "Fake GPU, 65, 100.00, 1000, 2000, 50, 30, 200.00, 1400, 7000, 40, GPU-fake" ;;
  *query-compute-apps*) echo "GPU-fake, 4242, /usr/bin/python3, 512" ;;
esac
`)

	snap, err := p.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.GPUs, 1)

	gpu := snap.GPUs[0]
	assert.Equal(t, "Fake GPU", gpu.Name)
	assert.Equal(t, 65.0, gpu.UtilGPU)
	assert.Equal(t, "GPU-fake", gpu.UUID)
	require.Len(t, gpu.Processes, 1)
	assert.Equal(t, "python3", gpu.Processes[0].Name)
	assert.False(t, snap.Timestamp.IsZero())
}

func TestSMIProviderPollNoProcesses(t *testing.T) {
	p := fakeSMI(t, `#!/bin/sh
case "$*" in
  *query-gpu*) echo "Fake GPU, 10, 50.00, 500, 2000, 40" ;;
  *query-compute-apps*) echo "No running processes found" >&2; exit 6 ;;
esac
`)

	snap, err := p.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.GPUs, 1)
	assert.Empty(t, snap.GPUs[0].Processes)
}

func TestSMIProviderPollBinaryFails(t *testing.T) {
	p := fakeSMI(t, `#!/bin/sh
echo "NVIDIA-SMI has failed" >&2
exit 9
`)

	_, err := p.Poll(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTelemetry))
}

func TestSMIProviderProcessFailureDoesNotInvalidateGPUs(t *testing.T) {
	p := fakeSMI(t, `#!/bin/sh
case "$*" in
  *query-gpu*) echo "Fake GPU, 10, 50.00, 500, 2000, 40" ;;
  *query-compute-apps*) echo "Field query error" >&2; exit 2 ;;
esac
`)

	snap, err := p.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.GPUs, 1)
	assert.Empty(t, snap.GPUs[0].Processes)
}
