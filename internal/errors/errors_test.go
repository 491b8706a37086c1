package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorFormatting(t *testing.T) {
	err := New(ErrStartup, "Could not read GPU telemetry", "Check that nvidia-smi works")

	out := err.Error()
	assert.Contains(t, out, "✗ Could not read GPU telemetry")
	assert.Contains(t, out, "Check that nvidia-smi works")
}

func TestErrorIncludesCause(t *testing.T) {
	cause := stderrors.New("exec: \"nvidia-smi\": executable file not found")
	err := WrapWithCode(cause, ErrStartup, "nvidia-smi not found", "Install the NVIDIA driver")

	out := err.Error()
	assert.Contains(t, out, "✗ nvidia-smi not found")
	assert.Contains(t, out, "executable file not found")
	assert.Contains(t, out, "Install the NVIDIA driver")
}

func TestWrapDefaultsToTelemetry(t *testing.T) {
	err := Wrap(stderrors.New("boom"), "poll failed")
	assert.Equal(t, ErrTelemetry, err.Code)
}

func TestUnwrap(t *testing.T) {
	cause := stderrors.New("root cause")
	err := WrapWithCode(cause, ErrSSH, "connect failed", "")

	assert.True(t, stderrors.Is(err, cause))
}

func TestIsCode(t *testing.T) {
	err := New(ErrConfig, "bad interval", "")

	assert.True(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(err, ErrTelemetry))
	assert.False(t, IsCode(nil, ErrConfig))
	assert.False(t, IsCode(stderrors.New("plain"), ErrConfig))
}

func TestIsCodeThroughWrapping(t *testing.T) {
	inner := New(ErrParse, "bad field", "")
	outer := WrapWithCode(inner, ErrTelemetry, "poll failed", "")

	var e *Error
	require.True(t, stderrors.As(outer, &e))
	assert.Equal(t, ErrTelemetry, e.Code)
}
