package doctor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubCheck struct {
	name   string
	status CheckStatus
}

func (s *stubCheck) Name() string     { return s.name }
func (s *stubCheck) Category() string { return "STUB" }
func (s *stubCheck) Run() CheckResult {
	return CheckResult{Name: s.name, Status: s.status}
}

func TestRunAllPreservesOrder(t *testing.T) {
	checks := []Check{
		&stubCheck{name: "first", status: StatusPass},
		&stubCheck{name: "second", status: StatusFail},
		&stubCheck{name: "third", status: StatusWarn},
	}

	results := RunAll(checks)
	require.Len(t, results, 3)
	assert.Equal(t, "first", results[0].Name)
	assert.Equal(t, StatusFail, results[1].Status)
	assert.Equal(t, StatusWarn, results[2].Status)
}

func TestHasFailures(t *testing.T) {
	assert.False(t, HasFailures([]CheckResult{{Status: StatusPass}, {Status: StatusWarn}}))
	assert.True(t, HasFailures([]CheckResult{{Status: StatusPass}, {Status: StatusFail}}))
	assert.False(t, HasFailures(nil))
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "Everything looks good", Summary([]CheckResult{{Status: StatusPass}}))
	assert.Equal(t, "1 issue found", Summary([]CheckResult{{Status: StatusFail}}))
	assert.Equal(t, "2 issues found", Summary([]CheckResult{{Status: StatusFail}, {Status: StatusWarn}}))
}

func TestSMIBinaryCheckMissingBinary(t *testing.T) {
	check := &SMIBinaryCheck{Path: "/definitely/not/here/nvidia-smi"}

	r := check.Run()
	assert.Equal(t, StatusFail, r.Status)
	assert.NotEmpty(t, r.Suggestion)
}

func TestConfigCheckValidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("interval: 1s\nbackend: smi\n"), 0o644))

	check := &ConfigCheck{ExplicitPath: path}
	r := check.Run()
	assert.Equal(t, StatusPass, r.Status)
	assert.Equal(t, path, r.Message)
}

func TestConfigCheckInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: cuda\n"), 0o644))

	check := &ConfigCheck{ExplicitPath: path}
	r := check.Run()
	assert.Equal(t, StatusFail, r.Status)
}

func TestConfigCheckMissingExplicitPath(t *testing.T) {
	check := &ConfigCheck{ExplicitPath: filepath.Join(t.TempDir(), "nope.yaml")}

	r := check.Run()
	assert.Equal(t, StatusFail, r.Status)
}

func TestConfigCheckNoFileUsesDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	check := &ConfigCheck{}
	r := check.Run()
	assert.Equal(t, StatusPass, r.Status)
	assert.Contains(t, r.Message, "defaults")
}
