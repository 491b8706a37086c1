package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/gpuwatch/gpuwatch/internal/telemetry"
)

// SMIBinaryCheck verifies nvidia-smi is on PATH (or at the configured
// location).
type SMIBinaryCheck struct {
	// Path overrides the binary to look for; empty means the default.
	Path string
}

func (c *SMIBinaryCheck) Name() string     { return "nvidia-smi binary" }
func (c *SMIBinaryCheck) Category() string { return "BACKEND" }

func (c *SMIBinaryCheck) Run() CheckResult {
	path := c.Path
	if path == "" {
		path = telemetry.DefaultSMIPath
	}

	resolved, err := exec.LookPath(path)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("%s not found", path),
			Suggestion: "Install the NVIDIA driver, or point --smi-path at the binary",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: resolved,
	}
}

// SMIQueryCheck runs a real telemetry query through nvidia-smi.
type SMIQueryCheck struct {
	Path    string
	Timeout time.Duration
}

func (c *SMIQueryCheck) Name() string     { return "nvidia-smi query" }
func (c *SMIQueryCheck) Category() string { return "BACKEND" }

func (c *SMIQueryCheck) Run() CheckResult {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	path := c.Path
	if path == "" {
		path = telemetry.DefaultSMIPath
	}

	provider := telemetry.NewSMI(path, timeout)
	defer provider.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	snap, err := provider.Poll(ctx)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "query failed: " + firstLine(err.Error()),
			Suggestion: "Run nvidia-smi by hand to see the driver error",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%d GPU(s) visible", len(snap.GPUs)),
	}
}

// NVMLCheck tries to initialize the NVML library.
type NVMLCheck struct{}

func (c *NVMLCheck) Name() string     { return "NVML library" }
func (c *NVMLCheck) Category() string { return "BACKEND" }

func (c *NVMLCheck) Run() CheckResult {
	provider := telemetry.NewNVML()
	if err := provider.Init(); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    "NVML unavailable: " + firstLine(err.Error()),
			Suggestion: "The nvml backend won't work; auto falls back to nvidia-smi",
		}
	}
	defer provider.Close()

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "initialized",
	}
}

func firstLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
