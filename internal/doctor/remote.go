package doctor

import (
	"context"
	"fmt"
	"time"

	"github.com/gpuwatch/gpuwatch/pkg/sshutil"
)

// RemoteCheck dials the configured host and runs nvidia-smi there.
// Only added when --host is set.
type RemoteCheck struct {
	Host    string
	SMIPath string
	Timeout time.Duration
}

func (c *RemoteCheck) Name() string     { return "remote host " + c.Host }
func (c *RemoteCheck) Category() string { return "SSH" }

func (c *RemoteCheck) Run() CheckResult {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client, err := sshutil.Dial(c.Host, timeout)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    firstLine(err.Error()),
			Suggestion: fmt.Sprintf("Try 'ssh %s' to debug the connection", c.Host),
		}
	}
	defer client.Close()

	smiPath := c.SMIPath
	if smiPath == "" {
		smiPath = "nvidia-smi"
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if _, err := client.Output(ctx, "command -v "+smiPath); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    "connected, but " + smiPath + " is missing there",
			Suggestion: "Install the NVIDIA driver on " + c.Host,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: "connected via " + client.Address,
	}
}
