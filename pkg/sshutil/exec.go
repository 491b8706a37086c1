package sshutil

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/crypto/ssh"

	"github.com/gpuwatch/gpuwatch/internal/errors"
)

// Output runs a command on the remote host and returns its stdout.
// The command is aborted when the context is cancelled; a non-zero exit
// is returned as an error carrying the remote stderr.
func (c *Client) Output(ctx context.Context, cmd string) ([]byte, error) {
	session, err := c.Client.NewSession()
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to create SSH session",
			"Connection may have been closed. Try reconnecting.")
	}
	defer session.Close()

	var stdout, stderr bytes.Buffer
	session.Stdout = &stdout
	session.Stderr = &stderr

	type result struct {
		err error
	}
	done := make(chan result, 1)
	go func() {
		done <- result{session.Run(cmd)}
	}()

	select {
	case <-ctx.Done():
		_ = session.Close()
		return nil, ctx.Err()
	case r := <-done:
		if r.err != nil {
			if exitErr, ok := r.err.(*ssh.ExitError); ok {
				return stdout.Bytes(), &ExitError{
					Status: exitErr.ExitStatus(),
					Stderr: stderr.String(),
				}
			}
			return nil, errors.WrapWithCode(r.err, errors.ErrSSH,
				fmt.Sprintf("Failed to execute command: %s", cmd),
				"Check if the command exists on the remote host.")
		}
		return stdout.Bytes(), nil
	}
}

// ExitError reports a remote command that ran but exited non-zero.
type ExitError struct {
	Status int
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("remote command exited %d: %s", e.Status, e.Stderr)
}
