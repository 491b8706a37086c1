package telemetry

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/gpuwatch/gpuwatch/internal/errors"
	"github.com/gpuwatch/gpuwatch/internal/logger"
	"github.com/gpuwatch/gpuwatch/pkg/sshutil"
)

// RemoteProvider runs the nvidia-smi queries on a single remote host over
// SSH. One host only; the snapshot shape is identical to the local
// provider's.
type RemoteProvider struct {
	client  *sshutil.Client
	host    string
	smiPath string
	timeout time.Duration
	log     logger.Logger
}

// NewRemote dials the host and returns a provider running nvidia-smi there.
// The host can be an SSH config alias, a hostname, or user@host.
func NewRemote(host, smiPath string, timeout time.Duration) (*RemoteProvider, error) {
	if strings.TrimSpace(smiPath) == "" {
		smiPath = DefaultSMIPath
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client, err := sshutil.Dial(host, timeout)
	if err != nil {
		return nil, err
	}

	return &RemoteProvider{
		client:  client,
		host:    host,
		smiPath: smiPath,
		timeout: timeout,
		log:     logger.NewEnvLogger("[remote]"),
	}, nil
}

func (r *RemoteProvider) Name() string { return "nvidia-smi@" + r.host }

func (r *RemoteProvider) Close() error { return r.client.Close() }

// Poll runs both queries over the existing SSH connection.
func (r *RemoteProvider) Poll(ctx context.Context) (Snapshot, error) {
	qctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.client.Output(qctx,
		r.smiPath+" --query-gpu="+strings.Join(gpuQueryFields, ",")+" --format=csv,noheader,nounits")
	if err != nil {
		return Snapshot{}, errors.WrapWithCode(err, errors.ErrTelemetry,
			"Remote nvidia-smi query failed",
			"Check nvidia-smi works on "+r.host)
	}

	gpus, err := ParseGPUCSV(out)
	if err != nil {
		return Snapshot{}, err
	}

	attachProcesses(gpus, r.queryProcesses(ctx))

	return Snapshot{Timestamp: time.Now(), GPUs: gpus}, nil
}

// queryProcesses is best-effort: any failure yields an empty process list.
func (r *RemoteProvider) queryProcesses(ctx context.Context) []processRow {
	qctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.client.Output(qctx,
		r.smiPath+" --query-compute-apps="+strings.Join(procQueryFields, ",")+" --format=csv,noheader,nounits")
	if err != nil {
		// nvidia-smi exits non-zero when no compute apps are running.
		var exitErr *sshutil.ExitError
		if !stderrors.As(err, &exitErr) {
			r.log.Debug("remote process query failed: %v", err)
		}
		return nil
	}
	return parseProcessCSV(out)
}
