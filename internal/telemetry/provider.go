package telemetry

import (
	"os/exec"

	"github.com/gpuwatch/gpuwatch/internal/config"
	"github.com/gpuwatch/gpuwatch/internal/errors"
	"github.com/gpuwatch/gpuwatch/internal/logger"
)

// NewProvider constructs the provider selected by the config. With the
// auto backend, NVML is preferred and nvidia-smi is the fallback; a
// remote host always uses nvidia-smi over SSH.
func NewProvider(cfg *config.Config) (Provider, error) {
	if cfg.Host != "" {
		return NewRemote(cfg.Host, cfg.SMIPath, cfg.PollTimeout)
	}

	switch cfg.Backend {
	case config.BackendNVML:
		return NewNVML(), nil

	case config.BackendSMI:
		return newLocalSMI(cfg)

	default: // auto
		nv := NewNVML()
		if err := nv.Init(); err == nil {
			return nv, nil
		}
		logger.Default().Debug("NVML unavailable, falling back to nvidia-smi")
		return newLocalSMI(cfg)
	}
}

func newLocalSMI(cfg *config.Config) (Provider, error) {
	path := cfg.SMIPath
	if path == "" {
		path = DefaultSMIPath
	}
	if _, err := exec.LookPath(path); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStartup,
			"nvidia-smi not found",
			"Install the NVIDIA driver, or point --smi-path at the binary")
	}
	return NewSMI(path, cfg.PollTimeout), nil
}
