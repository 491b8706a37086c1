package config

import "time"

// Backend names accepted by the provider selector.
const (
	BackendAuto = "auto"
	BackendNVML = "nvml"
	BackendSMI  = "smi"
)

// Defaults for the dashboard loop.
const (
	DefaultInterval    = 500 * time.Millisecond
	DefaultHistorySize = 60
	DefaultPollTimeout = 5 * time.Second

	// MinInterval guards against busy-looping the provider.
	MinInterval = 100 * time.Millisecond
)

// Default color tier thresholds (percent).
const (
	DefaultWarnThreshold = 70
	DefaultCritThreshold = 90
)

// Config holds all gpuwatch settings, merged from defaults, the config
// file, and command-line flags (flags win).
type Config struct {
	// Interval is the time between polls.
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`

	// HistorySize is the ring buffer capacity per metric per GPU.
	HistorySize int `mapstructure:"history" yaml:"history"`

	// Backend selects the telemetry provider: auto, nvml, or smi.
	Backend string `mapstructure:"backend" yaml:"backend"`

	// SMIPath overrides the nvidia-smi binary location.
	SMIPath string `mapstructure:"smi_path" yaml:"smi_path,omitempty"`

	// Host, when set, polls nvidia-smi on a remote machine over SSH
	// instead of the local one.
	Host string `mapstructure:"host" yaml:"host,omitempty"`

	// PollTimeout bounds a single provider poll.
	PollTimeout time.Duration `mapstructure:"poll_timeout" yaml:"poll_timeout"`

	// WarnThreshold and CritThreshold are the color tier boundaries
	// for percentage metrics.
	WarnThreshold float64 `mapstructure:"warn_threshold" yaml:"warn_threshold"`
	CritThreshold float64 `mapstructure:"crit_threshold" yaml:"crit_threshold"`
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		Interval:      DefaultInterval,
		HistorySize:   DefaultHistorySize,
		Backend:       BackendAuto,
		PollTimeout:   DefaultPollTimeout,
		WarnThreshold: DefaultWarnThreshold,
		CritThreshold: DefaultCritThreshold,
	}
}

// Validate checks the merged config for values the dashboard cannot run with.
func (c *Config) Validate() error {
	if c.Interval < MinInterval {
		return errIntervalTooShort(c.Interval)
	}
	if c.HistorySize <= 0 {
		return errHistoryInvalid(c.HistorySize)
	}
	switch c.Backend {
	case BackendAuto, BackendNVML, BackendSMI:
	default:
		return errBackendUnknown(c.Backend)
	}
	if c.WarnThreshold < 0 || c.CritThreshold > 100 || c.WarnThreshold >= c.CritThreshold {
		return errThresholdsInvalid(c.WarnThreshold, c.CritThreshold)
	}
	return nil
}

// MarshalYAML renders durations as human-readable strings so the file
// written by 'gpuwatch init' round-trips through the loader.
func (c *Config) MarshalYAML() (interface{}, error) {
	type fileConfig struct {
		Interval      string  `yaml:"interval"`
		HistorySize   int     `yaml:"history"`
		Backend       string  `yaml:"backend"`
		SMIPath       string  `yaml:"smi_path,omitempty"`
		Host          string  `yaml:"host,omitempty"`
		PollTimeout   string  `yaml:"poll_timeout"`
		WarnThreshold float64 `yaml:"warn_threshold"`
		CritThreshold float64 `yaml:"crit_threshold"`
	}
	return fileConfig{
		Interval:      c.Interval.String(),
		HistorySize:   c.HistorySize,
		Backend:       c.Backend,
		SMIPath:       c.SMIPath,
		Host:          c.Host,
		PollTimeout:   c.PollTimeout.String(),
		WarnThreshold: c.WarnThreshold,
		CritThreshold: c.CritThreshold,
	}, nil
}
