package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gpuwatch/gpuwatch/internal/errors"
	"github.com/spf13/viper"
)

const (
	// GlobalConfigDir is the directory for the config file, under $HOME.
	GlobalConfigDir = ".config/gpuwatch"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yaml"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'gpuwatch init' to create one, or specify a path with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. ~/.config/gpuwatch/config.yaml
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	home, _ := os.UserHomeDir()
	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads config from the found path, or returns defaults if
// no config file exists. This keeps 'gpuwatch' runnable with zero setup.
func LoadOrDefault(explicit string) (*Config, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}

	if path == "" {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// GlobalConfigPath returns the canonical config file location, creating
// nothing. Used by 'gpuwatch init' to decide where to write.
func GlobalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine home directory",
			"Set HOME and try again")
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile), nil
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	return cfg, nil
}

// setDefaults configures viper defaults so partial config files merge cleanly.
func setDefaults(v *viper.Viper) {
	v.SetDefault("interval", DefaultInterval.String())
	v.SetDefault("history", DefaultHistorySize)
	v.SetDefault("backend", BackendAuto)
	v.SetDefault("poll_timeout", DefaultPollTimeout.String())
	v.SetDefault("warn_threshold", DefaultWarnThreshold)
	v.SetDefault("crit_threshold", DefaultCritThreshold)
}

func errIntervalTooShort(d time.Duration) error {
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Interval %s is too short", d),
		fmt.Sprintf("Use %s or longer to avoid overwhelming the driver", MinInterval))
}

func errHistoryInvalid(n int) error {
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("History size %d is invalid", n),
		"Use a positive number of samples, e.g. 60")
}

func errBackendUnknown(b string) error {
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Unknown backend '%s'", b),
		"Supported backends: auto, nvml, smi")
}

func errThresholdsInvalid(warn, crit float64) error {
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Thresholds %.0f/%.0f are invalid", warn, crit),
		"warn_threshold must be below crit_threshold, both within 0-100")
}
