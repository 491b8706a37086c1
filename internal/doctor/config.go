package doctor

import (
	"github.com/gpuwatch/gpuwatch/internal/config"
)

// ConfigCheck loads and validates the config file, if one exists.
type ConfigCheck struct {
	// ExplicitPath is the --config value; empty means discovery.
	ExplicitPath string
}

func (c *ConfigCheck) Name() string     { return "config file" }
func (c *ConfigCheck) Category() string { return "CONFIG" }

func (c *ConfigCheck) Run() CheckResult {
	path, err := config.Find(c.ExplicitPath)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    firstLine(err.Error()),
			Suggestion: "Check the --config path",
		}
	}

	if path == "" {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusPass,
			Message:    "no config file, using defaults",
			Suggestion: "Run 'gpuwatch init' to create one",
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    firstLine(err.Error()),
			Suggestion: "Fix the YAML in " + path,
		}
	}

	if err := cfg.Validate(); err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    firstLine(err.Error()),
			Suggestion: "Fix the values in " + path,
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: path,
	}
}
