package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/gpuwatch/gpuwatch/internal/config"
	"github.com/gpuwatch/gpuwatch/internal/errors"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a config file interactively",
	Long: `Walks through the dashboard settings and writes them to
~/.config/gpuwatch/config.yaml (or the path given with --config).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit()
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit() error {
	path := flagConfig
	if path == "" {
		var err error
		path, err = config.GlobalConfigPath()
		if err != nil {
			return err
		}
	}

	if _, err := os.Stat(path); err == nil {
		var overwrite bool
		confirm := huh.NewForm(huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("%s already exists. Overwrite?", path)).
				Value(&overwrite),
		))
		if err := confirm.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Config setup cancelled", "")
		}
		if !overwrite {
			fmt.Println("Keeping the existing config.")
			return nil
		}
	}

	cfg := config.DefaultConfig()

	interval := cfg.Interval.String()
	warn := strconv.Itoa(int(cfg.WarnThreshold))
	crit := strconv.Itoa(int(cfg.CritThreshold))

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Telemetry backend").
				Description("auto tries NVML first and falls back to nvidia-smi").
				Options(
					huh.NewOption("auto (recommended)", config.BackendAuto),
					huh.NewOption("nvml", config.BackendNVML),
					huh.NewOption("nvidia-smi", config.BackendSMI),
				).
				Value(&cfg.Backend),

			huh.NewInput().
				Title("Poll interval").
				Description("How often to sample telemetry (e.g. 500ms, 1s)").
				Value(&interval).
				Validate(func(s string) error {
					d, err := time.ParseDuration(s)
					if err != nil {
						return fmt.Errorf("not a duration: %s", s)
					}
					if d < config.MinInterval {
						return fmt.Errorf("minimum interval is %s", config.MinInterval)
					}
					return nil
				}),

			huh.NewInput().
				Title("Warning threshold (%)").
				Description("Metrics at or above this render orange").
				Value(&warn).
				Validate(validatePercent),

			huh.NewInput().
				Title("Critical threshold (%)").
				Description("Metrics at or above this render red").
				Value(&crit).
				Validate(validatePercent),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Config setup cancelled", "")
	}

	cfg.Interval, _ = time.ParseDuration(interval)
	if v, err := strconv.ParseFloat(warn, 64); err == nil {
		cfg.WarnThreshold = v
	}
	if v, err := strconv.ParseFloat(crit, 64); err == nil {
		cfg.CritThreshold = v
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't create the config directory",
			fmt.Sprintf("Check permissions on %s", filepath.Dir(path)))
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't serialize the config", "")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't write the config file",
			fmt.Sprintf("Check permissions on %s", path))
	}

	fmt.Printf("Wrote %s\n", path)
	return nil
}

func validatePercent(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", s)
	}
	if v < 0 || v > 100 {
		return fmt.Errorf("must be between 0 and 100")
	}
	return nil
}
