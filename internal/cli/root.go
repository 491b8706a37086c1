// Package cli wires the cobra command tree: the root command runs the
// dashboard, with subcommands for config scaffolding and version info.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gpuwatch/gpuwatch/internal/config"
	"github.com/gpuwatch/gpuwatch/internal/dashboard"
	"github.com/gpuwatch/gpuwatch/internal/errors"
	"github.com/gpuwatch/gpuwatch/internal/logger"
	"github.com/gpuwatch/gpuwatch/internal/telemetry"
	"github.com/gpuwatch/gpuwatch/pkg/sshutil"
)

var (
	flagConfig   string
	flagInterval time.Duration
	flagHistory  int
	flagBackend  string
	flagSMIPath  string
	flagHost     string
)

var rootCmd = &cobra.Command{
	Use:   "gpuwatch",
	Short: "Live NVIDIA GPU dashboard for the terminal",
	Long: `gpuwatch polls GPU telemetry at sub-second intervals and renders a
flicker-free terminal dashboard: utilization, memory, temperature, power,
clocks, fan, and the processes using each GPU, with rolling sparkline
history and threshold coloring.

Telemetry comes from NVML when the driver library is available, falling
back to parsing nvidia-smi output. With --host, nvidia-smi runs on a
remote machine over SSH.

Examples:
  gpuwatch                       # watch local GPUs
  gpuwatch --interval 250ms      # faster refresh
  gpuwatch --backend smi         # force the nvidia-smi backend
  gpuwatch --host ml-box         # watch a remote host from ~/.ssh/config`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDashboard(cmd)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default ~/.config/gpuwatch/config.yaml)")
	rootCmd.Flags().DurationVarP(&flagInterval, "interval", "i", 0, "poll interval (e.g. 500ms, 2s)")
	rootCmd.Flags().IntVar(&flagHistory, "history", 0, "sparkline history length in samples")
	rootCmd.Flags().StringVarP(&flagBackend, "backend", "b", "", "telemetry backend: auto, nvml, or smi")
	rootCmd.Flags().StringVar(&flagSMIPath, "smi-path", "", "path to the nvidia-smi binary")
	rootCmd.Flags().StringVar(&flagHost, "host", "", "watch a remote host over SSH (alias, hostname, or user@host)")
}

// Execute runs the CLI and returns the exit code.
func Execute() int {
	defer sshutil.CloseAgent()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// runDashboard resolves configuration, checks the display surface,
// probes the telemetry provider once, then hands off to the TUI. Any
// failure before the first frame exits without touching the terminal.
func runDashboard(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New(errors.ErrDisplay,
			"Standard output is not a terminal",
			"Run gpuwatch directly in a terminal, not through a pipe")
	}

	provider, err := telemetry.NewProvider(cfg)
	if err != nil {
		return err
	}
	defer provider.Close()

	logger.Default().Debug("starting with backend %s, interval %s",
		provider.Name(), cfg.Interval)

	// Probe once before taking over the screen so a dead backend fails
	// fast with a plain error instead of a broken UI.
	probeCtx, cancel := context.WithTimeout(context.Background(), cfg.PollTimeout)
	initial, err := provider.Poll(probeCtx)
	cancel()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrStartup,
			"Could not read GPU telemetry",
			"Check that an NVIDIA driver is installed and nvidia-smi works")
	}

	model := dashboard.NewModel(provider, cfg, &initial)
	program := tea.NewProgram(model, tea.WithAltScreen())

	if _, err := program.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrDisplay,
			"Terminal UI crashed",
			"Check your terminal supports alternate-screen mode")
	}
	return nil
}

// loadConfig builds the effective config: file (explicit or discovered),
// then flag overrides, then validation.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(flagConfig)
	if err != nil {
		return nil, err
	}

	if cmd.Flags().Changed("interval") {
		cfg.Interval = flagInterval
	}
	if cmd.Flags().Changed("history") {
		cfg.HistorySize = flagHistory
	}
	if cmd.Flags().Changed("backend") {
		cfg.Backend = flagBackend
	}
	if cmd.Flags().Changed("smi-path") {
		cfg.SMIPath = flagSMIPath
	}
	if cmd.Flags().Changed("host") {
		cfg.Host = flagHost
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
