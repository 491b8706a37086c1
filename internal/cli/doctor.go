package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/gpuwatch/gpuwatch/internal/doctor"
	"github.com/gpuwatch/gpuwatch/internal/errors"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Diagnose telemetry backends and configuration",
	Long: `Checks the environment gpuwatch depends on: the nvidia-smi binary,
a working telemetry query, NVML availability, the config file, and the
remote host when --host is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDoctor()
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().StringVar(&flagHost, "host", "", "also check a remote host over SSH")
	doctorCmd.Flags().StringVar(&flagSMIPath, "smi-path", "", "path to the nvidia-smi binary")
}

var (
	doctorPassStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	doctorWarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	doctorFailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	doctorDimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func runDoctor() error {
	checks := []doctor.Check{
		&doctor.ConfigCheck{ExplicitPath: flagConfig},
		&doctor.SMIBinaryCheck{Path: flagSMIPath},
		&doctor.SMIQueryCheck{Path: flagSMIPath},
		&doctor.NVMLCheck{},
	}
	if flagHost != "" {
		checks = append(checks, &doctor.RemoteCheck{Host: flagHost, SMIPath: flagSMIPath})
	}

	results := doctor.RunAll(checks)

	lastCategory := ""
	for i, check := range checks {
		if cat := check.Category(); cat != lastCategory {
			if lastCategory != "" {
				fmt.Println()
			}
			fmt.Println(doctorDimStyle.Render(cat))
			lastCategory = cat
		}

		r := results[i]
		fmt.Printf("  %s %s: %s\n", statusGlyph(r.Status), r.Name, r.Message)
		if r.Suggestion != "" && r.Status != doctor.StatusPass {
			fmt.Printf("    %s\n", doctorDimStyle.Render(r.Suggestion))
		}
	}

	fmt.Println()
	fmt.Println(doctor.Summary(results))

	if doctor.HasFailures(results) {
		return errors.New(errors.ErrStartup,
			"Some checks failed",
			"Fix the failures above and run 'gpuwatch doctor' again")
	}
	return nil
}

func statusGlyph(s doctor.CheckStatus) string {
	switch s {
	case doctor.StatusPass:
		return doctorPassStyle.Render("✓")
	case doctor.StatusWarn:
		return doctorWarnStyle.Render("⚠")
	default:
		return doctorFailStyle.Render("✗")
	}
}
