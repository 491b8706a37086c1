package dashboard

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/gpuwatch/gpuwatch/internal/telemetry"
)

// Color palette.
var (
	colorGood    = lipgloss.Color("42")  // green, nominal tier
	colorWarn    = lipgloss.Color("214") // orange, elevated tier
	colorCrit    = lipgloss.Color("196") // red, critical tier
	colorAccent  = lipgloss.Color("39")  // blue, headers and labels
	colorMuted   = lipgloss.Color("241") // gray, secondary text
	colorText    = lipgloss.Color("252")
	colorStale   = lipgloss.Color("220") // yellow, stale-data banner
	colorTitle   = lipgloss.Color("205")
	colorDimmed  = lipgloss.Color("238")
	colorUnknown = lipgloss.Color("244")
)

// Shared styles.
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorTitle).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	valueStyle = lipgloss.NewStyle().
			Foreground(colorText)

	staleStyle = lipgloss.NewStyle().
			Foreground(colorStale).
			Bold(true)

	unknownStyle = lipgloss.NewStyle().
			Foreground(colorUnknown)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorMuted)

	cardBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDimmed).
			Padding(0, 1)

	selectedCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorAccent).
				Padding(0, 1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(colorMuted)
)

// TierColor maps a percentage-like value to its threshold tier color:
// green below warn, orange from warn up to crit, red at crit and above.
func TierColor(value, warn, crit float64) lipgloss.Color {
	switch {
	case value >= crit:
		return colorCrit
	case value >= warn:
		return colorWarn
	default:
		return colorGood
	}
}

// TieredValue renders a value tinted by its tier.
func TieredValue(text string, value, warn, crit float64) string {
	return lipgloss.NewStyle().Foreground(TierColor(value, warn, crit)).Render(text)
}

// FormatValue renders a numeric reading with a unit suffix, or "N/A"
// for the unknown sentinel.
func FormatValue(v float64, format, unit string) string {
	if !telemetry.Known(v) {
		return "N/A"
	}
	return fmt.Sprintf(format, v) + unit
}

// FormatPercent renders a percentage reading, or "N/A" when unknown.
func FormatPercent(v float64) string {
	return FormatValue(v, "%.0f", "%")
}

// FormatMiB renders a memory reading in MiB, or "N/A" when unknown.
func FormatMiB(v float64) string {
	return FormatValue(v, "%.0f", " MiB")
}

// truncateWithEllipsis shortens a string to maxLen runes, appending an
// ellipsis when truncated.
func truncateWithEllipsis(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen == 1 {
		return "…"
	}
	return string(runes[:maxLen-1]) + "…"
}
