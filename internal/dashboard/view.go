package dashboard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/gpuwatch/gpuwatch/internal/telemetry"
)

// View renders the current frame.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if !m.hasData {
		return m.renderConnecting()
	}

	if m.showHelp {
		return m.renderHelp()
	}

	if m.viewMode == ViewDetail {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.renderHeader(),
			m.viewport.View(),
			m.renderFooter(),
		)
	}

	sections := []string{m.renderHeader()}
	for i, gpu := range m.snapshot.GPUs {
		sections = append(sections, m.renderCard(gpu, i == m.selected))
	}
	if table := m.renderProcessTable(); table != "" {
		sections = append(sections, table)
	}
	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderConnecting shows the startup spinner before the first sample.
func (m Model) renderConnecting() string {
	msg := fmt.Sprintf("%s Waiting for first sample from %s...",
		m.spinner.View(), m.provider.Name())
	return "\n  " + msg + "\n\n  " + footerStyle.Render("q to quit") + "\n"
}

// renderHeader shows the title bar: app name, backend, GPU count, and
// the sample timestamp with a stale marker when polls are failing.
func (m Model) renderHeader() string {
	title := titleStyle.Render("gpuwatch")
	backend := labelStyle.Render(m.provider.Name())

	count := fmt.Sprintf("%d GPU", len(m.snapshot.GPUs))
	if len(m.snapshot.GPUs) != 1 {
		count += "s"
	}

	ts := valueStyle.Render(m.snapshot.Timestamp.Format("15:04:05"))
	status := ts
	if m.stale {
		status = staleStyle.Render(fmt.Sprintf("STALE (since %s)",
			m.staleSince.Format("15:04:05")))
	}

	left := title + "  " + backend + "  " + labelStyle.Render(count)

	if m.width > 0 {
		gap := m.width - lipgloss.Width(left) - lipgloss.Width(status)
		if gap > 1 {
			return left + strings.Repeat(" ", gap) + status + "\n"
		}
	}
	return left + "  " + status + "\n"
}

// renderFooter shows key hints and, when stale, the last poll error.
func (m Model) renderFooter() string {
	var hints []string
	switch m.viewMode {
	case ViewDetail:
		hints = []string{"esc back", "↑/↓ scroll", "r refresh", "q quit"}
	default:
		hints = []string{"↑/↓ select", "enter detail", "r refresh", "? help", "q quit"}
	}

	footer := footerStyle.Render(strings.Join(hints, " · "))
	if m.stale && m.lastErr != "" {
		footer += "\n" + staleStyle.Render("⚠ "+firstLine(m.lastErr))
	}
	return footer
}

// renderHelp shows the full key reference.
func (m Model) renderHelp() string {
	rows := []struct{ key, desc string }{
		{"↑/k, ↓/j", "select GPU (scroll in detail view)"},
		{"enter", "open detail view for the selected GPU"},
		{"esc", "return to the overview"},
		{"r", "poll immediately"},
		{"?", "toggle this help"},
		{"q, ctrl+c", "quit"},
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("Keys") + "\n\n")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("  %s  %s\n",
			helpKeyStyle.Render(fmt.Sprintf("%-10s", r.key)),
			helpDescStyle.Render(r.desc)))
	}
	sb.WriteString("\n" + footerStyle.Render("? or esc to close"))
	return sb.String()
}

// renderProcessTable lists compute processes across all GPUs.
func (m Model) renderProcessTable() string {
	var rows []string
	for _, gpu := range m.snapshot.GPUs {
		for _, p := range gpu.Processes {
			rows = append(rows, fmt.Sprintf("  %s %7d  %9s  %s",
				labelStyle.Render(fmt.Sprintf("GPU %d", gpu.Index)),
				p.PID,
				formatProcMemory(p.MemoryMiB),
				valueStyle.Render(truncateWithEllipsis(p.Name, m.procNameWidth()))))
		}
	}
	header := headerStyle.Render("Processes")
	if len(rows) == 0 {
		return header + "\n" + labelStyle.Render("  no compute processes")
	}

	header += "\n" + labelStyle.Render(fmt.Sprintf("  %-5s %7s  %9s  %s", "GPU", "PID", "Memory", "Name"))
	return header + "\n" + strings.Join(rows, "\n")
}

func (m Model) procNameWidth() int {
	w := m.width - 30
	if w < 12 {
		w = 12
	}
	return w
}

func formatProcMemory(mib float64) string {
	if !telemetry.Known(mib) {
		return "N/A"
	}
	return fmt.Sprintf("%.0f MiB", mib)
}

// renderDetail builds the expanded view of the selected GPU for the
// viewport.
func (m Model) renderDetail() string {
	if m.selected >= len(m.snapshot.GPUs) {
		return ""
	}
	gpu := m.snapshot.GPUs[m.selected]
	warn, crit := m.cfg.WarnThreshold, m.cfg.CritThreshold

	sparkWidth := m.width - 14
	sparkWidth = clampInt(sparkWidth, 10, m.history.Size())

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(fmt.Sprintf("GPU %d: %s", gpu.Index, gpu.Name)) + "\n")
	if gpu.UUID != "" {
		sb.WriteString(labelStyle.Render("  "+gpu.UUID) + "\n")
	}
	sb.WriteString("\n")

	barWidth := clampInt(m.width-30, 10, 40)

	writeMetric := func(label string, value float64, text string, series []float64) {
		sb.WriteString(fmt.Sprintf("  %s %s %s\n",
			labelStyle.Render(fmt.Sprintf("%-7s", label)),
			ColoredBar(value, barWidth, warn, crit),
			formatTiered(text, value, warn, crit)))
		sb.WriteString("          " + ColoredSparkline(series, sparkWidth, warn, crit) + "\n")
	}

	writeMetric("Util", gpu.UtilGPU, FormatPercent(gpu.UtilGPU),
		m.history.Utilization(gpu.Index, sparkWidth))
	writeMetric("Memory", gpu.MemoryPercent(),
		fmt.Sprintf("%s / %s", FormatMiB(gpu.MemoryUsedMiB), FormatMiB(gpu.MemoryTotalMiB)),
		m.history.Memory(gpu.Index, sparkWidth))
	writeMetric("Power", gpu.PowerPercent(),
		fmt.Sprintf("%s / %s", FormatValue(gpu.PowerDraw, "%.1f", " W"),
			FormatValue(gpu.PowerLimit, "%.0f", " W")),
		m.history.Power(gpu.Index, sparkWidth))

	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  %s %s   %s\n",
		labelStyle.Render("Temp   "),
		formatTiered(FormatValue(gpu.Temperature, "%.0f", "°C"), gpu.Temperature, warn, crit),
		ColoredSparkline(m.history.Temperature(gpu.Index, sparkWidth), sparkWidth, warn, crit)))
	sb.WriteString(fmt.Sprintf("  %s %s\n",
		labelStyle.Render("Fan    "), FormatPercent(gpu.FanSpeed)))
	sb.WriteString(fmt.Sprintf("  %s %s core / %s mem\n",
		labelStyle.Render("Clocks "),
		FormatValue(gpu.ClockGraphics, "%.0f", " MHz"),
		FormatValue(gpu.ClockMemory, "%.0f", " MHz")))
	sb.WriteString(fmt.Sprintf("  %s %s mem util\n",
		labelStyle.Render("MemBus "), FormatPercent(gpu.UtilMem)))

	if len(gpu.Processes) > 0 {
		sb.WriteString("\n" + headerStyle.Render("Processes") + "\n")
		for _, p := range gpu.Processes {
			sb.WriteString(fmt.Sprintf("  %7d  %9s  %s\n",
				p.PID, formatProcMemory(p.MemoryMiB), p.Name))
		}
	}

	return sb.String()
}

// formatTiered tints text by tier, or renders it dimmed for unknown
// readings.
func formatTiered(text string, value, warn, crit float64) string {
	if !telemetry.Known(value) {
		return unknownStyle.Render(text)
	}
	return TieredValue(text, value, warn, crit)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i != -1 {
		return s[:i]
	}
	return s
}
