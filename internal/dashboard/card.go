package dashboard

import (
	"fmt"
	"strings"

	"github.com/gpuwatch/gpuwatch/internal/telemetry"
)

// renderCard draws one GPU's overview card: a title row, one bar row per
// headline metric, a status line, and a utilization sparkline.
func (m Model) renderCard(gpu telemetry.GPUSnapshot, selected bool) string {
	warn, crit := m.cfg.WarnThreshold, m.cfg.CritThreshold
	layout := m.layoutMode()

	barWidth := 40
	switch layout {
	case LayoutNarrow:
		barWidth = 20
	case LayoutWide:
		barWidth = 50
	}

	innerWidth := m.cardInnerWidth()
	sparkWidth := clampInt(innerWidth-10, 10, m.history.Size())

	var lines []string

	title := fmt.Sprintf("GPU %d: %s", gpu.Index, truncateWithEllipsis(gpu.Name, innerWidth-8))
	lines = append(lines, headerStyle.Render(title))

	barLine := func(label string, pct float64, text string) string {
		return fmt.Sprintf("%s %s %s",
			labelStyle.Render(fmt.Sprintf("%-5s", label)),
			ColoredBar(pct, barWidth, warn, crit),
			formatTiered(text, pct, warn, crit))
	}

	lines = append(lines,
		barLine("Util", gpu.UtilGPU, FormatPercent(gpu.UtilGPU)),
		barLine("Mem", gpu.MemoryPercent(),
			fmt.Sprintf("%s / %s", FormatMiB(gpu.MemoryUsedMiB), FormatMiB(gpu.MemoryTotalMiB))),
		barLine("Power", gpu.PowerPercent(),
			fmt.Sprintf("%s / %s", FormatValue(gpu.PowerDraw, "%.1f", " W"),
				FormatValue(gpu.PowerLimit, "%.0f", " W"))),
	)

	status := []string{
		labelStyle.Render("Temp ") + formatTiered(FormatValue(gpu.Temperature, "%.0f", "°C"), gpu.Temperature, warn, crit),
		labelStyle.Render("Fan ") + valueStyle.Render(FormatPercent(gpu.FanSpeed)),
	}
	if layout != LayoutNarrow {
		status = append(status,
			labelStyle.Render("Core ")+valueStyle.Render(FormatValue(gpu.ClockGraphics, "%.0f", " MHz")),
			labelStyle.Render("Mem ")+valueStyle.Render(FormatValue(gpu.ClockMemory, "%.0f", " MHz")))
	}
	lines = append(lines, strings.Join(status, "  "))

	if series := m.history.Utilization(gpu.Index, sparkWidth); len(series) > 1 {
		lines = append(lines,
			labelStyle.Render("Hist  ")+ColoredSparkline(series, sparkWidth, warn, crit))
	}

	style := cardBorderStyle
	if selected {
		style = selectedCardStyle
	}
	return style.Width(innerWidth).Render(strings.Join(lines, "\n"))
}

// cardInnerWidth is the usable content width inside a card's border.
func (m Model) cardInnerWidth() int {
	w := m.width - 4
	return clampInt(w, 40, 110)
}
