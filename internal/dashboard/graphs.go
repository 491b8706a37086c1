package dashboard

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// sparklineBlocks are the eight glyph levels used for sparklines,
// lowest to highest.
var sparklineBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a series as block glyphs scaled to the observed
// min/max of the data. A flat series (max == min) renders every glyph
// at the lowest level. When the series is shorter than width it is
// left-padded with spaces so the newest sample stays right-aligned.
func Sparkline(data []float64, width int) string {
	if width <= 0 {
		return ""
	}
	if len(data) == 0 {
		return strings.Repeat(" ", width)
	}

	if len(data) > width {
		data = data[len(data)-width:]
	}

	min, max := findMinMax(data)
	span := max - min

	var sb strings.Builder
	if pad := width - len(data); pad > 0 {
		sb.WriteString(strings.Repeat(" ", pad))
	}
	for _, v := range data {
		level := 0
		if span > 0 {
			level = int(math.Floor(float64(len(sparklineBlocks)) * (v - min) / span))
			level = clampInt(level, 0, len(sparklineBlocks)-1)
		}
		sb.WriteRune(sparklineBlocks[level])
	}
	return sb.String()
}

// ColoredSparkline renders a sparkline tinted by the most recent value's
// threshold tier.
func ColoredSparkline(data []float64, width int, warn, crit float64) string {
	line := Sparkline(data, width)
	if len(data) == 0 {
		return line
	}
	color := TierColor(data[len(data)-1], warn, crit)
	return lipgloss.NewStyle().Foreground(color).Render(line)
}

// Bar renders a horizontal fill bar for a percentage in [0, 100].
// The filled cell count is floor(percent/100 * width); values outside
// the range are clamped first.
func Bar(percent float64, width int) string {
	if width <= 0 {
		return ""
	}
	percent = clampFloat(percent, 0, 100)

	filled := int(percent / 100 * float64(width))
	filled = clampInt(filled, 0, width)

	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// ColoredBar renders a fill bar with the filled portion tinted by the
// value's threshold tier and the empty portion dimmed.
func ColoredBar(percent float64, width int, warn, crit float64) string {
	if width <= 0 {
		return ""
	}
	percent = clampFloat(percent, 0, 100)

	filled := int(percent / 100 * float64(width))
	filled = clampInt(filled, 0, width)

	fillStyle := lipgloss.NewStyle().Foreground(TierColor(percent, warn, crit))
	emptyStyle := lipgloss.NewStyle().Foreground(colorMuted)

	return fillStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled))
}

// findMinMax returns the minimum and maximum of a non-empty series.
func findMinMax(data []float64) (float64, float64) {
	min, max := data[0], data[0]
	for _, v := range data[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
