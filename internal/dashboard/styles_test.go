package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gpuwatch/gpuwatch/internal/telemetry"
)

func TestTierColorBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		want  string
	}{
		{"well below warn", 10, string(colorGood)},
		{"just below warn", 69.9, string(colorGood)},
		{"at warn", 70, string(colorWarn)},
		{"between tiers", 85, string(colorWarn)},
		{"just below crit", 89.9, string(colorWarn)},
		{"at crit", 90, string(colorCrit)},
		{"above crit", 100, string(colorCrit)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(TierColor(tt.value, 70, 90)))
		})
	}
}

func TestFormatValueUnknown(t *testing.T) {
	assert.Equal(t, "N/A", FormatPercent(telemetry.Unknown()))
	assert.Equal(t, "N/A", FormatMiB(telemetry.Unknown()))
	assert.Equal(t, "N/A", FormatValue(telemetry.Unknown(), "%.1f", " W"))
}

func TestFormatValueKnown(t *testing.T) {
	assert.Equal(t, "65%", FormatPercent(65))
	assert.Equal(t, "8200 MiB", FormatMiB(8200))
	assert.Equal(t, "285.0 W", FormatValue(285, "%.1f", " W"))
	assert.Equal(t, "72°C", FormatValue(72, "%.0f", "°C"))
}

func TestTruncateWithEllipsis(t *testing.T) {
	assert.Equal(t, "short", truncateWithEllipsis("short", 10))
	assert.Equal(t, "exact", truncateWithEllipsis("exact", 5))
	assert.Equal(t, "long…", truncateWithEllipsis("longer name", 5))
	assert.Equal(t, "…", truncateWithEllipsis("anything", 1))
	assert.Equal(t, "", truncateWithEllipsis("anything", 0))
}
