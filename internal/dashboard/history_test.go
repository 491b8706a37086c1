package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gpuwatch/gpuwatch/internal/telemetry"
)

func utilSample(index int, util float64) telemetry.GPUSnapshot {
	return telemetry.GPUSnapshot{
		Index:          index,
		Name:           "Test GPU",
		UtilGPU:        util,
		UtilMem:        telemetry.Unknown(),
		MemoryUsedMiB:  telemetry.Unknown(),
		MemoryTotalMiB: telemetry.Unknown(),
		Temperature:    telemetry.Unknown(),
		PowerDraw:      telemetry.Unknown(),
		PowerLimit:     telemetry.Unknown(),
		FanSpeed:       telemetry.Unknown(),
	}
}

func TestHistoryEvictsOldestAtCapacity(t *testing.T) {
	h := NewHistory(60)

	for i := 1; i <= 61; i++ {
		h.Push([]telemetry.GPUSnapshot{utilSample(0, float64(i))})
	}

	got := h.Utilization(0, 60)
	require.Len(t, got, 60)

	// 61 pushes into a 60-slot buffer: 1 fell off, 2..61 remain in order.
	assert.Equal(t, 2.0, got[0])
	assert.Equal(t, 61.0, got[59])
	for i, v := range got {
		assert.Equal(t, float64(i+2), v)
	}
}

func TestHistoryPartiallyFilled(t *testing.T) {
	h := NewHistory(60)

	for i := 1; i <= 5; i++ {
		h.Push([]telemetry.GPUSnapshot{utilSample(0, float64(i) * 10)})
	}

	assert.Equal(t, 5, h.Count(0))
	assert.Equal(t, []float64{10, 20, 30, 40, 50}, h.Utilization(0, 60))
	assert.Equal(t, []float64{40, 50}, h.Utilization(0, 2))
}

func TestHistorySkipsUnknownReadings(t *testing.T) {
	h := NewHistory(10)

	gpu := utilSample(0, telemetry.Unknown())
	h.Push([]telemetry.GPUSnapshot{gpu})

	assert.Equal(t, 0, h.Count(0))
	assert.Empty(t, h.Utilization(0, 10))
	assert.Empty(t, h.Temperature(0, 10))
}

func TestHistoryTracksMetricsIndependently(t *testing.T) {
	h := NewHistory(10)

	gpu := utilSample(0, 50)
	gpu.Temperature = 70
	gpu.FanSpeed = telemetry.Unknown()
	h.Push([]telemetry.GPUSnapshot{gpu})

	assert.Equal(t, []float64{50}, h.Utilization(0, 10))
	assert.Equal(t, []float64{70}, h.Temperature(0, 10))
	assert.Empty(t, h.Fan(0, 10))
}

func TestHistoryDerivesPercentages(t *testing.T) {
	h := NewHistory(10)

	gpu := utilSample(0, 50)
	gpu.MemoryUsedMiB = 8192
	gpu.MemoryTotalMiB = 16384
	gpu.PowerDraw = 150
	gpu.PowerLimit = 300
	h.Push([]telemetry.GPUSnapshot{gpu})

	assert.Equal(t, []float64{50}, h.Memory(0, 10))
	assert.Equal(t, []float64{50}, h.Power(0, 10))
}

func TestHistoryPerGPUBuffers(t *testing.T) {
	h := NewHistory(10)

	h.Push([]telemetry.GPUSnapshot{utilSample(0, 10), utilSample(1, 90)})

	assert.Equal(t, []float64{10}, h.Utilization(0, 10))
	assert.Equal(t, []float64{90}, h.Utilization(1, 10))
	assert.Empty(t, h.Utilization(7, 10))
}

func TestHistoryClear(t *testing.T) {
	h := NewHistory(10)
	h.Push([]telemetry.GPUSnapshot{utilSample(0, 42)})
	require.Equal(t, 1, h.Count(0))

	h.Clear()
	assert.Equal(t, 0, h.Count(0))
	assert.Empty(t, h.Utilization(0, 10))
}

func TestNewHistoryDefaultsInvalidSize(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, DefaultHistorySize, h.Size())

	h = NewHistory(-5)
	assert.Equal(t, DefaultHistorySize, h.Size())
}
