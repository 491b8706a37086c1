package dashboard

import (
	"sync"

	"github.com/gpuwatch/gpuwatch/internal/telemetry"
)

// DefaultHistorySize is the default number of samples retained per metric.
const DefaultHistorySize = 60

// History manages rolling metric history for every GPU using fixed-size
// ring buffers. Buffers are allocated once per GPU and overwritten in
// place; a failed poll pushes nothing, so stale cycles never corrupt
// the window.
type History struct {
	mu   sync.RWMutex
	size int
	gpus map[int]*gpuHistory
}

// gpuHistory holds the ring buffers for a single GPU.
type gpuHistory struct {
	util   *ringBuffer
	memory *ringBuffer
	temp   *ringBuffer
	power  *ringBuffer
	fan    *ringBuffer
}

// ringBuffer is a fixed-size circular buffer for float64 values.
type ringBuffer struct {
	data  []float64
	head  int
	count int
	size  int
}

// NewHistory creates a history tracker with the specified buffer capacity.
func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &History{
		size: size,
		gpus: make(map[int]*gpuHistory),
	}
}

// Size returns the configured buffer capacity.
func (h *History) Size() int {
	return h.size
}

// Push records one sample per metric for every GPU in the snapshot.
// Unknown readings are skipped; the sentinel is never inserted.
func (h *History) Push(gpus []telemetry.GPUSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, gpu := range gpus {
		hist := h.getOrCreate(gpu.Index)

		if telemetry.Known(gpu.UtilGPU) {
			hist.util.push(gpu.UtilGPU)
		}
		if memPct := gpu.MemoryPercent(); telemetry.Known(memPct) {
			hist.memory.push(memPct)
		}
		if telemetry.Known(gpu.Temperature) {
			hist.temp.push(gpu.Temperature)
		}
		if powerPct := gpu.PowerPercent(); telemetry.Known(powerPct) {
			hist.power.push(powerPct)
		}
		if telemetry.Known(gpu.FanSpeed) {
			hist.fan.push(gpu.FanSpeed)
		}
	}
}

// Utilization returns the last count GPU utilization samples, oldest first.
func (h *History) Utilization(index, count int) []float64 {
	return h.get(index, count, func(g *gpuHistory) *ringBuffer { return g.util })
}

// Memory returns the last count memory-percent samples, oldest first.
func (h *History) Memory(index, count int) []float64 {
	return h.get(index, count, func(g *gpuHistory) *ringBuffer { return g.memory })
}

// Temperature returns the last count temperature samples, oldest first.
func (h *History) Temperature(index, count int) []float64 {
	return h.get(index, count, func(g *gpuHistory) *ringBuffer { return g.temp })
}

// Power returns the last count power-percent samples, oldest first.
func (h *History) Power(index, count int) []float64 {
	return h.get(index, count, func(g *gpuHistory) *ringBuffer { return g.power })
}

// Fan returns the last count fan-speed samples, oldest first.
func (h *History) Fan(index, count int) []float64 {
	return h.get(index, count, func(g *gpuHistory) *ringBuffer { return g.fan })
}

// Count returns the number of utilization samples stored for a GPU.
func (h *History) Count(index int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	hist, ok := h.gpus[index]
	if !ok {
		return 0
	}
	return hist.util.count
}

// Clear removes all history for every GPU.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.gpus = make(map[int]*gpuHistory)
}

func (h *History) get(index, count int, sel func(*gpuHistory) *ringBuffer) []float64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	hist, ok := h.gpus[index]
	if !ok {
		return nil
	}
	return sel(hist).getLast(count)
}

// getOrCreate returns the history for a GPU, creating it if needed.
// Must be called with h.mu held.
func (h *History) getOrCreate(index int) *gpuHistory {
	hist, ok := h.gpus[index]
	if !ok {
		hist = &gpuHistory{
			util:   newRingBuffer(h.size),
			memory: newRingBuffer(h.size),
			temp:   newRingBuffer(h.size),
			power:  newRingBuffer(h.size),
			fan:    newRingBuffer(h.size),
		}
		h.gpus[index] = hist
	}
	return hist
}

// newRingBuffer creates a ring buffer with the specified capacity.
func newRingBuffer(size int) *ringBuffer {
	return &ringBuffer{
		data: make([]float64, size),
		size: size,
	}
}

// push adds a value, evicting the oldest when full.
func (r *ringBuffer) push(value float64) {
	r.data[r.head] = value
	r.head = (r.head + 1) % r.size
	if r.count < r.size {
		r.count++
	}
}

// getLast returns the last count values in chronological order (oldest first).
func (r *ringBuffer) getLast(count int) []float64 {
	if count <= 0 || r.count == 0 {
		return nil
	}

	if count > r.count {
		count = r.count
	}

	result := make([]float64, count)

	// head points to the next write position, so the most recent value
	// is at head-1; take count values ending there.
	start := (r.head - count + r.size) % r.size

	for i := 0; i < count; i++ {
		result[i] = r.data[(start+i)%r.size]
	}

	return result
}
