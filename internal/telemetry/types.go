// Package telemetry acquires per-GPU metrics from a pluggable provider:
// the NVML library, a local nvidia-smi subprocess, or nvidia-smi executed
// on a remote host over SSH. All providers return the same snapshot shape.
package telemetry

import (
	"context"
	"math"
	"time"
)

// GPUProcess is one compute process running on a GPU.
type GPUProcess struct {
	PID       int
	Name      string
	MemoryMiB float64
}

// GPUSnapshot is a point-in-time reading of one GPU. Numeric fields that
// the provider could not report carry the Unknown sentinel (NaN) and
// display as "N/A"; they are never substituted with zeros.
type GPUSnapshot struct {
	Index int
	Name  string
	UUID  string

	UtilGPU float64 // percent
	UtilMem float64 // memory controller utilization, percent

	MemoryUsedMiB  float64
	MemoryTotalMiB float64

	Temperature float64 // °C
	PowerDraw   float64 // W
	PowerLimit  float64 // W

	ClockGraphics float64 // MHz
	ClockMemory   float64 // MHz

	FanSpeed float64 // percent

	Processes []GPUProcess
}

// Snapshot is one polled reading of all detected GPUs.
type Snapshot struct {
	Timestamp time.Time
	GPUs      []GPUSnapshot
}

// Provider returns structured snapshots or a typed failure. Implementations
// must honor the context deadline; a poll is never allowed to block the
// render loop indefinitely.
type Provider interface {
	// Poll returns one snapshot per detected GPU, in index order.
	Poll(ctx context.Context) (Snapshot, error)
	// Name identifies the backend for logging and the dashboard header.
	Name() string
	// Close releases backend resources (NVML shutdown, SSH connection).
	Close() error
}

// Unknown returns the sentinel for a field the provider could not report.
func Unknown() float64 {
	return math.NaN()
}

// Known reports whether a numeric field holds a real reading.
func Known(v float64) bool {
	return !math.IsNaN(v)
}

// MemoryPercent derives used-memory percentage, or Unknown when either
// side of the ratio is missing.
func (g GPUSnapshot) MemoryPercent() float64 {
	if !Known(g.MemoryUsedMiB) || !Known(g.MemoryTotalMiB) || g.MemoryTotalMiB <= 0 {
		return Unknown()
	}
	return g.MemoryUsedMiB / g.MemoryTotalMiB * 100
}

// PowerPercent derives power draw as a percentage of the limit, or Unknown.
func (g GPUSnapshot) PowerPercent() float64 {
	if !Known(g.PowerDraw) || !Known(g.PowerLimit) || g.PowerLimit <= 0 {
		return Unknown()
	}
	return g.PowerDraw / g.PowerLimit * 100
}
