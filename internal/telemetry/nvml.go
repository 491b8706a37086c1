package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/NVIDIA/go-nvml/pkg/nvml"

	"github.com/gpuwatch/gpuwatch/internal/errors"
	"github.com/gpuwatch/gpuwatch/internal/logger"
)

// NVMLProvider polls GPU telemetry through the NVML library bindings.
// Init is lazy so construction never fails; the first Poll surfaces a
// missing driver as a telemetry error.
type NVMLProvider struct {
	initialized bool
	log         logger.Logger
}

// NewNVML creates an NVML-backed provider.
func NewNVML() *NVMLProvider {
	return &NVMLProvider{log: logger.NewEnvLogger("[nvml]")}
}

func (p *NVMLProvider) Name() string { return "nvml" }

// Init loads the NVML library. Safe to call repeatedly.
func (p *NVMLProvider) Init() error {
	if p.initialized {
		return nil
	}
	if ret := nvml.Init(); ret != nvml.SUCCESS {
		return errors.WrapWithCode(
			fmt.Errorf("nvml init failed: %s", nvml.ErrorString(ret)),
			errors.ErrTelemetry,
			"NVML is not available",
			"Check the NVIDIA driver is installed, or use --backend smi")
	}
	p.initialized = true
	return nil
}

func (p *NVMLProvider) Close() error {
	if !p.initialized {
		return nil
	}
	_ = nvml.Shutdown()
	p.initialized = false
	return nil
}

// Poll reads every device through NVML. Mandatory fields (count, handle)
// fail the cycle; optional fields (power, clocks, fan, process names)
// degrade to Unknown.
func (p *NVMLProvider) Poll(ctx context.Context) (Snapshot, error) {
	_ = ctx // NVML calls are local and fast; no cancellation points

	if err := p.Init(); err != nil {
		return Snapshot{}, err
	}

	count, ret := nvml.DeviceGetCount()
	if ret != nvml.SUCCESS {
		return Snapshot{}, errors.WrapWithCode(
			fmt.Errorf("device count failed: %s", nvml.ErrorString(ret)),
			errors.ErrTelemetry,
			"NVML could not enumerate GPUs",
			"Check the NVIDIA driver state with nvidia-smi")
	}

	snap := Snapshot{Timestamp: time.Now(), GPUs: make([]GPUSnapshot, 0, count)}
	for i := 0; i < count; i++ {
		dev, ret := nvml.DeviceGetHandleByIndex(i)
		if ret != nvml.SUCCESS {
			return Snapshot{}, errors.WrapWithCode(
				fmt.Errorf("device handle %d failed: %s", i, nvml.ErrorString(ret)),
				errors.ErrTelemetry,
				"NVML could not open a GPU handle",
				"The driver may be restarting; will retry next poll")
		}
		snap.GPUs = append(snap.GPUs, p.readDevice(i, dev))
	}

	return snap, nil
}

func (p *NVMLProvider) readDevice(index int, dev nvml.Device) GPUSnapshot {
	gpu := GPUSnapshot{
		Index:          index,
		UtilGPU:        Unknown(),
		UtilMem:        Unknown(),
		MemoryUsedMiB:  Unknown(),
		MemoryTotalMiB: Unknown(),
		Temperature:    Unknown(),
		PowerDraw:      Unknown(),
		PowerLimit:     Unknown(),
		ClockGraphics:  Unknown(),
		ClockMemory:    Unknown(),
		FanSpeed:       Unknown(),
	}

	if name, ret := dev.GetName(); ret == nvml.SUCCESS {
		gpu.Name = name
	}
	if uuid, ret := dev.GetUUID(); ret == nvml.SUCCESS {
		gpu.UUID = uuid
	}
	if util, ret := dev.GetUtilizationRates(); ret == nvml.SUCCESS {
		gpu.UtilGPU = float64(util.Gpu)
		gpu.UtilMem = float64(util.Memory)
	}
	if mem, ret := dev.GetMemoryInfo(); ret == nvml.SUCCESS {
		gpu.MemoryUsedMiB = float64(mem.Used) / (1024 * 1024)
		gpu.MemoryTotalMiB = float64(mem.Total) / (1024 * 1024)
	}
	if temp, ret := dev.GetTemperature(nvml.TEMPERATURE_GPU); ret == nvml.SUCCESS {
		gpu.Temperature = float64(temp)
	}
	if power, ret := dev.GetPowerUsage(); ret == nvml.SUCCESS {
		gpu.PowerDraw = float64(power) / 1000 // mW → W
	}
	if limit, ret := dev.GetPowerManagementLimit(); ret == nvml.SUCCESS {
		gpu.PowerLimit = float64(limit) / 1000
	}
	if clock, ret := dev.GetClockInfo(nvml.CLOCK_GRAPHICS); ret == nvml.SUCCESS {
		gpu.ClockGraphics = float64(clock)
	}
	if clock, ret := dev.GetClockInfo(nvml.CLOCK_MEM); ret == nvml.SUCCESS {
		gpu.ClockMemory = float64(clock)
	}
	if fan, ret := dev.GetFanSpeed(); ret == nvml.SUCCESS {
		gpu.FanSpeed = float64(fan)
	}

	if procs, ret := dev.GetComputeRunningProcesses(); ret == nvml.SUCCESS {
		for _, pr := range procs {
			proc := GPUProcess{
				PID:       int(pr.Pid),
				MemoryMiB: float64(pr.UsedGpuMemory) / (1024 * 1024),
			}
			if name, ret := nvml.SystemGetProcessName(int(pr.Pid)); ret == nvml.SUCCESS {
				proc.Name = processBaseName(name)
			} else {
				proc.Name = "unknown"
			}
			gpu.Processes = append(gpu.Processes, proc)
		}
	}

	return gpu
}
