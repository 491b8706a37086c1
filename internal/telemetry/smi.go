package telemetry

import (
	"bufio"
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/gpuwatch/gpuwatch/internal/errors"
	"github.com/gpuwatch/gpuwatch/internal/logger"
)

// DefaultSMIPath is the nvidia-smi binary looked up on PATH.
const DefaultSMIPath = "nvidia-smi"

// gpuQueryFields is the fixed field order of the GPU query. The first six
// (name, utilization, power draw, memory used/total, temperature) are the
// core fields; everything after them is optional and degrades to Unknown
// on older drivers that report fewer columns.
var gpuQueryFields = []string{
	"name",
	"utilization.gpu",
	"power.draw",
	"memory.used",
	"memory.total",
	"temperature.gpu",
	"utilization.memory",
	"power.limit",
	"clocks.gr",
	"clocks.mem",
	"fan.speed",
	"uuid",
}

// procQueryFields is the field order of the compute-apps query.
var procQueryFields = []string{"gpu_uuid", "pid", "process_name", "used_memory"}

// errNoResults marks an nvidia-smi run that succeeded but had nothing to
// report (no compute apps). Callers treat it as an empty list.
var errNoResults = stderrors.New("nvidia-smi: no results")

// SMIProvider polls GPU telemetry by shelling out to nvidia-smi and
// parsing its CSV output. Each invocation is bounded by Timeout.
type SMIProvider struct {
	BinaryPath string
	Timeout    time.Duration

	log logger.Logger
}

// NewSMI creates a provider around the given nvidia-smi binary path.
// An empty path uses the default PATH lookup.
func NewSMI(binaryPath string, timeout time.Duration) *SMIProvider {
	if strings.TrimSpace(binaryPath) == "" {
		binaryPath = DefaultSMIPath
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SMIProvider{
		BinaryPath: binaryPath,
		Timeout:    timeout,
		log:        logger.NewEnvLogger("[smi]"),
	}
}

func (s *SMIProvider) Name() string { return "nvidia-smi" }

func (s *SMIProvider) Close() error { return nil }

// Poll runs the GPU and compute-apps queries and assembles one snapshot.
func (s *SMIProvider) Poll(ctx context.Context) (Snapshot, error) {
	gpus, err := s.queryGPUs(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	procs, err := s.queryProcesses(ctx)
	if err != nil {
		// Process listing is optional; a failed process query never
		// invalidates the GPU readings.
		s.log.Debug("process query failed: %v", err)
		procs = nil
	}
	attachProcesses(gpus, procs)

	return Snapshot{Timestamp: time.Now(), GPUs: gpus}, nil
}

// queryGPUs invokes the GPU summary query and parses one record per GPU.
func (s *SMIProvider) queryGPUs(ctx context.Context) ([]GPUSnapshot, error) {
	qctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	out, err := s.run(qctx,
		"--query-gpu="+strings.Join(gpuQueryFields, ","),
		"--format=csv,noheader,nounits",
	)
	if err != nil {
		if stderrors.Is(err, errNoResults) {
			return nil, errors.New(errors.ErrTelemetry,
				"nvidia-smi reported no GPUs",
				"Check that an NVIDIA GPU is present and the driver is loaded")
		}
		return nil, errors.WrapWithCode(err, errors.ErrTelemetry,
			"nvidia-smi query failed",
			"Check that nvidia-smi works: nvidia-smi -L")
	}

	return ParseGPUCSV(out)
}

// queryProcesses invokes the compute-apps query. GPUs with no running
// processes yield an empty list, not an error.
func (s *SMIProvider) queryProcesses(ctx context.Context) ([]processRow, error) {
	qctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	out, err := s.run(qctx,
		"--query-compute-apps="+strings.Join(procQueryFields, ","),
		"--format=csv,noheader,nounits",
	)
	if err != nil {
		if stderrors.Is(err, errNoResults) {
			return nil, nil
		}
		return nil, err
	}

	return parseProcessCSV(out), nil
}

func (s *SMIProvider) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, s.BinaryPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		se := strings.TrimSpace(stderr.String())
		// Some driver versions print "No running processes found" on
		// stderr and exit non-zero.
		if strings.Contains(strings.ToLower(se), "no running process") {
			return nil, errNoResults
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("nvidia-smi timed out: %w", ctx.Err())
		}
		if se != "" {
			return nil, fmt.Errorf("nvidia-smi failed: %w: %s", err, se)
		}
		return nil, fmt.Errorf("nvidia-smi failed: %w", err)
	}
	return out, nil
}

// ParseGPUCSV parses the GPU summary CSV, one record per line in the
// gpuQueryFields order. A missing or unparseable field degrades to the
// Unknown sentinel; a response with zero parseable records is a hard
// failure for the poll cycle.
func ParseGPUCSV(out []byte) ([]GPUSnapshot, error) {
	lines := readCSVLines(out)
	gpus := make([]GPUSnapshot, 0, len(lines))

	for _, cols := range lines {
		gpu, ok := parseGPURecord(len(gpus), cols)
		if !ok {
			continue
		}
		gpus = append(gpus, gpu)
	}

	if len(gpus) == 0 {
		return nil, errors.New(errors.ErrTelemetry,
			"nvidia-smi output had no parseable GPU records",
			"Run nvidia-smi manually to inspect its output")
	}
	return gpus, nil
}

// parseGPURecord parses one CSV record. Only the name is mandatory; every
// numeric field is parsed defensively so one bad field cannot take down
// the rest of the snapshot.
func parseGPURecord(index int, cols []string) (GPUSnapshot, bool) {
	if len(cols) == 0 || cols[0] == "" {
		return GPUSnapshot{}, false
	}

	gpu := GPUSnapshot{
		Index:          index,
		Name:           cols[0],
		UtilGPU:        fieldAt(cols, 1),
		PowerDraw:      fieldAt(cols, 2),
		MemoryUsedMiB:  fieldAt(cols, 3),
		MemoryTotalMiB: fieldAt(cols, 4),
		Temperature:    fieldAt(cols, 5),
		UtilMem:        fieldAt(cols, 6),
		PowerLimit:     fieldAt(cols, 7),
		ClockGraphics:  fieldAt(cols, 8),
		ClockMemory:    fieldAt(cols, 9),
		FanSpeed:       fieldAt(cols, 10),
	}
	if len(cols) > 11 {
		gpu.UUID = cols[11]
	}
	return gpu, true
}

// fieldAt parses the numeric field at position i, returning Unknown for
// short records, "[N/A]" markers, and unparseable values.
func fieldAt(cols []string, i int) float64 {
	if i >= len(cols) {
		return Unknown()
	}
	return parseField(cols[i])
}

func parseField(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "[N/A]") || strings.EqualFold(s, "N/A") {
		return Unknown()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Unknown()
	}
	return v
}

// processRow is one compute-apps record prior to GPU association.
type processRow struct {
	GPUUUID string
	Proc    GPUProcess
}

func parseProcessCSV(out []byte) []processRow {
	lines := readCSVLines(out)
	rows := make([]processRow, 0, len(lines))

	for _, cols := range lines {
		if len(cols) < 4 {
			continue
		}
		pid, err := strconv.Atoi(cols[1])
		if err != nil {
			continue
		}
		rows = append(rows, processRow{
			GPUUUID: cols[0],
			Proc: GPUProcess{
				PID:       pid,
				Name:      processBaseName(cols[2]),
				MemoryMiB: parseField(cols[3]),
			},
		})
	}
	return rows
}

// attachProcesses associates compute-apps rows with GPUs by UUID. Rows
// whose UUID matches no GPU are dropped.
func attachProcesses(gpus []GPUSnapshot, rows []processRow) {
	if len(rows) == 0 {
		return
	}
	byUUID := make(map[string]*GPUSnapshot, len(gpus))
	for i := range gpus {
		if gpus[i].UUID != "" {
			byUUID[gpus[i].UUID] = &gpus[i]
		}
	}
	for _, row := range rows {
		gpu := byUUID[row.GPUUUID]
		if gpu == nil {
			continue
		}
		gpu.Processes = append(gpu.Processes, row.Proc)
	}
}

// processBaseName strips the path from a process executable name.
func processBaseName(name string) string {
	name = strings.TrimSpace(name)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return name
}

func readCSVLines(b []byte) [][]string {
	scanner := bufio.NewScanner(bytes.NewReader(b))
	out := [][]string{}
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cols := strings.Split(line, ",")
		for i := range cols {
			cols[i] = strings.TrimSpace(cols[i])
		}
		out = append(out, cols)
	}
	return out
}
