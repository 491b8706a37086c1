// Package dashboard implements the live terminal dashboard: a Bubble Tea
// model that polls a telemetry provider on a fixed tick, keeps rolling
// metric history per GPU, and renders cards with bars and sparklines.
package dashboard

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gpuwatch/gpuwatch/internal/config"
	"github.com/gpuwatch/gpuwatch/internal/logger"
	"github.com/gpuwatch/gpuwatch/internal/telemetry"
)

// ViewMode selects what the main area shows.
type ViewMode int

const (
	// ViewOverview shows one card per GPU plus the process table.
	ViewOverview ViewMode = iota
	// ViewDetail shows a scrollable expanded view of the selected GPU.
	ViewDetail
)

// LayoutMode adapts rendering to the terminal width.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota
	LayoutNormal
	LayoutWide
)

// Layout breakpoints in columns.
const (
	narrowBreakpoint = 70
	wideBreakpoint   = 130
)

// Messages.
type (
	// tickMsg fires on the poll interval.
	tickMsg time.Time

	// pollResultMsg carries one completed poll, success or failure.
	pollResultMsg struct {
		snapshot telemetry.Snapshot
		err      error
	}
)

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	provider telemetry.Provider
	cfg      *config.Config
	log      logger.Logger

	// telemetry state
	snapshot   telemetry.Snapshot
	hasData    bool
	history    *History
	stale      bool
	staleSince time.Time
	lastErr    string

	// one poll in flight at a time; ticks during a slow poll are skipped
	polling bool

	// ui state
	width     int
	height    int
	viewMode  ViewMode
	selected  int
	showHelp  bool
	quitting  bool
	spinner  spinner.Model
	viewport viewport.Model
	vpReady  bool
}

// NewModel creates a dashboard model. An initial snapshot from the
// startup probe may be passed so the first frame renders real data.
func NewModel(provider telemetry.Provider, cfg *config.Config, initial *telemetry.Snapshot) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorAccent)

	m := Model{
		provider: provider,
		cfg:      cfg,
		log:      logger.Default(),
		history:  NewHistory(cfg.HistorySize),
		spinner:  sp,
	}

	if initial != nil && len(initial.GPUs) > 0 {
		m.snapshot = *initial
		m.hasData = true
		m.history.Push(initial.GPUs)
	}

	return m
}

// Init starts the tick loop and the spinner.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.tickCmd(),
		m.spinner.Tick,
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeViewport()
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{m.tickCmd()}
		if !m.polling {
			m.polling = true
			cmds = append(cmds, m.pollCmd())
		}
		return m, tea.Batch(cmds...)

	case pollResultMsg:
		m.polling = false
		if msg.err != nil {
			// Keep the previous snapshot on screen; mark it stale and
			// leave history untouched.
			if !m.stale {
				m.staleSince = time.Now()
			}
			m.stale = true
			m.lastErr = msg.err.Error()
			m.log.Debug("poll failed: %v", msg.err)
			return m, nil
		}
		m.snapshot = msg.snapshot
		m.hasData = true
		m.stale = false
		m.lastErr = ""
		m.history.Push(msg.snapshot.GPUs)
		m.clampSelection()
		if m.viewMode == ViewDetail {
			m.syncViewport()
		}
		return m, nil

	case spinner.TickMsg:
		if m.hasData {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.viewMode == ViewDetail && m.vpReady {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// tickCmd schedules the next poll tick.
func (m Model) tickCmd() tea.Cmd {
	return tea.Tick(m.cfg.Interval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// pollCmd runs one provider poll off the UI goroutine.
func (m Model) pollCmd() tea.Cmd {
	provider := m.provider
	timeout := m.cfg.PollTimeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		snap, err := provider.Poll(ctx)
		return pollResultMsg{snapshot: snap, err: err}
	}
}

// layoutMode picks a layout for the current terminal width.
func (m Model) layoutMode() LayoutMode {
	switch {
	case m.width > 0 && m.width < narrowBreakpoint:
		return LayoutNarrow
	case m.width >= wideBreakpoint:
		return LayoutWide
	default:
		return LayoutNormal
	}
}

// clampSelection keeps the selected GPU in range when the GPU count
// changes between polls.
func (m *Model) clampSelection() {
	if n := len(m.snapshot.GPUs); n > 0 && m.selected >= n {
		m.selected = n - 1
	}
}

// resizeViewport sizes the detail viewport to the current terminal.
func (m *Model) resizeViewport() {
	headerHeight := 3
	footerHeight := 2
	vh := m.height - headerHeight - footerHeight
	if vh < 1 {
		vh = 1
	}
	if !m.vpReady {
		m.viewport = viewport.New(m.width, vh)
		m.vpReady = true
	} else {
		m.viewport.Width = m.width
		m.viewport.Height = vh
	}
	if m.viewMode == ViewDetail {
		m.syncViewport()
	}
}

// syncViewport refreshes the detail view content.
func (m *Model) syncViewport() {
	if !m.vpReady {
		return
	}
	m.viewport.SetContent(m.renderDetail())
}
