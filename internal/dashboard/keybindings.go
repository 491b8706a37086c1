package dashboard

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Key bindings.
const (
	keyQuit      = "q"
	keyForceQuit = "ctrl+c"
	keyRefresh   = "r"
	keyUp        = "up"
	keyUpVim     = "k"
	keyDown      = "down"
	keyDownVim   = "j"
	keyEnter     = "enter"
	keyEscape    = "esc"
	keyHelp      = "?"
)

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyQuit, keyForceQuit:
		m.quitting = true
		return m, tea.Quit

	case keyRefresh:
		// Force an immediate poll outside the tick cadence.
		if !m.polling {
			m.polling = true
			return m, m.pollCmd()
		}
		return m, nil

	case keyUp, keyUpVim:
		if m.viewMode == ViewDetail && m.vpReady {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case keyDown, keyDownVim:
		if m.viewMode == ViewDetail && m.vpReady {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
		if m.selected < len(m.snapshot.GPUs)-1 {
			m.selected++
		}
		return m, nil

	case keyEnter:
		if m.viewMode == ViewOverview && m.hasData {
			m.viewMode = ViewDetail
			if !m.vpReady {
				m.resizeViewport()
			}
			m.syncViewport()
			m.viewport.GotoTop()
		}
		return m, nil

	case keyEscape:
		if m.viewMode == ViewDetail {
			m.viewMode = ViewOverview
		} else if m.showHelp {
			m.showHelp = false
		}
		return m, nil

	case keyHelp:
		m.showHelp = !m.showHelp
		return m, nil
	}

	return m, nil
}
