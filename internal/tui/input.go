package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/roach88/elemental/internal/engine"
)

func (m Model) mouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.X >= m.sidebarLeft() {
		return m.sidebarMouse(msg)
	}
	m.hover = ""

	action, button, ok := translate(msg)
	if !ok {
		return m, nil
	}
	m.selecting = false

	cmd := m.process(engine.PointerAt(action, button, msg.X, msg.Y))
	if action == engine.Press && button == engine.Primary {
		if m.isDoubleClick(msg.X, msg.Y) {
			m.lastPress = time.Time{}
			cmd = tea.Batch(cmd, m.process(engine.PointerAt(engine.DoubleClick, button, msg.X, msg.Y)))
		} else {
			m.lastPress, m.lastX, m.lastY = m.now(), msg.X, msg.Y
		}
	}
	m.refresh()
	return m, cmd
}

func (m Model) isDoubleClick(x, y int) bool {
	return x == m.lastX && y == m.lastY && m.now().Sub(m.lastPress) <= DoubleClickInterval
}

// sidebarMouse handles the sidebar columns. Pointer events still reach the
// engine so a held element follows the pointer and a release over the list
// returns it to the pool.
func (m Model) sidebarMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	entry, onEntry := m.entryAt(msg.Y)

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.scroll = max(m.scroll-1, 0)
		return m, nil

	case msg.Button == tea.MouseButtonWheelDown:
		m.scroll = min(m.scroll+1, max(len(m.entries)-1, 0))
		return m, nil

	case msg.Action == tea.MouseActionMotion:
		m.hover = ""
		if onEntry {
			m.hover = entry.Symbol
		}
		return m, m.process(engine.PointerAt(engine.Move, engine.ButtonNone, msg.X, msg.Y))

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonRight:
		if onEntry {
			m.pins.Toggle(entry.Symbol)
			m.refresh()
		}
		return m, nil

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if !onEntry || m.engine.State() != engine.Idle {
			return m, nil
		}
		m.selecting = true
		m.process(engine.SelectEvent(entry.Element))
		return m, m.process(engine.PointerAt(engine.Move, engine.ButtonNone, msg.X, msg.Y))

	case msg.Action == tea.MouseActionRelease:
		if m.selecting {
			m.selecting = false
			return m, nil
		}
		cmd := m.process(engine.PointerAt(engine.Release, engine.ButtonNone, msg.X, msg.Y))
		m.refresh()
		return m, cmd
	}
	return m, nil
}

// translate maps a terminal mouse message to an engine pointer event.
func translate(msg tea.MouseMsg) (engine.Action, engine.Button, bool) {
	var button engine.Button
	switch msg.Button {
	case tea.MouseButtonNone:
		button = engine.ButtonNone
	case tea.MouseButtonLeft:
		button = engine.Primary
	case tea.MouseButtonRight:
		button = engine.Secondary
	case tea.MouseButtonMiddle:
		button = engine.Tertiary
	default:
		return 0, 0, false
	}

	switch msg.Action {
	case tea.MouseActionPress:
		return engine.Press, button, true
	case tea.MouseActionRelease:
		return engine.Release, button, true
	case tea.MouseActionMotion:
		return engine.Move, engine.ButtonNone, true
	default:
		return 0, 0, false
	}
}
