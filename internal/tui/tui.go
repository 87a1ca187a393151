// Package tui is the interactive terminal front end.
//
// The terminal grid is the canvas surface: one cell per unit, with the
// sidebar occupying the rightmost columns and a status line on the last row.
// Mouse messages become engine events; every oracle task the engine issues
// runs as a tea.Cmd whose resolution comes back through Update.
//
// # Thread Safety
//
// The model is used from the bubbletea event loop only. Oracle calls run in
// commands on other goroutines and touch nothing but the engine's Execute.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/roach88/elemental/internal/cache"
	"github.com/roach88/elemental/internal/engine"
	"github.com/roach88/elemental/internal/ledger"
	"github.com/roach88/elemental/internal/sidebar"
)

// DoubleClickInterval is the longest gap between two presses on the same
// cell that still counts as a double click.
const DoubleClickInterval = 400 * time.Millisecond

// Layout rows of the sidebar.
const (
	searchRow  = 0
	sortRow    = 1
	firstEntry = 2
	hoverLines = 6
)

// resolvedMsg carries a finished oracle task back into the loop.
type resolvedMsg struct {
	ev engine.Event
}

// Options configures a Model.
type Options struct {
	Engine *engine.Engine
	Ledger *ledger.Ledger
	Cache  *cache.Cache
	// Context bounds oracle calls. Defaults to context.Background.
	Context context.Context
	// Now is used for double-click detection. Defaults to time.Now.
	Now func() time.Time
}

// Model is the bubbletea model of a play session.
type Model struct {
	engine *engine.Engine
	ledger *ledger.Ledger
	cache  *cache.Cache
	ctx    context.Context
	now    func() time.Time

	search  textinput.Model
	pins    *sidebar.Pins
	sort    sidebar.Options
	entries []sidebar.Entry
	scroll  int
	hover   string

	width, height int

	// selecting is set between a sidebar press that picked an element and
	// the release that follows it, so that release does not drop it again.
	selecting bool

	lastPress    time.Time
	lastX, lastY int
	status       string
	quitting     bool
}

// New creates a Model.
func New(opts Options) Model {
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search"
	ti.CharLimit = 64
	ti.Focus()

	m := Model{
		engine: opts.Engine,
		ledger: opts.Ledger,
		cache:  opts.Cache,
		ctx:    opts.Context,
		now:    opts.Now,
		search: ti,
		pins:   &sidebar.Pins{},
	}
	m.refresh()
	return m
}

// Run starts the program on the alternate screen with full mouse tracking.
// It returns when the user quits or ctx is cancelled.
func Run(ctx context.Context, m Model, opts ...tea.ProgramOption) error {
	base := []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithContext(ctx),
	}
	p := tea.NewProgram(m, append(base, opts...)...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("terminal ui: %w", err)
	}
	return nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.search.Width = max(m.sidebarWidth()-len(m.search.Prompt)-2, 1)
		// The last row is the status line.
		return m, m.process(engine.ResizeEvent(msg.Width, max(msg.Height-1, 0)))

	case resolvedMsg:
		m.status = ""
		if r := msg.ev.Resolved; r != nil && r.Err != nil {
			m.status = "no result for " + strings.Join(r.Task.Key.Symbols(), " + ")
		}
		cmd := m.process(msg.ev)
		m.refresh()
		return m, cmd

	case tea.MouseMsg:
		return m.mouse(msg)

	case tea.KeyMsg:
		return m.key(msg)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		m.quitting = true
		return m, tea.Quit

	case "esc":
		if m.engine.State() != engine.Idle {
			return m, m.process(engine.CancelEvent())
		}
		m.search.SetValue("")
		m.scroll = 0
		m.refresh()
		return m, nil

	case "ctrl+s":
		m.sort.Sort = (m.sort.Sort + 1) % (sidebar.BySymbol + 1)
		m.refresh()
		return m, nil

	case "ctrl+o":
		m.sort.Descending = !m.sort.Descending
		m.refresh()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.scroll = 0
		m.refresh()
	}
	return m, cmd
}

// process applies ev and turns the tasks it issued into commands.
func (m Model) process(ev engine.Event) tea.Cmd {
	tasks := m.engine.Process(ev)
	if len(tasks) == 0 {
		return nil
	}
	cmds := make([]tea.Cmd, 0, len(tasks))
	for _, t := range tasks {
		cmds = append(cmds, func() tea.Msg {
			return resolvedMsg{ev: m.engine.Execute(m.ctx, t)}
		})
	}
	return tea.Batch(cmds...)
}

// refresh recomputes the sidebar entries from the ledger.
func (m *Model) refresh() {
	opts := m.sort
	opts.Query = m.search.Value()
	m.entries = sidebar.List(m.ledger.Elements(), m.pins, opts)
	m.scroll = min(m.scroll, max(len(m.entries)-1, 0))
}

func (m Model) sidebarWidth() int {
	return m.engine.Snapshot().Geometry.SidebarWidth
}

// sidebarLeft is the first column of the sidebar.
func (m Model) sidebarLeft() int {
	return max(m.width-m.sidebarWidth(), 0)
}

// entryAt returns the sidebar entry drawn on row y.
func (m Model) entryAt(y int) (sidebar.Entry, bool) {
	i := y - firstEntry + m.scroll
	if y < firstEntry || y >= m.listBottom() || i < 0 || i >= len(m.entries) {
		return sidebar.Entry{}, false
	}
	return m.entries[i], true
}

// listBottom is the first row below the entry list.
func (m Model) listBottom() int {
	return max(m.height-1-hoverLines, firstEntry)
}
