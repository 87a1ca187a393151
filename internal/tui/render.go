package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/roach88/elemental/internal/canvas"
	"github.com/roach88/elemental/internal/engine"
	"github.com/roach88/elemental/internal/sidebar"
)

// Cell styles.
const (
	stylePlain = iota
	styleUntried
	styleHeld
	stylePending
	styleCount
)

var (
	cellStyles = [styleCount]lipgloss.Style{
		stylePlain:   lipgloss.NewStyle(),
		styleUntried: lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		styleHeld:    lipgloss.NewStyle().Bold(true),
		stylePending: lipgloss.NewStyle().Faint(true),
	}
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	pinnedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	statusStyle    = lipgloss.NewStyle().Reverse(true)
)

type cell struct {
	text  string
	style int
}

// grid is a canvas of terminal cells. A wide rune occupies its own cell and
// leaves empty continuation cells after it.
type grid struct {
	w, h  int
	cells [][]cell
}

func newGrid(w, h int) *grid {
	g := &grid{w: max(w, 0), h: max(h, 0)}
	g.cells = make([][]cell, g.h)
	for y := range g.cells {
		row := make([]cell, g.w)
		for x := range row {
			row[x] = cell{text: " "}
		}
		g.cells[y] = row
	}
	return g
}

// put writes text starting at column x of row y, clipping at the edges.
func (g *grid) put(x, y int, text string, style int) {
	if y < 0 || y >= g.h {
		return
	}
	row := g.cells[y]
	col, prev := x, -1
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			// Variation selectors and combining marks join the previous rune.
			if prev >= 0 {
				row[prev].text += string(r)
			}
			continue
		}
		if col >= 0 && col+rw <= g.w {
			row[col] = cell{text: string(r), style: style}
			for i := 1; i < rw; i++ {
				row[col+i] = cell{style: style}
			}
			prev = col
		} else {
			prev = -1
		}
		col += rw
	}
}

// label writes text centered the way the canvas model lays it out.
func (g *grid) label(box canvas.Box, pad int, text string, style int) {
	g.put(box.X+pad, box.Y+pad, text, style)
}

func (g *grid) row(y int) string {
	var b strings.Builder
	cells := g.cells[y]
	for start := 0; start < len(cells); {
		end := start
		var run strings.Builder
		for end < len(cells) && cells[end].style == cells[start].style {
			run.WriteString(cells[end].text)
			end++
		}
		if cells[start].style == stylePlain {
			b.WriteString(run.String())
		} else {
			b.WriteString(cellStyles[cells[start].style].Render(run.String()))
		}
		start = end
	}
	return b.String()
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading...\n"
	}

	v := m.engine.Snapshot()
	left := m.sidebarLeft()
	rows := max(m.height-1, 0)

	g := newGrid(left, rows)
	drawCanvas(g, v)
	side := m.sidebarLines(m.width-left, rows)

	var b strings.Builder
	for y := 0; y < rows; y++ {
		b.WriteString(g.row(y))
		b.WriteString(side[y])
		b.WriteByte('\n')
	}
	b.WriteString(m.statusLine(v))
	return b.String()
}

func drawCanvas(g *grid, v engine.View) {
	pad := v.Geometry.Padding
	for _, p := range v.Placements {
		style := stylePlain
		if p.Untried {
			style = styleUntried
		}
		g.label(p.Box, pad, p.Element.Label(), style)
	}
	for _, ph := range v.Placeholders {
		g.label(ph.Box, pad, engine.PendingLabel, stylePending)
	}
	if v.Held != nil {
		box := canvas.LabelBox(canvas.CellMetrics(), v.Held.Label(), v.Pointer.X, v.Pointer.Y, 0)
		g.put(box.X, box.Y, v.Held.Label(), styleHeld)
	}
}

// sidebarLines renders the sidebar as exactly rows lines of width w.
func (m Model) sidebarLines(w, rows int) []string {
	lines := make([]string, rows)
	inner := max(w-1, 0)
	sep := separatorStyle.Render("│")
	if w == 0 {
		return lines
	}

	text := make([]string, rows)
	if searchRow < rows {
		text[searchRow] = m.search.View()
	}
	if sortRow < rows {
		order := "asc"
		if m.sort.Descending {
			order = "desc"
		}
		text[sortRow] = fmt.Sprintf("sort %s %s  %d shown", m.sort.Sort, order, len(m.entries))
	}
	for y := firstEntry; y < m.listBottom() && y < rows; y++ {
		if e, ok := m.entryAt(y); ok {
			text[y] = entryLine(e, inner)
		}
	}
	if m.hover != "" {
		hover := sidebar.HoverText(m.hover, m.cache, m.ledger)
		if hover == "" {
			hover = m.hover + ": no known recipes"
		}
		for i, line := range strings.Split(hover, "\n") {
			y := m.listBottom() + i
			if y >= rows {
				break
			}
			text[y] = line
		}
	}

	for y := range lines {
		lines[y] = sep + fit(text[y], inner)
	}
	return lines
}

func entryLine(e sidebar.Entry, width int) string {
	line := "  " + e.Label()
	if e.Pinned {
		return pinnedStyle.Render("* ") + fit(e.Label(), max(width-2, 0))
	}
	return line
}

// fit pads or truncates s to exactly width display cells. Styled strings
// are measured without their escape sequences.
func fit(s string, width int) string {
	w := lipgloss.Width(s)
	if w > width {
		return runewidth.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-w)
}

func (m Model) statusLine(v engine.View) string {
	parts := []string{
		fmt.Sprintf("%d known", m.ledger.Len()),
		fmt.Sprintf("%d pending", len(v.Placeholders)),
		v.State.String(),
	}
	if v.Held != nil {
		parts = append(parts, "holding "+v.Held.Symbol)
	}
	if m.status != "" {
		parts = append(parts, m.status)
	}
	parts = append(parts, "esc cancel, ctrl+s sort, ctrl+o order, ctrl+c quit")
	return statusStyle.Render(fit(strings.Join(parts, " | "), m.width))
}
