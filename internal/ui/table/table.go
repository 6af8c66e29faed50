// Package table wraps the bubbles table with columns sized by the
// layout engine.
package table

import (
	"fmt"
	"image/color"
	"strings"

	bubtable "charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/colfit/internal/formatter"
	"github.com/oakwood-commons/colfit/pkg/layout"
)

type Column = bubtable.Column
type Row = bubtable.Row

// Model displays rows of V in columns whose widths come from a
// layout.Result.
type Model[V any] struct {
	table    bubtable.Model
	styles   bubtable.Styles
	defs     []layout.Column
	columns  []Column
	result   *layout.Result
	rows     []V
	filter   string
	filtered []V

	toRow   func(V) Row
	keyFunc func(V) string

	width   int
	height  int
	focused bool
	noColor bool

	headerFG   color.Color
	headerBG   color.Color
	selectedFG color.Color
	selectedBG color.Color
}

// NewModel returns a table for defs. Until ApplyLayout is called every
// column is as wide as its header.
func NewModel[V any](defs []layout.Column, toRow func(V) Row, keyFunc func(V) string) *Model[V] {
	columns := make([]Column, len(defs))
	for i, d := range defs {
		columns[i] = Column{Title: d.Header(), Width: lipgloss.Width(d.Header())}
	}

	t := bubtable.New(
		bubtable.WithColumns(columns),
		bubtable.WithFocused(true),
		bubtable.WithHeight(5),
	)

	s := bubtable.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Bold(true).
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(0)
	s.Selected = s.Selected.PaddingLeft(0).PaddingRight(0)
	s.Cell = lipgloss.NewStyle().Align(lipgloss.Left).PaddingLeft(0).PaddingRight(0)
	t.SetStyles(s)

	return &Model[V]{
		table:   t,
		styles:  s,
		defs:    defs,
		columns: columns,
		toRow:   toRow,
		keyFunc: keyFunc,
		width:   80,
		height:  10,
		focused: true,
	}
}

// ApplyLayout resizes the columns to res. scale is the number of layout
// units per terminal cell. Columns missing from res keep their width.
func (m *Model[V]) ApplyLayout(res *layout.Result, scale float64) {
	if res == nil {
		return
	}
	m.result = res
	cells := formatter.CellWidths(res, scale)
	byField := make(map[string]int, len(res.Columns))
	for i, p := range res.Columns {
		byField[p.Field] = cells[i]
	}

	columns := make([]Column, len(m.defs))
	for i, d := range m.defs {
		columns[i] = m.columns[i]
		if w, ok := byField[d.Field]; ok {
			columns[i] = Column{Title: d.Header(), Width: w}
		}
	}
	m.columns = columns
	m.table.SetColumns(columns)
	m.table.SetWidth(m.width)
	m.applyColorScheme()
}

// Layout returns the result last applied, or nil.
func (m *Model[V]) Layout() *layout.Result {
	return m.result
}

// Columns returns the rendered column widths in cells.
func (m *Model[V]) Columns() []Column {
	return m.columns
}

// SetRows replaces the rows and reapplies the filter.
func (m *Model[V]) SetRows(rows []V) {
	m.rows = rows
	m.applyFilter()
}

func (m *Model[V]) Rows() []V {
	return m.filtered
}

func (m *Model[V]) AllRows() []V {
	return m.rows
}

// SetFilter keeps rows whose key contains filter, ignoring case.
func (m *Model[V]) SetFilter(filter string) {
	m.filter = filter
	m.applyFilter()
}

func (m *Model[V]) Filter() string {
	return m.filter
}

func (m *Model[V]) ClearFilter() {
	m.SetFilter("")
}

func (m *Model[V]) applyFilter() {
	if m.filter == "" {
		m.filtered = m.rows
	} else {
		needle := strings.ToLower(m.filter)
		m.filtered = make([]V, 0, len(m.rows))
		for _, row := range m.rows {
			if strings.Contains(strings.ToLower(m.keyFunc(row)), needle) {
				m.filtered = append(m.filtered, row)
			}
		}
	}

	tableRows := make([]Row, len(m.filtered))
	for i, row := range m.filtered {
		tableRows[i] = m.toRow(row)
	}
	m.table.SetRows(tableRows)

	if m.Cursor() >= len(m.filtered) && len(m.filtered) > 0 {
		m.SetCursor(0)
	}
}

func (m *Model[V]) Cursor() int {
	return m.table.Cursor()
}

func (m *Model[V]) SetCursor(pos int) {
	m.table.SetCursor(pos)
}

// SelectedRow returns the row under the cursor, or nil.
func (m *Model[V]) SelectedRow() *V {
	cursor := m.Cursor()
	if cursor < 0 || cursor >= len(m.filtered) {
		return nil
	}
	return &m.filtered[cursor]
}

// SetSize sets the viewport. Column widths change only through
// ApplyLayout.
func (m *Model[V]) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetWidth(width)
	m.table.SetHeight(height)
}

func (m *Model[V]) Focus() {
	m.focused = true
	m.table.Focus()
}

func (m *Model[V]) Blur() {
	m.focused = false
	m.table.Blur()
}

func (m *Model[V]) Focused() bool {
	return m.focused
}

func (m *Model[V]) SetNoColor(noColor bool) {
	m.noColor = noColor
	m.applyColorScheme()
}

// SetColors sets custom theme colors. Nil keeps the default.
func (m *Model[V]) SetColors(headerFG, headerBG, selectedFG, selectedBG color.Color) {
	m.headerFG = headerFG
	m.headerBG = headerBG
	m.selectedFG = selectedFG
	m.selectedBG = selectedBG
	m.applyColorScheme()
}

func (m *Model[V]) applyColorScheme() {
	s := m.styles
	if m.noColor {
		s.Header = s.Header.UnsetForeground().UnsetBackground()
		s.Selected = s.Selected.UnsetForeground().UnsetBackground().Reverse(true)
		s.Cell = s.Cell.UnsetForeground().UnsetBackground()
	} else {
		if m.headerFG != nil {
			s.Header = s.Header.Foreground(m.headerFG)
		}
		if m.headerBG != nil {
			s.Header = s.Header.Background(m.headerBG)
		}
		if m.selectedFG != nil {
			s.Selected = s.Selected.Foreground(m.selectedFG)
		}
		if m.selectedBG != nil {
			s.Selected = s.Selected.Background(m.selectedBG)
		}
	}
	m.table.SetStyles(s)
	m.styles = s
}

func (m *Model[V]) Update(msg tea.Msg) (*Model[V], tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model[V]) View() string {
	return m.table.View()
}

// Height returns the rendered height including the header.
func (m *Model[V]) Height() int {
	return lipgloss.Height(m.View())
}

func (m *Model[V]) Width() int {
	return lipgloss.Width(m.View())
}

func (m *Model[V]) String() string {
	total := 0
	if m.result != nil {
		total = m.result.TotalWidth
	}
	return fmt.Sprintf("Table[columns=%d, rows=%d, filtered=%d, cursor=%d, layout=%d]",
		len(m.columns), len(m.rows), len(m.filtered), m.Cursor(), total)
}
