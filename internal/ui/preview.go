// Package ui is the interactive layout preview: a table that is laid
// out again whenever the terminal width settles.
package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/go-logr/logr"

	"github.com/oakwood-commons/colfit/internal/formatter"
	"github.com/oakwood-commons/colfit/internal/measure"
	"github.com/oakwood-commons/colfit/internal/session"
	"github.com/oakwood-commons/colfit/internal/ui/table"
	"github.com/oakwood-commons/colfit/pkg/layout"
)

// DefaultStep is how much one grow or shrink changes a column, in
// layout units.
const DefaultStep = 2

// chromeHeight is the status line above the table and the help line
// below it.
const chromeHeight = 2

// PreviewConfig wires a preview to its collaborators.
type PreviewConfig struct {
	Columns   []layout.Column
	Overrides layout.Overrides
	Rows      []map[string]any

	Session  *session.Session
	Provider *measure.Provider

	// Scale is layout units per terminal cell. Zero means 1.
	Scale float64
	// Step is the override increment. Zero means DefaultStep.
	Step    int
	NoColor bool
	// Theme colors the preview. Unset colors use DefaultTheme.
	Theme Theme
	Log   logr.Logger
}

// widthMsg carries a debounced width from the provider.
type widthMsg struct {
	width int
	ok    bool
}

// waitForWidth blocks on the provider channel and delivers the next
// settled width.
func waitForWidth(ch <-chan int) tea.Cmd {
	return func() tea.Msg {
		w, ok := <-ch
		return widthMsg{width: w, ok: ok}
	}
}

// PreviewModel is the bubbletea model of the preview.
type PreviewModel struct {
	cfg       PreviewConfig
	table     *table.Model[map[string]any]
	styles    previewStyles
	overrides layout.Overrides
	result    *layout.Result

	width    int // settled width in cells
	height   int
	selected int
	notice   string
	quitting bool
}

// NewPreviewModel returns a model for cfg. Session and Provider are
// required.
func NewPreviewModel(cfg PreviewConfig) *PreviewModel {
	if cfg.Scale <= 0 {
		cfg.Scale = 1
	}
	if cfg.Step <= 0 {
		cfg.Step = DefaultStep
	}
	if cfg.Log.GetSink() == nil {
		cfg.Log = logr.Discard()
	}
	cfg.Theme = cfg.Theme.withDefaults()

	columns := cfg.Columns
	toRow := func(row map[string]any) table.Row {
		out := make(table.Row, len(columns))
		for i, c := range columns {
			out[i] = formatter.Stringify(row[c.Field])
		}
		return out
	}
	keyFn := func(row map[string]any) string {
		if len(columns) == 0 {
			return ""
		}
		return formatter.Stringify(row[columns[0].Field])
	}

	tbl := table.NewModel(columns, toRow, keyFn)
	tbl.SetColors(cfg.Theme.HeaderFG, cfg.Theme.HeaderBG, cfg.Theme.SelectedFG, cfg.Theme.SelectedBG)
	tbl.SetNoColor(cfg.NoColor)
	tbl.SetRows(cfg.Rows)

	m := &PreviewModel{
		cfg:       cfg,
		table:     tbl,
		styles:    cfg.Theme.styles(),
		overrides: cfg.Overrides.Clone(),
		width:     cfg.Provider.Current(),
		height:    24,
	}
	if m.width > 0 {
		m.relayout()
	}
	return m
}

func (m *PreviewModel) Init() tea.Cmd {
	return waitForWidth(m.cfg.Provider.Widths())
}

func (m *PreviewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.height = msg.Height
		m.table.SetSize(max(m.width, 1), max(m.height-chromeHeight, 1))
		m.cfg.Provider.Notify(msg.Width)
		return m, nil

	case widthMsg:
		if !msg.ok {
			return m, nil
		}
		m.width = msg.width
		m.relayout()
		return m, waitForWidth(m.cfg.Provider.Widths())

	case tea.KeyPressMsg:
		return m.handleKey(msg.String())
	}
	return m, nil
}

func (m *PreviewModel) handleKey(key string) (tea.Model, tea.Cmd) {
	m.notice = ""
	switch actionFor(key) {
	case ActionQuit:
		m.quitting = true
		m.cfg.Provider.Close()
		return m, tea.Quit
	case ActionFit:
		opts := m.cfg.Session.Options()
		opts.FitToContainer = !opts.FitToContainer
		m.cfg.Session.SetOptions(opts)
	case ActionFilters:
		opts := m.cfg.Session.Options()
		opts.Filters = !opts.Filters
		m.cfg.Session.SetOptions(opts)
	case ActionGrow:
		m.resizeSelected(m.cfg.Step)
	case ActionShrink:
		m.resizeSelected(-m.cfg.Step)
	case ActionReset:
		m.overrides = layout.Overrides{}
	case ActionCopy:
		m.copyOverrides()
		return m, nil
	case ActionNextColumn:
		if n := len(m.cfg.Columns); n > 0 {
			m.selected = (m.selected + 1) % n
		}
		return m, nil
	case ActionPrevColumn:
		if n := len(m.cfg.Columns); n > 0 {
			m.selected = (m.selected + n - 1) % n
		}
		return m, nil
	case ActionDown, ActionUp:
		_, cmd := m.table.Update(tea.KeyPressMsg{Code: arrowFor(actionFor(key))})
		return m, cmd
	default:
		return m, nil
	}
	m.relayout()
	return m, nil
}

func arrowFor(a Action) rune {
	if a == ActionUp {
		return tea.KeyUp
	}
	return tea.KeyDown
}

// resizeSelected sets an override on the selected column relative to
// its current width. An override never goes below one unit.
func (m *PreviewModel) resizeSelected(delta int) {
	field, ok := m.SelectedField()
	if !ok || m.result == nil {
		return
	}
	current, ok := m.result.Width(field)
	if !ok {
		return
	}
	if m.overrides == nil {
		m.overrides = layout.Overrides{}
	}
	m.overrides[field] = float64(max(current+delta, 1))
}

// copyOverrides puts the overrides on the clipboard as a YAML fragment
// that can be pasted into a column document.
func (m *PreviewModel) copyOverrides() {
	text, err := formatter.Encode(map[string]any{"overrides": m.overrides}, "yaml")
	if err == nil {
		err = CopyToClipboard(text)
	}
	if err != nil {
		m.cfg.Log.Error(err, "copy overrides")
		m.notice = "copy failed: " + err.Error()
		return
	}
	m.notice = fmt.Sprintf("copied %d override(s)", len(m.overrides))
}

// relayout asks the session for a layout at the settled width and
// applies it to the table.
func (m *PreviewModel) relayout() {
	units := int(float64(m.width) * m.cfg.Scale)
	res := m.cfg.Session.Layout(session.Measurement{Width: units, Attached: true}, m.cfg.Columns, m.overrides)
	if res != m.result {
		m.cfg.Log.V(1).Info("applying layout", "width", m.width, "total", res.TotalWidth, "overflow", res.Overflow)
	}
	m.result = res
	m.table.ApplyLayout(res, m.cfg.Scale)
	m.table.SetSize(max(m.width, 1), max(m.height-chromeHeight, 1))
}

// SelectedField returns the field of the column resize keys act on.
func (m *PreviewModel) SelectedField() (string, bool) {
	if m.selected < 0 || m.selected >= len(m.cfg.Columns) {
		return "", false
	}
	return m.cfg.Columns[m.selected].Field, true
}

// Result returns the layout currently shown, or nil before the first
// width settles.
func (m *PreviewModel) Result() *layout.Result {
	return m.result
}

// Overrides returns a copy of the user overrides.
func (m *PreviewModel) Overrides() layout.Overrides {
	return m.overrides.Clone()
}

func (m *PreviewModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m *PreviewModel) render() string {
	if m.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	if m.result == nil {
		b.WriteString("waiting for terminal width...")
	} else {
		b.WriteString(m.table.View())
	}
	b.WriteString("\n")
	b.WriteString(m.styled(m.styles.help, helpLine()))
	return b.String()
}

func (m *PreviewModel) styled(s lipgloss.Style, text string) string {
	if m.cfg.NoColor {
		return text
	}
	return s.Render(text)
}

func (m *PreviewModel) statusLine() string {
	opts := m.cfg.Session.Options()
	parts := []string{
		fmt.Sprintf("width %d", m.width),
		"fit " + onOff(opts.FitToContainer),
		"filters " + onOff(opts.Filters),
	}
	if field, ok := m.SelectedField(); ok {
		if w, ok := m.result.Width(field); ok {
			parts = append(parts, fmt.Sprintf("%s=%d", field, w))
		} else {
			parts = append(parts, field)
		}
	}
	if len(m.overrides) > 0 {
		parts = append(parts, fmt.Sprintf("%d override(s)", len(m.overrides)))
	}
	if m.notice != "" {
		parts = append(parts, m.notice)
	}
	line := m.styled(m.styles.status, strings.Join(parts, "  "))
	if m.result != nil {
		total := fmt.Sprintf("  total %d", m.result.TotalWidth)
		if m.result.Overflow {
			line += m.styled(m.styles.overflow, total+" overflow")
		} else {
			line += total
		}
	}
	return line
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// RunPreview starts the preview program. When surface is not nil it is
// polled every interval alongside the window-size events. The provider
// is closed when the program exits.
func RunPreview(ctx context.Context, cfg PreviewConfig, surface measure.Surface, interval time.Duration, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer cfg.Provider.Close()

	if surface != nil {
		go func() {
			if err := cfg.Provider.Observe(ctx, surface, interval); err != nil && ctx.Err() == nil {
				cfg.Log.Error(err, "surface observation stopped")
			}
		}()
	}

	m := NewPreviewModel(cfg)
	opts = append(opts, tea.WithContext(ctx))
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}
