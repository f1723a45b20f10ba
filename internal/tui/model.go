// Package tui implements the terminal station scrubber: a keyboard-driven
// slider over the extracted profile with the live readout beside it.
package tui

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/couchcryptid/boundary-layer-viewer/internal/domain"
)

const (
	trackWidth = 40
	pageSteps  = 10
	tableRows  = 8
)

// LoadFunc runs an ingestion pass and returns the new snapshot.
type LoadFunc func(ctx context.Context) (*domain.Dataset, error)

// loadedMsg carries the result of a reload back into Update.
type loadedMsg struct {
	ds  *domain.Dataset
	err error
}

// Model is the bubbletea model for the station scrubber. The selection is
// moved along the slider grid and always stays within its bounds.
type Model struct {
	ds         *domain.Dataset
	view       domain.ViewState
	freeStream float64
	load       LoadFunc
	loading    bool
	err        error
}

// New creates a scrubber over ds. The initial selection is the first station
// so the readout starts on a real point. load may be nil to disable reloads.
func New(ds *domain.Dataset, freeStream float64, load LoadFunc) Model {
	if ds == nil {
		ds = domain.EmptyDataset()
	}
	m := Model{ds: ds, freeStream: freeStream, load: load}
	m.view.SetSelectedStation(m.bounds().Min)
	return m
}

// Selected returns the station the slider sits on.
func (m Model) Selected() float64 {
	return m.view.SelectedStation()
}

// Frame returns the derived view for the current selection.
func (m Model) Frame() domain.Frame {
	return domain.NewFrame(m.ds, m.view, m.freeStream)
}

// Err returns the error of the last reload, if any.
func (m Model) Err() error {
	return m.err
}

func (m Model) bounds() domain.Bounds {
	return domain.SliderBounds(m.ds.Points)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		b := m.bounds()
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l":
			m.move(b, b.Step)
		case "left", "h":
			m.move(b, -b.Step)
		case "pgdown", "L":
			m.move(b, pageSteps*b.Step)
		case "pgup", "H":
			m.move(b, -pageSteps*b.Step)
		case "home", "g":
			m.view.SetSelectedStation(b.Min)
		case "end", "G":
			m.view.SetSelectedStation(b.Max)
		case "r":
			if m.load != nil && !m.loading {
				m.loading = true
				return m, m.reload()
			}
		}
	case loadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil && msg.ds != nil {
			m.ds = msg.ds
			// Keep the selection, pulled onto the new grid.
			m.view.SetSelectedStation(m.bounds().Clamp(m.Selected()))
		}
	}
	return m, nil
}

func (m *Model) move(b domain.Bounds, delta float64) {
	m.view.SetSelectedStation(b.Clamp(m.Selected() + delta))
}

func (m Model) reload() tea.Cmd {
	load := m.load
	return func() tea.Msg {
		ds, err := load(context.Background())
		return loadedMsg{ds: ds, err: err}
	}
}

func (m Model) View() string {
	f := m.Frame()
	var b strings.Builder

	b.WriteString(styleTitle.Render("Boundary-layer growth"))
	if m.ds.Source != "" {
		b.WriteString(styleDim.Render("  " + m.ds.Source))
	}
	b.WriteString("\n\n")

	b.WriteString(renderTrack(f.Bounds, f.Selected))
	b.WriteString("\n")
	b.WriteString(styleDim.Render(fmt.Sprintf("%-*s%s",
		trackWidth-len(formatStation(f.Bounds.Max)), formatStation(f.Bounds.Min), formatStation(f.Bounds.Max))))
	b.WriteString("\n\n")

	for _, line := range f.Lines {
		label, value, _ := strings.Cut(line, ": ")
		b.WriteString(styleLabel.Render(label+":") + " " + styleValue.Render(value))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(f.Filtered) == 0 {
		b.WriteString(styleDim.Render("no stations at or before the selection"))
	} else {
		b.WriteString(renderTable(f))
	}
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(styleDim.Render("reloading..."))
		b.WriteString("\n")
	case m.err != nil:
		b.WriteString(styleError.Render("reload failed: " + m.err.Error()))
		b.WriteString("\n")
	}

	help := "←/→ step  pgup/pgdn page  home/end bounds  q quit"
	if m.load != nil {
		help = "←/→ step  pgup/pgdn page  home/end bounds  r reload  q quit"
	}
	b.WriteString(styleDim.Render(help))
	return b.String()
}

// renderTrack draws the slider with the knob at the selection's relative
// position within bounds.
func renderTrack(b domain.Bounds, selected float64) string {
	pos := trackWidth - 1
	if span := b.Max - b.Min; span > 0 {
		frac := math.Min(math.Max((selected-b.Min)/span, 0), 1)
		pos = int(math.Round(frac * float64(trackWidth-1)))
	}
	return styleFill.Render(strings.Repeat("━", pos)) +
		styleKnob.Render("●") +
		styleTrack.Render(strings.Repeat("─", trackWidth-1-pos))
}

// renderTable lists the last rows of the filtered sequence, highlighting the
// current point.
func renderTable(f domain.Frame) string {
	rows := f.Filtered
	if len(rows) > tableRows {
		rows = rows[len(rows)-tableRows:]
	}

	data := make([][]string, 0, len(rows))
	for _, p := range rows {
		data = append(data, []string{
			formatStation(p.X),
			strconv.FormatFloat(p.Delta, 'f', 4, 64),
			strconv.FormatFloat(p.Re, 'f', 2, 64),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleDim).
		Headers("x", "δ", "Re").
		Rows(data...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if f.Current != nil && row >= 0 && row < len(rows) && rows[row] == *f.Current {
				return styleCurrent
			}
			return lipgloss.NewStyle()
		})

	title := styleDim.Render(fmt.Sprintf("%d stations", len(f.Filtered)))
	if len(f.Filtered) > len(rows) {
		title = styleDim.Render(fmt.Sprintf("last %d of %d stations", len(rows), len(f.Filtered)))
	}
	return title + "\n" + t.Render()
}

func formatStation(x float64) string {
	return strconv.FormatFloat(x, 'f', 2, 64)
}
