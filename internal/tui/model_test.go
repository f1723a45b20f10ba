package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/boundary-layer-viewer/internal/domain"
)

func testDataset() *domain.Dataset {
	return &domain.Dataset{
		Version: 1,
		Source:  "fixture.csv",
		Points: []domain.BoundaryLayerPoint{
			{X: 0.1, Delta: 0.005, Re: 6666.67},
			{X: 0.2, Delta: 0.0075, Re: 13333.33},
			{X: 0.3, Delta: 0.009, Re: 20000},
		},
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "pgup":
		return tea.KeyMsg{Type: tea.KeyPgUp}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func TestNew_StartsAtFirstStation(t *testing.T) {
	m := New(testDataset(), 1.0, nil)

	assert.Equal(t, 0.1, m.Selected())
	f := m.Frame()
	require.NotNil(t, f.Current)
	assert.Equal(t, "Reynolds number: 6666.67", f.Lines[2])
}

func TestNew_NilDataset(t *testing.T) {
	m := New(nil, 1.0, nil)

	assert.Equal(t, 0.0, m.Selected())
	assert.Equal(t, "Boundary-layer thickness: N/A", m.Frame().Lines[3])
	assert.Contains(t, m.View(), "no stations at or before the selection")
}

func TestUpdate_Keys(t *testing.T) {
	tests := []struct {
		name string
		keys []string
		want float64
	}{
		{"step right", []string{"right"}, 0.11},
		{"step right vim", []string{"l", "l"}, 0.12},
		{"step back", []string{"right", "right", "left"}, 0.11},
		{"page down", []string{"pgdown"}, 0.2},
		{"page down twice then back", []string{"pgdown", "pgdown", "pgup"}, 0.2},
		{"end", []string{"end"}, 0.3},
		{"home after end", []string{"end", "home"}, 0.1},
		{"clamped at min", []string{"left", "h", "pgup"}, 0.1},
		{"clamped at max", []string{"end", "right", "pgdown"}, 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := press(New(testDataset(), 1.0, nil), tt.keys...)
			assert.InDelta(t, tt.want, m.Selected(), 1e-9)
		})
	}
}

func TestUpdate_SelectionStaysWithinBounds(t *testing.T) {
	m := New(testDataset(), 1.0, nil)
	b := domain.SliderBounds(testDataset().Points)

	for _, k := range []string{"pgdown", "pgdown", "pgdown", "right", "l", "pgup", "left", "pgup", "pgup", "h"} {
		m = press(m, k)
		assert.GreaterOrEqual(t, m.Selected(), b.Min-1e-9, "after %s", k)
		assert.LessOrEqual(t, m.Selected(), b.Max+1e-9, "after %s", k)
	}
}

func TestUpdate_FilteredGrowsWithSelection(t *testing.T) {
	m := New(testDataset(), 1.0, nil)
	assert.Len(t, m.Frame().Filtered, 1)

	m = press(m, "pgdown")
	assert.Len(t, m.Frame().Filtered, 2)
	require.NotNil(t, m.Frame().Current)
	assert.Equal(t, 0.2, m.Frame().Current.X)

	m = press(m, "right")
	assert.Len(t, m.Frame().Filtered, 2)
	assert.Nil(t, m.Frame().Current)
	assert.Equal(t, "Reynolds number: N/A", m.Frame().Lines[2])
}

func TestUpdate_Quit(t *testing.T) {
	for _, k := range []string{"q", "esc"} {
		_, cmd := New(testDataset(), 1.0, nil).Update(key(k))
		require.NotNil(t, cmd, k)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestUpdate_ReloadWithoutLoaderIsIgnored(t *testing.T) {
	next, cmd := New(testDataset(), 1.0, nil).Update(key("r"))
	assert.Nil(t, cmd)
	assert.False(t, next.(Model).loading)
}

func TestUpdate_Reload(t *testing.T) {
	replacement := &domain.Dataset{
		Version: 2,
		Points: []domain.BoundaryLayerPoint{
			{X: 0.15, Delta: 0.006, Re: 10000},
			{X: 0.25, Delta: 0.008, Re: 16666},
		},
	}
	calls := 0
	load := func(context.Context) (*domain.Dataset, error) {
		calls++
		return replacement, nil
	}

	m := press(New(testDataset(), 1.0, load), "end")
	next, cmd := m.Update(key("r"))
	m = next.(Model)
	require.NotNil(t, cmd)
	assert.True(t, m.loading)
	assert.Contains(t, m.View(), "reloading...")

	// A second press while loading does not start another pass.
	_, again := m.Update(key("r"))
	assert.Nil(t, again)

	next, _ = m.Update(cmd())
	m = next.(Model)
	assert.Equal(t, 1, calls)
	assert.False(t, m.loading)
	assert.NoError(t, m.Err())
	assert.Equal(t, uint64(2), m.Frame().Version)
	assert.InDelta(t, 0.25, m.Selected(), 1e-9, "selection pulled into the new bounds")
}

func TestUpdate_ReloadFailureKeepsDataset(t *testing.T) {
	load := func(context.Context) (*domain.Dataset, error) {
		return nil, errors.New("source down")
	}
	m := New(testDataset(), 1.0, load)

	next, cmd := m.Update(key("r"))
	next, _ = next.(Model).Update(cmd())
	m = next.(Model)

	require.Error(t, m.Err())
	assert.Equal(t, uint64(1), m.Frame().Version)
	assert.Contains(t, m.View(), "reload failed: source down")
}

func TestView(t *testing.T) {
	m := press(New(testDataset(), 1.0, func(context.Context) (*domain.Dataset, error) { return nil, nil }), "pgdown")
	out := m.View()

	assert.Contains(t, out, "Boundary-layer growth")
	assert.Contains(t, out, "fixture.csv")
	assert.Contains(t, out, "Free-stream velocity:")
	assert.Contains(t, out, "0.20")
	assert.Contains(t, out, "0.0075")
	assert.Contains(t, out, "2 stations")
	assert.Contains(t, out, "r reload")
}

func TestView_TableShowsTail(t *testing.T) {
	ds := &domain.Dataset{}
	for i := 1; i <= 12; i++ {
		ds.Points = append(ds.Points, domain.BoundaryLayerPoint{X: float64(i) / 10, Delta: 0.001 * float64(i), Re: 1})
	}
	m := press(New(ds, 1.0, nil), "end")

	out := m.View()
	assert.Contains(t, out, "last 8 of 12 stations")
	assert.Contains(t, out, "1.20")
	assert.NotContains(t, out, "0.0010")
}

func TestRenderTrack(t *testing.T) {
	b := domain.Bounds{Min: 0, Max: 1, Step: 0.01}
	assert.Contains(t, renderTrack(b, 0), "●")
	assert.Contains(t, renderTrack(domain.Bounds{Min: 1, Max: 1}, 1), "●")
	assert.Contains(t, renderTrack(b, 5), "●")
}
