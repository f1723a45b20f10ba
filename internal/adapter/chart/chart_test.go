package chart

import (
	"bytes"
	"image/png"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/boundary-layer-viewer/internal/domain"
	"github.com/couchcryptid/boundary-layer-viewer/internal/observability"
)

func testDataset(version uint64, points ...domain.BoundaryLayerPoint) *domain.Dataset {
	return &domain.Dataset{Version: version, Points: points}
}

func profile() []domain.BoundaryLayerPoint {
	return []domain.BoundaryLayerPoint{
		{X: 0.1, Delta: 0.005, Re: 6666},
		{X: 0.2, Delta: 0.007, Re: 13333},
		{X: 0.3, Delta: 0.009, Re: 20000},
		{X: 0.4, Delta: 0.010, Re: 26666},
	}
}

func newTestRenderer(cacheSize int) (*Renderer, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	return NewRenderer(320, 200, cacheSize, m, slog.Default()), m
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestRenderer_Render(t *testing.T) {
	r, _ := newTestRenderer(4)

	tests := []struct {
		name     string
		points   []domain.BoundaryLayerPoint
		selected float64
	}{
		{"mid selection", profile(), 0.25},
		{"current point marked", profile(), 0.2},
		{"selection before first station", profile(), 0},
		{"selection past last station", profile(), 5},
		{"single point", profile()[:1], 0.1},
		{"zero thickness", []domain.BoundaryLayerPoint{{X: 1}, {X: 2}}, 2},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := r.Render(testDataset(uint64(i+1), tt.points...), domain.NewViewState(tt.selected))
			require.NoError(t, err)
			w, h := decodeSize(t, data)
			assert.Equal(t, 320, w)
			assert.Equal(t, 200, h)
		})
	}
}

func TestRenderer_EmptyDatasetIsBlank(t *testing.T) {
	r, _ := newTestRenderer(4)

	for _, ds := range []*domain.Dataset{nil, domain.EmptyDataset()} {
		data, err := r.Render(ds, domain.NewViewState(0.5))
		require.NoError(t, err)
		w, h := decodeSize(t, data)
		assert.Equal(t, 320, w)
		assert.Equal(t, 200, h)
	}
}

func TestRenderer_CachesByVersionAndStation(t *testing.T) {
	r, m := newTestRenderer(4)
	ds := testDataset(1, profile()...)

	first, err := r.Render(ds, domain.NewViewState(0.2))
	require.NoError(t, err)
	second, err := r.Render(ds, domain.NewViewState(0.2))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = r.Render(ds, domain.NewViewState(0.3))
	require.NoError(t, err)
	_, err = r.Render(testDataset(2, profile()...), domain.NewViewState(0.2))
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.ChartRenders.WithLabelValues("hit")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.ChartRenders.WithLabelValues("miss")))
	assert.Equal(t, 3, r.cache.len())
}

func TestCacheKey(t *testing.T) {
	ds := testDataset(7)
	assert.Equal(t, "7|0.25", cacheKey(ds, domain.NewViewState(0.25)))
	assert.Equal(t, "0|1e-05", cacheKey(nil, domain.NewViewState(0.00001)))
}

func TestAxisRanges(t *testing.T) {
	x, y := axisRanges([]domain.BoundaryLayerPoint{{X: 0.4, Delta: 0.02}, {X: 0.1, Delta: 0.01}})
	assert.Equal(t, 0.1, x.Min)
	assert.Equal(t, 0.4, x.Max)
	assert.Equal(t, 0.0, y.Min)
	assert.InDelta(t, 0.022, y.Max, 1e-12)

	x, y = axisRanges([]domain.BoundaryLayerPoint{{X: 2, Delta: 0}})
	assert.Equal(t, 1.5, x.Min)
	assert.Equal(t, 2.5, x.Max)
	assert.InDelta(t, 1.1, y.Max, 1e-12)
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", []byte("A"))
	c.put("b", []byte("B"))

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, []byte("A"), v)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_Eviction(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", []byte("A"))
	c.put("b", []byte("B"))
	c.put("c", []byte("C")) // evicts "a"

	_, ok := c.get("a")
	assert.False(t, ok, "a should have been evicted")
	_, ok = c.get("b")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
}

func TestLRUCache_AccessPromotesEntry(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", []byte("A"))
	c.put("b", []byte("B"))
	c.get("a")
	c.put("c", []byte("C"))

	_, ok := c.get("a")
	assert.True(t, ok, "a was accessed recently, should not be evicted")
	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
}

func TestLRUCache_UpdateExisting(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", []byte("A1"))
	c.put("a", []byte("A2"))

	v, ok := c.get("a")
	assert.True(t, ok)
	assert.Equal(t, []byte("A2"), v)
	assert.Equal(t, 1, c.len())
}

func TestLRUCache_MinimumSize(t *testing.T) {
	c := newLRUCache(0)
	c.put("a", []byte("A"))
	c.put("b", []byte("B"))
	assert.Equal(t, 1, c.len())
}
