// Package chart rasterises the filtered boundary-layer sequence as a PNG line
// chart. Rendered images are memoized per dataset version and selected station.
package chart

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log/slog"
	"strconv"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/couchcryptid/boundary-layer-viewer/internal/domain"
	"github.com/couchcryptid/boundary-layer-viewer/internal/observability"
)

var (
	profileColor  = drawing.Color{R: 170, G: 170, B: 170, A: 255}
	filteredColor = drawing.Color{R: 31, G: 119, B: 180, A: 255}
	currentColor  = drawing.Color{R: 214, G: 39, B: 40, A: 255}
)

// Renderer draws charts of a dataset as seen through a ViewState.
type Renderer struct {
	width   int
	height  int
	cache   *lruCache
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewRenderer creates a renderer producing width x height images and keeping
// up to cacheSize of them.
func NewRenderer(width, height, cacheSize int, metrics *observability.Metrics, logger *slog.Logger) *Renderer {
	return &Renderer{
		width:   width,
		height:  height,
		cache:   newLRUCache(cacheSize),
		metrics: metrics,
		logger:  logger,
	}
}

// Render returns the PNG for ds filtered by view. An empty dataset yields a
// blank image.
func (r *Renderer) Render(ds *domain.Dataset, view domain.ViewState) ([]byte, error) {
	key := cacheKey(ds, view)
	if img, ok := r.cache.get(key); ok {
		r.metrics.ChartRenders.WithLabelValues("hit").Inc()
		return img, nil
	}
	r.metrics.ChartRenders.WithLabelValues("miss").Inc()

	start := time.Now()
	img, err := r.render(ds, view)
	if err != nil {
		return nil, err
	}
	r.metrics.ChartRenderTime.Observe(observability.Since(start))

	r.cache.put(key, img)
	return img, nil
}

func cacheKey(ds *domain.Dataset, view domain.ViewState) string {
	var version uint64
	if ds != nil {
		version = ds.Version
	}
	return strconv.FormatUint(version, 10) + "|" + strconv.FormatFloat(view.SelectedStation(), 'g', -1, 64)
}

func (r *Renderer) render(ds *domain.Dataset, view domain.ViewState) ([]byte, error) {
	if ds.Empty() {
		return blankPNG(r.width, r.height)
	}

	ch := r.buildChart(ds.Points, view)

	var buf bytes.Buffer
	if err := ch.Render(gochart.PNG, &buf); err != nil {
		r.logger.Warn("chart render failed, serving blank image",
			"error", err,
			"version", ds.Version,
			"station", view.SelectedStation(),
		)
		return blankPNG(r.width, r.height)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) buildChart(points []domain.BoundaryLayerPoint, view domain.ViewState) gochart.Chart {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = p.X
		ys[i] = p.Delta
	}
	xRange, yRange := axisRanges(points)

	series := []gochart.Series{
		gochart.ContinuousSeries{
			Name:    "profile",
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeWidth: 1,
				StrokeColor: profileColor,
				DotWidth:    2,
				DotColor:    profileColor,
			},
		},
	}

	filtered := view.FilteredSequence(points)
	if len(filtered) > 0 {
		fx := make([]float64, len(filtered))
		fy := make([]float64, len(filtered))
		for i, p := range filtered {
			fx[i] = p.X
			fy[i] = p.Delta
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    "thickness",
			XValues: fx,
			YValues: fy,
			Style: gochart.Style{
				StrokeWidth: 2.5,
				StrokeColor: filteredColor,
				DotWidth:    4,
				DotColor:    filteredColor,
			},
		})
	}

	if cur, ok := view.CurrentPoint(points); ok {
		series = append(series, gochart.ContinuousSeries{
			Name:    "current",
			XValues: []float64{cur.X},
			YValues: []float64{cur.Delta},
			Style: gochart.Style{
				StrokeWidth: 0,
				DotWidth:    7,
				DotColor:    currentColor,
			},
		})
	}

	return gochart.Chart{
		Title:      fmt.Sprintf("Boundary-layer thickness, x <= %.2f", view.SelectedStation()),
		Width:      r.width,
		Height:     r.height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: "x", Range: xRange},
		YAxis:      gochart.YAxis{Name: "delta", Range: yRange},
		Series:     series,
	}
}

// axisRanges spans all points so the axes stay fixed while the selection
// moves. Degenerate spans are widened so the range is never zero.
func axisRanges(points []domain.BoundaryLayerPoint) (*gochart.ContinuousRange, *gochart.ContinuousRange) {
	minX, maxX := points[0].X, points[0].X
	maxY := points[0].Delta
	for _, p := range points[1:] {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Delta)
	}
	if maxX == minX {
		minX -= 0.5
		maxX += 0.5
	}
	if maxY <= 0 {
		maxY = 1
	}
	return &gochart.ContinuousRange{Min: minX, Max: maxX},
		&gochart.ContinuousRange{Min: 0, Max: maxY * 1.1}
}

func blankPNG(w, h int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	bg := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, bg)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode blank chart: %w", err)
	}
	return buf.Bytes(), nil
}
