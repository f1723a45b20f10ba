package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SliderStep is the resolution of the station control.
const SliderStep = 0.01

// NotAvailable is shown in place of a value when no current point matches.
const NotAvailable = "N/A"

// Bounds describes the station control: first and last station of the
// sequence, or [0, 1] when it is empty.
type Bounds struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// SliderBounds derives the control bounds from the extracted sequence.
func SliderBounds(points []BoundaryLayerPoint) Bounds {
	if len(points) == 0 {
		return Bounds{Min: 0, Max: 1, Step: SliderStep}
	}
	return Bounds{Min: points[0].X, Max: points[len(points)-1].X, Step: SliderStep}
}

// Clamp snaps x onto the control grid (Min + k*Step) and limits it to
// [Min, Max], the way a bounded range input reports its value.
func (b Bounds) Clamp(x float64) float64 {
	lo, hi := b.Min, b.Max
	if hi < lo {
		lo, hi = hi, lo
	}
	if b.Step > 0 {
		x = lo + math.Round((x-lo)/b.Step)*b.Step
	}
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// Readout is the textual panel shown next to the chart.
type Readout struct {
	FreeStreamVelocity string `json:"free_stream_velocity"`
	SelectedStation    string `json:"selected_station"`
	ReynoldsNumber     string `json:"reynolds_number"`
	Thickness          string `json:"thickness"`
}

// NewReadout formats the panel for the view's selection over points.
func NewReadout(freeStreamVelocity float64, view *ViewState, points []BoundaryLayerPoint) Readout {
	r := Readout{
		FreeStreamVelocity: formatFreeStream(freeStreamVelocity),
		SelectedStation:    strconv.FormatFloat(view.SelectedStation(), 'f', 2, 64),
		ReynoldsNumber:     NotAvailable,
		Thickness:          NotAvailable,
	}
	if p, ok := view.CurrentPoint(points); ok {
		r.ReynoldsNumber = strconv.FormatFloat(p.Re, 'f', 2, 64)
		r.Thickness = strconv.FormatFloat(p.Delta, 'f', 4, 64)
	}
	return r
}

// Lines returns the panel as labelled text lines.
func (r Readout) Lines() []string {
	return []string{
		fmt.Sprintf("Free-stream velocity: %s", r.FreeStreamVelocity),
		fmt.Sprintf("Selected station: %s", r.SelectedStation),
		fmt.Sprintf("Reynolds number: %s", r.ReynoldsNumber),
		fmt.Sprintf("Boundary-layer thickness: %s", r.Thickness),
	}
}

// formatFreeStream prints the shortest exact form, keeping one decimal for
// whole numbers ("1.0", "0.95").
func formatFreeStream(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
