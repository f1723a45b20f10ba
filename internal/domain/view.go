package domain

import "math"

// StationTolerance is the absolute distance within which a point counts as
// the current point for a selected station.
const StationTolerance = 0.01

// ViewState holds the station selected by the user. The zero value selects
// station 0.
type ViewState struct {
	selected float64
}

// NewViewState returns a view with x selected.
func NewViewState(x float64) ViewState {
	return ViewState{selected: x}
}

// SetSelectedStation replaces the selection. No clamping is applied.
func (v *ViewState) SetSelectedStation(x float64) {
	v.selected = x
}

// SelectedStation returns the current selection.
func (v *ViewState) SelectedStation() float64 {
	return v.selected
}

// FilteredSequence returns, in original order, every point whose station is
// at or before the selection. The result is never nil.
func (v *ViewState) FilteredSequence(points []BoundaryLayerPoint) []BoundaryLayerPoint {
	out := make([]BoundaryLayerPoint, 0, len(points))
	for _, p := range points {
		if p.X <= v.selected {
			out = append(out, p)
		}
	}
	return out
}

// CurrentPoint returns the first point within StationTolerance of the
// selection.
func (v *ViewState) CurrentPoint(points []BoundaryLayerPoint) (BoundaryLayerPoint, bool) {
	for _, p := range points {
		if math.Abs(p.X-v.selected) < StationTolerance {
			return p, true
		}
	}
	return BoundaryLayerPoint{}, false
}
