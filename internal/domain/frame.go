package domain

// Frame is one rendered state of the view: what a presentation draws for a
// dataset and a selection.
type Frame struct {
	Version  uint64               `json:"dataset_version"`
	Selected float64              `json:"selected_station"`
	Bounds   Bounds               `json:"bounds"`
	Filtered []BoundaryLayerPoint `json:"filtered"`
	Current  *BoundaryLayerPoint  `json:"current"`
	Readout  Readout              `json:"readout"`
	Lines    []string             `json:"lines"`
}

// NewFrame derives the frame for view over ds. A nil dataset is treated as empty.
func NewFrame(ds *Dataset, view ViewState, freeStreamVelocity float64) Frame {
	var (
		points  []BoundaryLayerPoint
		version uint64
	)
	if ds != nil {
		points = ds.Points
		version = ds.Version
	}

	readout := NewReadout(freeStreamVelocity, &view, points)
	f := Frame{
		Version:  version,
		Selected: view.SelectedStation(),
		Bounds:   SliderBounds(points),
		Filtered: view.FilteredSequence(points),
		Readout:  readout,
		Lines:    readout.Lines(),
	}
	if p, ok := view.CurrentPoint(points); ok {
		f.Current = &p
	}
	return f
}
