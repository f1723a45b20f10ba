package domain

import "github.com/montanaflynn/stats"

// ProfileSummary condenses an extracted sequence for reports and the API.
type ProfileSummary struct {
	Points      int     `json:"points"`
	StationMin  float64 `json:"station_min"`
	StationMax  float64 `json:"station_max"`
	DeltaMin    float64 `json:"delta_min"`
	DeltaMax    float64 `json:"delta_max"`
	DeltaMean   float64 `json:"delta_mean"`
	DeltaMedian float64 `json:"delta_median"`
	ReMin       float64 `json:"re_min"`
	ReMax       float64 `json:"re_max"`
}

// Summarize computes range and central statistics over points. An empty
// sequence yields the zero summary.
func Summarize(points []BoundaryLayerPoint) ProfileSummary {
	if len(points) == 0 {
		return ProfileSummary{}
	}

	xs := make(stats.Float64Data, len(points))
	deltas := make(stats.Float64Data, len(points))
	res := make(stats.Float64Data, len(points))
	for i, p := range points {
		xs[i] = p.X
		deltas[i] = p.Delta
		res[i] = p.Re
	}

	// stats only errors on empty input, which is ruled out above.
	s := ProfileSummary{Points: len(points)}
	s.StationMin, _ = xs.Min()
	s.StationMax, _ = xs.Max()
	s.DeltaMin, _ = deltas.Min()
	s.DeltaMax, _ = deltas.Max()
	s.DeltaMean, _ = deltas.Mean()
	s.DeltaMedian, _ = deltas.Median()
	s.ReMin, _ = res.Min()
	s.ReMax, _ = res.Max()
	return s
}
