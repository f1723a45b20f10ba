package domain

// ThicknessFraction is the share of free-stream velocity that marks the edge
// of the boundary layer.
const ThicknessFraction = 0.99

// SkipReason explains why a station produced no point.
type SkipReason string

const (
	SkipNoCrossing       SkipReason = "no_crossing"       // no member reached the threshold
	SkipMissingThickness SkipReason = "missing_thickness" // crossing member has no valid y
	SkipMissingReynolds  SkipReason = "missing_reynolds"  // first member has no valid Re
)

// SkippedStation records a station omitted from the extracted sequence.
type SkippedStation struct {
	X      float64    `json:"x"`
	Reason SkipReason `json:"reason"`
}

// ExtractReport describes what extraction did with its input. It never
// affects the extracted points.
type ExtractReport struct {
	Samples            int              `json:"samples"`
	Stations           int              `json:"stations"`
	Emitted            int              `json:"emitted"`
	Skipped            []SkippedStation `json:"skipped,omitempty"`
	RowsWithoutStation int              `json:"rows_without_station"`

	// UnorderedStations lists stations whose valid y values are not
	// non-decreasing in input order.
	UnorderedStations []float64 `json:"unordered_stations,omitempty"`
}

// SkippedCount returns the number of omitted stations.
func (r ExtractReport) SkippedCount() int {
	return len(r.Skipped)
}

// Clean reports whether every station produced a point and every group was
// listed from the wall outward.
func (r ExtractReport) Clean() bool {
	return len(r.Skipped) == 0 && len(r.UnorderedStations) == 0 && r.RowsWithoutStation == 0
}

// Extract reduces samples to one BoundaryLayerPoint per station.
func Extract(samples []VelocitySample, freeStreamVelocity float64) []BoundaryLayerPoint {
	points, _ := ExtractWithReport(samples, freeStreamVelocity)
	return points
}

// ExtractWithReport is Extract plus a description of omitted stations.
// Output order is the order in which each station first appears in samples.
func ExtractWithReport(samples []VelocitySample, freeStreamVelocity float64) ([]BoundaryLayerPoint, ExtractReport) {
	groups, keyless := groupByStation(samples)
	threshold := ThicknessFraction * freeStreamVelocity

	report := ExtractReport{
		Samples:            len(samples),
		Stations:           len(groups),
		RowsWithoutStation: keyless,
	}
	points := make([]BoundaryLayerPoint, 0, len(groups))

	for _, g := range groups {
		if !ascendingY(g.members) {
			report.UnorderedStations = append(report.UnorderedStations, g.x)
		}
		point, reason := reduceStation(g, threshold)
		if reason != "" {
			report.Skipped = append(report.Skipped, SkippedStation{X: g.x, Reason: reason})
			continue
		}
		points = append(points, point)
	}

	report.Emitted = len(points)
	return points, report
}

type stationGroup struct {
	x       float64
	members []VelocitySample
}

// groupByStation partitions samples by exact station value, keeping
// first-seen order. Samples without a valid station are counted and dropped.
func groupByStation(samples []VelocitySample) ([]stationGroup, int) {
	index := make(map[float64]int)
	var groups []stationGroup
	keyless := 0

	for _, s := range samples {
		if !s.X.Valid {
			keyless++
			continue
		}
		i, ok := index[s.X.Value]
		if !ok {
			i = len(groups)
			index[s.X.Value] = i
			groups = append(groups, stationGroup{x: s.X.Value})
		}
		groups[i].members = append(groups[i].members, s)
	}
	return groups, keyless
}

func reduceStation(g stationGroup, threshold float64) (BoundaryLayerPoint, SkipReason) {
	crossing, found := firstCrossing(g.members, threshold)
	if !found {
		return BoundaryLayerPoint{}, SkipNoCrossing
	}
	if !crossing.Y.Valid {
		return BoundaryLayerPoint{}, SkipMissingThickness
	}

	re := g.members[0].Re
	if !re.Valid {
		return BoundaryLayerPoint{}, SkipMissingReynolds
	}

	return BoundaryLayerPoint{X: g.x, Delta: crossing.Y.Value, Re: re.Value}, ""
}

// firstCrossing returns the first member, in input order, whose velocity
// reaches threshold.
func firstCrossing(members []VelocitySample, threshold float64) (VelocitySample, bool) {
	for _, m := range members {
		if m.U.Valid && m.U.Value >= threshold {
			return m, true
		}
	}
	return VelocitySample{}, false
}

func ascendingY(members []VelocitySample) bool {
	prev, seen := 0.0, false
	for _, m := range members {
		if !m.Y.Valid {
			continue
		}
		if seen && m.Y.Value < prev {
			return false
		}
		prev, seen = m.Y.Value, true
	}
	return true
}
