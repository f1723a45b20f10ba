// Package domain models boundary-layer measurements and the station-scrubbing
// view derived from them.
//
// # Data Source
//
// Velocity samples come from a table with one row per measurement and a header
// naming the columns x, y, u and Re (any order, exact names):
//
//	x,y,u,Re
//	0.10,0.0000,0.000000,6666.7
//	0.10,0.0005,0.216531,6666.7
//
// x is the streamwise station, y the wall-normal distance, u the local
// streamwise velocity and Re the local Reynolds number reported for the row.
// Any cell may be empty or non-numeric; such cells decode to an invalid
// [Reading] rather than failing the row.
//
// # Extraction
//
// Samples are grouped by exact station equality in the order each station is
// first seen. For every group:
//
//	delta = y of the first member (input order) with u >= 0.99 * U∞
//	Re    = Re of the first member of the group
//
// A station is emitted only when both values are present. The scan does not
// sort by y: the rule assumes each station's rows are already listed from the
// wall outward. [ExtractReport.UnorderedStations] flags groups that break
// this assumption without changing the result.
//
// # View Derivation
//
// A [ViewState] holds the selected station. The plotted sequence keeps every
// point with x <= selected, in extraction order. The readout point is the
// first point within 0.01 of the selected station.
//
// # Snapshots
//
// A [Dataset] is the immutable result of one ingestion pass. Reloading
// produces a new Dataset with a higher version; view state is not tied to a
// dataset and survives reloads.
package domain
