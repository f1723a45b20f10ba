package domain

import "time"

// Dataset is the immutable result of one ingestion pass.
type Dataset struct {
	Version  uint64               `json:"version"`
	Source   string               `json:"source"`
	Points   []BoundaryLayerPoint `json:"points"`
	Report   ExtractReport        `json:"report"`
	Batch    BatchInfo            `json:"batch"`
	LoadedAt time.Time            `json:"loaded_at"`
}

// BatchInfo carries the decode diagnostics of the batch a Dataset came from.
type BatchInfo struct {
	Rows           int      `json:"rows"`
	MissingColumns []string `json:"missing_columns,omitempty"`
	MalformedRows  int      `json:"malformed_rows"`
}

// NewDataset extracts points from batch and stamps the snapshot.
func NewDataset(version uint64, batch SampleBatch, freeStreamVelocity float64) *Dataset {
	points, report := ExtractWithReport(batch.Samples, freeStreamVelocity)
	return &Dataset{
		Version: version,
		Source:  batch.Source,
		Points:  points,
		Report:  report,
		Batch: BatchInfo{
			Rows:           batch.Rows,
			MissingColumns: batch.MissingColumns,
			MalformedRows:  batch.MalformedRows,
		},
		LoadedAt: clock.Now(),
	}
}

// EmptyDataset is the snapshot served before any ingestion pass succeeds.
func EmptyDataset() *Dataset {
	return &Dataset{Points: []BoundaryLayerPoint{}}
}

// Empty reports whether the dataset has no points.
func (d *Dataset) Empty() bool {
	return d == nil || len(d.Points) == 0
}
