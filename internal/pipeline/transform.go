package pipeline

import (
	"log/slog"

	"github.com/couchcryptid/boundary-layer-viewer/internal/domain"
)

// ProfileTransformer implements Transformer by running boundary-layer
// extraction over a decoded batch.
type ProfileTransformer struct {
	freeStream float64
	logger     *slog.Logger
}

// NewTransformer creates a ProfileTransformer for the given free-stream velocity.
func NewTransformer(freeStream float64, logger *slog.Logger) *ProfileTransformer {
	return &ProfileTransformer{
		freeStream: freeStream,
		logger:     logger,
	}
}

// FreeStream returns the reference velocity used for the threshold.
func (t *ProfileTransformer) FreeStream() float64 {
	return t.freeStream
}

func (t *ProfileTransformer) Transform(batch domain.SampleBatch, version uint64) *domain.Dataset {
	ds := domain.NewDataset(version, batch, t.freeStream)

	for _, s := range ds.Report.Skipped {
		t.logger.Debug("station skipped", "station", s.X, "reason", s.Reason)
	}
	if n := len(ds.Report.UnorderedStations); n > 0 {
		t.logger.Warn("stations with non-monotonic wall-normal positions; thickness follows input order",
			"count", n,
			"stations", ds.Report.UnorderedStations,
		)
	}
	if ds.Report.RowsWithoutStation > 0 {
		t.logger.Warn("rows without a readable station were ignored", "rows", ds.Report.RowsWithoutStation)
	}
	return ds
}
