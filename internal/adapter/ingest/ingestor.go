package ingest

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/boundary-layer-viewer/internal/domain"
)

// Ingestor fetches and decodes a sample table in one call.
type Ingestor struct {
	source Source
	logger *slog.Logger
}

// NewIngestor wraps a source.
func NewIngestor(source Source, logger *slog.Logger) *Ingestor {
	return &Ingestor{source: source, logger: logger}
}

// Ingest fetches the table and decodes it. Transport errors wrap
// domain.ErrSourceUnavailable and decode errors wrap domain.ErrDecode.
func (i *Ingestor) Ingest(ctx context.Context) (domain.SampleBatch, error) {
	data, err := i.source.Fetch(ctx)
	if err != nil {
		return domain.SampleBatch{}, err
	}

	format := DetectFormat(i.source.Location(), data)
	batch, err := Decode(data, format)
	if err != nil {
		return domain.SampleBatch{}, err
	}
	batch.Source = i.source.Location()

	if len(batch.MissingColumns) > 0 {
		i.logger.Warn("sample table is missing columns",
			"source", batch.Source,
			"missing", batch.MissingColumns,
		)
	}
	i.logger.Debug("sample table decoded",
		"source", batch.Source,
		"format", format,
		"rows", batch.Rows,
		"malformed_rows", batch.MalformedRows,
	)
	return batch, nil
}

// Source returns the location being ingested.
func (i *Ingestor) Source() string {
	return i.source.Location()
}
