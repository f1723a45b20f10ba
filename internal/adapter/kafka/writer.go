package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/boundary-layer-viewer/internal/config"
	"github.com/couchcryptid/boundary-layer-viewer/internal/domain"
)

// messageWriter is the subset of *kafkago.Writer the adapter uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes extracted profiles to a Kafka topic.
// It implements pipeline.ProfilePublisher.
type Writer struct {
	writer messageWriter
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured profile topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaProfileTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishProfile writes one message per point of ds in a single
// WriteMessages call. Points keep their station order within a partition.
func (w *Writer) PublishProfile(ctx context.Context, ds *domain.Dataset) error {
	if ds.Empty() {
		return nil
	}
	msgs := make([]kafkago.Message, len(ds.Points))
	for i, p := range ds.Points {
		msg, err := serializeToMessage(ds, p)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish profile v%d: %w", ds.Version, err)
	}
	w.logger.Info("profile published", "version", ds.Version, "points", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals one point into a Kafka message keyed by station.
func serializeToMessage(ds *domain.Dataset, p domain.BoundaryLayerPoint) (kafkago.Message, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize point %g: %w", p.X, err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.FormatFloat(p.X, 'g', -1, 64)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "dataset_version", Value: []byte(strconv.FormatUint(ds.Version, 10))},
			{Key: "source", Value: []byte(ds.Source)},
			{Key: "loaded_at", Value: []byte(ds.LoadedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
