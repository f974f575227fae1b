// Package kafka publishes track observations to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/cyclone-imagery/internal/config"
	"github.com/couchcryptid/cyclone-imagery/internal/domain"
	"github.com/couchcryptid/cyclone-imagery/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces track observations to a Kafka topic, one message per
// observation keyed by storm id.
type Writer struct {
	writer  *kafkago.Writer
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewWriter creates a Kafka producer for the configured track topic.
// Observations of one storm hash to the same partition.
func NewWriter(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTrackTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, metrics: metrics, logger: logger}
}

// LoadBatch serializes and publishes records in a single WriteMessages call.
func (w *Writer) LoadBatch(ctx context.Context, records []domain.TrackRecord) error {
	if len(records) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(records))
	for i := range records {
		msg, err := serializeToMessage(records[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish tracks: %w", err)
	}

	w.metrics.TracksPublished.Add(float64(len(msgs)))
	w.logger.Debug("tracks published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a TrackRecord into a Kafka message.
func serializeToMessage(rec domain.TrackRecord) (kafkago.Message, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize track record: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(rec.SID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "season", Value: []byte(strconv.Itoa(rec.Season))},
			{Key: "observed_at", Value: []byte(rec.ISOTime.UTC().Format(time.RFC3339))},
		},
	}, nil
}
