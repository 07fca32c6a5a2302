package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/city-explorer-service/internal/config"
	"github.com/couchcryptid/city-explorer-service/internal/domain"
)

// Writer produces refresh events to a Kafka topic.
// It implements cache.RefreshPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured refresh topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaRefreshTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishRefresh writes one event keyed by location, so every refresh for a
// location lands on the same partition in order.
func (w *Writer) PublishRefresh(ctx context.Context, ev domain.RefreshEvent) error {
	msg, err := serializeToMessage(ev)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write refresh event: %w", err)
	}
	w.logger.Debug("refresh event published",
		"category", ev.Category, "location_id", ev.LocationID, "reason", ev.Reason)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a RefreshEvent into a Kafka message.
func serializeToMessage(ev domain.RefreshEvent) (kafkago.Message, error) {
	data, err := json.Marshal(ev)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize refresh event: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.FormatInt(ev.LocationID, 10)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "category", Value: []byte(ev.Category)},
			{Key: "reason", Value: []byte(ev.Reason)},
			{Key: "fetched_at", Value: []byte(ev.FetchedAt.Format(time.RFC3339))},
		},
	}, nil
}
