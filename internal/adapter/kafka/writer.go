package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/fars-data/internal/config"
	"github.com/couchcryptid/fars-data/internal/domain"
)

// Writer publishes summary tables to a Kafka topic.
// It implements pipeline.SummaryPublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured summary topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSummaryTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishSummary writes one message per month row in a single WriteMessages
// call. Messages are keyed by month so a month always lands on the same
// partition.
func (w *Writer) PublishSummary(ctx context.Context, s domain.SummaryTable) error {
	msgs, err := summaryMessages(s)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish summary: %w", err)
	}
	w.logger.Debug("summary published", "topic", w.writer.Topic, "messages", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// monthMessage is the value of one published month row. A null count means
// no crash was observed for that year.
type monthMessage struct {
	Month  int             `json:"month"`
	Counts map[string]*int `json:"counts"`
}

// summaryMessages converts each month row of s into a Kafka message.
func summaryMessages(s domain.SummaryTable) ([]kafkago.Message, error) {
	years := make([]string, len(s.Years))
	for i, y := range s.Years {
		years[i] = strconv.Itoa(y)
	}
	headers := []kafkago.Header{
		{Key: "years", Value: []byte(strings.Join(years, ","))},
		{Key: "generated_at", Value: []byte(s.GeneratedAt.Format(time.RFC3339))},
	}

	msgs := make([]kafkago.Message, 0, len(s.Rows))
	for _, row := range s.Rows {
		value := monthMessage{Month: row.Month, Counts: make(map[string]*int, len(years))}
		for j, y := range years {
			value.Counts[y] = row.Counts[j]
		}
		data, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("serialize month %d: %w", row.Month, err)
		}
		msgs = append(msgs, kafkago.Message{
			Key:     []byte(strconv.Itoa(row.Month)),
			Value:   data,
			Headers: headers,
		})
	}
	return msgs, nil
}
