// Package kafka provides the Kafka clients used by wordfreq, backed by
// segmentio/kafka-go. TopicReader drains one partition as a finite stream;
// Producer publishes JSON-encoded events.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/config"
	"github.com/segmentio/kafka-go"
)

// TopicReader reads a single partition from its first offset and reports
// io.EOF once the high-water mark is reached or the partition stays idle for
// the configured timeout.
type TopicReader struct {
	reader      *kafka.Reader
	idleTimeout time.Duration
	done        bool
	logger      *slog.Logger
}

// NewTopicReader creates a TopicReader for topic.
func NewTopicReader(cfg config.KafkaConfig, topic string) *TopicReader {
	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:   cfg.Brokers,
		Topic:     topic,
		Partition: cfg.Partition,
		MinBytes:  1,
		MaxBytes:  10e6,
		MaxWait:   cfg.MaxWait,
	})
	return &TopicReader{
		reader:      r,
		idleTimeout: cfg.IdleTimeout,
		logger:      slog.Default().With("component", "kafka-reader", "topic", topic),
	}
}

// Next returns the value of the next message.
func (t *TopicReader) Next(ctx context.Context) ([]byte, error) {
	if t.done {
		return nil, io.EOF
	}
	readCtx := ctx
	if t.idleTimeout > 0 {
		var cancel context.CancelFunc
		readCtx, cancel = context.WithTimeout(ctx, t.idleTimeout)
		defer cancel()
	}
	msg, err := t.reader.ReadMessage(readCtx)
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			t.logger.Debug("partition idle, treating as end of stream", "idle_timeout", t.idleTimeout)
			t.done = true
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reading kafka message: %w", err)
	}
	t.logger.Debug("message received",
		"partition", msg.Partition,
		"offset", msg.Offset,
		"high_water_mark", msg.HighWaterMark,
		"value_size", len(msg.Value),
	)
	if msg.Offset+1 >= msg.HighWaterMark {
		t.done = true
	}
	return msg.Value, nil
}

// Close closes the underlying Kafka reader.
func (t *TopicReader) Close() error {
	return t.reader.Close()
}
