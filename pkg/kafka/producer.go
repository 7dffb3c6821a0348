package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/config"
	"github.com/segmentio/kafka-go"
)

// maxChunk caps the messages handed to one WriteMessages call so a large
// report does not build a single oversized request.
const maxChunk = 1000

// Message is a keyed, already encoded record.
type Message struct {
	Key   string
	Value []byte
}

// EncodeJSON turns values into messages keyed by key(v).
func EncodeJSON[T any](values []T, key func(T) string) ([]Message, error) {
	out := make([]Message, 0, len(values))
	for i, v := range values {
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding message %d: %w", i, err)
		}
		out = append(out, Message{Key: key(v), Value: data})
	}
	return out, nil
}

// Producer writes messages to one topic, hashing keys to partitions.
type Producer struct {
	writer *kafka.Writer
	logger *slog.Logger
}

func NewProducer(cfg config.KafkaConfig, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchSize:    maxChunk,
			BatchTimeout: 10 * time.Millisecond,
			RequiredAcks: kafka.RequireAll,
		},
		logger: slog.Default().With("component", "kafka-producer", "topic", topic),
	}
}

// Send writes msgs synchronously in chunks of at most maxChunk. The error
// says how many messages were acknowledged before the failing chunk.
func (p *Producer) Send(ctx context.Context, msgs []Message) error {
	sent := 0
	for start := 0; start < len(msgs); start += maxChunk {
		end := min(start+maxChunk, len(msgs))
		chunk := make([]kafka.Message, 0, end-start)
		for _, m := range msgs[start:end] {
			chunk = append(chunk, kafka.Message{Key: []byte(m.Key), Value: m.Value})
		}
		if err := p.writer.WriteMessages(ctx, chunk...); err != nil {
			return fmt.Errorf("writing messages %d-%d of %d (%d acknowledged): %w",
				start, end-1, len(msgs), sent, err)
		}
		sent += len(chunk)
	}
	p.logger.Debug("messages sent", "count", sent)
	return nil
}

// Close flushes pending writes and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}
