package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/logger"
)

type messageReader interface {
	Next(ctx context.Context) ([]byte, error)
	Close() error
}

// Kafka tokenizes the values of messages read from a topic partition. Each
// message is treated as a block of text; words never span messages.
type Kafka struct {
	reader   messageReader
	maxLen   int
	pending  []string
	messages int
	logger   *slog.Logger
}

// NewKafka wraps reader, normally a *kafka.TopicReader.
func NewKafka(reader messageReader, maxLen int) *Kafka {
	return &Kafka{
		reader: reader,
		maxLen: maxLen,
		logger: logger.WithComponent("kafka-source"),
	}
}

func (k *Kafka) Next(ctx context.Context) (string, error) {
	for len(k.pending) == 0 {
		value, err := k.reader.Next(ctx)
		if err != nil {
			if errors.Is(err, io.EOF) {
				k.logger.Debug("topic drained", "messages", k.messages)
				return "", io.EOF
			}
			return "", fmt.Errorf("%w: %w", apperrors.ErrSourceUnavailable, err)
		}
		k.messages++
		k.pending = tokenizer.Tokenize(string(value), k.maxLen)
	}
	word := k.pending[0]
	k.pending = k.pending[1:]
	return word, nil
}

// Messages returns the number of messages consumed so far.
func (k *Kafka) Messages() int { return k.messages }

func (k *Kafka) Close() error {
	return k.reader.Close()
}
