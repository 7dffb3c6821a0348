package export

import (
	"context"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/kafka"
)

type messageSender interface {
	Send(ctx context.Context, msgs []kafka.Message) error
}

// FrequencyEvent is the JSON value of one published word.
type FrequencyEvent struct {
	RunID       string    `json:"run_id"`
	Word        string    `json:"word"`
	Count       int       `json:"count"`
	Policy      string    `json:"policy"`
	GeneratedAt time.Time `json:"generated_at"`
}

// KafkaSink publishes one event per word, keyed by word so updates for a
// word stay on one partition.
type KafkaSink struct {
	producer messageSender
}

// NewKafkaSink wraps producer, normally a *kafka.Producer.
func NewKafkaSink(producer messageSender) *KafkaSink {
	return &KafkaSink{producer: producer}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Export(ctx context.Context, r Report) error {
	if len(r.Frequencies) == 0 {
		return nil
	}
	events := make([]FrequencyEvent, 0, len(r.Frequencies))
	for _, f := range r.Frequencies {
		events = append(events, FrequencyEvent{
			RunID:       r.RunID,
			Word:        f.Word,
			Count:       f.Count,
			Policy:      r.Policy,
			GeneratedAt: r.GeneratedAt,
		})
	}
	msgs, err := kafka.EncodeJSON(events, func(e FrequencyEvent) string { return e.Word })
	if err != nil {
		return err
	}
	return s.producer.Send(ctx, msgs)
}
