// Package queue publishes registration events to Kafka. Publishing is best
// effort from the caller's point of view: report generation and document
// record sync consume downstream and can replay, so a failed produce is
// logged, never surfaced to the registering client.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"mhregistry/internal/platform/config"
)

// Publisher emits registration lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
	Close()
}

// KafkaPublisher produces JSON events with franz-go.
type KafkaPublisher struct {
	client *kgo.Client
	logger *slog.Logger
}

// NewKafka builds a publisher connected to the configured brokers.
// Returns nil if no brokers are configured (publishing disabled).
func NewKafka(cfg config.KafkaConfig, logger *slog.Logger) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, nil
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
		kgo.ProduceRequestTimeout(10*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &KafkaPublisher{client: client, logger: logger}, nil
}

func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode event payload: %w", err)
	}
	record := &kgo.Record{Topic: topic, Key: []byte(key), Value: value}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", topic, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() {
	p.client.Close()
}
