// Package kafka publishes audit events to a Kafka topic via franz-go.
//
// The publisher implements audit.Store so the worker can treat Kafka like
// any other sink. Produces are synchronous from the worker's point of view,
// which keeps ordering per subject without back-pressuring request handlers
// (the channel in front of the worker absorbs bursts).
package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/twmb/franz-go/pkg/kgo"

	audit "signet/pkg/platform/audit"
)

type Publisher struct {
	client *kgo.Client
	topic  string
}

// New connects to the given seed brokers and targets the given topic.
func New(brokers []string, topic string) (*Publisher, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka client: %w", err)
	}
	return &Publisher{client: client, topic: topic}, nil
}

// Append produces one event, keyed by subject so events for the same user
// land in one partition in order.
func (p *Publisher) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(event.Subject),
		Value: value,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes buffered records and releases the client.
func (p *Publisher) Close() {
	p.client.Close()
}
