// Package kafka publishes audit events to a Kafka topic. The broker is the
// long-term home for audit history; the in-process store only serves reads.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kgo"

	audit "bitid/pkg/platform/audit"
)

// payload is the JSON structure written to the topic.
type payload struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	UserID    string `json:"user_id,omitempty"`
	Action    string `json:"action"`
	Subject   string `json:"subject,omitempty"`
	Wallet    string `json:"wallet,omitempty"`
	Device    string `json:"device,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Sink produces one record per audit event, keyed by user id so per-user
// ordering is preserved within a partition.
type Sink struct {
	client *kgo.Client
	topic  string
}

// NewSink connects to the given seed brokers.
func NewSink(brokers []string, topic string) (*Sink, error) {
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerBatchCompression(kgo.SnappyCompression()),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return &Sink{client: client, topic: topic}, nil
}

// NewSinkWithClient wraps an existing client. Used by tests.
func NewSinkWithClient(client *kgo.Client, topic string) *Sink {
	return &Sink{client: client, topic: topic}
}

// Append produces the event synchronously. The publisher treats sink
// failures as non-fatal, so blocking here keeps delivery ordered without
// risking domain operations.
func (s *Sink) Append(ctx context.Context, event audit.Event) error {
	value, err := json.Marshal(payload{
		ID:        uuid.NewString(),
		Timestamp: event.Timestamp.Format(time.RFC3339Nano),
		UserID:    event.UserID,
		Action:    event.Action,
		Subject:   event.Subject,
		Wallet:    event.Wallet,
		Device:    event.Device,
		RequestID: event.RequestID,
		Reason:    event.Reason,
	})
	if err != nil {
		return fmt.Errorf("encode audit event: %w", err)
	}

	record := &kgo.Record{
		Topic: s.topic,
		Key:   []byte(event.UserID),
		Value: value,
	}
	if err := s.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("produce audit event: %w", err)
	}
	return nil
}

// Close flushes and releases the client.
func (s *Sink) Close() {
	s.client.Close()
}
