// Package feed appends entries to community activity feeds.
package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Shopify/sarama"

	"github.com/osse101/EcoRewards_Go/internal/clock"
	"github.com/osse101/EcoRewards_Go/internal/domain"
	"github.com/osse101/EcoRewards_Go/internal/event"
)

// Sink receives feed entries. Callers treat failures as non-fatal.
type Sink interface {
	Append(ctx context.Context, communityID string, fe domain.FeedEvent) error
}

// NopSink drops every entry
type NopSink struct{}

// Append does nothing
func (NopSink) Append(context.Context, string, domain.FeedEvent) error { return nil }

// BusSink republishes feed entries on the internal event bus
type BusSink struct {
	bus   event.Bus
	clock clock.Clock
}

// NewBusSink creates a sink publishing feed.appended events
func NewBusSink(bus event.Bus, clk clock.Clock) *BusSink {
	return &BusSink{bus: bus, clock: clk}
}

// Append publishes fe as a feed.appended event
func (s *BusSink) Append(ctx context.Context, communityID string, fe domain.FeedEvent) error {
	return s.bus.Publish(ctx, event.NewFeedAppendedEvent(communityID, fe, s.clock.Now()))
}

// KafkaSink produces feed entries to a Kafka topic keyed by community
type KafkaSink struct {
	producer sarama.SyncProducer
	topic    string
}

// kafkaEnvelope is the message value written to the feed topic
type kafkaEnvelope struct {
	CommunityID string           `json:"community_id"`
	Event       domain.FeedEvent `json:"event"`
}

// NewKafkaSink dials brokers with a synchronous producer
func NewKafkaSink(clientID string, brokers []string, topic string) (*KafkaSink, error) {
	config := sarama.NewConfig()
	config.ClientID = clientID
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForLocal

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewKafkaSinkWithProducer(producer, topic), nil
}

// NewKafkaSinkWithProducer wraps an existing producer
func NewKafkaSinkWithProducer(producer sarama.SyncProducer, topic string) *KafkaSink {
	return &KafkaSink{producer: producer, topic: topic}
}

// Append sends one message for fe
func (s *KafkaSink) Append(ctx context.Context, communityID string, fe domain.FeedEvent) error {
	value, err := json.Marshal(kafkaEnvelope{CommunityID: communityID, Event: fe})
	if err != nil {
		return fmt.Errorf("failed to encode feed event: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(communityID),
		Value: sarama.ByteEncoder(value),
	}
	if _, _, err := s.producer.SendMessage(msg); err != nil {
		return fmt.Errorf("failed to send feed event: %w", err)
	}
	return nil
}

// Close shuts down the producer
func (s *KafkaSink) Close() error {
	return s.producer.Close()
}
