package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// AccessHandler processes one decoded access event.
type AccessHandler func(ctx context.Context, eventType string, access AccessEvent) error

// AuditSubscriber consumes the access stream through a consumer group and
// hands each event to its handler. The service runs one to feed the audit
// log; other consumers (reporting, alerting) can join with their own group.
type AuditSubscriber struct {
	client        *redis.Client
	group         string
	consumer      string
	handler       AccessHandler
	batchSize     int64
	blockDuration time.Duration
}

// NewAuditSubscriber creates a subscriber for the access stream.
func NewAuditSubscriber(client *redis.Client, group, consumer string, handler AccessHandler) *AuditSubscriber {
	return &AuditSubscriber{
		client:        client,
		group:         group,
		consumer:      consumer,
		handler:       handler,
		batchSize:     10,
		blockDuration: 5 * time.Second,
	}
}

// Start consumes until the context is cancelled. Failed events are not
// ACKed and will be redelivered.
func (s *AuditSubscriber) Start(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, AccessEventsStream, s.group, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	log.Printf("Audit subscriber started: group=%s, consumer=%s", s.group, s.consumer)

	for {
		select {
		case <-ctx.Done():
			log.Printf("Audit subscriber stopping")
			return ctx.Err()
		default:
			if err := s.readBatch(ctx); err != nil {
				log.Printf("Error reading access events: %v", err)
				time.Sleep(time.Second)
			}
		}
	}
}

func (s *AuditSubscriber) readBatch(ctx context.Context) error {
	streams, err := s.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    s.group,
		Consumer: s.consumer,
		Streams:  []string{AccessEventsStream, ">"},
		Count:    s.batchSize,
		Block:    s.blockDuration,
	}).Result()

	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read from access stream: %w", err)
	}

	for _, stream := range streams {
		for _, message := range stream.Messages {
			if err := s.handleMessage(ctx, message); err != nil {
				log.Printf("Failed to process access event %s: %v", message.ID, err)
				continue
			}
			if err := s.client.XAck(ctx, AccessEventsStream, s.group, message.ID).Err(); err != nil {
				log.Printf("Failed to ACK access event %s: %v", message.ID, err)
			}
		}
	}

	return nil
}

func (s *AuditSubscriber) handleMessage(ctx context.Context, message redis.XMessage) error {
	raw, ok := message.Values["event"].(string)
	if !ok {
		return fmt.Errorf("invalid message format")
	}

	// Decode in two steps: the envelope first, then Data into AccessEvent.
	var envelope struct {
		Type      string          `json:"type"`
		Timestamp time.Time       `json:"timestamp"`
		Data      json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return fmt.Errorf("failed to unmarshal access event: %w", err)
	}
	var access AccessEvent
	if err := json.Unmarshal(envelope.Data, &access); err != nil {
		return fmt.Errorf("failed to unmarshal access payload: %w", err)
	}

	return s.handler(ctx, envelope.Type, access)
}
