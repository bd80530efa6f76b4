package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Sink is the publishing contract consumed by the orchestrators.
type Sink interface {
	PublishAccess(ctx context.Context, eventType string, access AccessEvent) error
}

// Publisher writes access events to the Redis access stream.
type Publisher struct {
	client *redis.Client
	stream string
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client, stream: AccessEventsStream}
}

// PublishAccess appends one access-audit event to the stream.
func (p *Publisher) PublishAccess(ctx context.Context, eventType string, access AccessEvent) error {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      access,
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal access event: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"event": eventJSON,
		},
	}

	if _, err := p.client.XAdd(ctx, args).Result(); err != nil {
		return fmt.Errorf("failed to publish access event: %w", err)
	}

	return nil
}
