package notify

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	cwpubsub "github.com/blackwater-gg/craftworks/pkg/pubsub"
)

// Publisher mirrors committed lifecycle transitions into the notification
// topic. Delivery is best-effort; callers must not roll back on failure.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

type pubsubPublisher struct {
	publisher *pubsub.Publisher
}

// NewPublisher wires the configured notification topic.
func NewPublisher(client *cwpubsub.Client) (Publisher, error) {
	if client == nil {
		return nil, fmt.Errorf("pubsub client required")
	}
	publisher := client.NotificationPublisher()
	if publisher == nil {
		return nil, fmt.Errorf("notification topic not configured")
	}
	return &pubsubPublisher{publisher: publisher}, nil
}

func (p *pubsubPublisher) PublishOrderEvent(ctx context.Context, event OrderEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"action": string(event.Action),
		},
	})
	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish order event: %w", err)
	}
	return nil
}
