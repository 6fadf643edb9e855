package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/blackwater-gg/craftworks/internal/surface"
	"github.com/blackwater-gg/craftworks/pkg/config"
	"github.com/blackwater-gg/craftworks/pkg/enums"
	"github.com/blackwater-gg/craftworks/pkg/logger"
	cwpubsub "github.com/blackwater-gg/craftworks/pkg/pubsub"
)

const deliverTimeout = 15 * time.Second

// Consumer drains the notification subscription and delivers each event to
// its configured mirror webhook.
type Consumer struct {
	sub      *pubsub.Subscriber
	webhooks config.WebhooksConfig
	client   *http.Client
	logg     *logger.Logger
}

// NewConsumer wires the notification subscription against the webhook config.
func NewConsumer(client *cwpubsub.Client, webhooks config.WebhooksConfig, logg *logger.Logger) (*Consumer, error) {
	if client == nil {
		return nil, fmt.Errorf("pubsub client required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	sub := client.NotificationSubscription()
	if sub == nil {
		return nil, fmt.Errorf("notification subscription not configured")
	}
	return &Consumer{
		sub:      sub,
		webhooks: webhooks,
		client:   &http.Client{Timeout: deliverTimeout},
		logg:     logg,
	}, nil
}

// Run blocks receiving messages until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	c.logg.Info(ctx, "notification consumer starting")
	return c.sub.Receive(ctx, c.handle)
}

func (c *Consumer) handle(ctx context.Context, msg *pubsub.Message) {
	var event OrderEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		// Poison messages cannot be redelivered into anything useful.
		c.logg.Error(ctx, "dropping undecodable order event", err)
		msg.Ack()
		return
	}

	ctx = c.logg.WithOrderID(ctx, event.OrderID)

	url := c.webhookFor(event.Action)
	if url == "" {
		msg.Ack()
		return
	}

	if err := c.deliver(ctx, url, event); err != nil {
		c.logg.Error(ctx, "webhook delivery failed", err)
		msg.Nack()
		return
	}
	msg.Ack()
}

func (c *Consumer) webhookFor(action enums.LedgerAction) string {
	var url string
	switch action {
	case enums.LedgerActionCreated:
		url = c.webhooks.Created
	case enums.LedgerActionProgress:
		url = c.webhooks.Progress
	case enums.LedgerActionCompleted:
		url = c.webhooks.Completed
	case enums.LedgerActionHandedOff:
		url = c.webhooks.HandedOff
	}
	if url == "" {
		url = c.webhooks.Default
	}
	return url
}

type webhookPayload struct {
	Embeds []surface.Embed `json:"embeds"`
}

func (c *Consumer) deliver(ctx context.Context, url string, event OrderEvent) error {
	payload, err := json.Marshal(webhookPayload{Embeds: []surface.Embed{EventEmbed(event)}})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
