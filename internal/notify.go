package internal

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/slack-go/slack"
)

// DefaultDeliveryTimeout bounds the outbound Slack call. Delivery blocks the
// webhook response, so it has to stay well under upstream request budgets.
const DefaultDeliveryTimeout = 10 * time.Second

// Notifier posts rendered messages to a single preconfigured Slack incoming
// webhook. Failures are surfaced to the caller, never retried.
type Notifier struct {
	webhookURL string
	client     *http.Client
	logger     *log.Logger
}

func NewNotifier(webhookURL string, timeout time.Duration, logger *log.Logger) *Notifier {
	if timeout <= 0 {
		timeout = DefaultDeliveryTimeout
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Notifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

func (n *Notifier) Deliver(ctx context.Context, msg *slack.WebhookMessage) error {
	if n.webhookURL == "" {
		return fmt.Errorf("%w: no slack webhook url configured", ErrDeliveryFailed)
	}
	if err := slack.PostWebhookCustomHTTPContext(ctx, n.webhookURL, n.client, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	return nil
}
