package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// WebhookChannel posts failure messages to an instant-message webhook as a
// JSON object {"text": "..."}.
type WebhookChannel struct {
	url    string
	client *http.Client
}

// NewWebhookChannel constructs a webhook channel. A nil client falls back to
// http.DefaultClient.
func NewWebhookChannel(url string, client *http.Client) *WebhookChannel {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebhookChannel{url: url, client: client}
}

// Name identifies the channel in logs and combined errors.
func (c *WebhookChannel) Name() string { return "webhook" }

// Deliver posts the message body; the subject is already embedded in it.
func (c *WebhookChannel) Deliver(ctx context.Context, _, body string) error {
	payload, err := json.Marshal(struct {
		Text string `json:"text"`
	}{Text: body})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("post webhook: unexpected status %d", resp.StatusCode)
	}
	return nil
}
