package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"havenstay/models"
)

// WebhookSender posts notification requests to the external sender's HTTP
// endpoint. The sender owns templates and delivery channels.
type WebhookSender struct {
	URL    string
	Client *http.Client
}

func NewWebhookSender(url string) *WebhookSender {
	return &WebhookSender{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *WebhookSender) Send(ctx context.Context, template, recipient string, params map[string]string) error {
	if s.URL == "" {
		// No sender configured; notifications are silently skipped.
		return nil
	}

	payload := models.NotificationRequest{
		Template:  template,
		Recipient: recipient,
		Params:    params,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification sender returned status %d", resp.StatusCode)
	}
	return nil
}
