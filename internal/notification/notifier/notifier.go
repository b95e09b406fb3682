package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Notifier is an interface so the delivery channel can change
// (Email/SMS/Slack) without touching the worker.
type Notifier interface {
	Send(ctx context.Context, to, subject, html string) error
}

// ConsoleNotifier logs instead of sending. Used in dev and whenever the
// email API key is missing.
type ConsoleNotifier struct{}

func NewConsole() *ConsoleNotifier {
	return &ConsoleNotifier{}
}

func (c *ConsoleNotifier) Send(_ context.Context, to, subject, _ string) error {
	log.Printf("[notify] to=%s :: %s\n", to, subject)
	return nil
}

// ResendNotifier delivers through the Resend HTTP API.
type ResendNotifier struct {
	apiKey string
	from   string
	client *http.Client
}

func NewResend(apiKey, from string) *ResendNotifier {
	return &ResendNotifier{
		apiKey: apiKey,
		from:   from,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

func (r *ResendNotifier) Send(ctx context.Context, to, subject, html string) error {
	payload, err := json.Marshal(map[string]any{
		"from":    r.from,
		"to":      []string{to},
		"subject": subject,
		"html":    html,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.resend.com/emails", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	res, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("resend send failed: %s (%d)", string(body), res.StatusCode)
	}
	return nil
}
