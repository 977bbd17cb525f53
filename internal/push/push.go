// Package push is the OneSignal collaborator. Delivery is best effort and
// fire-and-forget: errors are logged, never surfaced, and never block the
// state transition that triggered them.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

const endpoint = "https://onesignal.com/api/v1/notifications"

type Client struct {
	appID  string
	apiKey string
	http   *http.Client
	logger *slog.Logger
}

func NewClient(appID, apiKey string, logger *slog.Logger) *Client {
	return &Client{
		appID:  appID,
		apiKey: apiKey,
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

// NotifyUser sends to exactly one user, addressed by their external id.
func (c *Client) NotifyUser(ctx context.Context, userID, title, body string) error {
	payload := map[string]interface{}{
		"app_id":          c.appID,
		"target_channel":  "push",
		"include_aliases": map[string][]string{"external_id": {userID}},
		"headings":        map[string]string{"en": title},
		"contents":        map[string]string{"en": body},
	}
	return c.send(ctx, payload)
}

// NotifyAll broadcasts to every subscribed user.
func (c *Client) NotifyAll(ctx context.Context, title, body string) error {
	payload := map[string]interface{}{
		"app_id":            c.appID,
		"target_channel":    "push",
		"included_segments": []string{"Subscribed Users"},
		"headings":          map[string]string{"en": title},
		"contents":          map[string]string{"en": body},
	}
	return c.send(ctx, payload)
}

func (c *Client) send(ctx context.Context, payload map[string]interface{}) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Basic "+c.apiKey)

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return fmt.Errorf("onesignal returned status %d", res.StatusCode)
	}
	return nil
}

// Sender is what the services depend on; swapped for a recorder in tests.
type Sender interface {
	NotifyUser(ctx context.Context, userID, title, body string) error
	NotifyAll(ctx context.Context, title, body string) error
}

// Notify wraps a Sender call with the fire-and-forget policy: log and move on.
func Notify(logger *slog.Logger, err error) {
	if err != nil {
		logger.Warn("push notification failed", "error", err)
	}
}
