package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
)

// NotificationSink shows a user-facing notification. Callers treat it as
// fire-and-forget.
type NotificationSink interface {
	Notify(ctx context.Context, title, message string) error
}

// LogNotifier writes notifications to the log.
type LogNotifier struct {
	Logger *zap.Logger
}

func (n LogNotifier) Notify(_ context.Context, title, message string) error {
	if n.Logger != nil {
		n.Logger.Info("notification", zap.String("title", title), zap.String("message", message))
	}
	return nil
}

// WebhookNotifier posts {"title","message","sent_at"} to a URL, for relays
// that forward alerts to trusted contacts.
type WebhookNotifier struct {
	URL    string
	Client *http.Client
	Clock  clock.Clock
}

// NewWebhookNotifier returns a notifier with a bounded client timeout.
// A nil clk uses the wall clock.
func NewWebhookNotifier(url string, timeout time.Duration, clk clock.Clock) *WebhookNotifier {
	if clk == nil {
		clk = clock.New()
	}
	return &WebhookNotifier{URL: url, Client: &http.Client{Timeout: timeout}, Clock: clk}
}

func (n *WebhookNotifier) Notify(ctx context.Context, title, message string) error {
	body, err := json.Marshal(map[string]any{
		"title":   title,
		"message": message,
		"sent_at": n.now().UTC(),
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}

func (n *WebhookNotifier) now() time.Time {
	if n.Clock == nil {
		return time.Now()
	}
	return n.Clock.Now()
}

// MultiNotifier fans out to every sink and returns the first error.
type MultiNotifier []NotificationSink

func (m MultiNotifier) Notify(ctx context.Context, title, message string) error {
	var first error
	for _, sink := range m {
		if err := sink.Notify(ctx, title, message); err != nil && first == nil {
			first = err
		}
	}
	return first
}
