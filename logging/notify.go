package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"slices"
	"time"

	"github.com/gen2brain/beeep"
	"go.uber.org/zap/zapcore"
)

// Notifier delivers a short message outside the terminal.
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// Notification is a destination handing accepted records to a Notifier.
// A record must reach the minimum level and satisfy every rule.
type Notification struct {
	notifier Notifier
	title    string
	min      Level
	rules    []Rule
	fields   []zapcore.Field
	timeout  time.Duration
}

var _ zapcore.Core = (*Notification)(nil)

const defaultNotifyTimeout = 10 * time.Second

// NewNotification creates a notification destination.
func NewNotification(n Notifier, title string, minLevel Level, rules ...Rule) *Notification {
	return &Notification{
		notifier: n,
		title:    title,
		min:      minLevel,
		rules:    rules,
		timeout:  defaultNotifyTimeout,
	}
}

// Enabled implements zapcore.LevelEnabler.
func (n *Notification) Enabled(l zapcore.Level) bool {
	return AtLeast(n.min).Enabled(l)
}

// With implements zapcore.Core.
func (n *Notification) With(fields []zapcore.Field) zapcore.Core {
	clone := *n
	clone.fields = append(slices.Clip(n.fields), fields...)

	return &clone
}

// Check implements zapcore.Core.
func (n *Notification) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if n.Enabled(ent.Level) {
		return ce.AddCore(ent, n)
	}

	return ce
}

// Write implements zapcore.Core.
func (n *Notification) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	rec := NewRecord(ent, append(slices.Clip(n.fields), fields...))
	for _, rule := range n.rules {
		if !rule(rec) {
			return nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), n.timeout)
	defer cancel()

	return n.notifier.Notify(ctx, n.title, rec.Message)
}

// Sync implements zapcore.Core.
func (n *Notification) Sync() error {
	return nil
}

// notifyHelpers are the programs the desktop notifier falls back on.
var notifyHelpers = map[string]string{
	"linux":   "notify-send",
	"freebsd": "notify-send",
	"openbsd": "notify-send",
	"netbsd":  "notify-send",
	"darwin":  "osascript",
}

var lookPath = exec.LookPath

// Desktop sends desktop notifications through beeep.
type Desktop struct {
	icon string
}

// NewDesktop probes the platform and returns a desktop notifier. It fails
// with ErrNotifierUnavailable when the platform has no notification helper.
func NewDesktop(icon string) (*Desktop, error) {
	return newDesktop(runtime.GOOS, icon)
}

func newDesktop(goos, icon string) (*Desktop, error) {
	if goos == "windows" {
		return &Desktop{icon: icon}, nil
	}

	helper, ok := notifyHelpers[goos]
	if !ok {
		return nil, fmt.Errorf("%w: no desktop notifications on %s", ErrNotifierUnavailable, goos)
	}

	if _, err := lookPath(helper); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNotifierUnavailable, helper, err)
	}

	return &Desktop{icon: icon}, nil
}

// Notify implements Notifier.
func (d *Desktop) Notify(_ context.Context, title, message string) error {
	return beeep.Notify(title, message, d.icon)
}

// Webhook posts notifications as JSON to an HTTP endpoint.
type Webhook struct {
	client  *http.Client
	url     string
	headers map[string]string
}

// WebhookOption configures a Webhook.
type WebhookOption func(*Webhook)

// WithHeaders sets custom HTTP headers sent with every POST.
func WithHeaders(h map[string]string) WebhookOption {
	return func(w *Webhook) { w.headers = h }
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(w *Webhook) { w.client = c }
}

// NewWebhook validates target and returns a webhook notifier.
func NewWebhook(target string, opts ...WebhookOption) (*Webhook, error) {
	u, err := url.ParseRequestURI(target)
	if err != nil {
		return nil, fmt.Errorf("%w: webhook url: %v", ErrNotifierUnavailable, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: webhook url: unsupported scheme %q", ErrNotifierUnavailable, u.Scheme)
	}

	w := &Webhook{
		client: &http.Client{Timeout: defaultNotifyTimeout},
		url:    target,
	}
	for _, opt := range opts {
		opt(w)
	}

	return w, nil
}

type webhookPayload struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notify implements Notifier.
func (w *Webhook) Notify(ctx context.Context, title, message string) error {
	body, err := json.Marshal(webhookPayload{Title: title, Message: message})
	if err != nil {
		return fmt.Errorf("webhook: marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range w.headers {
		req.Header.Set(k, v)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: HTTP %d", resp.StatusCode)
	}

	return nil
}
