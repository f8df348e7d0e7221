package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/language"

	"audex/internal/config"
	"audex/internal/l10n"
)

const userAgent = "audex/0.1.0"

// Service defines the notification surface exposed to the CLI.
type Service interface {
	NotifyExportReady(ctx context.Context, outputPath string) error
	NotifyExportFailed(ctx context.Context, message string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		lang:     l10n.Parse(cfg.Locale.Language),
	}
}

// Enabled reports whether svc actually sends anything.
func Enabled(svc Service) bool {
	_, noop := svc.(noopService)
	return svc != nil && !noop
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	lang     language.Tag
}

func (n *ntfyService) NotifyExportReady(ctx context.Context, outputPath string) error {
	name := filepath.Base(strings.TrimSpace(outputPath))
	data := payload{
		title:   l10n.Text(n.lang, l10n.NotifyReadyTitle),
		message: l10n.Text(n.lang, l10n.StateDone, name),
		tags:    []string{"audex", "export", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyExportFailed(ctx context.Context, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		message = "unknown"
	}
	data := payload{
		title:    l10n.Text(n.lang, l10n.NotifyFailedTitle),
		message:  l10n.Text(n.lang, l10n.StateError, message),
		tags:     []string{"audex", "export", "error"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "audex - Test",
		message:  l10n.Text(n.lang, l10n.NotifyTest),
		tags:     []string{"audex", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyExportReady(context.Context, string) error  { return nil }
func (noopService) NotifyExportFailed(context.Context, string) error { return nil }
func (noopService) TestNotification(context.Context) error           { return nil }
