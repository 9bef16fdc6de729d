// Package notify delivers task event messages to Telegram. Delivery is
// best-effort: an unconfigured or failing notifier never blocks the request
// that triggered it.
package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/limaudio/taskman/internal/infra/logging"
)

// TelegramConfig holds configuration for the Telegram notifier.
type TelegramConfig struct {
	// BotToken is the Telegram bot API token; empty disables delivery
	BotToken string `env:"BOT_TOKEN" default:""`
	// ChatID is the default chat for broadcast messages; empty disables broadcasts
	ChatID string `env:"CHAT_ID" default:""`
	// APIURL is the Telegram Bot API base URL
	APIURL string `env:"API_URL" default:"https://api.telegram.org"`
	// Timeout is the per-request timeout in seconds
	Timeout int `env:"TIMEOUT" default:"5"`
}

// Notifier sends HTML-formatted messages to Telegram chats.
type Notifier interface {
	// Send delivers a message to the configured default chat.
	Send(ctx context.Context, text string) error

	// SendTo delivers a message to a specific chat.
	SendTo(ctx context.Context, chatID, text string) error
}

// Telegram implements Notifier against the Telegram Bot API.
type Telegram struct {
	cfg    TelegramConfig
	client *http.Client
	log    logging.Logger
}

var _ Notifier = (*Telegram)(nil)

// NewTelegram creates a new Telegram notifier.
func NewTelegram(cfg TelegramConfig) *Telegram {
	return &Telegram{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		log: logging.GetLogger("notify.telegram"),
	}
}

// Send implements Notifier.Send. Without a configured default chat it is a
// silent no-op.
func (t *Telegram) Send(ctx context.Context, text string) error {
	if t.cfg.ChatID == "" {
		return nil
	}

	return t.SendTo(ctx, t.cfg.ChatID, text)
}

// SendTo implements Notifier.SendTo. Without a configured bot token it is a
// silent no-op.
func (t *Telegram) SendTo(ctx context.Context, chatID, text string) error {
	if t.cfg.BotToken == "" || chatID == "" {
		return nil
	}

	form := url.Values{}
	form.Set("chat_id", chatID)
	form.Set("text", text)
	form.Set("parse_mode", "HTML")
	form.Set("disable_web_page_preview", "1")

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimRight(t.cfg.APIURL, "/"), t.cfg.BotToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

		return fmt.Errorf("send telegram message: status %d: %s", resp.StatusCode, string(body))
	}

	return nil
}

// NopNotifier is a Notifier that drops every message. Useful in tests.
type NopNotifier struct{}

var _ Notifier = NopNotifier{}

// Send implements Notifier.Send.
func (NopNotifier) Send(context.Context, string) error { return nil }

// SendTo implements Notifier.SendTo.
func (NopNotifier) SendTo(context.Context, string, string) error { return nil }
