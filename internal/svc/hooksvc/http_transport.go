// Package hooksvc receives inbound Telegram webhook updates. Its only
// command lets a chat member ask the bot for their chat id, which an admin
// then binds to their user account.
package hooksvc

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/limaudio/taskman/internal/infra/logging"
	http_ "github.com/limaudio/taskman/internal/infra/transport/http"
	"github.com/limaudio/taskman/internal/notify"
)

// update is the subset of the Telegram Update payload the hook cares about.
type update struct {
	Message       *message `json:"message"`
	EditedMessage *message `json:"edited_message"`
}

type message struct {
	Chat chat   `json:"chat"`
	Text string `json:"text"`
}

type chat struct {
	ID int64 `json:"id"`
}

// HTTPTransport exposes the Telegram webhook over HTTP.
type HTTPTransport struct {
	notifier notify.Notifier
	log      logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(notifier notify.Notifier) *HTTPTransport {
	return &HTTPTransport{
		notifier: notifier,
		log:      logging.GetLogger("svc.hooksvc.http_transport"),
	}
}

// RegisterRoutes mounts the webhook endpoint:
// - POST /webhook/telegram: receive a Telegram update (no auth; Telegram
// cannot send a bearer token).
func (ht *HTTPTransport) RegisterRoutes(rt *http_.Router) {
	rt.Handle(http.MethodPost, "/webhook/telegram", ht.HandleTelegram)
}

// HandleTelegram processes one Telegram update. The response is always
// 200 {"ok":true}: any other status makes Telegram retry the delivery.
func (ht *HTTPTransport) HandleTelegram(w http.ResponseWriter, r *http.Request, _ http_.Params) {
	_ = ht.handleTelegram(w, r)
}

func (ht *HTTPTransport) handleTelegram(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.WarnContext(ctx, "webhook processing failed", "error", err)
		} else {
			log.DebugContext(ctx, "webhook processed")
		}

		http_.JSON(w, http.StatusOK, map[string]bool{"ok": true})
	}(r.Context())

	var upd update

	if err := http_.DecodeJSON(r, &upd); err != nil {
		return fmt.Errorf("decode update: %w", err)
	}

	msg := upd.Message
	if msg == nil {
		msg = upd.EditedMessage
	}

	if msg == nil || msg.Chat.ID == 0 {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return nil
	}

	// Commands arrive as /myid or /myid@botname.
	cmd := strings.ToLower(strings.Fields(text)[0])
	if cmd != "/myid" && !strings.HasPrefix(cmd, "/myid@") {
		return nil
	}

	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	reply := "Ваш id, передайте его администратору: " + chatID

	if err := ht.notifier.SendTo(r.Context(), chatID, reply); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}

	return nil
}
