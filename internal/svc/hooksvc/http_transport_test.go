package hooksvc_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	http_ "github.com/limaudio/taskman/internal/infra/transport/http"
	"github.com/limaudio/taskman/internal/svc/hooksvc"
)

type recordingNotifier struct {
	personal map[string][]string
}

func (m *recordingNotifier) Send(context.Context, string) error { return nil }

func (m *recordingNotifier) SendTo(_ context.Context, chatID, text string) error {
	if m.personal == nil {
		m.personal = make(map[string][]string)
	}

	m.personal[chatID] = append(m.personal[chatID], text)

	return nil
}

func postUpdate(t *testing.T, notifier *recordingNotifier, body string) *httptest.ResponseRecorder {
	t.Helper()

	rt := http_.NewRouter()
	hooksvc.NewHTTPTransport(notifier).RegisterRoutes(rt)

	req := httptest.NewRequest(http.MethodPost, "/webhook/telegram", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	rt.ServeHTTP(rec, req)

	return rec
}

func TestHandleTelegram_MyID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		body      string
		wantReply string
	}{
		{
			name:      "plain command",
			body:      `{"message":{"chat":{"id":12345},"text":"/myid"}}`,
			wantReply: "12345",
		},
		{
			name:      "bot-suffixed command",
			body:      `{"message":{"chat":{"id":12345},"text":"/MyId@taskbot hello"}}`,
			wantReply: "12345",
		},
		{
			name:      "edited message",
			body:      `{"edited_message":{"chat":{"id":678},"text":"/myid"}}`,
			wantReply: "678",
		},
		{
			name: "other text ignored",
			body: `{"message":{"chat":{"id":12345},"text":"hello"}}`,
		},
		{
			name: "empty update ignored",
			body: `{}`,
		},
		{
			name: "malformed body ignored",
			body: `{not json`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			notifier := &recordingNotifier{}

			rec := postUpdate(t, notifier, tt.body)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}

			if got := strings.TrimSpace(rec.Body.String()); got != `{"ok":true}` {
				t.Errorf("body = %s", got)
			}

			if tt.wantReply == "" {
				if len(notifier.personal) != 0 {
					t.Errorf("unexpected replies: %v", notifier.personal)
				}

				return
			}

			replies := notifier.personal[tt.wantReply]
			if len(replies) != 1 {
				t.Fatalf("chat %s got %d replies, want 1", tt.wantReply, len(replies))
			}

			if !strings.Contains(replies[0], tt.wantReply) {
				t.Errorf("reply %q does not carry the chat id", replies[0])
			}
		})
	}
}
