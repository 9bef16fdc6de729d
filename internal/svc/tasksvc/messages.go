package tasksvc

import (
	"fmt"
	"html"

	"github.com/limaudio/taskman/internal/domain"
)

// Message builders for the Telegram channel. Texts are HTML-formatted and in
// Russian, matching what the team chat expects.

// TaskCreatedMessage announces a new task.
func TaskCreatedMessage(t *domain.Task) string {
	msg := fmt.Sprintf("🆕 Новая задача: <b>%s</b>", html.EscapeString(t.Title))

	if t.Description != "" {
		msg += "\nОписание: " + html.EscapeString(t.Description)
	}

	return msg + fmt.Sprintf("\nСтатус: %s\nID: %d", t.Status, t.ID)
}

// CommentAddedMessage announces a new comment on a task.
func CommentAddedMessage(taskID int64, text string) string {
	return fmt.Sprintf("💬 Новый комментарий к задаче #%d:\n%s", taskID, text)
}

// StatusChangedMessage announces a status transition.
func StatusChangedMessage(t *domain.Task) string {
	msg := fmt.Sprintf("🔄 Обновление статуса задачи #%d: <b>%s</b>\n<b>%s</b>",
		t.ID, t.Status, html.EscapeString(t.Title))

	if t.Description != "" {
		msg += "\nОписание: " + html.EscapeString(t.Description)
	}

	return msg
}

// UrgencyChangedMessage announces an urgency change.
func UrgencyChangedMessage(t *domain.Task) string {
	msg := fmt.Sprintf("🔄 Обновление срочности задачи #%d: <b>%d</b>\n<b>%s</b>",
		t.ID, t.Urgency, html.EscapeString(t.Title))

	if t.Description != "" {
		msg += "\nОписание: " + html.EscapeString(t.Description)
	}

	return msg
}

// DeadlineMessage warns about a deadline; timeLeft is a preformatted span
// such as "2 дн., 3 ч." or the literal "просрочено".
func DeadlineMessage(taskID int64, title, timeLeft string) string {
	if timeLeft == "просрочено" {
		return fmt.Sprintf("⛔ Задача #%d (%s) — %s", taskID, title, timeLeft)
	}

	return fmt.Sprintf("⚠️ Задача #%d (%s) — дедлайн через %s", taskID, title, timeLeft)
}
