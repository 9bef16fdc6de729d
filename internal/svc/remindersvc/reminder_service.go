// Package remindersvc watches task deadlines and pushes Telegram warnings
// when a task burns through 70% and 90% of its allotted time, and when it
// goes overdue.
package remindersvc

import (
	"context"
	"fmt"
	"time"

	"github.com/limaudio/taskman/internal/infra/logging"
	"github.com/limaudio/taskman/internal/notify"
	"github.com/limaudio/taskman/internal/repo/task"
	"github.com/limaudio/taskman/internal/svc/tasksvc"
)

// Thresholds as fractions of total time remaining.
const (
	warnFraction  = 0.30
	finalFraction = 0.10
)

// ReminderService sweeps tasks with deadlines and fires notifications.
type ReminderService struct {
	tasks    task.Repository
	notifier notify.Notifier
	log      logging.Logger
}

// NewReminderService creates a new ReminderService instance.
func NewReminderService(tasks task.Repository, notifier notify.Notifier) *ReminderService {
	return &ReminderService{
		tasks:    tasks,
		notifier: notifier,
		log:      logging.GetLogger("svc.remindersvc.reminder_service"),
	}
}

// Sweep examines every task with a deadline and sends reminders for those
// crossing an unnotified threshold. Each threshold fires once per task.
func (s *ReminderService) Sweep(ctx context.Context, now time.Time) error {
	due, err := s.tasks.DueTasks(ctx)
	if err != nil {
		return fmt.Errorf("load due tasks: %w", err)
	}

	for _, t := range due {
		s.check(ctx, t, now)
	}

	s.log.DebugContext(ctx, "sweep complete", "tasks", len(due))

	return nil
}

func (s *ReminderService) check(ctx context.Context, t *task.DueTask, now time.Time) {
	created, err := time.Parse(time.RFC3339, t.CreatedAt)
	if err != nil {
		s.log.WarnContext(ctx, "bad created_at", "task", t.ID, "value", t.CreatedAt)
		return
	}

	due, err := time.Parse(time.RFC3339, t.DueAt)
	if err != nil {
		s.log.WarnContext(ctx, "bad due_at", "task", t.ID, "value", t.DueAt)
		return
	}

	total := due.Sub(created)
	if total <= 0 {
		return
	}

	left := due.Sub(now)
	pctLeft := float64(left) / float64(total)

	// Every threshold the task has crossed since the last sweep is marked in
	// this one, so a task first seen deep inside a window never gets a stale
	// earlier warning on the next pass. One message covers them all.
	if left <= 0 {
		if t.Notified0 {
			return
		}

		s.markNotified(ctx, t.ID, 0)
		s.notify(ctx, t, left)

		return
	}

	var crossed bool

	if pctLeft <= finalFraction && !t.Notified10 {
		s.markNotified(ctx, t.ID, 10)

		crossed = true
	}

	if pctLeft <= warnFraction && !t.Notified30 {
		s.markNotified(ctx, t.ID, 30)

		crossed = true
	}

	if crossed {
		s.notify(ctx, t, left)
	}
}

func (s *ReminderService) notify(ctx context.Context, t *task.DueTask, left time.Duration) {
	text := tasksvc.DeadlineMessage(t.ID, t.Title, FormatTimeLeft(left))

	if err := s.notifier.Send(ctx, text); err != nil {
		s.log.WarnContext(ctx, "group notification failed", "task", t.ID, "error", err)
	}

	if t.AssigneeTelegram == nil || *t.AssigneeTelegram == "" {
		return
	}

	if err := s.notifier.SendTo(ctx, *t.AssigneeTelegram, text); err != nil {
		s.log.WarnContext(ctx, "personal notification failed", "task", t.ID, "error", err)
	}
}

func (s *ReminderService) markNotified(ctx context.Context, taskID int64, threshold int) {
	if err := s.tasks.MarkNotified(ctx, taskID, threshold); err != nil {
		s.log.ErrorContext(ctx, "mark notified failed", "task", taskID, "threshold", threshold, "error", err)
	}
}

// FormatTimeLeft renders a remaining duration for a reminder message.
// Negative durations read as overdue.
func FormatTimeLeft(left time.Duration) string {
	if left < 0 {
		return "просрочено"
	}

	days := int(left.Hours()) / 24
	hours := int(left.Hours()) % 24
	minutes := int(left.Minutes()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%d дн., %d ч.", days, hours)
	case hours > 0:
		return fmt.Sprintf("%d ч., %d мин.", hours, minutes)
	default:
		return fmt.Sprintf("%d мин.", minutes)
	}
}
