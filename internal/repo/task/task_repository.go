package task

import (
	"context"

	"github.com/limaudio/taskman/internal/domain"
)

// ListFilter narrows List results. A nil field means no filtering on it.
type ListFilter struct {
	// Date filters by due_at date prefix, e.g. "2026-03-01".
	Date *string
	// UserID keeps only tasks assigned to or created by the given user.
	UserID *int64
}

// PatchFields carries the optional column updates for Patch. Nil pointers
// leave the column untouched.
type PatchFields struct {
	DueAt       *string
	Description *string
}

// DueTask is the projection the deadline sweep works on: the task's timing
// columns, its notification flags and the assignee's telegram chat id.
type DueTask struct {
	ID               int64
	Title            string
	CreatedAt        string
	DueAt            string
	Notified30       bool
	Notified10       bool
	Notified0        bool
	AssigneeTelegram *string
}

// Repository defines the interface for task data persistence.
type Repository interface {
	// Create adds a new task along with its initial links and files and
	// returns it fully populated.
	Create(ctx context.Context, task *domain.Task, links []string, files []domain.TaskFile) (*domain.Task, error)

	// Get retrieves a task with its links, files and comments.
	// Returns ErrTaskNotFound if no such task exists.
	Get(ctx context.Context, id int64) (*domain.Task, error)

	// List returns a page of tasks ordered newest first, each with its
	// links and files (comments are loaded by Get only).
	List(ctx context.Context, limit, offset int64, filter ListFilter) ([]*domain.Task, error)

	// AddComment appends a comment to a task.
	// Returns ErrTaskNotFound if no such task exists.
	AddComment(ctx context.Context, taskID int64, userID *int64, text string) (*domain.Comment, error)

	// UpdateComment replaces a comment's text.
	// Returns ErrCommentNotFound if the comment does not belong to the task.
	UpdateComment(ctx context.Context, taskID, commentID int64, text string) (*domain.Comment, error)

	// DeleteComment removes a comment.
	// Returns ErrCommentNotFound if the comment does not belong to the task.
	DeleteComment(ctx context.Context, taskID, commentID int64) error

	// AddLink attaches a URL to a task.
	// Returns ErrTaskNotFound if no such task exists.
	AddLink(ctx context.Context, taskID int64, url string) (*domain.TaskLink, error)

	// UpdateLink replaces a link's URL.
	// Returns ErrLinkNotFound if the link does not belong to the task.
	UpdateLink(ctx context.Context, taskID, linkID int64, url string) (*domain.TaskLink, error)

	// DeleteLink removes a link.
	// Returns ErrLinkNotFound if the link does not belong to the task.
	DeleteLink(ctx context.Context, taskID, linkID int64) error

	// AttachFile records an uploaded file against a task.
	// Returns ErrTaskNotFound if no such task exists.
	AttachFile(ctx context.Context, taskID int64, fileName, fileURL string) (*domain.TaskFile, error)

	// DeleteFile removes a file record.
	// Returns ErrFileNotFound if the file does not belong to the task.
	DeleteFile(ctx context.Context, taskID, fileID int64) error

	// UpdateStatus sets a task's status.
	// Returns ErrTaskNotFound if no such task exists.
	UpdateStatus(ctx context.Context, taskID int64, status domain.TaskStatus) (*domain.Task, error)

	// UpdateUrgency sets a task's urgency.
	// Returns ErrTaskNotFound if no such task exists.
	UpdateUrgency(ctx context.Context, taskID, urgency int64) (*domain.Task, error)

	// Patch applies the given field updates.
	// Returns ErrTaskNotFound if no such task exists.
	Patch(ctx context.Context, taskID int64, fields PatchFields) (*domain.Task, error)

	// Delete removes a task and its links, files and comments.
	// Returns ErrTaskNotFound if no such task exists.
	Delete(ctx context.Context, taskID int64) error

	// DueTasks returns every task with a deadline set, joined with the
	// assignee's telegram chat id.
	DueTasks(ctx context.Context) ([]*DueTask, error)

	// MarkNotified records that the reminder for the given threshold
	// (30, 10 or 0 percent of time left) has been sent. At threshold 0 the
	// task is also moved to the overdue status.
	MarkNotified(ctx context.Context, taskID int64, threshold int) error
}
