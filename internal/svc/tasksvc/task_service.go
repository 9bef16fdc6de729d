// Package tasksvc implements the task workflow: CRUD, comments, links, file
// attachments, status and urgency changes, with Telegram notifications on
// every event the assignee should hear about.
package tasksvc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/limaudio/taskman/internal/domain"
	"github.com/limaudio/taskman/internal/infra/logging"
	"github.com/limaudio/taskman/internal/notify"
	"github.com/limaudio/taskman/internal/repo/task"
	"github.com/limaudio/taskman/internal/repo/user"
)

// ErrInvalidStatus is returned when a status change names an unknown status.
var ErrInvalidStatus = errors.New("invalid status")

// CreateParams carries the input for Create.
type CreateParams struct {
	Title          string
	Description    string
	DirectionID    *int64
	DueAt          *string
	AssignedUserID *int64
	Urgency        int64
	CreatedBy      *int64
	Links          []string
	Files          []domain.TaskFile
}

// TaskService implements the task workflow on top of the task repository and
// the Telegram notifier. Notification failures are logged, never surfaced:
// the write that triggered them has already happened.
type TaskService struct {
	tasks    task.Repository
	users    user.Repository
	notifier notify.Notifier
	log      logging.Logger
}

// NewTaskService creates a new TaskService.
func NewTaskService(tasks task.Repository, users user.Repository, notifier notify.Notifier) *TaskService {
	return &TaskService{
		tasks:    tasks,
		users:    users,
		notifier: notifier,
		log:      logging.GetLogger("svc.tasksvc.task_service"),
	}
}

// Create adds a new task. A task with an assignee starts in the "assigned"
// status, otherwise "new". The assignee is notified personally when they
// have a telegram binding; the team chat hears about it either way.
func (ts *TaskService) Create(ctx context.Context, params CreateParams) (*domain.Task, error) {
	status := domain.TaskStatusNew
	if params.AssignedUserID != nil {
		status = domain.TaskStatusAssigned
	}

	created, err := ts.tasks.Create(ctx, &domain.Task{
		Title:          strings.TrimSpace(params.Title),
		Description:    params.Description,
		DirectionID:    params.DirectionID,
		DueAt:          params.DueAt,
		AssignedUserID: params.AssignedUserID,
		Status:         status,
		Urgency:        params.Urgency,
		CreatedBy:      params.CreatedBy,
	}, params.Links, params.Files)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	ts.notifyAssignee(ctx, created.AssignedUserID, TaskCreatedMessage(created))

	return created, nil
}

// Get retrieves a task with its links, files and comments.
func (ts *TaskService) Get(ctx context.Context, id int64) (*domain.Task, error) {
	found, err := ts.tasks.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	return found, nil
}

// List returns a page of tasks.
func (ts *TaskService) List(ctx context.Context, limit, offset int64, filter task.ListFilter) ([]*domain.Task, error) {
	tasks, err := ts.tasks.List(ctx, limit, offset, filter)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	return tasks, nil
}

// Patch applies a partial update to a task's deadline and description.
func (ts *TaskService) Patch(ctx context.Context, id int64, fields task.PatchFields) (*domain.Task, error) {
	patched, err := ts.tasks.Patch(ctx, id, fields)
	if err != nil {
		return nil, fmt.Errorf("patch task: %w", err)
	}

	return patched, nil
}

// Delete removes a task.
func (ts *TaskService) Delete(ctx context.Context, id int64) error {
	if err := ts.tasks.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	return nil
}

// AddComment appends a comment and notifies the assignee.
func (ts *TaskService) AddComment(ctx context.Context, taskID int64, userID *int64, text string) (*domain.Comment, error) {
	comment, err := ts.tasks.AddComment(ctx, taskID, userID, text)
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}

	ts.notifyTaskAssignee(ctx, taskID, CommentAddedMessage(taskID, text))

	return comment, nil
}

// UpdateComment replaces a comment's text.
func (ts *TaskService) UpdateComment(ctx context.Context, taskID, commentID int64, text string) (*domain.Comment, error) {
	comment, err := ts.tasks.UpdateComment(ctx, taskID, commentID, text)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	return comment, nil
}

// DeleteComment removes a comment.
func (ts *TaskService) DeleteComment(ctx context.Context, taskID, commentID int64) error {
	if err := ts.tasks.DeleteComment(ctx, taskID, commentID); err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	return nil
}

// AddLink attaches a URL to a task.
func (ts *TaskService) AddLink(ctx context.Context, taskID int64, url string) (*domain.TaskLink, error) {
	link, err := ts.tasks.AddLink(ctx, taskID, url)
	if err != nil {
		return nil, fmt.Errorf("add link: %w", err)
	}

	return link, nil
}

// UpdateLink replaces a link's URL.
func (ts *TaskService) UpdateLink(ctx context.Context, taskID, linkID int64, url string) (*domain.TaskLink, error) {
	link, err := ts.tasks.UpdateLink(ctx, taskID, linkID, url)
	if err != nil {
		return nil, fmt.Errorf("update link: %w", err)
	}

	return link, nil
}

// DeleteLink removes a link.
func (ts *TaskService) DeleteLink(ctx context.Context, taskID, linkID int64) error {
	if err := ts.tasks.DeleteLink(ctx, taskID, linkID); err != nil {
		return fmt.Errorf("delete link: %w", err)
	}

	return nil
}

// AttachFile records an uploaded file against a task.
func (ts *TaskService) AttachFile(ctx context.Context, taskID int64, fileName, fileURL string) (*domain.TaskFile, error) {
	file, err := ts.tasks.AttachFile(ctx, taskID, fileName, fileURL)
	if err != nil {
		return nil, fmt.Errorf("attach file: %w", err)
	}

	return file, nil
}

// DeleteFile removes a file record.
func (ts *TaskService) DeleteFile(ctx context.Context, taskID, fileID int64) error {
	if err := ts.tasks.DeleteFile(ctx, taskID, fileID); err != nil {
		return fmt.Errorf("delete file: %w", err)
	}

	return nil
}

// UpdateStatus moves a task to a new status and notifies the assignee.
// Returns ErrInvalidStatus when the status is not a known workflow state.
func (ts *TaskService) UpdateStatus(ctx context.Context, taskID int64, status domain.TaskStatus) (*domain.Task, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("status %q: %w", status, ErrInvalidStatus)
	}

	updated, err := ts.tasks.UpdateStatus(ctx, taskID, status)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}

	ts.notifyAssignee(ctx, updated.AssignedUserID, StatusChangedMessage(updated))

	return updated, nil
}

// UpdateUrgency sets a task's urgency and notifies the team chat.
func (ts *TaskService) UpdateUrgency(ctx context.Context, taskID, urgency int64) (*domain.Task, error) {
	updated, err := ts.tasks.UpdateUrgency(ctx, taskID, urgency)
	if err != nil {
		return nil, fmt.Errorf("update urgency: %w", err)
	}

	if err := ts.notifier.Send(ctx, UrgencyChangedMessage(updated)); err != nil {
		ts.log.WarnContext(ctx, "urgency notification failed", "error", err, "task", taskID)
	}

	return updated, nil
}

// notifyAssignee posts msg to the team chat, and additionally to the
// assignee's personal chat when they have a telegram binding.
func (ts *TaskService) notifyAssignee(ctx context.Context, assigneeID *int64, msg string) {
	if err := ts.notifier.Send(ctx, msg); err != nil {
		ts.log.WarnContext(ctx, "chat notification failed", "error", err)
	}

	if assigneeID == nil {
		return
	}

	telegramID, err := ts.users.TelegramID(ctx, *assigneeID)
	if err != nil {
		ts.log.WarnContext(ctx, "assignee telegram lookup failed", "error", err, "user", *assigneeID)

		return
	}

	if telegramID == nil {
		return
	}

	if err := ts.notifier.SendTo(ctx, *telegramID, msg); err != nil {
		ts.log.WarnContext(ctx, "personal notification failed", "error", err, "user", *assigneeID)
	}
}

// notifyTaskAssignee is notifyAssignee keyed by task id instead of user id.
func (ts *TaskService) notifyTaskAssignee(ctx context.Context, taskID int64, msg string) {
	found, err := ts.tasks.Get(ctx, taskID)
	if err != nil {
		ts.log.WarnContext(ctx, "task lookup for notification failed", "error", err, "task", taskID)

		return
	}

	ts.notifyAssignee(ctx, found.AssignedUserID, msg)
}
