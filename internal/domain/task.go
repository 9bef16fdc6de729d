package domain

import "errors"

var (
	// ErrTaskNotFound is returned when looking up a non-existent task.
	ErrTaskNotFound = errors.New("task not found")
	// ErrCommentNotFound is returned when a comment is absent from the given task.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrLinkNotFound is returned when a link is absent from the given task.
	ErrLinkNotFound = errors.New("link not found")
	// ErrFileNotFound is returned when a file attachment is absent from the given task.
	ErrFileNotFound = errors.New("file not found")
)

// TaskStatus enumerates the task lifecycle states. The values are the
// user-facing Russian labels carried over from the original product and
// stored verbatim.
type TaskStatus string

const (
	TaskStatusNew        TaskStatus = "Новая"
	TaskStatusAssigned   TaskStatus = "Ответственный назначен"
	TaskStatusInProgress TaskStatus = "В работе"
	TaskStatusCompleted  TaskStatus = "Выполнена"
	TaskStatusOverdue    TaskStatus = "Просрочена"
	TaskStatusExtended   TaskStatus = "Продлена"
)

// TaskStatuses lists every valid status in declaration order.
func TaskStatuses() []TaskStatus {
	return []TaskStatus{
		TaskStatusNew,
		TaskStatusAssigned,
		TaskStatusInProgress,
		TaskStatusCompleted,
		TaskStatusOverdue,
		TaskStatusExtended,
	}
}

// IsValid reports whether the value is a known task status.
func (s TaskStatus) IsValid() bool {
	for _, known := range TaskStatuses() {
		if s == known {
			return true
		}
	}

	return false
}

// Task is the central entity: a unit of work with optional direction,
// deadline, assignee and nested comments, links and file attachments.
// Timestamps are RFC 3339 strings in UTC.
type Task struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	DirectionID    *int64     `json:"direction_id"`
	DueAt          *string    `json:"due_at"`
	AssignedUserID *int64     `json:"assigned_user_id"`
	Status         TaskStatus `json:"status"`
	Urgency        int64      `json:"urgency"`
	CreatedBy      *int64     `json:"created_by"`
	CreatedAt      string     `json:"created_at"`
	UpdatedAt      string     `json:"updated_at"`

	Links    []TaskLink `json:"links"`
	Files    []TaskFile `json:"files"`
	Comments []Comment  `json:"comments,omitempty"`

	// Deadline notification flags, managed by the reminder job.
	Notified30 bool `json:"-"`
	Notified10 bool `json:"-"`
	Notified0  bool `json:"-"`
}

// TaskLink is a URL attached to a task.
type TaskLink struct {
	ID     int64  `json:"id"`
	TaskID int64  `json:"task_id,omitempty"`
	URL    string `json:"url"`
}

// TaskFile is a file attachment reference on a task; the bytes live in
// the upload storage, only name and URL are kept here.
type TaskFile struct {
	ID       int64  `json:"id"`
	TaskID   int64  `json:"task_id,omitempty"`
	FileName string `json:"file_name"`
	FileURL  string `json:"file_url"`
}

// Comment is a user comment on a task.
type Comment struct {
	ID        int64  `json:"id"`
	TaskID    int64  `json:"task_id"`
	UserID    *int64 `json:"user_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}
