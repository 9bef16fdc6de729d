package tasksvc_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/limaudio/taskman/internal/domain"
	"github.com/limaudio/taskman/internal/repo/task"
	"github.com/limaudio/taskman/internal/repo/user"
	"github.com/limaudio/taskman/internal/svc/tasksvc"
)

type mockTaskRepo struct {
	task.Repository

	created *domain.Task
	stored  map[int64]*domain.Task
	nextID  int64
}

func (m *mockTaskRepo) Create(
	_ context.Context, t *domain.Task, links []string, files []domain.TaskFile,
) (*domain.Task, error) {
	m.nextID++
	t.ID = m.nextID

	for _, url := range links {
		t.Links = append(t.Links, domain.TaskLink{TaskID: t.ID, URL: url})
	}

	t.Files = append(t.Files, files...)
	m.created = t

	if m.stored == nil {
		m.stored = make(map[int64]*domain.Task)
	}

	m.stored[t.ID] = t

	return t, nil
}

func (m *mockTaskRepo) Get(_ context.Context, id int64) (*domain.Task, error) {
	found, ok := m.stored[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}

	return found, nil
}

func (m *mockTaskRepo) AddComment(
	_ context.Context, taskID int64, userID *int64, text string,
) (*domain.Comment, error) {
	if _, ok := m.stored[taskID]; !ok {
		return nil, domain.ErrTaskNotFound
	}

	return &domain.Comment{ID: 1, TaskID: taskID, UserID: userID, Text: text}, nil
}

func (m *mockTaskRepo) UpdateStatus(
	_ context.Context, taskID int64, status domain.TaskStatus,
) (*domain.Task, error) {
	found, ok := m.stored[taskID]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}

	found.Status = status

	return found, nil
}

type mockUserRepo struct {
	user.Repository

	telegram map[int64]string
}

func (m *mockUserRepo) TelegramID(_ context.Context, userID int64) (*string, error) {
	id, ok := m.telegram[userID]
	if !ok {
		return nil, nil
	}

	return &id, nil
}

type recordingNotifier struct {
	broadcast []string
	personal  map[string][]string
}

func (m *recordingNotifier) Send(_ context.Context, text string) error {
	m.broadcast = append(m.broadcast, text)

	return nil
}

func (m *recordingNotifier) SendTo(_ context.Context, chatID, text string) error {
	if m.personal == nil {
		m.personal = make(map[string][]string)
	}

	m.personal[chatID] = append(m.personal[chatID], text)

	return nil
}

func TestTaskService_CreateStatus(t *testing.T) {
	t.Parallel()

	assignee := int64(7)

	tests := []struct {
		name       string
		assignedTo *int64
		wantStatus domain.TaskStatus
	}{
		{"unassigned starts new", nil, domain.TaskStatusNew},
		{"assigned starts assigned", &assignee, domain.TaskStatusAssigned},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &mockTaskRepo{}
			svc := tasksvc.NewTaskService(repo, &mockUserRepo{}, &recordingNotifier{})

			created, err := svc.Create(context.Background(), tasksvc.CreateParams{
				Title:          "  Ship it  ",
				AssignedUserID: tt.assignedTo,
			})
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			if created.Status != tt.wantStatus {
				t.Errorf("Create() status = %q, want %q", created.Status, tt.wantStatus)
			}

			if created.Title != "Ship it" {
				t.Errorf("Create() title = %q, want trimmed", created.Title)
			}
		})
	}
}

func TestTaskService_CreateNotifiesAssigneePersonally(t *testing.T) {
	t.Parallel()

	assignee := int64(7)

	repo := &mockTaskRepo{}
	users := &mockUserRepo{telegram: map[int64]string{assignee: "555"}}
	notifier := &recordingNotifier{}

	svc := tasksvc.NewTaskService(repo, users, notifier)

	if _, err := svc.Create(context.Background(), tasksvc.CreateParams{
		Title:          "Ship it",
		AssignedUserID: &assignee,
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if len(notifier.personal["555"]) != 1 {
		t.Fatalf("assignee got %d messages, want 1", len(notifier.personal["555"]))
	}

	// The team chat hears about it too.
	if len(notifier.broadcast) != 1 {
		t.Errorf("team chat got %d messages, want 1", len(notifier.broadcast))
	}

	if !strings.Contains(notifier.personal["555"][0], "Ship it") {
		t.Errorf("message %q does not name the task", notifier.personal["555"][0])
	}
}

func TestTaskService_CreateUnboundAssigneeTeamChatOnly(t *testing.T) {
	t.Parallel()

	assignee := int64(7) // no telegram binding

	notifier := &recordingNotifier{}
	svc := tasksvc.NewTaskService(&mockTaskRepo{}, &mockUserRepo{}, notifier)

	if _, err := svc.Create(context.Background(), tasksvc.CreateParams{
		Title:          "Ship it",
		AssignedUserID: &assignee,
	}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if len(notifier.broadcast) != 1 {
		t.Errorf("team chat got %d messages, want 1", len(notifier.broadcast))
	}

	if len(notifier.personal) != 0 {
		t.Errorf("unexpected personal messages: %v", notifier.personal)
	}
}

func TestTaskService_UpdateStatus(t *testing.T) {
	t.Parallel()

	repo := &mockTaskRepo{}
	notifier := &recordingNotifier{}
	svc := tasksvc.NewTaskService(repo, &mockUserRepo{}, notifier)

	created, err := svc.Create(context.Background(), tasksvc.CreateParams{Title: "Ship it"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := svc.UpdateStatus(context.Background(), created.ID, domain.TaskStatusInProgress)
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	if updated.Status != domain.TaskStatusInProgress {
		t.Errorf("UpdateStatus() status = %q", updated.Status)
	}

	if _, err := svc.UpdateStatus(context.Background(), created.ID, "garbage"); !errors.Is(err, tasksvc.ErrInvalidStatus) {
		t.Errorf("UpdateStatus() invalid error = %v, want ErrInvalidStatus", err)
	}
}

func TestTaskService_AddCommentNotifies(t *testing.T) {
	t.Parallel()

	assignee := int64(7)

	repo := &mockTaskRepo{}
	users := &mockUserRepo{telegram: map[int64]string{assignee: "555"}}
	notifier := &recordingNotifier{}

	svc := tasksvc.NewTaskService(repo, users, notifier)

	created, err := svc.Create(context.Background(), tasksvc.CreateParams{
		Title:          "Ship it",
		AssignedUserID: &assignee,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.AddComment(context.Background(), created.ID, nil, "looks good"); err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}

	// one for the create, one for the comment
	messages := notifier.personal["555"]
	if len(messages) != 2 {
		t.Fatalf("assignee got %d messages, want 2", len(messages))
	}

	if !strings.Contains(messages[1], "looks good") {
		t.Errorf("comment message %q does not carry the text", messages[1])
	}
}
