package tasksvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/limaudio/taskman/internal/domain"
	infractx "github.com/limaudio/taskman/internal/infra/context"
	"github.com/limaudio/taskman/internal/infra/logging"
	http_ "github.com/limaudio/taskman/internal/infra/transport/http"
	"github.com/limaudio/taskman/internal/repo/task"
	"github.com/limaudio/taskman/internal/validation"
)

// ErrValidationFailed is returned by handlers that rejected the request body.
var ErrValidationFailed = errors.New("validation failed")

const defaultListLimit = 50

// HTTPTransport exposes the task workflow over HTTP.
type HTTPTransport struct {
	taskSvc   *TaskService
	validator *validation.Engine
	log       logging.Logger
}

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(taskSvc *TaskService, validator *validation.Engine) *HTTPTransport {
	return &HTTPTransport{
		taskSvc:   taskSvc,
		validator: validator,
		log:       logging.GetLogger("svc.tasksvc.http_transport"),
	}
}

// RegisterRoutes mounts the task endpoints:
// - GET /task: list tasks (mine=1 restricts to own, date=YYYY-MM-DD filters)
// - POST /task: create a task
// - GET /task/{id}: fetch a task with comments, links and files
// - PATCH /task/{id}: update deadline and description
// - DELETE /task/{id}: delete a task
// - POST /task/{id}/comments: add a comment
// - PATCH /task/{id}/comments/{commentId}: edit a comment
// - DELETE /task/{id}/comments/{commentId}: delete a comment
// - POST /task/{id}/links: attach a link
// - PATCH /task/{id}/links/{linkId}: edit a link
// - DELETE /task/{id}/links/{linkId}: delete a link
// - POST /task/{id}/files: attach an uploaded file
// - DELETE /task/{id}/files/{fileId}: detach a file
// - PATCH /task/{id}/status: move a task through the workflow
// - PATCH /task/{id}/urgency: change urgency.
//
// The subresource routes go in before /task/{id} so the literal segments win
// over the id placeholder.
func (ht *HTTPTransport) RegisterRoutes(rt *http_.Router) {
	rt.Handle(http.MethodGet, "/task", ht.HandleList)
	rt.Handle(http.MethodPost, "/task", ht.HandleCreate)
	rt.Handle(http.MethodPost, "/task/{id}/comments", ht.HandleAddComment)
	rt.Handle(http.MethodPatch, "/task/{id}/comments/{commentId}", ht.HandleUpdateComment)
	rt.Handle(http.MethodDelete, "/task/{id}/comments/{commentId}", ht.HandleDeleteComment)
	rt.Handle(http.MethodPost, "/task/{id}/links", ht.HandleAddLink)
	rt.Handle(http.MethodPatch, "/task/{id}/links/{linkId}", ht.HandleUpdateLink)
	rt.Handle(http.MethodDelete, "/task/{id}/links/{linkId}", ht.HandleDeleteLink)
	rt.Handle(http.MethodPost, "/task/{id}/files", ht.HandleAttachFile)
	rt.Handle(http.MethodDelete, "/task/{id}/files/{fileId}", ht.HandleDeleteFile)
	rt.Handle(http.MethodPatch, "/task/{id}/status", ht.HandleUpdateStatus)
	rt.Handle(http.MethodPatch, "/task/{id}/urgency", ht.HandleUpdateUrgency)
	rt.Handle(http.MethodGet, "/task/{id}", ht.HandleGet)
	rt.Handle(http.MethodPatch, "/task/{id}", ht.HandlePatch)
	rt.Handle(http.MethodDelete, "/task/{id}", ht.HandleDelete)
}

// HandleList returns a page of tasks.
// Accepts limit, offset, date and mine query parameters.
func (ht *HTTPTransport) HandleList(w http.ResponseWriter, r *http.Request, _ http_.Params) {
	_ = ht.handleList(w, r)
}

func (ht *HTTPTransport) handleList(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "task list failed", "error", err)
		} else {
			log.DebugContext(ctx, "tasks listed")
		}
	}(r.Context())

	limit, offset := http_.Pagination(r, defaultListLimit)

	filter := task.ListFilter{}

	if date := r.URL.Query().Get("date"); date != "" {
		filter.Date = &date
	}

	if r.URL.Query().Get("mine") == "1" {
		if claims, ok := infractx.IdentityFromContext(r.Context()); ok {
			filter.UserID = &claims.Sub
		}
	}

	tasks, err := ht.taskSvc.List(r.Context(), limit, offset, filter)
	if err != nil {
		http_.InternalError(w)

		return fmt.Errorf("list tasks: %w", err)
	}

	http_.JSON(w, http.StatusOK, map[string]any{
		"items":  tasks,
		"limit":  limit,
		"offset": offset,
	})

	return nil
}

// HandleCreate adds a new task.
// Expects a JSON body with title and optional description, direction_id,
// due_at, assigned_user_id, urgency, links and files.
func (ht *HTTPTransport) HandleCreate(w http.ResponseWriter, r *http.Request, _ http_.Params) {
	_ = ht.handleCreate(w, r)
}

func (ht *HTTPTransport) handleCreate(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "task create failed", "error", err)
		} else {
			log.InfoContext(ctx, "task created")
		}
	}(r.Context())

	var body struct {
		Title          string            `json:"title"`
		Description    string            `json:"description"`
		DirectionID    *int64            `json:"direction_id"`
		DueAt          *string           `json:"due_at"`
		AssignedUserID *int64            `json:"assigned_user_id"`
		Urgency        int64             `json:"urgency"`
		Links          []string          `json:"links"`
		Files          []domain.TaskFile `json:"files"`
	}

	if err := http_.DecodeJSON(r, &body); err != nil {
		http_.Error(w, http.StatusBadRequest, "invalid json")

		return fmt.Errorf("decode body: %w", err)
	}

	dueAt := ""
	if body.DueAt != nil {
		dueAt = *body.DueAt
	}

	messages, err := ht.validator.Validate(r.Context(), []validation.Field{
		{Name: "title", Value: strings.TrimSpace(body.Title), Constraints: []validation.Constraint{
			validation.Required(),
		}},
		{Name: "due_at", Value: dueAt, Constraints: []validation.Constraint{
			validation.Date(""),
		}},
	}, 0)
	if err != nil {
		http_.InternalError(w)

		return fmt.Errorf("validate body: %w", err)
	}

	if len(messages) > 0 {
		http_.ValidationErrors(w, messages)

		return fmt.Errorf("%w: %v", ErrValidationFailed, messages)
	}

	params := CreateParams{
		Title:          body.Title,
		Description:    body.Description,
		DirectionID:    body.DirectionID,
		DueAt:          body.DueAt,
		AssignedUserID: body.AssignedUserID,
		Urgency:        body.Urgency,
		Links:          body.Links,
		Files:          body.Files,
	}

	if claims, ok := infractx.IdentityFromContext(r.Context()); ok {
		params.CreatedBy = &claims.Sub
	}

	created, err := ht.taskSvc.Create(r.Context(), params)
	if err != nil {
		http_.InternalError(w)

		return fmt.Errorf("create task: %w", err)
	}

	http_.JSON(w, http.StatusCreated, created)

	return nil
}

// HandleGet returns a single task with comments, links and files.
func (ht *HTTPTransport) HandleGet(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handleGet(w, r, params)
}

func (ht *HTTPTransport) handleGet(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "task get failed", "error", err)
		} else {
			log.DebugContext(ctx, "task fetched")
		}
	}(r.Context())

	id, err := taskID(params)
	if err != nil {
		http_.NotFound(w)

		return err
	}

	found, err := ht.taskSvc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			http_.NotFound(w)
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("get task: %w", err)
	}

	http_.JSON(w, http.StatusOK, found)

	return nil
}

// HandlePatch updates a task's deadline and description.
// Expects a JSON body with optional deadline and description fields.
func (ht *HTTPTransport) HandlePatch(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handlePatch(w, r, params)
}

func (ht *HTTPTransport) handlePatch(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "task patch failed", "error", err)
		} else {
			log.InfoContext(ctx, "task patched")
		}
	}(r.Context())

	id, err := taskID(params)
	if err != nil {
		http_.NotFound(w)

		return err
	}

	var body struct {
		Deadline    *string `json:"deadline"`
		Description *string `json:"description"`
	}

	if err := http_.DecodeJSON(r, &body); err != nil {
		http_.Error(w, http.StatusBadRequest, "invalid json")

		return fmt.Errorf("decode body: %w", err)
	}

	if body.Deadline != nil {
		messages, err := ht.validator.Validate(r.Context(), []validation.Field{
			{Name: "deadline", Value: *body.Deadline, Constraints: []validation.Constraint{
				validation.Date(""),
			}},
		}, 0)
		if err != nil {
			http_.InternalError(w)

			return fmt.Errorf("validate deadline: %w", err)
		}

		if len(messages) > 0 {
			http_.ValidationErrors(w, messages)

			return fmt.Errorf("%w: %v", ErrValidationFailed, messages)
		}
	}

	patched, err := ht.taskSvc.Patch(r.Context(), id, task.PatchFields{
		DueAt:       body.Deadline,
		Description: body.Description,
	})
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			http_.NotFound(w)
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("patch task: %w", err)
	}

	http_.JSON(w, http.StatusOK, patched)

	return nil
}

// HandleDelete removes a task.
func (ht *HTTPTransport) HandleDelete(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handleDelete(w, r, params)
}

func (ht *HTTPTransport) handleDelete(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "task delete failed", "error", err)
		} else {
			log.InfoContext(ctx, "task deleted")
		}
	}(r.Context())

	id, err := taskID(params)
	if err != nil {
		http_.NotFound(w)

		return err
	}

	if err := ht.taskSvc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			http_.NotFound(w)
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("delete task: %w", err)
	}

	http_.JSON(w, http.StatusOK, map[string]int64{"deleted": id})

	return nil
}

// HandleAddComment appends a comment to a task.
// Expects a JSON body with text.
func (ht *HTTPTransport) HandleAddComment(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handleAddComment(w, r, params)
}

func (ht *HTTPTransport) handleAddComment(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "comment add failed", "error", err)
		} else {
			log.InfoContext(ctx, "comment added")
		}
	}(r.Context())

	id, err := taskID(params)
	if err != nil {
		http_.NotFound(w)

		return err
	}

	text, ok, err := ht.decodeText(w, r)
	if err != nil || !ok {
		return err
	}

	var userID *int64

	if claims, found := infractx.IdentityFromContext(r.Context()); found {
		userID = &claims.Sub
	}

	comment, err := ht.taskSvc.AddComment(r.Context(), id, userID, text)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			http_.NotFound(w)
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("add comment: %w", err)
	}

	http_.JSON(w, http.StatusCreated, comment)

	return nil
}

// HandleUpdateComment replaces a comment's text.
func (ht *HTTPTransport) HandleUpdateComment(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handleUpdateComment(w, r, params)
}

func (ht *HTTPTransport) handleUpdateComment(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "comment update failed", "error", err)
		} else {
			log.InfoContext(ctx, "comment updated")
		}
	}(r.Context())

	id, commentID, err := taskChildIDs(params, "commentId")
	if err != nil {
		http_.NotFound(w)

		return err
	}

	text, ok, err := ht.decodeText(w, r)
	if err != nil || !ok {
		return err
	}

	comment, err := ht.taskSvc.UpdateComment(r.Context(), id, commentID, text)
	if err != nil {
		if errors.Is(err, domain.ErrCommentNotFound) {
			http_.NotFound(w)
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("update comment: %w", err)
	}

	http_.JSON(w, http.StatusOK, comment)

	return nil
}

// HandleDeleteComment removes a comment.
func (ht *HTTPTransport) HandleDeleteComment(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handleDeleteComment(w, r, params)
}

func (ht *HTTPTransport) handleDeleteComment(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "comment delete failed", "error", err)
		} else {
			log.InfoContext(ctx, "comment deleted")
		}
	}(r.Context())

	id, commentID, err := taskChildIDs(params, "commentId")
	if err != nil {
		http_.NotFound(w)

		return err
	}

	if err := ht.taskSvc.DeleteComment(r.Context(), id, commentID); err != nil {
		if errors.Is(err, domain.ErrCommentNotFound) {
			http_.NotFound(w)
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("delete comment: %w", err)
	}

	http_.JSON(w, http.StatusOK, map[string]int64{"deleted": commentID})

	return nil
}

// HandleAddLink attaches a URL to a task.
// Expects a JSON body with url.
func (ht *HTTPTransport) HandleAddLink(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handleAddLink(w, r, params)
}

func (ht *HTTPTransport) handleAddLink(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "link add failed", "error", err)
		} else {
			log.InfoContext(ctx, "link added")
		}
	}(r.Context())

	id, err := taskID(params)
	if err != nil {
		http_.NotFound(w)

		return err
	}

	url, ok, err := ht.decodeURL(w, r)
	if err != nil || !ok {
		return err
	}

	link, err := ht.taskSvc.AddLink(r.Context(), id, url)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			http_.NotFound(w)
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("add link: %w", err)
	}

	http_.JSON(w, http.StatusCreated, link)

	return nil
}

// HandleUpdateLink replaces a link's URL.
func (ht *HTTPTransport) HandleUpdateLink(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handleUpdateLink(w, r, params)
}

func (ht *HTTPTransport) handleUpdateLink(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "link update failed", "error", err)
		} else {
			log.InfoContext(ctx, "link updated")
		}
	}(r.Context())

	id, linkID, err := taskChildIDs(params, "linkId")
	if err != nil {
		http_.NotFound(w)

		return err
	}

	url, ok, err := ht.decodeURL(w, r)
	if err != nil || !ok {
		return err
	}

	link, err := ht.taskSvc.UpdateLink(r.Context(), id, linkID, url)
	if err != nil {
		if errors.Is(err, domain.ErrLinkNotFound) {
			http_.NotFound(w)
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("update link: %w", err)
	}

	http_.JSON(w, http.StatusOK, link)

	return nil
}

// HandleDeleteLink removes a link.
func (ht *HTTPTransport) HandleDeleteLink(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handleDeleteLink(w, r, params)
}

func (ht *HTTPTransport) handleDeleteLink(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "link delete failed", "error", err)
		} else {
			log.InfoContext(ctx, "link deleted")
		}
	}(r.Context())

	id, linkID, err := taskChildIDs(params, "linkId")
	if err != nil {
		http_.NotFound(w)

		return err
	}

	if err := ht.taskSvc.DeleteLink(r.Context(), id, linkID); err != nil {
		if errors.Is(err, domain.ErrLinkNotFound) {
			http_.NotFound(w)
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("delete link: %w", err)
	}

	http_.JSON(w, http.StatusOK, map[string]int64{"deleted": linkID})

	return nil
}

// HandleAttachFile records an uploaded file against a task.
// Expects a JSON body with file_name and file_url as returned by /upload.
func (ht *HTTPTransport) HandleAttachFile(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handleAttachFile(w, r, params)
}

func (ht *HTTPTransport) handleAttachFile(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "file attach failed", "error", err)
		} else {
			log.InfoContext(ctx, "file attached")
		}
	}(r.Context())

	id, err := taskID(params)
	if err != nil {
		http_.NotFound(w)

		return err
	}

	var body struct {
		FileName string `json:"file_name"`
		FileURL  string `json:"file_url"`
	}

	if err := http_.DecodeJSON(r, &body); err != nil {
		http_.Error(w, http.StatusBadRequest, "invalid json")

		return fmt.Errorf("decode body: %w", err)
	}

	if body.FileName == "" || body.FileURL == "" {
		http_.Error(w, http.StatusUnprocessableEntity, "file_name and file_url are required")

		return fmt.Errorf("%w: missing file fields", ErrValidationFailed)
	}

	file, err := ht.taskSvc.AttachFile(r.Context(), id, body.FileName, body.FileURL)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			http_.NotFound(w)
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("attach file: %w", err)
	}

	http_.JSON(w, http.StatusCreated, file)

	return nil
}

// HandleDeleteFile detaches a file from a task.
func (ht *HTTPTransport) HandleDeleteFile(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handleDeleteFile(w, r, params)
}

func (ht *HTTPTransport) handleDeleteFile(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "file delete failed", "error", err)
		} else {
			log.InfoContext(ctx, "file deleted")
		}
	}(r.Context())

	id, fileID, err := taskChildIDs(params, "fileId")
	if err != nil {
		http_.NotFound(w)

		return err
	}

	if err := ht.taskSvc.DeleteFile(r.Context(), id, fileID); err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			http_.NotFound(w)
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("delete file: %w", err)
	}

	http_.JSON(w, http.StatusOK, map[string]int64{"deleted": fileID})

	return nil
}

// HandleUpdateStatus moves a task through the workflow.
// Expects a JSON body with status, one of the known workflow states.
func (ht *HTTPTransport) HandleUpdateStatus(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handleUpdateStatus(w, r, params)
}

func (ht *HTTPTransport) handleUpdateStatus(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "status update failed", "error", err)
		} else {
			log.InfoContext(ctx, "status updated")
		}
	}(r.Context())

	id, err := taskID(params)
	if err != nil {
		http_.NotFound(w)

		return err
	}

	var body struct {
		Status string `json:"status"`
	}

	if err := http_.DecodeJSON(r, &body); err != nil {
		http_.Error(w, http.StatusBadRequest, "invalid json")

		return fmt.Errorf("decode body: %w", err)
	}

	updated, err := ht.taskSvc.UpdateStatus(r.Context(), id, domain.TaskStatus(body.Status))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidStatus):
			http_.Error(w, http.StatusUnprocessableEntity, "invalid status")
		case errors.Is(err, domain.ErrTaskNotFound):
			http_.NotFound(w)
		default:
			http_.InternalError(w)
		}

		return fmt.Errorf("update status: %w", err)
	}

	http_.JSON(w, http.StatusOK, updated)

	return nil
}

// HandleUpdateUrgency changes a task's urgency.
// Expects a JSON body with urgency as an integer.
func (ht *HTTPTransport) HandleUpdateUrgency(w http.ResponseWriter, r *http.Request, params http_.Params) {
	_ = ht.handleUpdateUrgency(w, r, params)
}

func (ht *HTTPTransport) handleUpdateUrgency(w http.ResponseWriter, r *http.Request, params http_.Params) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.ErrorContext(ctx, "urgency update failed", "error", err)
		} else {
			log.InfoContext(ctx, "urgency updated")
		}
	}(r.Context())

	id, err := taskID(params)
	if err != nil {
		http_.NotFound(w)

		return err
	}

	var body struct {
		Urgency int64 `json:"urgency"`
	}

	if err := http_.DecodeJSON(r, &body); err != nil {
		http_.Error(w, http.StatusBadRequest, "invalid json")

		return fmt.Errorf("decode body: %w", err)
	}

	updated, err := ht.taskSvc.UpdateUrgency(r.Context(), id, body.Urgency)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			http_.NotFound(w)
		} else {
			http_.InternalError(w)
		}

		return fmt.Errorf("update urgency: %w", err)
	}

	http_.JSON(w, http.StatusOK, updated)

	return nil
}

func (ht *HTTPTransport) decodeText(w http.ResponseWriter, r *http.Request) (string, bool, error) {
	var body struct {
		Text string `json:"text"`
	}

	if err := http_.DecodeJSON(r, &body); err != nil {
		http_.Error(w, http.StatusBadRequest, "invalid json")

		return "", false, fmt.Errorf("decode body: %w", err)
	}

	text := strings.TrimSpace(body.Text)
	if text == "" {
		http_.Error(w, http.StatusUnprocessableEntity, "text is required")

		return "", false, fmt.Errorf("%w: no text", ErrValidationFailed)
	}

	return text, true, nil
}

func (ht *HTTPTransport) decodeURL(w http.ResponseWriter, r *http.Request) (string, bool, error) {
	var body struct {
		URL string `json:"url"`
	}

	if err := http_.DecodeJSON(r, &body); err != nil {
		http_.Error(w, http.StatusBadRequest, "invalid json")

		return "", false, fmt.Errorf("decode body: %w", err)
	}

	url := strings.TrimSpace(body.URL)
	if url == "" {
		http_.Error(w, http.StatusUnprocessableEntity, "url is required")

		return "", false, fmt.Errorf("%w: no url", ErrValidationFailed)
	}

	return url, true, nil
}

func taskID(params http_.Params) (int64, error) {
	id, err := strconv.ParseInt(params["id"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse id: %w", err)
	}

	return id, nil
}

func taskChildIDs(params http_.Params, child string) (int64, int64, error) {
	id, err := taskID(params)
	if err != nil {
		return 0, 0, err
	}

	childID, err := strconv.ParseInt(params[child], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parse %s: %w", child, err)
	}

	return id, childID, nil
}
