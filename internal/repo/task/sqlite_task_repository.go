package task

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/limaudio/taskman/internal/domain"
	"github.com/limaudio/taskman/internal/infra/logging"
	"github.com/limaudio/taskman/internal/repo/db"
)

// SQLiteTaskRepository implements Repository on the shared SQLite store.
type SQLiteTaskRepository struct {
	db  *db.DB
	log logging.Logger
}

var _ Repository = (*SQLiteTaskRepository)(nil)

// NewSQLiteTaskRepository creates a new SQLiteTaskRepository.
func NewSQLiteTaskRepository(store *db.DB) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{
		db:  store,
		log: logging.GetLogger("repo.task.sqlite_task_repository"),
	}
}

const taskColumns = `id, title, description, direction_id, due_at, assigned_user_id,
	status, urgency, created_by, notified_30, notified_10, notified_0, created_at, updated_at`

// Create implements Repository.Create using SQLite.
func (r *SQLiteTaskRepository) Create(
	ctx context.Context, task *domain.Task, links []string, files []domain.TaskFile,
) (*domain.Task, error) {
	defer r.db.Lock()()

	now := db.Now()

	res, err := r.db.SQL.ExecContext(ctx,
		`INSERT INTO tasks (title, description, direction_id, due_at, assigned_user_id,
			status, urgency, created_by, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.Title, task.Description, task.DirectionID, task.DueAt, task.AssignedUserID,
		string(task.Status), task.Urgency, task.CreatedBy, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	taskID, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	for _, url := range links {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}

		if _, err := r.db.SQL.ExecContext(ctx,
			"INSERT INTO task_links (task_id, url) VALUES (?, ?)", taskID, url,
		); err != nil {
			return nil, fmt.Errorf("insert task link: %w", err)
		}
	}

	for _, file := range files {
		if file.FileName == "" || file.FileURL == "" {
			continue
		}

		if _, err := r.db.SQL.ExecContext(ctx,
			"INSERT INTO task_files (task_id, file_name, file_url) VALUES (?, ?, ?)",
			taskID, file.FileName, file.FileURL,
		); err != nil {
			return nil, fmt.Errorf("insert task file: %w", err)
		}
	}

	return r.get(ctx, taskID)
}

// Get implements Repository.Get using SQLite.
func (r *SQLiteTaskRepository) Get(ctx context.Context, id int64) (*domain.Task, error) {
	return r.get(ctx, id)
}

// List implements Repository.List using SQLite.
func (r *SQLiteTaskRepository) List(
	ctx context.Context, limit, offset int64, filter ListFilter,
) ([]*domain.Task, error) {
	where := []string{}
	args := []any{}

	if filter.UserID != nil {
		where = append(where, "(assigned_user_id = ? OR created_by = ?)")
		args = append(args, *filter.UserID, *filter.UserID)
	}

	if filter.Date != nil {
		where = append(where, "due_at LIKE ?")
		args = append(args, *filter.Date+"%")
	}

	query := "SELECT " + taskColumns + " FROM tasks"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}

	query += " ORDER BY id DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.SQL.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*domain.Task{}

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}

		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	for _, task := range tasks {
		if task.Links, err = r.links(ctx, task.ID); err != nil {
			return nil, err
		}

		if task.Files, err = r.files(ctx, task.ID); err != nil {
			return nil, err
		}
	}

	return tasks, nil
}

// AddComment implements Repository.AddComment using SQLite.
func (r *SQLiteTaskRepository) AddComment(
	ctx context.Context, taskID int64, userID *int64, text string,
) (*domain.Comment, error) {
	defer r.db.Lock()()

	if err := r.exists(ctx, taskID); err != nil {
		return nil, err
	}

	now := db.Now()

	res, err := r.db.SQL.ExecContext(ctx,
		"INSERT INTO comments (task_id, user_id, text, created_at) VALUES (?, ?, ?, ?)",
		taskID, userID, text, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert comment: %w", err)
	}

	return &domain.Comment{ID: id, TaskID: taskID, UserID: userID, Text: text, CreatedAt: now}, nil
}

// UpdateComment implements Repository.UpdateComment using SQLite.
func (r *SQLiteTaskRepository) UpdateComment(
	ctx context.Context, taskID, commentID int64, text string,
) (*domain.Comment, error) {
	defer r.db.Lock()()

	res, err := r.db.SQL.ExecContext(ctx,
		"UPDATE comments SET text = ? WHERE id = ? AND task_id = ?",
		text, commentID, taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update comment: %w", err)
	}

	if affected == 0 {
		return nil, fmt.Errorf("update comment: %w", domain.ErrCommentNotFound)
	}

	var comment domain.Comment

	err = r.db.SQL.QueryRowContext(ctx,
		"SELECT id, task_id, user_id, text, created_at FROM comments WHERE id = ? AND task_id = ?",
		commentID, taskID,
	).Scan(&comment.ID, &comment.TaskID, &comment.UserID, &comment.Text, &comment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("query comment: %w", err)
	}

	return &comment, nil
}

// DeleteComment implements Repository.DeleteComment using SQLite.
func (r *SQLiteTaskRepository) DeleteComment(ctx context.Context, taskID, commentID int64) error {
	defer r.db.Lock()()

	return r.deleteOwned(ctx, "comments", commentID, taskID, domain.ErrCommentNotFound)
}

// AddLink implements Repository.AddLink using SQLite.
func (r *SQLiteTaskRepository) AddLink(ctx context.Context, taskID int64, url string) (*domain.TaskLink, error) {
	defer r.db.Lock()()

	if err := r.exists(ctx, taskID); err != nil {
		return nil, err
	}

	res, err := r.db.SQL.ExecContext(ctx,
		"INSERT INTO task_links (task_id, url) VALUES (?, ?)", taskID, url,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task link: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert task link: %w", err)
	}

	return &domain.TaskLink{ID: id, TaskID: taskID, URL: url}, nil
}

// UpdateLink implements Repository.UpdateLink using SQLite.
func (r *SQLiteTaskRepository) UpdateLink(
	ctx context.Context, taskID, linkID int64, url string,
) (*domain.TaskLink, error) {
	defer r.db.Lock()()

	res, err := r.db.SQL.ExecContext(ctx,
		"UPDATE task_links SET url = ? WHERE id = ? AND task_id = ?",
		url, linkID, taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task link: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update task link: %w", err)
	}

	if affected == 0 {
		return nil, fmt.Errorf("update task link: %w", domain.ErrLinkNotFound)
	}

	return &domain.TaskLink{ID: linkID, TaskID: taskID, URL: url}, nil
}

// DeleteLink implements Repository.DeleteLink using SQLite.
func (r *SQLiteTaskRepository) DeleteLink(ctx context.Context, taskID, linkID int64) error {
	defer r.db.Lock()()

	return r.deleteOwned(ctx, "task_links", linkID, taskID, domain.ErrLinkNotFound)
}

// AttachFile implements Repository.AttachFile using SQLite.
func (r *SQLiteTaskRepository) AttachFile(
	ctx context.Context, taskID int64, fileName, fileURL string,
) (*domain.TaskFile, error) {
	defer r.db.Lock()()

	if err := r.exists(ctx, taskID); err != nil {
		return nil, err
	}

	res, err := r.db.SQL.ExecContext(ctx,
		"INSERT INTO task_files (task_id, file_name, file_url) VALUES (?, ?, ?)",
		taskID, fileName, fileURL,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task file: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert task file: %w", err)
	}

	return &domain.TaskFile{ID: id, TaskID: taskID, FileName: fileName, FileURL: fileURL}, nil
}

// DeleteFile implements Repository.DeleteFile using SQLite.
func (r *SQLiteTaskRepository) DeleteFile(ctx context.Context, taskID, fileID int64) error {
	defer r.db.Lock()()

	return r.deleteOwned(ctx, "task_files", fileID, taskID, domain.ErrFileNotFound)
}

// UpdateStatus implements Repository.UpdateStatus using SQLite.
func (r *SQLiteTaskRepository) UpdateStatus(
	ctx context.Context, taskID int64, status domain.TaskStatus,
) (*domain.Task, error) {
	defer r.db.Lock()()

	if err := r.touch(ctx, taskID, "status = ?", string(status)); err != nil {
		return nil, err
	}

	return r.get(ctx, taskID)
}

// UpdateUrgency implements Repository.UpdateUrgency using SQLite.
func (r *SQLiteTaskRepository) UpdateUrgency(ctx context.Context, taskID, urgency int64) (*domain.Task, error) {
	defer r.db.Lock()()

	if err := r.touch(ctx, taskID, "urgency = ?", urgency); err != nil {
		return nil, err
	}

	return r.get(ctx, taskID)
}

// Patch implements Repository.Patch using SQLite.
func (r *SQLiteTaskRepository) Patch(ctx context.Context, taskID int64, fields PatchFields) (*domain.Task, error) {
	defer r.db.Lock()()

	if err := r.exists(ctx, taskID); err != nil {
		return nil, err
	}

	sets := []string{}
	args := []any{}

	if fields.DueAt != nil {
		sets = append(sets, "due_at = ?")
		args = append(args, *fields.DueAt)
	}

	if fields.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *fields.Description)
	}

	if len(sets) > 0 {
		sets = append(sets, "updated_at = ?")
		args = append(args, db.Now(), taskID)

		query := "UPDATE tasks SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		if _, err := r.db.SQL.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("patch task: %w", err)
		}
	}

	return r.get(ctx, taskID)
}

// Delete implements Repository.Delete using SQLite.
func (r *SQLiteTaskRepository) Delete(ctx context.Context, taskID int64) error {
	defer r.db.Lock()()

	res, err := r.db.SQL.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", taskID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("delete task: %w", domain.ErrTaskNotFound)
	}

	return nil
}

// DueTasks implements Repository.DueTasks using SQLite.
func (r *SQLiteTaskRepository) DueTasks(ctx context.Context) ([]*DueTask, error) {
	rows, err := r.db.SQL.QueryContext(ctx,
		`SELECT t.id, t.title, t.created_at, t.due_at,
			t.notified_30, t.notified_10, t.notified_0, u.telegram_id
		 FROM tasks t
		 LEFT JOIN users u ON u.id = t.assigned_user_id
		 WHERE t.due_at IS NOT NULL`,
	)
	if err != nil {
		return nil, fmt.Errorf("query due tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*DueTask{}

	for rows.Next() {
		var task DueTask
		if err := rows.Scan(
			&task.ID, &task.Title, &task.CreatedAt, &task.DueAt,
			&task.Notified30, &task.Notified10, &task.Notified0, &task.AssigneeTelegram,
		); err != nil {
			return nil, fmt.Errorf("scan due task: %w", err)
		}

		tasks = append(tasks, &task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate due tasks: %w", err)
	}

	return tasks, nil
}

// MarkNotified implements Repository.MarkNotified using SQLite.
func (r *SQLiteTaskRepository) MarkNotified(ctx context.Context, taskID int64, threshold int) error {
	defer r.db.Lock()()

	var err error

	switch threshold {
	case 30:
		_, err = r.db.SQL.ExecContext(ctx, "UPDATE tasks SET notified_30 = 1 WHERE id = ?", taskID)
	case 10:
		_, err = r.db.SQL.ExecContext(ctx, "UPDATE tasks SET notified_10 = 1 WHERE id = ?", taskID)
	case 0:
		_, err = r.db.SQL.ExecContext(ctx,
			"UPDATE tasks SET notified_0 = 1, status = ?, updated_at = ? WHERE id = ?",
			string(domain.TaskStatusOverdue), db.Now(), taskID,
		)
	default:
		return fmt.Errorf("mark notified: unknown threshold %d", threshold)
	}

	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}

	return nil
}

func (r *SQLiteTaskRepository) get(ctx context.Context, id int64) (*domain.Task, error) {
	row := r.db.SQL.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)

	task, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = errors.Join(domain.ErrTaskNotFound, err)
		}

		return nil, err
	}

	if task.Links, err = r.links(ctx, id); err != nil {
		return nil, err
	}

	if task.Files, err = r.files(ctx, id); err != nil {
		return nil, err
	}

	if task.Comments, err = r.comments(ctx, id); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *SQLiteTaskRepository) exists(ctx context.Context, taskID int64) error {
	var one int

	err := r.db.SQL.QueryRowContext(ctx, "SELECT 1 FROM tasks WHERE id = ?", taskID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("query task: %w", errors.Join(domain.ErrTaskNotFound, err))
	}

	if err != nil {
		return fmt.Errorf("query task: %w", err)
	}

	return nil
}

func (r *SQLiteTaskRepository) touch(ctx context.Context, taskID int64, set string, value any) error {
	res, err := r.db.SQL.ExecContext(ctx,
		"UPDATE tasks SET "+set+", updated_at = ? WHERE id = ?",
		value, db.Now(), taskID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("update task: %w", domain.ErrTaskNotFound)
	}

	return nil
}

func (r *SQLiteTaskRepository) deleteOwned(
	ctx context.Context, table string, id, taskID int64, notFound error,
) error {
	res, err := r.db.SQL.ExecContext(ctx,
		"DELETE FROM "+table+" WHERE id = ? AND task_id = ?", id, taskID,
	)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}

	if affected == 0 {
		return fmt.Errorf("delete from %s: %w", table, notFound)
	}

	return nil
}

func (r *SQLiteTaskRepository) links(ctx context.Context, taskID int64) ([]domain.TaskLink, error) {
	rows, err := r.db.SQL.QueryContext(ctx,
		"SELECT id, task_id, url FROM task_links WHERE task_id = ? ORDER BY id", taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("query task links: %w", err)
	}
	defer rows.Close()

	links := []domain.TaskLink{}

	for rows.Next() {
		var link domain.TaskLink
		if err := rows.Scan(&link.ID, &link.TaskID, &link.URL); err != nil {
			return nil, fmt.Errorf("scan task link: %w", err)
		}

		links = append(links, link)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task links: %w", err)
	}

	return links, nil
}

func (r *SQLiteTaskRepository) files(ctx context.Context, taskID int64) ([]domain.TaskFile, error) {
	rows, err := r.db.SQL.QueryContext(ctx,
		"SELECT id, task_id, file_name, file_url FROM task_files WHERE task_id = ? ORDER BY id", taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("query task files: %w", err)
	}
	defer rows.Close()

	files := []domain.TaskFile{}

	for rows.Next() {
		var file domain.TaskFile
		if err := rows.Scan(&file.ID, &file.TaskID, &file.FileName, &file.FileURL); err != nil {
			return nil, fmt.Errorf("scan task file: %w", err)
		}

		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate task files: %w", err)
	}

	return files, nil
}

func (r *SQLiteTaskRepository) comments(ctx context.Context, taskID int64) ([]domain.Comment, error) {
	rows, err := r.db.SQL.QueryContext(ctx,
		"SELECT id, task_id, user_id, text, created_at FROM comments WHERE task_id = ? ORDER BY id", taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	comments := []domain.Comment{}

	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID, &comment.TaskID, &comment.UserID, &comment.Text, &comment.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}

		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments: %w", err)
	}

	return comments, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task

	err := row.Scan(
		&task.ID, &task.Title, &task.Description, &task.DirectionID, &task.DueAt,
		&task.AssignedUserID, &task.Status, &task.Urgency, &task.CreatedBy,
		&task.Notified30, &task.Notified10, &task.Notified0, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("query task: %w", err)
		}

		return nil, fmt.Errorf("scan task: %w", err)
	}

	return &task, nil
}
