package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Task statuses. Tasks move freely between statuses; there is no state
// machine beyond the enum itself.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusBlocked    = "blocked"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// ValidStatus reports whether s is a known task status.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusBlocked, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Task is a unit of work tracked by the coordination layer.
type Task struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	AssignedTo  string `json:"assigned_to,omitempty"`
	CreatedBy   string `json:"created_by,omitempty"`
	IssueNumber int64  `json:"issue_number,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// CreateTaskParams holds the input for creating a task.
type CreateTaskParams struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	AssignedTo  string `json:"assigned_to,omitempty"`
	CreatedBy   string `json:"created_by,omitempty"`
	IssueNumber int64  `json:"issue_number,omitempty"`
}

// CreateTask inserts a new pending task and returns it with its assigned id.
func (s *Store) CreateTask(ctx context.Context, p CreateTaskParams) (*Task, error) {
	if p.Title == "" {
		return nil, fmt.Errorf("task title is required")
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (title, description, status, assigned_to, created_by, issue_number)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		p.Title, p.Description, StatusPending,
		nullableString(p.AssignedTo), nullableString(p.CreatedBy), nullableInt(p.IssueNumber),
	)
	if err != nil {
		return nil, fmt.Errorf("creating task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetTask(ctx, id)
}

// GetTask retrieves a task by id.
func (s *Store) GetTask(ctx context.Context, id int64) (*Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, status, ifnull(assigned_to, ''), ifnull(created_by, ''),
		        ifnull(issue_number, 0), created_at, updated_at
		 FROM tasks WHERE id = ?`, id,
	)
	var t Task
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.AssignedTo,
		&t.CreatedBy, &t.IssueNumber, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTasks returns tasks filtered by status and/or assignee, newest first.
// Empty filters match everything. The four filter combinations map to four
// fixed query templates.
func (s *Store) ListTasks(ctx context.Context, status, assignee string) ([]Task, error) {
	const cols = `id, title, description, status, ifnull(assigned_to, ''), ifnull(created_by, ''),
	              ifnull(issue_number, 0), created_at, updated_at`

	var rows *sql.Rows
	var err error
	switch {
	case status != "" && assignee != "":
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+cols+` FROM tasks WHERE status = ? AND assigned_to = ? ORDER BY id DESC`,
			status, assignee)
	case status != "":
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+cols+` FROM tasks WHERE status = ? ORDER BY id DESC`, status)
	case assignee != "":
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+cols+` FROM tasks WHERE assigned_to = ? ORDER BY id DESC`, assignee)
	default:
		rows, err = s.db.QueryContext(ctx, `SELECT `+cols+` FROM tasks ORDER BY id DESC`)
	}
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.AssignedTo,
			&t.CreatedBy, &t.IssueNumber, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// UpdateTaskStatus sets a task's status.
// Returns sql.ErrNoRows if the task does not exist.
func (s *Store) UpdateTaskStatus(ctx context.Context, id int64, status string) (*Task, error) {
	if !ValidStatus(status) {
		return nil, fmt.Errorf("invalid task status %q", status)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET status = ?, updated_at = datetime('now') WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating task %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return nil, fmt.Errorf("task %d: %w", id, sql.ErrNoRows)
	}
	return s.GetTask(ctx, id)
}

// AssignTask sets (or clears, with an empty agent id) a task's assignee.
func (s *Store) AssignTask(ctx context.Context, id int64, agentID string) (*Task, error) {
	if agentID != "" {
		ok, err := s.AgentExists(ctx, agentID)
		if err != nil {
			return nil, fmt.Errorf("checking agent %s: %w", agentID, err)
		}
		if !ok {
			return nil, fmt.Errorf("agent %s: %w", agentID, sql.ErrNoRows)
		}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET assigned_to = ?, updated_at = datetime('now') WHERE id = ?`,
		nullableString(agentID), id,
	)
	if err != nil {
		return nil, fmt.Errorf("assigning task %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return nil, fmt.Errorf("task %d: %w", id, sql.ErrNoRows)
	}
	return s.GetTask(ctx, id)
}

// LinkIssue associates a task with an external tracker issue number.
func (s *Store) LinkIssue(ctx context.Context, id, issueNumber int64) (*Task, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET issue_number = ?, updated_at = datetime('now') WHERE id = ?`,
		nullableInt(issueNumber), id,
	)
	if err != nil {
		return nil, fmt.Errorf("linking task %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return nil, fmt.Errorf("task %d: %w", id, sql.ErrNoRows)
	}
	return s.GetTask(ctx, id)
}

// DeleteTask removes a task. Dependency edges touching it are removed by
// the ON DELETE CASCADE foreign keys.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("task %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

// nullableInt converts a zero value to nil for nullable integer columns.
func nullableInt(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}
