package store

import (
	"context"
	"fmt"

	"github.com/mkc909/agent-communication-mcp-server/internal/taskgraph"
)

// The Store implements taskgraph.EdgeStore. The taskgraph.Manager owns all
// validation and the cycle check; this layer only executes the fixed
// statements and maps the unique-index violation to the duplicate error.

// TaskExists reports whether a task with the given id exists.
func (s *Store) TaskExists(ctx context.Context, taskID int64) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM tasks WHERE id = ?`, taskID)
}

// OutgoingEdges returns the edges where taskID is the dependent side.
func (s *Store) OutgoingEdges(ctx context.Context, taskID int64) ([]taskgraph.Edge, error) {
	return s.queryEdges(ctx,
		`SELECT id, task_id, depends_on_id, created_at
		 FROM task_dependencies WHERE task_id = ? ORDER BY id`, taskID)
}

// IncomingEdges returns the edges where taskID is the depended-on side.
func (s *Store) IncomingEdges(ctx context.Context, taskID int64) ([]taskgraph.Edge, error) {
	return s.queryEdges(ctx,
		`SELECT id, task_id, depends_on_id, created_at
		 FROM task_dependencies WHERE depends_on_id = ? ORDER BY id`, taskID)
}

// InsertEdge persists a new dependency edge with a fresh timestamp.
// The UNIQUE(task_id, depends_on_id) index rejects duplicates; the violation
// is surfaced as taskgraph.ErrDuplicateDependency.
func (s *Store) InsertEdge(ctx context.Context, taskID, dependsOnID int64) (*taskgraph.Edge, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO task_dependencies (task_id, depends_on_id) VALUES (?, ?)`,
		taskID, dependsOnID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%d -> %d: %w", taskID, dependsOnID, taskgraph.ErrDuplicateDependency)
		}
		return nil, fmt.Errorf("inserting edge %d -> %d: %w", taskID, dependsOnID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, task_id, depends_on_id, created_at FROM task_dependencies WHERE id = ?`, id,
	)
	var e taskgraph.Edge
	if err := row.Scan(&e.ID, &e.TaskID, &e.DependsOnID, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// DeleteEdge removes exactly one edge, reporting whether a row was removed.
func (s *Store) DeleteEdge(ctx context.Context, taskID, dependsOnID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM task_dependencies WHERE task_id = ? AND depends_on_id = ?`,
		taskID, dependsOnID,
	)
	if err != nil {
		return false, fmt.Errorf("deleting edge %d -> %d: %w", taskID, dependsOnID, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (s *Store) queryEdges(ctx context.Context, query string, taskID int64) ([]taskgraph.Edge, error) {
	rows, err := s.db.QueryContext(ctx, query, taskID)
	if err != nil {
		return nil, fmt.Errorf("querying edges of %d: %w", taskID, err)
	}
	defer rows.Close()

	var edges []taskgraph.Edge
	for rows.Next() {
		var e taskgraph.Edge
		if err := rows.Scan(&e.ID, &e.TaskID, &e.DependsOnID, &e.CreatedAt); err != nil {
			return nil, err
		}
		edges = append(edges, e)
	}
	return edges, rows.Err()
}
