package store

import (
	"context"
	"fmt"
	"time"
)

// Stats is an aggregate snapshot of coordination state, served through the
// status resource.
type Stats struct {
	Agents         int            `json:"agents"`
	AgentsOnline   int            `json:"agents_online"`
	TasksByStatus  map[string]int `json:"tasks_by_status"`
	Dependencies   int            `json:"dependencies"`
	UnreadMessages int            `json:"unread_messages"`
	Contexts       int            `json:"contexts"`
}

// Stats computes the aggregate snapshot. Presence uses the given window.
func (s *Store) Stats(ctx context.Context, onlineWindow time.Duration) (*Stats, error) {
	stats := &Stats{TasksByStatus: map[string]int{}}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agents`).Scan(&stats.Agents); err != nil {
		return nil, fmt.Errorf("counting agents: %w", err)
	}

	agents, err := s.ListAgents(ctx, onlineWindow)
	if err != nil {
		return nil, err
	}
	for _, a := range agents {
		if a.Online {
			stats.AgentsOnline++
		}
	}

	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting tasks: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		stats.TasksByStatus[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM task_dependencies`).Scan(&stats.Dependencies); err != nil {
		return nil, fmt.Errorf("counting dependencies: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE read = 0`).Scan(&stats.UnreadMessages); err != nil {
		return nil, fmt.Errorf("counting unread messages: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contexts`).Scan(&stats.Contexts); err != nil {
		return nil, fmt.Errorf("counting contexts: %w", err)
	}

	return stats, nil
}
