package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
)

// Message is a directed message between two agents. Messages sharing a
// thread id belong to the same conversation; all copies of a broadcast
// carry the broadcast's thread id.
type Message struct {
	ID        int64  `json:"id"`
	FromAgent string `json:"from_agent"`
	ToAgent   string `json:"to_agent"`
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body"`
	ThreadID  string `json:"thread_id"`
	Read      bool   `json:"read"`
	CreatedAt string `json:"created_at"`
}

// SendMessageParams holds the input for sending a message.
// Leave ThreadID empty to start a new thread; set it to an existing
// thread id to reply.
type SendMessageParams struct {
	FromAgent string `json:"from_agent"`
	ToAgent   string `json:"to_agent"`
	Subject   string `json:"subject,omitempty"`
	Body      string `json:"body"`
	ThreadID  string `json:"thread_id,omitempty"`
}

// SendMessage delivers a message from one agent to another.
// Both endpoints must be registered.
func (s *Store) SendMessage(ctx context.Context, p SendMessageParams) (*Message, error) {
	for _, id := range []string{p.FromAgent, p.ToAgent} {
		ok, err := s.AgentExists(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("checking agent %s: %w", id, err)
		}
		if !ok {
			return nil, fmt.Errorf("agent %s: %w", id, sql.ErrNoRows)
		}
	}

	threadID := p.ThreadID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (from_agent, to_agent, subject, body, thread_id) VALUES (?, ?, ?, ?, ?)`,
		p.FromAgent, p.ToAgent, p.Subject, p.Body, threadID,
	)
	if err != nil {
		return nil, fmt.Errorf("sending message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.getMessage(ctx, id)
}

// Broadcast delivers a message to every registered agent except the sender,
// one row per recipient, in a single transaction. All copies share a fresh
// thread id, which is returned with the recipient count.
func (s *Store) Broadcast(ctx context.Context, from, subject, body string) (int, string, error) {
	ok, err := s.AgentExists(ctx, from)
	if err != nil {
		return 0, "", fmt.Errorf("checking agent %s: %w", from, err)
	}
	if !ok {
		return 0, "", fmt.Errorf("agent %s: %w", from, sql.ErrNoRows)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, "", fmt.Errorf("begin broadcast: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	rows, err := tx.QueryContext(ctx, `SELECT id FROM agents WHERE id <> ?`, from)
	if err != nil {
		return 0, "", fmt.Errorf("listing recipients: %w", err)
	}
	var recipients []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, "", err
		}
		recipients = append(recipients, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, "", err
	}
	rows.Close()

	threadID := uuid.NewString()
	for _, to := range recipients {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO messages (from_agent, to_agent, subject, body, thread_id) VALUES (?, ?, ?, ?, ?)`,
			from, to, subject, body, threadID,
		); err != nil {
			return 0, "", fmt.Errorf("broadcasting to %s: %w", to, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, "", fmt.Errorf("commit broadcast: %w", err)
	}
	return len(recipients), threadID, nil
}

// MessagesFor returns messages addressed to an agent, newest first.
// With unreadOnly set, read messages are filtered out.
func (s *Store) MessagesFor(ctx context.Context, agentID string, unreadOnly bool, limit int) ([]Message, error) {
	if limit <= 0 {
		limit = 50
	}

	// Fixed query templates selected by the unread filter — no dynamic
	// query assembly from caller input.
	query := `SELECT id, from_agent, to_agent, subject, body, thread_id, read, created_at
	          FROM messages WHERE to_agent = ? ORDER BY created_at DESC, id DESC LIMIT ?`
	if unreadOnly {
		query = `SELECT id, from_agent, to_agent, subject, body, thread_id, read, created_at
		         FROM messages WHERE to_agent = ? AND read = 0 ORDER BY created_at DESC, id DESC LIMIT ?`
	}

	rows, err := s.db.QueryContext(ctx, query, agentID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing messages for %s: %w", agentID, err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		var read int
		if err := rows.Scan(&m.ID, &m.FromAgent, &m.ToAgent, &m.Subject, &m.Body, &m.ThreadID, &read, &m.CreatedAt); err != nil {
			return nil, err
		}
		m.Read = read != 0
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// MarkRead marks the given messages as read, scoped to the recipient so an
// agent cannot mark another agent's inbox. Returns the number updated.
func (s *Store) MarkRead(ctx context.Context, agentID string, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	updated := 0
	for _, id := range ids {
		res, err := s.db.ExecContext(ctx,
			`UPDATE messages SET read = 1 WHERE id = ? AND to_agent = ?`,
			id, agentID,
		)
		if err != nil {
			return updated, fmt.Errorf("marking message %d read: %w", id, err)
		}
		n, _ := res.RowsAffected()
		updated += int(n)
	}
	return updated, nil
}

func (s *Store) getMessage(ctx context.Context, id int64) (*Message, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, from_agent, to_agent, subject, body, thread_id, read, created_at
		 FROM messages WHERE id = ?`, id,
	)
	var m Message
	var read int
	if err := row.Scan(&m.ID, &m.FromAgent, &m.ToAgent, &m.Subject, &m.Body, &m.ThreadID, &read, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Read = read != 0
	return &m, nil
}
