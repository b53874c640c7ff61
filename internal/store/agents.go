package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Agent is a registered automated agent.
type Agent struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Role         string   `json:"role,omitempty"`
	Capabilities []string `json:"capabilities"`
	RegisteredAt string   `json:"registered_at"`
	LastPing     string   `json:"last_ping"`
	Online       bool     `json:"online"`
}

// RegisterAgentParams holds the input for registering an agent.
type RegisterAgentParams struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Role         string   `json:"role,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
}

// RegisterAgent creates or replaces an agent record. Re-registering an
// existing id updates its metadata and refreshes the ping timestamp, so an
// agent restarting after a crash does not need a separate code path.
func (s *Store) RegisterAgent(ctx context.Context, p RegisterAgentParams) (*Agent, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("agent id is required")
	}
	if p.Name == "" {
		p.Name = p.ID
	}
	caps := p.Capabilities
	if caps == nil {
		caps = []string{}
	}
	capsJSON, err := json.Marshal(caps)
	if err != nil {
		return nil, fmt.Errorf("encoding capabilities: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO agents (id, name, role, capabilities)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   role = excluded.role,
		   capabilities = excluded.capabilities,
		   last_ping = datetime('now')`,
		p.ID, p.Name, p.Role, string(capsJSON),
	)
	if err != nil {
		return nil, fmt.Errorf("registering agent %s: %w", p.ID, err)
	}

	return s.GetAgent(ctx, p.ID)
}

// Ping refreshes an agent's presence timestamp.
// Returns sql.ErrNoRows if the agent is not registered.
func (s *Store) Ping(ctx context.Context, agentID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE agents SET last_ping = datetime('now') WHERE id = ?`, agentID,
	)
	if err != nil {
		return fmt.Errorf("pinging agent %s: %w", agentID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("agent %s: %w", agentID, sql.ErrNoRows)
	}
	return nil
}

// GetAgent retrieves a single agent by id. Online is left false — presence
// is computed by the caller against its configured window (see ListAgents).
func (s *Store) GetAgent(ctx context.Context, agentID string) (*Agent, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, role, capabilities, registered_at, last_ping
		 FROM agents WHERE id = ?`, agentID,
	)
	return scanAgent(row)
}

// AgentExists reports whether an agent with the given id is registered.
func (s *Store) AgentExists(ctx context.Context, agentID string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM agents WHERE id = ?`, agentID)
}

// ListAgents returns all registered agents, most recently active first.
// Agents whose last ping falls within onlineWindow are flagged online.
func (s *Store) ListAgents(ctx context.Context, onlineWindow time.Duration) ([]Agent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, role, capabilities, registered_at, last_ping
		 FROM agents ORDER BY last_ping DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing agents: %w", err)
	}
	defer rows.Close()

	return collectAgents(rows, onlineWindow)
}

// AgentsByCapability returns agents advertising the given capability.
func (s *Store) AgentsByCapability(ctx context.Context, capability string, onlineWindow time.Duration) ([]Agent, error) {
	agents, err := s.ListAgents(ctx, onlineWindow)
	if err != nil {
		return nil, err
	}
	var matched []Agent
	for _, a := range agents {
		for _, c := range a.Capabilities {
			if c == capability {
				matched = append(matched, a)
				break
			}
		}
	}
	return matched, nil
}

// ─── Scanning ───────────────────────────────────────────────────────────────

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgent(row rowScanner) (*Agent, error) {
	var a Agent
	var capsJSON string
	if err := row.Scan(&a.ID, &a.Name, &a.Role, &capsJSON, &a.RegisteredAt, &a.LastPing); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(capsJSON), &a.Capabilities); err != nil {
		a.Capabilities = []string{}
	}
	return &a, nil
}

func collectAgents(rows *sql.Rows, onlineWindow time.Duration) ([]Agent, error) {
	var agents []Agent
	for rows.Next() {
		a, err := scanAgent(rows)
		if err != nil {
			return nil, err
		}
		a.Online = isOnline(a.LastPing, onlineWindow)
		agents = append(agents, *a)
	}
	return agents, rows.Err()
}

// isOnline reports whether a last_ping timestamp falls inside the window.
// SQLite's datetime('now') produces UTC "2006-01-02 15:04:05".
func isOnline(lastPing string, window time.Duration) bool {
	if window <= 0 {
		return false
	}
	t, err := time.Parse("2006-01-02 15:04:05", lastPing)
	if err != nil {
		return false
	}
	return time.Since(t.UTC()) <= window
}
