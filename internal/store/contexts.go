package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Context is a shared, versioned reference document keyed by a stable name.
type Context struct {
	ID        int64    `json:"id"`
	Key       string   `json:"key"`
	Title     string   `json:"title,omitempty"`
	Content   string   `json:"content"`
	Version   int      `json:"version"`
	CreatedBy string   `json:"created_by,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// SaveContextParams holds the input for saving a context document.
type SaveContextParams struct {
	Key       string   `json:"key"`
	Title     string   `json:"title,omitempty"`
	Content   string   `json:"content"`
	CreatedBy string   `json:"created_by,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// SaveContext creates a context document or, when the key already exists,
// bumps its version and archives the previous content in context_versions.
// The write runs in one transaction so a reader never sees a half-bumped
// document.
func (s *Store) SaveContext(ctx context.Context, p SaveContextParams) (*Context, error) {
	if p.Key == "" {
		return nil, fmt.Errorf("context key is required")
	}
	if p.Content == "" {
		return nil, fmt.Errorf("context content is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin save context: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var id int64
	var version int
	var prevContent string
	err = tx.QueryRowContext(ctx,
		`SELECT id, version, content FROM contexts WHERE key = ?`, p.Key,
	).Scan(&id, &version, &prevContent)

	switch {
	case err == sql.ErrNoRows:
		res, err := tx.ExecContext(ctx,
			`INSERT INTO contexts (key, title, content, version, created_by) VALUES (?, ?, ?, 1, ?)`,
			p.Key, p.Title, p.Content, nullableString(p.CreatedBy),
		)
		if err != nil {
			return nil, fmt.Errorf("creating context %q: %w", p.Key, err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("looking up context %q: %w", p.Key, err)
	default:
		// Archive the superseded content, then bump.
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO context_versions (context_id, version, content) VALUES (?, ?, ?)`,
			id, version, prevContent,
		); err != nil {
			return nil, fmt.Errorf("archiving context %q v%d: %w", p.Key, version, err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE contexts
			 SET title = ?, content = ?, version = version + 1, updated_at = datetime('now')
			 WHERE id = ?`,
			p.Title, p.Content, id,
		); err != nil {
			return nil, fmt.Errorf("updating context %q: %w", p.Key, err)
		}
	}

	for _, tag := range p.Tags {
		if tag == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO context_tags (context_id, tag) VALUES (?, ?)`,
			id, tag,
		); err != nil {
			return nil, fmt.Errorf("tagging context %q: %w", p.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit save context: %w", err)
	}

	return s.GetContext(ctx, p.Key, 0)
}

// GetContext retrieves a context by key. Version 0 means the latest;
// older versions are served from the archive.
func (s *Store) GetContext(ctx context.Context, key string, version int) (*Context, error) {
	var c Context
	err := s.db.QueryRowContext(ctx,
		`SELECT id, key, title, content, version, ifnull(created_by, ''), created_at, updated_at
		 FROM contexts WHERE key = ?`, key,
	).Scan(&c.ID, &c.Key, &c.Title, &c.Content, &c.Version, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if version > 0 && version != c.Version {
		var archived string
		err := s.db.QueryRowContext(ctx,
			`SELECT content FROM context_versions WHERE context_id = ? AND version = ?`,
			c.ID, version,
		).Scan(&archived)
		if err != nil {
			return nil, fmt.Errorf("context %q v%d: %w", key, version, err)
		}
		c.Content = archived
		c.Version = version
	}

	tags, err := s.contextTags(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Tags = tags
	return &c, nil
}

// ListContexts returns context documents, optionally filtered by tag,
// most recently updated first. Content is omitted — use GetContext.
func (s *Store) ListContexts(ctx context.Context, tag string) ([]Context, error) {
	const cols = `c.id, c.key, c.title, c.version, ifnull(c.created_by, ''), c.created_at, c.updated_at`

	var rows *sql.Rows
	var err error
	if tag == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+cols+` FROM contexts c ORDER BY c.updated_at DESC, c.id DESC`)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+cols+` FROM contexts c
			 JOIN context_tags t ON t.context_id = c.id AND t.tag = ?
			 ORDER BY c.updated_at DESC, c.id DESC`, tag)
	}
	if err != nil {
		return nil, fmt.Errorf("listing contexts: %w", err)
	}
	defer rows.Close()

	var contexts []Context
	for rows.Next() {
		var c Context
		if err := rows.Scan(&c.ID, &c.Key, &c.Title, &c.Version, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		contexts = append(contexts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range contexts {
		tags, err := s.contextTags(ctx, contexts[i].ID)
		if err != nil {
			return nil, err
		}
		contexts[i].Tags = tags
	}
	return contexts, nil
}

// TagContext adds tags to an existing context document.
func (s *Store) TagContext(ctx context.Context, key string, tags []string) (*Context, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM contexts WHERE key = ?`, key).Scan(&id)
	if err != nil {
		return nil, err
	}
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO context_tags (context_id, tag) VALUES (?, ?)`,
			id, tag,
		); err != nil {
			return nil, fmt.Errorf("tagging context %q: %w", key, err)
		}
	}
	return s.GetContext(ctx, key, 0)
}

func (s *Store) contextTags(ctx context.Context, contextID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag FROM context_tags WHERE context_id = ? ORDER BY tag`, contextID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}
