package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mkc909/agent-communication-mcp-server/internal/store"
)

// newTestStore creates a Store backed by a temp directory for isolation.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(store.Config{DataDir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// registerAgent registers an agent the test depends on.
func registerAgent(t *testing.T, s *store.Store, id string, caps ...string) {
	t.Helper()
	if _, err := s.RegisterAgent(context.Background(), store.RegisterAgentParams{
		ID:           id,
		Name:         id,
		Capabilities: caps,
	}); err != nil {
		t.Fatalf("failed to register agent %q: %v", id, err)
	}
}

// createTask creates a task and returns its id.
func createTask(t *testing.T, s *store.Store, title string) int64 {
	t.Helper()
	task, err := s.CreateTask(context.Background(), store.CreateTaskParams{Title: title})
	if err != nil {
		t.Fatalf("failed to create task %q: %v", title, err)
	}
	return task.ID
}

// ─── Open / Close ───────────────────────────────────────────────────────────

func TestOpen_CreatesDBFile(t *testing.T) {
	dir := t.TempDir()
	s, err := store.Open(store.Config{DataDir: dir}, nil)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(filepath.Join(dir, "coordination.db")); err != nil {
		t.Errorf("database file not created: %v", err)
	}
}

func TestOpen_IdempotentReopen(t *testing.T) {
	dir := t.TempDir()

	s1, err := store.Open(store.Config{DataDir: dir}, nil)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	registerAgent(t, s1, "agent-1")
	s1.Close()

	s2, err := store.Open(store.Config{DataDir: dir}, nil)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s2.Close()

	a, err := s2.GetAgent(context.Background(), "agent-1")
	if err != nil {
		t.Fatalf("agent lost across reopen: %v", err)
	}
	if a.ID != "agent-1" {
		t.Errorf("agent id = %q", a.ID)
	}
}

// ─── Stats ──────────────────────────────────────────────────────────────────

func TestStats_Snapshot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	registerAgent(t, s, "alpha")
	registerAgent(t, s, "beta")
	t1 := createTask(t, s, "first")
	t2 := createTask(t, s, "second")
	if _, err := s.InsertEdge(ctx, t1, t2); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SendMessage(ctx, store.SendMessageParams{
		FromAgent: "alpha", ToAgent: "beta", Body: "hello",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SaveContext(ctx, store.SaveContextParams{Key: "arch", Content: "doc"}); err != nil {
		t.Fatal(err)
	}

	stats, err := s.Stats(ctx, 5*time.Minute)
	if err != nil {
		t.Fatalf("Stats() error: %v", err)
	}

	if stats.Agents != 2 {
		t.Errorf("Agents = %d, want 2", stats.Agents)
	}
	if stats.AgentsOnline != 2 {
		t.Errorf("AgentsOnline = %d, want 2 (both just registered)", stats.AgentsOnline)
	}
	if stats.TasksByStatus[store.StatusPending] != 2 {
		t.Errorf("pending tasks = %d, want 2", stats.TasksByStatus[store.StatusPending])
	}
	if stats.Dependencies != 1 {
		t.Errorf("Dependencies = %d, want 1", stats.Dependencies)
	}
	if stats.UnreadMessages != 1 {
		t.Errorf("UnreadMessages = %d, want 1", stats.UnreadMessages)
	}
	if stats.Contexts != 1 {
		t.Errorf("Contexts = %d, want 1", stats.Contexts)
	}
}
