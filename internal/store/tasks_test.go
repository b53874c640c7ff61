package store_test

import (
	"context"
	"testing"

	"github.com/mkc909/agent-communication-mcp-server/internal/store"
)

func TestCreateTask_Defaults(t *testing.T) {
	s := newTestStore(t)

	task, err := s.CreateTask(context.Background(), store.CreateTaskParams{
		Title:       "wire the store",
		Description: "sqlite schema + queries",
	})
	if err != nil {
		t.Fatalf("CreateTask() error: %v", err)
	}

	if task.ID == 0 {
		t.Error("task should have an id")
	}
	if task.Status != store.StatusPending {
		t.Errorf("Status = %q, want pending", task.Status)
	}
	if task.CreatedAt == "" || task.UpdatedAt == "" {
		t.Error("timestamps should be set")
	}
}

func TestCreateTask_RequiresTitle(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.CreateTask(context.Background(), store.CreateTaskParams{}); err == nil {
		t.Fatal("expected error for empty title")
	}
}

func TestUpdateTaskStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := createTask(t, s, "t")

	task, err := s.UpdateTaskStatus(ctx, id, store.StatusInProgress)
	if err != nil {
		t.Fatalf("UpdateTaskStatus() error: %v", err)
	}
	if task.Status != store.StatusInProgress {
		t.Errorf("Status = %q", task.Status)
	}

	if _, err := s.UpdateTaskStatus(ctx, id, "bogus"); err == nil {
		t.Error("expected error for invalid status")
	}
	if _, err := s.UpdateTaskStatus(ctx, 9999, store.StatusCompleted); err == nil {
		t.Error("expected error for unknown task")
	}
}

func TestAssignTask(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	registerAgent(t, s, "worker")
	id := createTask(t, s, "t")

	task, err := s.AssignTask(ctx, id, "worker")
	if err != nil {
		t.Fatalf("AssignTask() error: %v", err)
	}
	if task.AssignedTo != "worker" {
		t.Errorf("AssignedTo = %q", task.AssignedTo)
	}

	if _, err := s.AssignTask(ctx, id, "ghost"); err == nil {
		t.Error("expected error assigning to unknown agent")
	}

	// Empty agent clears the assignment.
	task, err = s.AssignTask(ctx, id, "")
	if err != nil {
		t.Fatal(err)
	}
	if task.AssignedTo != "" {
		t.Errorf("AssignedTo = %q after clearing", task.AssignedTo)
	}
}

func TestListTasks_Filters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	registerAgent(t, s, "worker")

	a := createTask(t, s, "a")
	b := createTask(t, s, "b")
	createTask(t, s, "c")

	if _, err := s.UpdateTaskStatus(ctx, a, store.StatusCompleted); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AssignTask(ctx, b, "worker"); err != nil {
		t.Fatal(err)
	}

	all, err := s.ListTasks(ctx, "", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("all tasks = %d, want 3", len(all))
	}

	pending, err := s.ListTasks(ctx, store.StatusPending, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 2 {
		t.Errorf("pending = %d, want 2", len(pending))
	}

	mine, err := s.ListTasks(ctx, store.StatusPending, "worker")
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 1 || mine[0].ID != b {
		t.Errorf("filtered = %+v, want [task %d]", mine, b)
	}
}

func TestLinkIssue(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := createTask(t, s, "t")

	task, err := s.LinkIssue(ctx, id, 42)
	if err != nil {
		t.Fatalf("LinkIssue() error: %v", err)
	}
	if task.IssueNumber != 42 {
		t.Errorf("IssueNumber = %d, want 42", task.IssueNumber)
	}

	if _, err := s.LinkIssue(ctx, 9999, 42); err == nil {
		t.Error("expected error for unknown task")
	}
}

func TestDeleteTask_CascadesEdges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	t1 := createTask(t, s, "a")
	t2 := createTask(t, s, "b")
	if _, err := s.InsertEdge(ctx, t1, t2); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteTask(ctx, t2); err != nil {
		t.Fatalf("DeleteTask() error: %v", err)
	}

	edges, err := s.OutgoingEdges(ctx, t1)
	if err != nil {
		t.Fatal(err)
	}
	if len(edges) != 0 {
		t.Errorf("edges survived endpoint deletion: %+v", edges)
	}

	if err := s.DeleteTask(ctx, 9999); err == nil {
		t.Error("expected error deleting unknown task")
	}
}
