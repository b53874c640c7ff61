// Package taskgraph maintains the directed dependency graph over tasks.
//
// An edge (task, dependsOn) means the task cannot complete until dependsOn
// has completed. The Manager guarantees the edge set stays acyclic: every
// insertion runs a reachability check and rejects edges that would close
// a cycle. Queries return direct edges only — transitive reachability is
// an internal concern of the cycle check, not part of the public surface.
package taskgraph

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Edge is a stored dependency relation: TaskID depends on DependsOnID.
type Edge struct {
	ID          int64  `json:"id"`
	TaskID      int64  `json:"task_id"`
	DependsOnID int64  `json:"depends_on_id"`
	CreatedAt   string `json:"created_at"`
}

// EdgeStore is the storage surface the Manager consumes. The SQLite store
// implements it; tests use an in-memory fake.
type EdgeStore interface {
	// TaskExists reports whether a task with the given id exists.
	TaskExists(ctx context.Context, taskID int64) (bool, error)

	// OutgoingEdges returns the edges where taskID is the dependent side,
	// i.e. the tasks it directly depends on.
	OutgoingEdges(ctx context.Context, taskID int64) ([]Edge, error)

	// IncomingEdges returns the edges where taskID is the depended-on side,
	// i.e. the tasks that directly depend on it.
	IncomingEdges(ctx context.Context, taskID int64) ([]Edge, error)

	// InsertEdge persists a new edge and returns it with its assigned id
	// and timestamp. A duplicate (task_id, depends_on_id) pair must fail
	// with ErrDuplicateDependency.
	InsertEdge(ctx context.Context, taskID, dependsOnID int64) (*Edge, error)

	// DeleteEdge removes exactly one edge, reporting whether a row was removed.
	DeleteEdge(ctx context.Context, taskID, dependsOnID int64) (bool, error)
}

// Manager validates and serializes mutations of the dependency edge set.
type Manager struct {
	store  EdgeStore
	logger *zap.Logger

	// mu makes the check-then-write sequence of AddDependency a single
	// critical section. Two concurrent insertions passing the cycle check
	// against a stale view could otherwise jointly close a cycle.
	mu sync.Mutex
}

// NewManager creates a Manager backed by the given store.
func NewManager(store EdgeStore, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		store:  store,
		logger: logger.With(zap.String("component", "taskgraph")),
	}
}

// AddDependency records that taskID must wait for dependsOnID.
//
// Preconditions, checked in order before any write:
//  1. taskID != dependsOnID (ErrSelfDependency)
//  2. both tasks exist (ErrTaskNotFound naming the missing id)
//  3. dependsOnID must not already reach taskID through existing edges (ErrCycle)
//
// On success the created edge is returned with its assigned id. Re-adding
// an existing edge fails with ErrDuplicateDependency.
func (m *Manager) AddDependency(ctx context.Context, taskID, dependsOnID int64) (*Edge, error) {
	if taskID == dependsOnID {
		return nil, fmt.Errorf("task %d: %w", taskID, ErrSelfDependency)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, id := range []int64{taskID, dependsOnID} {
		ok, err := m.store.TaskExists(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("checking task %d: %w", id, err)
		}
		if !ok {
			return nil, fmt.Errorf("task %d: %w", id, ErrTaskNotFound)
		}
	}

	cyclic, err := m.wouldCreateCycle(ctx, taskID, dependsOnID)
	if err != nil {
		return nil, fmt.Errorf("cycle check for %d -> %d: %w", taskID, dependsOnID, err)
	}
	if cyclic {
		return nil, fmt.Errorf("%d -> %d: %w", taskID, dependsOnID, ErrCycle)
	}

	edge, err := m.store.InsertEdge(ctx, taskID, dependsOnID)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("dependency added",
		zap.Int64("task_id", taskID),
		zap.Int64("depends_on_id", dependsOnID),
		zap.Int64("edge_id", edge.ID),
	)
	return edge, nil
}

// RemoveDependency deletes the edge taskID -> dependsOnID.
// Fails with ErrDependencyNotFound if no such edge exists.
func (m *Manager) RemoveDependency(ctx context.Context, taskID, dependsOnID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed, err := m.store.DeleteEdge(ctx, taskID, dependsOnID)
	if err != nil {
		return fmt.Errorf("deleting dependency %d -> %d: %w", taskID, dependsOnID, err)
	}
	if !removed {
		return fmt.Errorf("%d -> %d: %w", taskID, dependsOnID, ErrDependencyNotFound)
	}

	m.logger.Debug("dependency removed",
		zap.Int64("task_id", taskID),
		zap.Int64("depends_on_id", dependsOnID),
	)
	return nil
}

// Dependencies returns the edges for the tasks taskID directly depends on.
// Fails with ErrTaskNotFound if taskID itself does not exist.
func (m *Manager) Dependencies(ctx context.Context, taskID int64) ([]Edge, error) {
	if err := m.requireTask(ctx, taskID); err != nil {
		return nil, err
	}
	edges, err := m.store.OutgoingEdges(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing dependencies of %d: %w", taskID, err)
	}
	return edges, nil
}

// Dependents returns the edges for the tasks that directly depend on taskID.
// Fails with ErrTaskNotFound if taskID itself does not exist.
func (m *Manager) Dependents(ctx context.Context, taskID int64) ([]Edge, error) {
	if err := m.requireTask(ctx, taskID); err != nil {
		return nil, err
	}
	edges, err := m.store.IncomingEdges(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("listing dependents of %d: %w", taskID, err)
	}
	return edges, nil
}

func (m *Manager) requireTask(ctx context.Context, taskID int64) error {
	ok, err := m.store.TaskExists(ctx, taskID)
	if err != nil {
		return fmt.Errorf("checking task %d: %w", taskID, err)
	}
	if !ok {
		return fmt.Errorf("task %d: %w", taskID, ErrTaskNotFound)
	}
	return nil
}

// wouldCreateCycle reports whether adding taskID -> dependsOnID would close
// a cycle, which holds iff dependsOnID already reaches taskID through the
// existing edge set.
//
// Iterative DFS with an explicit work-list; the visited set bounds the
// traversal so it terminates even if the stored graph is already broken.
func (m *Manager) wouldCreateCycle(ctx context.Context, taskID, dependsOnID int64) (bool, error) {
	visited := map[int64]bool{}
	stack := []int64{dependsOnID}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if current == taskID {
			return true, nil
		}
		if visited[current] {
			continue
		}
		visited[current] = true

		edges, err := m.store.OutgoingEdges(ctx, current)
		if err != nil {
			return false, fmt.Errorf("traversing edges of %d: %w", current, err)
		}
		for _, e := range edges {
			if !visited[e.DependsOnID] {
				stack = append(stack, e.DependsOnID)
			}
		}
	}

	return false, nil
}
