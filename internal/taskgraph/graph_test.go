package taskgraph

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// ─── Fake store ─────────────────────────────────────────────────────────────

// fakeStore is an in-memory EdgeStore for exercising the Manager without SQLite.
type fakeStore struct {
	tasks  map[int64]bool
	edges  []Edge
	nextID int64

	// failWith, when set, makes every store call return this error.
	failWith error
}

func newFakeStore(taskIDs ...int64) *fakeStore {
	s := &fakeStore{tasks: map[int64]bool{}, nextID: 1}
	for _, id := range taskIDs {
		s.tasks[id] = true
	}
	return s
}

func (s *fakeStore) TaskExists(_ context.Context, taskID int64) (bool, error) {
	if s.failWith != nil {
		return false, s.failWith
	}
	return s.tasks[taskID], nil
}

func (s *fakeStore) OutgoingEdges(_ context.Context, taskID int64) ([]Edge, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	var out []Edge
	for _, e := range s.edges {
		if e.TaskID == taskID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) IncomingEdges(_ context.Context, taskID int64) ([]Edge, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	var out []Edge
	for _, e := range s.edges {
		if e.DependsOnID == taskID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) InsertEdge(_ context.Context, taskID, dependsOnID int64) (*Edge, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	for _, e := range s.edges {
		if e.TaskID == taskID && e.DependsOnID == dependsOnID {
			return nil, fmt.Errorf("%d -> %d: %w", taskID, dependsOnID, ErrDuplicateDependency)
		}
	}
	edge := Edge{ID: s.nextID, TaskID: taskID, DependsOnID: dependsOnID, CreatedAt: "2026-01-01 00:00:00"}
	s.nextID++
	s.edges = append(s.edges, edge)
	return &edge, nil
}

func (s *fakeStore) DeleteEdge(_ context.Context, taskID, dependsOnID int64) (bool, error) {
	if s.failWith != nil {
		return false, s.failWith
	}
	for i, e := range s.edges {
		if e.TaskID == taskID && e.DependsOnID == dependsOnID {
			s.edges = append(s.edges[:i], s.edges[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// addEdgeRaw bypasses the Manager, for seeding broken state.
func (s *fakeStore) addEdgeRaw(taskID, dependsOnID int64) {
	s.edges = append(s.edges, Edge{ID: s.nextID, TaskID: taskID, DependsOnID: dependsOnID})
	s.nextID++
}

func newTestManager(store EdgeStore) *Manager {
	return NewManager(store, nil)
}

// ─── AddDependency ──────────────────────────────────────────────────────────

func TestAddDependency_Success(t *testing.T) {
	store := newFakeStore(1, 2)
	m := newTestManager(store)

	edge, err := m.AddDependency(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("AddDependency(1, 2) error: %v", err)
	}
	if edge.ID == 0 {
		t.Error("edge should have an assigned id")
	}
	if edge.TaskID != 1 || edge.DependsOnID != 2 {
		t.Errorf("edge = %+v, want 1 -> 2", edge)
	}
	if edge.CreatedAt == "" {
		t.Error("edge should carry a creation timestamp")
	}
}

func TestAddDependency_SelfLoop(t *testing.T) {
	store := newFakeStore(1)
	m := newTestManager(store)

	_, err := m.AddDependency(context.Background(), 1, 1)
	if !errors.Is(err, ErrSelfDependency) {
		t.Fatalf("AddDependency(1, 1) = %v, want ErrSelfDependency", err)
	}
}

func TestAddDependency_SelfLoopOnUnknownTask(t *testing.T) {
	// The self-loop check fires before the existence check.
	store := newFakeStore() // no tasks at all
	m := newTestManager(store)

	_, err := m.AddDependency(context.Background(), 99, 99)
	if !errors.Is(err, ErrSelfDependency) {
		t.Fatalf("AddDependency(99, 99) = %v, want ErrSelfDependency", err)
	}
}

func TestAddDependency_MissingTask(t *testing.T) {
	store := newFakeStore(1)
	m := newTestManager(store)

	tests := []struct {
		name        string
		task, dep   int64
		missingInfo string
	}{
		{"missing dependent", 7, 1, "task 7"},
		{"missing dependency", 1, 8, "task 8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.AddDependency(context.Background(), tt.task, tt.dep)
			if !errors.Is(err, ErrTaskNotFound) {
				t.Fatalf("AddDependency(%d, %d) = %v, want ErrTaskNotFound", tt.task, tt.dep, err)
			}
			if got := err.Error(); !strings.Contains(got, tt.missingInfo) {
				t.Errorf("error %q should name the missing id (%s)", got, tt.missingInfo)
			}
			if len(store.edges) != 0 {
				t.Error("edge set must be unchanged after a failed add")
			}
		})
	}
}

func TestAddDependency_DirectCycle(t *testing.T) {
	store := newFakeStore(1, 2)
	m := newTestManager(store)

	if _, err := m.AddDependency(context.Background(), 1, 2); err != nil {
		t.Fatalf("AddDependency(1, 2) error: %v", err)
	}

	_, err := m.AddDependency(context.Background(), 2, 1)
	if !errors.Is(err, ErrCycle) {
		t.Fatalf("AddDependency(2, 1) = %v, want ErrCycle", err)
	}
	if len(store.edges) != 1 {
		t.Errorf("edge set changed after rejected add: %d edges", len(store.edges))
	}
}

func TestAddDependency_TransitiveCycle(t *testing.T) {
	// Scenario from the contract: 1->2, 2->3, then 3->1 must be rejected;
	// removing 1->2 breaks the chain and 3->1 becomes legal.
	store := newFakeStore(1, 2, 3)
	m := newTestManager(store)
	ctx := context.Background()

	if _, err := m.AddDependency(ctx, 1, 2); err != nil {
		t.Fatalf("add 1 -> 2: %v", err)
	}
	if _, err := m.AddDependency(ctx, 2, 3); err != nil {
		t.Fatalf("add 2 -> 3: %v", err)
	}

	if _, err := m.AddDependency(ctx, 3, 1); !errors.Is(err, ErrCycle) {
		t.Fatalf("add 3 -> 1 = %v, want ErrCycle", err)
	}

	if _, err := m.AddDependency(ctx, 1, 1); !errors.Is(err, ErrSelfDependency) {
		t.Fatalf("add 1 -> 1 = %v, want ErrSelfDependency", err)
	}

	if err := m.RemoveDependency(ctx, 1, 2); err != nil {
		t.Fatalf("remove 1 -> 2: %v", err)
	}
	if _, err := m.AddDependency(ctx, 3, 1); err != nil {
		t.Fatalf("add 3 -> 1 after removing 1 -> 2: %v", err)
	}
}

func TestAddDependency_DiamondIsNotACycle(t *testing.T) {
	// 1->2, 1->3, 2->4, 3->4: two paths to 4, still acyclic.
	store := newFakeStore(1, 2, 3, 4)
	m := newTestManager(store)
	ctx := context.Background()

	for _, pair := range [][2]int64{{1, 2}, {1, 3}, {2, 4}} {
		if _, err := m.AddDependency(ctx, pair[0], pair[1]); err != nil {
			t.Fatalf("add %d -> %d: %v", pair[0], pair[1], err)
		}
	}
	if _, err := m.AddDependency(ctx, 3, 4); err != nil {
		t.Fatalf("add 3 -> 4 should succeed in a diamond: %v", err)
	}
}

func TestAddDependency_Duplicate(t *testing.T) {
	store := newFakeStore(1, 2)
	m := newTestManager(store)
	ctx := context.Background()

	if _, err := m.AddDependency(ctx, 1, 2); err != nil {
		t.Fatalf("first add: %v", err)
	}

	_, err := m.AddDependency(ctx, 1, 2)
	if !errors.Is(err, ErrDuplicateDependency) {
		t.Fatalf("second add = %v, want ErrDuplicateDependency", err)
	}
	if len(store.edges) != 1 {
		t.Errorf("duplicate add produced %d stored edges, want 1", len(store.edges))
	}
}

func TestAddDependency_StorageFailure(t *testing.T) {
	store := newFakeStore(1, 2)
	store.failWith = errors.New("database is locked")
	m := newTestManager(store)

	_, err := m.AddDependency(context.Background(), 1, 2)
	if err == nil {
		t.Fatal("expected propagated storage error")
	}
	if errors.Is(err, ErrTaskNotFound) || errors.Is(err, ErrCycle) {
		t.Errorf("storage failure misclassified: %v", err)
	}
}

func TestAddDependency_TerminatesOnBrokenGraph(t *testing.T) {
	// Seed a pre-existing cycle behind the Manager's back. The visited set
	// must bound the traversal instead of looping forever.
	store := newFakeStore(1, 2, 3, 4)
	store.addEdgeRaw(2, 3)
	store.addEdgeRaw(3, 2)
	m := newTestManager(store)

	if _, err := m.AddDependency(context.Background(), 4, 2); err != nil {
		t.Fatalf("add 4 -> 2 over broken state: %v", err)
	}
}

// ─── RemoveDependency ───────────────────────────────────────────────────────

func TestRemoveDependency_NotFound(t *testing.T) {
	store := newFakeStore(1, 2)
	m := newTestManager(store)

	err := m.RemoveDependency(context.Background(), 1, 2)
	if !errors.Is(err, ErrDependencyNotFound) {
		t.Fatalf("RemoveDependency = %v, want ErrDependencyNotFound", err)
	}
}

func TestRemoveDependency_LeavesOtherEdges(t *testing.T) {
	store := newFakeStore(1, 2, 3)
	m := newTestManager(store)
	ctx := context.Background()

	if _, err := m.AddDependency(ctx, 1, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddDependency(ctx, 1, 3); err != nil {
		t.Fatal(err)
	}

	if err := m.RemoveDependency(ctx, 1, 2); err != nil {
		t.Fatalf("remove 1 -> 2: %v", err)
	}

	deps, err := m.Dependencies(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(deps) != 1 || deps[0].DependsOnID != 3 {
		t.Errorf("Dependencies(1) = %+v, want only 1 -> 3", deps)
	}
}

// ─── Queries ────────────────────────────────────────────────────────────────

func TestQueries_Symmetry(t *testing.T) {
	store := newFakeStore(1, 2)
	m := newTestManager(store)
	ctx := context.Background()

	if _, err := m.AddDependency(ctx, 1, 2); err != nil {
		t.Fatal(err)
	}

	deps, err := m.Dependencies(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(deps) != 1 || deps[0].DependsOnID != 2 {
		t.Errorf("Dependencies(1) = %+v, want [1 -> 2]", deps)
	}

	dependents, err := m.Dependents(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(dependents) != 1 || dependents[0].TaskID != 1 {
		t.Errorf("Dependents(2) = %+v, want [1 -> 2]", dependents)
	}

	if err := m.RemoveDependency(ctx, 1, 2); err != nil {
		t.Fatal(err)
	}
	deps, _ = m.Dependencies(ctx, 1)
	dependents, _ = m.Dependents(ctx, 2)
	if len(deps) != 0 || len(dependents) != 0 {
		t.Error("listings should be empty after removal")
	}
}

func TestQueries_DirectOnly(t *testing.T) {
	// Chain 1->2->3: Dependencies(1) holds 2 but not the transitive 3.
	store := newFakeStore(1, 2, 3)
	m := newTestManager(store)
	ctx := context.Background()

	if _, err := m.AddDependency(ctx, 1, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := m.AddDependency(ctx, 2, 3); err != nil {
		t.Fatal(err)
	}

	deps, err := m.Dependencies(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(deps) != 1 {
		t.Fatalf("Dependencies(1) = %+v, want exactly one direct edge", deps)
	}
	if deps[0].DependsOnID != 2 {
		t.Errorf("Dependencies(1)[0].DependsOnID = %d, want 2", deps[0].DependsOnID)
	}
}

func TestQueries_UnknownTask(t *testing.T) {
	store := newFakeStore(1)
	m := newTestManager(store)
	ctx := context.Background()

	if _, err := m.Dependencies(ctx, 42); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Dependencies(42) = %v, want ErrTaskNotFound", err)
	}
	if _, err := m.Dependents(ctx, 42); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("Dependents(42) = %v, want ErrTaskNotFound", err)
	}
}

// ─── Acyclicity under random-ish sequences ──────────────────────────────────

func TestAcyclicity_InvariantHolds(t *testing.T) {
	// Attempt every ordered pair over a small task set; whatever succeeds
	// must leave the graph acyclic.
	const n = 6
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	store := newFakeStore(ids...)
	m := newTestManager(store)
	ctx := context.Background()

	for _, a := range ids {
		for _, b := range ids {
			if a == b {
				continue
			}
			_, err := m.AddDependency(ctx, a, b)
			if err != nil && !errors.Is(err, ErrCycle) && !errors.Is(err, ErrDuplicateDependency) {
				t.Fatalf("add %d -> %d: unexpected error %v", a, b, err)
			}
		}
	}

	// Kahn-style check: an acyclic graph can be fully peeled.
	indegree := map[int64]int{}
	adj := map[int64][]int64{}
	for _, e := range store.edges {
		adj[e.TaskID] = append(adj[e.TaskID], e.DependsOnID)
		indegree[e.DependsOnID]++
	}
	var queue []int64
	for _, id := range ids {
		if indegree[id] == 0 {
			queue = append(queue, id)
		}
	}
	peeled := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		peeled++
		for _, next := range adj[cur] {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	if peeled != n {
		t.Fatalf("stored edge set contains a cycle: peeled %d of %d nodes", peeled, n)
	}
}
