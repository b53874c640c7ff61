package taskgraph

import "errors"

// Sentinel errors returned by the Manager. Callers classify failures
// with errors.Is; the wrapped message carries the offending id(s).
var (
	// ErrSelfDependency is returned when a task is asked to depend on itself.
	ErrSelfDependency = errors.New("task cannot depend on itself")

	// ErrTaskNotFound is returned when a referenced task does not exist.
	ErrTaskNotFound = errors.New("task not found")

	// ErrDependencyNotFound is returned when removing an edge that does not exist.
	ErrDependencyNotFound = errors.New("dependency not found")

	// ErrCycle is returned when a proposed edge would close a dependency cycle.
	ErrCycle = errors.New("dependency would create a cycle")

	// ErrDuplicateDependency is returned when the exact edge already exists.
	// Duplicate insertions are rejected, never silently stored twice.
	ErrDuplicateDependency = errors.New("dependency already exists")
)
