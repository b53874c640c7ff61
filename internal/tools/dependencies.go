package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mkc909/agent-communication-mcp-server/internal/taskgraph"
)

// ─── AddDependencyTool ──────────────────────────────────────────────────────

// AddDependencyTool handles the add_task_dependency MCP tool.
type AddDependencyTool struct {
	graph *taskgraph.Manager
}

// NewAddDependencyTool creates an AddDependencyTool with the given manager.
func NewAddDependencyTool(g *taskgraph.Manager) *AddDependencyTool {
	return &AddDependencyTool{graph: g}
}

// Definition returns the MCP tool definition for add_task_dependency.
func (t *AddDependencyTool) Definition() mcp.Tool {
	return mcp.NewTool("add_task_dependency",
		mcp.WithDescription(
			"Declare that a task depends on another task. The edge is rejected "+
				"if it would make the dependency graph cyclic, so blocked-on "+
				"ordering always stays resolvable.",
		),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("The dependent task"),
		),
		mcp.WithNumber("depends_on_id",
			mcp.Required(),
			mcp.Description("The task it depends on (its prerequisite)"),
		),
	)
}

// Handle processes the add_task_dependency tool call.
func (t *AddDependencyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := intArg(req, "task_id", 0)
	dependsOnID := intArg(req, "depends_on_id", 0)
	if taskID == 0 || dependsOnID == 0 {
		return mcp.NewToolResultError("'task_id' and 'depends_on_id' are required"), nil
	}

	edge, err := t.graph.AddDependency(ctx, taskID, dependsOnID)
	if err != nil {
		return dependencyError(err, taskID, dependsOnID), nil
	}
	return jsonResult(edge), nil
}

// dependencyError maps graph failures to descriptive tool-result errors.
func dependencyError(err error, taskID, dependsOnID int64) *mcp.CallToolResult {
	switch {
	case errors.Is(err, taskgraph.ErrSelfDependency):
		return mcp.NewToolResultError(
			fmt.Sprintf("task %d cannot depend on itself", taskID))
	case errors.Is(err, taskgraph.ErrTaskNotFound):
		return mcp.NewToolResultError(err.Error())
	case errors.Is(err, taskgraph.ErrCycle):
		return mcp.NewToolResultError(fmt.Sprintf(
			"cannot add dependency: task %d already depends on task %d, "+
				"directly or transitively, so the edge would create a cycle",
			dependsOnID, taskID))
	case errors.Is(err, taskgraph.ErrDuplicateDependency):
		return mcp.NewToolResultError(fmt.Sprintf(
			"task %d already depends on task %d", taskID, dependsOnID))
	default:
		return mcp.NewToolResultError(fmt.Sprintf("failed to add dependency: %v", err))
	}
}

// ─── RemoveDependencyTool ───────────────────────────────────────────────────

// RemoveDependencyTool handles the remove_task_dependency MCP tool.
type RemoveDependencyTool struct {
	graph *taskgraph.Manager
}

// NewRemoveDependencyTool creates a RemoveDependencyTool with the given manager.
func NewRemoveDependencyTool(g *taskgraph.Manager) *RemoveDependencyTool {
	return &RemoveDependencyTool{graph: g}
}

// Definition returns the MCP tool definition for remove_task_dependency.
func (t *RemoveDependencyTool) Definition() mcp.Tool {
	return mcp.NewTool("remove_task_dependency",
		mcp.WithDescription("Remove a previously declared dependency between two tasks."),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("The dependent task"),
		),
		mcp.WithNumber("depends_on_id",
			mcp.Required(),
			mcp.Description("The prerequisite task"),
		),
	)
}

// Handle processes the remove_task_dependency tool call.
func (t *RemoveDependencyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := intArg(req, "task_id", 0)
	dependsOnID := intArg(req, "depends_on_id", 0)
	if taskID == 0 || dependsOnID == 0 {
		return mcp.NewToolResultError("'task_id' and 'depends_on_id' are required"), nil
	}

	if err := t.graph.RemoveDependency(ctx, taskID, dependsOnID); err != nil {
		if errors.Is(err, taskgraph.ErrDependencyNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf(
				"task %d does not depend on task %d", taskID, dependsOnID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to remove dependency: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf(
		"Dependency removed: task %d no longer depends on task %d", taskID, dependsOnID)), nil
}

// ─── ListDependenciesTool ───────────────────────────────────────────────────

// ListDependenciesTool handles the list_task_dependencies MCP tool.
type ListDependenciesTool struct {
	graph *taskgraph.Manager
}

// NewListDependenciesTool creates a ListDependenciesTool with the given manager.
func NewListDependenciesTool(g *taskgraph.Manager) *ListDependenciesTool {
	return &ListDependenciesTool{graph: g}
}

// Definition returns the MCP tool definition for list_task_dependencies.
func (t *ListDependenciesTool) Definition() mcp.Tool {
	return mcp.NewTool("list_task_dependencies",
		mcp.WithDescription(
			"List the tasks a given task directly depends on. "+
				"Transitive prerequisites are not expanded.",
		),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Task id"),
		),
	)
}

// Handle processes the list_task_dependencies tool call.
func (t *ListDependenciesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := intArg(req, "task_id", 0)
	if taskID == 0 {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}

	edges, err := t.graph.Dependencies(ctx, taskID)
	if err != nil {
		if errors.Is(err, taskgraph.ErrTaskNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("task %d not found", taskID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to list dependencies: %v", err)), nil
	}

	if len(edges) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("Task %d has no dependencies.", taskID)), nil
	}
	return jsonResult(edges), nil
}

// ─── ListDependentsTool ─────────────────────────────────────────────────────

// ListDependentsTool handles the list_task_dependents MCP tool.
type ListDependentsTool struct {
	graph *taskgraph.Manager
}

// NewListDependentsTool creates a ListDependentsTool with the given manager.
func NewListDependentsTool(g *taskgraph.Manager) *ListDependentsTool {
	return &ListDependentsTool{graph: g}
}

// Definition returns the MCP tool definition for list_task_dependents.
func (t *ListDependentsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_task_dependents",
		mcp.WithDescription(
			"List the tasks that directly depend on a given task, i.e. the "+
				"tasks blocked until it completes.",
		),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Task id"),
		),
	)
}

// Handle processes the list_task_dependents tool call.
func (t *ListDependentsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := intArg(req, "task_id", 0)
	if taskID == 0 {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}

	edges, err := t.graph.Dependents(ctx, taskID)
	if err != nil {
		if errors.Is(err, taskgraph.ErrTaskNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("task %d not found", taskID)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to list dependents: %v", err)), nil
	}

	if len(edges) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No tasks depend on task %d.", taskID)), nil
	}
	return jsonResult(edges), nil
}
