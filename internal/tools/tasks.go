package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mkc909/agent-communication-mcp-server/internal/store"
)

// ─── CreateTaskTool ─────────────────────────────────────────────────────────

// CreateTaskTool handles the create_task MCP tool.
type CreateTaskTool struct {
	store *store.Store
}

// NewCreateTaskTool creates a CreateTaskTool with the given store.
func NewCreateTaskTool(s *store.Store) *CreateTaskTool {
	return &CreateTaskTool{store: s}
}

// Definition returns the MCP tool definition for create_task.
func (t *CreateTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("create_task",
		mcp.WithDescription(
			"Create a new task. Tasks start in 'pending' status and can be "+
				"chained with add_task_dependency.",
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Short task title"),
		),
		mcp.WithString("description",
			mcp.Description("Full task description"),
		),
		mcp.WithString("assigned_to",
			mcp.Description("Agent id to assign the task to"),
		),
		mcp.WithString("created_by",
			mcp.Description("Agent id creating the task"),
		),
	)
}

// Handle processes the create_task tool call.
func (t *CreateTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title := req.GetString("title", "")
	if title == "" {
		return mcp.NewToolResultError("'title' is required"), nil
	}

	task, err := t.store.CreateTask(ctx, store.CreateTaskParams{
		Title:       title,
		Description: req.GetString("description", ""),
		AssignedTo:  req.GetString("assigned_to", ""),
		CreatedBy:   req.GetString("created_by", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to create task: %v", err)), nil
	}

	return jsonResult(task), nil
}

// ─── GetTaskTool ────────────────────────────────────────────────────────────

// GetTaskTool handles the get_task MCP tool.
type GetTaskTool struct {
	store *store.Store
}

// NewGetTaskTool creates a GetTaskTool with the given store.
func NewGetTaskTool(s *store.Store) *GetTaskTool {
	return &GetTaskTool{store: s}
}

// Definition returns the MCP tool definition for get_task.
func (t *GetTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("get_task",
		mcp.WithDescription("Fetch a single task by id."),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Task id"),
		),
	)
}

// Handle processes the get_task tool call.
func (t *GetTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := intArg(req, "task_id", 0)
	if id == 0 {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}

	task, err := t.store.GetTask(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("task %d not found", id)), nil
	}
	return jsonResult(task), nil
}

// ─── ListTasksTool ──────────────────────────────────────────────────────────

// ListTasksTool handles the list_tasks MCP tool.
type ListTasksTool struct {
	store *store.Store
}

// NewListTasksTool creates a ListTasksTool with the given store.
func NewListTasksTool(s *store.Store) *ListTasksTool {
	return &ListTasksTool{store: s}
}

// Definition returns the MCP tool definition for list_tasks.
func (t *ListTasksTool) Definition() mcp.Tool {
	return mcp.NewTool("list_tasks",
		mcp.WithDescription("List tasks, optionally filtered by status and/or assignee."),
		mcp.WithString("status",
			mcp.Description("Filter by status: pending, in_progress, blocked, completed, cancelled"),
			mcp.Enum(store.StatusPending, store.StatusInProgress, store.StatusBlocked,
				store.StatusCompleted, store.StatusCancelled),
		),
		mcp.WithString("assigned_to",
			mcp.Description("Filter by assigned agent id"),
		),
	)
}

// Handle processes the list_tasks tool call.
func (t *ListTasksTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	status := req.GetString("status", "")
	if status != "" && !store.ValidStatus(status) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid status %q", status)), nil
	}

	tasks, err := t.store.ListTasks(ctx, status, req.GetString("assigned_to", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list tasks: %v", err)), nil
	}

	if len(tasks) == 0 {
		return mcp.NewToolResultText("No tasks match."), nil
	}
	return jsonResult(tasks), nil
}

// ─── UpdateTaskStatusTool ───────────────────────────────────────────────────

// UpdateTaskStatusTool handles the update_task_status MCP tool.
type UpdateTaskStatusTool struct {
	store *store.Store
}

// NewUpdateTaskStatusTool creates an UpdateTaskStatusTool with the given store.
func NewUpdateTaskStatusTool(s *store.Store) *UpdateTaskStatusTool {
	return &UpdateTaskStatusTool{store: s}
}

// Definition returns the MCP tool definition for update_task_status.
func (t *UpdateTaskStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("update_task_status",
		mcp.WithDescription("Set a task's status."),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Task id"),
		),
		mcp.WithString("status",
			mcp.Required(),
			mcp.Description("New status"),
			mcp.Enum(store.StatusPending, store.StatusInProgress, store.StatusBlocked,
				store.StatusCompleted, store.StatusCancelled),
		),
	)
}

// Handle processes the update_task_status tool call.
func (t *UpdateTaskStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := intArg(req, "task_id", 0)
	if id == 0 {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}
	status := req.GetString("status", "")
	if status == "" {
		return mcp.NewToolResultError("'status' is required"), nil
	}

	task, err := t.store.UpdateTaskStatus(ctx, id, status)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update task: %v", err)), nil
	}
	return jsonResult(task), nil
}

// ─── AssignTaskTool ─────────────────────────────────────────────────────────

// AssignTaskTool handles the assign_task MCP tool.
type AssignTaskTool struct {
	store *store.Store
}

// NewAssignTaskTool creates an AssignTaskTool with the given store.
func NewAssignTaskTool(s *store.Store) *AssignTaskTool {
	return &AssignTaskTool{store: s}
}

// Definition returns the MCP tool definition for assign_task.
func (t *AssignTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("assign_task",
		mcp.WithDescription(
			"Assign a task to a registered agent, or clear the assignment by "+
				"passing an empty agent_id.",
		),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Task id"),
		),
		mcp.WithString("agent_id",
			mcp.Description("Agent to assign; empty clears the assignment"),
		),
	)
}

// Handle processes the assign_task tool call.
func (t *AssignTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := intArg(req, "task_id", 0)
	if id == 0 {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}

	task, err := t.store.AssignTask(ctx, id, strings.TrimSpace(req.GetString("agent_id", "")))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to assign task: %v", err)), nil
	}
	return jsonResult(task), nil
}

// ─── DeleteTaskTool ─────────────────────────────────────────────────────────

// DeleteTaskTool handles the delete_task MCP tool.
type DeleteTaskTool struct {
	store *store.Store
}

// NewDeleteTaskTool creates a DeleteTaskTool with the given store.
func NewDeleteTaskTool(s *store.Store) *DeleteTaskTool {
	return &DeleteTaskTool{store: s}
}

// Definition returns the MCP tool definition for delete_task.
func (t *DeleteTaskTool) Definition() mcp.Tool {
	return mcp.NewTool("delete_task",
		mcp.WithDescription(
			"Delete a task. Dependency edges touching the task are removed with it.",
		),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Task id"),
		),
	)
}

// Handle processes the delete_task tool call.
func (t *DeleteTaskTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := intArg(req, "task_id", 0)
	if id == 0 {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}

	if err := t.store.DeleteTask(ctx, id); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete task: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Task %d deleted", id)), nil
}
