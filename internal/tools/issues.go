package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mkc909/agent-communication-mcp-server/internal/store"
	"github.com/mkc909/agent-communication-mcp-server/internal/tracker"
)

// ─── LinkIssueTool ──────────────────────────────────────────────────────────

// LinkIssueTool handles the link_task_issue MCP tool.
type LinkIssueTool struct {
	store   *store.Store
	tracker tracker.Client
}

// NewLinkIssueTool creates a LinkIssueTool with the given store and tracker.
func NewLinkIssueTool(s *store.Store, c tracker.Client) *LinkIssueTool {
	return &LinkIssueTool{store: s, tracker: c}
}

// Definition returns the MCP tool definition for link_task_issue.
func (t *LinkIssueTool) Definition() mcp.Tool {
	return mcp.NewTool("link_task_issue",
		mcp.WithDescription(
			"Link a task to a tracker issue. Pass issue_number to link an "+
				"existing issue, or omit it to create a new issue from the "+
				"task's title and description.",
		),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Task id"),
		),
		mcp.WithNumber("issue_number",
			mcp.Description("Existing issue number; omit to create one"),
		),
	)
}

// Handle processes the link_task_issue tool call.
func (t *LinkIssueTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := intArg(req, "task_id", 0)
	if taskID == 0 {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}

	task, err := t.store.GetTask(ctx, taskID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("task %d not found", taskID)), nil
	}

	issueNumber := intArg(req, "issue_number", 0)
	if issueNumber == 0 {
		issue, err := t.tracker.CreateIssue(task.Title, task.Description)
		if err != nil {
			if errors.Is(err, tracker.ErrDisabled) {
				return mcp.NewToolResultError(
					"issue tracker is not configured; pass issue_number to link an existing issue"), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("failed to create issue: %v", err)), nil
		}
		issueNumber = issue.Number
	}

	updated, err := t.store.LinkIssue(ctx, taskID, issueNumber)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to link issue: %v", err)), nil
	}
	return jsonResult(updated), nil
}

// ─── SyncIssueTool ──────────────────────────────────────────────────────────

// SyncIssueTool handles the sync_task_issue MCP tool.
type SyncIssueTool struct {
	store   *store.Store
	tracker tracker.Client
}

// NewSyncIssueTool creates a SyncIssueTool with the given store and tracker.
func NewSyncIssueTool(s *store.Store, c tracker.Client) *SyncIssueTool {
	return &SyncIssueTool{store: s, tracker: c}
}

// Definition returns the MCP tool definition for sync_task_issue.
func (t *SyncIssueTool) Definition() mcp.Tool {
	return mcp.NewTool("sync_task_issue",
		mcp.WithDescription(
			"Push a task's current status to its linked tracker issue as a "+
				"comment. Completed and cancelled tasks close the issue.",
		),
		mcp.WithNumber("task_id",
			mcp.Required(),
			mcp.Description("Task id"),
		),
		mcp.WithString("note",
			mcp.Description("Extra note to include in the issue comment"),
		),
	)
}

// Handle processes the sync_task_issue tool call.
func (t *SyncIssueTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	taskID := intArg(req, "task_id", 0)
	if taskID == 0 {
		return mcp.NewToolResultError("'task_id' is required"), nil
	}

	task, err := t.store.GetTask(ctx, taskID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("task %d not found", taskID)), nil
	}
	if task.IssueNumber == 0 {
		return mcp.NewToolResultError(fmt.Sprintf(
			"task %d has no linked issue; call link_task_issue first", taskID)), nil
	}

	body := fmt.Sprintf("Task %d status: %s", task.ID, task.Status)
	if note := req.GetString("note", ""); note != "" {
		body += "\n\n" + note
	}

	switch task.Status {
	case store.StatusCompleted, store.StatusCancelled:
		err = t.tracker.CloseIssue(task.IssueNumber, body)
	default:
		err = t.tracker.Comment(task.IssueNumber, body)
	}
	if err != nil {
		if errors.Is(err, tracker.ErrDisabled) {
			return mcp.NewToolResultError("issue tracker is not configured"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("failed to sync issue #%d: %v", task.IssueNumber, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Synced task %d to issue #%d (%s)", task.ID, task.IssueNumber, task.Status)), nil
}
