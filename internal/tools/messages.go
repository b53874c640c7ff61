package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mkc909/agent-communication-mcp-server/internal/store"
)

// ─── SendMessageTool ────────────────────────────────────────────────────────

// SendMessageTool handles the send_message MCP tool.
type SendMessageTool struct {
	store *store.Store
}

// NewSendMessageTool creates a SendMessageTool with the given store.
func NewSendMessageTool(s *store.Store) *SendMessageTool {
	return &SendMessageTool{store: s}
}

// Definition returns the MCP tool definition for send_message.
func (t *SendMessageTool) Definition() mcp.Tool {
	return mcp.NewTool("send_message",
		mcp.WithDescription(
			"Send a message to another registered agent. The recipient reads it "+
				"with get_messages and acknowledges with mark_messages_read.",
		),
		mcp.WithString("from_agent",
			mcp.Required(),
			mcp.Description("Sender agent id"),
		),
		mcp.WithString("to_agent",
			mcp.Required(),
			mcp.Description("Recipient agent id"),
		),
		mcp.WithString("subject",
			mcp.Description("Short message subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Message body"),
		),
		mcp.WithString("thread_id",
			mcp.Description("Existing thread id to reply in; omit to start a new thread"),
		),
	)
}

// Handle processes the send_message tool call.
func (t *SendMessageTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from := req.GetString("from_agent", "")
	to := req.GetString("to_agent", "")
	body := req.GetString("body", "")
	if from == "" || to == "" {
		return mcp.NewToolResultError("'from_agent' and 'to_agent' are required"), nil
	}
	if body == "" {
		return mcp.NewToolResultError("'body' is required"), nil
	}

	msg, err := t.store.SendMessage(ctx, store.SendMessageParams{
		FromAgent: from,
		ToAgent:   to,
		Subject:   req.GetString("subject", ""),
		Body:      body,
		ThreadID:  req.GetString("thread_id", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to send message: %v", err)), nil
	}

	return jsonResult(msg), nil
}

// ─── BroadcastTool ──────────────────────────────────────────────────────────

// BroadcastTool handles the broadcast_message MCP tool.
type BroadcastTool struct {
	store *store.Store
}

// NewBroadcastTool creates a BroadcastTool with the given store.
func NewBroadcastTool(s *store.Store) *BroadcastTool {
	return &BroadcastTool{store: s}
}

// Definition returns the MCP tool definition for broadcast_message.
func (t *BroadcastTool) Definition() mcp.Tool {
	return mcp.NewTool("broadcast_message",
		mcp.WithDescription(
			"Send a message to every registered agent except the sender. "+
				"Each recipient gets its own copy in its inbox.",
		),
		mcp.WithString("from_agent",
			mcp.Required(),
			mcp.Description("Sender agent id"),
		),
		mcp.WithString("subject",
			mcp.Description("Short message subject"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Message body"),
		),
	)
}

// Handle processes the broadcast_message tool call.
func (t *BroadcastTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from := req.GetString("from_agent", "")
	body := req.GetString("body", "")
	if from == "" {
		return mcp.NewToolResultError("'from_agent' is required"), nil
	}
	if body == "" {
		return mcp.NewToolResultError("'body' is required"), nil
	}

	n, threadID, err := t.store.Broadcast(ctx, from, req.GetString("subject", ""), body)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to broadcast: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf(
		"Broadcast delivered to %d agent(s) in thread %s", n, threadID)), nil
}

// ─── GetMessagesTool ────────────────────────────────────────────────────────

// GetMessagesTool handles the get_messages MCP tool.
type GetMessagesTool struct {
	store *store.Store
}

// NewGetMessagesTool creates a GetMessagesTool with the given store.
func NewGetMessagesTool(s *store.Store) *GetMessagesTool {
	return &GetMessagesTool{store: s}
}

// Definition returns the MCP tool definition for get_messages.
func (t *GetMessagesTool) Definition() mcp.Tool {
	return mcp.NewTool("get_messages",
		mcp.WithDescription(
			"Fetch messages addressed to an agent, newest first. "+
				"Defaults to unread only; pass include_read=true for the full inbox.",
		),
		mcp.WithString("agent_id",
			mcp.Required(),
			mcp.Description("Recipient agent id"),
		),
		mcp.WithBoolean("include_read",
			mcp.Description("Include already-read messages (default: false)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum messages to return (default: 50)"),
		),
	)
}

// Handle processes the get_messages tool call.
func (t *GetMessagesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentID := req.GetString("agent_id", "")
	if agentID == "" {
		return mcp.NewToolResultError("'agent_id' is required"), nil
	}

	includeRead := boolArg(req, "include_read", false)
	limit := int(intArg(req, "limit", 0))

	msgs, err := t.store.MessagesFor(ctx, agentID, !includeRead, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to fetch messages: %v", err)), nil
	}

	if len(msgs) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No messages for %s.", agentID)), nil
	}
	return jsonResult(msgs), nil
}

// ─── MarkReadTool ───────────────────────────────────────────────────────────

// MarkReadTool handles the mark_messages_read MCP tool.
type MarkReadTool struct {
	store *store.Store
}

// NewMarkReadTool creates a MarkReadTool with the given store.
func NewMarkReadTool(s *store.Store) *MarkReadTool {
	return &MarkReadTool{store: s}
}

// Definition returns the MCP tool definition for mark_messages_read.
func (t *MarkReadTool) Definition() mcp.Tool {
	return mcp.NewTool("mark_messages_read",
		mcp.WithDescription(
			"Mark messages as read. Only messages addressed to the given agent "+
				"are affected.",
		),
		mcp.WithString("agent_id",
			mcp.Required(),
			mcp.Description("Recipient agent id"),
		),
		mcp.WithString("message_ids",
			mcp.Required(),
			mcp.Description("Comma-separated message ids, e.g. '3, 4, 7'"),
		),
	)
}

// Handle processes the mark_messages_read tool call.
func (t *MarkReadTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentID := req.GetString("agent_id", "")
	if agentID == "" {
		return mcp.NewToolResultError("'agent_id' is required"), nil
	}

	ids, err := idListArg(req, "message_ids")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(ids) == 0 {
		return mcp.NewToolResultError("'message_ids' is required"), nil
	}

	n, err := t.store.MarkRead(ctx, agentID, ids)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to mark read: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Marked %d message(s) read", n)), nil
}
