package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mkc909/agent-communication-mcp-server/internal/store"
)

// ─── SaveContextTool ────────────────────────────────────────────────────────

// SaveContextTool handles the save_context MCP tool.
type SaveContextTool struct {
	store *store.Store
}

// NewSaveContextTool creates a SaveContextTool with the given store.
func NewSaveContextTool(s *store.Store) *SaveContextTool {
	return &SaveContextTool{store: s}
}

// Definition returns the MCP tool definition for save_context.
func (t *SaveContextTool) Definition() mcp.Tool {
	return mcp.NewTool("save_context",
		mcp.WithDescription(
			"Save a shared context document under a stable key. Saving to an "+
				"existing key bumps its version; earlier versions stay retrievable.",
		),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Stable context key, e.g. 'deploy-runbook'"),
		),
		mcp.WithString("title",
			mcp.Description("Human-readable title"),
		),
		mcp.WithString("content",
			mcp.Required(),
			mcp.Description("Document content"),
		),
		mcp.WithString("created_by",
			mcp.Description("Agent id saving the document"),
		),
		mcp.WithString("tags",
			mcp.Description("Comma-separated tags, e.g. 'infra, runbook'"),
		),
	)
}

// Handle processes the save_context tool call.
func (t *SaveContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := req.GetString("key", "")
	content := req.GetString("content", "")
	if key == "" {
		return mcp.NewToolResultError("'key' is required"), nil
	}
	if content == "" {
		return mcp.NewToolResultError("'content' is required"), nil
	}

	doc, err := t.store.SaveContext(ctx, store.SaveContextParams{
		Key:       key,
		Title:     req.GetString("title", ""),
		Content:   content,
		CreatedBy: req.GetString("created_by", ""),
		Tags:      listArg(req, "tags"),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to save context: %v", err)), nil
	}
	return jsonResult(doc), nil
}

// ─── GetContextTool ─────────────────────────────────────────────────────────

// GetContextTool handles the get_context MCP tool.
type GetContextTool struct {
	store *store.Store
}

// NewGetContextTool creates a GetContextTool with the given store.
func NewGetContextTool(s *store.Store) *GetContextTool {
	return &GetContextTool{store: s}
}

// Definition returns the MCP tool definition for get_context.
func (t *GetContextTool) Definition() mcp.Tool {
	return mcp.NewTool("get_context",
		mcp.WithDescription(
			"Fetch a context document by key. Omit 'version' for the latest; "+
				"pass an earlier version number to read from the archive.",
		),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Context key"),
		),
		mcp.WithNumber("version",
			mcp.Description("Specific version to fetch (default: latest)"),
		),
	)
}

// Handle processes the get_context tool call.
func (t *GetContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := req.GetString("key", "")
	if key == "" {
		return mcp.NewToolResultError("'key' is required"), nil
	}
	version := int(intArg(req, "version", 0))

	doc, err := t.store.GetContext(ctx, key, version)
	if err != nil {
		if version > 0 {
			return mcp.NewToolResultError(fmt.Sprintf("context %q v%d not found", key, version)), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("context %q not found", key)), nil
	}
	return jsonResult(doc), nil
}

// ─── ListContextsTool ───────────────────────────────────────────────────────

// ListContextsTool handles the list_contexts MCP tool.
type ListContextsTool struct {
	store *store.Store
}

// NewListContextsTool creates a ListContextsTool with the given store.
func NewListContextsTool(s *store.Store) *ListContextsTool {
	return &ListContextsTool{store: s}
}

// Definition returns the MCP tool definition for list_contexts.
func (t *ListContextsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_contexts",
		mcp.WithDescription(
			"List context documents (metadata only), most recently updated "+
				"first. Optionally filter by tag.",
		),
		mcp.WithString("tag",
			mcp.Description("Only return documents carrying this tag"),
		),
	)
}

// Handle processes the list_contexts tool call.
func (t *ListContextsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := t.store.ListContexts(ctx, req.GetString("tag", ""))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list contexts: %v", err)), nil
	}

	if len(docs) == 0 {
		return mcp.NewToolResultText("No context documents."), nil
	}
	return jsonResult(docs), nil
}

// ─── TagContextTool ─────────────────────────────────────────────────────────

// TagContextTool handles the tag_context MCP tool.
type TagContextTool struct {
	store *store.Store
}

// NewTagContextTool creates a TagContextTool with the given store.
func NewTagContextTool(s *store.Store) *TagContextTool {
	return &TagContextTool{store: s}
}

// Definition returns the MCP tool definition for tag_context.
func (t *TagContextTool) Definition() mcp.Tool {
	return mcp.NewTool("tag_context",
		mcp.WithDescription("Add tags to an existing context document."),
		mcp.WithString("key",
			mcp.Required(),
			mcp.Description("Context key"),
		),
		mcp.WithString("tags",
			mcp.Required(),
			mcp.Description("Comma-separated tags to add"),
		),
	)
}

// Handle processes the tag_context tool call.
func (t *TagContextTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	key := req.GetString("key", "")
	if key == "" {
		return mcp.NewToolResultError("'key' is required"), nil
	}
	tags := listArg(req, "tags")
	if len(tags) == 0 {
		return mcp.NewToolResultError("'tags' is required"), nil
	}

	doc, err := t.store.TagContext(ctx, key, tags)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to tag context %q: %v", key, err)), nil
	}
	return jsonResult(doc), nil
}
