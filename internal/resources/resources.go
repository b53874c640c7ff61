// Package resources implements the MCP resource handlers for the
// coordination server.
//
// Resources provide read-only data the host can consume for context.
// They use URI-based addressing (agentcomm://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mkc909/agent-communication-mcp-server/internal/store"
)

// Handler manages the coordination resource endpoints.
type Handler struct {
	store        *store.Store
	onlineWindow time.Duration
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(s *store.Store, onlineWindow time.Duration) *Handler {
	return &Handler{store: s, onlineWindow: onlineWindow}
}

// StatusResource returns the MCP resource definition for the server status.
func (h *Handler) StatusResource() mcp.Resource {
	return mcp.NewResource(
		"agentcomm://server/status",
		"Coordination Server Status",
		mcp.WithResourceDescription(
			"Counts of agents, tasks by status, dependency edges, unread messages and contexts",
		),
		mcp.WithMIMEType("application/json"),
	)
}

// HandleStatus returns the current coordination counters as JSON.
func (h *Handler) HandleStatus(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	stats, err := h.store.Stats(ctx, h.onlineWindow)
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling status: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource carrying an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
