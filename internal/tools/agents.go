package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/mkc909/agent-communication-mcp-server/internal/store"
)

// ─── RegisterAgentTool ──────────────────────────────────────────────────────

// RegisterAgentTool handles the register_agent MCP tool.
type RegisterAgentTool struct {
	store *store.Store
}

// NewRegisterAgentTool creates a RegisterAgentTool with the given store.
func NewRegisterAgentTool(s *store.Store) *RegisterAgentTool {
	return &RegisterAgentTool{store: s}
}

// Definition returns the MCP tool definition for register_agent.
func (t *RegisterAgentTool) Definition() mcp.Tool {
	return mcp.NewTool("register_agent",
		mcp.WithDescription(
			"Register this agent with the coordination server. "+
				"Re-registering an existing agent_id updates its metadata and refreshes presence. "+
				"Call this once at startup before using any other tool.",
		),
		mcp.WithString("agent_id",
			mcp.Required(),
			mcp.Description("Stable identifier for this agent (e.g. 'backend-worker-1')"),
		),
		mcp.WithString("name",
			mcp.Description("Human-readable agent name (defaults to agent_id)"),
		),
		mcp.WithString("role",
			mcp.Description("Agent role, e.g. orchestrator, worker, reviewer"),
		),
		mcp.WithString("capabilities",
			mcp.Description("Comma-separated capabilities, e.g. 'go, sql, code-review'"),
		),
	)
}

// Handle processes the register_agent tool call.
func (t *RegisterAgentTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentID := req.GetString("agent_id", "")
	if agentID == "" {
		return mcp.NewToolResultError("'agent_id' is required"), nil
	}

	agent, err := t.store.RegisterAgent(ctx, store.RegisterAgentParams{
		ID:           agentID,
		Name:         req.GetString("name", ""),
		Role:         req.GetString("role", ""),
		Capabilities: listArg(req, "capabilities"),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to register agent: %v", err)), nil
	}

	return jsonResult(agent), nil
}

// ─── PingTool ───────────────────────────────────────────────────────────────

// PingTool handles the agent_ping MCP tool.
type PingTool struct {
	store *store.Store
}

// NewPingTool creates a PingTool with the given store.
func NewPingTool(s *store.Store) *PingTool {
	return &PingTool{store: s}
}

// Definition returns the MCP tool definition for agent_ping.
func (t *PingTool) Definition() mcp.Tool {
	return mcp.NewTool("agent_ping",
		mcp.WithDescription(
			"Refresh this agent's presence timestamp. Agents that have not pinged "+
				"recently are listed as offline.",
		),
		mcp.WithString("agent_id",
			mcp.Required(),
			mcp.Description("Agent identifier"),
		),
	)
}

// Handle processes the agent_ping tool call.
func (t *PingTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	agentID := req.GetString("agent_id", "")
	if agentID == "" {
		return mcp.NewToolResultError("'agent_id' is required"), nil
	}

	if err := t.store.Ping(ctx, agentID); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to ping: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Agent %s presence refreshed", agentID)), nil
}

// ─── ListAgentsTool ─────────────────────────────────────────────────────────

// ListAgentsTool handles the list_agents MCP tool.
type ListAgentsTool struct {
	store        *store.Store
	onlineWindow time.Duration
}

// NewListAgentsTool creates a ListAgentsTool with the given store and
// presence window.
func NewListAgentsTool(s *store.Store, onlineWindow time.Duration) *ListAgentsTool {
	return &ListAgentsTool{store: s, onlineWindow: onlineWindow}
}

// Definition returns the MCP tool definition for list_agents.
func (t *ListAgentsTool) Definition() mcp.Tool {
	return mcp.NewTool("list_agents",
		mcp.WithDescription(
			"List registered agents with their roles, capabilities and online status. "+
				"Optionally filter by a required capability.",
		),
		mcp.WithString("capability",
			mcp.Description("Only return agents advertising this capability"),
		),
	)
}

// Handle processes the list_agents tool call.
func (t *ListAgentsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	capability := req.GetString("capability", "")

	var (
		agents []store.Agent
		err    error
	)
	if capability != "" {
		agents, err = t.store.AgentsByCapability(ctx, capability, t.onlineWindow)
	} else {
		agents, err = t.store.ListAgents(ctx, t.onlineWindow)
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list agents: %v", err)), nil
	}

	if len(agents) == 0 {
		return mcp.NewToolResultText("No agents registered."), nil
	}
	return jsonResult(agents), nil
}
