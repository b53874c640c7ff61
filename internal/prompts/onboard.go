package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// OnboardPrompt handles the agent-onboard MCP prompt.
// It walks a new agent through registration and inbox catch-up.
type OnboardPrompt struct{}

// NewOnboardPrompt creates an OnboardPrompt.
func NewOnboardPrompt() *OnboardPrompt {
	return &OnboardPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *OnboardPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("agent-onboard",
		mcp.WithPromptDescription(
			"Join the coordination server as an agent: register, catch up "+
				"on messages, and find work.",
		),
		mcp.WithArgument("agent_id",
			mcp.ArgumentDescription("The agent id to register under"),
		),
		mcp.WithArgument("role",
			mcp.ArgumentDescription("The role to advertise, e.g. worker or reviewer"),
		),
	)
}

// Handle processes the agent-onboard prompt request.
func (p *OnboardPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	agentID := "my-agent"
	role := "worker"
	if args := req.Params.Arguments; args != nil {
		if id, ok := args["agent_id"]; ok && id != "" {
			agentID = id
		}
		if r, ok := args["role"]; ok && r != "" {
			role = r
		}
	}

	return &mcp.GetPromptResult{
		Description: "Agent Onboarding",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Join the coordination server as agent '" + agentID + "':\n\n" +
						"1. Call `register_agent` with agent_id='" + agentID + "', " +
						"role='" + role + "', and the capabilities you actually have\n" +
						"2. Call `get_messages` and summarize anything addressed to you, " +
						"then acknowledge it with `mark_messages_read`\n" +
						"3. Call `list_tasks` with assigned_to='" + agentID + "' and report " +
						"what you are responsible for\n" +
						"4. Before starting a task, call `list_task_dependencies` to confirm " +
						"its prerequisites are completed",
				),
			},
		},
	}, nil
}
