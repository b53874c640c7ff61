// Package prompts implements the MCP prompts exposed by the server.
//
// Prompts are instructions for the AI host, not server-side logic: each
// handler returns a message telling the model which tools to call and how
// to present the results.
package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// StatusPrompt handles the coordination-status MCP prompt.
// It instructs the AI to read and present the current coordination state.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("coordination-status",
		mcp.WithPromptDescription(
			"Check the current state of the agent coordination server. "+
				"Shows registered agents, task progress, blocked work, "+
				"and unread messages.",
		),
	)
}

// Handle processes the coordination-status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return &mcp.GetPromptResult{
		Description: "Coordination Status",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"Please check the coordination server state:\n\n" +
						"1. Call `list_agents` and show who is online\n" +
						"2. Call `list_tasks` with status=in_progress and status=blocked\n" +
						"3. For each blocked task, call `list_task_dependencies` to show " +
						"what it is waiting on\n" +
						"4. Summarize the state in a short table and tell me which task " +
						"should be picked up next (a pending task whose dependencies " +
						"are all completed)",
				),
			},
		},
	}, nil
}
