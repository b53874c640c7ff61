// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools/prompts/resources that depend on them.
// No business logic lives here — only wiring.
package server

import (
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/mkc909/agent-communication-mcp-server/internal/config"
	"github.com/mkc909/agent-communication-mcp-server/internal/prompts"
	"github.com/mkc909/agent-communication-mcp-server/internal/resources"
	"github.com/mkc909/agent-communication-mcp-server/internal/store"
	"github.com/mkc909/agent-communication-mcp-server/internal/taskgraph"
	"github.com/mkc909/agent-communication-mcp-server/internal/tools"
	"github.com/mkc909/agent-communication-mcp-server/internal/tracker"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools, prompts,
// and resources registered. This is the single place where all
// dependencies are resolved.
//
// The returned cleanup function flushes the logger and closes the store's
// database connection; it must be called on shutdown (typically via defer)
// and is always non-nil.
func New() (*server.MCPServer, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, noop, fmt.Errorf("loading config: %w", err)
	}
	return newWithConfig(cfg)
}

// newWithConfig builds the server from an already resolved configuration.
// Split out so tests can wire a temp-directory config.
func newWithConfig(cfg *config.Config) (*server.MCPServer, func(), error) {
	logger, err := newLogger()
	if err != nil {
		return nil, noop, fmt.Errorf("creating logger: %w", err)
	}

	st, err := store.Open(store.Config{DataDir: cfg.DataDir}, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, noop, fmt.Errorf("opening store: %w", err)
	}
	cleanup := func() {
		if err := st.Close(); err != nil {
			logger.Warn("store close", zap.Error(err))
		}
		_ = logger.Sync()
	}

	graph := taskgraph.NewManager(st, logger)

	// The tracker is optional — without a configured repo the issue tools
	// report it as disabled instead of shelling out to gh.
	var tc tracker.Client = tracker.Disabled{}
	if cfg.Tracker.Enabled && cfg.Tracker.Repo != "" {
		tc = tracker.NewGHClient(cfg.Tracker.Bin, cfg.Tracker.Repo)
		logger.Info("issue tracker enabled", zap.String("repo", cfg.Tracker.Repo))
	}

	s := server.NewMCPServer(
		"agentcomm",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register agent tools ---

	registerTool := tools.NewRegisterAgentTool(st)
	s.AddTool(registerTool.Definition(), registerTool.Handle)

	pingTool := tools.NewPingTool(st)
	s.AddTool(pingTool.Definition(), pingTool.Handle)

	listAgentsTool := tools.NewListAgentsTool(st, cfg.OnlineWindow)
	s.AddTool(listAgentsTool.Definition(), listAgentsTool.Handle)

	// --- Register message tools ---

	sendTool := tools.NewSendMessageTool(st)
	s.AddTool(sendTool.Definition(), sendTool.Handle)

	broadcastTool := tools.NewBroadcastTool(st)
	s.AddTool(broadcastTool.Definition(), broadcastTool.Handle)

	getMessagesTool := tools.NewGetMessagesTool(st)
	s.AddTool(getMessagesTool.Definition(), getMessagesTool.Handle)

	markReadTool := tools.NewMarkReadTool(st)
	s.AddTool(markReadTool.Definition(), markReadTool.Handle)

	// --- Register task tools ---

	createTaskTool := tools.NewCreateTaskTool(st)
	s.AddTool(createTaskTool.Definition(), createTaskTool.Handle)

	getTaskTool := tools.NewGetTaskTool(st)
	s.AddTool(getTaskTool.Definition(), getTaskTool.Handle)

	listTasksTool := tools.NewListTasksTool(st)
	s.AddTool(listTasksTool.Definition(), listTasksTool.Handle)

	updateStatusTool := tools.NewUpdateTaskStatusTool(st)
	s.AddTool(updateStatusTool.Definition(), updateStatusTool.Handle)

	assignTool := tools.NewAssignTaskTool(st)
	s.AddTool(assignTool.Definition(), assignTool.Handle)

	deleteTaskTool := tools.NewDeleteTaskTool(st)
	s.AddTool(deleteTaskTool.Definition(), deleteTaskTool.Handle)

	// --- Register dependency tools ---
	//
	// These go through the graph manager, not the store, so every edge
	// insert passes the cycle check under the manager's lock.

	addDepTool := tools.NewAddDependencyTool(graph)
	s.AddTool(addDepTool.Definition(), addDepTool.Handle)

	removeDepTool := tools.NewRemoveDependencyTool(graph)
	s.AddTool(removeDepTool.Definition(), removeDepTool.Handle)

	listDepsTool := tools.NewListDependenciesTool(graph)
	s.AddTool(listDepsTool.Definition(), listDepsTool.Handle)

	listDependentsTool := tools.NewListDependentsTool(graph)
	s.AddTool(listDependentsTool.Definition(), listDependentsTool.Handle)

	// --- Register context tools ---

	saveContextTool := tools.NewSaveContextTool(st)
	s.AddTool(saveContextTool.Definition(), saveContextTool.Handle)

	getContextTool := tools.NewGetContextTool(st)
	s.AddTool(getContextTool.Definition(), getContextTool.Handle)

	listContextsTool := tools.NewListContextsTool(st)
	s.AddTool(listContextsTool.Definition(), listContextsTool.Handle)

	tagContextTool := tools.NewTagContextTool(st)
	s.AddTool(tagContextTool.Definition(), tagContextTool.Handle)

	// --- Register issue tools ---

	linkIssueTool := tools.NewLinkIssueTool(st, tc)
	s.AddTool(linkIssueTool.Definition(), linkIssueTool.Handle)

	syncIssueTool := tools.NewSyncIssueTool(st, tc)
	s.AddTool(syncIssueTool.Definition(), syncIssueTool.Handle)

	// --- Register prompts ---

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	onboardPrompt := prompts.NewOnboardPrompt()
	s.AddPrompt(onboardPrompt.Definition(), onboardPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(st, cfg.OnlineWindow)
	s.AddResource(resourceHandler.StatusResource(), resourceHandler.HandleStatus)

	logger.Info("server wired",
		zap.String("version", Version),
		zap.String("data_dir", cfg.DataDir),
	)
	return s, cleanup, nil
}

// noop is the cleanup function returned when wiring fails before the
// store is opened.
func noop() {}

// newLogger builds the server logger. Everything goes to stderr —
// stdout belongs to the MCP stdio transport.
func newLogger() (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

// serverInstructions returns the system instructions that tell the AI
// how to use the coordination server effectively.
func serverInstructions() string {
	return `You have access to agentcomm, a coordination server for multiple AI agents
working on the same project. It provides messaging, shared task tracking with
dependencies, and versioned context documents.

## Getting started

Call register_agent ONCE at the start of a session, with a stable agent_id
you reuse across sessions. Re-registering is safe — it refreshes your
presence and updates your metadata. Call agent_ping periodically during
long sessions so other agents see you as online.

## Messaging

- send_message: direct message to one agent
- broadcast_message: message every other registered agent
- get_messages: read your inbox (unread only by default)
- mark_messages_read: acknowledge what you have processed

Check your inbox at the start of a session and after finishing each task.
Always mark messages read once handled, or they will keep showing up.

## Tasks and dependencies

Tasks are shared units of work. Statuses: pending, in_progress, blocked,
completed, cancelled.

- create_task / get_task / list_tasks / update_task_status / assign_task
- add_task_dependency(task_id, depends_on_id): task_id waits on depends_on_id
- remove_task_dependency, list_task_dependencies, list_task_dependents

The dependency graph is kept acyclic: the server rejects any edge that
would create a cycle, directly or transitively. If an add is rejected,
the ordering you asked for already holds in the other direction — do not
retry, reconsider the task breakdown instead.

Before starting a task, call list_task_dependencies and confirm every
prerequisite is completed. When you finish a task, call
update_task_status(completed) and check list_task_dependents to see what
work you just unblocked.

## Shared context

Use save_context to publish knowledge other agents need: architecture
decisions, runbooks, API conventions. Documents are versioned — saving to
an existing key bumps the version and archives the previous content, so
you can always cite "runbook v3". Use tags plus list_contexts to organize
documents; get_context fetches full content.

## Issue tracker

When configured, link_task_issue mirrors a task to an external issue and
sync_task_issue pushes status updates to it. Completed or cancelled tasks
close their linked issue. If the tracker is not configured these tools say
so — that is not an error in your workflow.

## Conventions

- Use stable, descriptive agent ids ("backend-worker", not "agent1")
- One task per reviewable unit of work; use dependencies instead of
  writing ordering rules into task descriptions
- Keep messages short and actionable; put durable knowledge into
  contexts, not messages`
}
