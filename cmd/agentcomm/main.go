// agentcomm: Agent Communication MCP Server
//
// A coordination server for multiple AI agents working on the same
// project: messaging, shared tasks with an acyclic dependency graph,
// and versioned context documents, persisted in SQLite.
//
// Usage:
//
//	agentcomm serve      # Start MCP server (stdio transport)
//	agentcomm version    # Print the version
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	agentserver "github.com/mkc909/agent-communication-mcp-server/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("agentcomm v%s\n", agentserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	s, cleanup, err := agentserver.New()
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// Close the store on interrupt even though the stdio server normally
	// exits when the host closes stdin.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cleanup()
		os.Exit(0)
	}()

	return server.ServeStdio(s)
}

func printUsage() {
	fmt.Fprint(os.Stderr, `agentcomm - Agent Communication MCP Server

Usage:
  agentcomm serve      Start the MCP server (stdio transport)
  agentcomm version    Print the version
  agentcomm help       Show this help

Add to your MCP host configuration:

  {
    "mcpServers": {
      "agentcomm": {
        "command": "agentcomm",
        "args": ["serve"]
      }
    }
  }

Configuration is read from ~/.agentcomm/config.toml (optional):

  [server]
  data_dir = "/path/to/data"        # default: ~/.agentcomm
  online_window_seconds = 300       # agent presence threshold

  [tracker]
  enabled = true                    # mirror tasks to GitHub issues
  repo = "owner/name"               # passed to gh --repo
  bin = "gh"                        # gh binary
`)
}
