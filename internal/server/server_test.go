package server

import (
	"testing"
	"time"

	"github.com/mkc909/agent-communication-mcp-server/internal/config"
)

func TestNewWithConfig(t *testing.T) {
	cfg := &config.Config{
		DataDir:      t.TempDir(),
		OnlineWindow: 5 * time.Minute,
	}

	s, cleanup, err := newWithConfig(cfg)
	if err != nil {
		t.Fatalf("newWithConfig: %v", err)
	}
	if s == nil {
		t.Fatal("server is nil")
	}
	if cleanup == nil {
		t.Fatal("cleanup is nil")
	}
	cleanup()
}

func TestNewWithConfig_BadDataDir(t *testing.T) {
	cfg := &config.Config{
		// A file path segment under /dev/null cannot be created.
		DataDir:      "/dev/null/agentcomm",
		OnlineWindow: time.Minute,
	}

	_, cleanup, err := newWithConfig(cfg)
	if err == nil {
		t.Fatal("expected error for unusable data dir")
	}
	if cleanup == nil {
		t.Fatal("cleanup must be non-nil even on failure")
	}
	cleanup()
}
