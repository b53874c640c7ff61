package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/mkc909/agent-communication-mcp-server/internal/store"
)

func TestRegisterAgent_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.RegisterAgent(ctx, store.RegisterAgentParams{
		ID:           "worker-1",
		Name:         "Worker One",
		Role:         "builder",
		Capabilities: []string{"go", "sql"},
	})
	if err != nil {
		t.Fatalf("RegisterAgent() error: %v", err)
	}

	if a.ID != "worker-1" || a.Name != "Worker One" || a.Role != "builder" {
		t.Errorf("agent = %+v", a)
	}
	if len(a.Capabilities) != 2 || a.Capabilities[0] != "go" {
		t.Errorf("capabilities = %v", a.Capabilities)
	}
	if a.RegisteredAt == "" || a.LastPing == "" {
		t.Error("timestamps should be set")
	}
}

func TestRegisterAgent_RequiresID(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.RegisterAgent(context.Background(), store.RegisterAgentParams{}); err == nil {
		t.Fatal("expected error for empty agent id")
	}
}

func TestRegisterAgent_ReRegisterUpdates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	registerAgent(t, s, "worker-1", "go")
	a, err := s.RegisterAgent(ctx, store.RegisterAgentParams{
		ID:           "worker-1",
		Name:         "Renamed",
		Capabilities: []string{"go", "rust"},
	})
	if err != nil {
		t.Fatalf("re-register: %v", err)
	}

	if a.Name != "Renamed" {
		t.Errorf("Name = %q, want Renamed", a.Name)
	}
	if len(a.Capabilities) != 2 {
		t.Errorf("capabilities = %v", a.Capabilities)
	}

	agents, err := s.ListAgents(ctx, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if len(agents) != 1 {
		t.Errorf("re-registration created %d agents, want 1", len(agents))
	}
}

func TestPing_UnknownAgent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(context.Background(), "ghost"); err == nil {
		t.Fatal("expected error pinging unregistered agent")
	}
}

func TestListAgents_OnlineFlag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	registerAgent(t, s, "fresh")

	agents, err := s.ListAgents(ctx, 5*time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if len(agents) != 1 || !agents[0].Online {
		t.Errorf("freshly registered agent should be online: %+v", agents)
	}

	// A zero window means nobody counts as online.
	agents, err = s.ListAgents(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if agents[0].Online {
		t.Error("agent should be offline with a zero window")
	}
}

func TestAgentsByCapability(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	registerAgent(t, s, "builder", "go", "sql")
	registerAgent(t, s, "reviewer", "review")

	matched, err := s.AgentsByCapability(ctx, "sql", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if len(matched) != 1 || matched[0].ID != "builder" {
		t.Errorf("AgentsByCapability(sql) = %+v, want [builder]", matched)
	}

	matched, err = s.AgentsByCapability(ctx, "python", time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if len(matched) != 0 {
		t.Errorf("AgentsByCapability(python) = %+v, want empty", matched)
	}
}
