package application

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jbctechsolutions/modelrouter/internal/infrastructure/config"
)

const containerRoutingYAML = `
rules:
  - label: background
    type: model_substring
    params:
      substring: haiku
routes:
  - label: default
    target: claude-3-5-sonnet-20241022
  - label: background
    target: claude-3-5-haiku-20241022
`

func writeRoutingFile(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "routing.yaml")
	if err := os.WriteFile(path, []byte(containerRoutingYAML), 0o644); err != nil {
		t.Fatalf("write routing file: %v", err)
	}
	return path
}

func TestNewContainer_NilConfigUsesDefaults(t *testing.T) {
	c, err := NewContainer(nil, false)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()

	if c.Config() == nil {
		t.Error("Config() is nil")
	}
	if c.Engine() == nil {
		t.Error("Engine() is nil")
	}
	if c.Logger() == nil {
		t.Error("Logger() is nil")
	}
	if c.Tracer() == nil {
		t.Error("Tracer() is nil")
	}
	if c.DecisionLog() != nil {
		t.Error("DecisionLog() should be nil when not configured")
	}
}

func TestContainer_LoadRouting(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.RoutingFile = writeRoutingFile(t, t.TempDir())

	c, err := NewContainer(cfg, false)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()

	if err := c.LoadRouting(); err != nil {
		t.Fatalf("LoadRouting: %v", err)
	}

	if got := c.Engine().Classify(context.Background(), map[string]any{"model": "claude-3-5-haiku-20241022"}); got != "background" {
		t.Errorf("Classify() = %q", got)
	}
}

func TestContainer_DecisionLogWired(t *testing.T) {
	dir := t.TempDir()

	cfg := config.NewDefaultConfig()
	cfg.RoutingFile = writeRoutingFile(t, dir)
	cfg.DecisionLog = filepath.Join(dir, "decisions.db")

	c, err := NewContainer(cfg, false)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}
	defer c.Close()

	if c.DecisionLog() == nil {
		t.Fatal("DecisionLog() is nil")
	}
	if err := c.LoadRouting(); err != nil {
		t.Fatalf("LoadRouting: %v", err)
	}

	c.Engine().Classify(context.Background(), map[string]any{"model": "gpt-4o"})

	recent, err := c.DecisionLog().Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 1 {
		t.Fatalf("recorded %d decisions, want 1", len(recent))
	}
	if recent[0].Label != "default" {
		t.Errorf("recorded label = %q", recent[0].Label)
	}
}

func TestContainer_WatchLifecycle(t *testing.T) {
	cfg := config.NewDefaultConfig()
	cfg.RoutingFile = writeRoutingFile(t, t.TempDir())

	c, err := NewContainer(cfg, false)
	if err != nil {
		t.Fatalf("NewContainer: %v", err)
	}

	if err := c.LoadRouting(); err != nil {
		t.Fatalf("LoadRouting: %v", err)
	}
	if err := c.StartWatching(); err != nil {
		t.Fatalf("StartWatching: %v", err)
	}
	if err := c.StopWatching(); err != nil {
		t.Errorf("StopWatching: %v", err)
	}
	// Close after an explicit stop must not error.
	if err := c.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}
