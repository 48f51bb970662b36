package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFromPath_Defaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Project.Name != "Collaboration Project" {
		t.Errorf("project name = %q, want default", cfg.Project.Name)
	}
	if cfg.Executor.Timeout != 5*time.Minute {
		t.Errorf("executor timeout = %v, want 5m", cfg.Executor.Timeout)
	}
	if cfg.Planner.MaxFollowUps != 2 {
		t.Errorf("max followups = %d, want 2", cfg.Planner.MaxFollowUps)
	}
	if cfg.Archive.Enabled {
		t.Error("archive should default off")
	}
}

func TestLoadFromPath_Overrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
project:
  name: Demo Board
executor:
  timeout: 30s
planner:
  max_followups: 1
agents:
  claude:
    keywords: [analyze, summarize]
    excludes: [translate]
  mybot:
    keywords: [deploy]
    command: mybot-cli
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}

	if cfg.Project.Name != "Demo Board" {
		t.Errorf("project name = %q, want Demo Board", cfg.Project.Name)
	}
	if cfg.Executor.Timeout != 30*time.Second {
		t.Errorf("executor timeout = %v, want 30s", cfg.Executor.Timeout)
	}
	if cfg.Planner.MaxFollowUps != 1 {
		t.Errorf("max followups = %d, want 1", cfg.Planner.MaxFollowUps)
	}

	reg := cfg.Registry()
	// Configured agents override the built-in entry wholesale.
	if got := len(reg["claude"].Keywords); got != 2 {
		t.Errorf("claude keywords = %d, want 2", got)
	}
	// New agents extend the registry.
	if reg.Command("mybot") != "mybot-cli" {
		t.Errorf("mybot command = %q, want mybot-cli", reg.Command("mybot"))
	}
	// Untouched defaults survive.
	if _, ok := reg["gemini"]; !ok {
		t.Error("default gemini entry missing after merge")
	}
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	if _, err := LoadFromPath(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestRegistry_NoConfiguredAgents(t *testing.T) {
	cfg := &Config{}
	reg := cfg.Registry()
	if _, ok := reg["claude"]; !ok {
		t.Error("registry without overrides must include defaults")
	}
}
