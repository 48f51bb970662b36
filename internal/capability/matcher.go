// Package capability decides whether an agent can handle a task.
//
// Matching is a deliberately loose, table-driven heuristic: each agent
// identity carries a keyword set, and a case-insensitive substring hit
// against the task description is enough to claim. A wrong claim yields
// a low-quality result that a reviewer or a follow-up task can redirect,
// which is cheaper than a precise classifier. Negative keywords override
// a coincidental positive match.
package capability

import (
	"strings"

	"github.com/stigmergy-dev/stigmergy/pkg/models"
)

// Specialty describes what one agent identity is good at.
type Specialty struct {
	// Keywords are substrings that mark a task as claimable.
	Keywords []string `mapstructure:"keywords" yaml:"keywords"`
	// Excludes are substrings that veto a claim even when a keyword hits.
	Excludes []string `mapstructure:"excludes" yaml:"excludes,omitempty"`
	// Command is the CLI binary invoked for this agent.
	// Empty means the agent identity itself is the binary name.
	Command string `mapstructure:"command" yaml:"command,omitempty"`
}

// Registry maps agent identities to their specialties.
// Identities absent from the registry match nothing.
type Registry map[models.AgentID]Specialty

// DefaultRegistry returns the built-in specialty table.
// It is the single source of truth for default capability matching;
// user configuration overrides entries wholesale, per agent.
func DefaultRegistry() Registry {
	return Registry{
		"claude": {
			Keywords: []string{"analyze", "logic", "reasoning", "review", "explain", "analysis", "insight", "data"},
			Excludes: []string{"translate", "translation"},
		},
		"gemini": {
			Keywords: []string{"translate", "multilingual", "language", "creative", "document", "writing", "content"},
		},
		"qwen": {
			Keywords: []string{"chinese", "translate", "chat", "question", "answer"},
		},
		"codebuddy": {
			Keywords: []string{"code", "function", "program", "bug", "refactor", "debug", "test", "verify", "optimize", "implement"},
		},
		"kimi": {
			Keywords: []string{"long", "analysis", "research", "content", "report"},
		},
		"qodercli": {
			Keywords: []string{"generate", "code", "template", "create", "build"},
		},
		"iflow": {
			Keywords: []string{"workflow", "process", "automate", "schedule"},
		},
		"ollama": {
			Keywords: []string{"local", "offline", "private", "secure", "model"},
		},
	}
}

// Command returns the CLI binary for the given agent, defaulting to the
// agent identity itself for unregistered or command-less entries.
func (r Registry) Command(agent models.AgentID) string {
	if s, ok := r[agent]; ok && s.Command != "" {
		return s.Command
	}
	return string(agent)
}

// CanHandle reports whether the agent's specialty matches the task
// description. It is a pure function of its inputs: no state is read
// or written, so identical inputs always produce identical answers.
func (r Registry) CanHandle(task *models.Task, agent models.AgentID) bool {
	spec, ok := r[agent]
	if !ok {
		return false
	}
	desc := strings.ToLower(task.Description)
	for _, ex := range spec.Excludes {
		if strings.Contains(desc, strings.ToLower(ex)) {
			return false
		}
	}
	for _, kw := range spec.Keywords {
		if strings.Contains(desc, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
