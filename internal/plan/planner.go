// Package plan generates follow-up tasks from completed task results.
//
// Planning is an ordered, capped rule table: each rule pairs a predicate
// over (task, result) with a task factory. Rules are independent, fire in
// fixed order, and the planner never emits more than its configured cap
// per completion, so one result can never flood the board.
package plan

import (
	"strings"

	"github.com/stigmergy-dev/stigmergy/pkg/models"
)

// DefaultMaxFollowUps caps spawned tasks per completion.
const DefaultMaxFollowUps = 2

// snippetLen bounds how much result text is quoted into a new task.
const snippetLen = 200

// NewTaskSpec describes a follow-up task to be created on the board.
type NewTaskSpec struct {
	Type        string
	Description string
	AssignedTo  models.AgentID
	Priority    models.Priority
}

// Rule pairs a predicate with a task factory.
type Rule struct {
	// Name identifies the rule in logs.
	Name string
	// Matches reports whether the rule applies to the completed task.
	Matches func(task *models.Task, result string) bool
	// Build produces the follow-up task spec.
	Build func(task *models.Task, result string) NewTaskSpec
}

// Planner evaluates the rule table against completed tasks.
type Planner struct {
	rules []Rule
	max   int
}

// NewPlanner returns a Planner with the default rules and the given cap.
// A non-positive cap falls back to DefaultMaxFollowUps.
func NewPlanner(maxFollowUps int) *Planner {
	if maxFollowUps <= 0 {
		maxFollowUps = DefaultMaxFollowUps
	}
	return &Planner{rules: defaultRules(), max: maxFollowUps}
}

// PlanFollowUps evaluates all rules against a completed task in fixed
// order and returns the specs of matching rules, truncated at the cap.
func (p *Planner) PlanFollowUps(task *models.Task, result string) []NewTaskSpec {
	var specs []NewTaskSpec
	for _, rule := range p.rules {
		if len(specs) >= p.max {
			break
		}
		if rule.Matches(task, result) {
			specs = append(specs, rule.Build(task, result))
		}
	}
	return specs
}

// defaultRules returns the built-in rule table. Order matters: earlier
// rules win slots when the cap truncates.
func defaultRules() []Rule {
	return []Rule{
		{
			Name: "code-needs-tests",
			Matches: func(task *models.Task, result string) bool {
				return codeRelated(task) && containsFencedCode(result)
			},
			Build: func(task *models.Task, _ string) NewTaskSpec {
				return NewTaskSpec{
					Type:        "testing",
					Description: "Write unit tests verifying the code produced for: " + task.Description,
					Priority:    models.PriorityMedium,
				}
			},
		},
		{
			Name: "result-wants-review",
			Matches: func(_ *models.Task, result string) bool {
				lower := strings.ToLower(result)
				return strings.Contains(lower, "review needed") || strings.Contains(lower, "review_needed")
			},
			Build: func(task *models.Task, result string) NewTaskSpec {
				return NewTaskSpec{
					Type:        "review",
					Description: "Review the result of task " + task.ID + ": " + snippet(result),
					Priority:    models.PriorityHigh,
				}
			},
		},
		{
			Name: "analysis-needs-visualization",
			Matches: func(task *models.Task, _ string) bool {
				return strings.Contains(strings.ToLower(task.Type), "analysis")
			},
			Build: func(_ *models.Task, result string) NewTaskSpec {
				return NewTaskSpec{
					Type:        "visualization",
					Description: "Visualize the analysis findings: " + snippet(result),
					Priority:    models.PriorityLow,
				}
			},
		},
	}
}

// codeRelated reports whether a task plausibly produced code.
func codeRelated(task *models.Task) bool {
	t := strings.ToLower(task.Type)
	if strings.Contains(t, "code") || strings.Contains(t, "generation") {
		return true
	}
	return strings.Contains(strings.ToLower(task.Description), "code")
}

// containsFencedCode reports whether the result holds at least one
// complete fenced code block.
func containsFencedCode(result string) bool {
	return strings.Count(result, "```") >= 2
}

// snippet truncates result text for inclusion in a task description.
// Truncation is rune-based so a multibyte character is never split.
func snippet(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= snippetLen {
		return s
	}
	return string(runes[:snippetLen]) + "..."
}
