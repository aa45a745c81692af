package scenario

import (
	"strings"

	"github.com/c360studio/specdialog/pattern"
)

// completionSuggestions proposes components for the roles a scenario is
// missing, derived from the components it has. Complete scenarios get
// edge-case suggestions instead. A missing role always yields at least
// one suggestion; the specific heuristics below take precedence over the
// generic fallback.
func completionSuggestions(s *Scenario) []Suggestion {
	var out []Suggestion

	if len(s.Given) == 0 {
		out = append(out, suggestGiven(s)...)
	}
	if len(s.When) == 0 {
		out = append(out, suggestWhen(s)...)
	}
	if len(s.Then) == 0 {
		out = append(out, suggestThen(s)...)
	}
	if s.HasAllRoles() {
		out = append(out, suggestEdgeCases(s)...)
	}

	return out
}

func suggestGiven(s *Scenario) []Suggestion {
	var out []Suggestion

	if len(s.When) > 0 {
		action := strings.ToLower(s.When[0].Content)
		if strings.Contains(action, "user") {
			out = append(out, Suggestion{
				ComponentType:   pattern.RoleGiven,
				Suggestion:      "user is authenticated and logged in",
				Reasoning:       "Most user actions require authentication",
				Confidence:      0.8,
				ContextEntities: []string{"user", "auth"},
			})
		}
		for _, term := range []string{"database", "db", "data"} {
			if strings.Contains(action, term) {
				out = append(out, Suggestion{
					ComponentType:   pattern.RoleGiven,
					Suggestion:      "database is accessible and contains test data",
					Reasoning:       "Database operations need accessible data",
					Confidence:      0.7,
					ContextEntities: []string{"database", "data"},
				})
				break
			}
		}
	}

	if len(out) == 0 {
		out = append(out, Suggestion{
			ComponentType: pattern.RoleGiven,
			Suggestion:    "system is in its initial ready state",
			Reasoning:     "Every scenario needs a starting state",
			Confidence:    0.5,
		})
	}
	return out
}

func suggestWhen(s *Scenario) []Suggestion {
	var out []Suggestion

	if len(s.Then) > 0 {
		outcome := strings.ToLower(s.Then[0].Content)
		if strings.Contains(outcome, "error") {
			out = append(out, Suggestion{
				ComponentType:   pattern.RoleWhen,
				Suggestion:      "invalid input is provided",
				Reasoning:       "Errors typically result from invalid inputs",
				Confidence:      0.8,
				ContextEntities: []string{"input", "validation"},
			})
		}
		if strings.Contains(outcome, "notification") || strings.Contains(outcome, "email") {
			out = append(out, Suggestion{
				ComponentType:   pattern.RoleWhen,
				Suggestion:      "important event occurs",
				Reasoning:       "Notifications are triggered by significant events",
				Confidence:      0.7,
				ContextEntities: []string{"event", "trigger"},
			})
		}
	}

	if len(out) == 0 {
		out = append(out, Suggestion{
			ComponentType: pattern.RoleWhen,
			Suggestion:    "the user performs the primary action",
			Reasoning:     "A scenario needs a trigger for its outcome",
			Confidence:    0.5,
		})
	}
	return out
}

func suggestThen(s *Scenario) []Suggestion {
	var out []Suggestion

	if len(s.When) > 0 {
		action := strings.ToLower(s.When[0].Content)
		if strings.Contains(action, "submit") || strings.Contains(action, "create") {
			out = append(out, Suggestion{
				ComponentType:   pattern.RoleThen,
				Suggestion:      "success confirmation is displayed",
				Reasoning:       "Create and submit actions should provide feedback",
				Confidence:      0.8,
				ContextEntities: []string{"feedback", "confirmation"},
			})
		}
		if strings.Contains(action, "delete") {
			out = append(out, Suggestion{
				ComponentType:   pattern.RoleThen,
				Suggestion:      "item is removed and confirmation shown",
				Reasoning:       "Delete operations need confirmation",
				Confidence:      0.9,
				ContextEntities: []string{"removal", "confirmation"},
			})
		}
	}

	if len(out) == 0 {
		out = append(out, Suggestion{
			ComponentType: pattern.RoleThen,
			Suggestion:    "the expected result is observable to the user",
			Reasoning:     "A scenario needs a checkable outcome",
			Confidence:    0.5,
		})
	}
	return out
}

func suggestEdgeCases(s *Scenario) []Suggestion {
	out := []Suggestion{{
		ComponentType:   pattern.RoleWhen,
		Suggestion:      "network connection fails during the operation",
		Reasoning:       "Network failures are common edge cases",
		Confidence:      0.6,
		ContextEntities: []string{"network", "error"},
	}}

	for _, c := range s.components() {
		if strings.Contains(strings.ToLower(c.Content), "user") {
			out = append(out, Suggestion{
				ComponentType:   pattern.RoleGiven,
				Suggestion:      "user account has reached usage limits",
				Reasoning:       "Boundary conditions test system limits",
				Confidence:      0.5,
				ContextEntities: []string{"limits", "boundary"},
			})
			break
		}
	}

	return out
}
