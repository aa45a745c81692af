// Package scenario recognizes Given/When/Then structure in prose and
// assembles it into scenario records with completion suggestions and
// validation issues. Recognition is rule-based sentence classification
// over the pattern tables; nothing here calls a language model.
package scenario

import (
	"github.com/google/uuid"

	"github.com/c360studio/specdialog/pattern"
)

// Status tracks a scenario's lifecycle. Transitions beyond draft are
// driven by explicit approval, not by the builder.
type Status string

// Scenario statuses.
const (
	StatusDraft     Status = "draft"
	StatusValidated Status = "validated"
	StatusComplete  Status = "complete"
)

// Component is one classified sentence of a scenario.
type Component struct {
	Role          pattern.Role `json:"role"`
	Content       string       `json:"content"`
	Confidence    float64      `json:"confidence"`
	Entities      []string     `json:"entities,omitempty"`
	Relationships []string     `json:"relationships,omitempty"`
}

// Suggestion is an auto-completion hint for a missing or weak component.
type Suggestion struct {
	ComponentType   pattern.Role `json:"component_type"`
	Suggestion      string       `json:"suggestion"`
	Reasoning       string       `json:"reasoning"`
	Confidence      float64      `json:"confidence"`
	ContextEntities []string     `json:"context_entities,omitempty"`
}

// Scenario is an assembled behavior specification.
type Scenario struct {
	ID               string       `json:"id"`
	Title            string       `json:"title"`
	Given            []Component  `json:"given"`
	When             []Component  `json:"when"`
	Then             []Component  `json:"then"`
	Confidence       float64      `json:"confidence"`
	Status           Status       `json:"status"`
	Suggestions      []Suggestion `json:"completion_suggestions,omitempty"`
	ValidationIssues []string     `json:"validation_issues,omitempty"`
	Entities         []string     `json:"entities,omitempty"`
}

// RelatedSuggestion proposes a sibling scenario (error case, boundary
// case). Advisory only, never persisted as a Scenario.
type RelatedSuggestion struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	SuggestedGiven string `json:"suggested_given,omitempty"`
	SuggestedWhen  string `json:"suggested_when,omitempty"`
	SuggestedThen  string `json:"suggested_then,omitempty"`
}

// HasAllRoles reports whether the scenario has at least one component in
// every role.
func (s *Scenario) HasAllRoles() bool {
	return len(s.Given) > 0 && len(s.When) > 0 && len(s.Then) > 0
}

func (s *Scenario) components() []Component {
	out := make([]Component, 0, len(s.Given)+len(s.When)+len(s.Then))
	out = append(out, s.Given...)
	out = append(out, s.When...)
	out = append(out, s.Then...)
	return out
}

func newID() string {
	return "sc-" + uuid.NewString()[:8]
}
