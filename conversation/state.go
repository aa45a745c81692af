// Package conversation owns per-session discovery state: the phase state
// machine, the progress score, the message-processing engine that runs the
// extractors and merges their results, and the session store.
package conversation

import (
	"time"

	"github.com/google/uuid"

	"github.com/c360studio/specdialog/extract"
	"github.com/c360studio/specdialog/scenario"
)

// Phase is the conversation's current discovery stage.
type Phase string

// Conversation phases, in forward order.
const (
	PhaseDiscovery            Phase = "discovery"
	PhaseScenarioBuilding     Phase = "scenario_building"
	PhaseConstraintDefinition Phase = "constraint_definition"
	PhaseReview               Phase = "review"
)

// phaseRank orders phases for monotonicity checks.
var phaseRank = map[Phase]int{
	PhaseDiscovery:            0,
	PhaseScenarioBuilding:     1,
	PhaseConstraintDefinition: 2,
	PhaseReview:               3,
}

// IsValid reports whether p is one of the known phases.
func (p Phase) IsValid() bool {
	_, ok := phaseRank[p]
	return ok
}

// Message is one turn of the conversation history.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// State is the authoritative record of everything discovered in one
// session. Owned exclusively by its session; mutated only through the
// session's sequential processing path.
type State struct {
	SessionID     string               `json:"session_id"`
	Phase         Phase                `json:"phase"`
	Entities      []extract.Entity     `json:"discovered_entities"`
	Scenarios     []scenario.Scenario  `json:"scenarios"`
	Constraints   []extract.Constraint `json:"constraints"`
	ProgressScore int                  `json:"progress_score"`
	History       []Message            `json:"history,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

// NewState creates a fresh session state in the discovery phase. An empty
// sessionID gets a generated one.
func NewState(sessionID string) *State {
	if sessionID == "" {
		sessionID = "s-" + uuid.NewString()[:8]
	}
	now := time.Now().UTC()
	return &State{
		SessionID: sessionID,
		Phase:     PhaseDiscovery,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Reset discards all discovered content and returns the state to the
// initial phase. The session identity is kept.
func (s *State) Reset() {
	s.Phase = PhaseDiscovery
	s.Entities = nil
	s.Scenarios = nil
	s.Constraints = nil
	s.ProgressScore = 0
	s.History = nil
	s.UpdatedAt = time.Now().UTC()
}

// Snapshot returns a deep copy safe to read while the session keeps
// processing.
func (s *State) Snapshot() *State {
	cp := *s

	cp.Entities = make([]extract.Entity, len(s.Entities))
	for i, e := range s.Entities {
		e.Relationships = append([]string(nil), e.Relationships...)
		e.Synonyms = append([]string(nil), e.Synonyms...)
		cp.Entities[i] = e
	}

	cp.Scenarios = make([]scenario.Scenario, len(s.Scenarios))
	for i, sc := range s.Scenarios {
		sc.Given = append([]scenario.Component(nil), sc.Given...)
		sc.When = append([]scenario.Component(nil), sc.When...)
		sc.Then = append([]scenario.Component(nil), sc.Then...)
		sc.Suggestions = append([]scenario.Suggestion(nil), sc.Suggestions...)
		sc.ValidationIssues = append([]string(nil), sc.ValidationIssues...)
		sc.Entities = append([]string(nil), sc.Entities...)
		cp.Scenarios[i] = sc
	}

	cp.Constraints = append([]extract.Constraint(nil), s.Constraints...)
	cp.History = append([]Message(nil), s.History...)

	return &cp
}

// EntityNames returns the display names of all discovered entities.
func (s *State) EntityNames() []string {
	names := make([]string, len(s.Entities))
	for i, e := range s.Entities {
		names[i] = e.Name
	}
	return names
}
