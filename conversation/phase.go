package conversation

import "strings"

// Thresholds are the counts that drive automatic phase transitions.
type Thresholds struct {
	EntitiesForScenarios    int `yaml:"entities_for_scenarios" json:"entities_for_scenarios"`
	ScenariosForConstraints int `yaml:"scenarios_for_constraints" json:"scenarios_for_constraints"`
	ConstraintsForReview    int `yaml:"constraints_for_review" json:"constraints_for_review"`
}

// DefaultThresholds returns the standard transition counts.
func DefaultThresholds() Thresholds {
	return Thresholds{
		EntitiesForScenarios:    2,
		ScenariosForConstraints: 3,
		ConstraintsForReview:    2,
	}
}

// DefaultPhaseKeywords returns the trigger words that move the
// conversation to a phase regardless of counts.
func DefaultPhaseKeywords() map[Phase][]string {
	return map[Phase][]string{
		PhaseScenarioBuilding:     {"scenario", "behavior", "what happens", "how does"},
		PhaseConstraintDefinition: {"performance", "fast", "secure", "requirement"},
		PhaseReview:               {"done", "complete", "finished", "review", "summary"},
	}
}

// PhaseMachine evaluates phase transitions after each utterance. Phases
// only move forward; the single way back to discovery is State.Reset.
type PhaseMachine struct {
	thresholds Thresholds
	keywords   map[Phase][]string
}

// NewPhaseMachine creates a phase machine. Zero-valued thresholds and a
// nil keyword map fall back to the defaults.
func NewPhaseMachine(thresholds Thresholds, keywords map[Phase][]string) *PhaseMachine {
	if thresholds == (Thresholds{}) {
		thresholds = DefaultThresholds()
	}
	if keywords == nil {
		keywords = DefaultPhaseKeywords()
	}
	return &PhaseMachine{thresholds: thresholds, keywords: keywords}
}

// Next returns the phase the conversation should be in after the given
// utterance, and whether that differs from current. Keyword triggers win
// over count thresholds; neither moves the phase backward.
func (m *PhaseMachine) Next(current Phase, message string, entities, scenarios, constraints int) (Phase, bool) {
	if target, ok := m.keywordTarget(message); ok && forward(current, target) {
		return target, true
	}

	switch current {
	case PhaseDiscovery:
		if entities >= m.thresholds.EntitiesForScenarios {
			return PhaseScenarioBuilding, true
		}
	case PhaseScenarioBuilding:
		if scenarios >= m.thresholds.ScenariosForConstraints {
			return PhaseConstraintDefinition, true
		}
	case PhaseConstraintDefinition:
		if constraints >= m.thresholds.ConstraintsForReview {
			return PhaseReview, true
		}
	}

	return current, false
}

func (m *PhaseMachine) keywordTarget(message string) (Phase, bool) {
	lower := strings.ToLower(message)
	for _, phase := range []Phase{PhaseScenarioBuilding, PhaseConstraintDefinition, PhaseReview} {
		for _, kw := range m.keywords[phase] {
			if strings.Contains(lower, kw) {
				return phase, true
			}
		}
	}
	return "", false
}

func forward(current, target Phase) bool {
	return phaseRank[target] > phaseRank[current]
}
