package conversation

import (
	"fmt"
	"strings"

	"github.com/c360studio/specdialog/pattern"
)

// phasePrompts are the system prompts fed to the reply model. The active
// phase picks the prompt; a phase change is therefore observable in the
// next reply's framing.
var phasePrompts = map[Phase]string{
	PhaseDiscovery: `You are an expert system architect helping users discover and define their system requirements.

Your role in the DISCOVERY phase:
1. Ask open-ended questions to understand what the user wants to build
2. Identify the main actors, data objects, and system components
3. Keep the conversation concrete and grounded in examples`,

	PhaseScenarioBuilding: `You are an expert system architect turning requirements into behavior scenarios.

Your role in the SCENARIO BUILDING phase:
1. Help the user express behaviors as Given/When/Then scenarios
2. Probe for triggers, preconditions, and observable outcomes
3. Surface edge cases and error paths the user has not mentioned`,

	PhaseConstraintDefinition: `You are an expert system architect capturing non-functional requirements.

Your role in the CONSTRAINT DEFINITION phase:
1. Ask about performance, security, reliability, and scalability needs
2. Push for measurable numbers instead of adjectives
3. Tie each constraint back to a concrete scenario where possible`,

	PhaseReview: `You are an expert system architect reviewing a captured specification.

Your role in the REVIEW phase:
1. Summarize the discovered entities, scenarios, and constraints
2. Point out gaps, contradictions, and untestable statements
3. Confirm with the user that the specification is complete`,
}

// fallbackReplies substitute for the model when it is unavailable or
// times out. Rotated deterministically per session.
var fallbackReplies = []string{
	"I'm having trouble processing that right now. Could you please rephrase your question?",
	"Let me think about that differently. Can you provide a bit more detail about what you're trying to accomplish?",
	"I want to make sure I understand correctly. Could you tell me more about your specific requirements?",
	"That's an interesting point. Can you help me understand the context a bit better?",
}

// PhasePrompt returns the system prompt for a phase.
func PhasePrompt(phase Phase) string {
	if p, ok := phasePrompts[phase]; ok {
		return p
	}
	return phasePrompts[PhaseDiscovery]
}

// buildContext renders the session state into the prompt context block.
func buildContext(s *State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Phase: %s\n", s.Phase)
	fmt.Fprintf(&b, "Progress: %d%%\n", s.ProgressScore)

	if len(s.Entities) > 0 {
		b.WriteString("Entities: ")
		b.WriteString(strings.Join(s.EntityNames(), ", "))
		b.WriteString("\n")
	}
	if len(s.Scenarios) > 0 {
		fmt.Fprintf(&b, "Scenarios: %d captured\n", len(s.Scenarios))
	}
	if len(s.Constraints) > 0 {
		fmt.Fprintf(&b, "Constraints: %d captured\n", len(s.Constraints))
	}

	return b.String()
}

// FollowupQuestions derives up to three contextual questions from the
// session state, matched to the active phase.
func FollowupQuestions(s *State) []string {
	var questions []string

	switch s.Phase {
	case PhaseDiscovery:
		if len(s.Entities) < 3 {
			questions = append(questions,
				"What are the main types of users or actors in your system?",
				"What key data or objects will your system manage?")
		}
		if len(s.Entities) >= 2 {
			questions = append(questions,
				"How do these components interact with each other?",
				"What's the main workflow or process you want to support?")
		}

	case PhaseScenarioBuilding:
		if len(s.Scenarios) < 3 {
			questions = append(questions,
				"What happens when a user first interacts with the system?",
				"Can you describe the most important user journey?")
		}
		for _, e := range s.Entities {
			if e.Type == pattern.EntityActor {
				questions = append(questions, fmt.Sprintf("What can a %s do with the system?", e.Name))
				break
			}
		}
		if len(s.Scenarios) >= 2 {
			questions = append(questions,
				"What should happen if something goes wrong in this process?",
				"Are there any special cases or exceptions to consider?")
		}

	case PhaseConstraintDefinition:
		if len(s.Constraints) < 2 {
			questions = append(questions,
				"How fast should the system respond to user actions?",
				"What are your security requirements?",
				"How many users do you expect to use this simultaneously?")
		}
		for _, c := range s.Constraints {
			if c.Category == pattern.ConstraintPerformance {
				questions = append(questions, "What happens if the system gets overloaded?")
				break
			}
		}

	case PhaseReview:
		questions = append(questions,
			"Does this capture everything you wanted in your system?",
			"Are there any edge cases or scenarios we missed?",
			"Would you like to refine any of these requirements?")
	}

	if len(questions) > 3 {
		questions = questions[:3]
	}
	return questions
}
