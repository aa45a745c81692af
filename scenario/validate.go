package scenario

import (
	"fmt"
	"strings"
)

// validate checks completeness and quality against the builder's
// lexicons. Issues are advisory; they never block processing.
func validate(s *Scenario, vagueWords, untestablePhrases []string) []string {
	var issues []string

	// Given is never flagged: assembly synthesizes a default Given for
	// implicit scenarios, so a missing one is unreachable from Extract.
	// A precondition gap is covered by completion suggestions instead.
	if len(s.When) == 0 {
		issues = append(issues, "Missing 'When' component - what triggers this scenario?")
	}
	if len(s.Then) == 0 {
		issues = append(issues, "Missing 'Then' component - what should happen?")
	}

	all := strings.ToLower(joinContent(s.components()))

	for _, word := range vagueWords {
		if strings.Contains(all, word) {
			issues = append(issues, fmt.Sprintf("Vague language detected: %q - try to be more specific", word))
		}
	}

	for _, phrase := range untestablePhrases {
		if strings.Contains(all, phrase) {
			issues = append(issues, fmt.Sprintf("Untestable outcome: %q - specify measurable criteria", phrase))
		}
	}

	return issues
}

func joinContent(components []Component) string {
	parts := make([]string, len(components))
	for i, c := range components {
		parts[i] = c.Content
	}
	return strings.Join(parts, " ")
}
