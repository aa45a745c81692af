package scenario

import "strings"

// SuggestRelated proposes sibling scenarios for an assembled one: an
// error-case variant for happy paths and a boundary-case variant when the
// scenario touches account or volume sensitive concepts.
func (b *Builder) SuggestRelated(s *Scenario) []RelatedSuggestion {
	all := strings.ToLower(joinContent(s.components()))

	var out []RelatedSuggestion

	if strings.Contains(all, "success") {
		out = append(out, RelatedSuggestion{
			Title:         "Error case for: " + s.Title,
			Description:   "What happens when the operation fails?",
			SuggestedWhen: "an error occurs during the process",
			SuggestedThen: "appropriate error message is shown",
		})
	}

	for _, term := range []string{"user", "customer", "account"} {
		if strings.Contains(all, term) {
			out = append(out, RelatedSuggestion{
				Title:          "Boundary case for: " + s.Title,
				Description:    "What about edge cases or limits?",
				SuggestedGiven: "user has reached account limits",
				SuggestedThen:  "appropriate limits message is displayed",
			})
			break
		}
	}

	return out
}
