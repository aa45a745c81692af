package pattern

import "regexp"

// Role identifies the part a sentence plays inside a scenario.
type Role string

// Scenario component roles.
const (
	RoleGiven Role = "given"
	RoleWhen  Role = "when"
	RoleThen  Role = "then"
)

// RolePattern is one trigger phrasing for a scenario role. CatchAll marks
// generic cues that match almost any sentence and carry a confidence
// penalty.
type RolePattern struct {
	Re       *regexp.Regexp
	CatchAll bool
}

var givenPatterns = []RolePattern{
	{Re: regexp.MustCompile(`given\s+(.+)`)},
	{Re: regexp.MustCompile(`assume\s+(.+)`)},
	{Re: regexp.MustCompile(`suppose\s+(.+)`)},
	{Re: regexp.MustCompile(`starting\s+with\s+(.+)`)},
	{Re: regexp.MustCompile(`with\s+(.+)`)},
	{Re: regexp.MustCompile(`having\s+(.+)`)},
	{Re: regexp.MustCompile(`when\s+(.+)\s+exists`)},
	{Re: regexp.MustCompile(`if\s+(.+)\s+is\s+true`)},
	{Re: regexp.MustCompile(`considering\s+(.+)`)},
	{Re: regexp.MustCompile(`in\s+a\s+state\s+where\s+(.+)`)},
}

var whenPatterns = []RolePattern{
	{Re: regexp.MustCompile(`when\s+(.+)`)},
	{Re: regexp.MustCompile(`if\s+(.+)`)},
	{Re: regexp.MustCompile(`after\s+(.+)`)},
	{Re: regexp.MustCompile(`once\s+(.+)`)},
	{Re: regexp.MustCompile(`as\s+soon\s+as\s+(.+)`)},
	{Re: regexp.MustCompile(`upon\s+(.+)`)},
	{Re: regexp.MustCompile(`during\s+(.+)`)},
	{Re: regexp.MustCompile(`while\s+(.+)`)},
	{Re: regexp.MustCompile(`(.+)\s+happens`), CatchAll: true},
	{Re: regexp.MustCompile(`(.+)\s+occurs`), CatchAll: true},
	{Re: regexp.MustCompile(`(.+)\s+is\s+triggered`), CatchAll: true},
}

var thenPatterns = []RolePattern{
	{Re: regexp.MustCompile(`then\s+(.+)`)},
	{Re: regexp.MustCompile(`should\s+(.+)`)},
	{Re: regexp.MustCompile(`must\s+(.+)`)},
	{Re: regexp.MustCompile(`will\s+(.+)`)},
	{Re: regexp.MustCompile(`expect\s+(.+)`)},
	{Re: regexp.MustCompile(`result\s+is\s+(.+)`)},
	{Re: regexp.MustCompile(`outcome\s+is\s+(.+)`)},
	{Re: regexp.MustCompile(`(.+)\s+should\s+happen`), CatchAll: true},
	{Re: regexp.MustCompile(`(.+)\s+is\s+expected`), CatchAll: true},
}

// explicitKeywords are the role keywords that raise classification
// confidence when present anywhere in the sentence.
var explicitKeywords = map[Role][]string{
	RoleGiven: {"given", "assume", "suppose"},
	RoleWhen:  {"when", "if", "after"},
	RoleThen:  {"then", "should", "must", "will"},
}

// RolePatterns returns the trigger patterns for a role. The returned slice
// must not be mutated.
func RolePatterns(role Role) []RolePattern {
	switch role {
	case RoleGiven:
		return givenPatterns
	case RoleWhen:
		return whenPatterns
	case RoleThen:
		return thenPatterns
	}
	return nil
}

// ExplicitKeywords returns the keywords that mark an unambiguous use of the
// role.
func ExplicitKeywords(role Role) []string {
	return explicitKeywords[role]
}

// ExplicitScenarioRe matches a full ordered Given/When/Then span in one
// block of text.
var ExplicitScenarioRe = regexp.MustCompile(`(?s)given\s+(.+?)when\s+(.+?)then\s+(.+?)(?:\.|given|$)`)

// ImplicitScenarioRes match condition/outcome phrasings that imply a
// scenario without explicit Given/When/Then structure.
var ImplicitScenarioRes = []*regexp.Regexp{
	regexp.MustCompile(`(?s)when\s+(.+?)\s+(?:should|must|will)\s+(.+?)(?:\.|when|if|$)`),
	regexp.MustCompile(`(?s)if\s+(.+?)\s+(?:then|should|must|will)\s+(.+?)(?:\.|when|if|$)`),
	regexp.MustCompile(`(?s)(?:after|once)\s+(.+?)\s+(?:should|must|will)\s+(.+?)(?:\.|when|if|$)`),
	regexp.MustCompile(`(?s)i(?:'d like to| want to)\s+(.+?)\s+that\s+(.+?)(?:\.|$)`),
	regexp.MustCompile(`(?s)(?:system|tool|application)\s+(?:that|should)\s+(.+?)\s+(?:so that|to)\s+(.+?)(?:\.|$)`),
}
