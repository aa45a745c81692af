package pattern

import "strings"

// DomainVocabulary holds the domain-specific terms that sharpen extraction
// when a conversation clearly belongs to one problem domain.
type DomainVocabulary struct {
	Name     string
	Entities []string
	Actions  []string
}

var domainVocabularies = []DomainVocabulary{
	{
		Name:     "software_development",
		Entities: []string{"repository", "commit", "branch", "merge", "pull-request", "issue", "bug", "feature", "release", "deployment"},
		Actions:  []string{"code", "debug", "test", "deploy", "refactor", "review", "commit", "push", "pull"},
	},
	{
		Name:     "web_application",
		Entities: []string{"frontend", "backend", "middleware", "router", "controller", "model", "view", "template", "session", "cookie"},
		Actions:  []string{"render", "route", "authenticate", "authorize", "validate", "sanitize", "cache", "serialize"},
	},
	{
		Name:     "data_processing",
		Entities: []string{"pipeline", "stream", "batch", "job", "queue", "worker", "scheduler", "transformer", "aggregator", "filter"},
		Actions:  []string{"ingest", "transform", "aggregate", "filter", "enrich", "normalize", "deduplicate", "partition"},
	},
}

// DomainVocabularies returns the known domain term tables.
func DomainVocabularies() []DomainVocabulary {
	return domainVocabularies
}

// Domain returns the vocabulary for a named domain, or false when unknown.
func Domain(name string) (DomainVocabulary, bool) {
	for _, d := range domainVocabularies {
		if d.Name == name {
			return d, true
		}
	}
	return DomainVocabulary{}, false
}

// DetectDomain picks the domain whose vocabulary has the most hits in the
// text. Returns empty when no domain scores at least two hits.
func DetectDomain(text string) string {
	lower := strings.ToLower(text)

	best := ""
	bestScore := 0
	for _, d := range domainVocabularies {
		score := 0
		for _, term := range append(append([]string{}, d.Entities...), d.Actions...) {
			if strings.Contains(lower, term) {
				score++
			}
		}
		if score > bestScore {
			best = d.Name
			bestScore = score
		}
	}

	if bestScore < 2 {
		return ""
	}
	return best
}
