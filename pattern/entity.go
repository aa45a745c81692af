// Package pattern holds the immutable rule tables the extractors run
// against: entity categories, constraint categories, scenario role
// families, relationship verbs, synonym groups, and the shared lexicons.
// Tables are compiled once at package init and never mutated.
package pattern

import "regexp"

// EntityType classifies a discovered entity.
type EntityType string

// Entity classification categories, ordered by extraction reliability.
const (
	EntityActor    EntityType = "actor"
	EntityData     EntityType = "data_entity"
	EntitySystem   EntityType = "system_component"
	EntityBusiness EntityType = "business_concept"
	EntityAction   EntityType = "action_concept"
)

// EntityRule pairs a category with its trigger patterns. Confidence is the
// category's fixed reliability weight, not a per-instance score.
type EntityRule struct {
	Type       EntityType
	Confidence float64
	Patterns   []*regexp.Regexp
}

var entityRules = []EntityRule{
	{
		Type:       EntityActor,
		Confidence: 0.9,
		Patterns: compile(
			`\b(user|customer|admin|administrator|manager|operator|guest|visitor|member)\b`,
			`\b(client|customer|end[\s-]?user|system[\s-]?admin)\b`,
			`\b(developer|analyst|stakeholder|owner|reviewer|maintainer)\b`,
		),
	},
	{
		Type:       EntityData,
		Confidence: 0.8,
		Patterns: compile(
			`\b(task|order|product|item|invoice|report|document|file|message|notification)\b`,
			`\b(record|entry|transaction|request|response|log|event|session)\b`,
			`\b(account|profile|setting|preference|configuration|data)\b`,
			`\b(comment|review|rating|feedback|note|attachment)\b`,
			`\b(history|output|input|result|analysis|suggestion|instruction)\b`,
		),
	},
	{
		Type:       EntitySystem,
		Confidence: 0.7,
		Patterns: compile(
			`\b(database|db|server|api|service|application|app|system|platform)\b`,
			`\b(interface|ui|frontend|backend|endpoint|microservice)\b`,
			`\b(queue|cache|storage|repository|gateway|proxy|load[\s-]?balancer)\b`,
			`\b(authentication|auth|authorization|security|encryption)\b`,
			`\b(cli|tool|analyzer|parser|processor|generator|extractor)\b`,
		),
	},
	{
		Type:       EntityBusiness,
		Confidence: 0.6,
		Patterns: compile(
			`\b(workflow|process|procedure|policy|rule|validation)\b`,
			`\b(permission|role|access|privilege|scope|domain)\b`,
			`\b(category|type|status|state|phase|stage)\b`,
			`\b(improvement|optimization|enhancement|recommendation)\b`,
			`\b(pattern[\s-]?recognition|analysis|monitoring|tracking)\b`,
		),
	},
	{
		Type:       EntityAction,
		Confidence: 0.5,
		Patterns: compile(
			`\b(analyze|analyzes|analyzing)\b`,
			`\b(recognize|recognizes|recognizing|recognition)\b`,
			`\b(improve|improves|improving)\b`,
			`\b(update|updates|updating|upgrade)\b`,
			`\b(generate|generates|generating|creation)\b`,
			`\b(extract|extracts|extracting|extraction)\b`,
			`\b(run|runs|running|execute|execution)\b`,
		),
	},
}

// EntityRules returns the entity classification table ordered by
// descending confidence. Callers must not mutate the returned slice.
func EntityRules() []EntityRule {
	return entityRules
}

func compile(exprs ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		res[i] = regexp.MustCompile(expr)
	}
	return res
}
