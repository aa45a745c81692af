package pattern

import "regexp"

// RelationType names a directed relationship between two entities.
type RelationType string

// Relationship types recognized in prose.
const (
	RelationUses        RelationType = "uses"
	RelationContains    RelationType = "contains"
	RelationProcesses   RelationType = "processes"
	RelationCommunicate RelationType = "communicates_with"
	RelationCreates     RelationType = "creates"
)

// RelationRule pairs a relationship type with the verb phrasings that
// express it. Each pattern captures subject and object.
type RelationRule struct {
	Type     RelationType
	Patterns []*regexp.Regexp
}

var relationRules = []RelationRule{
	{
		Type: RelationUses,
		Patterns: compile(
			`(.+?)\s+(?:uses?|utilizes?|employs?|leverages?)\s+(.+?)(?:\.|,|$)`,
			`(.+?)\s+(?:is\s+)?built\s+(?:on|with|using)\s+(.+?)(?:\.|,|$)`,
			`(.+?)\s+(?:depends\s+on|relies\s+on)\s+(.+?)(?:\.|,|$)`,
		),
	},
	{
		Type: RelationContains,
		Patterns: compile(
			`(.+?)\s+(?:contains?|includes?|has|holds)\s+(.+?)(?:\.|,|$)`,
			`(.+?)\s+(?:is\s+)?(?:composed\s+of|made\s+up\s+of)\s+(.+?)(?:\.|,|$)`,
			`(.+?)\s+consists?\s+of\s+(.+?)(?:\.|,|$)`,
		),
	},
	{
		Type: RelationProcesses,
		Patterns: compile(
			`(.+?)\s+(?:processes?|handles?|manages?|deals\s+with)\s+(.+?)(?:\.|,|$)`,
			`(.+?)\s+(?:is\s+)?(?:responsible\s+for|in\s+charge\s+of)\s+(.+?)(?:\.|,|$)`,
		),
	},
	{
		Type: RelationCommunicate,
		Patterns: compile(
			`(.+?)\s+(?:communicates?\s+with|talks\s+to|connects?\s+to|interfaces?\s+with)\s+(.+?)(?:\.|,|$)`,
			`(.+?)\s+(?:sends?\s+(?:data\s+)?to|receives?\s+(?:data\s+)?from)\s+(.+?)(?:\.|,|$)`,
		),
	},
	{
		Type: RelationCreates,
		Patterns: compile(
			`(.+?)\s+(?:creates?|generates?|produces?|builds?|makes?)\s+(.+?)(?:\.|,|$)`,
			`(.+?)\s+(?:is\s+)?(?:created|generated|produced|built|made)\s+by\s+(.+?)(?:\.|,|$)`,
		),
	},
}

// RelationRules returns the relationship verb table. Callers must not
// mutate the returned slice.
func RelationRules() []RelationRule {
	return relationRules
}
