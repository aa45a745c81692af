package pattern

import "regexp"

// ConstraintCategory classifies a non-functional requirement.
type ConstraintCategory string

// Constraint categories.
const (
	ConstraintPerformance ConstraintCategory = "performance"
	ConstraintSecurity    ConstraintCategory = "security"
	ConstraintReliability ConstraintCategory = "reliability"
	ConstraintScalability ConstraintCategory = "scalability"
)

// Priority is the importance level attached to a constraint.
type Priority string

// Constraint priorities.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ConstraintRule pairs a constraint category with its trigger patterns and
// the category's fixed default priority.
type ConstraintRule struct {
	Category ConstraintCategory
	Priority Priority
	Patterns []*regexp.Regexp
}

var constraintRules = []ConstraintRule{
	{
		Category: ConstraintPerformance,
		Priority: PriorityHigh,
		Patterns: compile(
			`\b(fast|quick|slow|speed|latency|response\s+time|throughput|performance)\b`,
			`\b(\d+(?:\.\d+)?)\s*(ms|milliseconds?|seconds?|minutes?)\b`,
			`\b(concurrent|parallel|simultaneous|real[\s-]?time)\b`,
			`\b(load|capacity|volume)\b`,
		),
	},
	{
		Category: ConstraintSecurity,
		Priority: PriorityHigh,
		Patterns: compile(
			`\b(secure|safe|protect|encrypt|decrypt|authentication|authorization)\b`,
			`\b(password|token|certificate|ssl|tls|https)\b`,
			`\b(privacy|confidential|sensitive|personal\s+data|pii)\b`,
			`\b(access\s+control|permission|privilege)\b`,
		),
	},
	{
		Category: ConstraintReliability,
		Priority: PriorityMedium,
		Patterns: compile(
			`\b(reliable|stable|robust|uptime|availability|downtime)\b`,
			`\b(backup|recovery|failover|redundant|fault[\s-]?tolerant)\b`,
			`\b(error\s+handling|exception|graceful|degrade)\b`,
			`\b(\d+(?:\.\d+)?)\s*%\s*(uptime|availability)\b`,
		),
	},
	{
		Category: ConstraintScalability,
		Priority: PriorityMedium,
		Patterns: compile(
			`\b(scale|scaling|scalable|elastic|horizontal|vertical)\b`,
			`\b(\d+(?:,\d{3})*|\d+k|\d+m)\s*(users?|requests?|transactions?)\b`,
			`\b(distributed|cluster|load[\s-]?balance)\b`,
			`\b(growth|expand|increase)\b`,
		),
	},
}

// ConstraintRules returns the constraint classification table. Callers must
// not mutate the returned slice.
func ConstraintRules() []ConstraintRule {
	return constraintRules
}
