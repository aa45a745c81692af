package extract

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/c360studio/specdialog/pattern"
)

// Constraint is a non-functional requirement classified into a fixed
// category. Deduplicated by (category, name).
type Constraint struct {
	ID          string                     `json:"id"`
	Category    pattern.ConstraintCategory `json:"category"`
	Name        string                     `json:"name"`
	Requirement string                     `json:"requirement"`
	Priority    pattern.Priority           `json:"priority"`
	Confidence  float64                    `json:"confidence"`
}

// constraintContextWindow is how many characters around a match become the
// requirement text.
const constraintContextWindow = 30

// constraintConfidence is the fixed confidence for pattern-classified
// constraints.
const constraintConfidence = 0.7

// ConstraintExtractor classifies phrases into constraint categories.
type ConstraintExtractor struct {
	logger        *slog.Logger
	minConfidence float64
}

// NewConstraintExtractor creates a constraint extractor.
func NewConstraintExtractor(logger *slog.Logger, opts ...Option) *ConstraintExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	o := applyOptions(opts)
	return &ConstraintExtractor{logger: logger, minConfidence: o.minConfidence}
}

// Extract finds constraints in text. Category determines the default
// priority; duplicates within one pass collapse by (category, name).
func (x *ConstraintExtractor) Extract(text string) []Constraint {
	lower := strings.ToLower(text)

	var constraints []Constraint
	seen := make(map[string]bool)

	for _, rule := range pattern.ConstraintRules() {
		for _, re := range rule.Patterns {
			for _, loc := range re.FindAllStringIndex(lower, -1) {
				name := fmt.Sprintf("%s requirement", titleCase(string(rule.Category)))
				key := string(rule.Category) + "|" + name
				if seen[key] {
					continue
				}
				seen[key] = true

				start, end := loc[0], loc[1]
				lo := start - constraintContextWindow
				if lo < 0 {
					lo = 0
				}
				hi := end + constraintContextWindow
				if hi > len(text) {
					hi = len(text)
				}

				constraints = append(constraints, Constraint{
					ID:          newID("con"),
					Category:    rule.Category,
					Name:        name,
					Requirement: fmt.Sprintf("Based on: %q", strings.TrimSpace(text[lo:hi])),
					Priority:    rule.Priority,
					Confidence:  constraintConfidence,
				})
			}
		}
	}

	return filterConfidence(constraints, x.minConfidence, func(c Constraint) float64 { return c.Confidence })
}

// MergeConstraints folds new constraints into the session list,
// deduplicating by (category, name). Categories never merge into each
// other.
func MergeConstraints(existing, found []Constraint) []Constraint {
	merged := make([]Constraint, len(existing))
	copy(merged, existing)

	for _, f := range found {
		dup := false
		for _, e := range merged {
			if e.Category == f.Category && strings.EqualFold(e.Name, f.Name) {
				dup = true
				break
			}
		}
		if !dup {
			merged = append(merged, f)
		}
	}

	return merged
}
