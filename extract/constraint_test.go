package extract

import (
	"strings"
	"testing"

	"github.com/c360studio/specdialog/pattern"
)

func TestExtractConstraints(t *testing.T) {
	x := NewConstraintExtractor(nil)

	tests := []struct {
		name         string
		text         string
		wantCategory pattern.ConstraintCategory
		wantPriority pattern.Priority
	}{
		{
			name:         "response time is performance high",
			text:         "response time must be under 100ms",
			wantCategory: pattern.ConstraintPerformance,
			wantPriority: pattern.PriorityHigh,
		},
		{
			name:         "encryption is security high",
			text:         "all traffic must use https and encrypt stored data",
			wantCategory: pattern.ConstraintSecurity,
			wantPriority: pattern.PriorityHigh,
		},
		{
			name:         "uptime is reliability medium",
			text:         "we need 99.9% uptime",
			wantCategory: pattern.ConstraintReliability,
			wantPriority: pattern.PriorityMedium,
		},
		{
			name:         "horizontal scaling is scalability medium",
			text:         "it has to support horizontal scaling across a cluster",
			wantCategory: pattern.ConstraintScalability,
			wantPriority: pattern.PriorityMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			constraints := x.Extract(tt.text)

			var match *Constraint
			for i := range constraints {
				if constraints[i].Category == tt.wantCategory {
					match = &constraints[i]
				}
			}
			if match == nil {
				t.Fatalf("no %s constraint in %+v", tt.wantCategory, constraints)
			}
			if match.Priority != tt.wantPriority {
				t.Errorf("priority = %s, want %s", match.Priority, tt.wantPriority)
			}
			if match.Confidence != constraintConfidence {
				t.Errorf("confidence = %v, want %v", match.Confidence, constraintConfidence)
			}
			if !strings.Contains(match.Requirement, "Based on:") {
				t.Errorf("requirement missing context: %q", match.Requirement)
			}
		})
	}
}

func TestExtractConstraintsDeduplicates(t *testing.T) {
	x := NewConstraintExtractor(nil)
	constraints := x.Extract("response time must be under 100ms")

	perf := 0
	for _, c := range constraints {
		if c.Category == pattern.ConstraintPerformance {
			perf++
		}
	}
	if perf != 1 {
		t.Errorf("expected exactly 1 performance constraint, got %d", perf)
	}
}

func TestExtractConstraintsEmpty(t *testing.T) {
	x := NewConstraintExtractor(nil)
	if constraints := x.Extract("the user creates an order"); len(constraints) != 0 {
		t.Errorf("expected no constraints, got %+v", constraints)
	}
}

func TestMergeConstraintsByCategoryAndName(t *testing.T) {
	existing := []Constraint{{
		ID: "con-1", Category: pattern.ConstraintPerformance,
		Name: "Performance requirement", Priority: pattern.PriorityHigh,
	}}
	found := []Constraint{
		{ID: "con-2", Category: pattern.ConstraintPerformance, Name: "Performance requirement"},
		{ID: "con-3", Category: pattern.ConstraintSecurity, Name: "Security requirement"},
	}

	merged := MergeConstraints(existing, found)
	if len(merged) != 2 {
		t.Fatalf("expected 2 constraints, got %d", len(merged))
	}
	if merged[0].ID != "con-1" {
		t.Errorf("existing constraint replaced: %+v", merged[0])
	}
}

func TestConstraintMinConfidenceFilters(t *testing.T) {
	text := "response time must be under 100ms"

	if got := NewConstraintExtractor(nil).Extract(text); len(got) == 0 {
		t.Fatal("expected constraints without a threshold")
	}
	if got := NewConstraintExtractor(nil, WithMinConfidence(0.8)).Extract(text); len(got) != 0 {
		t.Errorf("constraints at %v survived a 0.8 threshold: %+v", constraintConfidence, got)
	}
}
