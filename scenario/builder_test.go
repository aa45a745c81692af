package scenario

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/c360studio/specdialog/pattern"
)

func TestExtractExplicitScenario(t *testing.T) {
	b := NewBuilder(nil)
	scenarios := b.Extract("Given user is authenticated. When user clicks save. Then data is saved.", nil)

	if len(scenarios) != 1 {
		t.Fatalf("expected exactly 1 scenario, got %d", len(scenarios))
	}

	s := scenarios[0]
	if s.Confidence <= 0.7 {
		t.Errorf("confidence = %v, want > 0.7", s.Confidence)
	}
	if !s.HasAllRoles() {
		t.Fatalf("missing roles: given=%d when=%d then=%d", len(s.Given), len(s.When), len(s.Then))
	}
	for _, issue := range s.ValidationIssues {
		if strings.Contains(issue, "Missing") {
			t.Errorf("unexpected missing-role issue: %q", issue)
		}
	}
	if s.Status != StatusDraft {
		t.Errorf("status = %s, want %s", s.Status, StatusDraft)
	}
	if s.Title == "" {
		t.Error("title is empty")
	}
}

func TestExtractMissingWhenSuggestsTrigger(t *testing.T) {
	b := NewBuilder(nil)
	scenarios := b.Extract("Given user is authenticated. Then an error message should be displayed.", nil)

	if len(scenarios) != 1 {
		t.Fatalf("expected 1 scenario, got %d", len(scenarios))
	}

	s := scenarios[0]
	if len(s.When) != 0 {
		t.Fatalf("expected no when components, got %+v", s.When)
	}

	found := false
	for _, sg := range s.Suggestions {
		if sg.ComponentType == pattern.RoleWhen {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a 'when' completion suggestion, got %+v", s.Suggestions)
	}

	hasIssue := false
	for _, issue := range s.ValidationIssues {
		if strings.Contains(issue, "'When'") {
			hasIssue = true
		}
	}
	if !hasIssue {
		t.Errorf("expected missing-When validation issue, got %v", s.ValidationIssues)
	}
}

func TestExtractImplicitScenario(t *testing.T) {
	b := NewBuilder(nil)
	scenarios := b.Extract("when the user submits the form the system should show a confirmation", nil)

	if len(scenarios) == 0 {
		t.Fatal("expected at least 1 scenario")
	}

	s := scenarios[0]
	if len(s.Given) == 0 || !strings.EqualFold(s.Given[0].Content, "System is ready") {
		t.Errorf("expected default given, got %+v", s.Given)
	}
	if s.Confidence < 0.7 {
		t.Errorf("confidence = %v, want >= 0.7", s.Confidence)
	}
}

func TestExtractNoScenario(t *testing.T) {
	b := NewBuilder(nil)
	if scenarios := b.Extract("the quick brown fox", nil); len(scenarios) != 0 {
		t.Errorf("expected no scenarios, got %+v", scenarios)
	}
}

func TestVagueLanguageLowersConfidenceAndFlags(t *testing.T) {
	b := NewBuilder(nil)

	clean := b.Extract("Given user is logged in. When user clicks save. Then data is saved.", nil)
	vague := b.Extract("Given something is ready. When user clicks save. Then data is saved.", nil)

	if len(clean) != 1 || len(vague) != 1 {
		t.Fatalf("expected 1 scenario each, got %d and %d", len(clean), len(vague))
	}

	if vague[0].Confidence >= clean[0].Confidence {
		t.Errorf("vague confidence %v not lower than clean %v", vague[0].Confidence, clean[0].Confidence)
	}

	flagged := false
	for _, issue := range vague[0].ValidationIssues {
		if strings.Contains(issue, "Vague language") {
			flagged = true
		}
	}
	if !flagged {
		t.Errorf("expected vague-language issue, got %v", vague[0].ValidationIssues)
	}
}

func TestUntestableOutcomeFlagged(t *testing.T) {
	b := NewBuilder(nil)
	scenarios := b.Extract("Given a form. When user submits it. Then user is happy.", nil)

	if len(scenarios) != 1 {
		t.Fatalf("expected 1 scenario, got %d", len(scenarios))
	}

	flagged := false
	for _, issue := range scenarios[0].ValidationIssues {
		if strings.Contains(issue, "Untestable outcome") {
			flagged = true
		}
	}
	if !flagged {
		t.Errorf("expected untestable-outcome issue, got %v", scenarios[0].ValidationIssues)
	}
}

func TestClassifySentences(t *testing.T) {
	b := NewBuilder(nil)

	tests := []struct {
		name     string
		sentence string
		wantRole pattern.Role
		minConf  float64
		maxConf  float64
	}{
		{"explicit given", "given the database is empty", pattern.RoleGiven, 0.9, 0.9},
		{"explicit when", "when the user logs in", pattern.RoleWhen, 0.9, 0.9},
		{"explicit then", "then the dashboard is shown", pattern.RoleThen, 0.9, 0.9},
		{"catch-all when penalized", "the payment occurs", pattern.RoleWhen, 0.4, 0.4},
		{"should classifies as then", "should display a warning", pattern.RoleThen, 0.9, 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ok := b.classify(tt.sentence, nil)
			if !ok {
				t.Fatalf("sentence %q not classified", tt.sentence)
			}
			if c.Role != tt.wantRole {
				t.Errorf("role = %s, want %s", c.Role, tt.wantRole)
			}
			if c.Confidence < tt.minConf-1e-9 || c.Confidence > tt.maxConf+1e-9 {
				t.Errorf("confidence = %v, want in [%v, %v]", c.Confidence, tt.minConf, tt.maxConf)
			}
		})
	}
}

func TestClassifyUnmatchedSentence(t *testing.T) {
	b := NewBuilder(nil)
	if _, ok := b.classify("the quick brown fox", nil); ok {
		t.Error("expected no classification")
	}
}

func TestComponentEntityMentions(t *testing.T) {
	b := NewBuilder(nil)
	scenarios := b.Extract(
		"Given User is authenticated. When User submits the Order. Then the Order is saved.",
		[]string{"User", "Order", "Invoice"},
	)

	if len(scenarios) != 1 {
		t.Fatalf("expected 1 scenario, got %d", len(scenarios))
	}

	got := scenarios[0].Entities
	want := map[string]bool{"User": true, "Order": true}
	for _, e := range got {
		if !want[e] {
			t.Errorf("unexpected entity %q", e)
		}
		delete(want, e)
	}
	if len(want) != 0 {
		t.Errorf("entities not collected: %v (got %v)", want, got)
	}
}

func TestContentRelationships(t *testing.T) {
	rels := contentRelationships("the order contains items and the system sends notifications")

	want := map[string]bool{"order -> items": true, "system -> notifications": true}
	for _, r := range rels {
		delete(want, r)
	}
	if len(want) != 0 {
		t.Errorf("missing relationships %v in %v", want, rels)
	}
}

func TestScenarioTitleFallbacks(t *testing.T) {
	long := strings.Repeat("x", 100)
	s := &Scenario{When: []Component{{Content: "user clicks the very long button name that goes on and on and on"}}}
	title := scenarioTitle(long, s)

	if !strings.HasPrefix(title, "When ") {
		t.Errorf("title = %q, want When-derived", title)
	}
	if len(title) > len("When ")+componentTitleTrim+3 {
		t.Errorf("title too long: %q", title)
	}

	empty := &Scenario{}
	if got := scenarioTitle(long, empty); got != "Untitled Scenario" {
		t.Errorf("title = %q, want Untitled Scenario", got)
	}
}

func TestSuggestRelated(t *testing.T) {
	b := NewBuilder(nil)
	s := &Scenario{
		Title: "Checkout",
		When:  []Component{{Role: pattern.RoleWhen, Content: "user completes checkout"}},
		Then:  []Component{{Role: pattern.RoleThen, Content: "success page is shown"}},
	}

	related := b.SuggestRelated(s)
	if len(related) != 2 {
		t.Fatalf("expected error and boundary suggestions, got %+v", related)
	}
	if !strings.HasPrefix(related[0].Title, "Error case") {
		t.Errorf("first suggestion = %+v, want error case", related[0])
	}
	if !strings.HasPrefix(related[1].Title, "Boundary case") {
		t.Errorf("second suggestion = %+v, want boundary case", related[1])
	}
}

func TestTruncateKeepsRuneBoundaries(t *testing.T) {
	got := truncate("das Benutzerkonto wird für die Prüfung übernommen", 40)
	if !utf8.ValidString(got) {
		t.Errorf("truncate produced invalid UTF-8: %q", got)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncate = %q, want ... suffix", got)
	}
	if short := truncate("kurz", 40); short != "kurz" {
		t.Errorf("truncate(short) = %q", short)
	}
}

func TestBuilderCustomLexicons(t *testing.T) {
	text := "given the cart has items, when the user maybe checks out, then checkout completes speedily"

	defaults := NewBuilder(nil).Extract(text, nil)
	if len(defaults) == 0 {
		t.Fatal("expected a scenario")
	}
	if !hasIssueContaining(defaults[0].ValidationIssues, "maybe") {
		t.Errorf("default lexicon missed %q: %v", "maybe", defaults[0].ValidationIssues)
	}

	custom := NewBuilder(nil,
		WithVagueWords([]string{"speedily"}),
		WithUntestablePhrases([]string{"checkout completes speedily"}),
	).Extract(text, nil)
	if len(custom) == 0 {
		t.Fatal("expected a scenario")
	}
	issues := custom[0].ValidationIssues
	if hasIssueContaining(issues, "maybe") {
		t.Errorf("replaced lexicon still flags %q: %v", "maybe", issues)
	}
	if !hasIssueContaining(issues, "speedily") {
		t.Errorf("custom vague word not flagged: %v", issues)
	}
	if !hasIssueContaining(issues, "Untestable") {
		t.Errorf("custom untestable phrase not flagged: %v", issues)
	}
}

func hasIssueContaining(issues []string, substr string) bool {
	for _, issue := range issues {
		if strings.Contains(issue, substr) {
			return true
		}
	}
	return false
}

func TestValidateNeverFlagsGiven(t *testing.T) {
	s := &Scenario{
		When: []Component{{Role: pattern.RoleWhen, Content: "the user submits the form"}},
		Then: []Component{{Role: pattern.RoleThen, Content: "a confirmation appears"}},
	}
	for _, issue := range validate(s, pattern.VagueWords, pattern.UntestablePhrases) {
		if strings.Contains(strings.ToLower(issue), "given") {
			t.Errorf("unexpected given issue: %q", issue)
		}
	}

	var hasGiven bool
	for _, sug := range completionSuggestions(s) {
		if sug.ComponentType == pattern.RoleGiven {
			hasGiven = true
		}
	}
	if !hasGiven {
		t.Error("expected a given completion suggestion for a scenario without one")
	}
}
