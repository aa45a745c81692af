package scenario

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/c360studio/specdialog/pattern"
)

// Component confidence scoring.
const (
	baseConfidence     = 0.7
	explicitBoost      = 0.2
	catchAllPenalty    = 0.3
	minConfidence      = 0.1
	explicitScenario   = 0.95
	implicitScenario   = 0.8
	vagueTermPenalty   = 0.1
	maxTitleLen        = 80
	componentTitleTrim = 50
)

// Builder assembles scenarios from conversational text.
type Builder struct {
	logger            *slog.Logger
	vagueWords        []string
	untestablePhrases []string
}

// Option configures a Builder.
type Option func(*Builder)

// WithVagueWords replaces the default vague-language lexicon used for
// confidence penalties and validation.
func WithVagueWords(words []string) Option {
	return func(b *Builder) {
		if len(words) > 0 {
			b.vagueWords = words
		}
	}
}

// WithUntestablePhrases replaces the default untestable-outcome lexicon
// used for validation.
func WithUntestablePhrases(phrases []string) Option {
	return func(b *Builder) {
		if len(phrases) > 0 {
			b.untestablePhrases = phrases
		}
	}
}

// NewBuilder creates a scenario builder. A nil logger falls back to
// slog.Default.
func NewBuilder(logger *slog.Logger, opts ...Option) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Builder{
		logger:            logger,
		vagueWords:        pattern.VagueWords,
		untestablePhrases: pattern.UntestablePhrases,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Extract parses text into scenarios. entityNames, when provided, are
// matched against component content to record which entities a scenario
// touches. Three passes run in order and the first that produces
// scenarios wins: explicit ordered Given/When/Then spans, implicit
// condition/outcome phrasings, and per-sentence role classification.
func (b *Builder) Extract(text string, entityNames []string) []Scenario {
	normalized := normalize(text)

	if scenarios := b.explicitPass(normalized, entityNames); len(scenarios) > 0 {
		return scenarios
	}
	if scenarios := b.implicitPass(normalized, entityNames); len(scenarios) > 0 {
		return scenarios
	}
	return b.sentencePass(normalized, entityNames)
}

// explicitPass parses full ordered Given...When...Then spans.
func (b *Builder) explicitPass(text string, entityNames []string) []Scenario {
	var scenarios []Scenario
	for _, m := range pattern.ExplicitScenarioRe.FindAllStringSubmatch(text, -1) {
		given := trimClause(m[1])
		when := trimClause(m[2])
		then := trimClause(m[3])
		if given == "" || when == "" || then == "" {
			continue
		}

		s := b.assemble(text, entityNames, explicitScenario,
			b.component(pattern.RoleGiven, given, explicitScenario, entityNames),
			b.component(pattern.RoleWhen, when, explicitScenario, entityNames),
			b.component(pattern.RoleThen, then, explicitScenario, entityNames),
		)
		scenarios = append(scenarios, s)
	}
	return scenarios
}

// implicitPass recognizes condition/outcome pairs and synthesizes a
// scenario with a default precondition.
func (b *Builder) implicitPass(text string, entityNames []string) []Scenario {
	var scenarios []Scenario
	for _, re := range pattern.ImplicitScenarioRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			condition := trimClause(m[1])
			outcome := trimClause(m[2])
			if condition == "" || outcome == "" {
				continue
			}

			s := b.assemble(text, entityNames, implicitScenario,
				b.component(pattern.RoleGiven, "System is ready", implicitScenario, nil),
				b.component(pattern.RoleWhen, condition, implicitScenario, entityNames),
				b.component(pattern.RoleThen, outcome, implicitScenario, entityNames),
			)
			scenarios = append(scenarios, s)
		}
	}
	return scenarios
}

// sentencePass classifies each sentence into a role and assembles one
// scenario from whatever components the block yields.
func (b *Builder) sentencePass(text string, entityNames []string) []Scenario {
	var components []Component
	for _, sentence := range splitSentences(text) {
		if c, ok := b.classify(sentence, entityNames); ok {
			components = append(components, c)
		}
	}
	if len(components) == 0 {
		return nil
	}

	s := b.assemble(text, entityNames, 0, components...)
	return []Scenario{s}
}

// classify matches a sentence against the role families in given, when,
// then order. A sentence matches at most one role.
func (b *Builder) classify(sentence string, entityNames []string) (Component, bool) {
	sentence = strings.TrimSpace(strings.ToLower(sentence))
	if sentence == "" {
		return Component{}, false
	}

	for _, role := range []pattern.Role{pattern.RoleGiven, pattern.RoleWhen, pattern.RoleThen} {
		for _, rp := range pattern.RolePatterns(role) {
			m := rp.Re.FindStringSubmatch(sentence)
			if m == nil {
				continue
			}
			content := strings.TrimSpace(m[1])

			confidence := baseConfidence
			for _, kw := range pattern.ExplicitKeywords(role) {
				if strings.Contains(sentence, kw) {
					confidence += explicitBoost
					break
				}
			}
			if rp.CatchAll {
				confidence -= catchAllPenalty
			}
			confidence = clamp(confidence, minConfidence, 1.0)

			c := b.component(role, content, confidence, entityNames)
			return c, true
		}
	}

	return Component{}, false
}

// component builds a component and resolves the entities and
// relationships its content mentions.
func (b *Builder) component(role pattern.Role, content string, confidence float64, entityNames []string) Component {
	lower := strings.ToLower(content)

	var mentioned []string
	for _, name := range entityNames {
		if strings.Contains(lower, strings.ToLower(name)) {
			mentioned = append(mentioned, name)
		}
	}

	return Component{
		Role:          role,
		Content:       content,
		Confidence:    confidence,
		Entities:      mentioned,
		Relationships: contentRelationships(lower),
	}
}

// assemble groups components by role, scores the scenario, and attaches
// suggestions and validation issues. baseConf of 0 means confidence is
// the mean of component confidences.
func (b *Builder) assemble(block string, entityNames []string, baseConf float64, components ...Component) Scenario {
	s := Scenario{
		ID:     newID(),
		Status: StatusDraft,
	}

	for _, c := range components {
		switch c.Role {
		case pattern.RoleGiven:
			s.Given = append(s.Given, c)
		case pattern.RoleWhen:
			s.When = append(s.When, c)
		case pattern.RoleThen:
			s.Then = append(s.Then, c)
		}
	}

	confidence := baseConf
	if confidence == 0 {
		sum := 0.0
		for _, c := range components {
			sum += c.Confidence
		}
		confidence = sum / float64(len(components))
	}

	// Vague language reduces confidence in proportion to the matches.
	vague := countVague(s.components(), b.vagueWords)
	confidence = clamp(confidence-float64(vague)*vagueTermPenalty, minConfidence, 1.0)
	s.Confidence = confidence

	s.Title = scenarioTitle(block, &s)
	s.Entities = collectEntities(s.components())
	s.Suggestions = completionSuggestions(&s)
	s.ValidationIssues = validate(&s, b.vagueWords, b.untestablePhrases)

	return s
}

var sentenceSplitRe = regexp.MustCompile(`[.!?\n]+`)

func splitSentences(text string) []string {
	var out []string
	for _, s := range sentenceSplitRe.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func normalize(text string) string {
	text = strings.ToLower(text)
	for _, r := range pattern.NormalizeReplacements {
		text = strings.ReplaceAll(text, r[0], r[1])
	}
	return text
}

func trimClause(s string) string {
	return strings.Trim(strings.TrimSpace(s), ".,")
}

// scenarioTitle prefers the block's first sentence when short, then falls
// back to deriving from the strongest component. Always non-empty.
func scenarioTitle(block string, s *Scenario) string {
	first, _, _ := strings.Cut(strings.TrimSpace(block), ".")
	if first = strings.TrimSpace(first); first != "" && len(first) < maxTitleLen {
		return capitalize(first)
	}

	switch {
	case len(s.When) > 0:
		return "When " + truncate(s.When[0].Content, componentTitleTrim)
	case len(s.Then) > 0:
		return "Should " + truncate(s.Then[0].Content, componentTitleTrim)
	case len(s.Given) > 0:
		return "Given " + truncate(s.Given[0].Content, componentTitleTrim)
	}
	return "Untitled Scenario"
}

var contentRelationRes = []*regexp.Regexp{
	regexp.MustCompile(`(\w+)\s+(?:has|contains|includes)\s+(\w+)`),
	regexp.MustCompile(`(\w+)\s+(?:sends|receives|processes)\s+(\w+)`),
	regexp.MustCompile(`(\w+)\s+(?:is|becomes|remains)\s+(\w+)`),
	regexp.MustCompile(`(\w+)\s+(?:triggers|causes|initiates)\s+(\w+)`),
}

func contentRelationships(lower string) []string {
	var rels []string
	for _, re := range contentRelationRes {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			rel := fmt.Sprintf("%s -> %s", m[1], m[2])
			dup := false
			for _, existing := range rels {
				if existing == rel {
					dup = true
					break
				}
			}
			if !dup {
				rels = append(rels, rel)
			}
		}
	}
	return rels
}

func countVague(components []Component, vagueWords []string) int {
	count := 0
	for _, c := range components {
		lower := strings.ToLower(c.Content)
		for _, w := range vagueWords {
			if strings.Contains(lower, w) {
				count++
			}
		}
	}
	return count
}

func collectEntities(components []Component) []string {
	var out []string
	seen := make(map[string]bool)
	for _, c := range components {
		for _, e := range c.Entities {
			if !seen[e] {
				seen[e] = true
				out = append(out, e)
			}
		}
	}
	return out
}

// truncate cuts s to at most n runes, never splitting a rune.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n]) + "..."
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
