// Package extract turns free-form utterance text into structured entity
// and constraint records. Extraction is deterministic pattern
// classification with fixed per-category confidence weights; it never
// returns an error to the caller. When the enriched pass fails, a
// reduced-fidelity pass over the same tables runs instead.
package extract

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/c360studio/specdialog/pattern"
)

// Entity is a discovered actor, data object, or concept. CanonicalName is
// the merge key: no two entities in one session share it.
type Entity struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	CanonicalName string             `json:"canonical_name"`
	Type          pattern.EntityType `json:"type"`
	Description   string             `json:"description"`
	Confidence    float64            `json:"confidence"`
	Relationships []string           `json:"relationships,omitempty"`
	Synonyms      []string           `json:"synonyms,omitempty"`
}

// maxMergedConfidence caps confidence boosts applied when repeated
// mentions reinforce an entity.
const maxMergedConfidence = 0.95

// contextWindow is how many characters of surrounding text are captured
// as an entity's local description.
const contextWindow = 20

// EntityExtractor classifies noun phrases into entity categories.
type EntityExtractor struct {
	logger        *slog.Logger
	minConfidence float64
}

// NewEntityExtractor creates an entity extractor. A nil logger falls back
// to slog.Default.
func NewEntityExtractor(logger *slog.Logger, opts ...Option) *EntityExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	o := applyOptions(opts)
	return &EntityExtractor{logger: logger, minConfidence: o.minConfidence}
}

// Extract finds entities in text. domainHint optionally names a
// pattern.DomainVocabulary; when empty the domain is auto-detected.
// Extraction never fails: if the enriched pass panics, the bare pattern
// pass runs without context enrichment.
func (x *EntityExtractor) Extract(text, domainHint string) []Entity {
	entities, err := x.extractEnriched(text, domainHint)
	if err != nil {
		x.logger.Warn("enriched extraction failed, using fallback pass", "error", err)
		entities = x.extractBare(text)
	}
	return filterConfidence(entities, x.minConfidence, func(e Entity) float64 { return e.Confidence })
}

func (x *EntityExtractor) extractEnriched(text, domainHint string) (entities []Entity, err error) {
	defer func() {
		if r := recover(); r != nil {
			entities = nil
			err = fmt.Errorf("extraction panic: %v", r)
		}
	}()

	entities = x.patternPass(text, true)

	if domainHint == "" {
		domainHint = pattern.DetectDomain(text)
	}
	if vocab, ok := pattern.Domain(domainHint); ok {
		entities = mergeFound(entities, x.domainPass(text, vocab))
	}

	attachRelationships(text, entities)
	return entities, nil
}

// extractBare is the reduced-fidelity fallback: category tables only, no
// context capture, no domain or relationship enrichment.
func (x *EntityExtractor) extractBare(text string) []Entity {
	return x.patternPass(text, false)
}

// patternPass runs the category tables over the lower-cased text. Rules
// are ordered by descending confidence, so the first classification of a
// canonical name wins.
func (x *EntityExtractor) patternPass(text string, withContext bool) []Entity {
	lower := strings.ToLower(text)

	var entities []Entity
	seen := make(map[string]int) // canonical name -> index in entities

	for _, rule := range pattern.EntityRules() {
		for _, re := range rule.Patterns {
			for _, loc := range re.FindAllStringSubmatchIndex(lower, -1) {
				start, end := matchBounds(loc)
				surface := strings.TrimSpace(lower[start:end])
				if surface == "" {
					continue
				}

				canonical := CanonicalName(surface)
				if idx, ok := seen[canonical]; ok {
					addSynonym(&entities[idx], surface)
					continue
				}

				desc := ""
				if withContext {
					desc = fmt.Sprintf("Extracted from: %q", contextAround(text, start, end))
				}

				entities = append(entities, Entity{
					ID:            newID("ent"),
					Name:          titleCase(surface),
					CanonicalName: canonical,
					Type:          rule.Type,
					Description:   desc,
					Confidence:    rule.Confidence,
				})
				seen[canonical] = len(entities) - 1
			}
		}
	}

	return entities
}

// domainPass extracts domain-vocabulary terms at a fixed mid confidence.
func (x *EntityExtractor) domainPass(text string, vocab pattern.DomainVocabulary) []Entity {
	lower := strings.ToLower(text)

	var entities []Entity
	add := func(term string, etype pattern.EntityType) {
		re := regexp.MustCompile(`\b` + regexp.QuoteMeta(term) + `\b`)
		if !re.MatchString(lower) {
			return
		}
		entities = append(entities, Entity{
			ID:            newID("ent"),
			Name:          titleCase(term),
			CanonicalName: CanonicalName(term),
			Type:          etype,
			Description:   fmt.Sprintf("Domain term (%s): %s", vocab.Name, term),
			Confidence:    0.75,
		})
	}

	for _, term := range vocab.Entities {
		add(term, pattern.EntitySystem)
	}
	for _, term := range vocab.Actions {
		add(term, pattern.EntityAction)
	}
	return entities
}

// attachRelationships scans the text for relationship verb phrasings and
// records relation strings on the matching entities in both directions.
func attachRelationships(text string, entities []Entity) {
	lower := strings.ToLower(text)

	byCanonical := make(map[string]*Entity, len(entities))
	for i := range entities {
		byCanonical[entities[i].CanonicalName] = &entities[i]
	}

	find := func(phrase string) *Entity {
		for _, word := range strings.Fields(phrase) {
			if e, ok := byCanonical[CanonicalName(word)]; ok {
				return e
			}
		}
		return nil
	}

	for _, rule := range pattern.RelationRules() {
		for _, re := range rule.Patterns {
			for _, m := range re.FindAllStringSubmatch(lower, -1) {
				subject := find(m[1])
				object := find(m[2])
				if subject == nil || object == nil || subject == object {
					continue
				}
				addRelation(subject, fmt.Sprintf("%s:%s", rule.Type, object.Name))
				addRelation(object, fmt.Sprintf("inverse_%s:%s", rule.Type, subject.Name))
			}
		}
	}
}

// Merge folds newly extracted entities into the session's existing list.
// Matching is by canonical name or synonym membership, case-insensitive.
// Existing entities are enriched, never replaced by a lower-confidence
// classification.
func Merge(existing, found []Entity) []Entity {
	merged := make([]Entity, len(existing))
	copy(merged, existing)

	for _, f := range found {
		idx := matchExisting(merged, f)
		if idx < 0 {
			merged = append(merged, f)
			continue
		}

		e := &merged[idx]
		for _, rel := range f.Relationships {
			addRelation(e, rel)
		}
		for _, syn := range f.Synonyms {
			addSynonym(e, syn)
		}
		if !strings.EqualFold(f.Name, e.Name) {
			addSynonym(e, strings.ToLower(f.Name))
		}
		if f.Confidence > e.Confidence {
			e.Confidence = f.Confidence
		} else if e.Confidence < maxMergedConfidence {
			// Repeated mentions reinforce the entity.
			e.Confidence = min(maxMergedConfidence, e.Confidence+0.05)
		}
	}

	return merged
}

// mergeFound dedupes within one extraction pass, keeping the
// higher-confidence classification per canonical name.
func mergeFound(base, extra []Entity) []Entity {
	out := base
	for _, e := range extra {
		idx := matchExisting(out, e)
		if idx < 0 {
			out = append(out, e)
			continue
		}
		if e.Confidence > out[idx].Confidence {
			e.Relationships = append(e.Relationships, out[idx].Relationships...)
			e.Synonyms = append(e.Synonyms, out[idx].Synonyms...)
			out[idx] = e
		}
	}
	return out
}

func matchExisting(entities []Entity, candidate Entity) int {
	for i := range entities {
		if strings.EqualFold(entities[i].CanonicalName, candidate.CanonicalName) {
			return i
		}
		for _, syn := range entities[i].Synonyms {
			if strings.EqualFold(CanonicalName(syn), candidate.CanonicalName) {
				return i
			}
		}
	}
	return -1
}

var nonWordRe = regexp.MustCompile(`[^\w\s-]`)

// CanonicalName normalizes a surface form into the merge key: lower-cased,
// punctuation stripped, spaces collapsed to underscores, synonym groups
// folded to their canonical member.
func CanonicalName(name string) string {
	if canonical, ok := pattern.CanonicalGroup(name); ok {
		return canonical
	}
	n := strings.ToLower(strings.TrimSpace(name))
	n = nonWordRe.ReplaceAllString(n, "")
	n = strings.ReplaceAll(n, "-", "_")
	return strings.Join(strings.Fields(n), "_")
}

func addRelation(e *Entity, rel string) {
	for _, existing := range e.Relationships {
		if existing == rel {
			return
		}
	}
	e.Relationships = append(e.Relationships, rel)
}

func addSynonym(e *Entity, surface string) {
	surface = strings.ToLower(strings.TrimSpace(surface))
	if surface == "" || strings.EqualFold(surface, e.Name) {
		return
	}
	for _, existing := range e.Synonyms {
		if existing == surface {
			return
		}
	}
	e.Synonyms = append(e.Synonyms, surface)
}

// contextAround returns the text surrounding a match, clamped to the
// context window.
func contextAround(text string, start, end int) string {
	lo := start - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := end + contextWindow
	if hi > len(text) {
		hi = len(text)
	}
	return strings.TrimSpace(text[lo:hi])
}

func matchBounds(loc []int) (int, int) {
	// Prefer the first capture group when present.
	if len(loc) >= 4 && loc[2] >= 0 {
		return loc[2], loc[3]
	}
	return loc[0], loc[1]
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func newID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}
