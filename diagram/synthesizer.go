package diagram

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/c360studio/specdialog/extract"
	"github.com/c360studio/specdialog/pattern"
	"github.com/c360studio/specdialog/scenario"
)

// ErrUnsupportedDiagramType is returned for a type outside the known set.
var ErrUnsupportedDiagramType = errors.New("unsupported diagram type")

// TypeAuto asks the synthesizer to pick a diagram type from the state.
const TypeAuto = "auto"

const (
	autoEdgeConfidence    = 0.7
	scenarioOverlapMin    = 2
	phaseLabelMax         = 30
	entitySpacing         = 180.0
	flowSpacing           = 200.0
	architectureSpacing   = 160.0
	annotationX0          = 600.0
	annotationXStep       = 100.0
	annotationY           = 50.0
	interactionNameMinLen = 3
)

// entityNodeTypes maps extraction categories onto the visual palette.
var entityNodeTypes = map[pattern.EntityType]string{
	pattern.EntityActor:    "actor",
	pattern.EntityData:     "data",
	pattern.EntitySystem:   "system",
	pattern.EntityBusiness: "entity",
	pattern.EntityAction:   "process",
}

// Input is the state a diagram is synthesized from. Callers pass a
// snapshot; the synthesizer never mutates it.
type Input struct {
	Entities    []extract.Entity
	Scenarios   []scenario.Scenario
	Constraints []extract.Constraint
}

// Synthesizer builds diagrams from session state snapshots.
type Synthesizer struct {
	logger      *slog.Logger
	spacing     float64
	gridColumns int
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithSpacing overrides the per-type default node spacing for every
// diagram the synthesizer generates.
func WithSpacing(spacing float64) Option {
	return func(s *Synthesizer) {
		if spacing > 0 {
			s.spacing = spacing
		}
	}
}

// WithGridColumns sets the column count used by grid layouts.
func WithGridColumns(columns int) Option {
	return func(s *Synthesizer) {
		if columns > 0 {
			s.gridColumns = columns
		}
	}
}

// NewSynthesizer creates a diagram synthesizer.
func NewSynthesizer(logger *slog.Logger, opts ...Option) *Synthesizer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Synthesizer{logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// layoutFor builds a layout with the synthesizer's overrides applied
// over the diagram type's default spacing.
func (s *Synthesizer) layoutFor(algorithm string, spacing float64) Layout {
	if s.spacing > 0 {
		spacing = s.spacing
	}
	layout := NewLayout(algorithm, spacing)
	if s.gridColumns > 0 {
		layout.Params["columns"] = float64(s.gridColumns)
	}
	return layout
}

// Generate builds a diagram of the requested type. TypeAuto selects the
// type from what the state contains: scenario flow once two scenarios
// exist, entity relationships once three entities exist, architecture
// when there is at least one of each, entity relationships otherwise.
func (s *Synthesizer) Generate(in Input, diagramType string) (*Diagram, error) {
	if diagramType == "" || diagramType == TypeAuto {
		diagramType = s.selectType(in)
	}

	switch diagramType {
	case TypeEntityRelationship:
		return s.EntityRelationship(in.Entities), nil
	case TypeScenarioFlow:
		return s.ScenarioFlow(in.Scenarios), nil
	case TypeArchitecture:
		return s.Architecture(in), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedDiagramType, diagramType)
	}
}

func (s *Synthesizer) selectType(in Input) string {
	switch {
	case len(in.Scenarios) >= 2:
		return TypeScenarioFlow
	case len(in.Entities) >= 3:
		return TypeEntityRelationship
	case len(in.Entities) >= 1 && len(in.Scenarios) >= 1:
		return TypeArchitecture
	default:
		return TypeEntityRelationship
	}
}

// EntityRelationship renders entities as nodes with explicit and
// auto-detected relationship edges, positioned by force layout.
func (s *Synthesizer) EntityRelationship(entities []extract.Entity) *Diagram {
	nodes := make([]Node, 0, len(entities))
	for _, e := range entities {
		nodes = append(nodes, entityNode(e))
	}

	edges := explicitEdges(entities)
	autoEdges := detectEntityEdges(entities, edges)
	edges = append(edges, autoEdges...)

	layout := s.layoutFor(LayoutForce, entitySpacing)
	ApplyLayout(nodes, edges, layout)

	s.logger.Debug("generated entity relationship diagram",
		"nodes", len(nodes), "edges", len(edges), "auto_edges", len(autoEdges))

	return &Diagram{
		ID:     newDiagramID(),
		Title:  "Entity Relationships",
		Type:   TypeEntityRelationship,
		Nodes:  nodes,
		Edges:  edges,
		Layout: layout,
		Metadata: map[string]any{
			"generated_from":     "entities",
			"auto_relationships": len(autoEdges),
		},
	}
}

// ScenarioFlow renders each scenario as a given/when/then row with
// animated flow edges, plus dashed "enables" edges where one scenario's
// outcome overlaps another's precondition.
func (s *Synthesizer) ScenarioFlow(scenarios []scenario.Scenario) *Diagram {
	var nodes []Node
	var edges []Edge

	for _, sc := range scenarios {
		given := phaseNode(sc.ID, "given", "precondition", "Given: "+roleText(sc.Given))
		when := phaseNode(sc.ID, "when", "trigger", "When: "+roleText(sc.When))
		then := phaseNode(sc.ID, "then", "outcome", "Then: "+roleText(sc.Then))
		nodes = append(nodes, given, when, then)

		edges = append(edges,
			flowEdge(sc.ID+"_flow_1", given.ID, when.ID, "triggers"),
			flowEdge(sc.ID+"_flow_2", when.ID, then.ID, "results in"),
		)
	}

	connections := detectScenarioConnections(scenarios)
	edges = append(edges, connections...)

	layout := s.layoutFor(LayoutHierarchical, flowSpacing)
	ApplyLayout(nodes, edges, layout)

	s.logger.Debug("generated scenario flow diagram",
		"scenarios", len(scenarios), "connections", len(connections))

	return &Diagram{
		ID:     newDiagramID(),
		Title:  "Scenario Flow",
		Type:   TypeScenarioFlow,
		Nodes:  nodes,
		Edges:  edges,
		Layout: layout,
		Metadata: map[string]any{
			"scenarios":        len(scenarios),
			"auto_connections": len(connections),
		},
	}
}

// Architecture renders actors, systems and data stores with interaction
// edges derived from scenario mentions, and pins constraint annotations
// along the top.
func (s *Synthesizer) Architecture(in Input) *Diagram {
	var nodes []Node
	counts := map[string]int{}

	// Data stores render as cylinders here rather than the diamond used
	// in relationship diagrams.
	architectureTypes := map[pattern.EntityType]string{
		pattern.EntityActor:  "actor",
		pattern.EntitySystem: "system",
		pattern.EntityData:   "database",
	}

	for _, e := range in.Entities {
		nodeType, ok := architectureTypes[e.Type]
		if !ok {
			continue
		}
		n := entityNode(e)
		n.Type = nodeType
		style := styleFor(nodeType)
		n.Width, n.Height = style.Width, style.Height
		n.Color, n.Shape = style.Color, style.Shape
		n.Metadata["layer"] = architecturalLayer(e)
		nodes = append(nodes, n)
		counts[nodeType]++
	}

	interactions := detectInteractions(in.Scenarios, nodes)

	layout := s.layoutFor(LayoutForce, architectureSpacing)
	ApplyLayout(nodes, interactions, layout)

	// Annotations are pinned after layout so they stay out of the graph.
	for i, c := range in.Constraints {
		nodes = append(nodes, constraintNode(c, i))
	}

	s.logger.Debug("generated architecture diagram",
		"actors", counts["actor"], "systems", counts["system"],
		"data_stores", counts["database"], "interactions", len(interactions))

	return &Diagram{
		ID:     newDiagramID(),
		Title:  "System Architecture",
		Type:   TypeArchitecture,
		Nodes:  nodes,
		Edges:  interactions,
		Layout: layout,
		Metadata: map[string]any{
			"actors":       counts["actor"],
			"systems":      counts["system"],
			"data_stores":  counts["database"],
			"interactions": len(interactions),
			"constraints":  len(in.Constraints),
		},
	}
}

func entityNode(e extract.Entity) Node {
	nodeType, ok := entityNodeTypes[e.Type]
	if !ok {
		nodeType = "entity"
	}
	style := styleFor(nodeType)
	return Node{
		ID:     e.ID,
		Label:  e.Name,
		Type:   nodeType,
		Width:  style.Width,
		Height: style.Height,
		Color:  style.Color,
		Shape:  style.Shape,
		Metadata: map[string]any{
			"description": e.Description,
			"confidence":  e.Confidence,
			"source":      "conversation",
		},
	}
}

func phaseNode(scenarioID, phase, nodeType, label string) Node {
	style := styleFor(nodeType)
	return Node{
		ID:     scenarioID + "_" + phase,
		Label:  truncateLabel(label, phaseLabelMax),
		Type:   nodeType,
		Width:  style.Width,
		Height: style.Height,
		Color:  style.Color,
		Shape:  style.Shape,
	}
}

func constraintNode(c extract.Constraint, idx int) Node {
	return Node{
		ID:     c.ID,
		Label:  c.Name,
		Type:   "constraint",
		X:      annotationX0 + float64(idx)*annotationXStep,
		Y:      annotationY,
		Width:  constraintAnnotationStyle.Width,
		Height: constraintAnnotationStyle.Height,
		Color:  constraintAnnotationStyle.Color,
		Shape:  constraintAnnotationStyle.Shape,
		Metadata: map[string]any{
			"constraint_type": string(c.Category),
			"requirement":     c.Requirement,
			"priority":        string(c.Priority),
		},
	}
}

func flowEdge(id, source, target, label string) Edge {
	return Edge{
		ID:       id,
		Source:   source,
		Target:   target,
		Label:    label,
		Type:     "flow",
		Style:    flowStyle.Style,
		Color:    flowStyle.Color,
		Animated: true,
	}
}

// explicitEdges materializes relationships recorded during extraction.
// Inverse records are skipped so each relation renders once.
func explicitEdges(entities []extract.Entity) []Edge {
	byName := make(map[string]string, len(entities))
	for _, e := range entities {
		byName[strings.ToLower(e.Name)] = e.ID
	}

	var edges []Edge
	seen := make(map[string]bool)
	for _, e := range entities {
		for _, rel := range e.Relationships {
			verb, target, ok := strings.Cut(rel, ":")
			if !ok || strings.HasPrefix(verb, "inverse_") {
				continue
			}
			targetID, ok := byName[strings.ToLower(target)]
			if !ok || targetID == e.ID {
				continue
			}
			key := e.ID + "|" + verb + "|" + targetID
			if seen[key] {
				continue
			}
			seen[key] = true

			style := relationshipStyleFor(relationTypeFor(verb))
			edges = append(edges, Edge{
				ID:     fmt.Sprintf("rel_%d", len(edges)),
				Source: e.ID,
				Target: targetID,
				Label:  strings.ReplaceAll(verb, "_", " "),
				Type:   "relationship",
				Style:  style.Style,
				Color:  style.Color,
			})
		}
	}
	return edges
}

func relationTypeFor(verb string) string {
	switch verb {
	case "uses", "contains", "inherits", "depends_on":
		return verb
	default:
		return "relates_to"
	}
}

// detectEntityEdges infers relationships from entity names appearing in
// other entities' descriptions. Pairs already connected explicitly are
// skipped; every inferred edge carries auto_detected metadata.
func detectEntityEdges(entities []extract.Entity, existing []Edge) []Edge {
	connected := make(map[string]bool)
	for _, e := range existing {
		connected[pairKey(e.Source, e.Target)] = true
	}

	var edges []Edge
	for i := range entities {
		for j := i + 1; j < len(entities); j++ {
			a, b := entities[i], entities[j]
			if connected[pairKey(a.ID, b.ID)] {
				continue
			}

			relType := inferRelation(a, b)
			if relType == "" {
				relType = inferRelation(b, a)
				a, b = b, a
			}
			if relType == "" {
				continue
			}

			style := relationshipStyleFor(relType)
			edges = append(edges, Edge{
				ID:     fmt.Sprintf("auto_rel_%d_%d", i, j),
				Source: a.ID,
				Target: b.ID,
				Label:  strings.ReplaceAll(relType, "_", " "),
				Type:   "auto_relationship",
				Style:  style.Style,
				Color:  style.Color,
				Metadata: map[string]any{
					"auto_detected": true,
					"confidence":    autoEdgeConfidence,
				},
			})
		}
	}
	return edges
}

// inferRelation checks whether b's name occurs in a's description and
// classifies the relation from a's wording.
func inferRelation(a, b extract.Entity) string {
	desc := strings.ToLower(a.Description)
	name := strings.ToLower(b.Name)
	if name == "" || !strings.Contains(desc, name) {
		return ""
	}
	switch {
	case strings.Contains(desc, "contains") || strings.Contains(desc, "has"):
		return "contains"
	case strings.Contains(desc, "uses") || strings.Contains(desc, "utilizes"):
		return "uses"
	default:
		return "relates_to"
	}
}

// detectScenarioConnections links scenarios whose outcome wording
// overlaps another scenario's precondition by more than two words.
func detectScenarioConnections(scenarios []scenario.Scenario) []Edge {
	var edges []Edge
	for i := range scenarios {
		for j := range scenarios {
			if i == j {
				continue
			}
			then := wordSet(roleText(scenarios[i].Then))
			given := wordSet(roleText(scenarios[j].Given))

			overlap := 0
			for w := range then {
				if given[w] {
					overlap++
				}
			}
			if overlap <= scenarioOverlapMin {
				continue
			}

			edges = append(edges, Edge{
				ID:     fmt.Sprintf("scenario_connection_%d_%d", i, j),
				Source: scenarios[i].ID + "_then",
				Target: scenarios[j].ID + "_given",
				Label:  "enables",
				Type:   "scenario_flow",
				Style:  "dashed",
				Color:  "#8b5cf6",
				Metadata: map[string]any{
					"overlap_score": overlap,
					"auto_detected": true,
				},
			})
		}
	}
	return edges
}

// detectInteractions scans scenario trigger/outcome text for mentions of
// architecture nodes and connects co-mentioned pairs.
func detectInteractions(scenarios []scenario.Scenario, nodes []Node) []Edge {
	type mention struct {
		word   string
		nodeID string
	}
	var lexicon []mention
	for _, n := range nodes {
		for _, w := range strings.Fields(strings.ToLower(n.Label)) {
			if len(w) > interactionNameMinLen {
				lexicon = append(lexicon, mention{word: w, nodeID: n.ID})
			}
		}
	}

	var edges []Edge
	for i, sc := range scenarios {
		text := strings.ToLower(roleText(sc.When) + " " + roleText(sc.Then))

		var mentioned []string
		seen := make(map[string]bool)
		for _, m := range lexicon {
			if !seen[m.nodeID] && strings.Contains(text, m.word) {
				seen[m.nodeID] = true
				mentioned = append(mentioned, m.nodeID)
			}
		}

		for j := 0; j < len(mentioned); j++ {
			for k := j + 1; k < len(mentioned); k++ {
				edges = append(edges, Edge{
					ID:     fmt.Sprintf("interaction_%d_%d_%d", i, j, k),
					Source: mentioned[j],
					Target: mentioned[k],
					Label:  "interacts via " + sc.Title,
					Type:   "interaction",
					Style:  "dashed",
					Color:  "#6b7280",
					Metadata: map[string]any{
						"scenario_id":      sc.ID,
						"interaction_type": "derived",
					},
				})
			}
		}
	}
	return edges
}

var layerKeywords = map[string][]string{
	"presentation": {"ui", "interface", "frontend", "web", "mobile", "app"},
	"data":         {"database", "storage", "data", "repository", "cache"},
}

// architecturalLayer places a component in presentation, data, or
// business by keyword, defaulting to business.
func architecturalLayer(e extract.Entity) string {
	text := strings.ToLower(e.Name + " " + e.Description)
	for _, layer := range []string{"presentation", "data"} {
		for _, kw := range layerKeywords[layer] {
			if strings.Contains(text, kw) {
				return layer
			}
		}
	}
	return "business"
}

func roleText(components []scenario.Component) string {
	parts := make([]string, 0, len(components))
	for _, c := range components {
		parts = append(parts, c.Content)
	}
	return strings.Join(parts, " ")
}

func wordSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		set[w] = true
	}
	return set
}

func truncateLabel(s string, max int) string {
	prefixLen := 0
	if i := strings.Index(s, ": "); i >= 0 {
		prefixLen = i + 2
	}
	if len(s)-prefixLen <= max {
		return s
	}
	return s[:prefixLen+max] + "..."
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}
