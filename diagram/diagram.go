// Package diagram projects accumulated session state into positioned
// node/edge graphs. Diagrams are derived views, recomputed on demand;
// conversation state stays authoritative and is never mutated here.
package diagram

import "github.com/google/uuid"

// Diagram types.
const (
	TypeEntityRelationship = "entity_relationship"
	TypeScenarioFlow       = "scenario_flow"
	TypeArchitecture       = "architecture"
)

// Node is a positioned element of a diagram.
type Node struct {
	ID       string         `json:"id"`
	Label    string         `json:"label"`
	Type     string         `json:"type"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
	Color    string         `json:"color"`
	Shape    string         `json:"shape"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Edge connects two nodes.
type Edge struct {
	ID       string         `json:"id"`
	Source   string         `json:"source"`
	Target   string         `json:"target"`
	Label    string         `json:"label,omitempty"`
	Type     string         `json:"type"`
	Style    string         `json:"style"`
	Color    string         `json:"color"`
	Animated bool           `json:"animated"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Layout describes how a diagram's nodes were positioned.
type Layout struct {
	Algorithm string             `json:"algorithm"`
	Spacing   float64            `json:"spacing"`
	CenterX   float64            `json:"center_x"`
	CenterY   float64            `json:"center_y"`
	Params    map[string]float64 `json:"params,omitempty"`
}

// Diagram is a complete rendered projection of session state.
type Diagram struct {
	ID       string         `json:"id"`
	Title    string         `json:"title"`
	Type     string         `json:"type"`
	Nodes    []Node         `json:"nodes"`
	Edges    []Edge         `json:"edges"`
	Layout   Layout         `json:"layout"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Statistics summarizes a diagram for API responses.
type Statistics struct {
	TotalNodes      int            `json:"total_nodes"`
	TotalEdges      int            `json:"total_edges"`
	NodeTypes       map[string]int `json:"node_types"`
	EdgeTypes       map[string]int `json:"edge_types"`
	LayoutType      string         `json:"layout_type"`
	ComplexityScore float64        `json:"complexity_score"`
}

// Stats computes per-type counts and the aggregate complexity score.
// Complexity weighs edges at half a node each.
func Stats(d *Diagram) Statistics {
	s := Statistics{
		TotalNodes: len(d.Nodes),
		TotalEdges: len(d.Edges),
		NodeTypes:  make(map[string]int),
		EdgeTypes:  make(map[string]int),
		LayoutType: d.Layout.Algorithm,
	}
	for _, n := range d.Nodes {
		s.NodeTypes[n.Type]++
	}
	for _, e := range d.Edges {
		s.EdgeTypes[e.Type]++
	}
	s.ComplexityScore = float64(s.TotalNodes) + float64(s.TotalEdges)*0.5
	return s
}

func newDiagramID() string {
	return "d-" + uuid.NewString()[:8]
}
