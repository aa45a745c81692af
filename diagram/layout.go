package diagram

import (
	"math"
	"strings"
)

// Layout algorithm names.
const (
	LayoutForce        = "force"
	LayoutHierarchical = "hierarchical"
	LayoutCircular     = "circular"
	LayoutGrid         = "grid"
)

// Default layout geometry.
const (
	defaultSpacing = 150.0
	defaultCenterX = 400.0
	defaultCenterY = 300.0

	forceIterations = 50.0
	forceRepulsion  = 300.0
	forceAttraction = 0.01
	forceSeedRadius = 200.0
	hierarchicalX0  = 150.0
	hierarchicalY0  = 100.0
	layerSeparation = 150.0
	circularRadius  = 150.0
	gridColumns     = 4.0
	gridCellSpacing = 150.0
)

// NewLayout builds a layout descriptor with defaults filled in.
func NewLayout(algorithm string, spacing float64) Layout {
	if spacing <= 0 {
		spacing = defaultSpacing
	}
	return Layout{
		Algorithm: algorithm,
		Spacing:   spacing,
		CenterX:   defaultCenterX,
		CenterY:   defaultCenterY,
		Params:    make(map[string]float64),
	}
}

func (l Layout) param(name string, fallback float64) float64 {
	if v, ok := l.Params[name]; ok && v > 0 {
		return v
	}
	return fallback
}

// ApplyLayout positions nodes in place according to the layout's
// algorithm. Positions are a pure function of node and edge order, so
// identical input produces identical output.
func ApplyLayout(nodes []Node, edges []Edge, layout Layout) {
	switch layout.Algorithm {
	case LayoutForce:
		applyForce(nodes, edges, layout)
	case LayoutHierarchical:
		applyHierarchical(nodes, layout)
	case LayoutCircular:
		applyCircular(nodes, layout)
	default:
		applyGrid(nodes, layout)
	}
}

// applyForce runs iterative relaxation: pairwise repulsion falling off
// with the square of distance, and spring attraction along edges pulling
// endpoints toward the layout spacing. Nodes are seeded evenly on a
// circle so the result is reproducible.
func applyForce(nodes []Node, edges []Edge, layout Layout) {
	if len(nodes) == 0 {
		return
	}

	for i := range nodes {
		angle := 2 * math.Pi * float64(i) / float64(len(nodes))
		nodes[i].X = layout.CenterX + forceSeedRadius*math.Cos(angle)
		nodes[i].Y = layout.CenterY + forceSeedRadius*math.Sin(angle)
	}

	index := make(map[string]int, len(nodes))
	for i, n := range nodes {
		index[n.ID] = i
	}

	type spring struct{ a, b int }
	var springs []spring
	for _, e := range edges {
		a, okA := index[e.Source]
		b, okB := index[e.Target]
		if okA && okB && a != b {
			springs = append(springs, spring{a, b})
		}
	}

	repulsion := layout.param("repulsion", forceRepulsion)
	attraction := layout.param("attraction", forceAttraction)
	iterations := int(layout.param("iterations", forceIterations))

	for iter := 0; iter < iterations; iter++ {
		for i := range nodes {
			for j := range nodes {
				if i == j {
					continue
				}
				dx := nodes[i].X - nodes[j].X
				dy := nodes[i].Y - nodes[j].Y
				dist := math.Hypot(dx, dy) + 0.1

				f := repulsion / (dist * dist)
				nodes[i].X += f * dx / dist
				nodes[i].Y += f * dy / dist
			}
		}

		for _, s := range springs {
			dx := nodes[s.b].X - nodes[s.a].X
			dy := nodes[s.b].Y - nodes[s.a].Y
			dist := math.Hypot(dx, dy) + 0.1

			// Spring force toward the target edge length.
			f := attraction * (dist - layout.Spacing)
			fx := f * dx / dist
			fy := f * dy / dist
			nodes[s.a].X += fx
			nodes[s.a].Y += fy
			nodes[s.b].X -= fx
			nodes[s.b].Y -= fy
		}
	}
}

// applyHierarchical lays scenario nodes out in rows: one row per
// scenario, columns ordered given < when < then. Row membership comes
// from the node id prefix shared by a scenario's three phase nodes.
func applyHierarchical(nodes []Node, layout Layout) {
	separation := layout.param("layer_separation", layerSeparation)

	rowOrder := make([]string, 0)
	rows := make(map[string][]int)
	for i, n := range nodes {
		key := rowKey(n.ID)
		if _, ok := rows[key]; !ok {
			rowOrder = append(rowOrder, key)
		}
		rows[key] = append(rows[key], i)
	}

	y := hierarchicalY0
	for _, key := range rowOrder {
		members := rows[key]
		sortByPhase(nodes, members)

		x := hierarchicalX0
		for _, i := range members {
			nodes[i].X = x
			nodes[i].Y = y
			x += layout.Spacing
		}
		y += separation
	}
}

var phaseColumn = map[string]int{"given": 0, "when": 1, "then": 2}

func rowKey(id string) string {
	if i := strings.LastIndex(id, "_"); i > 0 {
		return id[:i]
	}
	return id
}

func phaseOf(id string) int {
	if i := strings.LastIndex(id, "_"); i >= 0 {
		if col, ok := phaseColumn[id[i+1:]]; ok {
			return col
		}
	}
	return len(phaseColumn)
}

// sortByPhase orders a row's node indices by given/when/then column.
// Rows have at most a handful of members so insertion sort is enough.
func sortByPhase(nodes []Node, members []int) {
	for i := 1; i < len(members); i++ {
		for j := i; j > 0 && phaseOf(nodes[members[j]].ID) < phaseOf(nodes[members[j-1]].ID); j-- {
			members[j], members[j-1] = members[j-1], members[j]
		}
	}
}

// applyCircular places nodes at equal angular increments on a fixed
// radius around the layout center.
func applyCircular(nodes []Node, layout Layout) {
	if len(nodes) == 0 {
		return
	}
	radius := layout.param("radius", circularRadius)
	for i := range nodes {
		angle := 2 * math.Pi * float64(i) / float64(len(nodes))
		nodes[i].X = layout.CenterX + radius*math.Cos(angle)
		nodes[i].Y = layout.CenterY + radius*math.Sin(angle)
	}
}

// applyGrid places nodes row-major on an exact arithmetic grid starting
// at the layout center.
func applyGrid(nodes []Node, layout Layout) {
	columns := int(layout.param("columns", gridColumns))
	cell := layout.param("grid_size", gridCellSpacing)

	for i := range nodes {
		row := i / columns
		col := i % columns
		nodes[i].X = layout.CenterX + float64(col)*cell
		nodes[i].Y = layout.CenterY + float64(row)*cell
	}
}
