package diagram

import (
	"math"
	"testing"
)

func makeNodes(n int) []Node {
	nodes := make([]Node, n)
	for i := range nodes {
		nodes[i] = Node{ID: string(rune('a' + i)), Label: "node"}
	}
	return nodes
}

func TestCircularLayoutRadiusInvariant(t *testing.T) {
	nodes := makeNodes(7)
	layout := NewLayout(LayoutCircular, 0)

	ApplyLayout(nodes, nil, layout)

	for _, n := range nodes {
		dist := math.Hypot(n.X-layout.CenterX, n.Y-layout.CenterY)
		if math.Abs(dist-circularRadius) > 1e-9 {
			t.Errorf("node %s at distance %f, want %f", n.ID, dist, circularRadius)
		}
	}
}

func TestGridLayoutExactArithmetic(t *testing.T) {
	nodes := makeNodes(10)
	layout := NewLayout(LayoutGrid, 0)

	ApplyLayout(nodes, nil, layout)

	for i, n := range nodes {
		wantX := layout.CenterX + float64(i%4)*gridCellSpacing
		wantY := layout.CenterY + float64(i/4)*gridCellSpacing
		if n.X != wantX || n.Y != wantY {
			t.Errorf("node %d at (%f, %f), want (%f, %f)", i, n.X, n.Y, wantX, wantY)
		}
	}
}

func TestHierarchicalLayoutRowsAndColumns(t *testing.T) {
	// Deliberately out of phase order within each scenario.
	nodes := []Node{
		{ID: "sc-1_then"},
		{ID: "sc-1_given"},
		{ID: "sc-1_when"},
		{ID: "sc-2_given"},
		{ID: "sc-2_when"},
		{ID: "sc-2_then"},
	}
	ApplyLayout(nodes, nil, NewLayout(LayoutHierarchical, 200))

	byID := make(map[string]Node)
	for _, n := range nodes {
		byID[n.ID] = n
	}

	for _, sc := range []string{"sc-1", "sc-2"} {
		given, when, then := byID[sc+"_given"], byID[sc+"_when"], byID[sc+"_then"]
		if given.Y != when.Y || when.Y != then.Y {
			t.Errorf("%s phases not on one row: %f %f %f", sc, given.Y, when.Y, then.Y)
		}
		if !(given.X < when.X && when.X < then.X) {
			t.Errorf("%s columns out of order: %f %f %f", sc, given.X, when.X, then.X)
		}
	}

	if byID["sc-2_given"].Y != byID["sc-1_given"].Y+layerSeparation {
		t.Errorf("rows not separated by %f: %f vs %f",
			layerSeparation, byID["sc-1_given"].Y, byID["sc-2_given"].Y)
	}
}

func TestForceLayoutDeterministic(t *testing.T) {
	edges := []Edge{{ID: "e1", Source: "a", Target: "b"}}

	first := makeNodes(5)
	ApplyLayout(first, edges, NewLayout(LayoutForce, 180))

	second := makeNodes(5)
	ApplyLayout(second, edges, NewLayout(LayoutForce, 180))

	for i := range first {
		if first[i].X != second[i].X || first[i].Y != second[i].Y {
			t.Errorf("node %d positions differ between runs: (%f, %f) vs (%f, %f)",
				i, first[i].X, first[i].Y, second[i].X, second[i].Y)
		}
	}
}

func TestForceLayoutSeparatesNodes(t *testing.T) {
	nodes := makeNodes(4)
	ApplyLayout(nodes, nil, NewLayout(LayoutForce, 180))

	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			dist := math.Hypot(nodes[i].X-nodes[j].X, nodes[i].Y-nodes[j].Y)
			if dist < 1 {
				t.Errorf("nodes %d and %d overlap: distance %f", i, j, dist)
			}
		}
	}
}

func TestApplyLayoutEmptyNodes(t *testing.T) {
	for _, algo := range []string{LayoutForce, LayoutHierarchical, LayoutCircular, LayoutGrid} {
		ApplyLayout(nil, nil, NewLayout(algo, 0))
	}
}
