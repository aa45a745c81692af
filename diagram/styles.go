package diagram

// nodeStyle is a fixed visual treatment for one node type.
type nodeStyle struct {
	Color  string
	Shape  string
	Width  float64
	Height float64
}

// nodeStyles maps node types to their palette entry. Unknown types fall
// back to the generic "entity" style.
var nodeStyles = map[string]nodeStyle{
	"actor":        {Color: "#8b5cf6", Shape: "circle", Width: 100, Height: 100},
	"user":         {Color: "#3b82f6", Shape: "circle", Width: 90, Height: 90},
	"system":       {Color: "#10b981", Shape: "rectangle", Width: 140, Height: 80},
	"service":      {Color: "#059669", Shape: "rectangle", Width: 120, Height: 70},
	"database":     {Color: "#f59e0b", Shape: "cylinder", Width: 100, Height: 120},
	"data":         {Color: "#d97706", Shape: "diamond", Width: 100, Height: 80},
	"process":      {Color: "#ef4444", Shape: "hexagon", Width: 110, Height: 90},
	"entity":       {Color: "#6b7280", Shape: "rectangle", Width: 120, Height: 60},
	"precondition": {Color: "#3b82f6", Shape: "rectangle", Width: 160, Height: 60},
	"trigger":      {Color: "#10b981", Shape: "diamond", Width: 140, Height: 80},
	"outcome":      {Color: "#f59e0b", Shape: "rectangle", Width: 160, Height: 60},
}

// styleFor resolves a node type against the palette.
func styleFor(nodeType string) nodeStyle {
	if s, ok := nodeStyles[nodeType]; ok {
		return s
	}
	return nodeStyles["entity"]
}

// edgeStyle is the line treatment for a relationship type.
type edgeStyle struct {
	Color string
	Style string
}

var relationshipStyles = map[string]edgeStyle{
	"contains":   {Color: "#10b981", Style: "solid"},
	"uses":       {Color: "#3b82f6", Style: "dashed"},
	"inherits":   {Color: "#8b5cf6", Style: "solid"},
	"depends_on": {Color: "#f59e0b", Style: "dotted"},
	"relates_to": {Color: "#6b7280", Style: "solid"},
}

func relationshipStyleFor(relType string) edgeStyle {
	if s, ok := relationshipStyles[relType]; ok {
		return s
	}
	return relationshipStyles["relates_to"]
}

// flowStyle is the treatment for animated scenario flow edges.
var flowStyle = edgeStyle{Color: "#10b981", Style: "solid"}

// constraintAnnotationStyle renders constraint callouts pinned along the
// top of architecture diagrams.
var constraintAnnotationStyle = nodeStyle{Color: "#fbbf24", Shape: "rectangle", Width: 120, Height: 40}
