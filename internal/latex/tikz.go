package latex

import "strings"

type Shape string

const (
	ShapeRectangle Shape = "rectangle"
	ShapeCircle    Shape = "circle"
	ShapeDiamond   Shape = "diamond"
)

type ConnectionKind string

const (
	KindArrow ConnectionKind = "arrow"
	KindLine  ConnectionKind = "line"
)

const (
	CanvasWidth  = 500
	CanvasHeight = 350
	PixelsPerCM  = 50

	DefaultStrokeWidth = 2
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is a diagram box in canvas pixels; (X, Y) is its top-left corner.
// ID is the TikZ node name and stays stable across reparses.
type Node struct {
	ID          string  `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Shape       Shape   `json:"type"`
	Text        string  `json:"text"`
	FillColor   string  `json:"fillColor"`
	StrokeColor string  `json:"strokeColor"`
	TextColor   string  `json:"textColor"`
	StrokeWidth float64 `json:"strokeWidth"`
}

// Center of the node's bounding box.
func (n Node) Center() Point {
	return Point{X: n.X + n.Width/2, Y: n.Y + n.Height/2}
}

// Connection joins two parsed nodes. ID is only unique within one parse.
type Connection struct {
	ID          string         `json:"id"`
	From        string         `json:"from"`
	To          string         `json:"to"`
	FromPoint   Point          `json:"fromPoint"`
	ToPoint     Point          `json:"toPoint"`
	Kind        ConnectionKind `json:"type"`
	Color       string         `json:"color"`
	StrokeWidth float64        `json:"strokeWidth"`
}

// Key identifies a connection across reparses.
func (c Connection) Key() string {
	return c.From + "->" + c.To
}

type Diagram struct {
	Nodes        []Node       `json:"nodes"`
	Connections  []Connection `json:"connections"`
	CanvasWidth  float64      `json:"canvasWidth"`
	CanvasHeight float64      `json:"canvasHeight"`
}

// Node returns the node with the given id.
func (d *Diagram) Node(id string) (Node, bool) {
	if d == nil {
		return Node{}, false
	}
	for _, n := range d.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// ParseTikz reads the first tikzpicture in src. When existing is given,
// cosmetic state the source cannot express is carried over from it.
// It returns nil when there is no block or no node could be parsed.
func ParseTikz(src string, existing *Diagram) *Diagram {
	d, _ := ParseTikzDetailed(src, existing)
	return d
}

// ParseTikzDetailed is ParseTikz that also reports the statements it
// skipped. The skipped list is returned even when the diagram is nil.
func ParseTikzDetailed(src string, existing *Diagram) (*Diagram, []Skipped) {
	if src == "" {
		return nil, nil
	}
	scan := ScanTikz(src)
	if scan == nil {
		return nil, nil
	}

	prev := indexPrevious(existing)
	nodes := ReduceNodes(scan.Nodes, scan.Colors, prev.nodes)
	if len(nodes) == 0 {
		return nil, scan.Skipped
	}
	connections := ReduceConnections(scan.Edges, nodes, scan.Colors, prev.connections)

	return &Diagram{
		Nodes:        nodes,
		Connections:  connections,
		CanvasWidth:  CanvasWidth,
		CanvasHeight: CanvasHeight,
	}, scan.Skipped
}

// ShapeFromOptions picks the shape by substring, circle before diamond.
func ShapeFromOptions(options string) Shape {
	switch {
	case strings.Contains(options, "circle"):
		return ShapeCircle
	case strings.Contains(options, "diamond"):
		return ShapeDiamond
	default:
		return ShapeRectangle
	}
}

// DefaultSize of a node of the given shape, in canvas pixels.
func DefaultSize(shape Shape) (width, height float64) {
	if shape == ShapeCircle {
		return 70, 70
	}
	return 90, 50
}

// ToCanvas maps a LaTeX coordinate to canvas pixels. The LaTeX origin is
// the canvas center and LaTeX y grows upward.
func ToCanvas(x, y float64) Point {
	return Point{
		X: x*PixelsPerCM + CanvasWidth/2,
		Y: -y*PixelsPerCM + CanvasHeight/2,
	}
}

// FromCanvas is the inverse of ToCanvas.
func FromCanvas(p Point) (x, y float64) {
	return (p.X - CanvasWidth/2) / PixelsPerCM, -(p.Y - CanvasHeight/2) / PixelsPerCM
}

var labelUnescaper = strings.NewReplacer(`\_`, "_", `\%`, "%", `\&`, "&", `\#`, "#", `\{`, "{", `\}`, "}")

var labelEscaper = strings.NewReplacer("_", `\_`, "%", `\%`, "&", `\&`, "#", `\#`, "{", `\{`, "}", `\}`)

// UnescapeLabel reverses the escapes a label may carry and trims it.
func UnescapeLabel(s string) string {
	return strings.TrimSpace(labelUnescaper.Replace(s))
}

// EscapeLabel is the inverse of UnescapeLabel.
func EscapeLabel(s string) string {
	return labelEscaper.Replace(s)
}

// optionValue returns the value of key=... inside a TikZ option list.
func optionValue(options, key string) string {
	idx := strings.Index(options, key+"=")
	if idx < 0 {
		return ""
	}
	v := options[idx+len(key)+1:]
	if end := strings.IndexAny(v, ",]"); end >= 0 {
		v = v[:end]
	}
	return v
}
