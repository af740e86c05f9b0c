// Package whiteboard keeps the freehand stroke list drawn by pointer
// gestures and renders it to PNG or JSON.
package whiteboard

type Tool string

const (
	ToolPen    Tool = "pen"
	ToolBrush  Tool = "brush"
	ToolEraser Tool = "eraser"
)

// Tools in toolbar order.
var Tools = []Tool{ToolPen, ToolBrush, ToolEraser}

const (
	DefaultColor = "#FFD700"
	DefaultWidth = 6
	MinWidth     = 2
	MaxWidth     = 40
)

// Stroke is one gesture. Points holds flattened x,y pairs.
type Stroke struct {
	Tool   Tool      `json:"tool"`
	Points []float64 `json:"points"`
	Color  string    `json:"color"`
	Width  float64   `json:"width"`
}

// Board is an append-only list of strokes plus the current pen settings.
// Erasing adds a stroke; it never removes one.
type Board struct {
	strokes []Stroke
	drawing bool

	tool  Tool
	color string
	width float64
}

func NewBoard() *Board {
	return &Board{tool: ToolPen, color: DefaultColor, width: DefaultWidth}
}

func (b *Board) Tool() Tool { return b.tool }
func (b *Board) Color() string { return b.color }
func (b *Board) Width() float64 { return b.width }
func (b *Board) Drawing() bool { return b.drawing }
func (b *Board) Len() int { return len(b.strokes) }
func (b *Board) SetTool(t Tool) { b.tool = t }

// SetColor picks a new stroke color. Picking a color while erasing goes
// back to the pen.
func (b *Board) SetColor(c string) {
	b.color = c
	if b.tool == ToolEraser {
		b.tool = ToolPen
	}
}

// SetWidth clamps w to MinWidth..MaxWidth.
func (b *Board) SetWidth(w float64) {
	if w < MinWidth {
		w = MinWidth
	}
	if w > MaxWidth {
		w = MaxWidth
	}
	b.width = w
}

// PointerDown starts a stroke at (x, y) with the current settings.
func (b *Board) PointerDown(x, y float64) {
	b.drawing = true
	b.strokes = append(b.strokes, Stroke{
		Tool:   b.tool,
		Points: []float64{x, y},
		Color:  b.color,
		Width:  b.width,
	})
}

// PointerMove extends the last stroke. It does nothing between gestures.
func (b *Board) PointerMove(x, y float64) {
	if !b.drawing || len(b.strokes) == 0 {
		return
	}
	last := &b.strokes[len(b.strokes)-1]
	last.Points = append(last.Points, x, y)
}

func (b *Board) PointerUp() {
	b.drawing = false
}

// Strokes returns a deep copy of the stroke list.
func (b *Board) Strokes() []Stroke {
	return cloneStrokes(b.strokes)
}

// Load replaces the stroke list, e.g. with one read back by ReadVector.
func (b *Board) Load(strokes []Stroke) {
	b.strokes = cloneStrokes(strokes)
	b.drawing = false
}

func cloneStrokes(in []Stroke) []Stroke {
	out := make([]Stroke, len(in))
	for i, s := range in {
		s.Points = append([]float64(nil), s.Points...)
		out[i] = s
	}
	return out
}
