// Package splitter lays out N panes along one axis and resizes them by
// dragging the gutters between neighbours.
package splitter

import "math"

type Direction int

const (
	Horizontal Direction = iota // panes side by side, gutters drag along x
	Vertical                    // panes stacked, gutters drag along y
)

func (d Direction) String() string {
	if d == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Layout holds pane sizes as percentages of the container. Only one
// gutter can be dragged at a time.
type Layout struct {
	direction Direction
	minSize   float64
	sizes     []float64

	dragging   int // gutter index, -1 when idle
	startPos   float64
	startSizes []float64
}

// New splits the container into n equal panes. minSize is the smallest
// size, in container units, a pane may be dragged down to.
func New(n int, direction Direction, minSize float64) *Layout {
	if n < 1 {
		n = 1
	}
	sizes := make([]float64, n)
	for i := range sizes {
		sizes[i] = 100 / float64(n)
	}
	return &Layout{
		direction: direction,
		minSize:   minSize,
		sizes:     sizes,
		dragging:  -1,
	}
}

func (l *Layout) Direction() Direction { return l.direction }

func (l *Layout) Len() int { return len(l.sizes) }

// Sizes returns a copy of the pane percentages.
func (l *Layout) Sizes() []float64 {
	return append([]float64(nil), l.sizes...)
}

// Dragging reports the gutter under an active drag.
func (l *Layout) Dragging() (int, bool) {
	return l.dragging, l.dragging >= 0
}

// Begin starts dragging the gutter between pane gutter and gutter+1 at
// pointer coordinate pos. It fails if a drag is already active.
func (l *Layout) Begin(gutter int, pos float64) bool {
	if l.dragging >= 0 || gutter < 0 || gutter >= len(l.sizes)-1 {
		return false
	}
	l.dragging = gutter
	l.startPos = pos
	l.startSizes = l.Sizes()
	return true
}

// Move applies the pointer at pos to the active drag. The size moved is
// relative to where the drag began and is shared only by the two panes
// next to the gutter. A move that would shrink either pane below the
// minimum is rejected and leaves the sizes as they were.
func (l *Layout) Move(pos, containerSize float64) bool {
	if l.dragging < 0 || containerSize <= 0 {
		return false
	}
	i := l.dragging
	deltaPercent := (pos - l.startPos) / containerSize * 100
	minPercent := l.minSize / containerSize * 100

	left := l.startSizes[i] + deltaPercent
	right := l.startSizes[i+1] - deltaPercent
	if left < minPercent || right < minPercent {
		return false
	}
	l.sizes[i] = left
	l.sizes[i+1] = right
	return true
}

// End finishes the active drag, if any.
func (l *Layout) End() {
	l.dragging = -1
	l.startSizes = nil
}

// Span is a pane's offset and extent along the layout axis.
type Span struct {
	Offset int
	Size   int
}

// Spans converts the percentages into integer spans over containerSize
// with gutterSize cells between panes. The last pane absorbs rounding.
func (l *Layout) Spans(containerSize, gutterSize int) []Span {
	n := len(l.sizes)
	usable := containerSize - gutterSize*(n-1)
	if usable < 0 {
		usable = 0
	}

	spans := make([]Span, n)
	offset, used := 0, 0
	for i, pct := range l.sizes {
		size := int(math.Round(pct / 100 * float64(usable)))
		if i == n-1 || used+size > usable {
			size = usable - used
		}
		if size < 0 {
			size = 0
		}
		spans[i] = Span{Offset: offset, Size: size}
		used += size
		offset += size + gutterSize
	}
	return spans
}

// GutterAt returns the gutter under pointer coordinate pos, or -1.
func (l *Layout) GutterAt(pos, containerSize, gutterSize int) int {
	spans := l.Spans(containerSize, gutterSize)
	for i := 0; i < len(spans)-1; i++ {
		start := spans[i].Offset + spans[i].Size
		if pos >= start && pos < start+gutterSize {
			return i
		}
	}
	return -1
}
