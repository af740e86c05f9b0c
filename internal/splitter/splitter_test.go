package splitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sum(v []float64) float64 {
	total := 0.0
	for _, x := range v {
		total += x
	}
	return total
}

func TestNewEqualSizes(t *testing.T) {
	l := New(4, Horizontal, 100)
	assert.Equal(t, []float64{25, 25, 25, 25}, l.Sizes())
	assert.Equal(t, 4, l.Len())

	_, dragging := l.Dragging()
	assert.False(t, dragging)

	assert.Equal(t, []float64{100}, New(0, Vertical, 10).Sizes())
}

func TestMoveTransfersBetweenNeighbours(t *testing.T) {
	l := New(3, Horizontal, 50)
	require.True(t, l.Begin(0, 300))

	// 100px on a 1000px container is 10 percent.
	require.True(t, l.Move(400, 1000))
	sizes := l.Sizes()
	assert.InDelta(t, 100.0/3+10, sizes[0], 1e-9)
	assert.InDelta(t, 100.0/3-10, sizes[1], 1e-9)
	assert.InDelta(t, 100.0/3, sizes[2], 1e-9)

	// Moves are relative to the drag start, not cumulative.
	require.True(t, l.Move(350, 1000))
	sizes = l.Sizes()
	assert.InDelta(t, 100.0/3+5, sizes[0], 1e-9)
	assert.InDelta(t, 100.0/3-5, sizes[1], 1e-9)
}

func TestMoveRejectsBelowMinimum(t *testing.T) {
	l := New(2, Horizontal, 100)
	require.True(t, l.Begin(0, 500))
	require.True(t, l.Move(600, 1000))
	before := l.Sizes()

	// Right pane would drop to 5 percent, below 100px of 1000px.
	assert.False(t, l.Move(950, 1000))
	assert.Equal(t, before, l.Sizes())

	assert.False(t, l.Move(0, 1000))
	assert.Equal(t, before, l.Sizes())
}

func TestSumStaysConstant(t *testing.T) {
	l := New(5, Vertical, 20)
	moves := []struct {
		gutter     int
		start, end float64
	}{
		{0, 100, 160}, {3, 400, 330}, {1, 200, 260}, {2, 50, 10}, {0, 0, -30}, {3, 10, 900},
	}
	for _, m := range moves {
		require.True(t, l.Begin(m.gutter, m.start))
		l.Move(m.end, 800)
		l.End()
		assert.InDelta(t, 100.0, sum(l.Sizes()), 1e-9)
	}
}

func TestBeginGuards(t *testing.T) {
	l := New(3, Horizontal, 10)
	assert.False(t, l.Begin(-1, 0))
	assert.False(t, l.Begin(2, 0))

	require.True(t, l.Begin(1, 0))
	assert.False(t, l.Begin(0, 0), "second drag while one is active")
	idx, ok := l.Dragging()
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	l.End()
	assert.False(t, l.Move(100, 1000), "no drag after End")
	assert.True(t, l.Begin(0, 0))
}

func TestSpans(t *testing.T) {
	l := New(2, Horizontal, 10)
	assert.Equal(t, []Span{{Offset: 0, Size: 40}, {Offset: 41, Size: 40}}, l.Spans(81, 1))

	l = New(3, Horizontal, 10)
	spans := l.Spans(100, 1)
	total := 0
	for _, s := range spans {
		total += s.Size
	}
	assert.Equal(t, 98, total)
	assert.Equal(t, spans[1].Offset+spans[1].Size+1, spans[2].Offset)
}

func TestGutterAt(t *testing.T) {
	l := New(2, Horizontal, 10)
	assert.Equal(t, 0, l.GutterAt(40, 81, 1))
	assert.Equal(t, -1, l.GutterAt(39, 81, 1))
	assert.Equal(t, -1, l.GutterAt(41, 81, 1))
}
