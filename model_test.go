package main

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	m := initialModel(defaultConfig())
	m.width, m.height = 81, 24
	return m
}

func send(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(model)
	require.True(t, ok)
	return out
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestInitialModelParsesSamples(t *testing.T) {
	m := newTestModel(t)

	require.Len(t, m.buffers, 3)
	assert.Equal(t, ModeTable, m.currentMode())
	require.NotNil(t, m.buffers[0].table)
	assert.Equal(t, 3, m.buffers[0].table.Rows)
	require.NotNil(t, m.buffers[1].diagram)
	assert.Len(t, m.buffers[1].diagram.Nodes, 3)
	assert.Len(t, m.buffers[1].diagram.Connections, 2)
	assert.Equal(t, "[]\n", m.buffers[2].source)
}

func TestStartModeFromConfig(t *testing.T) {
	config := defaultConfig()
	config.StartMode = ModeWhiteboard
	m := initialModel(config)

	assert.Equal(t, ModeWhiteboard, m.currentMode())
}

func TestBufferSwitchKeys(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, keyRunes("2"))
	assert.Equal(t, ModeDiagram, m.currentMode())
	m = send(t, m, keyRunes("}"))
	assert.Equal(t, ModeWhiteboard, m.currentMode())
	m = send(t, m, keyRunes("}"))
	assert.Equal(t, ModeTable, m.currentMode())
	m = send(t, m, keyRunes("{"))
	assert.Equal(t, ModeWhiteboard, m.currentMode())
}

func TestStaleReparseIgnored(t *testing.T) {
	m := newTestModel(t)
	buf := m.getCurrentBuffer()
	before := buf.table

	buf.source = `\begin{tabular}{ll} a & b \\ \end{tabular}`
	m.scheduleReparse()
	m.scheduleReparse()

	m = send(t, m, reparseMsg{buffer: 0, gen: buf.parseGen - 1})
	assert.Same(t, before, m.buffers[0].table)

	m = send(t, m, reparseMsg{buffer: 0, gen: m.buffers[0].parseGen})
	require.NotNil(t, m.buffers[0].table)
	assert.Equal(t, 1, m.buffers[0].table.Rows)
	assert.Equal(t, 2, m.buffers[0].table.Cols)
}

func TestUnparseableSourceKeepsModel(t *testing.T) {
	m := newTestModel(t)
	before := m.getCurrentBuffer().table

	m.replaceSource(ActionPasteSource, "just some prose")

	buf := m.getCurrentBuffer()
	assert.Equal(t, "just some prose", buf.source)
	assert.Same(t, before, buf.table)
	assert.NotEmpty(t, m.errorMessage)

	m.undo()
	assert.Equal(t, sampleTable, buf.source)
	assert.Empty(t, m.errorMessage)
}

func TestCellEditWritesSourceAndUndoes(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, keyRunes("j"))
	m = send(t, m, keyRunes("l"))
	assert.Equal(t, 1, m.cellRow)
	assert.Equal(t, 1, m.cellCol)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, InputEditCell, m.input)
	assert.Equal(t, "3", m.editText)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m = send(t, m, keyRunes("5"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, InputNormal, m.input)
	buf := m.getCurrentBuffer()
	assert.Contains(t, buf.source, "Apples & 5 & 1.20")
	assert.Equal(t, "5", buf.table.Cells[1][1].Content)
	require.Len(t, buf.undoStack, 1)

	m = send(t, m, keyRunes("u"))
	assert.Equal(t, sampleTable, buf.source)
	assert.Equal(t, "3", buf.table.Cells[1][1].Content)

	m = send(t, m, keyRunes("U"))
	assert.Contains(t, buf.source, "Apples & 5 & 1.20")
}

func TestCellEditEscapesSeparators(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = send(t, m, keyRunes("&b 5%"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	buf := m.getCurrentBuffer()
	require.NotNil(t, buf.table)
	assert.Equal(t, 3, buf.table.Cols)
	assert.Equal(t, 3, len(buf.table.Cells[0]))
	assert.Equal(t, `Item\&b 5\%`, buf.table.Cells[0][0].Content)
	assert.Contains(t, buf.source, `Item\&b 5\% & Qty`)
}

func TestCellEditRejectsRowBreak(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = send(t, m, keyRunes(`\\x`))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, InputEditCell, m.input)
	assert.Contains(t, m.errorMessage, "cannot contain")
	assert.Equal(t, sampleTable, m.getCurrentBuffer().source)
	assert.Empty(t, m.getCurrentBuffer().undoStack)
}

func TestCellEditEscapeCancels(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = send(t, m, keyRunes("zzz"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEscape})

	assert.Equal(t, InputNormal, m.input)
	assert.Equal(t, sampleTable, m.getCurrentBuffer().source)
	assert.Empty(t, m.getCurrentBuffer().undoStack)
}

func TestSourceEditIsOneUndoStep(t *testing.T) {
	m := newTestModel(t)

	m = send(t, m, keyRunes("e"))
	require.Equal(t, InputEditSource, m.input)
	m = send(t, m, keyRunes("%"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEscape})

	buf := m.getCurrentBuffer()
	assert.Equal(t, InputNormal, m.input)
	assert.Equal(t, "%\n"+sampleTable, buf.source)
	require.Len(t, buf.undoStack, 1)

	m.undo()
	assert.Equal(t, sampleTable, buf.source)
}

func TestNodeMoveUpdatesSource(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, keyRunes("2"))

	m = send(t, m, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, 0, m.selectedNode)
	m = send(t, m, keyRunes("j"))

	buf := m.getCurrentBuffer()
	assert.Contains(t, buf.source, `\node (start) [circle`)
	assert.Contains(t, buf.source, "at (-3, -0.5) {Start};")
	assert.Equal(t, 0, m.selectedNode)

	m.undo()
	assert.Equal(t, sampleDiagram, buf.source)
}

func TestBackgroundReparseKeepsCursor(t *testing.T) {
	m := newTestModel(t)
	m.buffers = append(m.buffers,
		Buffer{kind: ModeDiagram, source: "\\begin{tikzpicture}\n\\node (x) at (0, 0) {X};\n\\end{tikzpicture}", parseGen: 1},
		Buffer{kind: ModeTable, source: "no table here", parseGen: 1},
	)
	m = send(t, m, keyRunes("2"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, 2, m.selectedNode)
	m.errorMessage = "unsaved"

	m = send(t, m, reparseMsg{buffer: 3, gen: 1})
	require.NotNil(t, m.buffers[3].diagram)
	assert.Len(t, m.buffers[3].diagram.Nodes, 1)
	assert.Equal(t, 2, m.selectedNode)

	m = send(t, m, reparseMsg{buffer: 4, gen: 1})
	assert.Nil(t, m.buffers[4].table)
	assert.Equal(t, "unsaved", m.errorMessage)
	assert.Equal(t, 1, m.currentBufferIndex)
}

func TestCycleShapeKeepsCenter(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, keyRunes("2"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	require.Equal(t, 2, m.selectedNode)

	buf := m.getCurrentBuffer()
	center := buf.diagram.Nodes[2].Center()
	m = send(t, m, keyRunes("r"))

	got := buf.diagram.Nodes[2].Center()
	assert.InDelta(t, center.X, got.X, 1e-9)
	assert.InDelta(t, center.Y, got.Y, 1e-9)
	assert.Contains(t, buf.source, `\node (done) [rectangle`)
}

func TestWhiteboardGestureAndUndo(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, keyRunes("3"))
	buf := m.getCurrentBuffer()

	m = send(t, m, leftPress(45, 5))
	assert.True(t, buf.board.Drawing())
	m = send(t, m, leftDrag(52, 7))
	m = send(t, m, leftDrag(60, 10))
	m = send(t, m, mouseRelease(60, 10))

	assert.False(t, buf.board.Drawing())
	require.Equal(t, 1, buf.board.Len())
	stroke := buf.board.Strokes()[0]
	assert.Len(t, stroke.Points, 6)
	assert.Contains(t, buf.source, `"tool": "pen"`)
	require.Len(t, buf.undoStack, 1)

	m = send(t, m, keyRunes("u"))
	assert.Equal(t, 0, buf.board.Len())
	assert.Equal(t, "[]\n", buf.source)

	m = send(t, m, keyRunes("U"))
	assert.Equal(t, 1, buf.board.Len())
}

func TestWhiteboardToolKeys(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, keyRunes("3"))
	board := m.getCurrentBuffer().board

	m = send(t, m, keyRunes("t"))
	assert.Equal(t, "brush", string(board.Tool()))
	m = send(t, m, keyRunes("+"))
	assert.Equal(t, 8.0, board.Width())
	m = send(t, m, keyRunes("c"))
	assert.Equal(t, palette[1], board.Color())
}

func TestGutterDragResizesPanes(t *testing.T) {
	m := newTestModel(t)
	require.Equal(t, 40, m.spans()[0].Size)

	m = send(t, m, leftPress(40, 5))
	_, dragging := m.layout.Dragging()
	assert.True(t, dragging)
	m = send(t, m, leftDrag(45, 5))
	m = send(t, m, leftDrag(50, 5))
	m = send(t, m, mouseRelease(50, 5))

	_, dragging = m.layout.Dragging()
	assert.False(t, dragging)
	sizes := m.layout.Sizes()
	assert.Greater(t, sizes[0], 55.0)
	assert.InDelta(t, 100.0, sizes[0]+sizes[1], 1e-9)
	assert.Greater(t, m.spans()[0].Size, 40)
}

func TestClickSelectsCell(t *testing.T) {
	m := newTestModel(t)
	x, y, _, _ := m.previewBody()

	// third row, first column
	m = send(t, m, leftPress(x+2, y+5))
	assert.Equal(t, 2, m.cellRow)
	assert.Equal(t, 0, m.cellCol)
}

func TestMouseIgnoresOtherButtons(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, keyRunes("3"))
	buf := m.getCurrentBuffer()

	m = send(t, m, tea.MouseMsg{X: 45, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonRight, Type: tea.MouseRight})
	m = send(t, m, tea.MouseMsg{X: 45, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown, Type: tea.MouseWheelDown})
	assert.False(t, buf.board.Drawing())

	m = send(t, m, tea.MouseMsg{X: 40, Y: 5, Action: tea.MouseActionPress, Button: tea.MouseButtonRight, Type: tea.MouseRight})
	_, dragging := m.layout.Dragging()
	assert.False(t, dragging)
	assert.Equal(t, 0, buf.board.Len())
}

func TestViewFitsScreen(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, tea.WindowSizeMsg{Width: 100, Height: 30})

	for _, mode := range []string{"1", "2", "3"} {
		m = send(t, m, keyRunes(mode))
		lines := splitLines(m.View())
		assert.Len(t, lines, 30, "mode %s", mode)
	}
}

func TestHelpToggle(t *testing.T) {
	m := newTestModel(t)
	m = send(t, m, keyRunes("?"))
	assert.True(t, m.help)
	assert.Contains(t, m.View(), "texpad Help")

	m = send(t, m, keyRunes("x"))
	assert.False(t, m.help)
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}

// Mouse events as a terminal with button-event tracking reports them: a drag
// keeps the left button with a motion action.
func leftPress(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft, Type: tea.MouseLeft}
}

func leftDrag(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft, Type: tea.MouseLeft}
}

func mouseRelease(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionRelease, Button: tea.MouseButtonNone, Type: tea.MouseRelease}
}
