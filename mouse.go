package main

import (
	"bytes"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"texpad/internal/splitter"
	"texpad/internal/whiteboard"
)

// Screen rows: buffer bar, pane titles, pane bodies, status line.
const (
	contentTop = 1
	titleRows  = 1
)

func (m *model) contentHeight() int {
	h := m.height - 2
	if h < titleRows+1 {
		h = titleRows + 1
	}
	return h
}

func (m *model) spans() []splitter.Span {
	width := m.width
	if width < 3 {
		width = 3
	}
	return m.layout.Spans(width, gutterWidth)
}

// previewBody is the preview pane's drawable area on screen.
func (m *model) previewBody() (x, y, width, height int) {
	span := m.spans()[1]
	return span.Offset, contentTop + titleRows, span.Size, m.contentHeight() - titleRows
}

func (m *model) inPreview(sx, sy int) bool {
	x, y, w, h := m.previewBody()
	return sx >= x && sx < x+w && sy >= y && sy < y+h
}

// boardPoint maps a screen cell to whiteboard pixels, at the cell center.
func (m *model) boardPoint(sx, sy int) (float64, float64) {
	x, y, w, h := m.previewBody()
	opts := whiteboard.DefaultRasterOptions()
	px := (float64(clamp(sx-x, 0, w-1)) + 0.5) * float64(opts.Width) / float64(max(w, 1))
	py := (float64(clamp(sy-y, 0, h-1)) + 0.5) * float64(opts.Height) / float64(max(h, 1))
	return px, py
}

func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return nil
	}
	_, dragging := m.layout.Dragging()

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || dragging {
			return nil
		}
		if msg.Y >= contentTop && msg.Y < contentTop+m.contentHeight() {
			if g := m.layout.GutterAt(msg.X, max(m.width, 3), gutterWidth); g >= 0 {
				m.layout.Begin(g, float64(msg.X))
				return nil
			}
		}
		if !m.inPreview(msg.X, msg.Y) || m.input != InputNormal {
			return nil
		}
		switch buf.kind {
		case ModeWhiteboard:
			if buf.board.Drawing() {
				return nil
			}
			m.strokesBefore = buf.board.Strokes()
			buf.board.PointerDown(m.boardPoint(msg.X, msg.Y))
		case ModeDiagram:
			m.selectNodeAt(msg.X, msg.Y)
		case ModeTable:
			m.selectCellAt(msg.X, msg.Y)
		}

	case tea.MouseActionMotion:
		if dragging {
			m.layout.Move(float64(msg.X), float64(max(m.width, 3)))
			return nil
		}
		if buf.kind == ModeWhiteboard && buf.board.Drawing() {
			buf.board.PointerMove(m.boardPoint(msg.X, msg.Y))
		}

	case tea.MouseActionRelease:
		if dragging {
			m.layout.End()
			slog.Info("layout", "panes", m.layout.Sizes())
			return nil
		}
		if buf.kind == ModeWhiteboard && buf.board.Drawing() {
			buf.board.PointerUp()
			m.recordAction(ActionStroke, StrokeData{Strokes: buf.board.Strokes()}, StrokeData{Strokes: m.strokesBefore})
			m.strokesBefore = nil
			buf.source = m.boardSource(buf)
		}
	}
	return nil
}

func (m *model) selectNodeAt(sx, sy int) {
	buf := m.getCurrentBuffer()
	if buf.diagram == nil {
		return
	}
	x, y, w, h := m.previewBody()
	scale := newDiagramScale(buf.diagram, w, h)
	cx, cy := sx-x, sy-y
	m.selectedNode = -1
	// topmost node wins
	for i := len(buf.diagram.Nodes) - 1; i >= 0; i-- {
		x0, y0, x1, y1 := scale.nodeRect(buf.diagram.Nodes[i])
		if cx >= x0 && cx <= x1 && cy >= y0 && cy <= y1 {
			m.selectedNode = i
			return
		}
	}
}

// selectCellAt picks the cell under a click in the rendered table grid.
func (m *model) selectCellAt(sx, sy int) {
	buf := m.getCurrentBuffer()
	if buf.table == nil {
		return
	}
	x, y, _, _ := m.previewBody()
	row := (sy - y - 1) / 2
	if sy-y < 1 || (sy-y)%2 == 0 || row >= buf.table.Rows {
		return
	}
	col, edge := -1, x
	for i, w := range tableColumnWidths(buf.table) {
		if sx > edge && sx <= edge+w+2 {
			col = i
			break
		}
		edge += w + 3
	}
	if col >= 0 {
		m.cellRow, m.cellCol = row, col
	}
}

// boardSource is the stroke list shown in the source pane.
func (m *model) boardSource(buf *Buffer) string {
	var out bytes.Buffer
	if err := buf.board.ExportVector(&out); err != nil {
		return ""
	}
	return out.String()
}

func (m *model) nudgeGutter(cells int) {
	if _, dragging := m.layout.Dragging(); dragging {
		return
	}
	spans := m.spans()
	pos := float64(spans[0].Offset + spans[0].Size)
	if m.layout.Begin(0, pos) {
		m.layout.Move(pos+float64(cells), float64(max(m.width, 3)))
		m.layout.End()
	}
}
