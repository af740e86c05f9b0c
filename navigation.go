package main

import "texpad/internal/latex"

func (m *model) handleCellMove(key string) {
	switch key {
	case "h", "left":
		m.cellCol--
	case "l", "right":
		m.cellCol++
	case "k", "up":
		m.cellRow--
	case "j", "down":
		m.cellRow++
	}
	m.clampCell()
}

// handleNodeMove nudges the selected node by half a LaTeX unit and writes
// the diagram back to the source.
func (m *model) handleNodeMove(key string) {
	buf := m.getCurrentBuffer()
	if buf == nil || buf.diagram == nil || m.selectedNode < 0 || m.selectedNode >= len(buf.diagram.Nodes) {
		return
	}
	step := nodeStep * latex.PixelsPerCM
	node := &buf.diagram.Nodes[m.selectedNode]
	switch key {
	case "h", "left":
		node.X -= step
	case "l", "right":
		node.X += step
	case "k", "up":
		node.Y -= step
	case "j", "down":
		node.Y += step
	default:
		return
	}
	m.emitVisual()
}

func (m *model) selectNextNode(dir int) {
	buf := m.getCurrentBuffer()
	if buf == nil || buf.diagram == nil || len(buf.diagram.Nodes) == 0 {
		m.selectedNode = -1
		return
	}
	n := len(buf.diagram.Nodes)
	if m.selectedNode < 0 {
		if dir < 0 {
			m.selectedNode = n - 1
		} else {
			m.selectedNode = 0
		}
		return
	}
	m.selectedNode = ((m.selectedNode+dir)%n + n) % n
}

// cycleShape steps the selected node through rectangle, circle and
// diamond, keeping its center.
func (m *model) cycleShape() {
	buf := m.getCurrentBuffer()
	if buf == nil || buf.diagram == nil || m.selectedNode < 0 || m.selectedNode >= len(buf.diagram.Nodes) {
		return
	}
	node := &buf.diagram.Nodes[m.selectedNode]
	center := node.Center()
	switch node.Shape {
	case latex.ShapeRectangle:
		node.Shape = latex.ShapeCircle
	case latex.ShapeCircle:
		node.Shape = latex.ShapeDiamond
	default:
		node.Shape = latex.ShapeRectangle
	}
	node.Width, node.Height = latex.DefaultSize(node.Shape)
	node.X, node.Y = center.X-node.Width/2, center.Y-node.Height/2
	m.emitVisual()
}

func (m *model) commitCellEdit() {
	buf := m.getCurrentBuffer()
	m.input = InputNormal
	if buf == nil || buf.table == nil {
		return
	}
	content, err := latex.EscapeCell(m.editText)
	if err != nil {
		m.errorMessage = err.Error()
		m.input = InputEditCell
		return
	}
	cell := &buf.table.Cells[m.cellRow][m.cellCol]
	if cell.Content == content {
		return
	}
	cell.Content = content
	m.emitVisual()
}
