package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"texpad/internal/latex"
)

const (
	tabularBegin = `\begin{tabular}`
	tabularEnd   = `\end{tabular}`
	tikzBegin    = `\begin{tikzpicture}`
	tikzEnd      = `\end{tikzpicture}`
)

// scheduleReparse bumps the buffer's generation and returns a tick that
// reparses only if no newer edit happened in the meantime.
func (m *model) scheduleReparse() tea.Cmd {
	buf := m.getCurrentBuffer()
	if buf == nil || buf.kind == ModeWhiteboard {
		return nil
	}
	buf.parseGen++
	msg := reparseMsg{buffer: m.currentBufferIndex, gen: buf.parseGen}
	return tea.Tick(m.config.Debounce, func(time.Time) tea.Msg {
		return msg
	})
}

func (m *model) handleReparse(msg reparseMsg) {
	if msg.buffer < 0 || msg.buffer >= len(m.buffers) {
		return
	}
	buf := &m.buffers[msg.buffer]
	if buf.parseGen != msg.gen {
		return
	}
	m.reparse(buf)
}

// reparse refreshes the buffer's visual model from its source. A source
// the parser cannot read leaves the previous model in place. Cursor state
// and the status line belong to the current buffer and are left alone
// when a background buffer reparses.
func (m *model) reparse(buf *Buffer) {
	current := buf == m.getCurrentBuffer()
	fail := func(msg string) {
		if current {
			m.errorMessage = msg
		}
	}
	switch buf.kind {
	case ModeTable:
		t := latex.ParseTabular(buf.source)
		if t == nil {
			slog.Warn("reparse: no tabular", "bytes", len(buf.source))
			fail("no tabular environment, keeping last table")
			return
		}
		buf.table = t
		if current {
			m.clampCell()
		}
		slog.Info("reparse", "kind", "table", "rows", t.Rows, "cols", t.Cols)
	case ModeDiagram:
		d, skipped := latex.ParseTikzDetailed(buf.source, buf.diagram)
		buf.skipped = skipped
		for _, s := range skipped {
			slog.Info("reparse: skipped", "text", s.Text, "offset", s.Offset, "reason", s.Reason)
		}
		if d == nil {
			slog.Warn("reparse: no tikzpicture nodes", "bytes", len(buf.source))
			fail("no tikzpicture nodes, keeping last diagram")
			return
		}
		buf.diagram = d
		if current && m.selectedNode >= len(d.Nodes) {
			m.selectedNode = -1
		}
		slog.Info("reparse", "kind", "diagram", "nodes", len(d.Nodes), "connections", len(d.Connections), "skipped", len(skipped))
	default:
		return
	}
	if current {
		m.errorMessage = ""
	}
}

// replaceSource swaps in a new source as one undoable step and reparses
// right away.
func (m *model) replaceSource(actionType ActionType, source string) {
	buf := m.getCurrentBuffer()
	if buf == nil || buf.source == source {
		return
	}
	m.recordAction(actionType, SourceEditData{Source: source}, SourceEditData{Source: buf.source})
	buf.source = source
	m.clampSourceCursor()
	m.reparse(buf)
}

// emitVisual writes the edited table or diagram back over its environment
// in the source.
func (m *model) emitVisual() {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return
	}
	var source string
	switch buf.kind {
	case ModeTable:
		source = spliceEnvironment(buf.source, tabularBegin, tabularEnd, latex.EmitTabular(buf.table))
	case ModeDiagram:
		source = spliceEnvironment(buf.source, tikzBegin, tikzEnd, latex.EmitTikz(buf.diagram))
	default:
		return
	}
	m.replaceSource(ActionVisualEdit, source)
}

// spliceEnvironment replaces the first begin..end environment in src with
// replacement, or appends replacement when src has none.
func spliceEnvironment(src, begin, end, replacement string) string {
	start := strings.Index(src, begin)
	if start < 0 {
		if src == "" {
			return replacement
		}
		return strings.TrimRight(src, "\n") + "\n" + replacement
	}
	stop := strings.Index(src[start:], end)
	if stop < 0 {
		return src[:start] + replacement
	}
	return src[:start] + replacement + src[start+stop+len(end):]
}

func (m *model) clampSourceCursor() {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return
	}
	if n := len([]rune(buf.source)); m.sourceCursor > n {
		m.sourceCursor = n
	}
	if m.sourceCursor < 0 {
		m.sourceCursor = 0
	}
}

func (m *model) clampCell() {
	buf := m.getCurrentBuffer()
	if buf == nil || buf.table == nil {
		return
	}
	m.cellRow = clamp(m.cellRow, 0, buf.table.Rows-1)
	m.cellCol = clamp(m.cellCol, 0, buf.table.Cols-1)
}

func (m *model) parseSummary() string {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return ""
	}
	switch buf.kind {
	case ModeTable:
		if buf.table != nil {
			return fmt.Sprintf("%dx%d", buf.table.Rows, buf.table.Cols)
		}
	case ModeDiagram:
		if buf.diagram != nil {
			s := fmt.Sprintf("%d nodes, %d edges", len(buf.diagram.Nodes), len(buf.diagram.Connections))
			if len(buf.skipped) > 0 {
				s += fmt.Sprintf(", %d skipped", len(buf.skipped))
			}
			return s
		}
	case ModeWhiteboard:
		if buf.board != nil {
			return fmt.Sprintf("%d strokes", buf.board.Len())
		}
	}
	return "nothing parsed"
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
