package main

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// handleSourceKey edits the source as plain text. Every change schedules
// a debounced reparse; the whole session becomes one undo step on Esc.
func (m *model) handleSourceKey(msg tea.KeyMsg) tea.Cmd {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return nil
	}
	runes := []rune(buf.source)
	pos := clamp(m.sourceCursor, 0, len(runes))

	switch msg.Type {
	case tea.KeyEscape:
		m.finishSourceEdit()
		return nil
	case tea.KeyLeft:
		m.sourceCursor = clamp(pos-1, 0, len(runes))
		return nil
	case tea.KeyRight:
		m.sourceCursor = clamp(pos+1, 0, len(runes))
		return nil
	case tea.KeyUp:
		m.sourceCursor = moveVertical(runes, pos, -1)
		return nil
	case tea.KeyDown:
		m.sourceCursor = moveVertical(runes, pos, 1)
		return nil
	case tea.KeyHome, tea.KeyCtrlA:
		m.sourceCursor = lineStart(runes, pos)
		return nil
	case tea.KeyEnd, tea.KeyCtrlE:
		m.sourceCursor = lineEnd(runes, pos)
		return nil
	case tea.KeyBackspace:
		if pos == 0 {
			return nil
		}
		runes = append(runes[:pos-1], runes[pos:]...)
		pos--
	case tea.KeyDelete:
		if pos >= len(runes) {
			return nil
		}
		runes = append(runes[:pos], runes[pos+1:]...)
	case tea.KeyEnter:
		runes, pos = insertRunes(runes, pos, []rune{'\n'})
	case tea.KeyTab:
		runes, pos = insertRunes(runes, pos, []rune("  "))
	case tea.KeySpace:
		runes, pos = insertRunes(runes, pos, []rune{' '})
	case tea.KeyRunes:
		runes, pos = insertRunes(runes, pos, msg.Runes)
	default:
		return nil
	}

	buf.source = string(runes)
	m.sourceCursor = pos
	return m.scheduleReparse()
}

func (m *model) startSourceEdit() {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return
	}
	m.input = InputEditSource
	m.originalSource = buf.source
	m.clampSourceCursor()
}

func (m *model) finishSourceEdit() {
	buf := m.getCurrentBuffer()
	m.input = InputNormal
	if buf == nil || buf.source == m.originalSource {
		return
	}
	m.recordAction(ActionEditSource, SourceEditData{Source: buf.source}, SourceEditData{Source: m.originalSource})
	m.reparse(buf)
}

// handleLineKey edits the one-line field used for cell contents and file
// names. It reports true on Enter.
func (m *model) handleLineKey(msg tea.KeyMsg) (done bool) {
	runes := []rune(m.editText)
	pos := clamp(m.editCursorPos, 0, len(runes))
	switch msg.Type {
	case tea.KeyEnter:
		return true
	case tea.KeyLeft:
		pos--
	case tea.KeyRight:
		pos++
	case tea.KeyHome:
		pos = 0
	case tea.KeyEnd:
		pos = len(runes)
	case tea.KeyBackspace:
		if pos > 0 {
			runes = append(runes[:pos-1], runes[pos:]...)
			pos--
		}
	case tea.KeySpace:
		runes, pos = insertRunes(runes, pos, []rune{' '})
	case tea.KeyRunes:
		runes, pos = insertRunes(runes, pos, msg.Runes)
	}
	m.editText = string(runes)
	m.editCursorPos = clamp(pos, 0, len(runes))
	return false
}

func insertRunes(runes []rune, pos int, ins []rune) ([]rune, int) {
	out := make([]rune, 0, len(runes)+len(ins))
	out = append(out, runes[:pos]...)
	out = append(out, ins...)
	out = append(out, runes[pos:]...)
	return out, pos + len(ins)
}

func lineStart(runes []rune, pos int) int {
	for pos > 0 && runes[pos-1] != '\n' {
		pos--
	}
	return pos
}

func lineEnd(runes []rune, pos int) int {
	for pos < len(runes) && runes[pos] != '\n' {
		pos++
	}
	return pos
}

// moveVertical keeps the column when moving dir lines up or down.
func moveVertical(runes []rune, pos, dir int) int {
	start := lineStart(runes, pos)
	col := pos - start
	var target int
	if dir < 0 {
		if start == 0 {
			return pos
		}
		target = lineStart(runes, start-1)
	} else {
		end := lineEnd(runes, pos)
		if end >= len(runes) {
			return pos
		}
		target = end + 1
	}
	if width := lineEnd(runes, target) - target; col > width {
		col = width
	}
	return target + col
}

// cursorLineCol converts a rune offset to a 0-based line and column.
func cursorLineCol(source string, pos int) (int, int) {
	runes := []rune(source)
	pos = clamp(pos, 0, len(runes))
	before := string(runes[:pos])
	line := strings.Count(before, "\n")
	col := pos - lineStart(runes, pos)
	return line, col
}
