package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSpliceEnvironment(t *testing.T) {
	src := "intro\n\\begin{tabular}{l} a \\\\ \\end{tabular}\noutro"

	got := spliceEnvironment(src, tabularBegin, tabularEnd, "NEW")
	assert.Equal(t, "intro\nNEW\noutro", got)

	assert.Equal(t, "NEW", spliceEnvironment("", tabularBegin, tabularEnd, "NEW"))
	assert.Equal(t, "text\nNEW", spliceEnvironment("text\n\n", tabularBegin, tabularEnd, "NEW"))
	assert.Equal(t, "pre NEW", spliceEnvironment("pre \\begin{tabular}{l} open", tabularBegin, tabularEnd, "NEW"))
}

func TestCursorLineCol(t *testing.T) {
	src := "ab\ncdé\n\nf"

	line, col := cursorLineCol(src, 0)
	assert.Equal(t, 0, line)
	assert.Equal(t, 0, col)

	line, col = cursorLineCol(src, 6)
	assert.Equal(t, 1, line)
	assert.Equal(t, 3, col)

	line, col = cursorLineCol(src, 100)
	assert.Equal(t, 3, line)
	assert.Equal(t, 1, col)
}

func TestMoveVertical(t *testing.T) {
	runes := []rune("abcd\nx\nlonger")

	// column 3 on a one-rune line clamps to its end
	assert.Equal(t, 6, moveVertical(runes, 3, 1))
	assert.Equal(t, 8, moveVertical(runes, 6, 1))
	assert.Equal(t, 1, moveVertical(runes, 6, -1))
	assert.Equal(t, 2, moveVertical(runes, 2, -1))
	assert.Equal(t, 9, moveVertical(runes, 9, 1))
}

func TestInsertRunes(t *testing.T) {
	out, pos := insertRunes([]rune("ac"), 1, []rune("b"))
	assert.Equal(t, "abc", string(out))
	assert.Equal(t, 2, pos)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, clamp(-1, 0, 3))
	assert.Equal(t, 3, clamp(9, 0, 3))
	assert.Equal(t, 2, clamp(2, 0, 3))
	assert.Equal(t, 0, clamp(5, 0, -1))
}
