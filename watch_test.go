package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileChangeReloadsBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.tex")
	m := newTestModel(t)
	require.NoError(t, m.saveSource(path))

	edited := `\begin{tabular}{ll} x & y \\ \end{tabular}`
	require.NoError(t, os.WriteFile(path, []byte(edited), 0644))
	m = send(t, m, fileChangedMsg{path: path})

	buf := m.getCurrentBuffer()
	assert.Equal(t, edited, buf.source)
	require.NotNil(t, buf.table)
	assert.Equal(t, "x", buf.table.Cells[0][0].Content)
	assert.Contains(t, m.successMessage, "Reloaded")

	m.undo()
	assert.Equal(t, sampleTable, buf.source)
}

func TestFileChangeIgnoresOwnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.tex")
	m := newTestModel(t)
	require.NoError(t, m.saveSource(path))

	m = send(t, m, fileChangedMsg{path: path})

	assert.Empty(t, m.getCurrentBuffer().undoStack)
	assert.Empty(t, m.successMessage)
}

func TestFileChangeWhileEditingSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.tex")
	m := newTestModel(t)
	require.NoError(t, m.saveSource(path))
	m = send(t, m, keyRunes("e"))

	require.NoError(t, os.WriteFile(path, []byte("changed"), 0644))
	m = send(t, m, fileChangedMsg{path: path})

	assert.Equal(t, sampleTable, m.getCurrentBuffer().source)
	assert.Contains(t, m.errorMessage, "changed on disk")
}

func TestFileChangeReloadsWhiteboard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.json")
	m := newTestModel(t)
	m.switchBuffer(ModeWhiteboard)
	require.NoError(t, m.saveSource(path))

	strokes := `[{"tool":"brush","points":[1,2,3,4],"color":"#000000","width":4}]`
	require.NoError(t, os.WriteFile(path, []byte(strokes), 0644))
	m = send(t, m, fileChangedMsg{path: path})

	buf := m.getCurrentBuffer()
	require.Equal(t, 1, buf.board.Len())
	assert.Contains(t, buf.source, `"tool": "brush"`)

	m.undo()
	assert.Equal(t, 0, buf.board.Len())
}

func TestFileWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diagram.tex")
	other := filepath.Join(dir, "other.tex")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0644))

	fw, err := newFileWatcher()
	require.NoError(t, err)
	defer fw.Close()
	require.NoError(t, fw.Watch(path))

	got := make(chan tea.Msg, 1)
	go func() { got <- fw.Wait()() }()

	require.NoError(t, os.WriteFile(other, []byte("ignored"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("b"), 0644))

	select {
	case msg := <-got:
		assert.Equal(t, fileChangedMsg{path: path}, msg)
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestNilFileWatcher(t *testing.T) {
	var fw *fileWatcher
	assert.NoError(t, fw.Watch("x.tex"))
	assert.Nil(t, fw.Wait())
	assert.NoError(t, fw.Close())
}
