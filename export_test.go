package main

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportPNGEachMode(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(t)

	for _, kind := range []Mode{ModeTable, ModeDiagram, ModeWhiteboard} {
		require.True(t, m.switchBuffer(kind))
		path := filepath.Join(dir, m.modeName(kind)+".png")
		require.NoError(t, m.exportPNG(path), m.modeName(kind))

		f, err := os.Open(path)
		require.NoError(t, err)
		img, err := png.Decode(f)
		f.Close()
		require.NoError(t, err)
		assert.Positive(t, img.Bounds().Dx())
		assert.Positive(t, img.Bounds().Dy())
	}
}

func TestExportPNGWithoutModel(t *testing.T) {
	m := newTestModel(t)
	m.getCurrentBuffer().table = nil

	err := m.exportPNG(filepath.Join(t.TempDir(), "x.png"))
	assert.ErrorIs(t, err, errNothingToExport)
}

func TestExportVisualTXT(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.txt")
	m := newTestModel(t)

	require.NoError(t, m.exportVisualTXT(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "| Apples |")
}

func TestSaveAndOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "diagram.tex")
	m := newTestModel(t)
	m.switchBuffer(ModeDiagram)
	require.NoError(t, m.saveSource(path))

	m.switchBuffer(ModeTable)
	require.NoError(t, m.openFile(path))

	assert.Equal(t, ModeDiagram, m.currentMode())
	buf := m.getCurrentBuffer()
	assert.Equal(t, sampleDiagram, buf.source)
	assert.Equal(t, path, buf.filename)
	assert.Empty(t, buf.undoStack)
	require.NotNil(t, buf.diagram)
	assert.Len(t, buf.diagram.Nodes, 3)
}

func TestOpenMissingFile(t *testing.T) {
	m := newTestModel(t)
	err := m.openFile(filepath.Join(t.TempDir(), "missing.tex"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunFileOpSave(t *testing.T) {
	dir := t.TempDir()
	m := newTestModel(t)
	m.config.SaveDirectory = dir

	m.startFileInput(FileOpSave)
	assert.Equal(t, "table", m.editText)
	m.runFileOp()

	assert.Equal(t, InputNormal, m.input)
	assert.Empty(t, m.errorMessage)
	assert.Contains(t, m.successMessage, filepath.Join(dir, "table.tex"))
	assert.FileExists(t, filepath.Join(dir, "table.tex"))
}

func TestScanFilesListsDocuments(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.tex", "a.json", "notes.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	m := newTestModel(t)
	m.config.SaveDirectory = dir

	m.startFileInput(FileOpOpen)

	assert.Equal(t, []string{"a.json", "b.tex"}, m.fileList)
	assert.Equal(t, "a.json", m.editText)
}
