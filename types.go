package main

import (
	"texpad/internal/latex"
	"texpad/internal/splitter"
	"texpad/internal/whiteboard"
)

type Buffer struct {
	kind      Mode
	source    string
	table     *latex.Table
	diagram   *latex.Diagram
	skipped   []latex.Skipped
	board     *whiteboard.Board
	undoStack []Action
	redoStack []Action
	filename  string
	parseGen  int
}

type model struct {
	width              int
	height             int
	buffers            []Buffer
	currentBufferIndex int
	input              InputMode
	help               bool
	helpScroll         int
	layout             *splitter.Layout
	sourceCursor       int // rune offset into the current source
	originalSource     string
	cellRow            int
	cellCol            int
	selectedNode       int
	editText           string
	editCursorPos      int
	strokesBefore      []whiteboard.Stroke
	paletteIndex       int
	fileList           []string
	selectedFileIndex  int
	fileOp             FileOperation
	errorMessage       string
	successMessage     string
	config             *Config
	highlighter        *highlighter
	watcher            *fileWatcher
}

type Action struct {
	Type    ActionType
	Data    interface{}
	Inverse interface{}
}

// SourceEditData is the whole source on one side of an edit.
type SourceEditData struct {
	Source string
}

type StrokeData struct {
	Strokes []whiteboard.Stroke
}

type reparseMsg struct {
	buffer int
	gen    int
}
