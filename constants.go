package main

import "time"

// Mode is the kind of document a buffer holds.
type Mode int

const (
	ModeTable Mode = iota
	ModeDiagram
	ModeWhiteboard
)

// InputMode is what keystrokes currently drive.
type InputMode int

const (
	InputNormal InputMode = iota
	InputEditSource
	InputEditCell
	InputFileName
)

type FileOperation int

const (
	FileOpSave FileOperation = iota
	FileOpSavePNG
	FileOpExport
	FileOpOpen
)

type ActionType int

const (
	ActionEditSource ActionType = iota
	ActionPasteSource
	ActionVisualEdit
	ActionStroke
)

const (
	gutterWidth     = 1
	nodeStep        = 0.5 // LaTeX units per diagram move
	widthStep       = 2
	defaultDebounce = 300 * time.Millisecond
	defaultMinPane  = 20
)

// palette is cycled by 'c' in whiteboard mode.
var palette = []string{"#FFD700", "#E53935", "#43A047", "#1E88E5", "#8E24AA", "#000000"}
