package main

func (m *model) undo() {
	buf := m.getCurrentBuffer()
	if buf == nil || len(buf.undoStack) == 0 {
		return
	}

	lastIndex := len(buf.undoStack) - 1
	action := buf.undoStack[lastIndex]
	buf.undoStack = buf.undoStack[:lastIndex]

	m.apply(buf, action.Type, action.Inverse)
	buf.redoStack = append(buf.redoStack, action)
}

func (m *model) redo() {
	buf := m.getCurrentBuffer()
	if buf == nil || len(buf.redoStack) == 0 {
		return
	}

	lastIndex := len(buf.redoStack) - 1
	action := buf.redoStack[lastIndex]
	buf.redoStack = buf.redoStack[:lastIndex]

	m.apply(buf, action.Type, action.Data)
	buf.undoStack = append(buf.undoStack, action)
}

func (m *model) apply(buf *Buffer, actionType ActionType, data interface{}) {
	switch actionType {
	case ActionEditSource, ActionPasteSource, ActionVisualEdit:
		edit := data.(SourceEditData)
		buf.source = edit.Source
		m.clampSourceCursor()
		m.reparse(buf)
	case ActionStroke:
		strokes := data.(StrokeData)
		buf.board.Load(strokes.Strokes)
		buf.source = m.boardSource(buf)
	}
}
