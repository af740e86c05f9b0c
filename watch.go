package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"texpad/internal/whiteboard"
)

// fileChangedMsg reports a write to a file some buffer was saved to or
// opened from.
type fileChangedMsg struct {
	path string
}

// fileWatcher watches the directories of open files and filters events
// down to the files themselves, so editors that save by rename still
// trigger a reload.
type fileWatcher struct {
	watcher *fsnotify.Watcher

	mu    sync.Mutex
	files map[string]bool
	dirs  map[string]bool
}

func newFileWatcher() (*fileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("file watcher: %w", err)
	}
	return &fileWatcher{
		watcher: w,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
	}, nil
}

func (fw *fileWatcher) Watch(path string) error {
	if fw == nil {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.files[abs] = true
	dir := filepath.Dir(abs)
	if fw.dirs[dir] {
		return nil
	}
	if err := fw.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	fw.dirs[dir] = true
	return nil
}

func (fw *fileWatcher) watching(path string) bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	return fw.files[filepath.Clean(path)]
}

// Wait blocks until a watched file is written or recreated.
func (fw *fileWatcher) Wait() tea.Cmd {
	if fw == nil {
		return nil
	}
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-fw.watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 || !fw.watching(event.Name) {
					continue
				}
				return fileChangedMsg{path: filepath.Clean(event.Name)}
			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return nil
				}
				slog.Warn("watch", "err", err)
			}
		}
	}
}

func (fw *fileWatcher) Close() error {
	if fw == nil {
		return nil
	}
	return fw.watcher.Close()
}

// watchBuffer starts watching the current buffer's file, if it has one.
func (m *model) watchBuffer() {
	buf := m.getCurrentBuffer()
	if buf == nil || buf.filename == "" {
		return
	}
	if err := m.watcher.Watch(buf.filename); err != nil {
		slog.Warn("watch", "err", err)
	}
}

// handleFileChanged reloads every buffer backed by path. The reload is a
// single undoable step; a buffer whose source is being typed into is left
// alone.
func (m *model) handleFileChanged(msg fileChangedMsg) {
	data, err := os.ReadFile(msg.path)
	if err != nil {
		slog.Warn("watch: reload", "path", msg.path, "err", err)
		return
	}
	for i := range m.buffers {
		buf := &m.buffers[i]
		if buf.filename == "" {
			continue
		}
		if abs, err := filepath.Abs(buf.filename); err != nil || abs != msg.path {
			continue
		}
		if i == m.currentBufferIndex && m.input == InputEditSource {
			m.errorMessage = fmt.Sprintf("%s changed on disk", filepath.Base(msg.path))
			continue
		}
		if m.reloadBuffer(buf, data) {
			slog.Info("watch: reloaded", "path", msg.path, "buffer", i+1)
			m.successMessage = fmt.Sprintf("Reloaded %s", filepath.Base(msg.path))
		}
	}
}

func (m *model) reloadBuffer(buf *Buffer, data []byte) bool {
	if buf.kind == ModeWhiteboard {
		if !strings.EqualFold(filepath.Ext(buf.filename), ".json") {
			return false
		}
		strokes, err := whiteboard.ReadVector(bytes.NewReader(data))
		if err != nil {
			m.errorMessage = err.Error()
			return false
		}
		before := buf.board.Strokes()
		buf.board.Load(strokes)
		source := m.boardSource(buf)
		if source == buf.source {
			return false
		}
		recordActionOn(buf, ActionStroke, StrokeData{Strokes: buf.board.Strokes()}, StrokeData{Strokes: before})
		buf.source = source
		return true
	}

	source := string(data)
	if source == buf.source {
		return false
	}
	recordActionOn(buf, ActionPasteSource, SourceEditData{Source: source}, SourceEditData{Source: buf.source})
	buf.source = source
	if buf == m.getCurrentBuffer() {
		m.clampSourceCursor()
	}
	m.reparse(buf)
	return true
}
