package main

import (
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	strip "github.com/grokify/html-strip-tags-go"
)

func (m *model) getCurrentBuffer() *Buffer {
	if len(m.buffers) == 0 {
		return nil
	}
	return &m.buffers[m.currentBufferIndex]
}

func (m *model) currentMode() Mode {
	if buf := m.getCurrentBuffer(); buf != nil {
		return buf.kind
	}
	return ModeTable
}

func (m *model) addNewBuffer(kind Mode, source, filename string) {
	buffer := Buffer{
		kind:      kind,
		source:    source,
		undoStack: []Action{},
		redoStack: []Action{},
		filename:  filename,
	}
	m.buffers = append(m.buffers, buffer)
	m.currentBufferIndex = len(m.buffers) - 1
	m.resetCursors()
}

// switchBuffer moves to the buffer holding kind, if any.
func (m *model) switchBuffer(kind Mode) bool {
	for i, buf := range m.buffers {
		if buf.kind == kind {
			m.currentBufferIndex = i
			m.resetCursors()
			return true
		}
	}
	return false
}

func (m *model) resetCursors() {
	m.sourceCursor = 0
	m.cellRow, m.cellCol = 0, 0
	m.selectedNode = -1
}

func (m *model) recordAction(actionType ActionType, data, inverse interface{}) {
	recordActionOn(m.getCurrentBuffer(), actionType, data, inverse)
}

func recordActionOn(buf *Buffer, actionType ActionType, data, inverse interface{}) {
	if buf == nil {
		return
	}
	action := Action{
		Type:    actionType,
		Data:    data,
		Inverse: inverse,
	}
	buf.undoStack = append(buf.undoStack, action)
	buf.redoStack = buf.redoStack[:0]
}

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func writeClipboardText(text string) error {
	return clipboard.WriteAll(text)
}

func isRTF(text string) bool {
	return strings.HasPrefix(text, "{\\rtf") || strings.Contains(text, "\\rtf1")
}

func isHTML(text string) bool {
	return strings.HasPrefix(strings.TrimSpace(text), "<") &&
		(strings.Contains(text, "<html") || strings.Contains(text, "<body") || strings.Contains(text, "<div") || strings.Contains(text, "<pre"))
}

// extractTextFromRTF keeps the plain text of an RTF document. Control words
// are dropped except \par, \line and \tab; \'hh escapes are decoded.
func extractTextFromRTF(rtf string) string {
	var result strings.Builder
	result.Grow(len(rtf))

	for i := 0; i < len(rtf); i++ {
		b := rtf[i]
		switch {
		case b == '{' || b == '}':
			continue
		case b == '\\' && i+1 < len(rtf):
			next := rtf[i+1]
			switch {
			case next == '\'' && i+3 < len(rtf):
				if val, err := strconv.ParseUint(rtf[i+2:i+4], 16, 8); err == nil {
					result.WriteByte(byte(val))
				}
				i += 3
			case next == '\\' || next == '{' || next == '}':
				result.WriteByte(next)
				i++
			case next == '~':
				result.WriteByte(' ')
				i++
			case isLetter(next):
				j := i + 1
				for j < len(rtf) && isLetter(rtf[j]) {
					j++
				}
				word := rtf[i+1 : j]
				for j < len(rtf) && (rtf[j] == '-' || (rtf[j] >= '0' && rtf[j] <= '9')) {
					j++
				}
				if j < len(rtf) && rtf[j] == ' ' {
					j++
				}
				switch word {
				case "par", "line":
					result.WriteByte('\n')
				case "tab":
					result.WriteByte('\t')
				}
				i = j - 1
			default:
				i++
			}
		case b >= 32 && b < 127, b == '\t':
			result.WriteByte(b)
		}
	}
	return result.String()
}

var htmlEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", "\"",
	"&#39;", "'",
	"&nbsp;", " ",
	"&amp;", "&",
)

func extractTextFromHTML(html string) string {
	return htmlEntities.Replace(strip.StripTags(html))
}

// cleanClipboardText turns pasted RTF or HTML into plain text and
// normalizes line endings. Other control characters are dropped.
func cleanClipboardText(text string) string {
	if text == "" {
		return text
	}
	switch {
	case isRTF(text):
		text = extractTextFromRTF(text)
	case isHTML(text):
		text = extractTextFromHTML(text)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || r >= 32 {
			result.WriteRune(r)
		}
	}
	return result.String()
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
