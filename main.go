package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"texpad/internal/splitter"
	"texpad/internal/whiteboard"
)

func main() {
	config := loadConfig()

	if config.LogFile != "" {
		f, err := tea.LogToFile(config.LogFile, "texpad")
		if err != nil {
			fmt.Fprintln(os.Stderr, "log file:", err)
			os.Exit(1)
		}
		defer f.Close()
	} else {
		// slog's default handler writes through the standard logger
		log.SetOutput(io.Discard)
	}

	m := initialModel(config)
	if w, err := newFileWatcher(); err != nil {
		slog.Warn("watch", "err", err)
	} else {
		m.watcher = w
		defer w.Close()
	}

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

const sampleTable = `\begin{tabular}{|l|c|r|}
\hline
Item & Qty & Price \\
\hline
Apples & 3 & 1.20 \\
\hline
Pears & 12 & 0.80 \\
\hline
\end{tabular}`

const sampleDiagram = `\begin{tikzpicture}
\definecolor{accent}{HTML}{1976D2}
\node (start) [circle, fill=#E3F2FD, draw=accent] at (-3, 0) {Start};
\node (work) [rectangle, draw=accent] at (0, 0) {Write};
\node (done) [diamond, fill=#FFF8E1] at (3, 0) {Done?};
\draw [->] (start) -- (work);
\draw [->] (work) -- (done);
\end{tikzpicture}`

func initialModel(config *Config) model {
	if config == nil {
		config = defaultConfig()
	}
	m := model{
		config:       config,
		layout:       splitter.New(2, splitter.Horizontal, float64(config.MinPane)),
		highlighter:  newHighlighter(config.Style),
		selectedNode: -1,
		width:        80,
		height:       24,
	}
	m.addNewBuffer(ModeTable, sampleTable, "")
	m.addNewBuffer(ModeDiagram, sampleDiagram, "")
	m.addNewBuffer(ModeWhiteboard, "", "")

	for i := range m.buffers {
		buf := &m.buffers[i]
		if buf.kind == ModeWhiteboard {
			buf.board = whiteboard.NewBoard()
			buf.source = m.boardSource(buf)
			continue
		}
		m.reparse(buf)
	}
	m.switchBuffer(config.StartMode)
	return m
}

func (m model) Init() tea.Cmd {
	return m.watcher.Wait()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case reparseMsg:
		m.handleReparse(msg)
		return m, nil

	case fileChangedMsg:
		m.handleFileChanged(msg)
		return m, m.watcher.Wait()

	case tea.MouseMsg:
		return m, m.handleMouse(msg)

	case tea.KeyMsg:
		if m.help {
			switch msg.String() {
			case "j", "down":
				m.helpScroll++
			case "k", "up":
				if m.helpScroll > 0 {
					m.helpScroll--
				}
			default:
				m.help = false
				m.helpScroll = 0
			}
			return m, nil
		}

		switch m.input {
		case InputEditSource:
			return m, m.handleSourceKey(msg)

		case InputEditCell:
			if msg.Type == tea.KeyEscape {
				m.input = InputNormal
				return m, nil
			}
			if m.handleLineKey(msg) {
				m.commitCellEdit()
			}
			return m, nil

		case InputFileName:
			switch msg.Type {
			case tea.KeyEscape:
				m.input = InputNormal
				m.errorMessage = ""
				return m, nil
			case tea.KeyUp, tea.KeyDown:
				if m.fileOp == FileOpOpen && len(m.fileList) > 0 {
					step := 1
					if msg.Type == tea.KeyUp {
						step = -1
					}
					m.selectedFileIndex = clamp(m.selectedFileIndex+step, 0, len(m.fileList)-1)
					m.editText = m.fileList[m.selectedFileIndex]
					m.editCursorPos = len([]rune(m.editText))
				}
				return m, nil
			}
			if m.handleLineKey(msg) {
				m.runFileOp()
			}
			return m, nil
		}

		return m.handleNormalKey(msg)
	}
	return m, nil
}

func (m model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	buf := m.getCurrentBuffer()
	key := msg.String()

	switch key {
	case "ctrl+c", "q":
		m.layout.End()
		return m, tea.Quit
	case "?":
		m.help = true
		return m, nil
	case "{", "}":
		if len(m.buffers) > 1 {
			step := 1
			if key == "{" {
				step = -1
			}
			m.currentBufferIndex = (m.currentBufferIndex + step + len(m.buffers)) % len(m.buffers)
			m.resetCursors()
		}
		return m, nil
	case "1", "2", "3":
		m.switchBuffer(Mode(key[0] - '1'))
		return m, nil
	case "[":
		m.nudgeGutter(-2)
		return m, nil
	case "]":
		m.nudgeGutter(2)
		return m, nil
	case "u":
		m.undo()
		m.successMessage = ""
		return m, nil
	case "U", "ctrl+r":
		m.redo()
		m.successMessage = ""
		return m, nil
	case "y":
		if err := writeClipboardText(buf.source); err != nil {
			m.errorMessage = fmt.Sprintf("Error copying: %s", err)
		} else {
			m.successMessage = "Copied source to clipboard"
			m.errorMessage = ""
		}
		return m, nil
	case "P":
		if buf.kind == ModeWhiteboard {
			m.errorMessage = "Whiteboard source is read-only"
			return m, nil
		}
		text, err := readClipboardText()
		if err != nil {
			m.errorMessage = fmt.Sprintf("Error pasting: %s", err)
			return m, nil
		}
		m.successMessage = ""
		m.replaceSource(ActionPasteSource, cleanClipboardText(text))
		return m, nil
	case "ctrl+s", "s":
		m.startFileInput(FileOpSave)
		return m, nil
	case "ctrl+p", "S":
		m.startFileInput(FileOpSavePNG)
		return m, nil
	case "ctrl+e", "x":
		m.startFileInput(FileOpExport)
		return m, nil
	case "o":
		m.startFileInput(FileOpOpen)
		return m, nil
	}

	switch buf.kind {
	case ModeTable:
		switch key {
		case "e", "i":
			m.startSourceEdit()
		case "enter":
			if buf.table != nil {
				m.input = InputEditCell
				m.editText = buf.table.Cells[m.cellRow][m.cellCol].Content
				m.editCursorPos = len([]rune(m.editText))
			}
		default:
			m.handleCellMove(key)
		}

	case ModeDiagram:
		switch key {
		case "e", "i":
			m.startSourceEdit()
		case "tab":
			m.selectNextNode(1)
		case "shift+tab":
			m.selectNextNode(-1)
		case "esc":
			m.selectedNode = -1
		case "r":
			m.cycleShape()
		default:
			m.handleNodeMove(key)
		}

	case ModeWhiteboard:
		board := buf.board
		switch key {
		case "t":
			for i, tool := range whiteboard.Tools {
				if tool == board.Tool() {
					board.SetTool(whiteboard.Tools[(i+1)%len(whiteboard.Tools)])
					break
				}
			}
		case "c":
			m.paletteIndex = (m.paletteIndex + 1) % len(palette)
			board.SetColor(palette[m.paletteIndex])
		case "+", "=":
			board.SetWidth(board.Width() + widthStep)
		case "-":
			board.SetWidth(board.Width() - widthStep)
		case "D":
			if board.Len() > 0 {
				before := board.Strokes()
				board.Load(nil)
				m.recordAction(ActionStroke, StrokeData{}, StrokeData{Strokes: before})
				buf.source = m.boardSource(buf)
			}
		}
	}
	return m, nil
}

func (m *model) startFileInput(op FileOperation) {
	buf := m.getCurrentBuffer()
	m.input = InputFileName
	m.fileOp = op
	m.errorMessage = ""
	m.successMessage = ""
	m.editText = ""
	m.fileList = nil
	m.selectedFileIndex = -1

	switch op {
	case FileOpOpen:
		m.scanFiles()
	case FileOpSave:
		if buf.filename != "" {
			m.editText = buf.filename
		} else {
			m.editText = defaultName(buf.kind)
		}
	default:
		m.editText = defaultName(buf.kind)
	}
	m.editCursorPos = len([]rune(m.editText))
}

func defaultName(kind Mode) string {
	switch kind {
	case ModeDiagram:
		return "diagram"
	case ModeWhiteboard:
		return "whiteboard"
	}
	return "table"
}

// runFileOp performs the pending save, export or open with the typed name.
func (m *model) runFileOp() {
	name := strings.TrimSpace(m.editText)
	if name == "" {
		m.errorMessage = "Filename required"
		return
	}
	kind := m.currentMode()

	var err error
	var path string
	switch m.fileOp {
	case FileOpSave:
		ext := ".tex"
		if kind == ModeWhiteboard {
			ext = ".json"
		}
		path = m.config.GetSavePath(withExt(name, ext))
		err = m.saveSource(path)
	case FileOpSavePNG:
		path = m.config.GetSavePath(withExt(name, ".png"))
		err = m.exportPNG(path)
	case FileOpExport:
		if kind == ModeWhiteboard {
			path = m.config.GetSavePath(withExt(name, ".json"))
			err = m.exportVector(path)
		} else {
			path = m.config.GetSavePath(withExt(name, ".txt"))
			err = m.exportVisualTXT(path)
		}
	case FileOpOpen:
		path = name
		if _, statErr := os.Stat(path); statErr != nil {
			path = m.config.GetSavePath(name)
		}
		err = m.openFile(path)
	}

	if err != nil {
		slog.Warn("file", "op", m.fileOp, "path", path, "err", err)
		m.errorMessage = err.Error()
		return
	}
	if m.fileOp == FileOpSave || m.fileOp == FileOpOpen {
		m.watchBuffer()
	}
	absPath, _ := filepath.Abs(path)
	if m.fileOp == FileOpOpen {
		m.successMessage = fmt.Sprintf("Opened %s", absPath)
	} else {
		m.successMessage = fmt.Sprintf("Saved to %s", absPath)
	}
	m.input = InputNormal
}

func withExt(name, ext string) string {
	if strings.EqualFold(filepath.Ext(name), ext) {
		return name
	}
	return name + ext
}

func (m *model) scanFiles() {
	dir := "."
	if m.config.SaveDirectory != "" {
		dir = m.config.SaveDirectory
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !entry.IsDir() && (ext == ".tex" || ext == ".json") {
			m.fileList = append(m.fileList, entry.Name())
		}
	}
	sort.Strings(m.fileList)
	if len(m.fileList) > 0 {
		m.selectedFileIndex = 0
		m.editText = m.fileList[0]
	}
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Reverse(true)
	gutterStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
	dragStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true)
	activeTab     = lipgloss.NewStyle().Bold(true).Underline(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E53935"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#43A047"))
	selectedStyle = lipgloss.NewStyle().Reverse(true)
)

func (m model) View() string {
	if m.help {
		return m.helpView()
	}
	width := max(m.width, 3)
	height := m.contentHeight()
	spans := m.spans()

	left := m.sourcePane(spans[0].Size, height)
	right := m.previewPane(spans[1].Size, height)
	gutter := gutterStyle.Render("│")
	if _, dragging := m.layout.Dragging(); dragging {
		gutter = dragStyle.Render("┃")
	}

	var result strings.Builder
	result.WriteString(m.renderBufferBar(width))
	for y := 0; y < height; y++ {
		result.WriteString("\n")
		result.WriteString(left[y])
		result.WriteString(gutter)
		result.WriteString(right[y])
	}
	result.WriteString("\n")
	result.WriteString(m.statusLine(width))
	return result.String()
}

func (m *model) renderBufferBar(width int) string {
	var bar strings.Builder
	used := 0
	for i, buf := range m.buffers {
		name := fmt.Sprintf("%d:%s", i+1, m.modeName(buf.kind))
		if buf.filename != "" {
			name += " " + filepath.Base(buf.filename)
		}
		name = " " + name + " "
		used += runewidth.StringWidth(name)
		if i == m.currentBufferIndex {
			bar.WriteString(activeTab.Render(name))
		} else {
			bar.WriteString(name)
		}
	}
	if used < width {
		bar.WriteString(strings.Repeat(" ", width-used))
	}
	return bar.String()
}

func (m *model) sourcePane(width, height int) []string {
	buf := m.getCurrentBuffer()
	lines := make([]string, 0, height)

	title := "LaTeX source"
	lexer := "tex"
	if buf.kind == ModeWhiteboard {
		title, lexer = "Strokes (JSON)", "json"
	}
	if m.input == InputEditSource {
		title += " [editing]"
	}
	lines = append(lines, titleStyle.Render(fit(title, width)))

	body := height - titleRows
	cursorLine, cursorCol := cursorLineCol(buf.source, m.sourceCursor)
	scroll := 0
	if cursorLine >= body {
		scroll = cursorLine - body + 1
	}
	src := m.highlighter.Lines(buf.source, lexer)
	for i := 0; i < body; i++ {
		idx := scroll + i
		col := -1
		if m.input == InputEditSource && idx == cursorLine {
			col = cursorCol
		}
		if idx < len(src) {
			lines = append(lines, m.highlighter.renderLine(src[idx], width, col))
		} else {
			lines = append(lines, strings.Repeat(" ", width))
		}
	}
	return lines
}

func (m *model) previewPane(width, height int) []string {
	buf := m.getCurrentBuffer()
	body := height - titleRows

	var title string
	var canvas *Canvas
	switch buf.kind {
	case ModeTable:
		title = "Table " + m.parseSummary()
		row, col := m.cellRow, m.cellCol
		if m.input == InputEditCell {
			row, col = -1, -1
		}
		canvas = RenderTable(buf.table, width, body, row, col)
	case ModeDiagram:
		title = "Diagram " + m.parseSummary()
		canvas = RenderDiagram(buf.diagram, width, body, m.selectedNode)
	case ModeWhiteboard:
		b := buf.board
		title = fmt.Sprintf("Whiteboard %s %s %gpx", b.Tool(), b.Color(), b.Width())
		canvas = RenderBoard(b.Strokes(), width, body, whiteboard.DefaultRasterOptions())
	}

	lines := []string{titleStyle.Render(fit(title, width))}
	return append(lines, canvas.Lines()...)
}

// fit truncates or pads s to exactly width display cells.
func fit(s string, width int) string {
	s = runewidth.Truncate(s, width, "…")
	return s + strings.Repeat(" ", width-runewidth.StringWidth(s))
}

func (m *model) statusLine(width int) string {
	var status string
	switch m.input {
	case InputEditSource:
		line, col := cursorLineCol(m.getCurrentBuffer().source, m.sourceCursor)
		status = fmt.Sprintf("Mode: SOURCE | Ln %d, Col %d | Esc=finish", line+1, col+1)
	case InputEditCell:
		status = fmt.Sprintf("Mode: CELL (%d,%d) | %s | Enter=confirm, Esc=cancel", m.cellRow+1, m.cellCol+1, withCursor(m.editText, m.editCursorPos))
	case InputFileName:
		var op string
		switch m.fileOp {
		case FileOpSave:
			op = "Save"
		case FileOpSavePNG:
			op = "Export PNG"
		case FileOpExport:
			op = "Export"
		case FileOpOpen:
			op = "Open"
		}
		status = fmt.Sprintf("Mode: FILE | %s filename: %s", op, withCursor(m.editText, m.editCursorPos))
		if m.fileOp == FileOpOpen && len(m.fileList) > 0 {
			status += fmt.Sprintf(" (%d/%d, ↑/↓)", m.selectedFileIndex+1, len(m.fileList))
		}
		status += " | Enter=confirm, Esc=cancel"
	default:
		status = fmt.Sprintf("Mode: %s", strings.ToUpper(m.modeName(m.currentMode())))
		if m.currentMode() == ModeDiagram && m.selectedNode >= 0 {
			if d := m.getCurrentBuffer().diagram; d != nil && m.selectedNode < len(d.Nodes) {
				status += fmt.Sprintf(" | Selected: %s", d.Nodes[m.selectedNode].ID)
			}
		}
		if m.errorMessage == "" && m.successMessage == "" {
			status += " | ? for help | q to quit"
		}
	}

	if m.successMessage != "" {
		status += " | " + successStyle.Render(m.successMessage)
	}
	if m.errorMessage != "" {
		status += " | " + errorStyle.Render("ERROR: "+m.errorMessage)
	}
	if lipgloss.Width(status) > width {
		return runewidth.Truncate(status, width, "…")
	}
	return status
}

func withCursor(text string, pos int) string {
	runes := []rune(text)
	pos = clamp(pos, 0, len(runes))
	return string(runes[:pos]) + selectedStyle.Render("_") + string(runes[pos:])
}

func (m *model) modeName(kind Mode) string {
	switch kind {
	case ModeTable:
		return "table"
	case ModeDiagram:
		return "diagram"
	case ModeWhiteboard:
		return "whiteboard"
	default:
		return "unknown"
	}
}

var helpLines = []string{
	"texpad Help",
	"===========",
	"",
	"Buffers:",
	"--------",
	"  1/2/3            Table, diagram, whiteboard",
	"  { / }            Previous / next buffer",
	"  [ / ]            Move the pane divider (or drag it with the mouse)",
	"",
	"Source:",
	"-------",
	"  e / i            Edit the LaTeX source, Esc to finish",
	"  u / U            Undo / redo",
	"  y                Copy source to clipboard",
	"  P                Replace source with clipboard text",
	"",
	"Table:",
	"------",
	"  h/j/k/l          Move the cell cursor",
	"  Enter            Edit the cell under the cursor",
	"",
	"Diagram:",
	"--------",
	"  Tab / Shift+Tab  Select next / previous node (or click it)",
	"  h/j/k/l          Move the selected node by half a unit",
	"  r                Cycle the selected node's shape",
	"",
	"Whiteboard:",
	"-----------",
	"  mouse drag       Draw",
	"  t                Cycle pen, brush, eraser",
	"  c                Next color",
	"  + / -            Stroke width",
	"  D                Clear the board",
	"",
	"Files:",
	"------",
	"  Ctrl+S / s       Save source (.tex, whiteboard .json)",
	"  Ctrl+P / S       Export PNG",
	"  Ctrl+E / x       Export preview as text (whiteboard: stroke JSON)",
	"  o                Open a .tex or .json file",
	"",
	"  q                Quit",
}

func (m model) helpView() string {
	height := max(m.height-1, 1)
	start := clamp(m.helpScroll, 0, max(len(helpLines)-height, 0))
	end := min(start+height, len(helpLines))
	return strings.Join(helpLines[start:end], "\n") + "\n" + "j/k to scroll, any other key to close"
}
