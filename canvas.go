package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"texpad/internal/latex"
	"texpad/internal/whiteboard"
)

// Canvas is a rune grid with an optional foreground color per cell. The
// preview renderers draw into it and View turns it into styled lines.
type Canvas struct {
	cells   [][]rune
	colors  [][]string
	reverse [][]bool
}

func NewCanvas(width, height int) *Canvas {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	c := &Canvas{
		cells:   make([][]rune, height),
		colors:  make([][]string, height),
		reverse: make([][]bool, height),
	}
	for y := range c.cells {
		c.cells[y] = []rune(strings.Repeat(" ", width))
		c.colors[y] = make([]string, width)
		c.reverse[y] = make([]bool, width)
	}
	return c
}

func (c *Canvas) Width() int {
	if len(c.cells) == 0 {
		return 0
	}
	return len(c.cells[0])
}

func (c *Canvas) Height() int { return len(c.cells) }

func (c *Canvas) isValidPos(x, y int) bool {
	return y >= 0 && y < len(c.cells) && x >= 0 && x < len(c.cells[y])
}

// wideTail fills the cell to the right of a double-width rune.
const wideTail rune = 0

func (c *Canvas) Set(x, y int, r rune, color string) {
	if !c.isValidPos(x, y) {
		return
	}
	row := c.cells[y]
	if row[x] == wideTail && x > 0 {
		row[x-1] = ' '
	}
	if x+1 < len(row) && row[x+1] == wideTail {
		row[x+1] = ' '
	}
	row[x] = r
	c.colors[y][x] = color
}

func (c *Canvas) SetReverse(x, y int) {
	if c.isValidPos(x, y) {
		c.reverse[y][x] = true
	}
}

// WriteString draws s from (x, y) and stops at maxX. A double-width rune
// takes two cells; one that would cross maxX or the canvas edge is dropped.
func (c *Canvas) WriteString(x, y int, s, color string, maxX int) {
	maxX = min(maxX, c.Width())
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 || x < 0 {
			x += w
			continue
		}
		if x+w > maxX {
			return
		}
		c.Set(x, y, r, color)
		if w == 2 && c.isValidPos(x+1, y) {
			c.Set(x+1, y, ' ', color)
			c.cells[y][x+1] = wideTail
		}
		x += w
	}
}

// rowText renders cells, leaving out the tails of double-width runes.
func rowText(cells []rune) string {
	var b strings.Builder
	for _, r := range cells {
		if r != wideTail {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Lines renders every row, grouping runs of the same color into one
// lipgloss style.
func (c *Canvas) Lines() []string {
	out := make([]string, len(c.cells))
	for y, row := range c.cells {
		var line strings.Builder
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && c.colors[y][x] == c.colors[y][start] && c.reverse[y][x] == c.reverse[y][start] {
				continue
			}
			line.WriteString(cellStyle(c.colors[y][start], c.reverse[y][start]).Render(rowText(row[start:x])))
			start = x
		}
		out[y] = line.String()
	}
	return out
}

// Plain renders every row without styling, for text export.
func (c *Canvas) Plain() []string {
	out := make([]string, len(c.cells))
	for y, row := range c.cells {
		out[y] = strings.TrimRight(rowText(row), " ")
	}
	return out
}

func cellStyle(color string, reverse bool) lipgloss.Style {
	s := lipgloss.NewStyle()
	if color != "" {
		s = s.Foreground(lipgloss.Color(color))
	}
	if reverse {
		s = s.Reverse(true)
	}
	return s
}

// terminalColor converts a resolved LaTeX color to "#rrggbb" for lipgloss.
// White and near-white turn into the terminal default so boxes stay
// visible on light and dark themes.
func terminalColor(resolved string) string {
	rgba, ok := latex.ToRGBA(resolved)
	if !ok {
		return ""
	}
	if rgba.R > 0xf0 && rgba.G > 0xf0 && rgba.B > 0xf0 {
		return ""
	}
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}

type borderRunes struct {
	topLeft, topRight, bottomLeft, bottomRight rune
	horizontal, left, right                    rune
}

func shapeBorder(shape latex.Shape, selected bool) borderRunes {
	if selected {
		return borderRunes{'#', '#', '#', '#', '#', '#', '#'}
	}
	switch shape {
	case latex.ShapeCircle:
		return borderRunes{'.', '.', '\'', '\'', '-', '(', ')'}
	case latex.ShapeDiamond:
		return borderRunes{'/', '\\', '\\', '/', '-', '<', '>'}
	default:
		return borderRunes{'+', '+', '+', '+', '-', '|', '|'}
	}
}

// diagramScale maps canvas pixels to preview cells.
type diagramScale struct {
	sx, sy float64
}

func newDiagramScale(d *latex.Diagram, width, height int) diagramScale {
	cw, ch := d.CanvasWidth, d.CanvasHeight
	if cw <= 0 {
		cw = latex.CanvasWidth
	}
	if ch <= 0 {
		ch = latex.CanvasHeight
	}
	return diagramScale{sx: float64(width) / cw, sy: float64(height) / ch}
}

func (s diagramScale) cell(p latex.Point) (int, int) {
	return int(math.Round(p.X * s.sx)), int(math.Round(p.Y * s.sy))
}

// nodeRect returns the node's box in cells, at least 3x3 so a border and
// one label row always fit.
func (s diagramScale) nodeRect(n latex.Node) (x0, y0, x1, y1 int) {
	x0, y0 = s.cell(latex.Point{X: n.X, Y: n.Y})
	x1, y1 = s.cell(latex.Point{X: n.X + n.Width, Y: n.Y + n.Height})
	x1--
	y1--
	if x1-x0 < 2 {
		x1 = x0 + 2
	}
	if y1-y0 < 2 {
		y1 = y0 + 2
	}
	return
}

// RenderDiagram draws connections first, then nodes on top.
func RenderDiagram(d *latex.Diagram, width, height, selected int) *Canvas {
	c := NewCanvas(width, height)
	if d == nil {
		return c
	}
	scale := newDiagramScale(d, width, height)

	for _, conn := range d.Connections {
		to, ok := d.Node(conn.To)
		if !ok {
			continue
		}
		x0, y0 := scale.cell(conn.FromPoint)
		x1, y1 := scale.cell(conn.ToPoint)
		tx0, ty0, tx1, ty1 := scale.nodeRect(to)
		c.drawConnection(x0, y0, x1, y1, conn.Kind == latex.KindArrow, terminalColor(conn.Color),
			func(x, y int) bool { return x >= tx0 && x <= tx1 && y >= ty0 && y <= ty1 })
	}

	for i, n := range d.Nodes {
		c.drawNode(n, scale, i == selected)
	}
	return c
}

// drawConnection walks a Bresenham line from (x0, y0) toward (x1, y1) and
// stops where the target box begins. Arrows end in a head pointing along
// the last step.
func (c *Canvas) drawConnection(x0, y0, x1, y1 int, arrow bool, color string, inTarget func(x, y int) bool) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	line := lineRune(x1-x0, y1-y0)

	x, y := x0, y0
	lastX, lastY := x, y
	stepX, stepY := 0, 0
	err := dx + dy
	for {
		if inTarget(x, y) {
			break
		}
		c.Set(x, y, line, color)
		lastX, lastY = x, y
		if x == x1 && y == y1 {
			break
		}
		e2 := 2 * err
		stepX, stepY = 0, 0
		if e2 >= dy {
			err += dy
			x += sx
			stepX = sx
		}
		if e2 <= dx {
			err += dx
			y += sy
			stepY = sy
		}
	}
	if arrow && (stepX != 0 || stepY != 0) {
		c.Set(lastX, lastY, arrowRune(stepX, stepY), color)
	}
}

func lineRune(dx, dy int) rune {
	switch {
	case dy == 0 || abs(dx) > 2*abs(dy):
		return '-'
	case dx == 0 || abs(dy) > 2*abs(dx):
		return '|'
	case (dx > 0) == (dy > 0):
		return '\\'
	default:
		return '/'
	}
}

func arrowRune(stepX, stepY int) rune {
	switch {
	case stepX > 0 && stepY == 0:
		return '>'
	case stepX < 0 && stepY == 0:
		return '<'
	case stepY > 0:
		return 'v'
	default:
		return '^'
	}
}

func (c *Canvas) drawNode(n latex.Node, scale diagramScale, selected bool) {
	x0, y0, x1, y1 := scale.nodeRect(n)
	b := shapeBorder(n.Shape, selected)
	stroke := terminalColor(n.StrokeColor)

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			var r rune
			switch {
			case y == y0 && x == x0:
				r = b.topLeft
			case y == y0 && x == x1:
				r = b.topRight
			case y == y1 && x == x0:
				r = b.bottomLeft
			case y == y1 && x == x1:
				r = b.bottomRight
			case y == y0 || y == y1:
				r = b.horizontal
			case x == x0:
				r = b.left
			case x == x1:
				r = b.right
			default:
				r = ' '
			}
			if r == ' ' {
				c.Set(x, y, r, "")
			} else {
				c.Set(x, y, r, stroke)
			}
		}
	}

	inner := x1 - x0 - 1
	label := runewidth.Truncate(n.Text, inner, "…")
	labelX := x0 + 1 + (inner-runewidth.StringWidth(label))/2
	c.WriteString(labelX, (y0+y1)/2, label, terminalColor(n.TextColor), x1)
}

// RenderBoard rasterizes strokes into cells for the preview pane. Eraser
// strokes blank the cells they cross.
func RenderBoard(strokes []whiteboard.Stroke, width, height int, opts whiteboard.RasterOptions) *Canvas {
	c := NewCanvas(width, height)
	if width == 0 || height == 0 {
		return c
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = whiteboard.DefaultRasterOptions()
	}
	sx := float64(width) / float64(opts.Width)
	sy := float64(height) / float64(opts.Height)

	for _, s := range strokes {
		r, color := '█', terminalColor(s.Color)
		if s.Tool == whiteboard.ToolBrush {
			r = '▓'
		}
		if s.Tool == whiteboard.ToolEraser {
			r, color = ' ', ""
		}
		px, py := -1, -1
		for i := 0; i+1 < len(s.Points); i += 2 {
			x := int(s.Points[i] * sx)
			y := int(s.Points[i+1] * sy)
			if px < 0 {
				c.Set(x, y, r, color)
			} else {
				c.plotLine(px, py, x, y, r, color)
			}
			px, py = x, y
		}
	}
	return c
}

func (c *Canvas) plotLine(x0, y0, x1, y1 int, r rune, color string) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	err := dx + dy
	for {
		c.Set(x0, y0, r, color)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

const maxCellWidth = 24

// RenderTable draws the table as a ruled grid with the cursor cell in
// reverse video. Column alignment follows the column spec.
func RenderTable(t *latex.Table, width, height, cursorRow, cursorCol int) *Canvas {
	c := NewCanvas(width, height)
	if t == nil || t.Cols == 0 {
		return c
	}

	widths := tableColumnWidths(t)
	aligns := latex.ColumnAlignments(t.ColumnSpec)

	rule := func(y int) {
		x := 0
		c.Set(x, y, '+', "")
		for _, w := range widths {
			for i := 0; i < w+2; i++ {
				x++
				c.Set(x, y, '-', "")
			}
			x++
			c.Set(x, y, '+', "")
		}
	}

	y := 0
	rule(y)
	for r, row := range t.Cells {
		y++
		x := 0
		c.Set(x, y, '|', "")
		for col, cell := range row {
			align := cell.Alignment
			if col < len(aligns) {
				align = aligns[col]
			}
			text := padCell(cell.Content, widths[col], align)
			c.WriteString(x+2, y, text, terminalColor(cell.TextColor), width)
			if r == cursorRow && col == cursorCol {
				for i := x + 1; i <= x+widths[col]+2; i++ {
					c.SetReverse(i, y)
				}
			}
			x += widths[col] + 3
			c.Set(x, y, '|', "")
		}
		y++
		rule(y)
	}
	return c
}

// tableColumnWidths is the display width of each column's widest cell,
// between 1 and maxCellWidth.
func tableColumnWidths(t *latex.Table) []int {
	widths := make([]int, t.Cols)
	for _, row := range t.Cells {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell.Content); w > widths[i] {
				widths[i] = w
			}
		}
	}
	for i := range widths {
		widths[i] = clamp(widths[i], 1, maxCellWidth)
	}
	return widths
}

func padCell(content string, width int, align latex.Alignment) string {
	text := runewidth.Truncate(content, width, "…")
	gap := width - runewidth.StringWidth(text)
	switch align {
	case latex.AlignRight:
		return strings.Repeat(" ", gap) + text
	case latex.AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + text + strings.Repeat(" ", gap-left)
	default:
		return text + strings.Repeat(" ", gap)
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
