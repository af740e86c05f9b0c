package latex

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// Cell is one entry of a parsed tabular. Content keeps its LaTeX escapes.
type Cell struct {
	ID              string    `json:"id"`
	Content         string    `json:"content"`
	BackgroundColor string    `json:"backgroundColor"`
	TextColor       string    `json:"textColor"`
	Bold            bool      `json:"bold"`
	Alignment       Alignment `json:"alignment"`
	RowSpan         int       `json:"rowSpan,omitempty"`
	ColSpan         int       `json:"colSpan,omitempty"`
}

// Table is a rectangular grid: every row holds exactly Cols cells.
type Table struct {
	Rows       int      `json:"rows"`
	Cols       int      `json:"cols"`
	Cells      [][]Cell `json:"cells"`
	ColumnSpec string   `json:"columnSpec,omitempty"`
}

var (
	tabularRe = regexp.MustCompile(`\\begin\{tabular\}(?:\[[^\]]*\])?\{((?:[^{}]|\{[^{}]*\})*)\}([\s\S]*?)\\end\{tabular\}`)
	hlineRe   = regexp.MustCompile(`\\hline`)
	clineRe   = regexp.MustCompile(`\\cline\{[^}]+\}`)
)

// ParseTabular reads the first tabular environment in src. It returns nil
// when there is no environment or it holds no cells.
func ParseTabular(src string) *Table {
	if src == "" {
		return nil
	}
	m := tabularRe.FindStringSubmatch(src)
	if m == nil {
		return nil
	}

	var rows [][]string
	for _, raw := range strings.Split(m[2], `\\`) {
		row := cleanRow(raw)
		if row == "" {
			continue
		}
		rows = append(rows, splitCells(row))
	}
	if len(rows) == 0 {
		return nil
	}

	cols := 0
	for _, row := range rows {
		if len(row) > cols {
			cols = len(row)
		}
	}
	if cols == 0 {
		return nil
	}

	cells := make([][]Cell, len(rows))
	for r, row := range rows {
		cells[r] = make([]Cell, cols)
		for c := 0; c < cols; c++ {
			content := ""
			if c < len(row) {
				content = row[c]
			}
			cells[r][c] = newCell(r, c, content)
		}
	}
	return &Table{Rows: len(cells), Cols: cols, Cells: cells, ColumnSpec: m[1]}
}

func newCell(row, col int, content string) Cell {
	return Cell{
		ID:              CellID(row, col),
		Content:         strings.TrimSpace(content),
		BackgroundColor: "#ffffff",
		TextColor:       "#000000",
		Bold:            false,
		Alignment:       AlignLeft,
	}
}

// CellID is positional, so it shifts when rows or columns are inserted.
func CellID(row, col int) string {
	return fmt.Sprintf("cell-%d-%d", row, col)
}

func cleanRow(row string) string {
	row = hlineRe.ReplaceAllString(row, "")
	row = clineRe.ReplaceAllString(row, "")
	lines := strings.Split(row, "\n")
	for i, line := range lines {
		lines[i] = stripComment(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// stripComment drops everything from the first unescaped % to end of line.
func stripComment(line string) string {
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			i++
		case '%':
			return line[:i]
		}
	}
	return line
}

// splitCells splits on & but never inside \&.
func splitCells(row string) []string {
	var cells []string
	start := 0
	for i := 0; i < len(row); i++ {
		switch row[i] {
		case '\\':
			i++
		case '&':
			cells = append(cells, strings.TrimSpace(row[start:i]))
			start = i + 1
		}
	}
	return append(cells, strings.TrimSpace(row[start:]))
}

// ErrRowBreak is returned by EscapeCell for content holding \\, which
// would end the row inside a cell.
var ErrRowBreak = errors.New(`cell content cannot contain \\`)

// EscapeCell prepares typed text for a tabular cell: a bare & or % becomes
// \& or \% so the cell keeps the table's shape. Existing escapes are kept.
func EscapeCell(content string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(content); i++ {
		ch := content[i]
		switch {
		case ch == '\\' && i+1 < len(content) && content[i+1] == '\\':
			return "", ErrRowBreak
		case ch == '\\' && i+1 < len(content):
			b.WriteByte(ch)
			i++
			b.WriteByte(content[i])
		case ch == '&' || ch == '%':
			b.WriteByte('\\')
			b.WriteByte(ch)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String(), nil
}

// ColumnAlignments reads l/c/r column types from a colspec. Paragraph
// columns (p, m, b) count as left aligned; rules and spacing are ignored.
func ColumnAlignments(spec string) []Alignment {
	var out []Alignment
	depth := 0
	for i := 0; i < len(spec); i++ {
		ch := spec[i]
		switch {
		case ch == '{':
			depth++
		case ch == '}':
			depth--
		case depth > 0:
		case ch == 'l', ch == 'p', ch == 'm', ch == 'b', ch == 'X':
			out = append(out, AlignLeft)
		case ch == 'c':
			out = append(out, AlignCenter)
		case ch == 'r':
			out = append(out, AlignRight)
		}
	}
	return out
}
