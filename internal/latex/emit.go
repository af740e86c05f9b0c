package latex

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EmitTabular writes t back as a tabular environment with a rule after
// every row. Cell contents are written as stored.
func EmitTabular(t *Table) string {
	if t == nil || t.Cols == 0 {
		return ""
	}
	spec := t.ColumnSpec
	if spec == "" {
		spec = "|" + strings.Repeat("l|", t.Cols)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\\begin{tabular}{%s}\n\\hline\n", spec)
	for _, row := range t.Cells {
		contents := make([]string, len(row))
		for i, cell := range row {
			contents[i] = cell.Content
		}
		b.WriteString(strings.Join(contents, " & "))
		b.WriteString(" \\\\\n\\hline\n")
	}
	b.WriteString("\\end{tabular}")
	return b.String()
}

// EmitTikz writes d as a tikzpicture. Hex colors get a \definecolor each;
// CSS keywords are written as is. Node positions are the inverse of the
// canvas transform, rounded to hundredths.
func EmitTikz(d *Diagram) string {
	if d == nil {
		return ""
	}
	names := newColorNamer()
	var nodes, edges []string

	for _, n := range d.Nodes {
		x, y := FromCanvas(n.Center())
		opts := []string{string(orShape(n.Shape))}
		if c := names.option(n.FillColor); c != "" {
			opts = append(opts, "fill="+c)
		}
		if c := names.option(n.StrokeColor); c != "" {
			opts = append(opts, "draw="+c)
		}
		nodes = append(nodes, fmt.Sprintf("\\node (%s) [%s] at (%s, %s) {%s};",
			n.ID, strings.Join(opts, ", "), formatCoord(x), formatCoord(y), EscapeLabel(n.Text)))
	}

	for _, c := range d.Connections {
		opts := []string{"->"}
		if c.Kind == KindLine {
			opts[0] = "-"
		}
		if col := names.option(c.Color); col != "" {
			opts = append(opts, "draw="+col)
		}
		edges = append(edges, fmt.Sprintf("\\draw [%s] (%s) -- (%s);", strings.Join(opts, ", "), c.From, c.To))
	}

	var b strings.Builder
	b.WriteString(tikzBegin + "\n")
	for _, def := range names.defs {
		b.WriteString(def + "\n")
	}
	for _, line := range nodes {
		b.WriteString(line + "\n")
	}
	for _, line := range edges {
		b.WriteString(line + "\n")
	}
	b.WriteString(tikzEnd)
	return b.String()
}

type colorNamer struct {
	byHex map[string]string
	defs  []string
}

func newColorNamer() *colorNamer {
	return &colorNamer{byHex: make(map[string]string)}
}

// option returns the name to use for a resolved color inside TikZ options.
func (c *colorNamer) option(resolved string) string {
	if resolved == "" {
		return ""
	}
	hex := hexDigits(resolved)
	if hex == "" {
		if IsNamedColor(resolved) {
			return resolved
		}
		return ""
	}
	key := strings.ToUpper(hex)
	if name, ok := c.byHex[key]; ok {
		return name
	}
	name := "c" + strconv.Itoa(len(c.defs)+1)
	c.byHex[key] = name
	c.defs = append(c.defs, fmt.Sprintf("\\definecolor{%s}{HTML}{%s}", name, hex))
	return name
}

func orShape(s Shape) Shape {
	if s == "" {
		return ShapeRectangle
	}
	return s
}

func formatCoord(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // no "-0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
