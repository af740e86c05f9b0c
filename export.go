package main

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"

	"texpad/internal/latex"
	"texpad/internal/whiteboard"
)

const (
	diagramScalePNG = 2.0
	labelFontSize   = 12.0
	tableFontSize   = 14.0
	tableCellPad    = 8.0
	arrowSize       = 8.0
)

var errNothingToExport = errors.New("nothing to export")

func (m *model) saveSource(filename string) error {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return errNothingToExport
	}
	if buf.kind == ModeWhiteboard {
		if err := m.exportVector(filename); err != nil {
			return err
		}
	} else if err := os.WriteFile(filename, []byte(buf.source), 0644); err != nil {
		return fmt.Errorf("save %s: %w", filename, err)
	}
	buf.filename = filename
	return nil
}

func (m *model) exportPNG(filename string) error {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return errNothingToExport
	}
	var err error
	switch buf.kind {
	case ModeTable:
		if buf.table == nil {
			return errNothingToExport
		}
		err = renderTablePNG(buf.table).SavePNG(filename)
	case ModeDiagram:
		if buf.diagram == nil {
			return errNothingToExport
		}
		var dc *gg.Context
		if dc, err = renderDiagramPNG(buf.diagram); err == nil {
			err = dc.SavePNG(filename)
		}
	case ModeWhiteboard:
		err = writeFile(filename, func(w io.Writer) error {
			return buf.board.ExportRaster(w, whiteboard.DefaultRasterOptions())
		})
	}
	if err != nil {
		return fmt.Errorf("export png: %w", err)
	}
	return nil
}

func (m *model) exportVector(filename string) error {
	buf := m.getCurrentBuffer()
	if buf == nil || buf.board == nil {
		return errNothingToExport
	}
	return writeFile(filename, buf.board.ExportVector)
}

// exportVisualTXT writes the preview pane as plain text.
func (m *model) exportVisualTXT(filename string) error {
	buf := m.getCurrentBuffer()
	if buf == nil {
		return errNothingToExport
	}
	var c *Canvas
	switch buf.kind {
	case ModeTable:
		if buf.table == nil {
			return errNothingToExport
		}
		c = RenderTable(buf.table, (maxCellWidth+3)*buf.table.Cols+1, 2*buf.table.Rows+1, -1, -1)
	case ModeDiagram:
		if buf.diagram == nil {
			return errNothingToExport
		}
		c = RenderDiagram(buf.diagram, 100, 35, -1)
	default:
		return m.exportVector(filename)
	}

	return writeFile(filename, func(w io.Writer) error {
		for _, line := range c.Plain() {
			if _, err := fmt.Fprintln(w, line); err != nil {
				return err
			}
		}
		return nil
	})
}

func writeFile(filename string, write func(io.Writer) error) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("create %s: %w", filename, err)
	}
	if err := write(file); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return file.Close()
}

// openFile loads a .tex into the table or diagram buffer, depending on
// which environment it holds, or a .json stroke list into the whiteboard.
func (m *model) openFile(filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("open %s: %w", filename, err)
	}

	if strings.EqualFold(filepath.Ext(filename), ".json") {
		strokes, err := whiteboard.ReadVector(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("open %s: %w", filename, err)
		}
		m.switchBuffer(ModeWhiteboard)
		buf := m.getCurrentBuffer()
		buf.board.Load(strokes)
		buf.source = m.boardSource(buf)
		buf.filename = filename
		buf.undoStack, buf.redoStack = []Action{}, []Action{}
		return nil
	}

	source := string(data)
	kind := m.currentMode()
	switch {
	case strings.Contains(source, tikzBegin):
		kind = ModeDiagram
	case strings.Contains(source, tabularBegin):
		kind = ModeTable
	case kind == ModeWhiteboard:
		kind = ModeTable
	}
	m.switchBuffer(kind)
	buf := m.getCurrentBuffer()
	buf.source = source
	buf.filename = filename
	buf.table, buf.diagram = nil, nil
	buf.undoStack, buf.redoStack = []Action{}, []Action{}
	m.reparse(buf)
	return nil
}

func loadFace(ttf []byte, size float64) (font.Face, error) {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

func pngColor(resolved string, fallback color.Color) color.Color {
	if c, ok := latex.ToRGBA(resolved); ok {
		return c
	}
	return fallback
}

func renderDiagramPNG(d *latex.Diagram) (*gg.Context, error) {
	dc := gg.NewContext(int(d.CanvasWidth*diagramScalePNG), int(d.CanvasHeight*diagramScalePNG))
	dc.SetColor(color.White)
	dc.Clear()
	dc.Scale(diagramScalePNG, diagramScalePNG)

	face, err := loadFace(gomono.TTF, labelFontSize)
	if err != nil {
		return nil, err
	}
	dc.SetFontFace(face)

	for _, conn := range d.Connections {
		to, ok := d.Node(conn.To)
		if !ok {
			continue
		}
		tip := boundaryPoint(to, conn.FromPoint)
		dc.SetColor(pngColor(conn.Color, color.Black))
		dc.SetLineWidth(conn.StrokeWidth)
		dc.DrawLine(conn.FromPoint.X, conn.FromPoint.Y, tip.X, tip.Y)
		dc.Stroke()
		if conn.Kind == latex.KindArrow {
			drawArrowPNG(dc, conn.FromPoint, tip)
		}
	}

	for _, n := range d.Nodes {
		center := n.Center()
		switch n.Shape {
		case latex.ShapeCircle:
			dc.DrawEllipse(center.X, center.Y, n.Width/2, n.Height/2)
		case latex.ShapeDiamond:
			dc.MoveTo(center.X, n.Y)
			dc.LineTo(n.X+n.Width, center.Y)
			dc.LineTo(center.X, n.Y+n.Height)
			dc.LineTo(n.X, center.Y)
			dc.ClosePath()
		default:
			dc.DrawRectangle(n.X, n.Y, n.Width, n.Height)
		}
		dc.SetColor(pngColor(n.FillColor, color.White))
		dc.FillPreserve()
		dc.SetColor(pngColor(n.StrokeColor, color.Black))
		dc.SetLineWidth(n.StrokeWidth)
		dc.Stroke()

		dc.SetColor(pngColor(n.TextColor, color.Black))
		dc.DrawStringAnchored(n.Text, center.X, center.Y, 0.5, 0.5)
	}
	return dc, nil
}

// boundaryPoint is where the segment from outside toward n's center first
// meets n's outline.
func boundaryPoint(n latex.Node, from latex.Point) latex.Point {
	c := n.Center()
	dx, dy := from.X-c.X, from.Y-c.Y
	if dx == 0 && dy == 0 {
		return c
	}
	hw, hh := n.Width/2, n.Height/2
	var t float64
	switch n.Shape {
	case latex.ShapeCircle:
		t = 1 / math.Sqrt(dx*dx/(hw*hw)+dy*dy/(hh*hh))
	case latex.ShapeDiamond:
		t = 1 / (math.Abs(dx)/hw + math.Abs(dy)/hh)
	default:
		t = 1 / math.Max(math.Abs(dx)/hw, math.Abs(dy)/hh)
	}
	if t > 1 {
		return from
	}
	return latex.Point{X: c.X + dx*t, Y: c.Y + dy*t}
}

func drawArrowPNG(dc *gg.Context, from, tip latex.Point) {
	dx, dy := tip.X-from.X, tip.Y-from.Y
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length
	const spread = 0.5

	dc.MoveTo(tip.X, tip.Y)
	dc.LineTo(tip.X-arrowSize*dx+arrowSize*dy*spread, tip.Y-arrowSize*dy-arrowSize*dx*spread)
	dc.LineTo(tip.X-arrowSize*dx-arrowSize*dy*spread, tip.Y-arrowSize*dy+arrowSize*dx*spread)
	dc.ClosePath()
	dc.Fill()
}

// renderTablePNG draws a ruled table sized to its contents. Bold cells use
// the bold face.
func renderTablePNG(t *latex.Table) *gg.Context {
	regular, errR := loadFace(gomono.TTF, tableFontSize)
	bold, errB := loadFace(gomonobold.TTF, tableFontSize)

	measure := gg.NewContext(1, 1)
	if errR == nil {
		measure.SetFontFace(regular)
	}
	colWidths := make([]float64, t.Cols)
	_, lineHeight := measure.MeasureString("Mg")
	for _, row := range t.Cells {
		for i, cell := range row {
			w, _ := measure.MeasureString(cell.Content)
			colWidths[i] = math.Max(colWidths[i], w)
		}
	}
	rowHeight := lineHeight + 2*tableCellPad
	total := 0.0
	for i := range colWidths {
		colWidths[i] += 2 * tableCellPad
		total += colWidths[i]
	}

	dc := gg.NewContext(int(total)+2, int(rowHeight*float64(t.Rows))+2)
	dc.SetColor(color.White)
	dc.Clear()
	dc.Translate(1, 1)
	aligns := latex.ColumnAlignments(t.ColumnSpec)

	y := 0.0
	for _, row := range t.Cells {
		x := 0.0
		for i, cell := range row {
			dc.DrawRectangle(x, y, colWidths[i], rowHeight)
			dc.SetColor(pngColor(cell.BackgroundColor, color.White))
			dc.FillPreserve()
			dc.SetColor(color.Black)
			dc.SetLineWidth(1)
			dc.Stroke()

			switch {
			case cell.Bold && errB == nil:
				dc.SetFontFace(bold)
			case errR == nil:
				dc.SetFontFace(regular)
			}
			align := cell.Alignment
			if i < len(aligns) {
				align = aligns[i]
			}
			tx, ax := x+tableCellPad, 0.0
			switch align {
			case latex.AlignCenter:
				tx, ax = x+colWidths[i]/2, 0.5
			case latex.AlignRight:
				tx, ax = x+colWidths[i]-tableCellPad, 1
			}
			dc.SetColor(pngColor(cell.TextColor, color.Black))
			dc.DrawStringAnchored(cell.Content, tx, y+rowHeight/2, ax, 0.5)
			x += colWidths[i]
		}
		y += rowHeight
	}
	return dc
}
