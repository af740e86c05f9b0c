package whiteboard

import (
	"fmt"
	"image/color"
	"io"

	"github.com/fogleman/gg"

	"texpad/internal/latex"
)

// RasterOptions sizes the exported surface.
type RasterOptions struct {
	Width      int
	Height     int
	Background color.Color
}

// DefaultRasterOptions matches the drawing surface: 800x600 on white.
func DefaultRasterOptions() RasterOptions {
	return RasterOptions{Width: 800, Height: 600, Background: color.White}
}

// Render paints every stroke in order onto a new context.
func (b *Board) Render(opts RasterOptions) *gg.Context {
	opts = opts.withDefaults()
	dc := gg.NewContext(opts.Width, opts.Height)
	dc.SetColor(opts.Background)
	dc.Clear()
	dc.SetLineCapRound()
	dc.SetLineJoinRound()

	for _, s := range b.strokes {
		if len(s.Points) < 2 {
			continue
		}
		if s.Tool == ToolEraser {
			dc.SetColor(opts.Background)
		} else {
			dc.SetColor(strokeColor(s.Color))
		}
		dc.SetLineWidth(s.Width)

		if len(s.Points) < 4 {
			// a tap: round cap on a zero-length line
			dc.DrawCircle(s.Points[0], s.Points[1], s.Width/2)
			dc.Fill()
			continue
		}
		dc.MoveTo(s.Points[0], s.Points[1])
		for i := 2; i+1 < len(s.Points); i += 2 {
			dc.LineTo(s.Points[i], s.Points[i+1])
		}
		dc.Stroke()
	}
	return dc
}

// ExportRaster writes the rendered board as PNG.
func (b *Board) ExportRaster(w io.Writer, opts RasterOptions) error {
	if err := b.Render(opts).EncodePNG(w); err != nil {
		return fmt.Errorf("encode whiteboard png: %w", err)
	}
	return nil
}

func (o RasterOptions) withDefaults() RasterOptions {
	def := DefaultRasterOptions()
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Height <= 0 {
		o.Height = def.Height
	}
	if o.Background == nil {
		o.Background = def.Background
	}
	return o
}

func strokeColor(c string) color.Color {
	if rgba, ok := latex.ToRGBA(c); ok {
		return rgba
	}
	return color.Black
}
