package latex

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveColor(t *testing.T) {
	colors := ColorMap{"myred": "#AA0000", "blue": "#1976D2"}

	tests := []struct {
		name     string
		raw      string
		fallback string
		want     string
	}{
		{"absent uses fallback", "", "#00ff00", "#00ff00"},
		{"absent without fallback", "", "", DefaultStrokeColor},
		{"custom definition", "myred", "", "#AA0000"},
		{"custom shadows keyword", "blue", "", "#1976D2"},
		{"trimmed", "  myred ", "", "#AA0000"},
		{"hex with hash", "#abcdef", "", "#abcdef"},
		{"hex without hash", "ABCDEF", "", "#ABCDEF"},
		{"keyword verbatim", "Navy", "", "Navy"},
		{"short hex is not hex", "#abc", "#111111", "#111111"},
		{"unknown", "mystery", "#222222", "#222222"},
		{"unknown without fallback", "mystery", "", DefaultStrokeColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveColor(tt.raw, colors, tt.fallback))
		})
	}
}

func TestScanColorDefinitions(t *testing.T) {
	src := `\definecolor{ a }{HTML}{010203} \definecolor{b}{RGB}{1,2,3} \definecolor{a}{HTML}{0A0B0C}`
	colors := ScanColorDefinitions(src)
	assert.Equal(t, ColorMap{"a": "#0A0B0C"}, colors)
}

func TestToRGBA(t *testing.T) {
	c, ok := ToRGBA("#AA0010")
	assert.True(t, ok)
	assert.Equal(t, color.RGBA{R: 0xaa, G: 0x00, B: 0x10, A: 0xff}, c)

	c, ok = ToRGBA("Teal")
	assert.True(t, ok)
	assert.Equal(t, color.RGBA{R: 0x00, G: 0x80, B: 0x80, A: 0xff}, c)

	_, ok = ToRGBA("nope")
	assert.False(t, ok)
}
