package latex

import (
	"image/color"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

const (
	DefaultFillColor   = "#ffffff"
	DefaultStrokeColor = "#374151"
	DefaultTextColor   = "#1f2937"
)

// ColorMap maps names declared with \definecolor to "#RRGGBB".
type ColorMap map[string]string

var (
	hexColorRe    = regexp.MustCompile(`^#?[0-9A-Fa-f]{6}$`)
	defineColorRe = regexp.MustCompile(`\\definecolor\{([^}]+)\}\{HTML\}\{([0-9A-Fa-f]{6})\}`)
)

// ScanColorDefinitions collects every \definecolor{name}{HTML}{RRGGBB} in src.
func ScanColorDefinitions(src string) ColorMap {
	colors := make(ColorMap)
	for _, m := range defineColorRe.FindAllStringSubmatch(src, -1) {
		colors[strings.TrimSpace(m[1])] = "#" + m[2]
	}
	return colors
}

// ResolveColor turns a raw color option into a renderable value.
// Custom definitions shadow hex literals, which shadow CSS keywords.
// Anything unrecognized resolves to fallback, or the default gray.
func ResolveColor(raw string, colors ColorMap, fallback string) string {
	if fallback == "" {
		fallback = DefaultStrokeColor
	}
	if raw == "" {
		return fallback
	}
	cleaned := strings.TrimSpace(raw)
	if hex, ok := colors[cleaned]; ok {
		return hex
	}
	if hexColorRe.MatchString(cleaned) {
		if strings.HasPrefix(cleaned, "#") {
			return cleaned
		}
		return "#" + cleaned
	}
	if IsNamedColor(cleaned) {
		return cleaned
	}
	return fallback
}

// IsNamedColor reports whether name is a CSS color keyword.
func IsNamedColor(name string) bool {
	_, ok := colornames.Map[strings.ToLower(name)]
	return ok
}

// ToRGBA converts a resolved color ("#RRGGBB" or a CSS keyword).
func ToRGBA(resolved string) (color.RGBA, bool) {
	s := strings.TrimSpace(resolved)
	if c, ok := colornames.Map[strings.ToLower(s)]; ok {
		return c, true
	}
	if !hexColorRe.MatchString(s) {
		return color.RGBA{}, false
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "#"), 16, 32)
	if err != nil {
		return color.RGBA{}, false
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, true
}

// hexDigits returns the RRGGBB of a resolved color, or "" for values that
// are not hex literals.
func hexDigits(resolved string) string {
	s := strings.TrimSpace(resolved)
	if !hexColorRe.MatchString(s) {
		return ""
	}
	return strings.TrimPrefix(s, "#")
}
