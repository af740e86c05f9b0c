package main

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mattn/go-runewidth"
)

// lexCacheSize is how many lexed sources Lines keeps.
const lexCacheSize = 16

// span is a run of source text sharing one token style.
type span struct {
	text  string
	style lipgloss.Style
}

type highlighter struct {
	style  *chroma.Style
	styles map[chroma.TokenType]lipgloss.Style
	cursor lipgloss.Style
	lexed  *lru.Cache[string, [][]span]
}

func newHighlighter(styleName string) *highlighter {
	lexed, _ := lru.New[string, [][]span](lexCacheSize)
	return &highlighter{
		style:  styles.Get(styleName),
		styles: make(map[chroma.TokenType]lipgloss.Style),
		cursor: lipgloss.NewStyle().Reverse(true),
		lexed:  lexed,
	}
}

// Lines tokenizes source with the named lexer and splits the result into
// display lines. Tokenizer errors fall back to unstyled text.
func (h *highlighter) Lines(source, lexerName string) [][]span {
	key := lexerName + "\x00" + source
	if lines, ok := h.lexed.Get(key); ok {
		return lines
	}
	lines := h.lex(source, lexerName)
	h.lexed.Add(key, lines)
	return lines
}

func (h *highlighter) lex(source, lexerName string) [][]span {
	source = strings.ReplaceAll(source, "\t", " ")
	lexer := lexers.Get(lexerName)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	tokens, err := chroma.Tokenise(chroma.Coalesce(lexer), nil, source)
	if err != nil {
		tokens = []chroma.Token{{Type: chroma.Text, Value: source}}
	}

	lines := [][]span{nil}
	for _, tok := range tokens {
		if tok.Type == chroma.EOFType {
			break
		}
		style := h.styleFor(tok.Type)
		for i, part := range strings.Split(tok.Value, "\n") {
			if i > 0 {
				lines = append(lines, nil)
			}
			if part != "" {
				last := len(lines) - 1
				lines[last] = append(lines[last], span{text: part, style: style})
			}
		}
	}
	return lines
}

func (h *highlighter) styleFor(t chroma.TokenType) lipgloss.Style {
	if s, ok := h.styles[t]; ok {
		return s
	}
	entry := h.style.Get(t)
	s := lipgloss.NewStyle()
	if entry.Colour.IsSet() {
		s = s.Foreground(lipgloss.Color(entry.Colour.String()))
	}
	if entry.Bold == chroma.Yes {
		s = s.Bold(true)
	}
	if entry.Italic == chroma.Yes {
		s = s.Italic(true)
	}
	if entry.Underline == chroma.Yes {
		s = s.Underline(true)
	}
	h.styles[t] = s
	return s
}

// renderLine writes at most width cells of one highlighted line. A
// cursorCol of -1 draws no cursor.
func (h *highlighter) renderLine(spans []span, width, cursorCol int) string {
	var out strings.Builder
	used, col := 0, 0
	cursorDrawn, full := false, false

	for _, sp := range spans {
		var run strings.Builder
		for _, r := range sp.text {
			w := runewidth.RuneWidth(r)
			if used+w > width {
				full = true
				break
			}
			if col == cursorCol {
				if run.Len() > 0 {
					out.WriteString(sp.style.Render(run.String()))
					run.Reset()
				}
				out.WriteString(h.cursor.Render(string(r)))
				cursorDrawn = true
			} else {
				run.WriteRune(r)
			}
			used += w
			col++
		}
		if run.Len() > 0 {
			out.WriteString(sp.style.Render(run.String()))
		}
		if full {
			break
		}
	}
	if cursorCol >= 0 && !cursorDrawn && !full && used < width {
		out.WriteString(h.cursor.Render(" "))
		used++
	}
	if used < width {
		out.WriteString(strings.Repeat(" ", width-used))
	}
	return out.String()
}
