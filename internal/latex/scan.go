package latex

import (
	"regexp"
	"strconv"
	"strings"
)

// NodeDecl is a \node statement as written, before colors and
// reconciliation are applied. X and Y are in LaTeX units.
type NodeDecl struct {
	ID      string
	Options string
	X, Y    float64
	Label   string
	Offset  int
}

// EdgeDecl is a \draw (from) -- (to) statement as written.
type EdgeDecl struct {
	From    string
	To      string
	Options string
	Offset  int
}

// Skipped records a statement the scanner could not use. Offset is the
// byte position in the scanned source.
type Skipped struct {
	Offset int
	Text   string
	Reason string
}

// TikzScan is everything recognized in one tikzpicture block.
type TikzScan struct {
	Colors  ColorMap
	Nodes   []NodeDecl
	Edges   []EdgeDecl
	Skipped []Skipped
}

const (
	tikzBegin = `\begin{tikzpicture}`
	tikzEnd   = `\end{tikzpicture}`
)

var (
	nodeStmtRe = regexp.MustCompile(`^\\node\s*\(([^)]+)\)\s*(?:\[([^\]]*)\]\s*)?(?:at\s*\(([^,]+),\s*([^)]+)\)\s*)?\{([\s\S]*)\}$`)
	edgeStmtRe = regexp.MustCompile(`^\\draw\s*(?:\[([^\]]*)\]\s*)?\(([^)]+)\)\s*(?:--|to)\s*\(([^)]+)\)$`)
	commandRe  = regexp.MustCompile(`\\(node|draw)\b`)
	leadNumRe  = regexp.MustCompile(`^[+-]?(?:\d+\.?\d*|\.\d+)(?:[eE][+-]?\d+)?`)
)

// ScanTikz tokenizes the first tikzpicture block of src into statements.
// It returns nil when src holds no complete block. Statements that do not
// match a supported shape are collected in Skipped; scanning continues.
func ScanTikz(src string) *TikzScan {
	begin := strings.Index(src, tikzBegin)
	if begin < 0 {
		return nil
	}
	end := strings.Index(src[begin:], tikzEnd)
	if end < 0 {
		return nil
	}
	block := src[begin : begin+end+len(tikzEnd)]

	scan := &TikzScan{Colors: ScanColorDefinitions(block)}

	bodyStart := begin + len(tikzBegin)
	bodyStart += skipOptionGroup(src[bodyStart : begin+end])
	body := src[bodyStart : begin+end]

	for _, st := range splitStatements(body) {
		scan.classify(st, bodyStart+st.offset)
	}
	return scan
}

type statement struct {
	text       string
	offset     int
	terminated bool
}

func (s *TikzScan) classify(st statement, offset int) {
	text := defineColorRe.ReplaceAllStringFunc(st.text, blank)
	loc := commandRe.FindStringIndex(text)
	if loc == nil {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			s.skip(offset, trimmed, "unsupported statement")
		}
		return
	}
	stmt := strings.TrimSpace(text[loc[0]:])
	offset += loc[0]
	if !st.terminated {
		s.skip(offset, stmt, "unterminated statement")
		return
	}

	if strings.HasPrefix(stmt, `\node`) {
		m := nodeStmtRe.FindStringSubmatch(stmt)
		if m == nil {
			s.skip(offset, stmt, "malformed node")
			return
		}
		if m[3] == "" || m[4] == "" {
			s.skip(offset, stmt, "node without at coordinate")
			return
		}
		x, okX := leadingFloat(m[3])
		y, okY := leadingFloat(m[4])
		if !okX || !okY {
			s.skip(offset, stmt, "non-numeric coordinate")
			return
		}
		s.Nodes = append(s.Nodes, NodeDecl{
			ID:      strings.TrimSpace(m[1]),
			Options: m[2],
			X:       x,
			Y:       y,
			Label:   m[5],
			Offset:  offset,
		})
		return
	}

	m := edgeStmtRe.FindStringSubmatch(stmt)
	if m == nil {
		s.skip(offset, stmt, "unsupported draw path")
		return
	}
	s.Edges = append(s.Edges, EdgeDecl{
		From:    strings.TrimSpace(m[2]),
		To:      strings.TrimSpace(m[3]),
		Options: m[1],
		Offset:  offset,
	})
}

func (s *TikzScan) skip(offset int, text, reason string) {
	s.Skipped = append(s.Skipped, Skipped{Offset: offset, Text: text, Reason: reason})
}

// skipOptionGroup returns the length of a leading [...] argument,
// including surrounding whitespace, or 0 when there is none.
func skipOptionGroup(s string) int {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	if i >= len(s) || s[i] != '[' {
		return 0
	}
	depth := 0
	for ; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '[', '{':
			depth++
		case ']', '}':
			depth--
			if depth == 0 && s[i] == ']' {
				return i + 1
			}
		}
	}
	return 0
}

// splitStatements cuts body at ';' outside braces. Comments are blanked
// with spaces so offsets inside a statement still line up with body. A
// trailing unterminated statement is returned too so the caller can
// report it.
func splitStatements(body string) []statement {
	var out []statement
	var cur strings.Builder
	start := -1
	depth := 0

	flush := func(terminated bool) {
		if start >= 0 && strings.TrimSpace(cur.String()) != "" {
			out = append(out, statement{text: cur.String(), offset: start, terminated: terminated})
		}
		cur.Reset()
		start = -1
	}

	for i := 0; i < len(body); i++ {
		ch := body[i]
		if start < 0 && !isSpace(ch) {
			start = i
		}
		switch {
		case ch == '\\' && depth > 0 && startsStatement(body, i):
			// unclosed brace: resume at the next statement line
			flush(false)
			depth = 0
			start = i
			cur.WriteByte(ch)
		case ch == '\\' && i+1 < len(body):
			cur.WriteByte(ch)
			cur.WriteByte(body[i+1])
			i++
		case ch == '%':
			cur.WriteByte(' ')
			for i+1 < len(body) && body[i+1] != '\n' {
				i++
				cur.WriteByte(' ')
			}
		case ch == '{':
			depth++
			cur.WriteByte(ch)
		case ch == '}':
			if depth > 0 {
				depth--
			}
			cur.WriteByte(ch)
		case ch == ';' && depth == 0:
			flush(true)
		default:
			if start >= 0 {
				cur.WriteByte(ch)
			}
		}
	}
	flush(false)
	return out
}

var statementCommands = []string{`\node`, `\draw`, `\path`}

// startsStatement reports whether a \node, \draw or \path command begins
// at i and nothing but blanks precede it on its line.
func startsStatement(body string, i int) bool {
	j := i - 1
	for j >= 0 && (body[j] == ' ' || body[j] == '\t' || body[j] == '\r') {
		j--
	}
	if j >= 0 && body[j] != '\n' {
		return false
	}
	for _, cmd := range statementCommands {
		if !strings.HasPrefix(body[i:], cmd) {
			continue
		}
		end := i + len(cmd)
		if end == len(body) || !isLetter(body[end]) {
			return true
		}
	}
	return false
}

// leadingFloat parses the numeric prefix of s, so "1.5cm" reads as 1.5.
func leadingFloat(s string) (float64, bool) {
	num := leadNumRe.FindString(strings.TrimSpace(s))
	if num == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func blank(s string) string {
	return strings.Repeat(" ", len(s))
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
