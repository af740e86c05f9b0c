package whiteboard

import (
	"encoding/json"
	"fmt"
	"io"
)

// ExportVector writes the stroke list as JSON, coordinates untouched.
func (b *Board) ExportVector(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	strokes := b.strokes
	if strokes == nil {
		strokes = []Stroke{}
	}
	if err := enc.Encode(strokes); err != nil {
		return fmt.Errorf("encode strokes: %w", err)
	}
	return nil
}

// ReadVector decodes a stroke list written by ExportVector. Strokes with an
// odd number of coordinates lose the dangling one.
func ReadVector(r io.Reader) ([]Stroke, error) {
	var strokes []Stroke
	if err := json.NewDecoder(r).Decode(&strokes); err != nil {
		return nil, fmt.Errorf("decode strokes: %w", err)
	}
	for i := range strokes {
		if n := len(strokes[i].Points); n%2 == 1 {
			strokes[i].Points = strokes[i].Points[:n-1]
		}
		if strokes[i].Tool == "" {
			strokes[i].Tool = ToolPen
		}
	}
	return strokes, nil
}
