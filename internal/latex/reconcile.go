package latex

import (
	"fmt"
	"strings"
)

type previous struct {
	nodes       map[string]Node
	connections map[string]Connection
}

func indexPrevious(d *Diagram) previous {
	p := previous{
		nodes:       make(map[string]Node),
		connections: make(map[string]Connection),
	}
	if d == nil {
		return p
	}
	for _, n := range d.Nodes {
		p.nodes[n.ID] = n
	}
	for _, c := range d.Connections {
		p.connections[c.Key()] = c
	}
	return p
}

// ReduceNodes builds nodes from their declarations. Geometry, shape, label
// and colors written in the source always win; text color and stroke
// width come from prev (keyed by node id) or the defaults.
func ReduceNodes(decls []NodeDecl, colors ColorMap, prev map[string]Node) []Node {
	nodes := make([]Node, 0, len(decls))
	for _, decl := range decls {
		old, hasOld := prev[decl.ID]

		shape := ShapeFromOptions(decl.Options)
		width, height := DefaultSize(shape)
		center := ToCanvas(decl.X, decl.Y)

		fillFallback := DefaultFillColor
		strokeFallback := DefaultStrokeColor
		textColor := DefaultTextColor
		strokeWidth := float64(DefaultStrokeWidth)
		if hasOld {
			fillFallback = orDefault(old.FillColor, fillFallback)
			strokeFallback = orDefault(old.StrokeColor, strokeFallback)
			textColor = orDefault(old.TextColor, textColor)
			if old.StrokeWidth > 0 {
				strokeWidth = old.StrokeWidth
			}
		}

		nodes = append(nodes, Node{
			ID:          decl.ID,
			X:           center.X - width/2,
			Y:           center.Y - height/2,
			Width:       width,
			Height:      height,
			Shape:       shape,
			Text:        UnescapeLabel(decl.Label),
			FillColor:   ResolveColor(optionValue(decl.Options, "fill"), colors, fillFallback),
			StrokeColor: ResolveColor(optionValue(decl.Options, "draw"), colors, strokeFallback),
			TextColor:   textColor,
			StrokeWidth: strokeWidth,
		})
	}
	return nodes
}

// ReduceConnections resolves edge declarations against the parsed nodes.
// Edges with an unknown endpoint are dropped. Endpoints are always the
// node centers; kind, color and stroke width fall back to prev, keyed by
// "from->to".
func ReduceConnections(decls []EdgeDecl, nodes []Node, colors ColorMap, prev map[string]Connection) []Connection {
	byID := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	connections := make([]Connection, 0, len(decls))
	for _, decl := range decls {
		from, okFrom := byID[decl.From]
		to, okTo := byID[decl.To]
		if !okFrom || !okTo {
			continue
		}
		old, hasOld := prev[decl.From+"->"+decl.To]

		kind := KindArrow
		colorFallback := DefaultStrokeColor
		strokeWidth := float64(DefaultStrokeWidth)
		if hasOld {
			if old.Kind != "" {
				kind = old.Kind
			}
			colorFallback = orDefault(old.Color, colorFallback)
			if old.StrokeWidth > 0 {
				strokeWidth = old.StrokeWidth
			}
		}
		switch {
		case strings.Contains(decl.Options, "->"), strings.Contains(decl.Options, "<->"):
			kind = KindArrow
		case strings.Contains(decl.Options, "-"):
			kind = KindLine
		}

		connections = append(connections, Connection{
			ID:          fmt.Sprintf("conn-%s-%s-%d", decl.From, decl.To, len(connections)),
			From:        decl.From,
			To:          decl.To,
			FromPoint:   from.Center(),
			ToPoint:     to.Center(),
			Kind:        kind,
			Color:       ResolveColor(optionValue(decl.Options, "draw"), colors, colorFallback),
			StrokeWidth: strokeWidth,
		})
	}
	return connections
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
