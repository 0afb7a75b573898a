package graph

import (
	"fmt"
	"strings"
)

// Simple layered SVG rendering. The layout is intentionally plain: one
// row per entity kind, boxes sized to the label, straight connection
// lines. Problematic elements are drawn red.
const (
	svgBoxHeight  = 40
	svgRowGap     = 120
	svgColGap     = 40
	svgMarginLeft = 20
	svgMarginTop  = 20
)

// textWidth sizes a box to its label.
func textWidth(text string) int {
	return len(text)*8 + 20
}

// rowOrder groups entity kinds into layers, interfaces on top, external
// references at the bottom, matching the bottom-up reading direction of
// the DOT output.
var rowOrder = []EntityKind{KindAbstract, KindClass, KindFunction, KindType, KindVariable, KindRef}

type svgBox struct {
	x, y, w int
	label   string
	red     bool
	dotted  bool
}

// ToSVG renders the graph as a standalone SVG document.
func (g *GraphData) ToSVG() string {
	boxes := make(map[string]svgBox)

	width := 0
	y := svgMarginTop
	for _, kind := range rowOrder {
		x := svgMarginLeft
		placed := false
		for _, name := range g.SortedNames() {
			node := g.Nodes[name]
			if node.Kind != kind {
				continue
			}
			label := fmt.Sprintf("(%s) %s", node.Kind, node.Name)
			w := textWidth(label)
			boxes[name] = svgBox{
				x: x, y: y, w: w,
				label:  label,
				red:    len(node.Problematic) > 0,
				dotted: node.Kind == KindRef,
			}
			x += w + svgColGap
			placed = true
		}
		if x > width {
			width = x
		}
		if placed {
			y += svgRowGap
		}
	}
	height := y + svgBoxHeight

	var out strings.Builder
	out.WriteString(fmt.Sprintf(
		"<svg xmlns=\"http://www.w3.org/2000/svg\" width=\"%d\" height=\"%d\" viewBox=\"0 0 %d %d\">\n",
		width, height, width, height))

	for _, con := range g.Connections {
		from, fromOK := boxes[con.From]
		to, toOK := boxes[con.To]
		if !fromOK || !toOK {
			continue
		}
		stroke := "black"
		if len(con.Problematic) > 0 {
			stroke = "red"
		}
		dash := ""
		if con.Kind == Usage {
			dash = " stroke-dasharray=\"6,3\""
		}
		out.WriteString(fmt.Sprintf(
			"  <line x1=\"%d\" y1=\"%d\" x2=\"%d\" y2=\"%d\" stroke=\"%s\" stroke-width=\"2\"%s/>\n",
			from.x+from.w/2, from.y, to.x+to.w/2, to.y+svgBoxHeight, stroke, dash))
	}

	for _, name := range g.SortedNames() {
		box, ok := boxes[name]
		if !ok {
			continue
		}
		stroke := "black"
		if box.red {
			stroke = "red"
		}
		dash := ""
		if box.dotted {
			dash = " stroke-dasharray=\"3,3\""
		}
		out.WriteString(fmt.Sprintf(
			"  <rect x=\"%d\" y=\"%d\" width=\"%d\" height=\"%d\" fill=\"#f2f2f2\" stroke=\"%s\" stroke-width=\"2\"%s/>\n",
			box.x, box.y, box.w, svgBoxHeight, stroke, dash))
		out.WriteString(fmt.Sprintf(
			"  <text x=\"%d\" y=\"%d\" text-anchor=\"middle\" font-family=\"monospace\" font-size=\"13\">%s</text>\n",
			box.x+box.w/2, box.y+svgBoxHeight/2+4, xmlEscape(box.label)))
	}

	out.WriteString("</svg>\n")
	return out.String()
}
