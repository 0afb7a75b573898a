package graph

import (
	"fmt"
	"sort"
	"strings"
)

// EntityKind classifies graph nodes: abstract interface, class,
// function, variable, type, or external reference.
type EntityKind string

const (
	KindAbstract EntityKind = "A"
	KindClass    EntityKind = "C"
	KindFunction EntityKind = "F"
	KindVariable EntityKind = "V"
	KindType     EntityKind = "T"
	KindRef      EntityKind = "Ref"
)

// Entity is one graph node, keyed by name. Problematic carries the
// rendered diagnostic messages attached to the underlying tree node.
type Entity struct {
	Kind        EntityKind `json:"kind"`
	Name        string     `json:"name"`
	Problematic []string   `json:"problematic,omitempty"`
}

// ConnectionKind is the typed edge relation.
type ConnectionKind string

const (
	Usage       ConnectionKind = "Usage"
	Inheritance ConnectionKind = "Inheritance"
	Composition ConnectionKind = "Composition"
)

// Connection is a typed edge between two entities, by name.
type Connection struct {
	Kind        ConnectionKind `json:"kind"`
	From        string         `json:"from"`
	To          string         `json:"to"`
	Problematic []string       `json:"problematic,omitempty"`
}

// GraphData is the folded graph: entities keyed by name plus typed
// connections in stable per-file source order.
type GraphData struct {
	Nodes       map[string]Entity `json:"nodes"`
	Connections []Connection      `json:"connections"`
}

// NewGraphData creates an empty graph.
func NewGraphData() *GraphData {
	return &GraphData{Nodes: make(map[string]Entity)}
}

// SortedNames returns the node keys in lexical order. All serializers
// iterate through this so output is deterministic under any build
// schedule.
func (g *GraphData) SortedNames() []string {
	names := make([]string, 0, len(g.Nodes))
	for name := range g.Nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ToDOT renders the graph in Graphviz DOT format.
func (g *GraphData) ToDOT() string {
	var out strings.Builder
	out.WriteString("digraph Code {\n")
	out.WriteString(" concentrate=True;\n")
	out.WriteString(" rankdir=BT;\n\n")

	for _, key := range g.SortedNames() {
		node := g.Nodes[key]
		out.WriteString(strings.ReplaceAll(key, ":", "_"))
		out.WriteString(" [")
		out.WriteString("label=\"")
		out.WriteString(key)
		out.WriteString("\";")
		if len(node.Problematic) > 0 {
			out.WriteString("color=red;")
		} else {
			out.WriteString("color=black;")
		}
		switch node.Kind {
		case KindRef:
			out.WriteString("style=dotted;")
		case KindVariable:
			out.WriteString("shape=ellipse;")
		case KindFunction:
			out.WriteString("shape=parallelogram;")
		default:
			out.WriteString("shape=box;")
		}
		out.WriteString("]\n")
	}

	for _, con := range g.Connections {
		out.WriteString(strings.ReplaceAll(con.From, ":", "_"))
		out.WriteString(" -> ")
		out.WriteString(strings.ReplaceAll(con.To, ":", "_"))
		out.WriteString(" [")
		if len(con.Problematic) > 0 {
			out.WriteString("color=red;")
		}
		switch con.Kind {
		case Composition:
			out.WriteString("arrowhead=diamond;")
		case Usage:
			out.WriteString("style=dashed;")
		case Inheritance:
		}
		out.WriteString("]\n")
	}

	out.WriteString("}")
	return out.String()
}

// ToGraphML renders the graph as GraphML with label, kind and
// is_problematic keys.
func (g *GraphData) ToGraphML() string {
	var out strings.Builder
	out.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	out.WriteString("<graphml xmlns=\"http://graphml.graphdrawing.org/xmlns\"\n")
	out.WriteString("    xmlns:xsi=\"http://www.w3.org/2001/XMLSchema-instance\"\n")
	out.WriteString("    xsi:schemaLocation=\"http://graphml.graphdrawing.org/xmlns\n")
	out.WriteString("     http://graphml.graphdrawing.org/xmlns/1.0/graphml.xsd\">\n")
	out.WriteString("  <key id=\"label\" for=\"node\" attr.name=\"label\" attr.type=\"string\"/>\n")
	out.WriteString("  <key id=\"kind\" for=\"node\" attr.name=\"kind\" attr.type=\"string\"/>\n")
	out.WriteString("  <key id=\"is_problematic\" for=\"all\" attr.name=\"is_problematic\" attr.type=\"boolean\">\n")
	out.WriteString("    <default>false</default>\n")
	out.WriteString("  </key>\n")
	out.WriteString("  <graph id=\"G\" edgedefault=\"directed\">\n")

	for _, key := range g.SortedNames() {
		node := g.Nodes[key]
		id := xmlEscape(key)
		out.WriteString(fmt.Sprintf("    <node id=%q>\n", id))
		out.WriteString(fmt.Sprintf("      <data key=\"label\">%s</data>\n", id))
		out.WriteString(fmt.Sprintf("      <data key=\"kind\">%s</data>\n", node.Kind))
		out.WriteString(fmt.Sprintf("      <data key=\"is_problematic\">%t</data>\n", len(node.Problematic) > 0))
		out.WriteString("    </node>\n")
	}

	for _, con := range g.Connections {
		out.WriteString(fmt.Sprintf("    <edge source=%q target=%q>\n", xmlEscape(con.From), xmlEscape(con.To)))
		out.WriteString(fmt.Sprintf("      <data key=\"is_problematic\">%t</data>\n", len(con.Problematic) > 0))
		out.WriteString("    </edge>\n")
	}

	out.WriteString("  </graph>\n</graphml>")
	return out.String()
}

func xmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
	)
	return replacer.Replace(s)
}
