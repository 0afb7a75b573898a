// Package graph folds annotated semantic trees into a typed dependency
// graph and serializes it as DOT, GraphML or SVG. Input trees are
// expected to be reference-filtered and rule-annotated so that node and
// edge problematic-ness is a pure function of the tree.
package graph

import (
	"github.com/kober-systems/guidelines/pkg/ast"
)

// Build folds the files into a graph. Nodes are keyed by name; the key
// set is map-backed and serialized in sorted order, connections keep
// per-file source order concatenated in input order, so the result is
// deterministic under any per-file schedule.
func Build(files []*ast.Node) *GraphData {
	g := NewGraphData()
	for _, file := range files {
		extractNode(g, file)
	}
	return g
}

func extractNode(g *GraphData, node *ast.Node) {
	switch kind := node.Kind.(type) {
	case ast.File:
		for _, child := range node.Children {
			extractNode(g, child)
		}
	case ast.Class:
		entityKind := KindClass
		if kind.IsAbstract {
			entityKind = KindAbstract
		}
		g.Nodes[node.Name] = Entity{
			Kind:        entityKind,
			Name:        node.Name,
			Problematic: problemMessages(node),
		}
		for _, dep := range node.Dependencies {
			if _, ok := g.Nodes[dep.Name]; !ok {
				extractNode(g, dep)
			}
			g.Connections = append(g.Connections, Connection{
				Kind: Inheritance,
				From: node.Name,
				To:   dep.Name,
			})
		}
		for _, child := range node.Children {
			extractReferences(g, child, node.Name)
		}
	case ast.Type, ast.Reference, ast.Variable:
		g.Nodes[node.Name] = Entity{
			Kind:        entityType(node),
			Name:        node.Name,
			Problematic: problemMessages(node),
		}
	case ast.Function:
		if kind.ExternalNamespace != "" {
			if _, ok := g.Nodes[kind.ExternalNamespace]; !ok {
				g.Nodes[kind.ExternalNamespace] = Entity{
					Kind:        KindClass,
					Name:        kind.ExternalNamespace,
					Problematic: problemMessages(node),
				}
			}
			extractReferences(g, node, kind.ExternalNamespace)
		} else {
			g.Nodes[node.Name] = Entity{
				Kind:        KindFunction,
				Name:        node.Name,
				Problematic: problemMessages(node),
			}
			extractReferences(g, node, node.Name)
		}
	case ast.Unhandled, ast.LintError:
	}
}

// extractReferences walks a class member or function and adds usage and
// composition edges originating from `from`.
func extractReferences(g *GraphData, node *ast.Node, from string) {
	switch node.Kind.(type) {
	case ast.Reference:
		ref := node.Kind.(ast.Reference)
		var kind ConnectionKind
		switch ref.Kind {
		case ast.RefRead, ast.RefWrite, ast.RefCall:
			kind = Usage
		case ast.RefTypeRead:
			kind = Composition
		default:
			return
		}
		if _, ok := g.Nodes[node.Name]; !ok {
			extractNode(g, node)
		}
		g.Connections = append(g.Connections, Connection{
			Kind:        kind,
			From:        from,
			To:          node.Name,
			Problematic: problemMessages(node),
		})
	case ast.Function:
		for _, child := range node.Children {
			extractReferences(g, child, from)
		}
		for _, dep := range node.Dependencies {
			extractReferences(g, dep, from)
		}
	case ast.Variable, ast.Type, ast.Unhandled, ast.LintError:
	}
}

func entityType(node *ast.Node) EntityKind {
	switch kind := node.Kind.(type) {
	case ast.Class:
		if kind.IsAbstract {
			return KindAbstract
		}
		return KindClass
	case ast.Function:
		return KindFunction
	case ast.Type:
		return KindType
	case ast.Variable:
		return KindVariable
	case ast.Reference:
		return KindRef
	}
	return KindRef
}

// problemMessages collects the rendered diagnostics attached as
// LintError children of a node.
func problemMessages(node *ast.Node) []string {
	var msgs []string
	for _, err := range node.Errors() {
		msgs = append(msgs, err.Message())
	}
	return msgs
}

// RemoveVisualNoise drops incidental type, variable, function and
// external-reference nodes unless they participate in a diagnostic.
// A problematic connection rescues both its endpoints; non-problematic
// connections into removed nodes disappear with them.
func RemoveVisualNoise(g *GraphData) *GraphData {
	removable := make(map[string]bool)
	for name, node := range g.Nodes {
		switch node.Kind {
		case KindType, KindVariable, KindFunction, KindRef:
			if len(node.Problematic) == 0 {
				removable[name] = true
			}
		}
	}

	for _, con := range g.Connections {
		if len(con.Problematic) > 0 {
			delete(removable, con.To)
			delete(removable, con.From)
		}
	}

	var connections []Connection
	for _, con := range g.Connections {
		if !removable[con.To] {
			connections = append(connections, con)
		}
	}

	nodes := make(map[string]Entity, len(g.Nodes))
	for name, node := range g.Nodes {
		if !removable[name] {
			nodes[name] = node
		}
	}

	return &GraphData{Nodes: nodes, Connections: connections}
}
