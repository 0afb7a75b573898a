// Package parser wraps tree-sitter for parsing the C++ dialect the
// analyzer understands. It only exposes concrete-syntax-tree access:
// node kinds, byte ranges, children, siblings and source slices.
package parser

import (
	"context"
	"errors"
	"fmt"
	"os"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/cpp"
)

// ErrEmptyTree is returned when tree-sitter cannot produce a root node
// for the given input.
var ErrEmptyTree = errors.New("parser produced no syntax tree")

// Parser wraps a tree-sitter parser configured for C++.
type Parser struct {
	parser *sitter.Parser
}

// ParseResult contains the parsed CST and the source it was built from.
type ParseResult struct {
	Tree   *sitter.Tree
	Source []byte
	Path   string
}

// New creates a new parser instance.
func New() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(cpp.GetLanguage())
	return &Parser{parser: p}
}

// ParseFile parses a source file and returns the CST.
func (p *Parser) ParseFile(path string) (*ParseResult, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return p.Parse(source, path)
}

// Parse parses source code already held in memory.
func (p *Parser) Parse(source []byte, path string) (*ParseResult, error) {
	tree, err := p.parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if tree == nil || tree.RootNode() == nil {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyTree)
	}

	return &ParseResult{
		Tree:   tree,
		Source: source,
		Path:   path,
	}, nil
}

// Close releases parser resources.
func (p *Parser) Close() {
	p.parser.Close()
}

// NodeVisitor is a function that visits CST nodes.
type NodeVisitor func(node *sitter.Node, source []byte) bool

// Walk traverses the CST calling visitor for each node.
// Returning false from the visitor stops descent into that subtree.
func Walk(node *sitter.Node, source []byte, visitor NodeVisitor) {
	if node == nil {
		return
	}

	if !visitor(node, source) {
		return
	}

	for i := range int(node.ChildCount()) {
		Walk(node.Child(i), source, visitor)
	}
}

// FindNodes returns all nodes matching a predicate.
func FindNodes(root *sitter.Node, source []byte, predicate func(*sitter.Node) bool) []*sitter.Node {
	var results []*sitter.Node
	Walk(root, source, func(node *sitter.Node, source []byte) bool {
		if predicate(node) {
			results = append(results, node)
		}
		return true
	})
	return results
}

// FindNodesByType returns all nodes of a specific type.
func FindNodesByType(root *sitter.Node, source []byte, nodeType string) []*sitter.Node {
	return FindNodes(root, source, func(n *sitter.Node) bool {
		return n.Type() == nodeType
	})
}

// GetNodeText extracts the source text for a node.
// Returns empty string if node is nil or byte offsets are out of bounds.
func GetNodeText(node *sitter.Node, source []byte) string {
	if node == nil {
		return ""
	}
	return Slice(source, node.StartByte(), node.EndByte())
}

// Slice returns source[start:end], guarding against out-of-bounds ranges.
func Slice(source []byte, start, end uint32) string {
	if start > end || end > uint32(len(source)) {
		return ""
	}
	return string(source[start:end])
}
