package fix

import (
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kober-systems/guidelines/pkg/ast"
	"github.com/kober-systems/guidelines/pkg/parser"
)

// deriveFromInterface rewrites the class declaration to derive from its
// new abstract interface and places the matching include at the top of
// the file. The class region is re-parsed through the adapter so the
// splice point is exact even when the surrounding file shifted.
func deriveFromInterface(class *ast.Node, className, content string) (string, error) {
	p := parser.New()
	defer p.Close()

	region := slice(content, class.Range)
	result, err := p.Parse([]byte(region), "class region")
	if err != nil {
		return "", err
	}

	node := result.Tree.RootNode().Child(0)
	if node == nil || node.Type() != "class_specifier" {
		return "", fmt.Errorf("cannot rewrite class '%s': unexpected node %s", className, nodeType(node))
	}

	pos := derivePosition(node) + int(class.Range.Start)
	derived := content[:pos] + fmt.Sprintf(": public %s%s", ast.AbstractPrefix, className) + content[pos:]

	includePos, err := includePosition(derived)
	if err != nil {
		return "", err
	}
	include := fmt.Sprintf("#include %q\n", ast.AbstractPrefix+className+".h")
	return derived[:includePos] + include + derived[includePos:], nil
}

func nodeType(node *sitter.Node) string {
	if node == nil {
		return "<nil>"
	}
	return node.Type()
}

// derivePosition finds the byte offset immediately after the class name,
// just before either a base_class_clause or the opening body.
func derivePosition(node *sitter.Node) int {
	pos := 0
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		switch child.Type() {
		case "type_identifier":
			pos = int(child.EndByte())
		case "base_class_clause", "field_declaration_list":
			return pos
		}
	}
	return pos
}

// includePosition returns the offset where the interface include is
// spliced in: directly after a leading header-guard #ifndef/#define
// pair when the file has one, otherwise at the very top.
func includePosition(content string) (int, error) {
	p := parser.New()
	defer p.Close()

	result, err := p.Parse([]byte(content), "rewritten file")
	if err != nil {
		return 0, err
	}

	root := result.Tree.RootNode()
	for i := range int(root.ChildCount()) {
		child := root.Child(i)
		switch child.Type() {
		case "comment":
			continue
		case "preproc_ifdef":
			return guardBodyStart(child, content), nil
		}
		break
	}
	return 0, nil
}

// guardBodyStart locates the first byte after the #define line of a
// header guard.
func guardBodyStart(guard *sitter.Node, content string) int {
	for i := range int(guard.ChildCount()) {
		child := guard.Child(i)
		if child.Type() == "preproc_def" {
			return lineEnd(content, int(child.EndByte()))
		}
	}
	return lineEnd(content, int(guard.StartByte()))
}

func lineEnd(content string, pos int) int {
	if pos > 0 && pos <= len(content) && content[pos-1] == '\n' {
		return pos
	}
	if idx := strings.IndexByte(content[pos:], '\n'); idx >= 0 {
		return pos + idx + 1
	}
	return len(content)
}
