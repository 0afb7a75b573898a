package semantic

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kober-systems/guidelines/pkg/ast"
	"github.com/kober-systems/guidelines/pkg/parser"
)

// liftBody walks a function body and records identifier references on
// the enclosing Function node. Reads, writes and calls become Reference
// children; local declarations become Variable children so that scope
// lookup can resolve them; local declaration types become TypeRead
// dependencies.
func liftBody(fn *ast.Node, body *sitter.Node, code []byte) {
	for i := range int(body.ChildCount()) {
		liftStatement(fn, body.Child(i), code)
	}
}

func liftStatement(fn *ast.Node, node *sitter.Node, code []byte) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "declaration":
		liftLocalDeclaration(fn, node, code)
	case "assignment_expression":
		liftAssignTarget(fn, node.ChildByFieldName("left"), code)
		liftStatement(fn, node.ChildByFieldName("right"), code)
	case "update_expression":
		liftAssignTarget(fn, node.ChildByFieldName("argument"), code)
	case "new_expression", "delete_expression":
		for i := range int(node.ChildCount()) {
			child := node.Child(i)
			switch child.Type() {
			case "identifier", "qualified_identifier", "type_identifier":
				appendReference(fn, child, code, ast.RefWrite)
			default:
				liftStatement(fn, child, code)
			}
		}
	case "call_expression":
		liftCallee(fn, node.ChildByFieldName("function"), code)
		liftStatement(fn, node.ChildByFieldName("arguments"), code)
	case "field_expression":
		// this->x / obj.x: the field identifier on the right of the
		// accessor is not an independent reference
		liftStatement(fn, node.ChildByFieldName("argument"), code)
	case "identifier", "qualified_identifier":
		appendReference(fn, node, code, ast.RefRead)
	case "comment", "field_identifier",
		"number_literal", "string_literal", "char_literal", "raw_string_literal",
		"true", "false", "nullptr", "this",
		"sizeof_expression", "primitive_type", "type_identifier",
		"break_statement", "continue_statement",
		"if", "else", "while", "for", "do", "switch", "case", "return", "sizeof",
		";", "{", "}", "(", ")", ":", ",", "=", "!", "?", "[", "]",
		"+", "-", "*", "/", "%", "<", ">", "<=", ">=", "==", "!=",
		"&&", "||", "&", "|", "^", "~", "<<", ">>", "++", "--":
	default:
		for i := range int(node.ChildCount()) {
			liftStatement(fn, node.Child(i), code)
		}
	}
}

// liftLocalDeclaration records `MyType x = expr;` inside a body: the
// declared name as a local Variable, the type as a TypeRead dependency
// and the initializer's references.
func liftLocalDeclaration(fn *ast.Node, decl *sitter.Node, code []byte) {
	for i := range int(decl.ChildCount()) {
		child := decl.Child(i)
		switch child.Type() {
		case "identifier", "array_declarator", "pointer_declarator", "reference_declarator":
			if name := declaredName(child, code); name != "" {
				fn.Children = append(fn.Children, &ast.Node{
					Name:  name,
					Kind:  ast.Variable{IsConst: isConstDecl(decl, code), Visibility: ast.Private},
					Range: nodeRange(child),
				})
			}
		case "init_declarator":
			if declarator := child.ChildByFieldName("declarator"); declarator != nil {
				if name := declaredName(declarator, code); name != "" {
					fn.Children = append(fn.Children, &ast.Node{
						Name:  name,
						Kind:  ast.Variable{IsConst: isConstDecl(decl, code), Visibility: ast.Private},
						Range: nodeRange(declarator),
					})
				}
			}
			liftStatement(fn, child.ChildByFieldName("value"), code)
		case "type_identifier", "qualified_identifier", "template_type":
			fn.Dependencies = append(fn.Dependencies, &ast.Node{
				Name:  parser.GetNodeText(child, code),
				Kind:  ast.Reference{Kind: ast.RefTypeRead},
				Range: nodeRange(child),
			})
		}
	}
}

// liftAssignTarget records the left-hand side of an assignment.
func liftAssignTarget(fn *ast.Node, target *sitter.Node, code []byte) {
	if target == nil {
		return
	}
	switch target.Type() {
	case "identifier", "qualified_identifier":
		appendReference(fn, target, code, ast.RefWrite)
	default:
		liftStatement(fn, target, code)
	}
}

// liftCallee records the callee of a call expression.
func liftCallee(fn *ast.Node, callee *sitter.Node, code []byte) {
	if callee == nil {
		return
	}
	switch callee.Type() {
	case "identifier", "qualified_identifier":
		appendReference(fn, callee, code, ast.RefCall)
	default:
		liftStatement(fn, callee, code)
	}
}

func appendReference(fn *ast.Node, node *sitter.Node, code []byte, kind ast.RefKind) {
	name := parser.GetNodeText(node, code)
	if name == "" || isKeyword(name) {
		return
	}
	fn.Children = append(fn.Children, &ast.Node{
		Name:  name,
		Kind:  ast.Reference{Kind: kind},
		Range: nodeRange(node),
	})
}

func isKeyword(name string) bool {
	switch strings.TrimSpace(name) {
	case "true", "false", "nullptr", "this":
		return true
	}
	return false
}
