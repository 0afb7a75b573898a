package semantic

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kober-systems/guidelines/pkg/ast"
	"github.com/kober-systems/guidelines/pkg/parser"
)

// lintPattern introduces a suppression instruction inside a comment
// preceding a class declaration.
const lintPattern = "lint: ignore "

// extractClass lifts a class_specifier into a Class node. Base classes
// become Reference(Depend) dependencies; a non-public derive qualifier
// is reported right away as a LintError child.
func extractClass(cl *sitter.Node, code []byte) *ast.Node {
	name := className(cl, code)
	class := &ast.Node{
		Name:  name,
		Kind:  ast.Class{IsAbstract: ast.IsAbstractName(name)},
		Range: nodeRange(cl),
	}

	if before := cl.PrevSibling(); before != nil && before.Type() == "comment" {
		parseLintMarks(class, before, code)
	}

	for i := range int(cl.ChildCount()) {
		child := cl.Child(i)
		switch child.Type() {
		case "field_declaration_list":
			class.Children = append(class.Children, extractClassFields(child, code)...)
		case "base_class_clause":
			extractDerives(class, child, code)
		case "type_identifier", "template_type", "class", ";":
		default:
			class.Children = append(class.Children, unhandled(child))
		}
	}

	return class
}

// className returns the declared class name, looking through
// template_type wrappers.
func className(cl *sitter.Node, code []byte) string {
	for i := range int(cl.ChildCount()) {
		child := cl.Child(i)
		switch child.Type() {
		case "type_identifier":
			return parser.GetNodeText(child, code)
		case "template_type":
			return className(child, code)
		}
	}
	return ""
}

// parseLintMarks scans the comment preceding a class for `lint: ignore`
// instructions. A split-and-peek scan, not a regex: every occurrence of
// the pattern marks the following two tokens as ident and reason.
// Malformed occurrences degrade into a diagnostic on the class.
func parseLintMarks(class *ast.Node, comment *sitter.Node, code []byte) {
	text := parser.GetNodeText(comment, code)
	rng := nodeRange(comment)

	nextIsInstruction := false
	for _, segment := range splitInclusive(text, lintPattern) {
		if nextIsInstruction {
			ident, reason, ok := strings.Cut(segment, " ")
			if ok {
				class.Instructions = append(class.Instructions, ast.LintMark{
					Ident:  ident,
					Reason: reason,
				})
			} else {
				class.Children = append(class.Children, &ast.Node{
					Kind: ast.LintError{Err: &ast.Diagnostic{
						Kind:   ast.LintInstructionNotParseble,
						Detail: text,
						Range:  rng,
					}},
					Range: rng,
				})
			}
		}
		nextIsInstruction = strings.HasSuffix(segment, lintPattern)
	}
}

// splitInclusive splits s after each occurrence of sep, keeping the
// separator attached to the preceding segment.
func splitInclusive(s, sep string) []string {
	var parts []string
	for {
		idx := strings.Index(s, sep)
		if idx < 0 {
			parts = append(parts, s)
			return parts
		}
		cut := idx + len(sep)
		parts = append(parts, s[:cut])
		s = s[cut:]
	}
}

// extractDerives records base classes as dependencies and flags
// non-public derive qualifiers.
func extractDerives(class *ast.Node, clause *sitter.Node, code []byte) {
	for i := range int(clause.ChildCount()) {
		child := clause.Child(i)
		switch child.Type() {
		case "type_identifier", "template_type", "qualified_identifier":
			class.Dependencies = append(class.Dependencies, &ast.Node{
				Name:  parser.GetNodeText(child, code),
				Kind:  ast.Reference{Kind: ast.RefDepend},
				Range: nodeRange(child),
			})
		case "access_specifier":
			if parser.GetNodeText(child, code) != "public" {
				class.Children = append(class.Children, &ast.Node{
					Kind: ast.LintError{Err: &ast.Diagnostic{
						Kind:  ast.DerivesAlwaysPublic,
						Class: class.Name,
						Range: nodeRange(child),
					}},
					Range: nodeRange(child),
				})
			}
		case "class", "comment", ",", ":", ";", "{", "}", "(", ")", "virtual":
		default:
			class.Children = append(class.Children, unhandled(child))
		}
	}
}

// extractClassFields lifts the members of a field_declaration_list.
// The running access specifier starts at public and is updated by
// access_specifier tokens.
func extractClassFields(fields *sitter.Node, code []byte) []*ast.Node {
	var children []*ast.Node

	visibility := ast.Public
	for i := range int(fields.ChildCount()) {
		child := fields.Child(i)
		switch child.Type() {
		case "access_specifier":
			visibility = ast.Visibility(parser.GetNodeText(child, code))
		case "declaration", "field_declaration":
			children = append(children, extractFieldOrFunction(child, code, visibility))
		case "function_definition":
			children = append(children, extractFunction(child, code, visibility))
		case "type_definition":
			children = append(children, parseStruct(child, code))
		case "enum_specifier":
			children = append(children, parseEnum(child, code))
		case "alias_declaration":
			children = append(children, parseAlias(child, code))
		case "type_identifier", "comment":
		case ";", "{", "}", "(", ")", ":":
		default:
			children = append(children, unhandled(child))
		}
	}

	return children
}
