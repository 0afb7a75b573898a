package semantic

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kober-systems/guidelines/pkg/ast"
	"github.com/kober-systems/guidelines/pkg/parser"
)

// extractFieldOrFunction lifts a declaration or field_declaration into a
// Variable or Function node. When one declaration names several items
// (`int a, b;` or several init_declarators), only the last one is
// lifted. A pointer_declarator whose slice contains a paren is a
// function, otherwise a variable.
func extractFieldOrFunction(field *sitter.Node, code []byte, visibility ast.Visibility) *ast.Node {
	return extractDeclarator(field, field, code, visibility)
}

// extractDeclarator walks decl looking for the declared name. outer is
// the node whose qualifiers decide constness (the enclosing declaration
// when recursing through init_declarator).
func extractDeclarator(decl, outer *sitter.Node, code []byte, visibility ast.Visibility) *ast.Node {
	node := &ast.Node{
		Kind:  ast.Unhandled{Sexp: "extract_field_or_function: " + decl.String()},
		Range: nodeRange(outer),
	}
	var nested *ast.Node
	var typeNodes []*sitter.Node

	for i := range int(decl.ChildCount()) {
		child := decl.Child(i)
		switch child.Type() {
		case "field_identifier", "identifier", "array_declarator":
			node.Name = declaredName(child, code)
			node.Kind = ast.Variable{
				IsConst:    isConstDecl(outer, code),
				Visibility: visibility,
			}
		case "init_declarator":
			nested = extractDeclarator(child, outer, code, visibility)
		case "pointer_declarator", "reference_declarator":
			text := parser.GetNodeText(child, code)
			if strings.Contains(text, "(") {
				node.Name = functionName(child, code)
				node.Kind = ast.Function{
					Visibility: visibility,
					IsVirtual:  pureVirtual(outer, code),
				}
				liftFunctionInternals(node, child, code)
			} else {
				node.Name = declaredName(child, code)
				node.Kind = ast.Variable{
					IsConst:    isConstDecl(outer, code),
					Visibility: visibility,
				}
			}
		case "function_declarator":
			fn := ast.Function{
				Visibility: visibility,
				IsVirtual:  pureVirtual(outer, code),
			}
			node.Name, fn.ExternalNamespace = functionIdentity(child, code)
			node.Kind = fn
			liftFunctionInternals(node, child, code)
		case "enum_specifier":
			nested = parseEnum(child, code)
		case "struct_specifier":
			nested = parseStruct(child, code)
		case "compound_statement":
			liftBody(node, child, code)
		case "default_method_clause", "delete_method_clause":
		case "virtual", "primitive_type", "number_literal", "type_qualifier",
			"storage_class_specifier", "string_literal", "char_literal",
			"comment":
		case "type_identifier", "qualified_identifier", "template_type", "sized_type_specifier":
			typeNodes = append(typeNodes, child)
		case ";", "{", "}", "(", ")", ":", "=", ",", "*", "&", "...":
		default:
			node.Children = append(node.Children, unhandled(child))
		}
	}

	// the return type of a function is a composition-style dependency
	if _, isFn := node.Kind.(ast.Function); isFn {
		for _, tn := range typeNodes {
			node.Dependencies = append(node.Dependencies, &ast.Node{
				Name:  parser.GetNodeText(tn, code),
				Kind:  ast.Reference{Kind: ast.RefTypeRead},
				Range: nodeRange(tn),
			})
		}
	}

	if nested != nil {
		nested.Children = append(nested.Children, node.Children...)
		nested.Range = nodeRange(outer)
		return nested
	}
	return node
}

// extractFunction lifts a function_definition, including its body.
func extractFunction(field *sitter.Node, code []byte, visibility ast.Visibility) *ast.Node {
	return extractFieldOrFunction(field, code, visibility)
}

// declaredName returns the identifier text for a variable declarator,
// unwrapping array and pointer shapes.
func declaredName(node *sitter.Node, code []byte) string {
	switch node.Type() {
	case "identifier", "field_identifier":
		return parser.GetNodeText(node, code)
	}
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		switch child.Type() {
		case "identifier", "field_identifier":
			return parser.GetNodeText(child, code)
		case "array_declarator", "pointer_declarator", "reference_declarator":
			return declaredName(child, code)
		}
	}
	return parser.GetNodeText(node, code)
}

// functionIdentity returns the declared function name and, for
// out-of-class definitions of the form Class::method, the class the
// function belongs to.
func functionIdentity(declarator *sitter.Node, code []byte) (name, externalNamespace string) {
	for i := range int(declarator.ChildCount()) {
		child := declarator.Child(i)
		switch child.Type() {
		case "identifier", "field_identifier", "destructor_name", "operator_name":
			return parser.GetNodeText(child, code), ""
		case "qualified_identifier":
			scope := child.ChildByFieldName("scope")
			inner := child.ChildByFieldName("name")
			return parser.GetNodeText(inner, code), parser.GetNodeText(scope, code)
		}
	}
	return "", ""
}

// functionName is functionIdentity for contexts where the namespace is
// irrelevant (pointer-shaped declarators).
func functionName(node *sitter.Node, code []byte) string {
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		switch child.Type() {
		case "function_declarator":
			name, _ := functionIdentity(child, code)
			return name
		case "pointer_declarator", "reference_declarator", "parenthesized_declarator":
			if name := functionName(child, code); name != "" {
				return name
			}
		case "identifier", "field_identifier":
			return parser.GetNodeText(child, code)
		}
	}
	return ""
}

// liftFunctionInternals records parameters as Variable children and
// parameter types as TypeRead dependencies of the function node.
func liftFunctionInternals(fn *ast.Node, declarator *sitter.Node, code []byte) {
	params := declarator.ChildByFieldName("parameters")
	if params == nil {
		for i := range int(declarator.ChildCount()) {
			child := declarator.Child(i)
			switch child.Type() {
			case "parameter_list":
				params = child
			case "function_declarator", "parenthesized_declarator":
				liftFunctionInternals(fn, child, code)
			}
		}
	}
	if params == nil {
		return
	}

	for i := range int(params.ChildCount()) {
		param := params.Child(i)
		if param.Type() != "parameter_declaration" && param.Type() != "optional_parameter_declaration" {
			continue
		}
		liftParameter(fn, param, code)
	}
}

func liftParameter(fn *ast.Node, param *sitter.Node, code []byte) {
	for i := range int(param.ChildCount()) {
		child := param.Child(i)
		switch child.Type() {
		case "identifier":
			fn.Children = append(fn.Children, &ast.Node{
				Name:  parser.GetNodeText(child, code),
				Kind:  ast.Variable{Visibility: ast.Private},
				Range: nodeRange(child),
			})
		case "pointer_declarator", "reference_declarator", "array_declarator":
			if name := declaredName(child, code); name != "" {
				fn.Children = append(fn.Children, &ast.Node{
					Name:  name,
					Kind:  ast.Variable{Visibility: ast.Private},
					Range: nodeRange(child),
				})
			}
		case "type_identifier", "qualified_identifier", "template_type":
			fn.Dependencies = append(fn.Dependencies, &ast.Node{
				Name:  parser.GetNodeText(child, code),
				Kind:  ast.Reference{Kind: ast.RefTypeRead},
				Range: nodeRange(child),
			})
		}
	}
}

// pureVirtual reports whether a member declaration is pure virtual: its
// source slice starts with `virtual` and either its whitespace-stripped
// slice ends with `=0;` or it is a defaulted virtual destructor.
func pureVirtual(field *sitter.Node, code []byte) bool {
	text := parser.GetNodeText(field, code)
	if !strings.HasPrefix(text, "virtual") {
		return false
	}

	return pureVirtualEnding(text) || defaultDestructor(field, code)
}

// pureVirtualEnding checks the textual `= 0;` marker after whitespace
// compression.
func pureVirtualEnding(text string) bool {
	return strings.HasSuffix(strings.ReplaceAll(text, " ", ""), "=0;")
}

// defaultDestructor reports whether the declaration is a defaulted
// destructor. It trusts the default_method_clause CST node and falls
// back to substring matching when the grammar lacks it.
func defaultDestructor(field *sitter.Node, code []byte) bool {
	isDestructor := false
	isDefault := false

	for i := range int(field.ChildCount()) {
		child := field.Child(i)
		switch child.Type() {
		case "function_declarator":
			isDestructor = destructorDeclarator(child)
		case "default_method_clause":
			isDefault = true
		}
	}

	if isDestructor && !isDefault {
		isDefault = strings.Contains(parser.GetNodeText(field, code), "= default")
	}

	return isDestructor && isDefault
}

func destructorDeclarator(node *sitter.Node) bool {
	for i := range int(node.ChildCount()) {
		if node.Child(i).Type() == "destructor_name" {
			return true
		}
	}
	return false
}

// isConstDecl reports whether the declaration carries the
// constant-expression qualifier.
func isConstDecl(node *sitter.Node, code []byte) bool {
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if child.Type() == "type_qualifier" {
			return parser.GetNodeText(child, code) == "constexpr"
		}
	}
	return false
}
