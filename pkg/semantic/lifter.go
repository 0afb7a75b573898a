// Package semantic lifts tree-sitter syntax trees into the compact
// semantic tree defined in pkg/ast. One pass per file; preprocessor,
// namespace and template wrappers are traversed transparently.
package semantic

import (
	sitter "github.com/smacker/go-tree-sitter"

	"github.com/kober-systems/guidelines/pkg/ast"
	"github.com/kober-systems/guidelines/pkg/parser"
)

// Lifter turns C++ source files into semantic trees.
type Lifter struct {
	parser *parser.Parser
}

// New creates a new lifter with its own parser instance.
func New() *Lifter {
	return &Lifter{parser: parser.New()}
}

// NewWithParser creates a lifter reusing an existing parser, for callers
// that manage parser lifetime themselves (one parser per file in the
// worker pool).
func NewWithParser(p *parser.Parser) *Lifter {
	return &Lifter{parser: p}
}

// Close releases parser resources.
func (l *Lifter) Close() {
	l.parser.Close()
}

// LiftFile reads and lifts a file from disk.
func (l *Lifter) LiftFile(path string) (*ast.Node, error) {
	result, err := l.parser.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return l.lift(result), nil
}

// Lift lifts source code held in memory. The name becomes the File
// node's name and is carried into diagnostics as the file path.
func (l *Lifter) Lift(name string, source []byte) (*ast.Node, error) {
	result, err := l.parser.Parse(source, name)
	if err != nil {
		return nil, err
	}
	return l.lift(result), nil
}

func (l *Lifter) lift(result *parser.ParseResult) *ast.Node {
	root := result.Tree.RootNode()

	file := &ast.Node{
		Name:  result.Path,
		Kind:  ast.File{Content: string(result.Source)},
		Range: nodeRange(root),
	}
	liftChunk(file, root, result.Source)

	return file
}

// liftChunk dispatches the children of a top-level (or transparently
// wrapped) CST node into semantic children of the file.
func liftChunk(file *ast.Node, node *sitter.Node, code []byte) {
	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		switch child.Type() {
		case "class_specifier":
			file.Children = append(file.Children, extractClass(child, code))
		case "declaration":
			file.Children = append(file.Children, extractFieldOrFunction(child, code, ast.Public))
		case "function_definition":
			file.Children = append(file.Children, extractFunction(child, code, ast.Public))
		case "preproc_ifdef", "preproc_def", "preproc_if", "preproc_elif", "preproc_else",
			"namespace_definition", "declaration_list", "template_declaration", "type_definition":
			liftChunk(file, child, code)
		case "preproc_include":
			file.Dependencies = append(file.Dependencies, parseInclude(child, code))
		case "enum_specifier":
			file.Children = append(file.Children, parseEnum(child, code))
		case "struct_specifier":
			file.Children = append(file.Children, parseStruct(child, code))
		case "alias_declaration":
			file.Children = append(file.Children, parseAlias(child, code))
		case "identifier", "namespace_identifier", "type_identifier":
			// identifiers on global level carry no semantics
		case "template_parameter_list":
		case "comment", "#ifdef", "#ifndef", "#define", "#endif", "#if", "#elif", "#else",
			"preproc_arg", "preproc_defined", "namespace", "template", "typedef",
			"primitive_type":
		case ";", "{", "}", "\n":
		default:
			file.Children = append(file.Children, unhandled(child))
		}
	}
}

// parseInclude records an #include as a file-level dependency. The name
// keeps the quoted or angle-bracketed path literal verbatim.
func parseInclude(node *sitter.Node, code []byte) *ast.Node {
	include := &ast.Node{
		Kind:  ast.Reference{Kind: ast.RefDepend},
		Range: nodeRange(node),
	}

	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		switch child.Type() {
		case "string_literal", "system_lib_string":
			include.Name = parser.GetNodeText(child, code)
		case "#include", "identifier", ";", "\n":
		default:
			include.Children = append(include.Children, unhandled(child))
		}
	}

	return include
}

// parseEnum lifts an enum declaration into a Type node. Each variant
// yields two synthesized constants, one bare and one qualified, so that
// scope lookup succeeds for both spellings.
func parseEnum(node *sitter.Node, code []byte) *ast.Node {
	enum := &ast.Node{
		Kind:  ast.Type{},
		Range: nodeRange(node),
	}

	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		switch child.Type() {
		case "type_identifier":
			enum.Name = parser.GetNodeText(child, code)
		case "enumerator_list":
			// resolved below once the enum name is known
		case "enum", "class", "struct", ":", ";", "primitive_type":
		default:
			enum.Children = append(enum.Children, unhandled(child))
		}
	}

	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if child.Type() != "enumerator_list" {
			continue
		}
		for j := range int(child.ChildCount()) {
			entry := child.Child(j)
			if entry.Type() != "enumerator" {
				continue
			}
			nameNode := entry.ChildByFieldName("name")
			if nameNode == nil {
				continue
			}
			variant := parser.GetNodeText(nameNode, code)
			rng := nodeRange(entry)
			enum.Children = append(enum.Children,
				constVariant(variant, rng),
				constVariant(enum.Name+"::"+variant, rng))
		}
	}

	return enum
}

func constVariant(name string, rng ast.Range) *ast.Node {
	return &ast.Node{
		Name:  name,
		Kind:  ast.Variable{IsConst: true, Visibility: ast.Public},
		Range: rng,
	}
}

func parseStruct(node *sitter.Node, code []byte) *ast.Node {
	s := &ast.Node{
		Kind:  ast.Type{},
		Range: nodeRange(node),
	}

	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		switch child.Type() {
		case "type_identifier":
			if s.Name == "" {
				s.Name = parser.GetNodeText(child, code)
			}
		default:
			// struct bodies are opaque to the rules
		}
	}

	return s
}

func parseAlias(node *sitter.Node, code []byte) *ast.Node {
	alias := &ast.Node{
		Kind:  ast.Type{},
		Range: nodeRange(node),
	}

	for i := range int(node.ChildCount()) {
		child := node.Child(i)
		if child.Type() == "type_identifier" && alias.Name == "" {
			alias.Name = parser.GetNodeText(child, code)
		}
	}

	return alias
}

func unhandled(node *sitter.Node) *ast.Node {
	return &ast.Node{
		Kind:  ast.Unhandled{Sexp: node.String()},
		Range: nodeRange(node),
	}
}

func nodeRange(node *sitter.Node) ast.Range {
	return ast.Range{Start: node.StartByte(), End: node.EndByte()}
}
