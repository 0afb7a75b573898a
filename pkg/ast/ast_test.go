package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRangeContains(t *testing.T) {
	outer := Range{Start: 0, End: 100}
	assert.True(t, outer.Contains(Range{Start: 10, End: 20}))
	assert.True(t, outer.Contains(outer))
	assert.False(t, outer.Contains(Range{Start: 90, End: 101}))
}

func TestIsAbstractName(t *testing.T) {
	assert.True(t, IsAbstractName("AbstractMyClass"))
	assert.True(t, IsAbstractName("Abstract"))
	assert.False(t, IsAbstractName("MyAbstractClass"))
	assert.False(t, IsAbstractName("myclass"))
}

func TestFileContent(t *testing.T) {
	file := NewNode("a.h", File{Content: "int x;"}, Range{End: 6})
	content, ok := file.FileContent()
	assert.True(t, ok)
	assert.Equal(t, "int x;", content)

	class := NewNode("C", Class{}, Range{})
	_, ok = class.FileContent()
	assert.False(t, ok)

	file.SetFileContent("int y;")
	content, _ = file.FileContent()
	assert.Equal(t, "int y;", content)
}

func TestHasMark(t *testing.T) {
	node := NewNode("C", Class{}, Range{})
	node.Instructions = append(node.Instructions, LintMark{Ident: "E_MOD_01", Reason: "why"})

	assert.True(t, node.HasMark("E_MOD_01"))
	assert.False(t, node.HasMark("E_MOD_02"))
}

func TestErrorsCollectsDirectLintChildren(t *testing.T) {
	node := NewNode("C", Class{}, Range{})
	diag := &Diagnostic{Kind: DeriveFromAbstractInterface, Class: "C"}
	node.Children = append(node.Children,
		NewNode("", LintError{Err: diag}, Range{}),
		NewNode("x", Variable{Visibility: Public}, Range{}),
	)

	errs := node.Errors()
	assert.Equal(t, []*Diagnostic{diag}, errs)
}

func TestWalkPreOrder(t *testing.T) {
	root := NewNode("root", File{}, Range{})
	child := NewNode("child", Class{}, Range{})
	grand := NewNode("grand", Variable{}, Range{})
	child.Children = append(child.Children, grand)
	root.Children = append(root.Children, child)

	var visited []string
	root.Walk(func(n *Node) bool {
		visited = append(visited, n.Name)
		return true
	})
	assert.Equal(t, []string{"root", "child", "grand"}, visited)
}

func TestMessageRenderingIsTotal(t *testing.T) {
	kinds := []ErrorKind{
		InterfaceOnlyPublicMethods,
		InterfaceShouldNotDefineAttrs,
		DerivedClassesAllAttrsPrivate,
		GlobalVariablesUsage,
		GlobalVariablesDeclaration,
		DeriveFromAbstractInterface,
		AvoidInitMethods,
		ParserUnhandled,
		LintInstructionNotParseble,
		AbstractClassMissingDefaultDestructor,
		AbstractClassMethodNotVirtual,
		AbstractClassMethodMissingVirtualEnding,
		DerivedClassMethodIsVirtual,
		DerivedClassMethodHasVirtualEnding,
		DerivesAlwaysPublic,
		DerivesAlwaysFromAbstractInterfaces,
	}

	for _, kind := range kinds {
		d := &Diagnostic{Kind: kind, Class: "C", Detail: "d"}
		assert.NotEmpty(t, d.Message(), "kind %s", kind)
		assert.Equal(t, d.Message(), d.Error())
	}
}

func TestMessageWording(t *testing.T) {
	d := &Diagnostic{Kind: InterfaceShouldNotDefineAttrs, Class: "AbstractA", Detail: "x"}
	assert.Equal(t, "Abstract class `AbstractA` must not have attributes ('x')", d.Message())

	d = &Diagnostic{Kind: GlobalVariablesDeclaration, Detail: "g"}
	assert.Equal(t,
		"It's not allowed to create global variables ('g'). Global variables create invisible coupling.",
		d.Message())
}
