package parser

import (
	"os"
	"path/filepath"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProducesTree(t *testing.T) {
	p := New()
	defer p.Close()

	code := []byte("class MyClass {};\n")
	result, err := p.Parse(code, "test.h")
	require.NoError(t, err)

	root := result.Tree.RootNode()
	require.NotNil(t, root)
	assert.Equal(t, "translation_unit", root.Type())
	assert.Equal(t, uint32(0), root.StartByte())
	assert.Equal(t, uint32(len(code)), root.EndByte())
}

func TestParseIsDeterministic(t *testing.T) {
	p := New()
	defer p.Close()

	code := []byte("class MyClass {};\nint x = 0;\n")
	first, err := p.Parse(code, "test.h")
	require.NoError(t, err)
	second, err := p.Parse(code, "test.h")
	require.NoError(t, err)

	assert.Equal(t, first.Tree.RootNode().String(), second.Tree.RootNode().String())
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.cpp")
	require.NoError(t, os.WriteFile(path, []byte("int main() { return 0; }\n"), 0o644))

	p := New()
	defer p.Close()

	result, err := p.ParseFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, result.Path)
	assert.NotNil(t, result.Tree.RootNode())
}

func TestParseFileMissing(t *testing.T) {
	p := New()
	defer p.Close()

	_, err := p.ParseFile(filepath.Join(t.TempDir(), "missing.cpp"))
	assert.Error(t, err)
}

func TestWalkVisitsAllNodes(t *testing.T) {
	p := New()
	defer p.Close()

	code := []byte("int x = 0;\n")
	result, err := p.Parse(code, "test.h")
	require.NoError(t, err)

	count := 0
	Walk(result.Tree.RootNode(), result.Source, func(node *sitter.Node, source []byte) bool {
		count++
		return true
	})
	assert.Greater(t, count, 3)
}

func TestFindNodesByType(t *testing.T) {
	p := New()
	defer p.Close()

	code := []byte("class A {};\nclass B {};\n")
	result, err := p.Parse(code, "test.h")
	require.NoError(t, err)

	classes := FindNodesByType(result.Tree.RootNode(), result.Source, "class_specifier")
	assert.Len(t, classes, 2)
}

func TestSliceGuardsBounds(t *testing.T) {
	source := []byte("hello")
	assert.Equal(t, "ell", Slice(source, 1, 4))
	assert.Equal(t, "", Slice(source, 4, 1))
	assert.Equal(t, "", Slice(source, 0, 99))
}

func TestGetNodeTextNil(t *testing.T) {
	assert.Equal(t, "", GetNodeText(nil, []byte("x")))
}
