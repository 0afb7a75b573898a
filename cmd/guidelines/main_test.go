package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsGraphFormat(t *testing.T) {
	assert.False(t, isGraphFormat("terminal"))
	assert.True(t, isGraphFormat("svg"))
	assert.True(t, isGraphFormat("dot"))
	assert.True(t, isGraphFormat("graphml"))
	assert.False(t, isGraphFormat("json"))
}

func writeSource(t *testing.T, dir, name, code string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(code), 0o644))
	return path
}

func TestCheckCommandOnCleanSources(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "AbstractThing.h", `
class AbstractThing {
public:
    virtual ~AbstractThing() = default;
    virtual void poke() = 0;
};
`)

	err := run([]string{"guidelines", "check", dir})
	assert.NoError(t, err)
}

func TestGraphCommandWritesDOT(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "Thing.h", `
class Thing: public AbstractThing {
public:
    void poke();
};
`)
	out := filepath.Join(dir, "graph.dot")

	err := run([]string{"guidelines", "graph", "--format", "dot", "--output", out, dir})
	require.NoError(t, err)

	content, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(content), "digraph Code {")
	assert.Contains(t, string(content), "Thing")
}

func TestFixCommandWritesInterface(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "MyClass.h", `
class MyClass {
public:
  void foo();
};
`)

	err := run([]string{"guidelines", "fix", "--class", "MyClass", "--write", dir})
	require.NoError(t, err)

	rewritten, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(rewritten), "class MyClass: public AbstractMyClass {")

	iface, err := os.ReadFile(filepath.Join(dir, "AbstractMyClass.h"))
	require.NoError(t, err)
	assert.Contains(t, string(iface), "virtual void foo() = 0;")
}

func TestDefaultActionRendersGraphFormats(t *testing.T) {
	dir := t.TempDir()
	writeSource(t, dir, "Thing.h", `
class Thing: public AbstractThing {
public:
    void poke();
};
`)

	err := run([]string{"guidelines", "--input", dir, "--format", "graphml"})
	assert.NoError(t, err)
}
