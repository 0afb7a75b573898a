package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kober-systems/guidelines/pkg/ast"
	"github.com/kober-systems/guidelines/pkg/semantic"
)

func liftFiles(t *testing.T, sources map[string]string) []*ast.Node {
	t.Helper()
	lifter := semantic.New()
	t.Cleanup(lifter.Close)

	var files []*ast.Node
	for name, code := range sources {
		file, err := lifter.Lift(name, []byte(code))
		require.NoError(t, err)
		files = append(files, file)
	}
	return files
}

func TestIndexCollectsGlobalConstants(t *testing.T) {
	files := liftFiles(t, map[string]string{
		"a.h": "constexpr int max_size = 10;\nint not_const = 1;\n",
	})

	idx := BuildIndex(files)
	assert.True(t, idx.Constants.Contains("max_size"))
	assert.False(t, idx.Constants.Contains("not_const"))
}

func TestIndexCollectsEnumVariants(t *testing.T) {
	files := liftFiles(t, map[string]string{
		"a.h": "enum class Mode { idle, active, };\n",
	})

	idx := BuildIndex(files)
	assert.True(t, idx.Constants.Contains("idle"))
	assert.True(t, idx.Constants.Contains("Mode::idle"))
	assert.True(t, idx.Constants.Contains("active"))
	assert.True(t, idx.Constants.Contains("Mode::active"))
}

func TestIndexCollectsClassNamespacesAcrossFiles(t *testing.T) {
	files := liftFiles(t, map[string]string{
		"a.h": `
class MyClass: public AbstractA {
private:
  int counter = 0;
};
`,
		"b.h": `
class Other: public AbstractB {
private:
  int depth = 0;
};
`,
	})

	idx := BuildIndex(files)
	require.Contains(t, idx.Namespaces, "MyClass")
	require.Contains(t, idx.Namespaces, "Other")
	assert.True(t, idx.Namespaces["MyClass"].Contains("counter"))
	assert.True(t, idx.Namespaces["Other"].Contains("depth"))
	assert.False(t, idx.Namespaces["MyClass"].Contains("depth"))
}

func TestIndexFoldIsOrderIndependent(t *testing.T) {
	sources := map[string]string{
		"a.h": "constexpr int alpha = 1;\n",
		"b.h": "constexpr int beta = 2;\n",
	}

	files := liftFiles(t, sources)
	forward := BuildIndex(files)
	backward := BuildIndex([]*ast.Node{files[len(files)-1], files[0]})

	assert.ElementsMatch(t, forward.Constants.Values(), backward.Constants.Values())
}

func TestFilterRemovesBenignReferences(t *testing.T) {
	files := liftFiles(t, map[string]string{
		"a.cpp": `
int my_global = 0;
constexpr int limit = 10;

void run(int param) {
  int local = limit;
  my_global = local + param;
}
`,
	})

	idx := BuildIndex(files)
	FilterReferences(files, idx)

	run := files[0].FindChild("run")
	require.NotNil(t, run)

	var refNames []string
	for _, child := range run.Children {
		if _, ok := child.Kind.(ast.Reference); ok {
			refNames = append(refNames, child.Name)
		}
	}
	assert.Equal(t, []string{"my_global"}, refNames)
}

func TestFilterKeepsCalls(t *testing.T) {
	files := liftFiles(t, map[string]string{
		"a.cpp": `
void helper();

void run() {
  helper();
}
`,
	})

	idx := BuildIndex(files)
	FilterReferences(files, idx)

	run := files[0].FindChild("run")
	require.NotNil(t, run)

	var calls []string
	for _, child := range run.Children {
		if ref, ok := child.Kind.(ast.Reference); ok && ref.Kind == ast.RefCall {
			calls = append(calls, child.Name)
		}
	}
	assert.Equal(t, []string{"helper"}, calls)
}

func TestFilterKeepsClassAttributeReferencesOutOfScope(t *testing.T) {
	files := liftFiles(t, map[string]string{
		"a.cpp": `
class MyClass: public AbstractA {
public:
  void tick() { counter = counter + 1; }
private:
  int counter = 0;
};

class Another: public AbstractB {
public:
  void poke() { counter = 2; }
};
`,
	})

	idx := BuildIndex(files)
	FilterReferences(files, idx)

	myClass := files[0].FindChild("MyClass")
	require.NotNil(t, myClass)
	tick := myClass.FindChild("tick")
	require.NotNil(t, tick)
	for _, child := range tick.Children {
		if _, ok := child.Kind.(ast.Reference); ok {
			t.Errorf("expected no references left in tick, found %q", child.Name)
		}
	}

	another := files[0].FindChild("Another")
	require.NotNil(t, another)
	poke := another.FindChild("poke")
	require.NotNil(t, poke)

	var kept []string
	for _, child := range poke.Children {
		if _, ok := child.Kind.(ast.Reference); ok {
			kept = append(kept, child.Name)
		}
	}
	assert.Equal(t, []string{"counter"}, kept, "counter is not an attribute of Another")
}
