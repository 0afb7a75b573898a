package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kober-systems/guidelines/pkg/analyzer/rules"
	"github.com/kober-systems/guidelines/pkg/ast"
	"github.com/kober-systems/guidelines/pkg/semantic"
)

func parseToGraph(t *testing.T, code string) *GraphData {
	t.Helper()
	lifter := semantic.New()
	t.Cleanup(lifter.Close)

	file, err := lifter.Lift("sample.cpp", []byte(code))
	require.NoError(t, err)
	return Build([]*ast.Node{file})
}

func TestBasicDerives(t *testing.T) {
	code := `
class AbstractInterface {
public:
  virtual ~AbstractInterface() = default;
  virtual void foo() = 0;
};

class Derived: public AbstractInterface {
  Derived() {}
  void foo() {}
};
`
	g := parseToGraph(t, code)

	assert.Equal(t, map[string]Entity{
		"AbstractInterface": {Kind: KindAbstract, Name: "AbstractInterface"},
		"Derived":           {Kind: KindClass, Name: "Derived"},
	}, g.Nodes)
	assert.Equal(t, []Connection{
		{Kind: Inheritance, From: "Derived", To: "AbstractInterface"},
	}, g.Connections)
}

func TestShowDependenciesOnGlobalVariables(t *testing.T) {
	code := `
int my_global = 0;

class AbstractInterface {
public:
  virtual ~AbstractInterface() = default;
  virtual void foo() = 0;
};

class Derived: public AbstractInterface {
  Derived() {}
  void foo() { my_global = 42; }
};
`
	g := parseToGraph(t, code)

	assert.Equal(t, map[string]Entity{
		"AbstractInterface": {Kind: KindAbstract, Name: "AbstractInterface"},
		"Derived":           {Kind: KindClass, Name: "Derived"},
		"my_global":         {Kind: KindVariable, Name: "my_global"},
	}, g.Nodes)
	assert.Equal(t, []Connection{
		{Kind: Inheritance, From: "Derived", To: "AbstractInterface"},
		{Kind: Usage, From: "Derived", To: "my_global"},
	}, g.Connections)
}

func TestExternalNamespaceFunctionContributesToClass(t *testing.T) {
	code := `
int my_global = 0;

void MyClass::tick() { my_global = 1; }
`
	g := parseToGraph(t, code)

	require.Contains(t, g.Nodes, "MyClass")
	assert.Equal(t, KindClass, g.Nodes["MyClass"].Kind)
	assert.Contains(t, g.Connections, Connection{
		Kind: Usage, From: "MyClass", To: "my_global",
	})
}

func TestFreeFunctionGetsOwnNode(t *testing.T) {
	code := `
int my_global = 0;

void tick() { my_global = 1; }
`
	g := parseToGraph(t, code)

	require.Contains(t, g.Nodes, "tick")
	assert.Equal(t, KindFunction, g.Nodes["tick"].Kind)
	assert.Contains(t, g.Connections, Connection{
		Kind: Usage, From: "tick", To: "my_global",
	})
}

func TestUnknownBaseBecomesExternalReference(t *testing.T) {
	code := `
class Derived: public AbstractElsewhere {
public:
  void foo();
};
`
	g := parseToGraph(t, code)

	require.Contains(t, g.Nodes, "AbstractElsewhere")
	assert.Equal(t, KindRef, g.Nodes["AbstractElsewhere"].Kind)
}

func TestAnnotatedTreeCarriesProblematicEntities(t *testing.T) {
	code := `
class NoBase {
public:
  int leak = 0;
};
`
	lifter := semantic.New()
	t.Cleanup(lifter.Close)

	file, err := lifter.Lift("sample.cpp", []byte(code))
	require.NoError(t, err)

	files := []*ast.Node{file}
	idx := rules.BuildIndex(files)
	rules.FilterReferences(files, idx)
	rules.Annotate(files, idx)

	g := Build(files)
	require.Contains(t, g.Nodes, "NoBase")
	problems := g.Nodes["NoBase"].Problematic
	require.Len(t, problems, 2)
	assert.Contains(t, problems[0], "must not have non private attributes")
	assert.Contains(t, problems[1], "should be derived from abstract interface")
}

func TestProblematicUsageEdge(t *testing.T) {
	code := `
int my_global = 0;

class Derived: public AbstractInterface {
public:
  void foo() { my_global = 42; }
};
`
	lifter := semantic.New()
	t.Cleanup(lifter.Close)

	file, err := lifter.Lift("sample.cpp", []byte(code))
	require.NoError(t, err)

	files := []*ast.Node{file}
	idx := rules.BuildIndex(files)
	rules.FilterReferences(files, idx)
	rules.Annotate(files, idx)

	g := Build(files)

	var usage *Connection
	for i := range g.Connections {
		if g.Connections[i].Kind == Usage && g.Connections[i].To == "my_global" {
			usage = &g.Connections[i]
		}
	}
	require.NotNil(t, usage)
	assert.Equal(t, "Derived", usage.From)
	require.Len(t, usage.Problematic, 1)
	assert.Contains(t, usage.Problematic[0], "It's not allowed to use global variables")
}

func TestGraphBuildIsDeterministic(t *testing.T) {
	code := `
int my_global = 0;

class Derived: public AbstractInterface {
public:
  void foo() { my_global = 42; }
};
`
	first := parseToGraph(t, code)
	second := parseToGraph(t, code)
	assert.Equal(t, first, second)
	assert.Equal(t, first.SortedNames(), second.SortedNames())
}
