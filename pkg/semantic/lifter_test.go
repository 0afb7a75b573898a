package semantic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kober-systems/guidelines/pkg/ast"
)

func lift(t *testing.T, code string) *ast.Node {
	t.Helper()
	lifter := New()
	t.Cleanup(lifter.Close)

	file, err := lifter.Lift("test.cpp", []byte(code))
	require.NoError(t, err)
	return file
}

// unhandledNodes collects every Unhandled node in the tree. A clean
// lift of well-formed input leaves none.
func unhandledNodes(file *ast.Node) []string {
	var sexps []string
	file.Walk(func(n *ast.Node) bool {
		if u, ok := n.Kind.(ast.Unhandled); ok {
			sexps = append(sexps, u.Sexp)
		}
		return true
	})
	return sexps
}

func TestTraverseIfdefs(t *testing.T) {
	code := `
#ifndef AbstractMyClass_h_INCLUDED
#define AbstractMyClass_h_INCLUDED

class AbstractMyClass {
public:
    virtual ~AbstractMyClass() = default;
    virtual void foo() = 0;
};

#endif // AbstractMyClass_h_INCLUDED
`
	file := lift(t, code)
	assert.Empty(t, unhandledNodes(file))

	class := file.FindChild("AbstractMyClass")
	require.NotNil(t, class)
	assert.Equal(t, ast.Class{IsAbstract: true}, class.Kind)
}

func TestTraverseNamespaces(t *testing.T) {
	code := `
namespace mynamespace {

class AbstractMyClass {
public:
    virtual ~AbstractMyClass() = default;
    virtual void foo() = 0;
};

}
`
	file := lift(t, code)
	assert.Empty(t, unhandledNodes(file))
	assert.NotNil(t, file.FindChild("AbstractMyClass"))
}

func TestTraverseTemplates(t *testing.T) {
	code := `
template <typename T>
class AbstractMyClass {
public:
    virtual ~AbstractMyClass() = default;
    virtual T foo() = 0;
};
`
	file := lift(t, code)
	assert.Empty(t, unhandledNodes(file))

	class := file.FindChild("AbstractMyClass")
	require.NotNil(t, class)
	assert.Equal(t, ast.Class{IsAbstract: true}, class.Kind)
}

func TestParseGlobalFunctions(t *testing.T) {
	code := `
int global_function(int param1, float param2);
`
	file := lift(t, code)
	assert.Empty(t, unhandledNodes(file))

	fn := file.FindChild("global_function")
	require.NotNil(t, fn)
	kind, ok := fn.Kind.(ast.Function)
	require.True(t, ok)
	assert.Empty(t, kind.ExternalNamespace)

	// parameters become resolvable locals
	assert.NotNil(t, fn.FindChild("param1"))
	assert.NotNil(t, fn.FindChild("param2"))
}

func TestParseFunctionDefinitions(t *testing.T) {
	code := `
int global_function(int param1) {
  if (true || true != false && ~1 == 2) {
    return 42 * 1;
  } else {
    return 42 | 0xff << -(1 >> 8);
  }

  // comments should be ignored
  for (int i=0; i<42; i++) {
    2+40;
  }

  return 42;
}
`
	file := lift(t, code)
	assert.Empty(t, unhandledNodes(file))
	assert.NotNil(t, file.FindChild("global_function"))
}

func TestParseMethodDefinitions(t *testing.T) {
	code := `
int myClass::method() {
  return 42;
}
`
	file := lift(t, code)
	assert.Empty(t, unhandledNodes(file))

	fn := file.FindChild("method")
	require.NotNil(t, fn)
	kind, ok := fn.Kind.(ast.Function)
	require.True(t, ok)
	assert.Equal(t, "myClass", kind.ExternalNamespace)
}

func TestParseGlobalEnums(t *testing.T) {
	code := `
enum class my_enum {
  variant_0,
  variant_1 = 1000,
};
`
	file := lift(t, code)
	assert.Empty(t, unhandledNodes(file))

	enum := file.FindChild("my_enum")
	require.NotNil(t, enum)
	assert.Equal(t, ast.Type{}, enum.Kind)

	var names []string
	for _, child := range enum.Children {
		names = append(names, child.Name)
	}
	assert.Equal(t, []string{
		"variant_0", "my_enum::variant_0",
		"variant_1", "my_enum::variant_1",
	}, names)

	for _, child := range enum.Children {
		assert.Equal(t, ast.Variable{IsConst: true, Visibility: ast.Public}, child.Kind)
	}
}

func TestParseGlobalStructs(t *testing.T) {
	code := `
struct my_struct {
  int x=42;
};

typedef struct my_struct2 {
  int x=42;
} my_struct2;
`
	file := lift(t, code)
	assert.Empty(t, unhandledNodes(file))
	assert.NotNil(t, file.FindChild("my_struct"))
	assert.NotNil(t, file.FindChild("my_struct2"))
}

func TestParsePreprocArgs(t *testing.T) {
	code := `
#define PREPROC_PARAM 20;

#if defined(PROPROC_CONDITION)
#define PREPROC_PARAM2 42;
#elif defined(ELSE_PREPROC_CONDITION)
#define PREPROC_PARAM2 0;
#else
#define PREPROC_PARAM2 1;
#endif

#ifdef PROPROC_CONDITION2
#define PREPROC_PARAM3 42;
#endif
`
	file := lift(t, code)
	assert.Empty(t, unhandledNodes(file))
}

func TestParseAliasDeclarations(t *testing.T) {
	code := `
using my_alias = MyClass::my_inner_enum;
`
	file := lift(t, code)
	assert.Empty(t, unhandledNodes(file))

	alias := file.FindChild("my_alias")
	require.NotNil(t, alias)
	assert.Equal(t, ast.Type{}, alias.Kind)
}

func TestIncludesBecomeFileDependencies(t *testing.T) {
	code := `
#include "MyHeader.h"
#include <vector>

class AbstractThing {
public:
    virtual ~AbstractThing() = default;
};
`
	file := lift(t, code)
	require.Len(t, file.Dependencies, 2)
	assert.Equal(t, `"MyHeader.h"`, file.Dependencies[0].Name)
	assert.Equal(t, "<vector>", file.Dependencies[1].Name)
	for _, dep := range file.Dependencies {
		assert.Equal(t, ast.Reference{Kind: ast.RefDepend}, dep.Kind)
	}
}

func TestFileNodeOwnsContentAndRange(t *testing.T) {
	code := "class AbstractA {\npublic:\n  virtual ~AbstractA() = default;\n};\n"
	file := lift(t, code)

	content, ok := file.FileContent()
	require.True(t, ok)
	assert.Equal(t, code, content)
	assert.Equal(t, ast.Range{Start: 0, End: uint32(len(code))}, file.Range)

	file.Walk(func(n *ast.Node) bool {
		assert.True(t, file.Range.Contains(n.Range), "node %q range outside file", n.Name)
		return true
	})
}

func TestBaseClassesBecomeDependencies(t *testing.T) {
	code := `
class Derived: public AbstractBase {
public:
    void foo();
};
`
	file := lift(t, code)
	class := file.FindChild("Derived")
	require.NotNil(t, class)
	require.Len(t, class.Dependencies, 1)
	assert.Equal(t, "AbstractBase", class.Dependencies[0].Name)
	assert.Equal(t, ast.Reference{Kind: ast.RefDepend}, class.Dependencies[0].Kind)
}

func TestLintMarksAttachToNextClass(t *testing.T) {
	code := `
// lint: ignore E_MOD_01 public registers needed by ISR
class MyClass: public AbstractMyInterface {
public:
    int reg = 0;
};
`
	file := lift(t, code)
	class := file.FindChild("MyClass")
	require.NotNil(t, class)
	require.Len(t, class.Instructions, 1)
	assert.Equal(t, "E_MOD_01", class.Instructions[0].Ident)
	assert.Equal(t, "public registers needed by ISR", class.Instructions[0].Reason)
}

func TestMultipleLintMarksInOneComment(t *testing.T) {
	code := `
/*
 lint: ignore E_MOD_01 first reason
 lint: ignore E_MOD_02 second reason
*/
class MyClass: public AbstractMyInterface {
private:
    int x = 0;
};
`
	file := lift(t, code)
	class := file.FindChild("MyClass")
	require.NotNil(t, class)
	require.Len(t, class.Instructions, 2)
	assert.Equal(t, "E_MOD_01", class.Instructions[0].Ident)
	assert.Equal(t, "E_MOD_02", class.Instructions[1].Ident)
}

func TestMethodBodiesYieldReferences(t *testing.T) {
	code := `
int my_global = 0;

class Derived: public AbstractInterface {
  Derived() {}
  void foo() { my_global = 42; }
};
`
	file := lift(t, code)
	class := file.FindChild("Derived")
	require.NotNil(t, class)

	foo := class.FindChild("foo")
	require.NotNil(t, foo)

	var refs []ast.Reference
	var names []string
	for _, child := range foo.Children {
		if ref, ok := child.Kind.(ast.Reference); ok {
			refs = append(refs, ref)
			names = append(names, child.Name)
		}
	}
	assert.Equal(t, []string{"my_global"}, names)
	assert.Equal(t, []ast.Reference{{Kind: ast.RefWrite}}, refs)
}

func TestCallAndFieldAccessReferences(t *testing.T) {
	code := `
void helper();

void run() {
  helper();
  obj.field = 1;
}
`
	file := lift(t, code)
	run := file.FindChild("run")
	require.NotNil(t, run)

	kinds := map[string]ast.RefKind{}
	for _, child := range run.Children {
		if ref, ok := child.Kind.(ast.Reference); ok {
			kinds[child.Name] = ref.Kind
		}
	}
	assert.Equal(t, ast.RefCall, kinds["helper"])
	// the field identifier right of the accessor is not emitted; the
	// object itself is
	_, hasField := kinds["field"]
	assert.False(t, hasField)
}

func TestUnrecognizedTopLevelBecomesUnhandled(t *testing.T) {
	// a stray attribute declaration is not part of the dialect
	code := "[[nodiscard]];\n"
	file := lift(t, code)
	assert.NotEmpty(t, unhandledNodes(file))
}
