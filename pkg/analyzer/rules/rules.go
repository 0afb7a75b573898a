// Package rules evaluates the structural guideline rules against lifted
// semantic trees. The engine runs in two modes sharing one walker:
// collecting a flat diagnostic list, or annotating the tree with
// LintError children for the graph builder.
package rules

import (
	"strings"

	"github.com/kober-systems/guidelines/pkg/ast"
)

// SuppressAttrsIdent is the lint-ignore identifier recognized for the
// derived-class attribute rule.
const SuppressAttrsIdent = "E_MOD_01"

// sink receives diagnostics together with the node they belong to.
type sink interface {
	emit(at *ast.Node, d *ast.Diagnostic)
}

// collectSink flattens diagnostics into a list in emission order.
type collectSink struct {
	diags []*ast.Diagnostic
}

func (s *collectSink) emit(_ *ast.Node, d *ast.Diagnostic) {
	s.diags = append(s.diags, d)
}

// annotateSink inserts LintError children at the offending node.
type annotateSink struct{}

func (annotateSink) emit(at *ast.Node, d *ast.Diagnostic) {
	at.Children = append(at.Children, &ast.Node{
		Kind:  ast.LintError{Err: d},
		Range: d.Range,
	})
}

// fileCtx carries the owning file's identity through a check run.
// hasEntry suppresses both global-variable rules: a file that declares
// an entry point is a program, not a library, and owns its globals.
type fileCtx struct {
	path     string
	content  string
	hasEntry bool
}

// Check walks the files and returns all diagnostics in source order.
func Check(files []*ast.Node, idx *Index) []*ast.Diagnostic {
	s := &collectSink{}
	for _, file := range files {
		checkFile(file, idx, s, true)
	}
	return s.diags
}

// CheckFile checks a single file against an index.
func CheckFile(file *ast.Node, idx *Index) []*ast.Diagnostic {
	s := &collectSink{}
	checkFile(file, idx, s, true)
	return s.diags
}

// Annotate inserts LintError children into freshly lifted trees. The
// annotated form is the input to the graph builder. Trees that already
// carry annotations must not be annotated again.
func Annotate(files []*ast.Node, idx *Index) {
	for _, file := range files {
		checkFile(file, idx, annotateSink{}, false)
	}
}

// checkFile drives both modes. surfaceExisting controls whether
// LintError children already present from lifting (derive qualifiers,
// malformed lint instructions) are re-emitted; the annotate mode leaves
// them in place instead.
func checkFile(file *ast.Node, idx *Index, s sink, surfaceExisting bool) {
	content, _ := file.FileContent()
	ctx := fileCtx{path: file.Name, content: content, hasEntry: hasEntryPoint(file)}

	for _, child := range file.Children {
		switch kind := child.Kind.(type) {
		case ast.Class:
			checkClass(ctx, child, kind, idx, s, surfaceExisting)
		case ast.Function:
			checkFunctionReferences(ctx, child, "", idx, s)
		case ast.Variable:
			if !kind.IsConst && !ctx.hasEntry {
				s.emit(child, &ast.Diagnostic{
					Kind:   ast.GlobalVariablesDeclaration,
					Detail: child.Name,
					Range:  child.Range,
					Path:   ctx.path,
				})
			}
		case ast.Unhandled:
			s.emit(child, &ast.Diagnostic{
				Kind:   ast.ParserUnhandled,
				Detail: kind.Sexp,
				Range:  child.Range,
				Path:   ctx.path,
			})
		case ast.LintError:
			if surfaceExisting {
				kind.Err.Path = ctx.path
				s.emit(child, kind.Err)
			}
		}
	}
}

// hasEntryPoint reports whether the file declares a main entry point: a
// top-level function named main, or both setup and loop.
func hasEntryPoint(file *ast.Node) bool {
	hasSetup, hasLoop := false, false
	for _, child := range file.Children {
		if _, ok := child.Kind.(ast.Function); !ok {
			continue
		}
		switch child.Name {
		case "main":
			return true
		case "setup":
			hasSetup = true
		case "loop":
			hasLoop = true
		}
	}
	return hasSetup && hasLoop
}

func checkClass(ctx fileCtx, class *ast.Node, kind ast.Class, idx *Index, s sink, surfaceExisting bool) {
	if kind.IsAbstract {
		checkAbstractClass(ctx, class, idx, s, surfaceExisting)
	} else {
		checkDerivedClass(ctx, class, idx, s, surfaceExisting)
		if len(class.Dependencies) == 0 {
			s.emit(class, &ast.Diagnostic{
				Kind:  ast.DeriveFromAbstractInterface,
				Class: class.Name,
				Range: class.Range,
				Path:  ctx.path,
			})
		}
	}

	for _, dep := range class.Dependencies {
		if !ast.IsAbstractName(dep.Name) {
			s.emit(class, &ast.Diagnostic{
				Kind:  ast.DerivesAlwaysFromAbstractInterfaces,
				Class: class.Name,
				Range: dep.Range,
				Path:  ctx.path,
			})
		}
	}
}

func checkAbstractClass(ctx fileCtx, class *ast.Node, idx *Index, s sink, surfaceExisting bool) {
	hasDestructor := false

	for _, child := range class.Children {
		switch kind := child.Kind.(type) {
		case ast.Variable:
			if kind.Visibility != ast.Public {
				s.emit(class, &ast.Diagnostic{
					Kind:   ast.InterfaceOnlyPublicMethods,
					Class:  class.Name,
					Detail: string(kind.Visibility),
					Range:  child.Range,
					Path:   ctx.path,
				})
			}
			if !kind.IsConst {
				s.emit(class, &ast.Diagnostic{
					Kind:   ast.InterfaceShouldNotDefineAttrs,
					Class:  class.Name,
					Detail: child.Name,
					Range:  child.Range,
					Path:   ctx.path,
				})
			}
		case ast.Function:
			checkAbstractMethod(ctx, class, child, kind, s)
			if kind.IsVirtual && child.Name == "~"+class.Name {
				hasDestructor = true
			}
			checkFunctionReferences(ctx, child, class.Name, idx, s)
		case ast.Unhandled:
			s.emit(child, &ast.Diagnostic{
				Kind:   ast.ParserUnhandled,
				Detail: kind.Sexp,
				Range:  child.Range,
				Path:   ctx.path,
			})
		case ast.LintError:
			if surfaceExisting {
				kind.Err.Path = ctx.path
				s.emit(child, kind.Err)
			}
		}
	}

	if !hasDestructor {
		s.emit(class, &ast.Diagnostic{
			Kind:  ast.AbstractClassMissingDefaultDestructor,
			Class: class.Name,
			Range: class.Range,
			Path:  ctx.path,
		})
	}
}

// checkAbstractMethod enforces the interface rules on one member: no
// init methods, and every non-pure-virtual declaration is flagged for
// the missing `virtual` prefix and the missing `= 0;` tail. The checks
// are deliberately textual, the dialect's pure-virtual marker is syntax.
func checkAbstractMethod(ctx fileCtx, class, method *ast.Node, kind ast.Function, s sink) {
	prohibitInitFunction(ctx, class, method, s)

	if kind.IsVirtual {
		return
	}

	slice := ctx.slice(method.Range, method.Name)
	if !strings.HasPrefix(slice, "virtual") {
		s.emit(class, &ast.Diagnostic{
			Kind:   ast.AbstractClassMethodNotVirtual,
			Class:  class.Name,
			Detail: slice,
			Range:  method.Range,
			Path:   ctx.path,
		})
	}
	if !strings.HasSuffix(strings.ReplaceAll(slice, " ", ""), "=0;") {
		s.emit(class, &ast.Diagnostic{
			Kind:   ast.AbstractClassMethodMissingVirtualEnding,
			Class:  class.Name,
			Detail: slice,
			Range:  method.Range,
			Path:   ctx.path,
		})
	}
}

func checkDerivedClass(ctx fileCtx, class *ast.Node, idx *Index, s sink, surfaceExisting bool) {
	suppressAttrs := class.HasMark(SuppressAttrsIdent)

	for _, child := range class.Children {
		switch kind := child.Kind.(type) {
		case ast.Variable:
			if kind.Visibility != ast.Private && !suppressAttrs {
				s.emit(class, &ast.Diagnostic{
					Kind:   ast.DerivedClassesAllAttrsPrivate,
					Class:  class.Name,
					Detail: child.Name,
					Range:  child.Range,
					Path:   ctx.path,
				})
			}
		case ast.Function:
			checkDerivedMethod(ctx, class, child, kind, s)
			checkFunctionReferences(ctx, child, class.Name, idx, s)
		case ast.Unhandled:
			s.emit(child, &ast.Diagnostic{
				Kind:   ast.ParserUnhandled,
				Detail: kind.Sexp,
				Range:  child.Range,
				Path:   ctx.path,
			})
		case ast.LintError:
			if surfaceExisting {
				kind.Err.Path = ctx.path
				s.emit(child, kind.Err)
			}
		}
	}
}

// checkDerivedMethod flags virtual declarations in concrete classes:
// only interfaces declare virtual methods in this dialect.
func checkDerivedMethod(ctx fileCtx, class, method *ast.Node, kind ast.Function, s sink) {
	if !kind.IsVirtual {
		slice := ctx.slice(method.Range, method.Name)
		if strings.HasPrefix(slice, "virtual") {
			s.emit(class, &ast.Diagnostic{
				Kind:   ast.DerivedClassMethodIsVirtual,
				Class:  class.Name,
				Detail: slice,
				Range:  method.Range,
				Path:   ctx.path,
			})
		}
		if strings.HasSuffix(strings.ReplaceAll(slice, " ", ""), "=0;") {
			s.emit(class, &ast.Diagnostic{
				Kind:   ast.DerivedClassMethodHasVirtualEnding,
				Class:  class.Name,
				Detail: slice,
				Range:  method.Range,
				Path:   ctx.path,
			})
		}
	}

	prohibitInitFunction(ctx, class, method, s)
}

func prohibitInitFunction(ctx fileCtx, class, method *ast.Node, s sink) {
	if strings.Contains(method.Name, "init") {
		s.emit(class, &ast.Diagnostic{
			Kind:  ast.AvoidInitMethods,
			Class: class.Name,
			Range: method.Range,
			Path:  ctx.path,
		})
	}
}

// checkFunctionReferences applies the global-variable usage rule to the
// read and write references of one function. className is non-empty for
// methods declared inside a class body. Calls, type reads and depends
// never trigger this rule.
func checkFunctionReferences(ctx fileCtx, fn *ast.Node, className string, idx *Index, s sink) {
	if ctx.hasEntry {
		return
	}
	for _, child := range fn.Children {
		ref, ok := child.Kind.(ast.Reference)
		if !ok {
			continue
		}
		if ref.Kind != ast.RefRead && ref.Kind != ast.RefWrite {
			continue
		}

		var inScope bool
		if className != "" {
			inScope = idx.ClassScope(fn, className, child.Name)
		} else {
			inScope = idx.InScope(fn, child.Name)
		}
		if !inScope {
			s.emit(child, &ast.Diagnostic{
				Kind:   ast.GlobalVariablesUsage,
				Detail: child.Name,
				Range:  child.Range,
				Path:   ctx.path,
			})
		}
	}
}

// slice returns the raw source text for a range, falling back to the
// given name when the owning file's content is unavailable.
func (ctx fileCtx) slice(rng ast.Range, fallback string) string {
	start, end := int(rng.Start), int(rng.End)
	if ctx.content == "" || start > end || end > len(ctx.content) {
		return fallback
	}
	return ctx.content[start:end]
}
