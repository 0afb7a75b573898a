// Package fix rewrites source files to resolve a subset of diagnostics.
// The engine is pure: it takes a file set and returns a new one, never
// touching the input. Splice points are located by re-parsing through
// the CST adapter so byte offsets stay exact.
package fix

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kober-systems/guidelines/pkg/ast"
	"github.com/kober-systems/guidelines/pkg/semantic"
	"github.com/kober-systems/guidelines/pkg/source"
)

// ErrClassNotFound is returned when the class a fix targets does not
// exist in the named file.
var ErrClassNotFound = errors.New("class not found")

// Instruction is one fix operation.
type Instruction interface {
	isInstruction()
}

// CreateAbstractClass synthesizes an abstract interface for the named
// class and rewrites the class to derive from it. It resolves a
// DeriveFromAbstractInterface diagnostic.
type CreateAbstractClass struct {
	ClassName string
}

func (CreateAbstractClass) isInstruction() {}

// Fix pairs an instruction with the diagnostic that motivated it.
type Fix struct {
	Instruction Instruction
	Cause       *ast.Diagnostic
}

// Apply runs the fixes against a file set and returns the updated set.
// Fixes are applied in order, each against a freshly lifted tree,
// because earlier fixes shift byte offsets.
func Apply(fixes []Fix, files source.FileSet) (source.FileSet, error) {
	out := files.Clone()

	lifter := semantic.New()
	defer lifter.Close()

	for _, f := range fixes {
		switch instruction := f.Instruction.(type) {
		case CreateAbstractClass:
			if err := createAbstractClass(lifter, out, f.Cause.Path, instruction.ClassName); err != nil {
				return nil, err
			}
		default:
			return nil, fmt.Errorf("unsupported fix instruction %T", instruction)
		}
	}

	return out, nil
}

func createAbstractClass(lifter *semantic.Lifter, files source.FileSet, path, className string) error {
	content, ok := files[path]
	if !ok {
		return fmt.Errorf("%s not found in file set", path)
	}

	file, err := lifter.Lift(path, []byte(content))
	if err != nil {
		return err
	}

	class := findClass(file, className)
	if class == nil {
		return fmt.Errorf("%w: '%s' in %s", ErrClassNotFound, className, path)
	}

	interfacePath := strings.ReplaceAll(path, className, ast.AbstractPrefix+className)
	if interfacePath == path {
		// the class name is not part of the path; place the interface
		// header next to the original file
		interfacePath = filepath.Join(filepath.Dir(path), ast.AbstractPrefix+className+".h")
	}
	files[interfacePath] = interfaceSource(class, className, content)

	rewritten, err := deriveFromInterface(class, className, content)
	if err != nil {
		return err
	}
	files[path] = rewritten
	return nil
}

func findClass(file *ast.Node, name string) *ast.Node {
	for _, child := range file.Children {
		if _, ok := child.Kind.(ast.Class); ok && child.Name == name {
			return child
		}
	}
	return nil
}

// interfaceSource synthesizes the abstract interface: a virtual default
// destructor plus one pure-virtual declaration per public method of the
// class, the constructor excepted. Signatures are the original source
// slices with the trailing semicolon stripped.
func interfaceSource(class *ast.Node, className, content string) string {
	var out strings.Builder
	out.WriteString("\nclass " + ast.AbstractPrefix + className + " {\npublic:\n")
	out.WriteString(fmt.Sprintf("  virtual ~%s%s() = default;\n\n", ast.AbstractPrefix, className))

	for _, child := range class.Children {
		fn, ok := child.Kind.(ast.Function)
		if !ok {
			continue
		}
		if fn.Visibility != ast.Public || child.Name == className {
			continue
		}

		sig := slice(content, child.Range)
		if idx := strings.LastIndex(sig, ";"); idx >= 0 {
			sig = sig[:idx]
		}
		out.WriteString(fmt.Sprintf("  virtual %s = 0;\n", sig))
	}

	result := out.String()
	if !strings.HasSuffix(result, "\n") {
		result += "\n"
	}
	return result + "}\n"
}

func slice(content string, rng ast.Range) string {
	start, end := int(rng.Start), int(rng.End)
	if start > end || end > len(content) {
		return ""
	}
	return content[start:end]
}
