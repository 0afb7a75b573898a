package rules

import (
	"strings"

	"github.com/emirpasic/gods/sets/hashset"

	"github.com/kober-systems/guidelines/pkg/ast"
)

// Index is the cross-file scope view used to resolve references: the
// set of global constants and, per class, the set of member attribute
// names. It is built once over all lifted files and read-only afterwards.
type Index struct {
	Constants  *hashset.Set
	Namespaces map[string]*hashset.Set
}

// BuildIndex folds the per-file trees into a scope index. The fold is
// pure, so files may arrive in any order.
func BuildIndex(files []*ast.Node) *Index {
	idx := &Index{
		Constants:  hashset.New(),
		Namespaces: make(map[string]*hashset.Set),
	}
	for _, file := range files {
		idx.addFile(file)
	}
	return idx
}

func (idx *Index) addFile(file *ast.Node) {
	for _, child := range file.Children {
		switch kind := child.Kind.(type) {
		case ast.Variable:
			if kind.IsConst {
				idx.Constants.Add(strings.TrimSpace(child.Name))
			}
		case ast.Type:
			// enums synthesize constant variants one level down
			for _, variant := range child.Children {
				if v, ok := variant.Kind.(ast.Variable); ok && v.IsConst {
					idx.Constants.Add(strings.TrimSpace(variant.Name))
				}
			}
		case ast.Class:
			idx.addClass(child)
		}
	}
}

func (idx *Index) addClass(class *ast.Node) {
	members, ok := idx.Namespaces[class.Name]
	if !ok {
		members = hashset.New()
		idx.Namespaces[class.Name] = members
	}

	for _, child := range class.Children {
		switch child.Kind.(type) {
		case ast.Variable:
			members.Add(strings.TrimSpace(child.Name))
		case ast.Type:
			for _, variant := range child.Children {
				if v, ok := variant.Kind.(ast.Variable); ok && v.IsConst {
					members.Add(strings.TrimSpace(variant.Name))
				}
			}
		}
	}
}

// InScope resolves a reference name inside the given function. Local
// variables and parameters are always in scope; a function defined
// out-of-class as C::fn additionally sees the attributes of C; global
// constants are visible everywhere.
func (idx *Index) InScope(fn *ast.Node, name string) bool {
	for _, child := range fn.Children {
		if _, ok := child.Kind.(ast.Variable); ok && child.Name == name {
			return true
		}
	}

	if f, ok := fn.Kind.(ast.Function); ok && f.ExternalNamespace != "" {
		if members, ok := idx.Namespaces[f.ExternalNamespace]; ok && members.Contains(name) {
			return true
		}
	}

	return idx.Constants.Contains(name)
}

// ClassScope resolves a reference inside a method declared within the
// class body: the class's own attributes plus global constants.
func (idx *Index) ClassScope(fn *ast.Node, className, name string) bool {
	if idx.InScope(fn, name) {
		return true
	}
	if members, ok := idx.Namespaces[className]; ok {
		return members.Contains(name)
	}
	return false
}
