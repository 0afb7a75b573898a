package rules

import "github.com/kober-systems/guidelines/pkg/ast"

// FilterReferences removes the references that lexical scope resolution
// proves benign: reads and writes of locals, parameters, attributes of
// the enclosing class and global constants. What remains are the
// references worth showing, rule violations and real cross-entity
// dependencies, which is exactly what the graph builder wants to see.
func FilterReferences(files []*ast.Node, idx *Index) {
	for _, file := range files {
		for _, child := range file.Children {
			switch child.Kind.(type) {
			case ast.Class:
				for _, member := range child.Children {
					if _, ok := member.Kind.(ast.Function); ok {
						filterFunction(member, child.Name, idx)
					}
				}
			case ast.Function:
				filterFunction(child, "", idx)
			}
		}
	}
}

func filterFunction(fn *ast.Node, className string, idx *Index) {
	kept := make([]*ast.Node, 0, len(fn.Children))
	for _, child := range fn.Children {
		ref, ok := child.Kind.(ast.Reference)
		if !ok {
			kept = append(kept, child)
			continue
		}

		switch ref.Kind {
		case ast.RefRead, ast.RefWrite:
			var inScope bool
			if className != "" {
				inScope = idx.ClassScope(fn, className, child.Name)
			} else {
				inScope = idx.InScope(fn, child.Name)
			}
			if !inScope {
				kept = append(kept, child)
			}
		case ast.RefCall, ast.RefTypeRead, ast.RefDepend:
			kept = append(kept, child)
		}
	}
	fn.Children = kept
}
