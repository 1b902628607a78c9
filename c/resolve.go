package c

import (
	"github.com/dhamidi/hdoc/c/doxygen"
	"github.com/dhamidi/hdoc/diag"
)

// resolveReferences links every @ref and @p to its target. A @p naming
// a parameter of its own function or macro needs no target. Names that
// resolve nowhere degrade to plain text and are reported.
func resolveReferences(tree *Tree, report *diag.Report) {
	for _, e := range tree.All() {
		obj := e.Base()
		params := parameterNames(e)
		unresolved := false

		for _, ref := range obj.Description.Refs() {
			if ref.Kind == doxygen.RefParam && params[ref.Name] {
				ref.Parameter = true
				continue
			}
			target, ok := tree.resolve(ref.Name, e)
			if !ok {
				unresolved = true
				report.Addf(diag.CodeUnresolvedRef, obj.Location.File, obj.Location.Line, obj.Location.Column,
					"unresolved reference %q in the documentation of %s", ref.Name, obj.QualifiedName)
				continue
			}
			ref.Target = target.Base().ID
		}

		if unresolved {
			obj.Description.MapInlines(func(in doxygen.Inline) doxygen.Inline {
				if ref, ok := in.(*doxygen.Ref); ok && !ref.Resolved() && !ref.Parameter {
					return doxygen.Text{Content: ref.Name}
				}
				return in
			})
		}
	}
}

// resolve looks name up from the scope of the entity whose
// documentation mentions it: the entity's own members first, then each
// enclosing scope, then the global scope and typedef names.
func (t *Tree) resolve(name string, from Entity) (Entity, bool) {
	obj := from.Base()
	var candidates []string
	if compound, ok := from.(*Compound); ok && !compound.IsGroup() {
		candidates = append(candidates, obj.QualifiedName)
	}
	candidates = append(candidates, scopes(obj.QualifiedName)...)
	for _, scope := range candidates {
		if e, ok := t.index[IDFor(qualify(scope, name))]; ok {
			return e, true
		}
	}
	return t.Find(name)
}

func parameterNames(e Entity) map[string]bool {
	names := make(map[string]bool)
	switch v := e.(type) {
	case *Function:
		for _, p := range v.Parameters {
			if p.Name != "" {
				names[p.Name] = true
			}
		}
	case *Define:
		for _, p := range v.Parameters {
			names[p] = true
		}
	}
	return names
}
