package c

import (
	"github.com/dhamidi/hdoc/c/doxygen"
	"github.com/dhamidi/hdoc/diag"
)

// resolveGroups materializes a group for every id named by @ingroup,
// in first-seen order, then for every @defgroup never referenced, in
// definition order. Tagged entities keep their place in the tree and
// are shared as group members.
func resolveGroups(tree *Tree, models []*fileModel, report *diag.Report) ([]Entity, error) {
	defs := make(map[string]groupDef)
	var order []string
	for _, fm := range models {
		for _, def := range fm.groups {
			if first, ok := defs[def.id]; ok {
				report.Addf(diag.CodeDuplicateDefgroup, def.location.File, def.location.Line, def.location.Column,
					"group %s already defined at %s", def.id, first.location)
				continue
			}
			defs[def.id] = def
			order = append(order, def.id)
		}
	}

	groups := make(map[string]*Compound)
	var result []Entity
	materialize := func(id string, at Location) *Compound {
		if g, ok := groups[id]; ok {
			return g
		}
		g := &Compound{
			Object: Object{
				ID:            IDFor(id),
				Name:          id,
				QualifiedName: id,
				Description:   &doxygen.Description{},
				Location:      at,
			},
			Type:  CompoundGroup,
			Title: id,
		}
		if def, ok := defs[id]; ok {
			g.Title = def.title
			g.Description = def.description
			g.Location = def.location
		}
		groups[id] = g
		result = append(result, g)
		return g
	}

	for _, e := range tree.All() {
		obj := e.Base()
		tags := obj.Description.Groups
		if len(tags) == 0 {
			continue
		}
		if len(tags) > 1 {
			report.Addf(diag.CodeMultipleIngroup, obj.Location.File, obj.Location.Line, obj.Location.Column,
				"%s is tagged for %d groups, only %s is used", obj.QualifiedName, len(tags), tags[0])
		}
		g := materialize(tags[0], obj.Location)
		obj.Group = g.ID
		g.Members = append(g.Members, e)
	}
	for _, id := range order {
		if _, ok := groups[id]; !ok {
			materialize(id, defs[id].location)
		}
	}

	for _, g := range result {
		if err := tree.register(g); err != nil {
			return nil, err
		}
	}
	return result, nil
}
