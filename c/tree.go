package c

import (
	"github.com/dhamidi/hdoc/diag"
)

// Tree is the finished documentation model. It is never mutated after
// Build returns and may be shared between goroutines.
type Tree struct {
	// entities are the top-level entities: ordinary declarations in
	// file order, then groups.
	entities []Entity
	index    map[string]Entity
	// ids lists index keys in registration order.
	ids     []string
	aliases map[string]string
}

func newTree() *Tree {
	return &Tree{
		index:   make(map[string]Entity),
		aliases: make(map[string]string),
	}
}

// register adds e and everything it owns to the index.
func (t *Tree) register(e Entity) error {
	obj := e.Base()
	if prev, ok := t.index[obj.ID]; ok {
		err := diag.Errorf(diag.KindDuplicateID, "duplicate id %q: %s at %s conflicts with %s at %s",
			obj.ID, obj.QualifiedName, obj.Location, prev.Base().QualifiedName, prev.Base().Location)
		err = diag.Attr(err, "id", obj.ID)
		err = diag.Attr(err, "file", obj.Location.File)
		return diag.Attr(err, "line", obj.Location.Line)
	}
	t.index[obj.ID] = e
	t.ids = append(t.ids, obj.ID)

	switch v := e.(type) {
	case *Enum:
		for _, value := range v.Values {
			if err := t.register(value); err != nil {
				return err
			}
		}
	case *Compound:
		if v.IsGroup() {
			return nil
		}
		for _, member := range v.Members {
			if err := t.register(member); err != nil {
				return err
			}
		}
	}
	return nil
}

// Entities returns the top-level entities in output order.
func (t *Tree) Entities() []Entity {
	return t.entities
}

// Len is the number of indexed entities, members included.
func (t *Tree) Len() int {
	return len(t.ids)
}

// Lookup returns the entity with the given unique id.
func (t *Tree) Lookup(id string) (Entity, bool) {
	e, ok := t.index[id]
	return e, ok
}

// Find returns the entity a C name refers to: a qualified name such as
// s1::x, or a typedef name standing for a tagged declaration.
func (t *Tree) Find(name string) (Entity, bool) {
	if e, ok := t.index[IDFor(name)]; ok {
		return e, true
	}
	if target, ok := t.aliases[name]; ok {
		return t.Lookup(IDFor(target))
	}
	return nil, false
}

// All returns every indexed entity in registration order: declarations
// and their members in file order, then groups.
func (t *Tree) All() []Entity {
	all := make([]Entity, len(t.ids))
	for i, id := range t.ids {
		all[i] = t.index[id]
	}
	return all
}

// WalkFunc is called for each entity with its nesting depth. Returning
// false skips the entity's members.
type WalkFunc func(e Entity, depth int) bool

// Walk visits the tree depth-first in output order. Members of a
// group are visited both at the top level and under the group.
func (t *Tree) Walk(fn WalkFunc) {
	for _, e := range t.entities {
		walk(e, 0, fn)
	}
}

func walk(e Entity, depth int, fn WalkFunc) {
	if !fn(e, depth) {
		return
	}
	for _, member := range Members(e) {
		walk(member, depth+1, fn)
	}
}

// Members returns the ordered members of an entity: the values of an
// enum, the fields of a struct or union, the members of a group.
func Members(e Entity) []Entity {
	switch v := e.(type) {
	case *Enum:
		members := make([]Entity, len(v.Values))
		for i, value := range v.Values {
			members[i] = value
		}
		return members
	case *Compound:
		return v.Members
	}
	return nil
}

// Title is the display name of an entity.
func Title(e Entity) string {
	switch v := e.(type) {
	case *Compound:
		if v.IsGroup() {
			return v.Title
		}
		return string(v.Type) + " " + v.Name
	case *Enum:
		return "enum " + v.Name
	case *Function:
		return v.Name + "()"
	}
	return e.Base().Name
}
