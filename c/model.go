// Package c builds the documentation model of a set of C headers:
// declarations and their parsed comments become an immutable tree of
// entities with stable ids, group membership and resolved
// cross-references.
package c

import (
	"fmt"

	"github.com/dhamidi/hdoc/c/doxygen"
)

type Kind string

const (
	KindFunction  Kind = "function"
	KindEnum      Kind = "enum"
	KindEnumValue Kind = "enumvalue"
	KindDefine    Kind = "define"
	KindVariable  Kind = "variable"
	KindCompound  Kind = "compound"
)

type CompoundType string

const (
	CompoundStruct CompoundType = "struct"
	CompoundUnion  CompoundType = "union"
	CompoundGroup  CompoundType = "group"
)

// Location is where an entity is declared. Line and Column are 1-based.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Object carries the fields shared by every entity.
type Object struct {
	ID            string
	Name          string
	QualifiedName string
	// Description is never nil; undocumented entities carry an empty one.
	Description *doxygen.Description
	Location    Location
	// Group is the id of the group the entity belongs to, if any.
	Group string
}

func (o *Object) Base() *Object { return o }

// Entity is implemented by every node of the documentation tree.
type Entity interface {
	Kind() Kind
	Base() *Object
	entity()
}

type Parameter struct {
	Name string
	Type string
}

type Function struct {
	Object
	ReturnType string
	Parameters []Parameter
}

func (*Function) Kind() Kind { return KindFunction }
func (*Function) entity()    {}

type Enum struct {
	Object
	// Alias is the typedef name of a tagged enum, when it differs.
	Alias  string
	Values []*EnumValue
}

func (*Enum) Kind() Kind { return KindEnum }
func (*Enum) entity()    {}

type EnumValue struct {
	Object
	Initializer string
}

func (*EnumValue) Kind() Kind { return KindEnumValue }
func (*EnumValue) entity()    {}

// Define is a preprocessor macro. Parameters is nil for object-like
// macros and non-nil, possibly empty, for function-like ones.
type Define struct {
	Object
	Parameters []string
	Value      string
}

func (*Define) Kind() Kind { return KindDefine }
func (*Define) entity()    {}

// FunctionLike reports whether the macro takes arguments.
func (d *Define) FunctionLike() bool { return d.Parameters != nil }

type Variable struct {
	Object
	Type        string
	Initializer string
}

func (*Variable) Kind() Kind { return KindVariable }
func (*Variable) entity()    {}

// Compound is a struct, a union or a group. Struct and union members
// are owned by the compound; group members are shared with the top
// level of the tree.
type Compound struct {
	Object
	Type CompoundType
	// Title is the display title of a group.
	Title   string
	Alias   string
	Members []Entity
}

func (*Compound) Kind() Kind { return KindCompound }
func (*Compound) entity()    {}

// IsGroup reports whether the compound is a group.
func (c *Compound) IsGroup() bool { return c.Type == CompoundGroup }
