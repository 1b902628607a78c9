// Package doxygen parses Doxygen-style structured comments attached to
// C declarations.
package doxygen

import "fmt"

// Inline is implemented by the spans that make up a paragraph.
type Inline interface {
	inline()
}

// Text is plain text. Markdown emphasis and code spans are left in
// place for the renderer.
type Text struct {
	Content string
}

func (Text) inline() {}

type Style int

const (
	StyleBold Style = iota
	StyleEmphasis
	StyleCode
)

func (s Style) String() string {
	switch s {
	case StyleBold:
		return "bold"
	case StyleEmphasis:
		return "emphasis"
	case StyleCode:
		return "code"
	}
	return fmt.Sprintf("Style(%d)", int(s))
}

// Styled is a word marked with @b, @e or @c.
type Styled struct {
	Style   Style
	Content string
}

func (Styled) inline() {}

type RefKind int

const (
	// RefLink comes from @ref.
	RefLink RefKind = iota
	// RefParam comes from @p.
	RefParam
)

// Ref is a cross-reference to another entity. Target holds the id of
// the referenced entity once resolved; Parameter is set when a @p names
// a parameter of the documented function or macro.
type Ref struct {
	Kind      RefKind
	Name      string
	Target    string
	Parameter bool
}

func (*Ref) inline() {}

// Resolved reports whether the reference links to an entity.
func (r *Ref) Resolved() bool {
	return r.Target != ""
}

// Block is implemented by the parts of a detailed description.
type Block interface {
	block()
}

type Paragraph struct {
	Content []Inline
}

func (Paragraph) block() {}

type List struct {
	Items [][]Inline
}

func (List) block() {}

// Code is a @code or @verbatim block. Text keeps the block's lines
// with their common indentation removed.
type Code struct {
	Text     string
	Verbatim bool
}

func (Code) block() {}

type AdmonitionKind int

const (
	Note AdmonitionKind = iota
	Warning
	Todo
	Bug
	Remark
)

var admonitionTitles = map[AdmonitionKind]string{
	Note:    "Note",
	Warning: "Warning",
	Todo:    "TODO",
	Bug:     "Bug",
	Remark:  "Remark",
}

var admonitionStyles = map[AdmonitionKind]string{
	Note:    "note",
	Warning: "warning",
	Todo:    "warning",
	Bug:     "bug",
	Remark:  "info",
}

// Title is the heading shown above the admonition.
func (k AdmonitionKind) Title() string { return admonitionTitles[k] }

// Style is the renderer's visual class for the admonition.
func (k AdmonitionKind) Style() string { return admonitionStyles[k] }

func (k AdmonitionKind) String() string {
	for name, kind := range admonitionTags {
		if kind == k && name != "remarks" {
			return name
		}
	}
	return fmt.Sprintf("AdmonitionKind(%d)", int(k))
}

type Admonition struct {
	Kind    AdmonitionKind
	Content []Inline
}

func (Admonition) block() {}

type Direction int

const (
	DirectionUnspecified Direction = iota
	DirectionIn
	DirectionOut
	DirectionInOut
)

func (d Direction) String() string {
	switch d {
	case DirectionIn:
		return "in"
	case DirectionOut:
		return "out"
	case DirectionInOut:
		return "inout"
	}
	return ""
}

// Param documents one function or macro parameter.
type Param struct {
	Name      string
	Direction Direction
	Text      []Inline
}

// GroupDef is a @defgroup declaration.
type GroupDef struct {
	ID    string
	Title string
}

// Description is the parsed form of one documentation comment.
type Description struct {
	Brief   []Inline
	Body    []Block
	Params  []Param
	Returns []Inline
	Pre     [][]Inline
	Post    [][]Inline

	// Groups lists @ingroup ids in the order they appear.
	Groups []string
	// Group is set when the comment defines a group.
	Group *GroupDef
}

// Empty reports whether the description carries no documentation.
func (d *Description) Empty() bool {
	return d == nil || (len(d.Brief) == 0 && len(d.Body) == 0 && len(d.Params) == 0 &&
		len(d.Returns) == 0 && len(d.Pre) == 0 && len(d.Post) == 0)
}

// Param returns the documentation for the named parameter.
func (d *Description) Param(name string) (Param, bool) {
	if d == nil {
		return Param{}, false
	}
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Refs returns every cross-reference in the description in reading
// order.
func (d *Description) Refs() []*Ref {
	if d == nil {
		return nil
	}
	var refs []*Ref
	collect := func(content []Inline) {
		for _, in := range content {
			if ref, ok := in.(*Ref); ok {
				refs = append(refs, ref)
			}
		}
	}
	collect(d.Brief)
	for _, block := range d.Body {
		switch b := block.(type) {
		case Paragraph:
			collect(b.Content)
		case List:
			for _, item := range b.Items {
				collect(item)
			}
		case Admonition:
			collect(b.Content)
		}
	}
	for _, p := range d.Params {
		collect(p.Text)
	}
	collect(d.Returns)
	for _, pre := range d.Pre {
		collect(pre)
	}
	for _, post := range d.Post {
		collect(post)
	}
	return refs
}

// MapInlines replaces every inline of the description with the result
// of fn.
func (d *Description) MapInlines(fn func(Inline) Inline) {
	if d == nil {
		return
	}
	apply := func(content []Inline) {
		for i, in := range content {
			content[i] = fn(in)
		}
	}
	apply(d.Brief)
	for _, block := range d.Body {
		switch b := block.(type) {
		case Paragraph:
			apply(b.Content)
		case List:
			for _, item := range b.Items {
				apply(item)
			}
		case Admonition:
			apply(b.Content)
		}
	}
	for _, p := range d.Params {
		apply(p.Text)
	}
	apply(d.Returns)
	for _, pre := range d.Pre {
		apply(pre)
	}
	for _, post := range d.Post {
		apply(post)
	}
}
