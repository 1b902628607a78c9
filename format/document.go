package format

import (
	"github.com/dhamidi/hdoc/c"
	"github.com/dhamidi/hdoc/c/doxygen"
)

// document mirrors the tree in a shape that serializes cleanly to JSON
// and YAML.
type document struct {
	Entities []docEntity `json:"entities" yaml:"entities"`
}

type docEntity struct {
	ID            string          `json:"id" yaml:"id"`
	Kind          string          `json:"kind" yaml:"kind"`
	Name          string          `json:"name" yaml:"name"`
	QualifiedName string          `json:"qualifiedName" yaml:"qualified_name"`
	Title         string          `json:"title" yaml:"title"`
	Signature     string          `json:"signature" yaml:"signature"`
	Location      c.Location      `json:"location" yaml:"location"`
	Group         string          `json:"group,omitempty" yaml:"group,omitempty"`
	Description   *docDescription `json:"description,omitempty" yaml:"description,omitempty"`

	ReturnType      string         `json:"returnType,omitempty" yaml:"return_type,omitempty"`
	Parameters      []docParameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	MacroParameters []string       `json:"macroParameters,omitempty" yaml:"macro_parameters,omitempty"`
	FunctionLike    bool           `json:"functionLike,omitempty" yaml:"function_like,omitempty"`
	Type            string         `json:"type,omitempty" yaml:"type,omitempty"`
	Initializer     string         `json:"initializer,omitempty" yaml:"initializer,omitempty"`
	Value           string         `json:"value,omitempty" yaml:"value,omitempty"`
	CompoundType    string         `json:"compoundType,omitempty" yaml:"compound_type,omitempty"`
	Alias           string         `json:"alias,omitempty" yaml:"alias,omitempty"`

	// Members are owned: enum values, struct and union fields.
	Members []docEntity `json:"members,omitempty" yaml:"members,omitempty"`
	// MemberIDs lists the members of a group, which are documented at
	// the top level.
	MemberIDs []string `json:"memberIds,omitempty" yaml:"member_ids,omitempty"`
}

type docParameter struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Type string `json:"type" yaml:"type"`
}

type docDescription struct {
	Brief   []docInline   `json:"brief,omitempty" yaml:"brief,omitempty"`
	Body    []docBlock    `json:"body,omitempty" yaml:"body,omitempty"`
	Params  []docParam    `json:"params,omitempty" yaml:"params,omitempty"`
	Returns []docInline   `json:"returns,omitempty" yaml:"returns,omitempty"`
	Pre     [][]docInline `json:"pre,omitempty" yaml:"pre,omitempty"`
	Post    [][]docInline `json:"post,omitempty" yaml:"post,omitempty"`
}

type docInline struct {
	Kind   string `json:"kind" yaml:"kind"`
	Text   string `json:"text" yaml:"text"`
	Target string `json:"target,omitempty" yaml:"target,omitempty"`
}

type docBlock struct {
	Kind    string        `json:"kind" yaml:"kind"`
	Content []docInline   `json:"content,omitempty" yaml:"content,omitempty"`
	Items   [][]docInline `json:"items,omitempty" yaml:"items,omitempty"`
	Title   string        `json:"title,omitempty" yaml:"title,omitempty"`
	Style   string        `json:"style,omitempty" yaml:"style,omitempty"`
	Text    string        `json:"text,omitempty" yaml:"text,omitempty"`
}

type docParam struct {
	Name      string      `json:"name" yaml:"name"`
	Direction string      `json:"direction,omitempty" yaml:"direction,omitempty"`
	Text      []docInline `json:"text,omitempty" yaml:"text,omitempty"`
}

func buildDocument(tree *c.Tree, style c.Style) document {
	var doc document
	for _, e := range tree.Entities() {
		doc.Entities = append(doc.Entities, buildEntity(e, style))
	}
	return doc
}

func buildEntity(e c.Entity, style c.Style) docEntity {
	obj := e.Base()
	out := docEntity{
		ID:            obj.ID,
		Kind:          string(e.Kind()),
		Name:          obj.Name,
		QualifiedName: obj.QualifiedName,
		Title:         c.Title(e),
		Signature:     c.Signature(e, style),
		Location:      obj.Location,
		Group:         obj.Group,
		Description:   buildDescription(obj.Description),
	}

	switch v := e.(type) {
	case *c.Function:
		out.ReturnType = v.ReturnType
		for _, p := range v.Parameters {
			out.Parameters = append(out.Parameters, docParameter{Name: p.Name, Type: p.Type})
		}
	case *c.Define:
		out.MacroParameters = v.Parameters
		out.FunctionLike = v.FunctionLike()
		out.Value = v.Value
	case *c.Variable:
		out.Type = v.Type
		out.Initializer = v.Initializer
	case *c.EnumValue:
		out.Initializer = v.Initializer
	case *c.Enum:
		out.Alias = v.Alias
	case *c.Compound:
		out.CompoundType = string(v.Type)
		out.Alias = v.Alias
		if v.IsGroup() {
			for _, m := range v.Members {
				out.MemberIDs = append(out.MemberIDs, m.Base().ID)
			}
			return out
		}
	}
	for _, m := range c.Members(e) {
		out.Members = append(out.Members, buildEntity(m, style))
	}
	return out
}

func buildDescription(d *doxygen.Description) *docDescription {
	if d.Empty() {
		return nil
	}
	out := &docDescription{
		Brief:   buildInlines(d.Brief),
		Returns: buildInlines(d.Returns),
	}
	for _, block := range d.Body {
		out.Body = append(out.Body, buildBlock(block))
	}
	for _, p := range d.Params {
		out.Params = append(out.Params, docParam{Name: p.Name, Direction: p.Direction.String(), Text: buildInlines(p.Text)})
	}
	for _, pre := range d.Pre {
		out.Pre = append(out.Pre, buildInlines(pre))
	}
	for _, post := range d.Post {
		out.Post = append(out.Post, buildInlines(post))
	}
	return out
}

func buildBlock(block doxygen.Block) docBlock {
	switch b := block.(type) {
	case doxygen.List:
		out := docBlock{Kind: "list"}
		for _, item := range b.Items {
			out.Items = append(out.Items, buildInlines(item))
		}
		return out
	case doxygen.Admonition:
		return docBlock{
			Kind:    "admonition",
			Content: buildInlines(b.Content),
			Title:   b.Kind.Title(),
			Style:   b.Kind.Style(),
		}
	case doxygen.Paragraph:
		return docBlock{Kind: "paragraph", Content: buildInlines(b.Content)}
	case doxygen.Code:
		if b.Verbatim {
			return docBlock{Kind: "verbatim", Text: b.Text}
		}
		return docBlock{Kind: "code", Text: b.Text}
	}
	return docBlock{Kind: "unknown"}
}

func buildInlines(content []doxygen.Inline) []docInline {
	var out []docInline
	for _, in := range content {
		switch n := in.(type) {
		case doxygen.Text:
			out = append(out, docInline{Kind: "text", Text: n.Content})
		case doxygen.Styled:
			out = append(out, docInline{Kind: n.Style.String(), Text: n.Content})
		case *doxygen.Ref:
			switch {
			case n.Parameter:
				out = append(out, docInline{Kind: "param", Text: n.Name})
			case n.Resolved():
				out = append(out, docInline{Kind: "ref", Text: n.Name, Target: n.Target})
			default:
				out = append(out, docInline{Kind: "text", Text: n.Name})
			}
		}
	}
	return out
}
