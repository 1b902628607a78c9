package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/hdoc/c"
	"github.com/dhamidi/hdoc/c/doxygen"
)

// TOC selects which kinds of entity are listed in the table of
// contents.
type TOC struct {
	Function bool
	Enum     bool
	Define   bool
	Variable bool
	Struct   bool
	Union    bool
	Group    bool
}

// Render carries the options of the rendering layer.
type Render struct {
	// HeadingLevel is the Markdown heading level of top-level entities.
	HeadingLevel int
	TOC          TOC
	Style        c.Style
}

func DefaultRender() Render {
	return Render{
		HeadingLevel: 2,
		TOC:          TOC{Function: true, Enum: true, Define: true, Variable: true, Struct: true, Union: true, Group: true},
		Style:        c.DefaultStyle,
	}
}

func (t TOC) includes(e c.Entity) bool {
	switch v := e.(type) {
	case *c.Function:
		return t.Function
	case *c.Enum, *c.EnumValue:
		return t.Enum
	case *c.Define:
		return t.Define
	case *c.Variable:
		return t.Variable
	case *c.Compound:
		switch v.Type {
		case c.CompoundStruct:
			return t.Struct
		case c.CompoundUnion:
			return t.Union
		case c.CompoundGroup:
			return t.Group
		}
	}
	return false
}

// MarkdownEncoder renders the tree as a single Markdown reference
// page. Every entity gets an anchor named after its id and
// cross-references link to those anchors.
type MarkdownEncoder struct {
	w      io.Writer
	tree   *c.Tree
	render Render
}

func NewMarkdownEncoder(w io.Writer, render Render) *MarkdownEncoder {
	if render.HeadingLevel < 1 || render.HeadingLevel > 6 {
		render.HeadingLevel = 2
	}
	return &MarkdownEncoder{w: w, render: render}
}

func (e *MarkdownEncoder) Encode(tree *c.Tree) error {
	e.tree = tree
	text, err := e.MarshalText()
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *MarkdownEncoder) MarshalText() ([]byte, error) {
	var sb strings.Builder
	e.writeTOC(&sb)
	for _, ent := range e.tree.Entities() {
		e.writeEntity(&sb, ent, e.render.HeadingLevel)
	}
	return []byte(sb.String()), nil
}

func anchor(id string) string {
	return "#" + id
}

func (e *MarkdownEncoder) writeTOC(sb *strings.Builder) {
	var lines []string
	for _, ent := range e.tree.Entities() {
		if !e.render.TOC.includes(ent) {
			continue
		}
		line := fmt.Sprintf("- [%s](%s)", c.Title(ent), anchor(ent.Base().ID))
		if summary := doxygen.Summary(ent.Base().Description); summary != "" {
			line += ": " + summary
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return
	}
	sb.WriteString(strings.Join(lines, "\n"))
	sb.WriteString("\n\n")
}

func heading(level int) string {
	if level > 6 {
		level = 6
	}
	return strings.Repeat("#", level)
}

func (e *MarkdownEncoder) writeEntity(sb *strings.Builder, ent c.Entity, level int) {
	obj := ent.Base()
	fmt.Fprintf(sb, "<a id=\"%s\"></a>\n\n", obj.ID)
	fmt.Fprintf(sb, "%s %s\n\n", heading(level), c.Title(ent))

	if group, ok := ent.(*c.Compound); ok && group.IsGroup() {
		writeDescription(sb, ent, e.render.Style, anchor)
		for _, m := range group.Members {
			fmt.Fprintf(sb, "- [%s](%s)\n", c.Title(m), anchor(m.Base().ID))
		}
		if len(group.Members) > 0 {
			sb.WriteString("\n")
		}
		return
	}

	fmt.Fprintf(sb, "```c\n%s\n```\n\n", c.Signature(ent, e.render.Style))
	writeDescription(sb, ent, e.render.Style, anchor)
	if obj.Group != "" {
		if g, ok := e.tree.Lookup(obj.Group); ok {
			fmt.Fprintf(sb, "Group: [%s](%s)\n\n", c.Title(g), anchor(g.Base().ID))
		}
	}
	for _, m := range c.Members(ent) {
		e.writeEntity(sb, m, level+1)
	}
}

// DescriptionMarkdown renders the description of e as Markdown blocks
// separated by blank lines. link maps reference targets to link
// destinations; with a nil link references render as code.
func DescriptionMarkdown(e c.Entity, style c.Style, link doxygen.LinkFunc) string {
	if e == nil {
		return ""
	}
	var sb strings.Builder
	writeDescription(&sb, e, style, link)
	return strings.TrimSuffix(sb.String(), "\n\n")
}

// paramTypes maps the parameter names of a function to their types.
func paramTypes(e c.Entity, style c.Style) map[string]string {
	fn, ok := e.(*c.Function)
	if !ok {
		return nil
	}
	types := make(map[string]string, len(fn.Parameters))
	for _, p := range fn.Parameters {
		if p.Name != "" {
			types[p.Name] = c.TypeName(p.Type, style)
		}
	}
	return types
}

func writeDescription(sb *strings.Builder, e c.Entity, style c.Style, link doxygen.LinkFunc) {
	d := e.Base().Description
	if d == nil {
		return
	}
	text := func(content []doxygen.Inline) string {
		return doxygen.Markdown(content, link)
	}

	if brief := text(d.Brief); brief != "" {
		sb.WriteString(brief + "\n\n")
	}
	for _, block := range d.Body {
		switch b := block.(type) {
		case doxygen.Paragraph:
			sb.WriteString(text(b.Content) + "\n\n")
		case doxygen.List:
			for _, item := range b.Items {
				sb.WriteString("- " + text(item) + "\n")
			}
			sb.WriteString("\n")
		case doxygen.Admonition:
			fmt.Fprintf(sb, "!!! %s \"%s\"\n    %s\n\n", b.Kind.Style(), b.Kind.Title(), text(b.Content))
		case doxygen.Code:
			lang := "c"
			if b.Verbatim {
				lang = ""
			}
			fmt.Fprintf(sb, "```%s\n%s\n```\n\n", lang, b.Text)
		}
	}
	if len(d.Params) > 0 {
		sb.WriteString("**Parameters**\n\n")
		types := paramTypes(e, style)
		for _, p := range d.Params {
			name := "`" + p.Name + "`"
			if typ, ok := types[p.Name]; ok {
				name += " (`" + typ + "`)"
			}
			if p.Direction != doxygen.DirectionUnspecified {
				name += " [" + p.Direction.String() + "]"
			}
			fmt.Fprintf(sb, "- %s: %s\n", name, text(p.Text))
		}
		sb.WriteString("\n")
	}
	if returns := text(d.Returns); returns != "" {
		fmt.Fprintf(sb, "**Returns**: %s\n\n", returns)
	}
	writeConditions(sb, "Preconditions", d.Pre, text)
	writeConditions(sb, "Postconditions", d.Post, text)
}

func writeConditions(sb *strings.Builder, title string, conditions [][]doxygen.Inline, text func([]doxygen.Inline) string) {
	if len(conditions) == 0 {
		return
	}
	fmt.Fprintf(sb, "**%s**\n\n", title)
	for _, cond := range conditions {
		sb.WriteString("- " + text(cond) + "\n")
	}
	sb.WriteString("\n")
}
