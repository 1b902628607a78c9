package doxygen

import (
	"strings"
)

// PlainText flattens inline content into plain text. References render
// as their name and styled spans as their content.
func PlainText(content []Inline) string {
	var sb strings.Builder
	for _, in := range content {
		switch n := in.(type) {
		case Text:
			sb.WriteString(n.Content)
		case Styled:
			sb.WriteString(n.Content)
		case *Ref:
			sb.WriteString(n.Name)
		}
	}
	return strings.TrimSpace(sb.String())
}

// LinkFunc maps a resolved reference target to a link destination.
type LinkFunc func(target string) string

// Markdown renders inline content as Markdown. Text passes through
// untouched so emphasis written in the comment survives. Resolved
// references become links when link is non-nil. Own-parameter
// references render as code and unresolved names as plain text.
func Markdown(content []Inline, link LinkFunc) string {
	var sb strings.Builder
	for _, in := range content {
		switch n := in.(type) {
		case Text:
			sb.WriteString(n.Content)
		case Styled:
			switch n.Style {
			case StyleBold:
				sb.WriteString("**" + n.Content + "**")
			case StyleEmphasis:
				sb.WriteString("*" + n.Content + "*")
			default:
				sb.WriteString("`" + n.Content + "`")
			}
		case *Ref:
			switch {
			case n.Parameter:
				sb.WriteString("`" + n.Name + "`")
			case n.Resolved() && link != nil:
				sb.WriteString("[`" + n.Name + "`](" + link(n.Target) + ")")
			case n.Resolved():
				sb.WriteString("`" + n.Name + "`")
			default:
				sb.WriteString(n.Name)
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// Summary is the first sentence of the brief, or of the first body
// paragraph when there is no brief.
func Summary(doc *Description) string {
	if doc == nil {
		return ""
	}
	text := PlainText(doc.Brief)
	if text == "" {
		for _, block := range doc.Body {
			if para, ok := block.(Paragraph); ok {
				text = PlainText(para.Content)
				break
			}
		}
	}
	if i := strings.Index(text, ". "); i >= 0 {
		return text[:i+1]
	}
	return text
}
