package parser

import (
	"sort"
	"strings"
)

// Comment is a documentation comment as it appears in the source,
// markers included. Runs of adjacent /// lines are merged into one.
type Comment struct {
	Text     string
	Span     Span
	Trailing bool
}

type docComment struct {
	comment  *Comment
	after    int // index of the next code token
	lineForm bool
	used     bool
}

// classifyComment reports whether lit is a documentation comment and
// whether it documents the construct to its left.
func classifyComment(lit string) (doc, trailing bool) {
	switch {
	case strings.HasPrefix(lit, "/**<"), strings.HasPrefix(lit, "/*!<"):
		return true, true
	case strings.HasPrefix(lit, "///<"), strings.HasPrefix(lit, "//!<"), strings.HasPrefix(lit, "//<"):
		return true, true
	case strings.HasPrefix(lit, "/*!"), strings.HasPrefix(lit, "//!"):
		return true, false
	case strings.HasPrefix(lit, "/**"):
		if lit == "/**/" || (len(lit) > 3 && lit[3] == '*') {
			return false, false
		}
		return true, false
	case strings.HasPrefix(lit, "///"):
		return len(lit) == 3 || lit[3] != '/', false
	}
	return false, false
}

// addComment records a comment token seen before the code token at
// index after.
func (e *extraction) addComment(tok Token, after int) {
	doc, trailing := classifyComment(tok.Literal)
	if !doc {
		return
	}
	lineForm := tok.Kind == TokenLineComment
	if n := len(e.comments); n > 0 && lineForm && !trailing {
		prev := e.comments[n-1]
		if prev.lineForm && !prev.comment.Trailing && prev.after == after &&
			prev.comment.Span.End.Line == tok.Span.Start.Line-1 {
			prev.comment.Text += "\n" + tok.Literal
			prev.comment.Span.End = tok.Span.End
			return
		}
	}
	e.comments = append(e.comments, &docComment{
		comment:  &Comment{Text: tok.Literal, Span: tok.Span, Trailing: trailing},
		after:    after,
		lineForm: lineForm,
	})
}

// leadingComment returns the unused doc comment that ends on the line
// directly above (or on the same line as) the code token at index i,
// with no other code in between.
func (e *extraction) leadingComment(i int) *Comment {
	if i < 0 || i >= len(e.toks) {
		return nil
	}
	tok := e.toks[i]
	k := sort.Search(len(e.comments), func(k int) bool { return e.comments[k].after > i })
	for j := k - 1; j >= 0 && e.comments[j].after == i; j-- {
		dc := e.comments[j]
		if dc.used || dc.comment.Trailing {
			continue
		}
		if dc.comment.Span.End.Line < tok.Span.Start.Line-1 {
			return nil
		}
		dc.used = true
		return dc.comment
	}
	return nil
}

// trailingComment returns a trailing doc comment that starts on the
// line where the code token at index i ends.
func (e *extraction) trailingComment(i int) *Comment {
	if i < 0 || i >= len(e.toks) {
		return nil
	}
	line := e.toks[i].Span.End.Line
	k := sort.Search(len(e.comments), func(k int) bool { return e.comments[k].after > i })
	for j := k; j < len(e.comments) && e.comments[j].after == i+1; j++ {
		dc := e.comments[j]
		if dc.used || !dc.comment.Trailing || dc.comment.Span.Start.Line != line {
			continue
		}
		dc.used = true
		return dc.comment
	}
	return nil
}

// detached returns the doc comments never attached to a declaration.
func (e *extraction) detached() []*Comment {
	var out []*Comment
	for _, dc := range e.comments {
		if dc.used {
			continue
		}
		if dc.comment.Trailing {
			e.log.Debugf("%s: trailing comment has nothing to document", dc.comment.Span.Start)
			continue
		}
		out = append(out, dc.comment)
	}
	return out
}
