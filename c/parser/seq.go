package parser

import "strings"

// seq is a run of code tokens with their indexes in the file's token
// stream, used for comment lookups after directives have been dropped.
type seq struct {
	toks []Token
	idx  []int
}

func (s *seq) push(tok Token, i int) {
	s.toks = append(s.toks, tok)
	s.idx = append(s.idx, i)
}

func (s seq) len() int { return len(s.toks) }

func (s seq) kind(k int) TokenKind {
	if k < 0 || k >= len(s.toks) {
		return TokenEOF
	}
	return s.toks[k].Kind
}

func (s seq) slice(lo, hi int) seq {
	if lo > hi {
		lo = hi
	}
	return seq{toks: s.toks[lo:hi], idx: s.idx[lo:hi]}
}

func (s seq) last() int {
	if len(s.idx) == 0 {
		return -1
	}
	return s.idx[len(s.idx)-1]
}

func (s seq) first() int {
	if len(s.idx) == 0 {
		return -1
	}
	return s.idx[0]
}

// trimEnd drops a trailing token of the given kind.
func (s seq) trimEnd(kind TokenKind) seq {
	if n := s.len(); n > 0 && s.toks[n-1].Kind == kind {
		return s.slice(0, n-1)
	}
	return s
}

func isOpen(kind TokenKind) bool {
	return kind == TokenLParen || kind == TokenLBracket || kind == TokenLBrace
}

func isClose(kind TokenKind) bool {
	return kind == TokenRParen || kind == TokenRBracket || kind == TokenRBrace
}

// matching returns the index of the bracket closing the one at k.
func (s seq) matching(k int) int {
	depth := 0
	for i := k; i < len(s.toks); i++ {
		switch {
		case isOpen(s.toks[i].Kind):
			depth++
		case isClose(s.toks[i].Kind):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return len(s.toks) - 1
}

// indexAtDepth0 returns the first index of kind outside any brackets.
func (s seq) indexAtDepth0(kind TokenKind) int {
	depth := 0
	for i, tok := range s.toks {
		if depth == 0 && tok.Kind == kind {
			return i
		}
		switch {
		case isOpen(tok.Kind):
			depth++
		case isClose(tok.Kind):
			depth--
		}
	}
	return -1
}

func (s seq) hasDepth0(kind TokenKind) bool {
	return s.indexAtDepth0(kind) >= 0
}

// splitAfter cuts s after every depth-0 separator of the given kind.
// Each part keeps its separator; empty parts are dropped.
func (s seq) splitAfter(kind TokenKind) []seq {
	var parts []seq
	depth, start := 0, 0
	for i, tok := range s.toks {
		switch {
		case isOpen(tok.Kind):
			depth++
		case isClose(tok.Kind):
			depth--
		case depth == 0 && tok.Kind == kind:
			parts = append(parts, s.slice(start, i+1))
			start = i + 1
		}
	}
	if start < len(s.toks) {
		parts = append(parts, s.slice(start, len(s.toks)))
	}
	return parts
}

// without returns s minus the token at k.
func (s seq) without(k int) seq {
	var out seq
	for i := range s.toks {
		if i != k {
			out.push(s.toks[i], s.idx[i])
		}
	}
	return out
}

// contains reports whether any token of s has the given kind.
func (s seq) contains(kind TokenKind) bool {
	for _, tok := range s.toks {
		if tok.Kind == kind {
			return true
		}
	}
	return false
}

// text rebuilds source text from tokens, keeping a single space
// wherever the source had whitespace or a dropped token.
func (s seq) text() string {
	var b strings.Builder
	for i, tok := range s.toks {
		if i > 0 && tok.Span.Start.Offset > s.toks[i-1].Span.End.Offset {
			b.WriteByte(' ')
		}
		b.WriteString(tok.Literal)
	}
	return b.String()
}

var typeReplacer = strings.NewReplacer(
	"< ", "<",
	" >", ">",
	" &", "&",
	" *", "*",
	" [", "[",
	"( ", "(",
	" )", ")",
	") (", ")(",
)

// NormalizeType tightens spacing around pointer, reference and
// bracket punctuation in type text.
func NormalizeType(typ string) string {
	typ = strings.Join(strings.Fields(typ), " ")
	for {
		next := typeReplacer.Replace(typ)
		if next == typ {
			return typ
		}
		typ = next
	}
}
