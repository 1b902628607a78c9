package parser

import (
	"strings"
	"unicode"
)

var storageWords = map[string]bool{
	"extern":     true,
	"static":     true,
	"inline":     true,
	"__inline":   true,
	"__inline__": true,
	"register":   true,
}

// builtinTypes are words that never name a parameter.
var builtinTypes = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"_Bool": true, "bool": true, "_Complex": true,
}

// plain handles statements that are neither typedefs nor aggregate
// definitions: function prototypes and variables.
func (e *extraction) plain(s seq, first int) {
	body := s.trimEnd(TokenSemicolon)
	if p := functionParen(body); p >= 0 {
		e.function(body, p, first, s.last())
		return
	}

	vars := e.declarators(body, "")
	if len(vars) == 0 {
		e.unsupported(s, "declaration")
		return
	}
	initialized := false
	for _, v := range vars {
		initialized = initialized || v.Value != ""
	}
	if !initialized && !body.contains(TokenExtern) && !body.contains(TokenConst) {
		e.unsupported(s, "declaration")
		return
	}
	vars[0].Comment = e.leadingComment(first)
	vars[len(vars)-1].Trailing = e.trailingComment(s.last())
	e.emit(vars...)
}

// functionParen finds the parenthesis opening a function's parameter
// list. Macro invocations such as DEPRECATED("...") before the return
// type are passed over in favour of a lower-case function name.
func functionParen(body seq) int {
	limit := body.len()
	if eq := body.indexAtDepth0(TokenAssign); eq >= 0 {
		limit = eq
	}
	var candidates []int
	depth := 0
	for k := 0; k < limit; k++ {
		tok := body.toks[k]
		switch {
		case tok.Kind == TokenLParen:
			if depth == 0 && k > 0 && body.kind(k-1) == TokenIdent && body.kind(k+1) != TokenStar {
				candidates = append(candidates, k)
			}
			depth++
		case isOpen(tok.Kind):
			depth++
		case isClose(tok.Kind):
			depth--
		}
	}
	if len(candidates) == 0 {
		return -1
	}
	for k := len(candidates) - 1; k >= 0; k-- {
		if !isMacroName(body.toks[candidates[k]-1].Literal) {
			return candidates[k]
		}
	}
	return candidates[len(candidates)-1]
}

func isMacroName(name string) bool {
	for _, r := range name {
		if unicode.IsLower(r) {
			return false
		}
	}
	return true
}

func (e *extraction) function(body seq, p int, first, last int) {
	name := body.toks[p-1]
	closeParen := body.matching(p)
	ret := dropMacroCalls(body.slice(0, p-1))
	retType := NormalizeType(stripStorage(ret.text()))
	if retType == "" {
		e.unsupported(body, "declaration")
		return
	}
	params := e.params(body.slice(p+1, closeParen))
	sig := body.slice(p-1, closeParen+1)
	e.emit(&Declaration{
		Kind:     DeclFunction,
		Name:     name.Literal,
		Span:     Span{Start: body.toks[0].Span.Start, End: body.toks[closeParen].Span.End},
		Text:     retType + " " + sig.text(),
		Comment:  e.leadingComment(first),
		Trailing: e.trailingComment(last),
		Type:     retType,
		Params:   params,
	})
}

// dropMacroCalls removes NAME(...) groups from return type tokens.
func dropMacroCalls(s seq) seq {
	var out seq
	for k := 0; k < s.len(); k++ {
		if s.kind(k) == TokenIdent && s.kind(k+1) == TokenLParen {
			k = s.matching(k + 1)
			continue
		}
		out.push(s.toks[k], s.idx[k])
	}
	return out
}

func (e *extraction) params(s seq) []Param {
	params := []Param{}
	parts := s.splitAfter(TokenComma)
	if len(parts) == 1 && parts[0].len() == 1 && parts[0].toks[0].Literal == "void" {
		return params
	}
	for _, part := range parts {
		part = part.trimEnd(TokenComma)
		if part.len() == 0 {
			continue
		}
		if part.len() == 1 && part.kind(0) == TokenEllipsis {
			params = append(params, Param{Type: "..."})
			continue
		}
		nameAt := declaratorName(part, true)
		if nameAt < 0 {
			params = append(params, Param{Type: NormalizeType(part.text())})
			continue
		}
		params = append(params, Param{
			Type: NormalizeType(part.without(nameAt).text()),
			Name: part.toks[nameAt].Literal,
		})
	}
	return params
}

// declaratorName returns the index of the declared identifier, or -1
// when the tokens are a bare type.
func declaratorName(s seq, param bool) int {
	depth := 0
	for k := 0; k < s.len(); k++ {
		if s.kind(k) == TokenLParen && depth == 0 && s.kind(k+1) == TokenStar {
			for j := k + 1; j < s.matching(k); j++ {
				if s.kind(j) == TokenIdent {
					return j
				}
			}
			return -1
		}
		switch {
		case isOpen(s.kind(k)):
			depth++
		case isClose(s.kind(k)):
			depth--
		}
	}

	name := -1
	depth = 0
	for k := 0; k < s.len(); k++ {
		switch {
		case isOpen(s.kind(k)):
			depth++
		case isClose(s.kind(k)):
			depth--
		case depth == 0 && s.kind(k) == TokenIdent:
			name = k
		}
	}
	if name <= 0 {
		return -1
	}
	switch s.kind(name - 1) {
	case TokenStruct, TokenUnion, TokenEnum:
		return -1
	}
	if param && (builtinTypes[s.toks[name].Literal] || strings.HasSuffix(s.toks[name].Literal, "_t")) {
		return -1
	}
	if !param && builtinTypes[s.toks[name].Literal] {
		return -1
	}
	return name
}

// declarators splits a comma-separated declarator list into variables.
// When base is empty the type comes from the first declarator.
func (e *extraction) declarators(s seq, base string) []*Declaration {
	var decls []*Declaration
	var baseType string
	for n, part := range s.splitAfter(TokenComma) {
		part = part.trimEnd(TokenComma)
		if part.len() == 0 {
			continue
		}
		left, value := part, ""
		if eq := part.indexAtDepth0(TokenAssign); eq >= 0 {
			left, value = part.slice(0, eq), part.slice(eq+1, part.len()).text()
		}
		if colon := left.indexAtDepth0(TokenColon); colon >= 0 {
			left = left.slice(0, colon)
		}

		var nameAt int
		if base != "" || n > 0 {
			nameAt = declaratorName(prefixed(left), false) - 1
		} else {
			nameAt = declaratorName(left, false)
		}
		if nameAt < 0 {
			if n == 0 {
				return nil
			}
			continue
		}

		rest := left.without(nameAt).text()
		var typ string
		switch {
		case base != "":
			typ = base + " " + rest
		case n == 0:
			baseType = leadingType(left, nameAt)
			typ = rest
		default:
			typ = baseType + " " + rest
		}
		decls = append(decls, &Declaration{
			Kind:  DeclVariable,
			Name:  left.toks[nameAt].Literal,
			Span:  Span{Start: part.toks[0].Span.Start, End: part.toks[part.len()-1].Span.End},
			Text:  strings.TrimSpace(part.text()),
			Type:  NormalizeType(stripStorage(typ)),
			Value: value,
		})
	}
	return decls
}

// prefixed puts a placeholder type in front of a declarator that
// inherits its type, so declaratorName sees a type before the name.
func prefixed(s seq) seq {
	var out seq
	out.push(Token{Kind: TokenIdent, Literal: "_"}, -1)
	for k := range s.toks {
		out.push(s.toks[k], s.idx[k])
	}
	return out
}

// leadingType is the part of the first declarator's type shared by the
// declarators that follow it: everything before the name minus pointers.
func leadingType(s seq, nameAt int) string {
	head := s.slice(0, nameAt)
	for head.len() > 0 && head.kind(head.len()-1) == TokenStar {
		head = head.slice(0, head.len()-1)
	}
	return head.text()
}

func stripStorage(typ string) string {
	var words []string
	for _, word := range strings.Fields(typ) {
		if !storageWords[word] {
			words = append(words, word)
		}
	}
	return strings.Join(words, " ")
}
