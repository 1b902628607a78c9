package parser

import (
	"fmt"
	"strings"

	"github.com/tliron/commonlog"
)

type DeclKind int

const (
	DeclFunction DeclKind = iota
	DeclEnum
	DeclEnumValue
	DeclDefine
	DeclVariable
	DeclCompound
)

var declKindNames = map[DeclKind]string{
	DeclFunction:  "function",
	DeclEnum:      "enum",
	DeclEnumValue: "enumvalue",
	DeclDefine:    "define",
	DeclVariable:  "variable",
	DeclCompound:  "compound",
}

func (k DeclKind) String() string {
	if name, ok := declKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("DeclKind(%d)", k)
}

// Declaration is one recognized construct together with the comments
// attached to it. Members holds struct/union fields and enum values.
type Declaration struct {
	Kind     DeclKind
	Name     string
	Span     Span
	Text     string
	Comment  *Comment
	Trailing *Comment

	// Type is the return type of a function, or the type of a variable.
	Type   string
	Params []Param

	FunctionLike bool
	MacroParams  []string

	// Value is a macro body, a variable initializer or an enumerator's
	// explicit value, verbatim.
	Value string

	// Tag is "struct" or "union" for compounds.
	Tag   string
	Alias string

	Members []*Declaration
}

type Param struct {
	Type string
	Name string
}

// Alias records a bodiless typedef such as `typedef struct foo_s foo;`.
type Alias struct {
	Name   string
	Target string
	Pos    Position
}

type ProblemKind int

const (
	// ProblemUnsupported is a construct outside the recognized subset.
	ProblemUnsupported ProblemKind = iota
	// ProblemMacro is a macro invocation that could not be expanded.
	ProblemMacro
)

// Problem is a recoverable issue found while extracting a file.
type Problem struct {
	Pos     Position
	Kind    ProblemKind
	Message string
}

type File struct {
	Path         string
	Declarations []*Declaration
	Aliases      []Alias
	// Detached holds doc comments not attached to any declaration,
	// such as free-standing group definitions.
	Detached []*Comment
	Problems []Problem
}

// Extractor finds documentable declarations in a C header.
type Extractor struct {
	predefined []*macro
	log        commonlog.Logger
}

type Option func(*Extractor)

// WithPredefined registers macros applied to every file before
// extraction. Each entry is NAME, NAME=VALUE or NAME(args)=VALUE.
// Object-like entries are substituted into declaration text.
func WithPredefined(defs []string) Option {
	return func(x *Extractor) {
		for _, def := range defs {
			if m, ok := parsePredefined(def); ok {
				x.predefined = append(x.predefined, m)
			} else {
				x.log.Warningf("ignoring malformed predefined macro %q", def)
			}
		}
	}
}

func NewExtractor(opts ...Option) *Extractor {
	x := &Extractor{log: commonlog.GetLogger("hdoc.parser")}
	for _, opt := range opts {
		opt(x)
	}
	return x
}

type extraction struct {
	file        *File
	toks        []Token
	comments    []*docComment
	pos         int
	macros      map[string]*macro
	substitute  map[string]*macro
	externDepth int
	guard       string
	log         commonlog.Logger
}

// Extract scans src and returns its declarations in source order.
// Source outside the recognized subset yields a *SyntaxError.
func (x *Extractor) Extract(path string, src []byte) (*File, error) {
	tokens, err := Tokenize(src, path)
	if err != nil {
		return nil, err
	}

	e := &extraction{
		file:       &File{Path: path},
		macros:     make(map[string]*macro),
		substitute: make(map[string]*macro),
		log:        x.log,
	}
	for _, m := range x.predefined {
		e.macros[m.name] = m
		if !m.functionLike {
			e.substitute[m.name] = m
		}
	}

	// Directives nested in a declaration are dropped here. Braces of an
	// extern "C" block do not count as nesting.
	depth := 0
	var externAt []int
	for _, tok := range tokens {
		switch tok.Kind {
		case TokenComment, TokenLineComment:
			e.addComment(tok, len(e.toks))
			continue
		case TokenDirective:
			if depth > 0 {
				e.log.Debugf("%s: skipping directive inside declaration", tok.Span.Start)
				continue
			}
		case TokenLBrace:
			if n := len(e.toks); n >= 2 && e.toks[n-2].Kind == TokenExtern && e.toks[n-1].Kind == TokenStringLiteral {
				externAt = append(externAt, depth)
			} else {
				depth++
			}
		case TokenRBrace:
			if n := len(externAt); n > 0 && externAt[n-1] == depth {
				externAt = externAt[:n-1]
			} else {
				depth--
			}
		case TokenLParen, TokenLBracket:
			depth++
		case TokenRParen, TokenRBracket:
			depth--
		case TokenIdent:
			if m, ok := e.substitute[tok.Literal]; ok {
				e.toks = append(e.toks, substitution(m, tok)...)
				continue
			}
		}
		e.toks = append(e.toks, tok)
	}

	if err := e.run(); err != nil {
		return nil, err
	}
	e.file.Detached = e.detached()
	return e.file, nil
}

func substitution(m *macro, at Token) []Token {
	toks, err := tokenizeFragment(m.body)
	if err != nil {
		return nil
	}
	for i := range toks {
		toks[i].Span = at.Span
	}
	return toks
}

func (e *extraction) problem(pos Position, kind ProblemKind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	e.log.Debugf("%s: %s", pos, msg)
	e.file.Problems = append(e.file.Problems, Problem{Pos: pos, Kind: kind, Message: msg})
}

func (e *extraction) emit(decls ...*Declaration) {
	e.file.Declarations = append(e.file.Declarations, decls...)
}

func (e *extraction) peekKind(n int) TokenKind {
	if e.pos+n >= len(e.toks) {
		return TokenEOF
	}
	return e.toks[e.pos+n].Kind
}

func (e *extraction) run() error {
	for e.pos < len(e.toks) {
		tok := e.toks[e.pos]
		switch {
		case tok.Kind == TokenDirective:
			e.directive(e.pos)
			e.pos++
			continue
		case tok.Kind == TokenSemicolon:
			e.pos++
		case tok.Kind == TokenExtern && e.peekKind(1) == TokenStringLiteral && e.peekKind(2) == TokenLBrace:
			e.externDepth++
			e.pos += 3
		case tok.Kind == TokenRBrace && e.externDepth > 0:
			e.externDepth--
			e.pos++
		default:
			if err := e.statement(); err != nil {
				return err
			}
		}
		e.guard = ""
	}
	if e.externDepth > 0 {
		return &SyntaxError{Pos: e.endPosition(), Message: "unexpected end of file, expected '}' closing extern block"}
	}
	return nil
}

func (e *extraction) endPosition() Position {
	if len(e.toks) == 0 {
		return Position{File: e.file.Path, Line: 1, Column: 1}
	}
	return e.toks[len(e.toks)-1].Span.End
}

func (e *extraction) directive(i int) {
	tok := e.toks[i]
	body := strings.TrimSpace(strings.TrimPrefix(tok.Literal, "#"))
	name, rest, _ := strings.Cut(body, " ")
	if tab := strings.IndexByte(name, '\t'); tab >= 0 {
		name, rest = name[:tab], name[tab+1:]+" "+rest
	}
	rest = strings.TrimSpace(rest)

	switch name {
	case "define":
		guard := e.guard
		e.guard = ""
		m, ok := parseDefine(tok.Literal)
		if !ok {
			e.problem(tok.Span.Start, ProblemUnsupported, "skipping malformed #define")
			return
		}
		comment := e.leadingComment(i)
		trailing := e.trailingComment(i)
		if _, predefined := e.substitute[m.name]; !predefined {
			e.macros[m.name] = m
		}
		if comment == nil && trailing == nil && !m.functionLike && m.body == "" && m.name == guard {
			e.log.Debugf("%s: skipping include guard %s", tok.Span.Start, m.name)
			return
		}
		e.emit(&Declaration{
			Kind:         DeclDefine,
			Name:         m.name,
			Span:         tok.Span,
			Text:         m.definition(),
			Comment:      comment,
			Trailing:     trailing,
			FunctionLike: m.functionLike,
			MacroParams:  m.params,
			Value:        m.body,
		})
	case "ifndef":
		e.guard = strings.TrimSpace(rest)
		return
	case "undef":
		delete(e.macros, strings.TrimSpace(rest))
	default:
		e.log.Debugf("%s: skipping #%s", tok.Span.Start, name)
	}
	e.guard = ""
}

// scanStatement collects the tokens of one top-level statement, up to
// and including its semicolon. A function body is skipped and ends the
// statement without a semicolon.
func (e *extraction) scanStatement() (seq, error) {
	var s seq
	var stack []TokenKind
	start := e.toks[e.pos]

	for e.pos < len(e.toks) {
		i := e.pos
		tok := e.toks[i]
		e.pos++

		switch tok.Kind {
		case TokenDirective:
			e.log.Debugf("%s: skipping directive inside declaration", tok.Span.Start)
			continue
		case TokenLParen:
			stack = append(stack, TokenRParen)
		case TokenLBracket:
			stack = append(stack, TokenRBracket)
		case TokenLBrace:
			if len(stack) == 0 && s.kind(s.len()-1) == TokenRParen {
				if err := e.skipBody(tok); err != nil {
					return s, err
				}
				return s, nil
			}
			stack = append(stack, TokenRBrace)
		case TokenRParen, TokenRBracket, TokenRBrace:
			if len(stack) == 0 || stack[len(stack)-1] != tok.Kind {
				return s, &SyntaxError{Pos: tok.Span.Start, Message: fmt.Sprintf("unexpected %q", tok.Literal)}
			}
			stack = stack[:len(stack)-1]
		case TokenSemicolon:
			if len(stack) == 0 {
				s.push(tok, i)
				return s, nil
			}
		}
		s.push(tok, i)
	}
	return s, &SyntaxError{Pos: start.Span.Start, Message: "unexpected end of file, expected ';'"}
}

func (e *extraction) skipBody(open Token) error {
	depth := 1
	for e.pos < len(e.toks) {
		tok := e.toks[e.pos]
		e.pos++
		switch tok.Kind {
		case TokenLBrace:
			depth++
		case TokenRBrace:
			depth--
			if depth == 0 {
				return nil
			}
		}
	}
	return &SyntaxError{Pos: open.Span.Start, Message: "unterminated function body"}
}

func (e *extraction) statement() error {
	s, err := e.scanStatement()
	if err != nil {
		return err
	}
	if s.len() == 0 {
		return nil
	}
	first := s.first()
	s = stripAttributes(s)
	if s.len() == 0 || s.kind(0) == TokenSemicolon {
		return nil
	}

	switch s.kind(0) {
	case TokenTypedef:
		e.typedef(s, first)
	case TokenStruct, TokenUnion, TokenEnum:
		if hasBody(s, 0) {
			e.aggregateStatement(s, first)
			return nil
		}
		if s.len() <= 3 && s.kind(1) == TokenIdent && s.kind(2) != TokenIdent {
			e.log.Debugf("%s: skipping forward declaration %s", s.toks[0].Span.Start, s.trimEnd(TokenSemicolon).text())
			return nil
		}
		e.plain(s, first)
	default:
		e.plain(s, first)
	}
	return nil
}

var attributeWords = map[string]bool{
	"__attribute__": true,
	"__attribute":   true,
	"__declspec":    true,
	"_Alignas":      true,
	"alignas":       true,
}

// stripAttributes drops compiler attribute groups and __extension__.
func stripAttributes(s seq) seq {
	var out seq
	for k := 0; k < s.len(); k++ {
		tok := s.toks[k]
		if tok.Kind == TokenIdent && tok.Literal == "__extension__" {
			continue
		}
		if tok.Kind == TokenIdent && attributeWords[tok.Literal] && s.kind(k+1) == TokenLParen {
			k = s.matching(k + 1)
			continue
		}
		out.push(tok, s.idx[k])
	}
	return out
}

// hasBody reports whether the struct/union/enum keyword at k opens a body.
func hasBody(s seq, k int) bool {
	if s.kind(k+1) == TokenLBrace {
		return true
	}
	return s.kind(k+1) == TokenIdent && s.kind(k+2) == TokenLBrace
}

func (e *extraction) unsupported(s seq, what string) {
	text := s.trimEnd(TokenSemicolon).text()
	if len(text) > 60 {
		text = text[:57] + "..."
	}
	e.problem(s.toks[0].Span.Start, ProblemUnsupported, "skipping unsupported %s %q", what, text)
}

func (e *extraction) typedef(s seq, first int) {
	if s.kind(1) == TokenStruct || s.kind(1) == TokenUnion || s.kind(1) == TokenEnum {
		if !hasBody(s, 1) {
			name := lastWord(s.trimEnd(TokenSemicolon))
			if s.kind(2) == TokenIdent && name != "" && s.len() <= 5 {
				e.file.Aliases = append(e.file.Aliases, Alias{Name: name, Target: s.toks[2].Literal, Pos: s.toks[0].Span.Start})
				e.log.Debugf("%s: recorded typedef %s for %s %s", s.toks[0].Span.Start, name, s.toks[1].Literal, s.toks[2].Literal)
				return
			}
			e.unsupported(s, "typedef")
			return
		}
		d, next := e.aggregate(s, 1)
		names, primary := typedefNames(s.slice(next, s.len()).trimEnd(TokenSemicolon))
		switch {
		case d.Name == "":
			d.Name = primary
		case primary != d.Name:
			d.Alias = primary
		}
		if d.Name == "" {
			e.unsupported(s, "anonymous typedef")
			return
		}
		for _, n := range names {
			if n.name != d.Name && n.name != d.Alias {
				e.file.Aliases = append(e.file.Aliases, Alias{Name: n.name, Target: d.Name, Pos: n.pos})
			}
		}
		d.Text = aggregateText(d)
		d.Span.Start = s.toks[0].Span.Start
		d.Comment = e.leadingComment(first)
		d.Trailing = e.trailingComment(s.last())
		e.emit(d)
		return
	}
	e.unsupported(s, "typedef")
}

type typedefName struct {
	name string
	pos  Position
}

// typedefNames returns the names declared after a typedef body, and the
// one that names the type itself: the first plain declarator, or the
// first declarator when all of them are pointers or arrays.
func typedefNames(s seq) ([]typedefName, string) {
	var names []typedefName
	primary := ""
	for _, part := range s.splitAfter(TokenComma) {
		part = part.trimEnd(TokenComma)
		name := lastWord(part)
		if name == "" {
			continue
		}
		names = append(names, typedefName{name: name, pos: part.toks[0].Span.Start})
		plain := !part.hasDepth0(TokenStar) && !part.hasDepth0(TokenLBracket) && !part.hasDepth0(TokenLParen)
		if plain && primary == "" {
			primary = name
		}
	}
	if primary == "" && len(names) > 0 {
		primary = names[0].name
	}
	return names, primary
}

func (e *extraction) aggregateStatement(s seq, first int) {
	comment := e.leadingComment(first)
	d, next := e.aggregate(s, 0)
	rest := s.slice(next, s.len()).trimEnd(TokenSemicolon)
	trailing := e.trailingComment(s.last())

	if d.Name == "" {
		if rest.len() == 0 && d.Kind == DeclEnum {
			e.anonymousEnum(d, comment, trailing)
			return
		}
		if rest.len() == 0 {
			e.unsupported(s, "anonymous "+s.toks[0].Literal)
			return
		}
		vars := e.declarators(rest, s.toks[0].Literal+" {...}")
		if len(vars) > 0 {
			vars[0].Comment = comment
			vars[len(vars)-1].Trailing = trailing
		}
		e.emit(vars...)
		return
	}

	d.Comment = comment
	if rest.len() == 0 {
		d.Trailing = trailing
		e.emit(d)
		return
	}
	vars := e.declarators(rest, s.toks[0].Literal+" "+d.Name)
	if len(vars) > 0 {
		vars[len(vars)-1].Trailing = trailing
	}
	e.emit(d)
	e.emit(vars...)
}

// anonymousEnum emits the values of `enum { ... };` as top-level
// constants. The comment before the enum documents its first value.
func (e *extraction) anonymousEnum(d *Declaration, comment, trailing *Comment) {
	values := d.Members
	if len(values) == 0 {
		e.log.Debugf("%s: skipping empty anonymous enum", d.Span.Start)
		return
	}
	if values[0].Comment == nil {
		values[0].Comment = comment
	}
	if last := values[len(values)-1]; last.Trailing == nil {
		last.Trailing = trailing
	}
	e.emit(values...)
}

// aggregate parses the struct/union/enum whose keyword is at k. It
// returns the declaration and the index following the closing brace.
func (e *extraction) aggregate(s seq, k int) (*Declaration, int) {
	kw := s.toks[k]
	d := &Declaration{Span: Span{Start: kw.Span.Start}}
	k++
	if s.kind(k) == TokenIdent {
		d.Name = s.toks[k].Literal
		k++
	}
	closeBrace := s.matching(k)
	body := s.slice(k+1, closeBrace)

	if kw.Kind == TokenEnum {
		d.Kind = DeclEnum
		d.Members = e.enumerators(body)
	} else {
		d.Kind = DeclCompound
		d.Tag = kw.Literal
		d.Members = e.fields(body)
	}
	d.Text = aggregateText(d)
	d.Span.End = s.toks[closeBrace].Span.End
	return d, closeBrace + 1
}

func (e *extraction) fields(body seq) []*Declaration {
	var members []*Declaration
	for _, m := range body.splitAfter(TokenSemicolon) {
		m = stripAttributes(m)
		if m.len() == 0 || m.kind(0) == TokenSemicolon {
			continue
		}
		comment := e.leadingComment(m.first())
		kind := m.kind(0)
		if (kind == TokenStruct || kind == TokenUnion || kind == TokenEnum) && hasBody(m, 0) {
			d, next := e.aggregate(m, 0)
			rest := m.slice(next, m.len()).trimEnd(TokenSemicolon)
			trailing := e.trailingComment(m.last())
			switch {
			case d.Name != "":
				d.Comment = comment
				members = append(members, d)
				vars := e.declarators(rest, m.toks[0].Literal+" "+d.Name)
				if len(vars) > 0 {
					vars[len(vars)-1].Trailing = trailing
				} else {
					d.Trailing = trailing
				}
				members = append(members, vars...)
			case rest.len() > 0:
				d.Name = lastWord(rest)
				d.Text = aggregateText(d)
				d.Comment = comment
				d.Trailing = trailing
				members = append(members, d)
			default:
				members = append(members, d.Members...)
			}
			continue
		}

		vars := e.declarators(m.trimEnd(TokenSemicolon), "")
		if len(vars) == 0 {
			e.unsupported(m, "member")
			continue
		}
		vars[0].Comment = comment
		vars[len(vars)-1].Trailing = e.trailingComment(m.last())
		members = append(members, vars...)
	}
	return members
}

func (e *extraction) enumerators(body seq) []*Declaration {
	var values []*Declaration
	for _, part := range body.splitAfter(TokenComma) {
		value := part.trimEnd(TokenComma)
		if value.len() == 0 {
			continue
		}
		comment := e.leadingComment(part.first())
		trailing := e.trailingComment(part.last())

		expanded, ok := e.expandEnumerator(value, 0)
		if !ok {
			continue
		}
		value = expanded
		if value.kind(0) != TokenIdent {
			e.unsupported(value, "enumerator")
			continue
		}
		d := &Declaration{
			Kind:     DeclEnumValue,
			Name:     value.toks[0].Literal,
			Span:     Span{Start: value.toks[0].Span.Start, End: value.toks[value.len()-1].Span.End},
			Comment:  comment,
			Trailing: trailing,
		}
		if value.kind(1) == TokenAssign {
			d.Value = value.slice(2, value.len()).text()
		}
		d.Text = value.text()
		values = append(values, d)
	}
	return values
}

// expandEnumerator replaces a leading function-like macro invocation
// with its expansion.
func (e *extraction) expandEnumerator(value seq, depth int) (seq, bool) {
	if value.kind(0) != TokenIdent || value.kind(1) != TokenLParen {
		return value, true
	}
	name := value.toks[0]
	m, ok := e.macros[name.Literal]
	if !ok || !m.functionLike {
		e.problem(name.Span.Start, ProblemMacro, "cannot expand macro %s in enumerator", name.Literal)
		return value, false
	}
	if depth >= maxExpansionDepth {
		e.problem(name.Span.Start, ProblemMacro, "macro %s expands too deeply", name.Literal)
		return value, false
	}
	closeParen := value.matching(1)
	text, err := m.expand(macroArgs(value.slice(2, closeParen)))
	if err != nil {
		e.problem(name.Span.Start, ProblemMacro, "%v", err)
		return value, false
	}
	toks, err := tokenizeFragment(text)
	if err != nil {
		e.problem(name.Span.Start, ProblemMacro, "%v", err)
		return value, false
	}
	var out seq
	for _, tok := range toks {
		tok.Span = name.Span
		out.push(tok, value.idx[0])
	}
	for k := closeParen + 1; k < value.len(); k++ {
		out.push(value.toks[k], value.idx[k])
	}
	return e.expandEnumerator(out, depth+1)
}

func lastWord(s seq) string {
	depth := 0
	name := ""
	for _, tok := range s.toks {
		switch {
		case isOpen(tok.Kind):
			depth++
		case isClose(tok.Kind):
			depth--
		case depth == 0 && tok.Kind == TokenIdent:
			name = tok.Literal
		}
	}
	return name
}

func aggregateText(d *Declaration) string {
	if d.Kind == DeclEnum {
		return strings.TrimSpace("enum " + d.Name)
	}
	return strings.TrimSpace(d.Tag + " " + d.Name)
}
