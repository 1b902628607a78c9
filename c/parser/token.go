package parser

import "fmt"

type Position struct {
	File   string
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

type Span struct {
	Start Position
	End   Position
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenError
	TokenWhitespace
	TokenComment
	TokenLineComment
	TokenDirective

	// Literals
	TokenIdent
	TokenNumber
	TokenCharLiteral
	TokenStringLiteral

	// Keywords
	TokenTypedef
	TokenStruct
	TokenUnion
	TokenEnum
	TokenExtern
	TokenConst
	TokenStatic
	TokenInline
	TokenVolatile

	// Punctuation
	TokenLBrace
	TokenRBrace
	TokenLParen
	TokenRParen
	TokenLBracket
	TokenRBracket
	TokenSemicolon
	TokenComma
	TokenAssign
	TokenStar
	TokenColon
	TokenEllipsis
	TokenOperator
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:           "EOF",
	TokenError:         "Error",
	TokenWhitespace:    "Whitespace",
	TokenComment:       "Comment",
	TokenLineComment:   "LineComment",
	TokenDirective:     "Directive",
	TokenIdent:         "Ident",
	TokenNumber:        "Number",
	TokenCharLiteral:   "CharLiteral",
	TokenStringLiteral: "StringLiteral",
	TokenTypedef:       "typedef",
	TokenStruct:        "struct",
	TokenUnion:         "union",
	TokenEnum:          "enum",
	TokenExtern:        "extern",
	TokenConst:         "const",
	TokenStatic:        "static",
	TokenInline:        "inline",
	TokenVolatile:      "volatile",
	TokenLBrace:        "{",
	TokenRBrace:        "}",
	TokenLParen:        "(",
	TokenRParen:        ")",
	TokenLBracket:      "[",
	TokenRBracket:      "]",
	TokenSemicolon:     ";",
	TokenComma:         ",",
	TokenAssign:        "=",
	TokenStar:          "*",
	TokenColon:         ":",
	TokenEllipsis:      "...",
	TokenOperator:      "Operator",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", k)
}

type Token struct {
	Kind    TokenKind
	Span    Span
	Literal string
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Literal, t.Span.Start)
}

var keywords = map[string]TokenKind{
	"typedef":    TokenTypedef,
	"struct":     TokenStruct,
	"union":      TokenUnion,
	"enum":       TokenEnum,
	"extern":     TokenExtern,
	"const":      TokenConst,
	"static":     TokenStatic,
	"inline":     TokenInline,
	"__inline":   TokenInline,
	"__inline__": TokenInline,
	"volatile":   TokenVolatile,
}

// LookupKeyword returns the keyword kind for ident, or TokenIdent.
func LookupKeyword(ident string) TokenKind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return TokenIdent
}

// isWord reports whether the token carries an identifier-like literal.
func (t Token) isWord() bool {
	if t.Kind == TokenIdent {
		return true
	}
	_, ok := keywords[t.Literal]
	return ok
}
