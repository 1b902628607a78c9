package parser

import (
	"fmt"
	"unicode/utf8"
)

type Lexer struct {
	input     []byte
	file      string
	pos       int
	line      int
	column    int
	lineStart bool
}

func NewLexer(input []byte, file string) *Lexer {
	return &Lexer{
		input:     input,
		file:      file,
		pos:       0,
		line:      1,
		column:    1,
		lineStart: true,
	}
}

func (l *Lexer) Position() Position {
	return Position{
		File:   l.file,
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

// NextToken returns the next token, including whitespace and comments.
func (l *Lexer) NextToken() Token {
	startPos := l.Position()

	if l.pos >= len(l.input) {
		return Token{Kind: TokenEOF, Span: Span{Start: startPos, End: startPos}}
	}

	ch := l.peek()

	if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f' || ch == '\v' {
		return l.scanWhitespace(startPos)
	}

	atLineStart := l.lineStart
	l.lineStart = false

	if ch == '/' && l.peekN(1) == '/' {
		return l.scanLineComment(startPos)
	}
	if ch == '/' && l.peekN(1) == '*' {
		return l.scanBlockComment(startPos)
	}
	if ch == '#' && atLineStart {
		return l.scanDirective(startPos)
	}
	if isIdentStart(ch) {
		return l.scanIdentOrKeyword(startPos)
	}
	if isDigit(ch) || (ch == '.' && isDigit(l.peekN(1))) {
		return l.scanNumber(startPos)
	}
	if ch == '\'' {
		return l.scanQuoted(startPos, '\'', TokenCharLiteral, "unterminated character literal")
	}
	if ch == '"' {
		return l.scanQuoted(startPos, '"', TokenStringLiteral, "unterminated string literal")
	}
	if ch == '.' && l.peekN(1) == '.' && l.peekN(2) == '.' {
		l.advanceN(3)
		return l.token(TokenEllipsis, startPos)
	}
	return l.scanOperator(startPos)
}

func (l *Lexer) token(kind TokenKind, start Position) Token {
	return Token{
		Kind:    kind,
		Span:    Span{Start: start, End: l.Position()},
		Literal: string(l.input[start.Offset:l.pos]),
	}
}

func (l *Lexer) errorToken(start Position, message string) Token {
	return Token{
		Kind:    TokenError,
		Span:    Span{Start: start, End: l.Position()},
		Literal: message,
	}
}

func (l *Lexer) scanWhitespace(start Position) Token {
	for {
		ch := l.peek()
		if ch == '\n' {
			l.lineStart = true
		} else if ch != ' ' && ch != '\t' && ch != '\r' && ch != '\f' && ch != '\v' {
			break
		}
		l.advance()
	}
	return l.token(TokenWhitespace, start)
}

func (l *Lexer) scanLineComment(start Position) Token {
	for l.pos < len(l.input) && l.peek() != '\n' {
		l.advance()
	}
	return l.token(TokenLineComment, start)
}

func (l *Lexer) scanBlockComment(start Position) Token {
	l.advanceN(2)
	for {
		if l.pos >= len(l.input) {
			return l.errorToken(start, "unterminated comment")
		}
		if l.peek() == '*' && l.peekN(1) == '/' {
			l.advanceN(2)
			return l.token(TokenComment, start)
		}
		l.advance()
	}
}

// scanDirective consumes a preprocessor line, joining backslash
// continuations. Line comments and trailing doc comments end the
// directive so they can be attached separately.
func (l *Lexer) scanDirective(start Position) Token {
	l.advance()
	for l.pos < len(l.input) {
		ch := l.peek()
		switch {
		case ch == '\\' && l.peekN(1) == '\n':
			l.advanceN(2)
		case ch == '\\' && l.peekN(1) == '\r' && l.peekN(2) == '\n':
			l.advanceN(3)
		case ch == '\n':
			return l.token(TokenDirective, start)
		case ch == '/' && l.peekN(1) == '/':
			return l.token(TokenDirective, start)
		case ch == '/' && l.peekN(1) == '*':
			if (l.peekN(2) == '*' || l.peekN(2) == '!') && l.peekN(3) == '<' {
				return l.token(TokenDirective, start)
			}
			commentStart := l.Position()
			if tok := l.scanBlockComment(commentStart); tok.Kind == TokenError {
				return tok
			}
		case ch == '"' || ch == '\'':
			quoteStart := l.Position()
			if tok := l.scanQuoted(quoteStart, ch, TokenStringLiteral, "unterminated string literal"); tok.Kind == TokenError {
				return tok
			}
		default:
			l.advance()
		}
	}
	return l.token(TokenDirective, start)
}

func (l *Lexer) scanIdentOrKeyword(start Position) Token {
	for isIdentPart(l.peek()) {
		l.advance()
	}
	tok := l.token(TokenIdent, start)
	tok.Kind = LookupKeyword(tok.Literal)
	return tok
}

func (l *Lexer) scanNumber(start Position) Token {
	for {
		ch := l.peek()
		switch {
		case isIdentPart(ch) || ch == '.':
			l.advance()
		case (ch == '+' || ch == '-') && l.pos > start.Offset:
			prev := l.input[l.pos-1]
			if prev != 'e' && prev != 'E' && prev != 'p' && prev != 'P' {
				return l.token(TokenNumber, start)
			}
			l.advance()
		default:
			return l.token(TokenNumber, start)
		}
	}
}

func (l *Lexer) scanQuoted(start Position, quote byte, kind TokenKind, message string) Token {
	l.advance()
	for {
		ch := l.peek()
		switch {
		case l.pos >= len(l.input) || ch == '\n':
			return l.errorToken(start, message)
		case ch == '\\':
			l.advanceN(2)
		case ch == quote:
			l.advance()
			return l.token(kind, start)
		default:
			l.advance()
		}
	}
}

var twoCharOperators = map[string]bool{
	"==": true, "!=": true, "<=": true, ">=": true,
	"->": true, "&&": true, "||": true, "<<": true,
	">>": true, "++": true, "--": true, "##": true,
}

var punctuation = map[byte]TokenKind{
	'{': TokenLBrace,
	'}': TokenRBrace,
	'(': TokenLParen,
	')': TokenRParen,
	'[': TokenLBracket,
	']': TokenRBracket,
	';': TokenSemicolon,
	',': TokenComma,
	'=': TokenAssign,
	'*': TokenStar,
	':': TokenColon,
}

func (l *Lexer) scanOperator(start Position) Token {
	if l.pos+1 < len(l.input) && twoCharOperators[string(l.input[l.pos:l.pos+2])] {
		l.advanceN(2)
		return l.token(TokenOperator, start)
	}
	ch := l.peek()
	if kind, ok := punctuation[ch]; ok {
		l.advance()
		return l.token(kind, start)
	}
	if ch >= utf8.RuneSelf {
		_, size := utf8.DecodeRune(l.input[l.pos:])
		l.advanceN(size)
		return l.token(TokenOperator, start)
	}
	l.advance()
	return l.token(TokenOperator, start)
}

// Tokenize lexes src completely, dropping whitespace. Comments and
// directives are kept. The first lexical error is returned as a
// *SyntaxError.
func Tokenize(src []byte, file string) ([]Token, error) {
	return tokenize(NewLexer(src, file))
}

// tokenizeFragment lexes text that never starts a source line, such as
// a macro body, so a leading # is an operator.
func tokenizeFragment(src string) ([]Token, error) {
	l := NewLexer([]byte(src), "")
	l.lineStart = false
	return tokenize(l)
}

func tokenize(l *Lexer) ([]Token, error) {
	var tokens []Token
	for {
		tok := l.NextToken()
		switch tok.Kind {
		case TokenEOF:
			return tokens, nil
		case TokenError:
			return nil, &SyntaxError{Pos: tok.Span.Start, Message: tok.Literal}
		case TokenWhitespace:
			continue
		}
		tokens = append(tokens, tok)
	}
}

// SyntaxError reports source that falls outside the recognized C subset.
type SyntaxError struct {
	Pos     Position
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
