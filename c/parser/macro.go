package parser

import (
	"fmt"
	"strings"
)

const maxExpansionDepth = 8

type macro struct {
	name         string
	params       []string
	functionLike bool
	body         string
}

// parseDefine reads a #define directive line. Continuations and block
// comments are removed; the body has its whitespace collapsed.
func parseDefine(directive string) (*macro, bool) {
	line := strings.NewReplacer("\\\r\n", " ", "\\\n", " ").Replace(directive)
	line = stripBlockComments(line)
	line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "#"))
	if !strings.HasPrefix(line, "define") {
		return nil, false
	}
	line = strings.TrimLeft(line[len("define"):], " \t")

	end := 0
	for end < len(line) && isIdentPart(line[end]) {
		end++
	}
	if end == 0 || !isIdentStart(line[0]) {
		return nil, false
	}
	m := &macro{name: line[:end]}
	rest := line[end:]

	if strings.HasPrefix(rest, "(") {
		closeParen := strings.IndexByte(rest, ')')
		if closeParen < 0 {
			return nil, false
		}
		m.functionLike = true
		m.params = []string{}
		for _, param := range strings.Split(rest[1:closeParen], ",") {
			if param = strings.TrimSpace(param); param != "" {
				m.params = append(m.params, param)
			}
		}
		rest = rest[closeParen+1:]
	}
	m.body = strings.Join(strings.Fields(rest), " ")
	return m, true
}

// parsePredefined accepts NAME, NAME=VALUE and NAME(a,b)=VALUE.
func parsePredefined(def string) (*macro, bool) {
	name, value, _ := strings.Cut(def, "=")
	return parseDefine("#define " + strings.TrimSpace(name) + " " + value)
}

func stripBlockComments(s string) string {
	var b strings.Builder
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch {
		case quote != 0:
			b.WriteByte(ch)
			if ch == '\\' && i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			} else if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			quote = ch
			b.WriteByte(ch)
		case ch == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			b.WriteByte(' ')
			i += end + 3
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func (m *macro) definition() string {
	var b strings.Builder
	b.WriteString("#define ")
	b.WriteString(m.name)
	if m.functionLike {
		b.WriteString("(" + strings.Join(m.params, ", ") + ")")
	}
	if m.body != "" {
		b.WriteString(" " + m.body)
	}
	return b.String()
}

// expand substitutes args into a function-like macro body, handling the
// # and ## operators.
func (m *macro) expand(args []string) (string, error) {
	n := len(m.params)
	variadic := n > 0 && m.params[n-1] == "..."
	switch {
	case variadic && len(args) >= n-1:
	case len(args) == n:
	case n == 0 && len(args) == 1 && args[0] == "":
	default:
		return "", fmt.Errorf("macro %s expects %d arguments, got %d", m.name, n, len(args))
	}
	lookup := make(map[string]string, len(m.params))
	for i, param := range m.params {
		switch {
		case param == "...":
			if i < len(args) {
				lookup["__VA_ARGS__"] = strings.Join(args[i:], ", ")
			}
		case i < len(args):
			lookup[param] = args[i]
		}
	}

	toks, err := tokenizeFragment(m.body)
	if err != nil {
		return "", fmt.Errorf("macro %s: %w", m.name, err)
	}
	var pieces []string
	paste := false
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		switch {
		case tok.Literal == "##":
			paste = true
			continue
		case tok.Literal == "#" && i+1 < len(toks):
			if arg, ok := lookup[toks[i+1].Literal]; ok {
				i++
				pieces = appendPiece(pieces, fmt.Sprintf("%q", arg), paste)
				paste = false
				continue
			}
		}
		piece := tok.Literal
		if arg, ok := lookup[tok.Literal]; ok && tok.Kind == TokenIdent {
			piece = arg
		}
		pieces = appendPiece(pieces, piece, paste)
		paste = false
	}
	return strings.Join(pieces, " "), nil
}

func appendPiece(pieces []string, piece string, paste bool) []string {
	if paste && len(pieces) > 0 {
		pieces[len(pieces)-1] += piece
		return pieces
	}
	return append(pieces, piece)
}

// macroArgs splits the tokens between the parentheses of a macro
// invocation into argument texts.
func macroArgs(s seq) []string {
	var args []string
	for _, part := range s.splitAfter(TokenComma) {
		args = append(args, strings.TrimSpace(part.trimEnd(TokenComma).text()))
	}
	if len(args) == 0 {
		args = []string{""}
	}
	return args
}
