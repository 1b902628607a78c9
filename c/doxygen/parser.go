package doxygen

import (
	"fmt"
	"strings"
	"unicode"
)

// Problem is a recoverable defect found while parsing a comment.
type Problem struct {
	// Command is the command the problem concerns, without its prefix.
	Command string
	Message string
}

func (p Problem) Error() string {
	return p.Message
}

var admonitionTags = map[string]AdmonitionKind{
	"note":    Note,
	"warning": Warning,
	"todo":    Todo,
	"bug":     Bug,
	"remark":  Remark,
	"remarks": Remark,
}

// sectionCommands start a new logical section of the description.
var sectionCommands = map[string]bool{
	"brief": true, "short": true, "details": true,
	"param":  true,
	"return": true, "returns": true, "result": true,
	"pre": true, "post": true,
	"note": true, "warning": true, "todo": true, "bug": true, "remark": true, "remarks": true,
	"defgroup": true, "ingroup": true,
	"code": true, "verbatim": true,
}

var inlineCommands = map[string]bool{
	"ref": true, "p": true,
	"b": true, "e": true, "em": true, "a": true, "c": true,
}

var directions = map[string]Direction{
	"in":     DirectionIn,
	"out":    DirectionOut,
	"inout":  DirectionInOut,
	"in,out": DirectionInOut,
	"out,in": DirectionInOut,
}

// Parser is a recursive-descent parser for the Doxygen comment dialect.
type Parser struct {
	input []rune
	pos   int
	len   int

	doc      *Description
	problems []Problem
	details  bool
}

// Parse parses a documentation comment. The comment may carry its
// markers (/** */, /*! */, ///, //!, trailing < forms) or be bare text.
// Problems are returned alongside the description and never stop the
// parse.
func Parse(comment string) (*Description, []Problem) {
	text, trailing := Clean(comment)
	p := &Parser{
		input: []rune(text),
		doc:   &Description{},
	}
	p.len = len(p.input)
	p.parseDescription()
	p.promoteBrief(trailing)
	return p.doc, p.problems
}

// Clean strips comment markers and decoration from a comment and
// reports whether it used a trailing marker.
func Clean(comment string) (string, bool) {
	lines := strings.Split(strings.ReplaceAll(comment, "\r\n", "\n"), "\n")
	trailing := false
	block := false
	// end is the command closing the code block being copied, if any.
	end := ""
	for i, line := range lines {
		raw := strings.TrimRight(line, " \t")
		line = strings.TrimSpace(line)
		if i == len(lines)-1 {
			if trimmed, ok := strings.CutSuffix(line, "*/"); ok {
				line = strings.TrimRight(trimmed, "*")
			}
		}
		marked := true
		switch {
		case strings.HasPrefix(line, "/**"), strings.HasPrefix(line, "/*!"):
			line, block = line[3:], true
		case strings.HasPrefix(line, "/*"):
			line, block = line[2:], true
		case strings.HasPrefix(line, "///"), strings.HasPrefix(line, "//!"):
			line = line[3:]
		case strings.HasPrefix(line, "//"):
			line = line[2:]
		case block && strings.HasPrefix(line, "*"):
			line = line[1:]
		default:
			marked = false
		}
		if end != "" {
			// Code keeps its indentation.
			if !marked && strings.TrimSpace(raw) == line {
				line = raw
			}
			line = strings.TrimRight(line, " \t")
			if cmd, ok := leadingCommand(line); ok && cmd == end {
				end = ""
				line = strings.TrimSpace(line)
			}
			lines[i] = line
			continue
		}
		if i == 0 || !block {
			if rest, ok := strings.CutPrefix(line, "<"); ok {
				line, trailing = rest, true
			}
		}
		line = strings.TrimSpace(line)
		if isDecoration(line) {
			line = ""
		}
		if cmd, ok := leadingCommand(line); ok && (cmd == "code" || cmd == "verbatim") {
			if !strings.Contains(line, "end"+cmd) {
				end = "end" + cmd
			}
		}
		lines[i] = line
	}
	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n"), trailing
}

// leadingCommand returns the command a line starts with.
func leadingCommand(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if len(line) < 2 || (line[0] != '@' && line[0] != '\\') {
		return "", false
	}
	end := 1
	for end < len(line) && unicode.IsLetter(rune(line[end])) {
		end++
	}
	return line[1:end], end > 1
}

func isDecoration(line string) bool {
	if len(line) < 2 {
		return line == "*" || line == "/"
	}
	return strings.Trim(line, "*/") == ""
}

func (p *Parser) parseDescription() {
	for {
		p.skipSpace()
		if p.pos >= p.len {
			return
		}
		if name, ok := p.commandAt(p.pos); ok && sectionCommands[name] {
			p.parseSection(name)
			continue
		}
		if p.atListItem() {
			p.parseList()
			continue
		}
		start := p.pos
		if content := p.parseInlines(); len(content) > 0 {
			p.doc.Body = append(p.doc.Body, Paragraph{Content: content})
		}
		if p.pos == start {
			p.advance(1)
		}
	}
}

// promoteBrief turns the first paragraph into the brief when no brief
// was given and the body has more than one paragraph or list.
// Trailing comments are one-liners, so their single paragraph is
// always the brief.
func (p *Parser) promoteBrief(trailing bool) {
	doc := p.doc
	if len(doc.Brief) > 0 || len(doc.Body) == 0 || p.details {
		return
	}
	first, ok := doc.Body[0].(Paragraph)
	if !ok {
		return
	}
	text := 0
	for _, block := range doc.Body {
		if _, ok := block.(Admonition); !ok {
			text++
		}
	}
	if text >= 2 || trailing {
		doc.Brief = first.Content
		doc.Body = doc.Body[1:]
	}
}

func (p *Parser) parseSection(name string) {
	start := p.pos
	p.advance(1 + len([]rune(name)))
	doc := p.doc

	switch name {
	case "brief", "short":
		content := p.parseInlines()
		if len(doc.Brief) > 0 && len(content) > 0 {
			doc.Brief = append(doc.Brief, Text{Content: " "})
		}
		doc.Brief = append(doc.Brief, content...)

	case "details":
		if content := p.parseInlines(); len(content) > 0 {
			if len(doc.Body) == 0 {
				p.details = true
			}
			doc.Body = append(doc.Body, Paragraph{Content: content})
		}

	case "param":
		p.parseParam(start)

	case "return", "returns", "result":
		content := p.parseInlines()
		if len(doc.Returns) > 0 && len(content) > 0 {
			doc.Returns = append(doc.Returns, Text{Content: " "})
		}
		doc.Returns = append(doc.Returns, content...)

	case "pre":
		if content := p.parseInlines(); len(content) > 0 {
			doc.Pre = append(doc.Pre, content)
		}

	case "post":
		if content := p.parseInlines(); len(content) > 0 {
			doc.Post = append(doc.Post, content)
		}

	case "defgroup":
		p.parseDefgroup()

	case "code", "verbatim":
		p.parseCode(name)

	case "ingroup":
		ids := strings.Fields(p.restOfLine())
		if len(ids) == 0 {
			p.problem(name, "@ingroup without a group name")
		}
		doc.Groups = append(doc.Groups, ids...)

	default:
		kind := admonitionTags[name]
		if content := p.parseInlines(); len(content) > 0 {
			doc.Body = append(doc.Body, Admonition{Kind: kind, Content: content})
		}
	}
}

func (p *Parser) parseParam(start int) {
	dir := DirectionUnspecified
	p.skipHorizontalSpace()
	if p.peek() == '[' {
		end := p.indexFrom(p.pos, ']')
		if end < 0 {
			p.problem("param", "unterminated @param direction")
		} else {
			spec := strings.ReplaceAll(string(p.input[p.pos+1:end]), " ", "")
			d, ok := directions[spec]
			if !ok {
				p.problem("param", fmt.Sprintf("unknown @param direction %q", spec))
			}
			dir = d
			p.pos = end + 1
		}
	}
	p.skipHorizontalSpace()
	name := p.readWhile(isIdentRune)
	if name == "" {
		p.problem("param", fmt.Sprintf("@param without a parameter name: %q", p.lineAt(start)))
		p.parseInlines()
		return
	}
	p.doc.Params = append(p.doc.Params, Param{
		Name:      name,
		Direction: dir,
		Text:      p.parseInlines(),
	})
}

func (p *Parser) parseDefgroup() {
	p.skipHorizontalSpace()
	id := p.readWhile(isIdentRune)
	title := strings.TrimSpace(p.restOfLine())
	if id == "" {
		p.problem("defgroup", "@defgroup without a group name")
		return
	}
	if len(title) >= 2 && title[0] == '"' && title[len(title)-1] == '"' {
		title = title[1 : len(title)-1]
	}
	if title == "" {
		title = id
	}
	if p.doc.Group != nil {
		p.problem("defgroup", fmt.Sprintf("second @defgroup %s in one comment ignored", id))
		return
	}
	p.doc.Group = &GroupDef{ID: id, Title: title}
}

// parseCode copies the text up to the matching @endcode or
// @endverbatim. A {.ext} language hint after @code is dropped.
func (p *Parser) parseCode(name string) {
	if name == "code" && p.peek() == '{' {
		if end := p.indexFrom(p.pos, '}'); end >= 0 && end < p.indexOrEnd(p.pos, '\n') {
			p.pos = end + 1
		}
	}
	p.skipHorizontalSpace()
	if p.peek() == '\n' {
		p.advance(1)
	}
	start := p.pos
	closing := "end" + name
	end := p.findCommand(closing)
	if end < 0 {
		p.problem(name, fmt.Sprintf("@%s without @%s", name, closing))
		end = p.len
		p.pos = p.len
	} else {
		p.pos = end + 1 + len(closing)
	}
	text := dedent(string(p.input[start:end]))
	if text == "" {
		return
	}
	p.doc.Body = append(p.doc.Body, Code{Text: text, Verbatim: name == "verbatim"})
}

// findCommand returns the position of the next @name or \name at or
// after the cursor, or -1.
func (p *Parser) findCommand(name string) int {
	for i := p.pos; i < p.len; i++ {
		if p.input[i] != '@' && p.input[i] != '\\' {
			continue
		}
		end := i + 1
		for end < p.len && unicode.IsLetter(p.input[end]) {
			end++
		}
		if string(p.input[i+1:end]) == name {
			return i
		}
	}
	return -1
}

// dedent drops blank leading and trailing lines and the indentation
// common to the remaining lines.
func dedent(text string) string {
	lines := strings.Split(text, "\n")
	for len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	indent := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if indent < 0 || n < indent {
			indent = n
		}
	}
	for i, line := range lines {
		line = strings.TrimRight(line, " \t")
		if len(line) >= indent && indent > 0 {
			line = line[indent:]
		}
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func (p *Parser) parseList() {
	var list List
	for p.atListItem() {
		p.skipListMarker()
		list.Items = append(list.Items, p.parseInlines())
		if blank := p.skipSpace(); blank {
			break
		}
	}
	p.doc.Body = append(p.doc.Body, list)
}

// parseInlines reads text and inline commands until the end of the
// paragraph: a blank line, a list item, a section command or the end
// of input. Whitespace runs collapse to a single space.
func (p *Parser) parseInlines() []Inline {
	var nodes []Inline
	var buf strings.Builder
	pendingSpace := false

	flush := func() {
		if buf.Len() > 0 {
			nodes = append(nodes, Text{Content: buf.String()})
			buf.Reset()
		}
	}
	space := func() {
		if pendingSpace && (buf.Len() > 0 || len(nodes) > 0) {
			buf.WriteByte(' ')
		}
		pendingSpace = false
	}
	emit := func(node Inline) {
		space()
		flush()
		nodes = append(nodes, node)
	}

	for p.pos < p.len {
		ch := p.peek()

		if ch == '\n' {
			if p.paragraphEnds() {
				break
			}
			p.advance(1)
			pendingSpace = true
			continue
		}
		if unicode.IsSpace(ch) {
			p.advance(1)
			pendingSpace = true
			continue
		}

		if (ch == '@' || ch == '\\') && (p.peekAt(1) == '@' || p.peekAt(1) == '\\') {
			space()
			buf.WriteRune(p.peekAt(1))
			p.advance(2)
			continue
		}

		if name, ok := p.commandAt(p.pos); ok {
			if sectionCommands[name] {
				break
			}
			if inlineCommands[name] {
				if node := p.parseInlineCommand(name); node != nil {
					emit(node)
					continue
				}
			}
		}

		space()
		buf.WriteRune(ch)
		p.advance(1)
	}
	flush()
	return nodes
}

// parseInlineCommand reads an inline command and its argument. It
// returns nil, leaving the cursor in place, when the argument is
// missing so the command is kept as literal text.
func (p *Parser) parseInlineCommand(name string) Inline {
	start := p.pos
	p.advance(1 + len([]rune(name)))
	p.skipHorizontalSpace()

	switch name {
	case "ref", "p":
		arg := strings.TrimRight(p.readWhile(isRefRune), ":")
		if arg == "" {
			p.problem(name, fmt.Sprintf("@%s without a name", name))
			p.pos = start
			return nil
		}
		if p.match("()") {
			p.advance(2)
		}
		kind := RefLink
		if name == "p" {
			kind = RefParam
		}
		return &Ref{Kind: kind, Name: arg}
	}

	word := p.readWord()
	if word == "" {
		p.pos = start
		return nil
	}
	style := StyleEmphasis
	switch name {
	case "b":
		style = StyleBold
	case "c":
		style = StyleCode
	}
	return Styled{Style: style, Content: word}
}

// commandAt returns the name of a command starting at i. A command is
// an @ or \ at a word boundary followed by letters.
func (p *Parser) commandAt(i int) (string, bool) {
	if i >= p.len || (p.input[i] != '@' && p.input[i] != '\\') {
		return "", false
	}
	if i > 0 && isIdentRune(p.input[i-1]) {
		return "", false
	}
	end := i + 1
	for end < p.len && unicode.IsLetter(p.input[end]) {
		end++
	}
	if end == i+1 {
		return "", false
	}
	name := string(p.input[i+1 : end])
	if !sectionCommands[name] && !inlineCommands[name] {
		return name, false
	}
	return name, true
}

// paragraphEnds reports whether the newline at the cursor closes the
// current paragraph.
func (p *Parser) paragraphEnds() bool {
	next := p.pos + 1
	for next < p.len && p.input[next] != '\n' && unicode.IsSpace(p.input[next]) {
		next++
	}
	if next >= p.len || p.input[next] == '\n' {
		return true
	}
	save := p.pos
	p.pos = next
	list := p.atListItem()
	p.pos = save
	return list
}

func (p *Parser) atListItem() bool {
	if p.pos > 0 && p.input[p.pos-1] != '\n' {
		return false
	}
	return p.match("- ") || p.match("* ") || p.match("+ ") || p.match("-# ")
}

func (p *Parser) skipListMarker() {
	if p.match("-#") {
		p.advance(2)
	} else {
		p.advance(1)
	}
	p.skipHorizontalSpace()
}

// skipSpace skips whitespace and reports whether it crossed a blank line.
func (p *Parser) skipSpace() bool {
	newlines := 0
	for p.pos < p.len && unicode.IsSpace(p.peek()) {
		if p.peek() == '\n' {
			newlines++
		}
		p.advance(1)
	}
	return newlines >= 2
}

func (p *Parser) skipHorizontalSpace() {
	for p.pos < p.len && (p.peek() == ' ' || p.peek() == '\t') {
		p.advance(1)
	}
}

func (p *Parser) restOfLine() string {
	end := p.indexFrom(p.pos, '\n')
	if end < 0 {
		end = p.len
	}
	s := string(p.input[p.pos:end])
	p.pos = end
	return s
}

func (p *Parser) lineAt(i int) string {
	end := p.indexFrom(i, '\n')
	if end < 0 {
		end = p.len
	}
	return string(p.input[i:end])
}

func (p *Parser) readWhile(pred func(rune) bool) string {
	start := p.pos
	for p.pos < p.len && pred(p.peek()) {
		p.advance(1)
	}
	return string(p.input[start:p.pos])
}

// readWord reads up to the next whitespace, leaving trailing
// punctuation for the surrounding text.
func (p *Parser) readWord() string {
	end := p.pos
	for end < p.len && !unicode.IsSpace(p.input[end]) {
		end++
	}
	for end > p.pos && strings.ContainsRune(".,;:!?)", p.input[end-1]) {
		end--
	}
	word := string(p.input[p.pos:end])
	p.pos = end
	return word
}

func (p *Parser) indexOrEnd(i int, r rune) int {
	if j := p.indexFrom(i, r); j >= 0 {
		return j
	}
	return p.len
}

func (p *Parser) indexFrom(i int, r rune) int {
	for ; i < p.len; i++ {
		if p.input[i] == r {
			return i
		}
	}
	return -1
}

func (p *Parser) problem(command, message string) {
	p.problems = append(p.problems, Problem{Command: command, Message: message})
}

func (p *Parser) peek() rune {
	if p.pos >= p.len {
		return 0
	}
	return p.input[p.pos]
}

func (p *Parser) peekAt(offset int) rune {
	pos := p.pos + offset
	if pos >= p.len {
		return 0
	}
	return p.input[pos]
}

func (p *Parser) advance(n int) {
	p.pos += n
	if p.pos > p.len {
		p.pos = p.len
	}
}

func (p *Parser) match(s string) bool {
	for i, r := range []rune(s) {
		if p.peekAt(i) != r {
			return false
		}
	}
	return true
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isRefRune(r rune) bool {
	return isIdentRune(r) || r == ':'
}
