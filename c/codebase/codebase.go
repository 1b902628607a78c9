// Package codebase answers editor queries from a built documentation
// tree: hover text, declaration locations and symbol search.
package codebase

import (
	"strings"
	"sync"

	"github.com/dhamidi/hdoc/c"
	"github.com/dhamidi/hdoc/format"
)

type Codebase struct {
	mu    sync.RWMutex
	tree  *c.Tree
	style c.Style
	files map[string]*FileInfo
}

// FileInfo is an open editor buffer.
type FileInfo struct {
	Path    string
	Content []byte
}

// Symbol is an indexed entity as listed by Symbols.
type Symbol struct {
	Name      string
	ID        string
	Kind      c.Kind
	Location  c.Location
	Container string
}

// New returns a codebase serving tree. A nil tree answers every query
// with nothing until SetTree is called.
func New(tree *c.Tree) *Codebase {
	return &Codebase{
		tree:  tree,
		style: c.DefaultStyle,
		files: make(map[string]*FileInfo),
	}
}

func (cb *Codebase) SetTree(tree *c.Tree, style c.Style) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.tree = tree
	cb.style = style
}

func (cb *Codebase) UpdateFile(path string, content []byte) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.files[path] = &FileInfo{Path: path, Content: content}
}

func (cb *Codebase) RemoveFile(path string) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	delete(cb.files, path)
}

func (cb *Codebase) GetFile(path string) *FileInfo {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.files[path]
}

// lookup finds an entity by name, typedef alias or id.
func (cb *Codebase) lookup(word string) (c.Entity, bool) {
	if cb.tree == nil || word == "" {
		return nil, false
	}
	if e, ok := cb.tree.Find(word); ok {
		return e, true
	}
	return cb.tree.Lookup(word)
}

// Hover renders the signature and documentation of the entity named
// word as Markdown.
func (cb *Codebase) Hover(word string) (string, bool) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	e, ok := cb.lookup(word)
	if !ok {
		return "", false
	}
	var sb strings.Builder
	sb.WriteString("```c\n" + c.Signature(e, cb.style) + "\n```")
	if doc := format.DescriptionMarkdown(e, cb.style, nil); doc != "" {
		sb.WriteString("\n\n" + doc)
	}
	return sb.String(), true
}

// Definition returns where the entity named word is declared.
func (cb *Codebase) Definition(word string) (c.Location, bool) {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	e, ok := cb.lookup(word)
	if !ok {
		return c.Location{}, false
	}
	return e.Base().Location, true
}

// Symbols lists the indexed entities whose qualified name contains
// query, ignoring case. An empty query lists everything.
func (cb *Codebase) Symbols(query string) []Symbol {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	if cb.tree == nil {
		return nil
	}
	query = strings.ToLower(query)
	var symbols []Symbol
	for _, e := range cb.tree.All() {
		obj := e.Base()
		if !strings.Contains(strings.ToLower(obj.QualifiedName), query) {
			continue
		}
		symbols = append(symbols, Symbol{
			Name:      obj.Name,
			ID:        obj.ID,
			Kind:      e.Kind(),
			Location:  obj.Location,
			Container: container(obj.QualifiedName),
		})
	}
	return symbols
}

func container(qualifiedName string) string {
	if i := strings.LastIndex(qualifiedName, c.ScopeSeparator); i >= 0 {
		return qualifiedName[:i]
	}
	return ""
}

// WordAtPoint returns the identifier under the given position of an
// open file. line is 1-based, column 0-based.
func (cb *Codebase) WordAtPoint(path string, line, column int) string {
	f := cb.GetFile(path)
	if f == nil {
		return ""
	}
	return wordAt(f.Content, line, column)
}

func wordAt(content []byte, line, column int) string {
	lines := strings.Split(string(content), "\n")
	if line <= 0 || line > len(lines) {
		return ""
	}
	text := lines[line-1]
	if column < 0 || column > len(text) {
		return ""
	}

	start, end := column, column
	for start > 0 && isIdentByte(text[start-1]) {
		start--
	}
	for end < len(text) && isIdentByte(text[end]) {
		end++
	}
	word := text[start:end]
	if word == "" || (word[0] >= '0' && word[0] <= '9') {
		return ""
	}
	return word
}

func isIdentByte(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
