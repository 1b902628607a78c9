package diag

import (
	"fmt"
	"sort"
	"strings"
)

// Warning codes.
const (
	CodeUnresolvedRef     = "unresolved-ref"
	CodeMalformedParam    = "malformed-param"
	CodeMultipleIngroup   = "multiple-ingroup"
	CodeUnsupportedDecl   = "unsupported-decl"
	CodeDuplicateDefgroup = "duplicate-defgroup"
	CodeMacroExpansion    = "macro-expansion"
	CodeCommentSyntax     = "comment-syntax"
)

// Warning is a recoverable problem. The build carries on past it.
type Warning struct {
	Code    string `json:"code" yaml:"code"`
	File    string `json:"file,omitempty" yaml:"file,omitempty"`
	Line    int    `json:"line,omitempty" yaml:"line,omitempty"`
	Column  int    `json:"column,omitempty" yaml:"column,omitempty"`
	Message string `json:"message" yaml:"message"`
}

func (w Warning) String() string {
	var sb strings.Builder
	if w.File != "" {
		sb.WriteString(w.File)
		if w.Line > 0 {
			fmt.Fprintf(&sb, ":%d", w.Line)
			if w.Column > 0 {
				fmt.Fprintf(&sb, ":%d", w.Column)
			}
		}
		sb.WriteString(": ")
	}
	fmt.Fprintf(&sb, "%s [%s]", w.Message, w.Code)
	return sb.String()
}

// Report accumulates warnings in the order they are added. It is not
// safe for concurrent use; builders keep one report per worker and
// merge them in a fixed order.
type Report struct {
	warnings []Warning
}

// Add appends a warning.
func (r *Report) Add(w Warning) {
	r.warnings = append(r.warnings, w)
}

// Addf appends a warning with a formatted message.
func (r *Report) Addf(code, file string, line, column int, format string, args ...any) {
	r.Add(Warning{Code: code, File: file, Line: line, Column: column, Message: fmt.Sprintf(format, args...)})
}

// Merge appends every warning of other.
func (r *Report) Merge(other *Report) {
	if other == nil {
		return
	}
	r.warnings = append(r.warnings, other.warnings...)
}

func (r *Report) Warnings() []Warning {
	if r == nil {
		return nil
	}
	return r.warnings
}

func (r *Report) Len() int {
	if r == nil {
		return 0
	}
	return len(r.warnings)
}

// Count returns the number of warnings with the given code.
func (r *Report) Count(code string) int {
	n := 0
	for _, w := range r.Warnings() {
		if w.Code == code {
			n++
		}
	}
	return n
}

// Summary renders per-code counts, sorted by code, e.g. "1 malformed-param, 2 unresolved-ref".
func (r *Report) Summary() string {
	if r.Len() == 0 {
		return "no warnings"
	}
	counts := map[string]int{}
	var codes []string
	for _, w := range r.warnings {
		if counts[w.Code] == 0 {
			codes = append(codes, w.Code)
		}
		counts[w.Code]++
	}
	sort.Strings(codes)
	parts := make([]string, len(codes))
	for i, code := range codes {
		parts[i] = fmt.Sprintf("%d %s", counts[code], code)
	}
	return strings.Join(parts, ", ")
}
