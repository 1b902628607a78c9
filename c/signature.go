package c

import (
	"strings"
)

// Style controls how signatures are laid out. BasedOn names a
// clang-format base style; it decides which side a pointer's * binds
// to. A positive ColumnLimit puts parameters on their own lines when
// the signature would exceed it.
type Style struct {
	BasedOn     string
	ColumnLimit int
}

// DefaultStyle binds * to the name and never wraps.
var DefaultStyle = Style{BasedOn: "LLVM"}

// leftPointers reports whether * binds to the type, as in "char* s".
func (s Style) leftPointers() bool {
	switch strings.ToLower(s.BasedOn) {
	case "google", "chromium":
		return true
	}
	return false
}

const continuationIndent = "    "

// Signature reconstructs the declaration of an entity from its stored
// type and parameter text.
func Signature(e Entity, style Style) string {
	switch v := e.(type) {
	case *Function:
		head := declare(v.ReturnType, v.Name, style) + "("
		params := make([]string, len(v.Parameters))
		for i, p := range v.Parameters {
			params[i] = declare(p.Type, p.Name, style)
		}
		if len(params) == 0 {
			return head + "void)"
		}
		line := head + strings.Join(params, ", ") + ")"
		if style.ColumnLimit <= 0 || len(line) <= style.ColumnLimit || len(params) < 2 {
			return line
		}
		return head + "\n" + continuationIndent + strings.Join(params, ",\n"+continuationIndent) + ")"

	case *Define:
		var sb strings.Builder
		sb.WriteString("#define ")
		sb.WriteString(v.Name)
		if v.FunctionLike() {
			sb.WriteString("(" + strings.Join(v.Parameters, ", ") + ")")
		}
		if v.Value != "" {
			sb.WriteString(" " + v.Value)
		}
		return sb.String()

	case *Variable:
		decl := declare(v.Type, v.Name, style)
		if v.Initializer != "" {
			decl += " = " + v.Initializer
		}
		return decl

	case *EnumValue:
		if v.Initializer != "" {
			return v.Name + " = " + v.Initializer
		}
		return v.Name

	case *Enum:
		return "enum " + v.Name

	case *Compound:
		if v.IsGroup() {
			return v.Title
		}
		return string(v.Type) + " " + v.Name
	}
	return e.Base().Name
}

// TypeName lays out a normalized type without a declarator name.
func TypeName(typ string, style Style) string {
	return declare(typ, "", style)
}

// declare combines a normalized type with a declarator name. Function
// pointer and array types carry the name inside them.
func declare(typ, name string, style Style) string {
	if name == "" {
		if style.leftPointers() {
			return typ
		}
		base, stars := splitPointers(typ)
		if stars == "" {
			return typ
		}
		return base + " " + stars
	}
	if i := strings.Index(typ, "(*)"); i >= 0 {
		return typ[:i] + "(*" + name + ")" + typ[i+3:]
	}
	if i := strings.IndexByte(typ, '['); i >= 0 {
		return declare(typ[:i], name, style) + typ[i:]
	}
	base, stars := splitPointers(typ)
	if style.leftPointers() || stars == "" {
		return typ + " " + name
	}
	return base + " " + stars + name
}

func splitPointers(typ string) (base, stars string) {
	base = strings.TrimRight(typ, "*")
	return strings.TrimSpace(base), typ[len(base):]
}
