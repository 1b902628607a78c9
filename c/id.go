package c

import "strings"

// ScopeSeparator joins a member's name to its parent's qualified name.
const ScopeSeparator = "::"

// IDFor returns the unique id of the entity with the given qualified
// name. Ids are safe to use as anchors and file names.
func IDFor(qualifiedName string) string {
	return strings.ReplaceAll(qualifiedName, ScopeSeparator, ".")
}

func qualify(scope, name string) string {
	if scope == "" {
		return name
	}
	return scope + ScopeSeparator + name
}

// scopes lists the enclosing scopes of a qualified name, innermost
// first: "a::b::c" yields "a::b", "a".
func scopes(qualifiedName string) []string {
	var out []string
	for {
		i := strings.LastIndex(qualifiedName, ScopeSeparator)
		if i < 0 {
			return out
		}
		qualifiedName = qualifiedName[:i]
		out = append(out, qualifiedName)
	}
}
