// Package naming derives the identifiers and file names visitgen emits
// for a sum type.
package naming

import (
	"strings"
	"unicode"
)

// DefaultFilePrefix is prepended to the snake-cased type name to form
// the generated file name.
const DefaultFilePrefix = "visit_"

// DefaultFuncPrefix is prepended to the type name to form the
// generated dispatch function names.
const DefaultFuncPrefix = "Visit"

// AliasName is the package-local convenience alias. It is not
// namespaced, so at most one sum type per package may request it.
const AliasName = "visit"

// Snake converts an upper-camel-case identifier to lower snake case.
// Every uppercase letter except the first character gets exactly one
// preceding underscore; runs of capitals are not collapsed.
func Snake(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range []rune(name) {
		if unicode.IsUpper(r) {
			if i != 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Mangle returns prefix followed by the snake-cased type name
// (e.g. "visit_" + "Shape" → "visit_shape").
func Mangle(prefix, name string) string {
	return prefix + Snake(name)
}

// FileName returns the generated file name for a sum type.
func FileName(prefix, name string) string {
	return Mangle(prefix, name) + ".go"
}

// Names holds every package-level identifier generated for one sum type.
type Names struct {
	Visit    string // expression-bodied dispatch, e.g. VisitShape
	VisitMut string // block-bodied dispatch, e.g. VisitShapeMut
	Inner    string // binder interface for Visit, e.g. ShapeInner
	InnerRef string // binder interface for VisitMut, e.g. ShapeInnerRef
}

// For returns the generated identifiers for sum type name under the
// given function prefix.
func For(prefix, name string) Names {
	if prefix == "" {
		prefix = DefaultFuncPrefix
	}
	return Names{
		Visit:    prefix + name,
		VisitMut: prefix + name + "Mut",
		Inner:    name + "Inner",
		InnerRef: name + "InnerRef",
	}
}

// Alias returns the convenience alias pair.
func Alias() (visit, visitMut string) {
	return AliasName, AliasName + "Mut"
}

// IsExported reports whether name starts with an uppercase letter.
func IsExported(name string) bool {
	for _, r := range name {
		return unicode.IsUpper(r)
	}
	return false
}
