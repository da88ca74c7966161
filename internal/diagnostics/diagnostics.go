// Package diagnostics carries the positioned errors visitgen reports
// against user source.
package diagnostics

import (
	"fmt"
	"go/token"
	"sort"
	"strings"
)

// Kind classifies a diagnostic.
type Kind int

const (
	// ShapeViolation: a variant is not a struct with exactly one embedded field.
	ShapeViolation Kind = iota
	// NotAnEnum: the target declaration is not a sealed interface.
	NotAnEnum
	// NoVariants: the sealed interface has no implementing struct in its package.
	NoVariants
	// NameCollision: a generated identifier clashes with an existing one.
	NameCollision
	// NonExhaustiveVariantList: a visit call site omits or repeats a variant.
	NonExhaustiveVariantList
	// NotFound: a requested type name is not declared in the package.
	NotFound
)

func (k Kind) String() string {
	switch k {
	case ShapeViolation:
		return "shape violation"
	case NotAnEnum:
		return "not an enum"
	case NoVariants:
		return "no variants"
	case NameCollision:
		return "name collision"
	case NonExhaustiveVariantList:
		return "non-exhaustive variant list"
	case NotFound:
		return "not found"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Diagnostic is a single error attached to a source position.
type Diagnostic struct {
	Pos     token.Position
	Kind    Kind
	Subject string // the variant or declaration the message refers to
	Message string
}

// New builds a Diagnostic at pos.
func New(pos token.Position, kind Kind, subject, format string, args ...any) Diagnostic {
	return Diagnostic{
		Pos:     pos,
		Kind:    kind,
		Subject: subject,
		Message: fmt.Sprintf(format, args...),
	}
}

func (d Diagnostic) Error() string {
	if d.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", d.Pos, d.Kind, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// List is a set of diagnostics. A non-empty List is an error.
type List []Diagnostic

// Add appends d.
func (l *List) Add(d Diagnostic) {
	*l = append(*l, d)
}

// Err returns l as an error, or nil when empty.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// Sort orders diagnostics by file, then line, then column.
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		a, b := l[i].Pos, l[j].Pos
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
}

// Has reports whether l contains a diagnostic of kind k.
func (l List) Has(k Kind) bool {
	for _, d := range l {
		if d.Kind == k {
			return true
		}
	}
	return false
}

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	msgs := make([]string, len(l))
	for i, d := range l {
		msgs[i] = d.Error()
	}
	return fmt.Sprintf("%d errors:\n  %s", len(l), strings.Join(msgs, "\n  "))
}
