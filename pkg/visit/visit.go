// Package visit dispatches an operation over the variants of a sum type
// without running visitgen.
//
// The caller lists every variant at the call site:
//
//	area, err := visit.Match(shape, []visit.Case[Shape, Areaer]{
//		visit.Of[Shape](func(c ShapeCircle) Areaer { return c.Circle }),
//		visit.Of[Shape](func(r ShapeRectangle) Areaer { return r.Rectangle }),
//	}, func(a Areaer) float64 { return a.Area() })
//
// The list is not checked against the sum type's real variants here; a
// value whose variant is missing yields ErrUnhandledVariant. The
// visitcheck analyzer reports incomplete lists statically.
//
// Generated dispatch functions also use Unhandled to report values that
// no case covers (a nil interface, for instance).
package visit

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

// ErrUnhandledVariant is matched by every error reporting a value that
// no case covers.
var ErrUnhandledVariant = errors.New("unhandled variant")

// UnhandledVariantError reports the dynamic type no case matched.
type UnhandledVariantError struct {
	SumType string
	Variant string // dynamic type of the value, "<nil>" for a nil interface
}

func (e *UnhandledVariantError) Error() string {
	return fmt.Sprintf("visit: %s: unhandled variant %s", e.SumType, e.Variant)
}

func (e *UnhandledVariantError) Unwrap() error {
	return ErrUnhandledVariant
}

// Unhandled builds the error for a value v of sum type sumType that no
// dispatch case matched.
func Unhandled(sumType string, v any) error {
	return &UnhandledVariantError{SumType: sumType, Variant: fmt.Sprintf("%T", v)}
}

// Case matches one variant of sum type S and extracts its inner value
// as a T.
type Case[S, T any] struct {
	variant string
	match   func(S) (T, bool)
}

// Variant names the variant type the case matches.
func (c Case[S, T]) Variant() string {
	return c.variant
}

// Of builds the case for variant V. inner extracts the wrapped value;
// for the block form return a pointer to it so writes are kept.
//
// The case matches V and its other pointer form, as generated dispatch
// does: a case for ShapeCircle also matches *ShapeCircle (dereferenced),
// and a case for *ShapeCircle also matches ShapeCircle (through a pointer
// to a copy, so writes are not seen by the caller).
func Of[S, V, T any](inner func(V) T) Case[S, T] {
	return Case[S, T]{
		variant: typeName[V](),
		match: func(s S) (T, bool) {
			if v, ok := any(s).(V); ok {
				return inner(v), true
			}
			if p, ok := any(s).(*V); ok {
				return inner(*p), true
			}
			if v, ok := addressed[V](s); ok {
				return inner(v), true
			}
			var zero T
			return zero, false
		},
	}
}

// addressed returns a pointer to a copy of s when V is *W and s holds a W.
func addressed[V any](s any) (V, bool) {
	var zero V
	vt := reflect.TypeFor[V]()
	if s == nil || vt.Kind() != reflect.Pointer || reflect.TypeOf(s) != vt.Elem() {
		return zero, false
	}
	p := reflect.New(vt.Elem())
	p.Elem().Set(reflect.ValueOf(s))
	return p.Interface().(V), true
}

// Match applies f to the inner value of whichever case matches v and
// returns its result. Cases are tried in order.
func Match[S, T, R any](v S, cases []Case[S, T], f func(T) R) (R, error) {
	for _, c := range cases {
		if inner, ok := c.match(v); ok {
			return f(inner), nil
		}
	}
	var zero R
	return zero, Unhandled(typeName[S](), v)
}

// MustMatch is Match for call sites whose case list is known to be
// complete. It panics with an *UnhandledVariantError otherwise.
func MustMatch[S, T, R any](v S, cases []Case[S, T], f func(T) R) R {
	r, err := Match(v, cases, f)
	if err != nil {
		panic(err)
	}
	return r
}

// Do is the block form of Match: f runs for its side effects.
func Do[S, T any](v S, cases []Case[S, T], f func(T)) error {
	for _, c := range cases {
		if inner, ok := c.match(v); ok {
			f(inner)
			return nil
		}
	}
	return Unhandled(typeName[S](), v)
}

// typeName renders T the way %T would, including for interface types.
func typeName[T any]() string {
	return strings.TrimPrefix(fmt.Sprintf("%T", (*T)(nil)), "*")
}
