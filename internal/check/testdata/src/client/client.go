package client

import (
	"shapes"

	"github.com/funvibe/visitgen/pkg/visit"
)

func inc(n *int) { *n++ }

type Counter interface{ isCounter() }

type A struct{ int }
type B struct{ int }

func (*A) isCounter() {}
func (*B) isCounter() {}

func bump(c Counter) error {
	return visit.Do(c, []visit.Case[Counter, *int]{ // want `non-exhaustive variant list for Counter: missing B`
		visit.Of[Counter](func(a *A) *int { return &a.int }),
	}, inc)
}

func bumpAll(c Counter) error {
	return visit.Do(c, []visit.Case[Counter, *int]{
		visit.Of[Counter](func(a *A) *int { return &a.int }),
		visit.Of[Counter](func(b *B) *int { return &b.int }),
	}, inc)
}

func name(s shapes.Shape) string {
	return visit.MustMatch(s, []visit.Case[shapes.Shape, string]{ // want `non-exhaustive variant list for Shape: missing ShapeTriangle`
		visit.Of[shapes.Shape](func(shapes.ShapeCircle) string { return "circle" }),
		visit.Of[shapes.Shape](func(shapes.ShapeRectangle) string { return "rectangle" }),
	}, func(s string) string { return s })
}
