package shapes

import "github.com/funvibe/visitgen/pkg/visit"

type Circle struct{ Radius float64 }

func (c Circle) Area() float64 { return 3 * c.Radius * c.Radius }

type Rectangle struct{ Width, Height float64 }

func (r Rectangle) Area() float64 { return r.Width * r.Height }

type Triangle struct{ Base, Height float64 }

func (t Triangle) Area() float64 { return t.Base * t.Height / 2 }

type Areaer interface{ Area() float64 }

type Shape interface{ isShape() }

type ShapeCircle struct{ Circle }
type ShapeRectangle struct{ Rectangle }
type ShapeTriangle struct{ Triangle }

func (ShapeCircle) isShape()    {}
func (ShapeRectangle) isShape() {}
func (ShapeTriangle) isShape()  {}

func area(a Areaer) float64 { return a.Area() }

func complete(s Shape) (float64, error) {
	return visit.Match(s, []visit.Case[Shape, Areaer]{
		visit.Of[Shape](func(c ShapeCircle) Areaer { return c.Circle }),
		visit.Of[Shape](func(r *ShapeRectangle) Areaer { return r.Rectangle }),
		visit.Of[Shape](func(t ShapeTriangle) Areaer { return t.Triangle }),
	}, area)
}

func missing(s Shape) float64 {
	return visit.MustMatch(s, []visit.Case[Shape, Areaer]{ // want `non-exhaustive variant list for Shape: missing ShapeRectangle, ShapeTriangle`
		visit.Of[Shape](func(c ShapeCircle) Areaer { return c.Circle }),
	}, area)
}

func duplicate(s Shape) error {
	return visit.Do(s, []visit.Case[Shape, Areaer]{
		visit.Of[Shape](func(c ShapeCircle) Areaer { return c.Circle }),
		visit.Of[Shape](func(c ShapeCircle) Areaer { return c.Circle }), // want `duplicate case for ShapeCircle`
		visit.Of[Shape](func(r ShapeRectangle) Areaer { return r.Rectangle }),
		visit.Of[Shape](func(t ShapeTriangle) Areaer { return t.Triangle }),
	}, func(a Areaer) {})
}

func bothForms(s Shape) (float64, error) {
	return visit.Match(s, []visit.Case[Shape, Areaer]{
		visit.Of[Shape](func(c ShapeCircle) Areaer { return c.Circle }),
		visit.Of[Shape](func(c *ShapeCircle) Areaer { return c.Circle }), // want `duplicate case for ShapeCircle`
		visit.Of[Shape](func(r ShapeRectangle) Areaer { return r.Rectangle }),
		visit.Of[Shape](func(t ShapeTriangle) Areaer { return t.Triangle }),
	}, area)
}

// Lists not written as a literal are left alone.
func dynamic(s Shape, cases []visit.Case[Shape, Areaer]) (float64, error) {
	return visit.Match(s, cases, area)
}

func appended(s Shape) (float64, error) {
	cases := []visit.Case[Shape, Areaer]{
		visit.Of[Shape](func(c ShapeCircle) Areaer { return c.Circle }),
	}
	return visit.Match(s, append(cases, visit.Of[Shape](func(t ShapeTriangle) Areaer { return t.Triangle })), area)
}

// Not a sum type: no sealing method.
type Open interface{ Area() float64 }

func open(o Open) (float64, error) {
	return visit.Match(o, []visit.Case[Open, Areaer]{
		visit.Of[Open](func(c Circle) Areaer { return c }),
	}, area)
}
