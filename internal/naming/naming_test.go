package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnake(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Shape", "shape"},
		{"V", "v"},
		{"VisitEnum", "visit_enum"},
		{"FooBar", "foo_bar"},
		{"Shape2D", "shape2_d"},
		{"HTTPRequest", "h_t_t_p_request"},
		{"lower", "lower"},
		{"snake_Case", "snake__case"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, Snake(tt.name))
		})
	}
}

func TestMangle(t *testing.T) {
	assert.Equal(t, "visit_shape", Mangle(DefaultFilePrefix, "Shape"))
	assert.Equal(t, "visit_with_shape", Mangle("visit_with_", "Shape"))
	assert.Equal(t, "visit_v", Mangle(DefaultFilePrefix, "V"))
	assert.Equal(t, "visit_visit_enum.go", FileName(DefaultFilePrefix, "VisitEnum"))
}

func TestSnakeIsDeterministic(t *testing.T) {
	for _, in := range []string{"Shape", "Expr", "BinaryOp", "V"} {
		assert.Equal(t, Snake(in), Snake(in))
	}
	// Distinct camel-case names map to distinct snake names.
	assert.NotEqual(t, Snake("FooBar"), Snake("Foobar"))
}

func TestFor(t *testing.T) {
	n := For("", "Shape")
	assert.Equal(t, Names{
		Visit:    "VisitShape",
		VisitMut: "VisitShapeMut",
		Inner:    "ShapeInner",
		InnerRef: "ShapeInnerRef",
	}, n)

	n = For("Walk", "Expr")
	assert.Equal(t, "WalkExpr", n.Visit)
	assert.Equal(t, "WalkExprMut", n.VisitMut)

	v, vm := Alias()
	assert.Equal(t, "visit", v)
	assert.Equal(t, "visitMut", vm)
}

func TestIsExported(t *testing.T) {
	assert.True(t, IsExported("Visit"))
	assert.False(t, IsExported("visit"))
	assert.False(t, IsExported(""))
}
