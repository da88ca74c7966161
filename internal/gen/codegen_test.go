package gen

import (
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/visitgen/internal/sumtype"
)

type importerFunc func(path string) (*types.Package, error)

func (f importerFunc) Import(path string) (*types.Package, error) { return f(path) }

// runtimeStub type-checks a package with the same API surface generated
// code uses from pkg/visit.
func runtimeStub(t *testing.T) *types.Package {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "visit.go", `package visit

func Unhandled(sumType string, v any) error { return nil }
`, 0)
	require.NoError(t, err)
	var conf types.Config
	pkg, err := conf.Check(RuntimeImportPath, fset, []*ast.File{f}, nil)
	require.NoError(t, err)
	return pkg
}

// checkFiles type-checks the given sources as one package.
func checkFiles(t *testing.T, srcs map[string]string) (*token.FileSet, *types.Package) {
	t.Helper()
	rt := runtimeStub(t)
	fset := token.NewFileSet()
	var files []*ast.File
	for name, src := range srcs {
		f, err := parser.ParseFile(fset, name, src, parser.ParseComments)
		require.NoError(t, err, name)
		files = append(files, f)
	}
	conf := types.Config{Importer: importerFunc(func(path string) (*types.Package, error) {
		if path == RuntimeImportPath {
			return rt, nil
		}
		t.Fatalf("unexpected import %q", path)
		return nil, nil
	})}
	pkg, err := conf.Check("example.com/shapes", fset, files, nil)
	require.NoError(t, err)
	return fset, pkg
}

const shapesSource = `package shapes

//visitgen:enum
type Shape interface{ isShape() }

type Circle struct{ Radius float64 }

func (c Circle) Area() float64 { return 3 * c.Radius * c.Radius }

type Rectangle struct{ Width, Height float64 }

func (r Rectangle) Area() float64 { return r.Width * r.Height }

type ShapeCircle struct{ Circle }
type ShapeRectangle struct{ Rectangle }

func (ShapeCircle) isShape()     {}
func (*ShapeRectangle) isShape() {}
`

func generateFor(t *testing.T, cfg *Config, src, name string, alias bool) GeneratedFile {
	t.Helper()
	fset, pkg := checkFiles(t, map[string]string{"src.go": src})
	sum, diags := sumtype.Resolve(fset, pkg, name)
	require.Empty(t, diags)

	f, err := NewCodeGenerator(cfg).Generate(&Target{Sum: sum, Dir: "/tmp/pkg", Alias: alias})
	require.NoError(t, err)
	return f
}

func TestGenerate_ShapesCompiles(t *testing.T) {
	f := generateFor(t, DefaultConfig(), shapesSource, "Shape", false)
	content := string(f.Content)
	t.Logf("--- %s ---\n%s", f.Path, content)

	assert.Equal(t, "/tmp/pkg/visit_shape.go", f.Path)
	assert.True(t, strings.HasPrefix(content, "// Code generated by visitgen. DO NOT EDIT."))
	assert.Contains(t, content, `visitpkg "github.com/funvibe/visitgen/pkg/visit"`)
	assert.Contains(t, content, "type ShapeInner interface {\n\tArea() float64\n}")
	assert.Contains(t, content, "func VisitShape[R any](v Shape, f func(ShapeInner) R) R {")
	assert.Contains(t, content, "func VisitShapeMut(v Shape, f func(ShapeInnerRef)) {")
	assert.Contains(t, content, "type ShapeInnerRef interface {\n\tArea() float64\n}")
	assert.NotContains(t, content, "default:")
	assert.NotContains(t, content, "func visit[")

	// Value and pointer cases for ShapeCircle, pointer only for
	// ShapeRectangle, in declaration order.
	iCircle := strings.Index(content, "case ShapeCircle:")
	iCirclePtr := strings.Index(content, "case *ShapeCircle:")
	iRect := strings.Index(content, "case *ShapeRectangle:")
	require.True(t, iCircle >= 0 && iCirclePtr >= 0 && iRect >= 0)
	assert.True(t, iCircle < iCirclePtr && iCirclePtr < iRect)
	assert.NotContains(t, content, "case ShapeRectangle:")

	// The source plus the generated file must type-check together.
	checkFiles(t, map[string]string{"src.go": shapesSource, "visit_shape.go": content})
}

func TestGenerate_ConcreteBinderWithAlias(t *testing.T) {
	src := `package shapes

type V interface{ isV() }

type A struct{ int }
type B struct{ int }

func (*A) isV() {}
func (*B) isV() {}
`
	f := generateFor(t, DefaultConfig(), src, "V", true)
	content := string(f.Content)

	assert.Equal(t, "/tmp/pkg/visit_v.go", f.Path)
	assert.Contains(t, content, "func VisitV[R any](v V, f func(int) R) R {")
	assert.Contains(t, content, "func VisitVMut(v V, f func(*int)) {")
	assert.Contains(t, content, "f(&x.int)")
	assert.Contains(t, content, "func visit[R any](v V, f func(int) R) R {")
	assert.Contains(t, content, "func visitMut(v V, f func(*int)) {")
	assert.NotContains(t, content, "interface {")

	checkFiles(t, map[string]string{"src.go": src, "visit_v.go": content})
}

func TestGenerate_AnyBinderAndNoBlockForm(t *testing.T) {
	src := `package shapes

type Token interface{ isToken() }

type Num struct{ N int }
type Word struct{ S string }

type TokNum struct{ Num }
type TokWord struct{ *Word }

func (TokNum) isToken()  {}
func (TokWord) isToken() {}
`
	off := false
	cfg := DefaultConfig()
	cfg.BlockForm = &off
	cfg.Prefix = "Walk"
	cfg.FilePrefix = "walk_"

	f := generateFor(t, cfg, src, "Token", false)
	content := string(f.Content)

	assert.Equal(t, "/tmp/pkg/walk_token.go", f.Path)
	assert.Contains(t, content, "func WalkToken[R any](v Token, f func(any) R) R {")
	assert.Contains(t, content, "return f(x.Word)")
	assert.NotContains(t, content, "WalkTokenMut")
	assert.NotContains(t, content, "TokenInner")

	checkFiles(t, map[string]string{"src.go": src, "walk_token.go": content})
}

func TestGenerate_Deterministic(t *testing.T) {
	a := generateFor(t, DefaultConfig(), shapesSource, "Shape", false)
	b := generateFor(t, DefaultConfig(), shapesSource, "Shape", false)
	assert.Equal(t, string(a.Content), string(b.Content))
}

func TestDefaultImportName(t *testing.T) {
	assert.Equal(t, "visit", defaultImportName(RuntimeImportPath))
	assert.Equal(t, "fmt", defaultImportName("fmt"))
	assert.Equal(t, "v9", defaultImportName("github.com/redis/go-redis/v9"))
}
