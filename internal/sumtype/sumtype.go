// Package sumtype recognises sum types in type-checked Go packages.
//
// A sum type is a sealed interface: a non-generic interface declaring
// at least one unexported method, so that only its own package can
// implement it. Its variants are the struct types of that package that
// implement the interface, each wrapping exactly one embedded field.
package sumtype

import (
	"go/token"
	"go/types"
	"sort"

	"github.com/funvibe/visitgen/internal/diagnostics"
)

// ShapeMessage is reported for every variant whose shape is not a
// struct with exactly one embedded field.
const ShapeMessage = "only struct variants with exactly one embedded field are supported"

// SumType is a sealed interface together with its variants.
type SumType struct {
	Name     string
	Obj      *types.TypeName
	Iface    *types.Interface
	Variants []*Variant // declaration order
}

// Pkg returns the package declaring the sum type.
func (s *SumType) Pkg() *types.Package {
	return s.Obj.Pkg()
}

// Pos returns the position of the declaration name.
func (s *SumType) Pos() token.Pos {
	return s.Obj.Pos()
}

// Variant is one named type implementing the sum interface.
type Variant struct {
	Name string
	Obj  *types.TypeName

	// Field is the single embedded field. Nil when the variant failed
	// shape validation.
	Field *types.Var

	// PointerOnly is set when only *T implements the interface.
	PointerOnly bool
}

// FieldName is the selector used to reach the inner value.
func (v *Variant) FieldName() string {
	return v.Field.Name()
}

// Inner is the type of the wrapped value.
func (v *Variant) Inner() types.Type {
	return v.Field.Type()
}

// Resolve looks up name in pkg and returns it as a sum type. The
// returned diagnostics cover the declaration itself (NotFound,
// NotAnEnum, NoVariants) and every malformed variant (ShapeViolation).
// The SumType is nil only when the declaration could not be recognised
// at all; when variants are malformed it is returned with them included
// so callers can still inspect the variant list.
func Resolve(fset *token.FileSet, pkg *types.Package, name string) (*SumType, diagnostics.List) {
	var diags diagnostics.List

	obj := pkg.Scope().Lookup(name)
	if obj == nil {
		diags.Add(diagnostics.New(token.Position{}, diagnostics.NotFound, name,
			"type %s not found in package %s", name, pkg.Path()))
		return nil, diags
	}

	tn, ok := obj.(*types.TypeName)
	if !ok {
		diags.Add(notAnEnum(fset, obj, "%s is not a type declaration", name))
		return nil, diags
	}
	iface, reason := sealed(tn)
	if iface == nil {
		diags.Add(notAnEnum(fset, obj, "%s %s", name, reason))
		return nil, diags
	}

	sum := &SumType{Name: name, Obj: tn, Iface: iface}
	named := tn.Type().(*types.Named)

	for _, cand := range candidates(pkg, named, iface) {
		v := &Variant{Name: cand.tn.Name(), Obj: cand.tn, PointerOnly: cand.pointerOnly}
		if field, ok := singleEmbedded(cand.tn); ok {
			v.Field = field
		} else {
			diags.Add(diagnostics.New(fset.Position(cand.tn.Pos()), diagnostics.ShapeViolation, v.Name,
				"variant %s of %s: %s", v.Name, name, ShapeMessage))
		}
		sum.Variants = append(sum.Variants, v)
	}

	if len(sum.Variants) == 0 {
		diags.Add(diagnostics.New(fset.Position(tn.Pos()), diagnostics.NoVariants, name,
			"sum type %s has no variants: no struct type in %s implements it", name, pkg.Path()))
	}

	return sum, diags
}

// FromType resolves t as a sum type when t is a named sealed interface.
// Used by the exhaustiveness checker, which sees sum types from other
// packages only through their types.
func FromType(fset *token.FileSet, t types.Type) (*SumType, diagnostics.List) {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return nil, nil
	}
	return Resolve(fset, named.Obj().Pkg(), named.Obj().Name())
}

func notAnEnum(fset *token.FileSet, obj types.Object, format string, args ...any) diagnostics.Diagnostic {
	return diagnostics.New(fset.Position(obj.Pos()), diagnostics.NotAnEnum, obj.Name(), format, args...)
}

// sealed returns the interface underlying tn, or nil and the reason tn
// cannot be a sum type.
func sealed(tn *types.TypeName) (*types.Interface, string) {
	if tn.IsAlias() {
		return nil, "is an alias; declare the sum type as a defined interface type"
	}
	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil, "is not a defined type"
	}
	if named.TypeParams().Len() > 0 {
		return nil, "is generic; generic sum types are not supported"
	}
	iface, ok := named.Underlying().(*types.Interface)
	if !ok {
		return nil, "is not an interface; a sum type must be a sealed interface"
	}
	if !iface.IsMethodSet() {
		return nil, "is a constraint interface, not a sealed interface"
	}
	for i := 0; i < iface.NumMethods(); i++ {
		if !iface.Method(i).Exported() {
			return iface, ""
		}
	}
	return nil, "is not sealed; declare an unexported marker method"
}

type candidate struct {
	tn          *types.TypeName
	pointerOnly bool
}

// candidates lists the defined, non-interface types of pkg that
// implement iface through T or *T, ordered by declaration position.
func candidates(pkg *types.Package, self *types.Named, iface *types.Interface) []candidate {
	scope := pkg.Scope()
	var out []candidate
	for _, name := range scope.Names() {
		tn, ok := scope.Lookup(name).(*types.TypeName)
		if !ok || tn.IsAlias() {
			continue
		}
		named, ok := tn.Type().(*types.Named)
		if !ok || named == self || named.TypeParams().Len() > 0 {
			continue
		}
		if types.IsInterface(named) {
			continue
		}
		switch {
		case types.Implements(named, iface):
			out = append(out, candidate{tn: tn})
		case types.Implements(types.NewPointer(named), iface):
			out = append(out, candidate{tn: tn, pointerOnly: true})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].tn.Pos() < out[j].tn.Pos()
	})
	return out
}

// singleEmbedded returns the only field of tn's struct when that field
// is embedded.
func singleEmbedded(tn *types.TypeName) (*types.Var, bool) {
	st, ok := tn.Type().Underlying().(*types.Struct)
	if !ok || st.NumFields() != 1 {
		return nil, false
	}
	f := st.Field(0)
	if !f.Embedded() {
		return nil, false
	}
	return f, true
}
