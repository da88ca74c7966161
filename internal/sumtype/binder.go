package sumtype

import "go/types"

// Binder is the parameter type of a dispatch callback.
//
// When every variant wraps the same type the binder is that type.
// Otherwise it is an interface over the methods all inner types share,
// which is empty (any) when they share none.
type Binder struct {
	// Concrete is set when all inner types are identical.
	Concrete types.Type
	// Methods is the shared method set in method-set order. Only meaningful
	// when Concrete is nil.
	Methods []*types.Func
}

// IsAny reports whether the binder degrades to the empty interface.
func (b Binder) IsAny() bool {
	return b.Concrete == nil && len(b.Methods) == 0
}

// ValueBinder is the binder for the expression form, which passes the
// inner value itself.
func (s *SumType) ValueBinder() Binder {
	ts := make([]types.Type, 0, len(s.Variants))
	for _, v := range s.Variants {
		ts = append(ts, v.Inner())
	}
	return commonBinder(ts, s.Pkg())
}

// RefBinder is the binder for the block form, which passes a pointer to
// the inner value.
func (s *SumType) RefBinder() Binder {
	ts := make([]types.Type, 0, len(s.Variants))
	for _, v := range s.Variants {
		ts = append(ts, types.NewPointer(v.Inner()))
	}
	return commonBinder(ts, s.Pkg())
}

func commonBinder(ts []types.Type, pkg *types.Package) Binder {
	if len(ts) == 0 {
		return Binder{}
	}
	same := true
	for _, t := range ts[1:] {
		if !types.Identical(ts[0], t) {
			same = false
			break
		}
	}
	if same {
		return Binder{Concrete: ts[0]}
	}

	sets := make([]*types.MethodSet, len(ts))
	for i, t := range ts {
		sets[i] = types.NewMethodSet(t)
	}

	var shared []*types.Func
	first := sets[0]
	for i := 0; i < first.Len(); i++ {
		sel := first.At(i)
		fn, ok := sel.Obj().(*types.Func)
		if !ok {
			continue
		}
		if !fn.Exported() && fn.Pkg() != pkg {
			continue
		}
		if !Expressible(sel.Type(), pkg) {
			continue
		}
		inAll := true
		for _, ms := range sets[1:] {
			other := ms.Lookup(fn.Pkg(), fn.Name())
			if other == nil || !types.Identical(other.Type(), sel.Type()) {
				inAll = false
				break
			}
		}
		if inAll {
			shared = append(shared, fn)
		}
	}
	return Binder{Methods: shared}
}

// Signature returns fn's signature as seen through a method value, i.e.
// without the receiver.
func Signature(fn *types.Func) *types.Signature {
	sig := fn.Type().(*types.Signature)
	return types.NewSignatureType(nil, nil, nil, sig.Params(), sig.Results(), sig.Variadic())
}

// Expressible reports whether t can be written in source inside pkg,
// i.e. it names no unexported type of another package.
func Expressible(t types.Type, pkg *types.Package) bool {
	return expressible(t, pkg, make(map[types.Type]bool))
}

func expressible(t types.Type, pkg *types.Package, seen map[types.Type]bool) bool {
	if seen[t] {
		return true
	}
	seen[t] = true

	switch t := t.(type) {
	case *types.Basic, *types.TypeParam:
		return true
	case *types.Alias:
		return expressible(types.Unalias(t), pkg, seen)
	case *types.Named:
		obj := t.Obj()
		if obj.Pkg() != nil && obj.Pkg() != pkg && !obj.Exported() {
			return false
		}
		args := t.TypeArgs()
		for i := 0; i < args.Len(); i++ {
			if !expressible(args.At(i), pkg, seen) {
				return false
			}
		}
		return true
	case *types.Pointer:
		return expressible(t.Elem(), pkg, seen)
	case *types.Slice:
		return expressible(t.Elem(), pkg, seen)
	case *types.Array:
		return expressible(t.Elem(), pkg, seen)
	case *types.Chan:
		return expressible(t.Elem(), pkg, seen)
	case *types.Map:
		return expressible(t.Key(), pkg, seen) && expressible(t.Elem(), pkg, seen)
	case *types.Tuple:
		for i := 0; i < t.Len(); i++ {
			if !expressible(t.At(i).Type(), pkg, seen) {
				return false
			}
		}
		return true
	case *types.Signature:
		return expressible(t.Params(), pkg, seen) && expressible(t.Results(), pkg, seen)
	case *types.Struct:
		for i := 0; i < t.NumFields(); i++ {
			f := t.Field(i)
			if !f.Exported() && f.Pkg() != pkg {
				return false
			}
			if !expressible(f.Type(), pkg, seen) {
				return false
			}
		}
		return true
	case *types.Interface:
		for i := 0; i < t.NumMethods(); i++ {
			m := t.Method(i)
			if !m.Exported() && m.Pkg() != pkg {
				return false
			}
			if !expressible(m.Type(), pkg, seen) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
