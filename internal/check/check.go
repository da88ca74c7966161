// Package check implements visitcheck, an analyzer reporting case lists
// passed to visit.Match, visit.MustMatch and visit.Do that do not cover
// every variant of the sum type.
package check

import (
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
	"golang.org/x/tools/go/types/typeutil"

	"github.com/funvibe/visitgen/internal/diagnostics"
	"github.com/funvibe/visitgen/internal/gen"
	"github.com/funvibe/visitgen/internal/sumtype"
)

const doc = `check visit.Match, visit.MustMatch and visit.Do case lists for exhaustiveness

A call whose case list is a slice literal of visit.Of cases must name
every variant of the sum type, either as T or as *T. Missing variants
and duplicate cases are reported. Case lists built any other way are
not checked.`

// Analyzer is the visitcheck analyzer.
var Analyzer = &analysis.Analyzer{
	Name:     "visitcheck",
	Doc:      doc,
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      run,
}

// dispatchers are the functions taking a case list as second argument.
var dispatchers = map[string]bool{"Match": true, "MustMatch": true, "Do": true}

func run(pass *analysis.Pass) (any, error) {
	ins := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	ins.Preorder([]ast.Node{(*ast.CallExpr)(nil)}, func(n ast.Node) {
		call := n.(*ast.CallExpr)
		fn, ok := typeutil.Callee(pass.TypesInfo, call).(*types.Func)
		if !ok || !isRuntime(fn) || !dispatchers[fn.Name()] || len(call.Args) < 2 {
			return
		}
		checkCall(pass, call)
	})
	return nil, nil
}

func isRuntime(fn *types.Func) bool {
	return fn.Pkg() != nil && fn.Pkg().Path() == gen.RuntimeImportPath
}

func checkCall(pass *analysis.Pass, call *ast.CallExpr) {
	lit, ok := ast.Unparen(call.Args[1]).(*ast.CompositeLit)
	if !ok {
		return
	}
	sig, ok := pass.TypesInfo.TypeOf(call.Fun).(*types.Signature)
	if !ok || sig.Params().Len() == 0 {
		return
	}
	sum, _ := sumtype.FromType(pass.Fset, sig.Params().At(0).Type())
	if sum == nil || len(sum.Variants) == 0 {
		return
	}

	// Of matches both pointer forms, so T and *T name the same case.
	covered := make(map[*types.TypeName]ast.Node)
	for _, elt := range lit.Elts {
		v, ok := caseVariant(pass, elt)
		if !ok {
			// Not a plain visit.Of call; the list cannot be judged.
			return
		}
		if ptr, ok := v.(*types.Pointer); ok {
			v = ptr.Elem()
		}
		named, ok := types.Unalias(v).(*types.Named)
		if !ok {
			continue
		}
		if prev, dup := covered[named.Obj()]; dup {
			report(pass, elt, diagnostics.New(pass.Fset.Position(elt.Pos()), diagnostics.NonExhaustiveVariantList, named.Obj().Name(),
				"duplicate case for %s (first at %s)", types.TypeString(named, types.RelativeTo(pass.Pkg)), pass.Fset.Position(prev.Pos())))
			continue
		}
		covered[named.Obj()] = elt
	}

	if d, ok := missingVariants(pass.Fset, lit.Pos(), sum, covered); ok {
		report(pass, lit, d)
	}
}

// missingVariants builds the diagnostic for the variants of sum that
// have no case.
func missingVariants(fset *token.FileSet, pos token.Pos, sum *sumtype.SumType, covered map[*types.TypeName]ast.Node) (diagnostics.Diagnostic, bool) {
	var missing []string
	for _, v := range sum.Variants {
		if _, ok := covered[v.Obj]; !ok {
			missing = append(missing, v.Name)
		}
	}
	if len(missing) == 0 {
		return diagnostics.Diagnostic{}, false
	}
	return diagnostics.New(fset.Position(pos), diagnostics.NonExhaustiveVariantList, sum.Name,
		"non-exhaustive variant list for %s: missing %s", sum.Name, strings.Join(missing, ", ")), true
}

func report(pass *analysis.Pass, rng analysis.Range, d diagnostics.Diagnostic) {
	pass.Report(analysis.Diagnostic{
		Pos:      rng.Pos(),
		End:      rng.End(),
		Category: d.Kind.String(),
		Message:  d.Message,
	})
}

// caseVariant returns the variant type V of a visit.Of[S, V, T] call.
func caseVariant(pass *analysis.Pass, elt ast.Expr) (types.Type, bool) {
	call, ok := ast.Unparen(elt).(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return nil, false
	}
	fn, ok := typeutil.Callee(pass.TypesInfo, call).(*types.Func)
	if !ok || !isRuntime(fn) || fn.Name() != "Of" {
		return nil, false
	}
	t := pass.TypesInfo.TypeOf(call.Args[0])
	if t == nil {
		return nil, false
	}
	inner, ok := t.Underlying().(*types.Signature)
	if !ok || inner.Params().Len() != 1 {
		return nil, false
	}
	return inner.Params().At(0).Type(), true
}
