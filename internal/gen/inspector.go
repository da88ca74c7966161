package gen

import (
	"context"
	"fmt"
	"go/ast"
	"go/token"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/tools/go/packages"

	"github.com/funvibe/visitgen/internal/diagnostics"
	"github.com/funvibe/visitgen/internal/naming"
	"github.com/funvibe/visitgen/internal/sumtype"
)

// Directive marks a sealed interface for generation when it appears as
// a line of the declaration's doc comment.
const Directive = "//visitgen:enum"

// generatorTag identifies files visitgen wrote itself.
const generatorTag = "by visitgen"

// InspectResult holds the sum types found in one package.
type InspectResult struct {
	// Pkg is the loaded package.
	Pkg *packages.Package

	// Targets are the sum types that passed validation, in declaration
	// order.
	Targets []*Target

	// Diagnostics collects every problem found, including those on
	// targets that were dropped.
	Diagnostics diagnostics.List
}

// Target is one sum type ready for code generation.
type Target struct {
	Sum *sumtype.SumType

	// Dir is the directory holding the declaration; the generated file
	// is written next to it.
	Dir string

	// Alias is set when the convenience aliases should be emitted.
	Alias bool
}

// Inspector loads Go packages and extracts the sum types to generate.
type Inspector struct {
	cfg    *Config
	logger *slog.Logger

	// dir is the working directory for package loading.
	dir string
}

// NewInspector creates a new Inspector.
func NewInspector(cfg *Config, dir string, logger *slog.Logger) *Inspector {
	return &Inspector{cfg: cfg, dir: dir, logger: logger}
}

// Inspect loads the packages matching patterns and resolves their sum
// types.
func (ins *Inspector) Inspect(ctx context.Context, patterns ...string) ([]*InspectResult, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	pkgs, err := ins.loadPackages(ctx, patterns)
	if err != nil {
		return nil, err
	}

	results := make([]*InspectResult, 0, len(pkgs))
	for _, pkg := range pkgs {
		results = append(results, ins.inspectPackage(pkg))
	}

	// A configured type applies to whichever matched package declares
	// it; it is missing only when none does. Such names are reported on
	// the first package.
	for _, name := range ins.cfg.Types {
		declared := false
		for _, pkg := range pkgs {
			if pkg.Types.Scope().Lookup(name) != nil {
				declared = true
				break
			}
		}
		if !declared {
			results[0].Diagnostics.Add(diagnostics.New(token.Position{}, diagnostics.NotFound, name,
				"type %s not found in packages matching %s", name, strings.Join(patterns, " ")))
		}
	}
	return results, nil
}

// loadPackages loads the specified Go packages using go/packages.
func (ins *Inspector) loadPackages(ctx context.Context, patterns []string) ([]*packages.Package, error) {
	cfg := &packages.Config{
		Context: ctx,
		Mode: packages.NeedName |
			packages.NeedFiles |
			packages.NeedTypes |
			packages.NeedTypesInfo |
			packages.NeedSyntax,
		Dir:        ins.dir,
		BuildFlags: ins.cfg.BuildFlags(),
	}

	ins.logger.Debug("loading packages", "patterns", patterns, "dir", ins.dir)
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages matched %s", strings.Join(patterns, " "))
	}

	// Type errors are expected: user code may already call the functions
	// this run is about to generate, and files visitgen wrote earlier may
	// be stale. Sum types are still resolvable from the partial type
	// information. Only list and parse errors, or a package without types,
	// stop the run.
	var errs []string
	for _, pkg := range pkgs {
		generated := generatedFiles(pkg)
		for _, e := range pkg.Errors {
			if e.Kind == packages.TypeError && pkg.Types != nil {
				if inGenerated(e, generated) {
					ins.logger.Debug("ignoring error in generated file", "pkg", pkg.PkgPath, "err", e.Msg)
				} else {
					ins.logger.Info("ignoring type error", "pkg", pkg.PkgPath, "pos", e.Pos, "err", e.Msg)
				}
				continue
			}
			errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors:\n  %s", strings.Join(errs, "\n  "))
	}

	return pkgs, nil
}

// inspectPackage resolves the sum types of one package.
func (ins *Inspector) inspectPackage(pkg *packages.Package) *InspectResult {
	res := &InspectResult{Pkg: pkg}
	generated := generatedFiles(pkg)

	names := ins.targetNames(pkg, generated, &res.Diagnostics)
	ins.logger.Debug("sum types requested", "pkg", pkg.PkgPath, "types", names)

	for _, name := range names {
		sum, diags := sumtype.Resolve(pkg.Fset, pkg.Types, name)
		if len(diags) > 0 {
			for _, d := range diags {
				res.Diagnostics.Add(d)
			}
			ins.logger.Info("skipping sum type", "pkg", pkg.PkgPath, "type", name, "errors", len(diags))
			continue
		}
		pos := pkg.Fset.Position(sum.Pos())
		res.Targets = append(res.Targets, &Target{
			Sum:   sum,
			Dir:   filepath.Dir(pos.Filename),
			Alias: ins.cfg.Alias,
		})
	}

	res.Targets = ins.checkCollisions(pkg, res.Targets, generated, &res.Diagnostics)
	return res
}

// targetNames returns the configured type names pkg declares followed by every type
// carrying the directive, without duplicates. A directive on anything
// other than a type declaration is reported as NotAnEnum.
func (ins *Inspector) targetNames(pkg *packages.Package, generated map[string]bool, diags *diagnostics.List) []string {
	var names []string
	seen := make(map[string]bool)
	add := func(name string) {
		if !seen[name] {
			names = append(names, name)
			seen[name] = true
		}
	}

	for _, name := range ins.cfg.Types {
		if pkg.Types.Scope().Lookup(name) != nil {
			add(name)
		}
	}

	for _, file := range pkg.Syntax {
		if generated[pkg.Fset.Position(file.Package).Filename] {
			continue
		}
		for _, decl := range file.Decls {
			switch decl := decl.(type) {
			case *ast.GenDecl:
				for _, spec := range decl.Specs {
					switch spec := spec.(type) {
					case *ast.TypeSpec:
						if hasDirective(spec.Doc) || (len(decl.Specs) == 1 && hasDirective(decl.Doc)) {
							add(spec.Name.Name)
						}
					case *ast.ValueSpec:
						if hasDirective(spec.Doc) || (len(decl.Specs) == 1 && hasDirective(decl.Doc)) {
							for _, n := range spec.Names {
								diags.Add(misplaced(pkg.Fset, n))
							}
						}
					}
				}
			case *ast.FuncDecl:
				if hasDirective(decl.Doc) {
					diags.Add(misplaced(pkg.Fset, decl.Name))
				}
			}
		}
	}
	return names
}

func misplaced(fset *token.FileSet, id *ast.Ident) diagnostics.Diagnostic {
	return diagnostics.New(fset.Position(id.Pos()), diagnostics.NotAnEnum, id.Name,
		"%s is not a type declaration; %s applies only to sealed interfaces", id.Name, Directive)
}

// checkCollisions drops targets whose generated identifiers clash with
// identifiers the user declared, with each other, or with another
// target's convenience aliases.
func (ins *Inspector) checkCollisions(pkg *packages.Package, targets []*Target, generated map[string]bool, diags *diagnostics.List) []*Target {
	scope := pkg.Types.Scope()
	owner := make(map[string]string) // generated identifier → sum type
	// Identifiers every target may emit; only the scope check applies.
	shared := map[string]bool{runtimeImportName: true}
	v, vm := naming.Alias()
	shared[v], shared[vm] = true, true
	var aliased []*Target

	kept := targets[:0]
	for _, t := range targets {
		ok := true
		for _, id := range ins.generatedIdents(t) {
			if obj := scope.Lookup(id); obj != nil && !generated[pkg.Fset.Position(obj.Pos()).Filename] {
				diags.Add(diagnostics.New(pkg.Fset.Position(t.Sum.Pos()), diagnostics.NameCollision, t.Sum.Name,
					"generated identifier %s for %s collides with %s declared at %s",
					id, t.Sum.Name, obj.Name(), pkg.Fset.Position(obj.Pos())))
				ok = false
				continue
			}
			if shared[id] {
				continue
			}
			if prev, dup := owner[id]; dup {
				diags.Add(diagnostics.New(pkg.Fset.Position(t.Sum.Pos()), diagnostics.NameCollision, t.Sum.Name,
					"generated identifier %s for %s is also generated for %s", id, t.Sum.Name, prev))
				ok = false
				continue
			}
			owner[id] = t.Sum.Name
		}
		if !ok {
			continue
		}
		if t.Alias {
			aliased = append(aliased, t)
		}
		kept = append(kept, t)
	}

	if len(aliased) > 1 {
		for _, t := range aliased {
			diags.Add(diagnostics.New(pkg.Fset.Position(t.Sum.Pos()), diagnostics.NameCollision, t.Sum.Name,
				"convenience alias %s requested by %d sum types in package %s; disable alias or move %s to its own package",
				v, len(aliased), pkg.PkgPath, t.Sum.Name))
		}
		out := kept[:0]
		for _, t := range kept {
			if !t.Alias {
				out = append(out, t)
			}
		}
		kept = out
	}
	return kept
}

// generatedIdents lists the package-level identifiers a target emits.
// Binder interfaces are listed even when not needed, so that adding a
// method later cannot introduce a collision.
func (ins *Inspector) generatedIdents(t *Target) []string {
	n := naming.For(ins.cfg.Prefix, t.Sum.Name)
	ids := []string{n.Visit, n.Inner, runtimeImportName}
	if ins.cfg.BlockFormEnabled() {
		ids = append(ids, n.VisitMut, n.InnerRef)
	}
	if t.Alias {
		v, vm := naming.Alias()
		ids = append(ids, v)
		if ins.cfg.BlockFormEnabled() {
			ids = append(ids, vm)
		}
	}
	return ids
}

// hasDirective reports whether doc contains the directive line.
func hasDirective(doc *ast.CommentGroup) bool {
	if doc == nil {
		return false
	}
	for _, c := range doc.List {
		if strings.TrimSpace(c.Text) == Directive {
			return true
		}
	}
	return false
}

// generatedFiles returns the names of files in pkg written by visitgen.
func generatedFiles(pkg *packages.Package) map[string]bool {
	out := make(map[string]bool)
	for _, f := range pkg.Syntax {
		if !ast.IsGenerated(f) {
			continue
		}
		for _, cg := range f.Comments {
			if cg.Pos() > f.Package {
				break
			}
			if strings.Contains(cg.Text(), generatorTag) {
				out[pkg.Fset.Position(f.Package).Filename] = true
				break
			}
		}
	}
	return out
}

func inGenerated(e packages.Error, generated map[string]bool) bool {
	if e.Pos == "" {
		return false
	}
	for name := range generated {
		if strings.HasPrefix(e.Pos, name+":") {
			return true
		}
	}
	return false
}
