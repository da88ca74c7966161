package gen

import (
	"bytes"
	"fmt"
	"go/types"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"

	"github.com/funvibe/visitgen/internal/naming"
	"github.com/funvibe/visitgen/internal/sumtype"
)

// RuntimeImportPath is the package generated code calls into for
// reporting unhandled values.
const RuntimeImportPath = "github.com/funvibe/visitgen/pkg/visit"

// runtimeImportName is the local name RuntimeImportPath is imported
// under. It differs from the package name so that it never clashes with
// the visit convenience alias.
const runtimeImportName = "visitpkg"

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Path is the absolute path the file is written to.
	Path string

	// SumType is the sum type the file was generated for.
	SumType string

	// Content is the formatted Go source.
	Content []byte
}

// CodeGenerator renders dispatch code for sum types.
type CodeGenerator struct {
	cfg *Config
}

// NewCodeGenerator creates a new code generator.
func NewCodeGenerator(cfg *Config) *CodeGenerator {
	return &CodeGenerator{cfg: cfg}
}

// Generate renders the file for one target.
func (cg *CodeGenerator) Generate(t *Target) (GeneratedFile, error) {
	sum := t.Sum
	ctx := &fileContext{
		pkg:     sum.Pkg(),
		imports: map[string]string{RuntimeImportPath: runtimeImportName},
	}

	names := naming.For(cg.cfg.Prefix, sum.Name)
	data := fileData{
		Package:   sum.Pkg().Name(),
		Sum:       sum.Name,
		Runtime:   runtimeImportName,
		Names:     names,
		BlockForm: cg.cfg.BlockFormEnabled(),
		Alias:     t.Alias,
	}
	data.AliasVisit, data.AliasVisitMut = naming.Alias()

	data.Inner = ctx.binder(sum.ValueBinder(), names.Inner)
	if data.BlockForm {
		data.InnerRef = ctx.binder(sum.RefBinder(), names.InnerRef)
	}

	for _, v := range sum.Variants {
		if !v.PointerOnly {
			data.Cases = append(data.Cases, caseData{Type: v.Name, Field: v.FieldName()})
		}
		data.Cases = append(data.Cases, caseData{Type: "*" + v.Name, Field: v.FieldName()})
	}
	data.Imports = ctx.sortedImports()

	var buf bytes.Buffer
	if err := fileTemplate.Execute(&buf, data); err != nil {
		return GeneratedFile{}, fmt.Errorf("executing template for %s: %w", sum.Name, err)
	}

	filename := filepath.Join(t.Dir, naming.FileName(cg.cfg.FilePrefix, sum.Name))
	src, err := imports.Process(filename, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return GeneratedFile{}, fmt.Errorf("formatting %s: %w\n%s", filename, err, buf.String())
	}

	return GeneratedFile{Path: filename, SumType: sum.Name, Content: src}, nil
}

// fileContext holds state while generating a single file.
type fileContext struct {
	pkg     *types.Package
	imports map[string]string // path → local name
}

// qualifier renders package-qualified names, recording each import.
func (ctx *fileContext) qualifier(p *types.Package) string {
	if p == ctx.pkg {
		return ""
	}
	if _, ok := ctx.imports[p.Path()]; !ok {
		ctx.imports[p.Path()] = p.Name()
	}
	return ctx.imports[p.Path()]
}

func (ctx *fileContext) typeString(t types.Type) string {
	return types.TypeString(t, ctx.qualifier)
}

// binder turns a sumtype.Binder into template data. ifaceName is used
// when the binder needs an interface declaration.
func (ctx *fileContext) binder(b sumtype.Binder, ifaceName string) binderData {
	switch {
	case b.Concrete != nil:
		return binderData{Type: ctx.typeString(b.Concrete)}
	case b.IsAny():
		return binderData{Type: "any"}
	}

	out := binderData{Type: ifaceName, Decl: true}
	for _, m := range b.Methods {
		sig := ctx.typeString(sumtype.Signature(m))
		out.Methods = append(out.Methods, methodData{
			Name: m.Name(),
			Sig:  strings.TrimPrefix(sig, "func"),
		})
	}
	return out
}

func (ctx *fileContext) sortedImports() []importEntry {
	entries := make([]importEntry, 0, len(ctx.imports))
	for path, name := range ctx.imports {
		e := importEntry{Path: path}
		if name != defaultImportName(path) {
			e.Alias = name
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
	return entries
}

// defaultImportName guesses the name a path is imported under when no
// alias is given. A mismatch only costs a redundant alias.
func defaultImportName(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}

type importEntry struct {
	Path  string
	Alias string
}

type methodData struct {
	Name string
	Sig  string
}

type binderData struct {
	// Type is the callback parameter type as written in source.
	Type string
	// Decl is set when Type names an interface this file declares.
	Decl    bool
	Methods []methodData
}

type caseData struct {
	Type  string // ShapeCircle or *ShapeCircle
	Field string // embedded field selector
}

type fileData struct {
	Package       string
	Sum           string
	Runtime       string
	Imports       []importEntry
	Names         naming.Names
	Inner         binderData
	InnerRef      binderData
	Cases         []caseData
	BlockForm     bool
	Alias         bool
	AliasVisit    string
	AliasVisitMut string
}

var fileTemplate = template.Must(template.New("visit").Parse(fileTemplateText))

const fileTemplateText = `// Code generated by visitgen. DO NOT EDIT.

package {{.Package}}

import (
{{- range .Imports}}
	{{if .Alias}}{{.Alias}} {{end}}"{{.Path}}"
{{- end}}
)
{{- if .Inner.Decl}}

// {{.Names.Inner}} is the method set shared by the inner values of all {{.Sum}} variants.
type {{.Names.Inner}} interface {
{{- range .Inner.Methods}}
	{{.Name}}{{.Sig}}
{{- end}}
}
{{- end}}
{{- if and .BlockForm .InnerRef.Decl}}

// {{.Names.InnerRef}} is the method set shared by pointers to the inner values of all {{.Sum}} variants.
type {{.Names.InnerRef}} interface {
{{- range .InnerRef.Methods}}
	{{.Name}}{{.Sig}}
{{- end}}
}
{{- end}}

// {{.Names.Visit}} calls f with the inner value of the {{.Sum}} variant held by v
// and returns its result.
func {{.Names.Visit}}[R any](v {{.Sum}}, f func({{.Inner.Type}}) R) R {
	switch x := v.(type) {
{{- range .Cases}}
	case {{.Type}}:
		return f(x.{{.Field}})
{{- end}}
	}
	panic({{.Runtime}}.Unhandled("{{.Sum}}", v))
}
{{- if .BlockForm}}

// {{.Names.VisitMut}} calls f with a pointer to the inner value of the {{.Sum}} variant
// held by v. Writes through the pointer are visible to the caller when v holds
// a pointer variant.
func {{.Names.VisitMut}}(v {{.Sum}}, f func({{.InnerRef.Type}})) {
	switch x := v.(type) {
{{- range .Cases}}
	case {{.Type}}:
		f(&x.{{.Field}})
		return
{{- end}}
	}
	panic({{.Runtime}}.Unhandled("{{.Sum}}", v))
}
{{- end}}
{{- if .Alias}}

// {{.AliasVisit}} is shorthand for {{.Names.Visit}}.
//
//nolint:unused
func {{.AliasVisit}}[R any](v {{.Sum}}, f func({{.Inner.Type}}) R) R {
	return {{.Names.Visit}}(v, f)
}
{{- if .BlockForm}}

// {{.AliasVisitMut}} is shorthand for {{.Names.VisitMut}}.
//
//nolint:unused
func {{.AliasVisitMut}}(v {{.Sum}}, f func({{.InnerRef.Type}})) {
	{{.Names.VisitMut}}(v, f)
}
{{- end}}
{{- end}}
`
