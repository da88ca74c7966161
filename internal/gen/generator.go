package gen

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/funvibe/visitgen/internal/diagnostics"
	"github.com/funvibe/visitgen/internal/logging"
)

// Generator runs the whole pipeline: inspect, render, write.
type Generator struct {
	// cfg is the merged configuration (visitgen.yaml plus flags).
	cfg *Config

	// dir is the working directory patterns are resolved against.
	dir string

	// dryRun, when set, receives the generated files instead of disk.
	dryRun io.Writer

	logger *slog.Logger
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithDir sets the working directory for package loading.
func WithDir(dir string) GeneratorOption {
	return func(g *Generator) { g.dir = dir }
}

// WithDryRun prints generated files to w instead of writing them.
func WithDryRun(w io.Writer) GeneratorOption {
	return func(g *Generator) { g.dryRun = w }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = l }
}

// NewGenerator creates a Generator. A nil cfg means DefaultConfig.
func NewGenerator(cfg *Config, opts ...GeneratorOption) *Generator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	g := &Generator{cfg: cfg, logger: logging.Discard()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Result is the outcome of a Run.
type Result struct {
	// Files are the rendered files, in package then declaration order.
	Files []GeneratedFile

	// Statuses holds one entry per file.
	Statuses []WriteStatus

	// Diagnostics lists every problem found. Sum types with problems
	// produced no file; the others were generated regardless.
	Diagnostics diagnostics.List
}

// Run generates dispatch code for every sum type in the packages
// matching patterns. The returned error is non-nil when loading or
// writing failed, or when any diagnostic was reported; in the latter
// case it is the diagnostics.List and the Result is still valid.
func (g *Generator) Run(ctx context.Context, patterns ...string) (*Result, error) {
	// Step 1: Load packages and resolve sum types
	ins := NewInspector(g.cfg, g.dir, g.logger)
	inspected, err := ins.Inspect(ctx, patterns...)
	if err != nil {
		return nil, err
	}

	// Step 2: Render one file per target
	res := &Result{}
	cg := NewCodeGenerator(g.cfg)
	for _, pr := range inspected {
		res.Diagnostics = append(res.Diagnostics, pr.Diagnostics...)
		for _, t := range pr.Targets {
			f, err := cg.Generate(t)
			if err != nil {
				return nil, fmt.Errorf("generating %s.%s: %w", pr.Pkg.PkgPath, t.Sum.Name, err)
			}
			g.logger.Debug("rendered", "type", t.Sum.Name, "variants", len(t.Sum.Variants), "file", f.Path)
			res.Files = append(res.Files, f)
		}
	}

	// Step 3: Write
	if len(res.Files) > 0 {
		statuses, err := NewWriter(g.logger, g.dryRun).WriteAll(ctx, res.Files)
		if err != nil {
			return nil, err
		}
		res.Statuses = statuses
	} else if len(res.Diagnostics) == 0 {
		g.logger.Warn("no sum types found", "patterns", patterns, "directive", Directive)
	}

	res.Diagnostics.Sort()
	return res, res.Diagnostics.Err()
}
