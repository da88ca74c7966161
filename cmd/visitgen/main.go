// Command visitgen generates per-variant dispatch functions for sum
// types: sealed interfaces whose variants are single-field wrapper
// structs.
//
// Typical use is a go:generate line next to the sum type:
//
//	//go:generate go run github.com/funvibe/visitgen/cmd/visitgen
//
// Sum types are marked with a //visitgen:enum line in their doc comment,
// listed under types: in visitgen.yaml, or named with -type.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/funvibe/visitgen/internal/diagnostics"
	"github.com/funvibe/visitgen/internal/gen"
	"github.com/funvibe/visitgen/internal/logging"
)

const usage = `usage: visitgen [flags] [packages]

Generates <prefix><Type> and <prefix><Type>Mut dispatch functions for each
sum type in the given packages (default ".").

Flags:
`

// Exit codes.
const (
	exitOK       = 0
	exitFailed   = 1 // diagnostics reported or generation failed
	exitBadUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// options are the parsed command-line flags.
type options struct {
	types      string
	prefix     string
	filePrefix string
	alias      bool
	noBlock    bool
	tags       string
	config     string
	logLevel   string
	logFormat  string
	dryRun     bool
	dir        string
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	var o options
	fs := flag.NewFlagSet("visitgen", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	fs.StringVar(&o.types, "type", "", "comma-separated sum type names to generate in addition to //visitgen:enum ones")
	fs.StringVar(&o.prefix, "prefix", "", "dispatch function name prefix (default \"Visit\")")
	fs.StringVar(&o.filePrefix, "file-prefix", "", "generated file name prefix (default \"visit_\")")
	fs.BoolVar(&o.alias, "alias", false, "also emit the package-local visit and visitMut shorthands")
	fs.BoolVar(&o.noBlock, "no-block", false, "do not emit the pointer-passing Mut form")
	fs.StringVar(&o.tags, "tags", "", "comma-separated build tags")
	fs.StringVar(&o.config, "config", "", "path to visitgen.yaml (default: search upwards from the working directory)")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: trace, debug, info, warn, error (overrides "+logging.EnvVar+")")
	fs.StringVar(&o.logFormat, "log-format", "text", "log format: text or json")
	fs.BoolVar(&o.dryRun, "dry-run", false, "print generated files to stdout instead of writing them")
	fs.StringVar(&o.dir, "C", "", "change to `dir` before loading packages")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return &o, fs.Args(), nil
}

// loadConfig reads the explicit or discovered visitgen.yaml and applies
// flag overrides on top.
func loadConfig(o *options) (*gen.Config, string, error) {
	path := o.config
	if path == "" {
		dir := o.dir
		if dir == "" {
			dir = "."
		}
		found, err := gen.FindConfig(dir)
		if err != nil {
			return nil, "", err
		}
		path = found
	}

	cfg := gen.DefaultConfig()
	if path != "" {
		loaded, err := gen.LoadConfig(path)
		if err != nil {
			return nil, "", err
		}
		cfg = loaded
	}

	if o.prefix != "" {
		cfg.Prefix = o.prefix
	}
	if o.filePrefix != "" {
		cfg.FilePrefix = o.filePrefix
	}
	if o.alias {
		cfg.Alias = true
	}
	if o.noBlock {
		off := false
		cfg.BlockForm = &off
	}
	if o.types != "" {
		cfg.AddTypes(strings.Split(o.types, ",")...)
	}
	if o.tags != "" {
		cfg.Tags = append(cfg.Tags, strings.Split(o.tags, ",")...)
	}
	if err := cfg.Validate("command line"); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, patterns, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitBadUsage
	}

	printer := diagnostics.NewPrinter(stderr)

	cfg, cfgPath, err := loadConfig(o)
	if err != nil {
		printer.PrintErr(err)
		return exitBadUsage
	}

	format, err := logging.ParseFormat(o.logFormat)
	if err != nil {
		printer.PrintErr(err)
		return exitBadUsage
	}
	logger, err := logging.New(logging.Options{
		CLILevel:    o.logLevel,
		EnvLevel:    os.Getenv(logging.EnvVar),
		ConfigLevel: cfg.LogLevel,
		Format:      format,
		Output:      stderr,
	})
	if err != nil {
		printer.PrintErr(err)
		return exitBadUsage
	}
	if cfgPath != "" {
		logger.Debug("using config", "path", cfgPath)
	}

	opts := []gen.GeneratorOption{gen.WithDir(o.dir), gen.WithLogger(logger)}
	if o.dryRun {
		opts = append(opts, gen.WithDryRun(stdout))
	}

	res, err := gen.NewGenerator(cfg, opts...).Run(ctx, patterns...)
	if err != nil {
		printer.PrintErr(err)
		return exitFailed
	}
	logger.Info("done", "files", len(res.Files))
	return exitOK
}
