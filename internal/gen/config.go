// Package gen implements the visitgen code generator.
//
// It loads Go packages via go/packages, finds the sum types marked with
// a //visitgen:enum directive (or named in the configuration), and
// writes one visit_<type>.go file per sum type holding its dispatch
// functions.
//
// The gen package handles:
//   - Parsing and validating visitgen.yaml configuration
//   - Loading packages and locating sum type declarations
//   - Rendering dispatch code through text/template and x/tools/imports
//   - Writing the generated files atomically
package gen

import (
	"fmt"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/funvibe/visitgen/internal/logging"
	"github.com/funvibe/visitgen/internal/naming"
)

// ConfigFileNames are searched, in order, in each directory.
var ConfigFileNames = []string{"visitgen.yaml", "visitgen.yml"}

// Config represents visitgen.yaml.
type Config struct {
	// Prefix is prepended to the sum type name to form the dispatch
	// function names (Prefix + "Shape", Prefix + "Shape" + "Mut").
	// Defaults to "Visit".
	Prefix string `yaml:"prefix,omitempty"`

	// FilePrefix is prepended to the snake-cased type name to form the
	// generated file name. Defaults to "visit_".
	FilePrefix string `yaml:"file_prefix,omitempty"`

	// Alias additionally emits the package-local shorthands visit and
	// visitMut. Only one sum type per package may use it.
	Alias bool `yaml:"alias,omitempty"`

	// BlockForm controls whether the pointer-passing <Prefix><Type>Mut
	// function is emitted. Defaults to true.
	BlockForm *bool `yaml:"block_form,omitempty"`

	// Types lists sum type names to generate in addition to those marked
	// with //visitgen:enum.
	Types []string `yaml:"types,omitempty"`

	// Tags are build tags passed to the package loader.
	Tags []string `yaml:"tags,omitempty"`

	// LogLevel is the default log level (trace, debug, info, warn, error).
	LogLevel string `yaml:"log_level,omitempty"`
}

// DefaultConfig returns the configuration used when no visitgen.yaml
// exists.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a visitgen.yaml file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses visitgen.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.Validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for visitgen.yaml starting from dir and walking up
// to parent directories. It returns "" and a nil error when none exists.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		// Stop at the module root; a config above it belongs to
		// another project.
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return "", nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Validate checks the configuration for semantic errors. The path
// argument is used only for error messages.
func (c *Config) Validate(path string) error {
	if c.Prefix != "" {
		if !token.IsIdentifier(c.Prefix) {
			return fmt.Errorf("%s: prefix %q is not a valid Go identifier", path, c.Prefix)
		}
		if !naming.IsExported(c.Prefix) {
			return fmt.Errorf("%s: prefix %q must start with an uppercase letter", path, c.Prefix)
		}
	}

	if strings.ContainsAny(c.FilePrefix, `/\`) {
		return fmt.Errorf("%s: file_prefix %q must not contain a path separator", path, c.FilePrefix)
	}

	seen := make(map[string]bool)
	for i, name := range c.Types {
		if !token.IsIdentifier(name) {
			return fmt.Errorf("%s: types[%d]: %q is not a valid Go identifier", path, i, name)
		}
		if seen[name] {
			return fmt.Errorf("%s: types[%d]: %q listed twice", path, i, name)
		}
		seen[name] = true
	}

	for i, tag := range c.Tags {
		if tag == "" || strings.ContainsAny(tag, " ,") {
			return fmt.Errorf("%s: tags[%d]: invalid build tag %q", path, i, tag)
		}
	}

	if c.LogLevel != "" {
		if _, err := logging.ParseLevel(c.LogLevel); err != nil {
			return fmt.Errorf("%s: log_level: %w", path, err)
		}
	}

	return nil
}

// setDefaults fills in default values for omitted fields.
func (c *Config) setDefaults() {
	if c.Prefix == "" {
		c.Prefix = naming.DefaultFuncPrefix
	}
	if c.FilePrefix == "" {
		c.FilePrefix = naming.DefaultFilePrefix
	}
	if c.BlockForm == nil {
		on := true
		c.BlockForm = &on
	}
}

// BlockFormEnabled reports whether the Mut function is generated.
func (c *Config) BlockFormEnabled() bool {
	return c.BlockForm == nil || *c.BlockForm
}

// BuildFlags returns the go build flags for the package loader.
func (c *Config) BuildFlags() []string {
	if len(c.Tags) == 0 {
		return nil
	}
	return []string{"-tags=" + strings.Join(c.Tags, ",")}
}

// AddTypes merges names into Types, skipping duplicates.
func (c *Config) AddTypes(names ...string) {
	seen := make(map[string]bool, len(c.Types))
	for _, n := range c.Types {
		seen[n] = true
	}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		c.Types = append(c.Types, n)
		seen[n] = true
	}
}
