package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/dshills/jscontext-mcp/pkg/types"
)

// ProjectFileName is the per-project configuration file, read from the
// project root
const ProjectFileName = ".jscontext.toml"

// ProjectConfig controls which files of a project are indexed and how they
// are preprocessed
type ProjectConfig struct {
	Extensions   []string                 `toml:"extensions" json:"extensions"`
	IgnoreDirs   []string                 `toml:"ignore_dirs" json:"ignore_dirs"`
	IgnoreGlobs  []string                 `toml:"ignore_globs" json:"ignore_globs"`
	MaxFileChars int                      `toml:"max_file_chars" json:"max_file_chars"`
	Preprocessor types.PreprocessorConfig `toml:"preprocessor" json:"preprocessor"`
}

func DefaultProjectConfig() ProjectConfig {
	return ProjectConfig{
		Extensions:   []string{".js", ".jsx", ".ts", ".tsx", ".less", ".css", ".scss", ".vue"},
		IgnoreDirs:   []string{"node_modules", ".umi", ".umi-production", "dist", "build", ".git", "__pycache__"},
		MaxFileChars: 6000,
		Preprocessor: types.DefaultPreprocessorConfig(),
	}
}

// LoadProjectConfig returns the defaults overlaid with root/.jscontext.toml
// when that file exists. Keys missing from the file keep their defaults.
func LoadProjectConfig(root string) (ProjectConfig, error) {
	cfg := DefaultProjectConfig()

	path := filepath.Join(root, ProjectFileName)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, err
	}

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, ProjectFileName, err)
	}
	cfg.Extensions = normalizeExtensions(cfg.Extensions)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// WriteProjectConfig writes cfg to root/.jscontext.toml
func WriteProjectConfig(root string, cfg ProjectConfig) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encoding project config: %w", err)
	}
	return os.WriteFile(filepath.Join(root, ProjectFileName), buf.Bytes(), 0o644)
}

func (p ProjectConfig) Validate() error {
	if len(p.Extensions) == 0 {
		return fmt.Errorf("%w: extensions must not be empty", ErrInvalidConfig)
	}
	if p.MaxFileChars <= 0 {
		return fmt.Errorf("%w: max_file_chars must be positive", ErrInvalidConfig)
	}
	for _, g := range p.IgnoreGlobs {
		if !doublestar.ValidatePattern(g) {
			return fmt.Errorf("%w: invalid ignore glob %q", ErrInvalidConfig, g)
		}
	}
	if err := p.Preprocessor.Validate(); err != nil {
		return fmt.Errorf("%w: preprocessor: %v", ErrInvalidConfig, err)
	}
	return nil
}

// HasExtension reports whether ext (with leading dot) is indexed
func (p ProjectConfig) HasExtension(ext string) bool {
	return slices.Contains(p.Extensions, strings.ToLower(ext))
}

// IgnoresDir reports whether a directory with this base name is skipped
func (p ProjectConfig) IgnoresDir(name string) bool {
	return slices.Contains(p.IgnoreDirs, name)
}

// IgnoresPath reports whether a slash-separated path relative to the
// project root matches one of the ignore globs
func (p ProjectConfig) IgnoresPath(rel string) bool {
	for _, g := range p.IgnoreGlobs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
	}
	return false
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	return out
}
