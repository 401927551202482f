// Package config holds the build configuration for a book project.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrNoChapters     = errors.New("config declares no chapters")
)

// Engine names for the second-stage PDF renderer.
const (
	EngineWkhtmltopdf = "wkhtmltopdf"
	EngineChrome      = "chrome"
)

// Fixed source-tree layout. The editor owns this layout; changing it is a
// deployment-time action, not a build-time one.
const (
	ChaptersDir      = "chapters"
	IllustrationsDir = "illustrations"
	CSSDir           = "css"
	MetadataFile     = "metadata.yml"
	BookFile         = "book.md"
	OrderingFile     = "chapter-config.json"
)

// Stylesheet filenames under css/ per target format.
const (
	EPUBStylesheet   = "epub-style.css"
	PDFStylesheet    = "pdf-style.css"
	CommonStylesheet = "common-style.css"
)

// Default converter budgets, applied when a configuration leaves a timeout
// unset (PDF gets longer: two converter stages).
const (
	DefaultEPUBTimeout = Duration(5 * time.Minute)
	DefaultPDFTimeout  = Duration(10 * time.Minute)
	DefaultHTMLTimeout = Duration(5 * time.Minute)
)

// Duration wraps time.Duration for YAML decoding of values like "5m".
type Duration time.Duration

// UnmarshalYAML implements yaml.BytesUnmarshaler.
func (d *Duration) UnmarshalYAML(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"'`)
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Chapter is one canonical chapter: a source file basename and its default
// display title (used when the ordering config does not override it).
type Chapter struct {
	File  string `yaml:"file"`
	Title string `yaml:"title"`
}

// Timeouts bound each build format's external-converter run.
type Timeouts struct {
	EPUB Duration `yaml:"epub"`
	PDF  Duration `yaml:"pdf"`
	HTML Duration `yaml:"html"`
}

// Config describes one book project.
type Config struct {
	SourceDir string    `yaml:"sourceDir"` // book source tree (chapters/, illustrations/, ...)
	OutputDir string    `yaml:"outputDir"` // artifacts land here
	BookName  string    `yaml:"bookName"`  // artifact basename, e.g. katakana-dictionary
	Engine    string    `yaml:"engine"`    // "wkhtmltopdf" (default) or "chrome"
	Chapters  []Chapter `yaml:"chapters"`  // canonical chapter set, in canonical order
	Timeouts  Timeouts  `yaml:"timeouts"`
}

// Default returns a configuration with the project's conventional layout and
// build timeouts.
func Default() *Config {
	return &Config{
		SourceDir: "src",
		OutputDir: "build",
		BookName:  "katakana-dictionary",
		Engine:    EngineWkhtmltopdf,
		Timeouts: Timeouts{
			EPUB: DefaultEPUBTimeout,
			PDF:  DefaultPDFTimeout,
			HTML: DefaultHTMLTimeout,
		},
	}
}

// Load reads a YAML config from path, fills defaults, and validates.
// Unknown fields are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults fills derived values: an empty chapter title defaults to its
// filename, so unconfigured chapters still display something.
func (c *Config) applyDefaults() {
	if c.Engine == "" {
		c.Engine = EngineWkhtmltopdf
	}
	for i := range c.Chapters {
		if c.Chapters[i].Title == "" {
			c.Chapters[i].Title = c.Chapters[i].File
		}
	}
}

// Validate checks structural invariants of the configuration.
func (c *Config) Validate() error {
	if c.SourceDir == "" {
		return fmt.Errorf("sourceDir: must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("outputDir: must not be empty")
	}
	if c.BookName == "" || strings.ContainsAny(c.BookName, `/\`) {
		return fmt.Errorf("bookName: %q must be a plain name without path separators", c.BookName)
	}
	switch c.Engine {
	case EngineWkhtmltopdf, EngineChrome:
	default:
		return fmt.Errorf("engine: unknown engine %q (must be %s or %s)", c.Engine, EngineWkhtmltopdf, EngineChrome)
	}

	if len(c.Chapters) == 0 {
		return ErrNoChapters
	}
	seen := make(map[string]bool, len(c.Chapters))
	for i, ch := range c.Chapters {
		if ch.File == "" || strings.ContainsAny(ch.File, `/\`) {
			return fmt.Errorf("chapters[%d]: file %q must be a plain basename", i, ch.File)
		}
		if seen[ch.File] {
			return fmt.Errorf("chapters[%d]: duplicate file %q", i, ch.File)
		}
		seen[ch.File] = true
	}

	return nil
}

// HasChapter reports whether file is part of the canonical set.
func (c *Config) HasChapter(file string) bool {
	for _, ch := range c.Chapters {
		if ch.File == file {
			return true
		}
	}
	return false
}

// Source-tree path helpers.

func (c *Config) ChaptersPath() string      { return filepath.Join(c.SourceDir, ChaptersDir) }
func (c *Config) IllustrationsPath() string { return filepath.Join(c.SourceDir, IllustrationsDir) }
func (c *Config) MetadataPath() string      { return filepath.Join(c.SourceDir, MetadataFile) }
func (c *Config) BookPath() string          { return filepath.Join(c.SourceDir, BookFile) }
func (c *Config) OrderingPath() string      { return filepath.Join(c.SourceDir, OrderingFile) }

// StylesheetPath returns the path of a stylesheet under css/.
func (c *Config) StylesheetPath(name string) string {
	return filepath.Join(c.SourceDir, CSSDir, name)
}
