package markedit

import (
	"fmt"
	"log/slog"
	"time"
)

// Format is a build target.
type Format string

// Build targets. EPUB and HTML compile in one pandoc stage; PDF compiles to
// an intermediate HTML first and then renders it with the configured engine.
const (
	FormatEPUB Format = "epub"
	FormatPDF  Format = "pdf"
	FormatHTML Format = "html"
)

// Formats lists all build targets in the order BuildAll runs them.
func Formats() []Format {
	return []Format{FormatEPUB, FormatPDF, FormatHTML}
}

// ParseFormat converts a user-supplied string to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatEPUB, FormatPDF, FormatHTML:
		return Format(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Ext returns the artifact filename extension, dot included.
func (f Format) Ext() string { return "." + string(f) }

func (f Format) valid() bool {
	switch f {
	case FormatEPUB, FormatPDF, FormatHTML:
		return true
	}
	return false
}

// ChapterEntry is one chapter in effective build order.
type ChapterEntry struct {
	File  string `json:"file"`
	Title string `json:"title"`
}

// BuildResult reports the outcome of one build.
//
// Stdout and Stderr carry the external converters' output verbatim; for a
// failed build Stderr is never empty (the pipeline error is appended when the
// converter itself was silent). OutputPath is empty unless Success is true.
type BuildResult struct {
	Format     Format        `json:"format"`
	Success    bool          `json:"success"`
	Stdout     string        `json:"stdout"`
	Stderr     string        `json:"stderr"`
	OutputPath string        `json:"outputPath,omitempty"`
	Warnings   []string      `json:"warnings,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	logger  *slog.Logger
	timeout time.Duration // overrides per-format timeouts when > 0
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.cfg.logger = logger
	}
}

// WithRunner injects a command runner, mainly for tests.
func WithRunner(r CommandRunner) Option {
	return func(s *Service) {
		s.runner = r
	}
}

// WithEngine injects a PDF render engine, overriding the configured one.
func WithEngine(e RenderEngine) Option {
	return func(s *Service) {
		s.engine = e
	}
}

// WithTimeout overrides the per-format timeouts with a single value.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("markedit: WithTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.timeout = d
	}
}
