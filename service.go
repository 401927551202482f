package markedit

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/novohool/markedit/internal/chapters"
	"github.com/novohool/markedit/internal/config"
	"github.com/novohool/markedit/internal/metrics"
)

// Service orchestrates book builds for one configured project.
//
// Builds are single-flight: at most one runs at a time, and an overlapping
// request is rejected immediately with ErrBuildInProgress rather than queued.
type Service struct {
	conf      *config.Config
	cfg       serviceConfig
	runner    CommandRunner
	engine    RenderEngine
	verifyPDF func(path string) error

	mu sync.Mutex
}

// New creates a Service for the given configuration.
// Use options to customize behavior (e.g., WithTimeout, WithRunner).
func New(conf *config.Config, opts ...Option) (*Service, error) {
	if conf == nil {
		return nil, fmt.Errorf("nil config")
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}

	s := &Service{
		conf:      conf,
		cfg:       serviceConfig{logger: slog.Default()},
		runner:    &ExecRunner{},
		verifyPDF: validatePDF,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Engine is created after options so an injected runner reaches it.
	if s.engine == nil {
		if conf.Engine == config.EngineChrome {
			s.engine = newChromeEngine()
		} else {
			s.engine = &wkhtmltopdfEngine{runner: s.runner}
		}
	}

	return s, nil
}

// Build compiles one target format. The returned error is non-nil only when
// the build never ran (unknown format, or another build holds the lock);
// converter failures are reported through the BuildResult.
func (s *Service) Build(ctx context.Context, f Format) (BuildResult, error) {
	if !f.valid() {
		return BuildResult{}, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if !s.mu.TryLock() {
		return BuildResult{}, ErrBuildInProgress
	}
	defer s.mu.Unlock()

	return s.buildLocked(ctx, f), nil
}

// BuildAll compiles every target format in order, continuing past failures
// so one broken converter does not mask the others' results.
func (s *Service) BuildAll(ctx context.Context) ([]BuildResult, error) {
	if !s.mu.TryLock() {
		return nil, ErrBuildInProgress
	}
	defer s.mu.Unlock()

	results := make([]BuildResult, 0, len(Formats()))
	for _, f := range Formats() {
		results = append(results, s.buildLocked(ctx, f))
	}
	return results, nil
}

// buildLocked runs one session; the caller holds the lock.
func (s *Service) buildLocked(ctx context.Context, f Format) BuildResult {
	logger := s.cfg.logger
	logger.Info("build started", "format", f, "book", s.conf.BookName)

	start := time.Now()
	res := s.runSession(ctx, f)
	res.Duration = time.Since(start)

	metrics.ObserveBuild(string(f), res.Success, res.Duration)

	if res.Success {
		logger.Info("build succeeded", "format", f, "output", res.OutputPath, "duration", res.Duration)
	}
	return res
}

// timeoutFor returns the converter budget for a format. A zero configured
// value falls back to the format's default so a Config built by hand never
// produces an already-expired context.
func (s *Service) timeoutFor(f Format) time.Duration {
	if s.cfg.timeout > 0 {
		return s.cfg.timeout
	}

	var configured, fallback config.Duration
	switch f {
	case FormatPDF:
		configured, fallback = s.conf.Timeouts.PDF, config.DefaultPDFTimeout
	case FormatHTML:
		configured, fallback = s.conf.Timeouts.HTML, config.DefaultHTMLTimeout
	default:
		configured, fallback = s.conf.Timeouts.EPUB, config.DefaultEPUBTimeout
	}
	if configured <= 0 {
		return fallback.Std()
	}
	return configured.Std()
}

// ChapterOrder reports the effective build order: the canonical chapter set
// resequenced by the current ordering config.
func (s *Service) ChapterOrder() ([]ChapterEntry, error) {
	ord, err := chapters.LoadOrdering(s.conf.OrderingPath())
	if err != nil {
		return nil, err
	}
	seq := chapters.Resequence(canonicalChapters(s.conf), ord.Chapters)

	entries := make([]ChapterEntry, len(seq.Chapters))
	for i, ch := range seq.Chapters {
		entries[i] = ChapterEntry{File: ch.File, Title: ch.Title}
	}
	return entries, nil
}

// Config returns the service's configuration.
func (s *Service) Config() *config.Config { return s.conf }

// Close releases resources (headless Chrome browser, when in use).
func (s *Service) Close() error {
	return s.engine.Close()
}
