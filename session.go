package markedit

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/novohool/markedit/internal/chapters"
	"github.com/novohool/markedit/internal/config"
	"github.com/novohool/markedit/internal/fileutil"
	"github.com/novohool/markedit/internal/pipeline"
	"github.com/novohool/markedit/internal/staging"
	"github.com/novohool/markedit/internal/svgclean"
)

// stylesheetFor maps a build target to its stylesheet under css/.
func stylesheetFor(f Format) string {
	switch f {
	case FormatEPUB:
		return config.EPUBStylesheet
	case FormatPDF:
		return config.PDFStylesheet
	default:
		return config.CommonStylesheet
	}
}

// assetPrefixFor maps a build target to the asset-reference form its staged
// chapters must use.
func assetPrefixFor(f Format) string {
	if f == FormatEPUB {
		return pipeline.EPUBPrefix
	}
	return pipeline.DottedPrefix
}

// canonicalChapters converts the configured chapter set.
func canonicalChapters(conf *config.Config) []chapters.Chapter {
	chs := make([]chapters.Chapter, len(conf.Chapters))
	for i, ch := range conf.Chapters {
		chs[i] = chapters.Chapter{File: ch.File, Title: ch.Title}
	}
	return chs
}

// runSession executes one build under the single-flight lock. It never
// returns an error: every failure is folded into the BuildResult, and the
// staging tree is removed on all paths.
func (s *Service) runSession(ctx context.Context, f Format) BuildResult {
	res := BuildResult{Format: f}
	conf := s.conf

	if err := fileutil.EnsureDir(conf.OutputDir); err != nil {
		return s.failed(res, err)
	}

	tree, err := staging.Create(conf.OutputDir, string(f))
	if err != nil {
		return s.failed(res, err)
	}
	defer func() {
		if err := tree.Remove(); err != nil {
			s.cfg.logger.Error("removing staging tree", "format", f, "error", err)
		}
	}()

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeoutFor(f))
		defer cancel()
	}

	// Assets first: a malformed source tree should fail before any
	// converter runs.
	staged, err := staging.StageIllustrations(conf.IllustrationsPath(), tree.Path(config.IllustrationsDir))
	if err != nil {
		return s.failed(res, fmt.Errorf("%w: %w", ErrStaging, err))
	}
	s.cfg.logger.Debug("staged illustrations", "format", f, "count", staged)

	if f == FormatEPUB {
		// EPUB readers reject some SVG constructs pandoc passes through
		// untouched; sanitize the staged copies only.
		if err := svgclean.SanitizeDir(tree.Path(config.IllustrationsDir), s.cfg.logger); err != nil {
			return s.failed(res, fmt.Errorf("%w: %w", ErrStaging, err))
		}
	}

	cssName := stylesheetFor(f)
	for _, cp := range []struct{ src, dst string }{
		{conf.MetadataPath(), tree.Path(config.MetadataFile)},
		{conf.BookPath(), tree.Path(config.BookFile)},
		{conf.StylesheetPath(cssName), tree.Path(config.CSSDir, cssName)},
	} {
		if err := fileutil.CopyFile(cp.src, cp.dst); err != nil {
			return s.failed(res, fmt.Errorf("%w: %w", ErrStaging, err))
		}
	}

	ord, err := chapters.LoadOrdering(conf.OrderingPath())
	if err != nil {
		return s.failed(res, fmt.Errorf("%w: %w", ErrStaging, err))
	}
	seq := chapters.Resequence(canonicalChapters(conf), ord.Chapters)
	for _, file := range seq.Dropped {
		s.cfg.logger.Warn("ordering config references unknown chapter, dropping", "file", file)
		res.Warnings = append(res.Warnings, fmt.Sprintf("ordering entry %q does not match any chapter; dropped", file))
	}
	for _, file := range seq.Appended {
		s.cfg.logger.Warn("chapter missing from ordering config, appending", "file", file)
		res.Warnings = append(res.Warnings, fmt.Sprintf("chapter %q missing from ordering; appended in canonical order", file))
	}

	files := chapters.Files(seq.Chapters)
	if err := pipeline.StageChapters(conf.ChaptersPath(), tree.Path(config.ChaptersDir), files, assetPrefixFor(f)); err != nil {
		return s.failed(res, fmt.Errorf("%w: %w", ErrStaging, err))
	}

	inputs := make([]string, 0, len(files)+2)
	inputs = append(inputs, tree.Path(config.MetadataFile), tree.Path(config.BookFile))
	for _, file := range files {
		inputs = append(inputs, tree.Path(config.ChaptersDir, file))
	}

	job := compileJob{
		inputs:       inputs,
		stylesheet:   tree.Path(config.CSSDir, cssName),
		resourcePath: tree.Root(),
	}

	switch f {
	case FormatEPUB, FormatHTML:
		out := filepath.Join(conf.OutputDir, conf.BookName+f.Ext())
		job.output = out
		job.standalone = f == FormatHTML

		stdout, stderr, err := s.compile(ctx, job)
		res.Stdout, res.Stderr = stdout, stderr
		if err != nil {
			return s.failed(res, err)
		}
		res.Success = true
		res.OutputPath = out

	case FormatPDF:
		// Stage A writes the intermediate HTML inside the staging tree
		// so a failed build never leaves it among the artifacts.
		intermediate := tree.Path(conf.BookName + ".html")
		job.output = intermediate
		job.standalone = true

		stdout, stderr, err := s.compile(ctx, job)
		res.Stdout, res.Stderr = stdout, stderr
		if err != nil {
			return s.failed(res, err)
		}

		out := filepath.Join(conf.OutputDir, conf.BookName+".pdf")
		stdout, stderr, err = s.engine.Render(ctx, intermediate, out)
		res.Stdout = joinOutput(res.Stdout, stdout)
		res.Stderr = joinOutput(res.Stderr, stderr)
		if err != nil {
			return s.failed(res, err)
		}

		if err := s.verifyPDF(out); err != nil {
			return s.failed(res, err)
		}
		res.Success = true
		res.OutputPath = out
	}

	return res
}

// failed finalizes a failed result. Stderr always carries the pipeline error
// so callers see a diagnostic even when the converter itself was silent.
func (s *Service) failed(res BuildResult, err error) BuildResult {
	res.Success = false
	res.OutputPath = ""
	res.Stderr = joinOutput(res.Stderr, err.Error())
	s.cfg.logger.Error("build failed", "format", res.Format, "error", err)
	return res
}

func joinOutput(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + "\n" + b
	}
}
