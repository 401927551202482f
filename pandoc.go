package markedit

import (
	"context"
	"fmt"
)

// pandocBin is resolved through PATH; deployments pin it in the image.
const pandocBin = "pandoc"

// compileJob describes one pandoc invocation. Inputs are ordered: metadata
// first, then the book preamble, then chapters in effective order.
type compileJob struct {
	inputs       []string
	output       string
	stylesheet   string
	resourcePath string
	standalone   bool // full HTML document instead of EPUB container
}

// args assembles the pandoc argument vector. The flag set matches the
// dictionary's established output: chapter-level TOC two deep, EPUB split on
// second-level headings, quotes as <q> tags, and every asset embedded so the
// artifact is self-contained.
func (j compileJob) args() []string {
	args := make([]string, 0, len(j.inputs)+10)
	args = append(args, j.inputs...)
	args = append(args,
		"-o", j.output,
		"--toc",
		"--toc-depth=2",
		"--split-level=2",
		"--css="+j.stylesheet,
		"--from", "markdown",
		"--html-q-tags",
	)
	if j.standalone {
		args = append(args, "--standalone")
	}
	args = append(args,
		"--embed-resources",
		"--resource-path="+j.resourcePath,
	)
	return args
}

// compile runs pandoc for the job and returns its output streams.
func (s *Service) compile(ctx context.Context, job compileJob) (string, string, error) {
	stdout, stderr, err := s.runner.Run(ctx, pandocBin, job.args()...)
	if err != nil {
		return stdout, stderr, fmt.Errorf("%w: %v", ErrCompile, err)
	}
	return stdout, stderr, nil
}
