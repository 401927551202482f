package markedit

import (
	"context"
	"fmt"
	"os"
)

// RenderEngine turns the intermediate HTML document into the final PDF.
type RenderEngine interface {
	Render(ctx context.Context, htmlPath, pdfPath string) (stdout string, stderr string, err error)
	Close() error
}

const (
	wkhtmltopdfBin = "wkhtmltopdf"

	// WkhtmltopdfPathEnv overrides the wkhtmltopdf binary location, for
	// deployments where it is not on PATH.
	WkhtmltopdfPathEnv = "WKHTMLTOPDF_PATH"
)

// Print margins for the dictionary's page layout.
const (
	marginTopBottom = "20mm"
	marginLeftRight = "15mm"
)

// wkhtmltopdfEngine shells out to wkhtmltopdf.
type wkhtmltopdfEngine struct {
	runner CommandRunner
}

func (e *wkhtmltopdfEngine) Render(ctx context.Context, htmlPath, pdfPath string) (string, string, error) {
	bin := wkhtmltopdfBin
	if p := os.Getenv(WkhtmltopdfPathEnv); p != "" {
		bin = p
	}

	args := []string{
		"--enable-local-file-access", // intermediate HTML references staged assets by file path
		"--print-media-type",
		"--margin-top", marginTopBottom,
		"--margin-bottom", marginTopBottom,
		"--margin-left", marginLeftRight,
		"--margin-right", marginLeftRight,
		htmlPath,
		pdfPath,
	}

	stdout, stderr, err := e.runner.Run(ctx, bin, args...)
	if err != nil {
		return stdout, stderr, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return stdout, stderr, nil
}

func (e *wkhtmltopdfEngine) Close() error { return nil }
