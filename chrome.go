package markedit

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Compile-time interface checks.
var (
	_ RenderEngine = (*chromeEngine)(nil)
	_ RenderEngine = (*wkhtmltopdfEngine)(nil)
)

// chromeEngine renders the intermediate HTML with headless Chrome via go-rod.
// Rod automatically downloads Chromium on first run if not found.
type chromeEngine struct {
	browser *rod.Browser
}

func newChromeEngine() *chromeEngine {
	return &chromeEngine{}
}

// ensureBrowser lazily connects to the browser.
func (e *chromeEngine) ensureBrowser() error {
	if e.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	e.browser = rod.New().ControlURL(u)
	if err := e.browser.Connect(); err != nil {
		e.browser = nil
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Render opens the intermediate HTML in headless Chrome and prints it to
// pdfPath with the same margins wkhtmltopdf uses. Stdout and stderr are empty:
// the engine runs in-process.
func (e *chromeEngine) Render(ctx context.Context, htmlPath, pdfPath string) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	if err := e.ensureBrowser(); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrRender, err)
	}

	page, err := e.browser.Page(proto.TargetCreateTarget{URL: "file://" + htmlPath})
	if err != nil {
		return "", "", fmt.Errorf("%w: creating page: %v", ErrRender, err)
	}
	defer page.Close()

	if deadline, ok := ctx.Deadline(); ok {
		timeout := time.Until(deadline)
		if timeout <= 0 {
			return "", "", context.DeadlineExceeded
		}
		page = page.Timeout(timeout)
	}

	if err := page.WaitLoad(); err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	reader, err := page.PDF(&proto.PagePrintToPDF{
		MarginTop:       mmToInches(20),
		MarginBottom:    mmToInches(20),
		MarginLeft:      mmToInches(15),
		MarginRight:     mmToInches(15),
		PrintBackground: true,
	})
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrRender, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return "", "", fmt.Errorf("%w: reading PDF stream: %v", ErrRender, err)
	}

	if err := os.WriteFile(pdfPath, pdfBuf, 0o644); err != nil {
		return "", "", fmt.Errorf("%w: writing %s: %v", ErrRender, pdfPath, err)
	}

	return "", "", nil
}

// Close releases browser resources.
func (e *chromeEngine) Close() error {
	if e.browser != nil {
		err := e.browser.Close()
		e.browser = nil
		return err
	}
	return nil
}

// mmToInches converts millimeters for Chrome's inch-based print API.
func mmToInches(mm float64) *float64 {
	v := mm / 25.4
	return &v
}
