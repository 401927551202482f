package server_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/novohool/markedit"
	"github.com/novohool/markedit/internal/config"
	"github.com/novohool/markedit/internal/server"
)

// scriptedRunner fakes the external converters: it writes the expected
// output file and optionally blocks until released, to exercise the
// single-flight rejection.
type scriptedRunner struct {
	started chan struct{}
	release chan struct{}
}

func (r *scriptedRunner) Run(ctx context.Context, name string, args ...string) (string, string, error) {
	if r.started != nil {
		close(r.started)
		r.started = nil
		select {
		case <-r.release:
		case <-ctx.Done():
			return "", "", ctx.Err()
		}
	}

	// pandoc writes its -o argument; wkhtmltopdf its trailing argument.
	out := args[len(args)-1]
	for i, a := range args {
		if a == "-o" && i+1 < len(args) {
			out = args[i+1]
		}
	}
	if err := os.WriteFile(out, []byte("converted"), 0o644); err != nil {
		return "", "", err
	}
	return "", "", nil
}

func newTestServer(t *testing.T, runner markedit.CommandRunner) (*httptest.Server, *config.Config) {
	t.Helper()

	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	for _, sub := range []string{"chapters", "illustrations", "css"} {
		if err := os.MkdirAll(filepath.Join(src, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	files := map[string]string{
		"metadata.yml":       "title: Test Book\n",
		"book.md":            "# Test Book\n",
		"css/epub-style.css": "body {}\n",
		"chapters/a.md":      "# Alpha\n\nFirst chapter.\n",
		"chapters/b.md":      "# Beta\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(src, filepath.FromSlash(name)), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := config.Default()
	cfg.SourceDir = src
	cfg.OutputDir = filepath.Join(dir, "build")
	cfg.BookName = "test-book"
	cfg.Chapters = []config.Chapter{
		{File: "a.md", Title: "Alpha"},
		{File: "b.md", Title: "Beta"},
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := markedit.New(cfg, markedit.WithRunner(runner), markedit.WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = svc.Close() })

	ts := httptest.NewServer(server.New(svc, logger).Handler())
	t.Cleanup(ts.Close)
	return ts, cfg
}

// ---------------------------------------------------------------------------
// TestBuildEndpoint
// ---------------------------------------------------------------------------

func TestBuildEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, &scriptedRunner{})

	resp, err := http.Post(ts.URL+"/api/admin/build/epub", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("status = %d, want 200; body: %s", resp.StatusCode, body)
	}

	var res markedit.BuildResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if !res.Success {
		t.Errorf("result not successful: stderr = %q", res.Stderr)
	}
	if !strings.HasSuffix(res.OutputPath, "test-book.epub") {
		t.Errorf("OutputPath = %q, want test-book.epub", res.OutputPath)
	}
}

func TestBuildEndpoint_UnknownFormat(t *testing.T) {
	ts, _ := newTestServer(t, &scriptedRunner{})

	resp, err := http.Post(ts.URL+"/api/admin/build/docx", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
}

func TestBuildEndpoint_Conflict(t *testing.T) {
	runner := &scriptedRunner{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	started := runner.started
	ts, _ := newTestServer(t, runner)

	done := make(chan struct{})
	go func() {
		defer close(done)
		resp, err := http.Post(ts.URL+"/api/admin/build/epub", "application/json", nil)
		if err == nil {
			resp.Body.Close()
		}
	}()

	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("first build never started")
	}

	resp, err := http.Post(ts.URL+"/api/admin/build/epub", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("overlapping build status = %d, want 409", resp.StatusCode)
	}

	close(runner.release)
	<-done
}

// ---------------------------------------------------------------------------
// TestChaptersEndpoint
// ---------------------------------------------------------------------------

func TestChaptersEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, &scriptedRunner{})

	resp, err := http.Get(ts.URL + "/api/admin/chapters")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var body struct {
		Chapters []markedit.ChapterEntry `json:"chapters"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Chapters) != 2 || body.Chapters[0].File != "a.md" {
		t.Errorf("chapters = %+v, want canonical order a.md, b.md", body.Chapters)
	}
}

// ---------------------------------------------------------------------------
// TestPreviewEndpoint
// ---------------------------------------------------------------------------

func TestPreviewEndpoint(t *testing.T) {
	ts, _ := newTestServer(t, &scriptedRunner{})

	resp, err := http.Get(ts.URL + "/api/admin/preview/a.md")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"<title>Alpha</title>", "Alpha", "First chapter."} {
		if !strings.Contains(string(body), want) {
			t.Errorf("preview missing %q", want)
		}
	}
}

func TestPreviewEndpoint_UnknownChapter(t *testing.T) {
	ts, _ := newTestServer(t, &scriptedRunner{})

	for _, path := range []string{
		"/api/admin/preview/zz.md",
		"/api/admin/preview/..%2Fmetadata.yml",
	} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("GET %s status = %d, want 404", path, resp.StatusCode)
		}
	}
}

// ---------------------------------------------------------------------------
// TestBuildInfoEndpoint and health
// ---------------------------------------------------------------------------

func TestBuildInfoEndpoint(t *testing.T) {
	ts, cfg := newTestServer(t, &scriptedRunner{})

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(cfg.OutputDir, "test-book.epub"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	resp, err := http.Get(ts.URL + "/api/admin/build")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var body struct {
		Artifacts []markedit.Artifact `json:"artifacts"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Artifacts) != 1 || body.Artifacts[0].Name != "test-book.epub" {
		t.Errorf("artifacts = %+v, want [test-book.epub]", body.Artifacts)
	}
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t, &scriptedRunner{})

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
