package markedit

import (
	"context"
	"testing"
)

// ---------------------------------------------------------------------------
// TestWkhtmltopdfEngine - binary resolution and flags
// ---------------------------------------------------------------------------

func TestWkhtmltopdfEngine_Render(t *testing.T) {
	runner := &fakeRunner{}
	engine := &wkhtmltopdfEngine{runner: runner}

	if _, _, err := engine.Render(context.Background(), "in.html", t.TempDir()+"/out.pdf"); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	call := runner.lastCall(wkhtmltopdfBin)
	if call == nil {
		t.Fatal("wkhtmltopdf was not invoked")
	}

	want := []string{
		"--enable-local-file-access",
		"--print-media-type",
		"--margin-top", "20mm",
		"--margin-bottom", "20mm",
		"--margin-left", "15mm",
		"--margin-right", "15mm",
	}
	for i, flag := range want {
		if call[1+i] != flag {
			t.Errorf("arg[%d] = %q, want %q", i, call[1+i], flag)
		}
	}
	if call[len(call)-2] != "in.html" {
		t.Errorf("second to last arg = %q, want input html path", call[len(call)-2])
	}
}

func TestWkhtmltopdfEngine_PathOverride(t *testing.T) {
	t.Setenv(WkhtmltopdfPathEnv, "/opt/wkhtmltox/bin/wkhtmltopdf")

	runner := &fakeRunner{}
	engine := &wkhtmltopdfEngine{runner: runner}

	if _, _, err := engine.Render(context.Background(), "in.html", t.TempDir()+"/out.pdf"); err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if len(runner.calls) != 1 || runner.calls[0][0] != "/opt/wkhtmltox/bin/wkhtmltopdf" {
		t.Errorf("calls = %v, want overridden binary", runner.calls)
	}
}
