package markdown_test

import (
	"context"
	"strings"
	"testing"

	"github.com/novohool/markedit/internal/markdown"
)

// ---------------------------------------------------------------------------
// TestRender - Preview rendering
// ---------------------------------------------------------------------------

func TestRender(t *testing.T) {
	t.Parallel()

	r := markdown.NewRenderer()

	tests := []struct {
		name     string
		title    string
		content  string
		contains []string
	}{
		{
			name:     "heading and paragraph",
			title:    "Chapter A",
			content:  "# Fox\n\nA small canid.",
			contains: []string{"<title>Chapter A</title>", "<h1", "Fox", "<p>A small canid.</p>"},
		},
		{
			name:     "gfm table",
			title:    "Table",
			content:  "| ja | en |\n|----|----|\n| 狐 | fox |",
			contains: []string{"<table>", "<td>fox</td>"},
		},
		{
			name:     "footnote",
			title:    "Notes",
			content:  "Term[^1]\n\n[^1]: Gloss.",
			contains: []string{"footnote", "Gloss."},
		},
		{
			name:     "title escaped",
			title:    "<script>",
			content:  "x",
			contains: []string{"<title>&lt;script&gt;</title>"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := r.Render(context.Background(), tt.title, tt.content)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Render() output missing %q:\n%s", want, got)
				}
			}
		})
	}
}

func TestRender_CanceledContext(t *testing.T) {
	t.Parallel()

	r := markdown.NewRenderer()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Render(ctx, "t", "# x"); err == nil {
		t.Fatal("Render() expected error for canceled context, got nil")
	}
}
