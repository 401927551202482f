package staging_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/novohool/markedit/internal/staging"
)

// ---------------------------------------------------------------------------
// TestCreateAndRemove - Tree lifecycle
// ---------------------------------------------------------------------------

func TestCreateAndRemove(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()

	tree, err := staging.Create(parent, "epub")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if !strings.HasPrefix(filepath.Base(tree.Root()), "staging-epub-") {
		t.Errorf("tree root %q does not carry the format prefix", tree.Root())
	}

	info, err := os.Stat(tree.Root())
	if err != nil || !info.IsDir() {
		t.Fatalf("tree root is not a directory: %v", err)
	}

	// Populate, then remove and verify full teardown.
	if err := os.WriteFile(tree.Path("metadata.yml"), []byte("title: x"), 0o644); err != nil {
		t.Fatalf("writing into tree: %v", err)
	}

	root := tree.Root()
	if err := tree.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Errorf("tree root still exists after Remove()")
	}

	// Second Remove is a no-op.
	if err := tree.Remove(); err != nil {
		t.Errorf("second Remove() error = %v", err)
	}
}

func TestCreate_UniquePerBuild(t *testing.T) {
	t.Parallel()

	parent := t.TempDir()

	a, err := staging.Create(parent, "pdf")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer func() { _ = a.Remove() }()

	b, err := staging.Create(parent, "pdf")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	defer func() { _ = b.Remove() }()

	if a.Root() == b.Root() {
		t.Errorf("two trees share the same root %q", a.Root())
	}
}

// ---------------------------------------------------------------------------
// TestStageIllustrations - Extension-filtered asset copy
// ---------------------------------------------------------------------------

func TestStageIllustrations(t *testing.T) {
	t.Parallel()

	srcDir := t.TempDir()
	dstDir := filepath.Join(t.TempDir(), "illustrations")

	files := map[string]string{
		"fox.svg":    "<svg/>",
		"owl.PNG":    "png-bytes",
		"photo.jpeg": "jpeg-bytes",
		"anim.gif":   "gif-bytes",
		"notes.txt":  "not an image",
		"style.css":  "body{}",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(srcDir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(srcDir, "subdir"), 0o755); err != nil {
		t.Fatalf("creating subdir: %v", err)
	}

	n, err := staging.StageIllustrations(srcDir, dstDir)
	if err != nil {
		t.Fatalf("StageIllustrations() error = %v", err)
	}
	if n != 4 {
		t.Errorf("StageIllustrations() staged %d files, want 4", n)
	}

	for _, name := range []string{"fox.svg", "owl.PNG", "photo.jpeg", "anim.gif"} {
		if _, err := os.Stat(filepath.Join(dstDir, name)); err != nil {
			t.Errorf("expected %s in destination: %v", name, err)
		}
	}
	for _, name := range []string{"notes.txt", "style.css", "subdir"} {
		if _, err := os.Stat(filepath.Join(dstDir, name)); !os.IsNotExist(err) {
			t.Errorf("unexpected %s in destination", name)
		}
	}

	// Source must be intact.
	srcEntries, err := os.ReadDir(srcDir)
	if err != nil {
		t.Fatalf("reading source dir: %v", err)
	}
	if len(srcEntries) != len(files)+1 {
		t.Errorf("source dir has %d entries after staging, want %d", len(srcEntries), len(files)+1)
	}
}

func TestStageIllustrations_MissingSource(t *testing.T) {
	t.Parallel()

	_, err := staging.StageIllustrations(filepath.Join(t.TempDir(), "missing"), t.TempDir())
	if !errors.Is(err, staging.ErrSourceMissing) {
		t.Errorf("StageIllustrations() error = %v, want ErrSourceMissing", err)
	}
}
