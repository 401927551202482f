// Package staging owns the ephemeral working tree a book build runs in.
//
// A Tree is created per build invocation, populated with copies of every
// input (the sources are never mutated), handed to the converters, and
// removed unconditionally when the build ends.
package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/novohool/markedit/internal/fileutil"
)

// ErrSourceMissing reports a source directory the stager cannot read.
// Staging failures are fatal: missing upstream content means the source
// tree is malformed and no converter should run against it.
var ErrSourceMissing = errors.New("staging source directory missing")

// imageExtensions are the illustration formats copied into the tree.
var imageExtensions = map[string]bool{
	".svg":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
}

// Tree is a build-scoped staging directory. It is exclusively owned by one
// build session; Remove must run on every exit path.
type Tree struct {
	root string
}

// Create makes a fresh staging tree under parent, named after the target
// format so leftover trees from crashed processes are identifiable.
func Create(parent, format string) (*Tree, error) {
	if err := fileutil.EnsureDir(parent); err != nil {
		return nil, err
	}
	root, err := os.MkdirTemp(parent, "staging-"+format+"-")
	if err != nil {
		return nil, fmt.Errorf("creating staging tree: %w", err)
	}
	return &Tree{root: root}, nil
}

// Root returns the tree's root directory.
func (t *Tree) Root() string { return t.root }

// Path joins elements onto the tree root.
func (t *Tree) Path(elem ...string) string {
	return filepath.Join(append([]string{t.root}, elem...)...)
}

// Remove deletes the tree recursively. Safe to call more than once.
func (t *Tree) Remove() error {
	if t == nil || t.root == "" {
		return nil
	}
	err := os.RemoveAll(t.root)
	t.root = ""
	return err
}

// StageIllustrations copies every supported image file from srcDir into
// dstDir, preserving filenames. Subdirectories and unsupported extensions
// are skipped. Returns the number of files staged. A missing srcDir returns
// ErrSourceMissing.
func StageIllustrations(srcDir, dstDir string) (int, error) {
	entries, err := os.ReadDir(srcDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("%w: %s", ErrSourceMissing, srcDir)
		}
		return 0, fmt.Errorf("reading illustrations directory: %w", err)
	}

	if err := fileutil.EnsureDir(dstDir); err != nil {
		return 0, err
	}

	staged := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !imageExtensions[ext] {
			continue
		}
		if err := fileutil.CopyFile(filepath.Join(srcDir, entry.Name()), filepath.Join(dstDir, entry.Name())); err != nil {
			return staged, fmt.Errorf("staging illustration %s: %w", entry.Name(), err)
		}
		staged++
	}

	return staged, nil
}
