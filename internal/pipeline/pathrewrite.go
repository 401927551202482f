// Package pipeline stages chapter text into the build tree with asset
// references rewritten for the target format's resolution rules.
package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Asset-reference tokens as they appear in chapter source text. The upward
// form is how chapters reference illustrations from the chapters/ directory;
// the user form is the editor's serving path for uploaded illustrations.
const (
	UpwardToken = "../illustrations/"
	UserToken   = "/user-illustrations/"
)

// Relative forms matching each target's staging layout.
const (
	// EPUBPrefix resolves against the staging root via pandoc's
	// resource path (sibling-directory form).
	EPUBPrefix = "illustrations/"

	// DottedPrefix is the dotted-relative form used by the PDF and HTML
	// targets, whose chapters are staged one level below the tree root.
	DottedPrefix = "./illustrations/"
)

// RewriteAssetRefs replaces every asset-reference token in content with the
// target prefix. The substitution is purely textual: nothing outside the
// matched tokens is altered.
func RewriteAssetRefs(content, prefix string) string {
	content = strings.ReplaceAll(content, UpwardToken, prefix)
	content = strings.ReplaceAll(content, UserToken, prefix)
	return content
}

// StageChapters reads each named chapter from srcDir, rewrites its asset
// references with prefix, and writes the result under dstDir with the same
// basename. A missing or unreadable chapter is fatal: the canonical set
// promises these files exist.
func StageChapters(srcDir, dstDir string, files []string, prefix string) error {
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating staged chapters directory: %w", err)
	}

	for _, name := range files {
		src := filepath.Join(srcDir, name)
		data, err := os.ReadFile(src) // #nosec G304 -- chapter names come from the build configuration
		if err != nil {
			return fmt.Errorf("reading chapter %s: %w", name, err)
		}

		rewritten := RewriteAssetRefs(string(data), prefix)

		dst := filepath.Join(dstDir, name)
		if err := os.WriteFile(dst, []byte(rewritten), 0o644); err != nil {
			return fmt.Errorf("staging chapter %s: %w", name, err)
		}
	}

	return nil
}
