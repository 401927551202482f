// Package svgclean normalizes SVG illustrations for EPUB embedding.
//
// EPUB readers are far stricter about SVG than browsers: a missing namespace
// declaration, an XML prolog, implicit dimensions, or opacity attributes can
// all break rendering. Sanitize applies purely textual fixes so that running
// it twice produces byte-identical output, and malformed input passes through
// unchanged.
package svgclean

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Namespace is the standard SVG namespace declaration injected when absent.
const Namespace = `xmlns="http://www.w3.org/2000/svg"`

// Default dimensions injected when the root element declares neither width
// nor height.
const (
	DefaultWidth  = "400"
	DefaultHeight = "300"
)

var (
	xmlPrologRe = regexp.MustCompile(`(?s)<\?xml.*?\?>`)
	svgOpenRe   = regexp.MustCompile(`<svg[^>]*>`)

	// Attribute form: the leading whitespace requirement keeps compound
	// attributes like fill-opacity intact.
	opacityAttrRe = regexp.MustCompile(`\s+opacity\s*=\s*"[^"]*"`)

	// CSS property form, inside <style> blocks or style="" attributes. The
	// leading boundary keeps fill-opacity / stroke-opacity intact; the
	// trailing semicolon is consumed so no dangling separator remains.
	opacityPropRe = regexp.MustCompile(`(^|[^-\w])opacity\s*:\s*[^;}"'<]*;?`)
)

// Sanitize applies the EPUB-compatibility transforms to SVG content.
// The transforms run in a fixed order and each is idempotent, so
// Sanitize(Sanitize(s)) == Sanitize(s) byte for byte. Content without an
// <svg> root is returned unchanged.
func Sanitize(content string) string {
	if !strings.Contains(content, "<svg") {
		return content
	}

	content = ensureNamespace(content)
	content = xmlPrologRe.ReplaceAllString(content, "")
	content = ensureDimensions(content)
	content = stripOpacity(content)

	return content
}

// ensureNamespace injects the SVG namespace on the root element if no
// declaration is present anywhere in the content.
func ensureNamespace(content string) string {
	if strings.Contains(content, Namespace) {
		return content
	}
	return strings.Replace(content, "<svg", "<svg "+Namespace, 1)
}

// ensureDimensions injects default width/height attributes on the opening
// <svg> tag when the content declares neither.
func ensureDimensions(content string) string {
	if strings.Contains(content, `width="`) && strings.Contains(content, `height="`) {
		return content
	}

	loc := svgOpenRe.FindStringIndex(content)
	if loc == nil {
		return content
	}

	// Insert before the closing '>', or before '/>' for self-closing roots.
	at := loc[1] - 1
	if at > 0 && content[at-1] == '/' {
		at--
	}
	return content[:at] + ` width="` + DefaultWidth + `" height="` + DefaultHeight + `"` + content[at:]
}

// stripOpacity removes opacity in both attribute and CSS-property form.
func stripOpacity(content string) string {
	content = opacityAttrRe.ReplaceAllString(content, "")
	content = opacityPropRe.ReplaceAllString(content, "$1")
	return content
}

// SanitizeDir sanitizes every .svg file in dir in place. Files that are
// already clean are left untouched. Unreadable or malformed files are
// skipped with a warning: sanitization is best-effort, never fatal.
func SanitizeDir(dir string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading illustrations directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".svg") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path) // #nosec G304 -- path is inside the staging tree
		if err != nil {
			logger.Warn("skipping unreadable SVG", "file", entry.Name(), "error", err)
			continue
		}

		cleaned := Sanitize(string(data))
		if cleaned == string(data) {
			continue
		}

		if err := os.WriteFile(path, []byte(cleaned), 0o644); err != nil {
			return fmt.Errorf("writing sanitized SVG %s: %w", entry.Name(), err)
		}
		logger.Debug("sanitized SVG", "file", entry.Name())
	}

	return nil
}
