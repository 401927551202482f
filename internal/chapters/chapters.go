// Package chapters resolves the order in which chapter source files enter a
// book build.
//
// The canonical chapter set is fixed in the build configuration; the editor
// maintains an external ordering file (chapter-config.json) that may drift
// out of sync when chapters are renamed, removed, or added. Resequence
// reconciles the two: the ordering wins where it matches, and canonical
// files it does not mention are appended in their original relative order,
// so the output always covers the canonical set exactly once.
package chapters

import (
	"encoding/json"
	"fmt"
	"os"
)

// Chapter pairs a chapter source filename with its display title.
type Chapter struct {
	File  string
	Title string
}

// Entry is one element of the external ordering configuration.
type Entry struct {
	Title string `json:"title"`
	File  string `json:"file"`
}

// Ordering is the external ordering configuration document.
type Ordering struct {
	Chapters []Entry `json:"chapters"`
}

// Result is the reconciled chapter sequence plus a drift report.
type Result struct {
	// Chapters has exactly one element per canonical chapter.
	Chapters []Chapter

	// Dropped lists ordering entries referencing files outside the
	// canonical set (stale config: renamed or removed chapters).
	Dropped []string

	// Appended lists canonical files absent from the ordering config
	// (incomplete config: newly added chapters).
	Appended []string
}

// LoadOrdering reads the ordering configuration from path. A missing file is
// not an error: the editor may never have saved an ordering, in which case
// the canonical order applies unchanged.
func LoadOrdering(path string) (*Ordering, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from the build configuration
	if err != nil {
		if os.IsNotExist(err) {
			return &Ordering{}, nil
		}
		return nil, fmt.Errorf("reading ordering config: %w", err)
	}

	var ord Ordering
	if err := json.Unmarshal(data, &ord); err != nil {
		return nil, fmt.Errorf("parsing ordering config %s: %w", path, err)
	}
	return &ord, nil
}

// Resequence reorders the canonical chapter set according to the ordering
// entries. Each entry whose file exists in the canonical set is emitted once
// with the entry's title; duplicates and unknown files are dropped. Canonical
// chapters not consumed by the ordering are appended afterwards in canonical
// order, keeping their default titles. The result length always equals
// len(canonical).
func Resequence(canonical []Chapter, entries []Entry) Result {
	remaining := make(map[string]Chapter, len(canonical))
	for _, ch := range canonical {
		remaining[ch.File] = ch
	}

	var res Result
	res.Chapters = make([]Chapter, 0, len(canonical))

	for _, e := range entries {
		ch, ok := remaining[e.File]
		if !ok {
			res.Dropped = append(res.Dropped, e.File)
			continue
		}
		if e.Title != "" {
			ch.Title = e.Title
		}
		res.Chapters = append(res.Chapters, ch)
		delete(remaining, e.File)
	}

	for _, ch := range canonical {
		if _, ok := remaining[ch.File]; !ok {
			continue
		}
		res.Chapters = append(res.Chapters, ch)
		res.Appended = append(res.Appended, ch.File)
	}

	return res
}

// Files returns just the filenames of a resequenced chapter list.
func Files(chs []Chapter) []string {
	files := make([]string, len(chs))
	for i, ch := range chs {
		files[i] = ch.File
	}
	return files
}
