package markedit

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Artifact describes one published build output.
type Artifact struct {
	Name    string    `json:"name"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
}

// artifactExtensions are the filename extensions BuildInfo reports on.
// Staging trees and stray files in the output directory are ignored.
var artifactExtensions = map[string]bool{
	".epub": true,
	".pdf":  true,
	".html": true,
}

// BuildInfo lists the artifacts currently in the output directory, newest
// first. An output directory that does not exist yet yields an empty list.
func (s *Service) BuildInfo() ([]Artifact, error) {
	entries, err := os.ReadDir(s.conf.OutputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading output directory: %w", err)
	}

	var artifacts []Artifact
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !artifactExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}
		artifacts = append(artifacts, Artifact{
			Name:    entry.Name(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].ModTime.After(artifacts[j].ModTime)
	})
	return artifacts, nil
}
