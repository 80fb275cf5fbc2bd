package worker

import (
	"fmt"
	"os"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// ResolveInputs expands inPath into the images of the batch. An existing
// file is a batch of one. Anything else is a glob where ** matches any
// number of directories. Directories among the matches are dropped.
func ResolveInputs(inPath string) ([]string, error) {
	if info, err := os.Stat(inPath); err == nil && info.Mode().IsRegular() {
		return []string{inPath}, nil
	}

	matches, err := doublestar.FilepathGlob(inPath)
	if err != nil {
		return nil, fmt.Errorf("invalid input pattern %q: %w", inPath, err)
	}

	images := make([]string, 0, len(matches))
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		images = append(images, m)
	}
	sort.Strings(images)
	return images, nil
}
