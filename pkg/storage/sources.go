package storage

import (
	"fmt"
	"path/filepath"
	"strings"
)

// StaticPrefix marks a source that lives below the static root.
const StaticPrefix = "static:"

// Sources turns the source references used in requests into file paths.
// "static:img/a.jpg" resolves below StaticRoot, other relative references
// below MediaRoot and absolute paths are used as they are.
type Sources struct {
	MediaRoot  string
	StaticRoot string
}

// Resolve returns the file path of a source reference.
func (s Sources) Resolve(source string) (string, error) {
	root := s.MediaRoot
	if rest, ok := strings.CutPrefix(source, StaticPrefix); ok {
		root, source = s.StaticRoot, rest
	} else if filepath.IsAbs(source) {
		return source, nil
	}

	if root == "" {
		return "", fmt.Errorf("no root configured for source %q", source)
	}
	path := filepath.Join(root, filepath.FromSlash(source))
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("source %q is outside of %s", source, root)
	}
	return path, nil
}
