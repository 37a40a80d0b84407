package fs

import (
	"path/filepath"
	"strings"

	gitignore "github.com/monochromegane/go-gitignore"
)

// Excluder skips paths matching gitignore-style patterns, plus any number of
// directories excluded outright (e.g. a destination nested in the source).
type Excluder struct {
	matcher gitignore.IgnoreMatcher
	dirs    []string
}

// NewExcluder compiles patterns relative to root, which must be absolute.
func NewExcluder(root string, patterns []string, dirs ...string) *Excluder {
	x := &Excluder{}

	if len(patterns) > 0 {
		x.matcher = gitignore.NewGitIgnoreFromReader(root, strings.NewReader(strings.Join(patterns, "\n")))
	}

	for _, d := range dirs {
		if d != "" {
			x.dirs = append(x.dirs, filepath.Clean(d))
		}
	}

	return x
}

func (x *Excluder) Match(path string, isDir bool) bool {
	if x == nil {
		return false
	}

	path = filepath.Clean(path)
	for _, d := range x.dirs {
		if isUnder(path, d) {
			return true
		}
	}

	return x.matcher != nil && x.matcher.Match(path, isDir)
}

func isUnder(path, base string) bool {
	if path == base {
		return true
	}
	return strings.HasPrefix(path, base+string(filepath.Separator))
}
