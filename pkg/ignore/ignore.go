// Package ignore wraps .gitignore-semantics matching for the native backend
// (spec §4.4) and the path-fuzzy actor (spec §4.9). No repo in the retrieved
// pack vendors a standalone ignore-rules library; this adopts
// github.com/sabhiram/go-gitignore from the wider ecosystem, matching
// spec §6's "ignore-rules library" external collaborator.
package ignore

import (
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// defaultHiddenAllow lists dot-entries that are conventionally walked despite
// the hidden-file rule (none by default; kept as an injection point).
var defaultHiddenAllow = map[string]bool{}

// Matcher decides whether a relative path should be skipped, honouring
// .gitignore, .ignore, and hidden-file conventions.
type Matcher struct {
	root     string
	patterns []*gitignore.GitIgnore
}

// New builds a Matcher rooted at root, loading the .gitignore and .ignore
// files found at the root. Ignore files in subdirectories are not read.
func New(root string) *Matcher {
	m := &Matcher{root: root}
	m.Reload()
	return m
}

// Reload re-reads the root-level ignore files. Call after a watcher reports
// a change to .gitignore or .ignore.
func (m *Matcher) Reload() {
	var patterns []*gitignore.GitIgnore
	for _, name := range []string{".gitignore", ".ignore"} {
		path := filepath.Join(m.root, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		gi, err := gitignore.CompileIgnoreFile(path)
		if err != nil {
			continue
		}
		patterns = append(patterns, gi)
	}
	m.patterns = patterns
}

// Skip reports whether relPath (relative to root, forward-slash separated)
// should be excluded from search and indexing.
func (m *Matcher) Skip(relPath string, isDir bool) bool {
	if isHidden(relPath) {
		return true
	}
	for _, gi := range m.patterns {
		if gi.MatchesPath(relPath) {
			return true
		}
	}
	return false
}

func isHidden(relPath string) bool {
	for _, part := range strings.Split(filepath.ToSlash(relPath), "/") {
		if part == "" || part == "." {
			continue
		}
		if strings.HasPrefix(part, ".") && !defaultHiddenAllow[part] {
			return true
		}
	}
	return false
}
