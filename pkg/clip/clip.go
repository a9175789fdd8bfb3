// Package clip adapts OS clipboard access for the Enter-to-copy operation
// (spec §4.12, §6). Not present in the retrieved pack; adopted from
// github.com/atotto/clipboard, the standard cross-platform Go clipboard
// library.
package clip

import (
	"fmt"

	"github.com/atotto/clipboard"
)

// Adapter is the narrow clipboard interface the TUI depends on, so tests can
// substitute a fake instead of touching the real OS clipboard.
type Adapter interface {
	WriteAll(text string) error
}

// OS is the real clipboard, backed by atotto/clipboard.
type OS struct{}

// WriteAll implements Adapter.
func (OS) WriteAll(text string) error { return clipboard.WriteAll(text) }

// Format renders "<path>:<line>:<column>" for a selected result, exactly the
// string spec §6 names.
func Format(path string, line, column uint32) string {
	return fmt.Sprintf("%s:%d:%d", path, line, column)
}
