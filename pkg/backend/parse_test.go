package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRipgrepLine(t *testing.T) {
	r, ok := parseRipgrepLine("src/main.rs:10:42:fn hello() {}")
	require.True(t, ok)
	assert.Equal(t, SearchResult{Filename: "src/main.rs", Line: 10, Column: 42, Content: "fn hello() {}"}, r)
}

func TestParseRipgrepLineMalformed(t *testing.T) {
	_, ok := parseRipgrepLine("not-a-valid-line")
	assert.False(t, ok)
}

func TestParseAgLine(t *testing.T) {
	r, ok := parseAgLine("src/main.rs:10:43:fn hello() {}")
	require.True(t, ok)
	assert.Equal(t, SearchResult{Filename: "src/main.rs", Line: 10, Column: 42, Content: "fn hello() {}"}, r)
}

func TestParseAgLineMalformed(t *testing.T) {
	_, ok := parseAgLine("src/main.rs:abc:43:content")
	assert.False(t, ok)
}

// TestParseFormatInverse verifies format(parse(L)) == L for valid lines, the
// property spec §8 requires of backend parsers.
func TestParseFormatInverse(t *testing.T) {
	line := "pkg/foo.go:7:12:func Foo() {}"
	r, ok := parseRipgrepLine(line)
	require.True(t, ok)
	assert.Equal(t, line, formatRipgrepLine(r))

	agLine := "pkg/foo.go:7:13:func Foo() {}"
	r2, ok := parseAgLine(agLine)
	require.True(t, ok)
	assert.Equal(t, agLine, formatAgLine(r2))
}
