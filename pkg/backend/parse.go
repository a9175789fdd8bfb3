package backend

import (
	"fmt"
	"strconv"
	"strings"
)

// parseRipgrepLine parses "path:line:byte_offset:content" into a
// SearchResult with column = byte_offset, per spec §4.3 and
// original_source/src/services/backend/ripgrep.rs.
func parseRipgrepLine(line string) (SearchResult, bool) {
	parts := splitN(line, 3)
	if parts == nil {
		return SearchResult{}, false
	}
	lineNo, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return SearchResult{}, false
	}
	byteOffset, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return SearchResult{}, false
	}
	return SearchResult{
		Filename: parts[0],
		Line:     uint32(lineNo),
		Column:   uint32(byteOffset),
		Content:  parts[3],
	}, true
}

// formatRipgrepLine is the inverse of parseRipgrepLine, used by tests to
// verify format(parse(L)) == L modulo trailing whitespace (spec §8).
func formatRipgrepLine(r SearchResult) string {
	return fmt.Sprintf("%s:%d:%d:%s", r.Filename, r.Line, r.Column, r.Content)
}

// parseAgLine parses "path:line:column:content" into a SearchResult with
// column = column-1 (zero-indexed), per spec §4.3 and
// original_source/src/services/backend/ag.rs.
func parseAgLine(line string) (SearchResult, bool) {
	parts := splitN(line, 3)
	if parts == nil {
		return SearchResult{}, false
	}
	lineNo, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return SearchResult{}, false
	}
	column, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil || column == 0 {
		return SearchResult{}, false
	}
	return SearchResult{
		Filename: parts[0],
		Line:     uint32(lineNo),
		Column:   uint32(column - 1),
		Content:  parts[3],
	}, true
}

// formatAgLine is the inverse of parseAgLine.
func formatAgLine(r SearchResult) string {
	return fmt.Sprintf("%s:%d:%d:%s", r.Filename, r.Line, r.Column+1, r.Content)
}

// splitN splits line into exactly n+1 colon-delimited fields, with the last
// field allowed to contain further colons (it is the matched content).
// Windows-style "C:\..." drive letters are not a concern here: search roots
// inside a repository use forward-slash relative paths.
func splitN(line string, n int) []string {
	parts := make([]string, 0, n+1)
	rest := line
	for i := 0; i < n; i++ {
		idx := strings.Index(rest, ":")
		if idx < 0 {
			return nil
		}
		parts = append(parts, rest[:idx])
		rest = rest[idx+1:]
	}
	parts = append(parts, rest)
	return parts
}
