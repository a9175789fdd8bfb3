package backend

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/codesearchtools/seeker/pkg/ignore"
)

// DefaultExtensions is the native walker's default source-language set: the
// languages pkg/symbol registers tree-sitter extractors for, plus common
// plain-text formats (spec §4.4, §9 "externally injectable configuration").
var DefaultExtensions = []string{
	".rs", ".go", ".js", ".jsx", ".mjs", ".cjs", ".ts", ".tsx", ".py",
	".md", ".txt", ".toml", ".yaml", ".yml", ".json",
}

const (
	maxFileSize          = 1 << 20 // 1 MiB
	binaryDetectionBytes = 1 << 10 // 1 KiB
)

// NativeOptions configures the in-process walker.
type NativeOptions struct {
	Extensions  []string
	MaxFileSize int64
}

// DefaultNativeOptions returns the spec-mandated defaults.
func DefaultNativeOptions() NativeOptions {
	return NativeOptions{Extensions: DefaultExtensions, MaxFileSize: maxFileSize}
}

// NativeBackend is the in-process fallback backend used when neither ripgrep
// nor ag is available (spec §4.4). Its Descriptor is Native.
type NativeBackend struct {
	opts NativeOptions
}

// NewNative constructs a native backend with opts (zero value uses spec
// defaults).
func NewNative(opts NativeOptions) *NativeBackend {
	if len(opts.Extensions) == 0 {
		opts.Extensions = DefaultExtensions
	}
	if opts.MaxFileSize == 0 {
		opts.MaxFileSize = maxFileSize
	}
	return &NativeBackend{opts: opts}
}

// Descriptor implements Backend.
func (n *NativeBackend) Descriptor() Descriptor { return Native }

// SearchLiteral implements Backend.
func (n *NativeBackend) SearchLiteral(ctx context.Context, query, root string, token *Token, onMatch OnMatch) (int, error) {
	return n.search(root, token, onMatch, func(line string) (int, bool) {
		idx := strings.Index(line, query)
		if idx < 0 {
			return 0, false
		}
		return idx, true
	})
}

// SearchRegex implements Backend.
func (n *NativeBackend) SearchRegex(ctx context.Context, query, root string, token *Token, onMatch OnMatch) (int, error) {
	re, err := regexp.Compile(query)
	if err != nil {
		return 0, err
	}
	return n.search(root, token, onMatch, func(line string) (int, bool) {
		loc := re.FindStringIndex(line)
		if loc == nil {
			return 0, false
		}
		return loc[0], true
	})
}

// matchFunc returns the byte offset of the first match in line and whether
// one was found.
type matchFunc func(line string) (int, bool)

func (n *NativeBackend) search(root string, token *Token, onMatch OnMatch, match matchFunc) (int, error) {
	ig := ignore.New(root)
	count := 0
	filesSeen := 0

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // single-file IO errors are absorbed, per spec §7.
		}
		if token.IsCancelled() {
			return filepathSkipAll
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if info.IsDir() {
			if rel != "." && ig.Skip(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if ig.Skip(rel, false) {
			return nil
		}
		ext := filepath.Ext(path)
		if !extAllowed(n.opts.Extensions, ext) {
			return nil
		}
		if info.Size() > n.opts.MaxFileSize {
			return nil
		}

		filesSeen++
		if filesSeen%yieldEvery == 0 && token.IsCancelled() {
			return filepathSkipAll
		}

		n.scanFile(path, rel, match, onMatch, &count, token)
		return nil
	})
	if err == filepathSkipAll {
		err = nil
	}
	return count, err
}

// filepathSkipAll is a sentinel returned by the walk function to unwind the
// whole walk when cancellation is observed between files.
var filepathSkipAll = filepath.SkipAll

func (n *NativeBackend) scanFile(path, rel string, match matchFunc, onMatch OnMatch, count *int, token *Token) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	head := make([]byte, binaryDetectionBytes)
	nRead, _ := f.Read(head)
	if bytes.IndexByte(head[:nRead], 0) >= 0 {
		return // binary detection: first 1 KiB contains a zero byte.
	}
	if _, err := f.Seek(0, 0); err != nil {
		return
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := uint32(0)
	for scanner.Scan() {
		lineNo++
		if lineNo%yieldEvery == 0 && token.IsCancelled() {
			return
		}
		line := scanner.Text()
		offset, ok := match(line)
		if !ok {
			continue
		}
		onMatch(SearchResult{
			Filename: rel,
			Line:     lineNo,
			Column:   uint32(offset),
			Content:  line,
		})
		*count++
	}
}

func extAllowed(extensions []string, ext string) bool {
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// formatColumn renders a 1-based display column for CLI/table output.
func formatColumn(col uint32) string {
	return strconv.FormatUint(uint64(col+1), 10)
}
