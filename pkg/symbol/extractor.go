package symbol

import (
	"context"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// langSpec holds the tree-sitter language and the definition query used to
// extract symbols from one file type. Grounded directly on
// other_examples/1ec26aa1_petar-djukic-go-coder__internal-repomap-extract.go.go's
// supportedLangs map.
type langSpec struct {
	lang *sitter.Language
	// captures maps a tree-sitter query capture name to the Kind it denotes.
	captures map[string]Kind
	query    string
}

var supportedLangs = map[string]*langSpec{
	".rs": {
		lang: rust.GetLanguage(),
		captures: map[string]Kind{
			"fn.name":     Function,
			"struct.name": Struct,
			"enum.name":   Enum,
			"trait.name":  Interface,
			"const.name":  Constant,
			"mod.name":    Module,
		},
		query: `
			(function_item name: (identifier) @fn.name)
			(struct_item name: (type_identifier) @struct.name)
			(enum_item name: (type_identifier) @enum.name)
			(trait_item name: (type_identifier) @trait.name)
			(const_item name: (identifier) @const.name)
			(mod_item name: (identifier) @mod.name)
		`,
	},
	".go": {
		lang: golang.GetLanguage(),
		captures: map[string]Kind{
			"fn.name":     Function,
			"method.name": Method,
			"type.name":   Type,
			"const.name":  Constant,
			"var.name":    Variable,
		},
		query: `
			(function_declaration name: (identifier) @fn.name)
			(method_declaration name: (field_identifier) @method.name)
			(type_spec name: (type_identifier) @type.name)
			(const_spec name: (identifier) @const.name)
			(var_spec name: (identifier) @var.name)
		`,
	},
	".py": {
		lang: python.GetLanguage(),
		captures: map[string]Kind{
			"fn.name":    Function,
			"class.name": Class,
		},
		query: `
			(function_definition name: (identifier) @fn.name)
			(class_definition name: (identifier) @class.name)
		`,
	},
	".yaml": nil,
}

func jsSpec() *langSpec {
	return &langSpec{
		lang: javascript.GetLanguage(),
		captures: map[string]Kind{
			"fn.name":    Function,
			"class.name": Class,
			"var.name":   Variable,
			"method.name": Method,
		},
		query: `
			(function_declaration name: (identifier) @fn.name)
			(class_declaration name: (identifier) @class.name)
			(variable_declarator name: (identifier) @var.name)
			(method_definition name: (property_identifier) @method.name)
		`,
	}
}

func tsSpec() *langSpec {
	return &langSpec{
		lang: typescript.GetLanguage(),
		captures: map[string]Kind{
			"fn.name":        Function,
			"class.name":     Class,
			"var.name":       Variable,
			"method.name":    Method,
			"interface.name": Interface,
		},
		query: `
			(function_declaration name: (identifier) @fn.name)
			(class_declaration name: (type_identifier) @class.name)
			(variable_declarator name: (identifier) @var.name)
			(method_definition name: (property_identifier) @method.name)
			(interface_declaration name: (type_identifier) @interface.name)
		`,
	}
}

func init() {
	js := jsSpec()
	// JavaScript module and CommonJS variants share one grammar and query
	// set (spec §4.6: "JavaScript (including module and common-JS
	// variants)").
	supportedLangs[".js"] = js
	supportedLangs[".jsx"] = js
	supportedLangs[".mjs"] = js
	supportedLangs[".cjs"] = js

	ts := tsSpec()
	supportedLangs[".ts"] = ts
	supportedLangs[".tsx"] = ts

	delete(supportedLangs, ".yaml")
}

// Supported reports whether ext has a registered extractor.
func Supported(ext string) bool {
	_, ok := supportedLangs[ext]
	return ok
}

// Extract is the pure function of spec §4.6: given an extension and source
// text, it returns an ordered (by line, then column) sequence of Symbol.
// Files without a registered extractor yield an empty sequence, not an
// error. Tree-sitter's error-tolerant parser is used, so malformed input
// never panics and partial results are returned.
func Extract(ctx context.Context, filepath, ext string, source []byte) ([]Symbol, error) {
	spec, ok := supportedLangs[ext]
	if !ok {
		return nil, nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(spec.lang)
	tree, err := parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, nil // never propagate a parse failure; return empty.
	}
	defer tree.Close()

	q, err := sitter.NewQuery([]byte(spec.query), spec.lang)
	if err != nil {
		return nil, nil
	}
	defer q.Close()

	cursor := sitter.NewQueryCursor()
	defer cursor.Close()
	cursor.Exec(q, tree.RootNode())

	var symbols []Symbol
	for {
		m, ok := cursor.NextMatch()
		if !ok {
			break
		}
		for _, c := range m.Captures {
			name := q.CaptureNameForId(c.Index)
			kind, ok := spec.captures[name]
			if !ok {
				continue
			}
			node := c.Node
			text := node.Content(source)
			point := node.StartPoint()
			symbols = append(symbols, Symbol{
				Filepath: filepath,
				Line:     point.Row + 1,
				Column:   point.Column + 1,
				Name:     text,
				Content:  FormatContent(kind, text),
				Kind:     kind,
			})
		}
	}

	sort.SliceStable(symbols, func(i, j int) bool {
		if symbols[i].Line != symbols[j].Line {
			return symbols[i].Line < symbols[j].Line
		}
		return symbols[i].Column < symbols[j].Column
	})
	return symbols, nil
}

// Cache memoizes Extract results keyed by the xxhash of file content, so a
// write that round-trips to the same bytes within one watcher poll interval
// is not re-extracted twice (a supplement grounded on
// original_source/tests/cache_test.rs; the cache itself is in-memory only,
// per spec's Non-goal on a persistent on-disk cache format).
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	hash    uint64
	symbols []Symbol
}

// NewCache constructs an empty extraction cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]cacheEntry)}
}

// ExtractCached behaves like Extract but skips re-parsing when filepath's
// content hash is unchanged since the last successful extraction.
func (c *Cache) ExtractCached(ctx context.Context, path, ext string, source []byte) ([]Symbol, error) {
	h := xxhash.Sum64(source)

	c.mu.Lock()
	if entry, ok := c.entries[path]; ok && entry.hash == h {
		symbols := entry.symbols
		c.mu.Unlock()
		return symbols, nil
	}
	c.mu.Unlock()

	symbols, err := Extract(ctx, path, ext, source)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[path] = cacheEntry{hash: h, symbols: symbols}
	c.mu.Unlock()
	return symbols, nil
}

// Clear removes path's cache entry, e.g. on file deletion.
func (c *Cache) Clear(path string) {
	c.mu.Lock()
	delete(c.entries, path)
	c.mu.Unlock()
}
