// Package symbol implements the extractor (spec §4.6) and symbol index actor
// (spec §4.7): a tree-sitter based per-language extractor dispatched by file
// extension, and an actor owning the filepath→symbols map plus the fuzzy
// matcher used to answer symbol queries.
package symbol

// Kind is the closed set of symbol kinds spec §3 defines, each with a fixed
// short display tag used in Symbol.Content ("[<tag>] <name>").
type Kind int

const (
	Function Kind = iota
	Method
	Class
	Struct
	Enum
	Interface
	Variable
	Constant
	Module
	Type
	Field
	Parameter
)

var kindTags = map[Kind]string{
	Function:  "fn",
	Method:    "meth",
	Class:     "class",
	Struct:    "struct",
	Enum:      "enum",
	Interface: "iface",
	Variable:  "var",
	Constant:  "const",
	Module:    "mod",
	Type:      "type",
	Field:     "field",
	Parameter: "param",
}

// Tag returns the fixed short display tag for k.
func (k Kind) Tag() string {
	if t, ok := kindTags[k]; ok {
		return t
	}
	return "sym"
}

// Symbol is one extracted definition, per spec §3.
type Symbol struct {
	Filepath string
	Line     uint32 // 1-based
	Column   uint32 // 1-based
	Name     string
	Content  string // formatted display, e.g. "[fn] my_func"
	Kind     Kind
}

// FormatContent renders the "[<tag>] <name>" display string spec §3 and §4.7
// use both for initial extraction and for ranked symbol-search results.
func FormatContent(kind Kind, name string) string {
	return "[" + kind.Tag() + "] " + name
}
