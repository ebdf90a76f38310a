package domain

import "fmt"

// SourceUnit is one input file as read from disk.
type SourceUnit struct {
	Path    string // path relative to its source root, forward slashes
	AbsPath string
	Lang    string // language key derived from the extension
	Text    string
}

// CommentBlock is a contiguous comment region with its inline prefixes stripped.
type CommentBlock struct {
	StartLine int
	EndLine   int
	Lines     []string
}

// Element is one parsed `@tag content` occurrence.
type Element struct {
	Tag        string // lower-cased, without '@'
	SourceName string // tag name as written
	Content    string
	Source     string // raw text including the tag
	File       string
	Line       int
	Value      any // parsed by the tag grammar, nil for unknown tags

	// Origin is the template name an element was spliced from. Empty for
	// elements declared directly on the unit.
	Origin string
}

// Inherited reports whether the element was spliced in from a template.
func (e Element) Inherited() bool {
	return e.Origin != ""
}

// UnitKind distinguishes endpoints from templates.
type UnitKind int

const (
	KindEndpoint UnitKind = iota
	KindDefinition
	KindStructure
	// KindGlobal is a block holding only project-wide registrations such as
	// legacy field-group titles. It is never emitted.
	KindGlobal
)

func (k UnitKind) String() string {
	switch k {
	case KindEndpoint:
		return "endpoint"
	case KindDefinition:
		return "definition"
	case KindStructure:
		return "structure"
	case KindGlobal:
		return "global"
	default:
		return fmt.Sprintf("UnitKind(%d)", int(k))
	}
}

// Section is a field-list family.
type Section int

const (
	SectionNone Section = iota
	SectionParameter
	SectionSuccess
	SectionError
	SectionHeader
)

func (s Section) String() string {
	switch s {
	case SectionParameter:
		return "parameter"
	case SectionSuccess:
		return "success"
	case SectionError:
		return "error"
	case SectionHeader:
		return "header"
	default:
		return "none"
	}
}

// DefaultGroup is the field group used when a field tag names none.
func (s Section) DefaultGroup() string {
	switch s {
	case SectionParameter:
		return "Parameter"
	case SectionSuccess:
		return "Success 200"
	case SectionError:
		return "Error 4xx"
	case SectionHeader:
		return "Header"
	default:
		return ""
	}
}

// DocUnit is one logical documentation entry: the top-level element and every
// element that follows it in the same comment block.
type DocUnit struct {
	Kind      UnitKind
	Name      string  // declared name for templates, empty for endpoints until normalized
	Section   Section // structure family, SectionNone otherwise
	Header    Element
	Elements  []Element
	File      string
	Block     int // 1-based block index within File
	StartLine int
	EndLine   int
	Ignored   bool
}

// Ref identifies the unit in diagnostics.
func (u *DocUnit) Ref() string {
	if u.Name != "" {
		return fmt.Sprintf("%s (block %d)", u.Name, u.Block)
	}
	return fmt.Sprintf("%s (block %d)", u.Header.Content, u.Block)
}

// Location formats file and line for diagnostics.
func (u *DocUnit) Location() string {
	return fmt.Sprintf("%s:%d", u.File, u.StartLine)
}

// RefKind is the kind of a ReferenceEdge.
type RefKind int

const (
	RefDefinition RefKind = iota
	RefStructure
)

func (k RefKind) String() string {
	if k == RefStructure {
		return "use-structure"
	}
	return "use-definition"
}

// ReferenceEdge is a reference from a consuming unit to a named template.
type ReferenceEdge struct {
	Consumer *DocUnit
	Element  Element
	Name     string
	Kind     RefKind
	Section  Section // required structure family for RefStructure
}

// FileResult is the extraction output for one SourceUnit.
type FileResult struct {
	File  string
	Units []*DocUnit
	Edges []ReferenceEdge
}
