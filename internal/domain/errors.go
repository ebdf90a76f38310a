package domain

import (
	"fmt"
	"strings"
)

// ErrorKind classifies a fatal run error.
type ErrorKind int

const (
	KindResource ErrorKind = iota
	KindExtraction
	KindSemantic
)

func (k ErrorKind) String() string {
	switch k {
	case KindResource:
		return "resource"
	case KindExtraction:
		return "extraction"
	default:
		return "semantic"
	}
}

// RunError is implemented by every error of the taxonomy. Fields returns the
// structured context that is attached to the log entry.
type RunError interface {
	error
	Kind() ErrorKind
	Fields() map[string]any
}

// ResourceError is a file or path access failure.
type ResourceError struct {
	Path string
	Err  error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("cannot access %s: %v", e.Path, e.Err)
}

func (e *ResourceError) Unwrap() error   { return e.Err }
func (e *ResourceError) Kind() ErrorKind { return KindResource }

func (e *ResourceError) Fields() map[string]any {
	return map[string]any{"Path": e.Path}
}

// Location pins a diagnostic to a block and element of a source file.
type Location struct {
	File    string
	Block   string
	Element string // tag name as written, without '@'
	Line    int
	Source  string
}

// LocationOf builds a Location for an element of a unit.
func LocationOf(u *DocUnit, el Element) Location {
	loc := Location{
		File:    el.File,
		Element: el.SourceName,
		Line:    el.Line,
		Source:  el.Source,
	}
	if u != nil {
		loc.Block = u.Ref()
		if loc.File == "" {
			loc.File = u.File
		}
	}
	return loc
}

func (l Location) fields() map[string]any {
	f := map[string]any{}
	if l.File != "" {
		f["File"] = l.File
	}
	if l.Block != "" {
		f["Block"] = l.Block
	}
	if l.Element != "" {
		f["Element"] = "@" + l.Element
	}
	if l.Line > 0 {
		f["Line"] = l.Line
	}
	if l.Source != "" {
		f["Source"] = l.Source
	}
	return f
}

// ParseError is malformed tag syntax found during extraction.
type ParseError struct {
	Location
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: @%s: %s", e.File, e.Line, e.Element, e.Msg)
}

func (e *ParseError) Kind() ErrorKind        { return KindExtraction }
func (e *ParseError) Fields() map[string]any { return e.fields() }

// UnresolvedReferenceError is a reference to a template that does not exist.
type UnresolvedReferenceError struct {
	Location
	Name   string
	Detail string
}

func (e *UnresolvedReferenceError) Error() string {
	msg := fmt.Sprintf("unresolved reference %q in %s", e.Name, e.Block)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *UnresolvedReferenceError) Kind() ErrorKind { return KindSemantic }

func (e *UnresolvedReferenceError) Fields() map[string]any {
	f := e.fields()
	f["Definition"] = e.Name
	return f
}

// DuplicateDefinitionError is a second declaration of a template name.
type DuplicateDefinitionError struct {
	Location
	Name     string
	Previous string // file:line of the first declaration
}

func (e *DuplicateDefinitionError) Error() string {
	return fmt.Sprintf("%q is already defined at %s, redefined at %s:%d", e.Name, e.Previous, e.File, e.Line)
}

func (e *DuplicateDefinitionError) Kind() ErrorKind { return KindSemantic }

func (e *DuplicateDefinitionError) Fields() map[string]any {
	f := e.fields()
	f["Definition"] = e.Name
	f["Previous"] = e.Previous
	return f
}

// CyclicReferenceError is a template that, directly or transitively,
// references itself.
type CyclicReferenceError struct {
	Location
	Cycle []string
}

func (e *CyclicReferenceError) Error() string {
	return "cyclic reference: " + strings.Join(e.Cycle, " -> ")
}

func (e *CyclicReferenceError) Kind() ErrorKind { return KindSemantic }

func (e *CyclicReferenceError) Fields() map[string]any {
	f := e.fields()
	f["Definition"] = strings.Join(e.Cycle, " -> ")
	return f
}

// DuplicateEndpointError is two endpoints sharing group, name and version.
type DuplicateEndpointError struct {
	Location
	Group    string
	Name     string
	Version  string
	Previous string
}

func (e *DuplicateEndpointError) Error() string {
	return fmt.Sprintf("duplicate endpoint group=%q name=%q version=%s (first declared in %s)", e.Group, e.Name, e.Version, e.Previous)
}

func (e *DuplicateEndpointError) Kind() ErrorKind { return KindSemantic }

func (e *DuplicateEndpointError) Fields() map[string]any {
	f := e.fields()
	f["Previous"] = e.Previous
	return f
}

// NormalizationError is a violated precondition of a normalization rule.
type NormalizationError struct {
	Location
	Msg        string
	Definition string
	Example    string
}

func (e *NormalizationError) Error() string {
	return e.Msg
}

func (e *NormalizationError) Kind() ErrorKind { return KindSemantic }

func (e *NormalizationError) Fields() map[string]any {
	f := e.fields()
	if e.Definition != "" {
		f["Definition"] = e.Definition
	}
	if e.Example != "" {
		f["Example"] = e.Example
	}
	return f
}
