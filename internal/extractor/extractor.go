// Package extractor turns source files into documentation units: comment
// blocks are split into tag elements, each element is parsed by the tag
// grammar, and elements are grouped at top-level tags.
package extractor

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"apidoc/internal/adapter/comment"
	"apidoc/internal/domain"
	"apidoc/internal/grammar"
)

var (
	tagLine     = regexp.MustCompile(`^\s*@(\w+)(?:\s(.*))?$`)
	escapedLine = regexp.MustCompile(`^(\s*)\\@`)
)

// Extractor is safe for concurrent use; it holds no per-file state.
type Extractor struct {
	comments *comment.Extractor
}

func New(comments *comment.Extractor) *Extractor {
	return &Extractor{comments: comments}
}

// Language returns the language key used for a path.
func (x *Extractor) Language(path string) string {
	return x.comments.Language(path)
}

// Extract parses one source unit into documentation units and the references
// they make. Ignored units are returned separately so callers can report them.
func (x *Extractor) Extract(src domain.SourceUnit) (*domain.FileResult, []*domain.DocUnit, error) {
	result := &domain.FileResult{File: src.Path}
	var ignored []*domain.DocUnit

	blocks := x.comments.Extract(src.Text, src.Lang)
	for i, block := range blocks {
		elements, err := splitElements(block, src.Path)
		if err != nil {
			return nil, nil, err
		}
		units, err := groupUnits(elements, src.Path, i+1, block)
		if err != nil {
			return nil, nil, err
		}
		for _, u := range units {
			if u.Ignored {
				ignored = append(ignored, u)
				continue
			}
			result.Units = append(result.Units, u)
			result.Edges = append(result.Edges, edgesOf(u)...)
		}
	}
	return result, ignored, nil
}

// splitElements cuts a block into elements. An element runs from its tag line
// up to the next tag line.
func splitElements(block domain.CommentBlock, file string) ([]domain.Element, error) {
	var (
		elements []domain.Element
		current  *domain.Element
		body     []string
	)

	finish := func() error {
		if current == nil {
			return nil
		}
		for len(body) > 0 && strings.TrimSpace(body[len(body)-1]) == "" {
			body = body[:len(body)-1]
		}
		current.Content = strings.Join(body, "\n")
		current.Source = "@" + current.SourceName
		if current.Content != "" {
			current.Source += " " + current.Content
		}
		if spec, ok := grammar.Lookup(current.Tag); ok {
			v, err := spec.Parse(current.Content)
			if err != nil {
				var se *grammar.SyntaxError
				msg := err.Error()
				if errors.As(err, &se) {
					msg = se.Msg
				}
				return &domain.ParseError{
					Location: domain.Location{
						File:    file,
						Block:   blockRef(block),
						Element: current.SourceName,
						Line:    current.Line,
						Source:  current.Source,
					},
					Msg: msg,
				}
			}
			current.Value = v
		}
		elements = append(elements, *current)
		current, body = nil, nil
		return nil
	}

	for k, line := range block.Lines {
		if m := tagLine.FindStringSubmatch(line); m != nil {
			if err := finish(); err != nil {
				return nil, err
			}
			current = &domain.Element{
				Tag:        strings.ToLower(m[1]),
				SourceName: m[1],
				File:       file,
				Line:       block.StartLine + k,
			}
			body = []string{strings.TrimRight(m[2], " \t")}
			continue
		}
		if current == nil {
			continue
		}
		body = append(body, escapedLine.ReplaceAllString(strings.TrimRight(line, " \t"), "$1@"))
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return elements, nil
}

// groupUnits starts a new unit at every top-level element. Elements before the
// first top-level element belong to the first unit. A block without any
// top-level element yields a global unit when it holds a global tag and is an
// ordinary comment otherwise.
func groupUnits(elements []domain.Element, file string, index int, block domain.CommentBlock) ([]*domain.DocUnit, error) {
	var (
		units   []*domain.DocUnit
		leading []domain.Element
	)
	for _, el := range elements {
		spec, known := grammar.Lookup(el.Tag)
		if known && spec.Role.TopLevel() {
			u := newUnit(spec, el, file, index, block)
			if len(units) == 0 {
				u.Elements = append(u.Elements, leading...)
				leading = nil
			} else {
				units[len(units)-1].EndLine = el.Line - 1
			}
			units = append(units, u)
			continue
		}
		if len(units) == 0 {
			leading = append(leading, el)
			continue
		}
		units[len(units)-1].Elements = append(units[len(units)-1].Elements, el)
	}

	if len(units) == 0 {
		if u := globalUnit(leading, file, index, block); u != nil {
			units = append(units, u)
		}
	}

	for _, u := range units {
		if err := validateUnit(u); err != nil {
			return nil, err
		}
	}
	return units, nil
}

// globalUnit keeps a block without top-level tags when it registers
// project-wide data. Its first global element becomes the header.
func globalUnit(elements []domain.Element, file string, index int, block domain.CommentBlock) *domain.DocUnit {
	for i, el := range elements {
		spec, known := grammar.Lookup(el.Tag)
		if !known || spec.Role != grammar.RoleGlobal {
			continue
		}
		u := newUnit(spec, el, file, index, block)
		u.Elements = append(append(u.Elements, elements[:i]...), elements[i+1:]...)
		return u
	}
	return nil
}

func newUnit(spec *grammar.Spec, header domain.Element, file string, index int, block domain.CommentBlock) *domain.DocUnit {
	u := &domain.DocUnit{
		Header:    header,
		File:      file,
		Block:     index,
		StartLine: header.Line,
		EndLine:   block.EndLine,
	}
	switch spec.Role {
	case grammar.RoleEndpoint:
		u.Kind = domain.KindEndpoint
	case grammar.RoleDefinition:
		u.Kind = domain.KindDefinition
		u.Name = header.Value.(domain.DefineValue).Name
	case grammar.RoleStructure:
		u.Kind = domain.KindStructure
		u.Section = spec.Section
		u.Name = header.Value.(domain.NameValue).Name
	case grammar.RoleGlobal:
		u.Kind = domain.KindGlobal
	}
	return u
}

// validateUnit applies the block-level grammar: ignore markers and the
// restricted content of structures.
func validateUnit(u *domain.DocUnit) error {
	for _, el := range u.Elements {
		spec, known := grammar.Lookup(el.Tag)
		if !known {
			continue
		}
		if spec.Family == grammar.FamilyIgnore {
			u.Ignored = true
			continue
		}
		if u.Kind == domain.KindStructure && !grammar.AllowedInStructure(spec, u.Section) {
			return &domain.ParseError{
				Location: domain.LocationOf(u, el),
				Msg:      "@" + el.SourceName + " is not allowed inside a " + u.Section.String() + " structure",
			}
		}
	}
	return nil
}

func edgesOf(u *domain.DocUnit) []domain.ReferenceEdge {
	var edges []domain.ReferenceEdge
	for _, el := range u.Elements {
		switch v := el.Value.(type) {
		case domain.NameValue:
			if el.Tag == "apiuse" {
				edges = append(edges, domain.ReferenceEdge{Consumer: u, Element: el, Name: v.Name, Kind: domain.RefDefinition})
			}
		case domain.StructureRefValue:
			edges = append(edges, domain.ReferenceEdge{Consumer: u, Element: el, Name: v.Name, Kind: domain.RefStructure, Section: v.Section})
		}
	}
	return edges
}

func blockRef(block domain.CommentBlock) string {
	return fmt.Sprintf("lines %d-%d", block.StartLine, block.EndLine)
}
