// Package symbols is the registry of named templates declared anywhere in
// the input set. A Table is built once and read-only afterwards.
package symbols

import (
	"fmt"
	"sort"

	"apidoc/internal/domain"
	"apidoc/internal/grammar"
)

type titleEntry struct {
	title string
	loc   string
}

// Table maps template names to their declaring units.
type Table struct {
	definitions map[string]*domain.DocUnit
	structures  map[string]*domain.DocUnit
	fieldTitles map[domain.Section]map[string]titleEntry
}

// Build registers every definition and structure in units. Units are visited
// in the given order, so the first declaration of a duplicated name is the one
// reported as previous.
func Build(units []*domain.DocUnit) (*Table, error) {
	t := &Table{
		definitions: make(map[string]*domain.DocUnit),
		structures:  make(map[string]*domain.DocUnit),
		fieldTitles: make(map[domain.Section]map[string]titleEntry),
	}

	for _, u := range units {
		switch u.Kind {
		case domain.KindDefinition:
			if err := register(t.definitions, u); err != nil {
				return nil, err
			}
		case domain.KindStructure:
			if err := register(t.structures, u); err != nil {
				return nil, err
			}
		}
		if err := t.collectGlobals(u); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func register(m map[string]*domain.DocUnit, u *domain.DocUnit) error {
	if prev, ok := m[u.Name]; ok {
		return &domain.DuplicateDefinitionError{
			Location: domain.LocationOf(u, u.Header),
			Name:     u.Name,
			Previous: prev.Location(),
		}
	}
	m[u.Name] = u
	return nil
}

// collectGlobals registers the legacy field-group title tags of a unit,
// header included: a global unit is headed by one.
func (t *Table) collectGlobals(u *domain.DocUnit) error {
	elements := append([]domain.Element{u.Header}, u.Elements...)
	for _, el := range elements {
		spec, ok := grammar.Lookup(el.Tag)
		if !ok || spec.Role != grammar.RoleGlobal {
			continue
		}
		v := el.Value.(domain.FieldTitleValue)
		titles := t.fieldTitles[v.Section]
		if titles == nil {
			titles = make(map[string]titleEntry)
			t.fieldTitles[v.Section] = titles
		}
		loc := fmt.Sprintf("%s:%d", el.File, el.Line)
		if prev, ok := titles[v.Group]; ok && prev.title != v.Title {
			return &domain.DuplicateDefinitionError{
				Location: domain.LocationOf(u, el),
				Name:     v.Group,
				Previous: prev.loc,
			}
		} else if ok {
			continue
		}
		titles[v.Group] = titleEntry{title: v.Title, loc: loc}
	}
	return nil
}

// Definition returns the definition unit declared under name.
func (t *Table) Definition(name string) (*domain.DocUnit, bool) {
	u, ok := t.definitions[name]
	return u, ok
}

// Structure returns the structure unit declared under name.
func (t *Table) Structure(name string) (*domain.DocUnit, bool) {
	u, ok := t.structures[name]
	return u, ok
}

// Define returns the header of the definition declared under name.
func (t *Table) Define(name string) (domain.DefineValue, bool) {
	u, ok := t.definitions[name]
	if !ok {
		return domain.DefineValue{}, false
	}
	return u.Header.Value.(domain.DefineValue), true
}

// FieldTitle returns the display title of a field group. Legacy title tags
// take precedence over a definition of the same name.
func (t *Table) FieldTitle(section domain.Section, group string) (string, bool) {
	if e, ok := t.fieldTitles[section][group]; ok {
		return e.title, true
	}
	if d, ok := t.Define(group); ok && d.Title != "" {
		return d.Title, true
	}
	return "", false
}

// Definitions returns all definition units ordered by name.
func (t *Table) Definitions() []*domain.DocUnit {
	return sortedUnits(t.definitions)
}

// Structures returns all structure units ordered by name.
func (t *Table) Structures() []*domain.DocUnit {
	return sortedUnits(t.structures)
}

func sortedUnits(m map[string]*domain.DocUnit) []*domain.DocUnit {
	out := make([]*domain.DocUnit, 0, len(m))
	for _, u := range m {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
