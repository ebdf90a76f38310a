// Package resolver splices referenced templates into the units that use them.
//
// Resolution runs in two phases. Prepare expands every template in the symbol
// table, checking references and cycles; after it returns, the resolver is
// read-only and Resolve may be called from many goroutines.
package resolver

import (
	"fmt"

	"apidoc/internal/domain"
	"apidoc/internal/grammar"
	"apidoc/internal/symbols"
)

type key struct {
	kind domain.RefKind
	name string
}

func (k key) String() string {
	if k.kind == domain.RefStructure {
		return "structure " + k.name
	}
	return k.name
}

type Resolver struct {
	table    *symbols.Table
	expanded map[key][]domain.Element
	prepared bool
}

func New(table *symbols.Table) *Resolver {
	return &Resolver{
		table:    table,
		expanded: make(map[key][]domain.Element),
	}
}

// Prepare expands all templates. Definitions are visited before structures,
// each in name order, so the reported error is deterministic.
func (r *Resolver) Prepare() error {
	for _, u := range r.table.Definitions() {
		if _, err := r.expand(u, key{domain.RefDefinition, u.Name}, nil); err != nil {
			return err
		}
	}
	for _, u := range r.table.Structures() {
		if _, err := r.expand(u, key{domain.RefStructure, u.Name}, nil); err != nil {
			return err
		}
	}
	r.prepared = true
	return nil
}

// Resolve returns the elements of an endpoint with every reference replaced by
// the referenced template's expanded elements, inserted at the point of
// reference.
func (r *Resolver) Resolve(u *domain.DocUnit) ([]domain.Element, error) {
	if !r.prepared {
		return nil, fmt.Errorf("resolver: Resolve called before Prepare")
	}
	out := make([]domain.Element, 0, len(u.Elements))
	for _, el := range u.Elements {
		target, ok, err := r.target(u, el)
		if err != nil {
			return nil, err
		}
		if !ok {
			out = append(out, el)
			continue
		}
		out = append(out, r.expanded[target]...)
	}
	return out, nil
}

// expand returns the fully expanded elements of a template, memoized. stack
// holds the templates currently being expanded, outermost first.
func (r *Resolver) expand(u *domain.DocUnit, k key, stack []key) ([]domain.Element, error) {
	if els, ok := r.expanded[k]; ok {
		return els, nil
	}
	for i, s := range stack {
		if s == k {
			cycle := make([]string, 0, len(stack)-i+1)
			for _, c := range stack[i:] {
				cycle = append(cycle, c.String())
			}
			cycle = append(cycle, k.String())
			return nil, &domain.CyclicReferenceError{
				Location: domain.LocationOf(u, u.Header),
				Cycle:    cycle,
			}
		}
	}
	stack = append(stack, k)

	var out []domain.Element
	for _, el := range u.Elements {
		target, ok, err := r.target(u, el)
		if err != nil {
			return nil, err
		}
		if !ok {
			el.Origin = u.Name
			out = append(out, el)
			continue
		}
		tu := r.unit(target)
		els, err := r.expand(tu, target, stack)
		if err != nil {
			return nil, err
		}
		out = append(out, els...)
	}
	r.expanded[k] = out
	return out, nil
}

func (r *Resolver) unit(k key) *domain.DocUnit {
	if k.kind == domain.RefStructure {
		u, _ := r.table.Structure(k.name)
		return u
	}
	u, _ := r.table.Definition(k.name)
	return u
}

// target reports whether el is a reference and, if so, which template it
// names. Unknown names and family mismatches are errors.
func (r *Resolver) target(u *domain.DocUnit, el domain.Element) (key, bool, error) {
	spec, known := grammar.Lookup(el.Tag)
	if !known {
		return key{}, false, nil
	}
	switch spec.Family {
	case grammar.FamilyUse:
		name := el.Value.(domain.NameValue).Name
		if _, ok := r.table.Definition(name); ok {
			return key{domain.RefDefinition, name}, true, nil
		}
		detail := "no @apiDefine declares this name"
		if _, ok := r.table.Structure(name); ok {
			detail = "the name belongs to a structure, reference it with a structure tag"
		}
		return key{}, false, &domain.UnresolvedReferenceError{
			Location: domain.LocationOf(u, el),
			Name:     name,
			Detail:   detail,
		}
	case grammar.FamilyStructureRef:
		v := el.Value.(domain.StructureRefValue)
		su, ok := r.table.Structure(v.Name)
		if !ok {
			return key{}, false, &domain.UnresolvedReferenceError{
				Location: domain.LocationOf(u, el),
				Name:     v.Name,
				Detail:   "no " + v.Section.String() + " structure declares this name",
			}
		}
		if su.Section != v.Section {
			return key{}, false, &domain.UnresolvedReferenceError{
				Location: domain.LocationOf(u, el),
				Name:     v.Name,
				Detail:   fmt.Sprintf("%s is a %s structure, expected a %s structure", v.Name, su.Section, v.Section),
			}
		}
		return key{domain.RefStructure, v.Name}, true, nil
	}
	return key{}, false, nil
}
