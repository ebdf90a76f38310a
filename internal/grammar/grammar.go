// Package grammar holds the fixed @tag vocabulary and the content grammar of
// every tag. It is pure data: no state survives a call.
package grammar

import (
	"strings"

	"apidoc/internal/domain"
)

// Role says what a tag does to the unit it appears in.
type Role int

const (
	// RoleLocal tags attach to the current unit.
	RoleLocal Role = iota
	// RoleEndpoint starts a new endpoint unit.
	RoleEndpoint
	// RoleDefinition starts a new definition unit.
	RoleDefinition
	// RoleStructure starts a new structure unit.
	RoleStructure
	// RoleGlobal tags register project-wide data in the symbol table.
	RoleGlobal
)

// TopLevel reports whether the role opens a new unit.
func (r Role) TopLevel() bool {
	return r == RoleEndpoint || r == RoleDefinition || r == RoleStructure
}

// Family groups tags that share a normalization rule.
type Family int

const (
	FamilyAPI Family = iota
	FamilyDefine
	FamilyDefineStructure
	FamilyField
	FamilyExample
	FamilyUse
	FamilyStructureRef
	FamilyGroup
	FamilyName
	FamilyVersion
	FamilyDescription
	FamilyPermission
	FamilySampleRequest
	FamilyDeprecated
	FamilyPrivate
	FamilyIgnore
	FamilyGroupDescription
	FamilyFieldTitle
)

// Spec describes one tag.
type Spec struct {
	Name    string // lower-case, without '@'
	Role    Role
	Family  Family
	Section domain.Section

	// Replacement names the modern tag when this spelling is deprecated.
	Replacement string

	parse func(content string) (any, error)
}

// Parse parses the content of an element of this tag.
func (s *Spec) Parse(content string) (any, error) {
	return s.parse(content)
}

var table = map[string]*Spec{}

func register(s *Spec) {
	table[s.Name] = s
}

// Lookup returns the spec for a tag name, matched case-insensitively.
func Lookup(tag string) (*Spec, bool) {
	s, ok := table[strings.ToLower(tag)]
	return s, ok
}

func init() {
	register(&Spec{Name: "api", Role: RoleEndpoint, Family: FamilyAPI, parse: parseAPI})

	register(&Spec{Name: "apidefine", Role: RoleDefinition, Family: FamilyDefine, parse: parseDefine})
	register(&Spec{Name: "apidefinepermission", Role: RoleDefinition, Family: FamilyDefine, Replacement: "apiDefine", parse: parseDefine})

	register(&Spec{Name: "apidefinestructure", Role: RoleStructure, Family: FamilyDefineStructure, Section: domain.SectionParameter, parse: parseName})
	register(&Spec{Name: "apidefinesuccessstructure", Role: RoleStructure, Family: FamilyDefineStructure, Section: domain.SectionSuccess, parse: parseName})
	register(&Spec{Name: "apidefineerrorstructure", Role: RoleStructure, Family: FamilyDefineStructure, Section: domain.SectionError, parse: parseName})
	register(&Spec{Name: "apidefineheaderstructure", Role: RoleStructure, Family: FamilyDefineStructure, Section: domain.SectionHeader, parse: parseName})

	register(&Spec{Name: "apiparam", Family: FamilyField, Section: domain.SectionParameter, parse: fieldParser(domain.SectionParameter)})
	register(&Spec{Name: "apisuccess", Family: FamilyField, Section: domain.SectionSuccess, parse: fieldParser(domain.SectionSuccess)})
	register(&Spec{Name: "apierror", Family: FamilyField, Section: domain.SectionError, parse: fieldParser(domain.SectionError)})
	register(&Spec{Name: "apiheader", Family: FamilyField, Section: domain.SectionHeader, parse: fieldParser(domain.SectionHeader)})

	register(&Spec{Name: "apiexample", Family: FamilyExample, parse: exampleParser(domain.SectionNone)})
	register(&Spec{Name: "apiparamexample", Family: FamilyExample, Section: domain.SectionParameter, parse: exampleParser(domain.SectionParameter)})
	register(&Spec{Name: "apisuccessexample", Family: FamilyExample, Section: domain.SectionSuccess, parse: exampleParser(domain.SectionSuccess)})
	register(&Spec{Name: "apierrorexample", Family: FamilyExample, Section: domain.SectionError, parse: exampleParser(domain.SectionError)})
	register(&Spec{Name: "apiheaderexample", Family: FamilyExample, Section: domain.SectionHeader, parse: exampleParser(domain.SectionHeader)})

	register(&Spec{Name: "apiuse", Family: FamilyUse, parse: parseName})
	register(&Spec{Name: "apistructure", Family: FamilyStructureRef, Section: domain.SectionParameter, parse: structureRefParser(domain.SectionParameter)})
	register(&Spec{Name: "apisuccessstructure", Family: FamilyStructureRef, Section: domain.SectionSuccess, parse: structureRefParser(domain.SectionSuccess)})
	register(&Spec{Name: "apierrorstructure", Family: FamilyStructureRef, Section: domain.SectionError, parse: structureRefParser(domain.SectionError)})
	register(&Spec{Name: "apiheaderstructure", Family: FamilyStructureRef, Section: domain.SectionHeader, parse: structureRefParser(domain.SectionHeader)})

	register(&Spec{Name: "apigroup", Family: FamilyGroup, parse: parseGroup})
	register(&Spec{Name: "apiname", Family: FamilyName, parse: parseName})
	register(&Spec{Name: "apiversion", Family: FamilyVersion, parse: parseVersion})
	register(&Spec{Name: "apidescription", Family: FamilyDescription, parse: parseText})
	register(&Spec{Name: "apipermission", Family: FamilyPermission, parse: parseName})
	register(&Spec{Name: "apisamplerequest", Family: FamilySampleRequest, parse: parseSampleRequest})
	register(&Spec{Name: "apideprecated", Family: FamilyDeprecated, parse: parseFlag})
	register(&Spec{Name: "apiprivate", Family: FamilyPrivate, parse: parseFlag})
	register(&Spec{Name: "apiignore", Family: FamilyIgnore, parse: parseFlag})
	register(&Spec{Name: "apigroupdescription", Family: FamilyGroupDescription, Replacement: "apiDefine", parse: parseText})

	register(&Spec{Name: "apiparamtitle", Role: RoleGlobal, Family: FamilyFieldTitle, Section: domain.SectionParameter, Replacement: "apiDefine", parse: fieldTitleParser(domain.SectionParameter)})
	register(&Spec{Name: "apisuccesstitle", Role: RoleGlobal, Family: FamilyFieldTitle, Section: domain.SectionSuccess, Replacement: "apiDefine", parse: fieldTitleParser(domain.SectionSuccess)})
	register(&Spec{Name: "apierrortitle", Role: RoleGlobal, Family: FamilyFieldTitle, Section: domain.SectionError, Replacement: "apiDefine", parse: fieldTitleParser(domain.SectionError)})
	register(&Spec{Name: "apiheadertitle", Role: RoleGlobal, Family: FamilyFieldTitle, Section: domain.SectionHeader, Replacement: "apiDefine", parse: fieldTitleParser(domain.SectionHeader)})
}

// AllowedInStructure reports whether a tag may appear inside a structure of
// the given family.
func AllowedInStructure(s *Spec, section domain.Section) bool {
	switch s.Family {
	case FamilyField, FamilyStructureRef, FamilyExample:
		return s.Section == section
	}
	return false
}
