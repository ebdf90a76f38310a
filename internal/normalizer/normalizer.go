// Package normalizer applies the per-tag-family rules that turn a resolved
// endpoint unit into an output Endpoint.
package normalizer

import (
	"fmt"
	"path"
	"regexp"
	"strings"

	"apidoc/internal/domain"
	"apidoc/internal/grammar"
	"apidoc/internal/port"
	"apidoc/internal/symbols"
)

// Options carries the project values the rules depend on.
type Options struct {
	ProjectVersion string
	SampleURL      domain.SampleURL
}

// Normalizer is safe for concurrent use once built: the symbol table is
// read-only and the logger and renderer are required to be.
type Normalizer struct {
	table    *symbols.Table
	opts     Options
	renderer port.Renderer
	log      port.Logger
}

// New builds a normalizer. renderer may be nil, in which case free text is
// passed through unrendered.
func New(table *symbols.Table, opts Options, renderer port.Renderer, log port.Logger) *Normalizer {
	if opts.ProjectVersion == "" {
		opts.ProjectVersion = "0.0.0"
	}
	return &Normalizer{table: table, opts: opts, renderer: renderer, log: log}
}

// Diagnose reports deprecated and unknown tags over the raw units. It runs once
// per run so every occurrence is reported exactly once.
func (n *Normalizer) Diagnose(units []*domain.DocUnit) {
	for _, u := range units {
		n.diagnose(u, u.Header)
		for _, el := range u.Elements {
			n.diagnose(u, el)
		}
	}
}

func (n *Normalizer) diagnose(u *domain.DocUnit, el domain.Element) {
	loc := domain.LocationOf(u, el)
	fields := map[string]any{"File": loc.File, "Block": loc.Block, "Element": "@" + el.SourceName, "Line": el.Line}
	spec, known := grammar.Lookup(el.Tag)
	if !known {
		n.log.Warn(fmt.Sprintf("unknown tag @%s ignored", el.SourceName), fields)
		return
	}
	if spec.Replacement != "" {
		n.log.Warn(fmt.Sprintf("@%s is deprecated, please use @%s", el.SourceName, spec.Replacement), fields)
	}
}

type scalar struct {
	value string
	local bool
	set   bool
}

// assign applies the precedence rule: a value declared on the unit itself is
// never replaced by an inherited one; otherwise the later value wins.
func (s *scalar) assign(value string, inherited bool) {
	if s.set && s.local && inherited {
		return
	}
	s.value, s.local, s.set = value, !inherited, true
}

type fieldKey struct {
	section domain.Section
	group   string
	field   string
}

// Normalize builds the Endpoint for u from its resolved elements.
func (n *Normalizer) Normalize(u *domain.DocUnit, elements []domain.Element) (*domain.Endpoint, error) {
	api := u.Header.Value.(domain.APIValue)
	ep := &domain.Endpoint{
		Type:     api.Method,
		URL:      api.URL,
		Title:    api.Title,
		Filename: u.File,
	}

	var (
		group, name, version, description, groupDescription scalar
		samples                                             []string
		seenFields                                          = map[fieldKey]domain.Element{}
		seenPermissions                                     = map[string]bool{}
	)

	for _, el := range elements {
		spec, known := grammar.Lookup(el.Tag)
		if !known {
			continue
		}
		inherited := el.Inherited()
		switch v := el.Value.(type) {
		case domain.NameValue:
			switch spec.Family {
			case grammar.FamilyGroup:
				group.assign(v.Name, inherited)
			case grammar.FamilyName:
				name.assign(v.Name, inherited)
			case grammar.FamilyPermission:
				if seenPermissions[v.Name] {
					continue
				}
				seenPermissions[v.Name] = true
				p, err := n.permission(u, el, v.Name)
				if err != nil {
					return nil, err
				}
				ep.Permission = append(ep.Permission, p)
			}
		case domain.VersionValue:
			version.assign(v.Version, inherited)
		case domain.TextValue:
			switch spec.Family {
			case grammar.FamilyDescription:
				description.assign(v.Text, inherited)
			case grammar.FamilyGroupDescription:
				groupDescription.assign(v.Text, inherited)
			}
		case domain.FieldValue:
			k := fieldKey{v.Section, v.Group, v.Field}
			if prev, dup := seenFields[k]; dup {
				return nil, duplicateField(u, el, prev, v)
			}
			seenFields[k] = el
			fg := sectionOf(ep, v.Section).Fields.Get(v.Group)
			fg.Fields = append(fg.Fields, domain.Field{
				Group:         v.Group,
				Type:          v.Type,
				Size:          v.Size,
				AllowedValues: v.AllowedValues,
				Optional:      v.Optional,
				Field:         v.Field,
				DefaultValue:  v.DefaultValue,
				Description:   v.Description,
			})
		case domain.ExampleValue:
			ex := domain.Example{Title: v.Title, Content: v.Content, Type: v.Type}
			if v.Section == domain.SectionNone {
				ep.Examples = append(ep.Examples, ex)
			} else {
				s := sectionOf(ep, v.Section)
				s.Examples = append(s.Examples, ex)
			}
		case domain.SampleRequestValue:
			samples = append(samples, v.URL)
		case domain.FlagValue:
			switch spec.Family {
			case grammar.FamilyDeprecated:
				ep.Deprecated = &domain.Deprecation{Content: v.Text}
			case grammar.FamilyPrivate:
				ep.Private = true
			}
		}
	}

	ep.Group = group.value
	if ep.Group == "" {
		ep.Group = groupFromFile(u.File)
	}
	ep.Name = name.value
	if ep.Name == "" {
		ep.Name = defaultName(ep.Type, ep.URL)
	}
	ep.Version = version.value
	if ep.Version == "" {
		ep.Version = n.opts.ProjectVersion
	}
	ep.Description = description.value

	if d, ok := n.table.Define(ep.Group); ok {
		ep.GroupTitle = d.Title
		ep.GroupDescription = d.Description
	}
	if groupDescription.set {
		ep.GroupDescription = groupDescription.value
	}

	for _, sec := range sectionsOf(ep) {
		for _, fg := range sec.fields.Fields {
			if title, ok := n.table.FieldTitle(sec.section, fg.Name); ok {
				fg.Title = title
			}
		}
	}

	ep.SampleRequest = sampleRequests(samples, n.opts.SampleURL, ep.URL)

	if err := n.render(u, ep); err != nil {
		return nil, err
	}
	return ep, nil
}

func (n *Normalizer) permission(u *domain.DocUnit, el domain.Element, name string) (domain.Permission, error) {
	d, ok := n.table.Define(name)
	if !ok {
		return domain.Permission{}, &domain.NormalizationError{
			Location:   domain.LocationOf(u, el),
			Msg:        fmt.Sprintf("permission %q is not defined with @apiDefine", name),
			Definition: el.Origin,
		}
	}
	return domain.Permission{Name: name, Title: d.Title, Description: d.Description}, nil
}

func duplicateField(u *domain.DocUnit, el, prev domain.Element, v domain.FieldValue) error {
	origin := el.Origin
	if origin == "" {
		origin = prev.Origin
	}
	return &domain.NormalizationError{
		Location:   domain.LocationOf(u, el),
		Msg:        fmt.Sprintf("duplicate %s field %q in group %q (first declared at %s:%d)", v.Section, v.Field, v.Group, prev.File, prev.Line),
		Definition: origin,
	}
}

func sectionOf(ep *domain.Endpoint, s domain.Section) *domain.FieldSection {
	var slot **domain.FieldSection
	switch s {
	case domain.SectionParameter:
		slot = &ep.Parameter
	case domain.SectionSuccess:
		slot = &ep.Success
	case domain.SectionError:
		slot = &ep.Error
	default:
		slot = &ep.Header
	}
	if *slot == nil {
		*slot = &domain.FieldSection{}
	}
	return *slot
}

type namedSection struct {
	section domain.Section
	fields  *domain.FieldSection
}

// sectionsOf lists the non-nil sections of ep in output order.
func sectionsOf(ep *domain.Endpoint) []namedSection {
	var out []namedSection
	for _, ns := range []namedSection{
		{domain.SectionParameter, ep.Parameter},
		{domain.SectionSuccess, ep.Success},
		{domain.SectionError, ep.Error},
		{domain.SectionHeader, ep.Header},
	} {
		if ns.fields != nil {
			out = append(out, ns)
		}
	}
	return out
}

var nonWord = regexp.MustCompile(`\W`)

func groupFromFile(file string) string {
	base := path.Base(file)
	base = strings.TrimSuffix(base, path.Ext(base))
	return nonWord.ReplaceAllString(base, "_")
}

func defaultName(method, url string) string {
	if method == "" {
		return url
	}
	return strings.ToUpper(method) + " " + url
}

// sampleRequests merges local sample request targets with the project base
// URL. "off" disables the form for the endpoint.
func sampleRequests(local []string, base domain.SampleURL, url string) []domain.SampleRequest {
	if len(local) == 0 {
		if !base.Enabled() {
			return nil
		}
		return []domain.SampleRequest{{URL: string(base) + url}}
	}
	out := make([]domain.SampleRequest, 0, len(local))
	for _, target := range local {
		if target == "off" {
			return nil
		}
		if base.Enabled() && !isAbsoluteURL(target) {
			target = string(base) + target
		}
		out = append(out, domain.SampleRequest{URL: target})
	}
	return out
}

func isAbsoluteURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "//")
}
