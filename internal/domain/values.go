package domain

// Parsed tag contents. The tag grammar produces one of these per element.

type APIValue struct {
	Method string
	URL    string
	Title  string
}

type DefineValue struct {
	Name        string
	Title       string
	Description string
}

type FieldValue struct {
	Section       Section
	Group         string
	Type          string
	Size          string
	AllowedValues []string
	Optional      bool
	Field         string
	DefaultValue  string
	Description   string
}

type ExampleValue struct {
	Section Section // SectionNone for @apiExample
	Title   string
	Type    string
	Content string
}

// NameValue carries a single name: @apiUse, @apiGroup, @apiPermission and friends.
type NameValue struct {
	Name string
}

type StructureRefValue struct {
	Section Section
	Name    string
}

type TextValue struct {
	Text string
}

type VersionValue struct {
	Version string
}

// FieldTitleValue is a legacy @apiParamTitle style registration.
type FieldTitleValue struct {
	Section Section
	Group   string
	Title   string
}

type SampleRequestValue struct {
	URL string
}

// FlagValue marks presence-only tags with optional free text.
type FlagValue struct {
	Text string
}
