package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Endpoint is one documented API endpoint as emitted in the data array.
type Endpoint struct {
	Type             string          `json:"type"`
	URL              string          `json:"url"`
	Title            string          `json:"title,omitempty"`
	Name             string          `json:"name"`
	Group            string          `json:"group"`
	GroupTitle       string          `json:"groupTitle,omitempty"`
	GroupDescription string          `json:"groupDescription,omitempty"`
	Version          string          `json:"version"`
	Description      string          `json:"description,omitempty"`
	Permission       []Permission    `json:"permission,omitempty"`
	Parameter        *FieldSection   `json:"parameter,omitempty"`
	Success          *FieldSection   `json:"success,omitempty"`
	Error            *FieldSection   `json:"error,omitempty"`
	Header           *FieldSection   `json:"header,omitempty"`
	Examples         []Example       `json:"examples,omitempty"`
	SampleRequest    []SampleRequest `json:"sampleRequest,omitempty"`
	Deprecated       *Deprecation    `json:"deprecated,omitempty"`
	Private          bool            `json:"private,omitempty"`
	Filename         string          `json:"filename"`
}

type Permission struct {
	Name        string `json:"name"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
}

type Field struct {
	Group         string   `json:"group"`
	Type          string   `json:"type,omitempty"`
	Size          string   `json:"size,omitempty"`
	AllowedValues []string `json:"allowedValues,omitempty"`
	Optional      bool     `json:"optional"`
	Field         string   `json:"field"`
	DefaultValue  string   `json:"defaultValue,omitempty"`
	Description   string   `json:"description,omitempty"`
}

type Example struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

type SampleRequest struct {
	URL string `json:"url"`
}

type Deprecation struct {
	Content string `json:"content,omitempty"`
}

// FieldGroup is one named group of fields inside a section.
type FieldGroup struct {
	Name   string
	Title  string
	Fields []Field
}

// FieldGroups keeps groups in declaration order and marshals as a JSON object.
type FieldGroups []*FieldGroup

// Get returns the group with the given name, creating it when missing.
func (g *FieldGroups) Get(name string) *FieldGroup {
	for _, fg := range *g {
		if fg.Name == name {
			return fg
		}
	}
	fg := &FieldGroup{Name: name}
	*g = append(*g, fg)
	return fg
}

func (g FieldGroups) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, fg := range g {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalNoEscape(fg.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fields := fg.Fields
		if fields == nil {
			fields = []Field{}
		}
		val, err := marshalNoEscape(fields)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// titles returns the group titles in declaration order, nil when none are set.
func (g FieldGroups) titles() groupTitles {
	var out groupTitles
	for _, fg := range g {
		if fg.Title != "" {
			out = append(out, [2]string{fg.Name, fg.Title})
		}
	}
	return out
}

type groupTitles [][2]string

func (t groupTitles) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, kv := range t {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalNoEscape(kv[0])
		if err != nil {
			return nil, err
		}
		v, err := marshalNoEscape(kv[1])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// FieldSection holds the field groups and examples of one section.
type FieldSection struct {
	Fields   FieldGroups
	Examples []Example
}

func (s *FieldSection) MarshalJSON() ([]byte, error) {
	out := struct {
		Fields      FieldGroups `json:"fields,omitempty"`
		FieldsTitle groupTitles `json:"fieldsTitle,omitempty"`
		Examples    []Example   `json:"examples,omitempty"`
	}{s.Fields, s.Fields.titles(), s.Examples}
	return marshalNoEscape(out)
}

// Empty reports whether the section carries nothing worth emitting.
func (s *FieldSection) Empty() bool {
	return s == nil || (len(s.Fields) == 0 && len(s.Examples) == 0)
}

func marshalNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// SampleURL is the project-level sample request base. The empty value is
// serialized as false, matching a disabled sample request form.
type SampleURL string

func (u SampleURL) Enabled() bool {
	return u != ""
}

func (u SampleURL) MarshalJSON() ([]byte, error) {
	if u == "" {
		return []byte("false"), nil
	}
	return marshalNoEscape(string(u))
}

func (u *SampleURL) UnmarshalJSON(data []byte) error {
	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			return fmt.Errorf("sampleUrl: true is not a URL")
		}
		*u = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("sampleUrl: %w", err)
	}
	*u = SampleURL(s)
	return nil
}

func (u *SampleURL) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!bool" {
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		if b {
			return fmt.Errorf("sampleUrl: true is not a URL (line %d)", node.Line)
		}
		*u = ""
		return nil
	}
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("sampleUrl: %w", err)
	}
	*u = SampleURL(s)
	return nil
}

// Generator identifies the tool that produced the output.
type Generator struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Time    string `json:"time,omitempty"`
	URL     string `json:"url"`
}

// PageSection is a rendered header or footer page.
type PageSection struct {
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// ProjectMetadata is emitted as the project JSON object.
type ProjectMetadata struct {
	Name        string       `json:"name"`
	Version     string       `json:"version"`
	Description string       `json:"description"`
	Title       string       `json:"title,omitempty"`
	URL         string       `json:"url,omitempty"`
	SampleURL   SampleURL    `json:"sampleUrl"`
	Header      *PageSection `json:"header,omitempty"`
	Footer      *PageSection `json:"footer,omitempty"`
	APIDoc      string       `json:"apidoc"`
	Generator   Generator    `json:"generator"`
}
