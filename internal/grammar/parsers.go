package grammar

import (
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"apidoc/internal/domain"
)

// SyntaxError is returned when tag content does not match its grammar. The
// extractor attaches file and block context.
type SyntaxError struct {
	Msg string
}

func (e *SyntaxError) Error() string { return e.Msg }

func syntaxErr(msg string) error {
	return &SyntaxError{Msg: msg}
}

var (
	apiPattern = regexp.MustCompile(`(?s)^(?:\{\s*([^}]*?)\s*\})?\s*(\S+)(?:\s+(.+?))?\s*$`)

	// (group) {type{size}=allowed} [field=default] description
	fieldPattern = regexp.MustCompile(`(?s)^\s*` +
		`(?:\(\s*([^)]+?)\s*\)\s*)?` +
		`(?:\{\s*([a-zA-Z0-9()#:.\/\\\[\]_|-]+)\s*(?:\{\s*([^}]+?)\s*\}\s*)?(?:=\s*([^}]+?)\s*)?\}\s*)?` +
		`(\[?\s*([a-zA-Z0-9$:.\/\\_-]+(?:\[[a-zA-Z0-9.\/\\_-]*\])?)(?:\s*=\s*(?:"([^"]*)"|'([^']*)'|([^\s\]]*)))?\s*\]?)` +
		`\s*(.*)$`)

	exampleHeadPattern = regexp.MustCompile(`^(?:\{\s*([^}]*?)\s*\}\s*)?(.*)$`)
	fieldTitlePattern  = regexp.MustCompile(`(?s)^\(\s*([^)]+?)\s*\)\s*(.*?)\s*$`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
)

func parseAPI(content string) (any, error) {
	m := apiPattern.FindStringSubmatch(strings.TrimSpace(content))
	if m == nil || strings.HasPrefix(m[2], "{") {
		return nil, syntaxErr("missing endpoint path, expected: {method} path [title]")
	}
	return domain.APIValue{
		Method: strings.ToLower(m[1]),
		URL:    m[2],
		Title:  collapseLines(m[3]),
	}, nil
}

func parseDefine(content string) (any, error) {
	first, rest := splitFirstLine(content)
	first = strings.TrimSpace(first)
	if first == "" {
		return nil, syntaxErr("missing definition name")
	}
	name, title, _ := strings.Cut(first, " ")
	return domain.DefineValue{
		Name:        name,
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(unindent(rest)),
	}, nil
}

func parseName(content string) (any, error) {
	first, _ := splitFirstLine(content)
	name := strings.TrimSpace(first)
	if name == "" {
		return nil, syntaxErr("missing name")
	}
	return domain.NameValue{Name: name}, nil
}

func parseGroup(content string) (any, error) {
	first, _ := splitFirstLine(content)
	name := strings.TrimSpace(first)
	if name == "" {
		return nil, syntaxErr("missing group name")
	}
	return domain.NameValue{Name: whitespacePattern.ReplaceAllString(name, "_")}, nil
}

func parseVersion(content string) (any, error) {
	v := strings.TrimSpace(content)
	if v == "" {
		return nil, syntaxErr("missing version")
	}
	if _, err := semver.StrictNewVersion(v); err != nil {
		return nil, syntaxErr("version " + v + " is not a valid semantic version (x.y.z)")
	}
	return domain.VersionValue{Version: v}, nil
}

func parseText(content string) (any, error) {
	text := strings.TrimSpace(unindent(content))
	if text == "" {
		return nil, syntaxErr("missing text")
	}
	return domain.TextValue{Text: text}, nil
}

func parseFlag(content string) (any, error) {
	return domain.FlagValue{Text: strings.TrimSpace(unindent(content))}, nil
}

func parseSampleRequest(content string) (any, error) {
	first, _ := splitFirstLine(content)
	fields := strings.Fields(first)
	if len(fields) == 0 {
		return nil, syntaxErr("missing sample request url")
	}
	return domain.SampleRequestValue{URL: fields[0]}, nil
}

func fieldParser(section domain.Section) func(string) (any, error) {
	return func(content string) (any, error) {
		m := fieldPattern.FindStringSubmatch(content)
		if m == nil || m[6] == "" {
			return nil, syntaxErr("missing field name, expected: [(group)] [{type}] field [description]")
		}
		group := m[1]
		if group == "" {
			group = section.DefaultGroup()
		}
		def := m[7]
		if def == "" {
			def = m[8]
		}
		if def == "" {
			def = m[9]
		}
		return domain.FieldValue{
			Section:       section,
			Group:         group,
			Type:          m[2],
			Size:          m[3],
			AllowedValues: splitAllowedValues(m[4]),
			Optional:      strings.HasPrefix(m[5], "["),
			Field:         m[6],
			DefaultValue:  def,
			Description:   strings.TrimSpace(unindent(m[10])),
		}, nil
	}
}

func exampleParser(section domain.Section) func(string) (any, error) {
	return func(content string) (any, error) {
		first, rest := splitFirstLine(content)
		m := exampleHeadPattern.FindStringSubmatch(strings.TrimSpace(first))
		title := strings.TrimSpace(m[2])
		if title == "" {
			return nil, syntaxErr("missing example title")
		}
		typ := m[1]
		if typ == "" {
			typ = "json"
		}
		return domain.ExampleValue{
			Section: section,
			Title:   title,
			Type:    typ,
			Content: strings.TrimRight(unindent(rest), " \t\n"),
		}, nil
	}
}

func structureRefParser(section domain.Section) func(string) (any, error) {
	return func(content string) (any, error) {
		v, err := parseName(content)
		if err != nil {
			return nil, err
		}
		return domain.StructureRefValue{Section: section, Name: v.(domain.NameValue).Name}, nil
	}
}

func fieldTitleParser(section domain.Section) func(string) (any, error) {
	return func(content string) (any, error) {
		m := fieldTitlePattern.FindStringSubmatch(strings.TrimSpace(content))
		if m == nil || m[2] == "" {
			return nil, syntaxErr("expected: (group) title")
		}
		return domain.FieldTitleValue{Section: section, Group: m[1], Title: m[2]}, nil
	}
}

// splitAllowedValues splits on commas that are not inside double quotes.
func splitAllowedValues(s string) []string {
	if s == "" {
		return nil
	}
	var (
		out     []string
		cur     strings.Builder
		inQuote bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			cur.WriteRune(r)
		case r == ',' && !inQuote:
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	return append(out, strings.TrimSpace(cur.String()))
}

func splitFirstLine(s string) (string, string) {
	first, rest, _ := strings.Cut(s, "\n")
	return first, rest
}

func collapseLines(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// unindent removes the whitespace prefix shared by every non-blank line.
func unindent(s string) string {
	lines := strings.Split(s, "\n")
	prefix := -1
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		n := len(line) - len(strings.TrimLeft(line, " \t"))
		if prefix < 0 || n < prefix {
			prefix = n
		}
	}
	if prefix <= 0 {
		return s
	}
	for i, line := range lines {
		if len(line) >= prefix {
			lines[i] = line[prefix:]
		} else {
			lines[i] = strings.TrimLeft(line, " \t")
		}
	}
	return strings.Join(lines, "\n")
}
