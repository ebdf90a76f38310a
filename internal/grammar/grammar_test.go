package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apidoc/internal/domain"
)

func parse(t *testing.T, tag, content string) any {
	t.Helper()
	spec, ok := Lookup(tag)
	require.True(t, ok, "unknown tag %s", tag)
	v, err := spec.Parse(content)
	require.NoError(t, err)
	return v
}

func TestLookup_CaseInsensitive(t *testing.T) {
	for _, name := range []string{"apiParam", "APIPARAM", "apiparam"} {
		spec, ok := Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, "apiparam", spec.Name)
	}
	_, ok := Lookup("apiUnknown")
	assert.False(t, ok)
}

func TestTable_TopLevelRoles(t *testing.T) {
	var top []string
	for name, spec := range table {
		if spec.Role.TopLevel() {
			top = append(top, name)
		}
	}
	assert.ElementsMatch(t, []string{
		"api", "apidefine", "apidefinepermission",
		"apidefinestructure", "apidefinesuccessstructure",
		"apidefineerrorstructure", "apidefineheaderstructure",
	}, top)
}

func TestTable_DeprecatedSpellings(t *testing.T) {
	for _, name := range []string{"apidefinepermission", "apigroupdescription", "apiparamtitle", "apisuccesstitle"} {
		spec, ok := Lookup(name)
		require.True(t, ok)
		assert.Equal(t, "apiDefine", spec.Replacement, name)
	}
	spec, _ := Lookup("apidefine")
	assert.Empty(t, spec.Replacement)
}

func TestParseAPI(t *testing.T) {
	v := parse(t, "api", "{GET} /users/:id Read a user").(domain.APIValue)
	assert.Equal(t, domain.APIValue{Method: "get", URL: "/users/:id", Title: "Read a user"}, v)

	v = parse(t, "api", "/ping").(domain.APIValue)
	assert.Equal(t, "", v.Method)
	assert.Equal(t, "/ping", v.URL)

	spec, _ := Lookup("api")
	_, err := spec.Parse("{get}")
	var se *SyntaxError
	require.ErrorAs(t, err, &se)
}

func TestParseField(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    domain.FieldValue
	}{
		{
			name:    "type and description",
			content: "{String} name The user name.",
			want: domain.FieldValue{
				Section: domain.SectionParameter, Group: "Parameter",
				Type: "String", Field: "name", Description: "The user name.",
			},
		},
		{
			name:    "optional with default",
			content: "{Number} [limit=10] Page size.",
			want: domain.FieldValue{
				Section: domain.SectionParameter, Group: "Parameter",
				Type: "Number", Optional: true, Field: "limit", DefaultValue: "10", Description: "Page size.",
			},
		},
		{
			name:    "group size and allowed values",
			content: `(Login) {String{1..5}="a","b"} [kind="a b"] Kind.`,
			want: domain.FieldValue{
				Section: domain.SectionParameter, Group: "Login",
				Type: "String", Size: "1..5", AllowedValues: []string{`"a"`, `"b"`},
				Optional: true, Field: "kind", DefaultValue: "a b", Description: "Kind.",
			},
		},
		{
			name:    "bare field",
			content: "id",
			want: domain.FieldValue{
				Section: domain.SectionParameter, Group: "Parameter", Field: "id",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parse(t, "apiParam", tt.content))
		})
	}
}

func TestParseField_SectionDefaults(t *testing.T) {
	assert.Equal(t, "Success 200", parse(t, "apiSuccess", "{String} id").(domain.FieldValue).Group)
	assert.Equal(t, "Error 4xx", parse(t, "apiError", "NotFound").(domain.FieldValue).Group)
	assert.Equal(t, "Header", parse(t, "apiHeader", "Authorization").(domain.FieldValue).Group)
}

func TestParseField_MissingName(t *testing.T) {
	spec, _ := Lookup("apiparam")
	_, err := spec.Parse("{String}")
	assert.Error(t, err)
}

func TestParseVersion(t *testing.T) {
	assert.Equal(t, domain.VersionValue{Version: "1.2.3"}, parse(t, "apiVersion", " 1.2.3 "))

	spec, _ := Lookup("apiversion")
	for _, bad := range []string{"", "1.2", "v1.2.3", "latest"} {
		_, err := spec.Parse(bad)
		assert.Error(t, err, bad)
	}
}

func TestParseDefine(t *testing.T) {
	v := parse(t, "apiDefine", "admin Admin access\n  Only admins.\n  Really.").(domain.DefineValue)
	assert.Equal(t, "admin", v.Name)
	assert.Equal(t, "Admin access", v.Title)
	assert.Equal(t, "Only admins.\nReally.", v.Description)
}

func TestParseGroup_Whitespace(t *testing.T) {
	assert.Equal(t, domain.NameValue{Name: "User_Accounts"}, parse(t, "apiGroup", "User   Accounts"))
}

func TestParseExample(t *testing.T) {
	v := parse(t, "apiSuccessExample", "{json} Success:\n    HTTP/1.1 200 OK\n    {}\n").(domain.ExampleValue)
	assert.Equal(t, domain.ExampleValue{
		Section: domain.SectionSuccess,
		Title:   "Success:",
		Type:    "json",
		Content: "HTTP/1.1 200 OK\n{}",
	}, v)

	v = parse(t, "apiExample", "Curl\ncurl -i http://localhost/users").(domain.ExampleValue)
	assert.Equal(t, "json", v.Type)
	assert.Equal(t, domain.SectionNone, v.Section)
}

func TestParseSampleRequestAndFlags(t *testing.T) {
	assert.Equal(t, domain.SampleRequestValue{URL: "off"}, parse(t, "apiSampleRequest", "off"))
	assert.Equal(t, domain.FlagValue{Text: "use now (#User:Read)"}, parse(t, "apiDeprecated", "use now (#User:Read)"))
	assert.Equal(t, domain.FlagValue{}, parse(t, "apiPrivate", ""))
}

func TestParseFieldTitle(t *testing.T) {
	v := parse(t, "apiParamTitle", "(Login) Login parameters").(domain.FieldTitleValue)
	assert.Equal(t, domain.FieldTitleValue{Section: domain.SectionParameter, Group: "Login", Title: "Login parameters"}, v)
}

func TestAllowedInStructure(t *testing.T) {
	param, _ := Lookup("apiparam")
	success, _ := Lookup("apisuccess")
	group, _ := Lookup("apigroup")
	ref, _ := Lookup("apistructure")

	assert.True(t, AllowedInStructure(param, domain.SectionParameter))
	assert.True(t, AllowedInStructure(ref, domain.SectionParameter))
	assert.False(t, AllowedInStructure(success, domain.SectionParameter))
	assert.False(t, AllowedInStructure(group, domain.SectionParameter))
}

func TestSplitAllowedValues(t *testing.T) {
	assert.Nil(t, splitAllowedValues(""))
	assert.Equal(t, []string{"1", "2", "3"}, splitAllowedValues("1, 2,3"))
	assert.Equal(t, []string{`"a,b"`, `"c"`}, splitAllowedValues(`"a,b","c"`))
}
