package symbols

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apidoc/internal/adapter/comment"
	"apidoc/internal/domain"
	"apidoc/internal/extractor"
)

// units extracts name/text pairs in order.
func units(t *testing.T, files ...string) []*domain.DocUnit {
	t.Helper()
	comments, err := comment.NewExtractor(nil)
	require.NoError(t, err)
	x := extractor.New(comments)

	var out []*domain.DocUnit
	for i := 0; i < len(files); i += 2 {
		res, _, err := x.Extract(domain.SourceUnit{Path: files[i], Lang: x.Language(files[i]), Text: files[i+1]})
		require.NoError(t, err)
		out = append(out, res.Units...)
	}
	return out
}

func TestBuild_Lookup(t *testing.T) {
	table, err := Build(units(t,
		"a.js", "/**\n * @apiDefine admin Administrators\n *   Full access.\n */\n",
		"b.js", "/**\n * @apiDefineStructure admin\n * @apiParam {String} id\n */\n/**\n * @api {get} /x\n */\n",
	))
	require.NoError(t, err)

	def, ok := table.Definition("admin")
	require.True(t, ok)
	assert.Equal(t, domain.KindDefinition, def.Kind)

	st, ok := table.Structure("admin")
	require.True(t, ok)
	assert.Equal(t, domain.KindStructure, st.Kind)

	d, ok := table.Define("admin")
	require.True(t, ok)
	assert.Equal(t, "Administrators", d.Title)
	assert.Equal(t, "Full access.", d.Description)

	_, ok = table.Define("nobody")
	assert.False(t, ok)
}

func TestBuild_DuplicateDefinition(t *testing.T) {
	_, err := Build(units(t,
		"a.js", "/**\n * @apiDefine D\n */\n",
		"b.js", "\n\n/**\n * @apiDefine D\n */\n",
	))
	var de *domain.DuplicateDefinitionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "D", de.Name)
	assert.Equal(t, "a.js:2", de.Previous)
	assert.Equal(t, "b.js", de.File)
	assert.Equal(t, 4, de.Line)
	assert.Equal(t, domain.KindSemantic, de.Kind())
}

func TestBuild_DuplicateStructure(t *testing.T) {
	_, err := Build(units(t,
		"a.js", "/**\n * @apiDefineSuccessStructure S\n */\n/**\n * @apiDefineErrorStructure S\n */\n",
	))
	var de *domain.DuplicateDefinitionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "S", de.Name)
}

func TestBuild_FieldTitles(t *testing.T) {
	table, err := Build(units(t,
		"a.js", "/**\n * @api {get} /x\n * @apiParamTitle (Login) Login parameters\n */\n",
		"b.js", "/**\n * @api {get} /y\n * @apiParamTitle (Login) Login parameters\n */\n",
		"c.js", "/**\n * @apiDefine Query Query string\n */\n",
	))
	require.NoError(t, err)

	title, ok := table.FieldTitle(domain.SectionParameter, "Login")
	require.True(t, ok)
	assert.Equal(t, "Login parameters", title)

	_, ok = table.FieldTitle(domain.SectionSuccess, "Login")
	assert.False(t, ok)

	title, ok = table.FieldTitle(domain.SectionSuccess, "Query")
	require.True(t, ok)
	assert.Equal(t, "Query string", title)
}

func TestBuild_ConflictingFieldTitle(t *testing.T) {
	_, err := Build(units(t,
		"a.js", "/**\n * @api {get} /x\n * @apiParamTitle (Login) Login parameters\n * @apiParamTitle (Login) Something else\n */\n",
	))
	var de *domain.DuplicateDefinitionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "Login", de.Name)
	assert.Equal(t, "a.js:3", de.Previous)
}

func TestDefinitions_SortedByName(t *testing.T) {
	table, err := Build(units(t,
		"a.js", "/**\n * @apiDefine zeta\n */\n/**\n * @apiDefine alpha\n */\n/**\n * @apiDefine mid\n */\n",
	))
	require.NoError(t, err)

	var names []string
	for _, u := range table.Definitions() {
		names = append(names, u.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
	assert.Empty(t, table.Structures())
}

func TestBuild_StandaloneFieldTitle(t *testing.T) {
	table, err := Build(units(t,
		"titles.js", "/**\n * @apiParamTitle (Login) Login parameters\n */\n",
		"a.js", "/**\n * @api {post} /login\n * @apiParam (Login) {String} user\n */\n",
	))
	require.NoError(t, err)

	title, ok := table.FieldTitle(domain.SectionParameter, "Login")
	require.True(t, ok)
	assert.Equal(t, "Login parameters", title)
	assert.Empty(t, table.Definitions())
}
