package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apidoc/internal/adapter/comment"
	"apidoc/internal/domain"
	"apidoc/internal/extractor"
	"apidoc/internal/symbols"
)

func prepare(t *testing.T, files ...string) (*Resolver, []*domain.DocUnit, error) {
	t.Helper()
	comments, err := comment.NewExtractor(nil)
	require.NoError(t, err)
	x := extractor.New(comments)

	var units []*domain.DocUnit
	for i := 0; i < len(files); i += 2 {
		res, _, err := x.Extract(domain.SourceUnit{Path: files[i], Lang: x.Language(files[i]), Text: files[i+1]})
		require.NoError(t, err)
		units = append(units, res.Units...)
	}
	table, err := symbols.Build(units)
	require.NoError(t, err)

	r := New(table)
	return r, units, r.Prepare()
}

func endpoint(t *testing.T, units []*domain.DocUnit) *domain.DocUnit {
	t.Helper()
	for _, u := range units {
		if u.Kind == domain.KindEndpoint {
			return u
		}
	}
	t.Fatal("no endpoint unit")
	return nil
}

func fieldNames(els []domain.Element) []string {
	var out []string
	for _, el := range els {
		if v, ok := el.Value.(domain.FieldValue); ok {
			out = append(out, v.Field)
		}
	}
	return out
}

func TestResolve_InsertsAtPointOfReference(t *testing.T) {
	// The endpoint comes first: resolution does not depend on file order.
	r, units, err := prepare(t,
		"users.js", "/**\n * @api {get} /users\n * @apiUse D\n * @apiParam {String} c\n */\n",
		"shared.js", "/**\n * @apiDefine D\n * @apiParam {String} a\n * @apiParam {String} b\n */\n",
	)
	require.NoError(t, err)

	els, err := r.Resolve(endpoint(t, units))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, fieldNames(els))

	assert.Equal(t, "D", els[0].Origin)
	assert.Equal(t, "shared.js", els[0].File)
	assert.True(t, els[1].Inherited())
	assert.False(t, els[2].Inherited())
}

func TestResolve_Transitive(t *testing.T) {
	r, units, err := prepare(t,
		"a.js", `/**
 * @apiDefine outer
 * @apiParam {String} o1
 * @apiUse inner
 * @apiParam {String} o2
 */
/**
 * @apiDefine inner
 * @apiParam {String} i1
 */
/**
 * @api {get} /x
 * @apiUse outer
 * @apiUse inner
 */`,
	)
	require.NoError(t, err)

	els, err := r.Resolve(endpoint(t, units))
	require.NoError(t, err)
	assert.Equal(t, []string{"o1", "i1", "o2", "i1"}, fieldNames(els))
	assert.Equal(t, "inner", els[1].Origin)
}

func TestResolve_Structures(t *testing.T) {
	r, units, err := prepare(t,
		"a.js", `/**
 * @apiDefineSuccessStructure UserOut
 * @apiSuccess {String} id
 * @apiSuccess {String} name
 */
/**
 * @api {get} /users/:id
 * @apiSuccessStructure UserOut
 */`,
	)
	require.NoError(t, err)

	els, err := r.Resolve(endpoint(t, units))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, fieldNames(els))
}

func TestPrepare_Cycle(t *testing.T) {
	_, _, err := prepare(t,
		"a.js", "/**\n * @apiDefine X\n * @apiUse Y\n */\n/**\n * @apiDefine Y\n * @apiUse X\n */\n",
	)
	var ce *domain.CyclicReferenceError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{"X", "Y", "X"}, ce.Cycle)
	assert.Contains(t, ce.Error(), "X -> Y -> X")
}

func TestPrepare_SelfReference(t *testing.T) {
	_, _, err := prepare(t, "a.js", "/**\n * @apiDefine X\n * @apiUse X\n */\n")
	var ce *domain.CyclicReferenceError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, []string{"X", "X"}, ce.Cycle)
}

func TestResolve_Unresolved(t *testing.T) {
	r, units, err := prepare(t, "users.js", "/**\n * @api {get} /users\n * @apiUse Missing\n */\n")
	require.NoError(t, err)

	_, err = r.Resolve(endpoint(t, units))
	var ue *domain.UnresolvedReferenceError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Missing", ue.Name)
	assert.Equal(t, "users.js", ue.File)
	assert.Equal(t, 3, ue.Line)
	assert.Equal(t, "apiUse", ue.Element)
	assert.Contains(t, ue.Error(), `"Missing"`)
}

func TestPrepare_UnresolvedInsideTemplate(t *testing.T) {
	_, _, err := prepare(t, "a.js", "/**\n * @apiDefine D\n * @apiUse Missing\n */\n")
	var ue *domain.UnresolvedReferenceError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "Missing", ue.Name)
}

func TestResolve_KindMismatch(t *testing.T) {
	r, units, err := prepare(t,
		"a.js", `/**
 * @apiDefineSuccessStructure UserOut
 * @apiSuccess {String} id
 */
/**
 * @api {get} /users
 * @apiStructure UserOut
 */`,
	)
	require.NoError(t, err)
	_, err = r.Resolve(endpoint(t, units))
	var ue *domain.UnresolvedReferenceError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Detail, "success structure")

	r, units, err = prepare(t,
		"a.js", "/**\n * @apiDefineStructure S\n * @apiParam {String} id\n */\n/**\n * @api {get} /x\n * @apiUse S\n */\n",
	)
	require.NoError(t, err)
	_, err = r.Resolve(endpoint(t, units))
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Detail, "belongs to a structure")
}

func TestResolve_BeforePrepare(t *testing.T) {
	table, err := symbols.Build(nil)
	require.NoError(t, err)
	_, err = New(table).Resolve(&domain.DocUnit{})
	assert.Error(t, err)
}
