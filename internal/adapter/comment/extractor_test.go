package comment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newExtractor(t *testing.T, overrides map[string]SyntaxConfig) *Extractor {
	t.Helper()
	e, err := NewExtractor(overrides)
	require.NoError(t, err)
	return e
}

func TestLanguage(t *testing.T) {
	e := newExtractor(t, nil)
	assert.Equal(t, "python", e.Language("api/users.py"))
	assert.Equal(t, "perl", e.Language("lib/Api.PM"))
	assert.Equal(t, "js", e.Language("src/app.js"))
	assert.Equal(t, "default", e.Language("Makefile"))
}

func TestExtract_DefaultBlock(t *testing.T) {
	src := `package main

/**
 * @api {get} /users List
 * @apiGroup user
 */
func list() {}

// not a doc comment
/* nor this one */
`
	blocks := newExtractor(t, nil).Extract(src, "go")
	require.Len(t, blocks, 1)

	b := blocks[0]
	assert.Equal(t, 3, b.StartLine)
	assert.Equal(t, 6, b.EndLine)
	assert.Equal(t, []string{"", "@api {get} /users List", "@apiGroup user"}, b.Lines)
}

func TestExtract_LineNumbersMapToLines(t *testing.T) {
	src := "/** @api {get} /a\n * @apiName A\n *\n * @apiVersion 1.0.0 */\n"
	blocks := newExtractor(t, nil).Extract(src, "js")
	require.Len(t, blocks, 1)

	b := blocks[0]
	assert.Equal(t, 1, b.StartLine)
	assert.Equal(t, 4, b.EndLine)
	require.Len(t, b.Lines, 4)
	assert.Equal(t, "@api {get} /a", b.Lines[0])
	assert.Equal(t, "@apiVersion 1.0.0", b.Lines[3])
}

func TestExtract_SingleLineBlock(t *testing.T) {
	blocks := newExtractor(t, nil).Extract("x = 1; /** @apiIgnore */", "js")
	require.Len(t, blocks, 1)
	assert.Equal(t, []string{"@apiIgnore"}, blocks[0].Lines)
	assert.Equal(t, 1, blocks[0].EndLine)
}

func TestExtract_CRLF(t *testing.T) {
	blocks := newExtractor(t, nil).Extract("/**\r\n * @api {get} /a\r\n */\r\n", "js")
	require.Len(t, blocks, 1)
	assert.Equal(t, "@api {get} /a", blocks[0].Lines[1])
}

func TestExtract_Python(t *testing.T) {
	src := `def users():
    """
    @api {get} /users List
    @apiGroup user
    """
    pass
`
	blocks := newExtractor(t, nil).Extract(src, "python")
	require.Len(t, blocks, 1)
	assert.Equal(t, 2, blocks[0].StartLine)
	assert.Equal(t, "    @api {get} /users List", blocks[0].Lines[1])
}

func TestExtract_LineComments(t *testing.T) {
	src := `#!/bin/sh
# @api {get} /status Status
# @apiGroup ops
echo ok

# @apiDefine shared
`
	blocks := newExtractor(t, nil).Extract(src, "shell")
	require.Len(t, blocks, 2)

	assert.Equal(t, 1, blocks[0].StartLine)
	assert.Equal(t, 3, blocks[0].EndLine)
	assert.Equal(t, []string{"!/bin/sh", "@api {get} /status Status", "@apiGroup ops"}, blocks[0].Lines)

	assert.Equal(t, 6, blocks[1].StartLine)
	assert.Equal(t, []string{"@apiDefine shared"}, blocks[1].Lines)
}

func TestExtract_UnterminatedBlock(t *testing.T) {
	blocks := newExtractor(t, nil).Extract("/**\n * @api {get} /a\n", "js")
	require.Len(t, blocks, 1)
	assert.Equal(t, 3, blocks[0].EndLine)
}

func TestNewExtractor_Override(t *testing.T) {
	e := newExtractor(t, map[string]SyntaxConfig{
		"sql": {Line: `^\s*--(.*)$`},
	})
	assert.Equal(t, ".sql", e.Language("schema.sql"))

	blocks := e.Extract("-- @api {get} /report\n-- @apiGroup reports\nSELECT 1;\n", e.Language("schema.sql"))
	require.Len(t, blocks, 1)
	assert.Equal(t, []string{"@api {get} /report", "@apiGroup reports"}, blocks[0].Lines)
}

func TestNewExtractor_InvalidOverride(t *testing.T) {
	_, err := NewExtractor(map[string]SyntaxConfig{"x": {BlockStart: `/\*`}})
	assert.Error(t, err)

	_, err = NewExtractor(map[string]SyntaxConfig{"x": {Line: `^#.*$`}})
	assert.Error(t, err)

	_, err = NewExtractor(map[string]SyntaxConfig{"x": {Line: `(`}})
	assert.Error(t, err)
}
