package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	r := New()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "  \n", ""},
		{"paragraph", "Returns the **user**.", "<p>Returns the <strong>user</strong>.</p>"},
		{"hard wrap", "line one\nline two", "<p>line one<br>\nline two</p>"},
		{"code", "`id`", "<p><code>id</code></p>"},
		{"raw html", "<b>bold</b>", "<p><b>bold</b></p>"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := r.Render(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}

func TestRender_Table(t *testing.T) {
	out, err := New().Render("| a | b |\n|---|---|\n| 1 | 2 |")
	require.NoError(t, err)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<td>1</td>")
}
