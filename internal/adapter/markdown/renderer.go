// Package markdown renders free-text documentation fields as HTML.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"apidoc/internal/port"
)

// Renderer converts markdown to HTML with GitHub flavoured extensions. It is
// safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

var _ port.Renderer = (*Renderer)(nil)

func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithUnsafe(),
			),
		),
	}
}

// Render returns the HTML for text without the trailing newline. Empty input
// renders to empty output.
func (r *Renderer) Render(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
