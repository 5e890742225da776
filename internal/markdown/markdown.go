// Package markdown converts document bodies to HTML.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// converter is safe for concurrent use; goldmark instances are stateless
// after construction.
var converter = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// Render converts a Markdown body (frontmatter already removed) to HTML.
func Render(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	if err := converter.Convert(body, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
