package projections

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// mdRenderer escapes raw HTML in class descriptions (WithUnsafe is not set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// renderMarkdown converts a class description to HTML, falling back to the
// escaped source if conversion fails.
func renderMarkdown(md string) string {
	if md == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return html.EscapeString(md)
	}
	return buf.String()
}
