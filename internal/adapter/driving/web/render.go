package web

import (
	"bytes"
	"context"
	"fmt"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

// markdownRenderer turns markdown into sanitized HTML components. Raw HTML in
// the source is passed through goldmark and then stripped by the UGC policy.
type markdownRenderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

func newMarkdownRenderer() *markdownRenderer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4")

	return &markdownRenderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(html.WithUnsafe()),
		),
		policy: policy,
	}
}

// Component renders src as a templ component. A conversion failure surfaces
// when the component is rendered.
func (r *markdownRenderer) Component(src string) templ.Component {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return templ.Raw("", fmt.Errorf("convert markdown: %w", err))
	}
	return templ.Raw(r.policy.SanitizeReader(&buf).String())
}

func renderToBytes(ctx context.Context, c templ.Component) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
