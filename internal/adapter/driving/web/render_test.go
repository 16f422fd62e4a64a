package web

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	b, err := renderToBytes(context.Background(), c)
	require.NoError(t, err)
	return string(b)
}

func TestMarkdownRenderer_Component(t *testing.T) {
	r := newMarkdownRenderer()

	tests := []struct {
		name    string
		input   string
		want    []string
		notWant []string
	}{
		{name: "empty", input: "", notWant: []string{"<"}},
		{name: "plain text", input: "hello catalog", want: []string{"<p>hello catalog</p>"}},
		{name: "inline code", input: "send `X-API-Key`", want: []string{"<code>X-API-Key</code>"}},
		{name: "fenced block", input: "```sh\ncurl -H 'X-API-Key: k' /products\n```", want: []string{"<code", "curl -H"}},
		{name: "heading id", input: "## Add products", want: []string{`<h2 id="add-products">`}},
		{name: "gfm table", input: "| a | b |\n|---|---|\n| 1 | 2 |", want: []string{"<table>", "<td>1</td>"}},
		{name: "link", input: "[repo](https://example.com)", want: []string{`<a href="https://example.com"`}},
		{name: "script stripped", input: `<script>alert("xss")</script>`, notWant: []string{"<script>"}},
		{name: "event handler stripped", input: `<img src="x.png" onerror="alert(1)">`, notWant: []string{"onerror"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderString(t, r.Component(tt.input))
			for _, w := range tt.want {
				assert.Contains(t, got, w)
			}
			for _, nw := range tt.notWant {
				assert.NotContains(t, got, nw)
			}
		})
	}
}

func TestDocsPage_EscapesTitle(t *testing.T) {
	got := renderString(t, docsPage("<Catalog>", templ.Raw("<p>body</p>")))

	assert.Contains(t, got, "<title>&lt;Catalog&gt;</title>")
	assert.Contains(t, got, "<body>\n<p>body</p>\n</body>")
}

func TestDocsPage_PropagatesBodyError(t *testing.T) {
	failing := templ.ComponentFunc(func(context.Context, io.Writer) error {
		return errors.New("boom")
	})

	_, err := renderToBytes(context.Background(), docsPage("x", failing))

	assert.EqualError(t, err, "boom")
}
