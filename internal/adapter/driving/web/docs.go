// Package web serves the human-readable API reference.
package web

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
)

const docsTitle = "Catalog API"

const pageStyle = `body{font-family:system-ui,sans-serif;max-width:52rem;margin:2rem auto;padding:0 1rem;line-height:1.5}
pre{background:#f4f4f4;padding:.75rem;overflow-x:auto}
table{border-collapse:collapse}td,th{border:1px solid #ccc;padding:.25rem .5rem}`

const unavailablePage = "<!DOCTYPE html><title>Catalog API</title><p>Documentation unavailable.</p>"

// docsPage wraps body in a complete HTML document.
func docsPage(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		head := "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n<title>" +
			templ.EscapeString(title) + "</title>\n<style>\n" + pageStyle + "\n</style>\n</head>\n<body>\n"
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, "\n</body>\n</html>\n")
		return err
	})
}

// DocsHandler serves the rendered API reference. The page is rendered once
// at construction.
type DocsHandler struct {
	page []byte
}

// NewDocsHandler renders the embedded API reference into a complete HTML page.
func NewDocsHandler(logger *slog.Logger) *DocsHandler {
	return newDocsHandler(apiDoc, logger)
}

func newDocsHandler(markdown string, logger *slog.Logger) *DocsHandler {
	body := newMarkdownRenderer().Component(markdown)
	page, err := renderToBytes(context.Background(), docsPage(docsTitle, body))
	if err != nil {
		logger.Error("failed to render API docs", "error", err)
		page = []byte(unavailablePage)
	}
	return &DocsHandler{page: page}
}

// ServeHTTP writes the rendered page.
func (h *DocsHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(h.page)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(h.page)
}
