package web

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDocsHandler_ServesEmbeddedReference(t *testing.T) {
	h := NewDocsHandler(discardLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "<!DOCTYPE html>")
	assert.Contains(t, body, "<title>Catalog API</title>")
	assert.Contains(t, body, `<h2 id="add-products">`)
	assert.Contains(t, body, "<table>")
}

func TestDocsHandler_SanitizesMarkdown(t *testing.T) {
	h := newDocsHandler("# Title\n\n<script>alert(1)</script>\n", discardLogger())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/docs", nil))

	assert.Contains(t, rec.Body.String(), "Title</h1>")
	assert.NotContains(t, rec.Body.String(), "<script>")
}
