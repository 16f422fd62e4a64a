package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/ericfisherdev/catalogapi/internal/application"
	"github.com/ericfisherdev/catalogapi/internal/auth"
	"github.com/ericfisherdev/catalogapi/internal/metrics"
)

// maxBodyBytes bounds request bodies, including multipart forms.
const maxBodyBytes = 1 << 20

// errUnexpectedFile is returned when a multipart form carries a file part.
var errUnexpectedFile = errors.New("unexpected file field")

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	catalog    *application.CatalogService
	health     *application.HealthService
	production bool
	logger     *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. health may be
// nil, in which case /health always reports ok. In production mode internal
// error details are omitted from responses.
func NewHandler(
	catalog *application.CatalogService,
	health *application.HealthService,
	production bool,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		catalog:    catalog,
		health:     health,
		production: production,
		logger:     logger,
	}
}

// Options carries the cross-cutting collaborators of the HTTP stack.
type Options struct {
	Auth    *auth.Authenticator // nil rejects every request as misconfigured
	Metrics *metrics.Registry   // optional; /metrics is not served when nil
	Docs    http.Handler        // optional; /docs is not served when nil
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with CORS, request ID, logging, recovery, metrics and authentication
// middleware. Every route requires a valid API key.
func NewServeMux(h *Handler, opts Options, logger *slog.Logger) http.Handler {
	if opts.Auth == nil {
		opts.Auth = auth.New("")
	}

	mux := http.NewServeMux()

	mux.HandleFunc("POST /products", h.AddProducts)
	mux.HandleFunc("GET /products", h.FilterProducts)
	mux.HandleFunc("GET /health", h.Health)
	if opts.Metrics != nil {
		mux.Handle("GET /metrics", opts.Metrics.Handler())
	}
	if opts.Docs != nil {
		mux.Handle("GET /docs", opts.Docs)
	}

	// Authentication innermost so every route is gated; recovery wraps it so
	// panics anywhere below are caught before logging.
	wrapped := authMiddleware(opts.Auth, opts.Metrics, logger, mux)
	wrapped = metricsMiddleware(opts.Metrics, mux, wrapped)
	wrapped = recoveryMiddleware(logger, wrapped)
	wrapped = loggingMiddleware(logger, wrapped)
	wrapped = requestIDMiddleware(wrapped)
	wrapped = corsMiddleware(wrapped)

	return wrapped
}

// AddProducts inserts one product or a batch of products.
func (h *Handler) AddProducts(w http.ResponseWriter, r *http.Request) {
	payload, err := decodeProductPayload(w, r)
	if err != nil {
		if errors.Is(err, errUnexpectedFile) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.catalog.AddProducts(r.Context(), payload)
	if err != nil {
		var verr *application.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		h.logger.Error("failed to add products", "request_id", RequestID(r.Context()), "error", err)
		h.writeUnexpected(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toInsertResponse(res))
}

// FilterProducts returns products matching the category, color and size query parameters.
func (h *Handler) FilterProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.FilterProducts(r.Context(), r.URL.Query())
	if err != nil {
		var verr *application.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, verr.Error())
			return
		}
		h.logger.Error("failed to filter products", "request_id", RequestID(r.Context()), "error", err)
		h.writeUnexpected(w, err)
		return
	}

	resp := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}

	writeJSON(w, http.StatusOK, resp)
}

// Health reports service and database health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if h.health == nil {
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:   application.HealthOK,
			Database: application.HealthOK,
			Time:     time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	report, err := h.health.Check(r.Context())
	if err != nil {
		h.logger.Warn("health check failed", "error", err)
	}

	status := http.StatusOK
	if report.Status != application.HealthOK {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, toHealthResponse(report))
}

// writeUnexpected writes a 500 response, attaching the error text outside production.
func (h *Handler) writeUnexpected(w http.ResponseWriter, err error) {
	resp := errorResponse{Message: unexpectedErrorMessage}
	if !h.production {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}

// decodeProductPayload turns the request body into the generic shape the
// catalog service validates. JSON bodies are decoded with numbers preserved;
// url-encoded and multipart forms become an object of their text fields.
// Any other body, including an empty one, is treated as an empty object.
func decodeProductPayload(w http.ResponseWriter, r *http.Request) (any, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}

	switch {
	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		return decodeJSONBody(r.Body)
	case mediaType == "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return nil, err
		}
		if r.MultipartForm != nil && len(r.MultipartForm.File) > 0 {
			return nil, errUnexpectedFile
		}
		return formToPayload(r.PostForm), nil
	case mediaType == "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return nil, err
		}
		return formToPayload(r.PostForm), nil
	default:
		return map[string]any{}, nil
	}
}

func decodeJSONBody(body io.Reader) (any, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var payload any
	if err := dec.Decode(&payload); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	if dec.More() {
		return nil, errors.New("trailing data after JSON body")
	}
	return payload, nil
}

func formToPayload(form map[string][]string) map[string]any {
	payload := make(map[string]any, len(form))
	for k, vs := range form {
		if len(vs) == 1 {
			payload[k] = vs[0]
			continue
		}
		items := make([]any, len(vs))
		for i, v := range vs {
			items[i] = v
		}
		payload[k] = items
	}
	return payload
}
