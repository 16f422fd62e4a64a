package httphandler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/ericfisherdev/catalogapi/internal/auth"
	"github.com/ericfisherdev/catalogapi/internal/metrics"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

const maxRequestIDLen = 128

type requestIDKey struct{}

// RequestID returns the correlation ID stored in ctx, or "" if none.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// statusWriter wraps http.ResponseWriter to capture the response status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the embedded writer.
func (sw *statusWriter) WriteHeader(status int) {
	sw.status = status
	sw.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// corsMiddleware allows cross-origin calls from any origin. Preflight requests
// are answered here, before authentication.
func corsMiddleware(next http.Handler) http.Handler {
	return cors.AllowAll().Handler(next)
}

// requestIDMiddleware propagates a client-supplied X-Request-ID or generates one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

// loggingMiddleware logs each HTTP request with method, path, status, and duration.
func loggingMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		logger.Info("http request",
			"request_id", RequestID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration", time.Since(start).Round(time.Microsecond),
		)
	})
}

// recoveryMiddleware recovers from panics in HTTP handlers, logs the error,
// and returns a 500 response.
func recoveryMiddleware(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				logger.Error("panic recovered",
					"panic", v,
					"request_id", RequestID(r.Context()),
					"path", r.URL.Path,
				)
				writeError(w, http.StatusInternalServerError, unexpectedErrorMessage)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// metricsMiddleware counts requests and records latency per route. The route
// label is the ServeMux pattern, which keeps label cardinality bounded. The
// pattern is resolved from mux so requests rejected before routing, such as
// failed authentication, are still attributed to their route.
func metricsMiddleware(m *metrics.Registry, mux *http.ServeMux, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		route := routeLabel(mux, r)
		m.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(sw.status)).Inc()
		m.HTTPLatency.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

func routeLabel(mux *http.ServeMux, r *http.Request) string {
	route := r.Pattern
	if route == "" {
		_, route = mux.Handler(r)
	}
	if route == "" {
		return "unmatched"
	}
	return route
}

// authMiddleware rejects requests that fail API key authentication. A missing
// key configuration is a server fault (500); absent or wrong credentials are
// client faults (401). Tokens are never logged.
func authMiddleware(a *auth.Authenticator, m *metrics.Registry, logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := a.Authenticate(r.Header)
		verdict := auth.Verdict(err)
		m.ObserveAuth(verdict)

		switch {
		case err == nil:
			next.ServeHTTP(w, r)
		case errors.Is(err, auth.ErrNotConfigured):
			logger.Error("rejecting request: API key not configured",
				"request_id", RequestID(r.Context()),
				"path", r.URL.Path,
			)
			writeError(w, http.StatusInternalServerError, err.Error())
		default:
			logger.Warn("authentication failed",
				"request_id", RequestID(r.Context()),
				"verdict", verdict,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)
			w.Header().Set("WWW-Authenticate", `Bearer realm="catalogapi"`)
			writeError(w, http.StatusUnauthorized, err.Error())
		}
	})
}
