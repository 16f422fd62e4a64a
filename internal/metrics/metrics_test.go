package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ObserveQuery(t *testing.T) {
	r := New()

	r.ObserveQuery("insert", nil)
	r.ObserveQuery("insert", nil)
	r.ObserveQuery("list", errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.DBQueries.WithLabelValues("insert", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.DBQueries.WithLabelValues("list", "error")))
}

func TestRegistry_AddInserted(t *testing.T) {
	r := New()

	r.AddInserted(3)
	r.AddInserted(0)
	r.AddInserted(-1)

	assert.Equal(t, 3.0, testutil.ToFloat64(r.ProductsInserted))
}

func TestRegistry_NilIsNoop(t *testing.T) {
	var r *Registry

	assert.NotPanics(t, func() {
		r.ObserveQuery("insert", nil)
		r.ObserveAuth("allowed")
		r.AddInserted(1)
	})
}

func TestRegistry_Handler(t *testing.T) {
	r := New()
	r.ObserveAuth("invalid")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `catalogapi_auth_decisions_total{verdict="invalid"} 1`)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
