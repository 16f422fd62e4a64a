// Package auth gates requests behind a single shared API key.
//
// The key is injected once at startup and never changes. Each request is
// checked independently: a candidate token is pulled from the X-API-Key header
// or a Bearer Authorization header and compared to the key in constant time.
// Neither the key nor the presented token is ever included in an error.
package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"
)

// Header names inspected by ExtractToken.
const (
	APIKeyHeader        = "X-API-Key"
	AuthorizationHeader = "Authorization"
	BearerScheme        = "Bearer"
)

// Sentinel errors returned by Authenticate. Messages are safe to send to clients.
var (
	// ErrNotConfigured means no API key was configured. Every request fails
	// until the service is redeployed with a key.
	ErrNotConfigured = errors.New("API key is not configured")

	// ErrMissingCredential means the request carried no usable token.
	ErrMissingCredential = errors.New("API key missing")

	// ErrInvalidCredential means a token was presented but did not match.
	ErrInvalidCredential = errors.New("Invalid API key") //nolint:staticcheck // client-facing message
)

// Verdict labels, used for logs and metrics.
const (
	VerdictAllowed       = "allowed"
	VerdictNotConfigured = "not_configured"
	VerdictMissing       = "missing"
	VerdictInvalid       = "invalid"
)

// Authenticator compares presented tokens against the configured key.
// It is safe for concurrent use.
type Authenticator struct {
	secret string
}

// New creates an Authenticator for secret. An empty secret produces an
// Authenticator that rejects every request with ErrNotConfigured.
func New(secret string) *Authenticator {
	return &Authenticator{secret: secret}
}

// Configured reports whether a key is present.
func (a *Authenticator) Configured() bool {
	return a.secret != ""
}

// Authenticate checks the request headers. It returns nil when the request is
// allowed, otherwise one of ErrNotConfigured, ErrMissingCredential or
// ErrInvalidCredential.
func (a *Authenticator) Authenticate(h http.Header) error {
	if !a.Configured() {
		return ErrNotConfigured
	}

	token, ok := ExtractToken(h)
	if !ok {
		return ErrMissingCredential
	}

	if !ConstantTimeEqual(token, a.secret) {
		return ErrInvalidCredential
	}

	return nil
}

// ExtractToken returns the candidate token from h. The X-API-Key header wins
// when it is non-blank; otherwise an Authorization header of the form
// "Bearer <token>" is accepted. The scheme must be exactly "Bearer".
func ExtractToken(h http.Header) (string, bool) {
	if key := strings.TrimSpace(h.Get(APIKeyHeader)); key != "" {
		return key, true
	}

	authz := h.Get(AuthorizationHeader)
	if strings.TrimSpace(authz) == "" {
		return "", false
	}

	scheme, rest, _ := strings.Cut(authz, " ")
	if scheme != BearerScheme {
		return "", false
	}

	token := strings.TrimSpace(rest)
	if token == "" {
		return "", false
	}

	return token, true
}

// ConstantTimeEqual reports whether a and b hold the same bytes. Inputs of
// different length are rejected without inspecting their content; for equal
// lengths the running time does not depend on where the inputs differ.
func ConstantTimeEqual(a, b string) bool {
	x, y := []byte(a), []byte(b)
	if len(x) != len(y) {
		return false
	}
	return subtle.ConstantTimeCompare(x, y) == 1
}

// Verdict maps an Authenticate result to a stable label.
func Verdict(err error) string {
	switch {
	case err == nil:
		return VerdictAllowed
	case errors.Is(err, ErrNotConfigured):
		return VerdictNotConfigured
	case errors.Is(err, ErrMissingCredential):
		return VerdictMissing
	default:
		return VerdictInvalid
	}
}
