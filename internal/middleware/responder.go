package middleware

import (
	"net/http"
	"time"

	"github.com/backyardhq/accounts/internal/auth"
	"github.com/backyardhq/accounts/internal/config"
)

// credentialResponder is the response half of the token refresh pair. When
// the interceptor flags a refresh, the new credential is attached as the
// access cookie just before the response headers are flushed. No-op when
// the flag is unset.
type credentialResponder struct {
	http.ResponseWriter
	state       *RefreshState
	cookieCfg   config.CookieConfig
	maxAge      time.Duration
	wroteHeader bool
}

func (cr *credentialResponder) WriteHeader(statusCode int) {
	if !cr.wroteHeader {
		cr.wroteHeader = true
		if cr.state.Refreshed {
			auth.SetAccessCookie(cr.ResponseWriter, cr.state.Token, cr.maxAge, cr.cookieCfg)
		}
	}
	cr.ResponseWriter.WriteHeader(statusCode)
}

// finalize covers handlers that return without writing anything: the server
// emits an implicit 200 after the chain unwinds, and the headers are still
// open at that point, so the refreshed cookie can ride on it.
func (cr *credentialResponder) finalize() {
	if !cr.wroteHeader && cr.state.Refreshed {
		cr.wroteHeader = true
		auth.SetAccessCookie(cr.ResponseWriter, cr.state.Token, cr.maxAge, cr.cookieCfg)
	}
}

func (cr *credentialResponder) Write(b []byte) (int, error) {
	if !cr.wroteHeader {
		cr.WriteHeader(http.StatusOK)
	}
	return cr.ResponseWriter.Write(b)
}

func (cr *credentialResponder) Flush() {
	if f, ok := cr.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap supports http.ResponseController.
func (cr *credentialResponder) Unwrap() http.ResponseWriter {
	return cr.ResponseWriter
}
