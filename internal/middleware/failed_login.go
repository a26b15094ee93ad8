package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/backyardhq/accounts/internal/models"
	pkghttp "github.com/backyardhq/accounts/pkg/http"
)

// maxGuardBodySize bounds how much of the request body the guard will buffer.
const maxGuardBodySize = 1 << 20

// RoutePredicate decides which requests a cross-cutting policy applies to.
// The guard is parametrized with the endpoint it protects instead of
// matching a hardcoded path.
type RoutePredicate func(r *http.Request) bool

// LoginRoute matches one method+path pair.
func LoginRoute(method, path string) RoutePredicate {
	return func(r *http.Request) bool {
		return r.Method == method && r.URL.Path == path
	}
}

// LockoutChecker is the failed-login policy consulted by the guard.
type LockoutChecker interface {
	CheckAttempt(ctx context.Context, email, password string) (blocked bool, err error)
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// FailedLoginGuard intercepts authentication requests before the login
// handler runs and short-circuits them with the lockout response once the
// failed-attempt threshold is exceeded. Requests that do not match the
// predicate, or whose body carries no credentials, pass through untouched.
func FailedLoginGuard(policy LockoutChecker, match RoutePredicate, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !match(r) {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(io.LimitReader(r.Body, maxGuardBodySize))
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}
			// The login handler reads the body again.
			r.Body = io.NopCloser(bytes.NewReader(body))

			var creds loginBody
			if err := json.Unmarshal(body, &creds); err != nil || creds.Email == "" || creds.Password == "" {
				// Malformed body: let normal authentication reject it.
				next.ServeHTTP(w, r)
				return
			}

			lang, langErr := pkghttp.RequestLang(r)
			if langErr != nil {
				lang = ""
			}

			blocked, err := policy.CheckAttempt(r.Context(), creds.Email, creds.Password)
			if err != nil {
				logger.Error("failed-login guard error", slog.Any("error", err))
				pkghttp.WriteInternalError(w, lang, "Internal server error")
				return
			}

			if blocked {
				pkghttp.WriteBadRequest(w, lang, models.LockoutMessage)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
