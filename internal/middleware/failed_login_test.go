package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/backyardhq/accounts/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLockoutChecker struct {
	blocked bool
	err     error
	calls   int
	email   string
}

func (s *stubLockoutChecker) CheckAttempt(ctx context.Context, email, password string) (bool, error) {
	s.calls++
	s.email = email
	return s.blocked, s.err
}

func guardHandler(t *testing.T, checker *stubLockoutChecker) (http.Handler, *bool) {
	t.Helper()

	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		// The guard must leave the body readable for the login handler.
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.NotEmpty(t, body)
		w.WriteHeader(http.StatusOK)
	})

	guard := FailedLoginGuard(checker, LoginRoute(http.MethodPost, "/api/auth/token"), slog.Default())
	return guard(next), &reached
}

func TestFailedLoginGuard_AllowedAttemptPassesThrough(t *testing.T) {
	checker := &stubLockoutChecker{}
	handler, reached := guardHandler(t, checker)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/token",
		strings.NewReader(`{"email":"user@example.com","password":"secret"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.True(t, *reached)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, checker.calls)
	assert.Equal(t, "user@example.com", checker.email)
}

func TestFailedLoginGuard_BlockedAttemptShortCircuits(t *testing.T) {
	checker := &stubLockoutChecker{blocked: true}
	handler, reached := guardHandler(t, checker)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/token",
		strings.NewReader(`{"email":"user@example.com","password":"secret"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, *reached)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), models.LockoutMessage)
}

func TestFailedLoginGuard_OtherRoutesIgnored(t *testing.T) {
	checker := &stubLockoutChecker{blocked: true}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := FailedLoginGuard(checker, LoginRoute(http.MethodPost, "/api/auth/token"), slog.Default())(next)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup",
		strings.NewReader(`{"email":"user@example.com","password":"secret"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, checker.calls)
}

func TestFailedLoginGuard_MalformedBodyPassesThrough(t *testing.T) {
	checker := &stubLockoutChecker{blocked: true}
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusBadRequest)
	})
	handler := FailedLoginGuard(checker, LoginRoute(http.MethodPost, "/api/auth/token"), slog.Default())(next)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/token", strings.NewReader(`not json`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	// The login handler, not the guard, rejects malformed credentials.
	assert.True(t, reached)
	assert.Equal(t, 0, checker.calls)
}

func TestFailedLoginGuard_PolicyErrorIs500(t *testing.T) {
	checker := &stubLockoutChecker{err: errors.New("redis down")}
	handler, reached := guardHandler(t, checker)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/token",
		strings.NewReader(`{"email":"user@example.com","password":"secret"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.False(t, *reached)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestFailedLoginGuard_LockoutMessageLang(t *testing.T) {
	checker := &stubLockoutChecker{blocked: true}
	handler, _ := guardHandler(t, checker)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/token?lang=en",
		strings.NewReader(`{"email":"user@example.com","password":"secret"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"lang":"en"`)
}
