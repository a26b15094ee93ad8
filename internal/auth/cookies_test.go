package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/backyardhq/accounts/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cookieTestConfig() config.CookieConfig {
	return config.CookieConfig{
		Name:     "access",
		Secure:   true,
		HTTPOnly: true,
		SameSite: "lax",
	}
}

func TestSetAccessCookie_Attributes(t *testing.T) {
	rec := httptest.NewRecorder()

	SetAccessCookie(rec, "token-value", 15*time.Minute, cookieTestConfig())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	c := cookies[0]
	assert.Equal(t, "access", c.Name)
	assert.Equal(t, "token-value", c.Value)
	assert.Equal(t, "/", c.Path)
	assert.Equal(t, int((15 * time.Minute).Seconds()), c.MaxAge)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteLaxMode, c.SameSite)
}

func TestClearAccessCookie_Expires(t *testing.T) {
	rec := httptest.NewRecorder()

	ClearAccessCookie(rec, cookieTestConfig())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestReplaceRequestCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access", Value: "old"})
	req.AddCookie(&http.Cookie{Name: "other", Value: "kept"})

	ReplaceRequestCookie(req, "access", "new")

	got, err := GetAccessCookie(req, "access")
	require.NoError(t, err)
	assert.Equal(t, "new", got)

	other, err := req.Cookie("other")
	require.NoError(t, err)
	assert.Equal(t, "kept", other.Value)
}

func TestReplaceRequestCookie_AddsWhenAbsent(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	ReplaceRequestCookie(req, "access", "new")

	got, err := GetAccessCookie(req, "access")
	require.NoError(t, err)
	assert.Equal(t, "new", got)
}

func TestStripRequestCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "access", Value: "old"})
	req.AddCookie(&http.Cookie{Name: "other", Value: "kept"})

	StripRequestCookie(req, "access")

	_, err := GetAccessCookie(req, "access")
	assert.ErrorIs(t, err, http.ErrNoCookie)

	other, err := req.Cookie("other")
	require.NoError(t, err)
	assert.Equal(t, "kept", other.Value)
}
