package auth

import (
	"net/http"
	"time"

	"github.com/backyardhq/accounts/internal/config"
)

// SetAccessCookie attaches the access token to the response. Every
// credential-setting call site (login, admin OTP sign-in, silent refresh)
// goes through here so the security attributes come from one place.
func SetAccessCookie(w http.ResponseWriter, token string, maxAge time.Duration, cfg config.CookieConfig) {
	cookie := &http.Cookie{
		Name:     cfg.Name,
		Value:    token,
		Path:     "/",
		Domain:   cfg.Domain,
		Expires:  time.Now().Add(maxAge),
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: cfg.HTTPOnly,
		Secure:   cfg.Secure,
		SameSite: parseSameSite(cfg.SameSite),
	}
	http.SetCookie(w, cookie)
}

// ClearAccessCookie expires the access cookie on logout.
func ClearAccessCookie(w http.ResponseWriter, cfg config.CookieConfig) {
	cookie := &http.Cookie{
		Name:     cfg.Name,
		Value:    "",
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   -1,
		HttpOnly: cfg.HTTPOnly,
		Secure:   cfg.Secure,
		SameSite: parseSameSite(cfg.SameSite),
	}
	http.SetCookie(w, cookie)
}

// GetAccessCookie retrieves the access token from the request cookies.
func GetAccessCookie(r *http.Request, name string) (string, error) {
	cookie, err := r.Cookie(name)
	if err != nil {
		return "", err
	}
	return cookie.Value, nil
}

// ReplaceRequestCookie overwrites a cookie value on the inbound request so
// downstream handlers observe the new value. The Cookie header is rebuilt
// because net/http offers no in-place update.
func ReplaceRequestCookie(r *http.Request, name, value string) {
	cookies := r.Cookies()
	r.Header.Del("Cookie")
	replaced := false
	for _, c := range cookies {
		if c.Name == name {
			r.AddCookie(&http.Cookie{Name: name, Value: value})
			replaced = true
			continue
		}
		r.AddCookie(c)
	}
	if !replaced {
		r.AddCookie(&http.Cookie{Name: name, Value: value})
	}
}

// StripRequestCookie removes a cookie from the inbound request, leaving
// downstream handlers to see an unauthenticated request.
func StripRequestCookie(r *http.Request, name string) {
	cookies := r.Cookies()
	r.Header.Del("Cookie")
	for _, c := range cookies {
		if c.Name == name {
			continue
		}
		r.AddCookie(c)
	}
}

// parseSameSite converts the configured string to an http.SameSite constant
func parseSameSite(sameSite string) http.SameSite {
	switch sameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "lax":
		return http.SameSiteLaxMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteDefaultMode
	}
}
