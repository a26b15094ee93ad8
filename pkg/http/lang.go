package http

import (
	"fmt"
	"net/http"
)

const defaultLang = "ar"

// RequestLang resolves the ?lang= query parameter. Arabic is the default;
// anything other than "ar" or "en" is rejected.
func RequestLang(r *http.Request) (string, error) {
	lang := r.URL.Query().Get("lang")
	if lang == "" {
		return defaultLang, nil
	}
	if lang != "ar" && lang != "en" {
		return "", fmt.Errorf("invalid value for lang parameter, it must be ar or en")
	}
	return lang, nil
}
