package logger

import (
	"strings"
)

// SanitizedEmail masks an email address for logging (e.g., "u***@e***.com")
func SanitizedEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return "[invalid-email]"
	}

	username := parts[0]
	domain := parts[1]

	if len(username) > 1 {
		username = string(username[0]) + strings.Repeat("*", len(username)-1)
	}

	domainParts := strings.Split(domain, ".")
	if len(domainParts) > 1 {
		for i := 0; i < len(domainParts)-1; i++ {
			domainParts[i] = strings.Repeat("*", len(domainParts[i]))
		}
		domain = strings.Join(domainParts, ".")
	}

	return username + "@" + domain
}

// sensitiveParams are query parameters that must never reach the logs
var sensitiveParams = []string{
	"token", "password", "secret", "otp", "key", "code",
}

// SanitizeQueryString reports whether a raw query string contains sensitive
// parameters that should be redacted from logs.
func SanitizeQueryString(rawQuery string) bool {
	if rawQuery == "" {
		return false
	}

	queryLower := strings.ToLower(rawQuery)
	for _, param := range sensitiveParams {
		if strings.Contains(queryLower, param+"=") {
			return true
		}
	}
	return false
}
