package middleware

import (
	"context"
	"net/http"

	"github.com/backyardhq/accounts/internal/auth"
	"github.com/backyardhq/accounts/internal/models"
	pkghttp "github.com/backyardhq/accounts/pkg/http"
	"github.com/go-chi/chi/v5"
)

type claimsKey struct{}

// ClaimsFromContext returns the verified claims injected by RequireAuth.
func ClaimsFromContext(ctx context.Context) *models.AccessClaims {
	claims, _ := ctx.Value(claimsKey{}).(*models.AccessClaims)
	return claims
}

// RequireAuth validates the access cookie and injects the verified claims
// into the request context. It runs after the token refresh interceptor, so
// a silently refreshed cookie already carries a valid signature here.
func RequireAuth(tm *auth.TokenManager, cookieName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.GetAccessCookie(r, cookieName)
			if err != nil {
				pkghttp.WriteUnauthorized(w, "", "Authentication credentials were not provided")
				return
			}

			result := tm.Verify(token)
			if result.State != auth.TokenValid || result.Claims.Type != "access" {
				pkghttp.WriteUnauthorized(w, "", "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey{}, result.Claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireOwner restricts a route carrying an {id} parameter to the
// authenticated user owning that id. Admins pass through.
func RequireOwner(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			pkghttp.WriteUnauthorized(w, "", "Authentication credentials were not provided")
			return
		}

		id := chi.URLParam(r, "id")
		if claims.Subject != id && claims.UserType != models.UserTypeAdmin {
			pkghttp.WriteForbidden(w, "", "You do not have permission to perform this action")
			return
		}

		next.ServeHTTP(w, r)
	})
}
