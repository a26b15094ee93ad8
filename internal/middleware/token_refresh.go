package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/backyardhq/accounts/internal/auth"
	"github.com/backyardhq/accounts/internal/config"
	"github.com/backyardhq/accounts/internal/models"
)

// RefreshState is the typed per-request value threaded between the token
// refresh interceptor (request side) and the credential propagation
// responder (response side). It replaces ambient flags on request metadata.
type RefreshState struct {
	Refreshed bool
	Token     string
}

type refreshStateKey struct{}

// RefreshStateFromContext returns the request's RefreshState, or nil when
// the token refresh middleware is not installed.
func RefreshStateFromContext(ctx context.Context) *RefreshState {
	state, _ := ctx.Value(refreshStateKey{}).(*RefreshState)
	return state
}

// UserLoader resolves the identity referenced by a stale credential.
type UserLoader interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// TokenRefresh silently upgrades access cookies whose signature no longer
// verifies under the active secret. The stale token is decoded without
// verification to recover the subject, a replacement is minted from the
// identity's current attributes, the request cookie is rewritten so
// downstream handlers observe the refreshed claims, and the responder half
// attaches the new credential to the outbound response.
//
// Only a stale signature drives the refresh. Malformed and expired tokens
// are stripped from the request and the caller proceeds unauthenticated; an
// unknown subject degrades the same way instead of failing the request.
func TokenRefresh(tm *auth.TokenManager, users UserLoader, cookieCfg config.CookieConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			state := &RefreshState{}
			ctx := context.WithValue(r.Context(), refreshStateKey{}, state)
			r = r.WithContext(ctx)

			responder := &credentialResponder{
				ResponseWriter: w,
				state:          state,
				cookieCfg:      cookieCfg,
				maxAge:         tm.AccessTokenExpiry(),
			}
			defer responder.finalize()

			token, err := auth.GetAccessCookie(r, cookieCfg.Name)
			if err != nil {
				// No credential: nothing to refresh.
				next.ServeHTTP(responder, r)
				return
			}

			result := tm.Verify(token)
			switch result.State {
			case auth.TokenValid:
				// Normal path.

			case auth.TokenStale:
				refreshStaleToken(r, tm, users, cookieCfg, state, result.Claims, logger)

			case auth.TokenExpired, auth.TokenMalformed:
				auth.StripRequestCookie(r, cookieCfg.Name)
			}

			next.ServeHTTP(responder, r)
		})
	}
}

func refreshStaleToken(
	r *http.Request,
	tm *auth.TokenManager,
	users UserLoader,
	cookieCfg config.CookieConfig,
	state *RefreshState,
	stale *models.AccessClaims,
	logger *slog.Logger,
) {
	user, err := users.GetByID(r.Context(), stale.Subject)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			logger.Info("stale token subject no longer exists",
				slog.String("user_id", stale.Subject))
		} else {
			logger.Error("stale token user lookup failed", slog.Any("error", err))
		}
		auth.StripRequestCookie(r, cookieCfg.Name)
		return
	}

	minted, err := tm.MintAccessToken(user)
	if err != nil {
		logger.Error("failed to mint replacement token",
			slog.String("user_id", user.ID), slog.Any("error", err))
		auth.StripRequestCookie(r, cookieCfg.Name)
		return
	}

	auth.ReplaceRequestCookie(r, cookieCfg.Name, minted)
	state.Refreshed = true
	state.Token = minted

	logger.Info("access token silently refreshed", slog.String("user_id", user.ID))
}
