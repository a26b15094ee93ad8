package routes

import (
	"github.com/backyardhq/accounts/internal/auth"
	"github.com/backyardhq/accounts/internal/config"
	"github.com/backyardhq/accounts/internal/handlers"
	"github.com/backyardhq/accounts/internal/middleware"
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	accountHandler *handlers.AccountHandler,
	tokenManager *auth.TokenManager,
	cookieCfg config.CookieConfig,
) {
	// Rate limiting config for credential-bearing endpoints
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	router.Route("/api/auth", func(r chi.Router) {
		// Public routes - no authentication required
		r.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/signup", accountHandler.SignUp)
		r.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/confirm-email-otp", accountHandler.ConfirmEmailOTP)
		r.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/token", authHandler.Login)
		r.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/admin-otp", authHandler.IssueAdminOTP)
		r.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/verify-admin-otp", authHandler.VerifyAdminOTP)
		r.Get("/logout", authHandler.Logout)

		// Protected routes - authentication required
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(tokenManager, cookieCfg.Name))

			r.Get("/token-details", authHandler.TokenDetails)

			// Profile routes are owner-scoped
			r.Route("/profile/{id}", func(r chi.Router) {
				r.Use(middleware.RequireOwner)
				r.Get("/", accountHandler.GetProfile)
				r.Put("/", accountHandler.UpdateProfile)
				r.Delete("/", accountHandler.DeleteAccount)
			})
		})
	})
}
