package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/backyardhq/accounts/internal/auth"
	"github.com/backyardhq/accounts/internal/config"
	"github.com/backyardhq/accounts/internal/middleware"
	"github.com/backyardhq/accounts/internal/models"
	"github.com/backyardhq/accounts/internal/services"
	pkghttp "github.com/backyardhq/accounts/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (*services.TokenPair, *models.User, error)
	IssueAdminOTP(ctx context.Context, email, password, lang string) (*models.User, error)
	VerifyAdminOTP(ctx context.Context, email, code string) (*services.TokenPair, *models.User, error)
	TokenDetails(ctx context.Context, claims *models.AccessClaims) (*services.TokenDetails, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service   AuthServiceInterface
	tm        *auth.TokenManager
	cookieCfg config.CookieConfig
	logger    *slog.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, tm *auth.TokenManager, cookieCfg config.CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:   service,
		tm:        tm,
		cookieCfg: cookieCfg,
		logger:    logger,
	}
}

// Request DTOs

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AdminOTPRequest represents the request body for issuing an admin OTP
type AdminOTPRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// VerifyAdminOTPRequest represents the request body for admin OTP sign-in
type VerifyAdminOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=4,numeric"`
}

// Login handles password sign-in. The access token is both returned in the
// payload and set as the access cookie. Authentication failures surface as
// 400, not 401, so browsers never trigger basic-auth prompts.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	lang, err := pkghttp.RequestLang(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "", err.Error())
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, lang, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, lang, err.Error())
		return
	}

	pair, _, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			pkghttp.WriteBadRequest(w, lang, "Invalid email or password")
		case errors.Is(err, models.ErrAccountInactive):
			pkghttp.WriteBadRequest(w, lang, "Account is not active, confirm your email first")
		default:
			h.logger.Error("login failed", slog.Any("error", err))
			pkghttp.WriteInternalError(w, lang, "Internal server error")
		}
		return
	}

	auth.SetAccessCookie(w, pair.Access, h.tm.AccessTokenExpiry(), h.cookieCfg)
	pkghttp.WriteSuccess(w, http.StatusOK, lang, pair)
}

// Logout clears the access cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	lang, err := pkghttp.RequestLang(r)
	if err != nil {
		lang = ""
	}

	auth.ClearAccessCookie(w, h.cookieCfg)
	pkghttp.WriteSuccess(w, http.StatusOK, lang, nil)
}

// TokenDetails returns the authenticated user's claims together with the
// profile-completion flag.
func (h *AuthHandler) TokenDetails(w http.ResponseWriter, r *http.Request) {
	lang, err := pkghttp.RequestLang(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "", err.Error())
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		pkghttp.WriteUnauthorized(w, lang, "Authentication credentials were not provided")
		return
	}

	details, err := h.service.TokenDetails(r.Context(), claims)
	if err != nil {
		if errors.Is(err, models.ErrUnauthorized) {
			pkghttp.WriteUnauthorized(w, lang, "Invalid or expired token")
			return
		}
		h.logger.Error("token details failed", slog.Any("error", err))
		pkghttp.WriteInternalError(w, lang, "Internal server error")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, lang, details)
}

// IssueAdminOTP authenticates a staff user and emails the sign-in OTP.
func (h *AuthHandler) IssueAdminOTP(w http.ResponseWriter, r *http.Request) {
	lang, err := pkghttp.RequestLang(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "", err.Error())
		return
	}

	var req AdminOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, lang, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, lang, err.Error())
		return
	}

	if _, err := h.service.IssueAdminOTP(r.Context(), req.Email, req.Password, lang); err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			pkghttp.WriteBadRequest(w, lang, "Invalid email or password")
		case errors.Is(err, models.ErrNotStaff):
			pkghttp.WriteForbidden(w, lang, "You do not have permission to perform this action")
		default:
			h.logger.Error("admin otp issue failed", slog.Any("error", err))
			pkghttp.WriteInternalError(w, lang, "Internal server error")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, lang, map[string]string{
		"detail": "OTP has been sent to your email",
	})
}

// VerifyAdminOTP consumes the emailed OTP and completes the staff sign-in,
// setting the access cookie alongside the token payload.
func (h *AuthHandler) VerifyAdminOTP(w http.ResponseWriter, r *http.Request) {
	lang, err := pkghttp.RequestLang(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "", err.Error())
		return
	}

	var req VerifyAdminOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, lang, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, lang, err.Error())
		return
	}

	pair, _, err := h.service.VerifyAdminOTP(r.Context(), req.Email, req.OTP)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrOTPNotFound):
			pkghttp.WriteBadRequest(w, lang, "Invalid or expired OTP")
		case errors.Is(err, models.ErrNotStaff):
			pkghttp.WriteForbidden(w, lang, "You do not have permission to perform this action")
		default:
			h.logger.Error("admin otp verify failed", slog.Any("error", err))
			pkghttp.WriteInternalError(w, lang, "Internal server error")
		}
		return
	}

	auth.SetAccessCookie(w, pair.Access, h.tm.AccessTokenExpiry(), h.cookieCfg)
	pkghttp.WriteSuccess(w, http.StatusOK, lang, pair)
}
