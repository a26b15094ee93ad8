package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/backyardhq/accounts/internal/models"
	"github.com/backyardhq/accounts/internal/services"
	pkgauth "github.com/backyardhq/accounts/pkg/auth"
	pkghttp "github.com/backyardhq/accounts/pkg/http"
	"github.com/go-chi/chi/v5"
)

// AccountServiceInterface defines the interface for account management logic
type AccountServiceInterface interface {
	SignUp(ctx context.Context, input services.SignUpInput, lang string) (*models.User, error)
	ConfirmEmailOTP(ctx context.Context, email, code string) error
	GetProfile(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, input services.ProfileUpdateInput) (*models.User, error)
	DeleteAccount(ctx context.Context, id string) error
}

// AccountHandler handles registration and profile HTTP requests
type AccountHandler struct {
	service AccountServiceInterface
	logger  *slog.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(service AccountServiceInterface, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{
		service: service,
		logger:  logger,
	}
}

// Request DTOs

// SignUpRequest represents the request body for applicant registration
type SignUpRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirm_password" validate:"required"`
	FirstName       string `json:"first_name" validate:"required,min=1,max=100"`
	LastName        string `json:"last_name" validate:"required,min=1,max=100"`
	PhoneNumber     string `json:"phone_number" validate:"required,min=7,max=20"`
}

// ConfirmEmailOTPRequest represents the request body for email confirmation
type ConfirmEmailOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,len=4,numeric"`
}

// UpdateProfileRequest represents the request body for a profile update.
// All fields are optional; date_of_birth is YYYY-MM-DD.
type UpdateProfileRequest struct {
	FirstName   string `json:"first_name" validate:"omitempty,min=1,max=100"`
	LastName    string `json:"last_name" validate:"omitempty,min=1,max=100"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,min=7,max=20"`
	Gender      *int   `json:"gender" validate:"omitempty,oneof=1 2"`
	DateOfBirth string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
}

// ProfileResponse is the user representation returned to clients.
type ProfileResponse struct {
	ID                 string          `json:"id"`
	Email              string          `json:"email"`
	FirstName          string          `json:"first_name"`
	LastName           string          `json:"last_name"`
	PhoneNumber        string          `json:"phone_number"`
	UserType           models.UserType `json:"user_type"`
	Gender             *int            `json:"gender"`
	DateOfBirth        *string         `json:"date_of_birth"`
	IsActive           bool            `json:"is_active"`
	IsProfileCompleted bool            `json:"is_profile_completed"`
	CreatedAt          time.Time       `json:"created_at"`
}

func toProfileResponse(user *models.User) ProfileResponse {
	var dob *string
	if user.DateOfBirth != nil {
		formatted := user.DateOfBirth.Format("2006-01-02")
		dob = &formatted
	}
	return ProfileResponse{
		ID:                 user.ID,
		Email:              user.Email,
		FirstName:          user.FirstName,
		LastName:           user.LastName,
		PhoneNumber:        user.PhoneNumber,
		UserType:           user.UserType,
		Gender:             user.Gender,
		DateOfBirth:        dob,
		IsActive:           user.IsActive,
		IsProfileCompleted: user.IsProfileCompleted,
		CreatedAt:          user.CreatedAt,
	}
}

// SignUp registers a new applicant and emails the confirmation OTP.
func (h *AccountHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	lang, err := pkghttp.RequestLang(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "", err.Error())
		return
	}

	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, lang, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, lang, err.Error())
		return
	}
	if req.Password != req.ConfirmPassword {
		pkghttp.WriteBadRequest(w, lang, "Passwords are not Matching")
		return
	}
	if !pkgauth.ValidatePasswordForEmail(req.Password, req.Email) {
		pkghttp.WriteBadRequest(w, lang, pkgauth.PasswordPolicyMessage)
		return
	}

	user, err := h.service.SignUp(r.Context(), services.SignUpInput{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	}, lang)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrOTPAlreadySent):
			pkghttp.WriteBadRequest(w, lang, "An OTP has already been sent to this email, confirm it first")
		case errors.Is(err, models.ErrEmailTaken):
			pkghttp.WriteBadRequest(w, lang, "An account with this email already exists")
		default:
			h.logger.Error("sign up failed", slog.Any("error", err))
			pkghttp.WriteInternalError(w, lang, "Internal server error")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusCreated, lang, toProfileResponse(user))
}

// ConfirmEmailOTP consumes the sign-up OTP and activates the account.
func (h *AccountHandler) ConfirmEmailOTP(w http.ResponseWriter, r *http.Request) {
	lang, err := pkghttp.RequestLang(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "", err.Error())
		return
	}

	var req ConfirmEmailOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, lang, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, lang, err.Error())
		return
	}

	if err := h.service.ConfirmEmailOTP(r.Context(), req.Email, req.OTP); err != nil {
		switch {
		case errors.Is(err, models.ErrOTPNotFound):
			pkghttp.WriteBadRequest(w, lang, "Invalid or expired OTP")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, lang, "Account not found")
		default:
			h.logger.Error("email confirmation failed", slog.Any("error", err))
			pkghttp.WriteInternalError(w, lang, "Internal server error")
		}
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, lang, map[string]string{
		"detail": "Email confirmed, you can sign in now",
	})
}

// GetProfile returns the profile for the id in the path. Ownership is
// enforced by middleware.
func (h *AccountHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	lang, err := pkghttp.RequestLang(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "", err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	user, err := h.service.GetProfile(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, lang, "Account not found")
			return
		}
		h.logger.Error("profile lookup failed", slog.Any("error", err))
		pkghttp.WriteInternalError(w, lang, "Internal server error")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, lang, toProfileResponse(user))
}

// UpdateProfile applies a partial update to the profile in the path.
func (h *AccountHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	lang, err := pkghttp.RequestLang(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "", err.Error())
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, lang, "Invalid request body")
		return
	}
	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, lang, err.Error())
		return
	}

	input := services.ProfileUpdateInput{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Gender:      req.Gender,
	}
	if req.DateOfBirth != "" {
		dob, err := time.Parse("2006-01-02", req.DateOfBirth)
		if err != nil {
			pkghttp.WriteBadRequest(w, lang, "date_of_birth must be YYYY-MM-DD")
			return
		}
		input.DateOfBirth = &dob
	}

	id := chi.URLParam(r, "id")
	user, err := h.service.UpdateProfile(r.Context(), id, input)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, lang, "Account not found")
			return
		}
		h.logger.Error("profile update failed", slog.Any("error", err))
		pkghttp.WriteInternalError(w, lang, "Internal server error")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, lang, toProfileResponse(user))
}

// DeleteAccount removes the account in the path and invalidates its sessions.
func (h *AccountHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	lang, err := pkghttp.RequestLang(r)
	if err != nil {
		pkghttp.WriteBadRequest(w, "", err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.service.DeleteAccount(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, lang, "Account not found")
			return
		}
		h.logger.Error("account deletion failed", slog.Any("error", err))
		pkghttp.WriteInternalError(w, lang, "Internal server error")
		return
	}

	pkghttp.WriteSuccess(w, http.StatusOK, lang, nil)
}
