package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/backyardhq/accounts/internal/models"
	"github.com/backyardhq/accounts/internal/services"
	pkgauth "github.com/backyardhq/accounts/pkg/auth"
	pkghttp "github.com/backyardhq/accounts/pkg/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAccountService struct {
	signUpFunc func(ctx context.Context, input services.SignUpInput, lang string) (*models.User, error)

	signUpCalls int
}

func (s *stubAccountService) SignUp(ctx context.Context, input services.SignUpInput, lang string) (*models.User, error) {
	s.signUpCalls++
	if s.signUpFunc != nil {
		return s.signUpFunc(ctx, input, lang)
	}
	return nil, models.ErrInternalServer
}

func (s *stubAccountService) ConfirmEmailOTP(ctx context.Context, email, code string) error {
	return nil
}

func (s *stubAccountService) GetProfile(ctx context.Context, id string) (*models.User, error) {
	return nil, models.ErrNotFound
}

func (s *stubAccountService) UpdateProfile(ctx context.Context, id string, input services.ProfileUpdateInput) (*models.User, error) {
	return nil, models.ErrNotFound
}

func (s *stubAccountService) DeleteAccount(ctx context.Context, id string) error {
	return nil
}

func doSignUp(t *testing.T, service AccountServiceInterface, body string) (*httptest.ResponseRecorder, pkghttp.Envelope) {
	t.Helper()
	handler := NewAccountHandler(service, slog.Default())

	req := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.SignUp(rec, req)

	var env pkghttp.Envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return rec, env
}

func TestSignUp_Success(t *testing.T) {
	service := &stubAccountService{
		signUpFunc: func(ctx context.Context, input services.SignUpInput, lang string) (*models.User, error) {
			return &models.User{
				ID:          "user123",
				Email:       input.Email,
				FirstName:   input.FirstName,
				LastName:    input.LastName,
				PhoneNumber: input.PhoneNumber,
				UserType:    models.UserTypeApplicant,
			}, nil
		},
	}

	rec, env := doSignUp(t, service, `{
		"email": "user@example.com",
		"password": "Sup3r@pass",
		"confirm_password": "Sup3r@pass",
		"first_name": "Nora",
		"last_name": "Hassan",
		"phone_number": "0501234567"
	}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "success", env.Message)
	assert.Equal(t, 1, service.signUpCalls)
}

func TestSignUp_PasswordConfirmationMismatch(t *testing.T) {
	service := &stubAccountService{}

	rec, env := doSignUp(t, service, `{
		"email": "user@example.com",
		"password": "Sup3r@pass",
		"confirm_password": "Other@pass1",
		"first_name": "Nora",
		"last_name": "Hassan",
		"phone_number": "0501234567"
	}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, env.Error, 1)
	assert.Equal(t, "Passwords are not Matching", env.Error[0])
	assert.Zero(t, service.signUpCalls)
}

func TestSignUp_WeakPasswordRejected(t *testing.T) {
	service := &stubAccountService{}

	rec, env := doSignUp(t, service, `{
		"email": "user@example.com",
		"password": "weakpass",
		"confirm_password": "weakpass",
		"first_name": "Nora",
		"last_name": "Hassan",
		"phone_number": "0501234567"
	}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.Len(t, env.Error, 1)
	assert.Equal(t, pkgauth.PasswordPolicyMessage, env.Error[0])
	assert.Zero(t, service.signUpCalls)
}

func TestSignUp_MissingConfirmPasswordRejected(t *testing.T) {
	service := &stubAccountService{}

	rec, _ := doSignUp(t, service, `{
		"email": "user@example.com",
		"password": "Sup3r@pass",
		"first_name": "Nora",
		"last_name": "Hassan",
		"phone_number": "0501234567"
	}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, service.signUpCalls)
}
