package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/backyardhq/accounts/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenState classifies an inbound credential. Only TokenStale drives the
// silent-refresh path; TokenMalformed and TokenExpired are treated as
// unauthenticated.
type TokenState int

const (
	// TokenValid: signature verifies under the active secret.
	TokenValid TokenState = iota
	// TokenStale: the payload parses but the signature does not verify,
	// e.g. after a secret rotation or a claims-shape change.
	TokenStale
	// TokenExpired: correctly signed but past its expiry.
	TokenExpired
	// TokenMalformed: not a parseable JWT at all.
	TokenMalformed
)

// VerifyResult is the tagged outcome of Verify. Claims is set for TokenValid
// (verified) and TokenStale (decoded without signature verification — trust
// only the subject identifier, and only to re-mint).
type VerifyResult struct {
	State  TokenState
	Claims *models.AccessClaims
}

// TokenManager mints and verifies the platform's JWTs.
type TokenManager struct {
	secret             string
	accessTokenExpiry  time.Duration
	refreshTokenExpiry time.Duration
}

func NewTokenManager(secret string, accessExpiry, refreshExpiry time.Duration) *TokenManager {
	return &TokenManager{
		secret:             secret,
		accessTokenExpiry:  accessExpiry,
		refreshTokenExpiry: refreshExpiry,
	}
}

// AccessTokenExpiry exposes the configured access token lifetime, used for
// the cookie Max-Age at every credential-setting call site.
func (tm *TokenManager) AccessTokenExpiry() time.Duration {
	return tm.accessTokenExpiry
}

// MintAccessToken creates an access token embedding the user's current
// profile attributes so downstream consumers need no second lookup.
func (tm *TokenManager) MintAccessToken(user *models.User) (string, error) {
	return tm.mint("access", user, tm.accessTokenExpiry)
}

// MintRefreshToken creates the long-lived companion token.
func (tm *TokenManager) MintRefreshToken(user *models.User) (string, error) {
	return tm.mint("refresh", user, tm.refreshTokenExpiry)
}

func (tm *TokenManager) mint(tokenType string, user *models.User, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &models.AccessClaims{
		Type:      tokenType,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		UserType:  user.UserType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(tm.secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}

	return tokenString, nil
}

// Verify checks a token against the active secret and classifies the result.
func (tm *TokenManager) Verify(tokenString string) VerifyResult {
	claims := &models.AccessClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(tm.secret), nil
	})

	if err == nil && token.Valid {
		return VerifyResult{State: TokenValid, Claims: claims}
	}

	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		unverified, decodeErr := tm.DecodeUnverified(tokenString)
		if decodeErr != nil {
			return VerifyResult{State: TokenMalformed}
		}
		return VerifyResult{State: TokenStale, Claims: unverified}
	case errors.Is(err, jwt.ErrTokenExpired), errors.Is(err, jwt.ErrTokenNotValidYet):
		return VerifyResult{State: TokenExpired}
	default:
		return VerifyResult{State: TokenMalformed}
	}
}

// DecodeUnverified parses a token without checking its signature. Only the
// stale-token refresh path may use the result, and only the subject.
func (tm *TokenManager) DecodeUnverified(tokenString string) (*models.AccessClaims, error) {
	claims := &models.AccessClaims{}

	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}

	return claims, nil
}
