package models

import (
	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the JWT payload carried by the access cookie. The profile
// fields are embedded so downstream consumers do not need a user lookup.
type AccessClaims struct {
	Type      string   `json:"type"`
	FirstName string   `json:"first_name"`
	LastName  string   `json:"last_name"`
	Email     string   `json:"email"`
	UserType  UserType `json:"user_type"`
	jwt.RegisteredClaims
}
