package models

import "github.com/golang-jwt/jwt/v5"

// Roles understood by the token service and the auth middleware.
const (
	RolePatient = "patient"
	RoleDoctor  = "doctor"
)

// Account is the identity contract shared by Patient and Doctor. The two
// schemas stay separate (separate tables, separate profile fields) but the
// credential handling is written once against this interface.
type Account interface {
	AccountID() uint
	AccountRole() string
	AccountName() string
	AccountEmail() string
	PasswordHash() string
	SetPasswordHash(hash string)
	// Sanitize strips the password hash so the value is safe to return to
	// a client. Every profile response goes through this.
	Sanitize()
}

// AuthClaims is the JWT payload asserting who the caller is.
type AuthClaims struct {
	UserID uint   `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}
