package authentication

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vaidya/models"
)

// Tokens are valid for 7 days; there is no refresh, clients re-authenticate
// after expiry.
const tokenTTL = 7 * 24 * time.Hour

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// TokenService issues and verifies the signed credentials asserting
// {userId, role}. Constructed once at startup with the configured secret.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: tokenTTL}
}

// NewTokenServiceWithTTL exists for tests that need already-expired tokens.
func NewTokenServiceWithTTL(secret string, ttl time.Duration) *TokenService {
	return &TokenService{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token carrying the user's id and role.
func (ts *TokenService) Issue(userID uint, role string) (string, error) {
	claims := &models.AuthClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ts.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(ts.secret)
}

// Verify parses and checks a token, returning its claims. Expiry is reported
// as ErrTokenExpired so callers can log the cause distinctly; every other
// failure (malformed, wrong signature, wrong algorithm) is ErrTokenInvalid.
func (ts *TokenService) Verify(tokenString string) (*models.AuthClaims, error) {
	claims := &models.AuthClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return ts.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Role != models.RolePatient && claims.Role != models.RoleDoctor {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
