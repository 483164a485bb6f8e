package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campusrag/campusrag/types"
)

// TokenIssuer signs and verifies HS256 access tokens carrying the
// student's registration ID.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenIssuer creates an issuer. TTL defaults to 24 hours.
func NewTokenIssuer(secret string, ttl time.Duration) *TokenIssuer {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenIssuer{secret: []byte(secret), ttl: ttl}
}

type accessClaims struct {
	RegID string `json:"reg_id"`
	jwt.RegisteredClaims
}

// Issue returns a signed token for the registration ID.
func (t *TokenIssuer) Issue(regID string) (string, error) {
	now := time.Now()
	claims := accessClaims{
		RegID: regID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", types.NewError(types.ErrInternalError, "failed to sign token").WithCause(err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the registration ID.
func (t *TokenIssuer) Verify(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &accessClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return t.secret, nil
	})
	if err != nil || !token.Valid {
		return "", types.NewError(types.ErrAuthentication, "invalid or expired token").WithCause(err)
	}

	claims, ok := token.Claims.(*accessClaims)
	if !ok || claims.RegID == "" {
		return "", types.NewError(types.ErrAuthentication, "token missing registration id")
	}
	return claims.RegID, nil
}
