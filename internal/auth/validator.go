package auth

import (
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenValidator validates JWT tokens
type TokenValidator interface {
	Validate(tokenString string) (*CustomClaims, error)
}

// HS256Validator validates HS256 JWT tokens against a single shared
// secret, with issuer and audience checks and bounded clock skew.
type HS256Validator struct {
	secret    []byte
	issuer    string
	audience  string
	clockSkew time.Duration
}

// NewHS256Validator creates a validator from a base64-encoded secret.
func NewHS256Validator(secretBase64, issuer, audience string, clockSkew time.Duration) (*HS256Validator, error) {
	secret, err := base64.StdEncoding.DecodeString(secretBase64)
	if err != nil {
		return nil, fmt.Errorf("JWT secret is not valid base64: %w", err)
	}
	if len(secret) < 32 {
		return nil, fmt.Errorf("JWT secret must be at least 32 bytes, got %d", len(secret))
	}
	return &HS256Validator{
		secret:    secret,
		issuer:    issuer,
		audience:  audience,
		clockSkew: clockSkew,
	}, nil
}

// Validate validates an HS256 JWT token
func (v *HS256Validator) Validate(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	},
		jwt.WithLeeway(v.clockSkew),
		jwt.WithIssuer(v.issuer),
		jwt.WithAudience(v.audience),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, NewError(FailureTokenExpired, "token expired", err)
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return nil, NewError(FailureInvalidSignature, "invalid signature", err)
		case errors.Is(err, jwt.ErrTokenInvalidIssuer):
			return nil, NewError(FailureInvalidIssuer, "invalid issuer", err)
		case errors.Is(err, jwt.ErrTokenInvalidAudience):
			return nil, NewError(FailureInvalidAudience, "invalid audience", err)
		default:
			return nil, NewError(FailureUnknown, "failed to parse token", err)
		}
	}

	claims, ok := token.Claims.(*CustomClaims)
	if !ok || !token.Valid {
		return nil, NewError(FailureUnknown, fmt.Sprintf("invalid token: valid=%v", token.Valid), nil)
	}

	if err := claims.Validate(); err != nil {
		return nil, NewError(FailureUnknown, "invalid claims", err)
	}

	return claims, nil
}

// maskToken masks a JWT token for safe logging
func maskToken(token string) string {
	if len(token) <= 12 {
		return "***"
	}
	return token[:12] + "..."
}
