package auth

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret   = "test-secret-key-must-be-at-least-32-chars-long-for-hmac"
	testIssuer   = "leadflow-web"
	testAudience = "leadflow-api"
)

func testSecretBase64() string {
	return base64.StdEncoding.EncodeToString([]byte(testSecret))
}

func newTestValidator(t *testing.T) *HS256Validator {
	t.Helper()
	v, err := NewHS256Validator(testSecretBase64(), testIssuer, testAudience, 60*time.Second)
	require.NoError(t, err)
	return v
}

func createTestToken(secret string, claims *CustomClaims, exp time.Time) string {
	claims.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Audience:  jwt.ClaimStrings{testAudience},
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(secret))
	return tokenString
}

func TestHS256Validator_ValidToken(t *testing.T) {
	validator := newTestValidator(t)

	claims := &CustomClaims{
		WorkspaceID: "ws-12345",
		ActorID:     "user-67890",
	}
	token := createTestToken(testSecret, claims, time.Now().Add(1*time.Hour))

	result, err := validator.Validate(token)

	require.NoError(t, err)
	assert.Equal(t, "ws-12345", result.WorkspaceID)
	assert.Equal(t, "user-67890", result.ActorID)
	assert.Equal(t, testIssuer, result.Issuer)
}

func TestHS256Validator_InvalidSignature(t *testing.T) {
	validator := newTestValidator(t)

	wrongSecret := "wrong-secret-key-must-be-at-least-32-chars-long"
	claims := &CustomClaims{
		WorkspaceID: "ws-12345",
		ActorID:     "user-67890",
	}
	token := createTestToken(wrongSecret, claims, time.Now().Add(1*time.Hour))

	result, err := validator.Validate(token)

	require.Error(t, err)
	assert.Nil(t, result)
	authErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, FailureInvalidSignature, authErr.Reason)
}

func TestHS256Validator_ExpiredToken(t *testing.T) {
	validator := newTestValidator(t)

	claims := &CustomClaims{
		WorkspaceID: "ws-12345",
		ActorID:     "user-67890",
	}
	token := createTestToken(testSecret, claims, time.Now().Add(-2*time.Hour))

	result, err := validator.Validate(token)

	require.Error(t, err)
	assert.Nil(t, result)
	authErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, FailureTokenExpired, authErr.Reason)
}

func TestHS256Validator_ClockSkewTolerance(t *testing.T) {
	validator := newTestValidator(t)

	// Expired 30 seconds ago, inside the 60 second leeway.
	claims := &CustomClaims{
		WorkspaceID: "ws-12345",
		ActorID:     "user-67890",
	}
	token := createTestToken(testSecret, claims, time.Now().Add(-30*time.Second))

	result, err := validator.Validate(token)

	require.NoError(t, err)
	assert.Equal(t, "ws-12345", result.WorkspaceID)
}

func TestHS256Validator_WrongIssuer(t *testing.T) {
	validator := newTestValidator(t)

	claims := &CustomClaims{
		WorkspaceID: "ws-12345",
		ActorID:     "user-67890",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "some-other-app",
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = validator.Validate(tokenString)

	require.Error(t, err)
	authErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, FailureInvalidIssuer, authErr.Reason)
}

func TestHS256Validator_WrongAudience(t *testing.T) {
	validator := newTestValidator(t)

	claims := &CustomClaims{
		WorkspaceID: "ws-12345",
		ActorID:     "user-67890",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Audience:  jwt.ClaimStrings{"someone-else"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(1 * time.Hour)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = validator.Validate(tokenString)

	require.Error(t, err)
	authErr, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, FailureInvalidAudience, authErr.Reason)
}

func TestHS256Validator_MissingCustomClaims(t *testing.T) {
	validator := newTestValidator(t)

	claims := &CustomClaims{
		// WorkspaceID deliberately empty
		ActorID: "user-67890",
	}
	token := createTestToken(testSecret, claims, time.Now().Add(1*time.Hour))

	_, err := validator.Validate(token)

	require.Error(t, err)
}

func TestNewHS256Validator_RejectsShortSecret(t *testing.T) {
	short := base64.StdEncoding.EncodeToString([]byte("too-short"))
	_, err := NewHS256Validator(short, testIssuer, testAudience, time.Minute)
	require.Error(t, err)
}

func TestNewHS256Validator_RejectsInvalidBase64(t *testing.T) {
	_, err := NewHS256Validator("not base64!!!", testIssuer, testAudience, time.Minute)
	require.Error(t, err)
}
