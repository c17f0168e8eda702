package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_GetWebhookTokens_SinglePair(t *testing.T) {
	cfg := &Config{
		WebhookTokens: "tok_abc:landing-page",
	}

	tokens, err := cfg.GetWebhookTokens()

	require.NoError(t, err)
	assert.Len(t, tokens, 1)
	assert.Equal(t, "landing-page", tokens["tok_abc"])
}

func TestConfig_GetWebhookTokens_MultiplePairs(t *testing.T) {
	cfg := &Config{
		WebhookTokens: "tok_abc:landing-page,tok_def:typeform,tok_ghi:zapier",
	}

	tokens, err := cfg.GetWebhookTokens()

	require.NoError(t, err)
	assert.Len(t, tokens, 3)
	assert.Equal(t, "landing-page", tokens["tok_abc"])
	assert.Equal(t, "typeform", tokens["tok_def"])
	assert.Equal(t, "zapier", tokens["tok_ghi"])
}

func TestConfig_GetWebhookTokens_WithWhitespace(t *testing.T) {
	cfg := &Config{
		WebhookTokens: "  tok_abc : landing-page  , tok_def : typeform ",
	}

	tokens, err := cfg.GetWebhookTokens()

	require.NoError(t, err)
	assert.Len(t, tokens, 2)
	assert.Equal(t, "landing-page", tokens["tok_abc"])
	assert.Equal(t, "typeform", tokens["tok_def"])
}

func TestConfig_GetWebhookTokens_EmptyString(t *testing.T) {
	cfg := &Config{
		WebhookTokens: "",
	}

	tokens, err := cfg.GetWebhookTokens()

	require.NoError(t, err)
	assert.Len(t, tokens, 0)
}

func TestConfig_GetWebhookTokens_EmptyEntriesIgnored(t *testing.T) {
	cfg := &Config{
		WebhookTokens: "tok_abc:landing-page,,  ,tok_def:typeform,",
	}

	tokens, err := cfg.GetWebhookTokens()

	require.NoError(t, err)
	assert.Len(t, tokens, 2)
}

func TestConfig_GetWebhookTokens_MissingSource(t *testing.T) {
	cfg := &Config{
		WebhookTokens: "tok_abc",
	}

	_, err := cfg.GetWebhookTokens()

	assert.Error(t, err)
}

func TestConfig_GetWebhookTokens_EmptySource(t *testing.T) {
	cfg := &Config{
		WebhookTokens: "tok_abc:",
	}

	_, err := cfg.GetWebhookTokens()

	assert.Error(t, err)
}

func TestConfig_GetWebhookTokens_EmptyToken(t *testing.T) {
	cfg := &Config{
		WebhookTokens: ":landing-page",
	}

	_, err := cfg.GetWebhookTokens()

	assert.Error(t, err)
}

func TestConfig_GetWebhookTokens_DuplicateToken(t *testing.T) {
	cfg := &Config{
		WebhookTokens: "tok_abc:landing-page,tok_abc:typeform",
	}

	_, err := cfg.GetWebhookTokens()

	assert.Error(t, err)
}

func validTestConfig() *Config {
	return &Config{
		DatabaseURL:                 "postgres://localhost/leadflow",
		RedisURL:                    "redis://localhost:6379",
		JWTHS256Secret:              "c2VjcmV0",
		JWTAudience:                 "leadflow-api",
		JWTClockSkewSeconds:         60,
		OTELSamplingRatio:           0.1,
		RateLimitPerWorkspacePerMin: 100,
	}
}

func TestConfig_Validate_Valid(t *testing.T) {
	assert.NoError(t, validTestConfig().Validate())
}

func TestConfig_Validate_MissingDatabaseURL(t *testing.T) {
	cfg := validTestConfig()
	cfg.DatabaseURL = ""
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_MissingRedisURL(t *testing.T) {
	cfg := validTestConfig()
	cfg.RedisURL = ""
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_NegativeClockSkew(t *testing.T) {
	cfg := validTestConfig()
	cfg.JWTClockSkewSeconds = -1
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_SamplingRatioOutOfRange(t *testing.T) {
	cfg := validTestConfig()
	cfg.OTELSamplingRatio = 1.5
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_NonPositiveRateLimit(t *testing.T) {
	cfg := validTestConfig()
	cfg.RateLimitPerWorkspacePerMin = 0
	assert.Error(t, cfg.Validate())
}

func TestConfig_Validate_MalformedWebhookTokens(t *testing.T) {
	cfg := validTestConfig()
	cfg.WebhookTokens = "broken"
	assert.Error(t, cfg.Validate())
}
