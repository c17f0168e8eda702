package auth

import "crypto/subtle"

// WebhookTokenStore maps static ingestion tokens to their source name.
// Tokens are compared in constant time so lookup latency does not leak
// prefix matches.
type WebhookTokenStore struct {
	tokens map[string]string // token -> source name
}

// NewWebhookTokenStore creates a store from a token→source map.
func NewWebhookTokenStore(tokens map[string]string) *WebhookTokenStore {
	s := &WebhookTokenStore{tokens: make(map[string]string, len(tokens))}
	for token, source := range tokens {
		if token != "" && source != "" {
			s.tokens[token] = source
		}
	}
	return s
}

// Validate checks a presented token and returns the source it belongs to.
func (s *WebhookTokenStore) Validate(presented string) (string, bool) {
	if presented == "" {
		return "", false
	}
	for token, source := range s.tokens {
		if len(token) == len(presented) &&
			subtle.ConstantTimeCompare([]byte(token), []byte(presented)) == 1 {
			return source, true
		}
	}
	return "", false
}

// Len returns the number of registered tokens.
func (s *WebhookTokenStore) Len() int {
	return len(s.tokens)
}
