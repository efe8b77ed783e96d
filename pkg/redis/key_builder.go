package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	if environment == "development" || environment == "staging" || environment == "test" {
		prefix = "staging"
	}
	return &KeyBuilder{prefix: prefix}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// KeyRateLimitRecord builds the limiter state key for a derived limiter key
func (kb *KeyBuilder) KeyRateLimitRecord(limiterKey string) string {
	return kb.BuildKey(fmt.Sprintf(KeyRateLimitRecord, limiterKey))
}

// KeyEscalationStatus builds the cached escalation status key for a session
func (kb *KeyBuilder) KeyEscalationStatus(sessionID string) string {
	return kb.BuildKey(fmt.Sprintf(KeyEscalationStatus, sessionID))
}
