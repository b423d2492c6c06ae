package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashAPIKey_IsDeterministic(t *testing.T) {
	assert.Equal(t, HashAPIKey("secret-key"), HashAPIKey("secret-key"))
}

func TestHashAPIKey_DiffersAcrossKeysAndNeverReturnsTheRawKey(t *testing.T) {
	a := HashAPIKey("key-one")
	b := HashAPIKey("key-two")
	assert.NotEqual(t, a, b)
	assert.NotContains(t, a, "key-one")
	assert.Len(t, a, 64) // hex-encoded SHA-256
}
