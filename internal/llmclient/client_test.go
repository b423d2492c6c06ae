package llmclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drmoyassine/masteragent/internal/config"
)

func TestNew_BuildsClientWithConfiguredEmbeddingDim(t *testing.T) {
	c := New(&config.LLMConfig{
		ChatAPIKey:      "k",
		ChatModel:       "gpt-4o-mini",
		EmbeddingAPIKey: "k",
		EmbeddingModel:  "text-embedding-3-small",
		EmbeddingDim:    1536,
	})
	assert.Equal(t, 1536, c.EmbeddingDim())
}

func TestEmbed_EmptyInputReturnsNilWithoutCallingTheAPI(t *testing.T) {
	c := New(&config.LLMConfig{ChatAPIKey: "k", EmbeddingAPIKey: "k"})
	out, err := c.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestEncodeBase64_RoundTripsKnownValue(t *testing.T) {
	assert.Equal(t, "aGVsbG8=", EncodeBase64([]byte("hello")))
}
