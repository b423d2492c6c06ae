package llmclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drmoyassine/masteragent/internal/config"
)

func TestRedact_NoConfiguredURLReturnsTextUnchanged(t *testing.T) {
	c := NewRedactionClient(&config.LLMConfig{})
	assert.Equal(t, "call me at 555-1234", c.Redact(context.Background(), "call me at 555-1234"))
}

func TestRedact_SuccessfulCallReturnsScrubbedText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"redacted_text":"call me at [REDACTED]"}`))
	}))
	defer srv.Close()

	c := NewRedactionClient(&config.LLMConfig{RedactionURL: srv.URL})
	out := c.Redact(context.Background(), "call me at 555-1234")
	assert.Equal(t, "call me at [REDACTED]", out)
}

func TestRedact_ServerErrorFallsBackToOriginalText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewRedactionClient(&config.LLMConfig{RedactionURL: srv.URL})
	out := c.Redact(context.Background(), "original text")
	assert.Equal(t, "original text", out)
}

func TestRedact_EmptyRedactedTextFallsBackToOriginal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"redacted_text":""}`))
	}))
	defer srv.Close()

	c := NewRedactionClient(&config.LLMConfig{RedactionURL: srv.URL})
	out := c.Redact(context.Background(), "original text")
	assert.Equal(t, "original text", out)
}
