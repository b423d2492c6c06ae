package llmclient

import (
	"context"

	"github.com/go-resty/resty/v2"

	"github.com/drmoyassine/masteragent/internal/config"
)

// RedactionClient calls an external PII-scrubbing service over a fixed
// /redact contract. Every failure path returns the original text unchanged:
// redaction is fail-open for availability, never fail-closed (the documented
// tradeoff is leaking unredacted text rather than blocking ingest).
type RedactionClient struct {
	http    *resty.Client
	apiKey  string
}

func NewRedactionClient(cfg *config.LLMConfig) *RedactionClient {
	c := resty.New().
		SetBaseURL(cfg.RedactionURL).
		SetTimeout(cfg.RedactionTimeout)
	return &RedactionClient{http: c, apiKey: cfg.RedactionAPIKey}
}

type redactRequest struct {
	Text string `json:"text"`
}

type redactResponse struct {
	RedactedText string `json:"redacted_text"`
}

// Redact returns scrubbed text, or the original text unchanged on any
// transport, auth, or decode failure.
func (r *RedactionClient) Redact(ctx context.Context, text string) string {
	if r.http.BaseURL == "" {
		return text
	}

	var out redactResponse
	resp, err := r.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+r.apiKey).
		SetBody(redactRequest{Text: text}).
		SetResult(&out).
		Post("/redact")
	if err != nil || resp.IsError() {
		return text
	}
	if out.RedactedText == "" {
		return text
	}
	return out.RedactedText
}
