// Package enricher derives a summary, entity references, and (optionally)
// a PII-scrubbed projection from composite ingest text.
package enricher

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/drmoyassine/masteragent/internal/database"
	"github.com/drmoyassine/masteragent/internal/llmclient"
	"github.com/drmoyassine/masteragent/internal/models"
)

const truncateChars = 4000

// ExtractedEntity is the shape the LLM is asked to return for entity
// extraction: {type, name, role}.
type ExtractedEntity struct {
	Type string `json:"type"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// Enricher wraps the chat LLM, the admin-configured prompt templates, and
// the redaction collaborator.
type Enricher struct {
	llm        *llmclient.Client
	prompts    *database.ConfigTablesRepository
	redactor   *llmclient.RedactionClient
	logger     *logrus.Logger
}

func New(llm *llmclient.Client, prompts *database.ConfigTablesRepository, redactor *llmclient.RedactionClient, logger *logrus.Logger) *Enricher {
	return &Enricher{llm: llm, prompts: prompts, redactor: redactor, logger: logger}
}

func truncate(text string) string {
	if len(text) <= truncateChars {
		return text
	}
	return text[:truncateChars]
}

// Summarize produces a best-effort summary and never fails the ingest: on
// any prompt or LLM failure, it falls back to a truncated prefix of the
// input, which is empty when the input is blank.
func (e *Enricher) Summarize(ctx context.Context, text string) string {
	input := truncate(text)

	prompt, err := e.prompts.GetActivePrompt(ctx, "summarization")
	if err != nil {
		e.logger.WithError(err).Warn("no active summarization prompt, using fallback")
		return fallbackSummary(input)
	}

	rendered := strings.ReplaceAll(prompt.PromptText, "{text}", input)
	out, err := e.llm.Complete(ctx, "You summarize agent memory entries.", rendered)
	if err != nil {
		e.logger.WithError(err).Warn("summarization call failed, using fallback")
		return fallbackSummary(input)
	}
	return strings.TrimSpace(out)
}

func fallbackSummary(text string) string {
	const max = 280
	trimmed := strings.TrimSpace(text)
	if len(trimmed) <= max {
		return trimmed
	}
	return trimmed[:max]
}

// ExtractEntities returns an empty list if the prompt is missing, the LLM
// call fails, or the response does not parse as a JSON array — never an
// error.
func (e *Enricher) ExtractEntities(ctx context.Context, text string) []ExtractedEntity {
	input := truncate(text)

	prompt, err := e.prompts.GetActivePrompt(ctx, "entity_extraction")
	if err != nil {
		e.logger.WithError(err).Warn("no active entity extraction prompt")
		return nil
	}

	rendered := strings.ReplaceAll(prompt.PromptText, "{text}", input)
	out, err := e.llm.Complete(ctx, "You extract structured entities as a JSON array.", rendered)
	if err != nil {
		e.logger.WithError(err).Warn("entity extraction call failed")
		return nil
	}

	var entities []ExtractedEntity
	if err := json.Unmarshal([]byte(extractJSONArray(out)), &entities); err != nil {
		e.logger.WithError(err).Debug("entity extraction response did not parse as JSON")
		return nil
	}
	return entities
}

// extractJSONArray trims leading/trailing prose some models add around a
// JSON array despite instructions, by slicing from the first '[' to the
// last ']'.
func extractJSONArray(s string) string {
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end < 0 || end < start {
		return s
	}
	return s[start : end+1]
}

// ToEntityRefs converts extracted entities into structural citations. The
// extracted name is used directly as the entity id: there is no entity
// resolution subsystem in scope, so free-text names are the identifier.
func ToEntityRefs(entities []ExtractedEntity) []models.EntityRef {
	refs := make([]models.EntityRef, 0, len(entities))
	for _, e := range entities {
		if e.Name == "" {
			continue
		}
		refs = append(refs, models.EntityRef{Type: e.Type, ID: e.Name, Role: e.Role})
	}
	return refs
}

// Redact delegates to the redaction collaborator, which itself fails open.
func (e *Enricher) Redact(ctx context.Context, text string) string {
	return e.redactor.Redact(ctx, text)
}
