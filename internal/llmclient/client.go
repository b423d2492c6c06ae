// Package llmclient wraps the chat, vision, and embedding collaborators
// behind a single configurable client, grounded on
// aqua777-ai-nexus/llm/openai/client.go's pattern of a custom BaseURL per
// sashabaranov/go-openai client.
package llmclient

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/drmoyassine/masteragent/internal/config"
)

// Client sends chat and embedding calls to independently configured
// OpenAI-compatible endpoints, so a deployment can mix local and hosted
// providers for the two; vision calls use the chat endpoint.
type Client struct {
	chat      *openai.Client
	chatModel string

	vision      *openai.Client
	visionModel string

	embedding   *openai.Client
	embedModel  string
	embeddingDim int
}

func New(cfg *config.LLMConfig) *Client {
	chatCfg := openai.DefaultConfig(cfg.ChatAPIKey)
	if cfg.ChatBaseURL != "" {
		chatCfg.BaseURL = cfg.ChatBaseURL
	}

	embedCfg := openai.DefaultConfig(cfg.EmbeddingAPIKey)
	if cfg.EmbeddingBaseURL != "" {
		embedCfg.BaseURL = cfg.EmbeddingBaseURL
	}

	// Vision always shares the chat endpoint/credentials; only its model is
	// configured separately.
	visionCfg := chatCfg

	return &Client{
		chat:         openai.NewClientWithConfig(chatCfg),
		chatModel:    cfg.ChatModel,
		vision:       openai.NewClientWithConfig(visionCfg),
		visionModel:  cfg.VisionModel,
		embedding:    openai.NewClientWithConfig(embedCfg),
		embedModel:   cfg.EmbeddingModel,
		embeddingDim: cfg.EmbeddingDim,
	}
}

// EmbeddingDim reports the configured vector width used to bootstrap the
// vector collections.
func (c *Client) EmbeddingDim() int { return c.embeddingDim }

// Complete runs a single-turn chat completion with the given system and
// user prompts, returning the raw assistant text.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// ExtractFromImage sends base64-encoded attachment bytes (an image, or a
// PDF passed as-is under its own MIME type) to the vision model with a
// fixed extraction prompt and returns the markdown it produces.
func (c *Client) ExtractFromImage(ctx context.Context, base64Data, mimeType string) (string, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64Data)
	resp, err := c.vision.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.visionModel,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: extractionPrompt},
					{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL}},
				},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("vision completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("vision completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

const extractionPrompt = "Extract all readable text from this document as clean markdown. " +
	"Preserve headings, lists, and tables where present. Output only the extracted content."

// Embed batches chunks into a single embeddings call.
func (c *Client) Embed(ctx context.Context, chunks []string) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	resp, err := c.embedding.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: chunks,
		Model: openai.EmbeddingModel(c.embedModel),
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	out := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		out[i] = d.Embedding
	}
	return out, nil
}

// EncodeBase64 is a small helper so callers never hand-roll base64 framing.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
