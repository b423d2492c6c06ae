package docparser

import (
	"context"
	"net/http"

	"github.com/drmoyassine/masteragent/internal/llmclient"
)

// extractWithVision base64-encodes the attachment and sends it to the
// configured vision model with a fixed extraction prompt.
func extractWithVision(ctx context.Context, llm *llmclient.Client, data []byte, mimeType string) (string, error) {
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	encoded := llmclient.EncodeBase64(data)
	return llm.ExtractFromImage(ctx, encoded, mimeType)
}
