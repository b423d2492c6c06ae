// Package docparser converts attachment bytes into extracted text. Every
// branch degrades to empty text on failure; none of them return an error
// that should abort ingest.
package docparser

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/drmoyassine/masteragent/internal/llmclient"
)

// Result is what a parse attempt produces, regardless of branch.
type Result struct {
	ExtractedText string
	PageCount      int
	HasImages      bool
	Flagged        bool // set when the MIME family has no parsing strategy
}

// Parser dispatches on MIME type to the text, vision, or office branch.
type Parser struct {
	llm    *llmclient.Client
	logger *logrus.Logger
}

func New(llm *llmclient.Client, logger *logrus.Logger) *Parser {
	return &Parser{llm: llm, logger: logger}
}

// Parse never returns an error: a failed branch yields an empty Result and
// is logged at warn level so the caller can still record the attachment.
func (p *Parser) Parse(ctx context.Context, filename, mimeType string, data []byte) Result {
	switch {
	case isPlainText(mimeType):
		return parseText(data)

	case isVisionCandidate(mimeType):
		text, err := extractWithVision(ctx, p.llm, data, mimeType)
		if err != nil {
			p.logger.WithError(err).WithField("filename", filename).Warn("vision extraction failed")
			return Result{}
		}
		return Result{ExtractedText: text, HasImages: true}

	case isOfficeDocument(mimeType, filename):
		text, err := parseOfficeDocument(data)
		if err != nil {
			p.logger.WithError(err).WithField("filename", filename).Warn("office document parse failed")
			return Result{}
		}
		return Result{ExtractedText: text}

	default:
		return Result{Flagged: true}
	}
}

func isPlainText(mimeType string) bool {
	switch {
	case strings.HasPrefix(mimeType, "text/plain"):
		return true
	case strings.HasPrefix(mimeType, "text/markdown"):
		return true
	case strings.HasPrefix(mimeType, "text/csv"):
		return true
	default:
		return false
	}
}

func isVisionCandidate(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/") || mimeType == "application/pdf"
}

func isOfficeDocument(mimeType, filename string) bool {
	if mimeType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document" {
		return true
	}
	return strings.HasSuffix(strings.ToLower(filename), ".docx")
}
