package docparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPlainText_MatchesTextFamilyPrefixesOnly(t *testing.T) {
	assert.True(t, isPlainText("text/plain"))
	assert.True(t, isPlainText("text/plain; charset=utf-8"))
	assert.True(t, isPlainText("text/markdown"))
	assert.True(t, isPlainText("text/csv"))
	assert.False(t, isPlainText("application/pdf"))
	assert.False(t, isPlainText("image/png"))
}

func TestIsVisionCandidate_MatchesImagesAndPDF(t *testing.T) {
	assert.True(t, isVisionCandidate("image/png"))
	assert.True(t, isVisionCandidate("image/jpeg"))
	assert.True(t, isVisionCandidate("application/pdf"))
	assert.False(t, isVisionCandidate("text/plain"))
}

func TestIsOfficeDocument_MatchesByMIMEOrExtension(t *testing.T) {
	const docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	assert.True(t, isOfficeDocument(docxMIME, "report"))
	assert.True(t, isOfficeDocument("application/octet-stream", "Report.DOCX"))
	assert.False(t, isOfficeDocument("application/octet-stream", "report.pdf"))
}
