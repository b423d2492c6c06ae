package docparser

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	require.NoError(t, err)
	_, err = w.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParseOfficeDocument_JoinsParagraphsWithBlankLine(t *testing.T) {
	xml := `<w:document xmlns:w="ns"><w:body>` +
		`<w:p><w:r><w:t>First paragraph</w:t></w:r></w:p>` +
		`<w:p><w:r><w:t>Second</w:t></w:r><w:r><w:t> paragraph</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	out, err := parseOfficeDocument(buildDocx(t, xml))
	require.NoError(t, err)
	assert.Equal(t, "First paragraph\n\nSecond paragraph", out)
}

func TestParseOfficeDocument_MissingDocumentXMLIsAnError(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, err := zw.Create("word/styles.xml")
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, err = parseOfficeDocument(buf.Bytes())
	assert.Error(t, err)
}

func TestParseOfficeDocument_NotAZipIsAnError(t *testing.T) {
	_, err := parseOfficeDocument([]byte("not a zip file"))
	assert.Error(t, err)
}

func TestExtractParagraphs_EmptyParagraphProducesEmptyEntry(t *testing.T) {
	xml := `<w:document xmlns:w="ns"><w:body><w:p></w:p></w:body></w:document>`
	out, err := extractParagraphs([]byte(xml))
	require.NoError(t, err)
	assert.Equal(t, "", out)
}
