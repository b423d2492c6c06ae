package docparser

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// parseOfficeDocument extracts paragraph text from an OOXML word-processing
// document (.docx): unzip, read word/document.xml, concatenate paragraph
// runs with blank-line separators.
//
// No library in the reference corpus offers OOXML extraction, so this
// branch is built on archive/zip + encoding/xml rather than a third-party
// dependency.
func parseOfficeDocument(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx zip: %w", err)
	}

	var docXML *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docXML = f
			break
		}
	}
	if docXML == nil {
		return "", fmt.Errorf("docx missing word/document.xml")
	}

	rc, err := docXML.Open()
	if err != nil {
		return "", fmt.Errorf("open word/document.xml: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read word/document.xml: %w", err)
	}

	return extractParagraphs(raw)
}

// wordML local names: <w:p> paragraphs contain <w:r> runs containing <w:t>
// text nodes. We walk the token stream rather than unmarshal into a typed
// tree since only these three elements matter.
func extractParagraphs(raw []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))

	var paragraphs []string
	var current strings.Builder
	inText := false

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("decode document xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				current.Reset()
			case "t":
				inText = true
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				paragraphs = append(paragraphs, current.String())
				current.Reset()
			}
		}
	}

	return strings.Join(paragraphs, "\n\n"), nil
}
