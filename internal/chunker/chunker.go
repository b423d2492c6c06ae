// Package chunker splits text into overlapping windows for embedding, using
// a deterministic, boundary-aware backward search rather than a fixed-width
// cut. No library in the reference corpus implements this exact algorithm;
// it is built on the standard library because determinism here is part of
// the system's observable contract (chunk index feeds the vector point id).
package chunker

import "strings"

// charsPerToken approximates token length for providers that don't expose
// a tokenizer; the tradeoff is explicit and applied uniformly.
const charsPerToken = 4

// Chunk splits text into overlapping windows sized in tokens. targetTokens
// and overlapTokens are converted to characters via the 4-chars-per-token
// approximation. Returns nil for empty input.
func Chunk(text string, targetTokens, overlapTokens int) []string {
	if text == "" {
		return nil
	}

	targetChars := targetTokens * charsPerToken
	overlapChars := overlapTokens * charsPerToken
	if targetChars <= 0 {
		return []string{text}
	}

	if len(text) <= targetChars {
		if strings.TrimSpace(text) == "" {
			return nil
		}
		return []string{text}
	}

	var chunks []string
	start := 0
	for start < len(text) {
		nominalEnd := start + targetChars
		if nominalEnd >= len(text) {
			tail := text[start:]
			if strings.TrimSpace(tail) != "" {
				chunks = append(chunks, tail)
			}
			break
		}

		breakPoint := findBreak(text, start, nominalEnd, targetChars)

		piece := text[start:breakPoint]
		if strings.TrimSpace(piece) != "" {
			chunks = append(chunks, piece)
		}

		next := breakPoint - overlapChars
		if next <= start {
			next = breakPoint // avoid infinite loop when overlap >= piece length
		}
		start = next
	}

	return chunks
}

// findBreak searches backwards from nominalEnd within [start, nominalEnd]
// for the first preferred boundary, in priority order: paragraph break,
// single newline, sentence terminator, word boundary, else hard cut.
func findBreak(text string, start, nominalEnd, targetChars int) int {
	window := text[start:nominalEnd]

	if idx := lastIndexAtOrAbove(window, "\n\n", targetChars, 0.5); idx >= 0 {
		return start + idx + len("\n\n")
	}
	if idx := lastIndexAtOrAbove(window, "\n", targetChars, 0.5); idx >= 0 {
		return start + idx + len("\n")
	}
	if idx, termLen := lastSentenceTerminator(window, targetChars, 0.5); idx >= 0 {
		return start + idx + termLen
	}
	if idx := lastIndexAtOrAbove(window, " ", targetChars, 0.3); idx >= 0 {
		return start + idx + len(" ")
	}
	return nominalEnd
}

// lastIndexAtOrAbove returns the last occurrence of sep in window whose
// position is >= threshold*targetChars, or -1 if none qualifies.
func lastIndexAtOrAbove(window, sep string, targetChars int, threshold float64) int {
	minPos := int(float64(targetChars) * threshold)
	idx := strings.LastIndex(window, sep)
	for idx >= 0 && idx < minPos {
		idx = strings.LastIndex(window[:idx], sep)
	}
	return idx
}

var sentenceTerminators = []string{". ", "! ", "? ", ".\n", "!\n", "?\n"}

func lastSentenceTerminator(window string, targetChars int, threshold float64) (int, int) {
	minPos := int(float64(targetChars) * threshold)
	bestIdx := -1
	bestLen := 0
	for _, term := range sentenceTerminators {
		idx := strings.LastIndex(window, term)
		for idx >= 0 && idx < minPos {
			idx = strings.LastIndex(window[:idx], term)
		}
		if idx > bestIdx {
			bestIdx = idx
			bestLen = len(term)
		}
	}
	return bestIdx, bestLen
}
