package docparser

import "unicode/utf8"

// parseText decodes raw bytes as UTF-8. Invalid byte sequences are dropped
// rather than aborting the parse: the result is always usable text.
func parseText(data []byte) Result {
	if utf8.Valid(data) {
		return Result{ExtractedText: string(data)}
	}

	var b []byte
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r != utf8.RuneError {
			b = append(b, data[:size]...)
		}
		data = data[size:]
	}
	return Result{ExtractedText: string(b)}
}
