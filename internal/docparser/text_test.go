package docparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseText_ValidUTF8PassesThroughUnchanged(t *testing.T) {
	out := parseText([]byte("hello, world"))
	assert.Equal(t, "hello, world", out.ExtractedText)
}

func TestParseText_DropsInvalidByteSequencesInsteadOfFailing(t *testing.T) {
	data := append([]byte("before"), 0xff, 0xfe)
	data = append(data, []byte("after")...)
	out := parseText(data)
	assert.Equal(t, "beforeafter", out.ExtractedText)
}

func TestParseText_EmptyInputYieldsEmptyResult(t *testing.T) {
	out := parseText(nil)
	assert.Equal(t, "", out.ExtractedText)
}
