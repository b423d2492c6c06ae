package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunk_ShortTextReturnsSingleChunk(t *testing.T) {
	out := Chunk("hello world", 400, 80)
	require.Len(t, out, 1)
	assert.Equal(t, "hello world", out[0])
}

func TestChunk_EmptyInputReturnsNil(t *testing.T) {
	assert.Nil(t, Chunk("", 400, 80))
	assert.Nil(t, Chunk("   \n\n  ", 400, 80))
}

func TestChunk_PrefersParagraphBreak(t *testing.T) {
	para1 := strings.Repeat("a", 300)
	para2 := strings.Repeat("b", 300)
	text := para1 + "\n\n" + para2

	out := Chunk(text, 100, 0) // target 400 chars
	require.NotEmpty(t, out)
	// The first chunk should end exactly at the paragraph boundary since it
	// falls within the backward-search window and clears the 50% threshold.
	assert.True(t, strings.HasSuffix(out[0], "\n\n") || strings.HasSuffix(out[0], para1))
}

func TestChunk_IsDeterministic(t *testing.T) {
	text := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 200)
	a := Chunk(text, 100, 20)
	b := Chunk(text, 100, 20)
	assert.Equal(t, a, b)
}

func TestChunk_DropsWhitespaceOnlyPieces(t *testing.T) {
	text := strings.Repeat("x", 500) + "\n\n" + strings.Repeat(" ", 10)
	out := Chunk(text, 100, 0)
	for _, c := range out {
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestChunk_OverlapProducesRepeatedTail(t *testing.T) {
	text := strings.Repeat("word ", 400)
	out := Chunk(text, 50, 20)
	require.True(t, len(out) >= 2)
	// The second window starts overlap (20 tokens = 80 chars) before the
	// first chunk's break point, so chunk[0]'s last 80 chars open chunk[1].
	overlapChars := 20 * 4
	assert.True(t, strings.HasPrefix(out[1], out[0][len(out[0])-overlapChars:]))
}
