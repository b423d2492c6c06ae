package enricher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/drmoyassine/masteragent/internal/models"
)

func TestTruncate_LeavesShortTextUnchanged(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello"))
}

func TestTruncate_CutsAtExactLimit(t *testing.T) {
	text := strings.Repeat("x", truncateChars+500)
	out := truncate(text)
	assert.Len(t, out, truncateChars)
}

func TestFallbackSummary_TrimsWhitespaceAndLongTail(t *testing.T) {
	assert.Equal(t, "hello", fallbackSummary("  hello  "))
	long := strings.Repeat("a", 400)
	assert.Len(t, fallbackSummary(long), 280)
}

func TestExtractJSONArray_StripsSurroundingProse(t *testing.T) {
	in := `Sure, here you go:\n[{"type":"person","name":"Alice","role":"reviewer"}]\nLet me know if that helps.`
	out := extractJSONArray(in)
	assert.True(t, strings.HasPrefix(out, "["))
	assert.True(t, strings.HasSuffix(out, "]"))
}

func TestExtractJSONArray_ReturnsInputWhenNoBrackets(t *testing.T) {
	assert.Equal(t, "no brackets here", extractJSONArray("no brackets here"))
}

func TestToEntityRefs_SkipsBlankNamesAndCopiesFields(t *testing.T) {
	refs := ToEntityRefs([]ExtractedEntity{
		{Type: "person", Name: "Alice", Role: "reviewer"},
		{Type: "person", Name: ""},
		{Type: "project", Name: "Atlas"},
	})
	assert.Equal(t, []models.EntityRef{
		{Type: "person", ID: "Alice", Role: "reviewer"},
		{Type: "project", ID: "Atlas"},
	}, refs)
}
