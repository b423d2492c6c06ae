package retriever

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/drmoyassine/masteragent/internal/vectorstore"
)

func TestBuildMatches_OmitsFiltersWhenQueryIsUnconstrained(t *testing.T) {
	matches, ranges := buildMatches(SearchQuery{})
	assert.Empty(t, matches)
	assert.Empty(t, ranges)
}

func TestBuildMatches_AddsChannelEqualityMatch(t *testing.T) {
	matches, _ := buildMatches(SearchQuery{Channel: "slack"})
	assert.Equal(t, []vectorstore.MatchFilter{{Key: "channel", Value: "slack"}}, matches)
}

func TestBuildMatches_AddsEntityTypeMembershipMatch(t *testing.T) {
	matches, _ := buildMatches(SearchQuery{EntityType: "person"})
	assert.Equal(t, []vectorstore.MatchFilter{{Key: "entity_types", Value: "person"}}, matches)
}

func TestBuildMatches_AddsSinceUntilRangeOnTimestampUnix(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	_, ranges := buildMatches(SearchQuery{Since: &since, Until: &until})
	assert.Equal(t, []vectorstore.RangeFilter{{Key: "timestamp_unix", Since: &since, Until: &until}}, ranges)
}

func TestBuildMatches_CombinesChannelEntityTypeAndRange(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	matches, ranges := buildMatches(SearchQuery{Channel: "slack", EntityType: "project", Since: &since})
	assert.Equal(t, []vectorstore.MatchFilter{
		{Key: "channel", Value: "slack"},
		{Key: "entity_types", Value: "project"},
	}, matches)
	assert.Equal(t, []vectorstore.RangeFilter{{Key: "timestamp_unix", Since: &since}}, ranges)
}

func TestTaggedHits_StampsKindOntoEveryPayload(t *testing.T) {
	hits := []vectorstore.SearchHit{
		{ID: "a", Payload: map[string]any{"channel": "slack"}},
		{ID: "b", Payload: nil},
	}
	out := taggedHits(hits, ResultLesson)
	assert.Equal(t, "lesson", out[0].Payload["_kind"])
	assert.Equal(t, "lesson", out[1].Payload["_kind"])
}

func TestToSearchResults_ParsesTimestampAndDefaultsKind(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	hits := []vectorstore.SearchHit{
		{ID: "m1", Score: 0.9, Payload: map[string]any{"timestamp": ts.Format(time.RFC3339), "_kind": "lesson", "text": "hello world"}},
		{ID: "m2", Score: 0.5, Payload: map[string]any{}},
	}
	out := toSearchResults(hits)
	assert.Equal(t, ResultLesson, out[0].Kind)
	assert.True(t, ts.Equal(out[0].Timestamp))
	assert.Equal(t, "hello world", out[0].Snippet)
	assert.Equal(t, ResultInteraction, out[1].Kind)
	assert.True(t, out[1].Timestamp.IsZero())
	assert.Equal(t, "", out[1].Snippet)
}

func TestToSearchResults_MalformedTimestampLeavesZeroValue(t *testing.T) {
	hits := []vectorstore.SearchHit{{ID: "m1", Payload: map[string]any{"timestamp": "not-a-time"}}}
	out := toSearchResults(hits)
	assert.True(t, out[0].Timestamp.IsZero())
}

func TestSnippet_TruncatesLongTextAndLeavesShortTextAlone(t *testing.T) {
	assert.Equal(t, "short", snippet("short"))
	long := strings.Repeat("a", 300)
	assert.Len(t, snippet(long), 200)
}
