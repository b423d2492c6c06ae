package vectorstore

import (
	"testing"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
)

func TestPointUUID_IsDeterministicForTheSameExternalID(t *testing.T) {
	a := pointUUID("memory-123:0")
	b := pointUUID("memory-123:0")
	assert.Equal(t, a, b)
}

func TestPointUUID_DiffersAcrossExternalIDs(t *testing.T) {
	assert.NotEqual(t, pointUUID("memory-123:0"), pointUUID("memory-123:1"))
}

func TestCompileFilter_NoMatchesOrRangesReturnsNilFilter(t *testing.T) {
	assert.Nil(t, compileFilter(nil, nil))
}

func TestCompileFilter_BuildsOneConditionPerMatch(t *testing.T) {
	f := compileFilter([]MatchFilter{{Key: "channel", Value: "slack"}}, nil)
	assert.NotNil(t, f)
	assert.Len(t, f.Must, 1)
}

func TestCompileFilter_EmptyRangeBoundsAreSkipped(t *testing.T) {
	assert.Nil(t, compileFilter(nil, []RangeFilter{{Key: "timestamp_unix"}}))
}

func TestCompileFilter_BuildsRangeConditionFromSinceAndUntil(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	f := compileFilter(nil, []RangeFilter{{Key: "timestamp_unix", Since: &since, Until: &until}})
	assert.NotNil(t, f)
	assert.Len(t, f.Must, 1)
}

func TestCompileFilter_CombinesMatchesAndRanges(t *testing.T) {
	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := compileFilter(
		[]MatchFilter{{Key: "channel", Value: "slack"}},
		[]RangeFilter{{Key: "timestamp_unix", Since: &since}},
	)
	assert.NotNil(t, f)
	assert.Len(t, f.Must, 2)
}

func TestValueToAny_UnwrapsEachScalarKind(t *testing.T) {
	assert.Equal(t, "hello", valueToAny(&qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: "hello"}}))
	assert.Equal(t, int64(42), valueToAny(&qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: 42}}))
	assert.Equal(t, true, valueToAny(&qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: true}}))
}

func TestValueToAny_UnwrapsListValueElementByElement(t *testing.T) {
	v := &qdrant.Value{Kind: &qdrant.Value_ListValue{ListValue: &qdrant.ListValue{
		Values: []*qdrant.Value{
			{Kind: &qdrant.Value_StringValue{StringValue: "person"}},
			{Kind: &qdrant.Value_StringValue{StringValue: "project"}},
		},
	}}}
	assert.Equal(t, []any{"person", "project"}, valueToAny(v))
}
