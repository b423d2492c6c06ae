package background

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drmoyassine/masteragent/internal/models"
)

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "onboarding_tips", sanitizeFilename("Onboarding Tips"))
	assert.Equal(t, "untyped", sanitizeFilename("!!!"))
	assert.Equal(t, "a-b_c", sanitizeFilename("A-B_C"))
}

func TestWriteDayFile_IsIdempotentAndOverwrites(t *testing.T) {
	dir := t.TempDir()
	e := &Exporter{root: dir}

	mems := []*models.Memory{
		{Timestamp: time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC), Channel: "chat", SummaryText: "first run"},
	}
	require.NoError(t, e.writeDayFile("2026-07-01", mems))

	mems2 := []*models.Memory{
		{Timestamp: time.Date(2026, 7, 1, 10, 0, 0, 0, time.UTC), Channel: "chat", SummaryText: "second run"},
	}
	require.NoError(t, e.writeDayFile("2026-07-01", mems2))

	data, err := os.ReadFile(filepath.Join(dir, "2026-07-01.md"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "second run")
	assert.NotContains(t, content, "first run")
}

func TestWriteLessonTypeFile_IncludesEveryLessonOfThatType(t *testing.T) {
	dir := t.TempDir()
	e := &Exporter{root: dir}

	ls := []*models.Lesson{
		{Name: "Lesson A", Body: "body a"},
		{Name: "Lesson B", Body: "body b"},
	}
	require.NoError(t, e.writeLessonTypeFile("onboarding.md", "onboarding", ls))

	data, err := os.ReadFile(filepath.Join(dir, "onboarding.md"))
	require.NoError(t, err)
	content := string(data)
	assert.Contains(t, content, "Lesson A")
	assert.Contains(t, content, "Lesson B")
	assert.Contains(t, content, "body a")
	assert.Contains(t, content, "body b")
}

func TestWriteIndex_ListsDaysNewestFirstAndLessonFiles(t *testing.T) {
	dir := t.TempDir()
	e := &Exporter{root: dir}

	require.NoError(t, e.writeIndex([]string{"2026-06-30", "2026-07-01", "2026-06-29"}, []string{"onboarding.md"}))

	data, err := os.ReadFile(filepath.Join(dir, "index.md"))
	require.NoError(t, err)
	content := string(data)

	idxJuly1 := indexOf(content, "2026-07-01")
	idxJune30 := indexOf(content, "2026-06-30")
	idxJune29 := indexOf(content, "2026-06-29")
	require.True(t, idxJuly1 >= 0 && idxJune30 >= 0 && idxJune29 >= 0)
	assert.True(t, idxJuly1 < idxJune30)
	assert.True(t, idxJune30 < idxJune29)
	assert.Contains(t, content, "onboarding")
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
