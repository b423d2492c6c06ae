package background

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/drmoyassine/masteragent/internal/database"
	"github.com/drmoyassine/masteragent/internal/models"
)

const exportWindowDays = 30

// Exporter writes a read-only markdown snapshot of recent interactions and
// approved lessons to disk, idempotently overwriting on each run.
type Exporter struct {
	memories *database.MemoryRepository
	lessons  *database.LessonRepository
	root     string
}

func NewExporter(memories *database.MemoryRepository, lessons *database.LessonRepository, root string) *Exporter {
	return &Exporter{memories: memories, lessons: lessons, root: root}
}

// Export regenerates the daily interaction files, the per-lesson-type
// files, and the top-level index.
func (e *Exporter) Export(ctx context.Context) error {
	if err := os.MkdirAll(e.root, 0o755); err != nil {
		return fmt.Errorf("create snapshot root: %w", err)
	}

	days, err := e.exportDays(ctx)
	if err != nil {
		return err
	}

	lessonFiles, err := e.exportLessonTypes(ctx)
	if err != nil {
		return err
	}

	return e.writeIndex(days, lessonFiles)
}

func (e *Exporter) exportDays(ctx context.Context) ([]string, error) {
	var written []string
	now := time.Now().UTC()
	for i := 0; i < exportWindowDays; i++ {
		day := now.AddDate(0, 0, -i).Format("2006-01-02")
		mems, err := e.memories.ListByDay(ctx, day)
		if err != nil {
			return nil, fmt.Errorf("list memories for %s: %w", day, err)
		}
		if len(mems) == 0 {
			continue
		}
		if err := e.writeDayFile(day, mems); err != nil {
			return nil, err
		}
		written = append(written, day)
	}
	return written, nil
}

func (e *Exporter) writeDayFile(day string, mems []*models.Memory) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", day)
	for _, m := range mems {
		fmt.Fprintf(&b, "## %s (%s)\n\n", m.Timestamp.Format(time.RFC3339), m.Channel)
		if m.SummaryText != "" {
			fmt.Fprintf(&b, "%s\n\n", m.SummaryText)
		}
		if len(m.Entities) > 0 {
			refs := make([]string, 0, len(m.Entities))
			for _, e := range m.Entities {
				refs = append(refs, e.Type+":"+e.ID)
			}
			fmt.Fprintf(&b, "Entities: %s\n\n", strings.Join(refs, ", "))
		}
	}
	return os.WriteFile(filepath.Join(e.root, day+".md"), []byte(b.String()), 0o644)
}

func (e *Exporter) exportLessonTypes(ctx context.Context) ([]string, error) {
	approved, err := e.lessons.ListApproved(ctx)
	if err != nil {
		return nil, fmt.Errorf("list approved lessons: %w", err)
	}

	byType := make(map[string][]*models.Lesson)
	for _, l := range approved {
		byType[l.LessonType] = append(byType[l.LessonType], l)
	}

	var files []string
	for lessonType, ls := range byType {
		filename := sanitizeFilename(lessonType) + ".md"
		if err := e.writeLessonTypeFile(filename, lessonType, ls); err != nil {
			return nil, err
		}
		files = append(files, filename)
	}
	sort.Strings(files)
	return files, nil
}

func (e *Exporter) writeLessonTypeFile(filename, lessonType string, ls []*models.Lesson) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", lessonType)
	for _, l := range ls {
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", l.Name, l.Body)
	}
	return os.WriteFile(filepath.Join(e.root, filename), []byte(b.String()), 0o644)
}

func (e *Exporter) writeIndex(days, lessonFiles []string) error {
	sort.Sort(sort.Reverse(sort.StringSlice(days)))
	var b strings.Builder
	b.WriteString("# Memory Snapshot Index\n\n")
	b.WriteString("## Daily logs\n\n")
	for _, d := range days {
		fmt.Fprintf(&b, "- [%s](%s.md)\n", d, d)
	}
	b.WriteString("\n## Lessons by type\n\n")
	for _, f := range lessonFiles {
		fmt.Fprintf(&b, "- [%s](%s)\n", strings.TrimSuffix(f, ".md"), f)
	}
	return os.WriteFile(filepath.Join(e.root, "index.md"), []byte(b.String()), 0o644)
}

func sanitizeFilename(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	var b strings.Builder
	for _, r := range s {
		if r == '_' || r == '-' || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "untyped"
	}
	return b.String()
}
