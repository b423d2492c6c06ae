package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/drmoyassine/masteragent/internal/models"
)

// LessonRepository persists Lessons and their PII-stripped shared projections.
type LessonRepository struct {
	db *DB
}

func NewLessonRepository(db *DB) *LessonRepository {
	return &LessonRepository{db: db}
}

func (r *LessonRepository) Insert(ctx context.Context, l *models.Lesson) error {
	relatedJSON, err := json.Marshal(l.RelatedEntities)
	if err != nil {
		return fmt.Errorf("marshal related entities: %w", err)
	}
	sourcesJSON, err := json.Marshal(l.SourceMemoryIDs)
	if err != nil {
		return fmt.Errorf("marshal source memory ids: %w", err)
	}

	const query = `
		INSERT INTO memory_lessons (id, lesson_type, name, body, summary, status, is_shared, related_entities_json, source_memory_ids_json, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.Pool.Exec(ctx, query, l.ID, l.LessonType, l.Name, l.Body, l.Summary, l.Status,
		l.IsShared, relatedJSON, sourcesJSON, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert lesson: %w", err)
	}
	return nil
}

func (r *LessonRepository) GetByID(ctx context.Context, id string) (*models.Lesson, error) {
	const query = `
		SELECT id, lesson_type, name, body, summary, status, is_shared, related_entities_json, source_memory_ids_json, created_at, updated_at
		FROM memory_lessons WHERE id = $1
	`
	row := r.db.Pool.QueryRow(ctx, query, id)
	return scanLesson(row)
}

func scanLesson(row scanRow) (*models.Lesson, error) {
	var l models.Lesson
	var relatedJSON, sourcesJSON []byte
	if err := row.Scan(&l.ID, &l.LessonType, &l.Name, &l.Body, &l.Summary, &l.Status, &l.IsShared,
		&relatedJSON, &sourcesJSON, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return nil, fmt.Errorf("scan lesson: %w", err)
	}
	_ = json.Unmarshal(relatedJSON, &l.RelatedEntities)
	_ = json.Unmarshal(sourcesJSON, &l.SourceMemoryIDs)
	return &l, nil
}

// List returns lessons, optionally filtered by status and lesson type.
func (r *LessonRepository) List(ctx context.Context, status, lessonType string, limit, offset int) ([]*models.Lesson, error) {
	query := `
		SELECT id, lesson_type, name, body, summary, status, is_shared, related_entities_json, source_memory_ids_json, created_at, updated_at
		FROM memory_lessons WHERE 1=1
	`
	args := []any{}
	argN := 1
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argN)
		args = append(args, status)
		argN++
	}
	if lessonType != "" {
		query += fmt.Sprintf(" AND lesson_type = $%d", argN)
		args = append(args, lessonType)
		argN++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argN, argN+1)
	args = append(args, limit, offset)

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	defer rows.Close()

	var lessons []*models.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

// ListApproved supports the exporter, which groups the approved lessons
// per type.
func (r *LessonRepository) ListApproved(ctx context.Context) ([]*models.Lesson, error) {
	return r.List(ctx, string(models.LessonApproved), "", 10000, 0)
}

// ListCreatedSince supports the miner's duplicate-check.
func (r *LessonRepository) ListCreatedSince(ctx context.Context, since time.Time) ([]*models.Lesson, error) {
	const query = `
		SELECT id, lesson_type, name, body, summary, status, is_shared, related_entities_json, source_memory_ids_json, created_at, updated_at
		FROM memory_lessons WHERE created_at >= $1
	`
	rows, err := r.db.Pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("list recent lessons: %w", err)
	}
	defer rows.Close()

	var lessons []*models.Lesson
	for rows.Next() {
		l, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, l)
	}
	return lessons, rows.Err()
}

func (r *LessonRepository) Update(ctx context.Context, l *models.Lesson) error {
	relatedJSON, err := json.Marshal(l.RelatedEntities)
	if err != nil {
		return fmt.Errorf("marshal related entities: %w", err)
	}
	sourcesJSON, err := json.Marshal(l.SourceMemoryIDs)
	if err != nil {
		return fmt.Errorf("marshal source memory ids: %w", err)
	}

	const query = `
		UPDATE memory_lessons
		SET lesson_type = $2, name = $3, body = $4, summary = $5, status = $6, is_shared = $7,
		    related_entities_json = $8, source_memory_ids_json = $9, updated_at = now()
		WHERE id = $1
	`
	tag, err := r.db.Pool.Exec(ctx, query, l.ID, l.LessonType, l.Name, l.Body, l.Summary, l.Status,
		l.IsShared, relatedJSON, sourcesJSON)
	if err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lesson not found: %s", l.ID)
	}
	return nil
}

func (r *LessonRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM memory_lessons WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("lesson not found: %s", id)
	}
	return nil
}

// InsertShared persists the PII-stripped projection of an approved, shared lesson.
func (r *LessonRepository) InsertShared(ctx context.Context, s *models.SharedLesson) error {
	relatedJSON, err := json.Marshal(s.RelatedEntities)
	if err != nil {
		return fmt.Errorf("marshal related entities: %w", err)
	}
	const query = `
		INSERT INTO memory_lessons_shared (id, original_lesson_id, lesson_type, name, pii_stripped_body, summary, related_entities_json, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.Pool.Exec(ctx, query, s.ID, s.OriginalLessonID, s.LessonType, s.Name,
		s.PIIStrippedBody, s.Summary, relatedJSON, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert shared lesson: %w", err)
	}
	return nil
}
