package database

import (
	"context"
	"fmt"

	"github.com/drmoyassine/masteragent/internal/models"
)

// SettingsRepository reads and writes the memory_settings singleton row.
// Every call reads through to the database — no package-level cache — so
// that callers always observe the latest committed configuration.
type SettingsRepository struct {
	db *DB
}

func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context) (models.Settings, error) {
	const query = `
		SELECT chunk_size, chunk_overlap, auto_lesson_enabled, auto_lesson_threshold,
		       lesson_approval_required, pii_scrubbing_enabled, auto_share_scrubbed,
		       openclaw_sync_enabled, openclaw_sync_path, openclaw_sync_type, openclaw_sync_frequency,
		       rate_limit_enabled, rate_limit_per_minute, default_agent_access, updated_at
		FROM memory_settings WHERE id = 1
	`
	row := r.db.Pool.QueryRow(ctx, query)
	var s models.Settings
	if err := row.Scan(&s.ChunkSize, &s.ChunkOverlap, &s.AutoLessonEnabled, &s.AutoLessonThreshold,
		&s.LessonApprovalRequired, &s.PIIScrubbingEnabled, &s.AutoShareScrubbed,
		&s.OpenclawSyncEnabled, &s.OpenclawSyncPath, &s.OpenclawSyncType, &s.OpenclawSyncFrequency,
		&s.RateLimitEnabled, &s.RateLimitPerMinute, &s.DefaultAgentAccess, &s.UpdatedAt); err != nil {
		return models.Settings{}, fmt.Errorf("scan settings: %w", err)
	}
	return s, nil
}

func (r *SettingsRepository) Update(ctx context.Context, s models.Settings) error {
	const query = `
		UPDATE memory_settings SET
			chunk_size = $1, chunk_overlap = $2, auto_lesson_enabled = $3, auto_lesson_threshold = $4,
			lesson_approval_required = $5, pii_scrubbing_enabled = $6, auto_share_scrubbed = $7,
			openclaw_sync_enabled = $8, openclaw_sync_path = $9, openclaw_sync_type = $10,
			openclaw_sync_frequency = $11, rate_limit_enabled = $12, rate_limit_per_minute = $13,
			default_agent_access = $14, updated_at = now()
		WHERE id = 1
	`
	_, err := r.db.Pool.Exec(ctx, query, s.ChunkSize, s.ChunkOverlap, s.AutoLessonEnabled, s.AutoLessonThreshold,
		s.LessonApprovalRequired, s.PIIScrubbingEnabled, s.AutoShareScrubbed,
		s.OpenclawSyncEnabled, s.OpenclawSyncPath, s.OpenclawSyncType, s.OpenclawSyncFrequency,
		s.RateLimitEnabled, s.RateLimitPerMinute, s.DefaultAgentAccess)
	if err != nil {
		return fmt.Errorf("update settings: %w", err)
	}
	return nil
}
