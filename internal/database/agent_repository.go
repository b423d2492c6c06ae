package database

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/drmoyassine/masteragent/internal/models"
)

// AgentRepository manages credential records. Per Open Question #1,
// the stored form is always the SHA-256 digest of the raw key.
type AgentRepository struct {
	db *DB
}

func NewAgentRepository(db *DB) *AgentRepository {
	return &AgentRepository{db: db}
}

// HashAPIKey computes the digest stored in api_key_hash.
func HashAPIKey(rawKey string) string {
	sum := sha256.Sum256([]byte(rawKey))
	return hex.EncodeToString(sum[:])
}

func (r *AgentRepository) Insert(ctx context.Context, a *models.Agent) error {
	const query = `
		INSERT INTO memory_agents (id, name, api_key_hash, api_key_preview, access_level, is_active, created_at, last_used)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`
	_, err := r.db.Pool.Exec(ctx, query, a.ID, a.Name, a.APIKeyHash, a.APIKeyPreview, a.AccessLevel, a.IsActive, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert agent: %w", err)
	}
	return nil
}

// GetByAPIKeyDigest looks up an agent by the SHA-256 digest of its raw key
// and, on a hit, updates last_used.
func (r *AgentRepository) GetByAPIKeyDigest(ctx context.Context, digest string) (*models.Agent, error) {
	const query = `
		SELECT id, name, api_key_hash, api_key_preview, access_level, is_active, created_at, last_used
		FROM memory_agents WHERE api_key_hash = $1
	`
	row := r.db.Pool.QueryRow(ctx, query, digest)
	var a models.Agent
	var lastUsed *time.Time
	if err := row.Scan(&a.ID, &a.Name, &a.APIKeyHash, &a.APIKeyPreview, &a.AccessLevel, &a.IsActive, &a.CreatedAt, &lastUsed); err != nil {
		return nil, fmt.Errorf("scan agent: %w", err)
	}
	if lastUsed != nil {
		a.LastUsed = *lastUsed
	}

	if _, err := r.db.Pool.Exec(ctx, `UPDATE memory_agents SET last_used = now() WHERE id = $1`, a.ID); err != nil {
		if r.db.logger != nil {
			r.db.logger.WithError(err).WithField("agent_id", a.ID).Warn("failed to update agent last_used")
		}
	}
	return &a, nil
}

// TouchLastUsed stamps last_used without re-fetching the row, for the
// cache-hit authentication path where the full row is already known.
func (r *AgentRepository) TouchLastUsed(ctx context.Context, id string) error {
	if _, err := r.db.Pool.Exec(ctx, `UPDATE memory_agents SET last_used = now() WHERE id = $1`, id); err != nil {
		return fmt.Errorf("touch last_used: %w", err)
	}
	return nil
}

// SetActive flips the active flag and returns the row's api_key_hash so the
// caller can invalidate the auth cache entry keyed on that digest.
func (r *AgentRepository) SetActive(ctx context.Context, id string, active bool) (string, error) {
	const query = `UPDATE memory_agents SET is_active = $2 WHERE id = $1 RETURNING api_key_hash`
	row := r.db.Pool.QueryRow(ctx, query, id, active)
	var digest string
	if err := row.Scan(&digest); err != nil {
		return "", fmt.Errorf("agent not found: %s", id)
	}
	return digest, nil
}
