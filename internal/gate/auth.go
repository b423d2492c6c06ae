// Package gate authenticates every inbound request before any side effects
// occur, enforces per-agent rate limits, and writes the append-only audit
// log.
package gate

import (
	"context"
	"time"

	"github.com/drmoyassine/masteragent/internal/cache"
	"github.com/drmoyassine/masteragent/internal/database"
	"github.com/drmoyassine/masteragent/internal/models"
)

// AgentAuthenticator resolves an API key to an Agent record.
type AgentAuthenticator struct {
	agents *database.AgentRepository
	cache  *cache.Client
}

func NewAgentAuthenticator(agents *database.AgentRepository, c *cache.Client) *AgentAuthenticator {
	return &AgentAuthenticator{agents: agents, cache: c}
}

// cachedAgent is the subset of models.Agent that is safe/useful to cache.
type cachedAgent struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AccessLevel string `json:"access_level"`
	IsActive    bool   `json:"is_active"`
}

// Authenticate resolves a raw API key. On a digest miss it returns
// models.KindAuth ("bad credential"). A deactivated agent also fails with
// KindAuth even though the digest matched.
func (a *AgentAuthenticator) Authenticate(ctx context.Context, rawKey string) (*models.Agent, error) {
	if rawKey == "" {
		return nil, models.NewAuthError("missing credential")
	}
	digest := database.HashAPIKey(rawKey)

	cacheKey := "agent:apikey:" + digest
	var ca cachedAgent
	if a.cache != nil && a.cache.GetJSON(ctx, cacheKey, &ca) == nil {
		if !ca.IsActive {
			return nil, models.NewAuthError("bad credential")
		}
		_ = a.agents.TouchLastUsed(ctx, ca.ID)
		return &models.Agent{ID: ca.ID, Name: ca.Name, AccessLevel: ca.AccessLevel, IsActive: ca.IsActive}, nil
	}

	agent, err := a.agents.GetByAPIKeyDigest(ctx, digest)
	if err != nil {
		return nil, models.NewAuthError("bad credential")
	}
	if a.cache != nil {
		_ = a.cache.SetJSON(ctx, cacheKey, cachedAgent{
			ID: agent.ID, Name: agent.Name, AccessLevel: agent.AccessLevel, IsActive: agent.IsActive,
		}, 5*time.Minute)
	}
	if !agent.IsActive {
		return nil, models.NewAuthError("bad credential")
	}
	return agent, nil
}

// SetActive flips an agent's active flag and evicts its cached credential so
// a deactivated key stops authenticating immediately rather than surviving
// until the cache entry's TTL expires.
func (a *AgentAuthenticator) SetActive(ctx context.Context, id string, active bool) error {
	digest, err := a.agents.SetActive(ctx, id, active)
	if err != nil {
		return err
	}
	if a.cache != nil {
		_ = a.cache.Delete(ctx, "agent:apikey:"+digest)
	}
	return nil
}

// AdminIdentity is the result of verifying an admin bearer token against the
// external identity collaborator.
type AdminIdentity struct {
	UserID string
	Name   string
}

// IdentityVerifier is the out-of-scope collaborator that verifies admin
// bearer tokens.
type IdentityVerifier interface {
	VerifyToken(ctx context.Context, token string) (*AdminIdentity, error)
}

// StaticAdminVerifier is a minimal IdentityVerifier for deployments without
// a separate identity service: it matches a single configured admin token.
type StaticAdminVerifier struct {
	Token string
}

func (v *StaticAdminVerifier) VerifyToken(_ context.Context, token string) (*AdminIdentity, error) {
	if v.Token == "" || token != v.Token {
		return nil, models.NewAuthError("unknown user")
	}
	return &AdminIdentity{UserID: "admin", Name: "admin"}, nil
}
