package gate

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/drmoyassine/masteragent/internal/models"
)

const (
	agentContextKey = "gate.agent"
	adminContextKey = "gate.admin"
)

// Gate bundles the three cross-cutting concerns every request passes
// through: authentication, rate limiting, and audit logging.
type Gate struct {
	auth    *AgentAuthenticator
	limiter *RateLimiter
	audit   *Auditor
	admin   IdentityVerifier
}

func NewGate(auth *AgentAuthenticator, limiter *RateLimiter, audit *Auditor, admin IdentityVerifier) *Gate {
	return &Gate{auth: auth, limiter: limiter, audit: audit, admin: admin}
}

// SetAgentActive flips an agent's active flag and evicts its cached
// credential, so the gate's own auth cache never outlives an admin's
// deactivation decision.
func (g *Gate) SetAgentActive(ctx context.Context, id string, active bool) error {
	return g.auth.SetActive(ctx, id, active)
}

// RequireAgent authenticates the X-Agent-Key header and, if rate limiting is
// enabled, enforces the sliding-window limit before letting the request
// reach its handler.
func (g *Gate) RequireAgent() gin.HandlerFunc {
	return func(c *gin.Context) {
		agent, err := g.auth.Authenticate(c.Request.Context(), c.GetHeader("X-Agent-Key"))
		if err != nil {
			WriteError(c, err)
			c.Abort()
			return
		}

		if err := g.limiter.Allow(agent.ID, time.Now()); err != nil {
			WriteError(c, err)
			c.Abort()
			return
		}

		c.Set(agentContextKey, agent)
		c.Next()
	}
}

// RequireAdmin verifies the Authorization bearer token against the
// out-of-scope identity collaborator.
func (g *Gate) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		identity, err := g.admin.VerifyToken(c.Request.Context(), token)
		if err != nil {
			WriteError(c, models.NewAuthError("unauthorized"))
			c.Abort()
			return
		}
		c.Set(adminContextKey, identity)
		c.Next()
	}
}

// RequireAgentOrAdmin accepts either an agent API key or an admin bearer
// token, trying the agent credential first. Rate limiting only applies to
// the agent path; admin callers are not subject to it.
func (g *Gate) RequireAgentOrAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rawKey := c.GetHeader("X-Agent-Key"); rawKey != "" {
			agent, err := g.auth.Authenticate(c.Request.Context(), rawKey)
			if err != nil {
				WriteError(c, err)
				c.Abort()
				return
			}
			if err := g.limiter.Allow(agent.ID, time.Now()); err != nil {
				WriteError(c, err)
				c.Abort()
				return
			}
			c.Set(agentContextKey, agent)
			c.Next()
			return
		}

		token := bearerToken(c.GetHeader("Authorization"))
		identity, err := g.admin.VerifyToken(c.Request.Context(), token)
		if err != nil {
			WriteError(c, models.NewAuthError("unauthorized"))
			c.Abort()
			return
		}
		c.Set(adminContextKey, identity)
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && header[:len(prefix)] == prefix {
		return header[len(prefix):]
	}
	return ""
}

// AgentFromContext retrieves the authenticated agent set by RequireAgent.
func AgentFromContext(c *gin.Context) *models.Agent {
	v, ok := c.Get(agentContextKey)
	if !ok {
		return nil
	}
	agent, _ := v.(*models.Agent)
	return agent
}

// AdminFromContext retrieves the verified admin identity set by RequireAdmin.
func AdminFromContext(c *gin.Context) *AdminIdentity {
	v, ok := c.Get(adminContextKey)
	if !ok {
		return nil
	}
	id, _ := v.(*AdminIdentity)
	return id
}

// WriteError maps a models.Error Kind to its HTTP status and
// writes a JSON error body. Non-models errors are treated as KindUpstream.
func WriteError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch models.KindOf(err) {
	case models.KindAuth:
		status = http.StatusUnauthorized
	case models.KindRate:
		status = http.StatusTooManyRequests
	case models.KindInput:
		status = http.StatusBadRequest
	case models.KindNotFound:
		status = http.StatusNotFound
	case models.KindUpstream:
		status = http.StatusBadGateway
	case models.KindPersistence:
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// NewAuditRecord builds an AuditRecord stub with a fresh ID and the current
// time filled in; callers set Action/ResourceType/ResourceID/Details.
func NewAuditRecord(agentID, action, resourceType, resourceID string, details models.Metadata) *models.AuditRecord {
	return &models.AuditRecord{
		ID:           uuid.NewString(),
		AgentID:      agentID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Details:      details,
		Timestamp:    time.Now(),
	}
}
