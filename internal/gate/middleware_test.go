package gate

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/drmoyassine/masteragent/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestBearerToken_ExtractsTokenFromWellFormedHeader(t *testing.T) {
	assert.Equal(t, "abc123", bearerToken("Bearer abc123"))
}

func TestBearerToken_ReturnsEmptyForMissingOrMalformedHeader(t *testing.T) {
	assert.Equal(t, "", bearerToken(""))
	assert.Equal(t, "", bearerToken("abc123"))
	assert.Equal(t, "", bearerToken("Basic abc123"))
}

func TestWriteError_MapsEachKindToItsHTTPStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{models.NewAuthError("x"), http.StatusUnauthorized},
		{models.NewRateError("x"), http.StatusTooManyRequests},
		{models.NewInputError("field", "x"), http.StatusBadRequest},
		{models.NewNotFoundError("x"), http.StatusNotFound},
		{models.NewUpstreamError("x", nil), http.StatusBadGateway},
		{models.NewPersistenceError("x", nil), http.StatusInternalServerError},
		{errors.New("opaque"), http.StatusBadGateway},
	}

	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		WriteError(c, tc.err)
		assert.Equal(t, tc.status, w.Code)
	}
}

func TestAgentFromContext_ReturnsNilWhenNeverSet(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	assert.Nil(t, AgentFromContext(c))
	assert.Nil(t, AdminFromContext(c))
}

func TestAgentFromContext_ReturnsWhatRequireAgentSet(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	agent := &models.Agent{ID: "agent-1"}
	c.Set(agentContextKey, agent)
	assert.Same(t, agent, AgentFromContext(c))
}

func TestNewAuditRecord_FillsIDAndTimestamp(t *testing.T) {
	rec := NewAuditRecord("agent-1", "create_lesson", "lesson", "lesson-1", models.Metadata{"k": "v"})
	assert.Equal(t, "agent-1", rec.AgentID)
	assert.Equal(t, "create_lesson", rec.Action)
	assert.NotEmpty(t, rec.ID)
	assert.False(t, rec.Timestamp.IsZero())
}
