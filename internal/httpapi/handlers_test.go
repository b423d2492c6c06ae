package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/drmoyassine/masteragent/internal/gate"
	"github.com/drmoyassine/masteragent/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newJSONContext(method, body string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

func TestCallerID_PrefersAgentOverAdmin(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	agent := &models.Agent{ID: "agent-1"}
	assert.Equal(t, "agent-1", callerID(c, agent))
}

func TestCallerID_FallsBackToAdminIdentity(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Set("gate.admin", &gate.AdminIdentity{UserID: "admin"})
	assert.Equal(t, "admin", callerID(c, nil))
}

func TestCallerID_ReturnsEmptyWhenNeitherIsSet(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	assert.Equal(t, "", callerID(c, nil))
}

func TestHandleSearch_RejectsEmptyQueryBeforeCallingRetriever(t *testing.T) {
	s := &Server{}
	c, w := newJSONContext(http.MethodPost, `{"query":""}`)
	s.handleSearch(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleSearch_RejectsMalformedJSONBody(t *testing.T) {
	s := &Server{}
	c, w := newJSONContext(http.MethodPost, `not json`)
	s.handleSearch(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCreateLesson_RejectsMissingNameOrBody(t *testing.T) {
	s := &Server{}
	c, w := newJSONContext(http.MethodPost, `{"lesson_type":"tip","name":"","body":""}`)
	s.handleCreateLesson(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleIngest_RejectsMalformedEntitiesJSON(t *testing.T) {
	s := &Server{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/interactions", strings.NewReader("channel=slack&entities=not-json"))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	s.handleIngest(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleIngest_RejectsMalformedMetadataJSON(t *testing.T) {
	s := &Server{}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/interactions", strings.NewReader("channel=slack&metadata=not-json"))
	c.Request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	s.handleIngest(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCreateAgent_RejectsMissingName(t *testing.T) {
	s := &Server{}
	c, w := newJSONContext(http.MethodPost, `{"name":"","access_level":"private"}`)
	s.handleCreateAgent(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleHealth_AlwaysReportsOK(t *testing.T) {
	s := &Server{}
	c, w := newJSONContext(http.MethodGet, "")
	s.handleHealth(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
