package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/drmoyassine/masteragent/internal/database"
	"github.com/drmoyassine/masteragent/internal/gate"
	"github.com/drmoyassine/masteragent/internal/models"
)

func (s *Server) handleGetSettings(c *gin.Context) {
	settings, err := s.settings.Get(c.Request.Context())
	if err != nil {
		gate.WriteError(c, models.NewPersistenceError("load settings", err))
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (s *Server) handleUpdateSettings(c *gin.Context) {
	var patch models.Settings
	existing, err := s.settings.Get(c.Request.Context())
	if err != nil {
		gate.WriteError(c, models.NewPersistenceError("load settings", err))
		return
	}
	patch = existing
	if err := c.ShouldBindJSON(&patch); err != nil {
		gate.WriteError(c, models.NewInputError("body", "invalid settings patch"))
		return
	}
	if err := s.settings.Update(c.Request.Context(), patch); err != nil {
		gate.WriteError(c, models.NewPersistenceError("update settings", err))
		return
	}
	c.JSON(http.StatusOK, patch)
}

func (s *Server) handleListLessonTypes(c *gin.Context) {
	types, err := s.configs.ListLessonTypes(c.Request.Context())
	if err != nil {
		gate.WriteError(c, models.NewPersistenceError("list lesson types", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": types})
}

func (s *Server) handleCreateLessonType(c *gin.Context) {
	var lt database.LessonType
	if err := c.ShouldBindJSON(&lt); err != nil {
		gate.WriteError(c, models.NewInputError("body", "invalid lesson type"))
		return
	}
	lt.ID = uuid.NewString()
	if err := s.configs.CreateLessonType(c.Request.Context(), &lt); err != nil {
		gate.WriteError(c, models.NewPersistenceError("create lesson type", err))
		return
	}
	c.JSON(http.StatusCreated, lt)
}

func (s *Server) handleListChannelTypes(c *gin.Context) {
	types, err := s.configs.ListChannelTypes(c.Request.Context())
	if err != nil {
		gate.WriteError(c, models.NewPersistenceError("list channel types", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": types})
}

func (s *Server) handleListEntityTypes(c *gin.Context) {
	types, err := s.configs.ListEntityTypes(c.Request.Context())
	if err != nil {
		gate.WriteError(c, models.NewPersistenceError("list entity types", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": types})
}

func (s *Server) handleGetPrompt(c *gin.Context) {
	prompt, err := s.configs.GetActivePrompt(c.Request.Context(), c.Param("type"))
	if err != nil {
		gate.WriteError(c, models.NewNotFoundError("no active prompt for that type"))
		return
	}
	c.JSON(http.StatusOK, prompt)
}

func (s *Server) handleUpsertPrompt(c *gin.Context) {
	var p database.SystemPrompt
	if err := c.ShouldBindJSON(&p); err != nil {
		gate.WriteError(c, models.NewInputError("body", "invalid prompt"))
		return
	}
	p.PromptType = c.Param("type")
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if err := s.configs.UpsertPrompt(c.Request.Context(), &p); err != nil {
		gate.WriteError(c, models.NewPersistenceError("upsert prompt", err))
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleCreateAgent(c *gin.Context) {
	var req struct {
		Name        string `json:"name"`
		AccessLevel string `json:"access_level"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		gate.WriteError(c, models.NewInputError("body", "invalid agent request"))
		return
	}
	if req.Name == "" {
		gate.WriteError(c, models.NewInputError("name", "name is required"))
		return
	}

	rawKey := uuid.NewString()
	agent := &models.Agent{
		ID:            uuid.NewString(),
		Name:          req.Name,
		APIKeyHash:    database.HashAPIKey(rawKey),
		APIKeyPreview: rawKey[:8] + "...",
		AccessLevel:   req.AccessLevel,
		IsActive:      true,
		CreatedAt:     time.Now().UTC(),
	}
	if agent.AccessLevel == "" {
		agent.AccessLevel = "private"
	}

	if err := s.agents.Insert(c.Request.Context(), agent); err != nil {
		gate.WriteError(c, models.NewPersistenceError("create agent", err))
		return
	}

	// The raw key is returned exactly once; what is persisted is its digest
	// plus an 8-character preview prefix.
	c.JSON(http.StatusCreated, gin.H{
		"id": agent.ID, "name": agent.Name, "access_level": agent.AccessLevel, "api_key": rawKey,
	})
}

func (s *Server) handleSetAgentActive(c *gin.Context) {
	var req struct {
		Active bool `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		gate.WriteError(c, models.NewInputError("body", "invalid active flag"))
		return
	}
	if err := s.gate.SetAgentActive(c.Request.Context(), c.Param("id"), req.Active); err != nil {
		gate.WriteError(c, models.NewNotFoundError("agent not found"))
		return
	}
	c.Status(http.StatusNoContent)
}
