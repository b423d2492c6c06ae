package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/drmoyassine/masteragent/internal/gate"
	"github.com/drmoyassine/masteragent/internal/lessons"
	"github.com/drmoyassine/masteragent/internal/models"
)

type createLessonRequest struct {
	LessonType      string              `json:"lesson_type"`
	Name            string              `json:"name"`
	Body            string              `json:"body"`
	Summary         string              `json:"summary"`
	RelatedEntities []models.EntityRef  `json:"related_entities"`
	SourceMemoryIDs []string            `json:"source_memory_ids"`
}

func (s *Server) handleCreateLesson(c *gin.Context) {
	agent := gate.AgentFromContext(c)

	var req createLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		gate.WriteError(c, models.NewInputError("body", "invalid lesson request"))
		return
	}
	if req.Name == "" || req.Body == "" {
		gate.WriteError(c, models.NewInputError("name/body", "name and body are required"))
		return
	}

	agentID := callerID(c, agent)
	l, err := s.lessons.Create(c.Request.Context(), agentID, lessons.CreateInput{
		LessonType: req.LessonType, Name: req.Name, Body: req.Body, Summary: req.Summary,
		RelatedEntities: req.RelatedEntities, SourceMemoryIDs: req.SourceMemoryIDs,
	})
	if err != nil {
		gate.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (s *Server) handleGetLesson(c *gin.Context) {
	l, err := s.lessons.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		gate.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

func (s *Server) handleListLessons(c *gin.Context) {
	status := c.Query("status")
	lessonType := c.Query("lesson_type")

	limit := 50
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	offset := 0
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}

	ls, err := s.lessons.List(c.Request.Context(), status, lessonType, limit, offset)
	if err != nil {
		gate.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": ls, "total": len(ls)})
}

func (s *Server) handleUpdateLesson(c *gin.Context) {
	agent := gate.AgentFromContext(c)

	existing, err := s.lessons.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		gate.WriteError(c, err)
		return
	}

	var patch struct {
		Name            *string             `json:"name"`
		Body            *string             `json:"body"`
		Summary         *string             `json:"summary"`
		Status          *string             `json:"status"`
		RelatedEntities *[]models.EntityRef `json:"related_entities"`
	}
	if err := c.ShouldBindJSON(&patch); err != nil {
		gate.WriteError(c, models.NewInputError("body", "invalid lesson patch"))
		return
	}
	if patch.Name != nil {
		existing.Name = *patch.Name
	}
	if patch.Body != nil {
		existing.Body = *patch.Body
	}
	if patch.Summary != nil {
		existing.Summary = *patch.Summary
	}
	if patch.Status != nil {
		existing.Status = models.LessonStatus(*patch.Status)
	}
	if patch.RelatedEntities != nil {
		existing.RelatedEntities = *patch.RelatedEntities
	}

	if err := s.lessons.Update(c.Request.Context(), callerID(c, agent), existing); err != nil {
		gate.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, existing)
}

func (s *Server) handleDeleteLesson(c *gin.Context) {
	agent := gate.AgentFromContext(c)
	if err := s.lessons.Delete(c.Request.Context(), callerID(c, agent), c.Param("id")); err != nil {
		gate.WriteError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// callerID resolves to the agent id when present, else the admin user id,
// since lesson endpoints accept either credential.
func callerID(c *gin.Context, agent *models.Agent) string {
	if agent != nil {
		return agent.ID
	}
	if admin := gate.AdminFromContext(c); admin != nil {
		return admin.UserID
	}
	return ""
}
