package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/drmoyassine/masteragent/internal/gate"
	"github.com/drmoyassine/masteragent/internal/models"
)

func (s *Server) handleDaily(c *gin.Context) {
	day := c.Param("day")
	mems, err := s.memories.ListByDay(c.Request.Context(), day)
	if err != nil {
		gate.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"day": day, "results": mems, "total": len(mems)})
}

func (s *Server) handleGetMemory(c *gin.Context) {
	mem, err := s.memories.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		gate.WriteError(c, models.NewNotFoundError("memory not found"))
		return
	}
	c.JSON(http.StatusOK, mem)
}
