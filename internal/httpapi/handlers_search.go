package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/drmoyassine/masteragent/internal/gate"
	"github.com/drmoyassine/masteragent/internal/models"
	"github.com/drmoyassine/masteragent/internal/retriever"
)

type searchFilters struct {
	EntityType string     `json:"entity_type"`
	Channel    string      `json:"channel"`
	Since      *time.Time `json:"since"`
	Until      *time.Time `json:"until"`
}

type searchRequest struct {
	Query      string         `json:"query"`
	Filters    *searchFilters `json:"filters"`
	Types      string         `json:"types"`
	SharedOnly bool           `json:"shared_only"`
	Limit      int            `json:"limit"`
	Offset     int            `json:"offset"`
}

type searchResponse struct {
	Results []retriever.SearchResult `json:"results"`
	Total   int                      `json:"total"`
	Query   string                   `json:"query"`
}

func (s *Server) handleSearch(c *gin.Context) {
	agent := gate.AgentFromContext(c)
	admin := gate.AdminFromContext(c)

	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		gate.WriteError(c, models.NewInputError("body", "invalid search request"))
		return
	}
	if req.Query == "" {
		gate.WriteError(c, models.NewInputError("query", "query is required"))
		return
	}

	q := retriever.SearchQuery{
		Query:      req.Query,
		Types:      retriever.Types(req.Types),
		SharedOnly: req.SharedOnly,
		Limit:      req.Limit,
		IsAdmin:    admin != nil,
	}
	if req.Filters != nil {
		q.EntityType = req.Filters.EntityType
		q.Channel = req.Filters.Channel
		q.Since = req.Filters.Since
		q.Until = req.Filters.Until
	}

	agentID := ""
	if agent != nil {
		agentID = agent.ID
	}

	results, err := s.retriever.Search(c.Request.Context(), agentID, q)
	if err != nil {
		gate.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, searchResponse{Results: results, Total: len(results), Query: req.Query})
}

func (s *Server) handleTimeline(c *gin.Context) {
	entityType := c.Param("entity_type")
	entityID := c.Param("entity_id")
	channel := c.Query("channel")

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

	var since, until *time.Time
	if v := c.Query("since"); v != "" {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			since = &parsed
		}
	}
	if v := c.Query("until"); v != "" {
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			until = &parsed
		}
	}

	mems, err := s.retriever.Timeline(c.Request.Context(), entityType, entityID, since, until, channel, limit, offset)
	if err != nil {
		gate.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": mems, "total": len(mems)})
}
