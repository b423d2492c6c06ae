// Package httpapi wires the agent- and admin-facing HTTP surface onto the
// ingestor, retriever, and lessons services via gin.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/drmoyassine/masteragent/internal/database"
	"github.com/drmoyassine/masteragent/internal/gate"
	"github.com/drmoyassine/masteragent/internal/ingestor"
	"github.com/drmoyassine/masteragent/internal/lessons"
	"github.com/drmoyassine/masteragent/internal/retriever"
	"github.com/drmoyassine/masteragent/internal/vectorstore"
)

// Server bundles the HTTP-facing collaborators and builds the gin router.
type Server struct {
	gate      *gate.Gate
	ingestor  *ingestor.Ingestor
	retriever *retriever.Retriever
	lessons   *lessons.Service
	memories  *database.MemoryRepository
	agents    *database.AgentRepository
	settings  *database.SettingsRepository
	configs   *database.ConfigTablesRepository
	vectors   *vectorstore.Store
	logger    *logrus.Logger
}

func NewServer(
	g *gate.Gate,
	in *ingestor.Ingestor,
	ret *retriever.Retriever,
	les *lessons.Service,
	memories *database.MemoryRepository,
	agents *database.AgentRepository,
	settings *database.SettingsRepository,
	configs *database.ConfigTablesRepository,
	vectors *vectorstore.Store,
	logger *logrus.Logger,
) *Server {
	return &Server{
		gate: g, ingestor: in, retriever: ret, lessons: les,
		memories: memories, agents: agents, settings: settings, configs: configs,
		vectors: vectors, logger: logger,
	}
}

// Router builds the full gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(s.requestLogger())
	r.Use(corsMiddleware())

	r.GET("/health", s.handleHealth)
	r.POST("/init", s.handleInit)

	agentAuth := s.gate.RequireAgent()
	adminAuth := s.gate.RequireAdmin()
	eitherAuth := s.gate.RequireAgentOrAdmin()

	r.POST("/interactions", agentAuth, s.handleIngest)
	r.POST("/search", eitherAuth, s.handleSearch)
	r.GET("/timeline/:entity_type/:entity_id", eitherAuth, s.handleTimeline)

	r.GET("/lessons", eitherAuth, s.handleListLessons)
	r.POST("/lessons", eitherAuth, s.handleCreateLesson)
	r.GET("/lessons/:id", eitherAuth, s.handleGetLesson)
	r.PATCH("/lessons/:id", eitherAuth, s.handleUpdateLesson)
	r.DELETE("/lessons/:id", eitherAuth, s.handleDeleteLesson)

	r.GET("/daily/:day", adminAuth, s.handleDaily)
	r.GET("/memories/:id", adminAuth, s.handleGetMemory)

	cfg := r.Group("/config", adminAuth)
	{
		cfg.GET("/settings", s.handleGetSettings)
		cfg.PATCH("/settings", s.handleUpdateSettings)
		cfg.GET("/lesson-types", s.handleListLessonTypes)
		cfg.POST("/lesson-types", s.handleCreateLessonType)
		cfg.GET("/channel-types", s.handleListChannelTypes)
		cfg.GET("/entity-types", s.handleListEntityTypes)
		cfg.GET("/prompts/:type", s.handleGetPrompt)
		cfg.PUT("/prompts/:type", s.handleUpsertPrompt)
		cfg.POST("/agents", s.handleCreateAgent)
		cfg.PATCH("/agents/:id/active", s.handleSetAgentActive)
	}

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization, X-Agent-Key")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		}).Info("request handled")
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleInit bootstraps the vector store collections. Safe to call
// repeatedly: each collection is created only if it does not already exist.
func (s *Server) handleInit(c *gin.Context) {
	if err := s.vectors.Bootstrap(c.Request.Context()); err != nil {
		gate.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "initialized"})
}
