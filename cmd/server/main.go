package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drmoyassine/masteragent/internal/background"
	"github.com/drmoyassine/masteragent/internal/cache"
	"github.com/drmoyassine/masteragent/internal/config"
	"github.com/drmoyassine/masteragent/internal/database"
	"github.com/drmoyassine/masteragent/internal/docparser"
	"github.com/drmoyassine/masteragent/internal/enricher"
	"github.com/drmoyassine/masteragent/internal/gate"
	"github.com/drmoyassine/masteragent/internal/httpapi"
	"github.com/drmoyassine/masteragent/internal/ingestor"
	"github.com/drmoyassine/masteragent/internal/lessons"
	"github.com/drmoyassine/masteragent/internal/llmclient"
	"github.com/drmoyassine/masteragent/internal/logging"
	"github.com/drmoyassine/masteragent/internal/retriever"
	"github.com/drmoyassine/masteragent/internal/vectorstore"
)

func main() {
	cfg, err := config.Load()
	logger := logging.New(os.Getenv("SERVER_MODE"))
	if err != nil {
		logger.WithError(err).Fatal("failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to postgres")
	}
	defer db.Close()

	connString := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User, cfg.Database.Password, cfg.Database.Host, cfg.Database.Port, cfg.Database.Name, cfg.Database.SSLMode)
	if err := database.Migrate(connString); err != nil {
		logger.WithError(err).Fatal("failed to apply migrations")
	}

	redisClient := cache.New(ctx, &cfg.Redis)
	if !redisClient.IsEnabled() {
		logger.Warn("redis unavailable at startup, agent auth cache disabled")
	}

	llm := llmclient.New(&cfg.LLM)
	redactor := llmclient.NewRedactionClient(&cfg.LLM)

	vectors, err := vectorstore.Connect(&cfg.Qdrant, cfg.LLM.EmbeddingDim)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to qdrant")
	}
	defer vectors.Close()
	if err := vectors.Bootstrap(ctx); err != nil {
		logger.WithError(err).Fatal("failed to bootstrap vector collections")
	}

	memories := database.NewMemoryRepository(db)
	documents := database.NewDocumentRepository(db)
	sharedMemories := database.NewSharedMemoryRepository(db)
	settings := database.NewSettingsRepository(db)
	lessonRepo := database.NewLessonRepository(db)
	agentRepo := database.NewAgentRepository(db)
	auditRepo := database.NewAuditRepository(db)
	configTables := database.NewConfigTablesRepository(db)

	auditor := gate.NewAuditor(auditRepo, logger)
	authenticator := gate.NewAgentAuthenticator(agentRepo, redisClient)
	rateLimiter := gate.NewRateLimiter()
	adminVerifier := &gate.StaticAdminVerifier{Token: cfg.Server.AdminToken}
	g := gate.NewGate(authenticator, rateLimiter, auditor, adminVerifier)

	parser := docparser.New(llm, logger)
	enrich := enricher.New(llm, configTables, redactor, logger)

	ingest := ingestor.New(db, memories, documents, sharedMemories, settings, parser, enrich, llm, vectors, auditor, logger)
	ret := retriever.New(llm, vectors, memories, auditor, logger)
	lessonSvc := lessons.New(lessonRepo, settings, llm, vectors, auditor)

	exporter := background.NewExporter(memories, lessonRepo, cfg.Pipeline.SnapshotRoot)
	miner := background.NewMiner(memories, lessonRepo, configTables, llm, lessonSvc, logger)
	loop := background.New(cfg.Pipeline.BackgroundLoopPeriod, settings, exporter, miner, rateLimiter, logger)
	go loop.Run(ctx)

	server := httpapi.NewServer(g, ingest, ret, lessonSvc, memories, agentRepo, settings, configTables, vectors, logger)

	httpServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("addr", httpServer.Addr).Info("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("HTTP server shutdown did not complete cleanly")
	}
	os.Exit(0)
}
