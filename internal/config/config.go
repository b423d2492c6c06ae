// Package config assembles the process-wide Config from the environment.
// Settings that change at runtime (the Settings singleton row, entity/lesson
// type tables) are NOT part of this struct — they live in the database and
// are read through a SettingsRepository instead.
package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the static, deploy-time configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Qdrant   QdrantConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
}

type ServerConfig struct {
	Host         string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port         string        `envconfig:"SERVER_PORT" default:"8080"`
	AdminToken   string        `envconfig:"ADMIN_TOKEN"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"30s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
	Mode         string        `envconfig:"SERVER_MODE" default:"release"`
}

type DatabaseConfig struct {
	Host           string `envconfig:"DB_HOST" default:"localhost"`
	Port           string `envconfig:"DB_PORT" default:"5432"`
	User           string `envconfig:"DB_USER" default:"memoryservice"`
	Password       string `envconfig:"DB_PASSWORD" default:"secret"`
	Name           string `envconfig:"DB_NAME" default:"memoryservice"`
	SSLMode        string `envconfig:"DB_SSLMODE" default:"disable"`
	MaxConnections int32  `envconfig:"DB_MAX_CONNECTIONS" default:"20"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type QdrantConfig struct {
	Host   string `envconfig:"QDRANT_HOST" default:"localhost"`
	Port   int    `envconfig:"QDRANT_PORT" default:"6334"`
	UseTLS bool   `envconfig:"QDRANT_TLS" default:"false"`
	APIKey string `envconfig:"QDRANT_API_KEY"`
}

// LLMConfig configures the outbound chat, vision, embedding, and redaction collaborators.
type LLMConfig struct {
	ChatBaseURL       string        `envconfig:"LLM_CHAT_BASE_URL"`
	ChatAPIKey        string        `envconfig:"LLM_CHAT_API_KEY"`
	ChatModel         string        `envconfig:"LLM_CHAT_MODEL" default:"gpt-4o-mini"`
	VisionModel       string        `envconfig:"LLM_VISION_MODEL" default:"gpt-4o-mini"`
	EmbeddingBaseURL  string        `envconfig:"LLM_EMBEDDING_BASE_URL"`
	EmbeddingAPIKey   string        `envconfig:"LLM_EMBEDDING_API_KEY"`
	EmbeddingModel    string        `envconfig:"LLM_EMBEDDING_MODEL" default:"text-embedding-3-small"`
	EmbeddingDim      int           `envconfig:"LLM_EMBEDDING_DIM" default:"1536"`
	RedactionURL      string        `envconfig:"REDACTION_URL"`
	RedactionAPIKey   string        `envconfig:"REDACTION_API_KEY"`
	ChatTimeout       time.Duration `envconfig:"LLM_CHAT_TIMEOUT" default:"60s"`
	VisionTimeout     time.Duration `envconfig:"LLM_VISION_TIMEOUT" default:"120s"`
	EmbeddingTimeout  time.Duration `envconfig:"LLM_EMBEDDING_TIMEOUT" default:"30s"`
	RedactionTimeout  time.Duration `envconfig:"REDACTION_TIMEOUT" default:"10s"`
}

// PipelineConfig holds deploy-time knobs that are not part of the mutable
// Settings singleton (those stay in the database).
type PipelineConfig struct {
	BackgroundLoopPeriod time.Duration `envconfig:"BACKGROUND_LOOP_PERIOD" default:"5m"`
	ExportTimeout        time.Duration `envconfig:"EXPORT_TIMEOUT" default:"60s"`
	MiningTimeout        time.Duration `envconfig:"MINING_TIMEOUT" default:"120s"`
	SnapshotRoot         string        `envconfig:"SNAPSHOT_ROOT" default:"./snapshots"`
}

// Load reads a .env file if present (ignored if missing) and then populates
// Config from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
