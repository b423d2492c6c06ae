// Package models holds the domain entities shared across the ingestion and
// retrieval pipeline.
package models

import "time"

// EntityRef is a structural citation embedded in a Memory or Lesson — not a
// pointer to an entity record.
type EntityRef struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Role string `json:"role,omitempty"`
}

// Metadata is a free-form, untyped string-to-value mapping.
type Metadata map[string]any

// Memory is one raw interaction. Immutable after ingest except IsShared.
type Memory struct {
	ID            string
	Timestamp     time.Time
	Channel       string
	RawText       string
	SummaryText   string
	Entities      []EntityRef
	Metadata      Metadata
	HasDocuments  bool
	IsShared      bool
	VectorID      string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Document is a parsed attachment tied to a Memory's lifetime.
type Document struct {
	ID         string
	MemoryID   string
	Filename   string
	FileType   string
	FileSize   int64
	ParsedText string
	CreatedAt  time.Time
}

// SharedMemory is a PII-redacted projection of a Memory.
type SharedMemory struct {
	ID                string
	OriginalMemoryID  string
	Timestamp         time.Time
	Channel           string
	ScrubbedText      string
	SummaryText       string
	HasDocuments      bool
	Entities          []EntityRef
	Metadata          Metadata
	CreatedAt         time.Time
}

// LessonStatus is the lifecycle state of a Lesson.
type LessonStatus string

const (
	LessonDraft    LessonStatus = "draft"
	LessonApproved LessonStatus = "approved"
	LessonArchived LessonStatus = "archived"
)

// Lesson is a distilled insight, created by an agent, admin, or the miner.
type Lesson struct {
	ID              string
	LessonType      string
	Name            string
	Body            string
	Summary         string
	Status          LessonStatus
	IsShared        bool
	RelatedEntities []EntityRef
	SourceMemoryIDs []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SharedLesson is the PII-stripped projection of an approved, shared Lesson.
type SharedLesson struct {
	ID               string
	OriginalLessonID string
	LessonType       string
	Name             string
	PIIStrippedBody  string
	Summary          string
	RelatedEntities  []EntityRef
	CreatedAt        time.Time
}

// VectorPointKind distinguishes the two payload shapes a vector point can carry.
type VectorPointKind string

const (
	VectorPointInteraction VectorPointKind = "interaction"
	VectorPointLesson      VectorPointKind = "lesson"
)

// VectorPoint is one embedded chunk as stored in the vector collections.
type VectorPoint struct {
	ID         string
	Kind       VectorPointKind
	MemoryID   string // set for interaction points
	LessonID   string // set for lesson points
	ChunkIndex int
	Vector     []float32
	Channel    string
	Timestamp  time.Time
	Entities   []EntityRef
	IsShared   bool
}

// Agent is a credential record for an autonomous caller.
type Agent struct {
	ID            string
	Name          string
	APIKeyHash    string
	APIKeyPreview string
	AccessLevel   string
	IsActive      bool
	CreatedAt     time.Time
	LastUsed      time.Time
}

// AuditRecord is an append-only log entry for a privileged operation.
type AuditRecord struct {
	ID           string
	AgentID      string
	Action       string
	ResourceType string
	ResourceID   string
	Details      Metadata
	Timestamp    time.Time
}

// Settings is the singleton configuration row controlling chunking,
// auto-lesson mining, PII scrubbing, sync, and rate limiting.
type Settings struct {
	ChunkSize              int
	ChunkOverlap           int
	AutoLessonEnabled      bool
	AutoLessonThreshold    int
	LessonApprovalRequired bool
	PIIScrubbingEnabled    bool
	AutoShareScrubbed      bool
	OpenclawSyncEnabled    bool
	OpenclawSyncPath       string
	OpenclawSyncType       string
	OpenclawSyncFrequency  int
	RateLimitEnabled       bool
	RateLimitPerMinute     int
	DefaultAgentAccess     string
	UpdatedAt              time.Time
}

// DefaultSettings returns the factory defaults seeded into the singleton
// row on first migration.
func DefaultSettings() Settings {
	return Settings{
		ChunkSize:              400,
		ChunkOverlap:           80,
		AutoLessonEnabled:      false,
		AutoLessonThreshold:    5,
		LessonApprovalRequired: true,
		PIIScrubbingEnabled:    false,
		AutoShareScrubbed:      false,
		OpenclawSyncEnabled:    false,
		OpenclawSyncType:       "filesystem",
		OpenclawSyncFrequency:  5,
		RateLimitEnabled:       false,
		RateLimitPerMinute:     60,
		DefaultAgentAccess:     "private",
	}
}
