// Package ingestor implements the interaction ingest pipeline: validate,
// parse attachments, enrich, chunk and embed, optionally project a shared
// copy, persist relational then vector, and audit.
package ingestor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/drmoyassine/masteragent/internal/chunker"
	"github.com/drmoyassine/masteragent/internal/database"
	"github.com/drmoyassine/masteragent/internal/docparser"
	"github.com/drmoyassine/masteragent/internal/enricher"
	"github.com/drmoyassine/masteragent/internal/llmclient"
	"github.com/drmoyassine/masteragent/internal/models"
	"github.com/drmoyassine/masteragent/internal/vectorstore"
)

// Attachment is one uploaded file awaiting DocParser processing.
type Attachment struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Request is the Ingestor's input.
type Request struct {
	Channel     string
	RawText     string
	Entities    []models.EntityRef // if empty, extracted from composite text
	Metadata    models.Metadata
	Attachments []Attachment
}

// Outcome is what Ingest returns: the memory id, generated summary, entity
// list, and flags describing degraded paths taken.
type Outcome struct {
	MemoryID         string
	Timestamp        time.Time
	Summary          string
	Entities         []models.EntityRef
	HasDocuments     bool
	VectorIndexed    bool
	SharedProjection bool
}

// Ingestor wires the DocParser, Enricher, Chunker/Embedder, and DualStore
// together into the strict pipeline order the hot path requires.
type Ingestor struct {
	db       *database.DB
	memories *database.MemoryRepository
	docs     *database.DocumentRepository
	shared   *database.SharedMemoryRepository
	settings *database.SettingsRepository

	parser   *docparser.Parser
	enrich   *enricher.Enricher
	llm      *llmclient.Client
	vectors  *vectorstore.Store
	auditor  Auditor

	logger *logrus.Logger
}

// Auditor is the narrow interface the ingestor needs from internal/gate,
// kept local to avoid an import cycle.
type Auditor interface {
	Record(ctx context.Context, rec *models.AuditRecord)
}

func New(
	db *database.DB,
	memories *database.MemoryRepository,
	docs *database.DocumentRepository,
	shared *database.SharedMemoryRepository,
	settings *database.SettingsRepository,
	parser *docparser.Parser,
	enrich *enricher.Enricher,
	llm *llmclient.Client,
	vectors *vectorstore.Store,
	auditor Auditor,
	logger *logrus.Logger,
) *Ingestor {
	return &Ingestor{
		db: db, memories: memories, docs: docs, shared: shared, settings: settings,
		parser: parser, enrich: enrich, llm: llm, vectors: vectors, auditor: auditor, logger: logger,
	}
}

const attachmentDelimiter = "\n\n--- attachment: %s ---\n\n"

// Ingest runs the full pipeline for one agent-submitted interaction.
func (in *Ingestor) Ingest(ctx context.Context, agentID string, req Request) (*Outcome, error) {
	if req.Channel == "" {
		return nil, models.NewInputError("channel", "channel is required")
	}

	// 1. Validate & allocate.
	memoryID := uuid.NewString()
	now := time.Now().UTC()

	// 2. Parse attachments.
	compositeText := req.RawText
	var documents []models.Document
	hasDocuments := len(req.Attachments) > 0
	for _, att := range req.Attachments {
		result := in.parser.Parse(ctx, att.Filename, att.MIMEType, att.Data)
		documents = append(documents, models.Document{
			ID:         uuid.NewString(),
			MemoryID:   memoryID,
			Filename:   att.Filename,
			FileType:   att.MIMEType,
			FileSize:   int64(len(att.Data)),
			ParsedText: result.ExtractedText,
			CreatedAt:  now,
		})
		if result.ExtractedText != "" {
			compositeText += fmt.Sprintf(attachmentDelimiter, att.Filename) + result.ExtractedText
		}
	}

	// 3. Enrich.
	summary := in.enrich.Summarize(ctx, compositeText)
	entities := req.Entities
	if len(entities) == 0 {
		entities = enricher.ToEntityRefs(in.enrich.ExtractEntities(ctx, compositeText))
	}

	settings, err := in.settings.Get(ctx)
	if err != nil {
		return nil, models.NewPersistenceError("load settings", err)
	}

	// 4. Chunk & embed.
	chunks := chunker.Chunk(compositeText, settings.ChunkSize, settings.ChunkOverlap)
	embeddings, err := in.llm.Embed(ctx, chunks)
	if err != nil {
		in.logger.WithError(err).Warn("embedding call failed, continuing with empty vectors")
		embeddings = nil
	}

	// 5. Optional shared projection.
	var sharedRow *models.SharedMemory
	var sharedChunks []string
	var sharedEmbeddings [][]float32
	if settings.PIIScrubbingEnabled {
		scrubbedText := in.enrich.Redact(ctx, compositeText)
		scrubbedSummary := in.enrich.Redact(ctx, summary)
		sharedChunks = chunker.Chunk(scrubbedText, settings.ChunkSize, settings.ChunkOverlap)
		sharedEmbeddings, err = in.llm.Embed(ctx, sharedChunks)
		if err != nil {
			in.logger.WithError(err).Warn("shared-projection embedding failed")
			sharedEmbeddings = nil
		}
		if settings.AutoShareScrubbed {
			sharedRow = &models.SharedMemory{
				ID:               uuid.NewString(),
				OriginalMemoryID: memoryID,
				Timestamp:        now,
				Channel:          req.Channel,
				ScrubbedText:     scrubbedText,
				SummaryText:      scrubbedSummary,
				HasDocuments:     hasDocuments,
				Entities:         entities,
				Metadata:         req.Metadata,
				CreatedAt:        now,
			}
		}
	}

	memory := &models.Memory{
		ID:           memoryID,
		Timestamp:    now,
		Channel:      req.Channel,
		RawText:      req.RawText,
		SummaryText:  summary,
		Entities:     entities,
		Metadata:     req.Metadata,
		HasDocuments: hasDocuments,
		IsShared:     sharedRow != nil,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	// 6. Persist, relational side — single transaction.
	err = in.db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := in.memories.Insert(ctx, tx, memory); err != nil {
			return err
		}
		for i := range documents {
			if err := in.docs.Insert(ctx, tx, &documents[i]); err != nil {
				return err
			}
		}
		if sharedRow != nil {
			if err := in.shared.Insert(ctx, tx, sharedRow); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, models.NewPersistenceError("commit ingest transaction", err)
	}

	// 7. Persist, vector side — only after relational commit.
	vectorIndexed := in.upsertVectors(ctx, memoryID, chunks, embeddings, req.Channel, now, entities, false)
	if sharedRow != nil {
		in.upsertVectors(ctx, memoryID, sharedChunks, sharedEmbeddings, req.Channel, now, entities, true)
	}

	// 8. Audit.
	in.auditor.Record(ctx, &models.AuditRecord{
		ID:           uuid.NewString(),
		AgentID:      agentID,
		Action:       "ingest_interaction",
		ResourceType: "memory",
		ResourceID:   memoryID,
		Details:      models.Metadata{"channel": req.Channel, "has_documents": hasDocuments},
		Timestamp:    now,
	})

	return &Outcome{
		MemoryID:         memoryID,
		Timestamp:        now,
		Summary:          summary,
		Entities:         entities,
		HasDocuments:     hasDocuments,
		VectorIndexed:    vectorIndexed,
		SharedProjection: sharedRow != nil,
	}, nil
}

func (in *Ingestor) upsertVectors(
	ctx context.Context,
	memoryID string,
	chunks []string,
	embeddings [][]float32,
	channel string,
	ts time.Time,
	entities []models.EntityRef,
	shared bool,
) bool {
	if len(embeddings) == 0 {
		return false
	}

	collection := vectorstore.CollectionInteractions
	if shared {
		collection = vectorstore.CollectionInteractionsShared
	}

	points := make([]vectorstore.Point, 0, len(embeddings))
	for i, vec := range embeddings {
		if i >= len(chunks) {
			break
		}
		points = append(points, vectorstore.Point{
			ID:     fmt.Sprintf("%s:%d", memoryID, i),
			Vector: vec,
			Payload: map[string]any{
				"memory_id":      memoryID,
				"chunk_index":    i,
				"channel":        channel,
				"timestamp":      ts.Format(time.RFC3339),
				"timestamp_unix": float64(ts.Unix()),
				"entities":       entityPayload(entities),
				"entity_types":   entityTypes(entities),
				"text":           chunks[i],
			},
		})
	}

	if err := in.vectors.Upsert(ctx, collection, points); err != nil {
		in.logger.WithError(err).WithField("memory_id", memoryID).Error("vector upsert failed after relational commit")
		return false
	}
	return true
}

// entityTypes is the deduplicated set of entity types cited by a chunk,
// stored alongside entityPayload so entity_type search filters can match
// against a keyword array instead of parsing the denormalized "type:id" pairs.
func entityTypes(entities []models.EntityRef) []string {
	seen := make(map[string]bool, len(entities))
	out := make([]string, 0, len(entities))
	for _, e := range entities {
		if seen[e.Type] {
			continue
		}
		seen[e.Type] = true
		out = append(out, e.Type)
	}
	return out
}

func entityPayload(entities []models.EntityRef) string {
	ids := make([]string, 0, len(entities))
	for _, e := range entities {
		ids = append(ids, e.Type+":"+e.ID)
	}
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += ","
		}
		out += id
	}
	return out
}
