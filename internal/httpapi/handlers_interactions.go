package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/drmoyassine/masteragent/internal/gate"
	"github.com/drmoyassine/masteragent/internal/ingestor"
	"github.com/drmoyassine/masteragent/internal/models"
)

type interactionResponse struct {
	ID           string             `json:"id"`
	Timestamp    string             `json:"timestamp"`
	Channel      string             `json:"channel"`
	Summary      string             `json:"summary"`
	HasDocuments bool               `json:"has_documents"`
	Entities     []models.EntityRef `json:"entities"`
	Metadata     models.Metadata    `json:"metadata"`
}

// handleIngest accepts a multipart request: text, channel, entities (JSON
// string), metadata (JSON string), and zero or more file parts.
func (s *Server) handleIngest(c *gin.Context) {
	agent := gate.AgentFromContext(c)

	channel := c.PostForm("channel")
	text := c.PostForm("text")

	var entities []models.EntityRef
	if raw := c.PostForm("entities"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &entities); err != nil {
			gate.WriteError(c, models.NewInputError("entities", "must be a JSON array"))
			return
		}
	}

	var metadata models.Metadata
	if raw := c.PostForm("metadata"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
			gate.WriteError(c, models.NewInputError("metadata", "must be a JSON object"))
			return
		}
	}

	var attachments []ingestor.Attachment
	if form, err := c.MultipartForm(); err == nil {
		for _, headers := range form.File {
			for _, fh := range headers {
				f, err := fh.Open()
				if err != nil {
					gate.WriteError(c, models.NewInputError("file", "could not open upload"))
					return
				}
				data, err := io.ReadAll(f)
				f.Close()
				if err != nil {
					gate.WriteError(c, models.NewInputError("file", "could not read upload"))
					return
				}
				mimeType := fh.Header.Get("Content-Type")
				attachments = append(attachments, ingestor.Attachment{
					Filename: fh.Filename, MIMEType: mimeType, Data: data,
				})
			}
		}
	}

	outcome, err := s.ingestor.Ingest(c.Request.Context(), agent.ID, ingestor.Request{
		Channel: channel, RawText: text, Entities: entities, Metadata: metadata, Attachments: attachments,
	})
	if err != nil {
		gate.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, interactionResponse{
		ID: outcome.MemoryID, Timestamp: outcome.Timestamp.Format(time.RFC3339),
		Channel: channel, Summary: outcome.Summary,
		HasDocuments: outcome.HasDocuments, Entities: outcome.Entities, Metadata: metadata,
	})
}
