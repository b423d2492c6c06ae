package background

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/drmoyassine/masteragent/internal/database"
	"github.com/drmoyassine/masteragent/internal/lessons"
	"github.com/drmoyassine/masteragent/internal/llmclient"
	"github.com/drmoyassine/masteragent/internal/models"
)

const (
	miningWindow       = 7 * 24 * time.Hour
	maxClusterMemories = 10
)

// Miner identifies entities that recur often enough in the trailing window
// to justify a draft lesson, and mines one via the LLM.
type Miner struct {
	memories *database.MemoryRepository
	lessons  *database.LessonRepository
	prompts  *database.ConfigTablesRepository
	llm      *llmclient.Client
	svc      *lessons.Service
	logger   *logrus.Logger
}

func NewMiner(memories *database.MemoryRepository, lessonRepo *database.LessonRepository, prompts *database.ConfigTablesRepository, llm *llmclient.Client, svc *lessons.Service, logger *logrus.Logger) *Miner {
	return &Miner{memories: memories, lessons: lessonRepo, prompts: prompts, llm: llm, svc: svc, logger: logger}
}

// Mine runs one mining pass: cluster recent memories by entity, skip
// clusters already covered by a recent lesson, and draft a lesson for
// every cluster that meets threshold.
func (m *Miner) Mine(ctx context.Context, threshold int) error {
	since := time.Now().UTC().Add(-miningWindow)

	mems, err := m.memories.ListSince(ctx, since)
	if err != nil {
		return fmt.Errorf("list recent memories: %w", err)
	}

	clusters := clusterByEntity(mems)

	recentLessons, err := m.lessons.ListCreatedSince(ctx, since)
	if err != nil {
		return fmt.Errorf("list recent lessons: %w", err)
	}
	covered := coveredKeys(recentLessons)

	for key, cluster := range clusters {
		if len(cluster.memories) < threshold {
			continue
		}
		if covered[key] {
			continue
		}
		if err := m.mineCluster(ctx, cluster); err != nil {
			m.logger.WithError(err).WithField("entity_key", key).Error("lesson mining failed for cluster")
		}
	}
	return nil
}

type entityCluster struct {
	entity   models.EntityRef
	memories []*models.Memory
}

// clusterByEntity groups memories by each cited entity. A memory citing
// multiple entities contributes to multiple clusters.
func clusterByEntity(mems []*models.Memory) map[string]*entityCluster {
	clusters := make(map[string]*entityCluster)
	for _, mem := range mems {
		for _, ref := range mem.Entities {
			key := canonicalEntityKey(ref)
			c, ok := clusters[key]
			if !ok {
				c = &entityCluster{entity: ref}
				clusters[key] = c
			}
			c.memories = append(c.memories, mem)
		}
	}
	return clusters
}

// canonicalEntityKey marshals a single-field-order struct so that
// equivalent EntityRefs always produce the same string key, instead of
// relying on ad hoc string concatenation that is easy to get subtly wrong
// across call sites.
func canonicalEntityKey(ref models.EntityRef) string {
	b, _ := json.Marshal(struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	}{Type: ref.Type, ID: ref.ID})
	return string(b)
}

// coveredKeys returns the set of entity keys already addressed by a lesson
// created inside the mining window, so the miner never produces a second
// draft for the same cluster inside one window.
func coveredKeys(recent []*models.Lesson) map[string]bool {
	covered := make(map[string]bool)
	for _, l := range recent {
		for _, ref := range l.RelatedEntities {
			covered[canonicalEntityKey(ref)] = true
		}
	}
	return covered
}

type minedLesson struct {
	Name    string `json:"name"`
	Body    string `json:"body"`
	Summary string `json:"summary"`
}

func sortMemoriesNewestFirst(mems []*models.Memory) {
	sort.Slice(mems, func(i, j int) bool {
		return mems[i].Timestamp.After(mems[j].Timestamp)
	})
}

func (m *Miner) mineCluster(ctx context.Context, cluster *entityCluster) error {
	sortMemoriesNewestFirst(cluster.memories)
	sample := cluster.memories
	if len(sample) > maxClusterMemories {
		sample = sample[:maxClusterMemories]
	}

	prompt, err := m.prompts.GetActivePrompt(ctx, "lesson_extraction")
	if err != nil {
		return fmt.Errorf("no active lesson extraction prompt: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Entity: %s:%s\n\n", cluster.entity.Type, cluster.entity.ID)
	for _, mem := range sample {
		fmt.Fprintf(&b, "- [%s] %s\n", mem.Timestamp.Format(time.RFC3339), mem.SummaryText)
	}

	rendered := strings.ReplaceAll(prompt.PromptText, "{interactions}", b.String())
	out, err := m.llm.Complete(ctx, "You distill recurring interactions into a single reusable lesson.", rendered)
	if err != nil {
		return fmt.Errorf("lesson extraction call failed: %w", err)
	}

	var mined minedLesson
	if err := json.Unmarshal([]byte(extractJSONObject(out)), &mined); err != nil {
		return fmt.Errorf("lesson extraction response did not parse: %w", err)
	}
	if mined.Name == "" || mined.Body == "" {
		return fmt.Errorf("lesson extraction returned an empty name or body")
	}

	ids := make([]string, 0, len(sample))
	for _, mem := range sample {
		ids = append(ids, mem.ID)
	}

	_, err = m.svc.Create(ctx, "background-miner", lessons.CreateInput{
		LessonType:      "auto_mined",
		Name:            mined.Name,
		Body:            mined.Body,
		Summary:         mined.Summary,
		RelatedEntities: []models.EntityRef{cluster.entity},
		SourceMemoryIDs: ids,
		ForceDraft:      true,
	})
	if err != nil {
		return fmt.Errorf("insert mined lesson: %w", err)
	}
	return nil
}

func extractJSONObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < 0 || end < start {
		return s
	}
	return s[start : end+1]
}
