package background

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drmoyassine/masteragent/internal/models"
)

func TestCanonicalEntityKey_IgnoresFieldOrderAndRole(t *testing.T) {
	a := models.EntityRef{Type: "user", ID: "alice", Role: "reporter"}
	b := models.EntityRef{Type: "user", ID: "alice", Role: "assignee"}
	assert.Equal(t, canonicalEntityKey(a), canonicalEntityKey(b))
}

func TestCanonicalEntityKey_DistinguishesTypeAndID(t *testing.T) {
	a := canonicalEntityKey(models.EntityRef{Type: "user", ID: "alice"})
	b := canonicalEntityKey(models.EntityRef{Type: "project", ID: "alice"})
	c := canonicalEntityKey(models.EntityRef{Type: "user", ID: "bob"})
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestClusterByEntity_GroupsAcrossMultipleCitations(t *testing.T) {
	alice := models.EntityRef{Type: "user", ID: "alice"}
	bob := models.EntityRef{Type: "user", ID: "bob"}
	mems := []*models.Memory{
		{ID: "m1", Entities: []models.EntityRef{alice}},
		{ID: "m2", Entities: []models.EntityRef{alice, bob}},
		{ID: "m3", Entities: []models.EntityRef{bob}},
	}

	clusters := clusterByEntity(mems)
	require.Len(t, clusters, 2)
	assert.Len(t, clusters[canonicalEntityKey(alice)].memories, 2)
	assert.Len(t, clusters[canonicalEntityKey(bob)].memories, 2)
}

func TestCoveredKeys_OnlyIncludesRecentLessons(t *testing.T) {
	alice := models.EntityRef{Type: "user", ID: "alice"}
	recent := []*models.Lesson{
		{ID: "l1", RelatedEntities: []models.EntityRef{alice}},
	}
	covered := coveredKeys(recent)
	assert.True(t, covered[canonicalEntityKey(alice)])
	assert.False(t, covered[canonicalEntityKey(models.EntityRef{Type: "user", ID: "carol"})])
}

func TestExtractJSONObject_StripsSurroundingProse(t *testing.T) {
	raw := "Here is the lesson:\n```json\n{\"name\":\"x\",\"body\":\"y\"}\n```\nHope that helps."
	out := extractJSONObject(raw)
	assert.Equal(t, `{"name":"x","body":"y"}`, out)
}

func TestExtractJSONObject_ReturnsInputWhenNoBraces(t *testing.T) {
	raw := "no json here"
	assert.Equal(t, raw, extractJSONObject(raw))
}

func TestMineCluster_SamplesMostRecentMemoriesFirst(t *testing.T) {
	now := time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC)
	cluster := &entityCluster{
		entity: models.EntityRef{Type: "user", ID: "alice"},
		memories: []*models.Memory{
			{ID: "old", Timestamp: now.Add(-48 * time.Hour)},
			{ID: "new", Timestamp: now},
			{ID: "mid", Timestamp: now.Add(-24 * time.Hour)},
		},
	}
	// mineCluster sorts in place before sampling; verify the ordering step
	// independently of the LLM/repository calls it subsequently makes.
	sortMemoriesNewestFirst(cluster.memories)
	require.Len(t, cluster.memories, 3)
	assert.Equal(t, "new", cluster.memories[0].ID)
	assert.Equal(t, "mid", cluster.memories[1].ID)
	assert.Equal(t, "old", cluster.memories[2].ID)
}
