package gate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drmoyassine/masteragent/internal/models"
)

func TestRateLimiter_DisabledByDefaultAllowsUnbounded(t *testing.T) {
	rl := NewRateLimiter()
	now := time.Now()
	for i := 0; i < 1000; i++ {
		assert.NoError(t, rl.Allow("agent-1", now))
	}
}

func TestRateLimiter_RejectsOnceLimitReached(t *testing.T) {
	rl := NewRateLimiter()
	rl.Configure(true, 3)
	now := time.Now()

	for i := 0; i < 3; i++ {
		require.NoError(t, rl.Allow("agent-1", now))
	}

	err := rl.Allow("agent-1", now)
	require.Error(t, err)
	assert.Equal(t, models.KindRate, models.KindOf(err))
}

func TestRateLimiter_DistinctAgentsDoNotShareAWindow(t *testing.T) {
	rl := NewRateLimiter()
	rl.Configure(true, 1)
	now := time.Now()

	require.NoError(t, rl.Allow("agent-1", now))
	require.NoError(t, rl.Allow("agent-2", now))
	assert.Error(t, rl.Allow("agent-1", now))
	assert.Error(t, rl.Allow("agent-2", now))
}

func TestRateLimiter_OldEntriesSlideOutOfTheWindow(t *testing.T) {
	rl := NewRateLimiter()
	rl.Configure(true, 1)
	start := time.Now()

	require.NoError(t, rl.Allow("agent-1", start))
	assert.Error(t, rl.Allow("agent-1", start.Add(30*time.Second)))
	assert.NoError(t, rl.Allow("agent-1", start.Add(61*time.Second)))
}

func TestRateLimiter_GCEvictsOnlyFullyStaleWindows(t *testing.T) {
	rl := NewRateLimiter()
	rl.Configure(true, 5)
	start := time.Now()

	require.NoError(t, rl.Allow("stale", start))
	require.NoError(t, rl.Allow("fresh", start.Add(90*time.Second)))

	evicted := rl.GC(start.Add(90 * time.Second))
	assert.Equal(t, 1, evicted)

	rl.mu.Lock()
	_, staleRemains := rl.windows["stale"]
	_, freshRemains := rl.windows["fresh"]
	rl.mu.Unlock()
	assert.False(t, staleRemains)
	assert.True(t, freshRemains)
}

func TestRateLimiter_ConfigureCanDisableAfterBeingEnabled(t *testing.T) {
	rl := NewRateLimiter()
	rl.Configure(true, 1)
	now := time.Now()

	require.NoError(t, rl.Allow("agent-1", now))
	require.Error(t, rl.Allow("agent-1", now))

	rl.Configure(false, 1)
	assert.NoError(t, rl.Allow("agent-1", now))
}
