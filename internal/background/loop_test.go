package background

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type fakeRateLimiter struct {
	mu      sync.Mutex
	calls   int
	evicted int
}

func (f *fakeRateLimiter) GC(now time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.evicted
}

func (f *fakeRateLimiter) Configure(enabled bool, perMinute int) {}

func silentLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(discard{})
	return l
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func TestRunActivity_PanicInOneActivityDoesNotStopOthers(t *testing.T) {
	l := &Loop{logger: silentLogger()}

	var secondRan bool
	l.runActivity(context.Background(), "first", time.Second, func(context.Context) error {
		panic("boom")
	})
	l.runActivity(context.Background(), "second", time.Second, func(context.Context) error {
		secondRan = true
		return nil
	})

	assert.True(t, secondRan)
}

func TestRunActivity_ErrorIsLoggedNotPropagated(t *testing.T) {
	l := &Loop{logger: silentLogger()}
	assert.NotPanics(t, func() {
		l.runActivity(context.Background(), "failing", time.Second, func(context.Context) error {
			return assert.AnError
		})
	})
}

func TestRateLimitGCActivity_InvokesLimiterAndSurvivesZeroEvictions(t *testing.T) {
	limiter := &fakeRateLimiter{}
	l := &Loop{logger: silentLogger(), limiter: limiter}

	l.runActivity(context.Background(), "rate_limit_gc", 5*time.Second, func(context.Context) error {
		limiter.GC(time.Now())
		return nil
	})

	assert.Equal(t, 1, limiter.calls)
}

func TestRunActivity_RespectsTimeoutDeadline(t *testing.T) {
	l := &Loop{logger: silentLogger()}
	var sawDeadline bool
	l.runActivity(context.Background(), "slow", 10*time.Millisecond, func(actCtx context.Context) error {
		_, sawDeadline = actCtx.Deadline()
		return nil
	})
	assert.True(t, sawDeadline)
}
