// Package background runs the single cooperative maintenance loop: export
// snapshot, lesson mining, and rate-limit GC, each wrapped individually so
// one activity's failure never cancels the others or the loop.
package background

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/drmoyassine/masteragent/internal/database"
)

// RateLimiter is the narrow interface the loop needs, kept local to avoid
// an import cycle with internal/gate.
type RateLimiter interface {
	GC(now time.Time) int
	Configure(enabled bool, perMinute int)
}

// Loop owns the ticker and dispatches each tick's activities.
type Loop struct {
	period   time.Duration
	settings *database.SettingsRepository
	exporter *Exporter
	miner    *Miner
	limiter  RateLimiter
	logger   *logrus.Logger
}

func New(period time.Duration, settings *database.SettingsRepository, exporter *Exporter, miner *Miner, limiter RateLimiter, logger *logrus.Logger) *Loop {
	return &Loop{period: period, settings: settings, exporter: exporter, miner: miner, limiter: limiter, logger: logger}
}

// Run blocks until ctx is cancelled. The stop signal is only honored
// between ticks, never mid-activity.
func (l *Loop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("background loop stopped")
			return
		case <-ticker.C:
			l.tick(ctx)
		}
	}
}

func (l *Loop) tick(ctx context.Context) {
	settings, err := l.settings.Get(ctx)
	if err != nil {
		l.logger.WithError(err).Error("background tick: failed to load settings, skipping")
		return
	}

	l.limiter.Configure(settings.RateLimitEnabled, settings.RateLimitPerMinute)

	l.runActivity(ctx, "export_snapshot", 60*time.Second, func(actCtx context.Context) error {
		if !settings.OpenclawSyncEnabled {
			return nil
		}
		return l.exporter.Export(actCtx)
	})

	l.runActivity(ctx, "lesson_mining", 120*time.Second, func(actCtx context.Context) error {
		if !settings.AutoLessonEnabled {
			return nil
		}
		return l.miner.Mine(actCtx, settings.AutoLessonThreshold)
	})

	l.runActivity(ctx, "rate_limit_gc", 5*time.Second, func(actCtx context.Context) error {
		evicted := l.limiter.GC(time.Now())
		if evicted > 0 {
			l.logger.WithField("evicted", evicted).Debug("rate limit GC evicted stale windows")
		}
		return nil
	})
}

// runActivity isolates one activity with its own timeout and panic
// recovery so it can never take down the loop or another activity.
func (l *Loop) runActivity(ctx context.Context, name string, timeout time.Duration, fn func(context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.WithField("activity", name).WithField("panic", r).Error("background activity panicked")
		}
	}()

	actCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	if err := fn(actCtx); err != nil {
		l.logger.WithError(err).WithField("activity", name).Error("background activity failed")
	}
}
