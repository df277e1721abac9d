package jobs

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
)

// Sweeper evicts expired cache entries and reports how many remain.
type Sweeper interface {
	Sweep() int
}

// CacheSweepJob evicts expired entries from a cache and publishes its size.
type CacheSweepJob struct {
	cache    Sweeper
	gauge    prometheus.Gauge
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewCacheSweepJob(cache Sweeper, gauge prometheus.Gauge, schedule string, logger *slog.Logger) *CacheSweepJob {
	return &CacheSweepJob{
		cache:    cache,
		gauge:    gauge,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "cache_sweep_job"),
	}
}

func (j *CacheSweepJob) Start() error {
	if _, err := j.cron.AddFunc(j.schedule, j.run); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Cache sweep job started", "schedule", j.schedule)
	return nil
}

func (j *CacheSweepJob) run() {
	j.gauge.Set(float64(j.cache.Sweep()))
}

func (j *CacheSweepJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Cache sweep job stopped")
}
