package services

import (
	"context"
	"time"

	"agent-hub/cache"
	"agent-hub/entities"
	"agent-hub/repositories"

	"github.com/rs/zerolog"
)

// MetricsArchiver periodically moves cached metrics samples into the archive.
type MetricsArchiver struct {
	cache    *cache.MetricsCache
	archive  repositories.MetricsArchiveRepository
	interval time.Duration
	log      zerolog.Logger
}

func NewMetricsArchiver(c *cache.MetricsCache, archive repositories.MetricsArchiveRepository, interval time.Duration, log zerolog.Logger) *MetricsArchiver {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &MetricsArchiver{cache: c, archive: archive, interval: interval, log: log}
}

// Start flushes on every tick until ctx is cancelled. The returned channel
// is closed once the loop has exited, after a final flush.
func (a *MetricsArchiver) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	ticker := time.NewTicker(a.interval)
	go func() {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				_, _ = a.Flush()
				return
			case <-ticker.C:
				_, _ = a.Flush()
			}
		}
	}()
	return done
}

// Flush archives every unarchived sample. On failure the samples go back to
// the cache for the next attempt.
func (a *MetricsArchiver) Flush() (int, error) {
	samples := a.cache.DrainUnarchived()
	if len(samples) == 0 {
		a.log.Debug().Msg("no cached metrics to archive")
		return 0, nil
	}

	records := make([]entities.MetricsRecord, 0, len(samples))
	for _, m := range samples {
		records = append(records, entities.NewMetricsRecord(m))
	}
	if err := a.archive.SaveBatch(records); err != nil {
		a.cache.Requeue(samples)
		a.log.Error().Err(err).Int("samples", len(samples)).Msg("archiving metrics failed")
		return 0, err
	}
	a.log.Info().Int("samples", len(records)).Msg("archived cached metrics")
	return len(records), nil
}
