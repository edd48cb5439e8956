package question

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var storedQuestions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "qaws_questions_stored",
	Help: "Number of distinct questions currently persisted.",
})

// StatsWorker periodically refreshes the stored question gauge. The count is
// informational; dedup never depends on it.
type StatsWorker struct {
	store    Store
	logger   zerolog.Logger
	interval time.Duration
}

func NewStatsWorker(store Store, interval time.Duration, logger zerolog.Logger) *StatsWorker {
	if interval <= 0 {
		interval = time.Minute
	}
	return &StatsWorker{
		store:    store,
		logger:   logger.With().Str("component", "question_stats_worker").Logger(),
		interval: interval,
	}
}

// Run blocks until context cancellation.
func (w *StatsWorker) Run(ctx context.Context) error {
	if w.store == nil {
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	// run immediately
	w.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *StatsWorker) tick(ctx context.Context) {
	count, err := w.store.CountAvailable(ctx)
	if err != nil {
		w.logger.Warn().Err(err).Msg("stored question count failed")
		return
	}
	storedQuestions.Set(float64(count))
	w.logger.Debug().Int64("stored", count).Msg("stored question count refreshed")
}
