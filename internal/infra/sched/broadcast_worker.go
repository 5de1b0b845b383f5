// File: internal/infra/sched/broadcast_worker.go
package sched

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-group-warden/internal/usecase"
)

// BroadcastWorker periodically re-sends due recurring messages via the use
// case. The first scan waits initialDelay so the transport is fully up
// before the first burst of sends.
type BroadcastWorker struct {
	interval     time.Duration
	initialDelay time.Duration
	broadcastUC  usecase.BroadcastUseCase
	log          *zerolog.Logger
}

func NewBroadcastWorker(interval, initialDelay time.Duration, broadcastUC usecase.BroadcastUseCase, logger *zerolog.Logger) *BroadcastWorker {
	bwLog := logger.With().Str("component", "BroadcastWorker").Logger()
	return &BroadcastWorker{
		interval:     interval,
		initialDelay: initialDelay,
		broadcastUC:  broadcastUC,
		log:          &bwLog,
	}
}

func (w *BroadcastWorker) Run(ctx context.Context) error {
	w.log.Info().Dur("interval", w.interval).Msg("Starting broadcast worker")

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(w.initialDelay):
	}
	w.runOnce(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping broadcast worker")
			return ctx.Err()
		case <-ticker.C:
			w.runOnce(ctx)
		}
	}
}

// runOnce bounds a scan to 1.5 ticks so a slow Telegram API cannot stack
// overlapping scans.
func (w *BroadcastWorker) runOnce(ctx context.Context) {
	scanCtx, cancel := context.WithTimeout(ctx, w.interval+w.interval/2)
	defer cancel()

	n, err := w.broadcastUC.RunDue(scanCtx, time.Now())
	if err != nil {
		w.log.Error().Err(err).Msg("broadcast worker error")
	}
	if n > 0 {
		w.log.Info().Int("count", n).Msg("recurring messages sent")
	}
}
