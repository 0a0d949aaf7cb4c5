package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/splicerhq/groupbuy_api/internal/service"
)

// DealExpiryWorker periodically finalizes deals whose end date has passed.
// Each sweep locks a bounded batch with SKIP LOCKED, so multiple instances
// can run the worker without stepping on each other.
type DealExpiryWorker struct {
	dealSvc   *service.DealService
	interval  time.Duration
	batchSize int
}

// NewDealExpiryWorker constructs a DealExpiryWorker.
func NewDealExpiryWorker(dealSvc *service.DealService, interval time.Duration, batchSize int) *DealExpiryWorker {
	return &DealExpiryWorker{
		dealSvc:   dealSvc,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Start begins the periodic expiry sweep until context is canceled.
func (w *DealExpiryWorker) Start(ctx context.Context) {
	log.Info().
		Dur("interval", w.interval).
		Int("batch_size", w.batchSize).
		Msg("Starting deal expiry worker")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Deal expiry worker stopped")
			return
		}
	}
}

func (w *DealExpiryWorker) run(ctx context.Context) {
	// Drain in batches so one sweep catches up after downtime
	for {
		n, err := w.dealSvc.ExpireDue(ctx, w.batchSize)
		if err != nil {
			log.Error().Err(err).Msg("Deal expiry sweep failed")
			return
		}
		if n == 0 {
			return
		}

		log.Info().Int("count", n).Msg("Finalized expired deals")

		if n < w.batchSize {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}
