package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	bookingDomain "github.com/wheelio/car-rental-api/internal/domain/booking"
	"github.com/wheelio/car-rental-api/internal/events"
)

// Reaper cancels pending bookings that were never paid. It runs once at
// start and then on the configured cron schedule; a failed sweep is retried
// on the next tick.
type Reaper struct {
	bookings       bookingDomain.Repository
	publisher      *events.Publisher
	staleThreshold time.Duration
	schedule       string
	cron           *cron.Cron
	logger         *zap.Logger
}

// NewReaper creates a Reaper. Schedule is a cron spec such as "@every 1m".
func NewReaper(
	bookings bookingDomain.Repository,
	publisher *events.Publisher,
	schedule string,
	staleThreshold time.Duration,
	logger *zap.Logger,
) *Reaper {
	return &Reaper{
		bookings:       bookings,
		publisher:      publisher,
		staleThreshold: staleThreshold,
		schedule:       schedule,
		cron:           cron.New(),
		logger:         logger,
	}
}

// Start runs one sweep immediately and schedules the recurring sweeps.
func (r *Reaper) Start(ctx context.Context) error {
	r.Sweep(ctx)

	if _, err := r.cron.AddFunc(r.schedule, func() { r.Sweep(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule reaper: %w", err)
	}
	r.cron.Start()
	r.logger.Info("stale booking reaper started",
		zap.String("schedule", r.schedule),
		zap.Duration("stale_threshold", r.staleThreshold),
	)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (r *Reaper) Stop() {
	<-r.cron.Stop().Done()
	r.logger.Info("stale booking reaper stopped")
}

// Sweep cancels every pending booking older than the stale threshold and
// publishes a cancellation event for each.
func (r *Reaper) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-r.staleThreshold)

	cancelled, err := r.bookings.CancelStale(ctx, cutoff)
	if err != nil {
		r.logger.Error("stale booking sweep failed", zap.Error(err))
		return
	}
	if len(cancelled) == 0 {
		return
	}

	for _, bk := range cancelled {
		r.publisher.Publish(ctx, events.BookingCancelled, events.BookingEvent{
			BookingID:     bk.ID(),
			BookingNumber: bk.BookingNumber(),
			UserID:        bk.UserID(),
			CarID:         bk.CarID(),
			Status:        string(bk.Status()),
			PaymentStatus: string(bk.PaymentStatus()),
			TotalAmount:   bk.TotalAmount(),
			Reason:        "payment not completed in time",
			OccurredAt:    time.Now().UTC(),
		})
	}

	r.logger.Info("cancelled stale bookings", zap.Int("count", len(cancelled)))
}
