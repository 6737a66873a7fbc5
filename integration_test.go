//go:build integration

package main_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wheelio/car-rental-api/internal/application"
	"github.com/wheelio/car-rental-api/internal/domain"
	bookingDomain "github.com/wheelio/car-rental-api/internal/domain/booking"
	"github.com/wheelio/car-rental-api/internal/events"
)

// TestAdmission_SecondOverlappingBookingConflicts verifies that once a
// booking holds a car for a window, a second booking for an overlapping
// window is rejected, and that admission publishes booking.created.
func TestAdmission_SecondOverlappingBookingConflicts(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ctx := context.Background()
	car := seedCar(t, stack.CarRepo, 1800)

	now := time.Now()
	pickup := time.Date(now.Year(), now.Month(), now.Day()+1, 10, 0, 0, 0, now.Location())
	drop := pickup.Add(25 * time.Hour)

	first, err := stack.Bookings.CreateBooking(ctx, uuid.New(), application.CreateBookingRequest{
		CarID:         car.ID,
		PickupAt:      pickup,
		DropAt:        drop,
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, first.TotalDays)
	assert.Equal(t, int64(3600), first.TotalAmount)

	// Second renter asks for a window starting inside the first one.
	_, err = stack.Bookings.CreateBooking(ctx, uuid.New(), application.CreateBookingRequest{
		CarID:         car.ID,
		PickupAt:      pickup.Add(2 * time.Hour),
		DropAt:        drop.Add(2 * time.Hour),
		PaymentMethod: "card",
	})
	require.Error(t, err)
	kind, ok := domain.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, domain.KindConflict, kind)

	// A window touching the first booking's drop instant also conflicts.
	_, err = stack.Bookings.CreateBooking(ctx, uuid.New(), application.CreateBookingRequest{
		CarID:         car.ID,
		PickupAt:      drop,
		DropAt:        drop.Add(24 * time.Hour),
		PaymentMethod: "card",
	})
	require.Error(t, err)

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingCreated, 15*time.Second)

	var created events.BookingEvent
	require.NoError(t, ce.ParseData(&created))
	assert.Equal(t, first.ID, created.BookingID)
	assert.Equal(t, car.ID, created.CarID)
	assert.Equal(t, "pending", created.Status)
	assert.Equal(t, int64(3600), created.TotalAmount)
}

// TestAdmission_CouponUsageBudgetEnforcedAtCommit verifies that the usage
// counter cannot exceed the coupon's limit even when an admission passed
// evaluation before a competing booking consumed the last use: the guarded
// increment inside the admission transaction rejects it and rolls the
// booking back.
func TestAdmission_CouponUsageBudgetEnforcedAtCommit(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	ctx := context.Background()
	carOne := seedCar(t, stack.CarRepo, 1800)
	carTwo := seedCar(t, stack.CarRepo, 1800)
	seedCoupon(t, stack.CouponRepo, "LASTONE", 1)

	now := time.Now()
	pickup := time.Date(now.Year(), now.Month(), now.Day()+1, 10, 0, 0, 0, now.Location())
	drop := pickup.Add(24 * time.Hour)

	first, err := stack.Bookings.CreateBooking(ctx, uuid.New(), application.CreateBookingRequest{
		CarID:         carOne.ID,
		PickupAt:      pickup,
		DropAt:        drop,
		CouponCode:    "LASTONE",
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(200), first.Discount)

	// A second admission for a different car that already passed coupon
	// evaluation: the commit-time guard must reject it.
	quote := bookingDomain.Quote{Days: 1, Amount: 1800}
	bk, err := bookingDomain.NewBooking(uuid.New(), carTwo.ID, pickup, drop, quote, 200, "LASTONE", bookingDomain.MethodCard)
	require.NoError(t, err)

	err = stack.BookingRepo.Admit(ctx, bk, "LASTONE")
	require.Error(t, err)
	assert.Equal(t, "Coupon usage limit reached", err.Error())

	// The rejected booking was rolled back with the increment.
	_, err = stack.BookingRepo.FindByID(ctx, bk.ID())
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))

	cpn, err := stack.CouponRepo.FindByCode(ctx, "LASTONE")
	require.NoError(t, err)
	assert.Equal(t, 1, cpn.UsedCount)

	// The service path also rejects, now on the fresh read.
	_, err = stack.Bookings.CreateBooking(ctx, uuid.New(), application.CreateBookingRequest{
		CarID:         carTwo.ID,
		PickupAt:      pickup,
		DropAt:        drop,
		CouponCode:    "LASTONE",
		PaymentMethod: "card",
	})
	require.Error(t, err)
	assert.Equal(t, "Coupon usage limit reached", err.Error())
}

// TestReaper_CancelsStalePendingBookings verifies that the reaper cancels a
// pending booking older than the stale threshold, marks its payment failed,
// and publishes booking.cancelled.
func TestReaper_CancelsStalePendingBookings(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupRentalStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	car := seedCar(t, stack.CarRepo, 1800)
	staleID := seedStalePendingBooking(t, infra.DB, car.ID, 30*time.Minute)
	freshID := seedStalePendingBooking(t, infra.DB, car.ID, 2*time.Minute)

	stack.Reaper.Sweep(context.Background())

	model := waitForBookingStatus(t, infra.DB, staleID, "cancelled", 10*time.Second)
	assert.Equal(t, "failed", model.PaymentStatus)
	assert.Equal(t, int64(2), model.Version)

	// The booking inside the grace window is untouched.
	fresh := waitForBookingStatus(t, infra.DB, freshID, "pending", 5*time.Second)
	assert.Equal(t, "pending", fresh.PaymentStatus)

	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingCancelled, 15*time.Second)

	var cancelled events.BookingEvent
	require.NoError(t, ce.ParseData(&cancelled))
	assert.Equal(t, staleID, cancelled.BookingID)
	assert.Equal(t, "payment not completed in time", cancelled.Reason)
}
