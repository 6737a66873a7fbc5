package booking

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wheelio/car-rental-api/internal/domain"
)

// ListFilter narrows admin booking listings.
type ListFilter struct {
	Status BookingStatus
	CarID  uuid.UUID
	UserID uuid.UUID
}

// Repository defines the persistence contract for the Booking aggregate.
type Repository interface {
	// Admit atomically persists a new booking: it locks the car row,
	// rechecks for overlapping active bookings, inserts the booking and,
	// when a coupon was applied, increments that coupon's usage counter.
	// Returns a conflict error if an overlap appeared since the caller's
	// availability check, and a validation error if the coupon's usage
	// budget was exhausted by a concurrent admission.
	Admit(ctx context.Context, b *Booking, couponCode string) error

	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	FindByNumber(ctx context.Context, bookingNumber string) (*Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.PaginatedResult[*Booking], error)
	ListAll(ctx context.Context, filter ListFilter, page, limit int) (*domain.PaginatedResult[*Booking], error)

	// Update persists aggregate changes with optimistic locking; returns a
	// conflict error when the stored version does not match.
	Update(ctx context.Context, b *Booking) error

	// HasOverlap reports whether any active (pending or confirmed) booking
	// for the car overlaps the closed interval [pickupAt, dropAt].
	HasOverlap(ctx context.Context, carID uuid.UUID, pickupAt, dropAt time.Time) (bool, error)

	// FindOverlappingCarIDs returns the IDs of cars that have an active
	// booking overlapping the given window, for availability filtering.
	FindOverlappingCarIDs(ctx context.Context, pickupAt, dropAt time.Time) ([]uuid.UUID, error)

	// CancelStale cancels every pending booking created before the cutoff,
	// marking its payment failed, and returns the affected bookings.
	CancelStale(ctx context.Context, cutoff time.Time) ([]*Booking, error)

	CountByStatus(ctx context.Context) (map[BookingStatus]int64, error)
}
