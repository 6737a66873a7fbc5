package review

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wheelio/car-rental-api/internal/domain"
)

// Review is a renter's rating of a car after a completed booking. One review
// per booking.
type Review struct {
	ID        uuid.UUID
	BookingID uuid.UUID
	CarID     uuid.UUID
	UserID    uuid.UUID
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// New validates and creates a review.
func New(bookingID, carID, userID uuid.UUID, rating int, comment string) (*Review, error) {
	if bookingID == uuid.Nil || carID == uuid.Nil || userID == uuid.Nil {
		return nil, domain.NewValidationError("booking, car and user IDs are required")
	}
	if rating < 1 || rating > 5 {
		return nil, domain.NewValidationError("rating must be between 1 and 5")
	}
	return &Review{
		ID:        uuid.New(),
		BookingID: bookingID,
		CarID:     carID,
		UserID:    userID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Repository defines the persistence contract for reviews.
type Repository interface {
	Create(ctx context.Context, r *Review) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*Review, error)
	ListByCarID(ctx context.Context, carID uuid.UUID, page, limit int) (*domain.PaginatedResult[*Review], error)
}
