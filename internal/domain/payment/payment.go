package payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/wheelio/car-rental-api/internal/domain"
	"github.com/wheelio/car-rental-api/internal/domain/booking"
)

// Payment is the settlement record for a booking. At most one payment exists
// per booking; repeated settlement attempts update the same record.
type Payment struct {
	ID                uuid.UUID
	BookingID         uuid.UUID
	UserID            uuid.UUID
	Amount            int64 // rupees
	Currency          string
	Method            booking.PaymentMethod
	Status            booking.PaymentStatus
	RazorpayOrderID   string
	RazorpayPaymentID string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// New creates a payment record for a booking.
func New(bookingID, userID uuid.UUID, amount int64, method booking.PaymentMethod, status booking.PaymentStatus) (*Payment, error) {
	if bookingID == uuid.Nil || userID == uuid.Nil {
		return nil, domain.NewValidationError("booking ID and user ID are required")
	}
	if amount < 0 {
		return nil, domain.NewValidationError("amount cannot be negative")
	}
	now := time.Now().UTC()
	return &Payment{
		ID:        uuid.New(),
		BookingID: bookingID,
		UserID:    userID,
		Amount:    amount,
		Currency:  "INR",
		Method:    method,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Repository defines the persistence contract for payments.
type Repository interface {
	// Upsert inserts the payment or, if one already exists for the same
	// booking, updates it in place. Settlement is idempotent per booking.
	Upsert(ctx context.Context, p *Payment) error
	FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*Payment, error)
}
