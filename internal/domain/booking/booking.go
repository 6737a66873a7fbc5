package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/wheelio/car-rental-api/internal/domain"
)

const bookingNumberChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Booking is the aggregate root for the booking domain: one reservation of
// one car by one renter over one pickup/drop window.
type Booking struct {
	id            uuid.UUID
	bookingNumber string
	userID        uuid.UUID
	carID         uuid.UUID

	pickupAt  time.Time
	dropAt    time.Time
	totalDays int

	originalAmount int64
	discount       int64
	totalAmount    int64
	couponCode     string

	paymentMethod PaymentMethod
	paymentStatus PaymentStatus
	status        BookingStatus

	razorpayOrderID   string
	razorpayPaymentID string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingNumber creates a booking number in the format "CR-XXXXXX".
func generateBookingNumber() (string, error) {
	result := make([]byte, 6)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingNumberChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking number: %w", err)
		}
		result[i] = bookingNumberChars[n.Int64()]
	}
	return "CR-" + string(result), nil
}

// NewBooking creates a new Booking aggregate in status pending with payment
// pending. The quote and discount must already be computed; this constructor
// enforces the amount invariants.
func NewBooking(
	userID, carID uuid.UUID,
	pickupAt, dropAt time.Time,
	quote Quote,
	discount int64,
	couponCode string,
	method PaymentMethod,
) (*Booking, error) {
	if userID == uuid.Nil {
		return nil, domain.NewValidationError("user ID is required")
	}
	if carID == uuid.Nil {
		return nil, domain.NewValidationError("car ID is required")
	}
	if !dropAt.After(pickupAt) {
		return nil, domain.NewValidationError("drop date must be after pickup date")
	}
	if quote.Days < 1 {
		return nil, domain.NewValidationError("booking must cover at least one chargeable day")
	}
	if !method.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid payment method: %s", method))
	}
	if discount < 0 || discount > quote.Amount {
		return nil, domain.NewValidationError("discount must be between zero and the booking amount")
	}

	bookingNumber, err := generateBookingNumber()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		id:             uuid.New(),
		bookingNumber:  bookingNumber,
		userID:         userID,
		carID:          carID,
		pickupAt:       pickupAt,
		dropAt:         dropAt,
		totalDays:      quote.Days,
		originalAmount: quote.Amount,
		discount:       discount,
		totalAmount:    quote.Amount - discount,
		couponCode:     couponCode,
		paymentMethod:  method,
		paymentStatus:  PaymentPending,
		status:         StatusPending,
		version:        1,
		createdAt:      now,
		updatedAt:      now,
	}, nil
}

// Reconstruct rebuilds a Booking from persistence data (no validation).
func Reconstruct(
	id uuid.UUID,
	bookingNumber string,
	userID, carID uuid.UUID,
	pickupAt, dropAt time.Time,
	totalDays int,
	originalAmount, discount, totalAmount int64,
	couponCode string,
	method PaymentMethod,
	paymentStatus PaymentStatus,
	status BookingStatus,
	razorpayOrderID, razorpayPaymentID string,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                id,
		bookingNumber:     bookingNumber,
		userID:            userID,
		carID:             carID,
		pickupAt:          pickupAt,
		dropAt:            dropAt,
		totalDays:         totalDays,
		originalAmount:    originalAmount,
		discount:          discount,
		totalAmount:       totalAmount,
		couponCode:        couponCode,
		paymentMethod:     method,
		paymentStatus:     paymentStatus,
		status:            status,
		razorpayOrderID:   razorpayOrderID,
		razorpayPaymentID: razorpayPaymentID,
		version:           version,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingNumber returns the human-readable booking number.
func (b *Booking) BookingNumber() string { return b.bookingNumber }

// UserID returns the renter's user ID.
func (b *Booking) UserID() uuid.UUID { return b.userID }

// CarID returns the booked car's ID.
func (b *Booking) CarID() uuid.UUID { return b.carID }

// PickupAt returns the pickup timestamp.
func (b *Booking) PickupAt() time.Time { return b.pickupAt }

// DropAt returns the drop timestamp.
func (b *Booking) DropAt() time.Time { return b.dropAt }

// TotalDays returns the chargeable day count.
func (b *Booking) TotalDays() int { return b.totalDays }

// OriginalAmount returns the pre-discount amount in rupees.
func (b *Booking) OriginalAmount() int64 { return b.originalAmount }

// Discount returns the applied discount in rupees.
func (b *Booking) Discount() int64 { return b.discount }

// TotalAmount returns the payable amount in rupees.
func (b *Booking) TotalAmount() int64 { return b.totalAmount }

// CouponCode returns the applied coupon code, or empty if none.
func (b *Booking) CouponCode() string { return b.couponCode }

// PaymentMethod returns how the renter chose to pay.
func (b *Booking) PaymentMethod() PaymentMethod { return b.paymentMethod }

// PaymentStatus returns the settlement state of the payment.
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// RazorpayOrderID returns the gateway order id, or empty if no order was created.
func (b *Booking) RazorpayOrderID() string { return b.razorpayOrderID }

// RazorpayPaymentID returns the gateway payment id, or empty if unpaid.
func (b *Booking) RazorpayPaymentID() string { return b.razorpayPaymentID }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// ConfirmPayment transitions the booking to confirmed after gateway
// verification, recording the gateway identifiers and settling the payment.
func (b *Booking) ConfirmPayment(orderID, paymentID string) error {
	if !b.status.CanTransitionTo(StatusConfirmed) {
		return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
	}
	b.status = StatusConfirmed
	b.paymentStatus = PaymentCompleted
	b.razorpayOrderID = orderID
	b.razorpayPaymentID = paymentID
	b.updatedAt = time.Now().UTC()
	return nil
}

// Complete transitions the booking to completed. Cash bookings settle on
// completion, so their payment status flips to completed here.
func (b *Booking) Complete() error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	b.status = StatusCompleted
	if b.paymentMethod == MethodCash {
		b.paymentStatus = PaymentCompleted
	}
	b.updatedAt = time.Now().UTC()
	return nil
}

// Cancel transitions the booking to cancelled if it is not terminal.
func (b *Booking) Cancel() error {
	if !b.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	b.status = StatusCancelled
	b.updatedAt = time.Now().UTC()
	return nil
}

// ChangeStatus applies a guarded transition to the target status, with the
// same side effects as the dedicated transition methods.
func (b *Booking) ChangeStatus(target BookingStatus) error {
	switch target {
	case StatusConfirmed:
		if !b.status.CanTransitionTo(StatusConfirmed) {
			return domain.NewInvalidStateError(string(b.status), string(StatusConfirmed))
		}
		b.status = StatusConfirmed
		b.updatedAt = time.Now().UTC()
		return nil
	case StatusCompleted:
		return b.Complete()
	case StatusCancelled:
		return b.Cancel()
	default:
		return domain.NewInvalidStateError(string(b.status), string(target))
	}
}

// ForceStatus sets any of the four statuses regardless of the transition
// table. Reserved for administrator overrides; the cash-settlement side
// effect of Complete is preserved.
func (b *Booking) ForceStatus(target BookingStatus) error {
	if !target.IsValid() {
		return domain.NewValidationError(fmt.Sprintf("invalid booking status: %s", target))
	}
	b.status = target
	if target == StatusCompleted && b.paymentMethod == MethodCash {
		b.paymentStatus = PaymentCompleted
	}
	b.updatedAt = time.Now().UTC()
	return nil
}

// IsOwnedBy reports whether the booking belongs to the given user.
func (b *Booking) IsOwnedBy(userID uuid.UUID) bool {
	return b.userID == userID
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
