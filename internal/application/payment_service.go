package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wheelio/car-rental-api/internal/domain"
	bookingDomain "github.com/wheelio/car-rental-api/internal/domain/booking"
	paymentDomain "github.com/wheelio/car-rental-api/internal/domain/payment"
	"github.com/wheelio/car-rental-api/internal/events"
	"github.com/wheelio/car-rental-api/internal/gateway"
	"github.com/wheelio/car-rental-api/internal/pkg/auth"
)

// CreateOrderRequest asks the gateway for a checkout order for a booking.
type CreateOrderRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
}

// VerifyPaymentRequest is the checkout callback payload.
type VerifyPaymentRequest struct {
	BookingID         uuid.UUID `json:"booking_id" binding:"required"`
	RazorpayOrderID   string    `json:"razorpay_order_id" binding:"required"`
	RazorpayPaymentID string    `json:"razorpay_payment_id" binding:"required"`
	RazorpaySignature string    `json:"razorpay_signature" binding:"required"`
}

// OrderDTO is the gateway order handed to the checkout client. Amount is in
// paise, as the gateway expects.
type OrderDTO struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// PaymentDTO is the response representation of a payment record.
type PaymentDTO struct {
	ID                uuid.UUID `json:"id"`
	BookingID         uuid.UUID `json:"booking_id"`
	Amount            int64     `json:"amount"`
	Currency          string    `json:"currency"`
	Method            string    `json:"method"`
	Status            string    `json:"status"`
	RazorpayOrderID   string    `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string    `json:"razorpay_payment_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// PaymentService is the application service for gateway checkout and
// payment records.
type PaymentService struct {
	bookings  bookingDomain.Repository
	payments  paymentDomain.Repository
	gateway   gateway.PaymentGateway
	publisher *events.Publisher
	logger    *zap.Logger
}

// NewPaymentService creates a new PaymentService.
func NewPaymentService(
	bookings bookingDomain.Repository,
	payments paymentDomain.Repository,
	gw gateway.PaymentGateway,
	publisher *events.Publisher,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		bookings:  bookings,
		payments:  payments,
		gateway:   gw,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateOrder creates a gateway order for a pending booking. Cash bookings
// settle on completion and never get a gateway order.
func (s *PaymentService) CreateOrder(ctx context.Context, userID uuid.UUID, req CreateOrderRequest) (*OrderDTO, error) {
	bk, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsOwnedBy(userID) {
		return nil, domain.NewForbiddenError("you do not have access to this booking")
	}
	if bk.Status() != bookingDomain.StatusPending {
		return nil, domain.NewInvalidStateError(string(bk.Status()), string(bookingDomain.StatusConfirmed))
	}
	if bk.PaymentMethod() == bookingDomain.MethodCash {
		return nil, domain.NewValidationError("cash bookings are settled on completion")
	}

	order, err := s.gateway.CreateOrder(bk.TotalAmount(), bk.BookingNumber())
	if err != nil {
		return nil, err
	}

	return &OrderDTO{OrderID: order.ID, Amount: order.Amount, Currency: order.Currency}, nil
}

// VerifyPayment checks the checkout callback signature and, on success,
// confirms the booking and records the payment.
func (s *PaymentService) VerifyPayment(ctx context.Context, userID uuid.UUID, req VerifyPaymentRequest) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsOwnedBy(userID) {
		return nil, domain.NewForbiddenError("you do not have access to this booking")
	}

	if !s.gateway.VerifySignature(req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return nil, domain.NewValidationError("payment signature verification failed")
	}

	if err := bk.ConfirmPayment(req.RazorpayOrderID, req.RazorpayPaymentID); err != nil {
		return nil, err
	}
	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	p, err := paymentDomain.New(bk.ID(), bk.UserID(), bk.TotalAmount(), bk.PaymentMethod(), bookingDomain.PaymentCompleted)
	if err != nil {
		return nil, err
	}
	p.RazorpayOrderID = req.RazorpayOrderID
	p.RazorpayPaymentID = req.RazorpayPaymentID
	if err := s.payments.Upsert(ctx, p); err != nil {
		return nil, err
	}

	s.publisher.Publish(ctx, events.BookingConfirmed, events.BookingEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		UserID:        bk.UserID(),
		CarID:         bk.CarID(),
		Status:        string(bk.Status()),
		PaymentStatus: string(bk.PaymentStatus()),
		TotalAmount:   bk.TotalAmount(),
		OccurredAt:    time.Now().UTC(),
	})

	result := toBookingDTO(bk)
	return &result, nil
}

// GetPaymentByBooking retrieves the payment record for a booking, visible to
// the booking's owner or any admin.
func (s *PaymentService) GetPaymentByBooking(ctx context.Context, callerID uuid.UUID, callerRole auth.Role, bookingID uuid.UUID) (*PaymentDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsOwnedBy(callerID) && callerRole == auth.RoleCustomer {
		return nil, domain.NewForbiddenError("you do not have access to this booking")
	}

	p, err := s.payments.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return &PaymentDTO{
		ID:                p.ID,
		BookingID:         p.BookingID,
		Amount:            p.Amount,
		Currency:          p.Currency,
		Method:            string(p.Method),
		Status:            string(p.Status),
		RazorpayOrderID:   p.RazorpayOrderID,
		RazorpayPaymentID: p.RazorpayPaymentID,
		CreatedAt:         p.CreatedAt,
	}, nil
}
