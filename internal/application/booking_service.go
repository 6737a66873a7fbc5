package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wheelio/car-rental-api/internal/domain"
	bookingDomain "github.com/wheelio/car-rental-api/internal/domain/booking"
	carDomain "github.com/wheelio/car-rental-api/internal/domain/car"
	couponDomain "github.com/wheelio/car-rental-api/internal/domain/coupon"
	paymentDomain "github.com/wheelio/car-rental-api/internal/domain/payment"
	"github.com/wheelio/car-rental-api/internal/events"
	"github.com/wheelio/car-rental-api/internal/pkg/auth"
)

const (
	openingHour = 7
	closingHour = 22
)

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	CarID         uuid.UUID `json:"car_id" binding:"required"`
	PickupAt      time.Time `json:"pickup_at" binding:"required"`
	DropAt        time.Time `json:"drop_at" binding:"required"`
	CouponCode    string    `json:"coupon_code"`
	PaymentMethod string    `json:"payment_method" binding:"required"`
}

// UpdateBookingStatusRequest is the admin status-change payload. Force
// bypasses the transition table.
type UpdateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Force  bool   `json:"force"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                uuid.UUID `json:"id"`
	BookingNumber     string    `json:"booking_number"`
	UserID            uuid.UUID `json:"user_id"`
	CarID             uuid.UUID `json:"car_id"`
	PickupAt          time.Time `json:"pickup_at"`
	DropAt            time.Time `json:"drop_at"`
	TotalDays         int       `json:"total_days"`
	OriginalAmount    int64     `json:"original_amount"`
	Discount          int64     `json:"discount"`
	TotalAmount       int64     `json:"total_amount"`
	CouponCode        string    `json:"coupon_code,omitempty"`
	PaymentMethod     string    `json:"payment_method"`
	PaymentStatus     string    `json:"payment_status"`
	Status            string    `json:"status"`
	RazorpayOrderID   string    `json:"razorpay_order_id,omitempty"`
	RazorpayPaymentID string    `json:"razorpay_payment_id,omitempty"`
	Version           int64     `json:"version"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// BookingService is the application service orchestrating booking use cases.
type BookingService struct {
	bookings  bookingDomain.Repository
	cars      carDomain.Repository
	coupons   couponDomain.Repository
	payments  paymentDomain.Repository
	publisher *events.Publisher
	logger    *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	bookings bookingDomain.Repository,
	cars carDomain.Repository,
	coupons couponDomain.Repository,
	payments paymentDomain.Repository,
	publisher *events.Publisher,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		bookings:  bookings,
		cars:      cars,
		coupons:   coupons,
		payments:  payments,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateBooking admits a new booking for the given renter: it validates the
// window, checks availability, prices the rental, evaluates any coupon, and
// persists the booking atomically with the coupon usage increment.
func (s *BookingService) CreateBooking(ctx context.Context, userID uuid.UUID, req CreateBookingRequest) (*BookingDTO, error) {
	if err := validateBookingWindow(req.PickupAt, req.DropAt, time.Now()); err != nil {
		return nil, err
	}

	method, err := bookingDomain.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	car, err := s.cars.FindByID(ctx, req.CarID)
	if err != nil {
		return nil, err
	}
	if !car.Available {
		return nil, domain.NewValidationError("car is not available for booking")
	}

	conflict, err := s.bookings.HasOverlap(ctx, car.ID, req.PickupAt, req.DropAt)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, domain.NewConflictError("car is not available for the selected dates")
	}

	quote := bookingDomain.Price(req.PickupAt, req.DropAt, car.PricePerDay)

	var discount int64
	couponCode := couponDomain.NormalizeCode(req.CouponCode)
	if couponCode != "" {
		cpn, err := s.coupons.FindByCode(ctx, couponCode)
		if err != nil {
			return nil, err
		}
		discount, err = cpn.Evaluate(quote.Amount, car.CarType, time.Now().UTC())
		if err != nil {
			return nil, err
		}
	}

	bk, err := bookingDomain.NewBooking(userID, car.ID, req.PickupAt, req.DropAt, quote, discount, couponCode, method)
	if err != nil {
		return nil, err
	}

	if err := s.bookings.Admit(ctx, bk, couponCode); err != nil {
		return nil, err
	}

	s.publishLifecycleEvent(ctx, events.BookingCreated, bk, "")

	result := toBookingDTO(bk)
	return &result, nil
}

// GetBooking retrieves a booking visible to the caller: the owner, or any
// admin.
func (s *BookingService) GetBooking(ctx context.Context, callerID uuid.UUID, callerRole auth.Role, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsOwnedBy(callerID) && callerRole == auth.RoleCustomer {
		return nil, domain.NewForbiddenError("you do not have access to this booking")
	}
	result := toBookingDTO(bk)
	return &result, nil
}

// ListUserBookings retrieves the caller's own bookings.
func (s *BookingService) ListUserBookings(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	result, err := s.bookings.FindByUserID(ctx, userID, page, limit)
	if err != nil {
		return nil, err
	}
	return mapPaginated(result, toBookingDTO), nil
}

// ListAllBookings retrieves bookings across all users (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, filter bookingDomain.ListFilter, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	result, err := s.bookings.ListAll(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}
	return mapPaginated(result, toBookingDTO), nil
}

// CancelBooking cancels the caller's own booking.
func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsOwnedBy(userID) {
		return nil, domain.NewForbiddenError("you do not have access to this booking")
	}

	if err := bk.Cancel(); err != nil {
		return nil, err
	}
	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	s.publishLifecycleEvent(ctx, events.BookingCancelled, bk, "cancelled by renter")

	result := toBookingDTO(bk)
	return &result, nil
}

// UpdateBookingStatus applies an admin status change. Without force the
// transition table is enforced; with force any of the four statuses can be
// set. Completing a cash booking settles its payment record.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, bookingID uuid.UUID, req UpdateBookingStatusRequest) (*BookingDTO, error) {
	target, err := bookingDomain.ParseBookingStatus(req.Status)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if req.Force {
		if err := bk.ForceStatus(target); err != nil {
			return nil, err
		}
	} else {
		if err := bk.ChangeStatus(target); err != nil {
			return nil, err
		}
	}

	bk.IncrementVersion()
	if err := s.bookings.Update(ctx, bk); err != nil {
		return nil, err
	}

	if target == bookingDomain.StatusCompleted && bk.PaymentMethod() == bookingDomain.MethodCash {
		if err := s.settleCashPayment(ctx, bk); err != nil {
			return nil, err
		}
	}

	switch target {
	case bookingDomain.StatusConfirmed:
		s.publishLifecycleEvent(ctx, events.BookingConfirmed, bk, "")
	case bookingDomain.StatusCompleted:
		s.publishLifecycleEvent(ctx, events.BookingCompleted, bk, "")
	case bookingDomain.StatusCancelled:
		s.publishLifecycleEvent(ctx, events.BookingCancelled, bk, "cancelled by admin")
	}

	result := toBookingDTO(bk)
	return &result, nil
}

// BookingStats returns booking counts grouped by status (admin).
func (s *BookingService) BookingStats(ctx context.Context) (map[bookingDomain.BookingStatus]int64, error) {
	return s.bookings.CountByStatus(ctx)
}

// settleCashPayment upserts the payment record for a completed cash booking.
// The upsert is keyed by booking ID, so repeating the completion is a no-op.
func (s *BookingService) settleCashPayment(ctx context.Context, bk *bookingDomain.Booking) error {
	p, err := paymentDomain.New(bk.ID(), bk.UserID(), bk.TotalAmount(), bookingDomain.MethodCash, bookingDomain.PaymentCompleted)
	if err != nil {
		return err
	}
	if err := s.payments.Upsert(ctx, p); err != nil {
		return fmt.Errorf("failed to settle cash payment: %w", err)
	}
	return nil
}

func (s *BookingService) publishLifecycleEvent(ctx context.Context, eventType string, bk *bookingDomain.Booking, reason string) {
	s.publisher.Publish(ctx, eventType, events.BookingEvent{
		BookingID:     bk.ID(),
		BookingNumber: bk.BookingNumber(),
		UserID:        bk.UserID(),
		CarID:         bk.CarID(),
		Status:        string(bk.Status()),
		PaymentStatus: string(bk.PaymentStatus()),
		TotalAmount:   bk.TotalAmount(),
		Reason:        reason,
		OccurredAt:    time.Now().UTC(),
	})
}

// validateBookingWindow enforces the admission window rules: pickup not in
// the past (midnight granularity), drop after pickup, and both ends inside
// operating hours.
func validateBookingWindow(pickupAt, dropAt, now time.Time) error {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if pickupAt.Before(today) {
		return domain.NewValidationError("pickup date cannot be in the past")
	}
	if !dropAt.After(pickupAt) {
		return domain.NewValidationError("drop date must be after pickup date")
	}
	if hourOutsideOperating(pickupAt) || hourOutsideOperating(dropAt) {
		return domain.NewValidationError("pickup and drop must be between 7 AM and 10 PM")
	}
	return nil
}

// hourOutsideOperating checks the literal hour of day against the operating
// window. A timestamp at 22:59 passes while 23:00 does not.
func hourOutsideOperating(t time.Time) bool {
	hour := t.Hour()
	return hour < openingHour || hour > closingHour
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:                bk.ID(),
		BookingNumber:     bk.BookingNumber(),
		UserID:            bk.UserID(),
		CarID:             bk.CarID(),
		PickupAt:          bk.PickupAt(),
		DropAt:            bk.DropAt(),
		TotalDays:         bk.TotalDays(),
		OriginalAmount:    bk.OriginalAmount(),
		Discount:          bk.Discount(),
		TotalAmount:       bk.TotalAmount(),
		CouponCode:        bk.CouponCode(),
		PaymentMethod:     string(bk.PaymentMethod()),
		PaymentStatus:     string(bk.PaymentStatus()),
		Status:            string(bk.Status()),
		RazorpayOrderID:   bk.RazorpayOrderID(),
		RazorpayPaymentID: bk.RazorpayPaymentID(),
		Version:           bk.Version(),
		CreatedAt:         bk.CreatedAt(),
		UpdatedAt:         bk.UpdatedAt(),
	}
}

// mapPaginated converts a paginated result of domain entities to DTOs.
func mapPaginated[T any, U any](in *domain.PaginatedResult[T], convert func(T) U) *domain.PaginatedResult[U] {
	items := make([]U, len(in.Items))
	for i, item := range in.Items {
		items[i] = convert(item)
	}
	return domain.NewPaginatedResult(items, in.Total, in.Page, in.Limit)
}
