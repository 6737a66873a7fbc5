package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/wheelio/car-rental-api/internal/domain"
	bookingDomain "github.com/wheelio/car-rental-api/internal/domain/booking"
	carDomain "github.com/wheelio/car-rental-api/internal/domain/car"
	couponDomain "github.com/wheelio/car-rental-api/internal/domain/coupon"
	paymentDomain "github.com/wheelio/car-rental-api/internal/domain/payment"
	reviewDomain "github.com/wheelio/car-rental-api/internal/domain/review"
	"github.com/wheelio/car-rental-api/internal/gateway"
)

// MockBookingRepo

type MockBookingRepo struct {
	mock.Mock
}

func (m *MockBookingRepo) Admit(ctx context.Context, b *bookingDomain.Booking, couponCode string) error {
	args := m.Called(ctx, b, couponCode)
	return args.Error(0)
}

func (m *MockBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookingDomain.Booking), args.Error(1)
}

func (m *MockBookingRepo) FindByNumber(ctx context.Context, bookingNumber string) (*bookingDomain.Booking, error) {
	args := m.Called(ctx, bookingNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*bookingDomain.Booking), args.Error(1)
}

func (m *MockBookingRepo) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.PaginatedResult[*bookingDomain.Booking], error) {
	args := m.Called(ctx, userID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaginatedResult[*bookingDomain.Booking]), args.Error(1)
}

func (m *MockBookingRepo) ListAll(ctx context.Context, filter bookingDomain.ListFilter, page, limit int) (*domain.PaginatedResult[*bookingDomain.Booking], error) {
	args := m.Called(ctx, filter, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaginatedResult[*bookingDomain.Booking]), args.Error(1)
}

func (m *MockBookingRepo) Update(ctx context.Context, b *bookingDomain.Booking) error {
	args := m.Called(ctx, b)
	return args.Error(0)
}

func (m *MockBookingRepo) HasOverlap(ctx context.Context, carID uuid.UUID, pickupAt, dropAt time.Time) (bool, error) {
	args := m.Called(ctx, carID, pickupAt, dropAt)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepo) FindOverlappingCarIDs(ctx context.Context, pickupAt, dropAt time.Time) ([]uuid.UUID, error) {
	args := m.Called(ctx, pickupAt, dropAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockBookingRepo) CancelStale(ctx context.Context, cutoff time.Time) ([]*bookingDomain.Booking, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*bookingDomain.Booking), args.Error(1)
}

func (m *MockBookingRepo) CountByStatus(ctx context.Context) (map[bookingDomain.BookingStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[bookingDomain.BookingStatus]int64), args.Error(1)
}

// MockCarRepo

type MockCarRepo struct {
	mock.Mock
}

func (m *MockCarRepo) Create(ctx context.Context, c *carDomain.Car) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCarRepo) FindByID(ctx context.Context, id uuid.UUID) (*carDomain.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*carDomain.Car), args.Error(1)
}

func (m *MockCarRepo) List(ctx context.Context, filter carDomain.ListFilter, page, limit int) (*domain.PaginatedResult[*carDomain.Car], error) {
	args := m.Called(ctx, filter, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaginatedResult[*carDomain.Car]), args.Error(1)
}

func (m *MockCarRepo) Update(ctx context.Context, c *carDomain.Car) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCarRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCouponRepo

type MockCouponRepo struct {
	mock.Mock
}

func (m *MockCouponRepo) Create(ctx context.Context, c *couponDomain.Coupon) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCouponRepo) FindByID(ctx context.Context, id uuid.UUID) (*couponDomain.Coupon, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*couponDomain.Coupon), args.Error(1)
}

func (m *MockCouponRepo) FindByCode(ctx context.Context, code string) (*couponDomain.Coupon, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*couponDomain.Coupon), args.Error(1)
}

func (m *MockCouponRepo) ListAll(ctx context.Context, page, limit int) (*domain.PaginatedResult[*couponDomain.Coupon], error) {
	args := m.Called(ctx, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaginatedResult[*couponDomain.Coupon]), args.Error(1)
}

func (m *MockCouponRepo) ListActive(ctx context.Context) ([]*couponDomain.Coupon, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*couponDomain.Coupon), args.Error(1)
}

func (m *MockCouponRepo) Update(ctx context.Context, c *couponDomain.Coupon) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCouponRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPaymentRepo

type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Upsert(ctx context.Context, p *paymentDomain.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*paymentDomain.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentDomain.Payment), args.Error(1)
}

// MockReviewRepo

type MockReviewRepo struct {
	mock.Mock
}

func (m *MockReviewRepo) Create(ctx context.Context, r *reviewDomain.Review) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockReviewRepo) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*reviewDomain.Review, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reviewDomain.Review), args.Error(1)
}

func (m *MockReviewRepo) ListByCarID(ctx context.Context, carID uuid.UUID, page, limit int) (*domain.PaginatedResult[*reviewDomain.Review], error) {
	args := m.Called(ctx, carID, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaginatedResult[*reviewDomain.Review]), args.Error(1)
}

// MockPaymentGateway

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateOrder(amountRupees int64, receipt string) (*gateway.Order, error) {
	args := m.Called(amountRupees, receipt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Order), args.Error(1)
}

func (m *MockPaymentGateway) VerifySignature(orderID, paymentID, signature string) bool {
	args := m.Called(orderID, paymentID, signature)
	return args.Bool(0)
}
