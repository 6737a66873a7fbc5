package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wheelio/car-rental-api/internal/domain"
	bookingDomain "github.com/wheelio/car-rental-api/internal/domain/booking"
	carDomain "github.com/wheelio/car-rental-api/internal/domain/car"
	couponDomain "github.com/wheelio/car-rental-api/internal/domain/coupon"
)

// CreateCouponRequest holds the data needed to create a coupon.
type CreateCouponRequest struct {
	Code               string    `json:"code" binding:"required"`
	Description        string    `json:"description"`
	DiscountType       string    `json:"discount_type" binding:"required,oneof=percentage fixed"`
	DiscountValue      int64     `json:"discount_value" binding:"required,gt=0"`
	MaxDiscount        int64     `json:"max_discount"`
	MinBookingAmount   int64     `json:"min_booking_amount"`
	ValidFrom          time.Time `json:"valid_from" binding:"required"`
	ValidUntil         time.Time `json:"valid_until" binding:"required"`
	UsageLimit         int       `json:"usage_limit"`
	ApplicableCarTypes []string  `json:"applicable_car_types"`
}

// UpdateCouponRequest holds the mutable coupon fields.
type UpdateCouponRequest struct {
	Description        *string    `json:"description"`
	MaxDiscount        *int64     `json:"max_discount"`
	MinBookingAmount   *int64     `json:"min_booking_amount"`
	ValidFrom          *time.Time `json:"valid_from"`
	ValidUntil         *time.Time `json:"valid_until"`
	UsageLimit         *int       `json:"usage_limit"`
	ApplicableCarTypes *[]string  `json:"applicable_car_types"`
	Active             *bool      `json:"active"`
}

// ValidateCouponRequest is the payload for the public validate endpoint.
type ValidateCouponRequest struct {
	Code     string    `json:"code" binding:"required"`
	CarID    uuid.UUID `json:"car_id" binding:"required"`
	PickupAt time.Time `json:"pickup_at" binding:"required"`
	DropAt   time.Time `json:"drop_at" binding:"required"`
}

// CouponQuoteDTO is the result of evaluating a coupon against a booking.
type CouponQuoteDTO struct {
	Code           string `json:"code"`
	OriginalAmount int64  `json:"original_amount"`
	Discount       int64  `json:"discount"`
	TotalAmount    int64  `json:"total_amount"`
}

// CouponDTO is the response representation of a coupon.
type CouponDTO struct {
	ID                 uuid.UUID `json:"id"`
	Code               string    `json:"code"`
	Description        string    `json:"description,omitempty"`
	DiscountType       string    `json:"discount_type"`
	DiscountValue      int64     `json:"discount_value"`
	MaxDiscount        int64     `json:"max_discount"`
	MinBookingAmount   int64     `json:"min_booking_amount"`
	ValidFrom          time.Time `json:"valid_from"`
	ValidUntil         time.Time `json:"valid_until"`
	UsageLimit         int       `json:"usage_limit"`
	UsedCount          int       `json:"used_count"`
	ApplicableCarTypes []string  `json:"applicable_car_types,omitempty"`
	Active             bool      `json:"active"`
	CreatedAt          time.Time `json:"created_at"`
}

// CouponService is the application service for coupon management and
// evaluation.
type CouponService struct {
	coupons couponDomain.Repository
	cars    carDomain.Repository
	logger  *zap.Logger
}

// NewCouponService creates a new CouponService.
func NewCouponService(coupons couponDomain.Repository, cars carDomain.Repository, logger *zap.Logger) *CouponService {
	return &CouponService{coupons: coupons, cars: cars, logger: logger}
}

// CreateCoupon creates a coupon (admin).
func (s *CouponService) CreateCoupon(ctx context.Context, req CreateCouponRequest) (*CouponDTO, error) {
	cpn, err := couponDomain.New(
		req.Code,
		req.Description,
		couponDomain.DiscountType(req.DiscountType),
		req.DiscountValue,
		req.MaxDiscount,
		req.MinBookingAmount,
		req.ValidFrom,
		req.ValidUntil,
		req.UsageLimit,
		req.ApplicableCarTypes,
	)
	if err != nil {
		return nil, err
	}
	if err := s.coupons.Create(ctx, cpn); err != nil {
		return nil, err
	}
	result := toCouponDTO(cpn)
	return &result, nil
}

// UpdateCoupon applies a partial update to a coupon (admin).
func (s *CouponService) UpdateCoupon(ctx context.Context, id uuid.UUID, req UpdateCouponRequest) (*CouponDTO, error) {
	cpn, err := s.coupons.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Description != nil {
		cpn.Description = *req.Description
	}
	if req.MaxDiscount != nil {
		cpn.MaxDiscount = *req.MaxDiscount
	}
	if req.MinBookingAmount != nil {
		cpn.MinBookingAmount = *req.MinBookingAmount
	}
	if req.ValidFrom != nil {
		cpn.ValidFrom = *req.ValidFrom
	}
	if req.ValidUntil != nil {
		cpn.ValidUntil = *req.ValidUntil
	}
	if req.UsageLimit != nil {
		cpn.UsageLimit = *req.UsageLimit
	}
	if req.ApplicableCarTypes != nil {
		cpn.ApplicableCarTypes = *req.ApplicableCarTypes
	}
	if req.Active != nil {
		cpn.Active = *req.Active
	}
	if !cpn.ValidUntil.After(cpn.ValidFrom) {
		return nil, domain.NewValidationError("valid-until must be after valid-from")
	}
	cpn.UpdatedAt = time.Now().UTC()

	if err := s.coupons.Update(ctx, cpn); err != nil {
		return nil, err
	}
	result := toCouponDTO(cpn)
	return &result, nil
}

// DeleteCoupon removes a coupon (admin).
func (s *CouponService) DeleteCoupon(ctx context.Context, id uuid.UUID) error {
	return s.coupons.Delete(ctx, id)
}

// ListCoupons retrieves coupons with pagination (admin).
func (s *CouponService) ListCoupons(ctx context.Context, page, limit int) (*domain.PaginatedResult[CouponDTO], error) {
	result, err := s.coupons.ListAll(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	return mapPaginated(result, toCouponDTO), nil
}

// ListActiveCoupons retrieves coupons currently redeemable.
func (s *CouponService) ListActiveCoupons(ctx context.Context) ([]CouponDTO, error) {
	coupons, err := s.coupons.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	dtos := make([]CouponDTO, len(coupons))
	for i, c := range coupons {
		dtos[i] = toCouponDTO(c)
	}
	return dtos, nil
}

// ValidateCoupon evaluates a coupon against a prospective booking without
// consuming usage. Admission re-evaluates with the same rules.
func (s *CouponService) ValidateCoupon(ctx context.Context, req ValidateCouponRequest) (*CouponQuoteDTO, error) {
	if !req.DropAt.After(req.PickupAt) {
		return nil, domain.NewValidationError("drop date must be after pickup date")
	}

	car, err := s.cars.FindByID(ctx, req.CarID)
	if err != nil {
		return nil, err
	}

	cpn, err := s.coupons.FindByCode(ctx, req.Code)
	if err != nil {
		return nil, err
	}

	quote := bookingDomain.Price(req.PickupAt, req.DropAt, car.PricePerDay)
	discount, err := cpn.Evaluate(quote.Amount, car.CarType, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	return &CouponQuoteDTO{
		Code:           cpn.Code,
		OriginalAmount: quote.Amount,
		Discount:       discount,
		TotalAmount:    quote.Amount - discount,
	}, nil
}

func toCouponDTO(c *couponDomain.Coupon) CouponDTO {
	return CouponDTO{
		ID:                 c.ID,
		Code:               c.Code,
		Description:        c.Description,
		DiscountType:       string(c.DiscountType),
		DiscountValue:      c.DiscountValue,
		MaxDiscount:        c.MaxDiscount,
		MinBookingAmount:   c.MinBookingAmount,
		ValidFrom:          c.ValidFrom,
		ValidUntil:         c.ValidUntil,
		UsageLimit:         c.UsageLimit,
		UsedCount:          c.UsedCount,
		ApplicableCarTypes: c.ApplicableCarTypes,
		Active:             c.Active,
		CreatedAt:          c.CreatedAt,
	}
}
