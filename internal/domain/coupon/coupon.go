package coupon

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wheelio/car-rental-api/internal/domain"
)

// DiscountType distinguishes percentage coupons from flat-amount coupons.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// IsValid reports whether the discount type is known.
func (t DiscountType) IsValid() bool {
	return t == DiscountPercentage || t == DiscountFixed
}

// Coupon is a discount code with a validity window, usage budget and
// optional car-type restriction. Amounts are whole rupees.
type Coupon struct {
	ID                 uuid.UUID
	Code               string
	Description        string
	DiscountType       DiscountType
	DiscountValue      int64
	MaxDiscount        int64 // percentage cap in rupees, 0 means uncapped
	MinBookingAmount   int64
	ValidFrom          time.Time
	ValidUntil         time.Time
	UsageLimit         int // 0 means unlimited
	UsedCount          int
	ApplicableCarTypes []string // empty means all car types
	Active             bool
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NormalizeCode upper-cases and trims a coupon code for lookup and storage.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// New validates and creates a coupon.
func New(
	code, description string,
	discountType DiscountType,
	discountValue, maxDiscount, minBookingAmount int64,
	validFrom, validUntil time.Time,
	usageLimit int,
	applicableCarTypes []string,
) (*Coupon, error) {
	code = NormalizeCode(code)
	if code == "" {
		return nil, domain.NewValidationError("coupon code is required")
	}
	if !discountType.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid discount type: %s", discountType))
	}
	if discountValue <= 0 {
		return nil, domain.NewValidationError("discount value must be positive")
	}
	if discountType == DiscountPercentage && discountValue > 100 {
		return nil, domain.NewValidationError("percentage discount cannot exceed 100")
	}
	if maxDiscount < 0 || minBookingAmount < 0 {
		return nil, domain.NewValidationError("amounts cannot be negative")
	}
	if !validUntil.After(validFrom) {
		return nil, domain.NewValidationError("valid-until must be after valid-from")
	}
	if usageLimit < 0 {
		return nil, domain.NewValidationError("usage limit cannot be negative")
	}

	now := time.Now().UTC()
	return &Coupon{
		ID:                 uuid.New(),
		Code:               code,
		Description:        description,
		DiscountType:       discountType,
		DiscountValue:      discountValue,
		MaxDiscount:        maxDiscount,
		MinBookingAmount:   minBookingAmount,
		ValidFrom:          validFrom,
		ValidUntil:         validUntil,
		UsageLimit:         usageLimit,
		ApplicableCarTypes: applicableCarTypes,
		Active:             true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// Evaluate is the single evaluation path for a coupon against a booking
// amount and car type. It checks, in order: active flag, validity window,
// usage budget, minimum amount, car-type applicability. On success it
// returns the discount in rupees, never exceeding the booking amount.
func (c *Coupon) Evaluate(amount int64, carType string, now time.Time) (int64, error) {
	if !c.Active {
		return 0, domain.NewValidationError("Coupon is inactive")
	}
	if now.Before(c.ValidFrom) {
		return 0, domain.NewValidationError("Coupon is not yet valid")
	}
	if now.After(c.ValidUntil) {
		return 0, domain.NewValidationError("Coupon has expired")
	}
	if c.UsageLimit > 0 && c.UsedCount >= c.UsageLimit {
		return 0, domain.NewValidationError("Coupon usage limit reached")
	}
	if amount < c.MinBookingAmount {
		return 0, domain.NewValidationError(fmt.Sprintf("Minimum booking amount is ₹%d", c.MinBookingAmount))
	}
	if len(c.ApplicableCarTypes) > 0 && !c.appliesTo(carType) {
		return 0, domain.NewValidationError("Coupon not applicable to this car type")
	}

	var discount int64
	switch c.DiscountType {
	case DiscountPercentage:
		// round half up
		discount = (amount*c.DiscountValue + 50) / 100
		if c.MaxDiscount > 0 && discount > c.MaxDiscount {
			discount = c.MaxDiscount
		}
	case DiscountFixed:
		discount = c.DiscountValue
	}
	if discount > amount {
		discount = amount
	}
	return discount, nil
}

func (c *Coupon) appliesTo(carType string) bool {
	for _, t := range c.ApplicableCarTypes {
		if strings.EqualFold(t, carType) {
			return true
		}
	}
	return false
}
