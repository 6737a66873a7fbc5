package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wheelio/car-rental-api/internal/domain"
	couponDomain "github.com/wheelio/car-rental-api/internal/domain/coupon"
)

// CouponModel is the GORM model for the coupons table.
type CouponModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Code               string          `gorm:"uniqueIndex;not null;size:30"`
	Description        string          `gorm:"size:255"`
	DiscountType       string          `gorm:"not null;size:15"`
	DiscountValue      int64           `gorm:"not null"`
	MaxDiscount        int64           `gorm:"not null;default:0"`
	MinBookingAmount   int64           `gorm:"not null;default:0"`
	ValidFrom          time.Time       `gorm:"not null"`
	ValidUntil         time.Time       `gorm:"not null"`
	UsageLimit         int             `gorm:"not null;default:0"`
	UsedCount          int             `gorm:"not null;default:0"`
	ApplicableCarTypes json.RawMessage `gorm:"type:jsonb"`
	Active             bool            `gorm:"not null;default:true"`
	CreatedAt          time.Time       `gorm:"not null"`
	UpdatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CouponModel) TableName() string {
	return "coupons"
}

// GormCouponRepository is the GORM-based implementation of the coupon
// repository contract.
type GormCouponRepository struct {
	db *gorm.DB
}

// NewGormCouponRepository creates a new GormCouponRepository.
func NewGormCouponRepository(db *gorm.DB) *GormCouponRepository {
	return &GormCouponRepository{db: db}
}

// Create persists a new coupon; duplicate codes map to a conflict error.
func (r *GormCouponRepository) Create(ctx context.Context, c *couponDomain.Coupon) error {
	model, err := toCouponModel(c)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError(fmt.Sprintf("coupon code already exists: %s", c.Code))
		}
		return fmt.Errorf("failed to save coupon: %w", err)
	}
	return nil
}

// FindByID retrieves a coupon by its unique identifier.
func (r *GormCouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*couponDomain.Coupon, error) {
	var model CouponModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Coupon", id.String())
		}
		return nil, fmt.Errorf("failed to find coupon by ID: %w", err)
	}
	return toDomainCoupon(&model)
}

// FindByCode retrieves a coupon by its normalized code.
func (r *GormCouponRepository) FindByCode(ctx context.Context, code string) (*couponDomain.Coupon, error) {
	var model CouponModel
	if err := r.db.WithContext(ctx).Where("code = ?", couponDomain.NormalizeCode(code)).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Coupon", code)
		}
		return nil, fmt.Errorf("failed to find coupon by code: %w", err)
	}
	return toDomainCoupon(&model)
}

// ListAll retrieves coupons with pagination (admin), newest first.
func (r *GormCouponRepository) ListAll(ctx context.Context, page, limit int) (*domain.PaginatedResult[*couponDomain.Coupon], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&CouponModel{}).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count coupons: %w", err)
	}

	var models []CouponModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list coupons: %w", err)
	}

	coupons := make([]*couponDomain.Coupon, len(models))
	for i, m := range models {
		c, err := toDomainCoupon(&m)
		if err != nil {
			return nil, err
		}
		coupons[i] = c
	}
	return domain.NewPaginatedResult(coupons, total, page, limit), nil
}

// ListActive retrieves active coupons whose validity window contains now.
func (r *GormCouponRepository) ListActive(ctx context.Context) ([]*couponDomain.Coupon, error) {
	now := time.Now().UTC()
	var models []CouponModel
	if err := r.db.WithContext(ctx).
		Where("active = ? AND valid_from <= ? AND valid_until >= ?", true, now, now).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list active coupons: %w", err)
	}

	coupons := make([]*couponDomain.Coupon, len(models))
	for i, m := range models {
		c, err := toDomainCoupon(&m)
		if err != nil {
			return nil, err
		}
		coupons[i] = c
	}
	return coupons, nil
}

// Update persists changes to an existing coupon.
func (r *GormCouponRepository) Update(ctx context.Context, c *couponDomain.Coupon) error {
	model, err := toCouponModel(c)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&CouponModel{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"description":          model.Description,
		"discount_type":        model.DiscountType,
		"discount_value":       model.DiscountValue,
		"max_discount":         model.MaxDiscount,
		"min_booking_amount":   model.MinBookingAmount,
		"valid_from":           model.ValidFrom,
		"valid_until":          model.ValidUntil,
		"usage_limit":          model.UsageLimit,
		"used_count":           model.UsedCount,
		"applicable_car_types": model.ApplicableCarTypes,
		"active":               model.Active,
		"updated_at":           model.UpdatedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Coupon", c.ID.String())
	}
	return nil
}

// Delete removes a coupon.
func (r *GormCouponRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&CouponModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete coupon: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Coupon", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toCouponModel(c *couponDomain.Coupon) (*CouponModel, error) {
	carTypes, err := json.Marshal(c.ApplicableCarTypes)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal car types: %w", err)
	}
	return &CouponModel{
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
		ApplicableCarTypes: carTypes,
		Active:             c.Active,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}, nil
}

func toDomainCoupon(m *CouponModel) (*couponDomain.Coupon, error) {
	var carTypes []string
	if len(m.ApplicableCarTypes) > 0 {
		if err := json.Unmarshal(m.ApplicableCarTypes, &carTypes); err != nil {
			return nil, fmt.Errorf("failed to unmarshal car types: %w", err)
		}
	}
	return &couponDomain.Coupon{
		ID:                 m.ID,
		Code:               m.Code,
		Description:        m.Description,
		DiscountType:       couponDomain.DiscountType(m.DiscountType),
		DiscountValue:      m.DiscountValue,
		MaxDiscount:        m.MaxDiscount,
		MinBookingAmount:   m.MinBookingAmount,
		ValidFrom:          m.ValidFrom,
		ValidUntil:         m.ValidUntil,
		UsageLimit:         m.UsageLimit,
		UsedCount:          m.UsedCount,
		ApplicableCarTypes: carTypes,
		Active:             m.Active,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}, nil
}
