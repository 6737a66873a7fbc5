package coupon

import (
	"context"

	"github.com/google/uuid"

	"github.com/wheelio/car-rental-api/internal/domain"
)

// Repository defines the persistence contract for coupons.
type Repository interface {
	Create(ctx context.Context, c *Coupon) error
	FindByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	ListAll(ctx context.Context, page, limit int) (*domain.PaginatedResult[*Coupon], error)
	// ListActive returns active coupons whose validity window contains now.
	ListActive(ctx context.Context) ([]*Coupon, error)
	Update(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error
}
