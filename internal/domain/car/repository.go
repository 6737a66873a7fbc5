package car

import (
	"context"

	"github.com/google/uuid"

	"github.com/wheelio/car-rental-api/internal/domain"
)

// SortOrder controls car listing order.
type SortOrder string

const (
	SortPriceAsc   SortOrder = "price_asc"
	SortPriceDesc  SortOrder = "price_desc"
	SortNewest     SortOrder = "newest"
	SortByRelevant SortOrder = ""
)

// ListFilter narrows car listings. Zero values mean "no filter".
type ListFilter struct {
	City            string // case-insensitive substring match
	CarType         string
	FuelType        string
	Transmission    string
	MinSeats        int
	MinPricePerDay  int64
	MaxPricePerDay  int64
	AvailableOnly   bool
	ExcludeCarIDs   []uuid.UUID // cars with conflicting bookings, pre-computed
	Sort            SortOrder
}

// Repository defines the persistence contract for cars.
type Repository interface {
	Create(ctx context.Context, c *Car) error
	FindByID(ctx context.Context, id uuid.UUID) (*Car, error)
	List(ctx context.Context, filter ListFilter, page, limit int) (*domain.PaginatedResult[*Car], error)
	Update(ctx context.Context, c *Car) error
	Delete(ctx context.Context, id uuid.UUID) error
}
