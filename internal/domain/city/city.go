package city

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wheelio/car-rental-api/internal/domain"
)

// City is a location where cars can be listed. Soft-deactivated cities stay
// on record but drop out of the public list.
type City struct {
	ID        uuid.UUID
	Name      string
	State     string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// New validates and creates a city.
func New(name, state string) (*City, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("city name is required")
	}
	now := time.Now().UTC()
	return &City{
		ID:        uuid.New(),
		Name:      name,
		State:     strings.TrimSpace(state),
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Repository defines the persistence contract for cities. Name is unique.
type Repository interface {
	Create(ctx context.Context, c *City) error
	FindByID(ctx context.Context, id uuid.UUID) (*City, error)
	FindByName(ctx context.Context, name string) (*City, error)
	ListActive(ctx context.Context) ([]*City, error)
	ListAll(ctx context.Context) ([]*City, error)
	Update(ctx context.Context, c *City) error
}
