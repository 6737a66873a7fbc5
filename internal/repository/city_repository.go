package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wheelio/car-rental-api/internal/domain"
	cityDomain "github.com/wheelio/car-rental-api/internal/domain/city"
)

// CityModel is the GORM model for the cities table.
type CityModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"uniqueIndex;not null;size:50"`
	State     string    `gorm:"size:50"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CityModel) TableName() string {
	return "cities"
}

// GormCityRepository is the GORM-based implementation of the city repository
// contract.
type GormCityRepository struct {
	db *gorm.DB
}

// NewGormCityRepository creates a new GormCityRepository.
func NewGormCityRepository(db *gorm.DB) *GormCityRepository {
	return &GormCityRepository{db: db}
}

// Create persists a new city; duplicate names map to a conflict error.
func (r *GormCityRepository) Create(ctx context.Context, c *cityDomain.City) error {
	if err := r.db.WithContext(ctx).Create(toCityModel(c)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError(fmt.Sprintf("city already exists: %s", c.Name))
		}
		return fmt.Errorf("failed to save city: %w", err)
	}
	return nil
}

// FindByID retrieves a city by its unique identifier.
func (r *GormCityRepository) FindByID(ctx context.Context, id uuid.UUID) (*cityDomain.City, error) {
	var model CityModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("City", id.String())
		}
		return nil, fmt.Errorf("failed to find city by ID: %w", err)
	}
	return toDomainCity(&model), nil
}

// FindByName retrieves a city by its exact name (case-insensitive).
func (r *GormCityRepository) FindByName(ctx context.Context, name string) (*cityDomain.City, error) {
	var model CityModel
	if err := r.db.WithContext(ctx).Where("name ILIKE ?", name).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("City", name)
		}
		return nil, fmt.Errorf("failed to find city by name: %w", err)
	}
	return toDomainCity(&model), nil
}

// ListActive retrieves active cities ordered by name.
func (r *GormCityRepository) ListActive(ctx context.Context) ([]*cityDomain.City, error) {
	var models []CityModel
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list active cities: %w", err)
	}
	return toDomainCities(models), nil
}

// ListAll retrieves every city ordered by name (admin).
func (r *GormCityRepository) ListAll(ctx context.Context) ([]*cityDomain.City, error) {
	var models []CityModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	return toDomainCities(models), nil
}

// Update persists changes to an existing city.
func (r *GormCityRepository) Update(ctx context.Context, c *cityDomain.City) error {
	model := toCityModel(c)
	result := r.db.WithContext(ctx).Model(&CityModel{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"name":       model.Name,
		"state":      model.State,
		"active":     model.Active,
		"updated_at": model.UpdatedAt,
	})
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError(fmt.Sprintf("city already exists: %s", c.Name))
		}
		return fmt.Errorf("failed to update city: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("City", c.ID.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toCityModel(c *cityDomain.City) *CityModel {
	return &CityModel{
		ID:        c.ID,
		Name:      c.Name,
		State:     c.State,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func toDomainCity(m *CityModel) *cityDomain.City {
	return &cityDomain.City{
		ID:        m.ID,
		Name:      m.Name,
		State:     m.State,
		Active:    m.Active,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toDomainCities(models []CityModel) []*cityDomain.City {
	cities := make([]*cityDomain.City, len(models))
	for i, m := range models {
		cities[i] = toDomainCity(&m)
	}
	return cities
}
