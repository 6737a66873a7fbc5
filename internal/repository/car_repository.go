package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wheelio/car-rental-api/internal/domain"
	carDomain "github.com/wheelio/car-rental-api/internal/domain/car"
)

// CarModel is the GORM model for the cars table.
type CarModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	Brand           string    `gorm:"not null;size:50"`
	Model           string    `gorm:"not null;size:50"`
	Year            int       `gorm:"not null"`
	CarType         string    `gorm:"not null;size:30;index"`
	Transmission    string    `gorm:"size:20"`
	FuelType        string    `gorm:"size:20;index"`
	SeatingCapacity int       `gorm:"not null"`
	PricePerDay     int64     `gorm:"not null"`
	City            string    `gorm:"not null;size:50;index"`
	Description     string    `gorm:"size:2000"`
	ImageURL        string    `gorm:"size:500"`
	Available       bool      `gorm:"not null;default:true"`
	Rating          float64   `gorm:"not null;default:0"`
	RatingCount     int       `gorm:"not null;default:0"`
	CreatedAt       time.Time `gorm:"not null"`
	UpdatedAt       time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (CarModel) TableName() string {
	return "cars"
}

// GormCarRepository is the GORM-based implementation of the car repository
// contract.
type GormCarRepository struct {
	db *gorm.DB
}

// NewGormCarRepository creates a new GormCarRepository.
func NewGormCarRepository(db *gorm.DB) *GormCarRepository {
	return &GormCarRepository{db: db}
}

// Create persists a new car.
func (r *GormCarRepository) Create(ctx context.Context, c *carDomain.Car) error {
	if err := r.db.WithContext(ctx).Create(toCarModel(c)).Error; err != nil {
		return fmt.Errorf("failed to save car: %w", err)
	}
	return nil
}

// FindByID retrieves a car by its unique identifier.
func (r *GormCarRepository) FindByID(ctx context.Context, id uuid.UUID) (*carDomain.Car, error) {
	var model CarModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Car", id.String())
		}
		return nil, fmt.Errorf("failed to find car by ID: %w", err)
	}
	return toDomainCar(&model), nil
}

// List retrieves cars matching the filter with pagination.
func (r *GormCarRepository) List(ctx context.Context, filter carDomain.ListFilter, page, limit int) (*domain.PaginatedResult[*carDomain.Car], error) {
	query := r.db.WithContext(ctx).Model(&CarModel{})

	if filter.City != "" {
		query = query.Where("city ILIKE ?", "%"+filter.City+"%")
	}
	if filter.CarType != "" {
		query = query.Where("car_type = ?", filter.CarType)
	}
	if filter.FuelType != "" {
		query = query.Where("fuel_type = ?", filter.FuelType)
	}
	if filter.Transmission != "" {
		query = query.Where("transmission = ?", filter.Transmission)
	}
	if filter.MinSeats > 0 {
		query = query.Where("seating_capacity >= ?", filter.MinSeats)
	}
	if filter.MinPricePerDay > 0 {
		query = query.Where("price_per_day >= ?", filter.MinPricePerDay)
	}
	if filter.MaxPricePerDay > 0 {
		query = query.Where("price_per_day <= ?", filter.MaxPricePerDay)
	}
	if filter.AvailableOnly {
		query = query.Where("available = ?", true)
	}
	if len(filter.ExcludeCarIDs) > 0 {
		query = query.Where("id NOT IN ?", filter.ExcludeCarIDs)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count cars: %w", err)
	}

	switch filter.Sort {
	case carDomain.SortPriceAsc:
		query = query.Order("price_per_day ASC")
	case carDomain.SortPriceDesc:
		query = query.Order("price_per_day DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var models []CarModel
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}

	cars := make([]*carDomain.Car, len(models))
	for i, m := range models {
		cars[i] = toDomainCar(&m)
	}
	return domain.NewPaginatedResult(cars, total, page, limit), nil
}

// Update persists changes to an existing car.
func (r *GormCarRepository) Update(ctx context.Context, c *carDomain.Car) error {
	model := toCarModel(c)
	result := r.db.WithContext(ctx).Model(&CarModel{}).Where("id = ?", c.ID).Updates(map[string]interface{}{
		"brand":            model.Brand,
		"model":            model.Model,
		"year":             model.Year,
		"car_type":         model.CarType,
		"transmission":     model.Transmission,
		"fuel_type":        model.FuelType,
		"seating_capacity": model.SeatingCapacity,
		"price_per_day":    model.PricePerDay,
		"city":             model.City,
		"description":      model.Description,
		"image_url":        model.ImageURL,
		"available":        model.Available,
		"rating":           model.Rating,
		"rating_count":     model.RatingCount,
		"updated_at":       model.UpdatedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update car: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Car", c.ID.String())
	}
	return nil
}

// Delete removes a car.
func (r *GormCarRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&CarModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete car: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("Car", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toCarModel(c *carDomain.Car) *CarModel {
	return &CarModel{
		ID:              c.ID,
		Brand:           c.Brand,
		Model:           c.Model,
		Year:            c.Year,
		CarType:         c.CarType,
		Transmission:    c.Transmission,
		FuelType:        c.FuelType,
		SeatingCapacity: c.SeatingCapacity,
		PricePerDay:     c.PricePerDay,
		City:            c.City,
		Description:     c.Description,
		ImageURL:        c.ImageURL,
		Available:       c.Available,
		Rating:          c.Rating,
		RatingCount:     c.RatingCount,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func toDomainCar(m *CarModel) *carDomain.Car {
	return &carDomain.Car{
		ID:              m.ID,
		Brand:           m.Brand,
		Model:           m.Model,
		Year:            m.Year,
		CarType:         m.CarType,
		Transmission:    m.Transmission,
		FuelType:        m.FuelType,
		SeatingCapacity: m.SeatingCapacity,
		PricePerDay:     m.PricePerDay,
		City:            m.City,
		Description:     m.Description,
		ImageURL:        m.ImageURL,
		Available:       m.Available,
		Rating:          m.Rating,
		RatingCount:     m.RatingCount,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}
