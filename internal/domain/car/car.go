package car

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wheelio/car-rental-api/internal/domain"
)

// Car is a rentable vehicle listed in a city. PricePerDay is whole rupees.
// Rating is a running average maintained incrementally as reviews arrive.
type Car struct {
	ID              uuid.UUID
	Brand           string
	Model           string
	Year            int
	CarType         string
	Transmission    string
	FuelType        string
	SeatingCapacity int
	PricePerDay     int64
	City            string
	Description     string
	ImageURL        string
	Available       bool
	Rating          float64
	RatingCount     int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// New validates and creates a car listing.
func New(
	brand, model string,
	year int,
	carType, transmission, fuelType string,
	seatingCapacity int,
	pricePerDay int64,
	city, description, imageURL string,
) (*Car, error) {
	if brand == "" || model == "" {
		return nil, domain.NewValidationError("brand and model are required")
	}
	if year < 1980 || year > time.Now().Year()+1 {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid year: %d", year))
	}
	if carType == "" {
		return nil, domain.NewValidationError("car type is required")
	}
	if seatingCapacity < 1 {
		return nil, domain.NewValidationError("seating capacity must be at least 1")
	}
	if pricePerDay <= 0 {
		return nil, domain.NewValidationError("price per day must be positive")
	}
	if city == "" {
		return nil, domain.NewValidationError("city is required")
	}

	now := time.Now().UTC()
	return &Car{
		ID:              uuid.New(),
		Brand:           brand,
		Model:           model,
		Year:            year,
		CarType:         carType,
		Transmission:    transmission,
		FuelType:        fuelType,
		SeatingCapacity: seatingCapacity,
		PricePerDay:     pricePerDay,
		City:            city,
		Description:     description,
		ImageURL:        imageURL,
		Available:       true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// DisplayName returns "Brand Model" for logs and emails.
func (c *Car) DisplayName() string {
	return c.Brand + " " + c.Model
}

// AddRating folds a new review's stars into the running average.
func (c *Car) AddRating(stars int) error {
	if stars < 1 || stars > 5 {
		return domain.NewValidationError("rating must be between 1 and 5")
	}
	total := c.Rating*float64(c.RatingCount) + float64(stars)
	c.RatingCount++
	c.Rating = total / float64(c.RatingCount)
	c.UpdatedAt = time.Now().UTC()
	return nil
}
