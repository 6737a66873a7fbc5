package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wheelio/car-rental-api/internal/domain"
	bookingDomain "github.com/wheelio/car-rental-api/internal/domain/booking"
	carDomain "github.com/wheelio/car-rental-api/internal/domain/car"
)

// CreateCarRequest holds the data needed to list a car.
type CreateCarRequest struct {
	Brand           string `json:"brand" binding:"required"`
	Model           string `json:"model" binding:"required"`
	Year            int    `json:"year" binding:"required"`
	CarType         string `json:"car_type" binding:"required"`
	Transmission    string `json:"transmission"`
	FuelType        string `json:"fuel_type"`
	SeatingCapacity int    `json:"seating_capacity" binding:"required,gt=0"`
	PricePerDay     int64  `json:"price_per_day" binding:"required,gt=0"`
	City            string `json:"city" binding:"required"`
	Description     string `json:"description"`
	ImageURL        string `json:"image_url"`
}

// UpdateCarRequest holds the mutable car fields.
type UpdateCarRequest struct {
	Brand           *string `json:"brand"`
	Model           *string `json:"model"`
	Year            *int    `json:"year"`
	CarType         *string `json:"car_type"`
	Transmission    *string `json:"transmission"`
	FuelType        *string `json:"fuel_type"`
	SeatingCapacity *int    `json:"seating_capacity"`
	PricePerDay     *int64  `json:"price_per_day"`
	City            *string `json:"city"`
	Description     *string `json:"description"`
	ImageURL        *string `json:"image_url"`
	Available       *bool   `json:"available"`
}

// ListCarsQuery holds the public listing filters. When both PickupAt and
// DropAt are set, cars with a conflicting active booking are excluded.
type ListCarsQuery struct {
	City           string
	CarType        string
	FuelType       string
	Transmission   string
	MinSeats       int
	MinPricePerDay int64
	MaxPricePerDay int64
	PickupAt       time.Time
	DropAt         time.Time
	Sort           string
	Page           int
	Limit          int
}

// CarDTO is the response representation of a car.
type CarDTO struct {
	ID              uuid.UUID `json:"id"`
	Brand           string    `json:"brand"`
	Model           string    `json:"model"`
	Year            int       `json:"year"`
	CarType         string    `json:"car_type"`
	Transmission    string    `json:"transmission,omitempty"`
	FuelType        string    `json:"fuel_type,omitempty"`
	SeatingCapacity int       `json:"seating_capacity"`
	PricePerDay     int64     `json:"price_per_day"`
	City            string    `json:"city"`
	Description     string    `json:"description,omitempty"`
	ImageURL        string    `json:"image_url,omitempty"`
	Available       bool      `json:"available"`
	Rating          float64   `json:"rating"`
	RatingCount     int       `json:"rating_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// CarService is the application service for the car catalog.
type CarService struct {
	cars     carDomain.Repository
	bookings bookingDomain.Repository
	logger   *zap.Logger
}

// NewCarService creates a new CarService.
func NewCarService(cars carDomain.Repository, bookings bookingDomain.Repository, logger *zap.Logger) *CarService {
	return &CarService{cars: cars, bookings: bookings, logger: logger}
}

// CreateCar lists a new car (admin).
func (s *CarService) CreateCar(ctx context.Context, req CreateCarRequest) (*CarDTO, error) {
	car, err := carDomain.New(
		req.Brand,
		req.Model,
		req.Year,
		req.CarType,
		req.Transmission,
		req.FuelType,
		req.SeatingCapacity,
		req.PricePerDay,
		req.City,
		req.Description,
		req.ImageURL,
	)
	if err != nil {
		return nil, err
	}
	if err := s.cars.Create(ctx, car); err != nil {
		return nil, err
	}
	result := toCarDTO(car)
	return &result, nil
}

// GetCar retrieves a car by ID.
func (s *CarService) GetCar(ctx context.Context, id uuid.UUID) (*CarDTO, error) {
	car, err := s.cars.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	result := toCarDTO(car)
	return &result, nil
}

// ListCars retrieves cars matching the query. A date window excludes cars
// that already hold a conflicting active booking.
func (s *CarService) ListCars(ctx context.Context, query ListCarsQuery) (*domain.PaginatedResult[CarDTO], error) {
	filter := carDomain.ListFilter{
		City:           query.City,
		CarType:        query.CarType,
		FuelType:       query.FuelType,
		Transmission:   query.Transmission,
		MinSeats:       query.MinSeats,
		MinPricePerDay: query.MinPricePerDay,
		MaxPricePerDay: query.MaxPricePerDay,
		AvailableOnly:  true,
		Sort:           parseSortOrder(query.Sort),
	}

	hasWindow := !query.PickupAt.IsZero() && !query.DropAt.IsZero()
	if hasWindow {
		if !query.DropAt.After(query.PickupAt) {
			return nil, domain.NewValidationError("drop date must be after pickup date")
		}
		busy, err := s.bookings.FindOverlappingCarIDs(ctx, query.PickupAt, query.DropAt)
		if err != nil {
			return nil, err
		}
		filter.ExcludeCarIDs = busy
	}

	result, err := s.cars.List(ctx, filter, query.Page, query.Limit)
	if err != nil {
		return nil, err
	}
	return mapPaginated(result, toCarDTO), nil
}

// UpdateCar applies a partial update to a car (admin).
func (s *CarService) UpdateCar(ctx context.Context, id uuid.UUID, req UpdateCarRequest) (*CarDTO, error) {
	car, err := s.cars.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Brand != nil {
		car.Brand = *req.Brand
	}
	if req.Model != nil {
		car.Model = *req.Model
	}
	if req.Year != nil {
		car.Year = *req.Year
	}
	if req.CarType != nil {
		car.CarType = *req.CarType
	}
	if req.Transmission != nil {
		car.Transmission = *req.Transmission
	}
	if req.FuelType != nil {
		car.FuelType = *req.FuelType
	}
	if req.SeatingCapacity != nil {
		car.SeatingCapacity = *req.SeatingCapacity
	}
	if req.PricePerDay != nil {
		car.PricePerDay = *req.PricePerDay
	}
	if req.City != nil {
		car.City = *req.City
	}
	if req.Description != nil {
		car.Description = *req.Description
	}
	if req.ImageURL != nil {
		car.ImageURL = *req.ImageURL
	}
	if req.Available != nil {
		car.Available = *req.Available
	}
	if car.PricePerDay <= 0 {
		return nil, domain.NewValidationError("price per day must be positive")
	}
	if car.SeatingCapacity < 1 {
		return nil, domain.NewValidationError("seating capacity must be at least 1")
	}
	car.UpdatedAt = time.Now().UTC()

	if err := s.cars.Update(ctx, car); err != nil {
		return nil, err
	}
	result := toCarDTO(car)
	return &result, nil
}

// DeleteCar removes a car listing (admin).
func (s *CarService) DeleteCar(ctx context.Context, id uuid.UUID) error {
	return s.cars.Delete(ctx, id)
}

func parseSortOrder(sort string) carDomain.SortOrder {
	switch sort {
	case "price_asc":
		return carDomain.SortPriceAsc
	case "price_desc":
		return carDomain.SortPriceDesc
	case "newest":
		return carDomain.SortNewest
	default:
		return carDomain.SortByRelevant
	}
}

func toCarDTO(c *carDomain.Car) CarDTO {
	return CarDTO{
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
	}
}
