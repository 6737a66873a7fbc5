package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	cityDomain "github.com/wheelio/car-rental-api/internal/domain/city"
)

// CreateCityRequest holds the data needed to add a city.
type CreateCityRequest struct {
	Name  string `json:"name" binding:"required"`
	State string `json:"state"`
}

// UpdateCityRequest holds the mutable city fields. Setting Active to false
// soft-deletes the city from the public list.
type UpdateCityRequest struct {
	Name   *string `json:"name"`
	State  *string `json:"state"`
	Active *bool   `json:"active"`
}

// CityDTO is the response representation of a city.
type CityDTO struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	State  string    `json:"state,omitempty"`
	Active bool      `json:"active"`
}

// CityService is the application service for serviceable cities.
type CityService struct {
	cities cityDomain.Repository
	logger *zap.Logger
}

// NewCityService creates a new CityService.
func NewCityService(cities cityDomain.Repository, logger *zap.Logger) *CityService {
	return &CityService{cities: cities, logger: logger}
}

// CreateCity adds a city (admin).
func (s *CityService) CreateCity(ctx context.Context, req CreateCityRequest) (*CityDTO, error) {
	city, err := cityDomain.New(req.Name, req.State)
	if err != nil {
		return nil, err
	}
	if err := s.cities.Create(ctx, city); err != nil {
		return nil, err
	}
	result := toCityDTO(city)
	return &result, nil
}

// UpdateCity applies a partial update to a city (admin).
func (s *CityService) UpdateCity(ctx context.Context, id uuid.UUID, req UpdateCityRequest) (*CityDTO, error) {
	city, err := s.cities.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		city.Name = *req.Name
	}
	if req.State != nil {
		city.State = *req.State
	}
	if req.Active != nil {
		city.Active = *req.Active
	}
	city.UpdatedAt = time.Now().UTC()

	if err := s.cities.Update(ctx, city); err != nil {
		return nil, err
	}
	result := toCityDTO(city)
	return &result, nil
}

// ListActiveCities retrieves cities open for booking.
func (s *CityService) ListActiveCities(ctx context.Context) ([]CityDTO, error) {
	cities, err := s.cities.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return toCityDTOs(cities), nil
}

// ListAllCities retrieves every city, including inactive ones (admin).
func (s *CityService) ListAllCities(ctx context.Context) ([]CityDTO, error) {
	cities, err := s.cities.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	return toCityDTOs(cities), nil
}

func toCityDTO(c *cityDomain.City) CityDTO {
	return CityDTO{ID: c.ID, Name: c.Name, State: c.State, Active: c.Active}
}

func toCityDTOs(cities []*cityDomain.City) []CityDTO {
	dtos := make([]CityDTO, len(cities))
	for i, c := range cities {
		dtos[i] = toCityDTO(c)
	}
	return dtos
}
