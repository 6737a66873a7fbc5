package application

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wheelio/car-rental-api/internal/domain"
	carDomain "github.com/wheelio/car-rental-api/internal/domain/car"
)

func newTestCarService() (*CarService, *MockCarRepo, *MockBookingRepo) {
	cars := new(MockCarRepo)
	bookings := new(MockBookingRepo)
	return NewCarService(cars, bookings, zap.NewNop()), cars, bookings
}

func TestListCars(t *testing.T) {
	ctx := context.Background()

	t.Run("without a window no availability lookup happens", func(t *testing.T) {
		svc, cars, bookings := newTestCarService()
		listed := []*carDomain.Car{availableCar(2500)}

		cars.On("List", mock.Anything, mock.MatchedBy(func(f carDomain.ListFilter) bool {
			return f.AvailableOnly && f.City == "Bengaluru" && len(f.ExcludeCarIDs) == 0
		}), 1, 20).Return(domain.NewPaginatedResult(listed, 1, 1, 20), nil)

		result, err := svc.ListCars(ctx, ListCarsQuery{City: "Bengaluru", Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Len(t, result.Items, 1)
		bookings.AssertNotCalled(t, "FindOverlappingCarIDs", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("date window excludes busy cars", func(t *testing.T) {
		svc, cars, bookings := newTestCarService()
		pickup := tomorrowAt(10, 0)
		drop := pickup.Add(48 * time.Hour)
		busyID := uuid.New()

		bookings.On("FindOverlappingCarIDs", mock.Anything, pickup, drop).Return([]uuid.UUID{busyID}, nil)
		cars.On("List", mock.Anything, mock.MatchedBy(func(f carDomain.ListFilter) bool {
			return len(f.ExcludeCarIDs) == 1 && f.ExcludeCarIDs[0] == busyID
		}), 1, 20).Return(domain.NewPaginatedResult([]*carDomain.Car{}, 0, 1, 20), nil)

		result, err := svc.ListCars(ctx, ListCarsQuery{PickupAt: pickup, DropAt: drop, Page: 1, Limit: 20})
		require.NoError(t, err)
		assert.Empty(t, result.Items)
		bookings.AssertExpectations(t)
	})

	t.Run("inverted window is rejected", func(t *testing.T) {
		svc, _, _ := newTestCarService()
		pickup := tomorrowAt(10, 0)

		_, err := svc.ListCars(ctx, ListCarsQuery{PickupAt: pickup, DropAt: pickup.Add(-time.Hour), Page: 1, Limit: 20})
		require.Error(t, err)
		kind, _ := domain.KindOf(err)
		assert.Equal(t, domain.KindValidation, kind)
	})
}

func TestUpdateCarPartial(t *testing.T) {
	ctx := context.Background()
	svc, cars, _ := newTestCarService()

	car := availableCar(2500)
	cars.On("FindByID", mock.Anything, car.ID).Return(car, nil)
	cars.On("Update", mock.Anything, car).Return(nil)

	newPrice := int64(2800)
	unavailable := false
	dto, err := svc.UpdateCar(ctx, car.ID, UpdateCarRequest{
		PricePerDay: &newPrice,
		Available:   &unavailable,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2800), dto.PricePerDay)
	assert.False(t, dto.Available)
	assert.Equal(t, "Hyundai", dto.Brand)
}
