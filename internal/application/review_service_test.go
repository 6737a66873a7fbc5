package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wheelio/car-rental-api/internal/domain"
	bookingDomain "github.com/wheelio/car-rental-api/internal/domain/booking"
	reviewDomain "github.com/wheelio/car-rental-api/internal/domain/review"
)

type reviewServiceMocks struct {
	reviews  *MockReviewRepo
	bookings *MockBookingRepo
	cars     *MockCarRepo
}

func newTestReviewService() (*ReviewService, *reviewServiceMocks) {
	m := &reviewServiceMocks{
		reviews:  new(MockReviewRepo),
		bookings: new(MockBookingRepo),
		cars:     new(MockCarRepo),
	}
	return NewReviewService(m.reviews, m.bookings, m.cars, zap.NewNop()), m
}

func TestCreateReview(t *testing.T) {
	ctx := context.Background()
	owner := uuid.New()

	t.Run("happy path updates the car rating", func(t *testing.T) {
		svc, m := newTestReviewService()
		bk := storedBooking(owner, bookingDomain.StatusCompleted, bookingDomain.MethodCard)
		car := availableCar(2500)
		car.ID = bk.CarID()
		car.Rating = 4
		car.RatingCount = 1

		m.bookings.On("FindByID", mock.Anything, bk.ID()).Return(bk, nil)
		m.reviews.On("Create", mock.Anything, mock.AnythingOfType("*review.Review")).Return(nil)
		m.cars.On("FindByID", mock.Anything, bk.CarID()).Return(car, nil)
		m.cars.On("Update", mock.Anything, car).Return(nil)

		dto, err := svc.CreateReview(ctx, owner, CreateReviewRequest{
			BookingID: bk.ID(),
			Rating:    5,
			Comment:   "smooth pickup, clean car",
		})
		require.NoError(t, err)
		assert.Equal(t, bk.CarID(), dto.CarID)
		assert.Equal(t, 5, dto.Rating)
		assert.Equal(t, 2, car.RatingCount)
		assert.InDelta(t, 4.5, car.Rating, 0.0001)
		m.cars.AssertExpectations(t)
	})

	t.Run("only the renter may review", func(t *testing.T) {
		svc, m := newTestReviewService()
		bk := storedBooking(owner, bookingDomain.StatusCompleted, bookingDomain.MethodCard)

		m.bookings.On("FindByID", mock.Anything, bk.ID()).Return(bk, nil)

		_, err := svc.CreateReview(ctx, uuid.New(), CreateReviewRequest{BookingID: bk.ID(), Rating: 5})
		require.Error(t, err)
		assert.Equal(t, "you can only review your own bookings", err.Error())
		m.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("pending booking cannot be reviewed", func(t *testing.T) {
		svc, m := newTestReviewService()
		bk := storedBooking(owner, bookingDomain.StatusPending, bookingDomain.MethodCard)

		m.bookings.On("FindByID", mock.Anything, bk.ID()).Return(bk, nil)

		_, err := svc.CreateReview(ctx, owner, CreateReviewRequest{BookingID: bk.ID(), Rating: 5})
		require.Error(t, err)
		assert.Equal(t, "only completed bookings can be reviewed", err.Error())
	})

	t.Run("rating update failure does not lose the review", func(t *testing.T) {
		svc, m := newTestReviewService()
		bk := storedBooking(owner, bookingDomain.StatusCompleted, bookingDomain.MethodCard)
		car := availableCar(2500)
		car.ID = bk.CarID()

		m.bookings.On("FindByID", mock.Anything, bk.ID()).Return(bk, nil)
		m.reviews.On("Create", mock.Anything, mock.AnythingOfType("*review.Review")).Return(nil)
		m.cars.On("FindByID", mock.Anything, bk.CarID()).Return(car, nil)
		m.cars.On("Update", mock.Anything, car).Return(domain.NewConflictError("version mismatch"))

		dto, err := svc.CreateReview(ctx, owner, CreateReviewRequest{BookingID: bk.ID(), Rating: 3})
		require.NoError(t, err)
		assert.Equal(t, 3, dto.Rating)
	})
}

func TestListCarReviews(t *testing.T) {
	ctx := context.Background()
	svc, m := newTestReviewService()
	carID := uuid.New()

	rv1, err := reviewDomain.New(uuid.New(), carID, uuid.New(), 5, "great")
	require.NoError(t, err)
	rv2, err := reviewDomain.New(uuid.New(), carID, uuid.New(), 4, "")
	require.NoError(t, err)

	m.reviews.On("ListByCarID", mock.Anything, carID, 1, 20).
		Return(domain.NewPaginatedResult([]*reviewDomain.Review{rv1, rv2}, 2, 1, 20), nil)

	result, err := svc.ListCarReviews(ctx, carID, 1, 20)
	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, rv1.ID, result.Items[0].ID)
	assert.Equal(t, int64(2), result.Total)
}
