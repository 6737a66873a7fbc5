package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wheelio/car-rental-api/internal/domain"
	bookingDomain "github.com/wheelio/car-rental-api/internal/domain/booking"
	carDomain "github.com/wheelio/car-rental-api/internal/domain/car"
	reviewDomain "github.com/wheelio/car-rental-api/internal/domain/review"
)

// CreateReviewRequest holds the data needed to review a completed booking.
type CreateReviewRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
	Rating    int       `json:"rating" binding:"required,min=1,max=5"`
	Comment   string    `json:"comment"`
}

// ReviewDTO is the response representation of a review.
type ReviewDTO struct {
	ID        uuid.UUID `json:"id"`
	BookingID uuid.UUID `json:"booking_id"`
	CarID     uuid.UUID `json:"car_id"`
	UserID    uuid.UUID `json:"user_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ReviewService is the application service for car reviews.
type ReviewService struct {
	reviews  reviewDomain.Repository
	bookings bookingDomain.Repository
	cars     carDomain.Repository
	logger   *zap.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(
	reviews reviewDomain.Repository,
	bookings bookingDomain.Repository,
	cars carDomain.Repository,
	logger *zap.Logger,
) *ReviewService {
	return &ReviewService{reviews: reviews, bookings: bookings, cars: cars, logger: logger}
}

// CreateReview records a review for the caller's completed booking and folds
// the rating into the car's running average.
func (s *ReviewService) CreateReview(ctx context.Context, userID uuid.UUID, req CreateReviewRequest) (*ReviewDTO, error) {
	bk, err := s.bookings.FindByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if !bk.IsOwnedBy(userID) {
		return nil, domain.NewForbiddenError("you can only review your own bookings")
	}
	if bk.Status() != bookingDomain.StatusCompleted {
		return nil, domain.NewValidationError("only completed bookings can be reviewed")
	}

	rv, err := reviewDomain.New(bk.ID(), bk.CarID(), userID, req.Rating, req.Comment)
	if err != nil {
		return nil, err
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		return nil, err
	}

	car, err := s.cars.FindByID(ctx, bk.CarID())
	if err != nil {
		return nil, err
	}
	if err := car.AddRating(req.Rating); err != nil {
		return nil, err
	}
	if err := s.cars.Update(ctx, car); err != nil {
		s.logger.Error("failed to update car rating",
			zap.String("car_id", car.ID.String()),
			zap.Error(err),
		)
	}

	result := toReviewDTO(rv)
	return &result, nil
}

// ListCarReviews retrieves a car's reviews with pagination.
func (s *ReviewService) ListCarReviews(ctx context.Context, carID uuid.UUID, page, limit int) (*domain.PaginatedResult[ReviewDTO], error) {
	result, err := s.reviews.ListByCarID(ctx, carID, page, limit)
	if err != nil {
		return nil, err
	}
	return mapPaginated(result, toReviewDTO), nil
}

func toReviewDTO(rv *reviewDomain.Review) ReviewDTO {
	return ReviewDTO{
		ID:        rv.ID,
		BookingID: rv.BookingID,
		CarID:     rv.CarID,
		UserID:    rv.UserID,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt,
	}
}
