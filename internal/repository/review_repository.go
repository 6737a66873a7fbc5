package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wheelio/car-rental-api/internal/domain"
	reviewDomain "github.com/wheelio/car-rental-api/internal/domain/review"
)

// ReviewModel is the GORM model for the reviews table.
type ReviewModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	CarID     uuid.UUID `gorm:"type:uuid;index;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null"`
	Rating    int       `gorm:"not null"`
	Comment   string    `gorm:"size:2000"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (ReviewModel) TableName() string {
	return "reviews"
}

// GormReviewRepository is the GORM-based implementation of the review
// repository contract.
type GormReviewRepository struct {
	db *gorm.DB
}

// NewGormReviewRepository creates a new GormReviewRepository.
func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

// Create persists a new review; a second review for the same booking maps to
// a conflict error via the unique index.
func (r *GormReviewRepository) Create(ctx context.Context, rv *reviewDomain.Review) error {
	if err := r.db.WithContext(ctx).Create(toReviewModel(rv)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("booking has already been reviewed")
		}
		return fmt.Errorf("failed to save review: %w", err)
	}
	return nil
}

// FindByBookingID retrieves the review for a booking, if any.
func (r *GormReviewRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*reviewDomain.Review, error) {
	var model ReviewModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Review", bookingID.String())
		}
		return nil, fmt.Errorf("failed to find review by booking ID: %w", err)
	}
	return toDomainReview(&model), nil
}

// ListByCarID retrieves a car's reviews with pagination, newest first.
func (r *GormReviewRepository) ListByCarID(ctx context.Context, carID uuid.UUID, page, limit int) (*domain.PaginatedResult[*reviewDomain.Review], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ReviewModel{}).Where("car_id = ?", carID).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count car reviews: %w", err)
	}

	var models []ReviewModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("car_id = ?", carID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list car reviews: %w", err)
	}

	reviews := make([]*reviewDomain.Review, len(models))
	for i, m := range models {
		reviews[i] = toDomainReview(&m)
	}
	return domain.NewPaginatedResult(reviews, total, page, limit), nil
}

// --- Conversion Helpers ---

func toReviewModel(rv *reviewDomain.Review) *ReviewModel {
	return &ReviewModel{
		ID:        rv.ID,
		BookingID: rv.BookingID,
		CarID:     rv.CarID,
		UserID:    rv.UserID,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt,
	}
}

func toDomainReview(m *ReviewModel) *reviewDomain.Review {
	return &reviewDomain.Review{
		ID:        m.ID,
		BookingID: m.BookingID,
		CarID:     m.CarID,
		UserID:    m.UserID,
		Rating:    m.Rating,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
	}
}
