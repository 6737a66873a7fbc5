package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wheelio/car-rental-api/internal/domain"
	bookingDomain "github.com/wheelio/car-rental-api/internal/domain/booking"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingNumber     string    `gorm:"uniqueIndex;not null;size:20"`
	UserID            uuid.UUID `gorm:"type:uuid;index;not null"`
	CarID             uuid.UUID `gorm:"type:uuid;index;not null"`
	PickupAt          time.Time `gorm:"not null"`
	DropAt            time.Time `gorm:"not null"`
	TotalDays         int       `gorm:"not null"`
	OriginalAmount    int64     `gorm:"not null"`
	Discount          int64     `gorm:"not null;default:0"`
	TotalAmount       int64     `gorm:"not null"`
	CouponCode        string    `gorm:"size:30"`
	PaymentMethod     string    `gorm:"not null;size:10"`
	PaymentStatus     string    `gorm:"not null;size:15"`
	Status            string    `gorm:"not null;size:15;index"`
	RazorpayOrderID   string    `gorm:"size:50"`
	RazorpayPaymentID string    `gorm:"size:50"`
	Version           int64     `gorm:"not null;default:1"`
	CreatedAt         time.Time `gorm:"not null;index"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of the booking
// repository contract.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// activeOverlapQuery matches active bookings for a car whose closed interval
// [pickup_at, drop_at] overlaps [pickupAt, dropAt].
func activeOverlapQuery(tx *gorm.DB, carID uuid.UUID, pickupAt, dropAt time.Time) *gorm.DB {
	return tx.Model(&BookingModel{}).
		Where("car_id = ?", carID).
		Where("status IN ?", []string{string(bookingDomain.StatusPending), string(bookingDomain.StatusConfirmed)}).
		Where("pickup_at <= ? AND drop_at >= ?", dropAt, pickupAt)
}

// Admit atomically persists a new booking. Inside one transaction it locks
// the car row, rechecks the availability window, inserts the booking, and
// increments the coupon usage counter when a coupon was applied. The car-row
// lock serializes concurrent admissions for the same car, so the recheck
// cannot race with another insert.
func (r *GormBookingRepository) Admit(ctx context.Context, bk *bookingDomain.Booking, couponCode string) error {
	model := toBookingModel(bk)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var car CarModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", bk.CarID()).
			First(&car).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewNotFoundError("Car", bk.CarID().String())
			}
			return fmt.Errorf("failed to lock car row: %w", err)
		}

		var conflicts int64
		if err := activeOverlapQuery(tx, bk.CarID(), bk.PickupAt(), bk.DropAt()).
			Count(&conflicts).Error; err != nil {
			return fmt.Errorf("failed to recheck availability: %w", err)
		}
		if conflicts > 0 {
			return domain.NewConflictError("car is no longer available for the selected dates")
		}

		if err := tx.Create(model).Error; err != nil {
			return fmt.Errorf("failed to save booking: %w", err)
		}

		if couponCode != "" {
			// The guard re-enforces the usage budget at commit time: the
			// evaluation in the service ran on a read outside this
			// transaction, and the car-row lock only serializes per car.
			result := tx.Model(&CouponModel{}).
				Where("code = ?", couponCode).
				Where("usage_limit = 0 OR used_count < usage_limit").
				UpdateColumn("used_count", gorm.Expr("used_count + 1"))
			if result.Error != nil {
				return fmt.Errorf("failed to increment coupon usage: %w", result.Error)
			}
			if result.RowsAffected == 0 {
				var count int64
				if err := tx.Model(&CouponModel{}).Where("code = ?", couponCode).Count(&count).Error; err != nil {
					return fmt.Errorf("failed to check coupon: %w", err)
				}
				if count == 0 {
					return domain.NewNotFoundError("Coupon", couponCode)
				}
				return domain.NewValidationError("Coupon usage limit reached")
			}
		}
		return nil
	})
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByNumber retrieves a booking by its booking number.
func (r *GormBookingRepository) FindByNumber(ctx context.Context, number string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_number = ?", number).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", number)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByUserID retrieves a renter's bookings with pagination, newest first.
func (r *GormBookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, page, limit int) (*domain.PaginatedResult[*bookingDomain.Booking], error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count user bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find user bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, err
	}
	return domain.NewPaginatedResult(bookings, total, page, limit), nil
}

// ListAll retrieves bookings with optional filters and pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, filter bookingDomain.ListFilter, page, limit int) (*domain.PaginatedResult[*bookingDomain.Booking], error) {
	query := r.db.WithContext(ctx).Model(&BookingModel{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.CarID != uuid.Nil {
		query = query.Where("car_id = ?", filter.CarID)
	}
	if filter.UserID != uuid.Nil {
		query = query.Where("user_id = ?", filter.UserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings, err := toDomainBookings(models)
	if err != nil {
		return nil, err
	}
	return domain.NewPaginatedResult(bookings, total, page, limit), nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	// Only update if the stored version matches (current version - 1, since
	// IncrementVersion was called before Update).
	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"status":              model.Status,
			"payment_status":      model.PaymentStatus,
			"razorpay_order_id":   model.RazorpayOrderID,
			"razorpay_payment_id": model.RazorpayPaymentID,
			"version":             model.Version,
			"updated_at":          model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// HasOverlap reports whether any active booking for the car overlaps the
// closed interval [pickupAt, dropAt].
func (r *GormBookingRepository) HasOverlap(ctx context.Context, carID uuid.UUID, pickupAt, dropAt time.Time) (bool, error) {
	var count int64
	if err := activeOverlapQuery(r.db.WithContext(ctx), carID, pickupAt, dropAt).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check overlap: %w", err)
	}
	return count > 0, nil
}

// FindOverlappingCarIDs returns IDs of cars with an active booking
// overlapping the given window.
func (r *GormBookingRepository) FindOverlappingCarIDs(ctx context.Context, pickupAt, dropAt time.Time) ([]uuid.UUID, error) {
	var carIDs []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Distinct("car_id").
		Where("status IN ?", []string{string(bookingDomain.StatusPending), string(bookingDomain.StatusConfirmed)}).
		Where("pickup_at <= ? AND drop_at >= ?", dropAt, pickupAt).
		Pluck("car_id", &carIDs).Error; err != nil {
		return nil, fmt.Errorf("failed to find overlapping car IDs: %w", err)
	}
	return carIDs, nil
}

// CancelStale cancels every pending booking created before the cutoff in one
// batch, marking payments failed, and returns the affected bookings.
func (r *GormBookingRepository) CancelStale(ctx context.Context, cutoff time.Time) ([]*bookingDomain.Booking, error) {
	var cancelled []*bookingDomain.Booking

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var models []BookingModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("status = ? AND created_at < ?", string(bookingDomain.StatusPending), cutoff).
			Find(&models).Error; err != nil {
			return fmt.Errorf("failed to find stale bookings: %w", err)
		}
		if len(models) == 0 {
			return nil
		}

		ids := make([]uuid.UUID, len(models))
		for i, m := range models {
			ids[i] = m.ID
		}

		now := time.Now().UTC()
		if err := tx.Model(&BookingModel{}).
			Where("id IN ?", ids).
			Updates(map[string]interface{}{
				"status":         string(bookingDomain.StatusCancelled),
				"payment_status": string(bookingDomain.PaymentFailed),
				"version":        gorm.Expr("version + 1"),
				"updated_at":     now,
			}).Error; err != nil {
			return fmt.Errorf("failed to cancel stale bookings: %w", err)
		}

		for _, m := range models {
			m.Status = string(bookingDomain.StatusCancelled)
			m.PaymentStatus = string(bookingDomain.PaymentFailed)
			m.Version++
			m.UpdatedAt = now
			bk, err := toDomainBooking(&m)
			if err != nil {
				return err
			}
			cancelled = append(cancelled, bk)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[bookingDomain.BookingStatus]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[bookingDomain.BookingStatus]int64)
	for _, sc := range results {
		counts[bookingDomain.BookingStatus(sc.Status)] = sc.Count
	}
	return counts, nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:                bk.ID(),
		BookingNumber:     bk.BookingNumber(),
		UserID:            bk.UserID(),
		CarID:             bk.CarID(),
		PickupAt:          bk.PickupAt(),
		DropAt:            bk.DropAt(),
		TotalDays:         bk.TotalDays(),
		OriginalAmount:    bk.OriginalAmount(),
		Discount:          bk.Discount(),
		TotalAmount:       bk.TotalAmount(),
		CouponCode:        bk.CouponCode(),
		PaymentMethod:     string(bk.PaymentMethod()),
		PaymentStatus:     string(bk.PaymentStatus()),
		Status:            string(bk.Status()),
		RazorpayOrderID:   bk.RazorpayOrderID(),
		RazorpayPaymentID: bk.RazorpayPaymentID(),
		Version:           bk.Version(),
		CreatedAt:         bk.CreatedAt(),
		UpdatedAt:         bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}
	method, err := bookingDomain.ParsePaymentMethod(m.PaymentMethod)
	if err != nil {
		return nil, err
	}

	return bookingDomain.Reconstruct(
		m.ID,
		m.BookingNumber,
		m.UserID,
		m.CarID,
		m.PickupAt,
		m.DropAt,
		m.TotalDays,
		m.OriginalAmount,
		m.Discount,
		m.TotalAmount,
		m.CouponCode,
		method,
		bookingDomain.PaymentStatus(m.PaymentStatus),
		status,
		m.RazorpayOrderID,
		m.RazorpayPaymentID,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel) ([]*bookingDomain.Booking, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, err
		}
		bookings[i] = bk
	}
	return bookings, nil
}
