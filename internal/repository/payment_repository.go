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
	paymentDomain "github.com/wheelio/car-rental-api/internal/domain/payment"
)

// PaymentModel is the GORM model for the payments table.
type PaymentModel struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID         uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	UserID            uuid.UUID `gorm:"type:uuid;index;not null"`
	Amount            int64     `gorm:"not null"`
	Currency          string    `gorm:"not null;size:3;default:'INR'"`
	Method            string    `gorm:"not null;size:10"`
	Status            string    `gorm:"not null;size:15"`
	RazorpayOrderID   string    `gorm:"size:50"`
	RazorpayPaymentID string    `gorm:"size:50"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (PaymentModel) TableName() string {
	return "payments"
}

// GormPaymentRepository is the GORM-based implementation of the payment
// repository contract.
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository.
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Upsert inserts the payment or updates the existing record for the same
// booking. The unique index on booking_id makes settlement idempotent.
func (r *GormPaymentRepository) Upsert(ctx context.Context, p *paymentDomain.Payment) error {
	model := toPaymentModel(p)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "booking_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"amount", "method", "status", "razorpay_order_id", "razorpay_payment_id", "updated_at",
		}),
	}).Create(model).Error
	if err != nil {
		return fmt.Errorf("failed to upsert payment: %w", err)
	}
	return nil
}

// FindByBookingID retrieves the payment record for a booking.
func (r *GormPaymentRepository) FindByBookingID(ctx context.Context, bookingID uuid.UUID) (*paymentDomain.Payment, error) {
	var model PaymentModel
	if err := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Payment", bookingID.String())
		}
		return nil, fmt.Errorf("failed to find payment by booking ID: %w", err)
	}
	return toDomainPayment(&model), nil
}

// --- Conversion Helpers ---

func toPaymentModel(p *paymentDomain.Payment) *PaymentModel {
	return &PaymentModel{
		ID:                p.ID,
		BookingID:         p.BookingID,
		UserID:            p.UserID,
		Amount:            p.Amount,
		Currency:          p.Currency,
		Method:            string(p.Method),
		Status:            string(p.Status),
		RazorpayOrderID:   p.RazorpayOrderID,
		RazorpayPaymentID: p.RazorpayPaymentID,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
	}
}

func toDomainPayment(m *PaymentModel) *paymentDomain.Payment {
	return &paymentDomain.Payment{
		ID:                m.ID,
		BookingID:         m.BookingID,
		UserID:            m.UserID,
		Amount:            m.Amount,
		Currency:          m.Currency,
		Method:            bookingDomain.PaymentMethod(m.Method),
		Status:            bookingDomain.PaymentStatus(m.Status),
		RazorpayOrderID:   m.RazorpayOrderID,
		RazorpayPaymentID: m.RazorpayPaymentID,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
