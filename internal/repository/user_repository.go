package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wheelio/car-rental-api/internal/domain"
	userDomain "github.com/wheelio/car-rental-api/internal/domain/user"
	"github.com/wheelio/car-rental-api/internal/pkg/auth"
)

// UserModel is the GORM model for the users table.
type UserModel struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name           string     `gorm:"not null;size:100"`
	Email          string     `gorm:"uniqueIndex;not null;size:255"`
	PasswordHash   string     `gorm:"not null;size:100"`
	Role           string     `gorm:"not null;size:15;index"`
	ResetTokenHash string     `gorm:"size:64;index"`
	ResetExpiresAt *time.Time `gorm:""`
	CreatedAt      time.Time  `gorm:"not null"`
	UpdatedAt      time.Time  `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (UserModel) TableName() string {
	return "users"
}

// GormUserRepository is the GORM-based implementation of the user repository
// contract.
type GormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository creates a new GormUserRepository.
func NewGormUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// Create persists a new user; duplicate emails map to a conflict error.
func (r *GormUserRepository) Create(ctx context.Context, u *userDomain.User) error {
	if err := r.db.WithContext(ctx).Create(toUserModel(u)).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.NewConflictError("email is already registered")
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

// FindByID retrieves a user by its unique identifier.
func (r *GormUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", id.String())
		}
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}
	return toDomainUser(&model), nil
}

// FindByEmail retrieves a user by normalized email.
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).Where("email = ?", userDomain.NormalizeEmail(email)).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", email)
		}
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	return toDomainUser(&model), nil
}

// FindByResetTokenHash retrieves the user holding an unexpired reset token.
func (r *GormUserRepository) FindByResetTokenHash(ctx context.Context, tokenHash string) (*userDomain.User, error) {
	var model UserModel
	if err := r.db.WithContext(ctx).
		Where("reset_token_hash = ? AND reset_expires_at > ?", tokenHash, time.Now().UTC()).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("User", "reset token")
		}
		return nil, fmt.Errorf("failed to find user by reset token: %w", err)
	}
	return toDomainUser(&model), nil
}

// ListByRole retrieves users with the given role, newest first.
func (r *GormUserRepository) ListByRole(ctx context.Context, role auth.Role) ([]*userDomain.User, error) {
	var models []UserModel
	if err := r.db.WithContext(ctx).
		Where("role = ?", string(role)).
		Order("created_at DESC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}

	users := make([]*userDomain.User, len(models))
	for i, m := range models {
		users[i] = toDomainUser(&m)
	}
	return users, nil
}

// Update persists changes to an existing user.
func (r *GormUserRepository) Update(ctx context.Context, u *userDomain.User) error {
	model := toUserModel(u)
	result := r.db.WithContext(ctx).Model(&UserModel{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
		"name":             model.Name,
		"email":            model.Email,
		"password_hash":    model.PasswordHash,
		"role":             model.Role,
		"reset_token_hash": model.ResetTokenHash,
		"reset_expires_at": model.ResetExpiresAt,
		"updated_at":       model.UpdatedAt,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("User", u.ID.String())
	}
	return nil
}

// Delete removes a user.
func (r *GormUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&UserModel{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewNotFoundError("User", id.String())
	}
	return nil
}

// --- Conversion Helpers ---

func toUserModel(u *userDomain.User) *UserModel {
	var resetExpiresAt *time.Time
	if !u.ResetExpiresAt.IsZero() {
		t := u.ResetExpiresAt
		resetExpiresAt = &t
	}
	return &UserModel{
		ID:             u.ID,
		Name:           u.Name,
		Email:          u.Email,
		PasswordHash:   u.PasswordHash,
		Role:           string(u.Role),
		ResetTokenHash: u.ResetTokenHash,
		ResetExpiresAt: resetExpiresAt,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

func toDomainUser(m *UserModel) *userDomain.User {
	var resetExpiresAt time.Time
	if m.ResetExpiresAt != nil {
		resetExpiresAt = *m.ResetExpiresAt
	}
	return &userDomain.User{
		ID:             m.ID,
		Name:           m.Name,
		Email:          m.Email,
		PasswordHash:   m.PasswordHash,
		Role:           auth.Role(m.Role),
		ResetTokenHash: m.ResetTokenHash,
		ResetExpiresAt: resetExpiresAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
