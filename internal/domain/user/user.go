package user

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/wheelio/car-rental-api/internal/domain"
	"github.com/wheelio/car-rental-api/internal/pkg/auth"
)

const resetTokenTTL = 10 * time.Minute

// User is an account holder: a customer, an admin, or the super admin.
// PasswordHash is a bcrypt hash; reset tokens are stored as SHA-256 digests.
type User struct {
	ID             uuid.UUID
	Name           string
	Email          string
	PasswordHash   string
	Role           auth.Role
	ResetTokenHash string
	ResetExpiresAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// New validates input, hashes the password and creates a user.
func New(name, email, password string, role auth.Role) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.NewValidationError("name is required")
	}
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.NewValidationError("invalid email address")
	}
	if len(password) < 8 {
		return nil, domain.NewValidationError("password must be at least 8 characters")
	}
	if !role.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid role: %s", role))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	return &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// NormalizeEmail lower-cases and trims an email for lookup and storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CheckPassword reports whether the plaintext matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetPassword rehashes and replaces the password, clearing any reset token.
func (u *User) SetPassword(password string) error {
	if len(password) < 8 {
		return domain.NewValidationError("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	u.PasswordHash = string(hash)
	u.ResetTokenHash = ""
	u.ResetExpiresAt = time.Time{}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// IssueResetToken generates a password-reset token, stores its SHA-256 digest
// with a 10 minute expiry, and returns the plaintext token for the email link.
func (u *User) IssueResetToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	token := hex.EncodeToString(raw)
	digest := sha256.Sum256([]byte(token))
	u.ResetTokenHash = hex.EncodeToString(digest[:])
	u.ResetExpiresAt = time.Now().UTC().Add(resetTokenTTL)
	u.UpdatedAt = time.Now().UTC()
	return token, nil
}

// VerifyResetToken reports whether the token matches the stored digest and
// has not expired.
func (u *User) VerifyResetToken(token string, now time.Time) bool {
	if u.ResetTokenHash == "" || now.After(u.ResetExpiresAt) {
		return false
	}
	digest := sha256.Sum256([]byte(token))
	return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(digest[:])), []byte(u.ResetTokenHash)) == 1
}

// IsSuperAdmin reports whether the user holds the super admin role.
func (u *User) IsSuperAdmin() bool {
	return u.Role == auth.RoleSuperAdmin
}

// Repository defines the persistence contract for users. Email is unique.
type Repository interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByResetTokenHash(ctx context.Context, tokenHash string) (*User, error)
	ListByRole(ctx context.Context, role auth.Role) ([]*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, id uuid.UUID) error
}
