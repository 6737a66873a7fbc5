package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wheelio/car-rental-api/internal/domain"
	userDomain "github.com/wheelio/car-rental-api/internal/domain/user"
	"github.com/wheelio/car-rental-api/internal/mailer"
	"github.com/wheelio/car-rental-api/internal/pkg/auth"
)

// RegisterRequest holds the data needed to register a customer.
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest holds the credentials for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries a refresh token to exchange for new tokens.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ForgotPasswordRequest starts a password reset.
type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// ResetPasswordRequest completes a password reset.
type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
}

// CreateAdminRequest holds the data for a super admin creating an admin.
type CreateAdminRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// UserDTO is the response representation of a user.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse carries the authenticated user and their tokens.
type AuthResponse struct {
	User         UserDTO `json:"user"`
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
}

// AuthService is the application service for accounts and sessions.
type AuthService struct {
	users     userDomain.Repository
	jwt       *auth.JWTManager
	mail      mailer.Mailer
	clientURL string
	logger    *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(users userDomain.Repository, jwt *auth.JWTManager, mail mailer.Mailer, clientURL string, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, jwt: jwt, mail: mail, clientURL: clientURL, logger: logger}
}

// Register creates a customer account and logs it in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	u, err := userDomain.New(req.Name, req.Email, req.Password, auth.RoleCustomer)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.issueTokens(u)
}

// Login authenticates by email and password. Unknown email and wrong
// password return the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewUnauthorizedError("invalid email or password")
		}
		return nil, err
	}
	if !u.CheckPassword(req.Password) {
		return nil, domain.NewUnauthorizedError("invalid email or password")
	}
	return s.issueTokens(u)
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	claims, err := s.jwt.VerifyRefresh(req.RefreshToken)
	if err != nil {
		return nil, domain.NewUnauthorizedError("invalid refresh token")
	}
	u, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewUnauthorizedError("invalid refresh token")
		}
		return nil, err
	}
	return s.issueTokens(u)
}

// Me retrieves the authenticated user's profile.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := toUserDTO(u)
	return &dto, nil
}

// ForgotPassword issues a reset token and emails the reset link. An unknown
// email is reported as success so the endpoint cannot be used to probe for
// accounts.
func (s *AuthService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) error {
	u, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}

	token, err := u.IssueResetToken()
	if err != nil {
		return err
	}
	if err := s.users.Update(ctx, u); err != nil {
		return err
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.clientURL, token)
	if err := s.mail.SendPasswordReset(ctx, u.Email, u.Name, resetLink); err != nil {
		s.logger.Error("failed to send password reset email",
			zap.String("user_id", u.ID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

// ResetPassword sets a new password for the user holding the reset token.
func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	digest := sha256.Sum256([]byte(req.Token))
	u, err := s.users.FindByResetTokenHash(ctx, hex.EncodeToString(digest[:]))
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.NewValidationError("reset token is invalid or has expired")
		}
		return err
	}
	if !u.VerifyResetToken(req.Token, time.Now().UTC()) {
		return domain.NewValidationError("reset token is invalid or has expired")
	}
	if err := u.SetPassword(req.Password); err != nil {
		return err
	}
	return s.users.Update(ctx, u)
}

// CreateAdmin creates an admin account (super admin only).
func (s *AuthService) CreateAdmin(ctx context.Context, req CreateAdminRequest) (*UserDTO, error) {
	u, err := userDomain.New(req.Name, req.Email, req.Password, auth.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	dto := toUserDTO(u)
	return &dto, nil
}

// ListAdmins retrieves all admin accounts (super admin only).
func (s *AuthService) ListAdmins(ctx context.Context) ([]UserDTO, error) {
	admins, err := s.users.ListByRole(ctx, auth.RoleAdmin)
	if err != nil {
		return nil, err
	}
	dtos := make([]UserDTO, len(admins))
	for i, u := range admins {
		dtos[i] = toUserDTO(u)
	}
	return dtos, nil
}

// DeleteAdmin removes an admin account (super admin only). The super admin
// account itself cannot be deleted.
func (s *AuthService) DeleteAdmin(ctx context.Context, id uuid.UUID) error {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if u.IsSuperAdmin() {
		return domain.NewForbiddenError("super admin account cannot be deleted")
	}
	if u.Role != auth.RoleAdmin {
		return domain.NewValidationError("user is not an admin")
	}
	return s.users.Delete(ctx, id)
}

// EnsureSuperAdmin creates the super admin account at startup if it does not
// exist yet.
func (s *AuthService) EnsureSuperAdmin(ctx context.Context, name, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !domain.IsNotFound(err) {
		return err
	}

	u, err := userDomain.New(name, email, password, auth.RoleSuperAdmin)
	if err != nil {
		return err
	}
	if err := s.users.Create(ctx, u); err != nil {
		return err
	}
	s.logger.Info("super admin account created", zap.String("email", u.Email))
	return nil
}

func (s *AuthService) issueTokens(u *userDomain.User) (*AuthResponse, error) {
	accessToken, err := s.jwt.Generate(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwt.GenerateRefresh(u.ID, u.Role)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{
		User:         toUserDTO(u),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

func toUserDTO(u *userDomain.User) UserDTO {
	return UserDTO{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}
