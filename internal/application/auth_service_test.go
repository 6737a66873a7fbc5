package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wheelio/car-rental-api/internal/domain"
	userDomain "github.com/wheelio/car-rental-api/internal/domain/user"
	"github.com/wheelio/car-rental-api/internal/pkg/auth"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *userDomain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *MockUserRepo) FindByEmail(ctx context.Context, email string) (*userDomain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *MockUserRepo) FindByResetTokenHash(ctx context.Context, tokenHash string) (*userDomain.User, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*userDomain.User), args.Error(1)
}

func (m *MockUserRepo) ListByRole(ctx context.Context, role auth.Role) ([]*userDomain.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*userDomain.User), args.Error(1)
}

func (m *MockUserRepo) Update(ctx context.Context, u *userDomain.User) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMailer records password reset sends.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, toEmail, toName, resetLink string) error {
	args := m.Called(ctx, toEmail, toName, resetLink)
	return args.Error(0)
}

func newTestAuthService() (*AuthService, *MockUserRepo, *MockMailer) {
	users := new(MockUserRepo)
	mail := new(MockMailer)
	jwtManager := auth.NewJWTManager("test-secret", time.Hour, 24*time.Hour)
	svc := NewAuthService(users, jwtManager, mail, "https://rental.example.com", zap.NewNop())
	return svc, users, mail
}

func registeredUser(t *testing.T, role auth.Role) *userDomain.User {
	t.Helper()
	u, err := userDomain.New("Asha Rao", "asha@example.com", "sup3rsecret", role)
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newTestAuthService()

	users.On("Create", mock.Anything, mock.MatchedBy(func(u *userDomain.User) bool {
		return u.Role == auth.RoleCustomer && u.Email == "asha@example.com"
	})).Return(nil)

	resp, err := svc.Register(ctx, RegisterRequest{
		Name:     "Asha Rao",
		Email:    "Asha@example.com",
		Password: "sup3rsecret",
	})
	require.NoError(t, err)
	assert.Equal(t, "asha@example.com", resp.User.Email)
	assert.Equal(t, string(auth.RoleCustomer), resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEqual(t, resp.AccessToken, resp.RefreshToken)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		svc, users, _ := newTestAuthService()
		u := registeredUser(t, auth.RoleCustomer)

		users.On("FindByEmail", mock.Anything, "asha@example.com").Return(u, nil)

		resp, err := svc.Login(ctx, LoginRequest{Email: "asha@example.com", Password: "sup3rsecret"})
		require.NoError(t, err)
		assert.Equal(t, u.ID, resp.User.ID)
	})

	t.Run("wrong password and unknown email are indistinguishable", func(t *testing.T) {
		svc, users, _ := newTestAuthService()
		u := registeredUser(t, auth.RoleCustomer)

		users.On("FindByEmail", mock.Anything, "asha@example.com").Return(u, nil)
		users.On("FindByEmail", mock.Anything, "nobody@example.com").
			Return(nil, domain.NewNotFoundError("User", "nobody@example.com"))

		_, errWrongPassword := svc.Login(ctx, LoginRequest{Email: "asha@example.com", Password: "wrong"})
		_, errUnknownEmail := svc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "whatever1"})

		require.Error(t, errWrongPassword)
		require.Error(t, errUnknownEmail)
		assert.Equal(t, errWrongPassword.Error(), errUnknownEmail.Error())
	})
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newTestAuthService()
	u := registeredUser(t, auth.RoleCustomer)

	users.On("Create", mock.Anything, mock.Anything).Return(nil)
	users.On("FindByEmail", mock.Anything, u.Email).Return(u, nil)
	users.On("FindByID", mock.Anything, u.ID).Return(u, nil)

	login, err := svc.Login(ctx, LoginRequest{Email: u.Email, Password: "sup3rsecret"})
	require.NoError(t, err)

	t.Run("refresh token yields a new pair", func(t *testing.T) {
		resp, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
		require.NoError(t, err)
		assert.Equal(t, u.ID, resp.User.ID)
		assert.NotEmpty(t, resp.AccessToken)
	})

	t.Run("access token is not accepted as refresh token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: login.AccessToken})
		require.Error(t, err)
		kind, _ := domain.KindOf(err)
		assert.Equal(t, domain.KindUnauthorized, kind)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := svc.Refresh(ctx, RefreshRequest{RefreshToken: "not-a-token"})
		assert.Error(t, err)
	})
}

func TestForgotPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("sends a reset link", func(t *testing.T) {
		svc, users, mail := newTestAuthService()
		u := registeredUser(t, auth.RoleCustomer)

		users.On("FindByEmail", mock.Anything, u.Email).Return(u, nil)
		users.On("Update", mock.Anything, u).Return(nil)
		mail.On("SendPasswordReset", mock.Anything, u.Email, u.Name, mock.MatchedBy(func(link string) bool {
			return strings.HasPrefix(link, "https://rental.example.com/reset-password?token=")
		})).Return(nil)

		require.NoError(t, svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: u.Email}))
		assert.NotEmpty(t, u.ResetTokenHash)
		mail.AssertExpectations(t)
	})

	t.Run("unknown email reports success without sending", func(t *testing.T) {
		svc, users, mail := newTestAuthService()

		users.On("FindByEmail", mock.Anything, "nobody@example.com").
			Return(nil, domain.NewNotFoundError("User", "nobody@example.com"))

		require.NoError(t, svc.ForgotPassword(ctx, ForgotPasswordRequest{Email: "nobody@example.com"}))
		mail.AssertNotCalled(t, "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token sets the new password", func(t *testing.T) {
		svc, users, _ := newTestAuthService()
		u := registeredUser(t, auth.RoleCustomer)

		token, err := u.IssueResetToken()
		require.NoError(t, err)

		users.On("FindByResetTokenHash", mock.Anything, u.ResetTokenHash).Return(u, nil)
		users.On("Update", mock.Anything, u).Return(nil)

		require.NoError(t, svc.ResetPassword(ctx, ResetPasswordRequest{Token: token, Password: "an0thersecret"}))
		assert.True(t, u.CheckPassword("an0thersecret"))
		assert.Empty(t, u.ResetTokenHash)
	})

	t.Run("unknown token", func(t *testing.T) {
		svc, users, _ := newTestAuthService()

		users.On("FindByResetTokenHash", mock.Anything, mock.Anything).
			Return(nil, domain.NewNotFoundError("User", "token"))

		err := svc.ResetPassword(ctx, ResetPasswordRequest{Token: "bogus", Password: "an0thersecret"})
		require.Error(t, err)
		assert.Equal(t, "reset token is invalid or has expired", err.Error())
	})
}

func TestDeleteAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("super admin cannot be deleted", func(t *testing.T) {
		svc, users, _ := newTestAuthService()
		su := registeredUser(t, auth.RoleSuperAdmin)

		users.On("FindByID", mock.Anything, su.ID).Return(su, nil)

		err := svc.DeleteAdmin(ctx, su.ID)
		require.Error(t, err)
		kind, _ := domain.KindOf(err)
		assert.Equal(t, domain.KindForbidden, kind)
		users.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("customer is not an admin", func(t *testing.T) {
		svc, users, _ := newTestAuthService()
		u := registeredUser(t, auth.RoleCustomer)

		users.On("FindByID", mock.Anything, u.ID).Return(u, nil)

		err := svc.DeleteAdmin(ctx, u.ID)
		require.Error(t, err)
		kind, _ := domain.KindOf(err)
		assert.Equal(t, domain.KindValidation, kind)
	})

	t.Run("admin is deleted", func(t *testing.T) {
		svc, users, _ := newTestAuthService()
		admin := registeredUser(t, auth.RoleAdmin)

		users.On("FindByID", mock.Anything, admin.ID).Return(admin, nil)
		users.On("Delete", mock.Anything, admin.ID).Return(nil)

		require.NoError(t, svc.DeleteAdmin(ctx, admin.ID))
		users.AssertExpectations(t)
	})
}

func TestEnsureSuperAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the account when missing", func(t *testing.T) {
		svc, users, _ := newTestAuthService()

		users.On("FindByEmail", mock.Anything, "root@example.com").
			Return(nil, domain.NewNotFoundError("User", "root@example.com"))
		users.On("Create", mock.Anything, mock.MatchedBy(func(u *userDomain.User) bool {
			return u.Role == auth.RoleSuperAdmin
		})).Return(nil)

		require.NoError(t, svc.EnsureSuperAdmin(ctx, "Root", "root@example.com", "sup3rsecret"))
		users.AssertExpectations(t)
	})

	t.Run("no-op when the account exists", func(t *testing.T) {
		svc, users, _ := newTestAuthService()
		su := registeredUser(t, auth.RoleSuperAdmin)

		users.On("FindByEmail", mock.Anything, "asha@example.com").Return(su, nil)

		require.NoError(t, svc.EnsureSuperAdmin(ctx, "Root", "asha@example.com", "sup3rsecret"))
		users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("no-op without seed credentials", func(t *testing.T) {
		svc, users, _ := newTestAuthService()

		require.NoError(t, svc.EnsureSuperAdmin(ctx, "Root", "", ""))
		users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})
}
