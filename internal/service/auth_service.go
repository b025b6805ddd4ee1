package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/elotech/helpdesk/internal/auth"
	"github.com/elotech/helpdesk/internal/config"
	"github.com/elotech/helpdesk/internal/domain"
	"github.com/elotech/helpdesk/internal/repository"
	"github.com/elotech/helpdesk/pkg/util"
)

// AuthService coordinates registration, login and password flows.
type AuthService struct {
	users      repository.UserRepository
	resets     repository.PasswordResetRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
	resetTTL   time.Duration
	logger     *zap.Logger
}

// AuthDependencies encapsulates repo requirements for the auth service.
type AuthDependencies struct {
	UserRepo          repository.UserRepository
	PasswordResetRepo repository.PasswordResetRepository
	Logger            *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		resets:     deps.PasswordResetRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
		resetTTL:   time.Duration(cfg.Auth.PasswordResetTTLMinutes) * time.Minute,
		logger:     deps.Logger,
	}
}

// TokenManager exposes the signer for transport middleware.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

// RegisterInput describes a new account request.
type RegisterInput struct {
	Name       string
	Email      string
	Password   string
	Department string
	Contact    string
}

// RegisterUser creates a new requester account. Self-registration always
// yields the "user" role; admins are provisioned via bootstrap or by
// another admin.
func (s *AuthService) RegisterUser(ctx context.Context, input RegisterInput) (*domain.User, string, time.Time, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if name == "" || email == "" || input.Password == "" {
		return nil, "", time.Time{}, util.NewValidationError("name, email and password required", nil)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, util.NewValidationError("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, util.NewStoreUnavailable(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, util.NewInternalError(err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		Role:         domain.RoleUser,
		Department:   strings.TrimSpace(input.Department),
		Contact:      strings.TrimSpace(input.Contact),
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, util.NewStoreUnavailable(err)
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, util.NewInternalError(err)
	}
	return user, token, exp, nil
}

// Login authenticates any account. Invalid email and invalid password
// return the same error to avoid account probing.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, util.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, util.NewStoreUnavailable(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, util.NewUnauthorized("invalid credentials")
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, util.NewInternalError(err)
	}
	return user, token, exp, nil
}

// UpdateProfileInput carries optional profile fields; nil leaves a field
// untouched.
type UpdateProfileInput struct {
	Name       *string
	AvatarURL  *string
	Department *string
	Contact    *string
}

// UpdateProfile mutates the caller's own profile fields.
func (s *AuthService) UpdateProfile(ctx context.Context, user *domain.User, input UpdateProfileInput) (*domain.User, error) {
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" {
			return nil, util.NewValidationError("name cannot be empty", nil)
		}
		user.Name = trimmed
	}
	if input.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*input.AvatarURL)
	}
	if input.Department != nil {
		user.Department = strings.TrimSpace(*input.Department)
	}
	if input.Contact != nil {
		user.Contact = strings.TrimSpace(*input.Contact)
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, util.NewStoreUnavailable(err)
	}
	return user, nil
}

// ChangePassword rotates the caller's password after verifying the
// current one.
func (s *AuthService) ChangePassword(ctx context.Context, user *domain.User, current, next string) error {
	if err := auth.ComparePassword(user.PasswordHash, current); err != nil {
		return util.NewUnauthorized("current password incorrect")
	}
	if len(next) < 8 {
		return util.NewValidationError("password must be at least 8 characters", nil)
	}
	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return util.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return util.NewStoreUnavailable(err)
	}
	return nil
}

// RequestPasswordReset issues a one-shot reset token. Unknown emails
// are reported as success so the endpoint cannot be used to probe
// accounts; the token is returned for delivery by the notification
// pipeline.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", util.NewStoreUnavailable(err)
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", util.NewInternalError(err)
	}
	token := &repository.PasswordResetToken{
		UserID:    user.ID,
		Token:     hex.EncodeToString(raw),
		ExpiresAt: time.Now().Add(s.resetTTL),
	}
	if err := s.resets.Create(ctx, token); err != nil {
		return "", util.NewStoreUnavailable(err)
	}
	return token.Token, nil
}

// ResetPassword consumes a reset token and sets the new password.
func (s *AuthService) ResetPassword(ctx context.Context, tokenStr, next string) error {
	token, err := s.resets.GetByToken(ctx, tokenStr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return util.NewUnauthorized("invalid or expired reset token")
		}
		return util.NewStoreUnavailable(err)
	}
	if token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return util.NewUnauthorized("invalid or expired reset token")
	}
	if len(next) < 8 {
		return util.NewValidationError("password must be at least 8 characters", nil)
	}

	user, err := s.users.GetByID(ctx, token.UserID)
	if err != nil {
		return notFoundOr(err, "user")
	}
	hash, err := auth.HashPassword(next, s.bcryptCost)
	if err != nil {
		return util.NewInternalError(err)
	}
	user.PasswordHash = hash
	if err := s.users.Update(ctx, user); err != nil {
		return util.NewStoreUnavailable(err)
	}
	if err := s.resets.MarkUsed(ctx, token.ID); err != nil {
		return util.NewStoreUnavailable(err)
	}
	return nil
}

// EnsureBootstrapAdmin seeds the first administrator account when none
// exists and the bootstrap credentials are configured.
func (s *AuthService) EnsureBootstrapAdmin(ctx context.Context, cfg config.AuthConfig) error {
	if cfg.BootstrapAdminPassword == "" {
		return nil
	}
	count, err := s.users.CountAdmins(ctx)
	if err != nil {
		return util.NewStoreUnavailable(err)
	}
	if count > 0 {
		return nil
	}

	hash, err := auth.HashPassword(cfg.BootstrapAdminPassword, s.bcryptCost)
	if err != nil {
		return util.NewInternalError(err)
	}
	admin := &domain.User{
		Name:         cfg.BootstrapAdminName,
		Email:        normalizeEmail(cfg.BootstrapAdminEmail),
		Role:         domain.RoleAdmin,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, admin); err != nil {
		return util.NewStoreUnavailable(err)
	}
	if s.logger != nil {
		s.logger.Info("bootstrap admin created", zap.String("email", admin.Email))
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
