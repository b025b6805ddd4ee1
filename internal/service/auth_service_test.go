package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/elotech/helpdesk/internal/config"
	"github.com/elotech/helpdesk/internal/domain"
	"github.com/elotech/helpdesk/internal/repository"
	"github.com/elotech/helpdesk/pkg/util"
)

type memResetRepo struct {
	mu     sync.Mutex
	tokens map[string]repository.PasswordResetToken
	seq    int
}

func newMemResetRepo() *memResetRepo {
	return &memResetRepo{tokens: map[string]repository.PasswordResetToken{}}
}

func (r *memResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	token.ID = time.Now().Format("150405.000000")
	token.CreatedAt = time.Now()
	r.tokens[token.Token] = *token
	return nil
}

func (r *memResetRepo) GetByToken(_ context.Context, tokenStr string) (*repository.PasswordResetToken, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	token, ok := r.tokens[tokenStr]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := token
	return &copied, nil
}

func (r *memResetRepo) MarkUsed(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	for key, token := range r.tokens {
		if token.ID == id {
			token.UsedAt = &now
			r.tokens[key] = token
		}
	}
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *memUserRepo, config.AuthConfig) {
	t.Helper()
	users := newMemUserRepo()
	authCfg := config.AuthConfig{
		JWTSecret:               "test-secret",
		AccessTokenTTLMinutes:   15,
		PasswordResetTTLMinutes: 30,
		BcryptCost:              bcrypt.MinCost,
		BootstrapAdminEmail:     "admin@elotech.com",
		BootstrapAdminPassword:  "bootstrap-secret",
		BootstrapAdminName:      "Admin",
	}
	svc := NewAuthService(config.Config{Auth: authCfg}, AuthDependencies{
		UserRepo:          users,
		PasswordResetRepo: newMemResetRepo(),
		Logger:            zap.NewNop(),
	})
	return svc, users, authCfg
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	user, token, exp, err := svc.RegisterUser(ctx, RegisterInput{
		Name:     "Carlos Silva",
		Email:    "Carlos@EloTech.com",
		Password: "senha-forte",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, "carlos@elotech.com", user.Email)
	assert.NotEmpty(t, token)
	assert.True(t, exp.After(time.Now()))

	// Login is case-insensitive on email.
	logged, _, _, err := svc.Login(ctx, "CARLOS@elotech.com", "senha-forte")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)

	_, _, _, err = svc.Login(ctx, "carlos@elotech.com", "senha-errada")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", util.ToDomainError(err).Code)

	_, _, _, err = svc.Login(ctx, "ninguem@elotech.com", "tanto-faz")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", util.ToDomainError(err).Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	input := RegisterInput{Name: "Carlos", Email: "carlos@elotech.com", Password: "senha-forte"}
	_, _, _, err := svc.RegisterUser(ctx, input)
	require.NoError(t, err)

	_, _, _, err = svc.RegisterUser(ctx, input)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", util.ToDomainError(err).Code)
}

func TestChangePassword(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	user, _, _, err := svc.RegisterUser(ctx, RegisterInput{Name: "Carlos", Email: "carlos@elotech.com", Password: "senha-antiga"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user, "senha-errada", "senha-nova-123")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", util.ToDomainError(err).Code)

	err = svc.ChangePassword(ctx, user, "senha-antiga", "curta")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", util.ToDomainError(err).Code)

	require.NoError(t, svc.ChangePassword(ctx, user, "senha-antiga", "senha-nova-123"))

	_, _, _, err = svc.Login(ctx, "carlos@elotech.com", "senha-nova-123")
	require.NoError(t, err)
}

func TestPasswordResetFlow(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, _, _, err := svc.RegisterUser(ctx, RegisterInput{Name: "Carlos", Email: "carlos@elotech.com", Password: "senha-antiga"})
	require.NoError(t, err)

	// Unknown emails do not reveal whether an account exists.
	token, err := svc.RequestPasswordReset(ctx, "ninguem@elotech.com")
	require.NoError(t, err)
	assert.Empty(t, token)

	token, err = svc.RequestPasswordReset(ctx, "carlos@elotech.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, svc.ResetPassword(ctx, token, "senha-nova-123"))

	// One-shot: a second use fails.
	err = svc.ResetPassword(ctx, token, "outra-senha-456")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", util.ToDomainError(err).Code)

	_, _, _, err = svc.Login(ctx, "carlos@elotech.com", "senha-nova-123")
	require.NoError(t, err)
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	svc, users, authCfg := newAuthFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureBootstrapAdmin(ctx, authCfg))
	count, err := users.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Idempotent once an admin exists.
	require.NoError(t, svc.EnsureBootstrapAdmin(ctx, authCfg))
	count, err = users.CountAdmins(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	admin, err := users.GetByEmail(ctx, "admin@elotech.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, admin.Role)
}
