package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/expensedesk/reimbursement-backoffice/internal/apperrors"
	"github.com/expensedesk/reimbursement-backoffice/internal/domain/entity"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*entity.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *entity.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *u
	f.users[u.ID] = &c
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (f *fakeUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func newTestAuthService(t *testing.T) (*AuthService, *fakeUserRepo) {
	t.Helper()
	repo := newFakeUserRepo()
	return NewAuthService(repo, "test-secret", time.Hour, zap.NewNop()), repo
}

func TestAuthService_Register(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	t.Run("registers a valid user", func(t *testing.T) {
		user, err := svc.Register(ctx, "maria", "s3cret-pass", "Maria Alves", entity.RoleFinance)
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.Equal(t, entity.RoleFinance, user.Role)
		assert.True(t, user.Active)
		// Password is never stored in the clear.
		assert.NotContains(t, user.PasswordHash, "s3cret-pass")
	})

	t.Run("rejects duplicate username", func(t *testing.T) {
		_, err := svc.Register(ctx, "maria", "another-pass", "Other Maria", entity.RoleEmployee)
		assert.True(t, apperrors.IsValidation(err))
	})

	t.Run("collects field errors", func(t *testing.T) {
		_, err := svc.Register(ctx, "", "short", "Nobody", "SUPERUSER")
		var verr *apperrors.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Contains(t, verr.Fields, "username")
		assert.Contains(t, verr.Fields, "password")
		assert.Contains(t, verr.Fields, "role")
	})
}

func TestAuthService_LoginAndParse(t *testing.T) {
	svc, repo := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "joao", "s3cret-pass", "Joao Pires", entity.RoleAdmin)
	require.NoError(t, err)

	t.Run("login issues a parseable token", func(t *testing.T) {
		result, err := svc.Login(ctx, "joao", "s3cret-pass")
		require.NoError(t, err)
		assert.Equal(t, int64(3600), result.ExpiresIn)

		claims, err := svc.ParseToken(result.Token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.Subject)
		assert.Equal(t, entity.RoleAdmin, claims.Role)
		assert.Equal(t, "Joao Pires", claims.DisplayName)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		_, err := svc.Login(ctx, "joao", "wrong-pass")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("unknown user is unauthorized", func(t *testing.T) {
		_, err := svc.Login(ctx, "ghost", "s3cret-pass")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("inactive user cannot log in", func(t *testing.T) {
		repo.mu.Lock()
		repo.users[user.ID].Active = false
		repo.mu.Unlock()

		_, err := svc.Login(ctx, "joao", "s3cret-pass")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

		repo.mu.Lock()
		repo.users[user.ID].Active = true
		repo.mu.Unlock()
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		other := NewAuthService(repo, "other-secret", time.Hour, zap.NewNop())
		result, err := other.Login(ctx, "joao", "s3cret-pass")
		require.NoError(t, err)

		_, err = svc.ParseToken(result.Token)
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("garbage token is rejected", func(t *testing.T) {
		_, err := svc.ParseToken("not.a.token")
		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}

func TestAuthService_DisplayName(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "rita", "s3cret-pass", "Rita Costa", entity.RoleEmployee)
	require.NoError(t, err)

	name, err := svc.DisplayName(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Rita Costa", name)

	// Unknown actor resolves to empty, not an error.
	name, err = svc.DisplayName(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, name)
}
