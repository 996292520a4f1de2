package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/ekip-platform/ekip-api/internal/auth/domain"
	"github.com/ekip-platform/ekip-api/internal/auth/repository"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSigner struct {
	password string
	calls    int
}

func (s *stubSigner) SignInWithPassword(ctx context.Context, email, password, captcha string) (*domain.Session, error) {
	s.calls++
	if password != s.password {
		return nil, domain.ErrInvalidCredentials
	}
	return &domain.Session{AccessToken: "at", User: &domain.AuthUser{ID: "u-1", Email: email}}, nil
}

type stubUsers struct{ ensured []string }

func (s *stubUsers) GetByID(ctx context.Context, id string) (*domain.PlatformUser, error) {
	return &domain.PlatformUser{ID: id}, nil
}

func (s *stubUsers) EnsureUser(ctx context.Context, au *domain.AuthUser) (*domain.PlatformUser, error) {
	s.ensured = append(s.ensured, au.ID)
	return &domain.PlatformUser{ID: au.ID, Email: au.Email}, nil
}

func newAuthService(t *testing.T) (*AuthService, *stubSigner, *stubUsers) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	signer := &stubSigner{password: "Secret#123"}
	users := &stubUsers{}
	return NewAuthService(signer, repository.NewAttemptRepository(client), users), signer, users
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success resets counter and syncs user", func(t *testing.T) {
		svc, _, users := newAuthService(t)
		req := LoginRequest{Email: "ana@ekip.dev", Password: "wrong", ClientIP: "9.9.9.9"}

		_, err := svc.Login(ctx, req)
		require.Error(t, err)

		req.Password = "Secret#123"
		res, err := svc.Login(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "at", res.Session.AccessToken)
		assert.Equal(t, []string{"u-1"}, users.ensured)

		st, err := svc.Attempts(ctx, "9.9.9.9")
		require.NoError(t, err)
		assert.Zero(t, st.FailedAttempts)
	})

	t.Run("captcha required after three failures", func(t *testing.T) {
		svc, signer, _ := newAuthService(t)
		req := LoginRequest{Email: "ana@ekip.dev", Password: "wrong", ClientIP: "8.8.8.8"}

		for i := 1; i <= 3; i++ {
			_, err := svc.Login(ctx, req)
			var le *LoginError
			require.ErrorAs(t, err, &le)
			assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
			assert.Equal(t, i, le.Status.FailedAttempts)
		}

		_, err := svc.Login(ctx, req)
		assert.ErrorIs(t, err, domain.ErrCaptchaRequired)
		assert.Equal(t, 3, signer.calls)

		req.CaptchaToken = "tok"
		_, err = svc.Login(ctx, req)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
		assert.Equal(t, 4, signer.calls)
	})

	t.Run("blocked after five failures", func(t *testing.T) {
		svc, signer, _ := newAuthService(t)
		req := LoginRequest{Email: "ana@ekip.dev", Password: "wrong", CaptchaToken: "tok", ClientIP: "7.7.7.7"}

		for i := 0; i < 5; i++ {
			_, _ = svc.Login(ctx, req)
		}
		req.Password = "Secret#123"
		_, err := svc.Login(ctx, req)

		var le *LoginError
		require.ErrorAs(t, err, &le)
		assert.ErrorIs(t, err, domain.ErrTooManyAttempts)
		assert.True(t, le.Status.IsBlocked)
		assert.Equal(t, 5, signer.calls)
	})

	t.Run("without attempt store", func(t *testing.T) {
		svc := NewAuthService(&stubSigner{password: "p"}, nil, nil)
		res, err := svc.Login(ctx, LoginRequest{Email: "a@b.c", Password: "p"})
		require.NoError(t, err)
		assert.Nil(t, res.User)
	})
}
