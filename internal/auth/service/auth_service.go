package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ekip-platform/ekip-api/internal/auth/domain"
	"github.com/ekip-platform/ekip-api/internal/logging"
)

type PasswordSigner interface {
	SignInWithPassword(ctx context.Context, email, password, captchaToken string) (*domain.Session, error)
}

type AttemptStore interface {
	Get(ctx context.Context, ip string) (domain.AttemptStatus, error)
	Increment(ctx context.Context, ip string) (domain.AttemptStatus, error)
	Reset(ctx context.Context, ip string) error
}

type UserStore interface {
	GetByID(ctx context.Context, id string) (*domain.PlatformUser, error)
	EnsureUser(ctx context.Context, au *domain.AuthUser) (*domain.PlatformUser, error)
}

type LoginRequest struct {
	Email        string
	Password     string
	CaptchaToken string
	ClientIP     string
}

type LoginResult struct {
	Session *domain.Session      `json:"session"`
	User    *domain.PlatformUser `json:"user,omitempty"`
}

// LoginError carries the attempt counters back to the client alongside the
// failure reason.
type LoginError struct {
	Err    error
	Status domain.AttemptStatus
}

func (e *LoginError) Error() string { return e.Err.Error() }
func (e *LoginError) Unwrap() error { return e.Err }

type AuthService struct {
	signer   PasswordSigner
	attempts AttemptStore
	users    UserStore
}

// NewAuthService wires the login flow. attempts may be nil, in which case
// login throttling is disabled.
func NewAuthService(signer PasswordSigner, attempts AttemptStore, users UserStore) *AuthService {
	return &AuthService{signer: signer, attempts: attempts, users: users}
}

func (s *AuthService) Attempts(ctx context.Context, ip string) (domain.AttemptStatus, error) {
	if s.attempts == nil {
		return domain.NewAttemptStatus(0), nil
	}
	return s.attempts.Get(ctx, ip)
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	log := logging.Op(ctx, "auth.login")

	status, err := s.Attempts(ctx, req.ClientIP)
	if err != nil {
		// counters are best effort; a Redis outage must not block logins
		log.WithError(err).Warn("could not read login attempts")
	}
	if status.IsBlocked {
		return nil, &LoginError{Err: domain.ErrTooManyAttempts, Status: status}
	}
	if status.RequiresCaptcha && req.CaptchaToken == "" {
		return nil, &LoginError{Err: domain.ErrCaptchaRequired, Status: status}
	}

	session, err := s.signer.SignInWithPassword(ctx, req.Email, req.Password, req.CaptchaToken)
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			return nil, fmt.Errorf("sign in: %w", err)
		}
		updated := status
		if s.attempts != nil {
			if updated, err = s.attempts.Increment(ctx, req.ClientIP); err != nil {
				log.WithError(err).Warn("could not record failed login")
			}
		}
		return nil, &LoginError{Err: domain.ErrInvalidCredentials, Status: updated}
	}

	if s.attempts != nil {
		if err := s.attempts.Reset(ctx, req.ClientIP); err != nil {
			log.WithError(err).Warn("could not reset login attempts")
		}
	}

	result := &LoginResult{Session: session}
	if s.users != nil {
		u, err := s.users.EnsureUser(ctx, session.User)
		if err != nil {
			log.WithError(err).Error("could not sync platform user")
		} else {
			result.User = u
		}
	}
	return result, nil
}

// Me returns the platform user for an authenticated identity.
func (s *AuthService) Me(ctx context.Context, au *domain.AuthUser) (*domain.PlatformUser, error) {
	if s.users == nil {
		return nil, domain.ErrUserNotFound
	}
	return s.users.GetByID(ctx, au.ID)
}
