package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/ekip-platform/ekip-api/internal/api/http/respond"
	"github.com/ekip-platform/ekip-api/internal/auth"
	"github.com/ekip-platform/ekip-api/internal/auth/domain"
	"github.com/ekip-platform/ekip-api/internal/db"
	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Verifier interface {
	Configured() bool
	Verify(ctx context.Context, token string) (*domain.AuthUser, error)
}

// SupabaseAuth validates bearer tokens and attaches the user plus an
// RLS-scoped database runner to the request.
type SupabaseAuth struct {
	verifier Verifier
	pool     *pgxpool.Pool
}

// NewSupabaseAuth builds the middleware. pool may be nil, in which case no
// user-scoped runner is attached and repositories use the service role.
func NewSupabaseAuth(verifier Verifier, pool *pgxpool.Pool) *SupabaseAuth {
	return &SupabaseAuth{verifier: verifier, pool: pool}
}

// RequireUser rejects requests without a valid Supabase access token.
func (m *SupabaseAuth) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c)
		if !ok {
			respond.Abort(c, http.StatusUnauthorized, respond.CodeUnauthorized, "authentication token not provided")
			return
		}

		if m.verifier == nil || !m.verifier.Configured() {
			logging.Op(c.Request.Context(), "auth.require_user").Error("missing Supabase configuration")
			respond.Abort(c, http.StatusInternalServerError, respond.CodeServerError, "server configuration error")
			return
		}

		user, err := m.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidToken) || errors.Is(err, domain.ErrMissingToken) {
				respond.Abort(c, http.StatusUnauthorized, respond.CodeInvalidToken, "invalid or expired token")
				return
			}
			logging.Op(c.Request.Context(), "auth.require_user").WithError(err).Error("token validation failed")
			respond.Abort(c, http.StatusInternalServerError, respond.CodeServerError, "failed to validate authentication")
			return
		}

		if err := m.attach(c, user, token); err != nil {
			logging.Op(c.Request.Context(), "auth.require_user").WithError(err).Error("could not build user scope")
			respond.Abort(c, http.StatusInternalServerError, respond.CodeServerError, "failed to validate authentication")
			return
		}

		c.Next()
	}
}

// OptionalUser attaches the user when a valid token is present and never
// rejects the request.
func (m *SupabaseAuth) OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c)
		if !ok || m.verifier == nil || !m.verifier.Configured() {
			c.Next()
			return
		}

		user, err := m.verifier.Verify(c.Request.Context(), token)
		if err == nil {
			if err := m.attach(c, user, token); err != nil {
				logging.Op(c.Request.Context(), "auth.optional_user").WithError(err).Warn("could not build user scope")
			}
		}

		c.Next()
	}
}

func (m *SupabaseAuth) attach(c *gin.Context, user *domain.AuthUser, token string) error {
	c.Set(auth.CtxAuthUser, user)
	c.Set(auth.CtxUserID, user.ID)
	c.Set(auth.CtxToken, token)

	if m.pool == nil {
		return nil
	}
	scope, err := db.NewUserScope(m.pool, user.Claims())
	if err != nil {
		return err
	}
	c.Request = c.Request.WithContext(db.WithRunner(c.Request.Context(), scope))
	return nil
}
