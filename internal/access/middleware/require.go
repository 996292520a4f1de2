package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ekip-platform/ekip-api/internal/access/domain"
	"github.com/ekip-platform/ekip-api/internal/api/http/respond"
	"github.com/ekip-platform/ekip-api/internal/auth"
	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/gin-gonic/gin"
)

type Checker interface {
	Check(ctx context.Context, userID, screenKey, action string) error
}

// Guard builds per-route permission middleware.
type Guard struct {
	checker Checker
}

func NewGuard(checker Checker) *Guard {
	return &Guard{checker: checker}
}

// Require lets the request through only when the authenticated user's
// profile grants action on screenKey. Must run after RequireUser.
func (g *Guard) Require(screenKey, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := auth.UserID(c)
		if userID == "" {
			respond.Abort(c, http.StatusUnauthorized, respond.CodeUnauthorized, "user not authenticated")
			return
		}

		err := g.checker.Check(c.Request.Context(), userID, screenKey, action)
		switch {
		case err == nil:
			c.Next()
		case errors.Is(err, domain.ErrUserNotFound):
			respond.Abort(c, http.StatusForbidden, respond.CodeUserNotFound, "user not registered on the platform")
		case errors.Is(err, domain.ErrNoProfile):
			respond.Abort(c, http.StatusForbidden, respond.CodeNoProfile, "user has no access profile")
		case errors.Is(err, domain.ErrProfileNotFound):
			respond.Abort(c, http.StatusForbidden, respond.CodeProfileNotFound, "access profile not found")
		case errors.Is(err, domain.ErrProfileInactive):
			respond.Abort(c, http.StatusForbidden, respond.CodeProfileInactive, "access profile is inactive")
		case errors.Is(err, domain.ErrPermissionDenied):
			respond.AbortWithDetails(c, http.StatusForbidden, respond.CodePermissionDenied,
				fmt.Sprintf("access denied: you may not %s on %s", action, screenKey),
				gin.H{"screenKey": screenKey, "action": action})
		default:
			logging.Op(c.Request.Context(), "access.require").WithError(err).
				WithField("screen_key", screenKey).Error("permission check failed")
			respond.Abort(c, http.StatusInternalServerError, respond.CodeServerError, "failed to check permissions")
		}
	}
}
