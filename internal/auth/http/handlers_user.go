package http

import (
	"errors"
	"net/http"

	"github.com/ekip-platform/ekip-api/internal/api/http/respond"
	"github.com/ekip-platform/ekip-api/internal/auth"
	"github.com/ekip-platform/ekip-api/internal/auth/domain"
	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/gin-gonic/gin"
)

// Me returns the token identity and, when it exists, the platform user row.
func (h *Handler) Me(c *gin.Context) {
	au := auth.User(c)
	if au == nil {
		respond.Error(c, http.StatusUnauthorized, respond.CodeUnauthorized, "user not authenticated")
		return
	}

	u, err := h.authService.Me(c.Request.Context(), au)
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		logging.Op(c.Request.Context(), "auth.me").WithError(err).Error("load platform user")
		respond.Internal(c, respond.CodeDB, "failed to load user")
		return
	}
	respond.OK(c, gin.H{"auth_user": au, "user": u})
}
