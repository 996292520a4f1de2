package http

import (
	"github.com/ekip-platform/ekip-api/internal/access/service"
	"github.com/ekip-platform/ekip-api/internal/api/http/respond"
	"github.com/ekip-platform/ekip-api/internal/auth"
	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	accessService *service.AccessService
}

func New(accessService *service.AccessService) *Handler {
	return &Handler{accessService: accessService}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/me/permissions", h.MyPermissions)
}

func (h *Handler) MyPermissions(c *gin.Context) {
	perms, err := h.accessService.UserPermissions(c.Request.Context(), auth.UserID(c))
	if err != nil {
		logging.Op(c.Request.Context(), "access.my_permissions").WithError(err).Error("load permissions")
		respond.Internal(c, respond.CodeDB, "failed to load permissions")
		return
	}
	respond.OK(c, perms)
}
