package http

import (
	accessmw "github.com/ekip-platform/ekip-api/internal/access/middleware"
	"github.com/gin-gonic/gin"
)

const screenKey = "notifications"

// Register attaches notification routes. Reading one's own notifications
// needs only authentication; publishing is permission-gated.
func (h *Handler) Register(rg *gin.RouterGroup, guard *accessmw.Guard) {
	rg.GET("", h.list)
	rg.GET("/stats", h.stats)
	rg.GET("/stream", h.stream)
	rg.PATCH("/read-all", h.markAllRead)
	rg.PATCH("/:id/read", h.markRead)
	rg.DELETE("/:id", h.remove)
	rg.POST("", guard.Require(screenKey, "create"), h.create)
}
