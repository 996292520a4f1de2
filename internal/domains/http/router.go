package http

import (
	accessmw "github.com/ekip-platform/ekip-api/internal/access/middleware"
	"github.com/gin-gonic/gin"
)

const screenKey = "domains"

// Register attaches domain routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup, guard *accessmw.Guard) {
	rg.GET("", guard.Require(screenKey, "view"), h.list)
	rg.GET("/parents", guard.Require(screenKey, "view"), h.parents)
	rg.POST("/check-duplicate", guard.Require(screenKey, "view"), h.checkDuplicate)
	rg.POST("", guard.Require(screenKey, "create"), h.create)
	rg.PUT("/:id", guard.Require(screenKey, "edit"), h.update)
}
