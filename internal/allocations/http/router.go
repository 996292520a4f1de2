package http

import (
	accessmw "github.com/ekip-platform/ekip-api/internal/access/middleware"
	"github.com/gin-gonic/gin"
)

const screenKey = "allocations"

// Register attaches allocation routes to the given router group.
func (h *Handler) Register(rg *gin.RouterGroup, guard *accessmw.Guard) {
	view := guard.Require(screenKey, "view")
	rg.GET("/events", view, h.events)
	rg.GET("/projects", view, h.projects)
}
