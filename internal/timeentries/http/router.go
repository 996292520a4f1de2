package http

import (
	accessmw "github.com/ekip-platform/ekip-api/internal/access/middleware"
	"github.com/gin-gonic/gin"
)

const screenKey = "time_entries"

func (h *Handler) Register(rg *gin.RouterGroup, guard *accessmw.Guard) {
	view := guard.Require(screenKey, "view")
	rg.GET("/consultants", view, h.consultants)
	rg.GET("/report", view, h.report)
}
