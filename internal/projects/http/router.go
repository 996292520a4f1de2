package http

import (
	accessmw "github.com/ekip-platform/ekip-api/internal/access/middleware"
	"github.com/gin-gonic/gin"
)

const screenKey = "projects"

// Register attaches the progress import routes to the projects group.
func (h *Handler) Register(rg *gin.RouterGroup, guard *accessmw.Guard) {
	rg.POST("/:project_id/progress/upload", guard.Require(screenKey, "import"), h.upload)
	rg.POST("/progress/import", guard.Require(screenKey, "import"), h.importObject)
}
