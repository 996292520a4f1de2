package http

import (
	accessmw "github.com/ekip-platform/ekip-api/internal/access/middleware"
	"github.com/gin-gonic/gin"
)

const screenKey = "evaluations"

// Register attaches the evaluation model routes and the question editor.
func (h *Handler) Register(rg *gin.RouterGroup, guard *accessmw.Guard) {
	rg.GET("", guard.Require(screenKey, "view"), h.listEvaluations)
	rg.POST("", guard.Require(screenKey, "create"), h.createEvaluation)
	rg.GET("/categories", guard.Require(screenKey, "view"), h.categories)
	rg.GET("/categories/:categoryId/subcategories", guard.Require(screenKey, "view"), h.subcategories)
	rg.GET("/reply-types", guard.Require(screenKey, "view"), h.replyTypes)
	rg.GET("/:id", guard.Require(screenKey, "view"), h.getEvaluation)
	rg.PUT("/:id", guard.Require(screenKey, "edit"), h.updateEvaluation)
	rg.PATCH("/:id/toggle-status", guard.Require(screenKey, "edit"), h.toggleEvaluation)
	rg.DELETE("/:id", guard.Require(screenKey, "delete"), h.deleteEvaluation)
	rg.GET("/:id/categories", guard.Require(screenKey, "view"), h.usedCategories)

	rg.GET("/:id/questions", guard.Require(screenKey, "view"), h.list)
	rg.POST("/:id/questions", guard.Require(screenKey, "edit"), h.add)
	rg.PUT("/:id/questions/reorder", guard.Require(screenKey, "edit"), h.manualReorder)
	rg.PUT("/:id/questions/:questionId", guard.Require(screenKey, "edit"), h.update)
	rg.DELETE("/:id/questions/:questionId", guard.Require(screenKey, "edit"), h.remove)
	rg.POST("/:id/reorder/categories", guard.Require(screenKey, "edit"), h.reorderCategories)
	rg.POST("/:id/reorder/subcategories", guard.Require(screenKey, "edit"), h.reorderSubcategories)
	rg.POST("/:id/reorder/questions", guard.Require(screenKey, "edit"), h.moveQuestion)
}
