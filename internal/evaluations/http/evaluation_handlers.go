package http

import (
	"net/http"

	"github.com/ekip-platform/ekip-api/internal/api/http/respond"
	"github.com/ekip-platform/ekip-api/internal/evaluations/domain"
	"github.com/ekip-platform/ekip-api/internal/validation"
	"github.com/gin-gonic/gin"
)

func (h *Handler) listEvaluations(c *gin.Context) {
	items, err := h.evaluationService.List(c.Request.Context())
	if err != nil {
		h.fail(c, "evaluations.list", err)
		return
	}
	respond.OK(c, items)
}

func (h *Handler) getEvaluation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	e, err := h.evaluationService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "evaluations.get", err)
		return
	}
	respond.OK(c, e)
}

func (h *Handler) createEvaluation(c *gin.Context) {
	var req domain.NewEvaluation
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ErrorWithDetails(c, http.StatusBadRequest, respond.CodeValidation, "invalid body", validation.Messages(err))
		return
	}
	e, err := h.evaluationService.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "evaluations.create", err)
		return
	}
	respond.Created(c, e)
}

func (h *Handler) updateEvaluation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req domain.EvaluationPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ErrorWithDetails(c, http.StatusBadRequest, respond.CodeValidation, "invalid body", validation.Messages(err))
		return
	}
	e, err := h.evaluationService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, "evaluations.update", err)
		return
	}
	respond.OK(c, e)
}

func (h *Handler) toggleEvaluation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	e, err := h.evaluationService.ToggleStatus(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "evaluations.toggle_status", err)
		return
	}
	respond.OK(c, e)
}

func (h *Handler) deleteEvaluation(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.evaluationService.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "evaluations.delete", err)
		return
	}
	respond.OK(c, gin.H{"id": id})
}

func (h *Handler) categories(c *gin.Context) {
	items, err := h.evaluationService.Categories(c.Request.Context())
	if err != nil {
		h.fail(c, "evaluations.categories", err)
		return
	}
	respond.OK(c, items)
}

func (h *Handler) subcategories(c *gin.Context) {
	categoryID, ok := pathID(c, "categoryId")
	if !ok {
		return
	}
	items, err := h.evaluationService.Subcategories(c.Request.Context(), categoryID)
	if err != nil {
		h.fail(c, "evaluations.subcategories", err)
		return
	}
	respond.OK(c, items)
}

func (h *Handler) replyTypes(c *gin.Context) {
	items, err := h.evaluationService.ReplyTypes(c.Request.Context())
	if err != nil {
		h.fail(c, "evaluations.reply_types", err)
		return
	}
	respond.OK(c, items)
}

func (h *Handler) usedCategories(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	items, err := h.evaluationService.UsedCategories(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "evaluations.used_categories", err)
		return
	}
	respond.OK(c, items)
}
