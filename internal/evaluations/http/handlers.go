package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ekip-platform/ekip-api/internal/api/http/respond"
	"github.com/ekip-platform/ekip-api/internal/evaluations/domain"
	"github.com/ekip-platform/ekip-api/internal/evaluations/service"
	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/ekip-platform/ekip-api/internal/validation"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	evaluationService *service.EvaluationService
	questionService   *service.QuestionService
}

func New(evaluationService *service.EvaluationService, questionService *service.QuestionService) *Handler {
	return &Handler{evaluationService: evaluationService, questionService: questionService}
}

// moveReq names the dragged item and the item it was dropped onto.
type moveReq struct {
	ActiveID int64 `json:"active_id" binding:"required,gt=0"`
	OverID   int64 `json:"over_id" binding:"required,gt=0"`
}

type subMoveReq struct {
	CategoryID int64 `json:"category_id" binding:"required,gt=0"`
	moveReq
}

type manualReorderReq struct {
	Questions []domain.ManualReorderItem `json:"questions" binding:"required"`
}

func (h *Handler) list(c *gin.Context) {
	evalID, ok := pathID(c, "id")
	if !ok {
		return
	}
	links, err := h.questionService.Questions(c.Request.Context(), evalID)
	if err != nil {
		h.fail(c, "evaluations.questions", err)
		return
	}
	respond.OK(c, links)
}

func (h *Handler) add(c *gin.Context) {
	evalID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req domain.NewQuestion
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ErrorWithDetails(c, http.StatusBadRequest, respond.CodeValidation, "invalid body", validation.Messages(err))
		return
	}

	link, err := h.questionService.AddQuestion(c.Request.Context(), evalID, req)
	if err != nil {
		h.fail(c, "evaluations.add_question", err)
		return
	}
	respond.Created(c, link)
}

func (h *Handler) update(c *gin.Context) {
	evalID, ok := pathID(c, "id")
	if !ok {
		return
	}
	questionID, ok := pathID(c, "questionId")
	if !ok {
		return
	}
	var req domain.QuestionPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ErrorWithDetails(c, http.StatusBadRequest, respond.CodeValidation, "invalid body", validation.Messages(err))
		return
	}

	if err := h.questionService.UpdateQuestion(c.Request.Context(), evalID, questionID, req); err != nil {
		h.fail(c, "evaluations.update_question", err)
		return
	}
	respond.OK(c, gin.H{"id": questionID})
}

func (h *Handler) remove(c *gin.Context) {
	evalID, ok := pathID(c, "id")
	if !ok {
		return
	}
	questionID, ok := pathID(c, "questionId")
	if !ok {
		return
	}
	if err := h.questionService.RemoveQuestion(c.Request.Context(), evalID, questionID); err != nil {
		h.fail(c, "evaluations.remove_question", err)
		return
	}
	respond.OK(c, gin.H{"id": questionID})
}

func (h *Handler) reorderCategories(c *gin.Context) {
	evalID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req moveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "active_id and over_id are required")
		return
	}
	links, err := h.questionService.ReorderCategories(c.Request.Context(), evalID, req.ActiveID, req.OverID)
	if err != nil {
		h.fail(c, "evaluations.reorder_categories", err)
		return
	}
	respond.OK(c, links)
}

func (h *Handler) reorderSubcategories(c *gin.Context) {
	evalID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req subMoveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "category_id, active_id and over_id are required")
		return
	}
	links, err := h.questionService.ReorderSubcategories(c.Request.Context(), evalID, req.CategoryID, req.ActiveID, req.OverID)
	if err != nil {
		h.fail(c, "evaluations.reorder_subcategories", err)
		return
	}
	respond.OK(c, links)
}

func (h *Handler) moveQuestion(c *gin.Context) {
	evalID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req moveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "active_id and over_id are required")
		return
	}
	links, err := h.questionService.MoveQuestion(c.Request.Context(), evalID, req.ActiveID, req.OverID)
	if err != nil {
		h.fail(c, "evaluations.move_question", err)
		return
	}
	respond.OK(c, links)
}

func (h *Handler) manualReorder(c *gin.Context) {
	evalID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req manualReorderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "questions array is required")
		return
	}
	links, err := h.questionService.ManualReorder(c.Request.Context(), evalID, req.Questions)
	if err != nil {
		h.fail(c, "evaluations.manual_reorder", err)
		return
	}
	respond.OK(c, links)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respond.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidQuestion),
		errors.Is(err, domain.ErrInvalidEvaluation),
		errors.Is(err, domain.ErrInvalidWeight),
		errors.Is(err, domain.ErrUnknownReplyType):
		respond.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrEvaluationNotFound):
		respond.NotFound(c, "evaluation not found")
	case errors.Is(err, domain.ErrNotFound):
		respond.NotFound(c, "question not found")
	default:
		logging.Op(c.Request.Context(), op).WithError(err).Error("evaluation request failed")
		respond.Error(c, http.StatusInternalServerError, respond.CodeDB, "database error")
	}
}
