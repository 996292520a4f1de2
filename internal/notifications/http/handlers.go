package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ekip-platform/ekip-api/internal/api/http/respond"
	"github.com/ekip-platform/ekip-api/internal/auth"
	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/ekip-platform/ekip-api/internal/notifications/domain"
	"github.com/ekip-platform/ekip-api/internal/notifications/hub"
	"github.com/ekip-platform/ekip-api/internal/notifications/service"
	"github.com/ekip-platform/ekip-api/internal/validation"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	notificationService *service.NotificationService
	hub                 *hub.Hub
}

// New builds the handler. hub may be nil when Redis is not configured; the
// stream endpoint then answers 503.
func New(notificationService *service.NotificationService, h *hub.Hub) *Handler {
	return &Handler{notificationService: notificationService, hub: h}
}

func (h *Handler) list(c *gin.Context) {
	inbox, err := h.notificationService.List(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.fail(c, "notifications.list", err)
		return
	}
	respond.OK(c, inbox)
}

func (h *Handler) stats(c *gin.Context) {
	st, err := h.notificationService.Stats(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.fail(c, "notifications.stats", err)
		return
	}
	respond.OK(c, st)
}

func (h *Handler) markRead(c *gin.Context) {
	id, ok := notificationID(c)
	if !ok {
		return
	}
	if err := h.notificationService.MarkRead(c.Request.Context(), auth.UserID(c), id); err != nil {
		h.fail(c, "notifications.read", err)
		return
	}
	respond.OK(c, gin.H{"id": id})
}

func (h *Handler) markAllRead(c *gin.Context) {
	n, err := h.notificationService.MarkAllRead(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.fail(c, "notifications.read_all", err)
		return
	}
	respond.OK(c, gin.H{"updated": n})
}

func (h *Handler) remove(c *gin.Context) {
	id, ok := notificationID(c)
	if !ok {
		return
	}
	if err := h.notificationService.Delete(c.Request.Context(), auth.UserID(c), id); err != nil {
		h.fail(c, "notifications.delete", err)
		return
	}
	respond.OK(c, gin.H{"id": id})
}

func (h *Handler) create(c *gin.Context) {
	var req domain.NewNotification
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ErrorWithDetails(c, http.StatusBadRequest, respond.CodeValidation, "invalid body", validation.Messages(err))
		return
	}
	n, err := h.notificationService.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "notifications.create", err)
		return
	}
	respond.Created(c, n)
}

func notificationID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.BadRequest(c, "invalid notification id")
		return 0, false
	}
	return id, true
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalid):
		respond.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respond.NotFound(c, "notification not found")
	default:
		logging.Op(c.Request.Context(), op).WithError(err).Error("notification request failed")
		respond.Error(c, http.StatusInternalServerError, respond.CodeDB, "database error")
	}
}
