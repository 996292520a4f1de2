package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ekip-platform/ekip-api/internal/api/http/respond"
	"github.com/ekip-platform/ekip-api/internal/domains/domain"
	"github.com/ekip-platform/ekip-api/internal/domains/service"
	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	domainService *service.DomainService
}

func New(domainService *service.DomainService) *Handler {
	return &Handler{domainService: domainService}
}

func (h *Handler) list(c *gin.Context) {
	status := domain.Status(c.DefaultQuery("status", string(domain.StatusAll)))
	switch status {
	case domain.StatusAll, domain.StatusActive, domain.StatusInactive:
	default:
		respond.BadRequest(c, "status must be all, active or inactive")
		return
	}

	items, err := h.domainService.List(c.Request.Context(), status)
	if err != nil {
		h.fail(c, "domains.list", err)
		return
	}
	respond.OK(c, items)
}

func (h *Handler) parents(c *gin.Context) {
	opts, err := h.domainService.Parents(c.Request.Context())
	if err != nil {
		h.fail(c, "domains.parents", err)
		return
	}
	respond.OK(c, opts)
}

type duplicateReq struct {
	Type      string `json:"type"`
	Tag       string `json:"tag"`
	ExcludeID int64  `json:"excludeId"`
}

func (h *Handler) checkDuplicate(c *gin.Context) {
	var req duplicateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid body")
		return
	}

	existing, err := h.domainService.CheckDuplicate(c.Request.Context(), req.Type, req.Tag, req.ExcludeID)
	if err != nil {
		h.fail(c, "domains.check_duplicate", err)
		return
	}
	respond.OK(c, gin.H{"exists": existing != nil, "existingDomain": existing})
}

func (h *Handler) create(c *gin.Context) {
	var in domain.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.BadRequest(c, "invalid body")
		return
	}

	d, err := h.domainService.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, "domains.create", err)
		return
	}
	respond.Created(c, d)
}

func (h *Handler) update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.BadRequest(c, "invalid domain id")
		return
	}

	var in domain.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		respond.BadRequest(c, "invalid body")
		return
	}

	d, err := h.domainService.Update(c.Request.Context(), id, in)
	if err != nil {
		h.fail(c, "domains.update", err)
		return
	}
	respond.OK(c, d)
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalid):
		respond.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respond.NotFound(c, "domain not found")
	default:
		logging.Op(c.Request.Context(), op).WithError(err).Error("domain request failed")
		respond.Error(c, http.StatusInternalServerError, respond.CodeDB, "database error")
	}
}
