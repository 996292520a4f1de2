package http

import (
	"strconv"
	"strings"

	"github.com/ekip-platform/ekip-api/internal/allocations/domain"
	"github.com/ekip-platform/ekip-api/internal/allocations/service"
	"github.com/ekip-platform/ekip-api/internal/api/http/respond"
	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	allocationService *service.AllocationService
}

func New(allocationService *service.AllocationService) *Handler {
	return &Handler{allocationService: allocationService}
}

func (h *Handler) events(c *gin.Context) {
	status, err := domain.ParseStatus(c.Query("status"))
	if err != nil {
		respond.BadRequest(c, err.Error())
		return
	}

	maxGap := domain.DefaultMaxGapBusinessDays
	if v := c.Query("max_gap"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respond.BadRequest(c, "max_gap must be a non-negative integer")
			return
		}
		maxGap = n
	}

	grouped := false
	if v := c.Query("grouped"); v != "" {
		if grouped, err = strconv.ParseBool(v); err != nil {
			respond.BadRequest(c, "grouped must be a boolean")
			return
		}
	}

	events, err := h.allocationService.Events(c.Request.Context(), service.EventsQuery{
		ConsultantIDs:      listParam(c, "consultants"),
		ProjectNames:       listParam(c, "projects"),
		Status:             status,
		Grouped:            grouped,
		MaxGapBusinessDays: maxGap,
	})
	if err != nil {
		logging.Op(c.Request.Context(), "allocations.events").WithError(err).Error("load assignments")
		respond.Internal(c, respond.CodeDB, "could not load allocations")
		return
	}
	respond.OK(c, events)
}

func (h *Handler) projects(c *gin.Context) {
	items, err := h.allocationService.Projects(c.Request.Context())
	if err != nil {
		logging.Op(c.Request.Context(), "allocations.projects").WithError(err).Error("load projects")
		respond.Internal(c, respond.CodeDB, "could not load projects")
		return
	}
	respond.OK(c, items)
}

// listParam accepts both repeated keys and comma separated values.
func listParam(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, v := range strings.Split(raw, ",") {
			if v = strings.TrimSpace(v); v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

