package http

import (
	"errors"
	"strings"

	"github.com/ekip-platform/ekip-api/internal/api/http/respond"
	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/ekip-platform/ekip-api/internal/timeentries/domain"
	"github.com/ekip-platform/ekip-api/internal/timeentries/service"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	timesheetService *service.TimesheetService
}

func New(timesheetService *service.TimesheetService) *Handler {
	return &Handler{timesheetService: timesheetService}
}

func (h *Handler) consultants(c *gin.Context) {
	items, err := h.timesheetService.Consultants(c.Request.Context())
	if err != nil {
		logging.Op(c.Request.Context(), "timeentries.consultants").WithError(err).Error("load consultants")
		respond.Internal(c, respond.CodeDB, "could not load consultants")
		return
	}
	respond.OK(c, items)
}

func (h *Handler) report(c *gin.Context) {
	var ids []string
	for _, v := range strings.Split(c.Query("userIds"), ",") {
		if v = strings.TrimSpace(v); v != "" {
			ids = append(ids, v)
		}
	}

	rows, err := h.timesheetService.Report(c.Request.Context(), service.ReportRequest{
		StartDate: c.Query("startDate"),
		EndDate:   c.Query("endDate"),
		UserIDs:   ids,
		Status:    c.Query("status"),
	})
	if errors.Is(err, domain.ErrInvalid) {
		respond.BadRequest(c, strings.TrimPrefix(err.Error(), domain.ErrInvalid.Error()+": "))
		return
	}
	if err != nil {
		logging.Op(c.Request.Context(), "timeentries.report").WithError(err).Error("load report")
		respond.Internal(c, respond.CodeDB, "could not load the timesheet report")
		return
	}
	respond.OK(c, rows)
}
