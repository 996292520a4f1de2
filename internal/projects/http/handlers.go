package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ekip-platform/ekip-api/internal/api/http/respond"
	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/ekip-platform/ekip-api/internal/projects/domain"
	"github.com/ekip-platform/ekip-api/internal/storage/objectstore"
	"github.com/gin-gonic/gin"
)

func (h *Handler) upload(c *gin.Context) {
	projectID, err := strconv.ParseInt(c.Param("project_id"), 10, 64)
	if err != nil || projectID <= 0 {
		respond.BadRequest(c, "invalid project id")
		return
	}
	week, err := strconv.Atoi(c.PostForm("week"))
	if err != nil {
		respond.BadRequest(c, "week is required")
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		respond.BadRequest(c, "file is required")
		return
	}
	f, err := fh.Open()
	if err != nil {
		respond.BadRequest(c, "cannot read uploaded file")
		return
	}
	defer f.Close()

	rep, err := h.importService.Upload(c.Request.Context(), projectID, week, fh.Filename, fh.Size, f)
	h.reply(c, "projects.upload", rep, err)
}

func (h *Handler) importObject(c *gin.Context) {
	var req importReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "path is required")
		return
	}
	deleteAfter := true
	if req.DeleteAfter != nil {
		deleteAfter = *req.DeleteAfter
	}

	rep, err := h.importService.Import(c.Request.Context(), req.Path, deleteAfter)
	h.reply(c, "projects.import", rep, err)
}

func (h *Handler) reply(c *gin.Context, op string, rep *domain.ImportReport, err error) {
	switch {
	case err == nil:
		respond.OK(c, rep)
	case errors.Is(err, domain.ErrNoValidRows):
		respond.ErrorWithDetails(c, http.StatusUnprocessableEntity, respond.CodeImport, err.Error(), rep)
	case errors.Is(err, domain.ErrTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, respond.CodeValidation, err.Error())
	case errors.Is(err, domain.ErrNotCSV),
		errors.Is(err, domain.ErrInvalidWeek),
		errors.Is(err, domain.ErrInvalidPath),
		errors.Is(err, domain.ErrEmptyFile),
		errors.Is(err, domain.ErrMissingColumns):
		respond.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respond.NotFound(c, "project not found")
	case errors.Is(err, objectstore.ErrObjectNotFound):
		respond.NotFound(c, "file not found in storage")
	default:
		logging.Op(c.Request.Context(), op).WithError(err).Error("progress import failed")
		respond.Error(c, http.StatusInternalServerError, respond.CodeImport, "import failed")
	}
}
