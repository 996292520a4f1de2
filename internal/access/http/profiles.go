package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ekip-platform/ekip-api/internal/access/domain"
	accessmw "github.com/ekip-platform/ekip-api/internal/access/middleware"
	"github.com/ekip-platform/ekip-api/internal/access/service"
	"github.com/ekip-platform/ekip-api/internal/api/http/respond"
	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/ekip-platform/ekip-api/internal/validation"
	"github.com/gin-gonic/gin"
)

const profilesScreen = "access_profiles"

type ProfileHandler struct {
	profileService *service.ProfileService
}

func NewProfileHandler(profileService *service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

type cloneReq struct {
	Name string `json:"name"`
}

type permissionsReq struct {
	Permissions []domain.Grant `json:"permissions" binding:"required"`
}

func (h *ProfileHandler) Register(rg *gin.RouterGroup, guard *accessmw.Guard) {
	rg.GET("", guard.Require(profilesScreen, domain.ActionView), h.list)
	rg.POST("", guard.Require(profilesScreen, domain.ActionCreate), h.create)
	rg.GET("/:id", guard.Require(profilesScreen, domain.ActionView), h.get)
	rg.PUT("/:id", guard.Require(profilesScreen, domain.ActionEdit), h.update)
	rg.DELETE("/:id", guard.Require(profilesScreen, domain.ActionDelete), h.remove)
	rg.POST("/:id/clone", guard.Require(profilesScreen, domain.ActionCreate), h.clone)
	rg.GET("/:id/permissions", guard.Require(profilesScreen, domain.ActionView), h.permissions)
	rg.PUT("/:id/permissions", guard.Require(profilesScreen, domain.ActionEdit), h.replacePermissions)
}

func (h *ProfileHandler) list(c *gin.Context) {
	items, err := h.profileService.List(c.Request.Context())
	if err != nil {
		h.fail(c, "access.profiles", err)
		return
	}
	respond.OK(c, items)
}

func (h *ProfileHandler) get(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}
	p, err := h.profileService.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "access.profile", err)
		return
	}
	respond.OK(c, p)
}

func (h *ProfileHandler) create(c *gin.Context) {
	var req domain.NewProfile
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ErrorWithDetails(c, http.StatusBadRequest, respond.CodeValidation, "invalid body", validation.Messages(err))
		return
	}
	p, err := h.profileService.Create(c.Request.Context(), req)
	if err != nil {
		h.fail(c, "access.create_profile", err)
		return
	}
	respond.Created(c, p)
}

func (h *ProfileHandler) update(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}
	var req domain.ProfilePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.ErrorWithDetails(c, http.StatusBadRequest, respond.CodeValidation, "invalid body", validation.Messages(err))
		return
	}
	p, err := h.profileService.Update(c.Request.Context(), id, req)
	if err != nil {
		h.fail(c, "access.update_profile", err)
		return
	}
	respond.OK(c, p)
}

func (h *ProfileHandler) remove(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}
	if err := h.profileService.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "access.delete_profile", err)
		return
	}
	respond.OK(c, gin.H{"id": id})
}

func (h *ProfileHandler) clone(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}
	var req cloneReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "name is required")
		return
	}
	p, copied, err := h.profileService.Clone(c.Request.Context(), id, req.Name)
	if err != nil {
		h.fail(c, "access.clone_profile", err)
		return
	}
	respond.Created(c, gin.H{"profile": p, "permissionsCopied": copied})
}

func (h *ProfileHandler) permissions(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}
	perms, err := h.profileService.Permissions(c.Request.Context(), id)
	if err != nil {
		h.fail(c, "access.profile_permissions", err)
		return
	}
	respond.OK(c, perms)
}

func (h *ProfileHandler) replacePermissions(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}
	var req permissionsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "permissions array is required")
		return
	}
	n, err := h.profileService.ReplacePermissions(c.Request.Context(), id, req.Permissions)
	if err != nil {
		h.fail(c, "access.replace_permissions", err)
		return
	}
	respond.OK(c, gin.H{"count": n})
}

func profileID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respond.BadRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}

func (h *ProfileHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidProfile), errors.Is(err, domain.ErrInvalidGrant):
		respond.BadRequest(c, err.Error())
	case errors.Is(err, domain.ErrDuplicateName):
		respond.Error(c, http.StatusBadRequest, respond.CodeDuplicateName, err.Error())
	case errors.Is(err, domain.ErrProfileHasUsers):
		respond.Error(c, http.StatusBadRequest, respond.CodeHasUsers, err.Error())
	case errors.Is(err, domain.ErrSystemProfile):
		respond.Error(c, http.StatusForbidden, respond.CodeSystemProfile, err.Error())
	case errors.Is(err, domain.ErrProfileNotFound):
		respond.NotFound(c, "profile not found")
	default:
		logging.Op(c.Request.Context(), op).WithError(err).Error("access profile request failed")
		respond.Internal(c, respond.CodeDB, "database error")
	}
}
