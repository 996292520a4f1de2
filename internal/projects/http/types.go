package http

import "github.com/ekip-platform/ekip-api/internal/projects/service"

// Handler bundles the dependencies for the project progress endpoints.
type Handler struct {
	importService *service.ImportService
}

func New(importService *service.ImportService) *Handler {
	return &Handler{importService: importService}
}

type importReq struct {
	Path        string `json:"path" binding:"required"`
	DeleteAfter *bool  `json:"delete_after"`
}
