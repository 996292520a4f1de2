package http

import "github.com/gin-gonic/gin"

// RegisterPublic registers the routes reachable without a token.
func (h *Handler) RegisterPublic(rg *gin.RouterGroup) {
	rg.POST("/auth/login", h.Login)
	rg.GET("/auth/login-attempts", h.LoginAttempts)
	rg.POST("/password/validate", h.ValidatePassword)
}

// Register registers the routes that require an authenticated user.
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.GET("/auth/me", h.Me)
}
