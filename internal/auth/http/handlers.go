package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ekip-platform/ekip-api/internal/api/http/respond"
	"github.com/ekip-platform/ekip-api/internal/auth/domain"
	"github.com/ekip-platform/ekip-api/internal/auth/service"
	"github.com/ekip-platform/ekip-api/internal/logging"
	"github.com/ekip-platform/ekip-api/internal/validation"
	"github.com/gin-gonic/gin"
)

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "email and password are required")
		return
	}

	res, err := h.authService.Login(c.Request.Context(), service.LoginRequest{
		Email:        strings.TrimSpace(req.Email),
		Password:     req.Password,
		CaptchaToken: req.CaptchaToken,
		ClientIP:     c.ClientIP(),
	})
	if err == nil {
		respond.OK(c, res)
		return
	}

	var le *service.LoginError
	if !errors.As(err, &le) {
		logging.Op(c.Request.Context(), "auth.login").WithError(err).Error("login failed")
		if errors.Is(err, domain.ErrNotConfigured) {
			respond.Internal(c, respond.CodeServerError, "server configuration error")
			return
		}
		respond.Internal(c, respond.CodeServerError, "internal server error")
		return
	}

	body := attemptBody{
		RequiresCaptcha: le.Status.RequiresCaptcha,
		FailedAttempts:  le.Status.FailedAttempts,
	}
	status := http.StatusUnauthorized
	switch {
	case errors.Is(le, domain.ErrTooManyAttempts):
		status = http.StatusTooManyRequests
		body.Error = respond.ErrorBody{
			Message: "too many login attempts, wait 15 minutes before trying again",
			Code:    respond.CodeTooManyAttempts,
		}
	case errors.Is(le, domain.ErrCaptchaRequired):
		status = http.StatusBadRequest
		body.RequiresCaptcha = true
		body.Error = respond.ErrorBody{Message: "security verification required", Code: respond.CodeCaptchaRequired}
	default:
		// same message for unknown email and wrong password
		body.Error = respond.ErrorBody{Message: "invalid email or password", Code: respond.CodeInvalidCreds}
	}
	c.JSON(status, body)
}

func (h *Handler) LoginAttempts(c *gin.Context) {
	st, err := h.authService.Attempts(c.Request.Context(), c.ClientIP())
	if err != nil {
		logging.Op(c.Request.Context(), "auth.login_attempts").WithError(err).Error("read attempts")
		respond.Internal(c, respond.CodeServerError, "internal server error")
		return
	}
	respond.OK(c, st)
}

// ValidatePassword grades a candidate password without storing it.
func (h *Handler) ValidatePassword(c *gin.Context) {
	var req passwordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.BadRequest(c, "invalid body")
		return
	}

	res := validation.ValidatePasswordStrength(req.Password)
	respond.OK(c, gin.H{
		"valid":        res.Valid,
		"errors":       res.Errors,
		"strength":     res.Strength,
		"message":      validation.FormatPasswordErrors(res.Errors),
		"requirements": validation.CheckPasswordRequirements(req.Password),
	})
}
