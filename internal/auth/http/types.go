package http

import (
	"github.com/ekip-platform/ekip-api/internal/api/http/respond"
	"github.com/ekip-platform/ekip-api/internal/auth/service"
)

type Handler struct {
	authService *service.AuthService
}

func New(authService *service.AuthService) *Handler {
	return &Handler{
		authService: authService,
	}
}

type loginReq struct {
	Email        string `json:"email" binding:"required,email"`
	Password     string `json:"password" binding:"required"`
	CaptchaToken string `json:"captchaToken"`
}

// attemptBody is the error envelope plus the counters the login form uses to
// decide whether to show a captcha.
type attemptBody struct {
	Success         bool              `json:"success"`
	Error           respond.ErrorBody `json:"error"`
	RequiresCaptcha bool              `json:"requiresCaptcha"`
	FailedAttempts  int               `json:"failedAttempts"`
}

type passwordReq struct {
	Password string `json:"password"`
}
