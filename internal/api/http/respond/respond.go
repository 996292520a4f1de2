// Package respond writes the JSON envelope shared by every API handler:
//
//	{"success": true, "data": ...}
//	{"success": false, "error": {"message": ..., "code": ..., "details": ...}}
package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeInvalidToken     = "INVALID_TOKEN"
	CodeServerError      = "SERVER_ERROR"
	CodeValidation       = "VALIDATION_ERROR"
	CodeNotFound         = "NOT_FOUND"
	CodeDB               = "DB_ERROR"
	CodePermissionDenied = "PERMISSION_DENIED"
	CodeNoScreenAccess   = "NO_SCREEN_ACCESS"
	CodeNoProfile        = "NO_PROFILE"
	CodeProfileNotFound  = "PROFILE_NOT_FOUND"
	CodeProfileInactive  = "PROFILE_INACTIVE"
	CodeUserNotFound     = "USER_NOT_FOUND"
	CodeTooManyAttempts  = "TOO_MANY_ATTEMPTS"
	CodeCaptchaRequired  = "CAPTCHA_REQUIRED"
	CodeInvalidCreds     = "INVALID_CREDENTIALS"
	CodeRateLimited      = "RATE_LIMITED"
	CodeStorage          = "STORAGE_ERROR"
	CodeImport           = "IMPORT_ERROR"
	CodeDuplicate        = "DUPLICATE"
	CodeDuplicateName    = "DUPLICATE_NAME"
	CodeSystemProfile    = "SYSTEM_PROFILE"
	CodeHasUsers         = "HAS_USERS"
)

type ErrorBody struct {
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

func Error(c *gin.Context, status int, code, message string) {
	c.JSON(status, Envelope{Error: &ErrorBody{Message: message, Code: code}})
}

func ErrorWithDetails(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, Envelope{Error: &ErrorBody{Message: message, Code: code, Details: details}})
}

// Abort writes the error and stops the handler chain. Used by middleware.
func Abort(c *gin.Context, status int, code, message string) {
	Error(c, status, code, message)
	c.Abort()
}

func AbortWithDetails(c *gin.Context, status int, code, message string, details interface{}) {
	ErrorWithDetails(c, status, code, message, details)
	c.Abort()
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, CodeValidation, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, CodeNotFound, message)
}

func Internal(c *gin.Context, code, message string) {
	Error(c, http.StatusInternalServerError, code, message)
}
