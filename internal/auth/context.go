package auth

import (
	"strings"

	"github.com/ekip-platform/ekip-api/internal/auth/domain"
	"github.com/gin-gonic/gin"
)

const (
	CtxAuthUser = "auth_user"
	CtxUserID   = "user_id"
	CtxToken    = "access_token"
)

// User returns the authenticated identity set by the auth middleware.
func User(c *gin.Context) *domain.AuthUser {
	v, ok := c.Get(CtxAuthUser)
	if !ok {
		return nil
	}
	u, _ := v.(*domain.AuthUser)
	return u
}

func UserID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxUserID))
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(c *gin.Context) (string, bool) {
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return tok, tok != ""
}
