package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ekip-platform/ekip-api/internal/access/domain"
	"github.com/ekip-platform/ekip-api/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fixedChecker struct{ err error }

func (f fixedChecker) Check(ctx context.Context, userID, screenKey, action string) error {
	return f.err
}

func serve(checker Checker, userID string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		if userID != "" {
			c.Set(auth.CtxUserID, userID)
		}
		c.Next()
	}, NewGuard(checker).Require("domains", "edit"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	return w
}

func TestRequire(t *testing.T) {
	cases := []struct {
		name   string
		user   string
		err    error
		status int
		code   string
	}{
		{"anonymous", "", nil, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"allowed", "u-1", nil, http.StatusNoContent, ""},
		{"unknown user", "u-1", domain.ErrUserNotFound, http.StatusForbidden, "USER_NOT_FOUND"},
		{"no profile", "u-1", domain.ErrNoProfile, http.StatusForbidden, "NO_PROFILE"},
		{"profile missing", "u-1", domain.ErrProfileNotFound, http.StatusForbidden, "PROFILE_NOT_FOUND"},
		{"profile inactive", "u-1", domain.ErrProfileInactive, http.StatusForbidden, "PROFILE_INACTIVE"},
		{"denied", "u-1", domain.ErrPermissionDenied, http.StatusForbidden, "PERMISSION_DENIED"},
		{"db down", "u-1", errors.New("conn refused"), http.StatusInternalServerError, "SERVER_ERROR"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(fixedChecker{err: tc.err}, tc.user)
			assert.Equal(t, tc.status, w.Code)
			if tc.code != "" {
				assert.Contains(t, w.Body.String(), `"code":"`+tc.code+`"`)
			}
		})
	}

	w := serve(fixedChecker{err: domain.ErrPermissionDenied}, "u-1")
	assert.Contains(t, w.Body.String(), `"details":{"action":"edit","screenKey":"domains"}`)
}
