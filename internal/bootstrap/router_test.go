package bootstrap

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/ekip-platform/ekip-api/internal/api/http/middleware"
	"github.com/ekip-platform/ekip-api/internal/api/http/routes"
	"github.com/ekip-platform/ekip-api/internal/storage/objectstore"
)

func testRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return BuildRouter(RouterDeps{
		ServiceName: "ekip-api",
		Version:     "test",
		FrontendURL: "http://localhost:3000",
		Limiter:     middleware.NewIPRateLimiter(100, 100),
		V1:          routes.V1Deps{Store: objectstore.NewMemoryStore()},
	})
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestBuildRouter(t *testing.T) {
	r := testRouter()

	w := serve(r, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"db":"disabled"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/domains", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"UNAUTHORIZED"`)

	w = serve(r, httptest.NewRequest(http.MethodPost, "/api/v1/password/validate",
		bytes.NewBufferString(`{"password":"Abcdef1!"}`)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"valid":true`)

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBuildRouter_CORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")

	w := serve(testRouter(), req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}
