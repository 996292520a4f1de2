package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthCheck(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	router := gin.New()
	NewHealthHandler("ekip-api", "1.2.3", nil, rdb).RegisterRoutes(router)

	for _, path := range []string{"/health", "/healthz"} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rr.Code)

		var resp HealthResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "ekip-api", resp.Service)
		assert.Equal(t, "1.2.3", resp.Version)
		assert.Equal(t, "disabled", resp.DB)
		assert.Equal(t, "up", resp.Redis)
		assert.False(t, resp.Timestamp.IsZero())
	}
}

func TestHealthCheck_RedisDown(t *testing.T) {
	gin.SetMode(gin.TestMode)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	mr.Close()

	router := gin.New()
	NewHealthHandler("ekip-api", "1.0.0", nil, rdb).RegisterRoutes(router)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "down", resp.Redis)
}
