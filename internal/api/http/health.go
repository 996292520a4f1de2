package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	DB        string    `json:"db,omitempty"`
	Redis     string    `json:"redis,omitempty"`
}

type HealthHandler struct {
	serviceName string
	version     string
	db          *pgxpool.Pool
	redis       *redis.Client
}

func NewHealthHandler(serviceName, version string, db *pgxpool.Pool, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		db:          db,
		redis:       rdb,
	}
}

// HealthCheck answers 503 only when the database is down. A missing or
// unreachable Redis degrades the report but keeps the service in rotation.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
	defer cancel()

	var dbPing, redisPing func(context.Context) error
	if h.db != nil {
		dbPing = h.db.Ping
	}
	if h.redis != nil {
		redisPing = func(ctx context.Context) error { return h.redis.Ping(ctx).Err() }
	}
	dbStatus := pingStatus(ctx, dbPing)
	redisStatus := pingStatus(ctx, redisPing)

	code, status := http.StatusOK, "healthy"
	switch {
	case dbStatus == "down":
		code, status = http.StatusServiceUnavailable, "unhealthy"
	case redisStatus == "down":
		status = "degraded"
	}

	c.JSON(code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		DB:        dbStatus,
		Redis:     redisStatus,
	})
}

func pingStatus(ctx context.Context, ping func(context.Context) error) string {
	if ping == nil {
		return "disabled"
	}
	if err := ping(ctx); err != nil {
		return "down"
	}
	return "up"
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
