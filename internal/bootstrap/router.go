package bootstrap

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	httpapi "github.com/ekip-platform/ekip-api/internal/api/http"
	"github.com/ekip-platform/ekip-api/internal/api/http/middleware"
	"github.com/ekip-platform/ekip-api/internal/api/http/respond"
	"github.com/ekip-platform/ekip-api/internal/api/http/routes"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	FrontendURL string
	Limiter     *middleware.IPRateLimiter
	V1          routes.V1Deps
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{dep.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-Id"},
		ExposeHeaders:    []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	if dep.Limiter != nil {
		r.Use(dep.Limiter.Middleware())
	}

	httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.V1.Pool, dep.V1.Redis).RegisterRoutes(r)

	routes.RegisterV1(r, dep.V1)

	r.NoRoute(func(c *gin.Context) {
		respond.Error(c, http.StatusNotFound, respond.CodeNotFound, "route not found")
	})
	return r
}
