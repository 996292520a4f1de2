package routes

import (
	"database/sql"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/ekip-platform/ekip-api/config"
	accesshttp "github.com/ekip-platform/ekip-api/internal/access/http"
	accessmw "github.com/ekip-platform/ekip-api/internal/access/middleware"
	accessrepo "github.com/ekip-platform/ekip-api/internal/access/repository"
	accesssvc "github.com/ekip-platform/ekip-api/internal/access/service"
	allochttp "github.com/ekip-platform/ekip-api/internal/allocations/http"
	allocrepo "github.com/ekip-platform/ekip-api/internal/allocations/repository"
	allocsvc "github.com/ekip-platform/ekip-api/internal/allocations/service"
	authhttp "github.com/ekip-platform/ekip-api/internal/auth/http"
	authmw "github.com/ekip-platform/ekip-api/internal/auth/middleware"
	authrepo "github.com/ekip-platform/ekip-api/internal/auth/repository"
	authsvc "github.com/ekip-platform/ekip-api/internal/auth/service"
	"github.com/ekip-platform/ekip-api/internal/auth/supabase"
	"github.com/ekip-platform/ekip-api/internal/db"
	domainhttp "github.com/ekip-platform/ekip-api/internal/domains/http"
	domainrepo "github.com/ekip-platform/ekip-api/internal/domains/repository"
	domainsvc "github.com/ekip-platform/ekip-api/internal/domains/service"
	evalhttp "github.com/ekip-platform/ekip-api/internal/evaluations/http"
	evalrepo "github.com/ekip-platform/ekip-api/internal/evaluations/repository"
	evalsvc "github.com/ekip-platform/ekip-api/internal/evaluations/service"
	notifhttp "github.com/ekip-platform/ekip-api/internal/notifications/http"
	"github.com/ekip-platform/ekip-api/internal/notifications/hub"
	notifrepo "github.com/ekip-platform/ekip-api/internal/notifications/repository"
	notifsvc "github.com/ekip-platform/ekip-api/internal/notifications/service"
	projhttp "github.com/ekip-platform/ekip-api/internal/projects/http"
	projrepo "github.com/ekip-platform/ekip-api/internal/projects/repository"
	projsvc "github.com/ekip-platform/ekip-api/internal/projects/service"
	"github.com/ekip-platform/ekip-api/internal/storage/objectstore"
	tehttp "github.com/ekip-platform/ekip-api/internal/timeentries/http"
	terepo "github.com/ekip-platform/ekip-api/internal/timeentries/repository"
	tesvc "github.com/ekip-platform/ekip-api/internal/timeentries/service"
)

// V1Deps carries the shared clients. Redis and Pusher are optional.
type V1Deps struct {
	Pool     *pgxpool.Pool
	SQL      *sql.DB
	Redis    *redis.Client
	Store    objectstore.Store
	Pusher   notifsvc.Pusher
	Supabase config.SupabaseConfig
}

func RegisterV1(r *gin.Engine, dep V1Deps) {
	runner := db.NewPoolRunner(dep.Pool)

	supa := supabase.NewClient(dep.Supabase.URL, dep.Supabase.ServiceRoleKey)
	verifier := authsvc.NewTokenVerifier(supa, authsvc.NewJWTVerifier(dep.Supabase.JWTSecret))
	authMW := authmw.NewSupabaseAuth(verifier, dep.Pool)

	var attempts authsvc.AttemptStore
	if dep.Redis != nil {
		attempts = authrepo.NewAttemptRepository(dep.Redis)
	}
	authHandler := authhttp.New(authsvc.NewAuthService(supa, attempts, authrepo.NewUserRepository(dep.SQL)))

	accessService := accesssvc.NewAccessService(accessrepo.NewAccessRepository(runner), dep.Redis)
	guard := accessmw.NewGuard(accessService)

	api := r.Group("/api/v1")
	authHandler.RegisterPublic(api.Group("", authMW.OptionalUser()))

	private := api.Group("", authMW.RequireUser())
	authHandler.Register(private)
	accesshttp.New(accessService).Register(private)
	profileService := accesssvc.NewProfileService(accessrepo.NewProfileRepository(runner), accessService)
	accesshttp.NewProfileHandler(profileService).Register(private.Group("/access-profiles"), guard)

	domainService := domainsvc.NewDomainService(domainrepo.NewDomainRepository(runner))
	domainhttp.New(domainService).Register(private.Group("/domains"), guard)

	allocationService := allocsvc.NewAllocationService(allocrepo.NewAssignmentRepository(dep.SQL))
	allochttp.New(allocationService).Register(private.Group("/allocations"), guard)

	questionService := evalsvc.NewQuestionService(evalrepo.NewQuestionRepository(runner), domainService)
	evaluationService := evalsvc.NewEvaluationService(evalrepo.NewEvaluationRepository(runner), domainService)
	evalhttp.New(evaluationService, questionService).Register(private.Group("/evaluations"), guard)

	importService := projsvc.NewImportService(dep.Store, projrepo.NewPhaseRepository(runner), domainService)
	projhttp.New(importService).Register(private.Group("/projects"), guard)

	var (
		live      *hub.Hub
		publisher notifsvc.Publisher
	)
	if dep.Redis != nil {
		live = hub.New(dep.Redis)
		publisher = live
	}
	notificationService := notifsvc.NewNotificationService(
		notifrepo.NewNotificationRepository(runner), publisher, dep.Pusher)
	notifhttp.New(notificationService, live).Register(private.Group("/notifications"), guard)

	timesheetService := tesvc.NewTimesheetService(terepo.NewTimesheetRepository(dep.SQL))
	tehttp.New(timesheetService).Register(private.Group("/time-entries"), guard)
}
