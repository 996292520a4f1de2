package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	accessmw "github.com/ekip-platform/ekip-api/internal/access/middleware"
	"github.com/ekip-platform/ekip-api/internal/allocations/domain"
	"github.com/ekip-platform/ekip-api/internal/allocations/service"
	"github.com/ekip-platform/ekip-api/internal/auth"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type allowAll struct{}

func (allowAll) Check(ctx context.Context, userID, screenKey, action string) error { return nil }

type stubSource struct{ filter domain.Filter }

func (s *stubSource) Filtered(ctx context.Context, f domain.Filter) ([]domain.Assignment, error) {
	s.filter = f
	start := time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)
	return []domain.Assignment{{
		ID: 1, AssigneeID: "u1",
		Task: &domain.Task{Title: "API", GanttBarStartDate: &start, GanttBarEndDate: &end},
	}}, nil
}

func (s *stubSource) DistinctProjects(ctx context.Context) ([]domain.Project, error) {
	return []domain.Project{{Name: "Portal"}}, nil
}

func setup() (*gin.Engine, *stubSource) {
	gin.SetMode(gin.TestMode)
	src := &stubSource{}
	r := gin.New()
	g := r.Group("/allocations", func(c *gin.Context) {
		c.Set(auth.CtxUserID, "u-admin")
		c.Next()
	})
	New(service.NewAllocationService(src)).Register(g, accessmw.NewGuard(allowAll{}))
	return r, src
}

func get(r http.Handler, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, url, nil))
	return w
}

func TestEvents(t *testing.T) {
	r, src := setup()

	w := get(r, "/allocations/events?consultants=u1,u2&consultants=u3&projects=Portal&status=Aberto&grouped=true")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"isGroup":true`)
	assert.Equal(t, []string{"u1", "u2", "u3"}, src.filter.ConsultantIDs)
	assert.Equal(t, []string{"Portal"}, src.filter.ProjectNames)
	assert.Equal(t, domain.StatusOpen, src.filter.Status)

	// the open assignment does not match the filter, so it stays individual
	w = get(r, "/allocations/events?status=Fechado&grouped=true")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.StatusClosed, src.filter.Status)
	assert.Contains(t, w.Body.String(), `"isGroup":false`)
	assert.NotContains(t, w.Body.String(), `"isGroup":true`)

	w = get(r, "/allocations/events")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"[SC] SP - API"`)
}

func TestEvents_BadParams(t *testing.T) {
	r, _ := setup()
	for _, url := range []string{
		"/allocations/events?status=Pendente",
		"/allocations/events?max_gap=-1",
		"/allocations/events?max_gap=abc",
		"/allocations/events?grouped=maybe",
	} {
		w := get(r, url)
		assert.Equal(t, http.StatusBadRequest, w.Code, url)
		assert.Contains(t, w.Body.String(), "VALIDATION_ERROR", url)
	}
}

func TestProjects(t *testing.T) {
	r, _ := setup()
	w := get(r, "/allocations/projects")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":[{"project_name":"Portal"}]}`, w.Body.String())
}
