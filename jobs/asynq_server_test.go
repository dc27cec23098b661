package jobs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/require"

	"github.com/xnice1/studybuddy/internal/authz"
	"github.com/xnice1/studybuddy/internal/shared"
)

type stubEnqueuer struct {
	calls int
}

func (s *stubEnqueuer) EnqueueOwnershipScan(ctx context.Context, at time.Time) (*asynq.TaskInfo, error) {
	s.calls++
	return &asynq.TaskInfo{ID: "task-1", Queue: QueueDefault}, nil
}

type emptyGraph struct{}

func (emptyGraph) GetCourseOwner(ctx context.Context, courseID int64) (string, error) {
	return "", shared.ErrNotFound
}

func (emptyGraph) GetQuizParentCourse(ctx context.Context, quizID int64) (int64, error) {
	return 0, shared.ErrNotFound
}

func (emptyGraph) GetQuestionParentQuiz(ctx context.Context, questionID int64) (int64, error) {
	return 0, shared.ErrNotFound
}

func triggerScan(t *testing.T, principal *shared.Principal) (*httptest.ResponseRecorder, *stubEnqueuer) {
	t.Helper()
	enq := &stubEnqueuer{}
	h := NewHandler(nil, enq, authz.NewEvaluator(emptyGraph{}, nil), nil)
	r := chi.NewRouter()
	r.Route("/api/jobs", h.MountRoutes)

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/ownership-scan", nil)
	if principal != nil {
		req = req.WithContext(shared.ContextWithPrincipal(req.Context(), principal))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr, enq
}

func TestOwnershipScanAdminOnly(t *testing.T) {
	t.Parallel()

	rr, enq := triggerScan(t, &shared.Principal{Username: "root", Role: shared.RoleAdmin})
	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Equal(t, 1, enq.calls)

	rr, enq = triggerScan(t, &shared.Principal{Username: "inst1", Role: shared.RoleInstructor})
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Zero(t, enq.calls)

	rr, enq = triggerScan(t, nil)
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	require.Zero(t, enq.calls)
}

func TestJobsHealthWithoutInspector(t *testing.T) {
	t.Parallel()

	h := NewHandler(nil, nil, authz.NewEvaluator(emptyGraph{}, nil), nil)
	r := chi.NewRouter()
	r.Route("/api/jobs", h.MountRoutes)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/jobs/health", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"queue":"default","pending":0}`, rr.Body.String())
}
