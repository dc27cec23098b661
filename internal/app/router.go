package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/xnice1/studybuddy/internal/authn"
	"github.com/xnice1/studybuddy/internal/courses"
	"github.com/xnice1/studybuddy/internal/observability"
	"github.com/xnice1/studybuddy/internal/questions"
	"github.com/xnice1/studybuddy/internal/quizzes"
	"github.com/xnice1/studybuddy/internal/users"
	"github.com/xnice1/studybuddy/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Gate             *authn.Gate
	AuthHandler      *authn.Handler
	UsersHandler     *users.Handler
	CoursesHandler   *courses.Handler
	QuizzesHandler   *quizzes.Handler
	QuestionsHandler *questions.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router. Everything under /api except the
// credential endpoints requires a bearer token.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	// credential endpoints stay outside the gate and get a tighter rate limit
	r.Group(func(r chi.Router) {
		r.Use(LoginRateLimiter(params.Config))
		r.Route("/api/auth", params.AuthHandler.MountRoutes)
		params.AuthHandler.MountTokenRoute(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(params.Gate.Authenticate)

		r.Route("/api/users", params.UsersHandler.MountRoutes)

		r.Route("/api/courses", func(r chi.Router) {
			params.CoursesHandler.MountRoutes(r)
			r.Route("/{courseID}/quizzes", params.QuizzesHandler.MountCourseRoutes)
		})

		r.Route("/api/quizzes", func(r chi.Router) {
			params.QuizzesHandler.MountRoutes(r)
			r.Route("/{quizID}/questions", params.QuestionsHandler.MountRoutes)
		})

		if params.JobHandler != nil {
			r.Route("/api/jobs", params.JobHandler.MountRoutes)
		}
	})

	return r
}
