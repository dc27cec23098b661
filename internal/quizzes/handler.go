package quizzes

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/xnice1/studybuddy/internal/platform/httpx"
	"github.com/xnice1/studybuddy/internal/shared"
)

// Handler manages quiz endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers quiz routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listQuizzes)
	r.Post("/", h.createQuiz)
	r.Get("/{quizID}", h.getQuiz)
	r.Put("/{quizID}", h.updateQuiz)
	r.Delete("/{quizID}", h.deleteQuiz)
}

// MountCourseRoutes registers the per-course listing, intended for use
// under the course subtree.
func (h *Handler) MountCourseRoutes(r chi.Router) {
	r.Get("/", h.listByCourse)
}

type quizRequest struct {
	Title    string `json:"title" validate:"required,max=255"`
	CourseID int64  `json:"courseId" validate:"required,gt=0"`
}

type quizUpdateRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

type quizResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	CourseID    int64  `json:"courseId"`
	CourseTitle string `json:"courseTitle"`
}

func toResponse(q Quiz) quizResponse {
	return quizResponse{ID: q.ID, Title: q.Title, CourseID: q.CourseID, CourseTitle: q.CourseTitle}
}

func (h *Handler) listQuizzes(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListQuizzes(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.respondErr(w, "list quizzes", err)
		return
	}
	h.respondList(w, list)
}

func (h *Handler) listByCourse(w http.ResponseWriter, r *http.Request) {
	courseID, ok := httpx.PathID(w, r, "courseID")
	if !ok {
		return
	}
	list, err := h.service.ListByCourse(r.Context(), shared.PrincipalFromContext(r.Context()), courseID)
	if err != nil {
		h.respondErr(w, "list course quizzes", err)
		return
	}
	h.respondList(w, list)
}

func (h *Handler) getQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "quizID")
	if !ok {
		return
	}
	quiz, err := h.service.GetQuiz(r.Context(), shared.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.respondErr(w, "get quiz", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(quiz))
}

func (h *Handler) createQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}
	quiz, err := h.service.CreateQuiz(r.Context(), shared.PrincipalFromContext(r.Context()), CreateQuiz{Title: req.Title, CourseID: req.CourseID})
	if err != nil {
		h.respondErr(w, "create quiz", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(quiz))
}

func (h *Handler) updateQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "quizID")
	if !ok {
		return
	}
	var req quizUpdateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}
	quiz, err := h.service.UpdateQuiz(r.Context(), shared.PrincipalFromContext(r.Context()), id, CreateQuiz{Title: req.Title})
	if err != nil {
		h.respondErr(w, "update quiz", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(quiz))
}

func (h *Handler) deleteQuiz(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "quizID")
	if !ok {
		return
	}
	if err := h.service.DeleteQuiz(r.Context(), shared.PrincipalFromContext(r.Context()), id); err != nil {
		h.respondErr(w, "delete quiz", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondList(w http.ResponseWriter, list []Quiz) {
	out := make([]quizResponse, 0, len(list))
	for _, q := range list {
		out = append(out, toResponse(q))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) respondErr(w http.ResponseWriter, action string, err error) {
	if !shared.IsDomainError(err) {
		h.logger.Error(action, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
