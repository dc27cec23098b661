package courses

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/xnice1/studybuddy/internal/platform/httpx"
	"github.com/xnice1/studybuddy/internal/shared"
)

// Handler manages course endpoints.
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

// MountRoutes registers course routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listCourses)
	r.Post("/", h.createCourse)
	r.Get("/{courseID}", h.getCourse)
	r.Put("/{courseID}", h.updateCourse)
	r.Delete("/{courseID}", h.deleteCourse)
}

type courseRequest struct {
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description" validate:"max=1000"`
}

type courseResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	OwnerID     int64  `json:"ownerId"`
	Owner       string `json:"owner"`
}

func toResponse(c Course) courseResponse {
	return courseResponse{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		OwnerID:     c.OwnerID,
		Owner:       c.OwnerUsername,
	}
}

func (h *Handler) listCourses(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListForPrincipal(r.Context(), shared.PrincipalFromContext(r.Context()))
	if err != nil {
		h.respondErr(w, "list courses", err)
		return
	}
	out := make([]courseResponse, 0, len(list))
	for _, c := range list {
		out = append(out, toResponse(c))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "courseID")
	if !ok {
		return
	}
	course, err := h.service.GetCourse(r.Context(), shared.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.respondErr(w, "get course", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(course))
}

func (h *Handler) createCourse(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	course, err := h.service.CreateCourse(r.Context(), shared.PrincipalFromContext(r.Context()), in)
	if err != nil {
		h.respondErr(w, "create course", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(course))
}

func (h *Handler) updateCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "courseID")
	if !ok {
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	course, err := h.service.UpdateCourse(r.Context(), shared.PrincipalFromContext(r.Context()), id, in)
	if err != nil {
		h.respondErr(w, "update course", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(course))
}

func (h *Handler) deleteCourse(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.PathID(w, r, "courseID")
	if !ok {
		return
	}
	if err := h.service.DeleteCourse(r.Context(), shared.PrincipalFromContext(r.Context()), id); err != nil {
		h.respondErr(w, "delete course", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (CreateCourse, bool) {
	var req courseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return CreateCourse{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return CreateCourse{}, false
	}
	return CreateCourse{Title: req.Title, Description: req.Description}, true
}

func (h *Handler) respondErr(w http.ResponseWriter, action string, err error) {
	if !shared.IsDomainError(err) {
		h.logger.Error(action, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
