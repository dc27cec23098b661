package questions

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/xnice1/studybuddy/internal/platform/httpx"
	"github.com/xnice1/studybuddy/internal/shared"
)

// Handler manages question endpoints nested under a quiz.
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

// MountRoutes registers question routes. The router must provide a quizID
// path parameter above this subtree.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listQuestions)
	r.Post("/", h.createQuestion)
	r.Get("/{questionID}", h.getQuestion)
	r.Put("/{questionID}", h.updateQuestion)
	r.Delete("/{questionID}", h.deleteQuestion)
}

type questionRequest struct {
	Text           string   `json:"text" validate:"required,max=2000"`
	Options        []string `json:"options" validate:"required,min=2,max=10,dive,required,max=500"`
	CorrectAnswers []int32  `json:"correctAnswers" validate:"required,min=1"`
}

type questionResponse struct {
	ID             int64    `json:"id"`
	QuizID         int64    `json:"quizId"`
	Text           string   `json:"text"`
	Options        []string `json:"options"`
	CorrectAnswers []int32  `json:"correctAnswers"`
}

func toResponse(q Question) questionResponse {
	return questionResponse{
		ID:             q.ID,
		QuizID:         q.QuizID,
		Text:           q.Text,
		Options:        q.Options,
		CorrectAnswers: q.CorrectAnswers,
	}
}

func (h *Handler) listQuestions(w http.ResponseWriter, r *http.Request) {
	quizID, ok := httpx.PathID(w, r, "quizID")
	if !ok {
		return
	}
	list, err := h.service.ListQuestions(r.Context(), shared.PrincipalFromContext(r.Context()), quizID)
	if err != nil {
		h.respondErr(w, "list questions", err)
		return
	}
	out := make([]questionResponse, 0, len(list))
	for _, q := range list {
		out = append(out, toResponse(q))
	}
	httpx.JSON(w, http.StatusOK, out)
}

func (h *Handler) getQuestion(w http.ResponseWriter, r *http.Request) {
	quizID, questionID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	question, err := h.service.GetQuestion(r.Context(), shared.PrincipalFromContext(r.Context()), quizID, questionID)
	if err != nil {
		h.respondErr(w, "get question", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(question))
}

func (h *Handler) createQuestion(w http.ResponseWriter, r *http.Request) {
	quizID, ok := httpx.PathID(w, r, "quizID")
	if !ok {
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	question, err := h.service.CreateQuestion(r.Context(), shared.PrincipalFromContext(r.Context()), quizID, in)
	if err != nil {
		h.respondErr(w, "create question", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toResponse(question))
}

func (h *Handler) updateQuestion(w http.ResponseWriter, r *http.Request) {
	quizID, questionID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	question, err := h.service.UpdateQuestion(r.Context(), shared.PrincipalFromContext(r.Context()), quizID, questionID, in)
	if err != nil {
		h.respondErr(w, "update question", err)
		return
	}
	httpx.JSON(w, http.StatusOK, toResponse(question))
}

func (h *Handler) deleteQuestion(w http.ResponseWriter, r *http.Request) {
	quizID, questionID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteQuestion(r.Context(), shared.PrincipalFromContext(r.Context()), quizID, questionID); err != nil {
		h.respondErr(w, "delete question", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	quizID, ok := httpx.PathID(w, r, "quizID")
	if !ok {
		return 0, 0, false
	}
	questionID, ok := httpx.PathID(w, r, "questionID")
	if !ok {
		return 0, 0, false
	}
	return quizID, questionID, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (CreateQuestion, bool) {
	var req questionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return CreateQuestion{}, false
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return CreateQuestion{}, false
	}
	for _, idx := range req.CorrectAnswers {
		if idx < 0 || int(idx) >= len(req.Options) {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "correct answer index out of range")
			return CreateQuestion{}, false
		}
	}
	return CreateQuestion{Text: req.Text, Options: req.Options, CorrectAnswers: req.CorrectAnswers}, true
}

func (h *Handler) respondErr(w http.ResponseWriter, action string, err error) {
	if !shared.IsDomainError(err) {
		h.logger.Error(action, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
