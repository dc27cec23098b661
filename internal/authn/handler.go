package authn

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/xnice1/studybuddy/internal/platform/httpx"
	"github.com/xnice1/studybuddy/internal/shared"
	"github.com/xnice1/studybuddy/internal/token"
)

// Handler wires HTTP endpoints for registration and login.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	codec     *token.Codec
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, codec *token.Codec) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		service:   service,
		codec:     codec,
		validator: validator.New(),
	}
}

// MountRoutes registers the public auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.handleRegister)
	r.Post("/login", h.handleLogin)
}

// MountTokenRoute registers the form-encoded password-grant endpoint.
func (h *Handler) MountTokenRoute(r chi.Router) {
	r.Post("/oauth/token", h.handleTokenGrant)
}

type registrationRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role"`
}

type accountResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}

	account, err := h.service.Register(r.Context(), req.Username, req.Password, req.Role)
	if err != nil {
		if !errors.Is(err, shared.ErrDuplicateUsername) {
			h.logger.Error("register failed", slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, accountResponse{
		ID:       account.ID,
		Username: account.Username,
		Role:     string(account.Role),
	})
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, err)
		return
	}

	account, err := h.service.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if !errors.Is(err, shared.ErrInvalidCredentials) {
			h.logger.Error("login failed", slog.Any("error", err))
		} else {
			h.logger.Warn("bad credentials", slog.String("username", req.Username))
		}
		httpx.RespondError(w, err)
		return
	}

	signed, err := h.codec.Issue(account.Username)
	if err != nil {
		h.logger.Error("issue token", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"token": signed})
}

// handleTokenGrant implements the password-grant style form endpoint.
func (h *Handler) handleTokenGrant(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}
	if r.PostFormValue("grant_type") != "password" {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": "unsupported_grant_type"})
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if username == "" || password == "" {
		httpx.JSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_request"})
		return
	}

	account, err := h.service.Authenticate(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, shared.ErrInvalidCredentials) {
			httpx.JSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid_grant"})
			return
		}
		h.logger.Error("token grant failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	signed, err := h.codec.Issue(account.Username)
	if err != nil {
		h.logger.Error("issue token", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"access_token": signed,
		"token_type":   "bearer",
		"expires_in":   int64(h.codec.Lifetime().Seconds()),
	})
}
