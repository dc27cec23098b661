package authn

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/xnice1/studybuddy/internal/platform/httpx"
	"github.com/xnice1/studybuddy/internal/shared"
	"github.com/xnice1/studybuddy/internal/token"
)

// PrincipalStore resolves a verified token subject to a live principal.
type PrincipalStore interface {
	Principal(ctx context.Context, username string) (shared.Principal, error)
}

// Gate authenticates every request on protected routes. It is the only
// component that reads the raw bearer token; everything downstream sees the
// principal established in the request context.
type Gate struct {
	codec  *token.Codec
	store  PrincipalStore
	logger *slog.Logger
}

// NewGate constructs a Gate.
func NewGate(codec *token.Codec, store PrincipalStore, logger *slog.Logger) *Gate {
	return &Gate{codec: codec, store: store, logger: logger}
}

// Authenticate verifies the bearer token and installs the principal in the
// request context, or rejects with 401 before any handler runs. An absent or
// malformed Authorization header is treated identically to a failed
// verification.
func (g *Gate) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "missing bearer token")
			return
		}

		claim, err := g.codec.Verify(raw)
		if err != nil {
			if g.logger != nil {
				g.logger.Debug("token rejected", slog.String("kind", err.Error()))
			}
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
			return
		}

		principal, err := g.store.Principal(r.Context(), claim.Subject)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				// Valid token for a deleted account: stale credentials
				// must not grant access.
				httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "invalid token")
				return
			}
			if g.logger != nil {
				g.logger.Error("principal lookup failed", slog.Any("error", err))
			}
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}

		ctx := shared.ContextWithPrincipal(r.Context(), &principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	raw := strings.TrimSpace(header[len(prefix):])
	if raw == "" {
		return "", false
	}
	return raw, true
}
