package authn_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xnice1/studybuddy/internal/authn"
	"github.com/xnice1/studybuddy/internal/shared"
	"github.com/xnice1/studybuddy/internal/token"
	_ "github.com/xnice1/studybuddy/testing"
)

type stubStore struct {
	principals map[string]shared.Principal
	failWith   error
}

func (s *stubStore) Principal(ctx context.Context, username string) (shared.Principal, error) {
	if s.failWith != nil {
		return shared.Principal{}, s.failWith
	}
	p, ok := s.principals[username]
	if !ok {
		return shared.Principal{}, shared.ErrNotFound
	}
	return p, nil
}

func protectedProbe(t *testing.T, gate *authn.Gate) (http.Handler, *bool, **shared.Principal) {
	t.Helper()
	reached := false
	var seen *shared.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		seen = shared.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	return gate.Authenticate(next), &reached, &seen
}

func TestGateNoToken(t *testing.T) {
	t.Parallel()

	codec := token.NewCodec([]byte("secret"), time.Hour)
	gate := authn.NewGate(codec, &stubStore{}, nil)
	handler, reached, _ := protectedProbe(t, gate)

	req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.False(t, *reached)
}

func TestGateMalformedHeader(t *testing.T) {
	t.Parallel()

	codec := token.NewCodec([]byte("secret"), time.Hour)
	gate := authn.NewGate(codec, &stubStore{}, nil)
	handler, reached, _ := protectedProbe(t, gate)

	for _, header := range []string{"Basic abc", "Bearer", "Bearer   ", "token xyz"} {
		req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
		req.Header.Set("Authorization", header)
		res := httptest.NewRecorder()
		handler.ServeHTTP(res, req)

		require.Equal(t, http.StatusUnauthorized, res.Code, "header %q", header)
		require.False(t, *reached)
	}
}

func TestGateWrongKeyNeverReachesHandler(t *testing.T) {
	t.Parallel()

	foreign, err := token.NewCodec([]byte("unknown-key"), time.Hour).Issue("inst1")
	require.NoError(t, err)

	codec := token.NewCodec([]byte("secret"), time.Hour)
	store := &stubStore{principals: map[string]shared.Principal{
		"inst1": {Username: "inst1", Role: shared.RoleInstructor},
	}}
	gate := authn.NewGate(codec, store, nil)
	handler, reached, _ := protectedProbe(t, gate)

	req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	req.Header.Set("Authorization", "Bearer "+foreign)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.False(t, *reached)
}

func TestGateDeletedSubject(t *testing.T) {
	t.Parallel()

	codec := token.NewCodec([]byte("secret"), time.Hour)
	valid, err := codec.Issue("ghost")
	require.NoError(t, err)

	gate := authn.NewGate(codec, &stubStore{principals: map[string]shared.Principal{}}, nil)
	handler, reached, _ := protectedProbe(t, gate)

	req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	req.Header.Set("Authorization", "Bearer "+valid)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusUnauthorized, res.Code)
	require.False(t, *reached)
}

func TestGateEstablishesPrincipal(t *testing.T) {
	t.Parallel()

	codec := token.NewCodec([]byte("secret"), time.Hour)
	valid, err := codec.Issue("inst1")
	require.NoError(t, err)

	store := &stubStore{principals: map[string]shared.Principal{
		"inst1": {Username: "inst1", Role: shared.RoleInstructor},
	}}
	gate := authn.NewGate(codec, store, nil)
	handler, reached, seen := protectedProbe(t, gate)

	req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	req.Header.Set("Authorization", "Bearer "+valid)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusNoContent, res.Code)
	require.True(t, *reached)
	require.NotNil(t, *seen)
	require.Equal(t, "inst1", (*seen).Username)
	require.Equal(t, shared.RoleInstructor, (*seen).Role)
}

func TestGateLookupFailureIsInternal(t *testing.T) {
	t.Parallel()

	codec := token.NewCodec([]byte("secret"), time.Hour)
	valid, err := codec.Issue("inst1")
	require.NoError(t, err)

	gate := authn.NewGate(codec, &stubStore{failWith: errors.New("connection reset")}, nil)
	handler, reached, _ := protectedProbe(t, gate)

	req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	req.Header.Set("Authorization", "Bearer "+valid)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)

	require.Equal(t, http.StatusInternalServerError, res.Code)
	require.False(t, *reached)
}
