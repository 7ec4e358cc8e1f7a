package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"Blockbuster/core/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddlewarePropagatesUserID(t *testing.T) {
	auth.SetSecret("test-secret")
	token, err := auth.GenerateToken(42, "alice")
	require.NoError(t, err)

	h := &APIHandler{}
	var gotUserID int64
	handler := h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserIDFromContext(r.Context())
		require.NoError(t, err)
		gotUserID = id
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/entries", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), gotUserID)
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	auth.SetSecret("test-secret")
	h := &APIHandler{}
	handler := h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without valid auth")
	})

	for _, header := range []string{"", "Bearer not-a-token", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/api/entries", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestGetUserIDFromContextMissing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err := GetUserIDFromContext(req.Context())
	require.Error(t, err)
}
