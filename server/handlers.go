package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"Blockbuster/config"
	"Blockbuster/core/auth"
	"Blockbuster/core/channel"
	"Blockbuster/core/playback"
	"Blockbuster/core/search"
	"Blockbuster/repository"
)

type contextKey string

const (
	ctxKeyUserID   contextKey = "userID"
	ctxKeyUsername contextKey = "username"
)

// APIHandler carries the dependencies shared by all HTTP handlers.
type APIHandler struct {
	cfg        *config.Config
	entryRepo  repository.EntryRepository
	userRepo   repository.UserRepository
	readerRepo repository.ReaderRepository
	registry   *channel.Registry
	executor   *playback.Executor
	aggregator *search.Aggregator
	hub        *EventHub
}

// NewAPIHandler creates the handler set.
func NewAPIHandler(
	cfg *config.Config,
	entryRepo repository.EntryRepository,
	userRepo repository.UserRepository,
	readerRepo repository.ReaderRepository,
	registry *channel.Registry,
	executor *playback.Executor,
	aggregator *search.Aggregator,
	hub *EventHub,
) *APIHandler {
	return &APIHandler{
		cfg:        cfg,
		entryRepo:  entryRepo,
		userRepo:   userRepo,
		readerRepo: readerRepo,
		registry:   registry,
		executor:   executor,
		aggregator: aggregator,
		hub:        hub,
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// AuthMiddleware checks for a valid JWT bearer token.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}
		claims, err := auth.ParseToken(parts[1])
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, ctxKeyUsername, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetUserIDFromContext extracts the user id placed by AuthMiddleware.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value(ctxKeyUserID).(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}
