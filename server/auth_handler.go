package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"Blockbuster/core/auth"
	"Blockbuster/logger"
	"Blockbuster/model"
)

// RegisterHandler handles user registration requests.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Email    string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" || req.Email == "" {
		respondError(w, http.StatusBadRequest, "Username, email and password are required")
		return
	}

	existing, err := h.userRepo.GetUserByUsername(req.Username)
	if err != nil {
		logger.Error("register lookup failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}
	if existing != nil {
		respondError(w, http.StatusConflict, "Username already taken")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		logger.Error("password hash failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user := &model.User{Username: req.Username, Email: req.Email, PasswordHash: hash}
	userID, err := h.userRepo.CreateUser(user)
	if err != nil {
		logger.Error("user creation failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	token, err := auth.GenerateToken(userID, user.Username)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":       userID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// LoginHandler handles user login requests.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, err := h.userRepo.GetUserByUsername(req.Username)
	if err != nil {
		logger.Error("login lookup failed", logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Login failed")
		return
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		respondError(w, http.StatusUnauthorized, "Invalid username or password")
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Username)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}

	logger.Info("user logged in", logger.String("username", user.Username))
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user": map[string]interface{}{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}
