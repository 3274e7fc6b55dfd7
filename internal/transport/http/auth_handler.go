package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"gameshow-service/internal/app"
	"gameshow-service/internal/domain"
)

// AuthHandler serves account registration and login.
type AuthHandler struct {
	users *app.UsersService
}

func NewAuthHandler(users *app.UsersService) *AuthHandler {
	return &AuthHandler{users: users}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Status string `json:"status"`
	Token  string `json:"token"`
}

type errorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Register creates an account and hands back a fresh token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.readCredentials(w, r)
	if !ok {
		return
	}

	token, err := h.users.Register(r.Context(), creds.Username, creds.Password)
	if errors.Is(err, domain.ErrUsernameTaken) {
		writeJSON(w, http.StatusConflict, errorResponse{Status: "ERROR", Message: "username already taken"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("user", creds.Username).Msg("registration failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Status: "ERROR", Message: "registration failed"})
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Status: "OK", Token: token})
}

// Login verifies credentials and hands back a fresh token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	creds, ok := h.readCredentials(w, r)
	if !ok {
		return
	}

	token, err := h.users.Login(r.Context(), creds.Username, creds.Password)
	if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrIncorrectPassword) {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Status: "UNAUTHORIZED", Message: "invalid credentials"})
		return
	}
	if err != nil {
		log.Error().Err(err).Str("user", creds.Username).Msg("login failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Status: "ERROR", Message: "login failed"})
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Status: "OK", Token: token})
}

func (h *AuthHandler) readCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var creds credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: "ERROR", Message: "invalid request body"})
		return credentialsRequest{}, false
	}
	if creds.Username == "" || creds.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Status: "ERROR", Message: "username and password are required"})
		return credentialsRequest{}, false
	}
	return creds, true
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
