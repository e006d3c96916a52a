package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/teamline-app/teamline/internal/metrics"
	"github.com/teamline-app/teamline/internal/store"
)

// SignupRequest represents the signup request body.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupResponse represents the signup response.
type SignupResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// LoginRequest represents the login request body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse represents the login response.
type LoginResponse struct {
	Token     string `json:"token"`
	UserID    string `json:"user_id"`
	ExpiresIn int    `json:"expires_in"`
}

// Signup handles account registration.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		h.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}
	if !isValidEmail(req.Email) {
		h.Error(w, http.StatusBadRequest, "invalid email format")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := h.store.CreateUser(r.Context(), req.Username, req.Email, string(hashed))
	if err != nil {
		if errors.Is(err, store.ErrDuplicateUsername) {
			h.Error(w, http.StatusConflict, "username already exists")
			return
		}
		h.logger.Error().Err(err).Msg("create user failed")
		h.Error(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	metrics.UsersRegistered.Inc()
	h.JSON(w, http.StatusCreated, SignupResponse{ID: user.ID, Username: user.Username})
}

// Login handles credential verification and token minting.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Username == "" || req.Password == "" {
		h.Error(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := h.store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			h.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error().Err(err).Msg("user lookup failed")
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.Error(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, err := h.authn.GenerateToken(user.ID, user.Username)
	if err != nil {
		h.logger.Error().Err(err).Msg("token minting failed")
		h.Error(w, http.StatusInternalServerError, "failed to create token")
		return
	}

	h.JSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		UserID:    user.ID,
		ExpiresIn: int(h.authn.Validity().Seconds()),
	})
}
