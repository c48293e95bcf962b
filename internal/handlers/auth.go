package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/jadhavharshh/portfolio-api/internal/auth"
	"github.com/jadhavharshh/portfolio-api/internal/middleware"
	"github.com/jadhavharshh/portfolio-api/internal/models"
)

type AuthHandler struct {
	creds  auth.Credentials
	tokens *auth.TokenManager
}

func NewAuthHandler(creds auth.Credentials, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{creds: creds, tokens: tokens}
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expiresIn"`
}

type CheckResponse struct {
	Valid bool `json:"valid"`
}

// Login checks the submitted credentials against configuration and
// returns a signed token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if !h.creds.Validate(req.Username, req.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.tokens.Issue(models.Principal{
		Username: req.Username,
		Role:     auth.RoleAdmin,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "token error")
		return
	}
	respondJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresIn: int64(auth.TokenTTL.Seconds()),
	})
}

// Check reports whether the presented bearer token is still valid.
// The admin UI calls this on load to decide between the editor and
// the login form.
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	token := middleware.BearerToken(r)
	if token == "" {
		respondJSON(w, http.StatusUnauthorized, CheckResponse{Valid: false})
		return
	}
	if _, err := h.tokens.Verify(token); err != nil {
		respondJSON(w, http.StatusUnauthorized, CheckResponse{Valid: false})
		return
	}
	respondJSON(w, http.StatusOK, CheckResponse{Valid: true})
}
