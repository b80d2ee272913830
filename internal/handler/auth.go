package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"classifieds-api/internal/model"
	"classifieds-api/internal/repository"
	"classifieds-api/internal/service"
	"classifieds-api/pkg/apierror"
	"classifieds-api/pkg/response"
)

// AuthHandler handles session-related HTTP requests.
type AuthHandler struct {
	tokenService *service.TokenService
	accountRepo  repository.AccountRepository
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(tokenService *service.TokenService, accountRepo repository.AccountRepository) *AuthHandler {
	return &AuthHandler{
		tokenService: tokenService,
		accountRepo:  accountRepo,
	}
}

// LoginRequest represents the request body for session creation.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse represents the response for session creation.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apierror.BadRequest("invalid request body"))
		return
	}
	defer r.Body.Close()

	if req.Email == "" {
		response.Error(w, apierror.BadRequest("email is required"))
		return
	}
	if req.Password == "" {
		response.Error(w, apierror.BadRequest("password is required"))
		return
	}

	validation, err := h.accountRepo.ValidateCredentials(r.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(w, apierror.Unauthorized("invalid email or password"))
		return
	}
	if validation.Status != "active" {
		response.Error(w, apierror.Forbidden("account is suspended"))
		return
	}

	session := model.SessionData{
		AccountID:   validation.AccountID,
		DisplayName: validation.DisplayName,
		Email:       validation.Email,
	}

	token, err := h.tokenService.GenerateToken(r.Context(), session)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to create session"))
		return
	}

	response.OK(w, LoginResponse{
		Token:     token,
		ExpiresIn: int(service.TokenTTL / time.Second),
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Token")
	if token == "" {
		response.Error(w, apierror.BadRequest("X-Token header required"))
		return
	}

	if err := h.tokenService.RevokeToken(r.Context(), token); err != nil {
		response.Error(w, apierror.InternalError("failed to revoke session"))
		return
	}

	response.OK(w, map[string]string{"status": "logged_out"})
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	token := r.Header.Get("X-Token")
	if token == "" {
		response.Error(w, apierror.BadRequest("X-Token header required"))
		return
	}

	if err := h.tokenService.RefreshToken(r.Context(), token); err != nil {
		response.Error(w, apierror.Unauthorized(err.Error()))
		return
	}

	response.OK(w, map[string]interface{}{
		"status":     "refreshed",
		"expires_in": int(service.TokenTTL / time.Second),
	})
}
