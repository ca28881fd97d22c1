package api

import (
	"log/slog"
	"net/http"

	"github.com/rosterhq/roster-api/internal/api/shared"
	"github.com/rosterhq/roster-api/internal/dto"
	"github.com/rosterhq/roster-api/internal/service"
)

// AuthHandler serves the authentication endpoints: registration,
// login and token refresh.
type AuthHandler struct {
	authService *service.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		authService: authService,
		logger:      logger.With(slog.String("component", "auth_handler")),
	}
}

// Register handles POST /api/auth/register.
// Self-registered accounts always receive the USER role.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.UserCreateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			CodeBadRequest, "Invalid request body")
		return
	}
	// Role is assigned server-side; pre-fill so validation passes.
	req.Role = "USER"
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			CodeValidationFailed, "Validation failed", ValidationDetails(err)...)
		return
	}

	resp, err := h.authService.Register(r.Context(), req)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, "User registered successfully", resp)
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			CodeBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			CodeValidationFailed, "Validation failed", ValidationDetails(err)...)
		return
	}

	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, "Login successful", resp)
}

// RefreshToken handles POST /api/auth/refresh.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			CodeBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			CodeValidationFailed, "Validation failed", ValidationDetails(err)...)
		return
	}

	resp, err := h.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, "Token refreshed successfully", resp)
}
