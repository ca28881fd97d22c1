package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/rosterhq/roster-api/internal/api/middleware"
	"github.com/rosterhq/roster-api/internal/api/shared"
	"github.com/rosterhq/roster-api/internal/domain"
	"github.com/rosterhq/roster-api/internal/dto"
	"github.com/rosterhq/roster-api/internal/platform/storage"
	"github.com/rosterhq/roster-api/internal/service"
	"github.com/rosterhq/roster-api/internal/store"
)

// avatarFormField is the multipart form field carrying the avatar file.
const avatarFormField = "avatar"

// UserHandler serves the user management endpoints.
type UserHandler struct {
	userService *service.UserService
	avatars     *storage.LocalStore
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler with the given dependencies.
func NewUserHandler(
	userService *service.UserService,
	avatars *storage.LocalStore,
	logger *slog.Logger,
) *UserHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserHandler{
		userService: userService,
		avatars:     avatars,
		logger:      logger.With(slog.String("component", "user_handler")),
	}
}

// Create handles POST /api/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.UserCreateRequest
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

	user, err := h.userService.CreateUser(r.Context(), req)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, "User created successfully", user)
}

// authorizeSelfOrAdmin writes an error response and returns false
// unless the authenticated caller is the user with the given id or an
// administrator.
func authorizeSelfOrAdmin(w http.ResponseWriter, r *http.Request, id uuid.UUID) bool {
	callerID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized,
			CodeUnauthorized, "Authentication required")
		return false
	}
	if callerID == id {
		return true
	}
	if role, ok := shared.UserRole(r.Context()); ok && role == domain.RoleAdmin {
		return true
	}
	RespondWithMappedError(w, r, domain.ErrForbidden)
	return false
}

// Get handles GET /api/users/{id}. Users can read their own account;
// reading anyone else's requires the ADMIN role. Soft-deleted users
// are not found.
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}
	if !authorizeSelfOrAdmin(w, r, id) {
		return
	}

	user, err := h.userService.FindByID(r.Context(), id)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, "User retrieved successfully", user)
}

// List handles GET /api/users. Without filter parameters it pages
// through active users; with any filter present it runs a criteria
// search instead, where active scoping follows the filter.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	pageReq := parsePageRequest(r)

	criteria, err := parseSearchCriteria(r)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	var page store.Page[dto.UserDTO]
	if criteria == (dto.SearchCriteria{}) {
		page, err = h.userService.FindPage(r.Context(), pageReq)
	} else {
		page, err = h.userService.Search(r.Context(), criteria, pageReq)
	}
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, "Users retrieved successfully",
		shared.NewPageResponse(page))
}

// Update handles PUT /api/users/{id}. Absent fields are left
// unchanged on the stored user.
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	var req dto.UserUpdateRequest
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

	user, err := h.userService.UpdateUser(r.Context(), id, req)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, "User updated successfully", user)
}

// SoftDelete handles DELETE /api/users/{id}. The user is marked
// inactive and disappears from active-scoped reads.
func (h *UserHandler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	if err := h.userService.SoftDelete(r.Context(), id); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, "User deleted successfully", nil)
}

// HardDelete handles DELETE /api/users/{id}/permanent. The row is
// removed outright, soft-deleted or not.
func (h *UserHandler) HardDelete(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	if err := h.userService.Delete(r.Context(), id); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, "User permanently deleted", nil)
}

// ChangePassword handles PUT /api/users/{id}/password. Only the
// account owner can change their password, since the current password
// must be presented.
func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	callerID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized,
			CodeUnauthorized, "Authentication required")
		return
	}
	if callerID != id {
		RespondWithMappedError(w, r, domain.ErrForbidden)
		return
	}

	var req dto.ChangePasswordRequest
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

	if err := h.userService.ChangePassword(r.Context(), id, req); err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, "Password changed successfully", nil)
}

// ListByRole handles GET /api/users/by-role/{role}.
func (h *UserHandler) ListByRole(w http.ResponseWriter, r *http.Request) {
	role, err := domain.ParseRole(chi.URLParam(r, "role"))
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	users, err := h.userService.ListByRole(r.Context(), role)
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, "Users retrieved successfully", users)
}

// UploadAvatar handles PUT /api/users/{id}/avatar, for the account
// owner or an administrator. The new file is stored first and the
// previous one removed after the database points at the replacement;
// a failed removal only logs.
func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	log := h.logger

	id, err := urlParamUUID(r, "id")
	if err != nil {
		RespondWithMappedError(w, r, err)
		return
	}
	if !authorizeSelfOrAdmin(w, r, id) {
		return
	}

	file, header, err := r.FormFile(avatarFormField)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			CodeBadRequest, "Avatar file is required")
		return
	}
	defer func() {
		if err := file.Close(); err != nil {
			log.Error("failed to close uploaded file", slog.String("error", err.Error()))
		}
	}()

	name, err := h.avatars.Save(header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrFileTooLarge):
			shared.RespondWithError(w, r, http.StatusBadRequest,
				CodeBadRequest, "File exceeds the maximum allowed size")
		case errors.Is(err, storage.ErrUnsupportedType):
			shared.RespondWithError(w, r, http.StatusBadRequest,
				CodeBadRequest, "Unsupported file type")
		default:
			RespondWithMappedError(w, r, err)
		}
		return
	}

	user, previous, err := h.userService.SetAvatar(r.Context(), id, name)
	if err != nil {
		// The orphaned upload is removed; the response reflects the
		// service failure.
		if _, cleanupErr := h.avatars.Delete(name); cleanupErr != nil {
			log.Error("failed to remove orphaned avatar",
				slog.String("file", name),
				slog.String("error", cleanupErr.Error()))
		}
		RespondWithMappedError(w, r, err)
		return
	}

	if deleted, err := h.avatars.Delete(previous); err != nil {
		log.Warn("failed to delete previous avatar",
			slog.String("file", previous),
			slog.String("error", err.Error()))
	} else if deleted {
		log.Debug("previous avatar deleted", slog.String("file", previous))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, "Avatar updated successfully", user)
}
