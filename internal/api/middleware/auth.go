package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/rosterhq/roster-api/internal/api/shared"
	"github.com/rosterhq/roster-api/internal/domain"
	"github.com/rosterhq/roster-api/internal/service/auth"
)

// AuthMiddleware provides JWT authentication for routes.
type AuthMiddleware struct {
	jwtService auth.JWTService
}

// NewAuthMiddleware creates a new AuthMiddleware with the given dependencies.
func NewAuthMiddleware(jwtService auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

// Authenticate validates the bearer token from the Authorization
// header and stores the user's ID and role in the request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized,
				"UNAUTHORIZED", "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			shared.RespondWithError(w, r, http.StatusUnauthorized,
				"UNAUTHORIZED", "Invalid authorization format")
			return
		}

		claims, err := m.jwtService.ValidateToken(r.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrExpiredToken):
				shared.RespondWithError(w, r, http.StatusUnauthorized,
					"UNAUTHORIZED", "Token expired")
			case errors.Is(err, auth.ErrInvalidToken),
				errors.Is(err, auth.ErrWrongTokenType),
				errors.Is(err, auth.ErrTokenNotYetValid):
				shared.RespondWithError(w, r, http.StatusUnauthorized,
					"UNAUTHORIZED", "Invalid token")
			default:
				slog.Error("failed to validate token", "error", err)
				shared.RespondWithError(w, r, http.StatusInternalServerError,
					"INTERNAL", "Authentication error")
			}
			return
		}

		ctx := shared.WithUser(r.Context(), claims.UserID, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin allows the request through only when the authenticated
// user carries the ADMIN role. It must run after Authenticate.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := shared.UserRole(r.Context())
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized,
				"UNAUTHORIZED", "Authentication required")
			return
		}
		if role != domain.RoleAdmin {
			shared.RespondWithError(w, r, http.StatusForbidden,
				"FORBIDDEN", "Administrator access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserID extracts the authenticated user's ID from the request
// context. Returns the ID and whether it was present.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	return shared.UserID(r.Context())
}
