package shared

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"

	"github.com/google/uuid"

	"github.com/rosterhq/roster-api/internal/domain"
)

// Key type for context values
type ContextKey string

const (
	// UserIDContextKey is the context key for the authenticated user's ID
	UserIDContextKey ContextKey = "userID"

	// UserRoleContextKey is the context key for the authenticated user's role
	UserRoleContextKey ContextKey = "userRole"

	// TraceIDKey is the key for the trace ID in the request context
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of bytes used to generate the trace ID
	TraceIDLength = 16 // 32 hex characters
)

// SetTraceID adds a fresh trace ID to the context, for correlating
// logs and error responses belonging to one request.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// WithUser stores the authenticated user's identity in the context.
func WithUser(ctx context.Context, userID uuid.UUID, role domain.Role) context.Context {
	ctx = context.WithValue(ctx, UserIDContextKey, userID)
	return context.WithValue(ctx, UserRoleContextKey, role)
}

// UserID retrieves the authenticated user's ID from the context.
func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	return id, ok
}

// UserRole retrieves the authenticated user's role from the context.
func UserRole(ctx context.Context) (domain.Role, bool) {
	role, ok := ctx.Value(UserRoleContextKey).(domain.Role)
	return role, ok
}

// generateTraceID creates a random 32-character hex trace ID. A failed
// read from crypto/rand falls back to a UUID rather than a static value.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	if n, err := rand.Read(b); err != nil || n != TraceIDLength {
		slog.Error("failed to generate secure random trace ID",
			"error", err,
			"bytes_read", n)
		return uuid.New().String()
	}
	return hex.EncodeToString(b)
}
