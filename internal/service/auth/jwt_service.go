package auth

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rosterhq/roster-api/internal/domain"
)

// JWTService defines operations for managing JWT authentication tokens.
type JWTService interface {
	// GenerateToken creates a signed JWT access token for the user.
	GenerateToken(ctx context.Context, userID uuid.UUID, role domain.Role) (string, error)

	// ValidateToken validates an access token string and extracts its
	// claims. Fails with ErrExpiredToken, ErrInvalidToken or
	// ErrWrongTokenType as appropriate.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)

	// GenerateRefreshToken creates a signed JWT refresh token for the
	// user. Refresh tokens have a longer lifetime and are used to obtain
	// new access tokens.
	GenerateRefreshToken(ctx context.Context, userID uuid.UUID, role domain.Role) (string, error)

	// ValidateRefreshToken validates a refresh token string and extracts
	// its claims.
	ValidateRefreshToken(ctx context.Context, tokenString string) (*Claims, error)

	// AccessTokenLifetime returns the configured access token lifetime,
	// used by handlers to report expiry to clients.
	AccessTokenLifetime() time.Duration
}

// Claims represents the custom claims carried by issued tokens.
type Claims struct {
	// UserID is the unique identifier of the user the token was issued for.
	UserID uuid.UUID `json:"uid,omitempty"`

	// Role is the user's authorization level at issuance time.
	Role domain.Role `json:"role,omitempty"`

	// TokenType indicates the purpose of the token ("access" or "refresh").
	// Used to prevent token misuse across different contexts.
	TokenType string `json:"type,omitempty"`

	// Standard registered JWT claims
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
