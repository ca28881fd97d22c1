package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/rosterhq/roster-api/internal/domain"
	"github.com/rosterhq/roster-api/internal/dto"
	"github.com/rosterhq/roster-api/internal/platform/logger"
	"github.com/rosterhq/roster-api/internal/service/auth"
	"github.com/rosterhq/roster-api/internal/store"
)

// AuthService handles login, registration and token refresh. It never
// reveals whether a failed login was caused by an unknown username or
// a wrong password.
type AuthService struct {
	users   store.UserStore
	userSvc *UserService
	hasher  auth.PasswordHasher
	tokens  auth.JWTService
	logger  *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(
	users store.UserStore,
	userSvc *UserService,
	hasher auth.PasswordHasher,
	tokens auth.JWTService,
	log *slog.Logger,
) *AuthService {
	if log == nil {
		log = slog.Default()
	}
	return &AuthService{
		users:   users,
		userSvc: userSvc,
		hasher:  hasher,
		tokens:  tokens,
		logger:  log.With(slog.String("component", "auth_service")),
	}
}

// Login authenticates a username/password pair against active users
// and issues an access/refresh token pair. Soft-deleted users cannot
// log in. Returns auth.ErrInvalidCredentials on any mismatch.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if store.IsNotFoundError(err) {
			// Burn a comparison anyway so response timing does not
			// distinguish unknown usernames from wrong passwords.
			_ = s.hasher.Compare(
				"$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy",
				req.Password,
			)
			return dto.LoginResponse{}, auth.ErrInvalidCredentials
		}
		return dto.LoginResponse{}, err
	}

	if err := s.hasher.Compare(user.HashedPassword, req.Password); err != nil {
		log.Debug("login failed: password mismatch", slog.String("username", req.Username))
		return dto.LoginResponse{}, auth.ErrInvalidCredentials
	}

	accessToken, refreshToken, expiresAt, err := s.issueTokens(ctx, user)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	log.Info("user logged in", slog.String("user_id", user.ID.String()))

	return dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         userMapper{}.ToDTO(user),
	}, nil
}

// Register creates a new account and logs it in. Self-registration
// always produces a regular user; administrators are created through
// the user management endpoints.
func (s *AuthService) Register(
	ctx context.Context,
	req dto.UserCreateRequest,
) (dto.LoginResponse, error) {
	req.Role = string(domain.RoleUser)

	created, err := s.userSvc.CreateUser(ctx, req)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	user, err := s.users.GetActiveByID(ctx, created.ID)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	accessToken, refreshToken, expiresAt, err := s.issueTokens(ctx, user)
	if err != nil {
		return dto.LoginResponse{}, err
	}

	return dto.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		User:         created,
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The
// user must still exist and be active; a soft-deleted user's refresh
// tokens are rejected even before they expire.
func (s *AuthService) Refresh(
	ctx context.Context,
	refreshToken string,
) (dto.RefreshTokenResponse, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	claims, err := s.tokens.ValidateRefreshToken(ctx, refreshToken)
	if err != nil {
		return dto.RefreshTokenResponse{}, err
	}

	user, err := s.users.GetActiveByID(ctx, claims.UserID)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("refresh rejected: user gone or inactive",
				slog.String("user_id", claims.UserID.String()))
			return dto.RefreshTokenResponse{}, auth.ErrInvalidRefreshToken
		}
		return dto.RefreshTokenResponse{}, err
	}

	accessToken, newRefreshToken, expiresAt, err := s.issueTokens(ctx, user)
	if err != nil {
		return dto.RefreshTokenResponse{}, err
	}

	return dto.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *AuthService) issueTokens(
	ctx context.Context,
	user *domain.User,
) (accessToken, refreshToken, expiresAt string, err error) {
	accessToken, err = s.tokens.GenerateToken(ctx, user.ID, user.Role)
	if err != nil {
		return "", "", "", err
	}
	refreshToken, err = s.tokens.GenerateRefreshToken(ctx, user.ID, user.Role)
	if err != nil {
		return "", "", "", err
	}
	expiresAt = time.Now().UTC().Add(s.tokens.AccessTokenLifetime()).Format(time.RFC3339)
	return accessToken, refreshToken, expiresAt, nil
}
