package dto

// LoginRequest is the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the successful response for login and registration.
type LoginResponse struct {
	AccessToken  string  `json:"token"`
	RefreshToken string  `json:"refresh_token,omitempty"`
	ExpiresAt    string  `json:"expires_at,omitempty"`
	User         UserDTO `json:"user"`
}

// RefreshTokenRequest is the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse is the successful response for the token refresh
// endpoint, carrying a new token pair.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresAt    string `json:"expires_at"`
}
