package types

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"display_name"`
}

// LoginRequest represents the request body for email/password sign-in
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// PasswordResetRequest represents the request body for a reset link
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required"`
}

// AuthResponse is returned by every endpoint that issues a token
type AuthResponse struct {
	Token       string `json:"token"`
	UserID      string `json:"user_id"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	Guest       bool   `json:"guest"`
}

// ToggleFavoriteResponse reports a recipe's favorite status after a toggle
type ToggleFavoriteResponse struct {
	ID         string `json:"id"`
	IsFavorite bool   `json:"is_favorite"`
	Error      string `json:"error,omitempty"`
}
