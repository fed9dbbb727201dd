package dto

// RegisterRequest captures the self-registration payload. Role is optional and
// defaults to "user".
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=user editor admin"`
}

// LoginRequest captures login credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest captures the password-reset payload.
type ForgotPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// AuthResponse bundles the issued token with the user summary.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
