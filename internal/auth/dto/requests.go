package dto

type LoginRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	TwoFactorCode string `json:"twoFactorCode,omitempty"`
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Enable2FA bool   `json:"enable2FA"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}
