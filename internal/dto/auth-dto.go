package dto

type RegisterRequest struct {
	FirstName string  `json:"firstName" validate:"required,max=255"`
	LastName  string  `json:"lastName" validate:"required,max=255"`
	Email     string  `json:"email" validate:"required,email,max=255"`
	Password  string  `json:"password" validate:"required,min=6"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=20"`
}

type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type GoogleUserInfo struct {
	Email      string `json:"email" validate:"required,email"`
	GivenName  string `json:"given_name" validate:"required"`
	FamilyName string `json:"family_name" validate:"required"`
	ID         string `json:"id"`
}

type GoogleLoginRequest struct {
	GoogleToken string         `json:"google_token" validate:"required"`
	UserInfo    GoogleUserInfo `json:"user_info"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type AuthResponse struct {
	UserID  uint    `json:"user_id"`
	Email   string  `json:"email"`
	TokenID string  `json:"token_id"`
	Iat     float64 `json:"iat"`
	Expiry  float64 `json:"expiry"`
}
