package dto

type MessageResponse struct {
	Message string `json:"message"`
}

type EmailMessageResponse struct {
	Email   string `json:"email"`
	Message string `json:"message"`
}

type ProfileResponse struct {
	Email string `json:"email"`
}

type ResetTokenResponse struct {
	Email      string `json:"email"`
	ResetToken string `json:"reset_token"`
}

type UserResponse struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
