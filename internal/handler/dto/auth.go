package dto

import (
	"time"

	"github.com/secondbrain/secondbrain/internal/model"
	"github.com/secondbrain/secondbrain/internal/service"
)

// CredentialsRequest is the body of register and login requests.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterInput converts the request to service input.
func (r CredentialsRequest) RegisterInput() service.RegisterInput {
	return service.RegisterInput{Email: r.Email, Password: r.Password}
}

// LoginInput converts the request to service input.
func (r CredentialsRequest) LoginInput() service.LoginInput {
	return service.LoginInput{Email: r.Email, Password: r.Password}
}

// UserResponse is a user in API responses. The password verifier never leaves the server.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// ToUserResponse converts a user model to a response DTO.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// ToAuthResponse converts a session to a response DTO.
func ToAuthResponse(s *service.Session) AuthResponse {
	return AuthResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt,
		User:      ToUserResponse(s.User),
	}
}
