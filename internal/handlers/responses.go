package handlers

import "github.com/abrezinsky/electora/internal/models"

// HealthResponse is the response for the health check
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// AuthResponse is returned by login and registration
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

func newUserResponse(u *models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}
