package handlers

import (
	"net/http"

	"github.com/abrezinsky/electora/internal/auth"
	"github.com/abrezinsky/electora/internal/models"
	"github.com/abrezinsky/electora/internal/services"
)

// handleLogin checks credentials and issues a token
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	u, err := h.Users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondWithToken(w, r, http.StatusOK, "Login successful", u)
}

// handleRegister creates a voter account and logs it in
func (h *Handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req services.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	u, err := h.Users.Register(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	h.respondWithToken(w, r, http.StatusCreated, "Registration successful", u)
}

func (h *Handlers) respondWithToken(w http.ResponseWriter, r *http.Request, status int, message string, u *models.User) {
	token, err := h.Auth.Issue(u)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, status, envelope{
		Success: true,
		Message: message,
		Data:    AuthResponse{Token: token, User: newUserResponse(u)},
	})
}

// handleLogout revokes the caller's token
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.Auth.Logout(auth.TokenFromRequest(r))
	respondSuccess(w, "Logout successful", nil)
}

// handleProfile returns the caller's account
func (h *Handlers) handleProfile(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.UserFromContext(r.Context())

	u, err := h.Users.Profile(r.Context(), claims.ID)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, newUserResponse(u))
}

// handleListUsers returns every account
func (h *Handlers) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.ListUsers(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = newUserResponse(&users[i])
	}
	respondOK(w, out)
}
