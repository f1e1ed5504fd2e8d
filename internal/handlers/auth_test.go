package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/abrezinsky/electora/internal/handlers"
	"github.com/abrezinsky/electora/internal/models"
)

func TestLogin(t *testing.T) {
	s := newTestSetup(t)

	rec, resp := s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{"username": "admin", "password": "admin123"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp.Message != "Login successful" {
		t.Errorf("unexpected message %q", resp.Message)
	}

	var body handlers.AuthResponse
	decodeData(t, resp, &body)
	if body.Token == "" || body.User.Username != "admin" || body.User.Role != models.RoleManager {
		t.Errorf("unexpected auth response %+v", body)
	}

	rec, _ = s.do(t, http.MethodGet, "/api/users", body.Token, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("expected issued token to work, got %d", rec.Code)
	}
}

func TestLogin_Failures(t *testing.T) {
	s := newTestSetup(t)

	tests := []struct {
		name   string
		body   interface{}
		status int
	}{
		{"wrong password", map[string]string{"username": "admin", "password": "nope"}, http.StatusUnauthorized},
		{"unknown user", map[string]string{"username": "ghost", "password": "admin123"}, http.StatusUnauthorized},
		{"missing fields", map[string]string{"username": "admin"}, http.StatusBadRequest},
		{"bad json", "{", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, resp := s.do(t, http.MethodPost, "/api/auth/login", "", tt.body)
			if rec.Code != tt.status {
				t.Errorf("expected %d, got %d: %s", tt.status, rec.Code, rec.Body.String())
			}
			if resp.Success {
				t.Error("expected success false")
			}
		})
	}
}

func TestRegister(t *testing.T) {
	s := newTestSetup(t)
	body := map[string]string{
		"username":        "sam",
		"email":           "sam@example.com",
		"password":        "hunter22",
		"confirmPassword": "hunter22",
	}

	rec, resp := s.do(t, http.MethodPost, "/api/auth/register", "", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var auth handlers.AuthResponse
	decodeData(t, resp, &auth)
	if auth.User.Role != models.RoleVoter || auth.Token == "" {
		t.Errorf("unexpected auth response %+v", auth)
	}

	rec, resp = s.do(t, http.MethodPost, "/api/auth/register", "", body)
	if rec.Code != http.StatusBadRequest || resp.Message != "Username already exists" {
		t.Errorf("expected duplicate rejected, got %d %s", rec.Code, rec.Body.String())
	}

	body["username"] = "sam2"
	body["confirmPassword"] = "different"
	rec, resp = s.do(t, http.MethodPost, "/api/auth/register", "", body)
	if rec.Code != http.StatusBadRequest || resp.Message != "Passwords do not match" {
		t.Errorf("expected mismatch rejected, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestProfile(t *testing.T) {
	s := newTestSetup(t)

	rec, resp := s.do(t, http.MethodGet, "/api/auth/profile", s.voterToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var user handlers.UserResponse
	decodeData(t, resp, &user)
	if user.Username != "pat" || user.Email != "pat@example.com" {
		t.Errorf("unexpected profile %+v", user)
	}

	rec, _ = s.do(t, http.MethodGet, "/api/auth/profile", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", rec.Code)
	}

	s.repo.GetUserByIDError = errors.New("db down")
	rec, _ = s.do(t, http.MethodGet, "/api/auth/profile", s.voterToken, nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 on repository failure, got %d", rec.Code)
	}
}

func TestLogout(t *testing.T) {
	s := newTestSetup(t)

	rec, resp := s.do(t, http.MethodPost, "/api/auth/logout", s.voterToken, nil)
	if rec.Code != http.StatusOK || resp.Message != "Logout successful" {
		t.Fatalf("expected 200, got %d %s", rec.Code, rec.Body.String())
	}

	rec, _ = s.do(t, http.MethodGet, "/api/auth/profile", s.voterToken, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected revoked token rejected, got %d", rec.Code)
	}
}

func TestListUsers(t *testing.T) {
	s := newTestSetup(t)

	rec, resp := s.do(t, http.MethodGet, "/api/users", s.managerToken, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var users []map[string]interface{}
	decodeData(t, resp, &users)
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}
	for _, u := range users {
		if _, leaked := u["passwordHash"]; leaked {
			t.Error("password hash exposed")
		}
	}
}
