package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/abrezinsky/electora/internal/errors"
	"github.com/abrezinsky/electora/internal/logger"
	"github.com/abrezinsky/electora/internal/models"
	"github.com/abrezinsky/electora/internal/repository"
)

const minPasswordLength = 6

// RegisterRequest holds the fields for a new account
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// SeedAccount is a manager account created at startup if missing
type SeedAccount struct {
	Username string
	Email    string
	Password string
}

// UserService handles accounts and password checks
type UserService struct {
	log  logger.Logger
	repo repository.UserRepository
	cost int
}

// NewUserService creates a new UserService
func NewUserService(log logger.Logger, repo repository.UserRepository) *UserService {
	return &UserService{log: log, repo: repo, cost: bcrypt.DefaultCost}
}

// SetHashCost sets the bcrypt cost (tests use bcrypt.MinCost)
func (s *UserService) SetHashCost(cost int) {
	s.cost = cost
}

// Register creates a voter account
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)
	if username == "" || email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return nil, ErrRegistrationFields
	}
	if req.Password != req.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.repo.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if err != repository.ErrNotFound {
		return nil, err
	}
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if err != repository.ErrNotFound {
		return nil, err
	}

	u, err := s.create(ctx, username, email, req.Password, models.RoleVoter)
	if err != nil {
		return nil, err
	}
	s.log.Info("User registered", "username", u.Username)
	return u, nil
}

func (s *UserService) create(ctx context.Context, username, email, password, role string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, errors.Internal(err)
	}
	u := &models.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.CreateUser(ctx, u); err != nil {
		if err == repository.ErrDuplicate {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	return u, nil
}

// Authenticate checks a username and password
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, ErrCredentialsMissing
	}

	u, err := s.repo.GetUserByUsername(ctx, username)
	if err == repository.ErrNotFound {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		s.log.Warn("Failed login", "username", username)
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Profile returns the account with the given id
func (s *UserService) Profile(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repo.GetUserByID(ctx, id)
	if err == repository.ErrNotFound {
		return nil, ErrUserNotFound
	}
	return u, err
}

// ListUsers returns all accounts
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.repo.ListUsers(ctx)
}

// SeedManagers creates the given manager accounts unless the username exists
func (s *UserService) SeedManagers(ctx context.Context, accounts []SeedAccount) error {
	for _, a := range accounts {
		_, err := s.repo.GetUserByUsername(ctx, a.Username)
		if err == nil {
			continue
		}
		if err != repository.ErrNotFound {
			return err
		}
		if _, err := s.create(ctx, a.Username, a.Email, a.Password, models.RoleManager); err != nil {
			return err
		}
		s.log.Debug("Seeded manager account", "username", a.Username)
	}
	return nil
}
