package repository

import (
	"context"

	"github.com/abrezinsky/electora/internal/models"
)

// ElectionRepository defines election data operations
type ElectionRepository interface {
	CreateElection(ctx context.Context, e *models.Election) error
	GetElection(ctx context.Context, id string) (*models.Election, error)
	ListElections(ctx context.Context) ([]models.Election, error)
	ElectionExists(ctx context.Context, id string) (bool, error)
	UpdateElectionStatus(ctx context.Context, id, status string) error
	DeleteElection(ctx context.Context, id string) error
	ListCategories(ctx context.Context, electionID string) ([]models.Category, error)
}

// VoteRepository defines vote data operations
type VoteRepository interface {
	InsertVote(ctx context.Context, v *models.Vote) (voterCount int, err error)
	ListVotes(ctx context.Context, electionID string) ([]models.Vote, error)
	ListVotesForCategory(ctx context.Context, electionID, categoryID string) ([]models.CategoryBallot, error)
	CountVotes(ctx context.Context, electionID string) (int, error)
	HasVoterVoted(ctx context.Context, electionID, voterID string) (bool, error)
}

// UserRepository defines user account operations
type UserRepository interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
}

// FullRepository combines all repository interfaces
// Use this when a service needs access to multiple domains
type FullRepository interface {
	ElectionRepository
	VoteRepository
	UserRepository
	Ping(ctx context.Context) error
}

// Ensure Repository implements all interfaces
var _ FullRepository = (*Repository)(nil)
