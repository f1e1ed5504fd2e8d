package services

import (
	"context"

	"github.com/abrezinsky/electora/internal/models"
)

// Broadcaster defines the interface for broadcasting messages to clients
type Broadcaster interface {
	BroadcastElectionStatus(electionID, status string)
	BroadcastVoterCount(electionID string, voterCount int)
}

// ElectionServicer defines the interface for election operations
type ElectionServicer interface {
	ListElections(ctx context.Context) ([]models.Election, error)
	GetElection(ctx context.Context, id string) (*models.Election, error)
	CreateElection(ctx context.Context, req CreateElectionRequest) (*models.Election, error)
	UpdateStatus(ctx context.Context, id, status string) (*models.Election, error)
	DeleteElection(ctx context.Context, id string) error
	VotingQR(ctx context.Context, id string) ([]byte, error)
	SetBroadcaster(b Broadcaster)
}

// VotingServicer defines the interface for voting operations
type VotingServicer interface {
	SubmitVote(ctx context.Context, electionID string, req SubmitVoteRequest) (*VoteReceipt, error)
	ListVotes(ctx context.Context, electionID string) ([]models.Vote, error)
	SetBroadcaster(b Broadcaster)
}

// ResultsServicer defines the interface for results operations
type ResultsServicer interface {
	GetResults(ctx context.Context, electionID string, isManager bool) (*ElectionResults, error)
}

// UserServicer defines the interface for account operations
type UserServicer interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	Profile(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	SeedManagers(ctx context.Context, accounts []SeedAccount) error
}

// Ensure concrete types implement interfaces
var (
	_ ElectionServicer = (*ElectionService)(nil)
	_ VotingServicer   = (*VotingService)(nil)
	_ ResultsServicer  = (*ResultsService)(nil)
	_ UserServicer     = (*UserService)(nil)
)
