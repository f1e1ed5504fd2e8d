package mock

import (
	"context"

	"github.com/abrezinsky/electora/internal/models"
	"github.com/abrezinsky/electora/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.InsertVoteError = errors.New("database error")
//	svc := services.NewVotingService(log, mockRepo)
//	_, err := svc.SubmitVote(ctx, "123", req)
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Election Errors =====
	CreateElectionError       error
	GetElectionError          error
	ListElectionsError        error
	ElectionExistsError       error
	UpdateElectionStatusError error
	DeleteElectionError       error
	ListCategoriesError       error

	// ===== Vote Errors =====
	InsertVoteError           error
	ListVotesError            error
	ListVotesForCategoryError error
	CountVotesError           error
	HasVoterVotedError        error

	// ===== User Errors =====
	CreateUserError        error
	GetUserByUsernameError error
	GetUserByIDError       error
	GetUserByEmailError    error
	ListUsersError         error

	PingError error
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Election Methods =====

func (m *Repository) CreateElection(ctx context.Context, e *models.Election) error {
	if m.CreateElectionError != nil {
		return m.CreateElectionError
	}
	return m.FullRepository.CreateElection(ctx, e)
}

func (m *Repository) GetElection(ctx context.Context, id string) (*models.Election, error) {
	if m.GetElectionError != nil {
		return nil, m.GetElectionError
	}
	return m.FullRepository.GetElection(ctx, id)
}

func (m *Repository) ListElections(ctx context.Context) ([]models.Election, error) {
	if m.ListElectionsError != nil {
		return nil, m.ListElectionsError
	}
	return m.FullRepository.ListElections(ctx)
}

func (m *Repository) ElectionExists(ctx context.Context, id string) (bool, error) {
	if m.ElectionExistsError != nil {
		return false, m.ElectionExistsError
	}
	return m.FullRepository.ElectionExists(ctx, id)
}

func (m *Repository) UpdateElectionStatus(ctx context.Context, id, status string) error {
	if m.UpdateElectionStatusError != nil {
		return m.UpdateElectionStatusError
	}
	return m.FullRepository.UpdateElectionStatus(ctx, id, status)
}

func (m *Repository) DeleteElection(ctx context.Context, id string) error {
	if m.DeleteElectionError != nil {
		return m.DeleteElectionError
	}
	return m.FullRepository.DeleteElection(ctx, id)
}

func (m *Repository) ListCategories(ctx context.Context, electionID string) ([]models.Category, error) {
	if m.ListCategoriesError != nil {
		return nil, m.ListCategoriesError
	}
	return m.FullRepository.ListCategories(ctx, electionID)
}

// ===== Vote Methods =====

func (m *Repository) InsertVote(ctx context.Context, v *models.Vote) (int, error) {
	if m.InsertVoteError != nil {
		return 0, m.InsertVoteError
	}
	return m.FullRepository.InsertVote(ctx, v)
}

func (m *Repository) ListVotes(ctx context.Context, electionID string) ([]models.Vote, error) {
	if m.ListVotesError != nil {
		return nil, m.ListVotesError
	}
	return m.FullRepository.ListVotes(ctx, electionID)
}

func (m *Repository) ListVotesForCategory(ctx context.Context, electionID, categoryID string) ([]models.CategoryBallot, error) {
	if m.ListVotesForCategoryError != nil {
		return nil, m.ListVotesForCategoryError
	}
	return m.FullRepository.ListVotesForCategory(ctx, electionID, categoryID)
}

func (m *Repository) CountVotes(ctx context.Context, electionID string) (int, error) {
	if m.CountVotesError != nil {
		return 0, m.CountVotesError
	}
	return m.FullRepository.CountVotes(ctx, electionID)
}

func (m *Repository) HasVoterVoted(ctx context.Context, electionID, voterID string) (bool, error) {
	if m.HasVoterVotedError != nil {
		return false, m.HasVoterVotedError
	}
	return m.FullRepository.HasVoterVoted(ctx, electionID, voterID)
}

// ===== User Methods =====

func (m *Repository) CreateUser(ctx context.Context, u *models.User) error {
	if m.CreateUserError != nil {
		return m.CreateUserError
	}
	return m.FullRepository.CreateUser(ctx, u)
}

func (m *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetUserByUsernameError != nil {
		return nil, m.GetUserByUsernameError
	}
	return m.FullRepository.GetUserByUsername(ctx, username)
}

func (m *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetUserByIDError != nil {
		return nil, m.GetUserByIDError
	}
	return m.FullRepository.GetUserByID(ctx, id)
}

func (m *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetUserByEmailError != nil {
		return nil, m.GetUserByEmailError
	}
	return m.FullRepository.GetUserByEmail(ctx, email)
}

func (m *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	if m.ListUsersError != nil {
		return nil, m.ListUsersError
	}
	return m.FullRepository.ListUsers(ctx)
}

func (m *Repository) Ping(ctx context.Context) error {
	if m.PingError != nil {
		return m.PingError
	}
	return m.FullRepository.Ping(ctx)
}
