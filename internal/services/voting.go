package services

import (
	"context"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/abrezinsky/electora/internal/errors"
	"github.com/abrezinsky/electora/internal/logger"
	"github.com/abrezinsky/electora/internal/models"
	"github.com/abrezinsky/electora/internal/repository"
	"github.com/abrezinsky/electora/internal/tally"
)

// VotingServiceRepository defines the repository methods needed by VotingService
type VotingServiceRepository interface {
	GetElection(ctx context.Context, id string) (*models.Election, error)
	ElectionExists(ctx context.Context, id string) (bool, error)
	repository.VoteRepository
}

// VotingService handles vote-related business logic
type VotingService struct {
	log         logger.Logger
	repo        VotingServiceRepository
	broadcaster Broadcaster
	now         func() time.Time

	// mu makes the duplicate-voter check and the insert one step
	mu sync.Mutex
}

// NewVotingService creates a new VotingService
func NewVotingService(log logger.Logger, repo VotingServiceRepository) *VotingService {
	return &VotingService{
		log:  log,
		repo: repo,
		now:  time.Now,
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *VotingService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetClock replaces the time source (for testing)
func (s *VotingService) SetClock(now func() time.Time) {
	s.now = now
}

// SubmitVoteRequest is a voter's submission for a whole election
type SubmitVoteRequest struct {
	VoterID   string                  `json:"voterId"`
	VoterName string                  `json:"voterName"`
	Votes     []models.CategoryBallot `json:"votes"`
	IPAddress string                  `json:"-"`
}

// VoteReceipt is returned after a vote is accepted
type VoteReceipt struct {
	VoteID     string `json:"voteId"`
	VoterCount int    `json:"voterCount"`
}

// SubmitVote validates a submission against the election and stores it.
// Either the whole submission is stored or nothing is.
func (s *VotingService) SubmitVote(ctx context.Context, electionID string, req SubmitVoteRequest) (*VoteReceipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.repo.GetElection(ctx, electionID)
	if err == repository.ErrNotFound {
		return nil, ErrElectionNotFound
	}
	if err != nil {
		return nil, err
	}

	if e.Status != models.StatusActive {
		return nil, ErrElectionNotActive
	}
	now := s.now()
	if e.EndDate != nil && now.After(*e.EndDate) {
		return nil, ErrElectionEnded
	}
	if len(e.AllowedVoters) > 0 && !contains(e.AllowedVoters, req.VoterID) {
		return nil, ErrVoterNotAllowed
	}
	if req.VoterID != "" {
		voted, err := s.repo.HasVoterVoted(ctx, electionID, req.VoterID)
		if err != nil {
			return nil, err
		}
		if voted {
			return nil, ErrAlreadyVoted
		}
	}

	if err := validateBallots(e, req.Votes); err != nil {
		return nil, err
	}

	voterName := strings.TrimSpace(req.VoterName)
	if voterName == "" {
		voterName = "Anonymous"
	}
	vote := &models.Vote{
		ID:          uuid.NewString(),
		ElectionID:  electionID,
		VoterID:     req.VoterID,
		VoterName:   voterName,
		Votes:       req.Votes,
		SubmittedAt: now,
		IPAddress:   req.IPAddress,
	}

	count, err := s.repo.InsertVote(ctx, vote)
	if err == repository.ErrDuplicate {
		return nil, ErrAlreadyVoted
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("Vote recorded", "election", electionID, "vote_id", vote.ID, "voter_count", count)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastVoterCount(electionID, count)
	}

	return &VoteReceipt{VoteID: vote.ID, VoterCount: count}, nil
}

// validateBallots checks that the submission covers every category exactly
// once and that each ballot has the shape the contest type needs
func validateBallots(e *models.Election, ballots []models.CategoryBallot) error {
	if ballots == nil {
		return ErrInvalidVoteData
	}

	submitted := make(map[string]bool, len(ballots))
	for _, b := range ballots {
		submitted[b.CategoryID] = true
	}
	for _, cat := range e.Categories {
		if !submitted[cat.ID] {
			return ErrMissingCategories
		}
	}

	method, ok := tally.ParseMethod(e.ContestType)
	if !ok {
		return errors.Validationf("Unsupported contest type %q", e.ContestType)
	}

	seen := make(map[string]bool, len(ballots))
	for _, b := range ballots {
		cat, ok := findCategory(e.Categories, b.CategoryID)
		if !ok {
			return ErrInvalidCategoryID
		}
		if seen[b.CategoryID] {
			return errors.Validationf("Category %q was voted on more than once", cat.Name).WithCode(CodeInvalidBallot)
		}
		seen[b.CategoryID] = true

		err := tally.ValidateBallot(method, toTallyCategory(cat), tally.Ballot{
			Preferences: b.Preferences,
			Selected:    b.Selected,
		})
		var ballotErr *tally.BallotError
		if stderrors.As(err, &ballotErr) {
			return errors.Validation(ballotErr.Reason).WithCode(CodeInvalidBallot)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ListVotes returns the raw votes of an election
func (s *VotingService) ListVotes(ctx context.Context, electionID string) ([]models.Vote, error) {
	exists, err := s.repo.ElectionExists(ctx, electionID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrElectionNotFound
	}
	return s.repo.ListVotes(ctx, electionID)
}

func findCategory(categories []models.Category, id string) (models.Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return models.Category{}, false
}

func toTallyCategory(c models.Category) tally.Category {
	return tally.Category{ID: c.ID, Name: c.Name, Candidates: c.CandidateNames()}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
