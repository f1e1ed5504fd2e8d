package services

import (
	"context"

	"github.com/abrezinsky/electora/internal/logger"
	"github.com/abrezinsky/electora/internal/models"
	"github.com/abrezinsky/electora/internal/repository"
	"github.com/abrezinsky/electora/internal/tally"
)

// ResultsServiceRepository defines the repository methods needed by ResultsService
type ResultsServiceRepository interface {
	GetElection(ctx context.Context, id string) (*models.Election, error)
	ListVotesForCategory(ctx context.Context, electionID, categoryID string) ([]models.CategoryBallot, error)
	CountVotes(ctx context.Context, electionID string) (int, error)
}

// ResultsService computes election results on demand
type ResultsService struct {
	log  logger.Logger
	repo ResultsServiceRepository
}

// NewResultsService creates a new ResultsService
func NewResultsService(log logger.Logger, repo ResultsServiceRepository) *ResultsService {
	return &ResultsService{log: log, repo: repo}
}

// CategoryResult is the outcome of one category
type CategoryResult struct {
	CategoryID   string        `json:"categoryId"`
	CategoryName string        `json:"categoryName"`
	Results      *tally.Result `json:"results"`
}

// ResultsSummary groups the per-category outcomes of an election
type ResultsSummary struct {
	ContestType string           `json:"contestType"`
	Categories  []CategoryResult `json:"categories"`
}

// ElectionResults is the full results document for an election
type ElectionResults struct {
	Election   *models.Election `json:"election"`
	Results    ResultsSummary   `json:"results"`
	TotalVotes int              `json:"totalVotes"`
}

// GetResults computes results for an election. Results of an election that
// is not completed are only visible to managers.
func (s *ResultsService) GetResults(ctx context.Context, electionID string, isManager bool) (*ElectionResults, error) {
	e, err := s.repo.GetElection(ctx, electionID)
	if err == repository.ErrNotFound {
		return nil, ErrElectionNotFound
	}
	if err != nil {
		return nil, err
	}
	if e.Status != models.StatusCompleted && !isManager {
		return nil, ErrResultsUnavailable
	}

	total, err := s.repo.CountVotes(ctx, electionID)
	if err != nil {
		return nil, err
	}

	out := &ElectionResults{
		Election:   e,
		TotalVotes: total,
		Results:    ResultsSummary{ContestType: e.ContestType, Categories: []CategoryResult{}},
	}
	for _, cat := range e.Categories {
		ballots, err := s.repo.ListVotesForCategory(ctx, electionID, cat.ID)
		if err != nil {
			return nil, err
		}
		res, err := tallyCategory(e.ContestType, cat, ballots)
		if err != nil {
			return nil, err
		}
		out.Results.Categories = append(out.Results.Categories, *res)
	}

	s.log.Debug("Results computed", "election", electionID, "total_votes", total)
	return out, nil
}

// TallyVotes computes the results document for an election from its raw
// votes without touching storage
func TallyVotes(e *models.Election, votes []models.Vote) (*ElectionResults, error) {
	out := &ElectionResults{
		Election:   e,
		TotalVotes: len(votes),
		Results:    ResultsSummary{ContestType: e.ContestType, Categories: []CategoryResult{}},
	}
	for _, cat := range e.Categories {
		var ballots []models.CategoryBallot
		for _, v := range votes {
			for _, b := range v.Votes {
				if b.CategoryID == cat.ID {
					ballots = append(ballots, b)
				}
			}
		}
		res, err := tallyCategory(e.ContestType, cat, ballots)
		if err != nil {
			return nil, err
		}
		out.Results.Categories = append(out.Results.Categories, *res)
	}
	return out, nil
}

func tallyCategory(contestType string, cat models.Category, ballots []models.CategoryBallot) (*CategoryResult, error) {
	in := make([]tally.Ballot, len(ballots))
	for i, b := range ballots {
		in[i] = tally.Ballot{Preferences: b.Preferences, Selected: b.Selected}
	}
	res, err := tally.Compute(tally.Method(contestType), toTallyCategory(cat), in)
	if err != nil {
		return nil, err
	}
	return &CategoryResult{CategoryID: cat.ID, CategoryName: cat.Name, Results: res}, nil
}
