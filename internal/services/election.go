package services

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/abrezinsky/electora/internal/errors"
	"github.com/abrezinsky/electora/internal/logger"
	"github.com/abrezinsky/electora/internal/models"
	"github.com/abrezinsky/electora/internal/repository"
	"github.com/abrezinsky/electora/internal/tally"
)

// maxIDAttempts bounds the search for a free timestamp id
const maxIDAttempts = 1000

// CandidateInput is a candidate as submitted by a manager
type CandidateInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CategoryInput is a category as submitted by a manager
type CategoryInput struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Candidates []CandidateInput `json:"candidates"`
	NumWinners int              `json:"numWinners"`
}

// CreateElectionRequest holds the fields for a new election
type CreateElectionRequest struct {
	Title         string          `json:"title"`
	ContestType   string          `json:"contestType"`
	Categories    []CategoryInput `json:"categories"`
	AllowedVoters []string        `json:"allowedVoters"`
	EndDate       string          `json:"endDate"`
	IsPrivate     bool            `json:"isPrivate"`
	CreatedBy     string          `json:"-"`
}

// statusTransitions lists the statuses each status may move to
var statusTransitions = map[string][]string{
	models.StatusDraft:     {models.StatusActive},
	models.StatusActive:    {models.StatusCompleted},
	models.StatusCompleted: {models.StatusActive},
}

// ElectionService handles election lifecycle business logic
type ElectionService struct {
	log         logger.Logger
	repo        repository.ElectionRepository
	baseURL     string
	broadcaster Broadcaster
	now         func() time.Time
	mu          sync.Mutex
}

// NewElectionService creates a new ElectionService. baseURL is the public
// address voters use; it prefixes links encoded in QR codes.
func NewElectionService(log logger.Logger, repo repository.ElectionRepository, baseURL string) *ElectionService {
	return &ElectionService{
		log:     log,
		repo:    repo,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *ElectionService) SetBroadcaster(b Broadcaster) {
	s.broadcaster = b
}

// SetClock replaces the time source (for testing)
func (s *ElectionService) SetClock(now func() time.Time) {
	s.now = now
}

// ListElections returns all elections
func (s *ElectionService) ListElections(ctx context.Context) ([]models.Election, error) {
	return s.repo.ListElections(ctx)
}

// GetElection returns one election
func (s *ElectionService) GetElection(ctx context.Context, id string) (*models.Election, error) {
	e, err := s.repo.GetElection(ctx, id)
	if err == repository.ErrNotFound {
		return nil, ErrElectionNotFound
	}
	return e, err
}

// CreateElection validates and stores a new draft election
func (s *ElectionService) CreateElection(ctx context.Context, req CreateElectionRequest) (*models.Election, error) {
	e, err := s.buildElection(req)
	if err != nil {
		return nil, err
	}

	ms := e.CreatedAt.UnixMilli()
	for attempt := 0; ; attempt++ {
		e.ID = strconv.FormatInt(ms, 10)
		err = s.repo.CreateElection(ctx, e)
		if err != repository.ErrDuplicate {
			break
		}
		if attempt == maxIDAttempts {
			return nil, errors.Wrap(err, errors.ErrInternal, "could not allocate election id")
		}
		ms++
	}
	if err != nil {
		return nil, err
	}

	s.log.Info("Election created", "id", e.ID, "title", e.Title, "contest_type", e.ContestType, "categories", len(e.Categories))
	return e, nil
}

func (s *ElectionService) buildElection(req CreateElectionRequest) (*models.Election, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || req.ContestType == "" || len(req.Categories) == 0 {
		return nil, ErrMissingFields
	}
	if _, ok := tally.ParseMethod(req.ContestType); !ok {
		return nil, errors.Validationf("Unsupported contest type %q", req.ContestType)
	}

	e := &models.Election{
		Title:         title,
		Status:        models.StatusDraft,
		ContestType:   req.ContestType,
		AllowedVoters: req.AllowedVoters,
		IsPrivate:     req.IsPrivate,
		CreatedBy:     req.CreatedBy,
		CreatedAt:     s.now(),
	}
	if e.AllowedVoters == nil {
		e.AllowedVoters = []string{}
	}

	if req.EndDate != "" {
		end, err := parseEndDate(req.EndDate)
		if err != nil {
			return nil, errors.Validationf("Invalid endDate %q", req.EndDate)
		}
		e.EndDate = &end
	}

	seenIDs := make(map[string]bool, len(req.Categories))
	for _, in := range req.Categories {
		cat := models.Category{
			ID:         in.ID,
			Name:       strings.TrimSpace(in.Name),
			NumWinners: in.NumWinners,
		}
		if cat.ID == "" {
			cat.ID = uuid.NewString()
		}
		if cat.NumWinners < 1 {
			cat.NumWinners = 1
		}

		seenNames := make(map[string]bool, len(in.Candidates))
		for _, c := range in.Candidates {
			name := strings.TrimSpace(c.Name)
			if name == "" {
				continue
			}
			if seenNames[name] {
				return nil, errors.Validationf("Duplicate candidate %q in category %q", name, cat.Name)
			}
			seenNames[name] = true
			cat.Candidates = append(cat.Candidates, models.Candidate{Name: name, Description: c.Description})
		}

		if cat.Name == "" || len(cat.Candidates) < 2 {
			return nil, ErrInvalidCategory
		}
		if seenIDs[cat.ID] {
			return nil, errors.Validationf("Duplicate category ID %q", cat.ID)
		}
		seenIDs[cat.ID] = true
		e.Categories = append(e.Categories, cat)
	}

	return e, nil
}

// parseEndDate accepts RFC 3339 timestamps and plain dates
func parseEndDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// UpdateStatus moves an election to a new status.
// Setting the current status again is a no-op.
func (s *ElectionService) UpdateStatus(ctx context.Context, id, status string) (*models.Election, error) {
	if _, known := statusTransitions[status]; !known {
		return nil, errors.Validationf("Invalid status %q", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.GetElection(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.Status == status {
		return e, nil
	}
	if !canTransition(e.Status, status) {
		return nil, errors.Conflictf("Cannot change election status from %s to %s", e.Status, status)
	}

	if err := s.repo.UpdateElectionStatus(ctx, id, status); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrElectionNotFound
		}
		return nil, err
	}
	e.Status = status

	s.log.Info("Election status changed", "id", id, "status", status)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastElectionStatus(id, status)
	}
	return e, nil
}

func canTransition(from, to string) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// DeleteElection removes an election and all of its votes
func (s *ElectionService) DeleteElection(ctx context.Context, id string) error {
	err := s.repo.DeleteElection(ctx, id)
	if err == repository.ErrNotFound {
		return ErrElectionNotFound
	}
	if err != nil {
		return err
	}
	s.log.Info("Election deleted", "id", id)
	return nil
}

// VotingURL returns the public voting link for an election
func (s *ElectionService) VotingURL(id string) string {
	return s.baseURL + "/vote/" + id
}

// VotingQR returns a PNG QR code of the election's voting link
func (s *ElectionService) VotingQR(ctx context.Context, id string) ([]byte, error) {
	exists, err := s.repo.ElectionExists(ctx, id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrElectionNotFound
	}
	return qrcode.Encode(s.VotingURL(id), qrcode.Medium, 256)
}

// SeedSampleElection creates the demo election shown on a fresh install
func (s *ElectionService) SeedSampleElection(ctx context.Context) (*models.Election, error) {
	e, err := s.CreateElection(ctx, CreateElectionRequest{
		Title:       "Sample Election",
		ContestType: string(tally.Condorcet),
		Categories: []CategoryInput{{
			ID:   "cat1",
			Name: "President",
			Candidates: []CandidateInput{
				{Name: "Alice Johnson", Description: "Experienced leader"},
				{Name: "Bob Smith", Description: "Innovative thinker"},
				{Name: "Carol Davis", Description: "Community advocate"},
			},
			NumWinners: 1,
		}},
	})
	if err != nil {
		return nil, err
	}
	return s.UpdateStatus(ctx, e.ID, models.StatusActive)
}
