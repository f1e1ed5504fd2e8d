package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/abrezinsky/electora/internal/logger"
	"github.com/abrezinsky/electora/internal/models"
	"github.com/abrezinsky/electora/internal/repository"
	"github.com/abrezinsky/electora/internal/services"
	"github.com/abrezinsky/electora/internal/testutil"
)

// fixedNow is the clock every service test runs at
var fixedNow = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

// recordingBroadcaster captures broadcasts for assertions
type recordingBroadcaster struct {
	mu       sync.Mutex
	statuses []string
	counts   []int
}

func (b *recordingBroadcaster) BroadcastElectionStatus(electionID, status string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.statuses = append(b.statuses, electionID+":"+status)
}

func (b *recordingBroadcaster) BroadcastVoterCount(electionID string, voterCount int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.counts = append(b.counts, voterCount)
}

type testServices struct {
	repo      *repository.Repository
	elections *services.ElectionService
	voting    *services.VotingService
	results   *services.ResultsService
	events    *recordingBroadcaster
}

// setupServices wires every service over one in-memory repository
func setupServices(t *testing.T) *testServices {
	t.Helper()
	repo := testutil.NewTestRepository(t)
	log := logger.Discard()
	events := &recordingBroadcaster{}

	elections := services.NewElectionService(log, repo, "http://vote.example")
	elections.SetClock(func() time.Time { return fixedNow })
	elections.SetBroadcaster(events)

	voting := services.NewVotingService(log, repo)
	voting.SetClock(func() time.Time { return fixedNow })
	voting.SetBroadcaster(events)

	return &testServices{
		repo:      repo,
		elections: elections,
		voting:    voting,
		results:   services.NewResultsService(log, repo),
		events:    events,
	}
}

func abcRequest(contestType string) services.CreateElectionRequest {
	return services.CreateElectionRequest{
		Title:       "Club Election",
		ContestType: contestType,
		Categories: []services.CategoryInput{{
			ID:   "cat1",
			Name: "President",
			Candidates: []services.CandidateInput{
				{Name: "A"}, {Name: "B"}, {Name: "C"},
			},
			NumWinners: 1,
		}},
	}
}

// activeElection creates and opens an election
func activeElection(t *testing.T, ts *testServices, req services.CreateElectionRequest) *models.Election {
	t.Helper()
	ctx := context.Background()
	e, err := ts.elections.CreateElection(ctx, req)
	if err != nil {
		t.Fatalf("CreateElection failed: %v", err)
	}
	e, err = ts.elections.UpdateStatus(ctx, e.ID, models.StatusActive)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	return e
}

func rankedVote(voterID string, prefs ...string) services.SubmitVoteRequest {
	return services.SubmitVoteRequest{
		VoterID: voterID,
		Votes:   []models.CategoryBallot{{CategoryID: "cat1", Preferences: prefs}},
	}
}

func selectedVote(voterID string, sel ...string) services.SubmitVoteRequest {
	if sel == nil {
		sel = []string{}
	}
	return services.SubmitVoteRequest{
		VoterID: voterID,
		Votes:   []models.CategoryBallot{{CategoryID: "cat1", Selected: sel}},
	}
}

func mustVote(t *testing.T, ts *testServices, electionID string, req services.SubmitVoteRequest) *services.VoteReceipt {
	t.Helper()
	receipt, err := ts.voting.SubmitVote(context.Background(), electionID, req)
	if err != nil {
		t.Fatalf("SubmitVote failed: %v", err)
	}
	return receipt
}
