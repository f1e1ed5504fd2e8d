package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/abrezinsky/electora/internal/logger"
	"github.com/abrezinsky/electora/internal/models"
	"github.com/abrezinsky/electora/internal/repository/mock"
	"github.com/abrezinsky/electora/internal/services"
)

func TestGetResults_Visibility(t *testing.T) {
	ts := setupServices(t)
	ctx := context.Background()
	e := activeElection(t, ts, abcRequest("Plurality"))
	mustVote(t, ts, e.ID, selectedVote("v1", "A"))

	if _, err := ts.results.GetResults(ctx, e.ID, false); err != services.ErrResultsUnavailable {
		t.Errorf("expected ErrResultsUnavailable for voter on active election, got %v", err)
	}
	if _, err := ts.results.GetResults(ctx, e.ID, true); err != nil {
		t.Errorf("expected manager to see live results, got %v", err)
	}

	ts.elections.UpdateStatus(ctx, e.ID, models.StatusCompleted)
	if _, err := ts.results.GetResults(ctx, e.ID, false); err != nil {
		t.Errorf("expected completed results to be public, got %v", err)
	}

	if _, err := ts.results.GetResults(ctx, "nope", true); err != services.ErrElectionNotFound {
		t.Errorf("expected ErrElectionNotFound, got %v", err)
	}
}

func TestGetResults_Plurality(t *testing.T) {
	ts := setupServices(t)
	e := activeElection(t, ts, abcRequest("Plurality"))
	for i, choice := range []string{"A", "B", "A", "C", "A"} {
		mustVote(t, ts, e.ID, selectedVote(string(rune('a'+i)), choice))
	}

	res, err := ts.results.GetResults(context.Background(), e.ID, true)
	if err != nil {
		t.Fatalf("GetResults failed: %v", err)
	}
	if res.TotalVotes != 5 || res.Results.ContestType != "Plurality" {
		t.Errorf("unexpected summary: total=%d type=%s", res.TotalVotes, res.Results.ContestType)
	}
	cat := res.Results.Categories[0]
	if cat.CategoryID != "cat1" || cat.CategoryName != "President" {
		t.Errorf("unexpected category: %+v", cat)
	}
	if cat.Results.VoteCounts["A"] != 3 || cat.Results.VoteCounts["B"] != 1 {
		t.Errorf("unexpected counts: %v", cat.Results.VoteCounts)
	}
	if len(cat.Results.Winners) != 1 || cat.Results.Winners[0] != "A" {
		t.Errorf("expected winner A, got %v", cat.Results.Winners)
	}
}

func TestGetResults_CondorcetCycle(t *testing.T) {
	ts := setupServices(t)
	e := activeElection(t, ts, abcRequest("Condorcet"))
	mustVote(t, ts, e.ID, rankedVote("v1", "A", "B", "C"))
	mustVote(t, ts, e.ID, rankedVote("v2", "B", "C", "A"))
	mustVote(t, ts, e.ID, rankedVote("v3", "C", "A", "B"))

	res, err := ts.results.GetResults(context.Background(), e.ID, true)
	if err != nil {
		t.Fatalf("GetResults failed: %v", err)
	}
	r := res.Results.Categories[0].Results
	if !r.NoCondorcetWinner || len(r.Winners) != 0 {
		t.Errorf("expected no Condorcet winner, got %v", r.Winners)
	}
	for name, rec := range r.CandidateScores {
		if rec.Wins != 1 || rec.Losses != 1 {
			t.Errorf("expected %s to win one and lose one, got %+v", name, rec)
		}
	}
	if len(r.Cycles) != 1 || len(r.Cycles[0]) != 3 {
		t.Errorf("expected one three-way cycle, got %v", r.Cycles)
	}
}

func TestGetResults_NoVotes(t *testing.T) {
	ts := setupServices(t)
	e := activeElection(t, ts, abcRequest("Borda"))

	res, err := ts.results.GetResults(context.Background(), e.ID, true)
	if err != nil {
		t.Fatalf("GetResults failed: %v", err)
	}
	r := res.Results.Categories[0].Results
	if res.TotalVotes != 0 || r.TotalVotes != 0 {
		t.Errorf("expected zero votes, got %d/%d", res.TotalVotes, r.TotalVotes)
	}
	if len(r.Winners) != 3 {
		t.Errorf("expected a three-way tie at zero, got %v", r.Winners)
	}
}

func TestGetResults_RepositoryErrors(t *testing.T) {
	ts := setupServices(t)
	e := activeElection(t, ts, abcRequest("Approval"))

	repo := mock.NewRepository(ts.repo)
	svc := services.NewResultsService(logger.Discard(), repo)

	repo.CountVotesError = errors.New("db down")
	if _, err := svc.GetResults(context.Background(), e.ID, true); err == nil {
		t.Error("expected CountVotes error")
	}
	repo.CountVotesError = nil

	repo.ListVotesForCategoryError = errors.New("db down")
	if _, err := svc.GetResults(context.Background(), e.ID, true); err == nil {
		t.Error("expected ListVotesForCategory error")
	}
	repo.ListVotesForCategoryError = nil

	repo.GetElectionError = errors.New("db down")
	if _, err := svc.GetResults(context.Background(), e.ID, true); err == nil {
		t.Error("expected GetElection error")
	}
}

func TestTallyVotes(t *testing.T) {
	e := &models.Election{
		ID:          "1",
		ContestType: "Borda",
		Categories: []models.Category{{
			ID:         "cat1",
			Name:       "President",
			Candidates: []models.Candidate{{Name: "A"}, {Name: "B"}, {Name: "C"}},
		}},
	}
	votes := []models.Vote{
		{Votes: []models.CategoryBallot{{CategoryID: "cat1", Preferences: []string{"A", "B", "C"}}}},
		{Votes: []models.CategoryBallot{{CategoryID: "cat1", Preferences: []string{"B", "A", "C"}}}},
		{Votes: []models.CategoryBallot{{CategoryID: "cat1", Preferences: []string{"A", "C", "B"}}}},
	}

	res, err := services.TallyVotes(e, votes)
	if err != nil {
		t.Fatalf("TallyVotes failed: %v", err)
	}
	scores := res.Results.Categories[0].Results.Scores
	if scores["A"] != 5 || scores["B"] != 3 || scores["C"] != 1 {
		t.Errorf("unexpected Borda scores: %v", scores)
	}
	if res.TotalVotes != 3 {
		t.Errorf("expected 3 votes, got %d", res.TotalVotes)
	}

	e.ContestType = "Range"
	if _, err := services.TallyVotes(e, votes); err == nil {
		t.Error("expected unknown contest type error")
	}
}
