package handlers

import (
	"github.com/abrezinsky/electora/internal/auth"
	"github.com/abrezinsky/electora/internal/logger"
	"github.com/abrezinsky/electora/internal/services"
	"github.com/abrezinsky/electora/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Elections services.ElectionServicer
	Voting    services.VotingServicer
	Results   services.ResultsServicer
	Users     services.UserServicer
	Auth      *auth.Auth
	Hub       *websocket.Hub
	Log       logger.Logger
}

// New creates a new Handlers instance with all dependencies
func New(
	elections services.ElectionServicer,
	voting services.VotingServicer,
	results services.ResultsServicer,
	users services.UserServicer,
	tokenAuth *auth.Auth,
	hub *websocket.Hub,
	log logger.Logger,
) *Handlers {
	return &Handlers{
		Elections: elections,
		Voting:    voting,
		Results:   results,
		Users:     users,
		Auth:      tokenAuth,
		Hub:       hub,
		Log:       log,
	}
}

// NewForTesting creates a Handlers instance with a fixed signing secret,
// a discarding logger and no websocket hub
func NewForTesting(
	elections services.ElectionServicer,
	voting services.VotingServicer,
	results services.ResultsServicer,
	users services.UserServicer,
) *Handlers {
	return &Handlers{
		Elections: elections,
		Voting:    voting,
		Results:   results,
		Users:     users,
		Auth:      auth.New("test-secret"),
		Log:       logger.Discard(),
	}
}
