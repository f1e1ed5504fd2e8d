package services

import "github.com/abrezinsky/electora/internal/errors"

// Error codes carried on service errors for clients that branch on them
const (
	CodeAlreadyVoted     = "ALREADY_VOTED"
	CodeElectionInactive = "ELECTION_NOT_ACTIVE"
	CodeElectionEnded    = "ELECTION_ENDED"
	CodeInvalidBallot    = "INVALID_BALLOT"
)

// Service errors
var (
	ErrElectionNotFound   = errors.NotFound("Election not found")
	ErrUserNotFound       = errors.NotFound("User not found")
	ErrMissingFields      = errors.Validation("Missing required fields")
	ErrInvalidCategory    = errors.Validation("Each category must have a name and at least 2 candidates")
	ErrElectionNotActive  = errors.Validation("Election is not active").WithCode(CodeElectionInactive)
	ErrElectionEnded      = errors.Validation("Election has ended").WithCode(CodeElectionEnded)
	ErrVoterNotAllowed    = errors.Forbidden("You are not authorized to vote in this election")
	ErrAlreadyVoted       = errors.Validation("You have already voted in this election").WithCode(CodeAlreadyVoted)
	ErrInvalidVoteData    = errors.Validation("Invalid vote data")
	ErrMissingCategories  = errors.Validation("You must vote in all categories")
	ErrInvalidCategoryID  = errors.Validation("Invalid category ID")
	ErrResultsUnavailable = errors.Forbidden("Results not available")
	ErrInvalidCredentials = errors.Unauthorized("Invalid credentials")
	ErrCredentialsMissing = errors.Validation("Username and password are required")
	ErrRegistrationFields = errors.Validation("All fields are required")
	ErrPasswordMismatch   = errors.Validation("Passwords do not match")
	ErrPasswordTooShort   = errors.Validation("Password must be at least 6 characters long")
	ErrUsernameTaken      = errors.Validation("Username already exists")
	ErrEmailTaken         = errors.Validation("Email already registered")
)
