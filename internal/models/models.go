package models

import "time"

// Election statuses
const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// User roles
const (
	RoleManager = "election-manager"
	RoleVoter   = "voter"
)

// Election represents an election with its categories
type Election struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Status        string     `json:"status"`
	ContestType   string     `json:"contestType"`
	Categories    []Category `json:"categories"`
	VoterCount    int        `json:"voterCount"`
	AllowedVoters []string   `json:"allowedVoters"` // Empty means open to all
	EndDate       *time.Time `json:"endDate,omitempty"`
	IsPrivate     bool       `json:"isPrivate"`
	CreatedBy     string     `json:"createdBy,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// Category is one contest within an election
type Category struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Candidates []Candidate `json:"candidates"`
	NumWinners int         `json:"numWinners"`
}

// CandidateNames returns the candidate names in ballot order
func (c Category) CandidateNames() []string {
	names := make([]string, len(c.Candidates))
	for i, cand := range c.Candidates {
		names[i] = cand.Name
	}
	return names
}

// Candidate represents a choice in a category
type Candidate struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Vote represents one voter's submission for a whole election
type Vote struct {
	ID          string           `json:"id"`
	ElectionID  string           `json:"electionId"`
	VoterID     string           `json:"voterId,omitempty"`
	VoterName   string           `json:"voterName"`
	Votes       []CategoryBallot `json:"votes"`
	SubmittedAt time.Time        `json:"submittedAt"`
	IPAddress   string           `json:"ipAddress,omitempty"`
}

// CategoryBallot is a voter's ballot for a single category.
// Ranked contests fill Preferences, the others fill Selected.
type CategoryBallot struct {
	CategoryID  string   `json:"categoryId"`
	Preferences []string `json:"preferences,omitempty"`
	Selected    []string `json:"selected,omitempty"`
}

// User represents an account that can sign in
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
