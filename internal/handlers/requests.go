package handlers

// LoginRequest represents a request to log in
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// StatusUpdateRequest represents a request to change an election's status
type StatusUpdateRequest struct {
	Status string `json:"status"`
}
