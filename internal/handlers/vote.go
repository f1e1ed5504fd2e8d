package handlers

import (
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/electora/internal/services"
)

// handleSubmitVote handles vote submissions
func (h *Handlers) handleSubmitVote(w http.ResponseWriter, r *http.Request) {
	var req services.SubmitVoteRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	req.IPAddress = clientIP(r)

	receipt, err := h.Voting.SubmitVote(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, "Vote submitted successfully", receipt)
}

// clientIP returns the caller's address without the port. RealIP has
// already applied any forwarding headers.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
