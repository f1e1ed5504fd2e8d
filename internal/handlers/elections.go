package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/electora/internal/auth"
	"github.com/abrezinsky/electora/internal/models"
	"github.com/abrezinsky/electora/internal/services"
)

// handleListElections returns every election
func (h *Handlers) handleListElections(w http.ResponseWriter, r *http.Request) {
	elections, err := h.Elections.ListElections(r.Context())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if elections == nil {
		elections = []models.Election{}
	}
	respondOK(w, elections)
}

// handleGetElection returns one election
func (h *Handlers) handleGetElection(w http.ResponseWriter, r *http.Request) {
	e, err := h.Elections.GetElection(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, e)
}

// handleCreateElection creates a draft election owned by the caller
func (h *Handlers) handleCreateElection(w http.ResponseWriter, r *http.Request) {
	var req services.CreateElectionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}
	if claims, ok := auth.UserFromContext(r.Context()); ok {
		req.CreatedBy = claims.ID
	}

	e, err := h.Elections.CreateElection(r.Context(), req)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondCreated(w, "Election created successfully", e)
}

// handleUpdateStatus moves an election through its lifecycle
func (h *Handlers) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, r, err)
		return
	}

	e, err := h.Elections.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondSuccess(w, "Election status updated successfully", e)
}

// handleDeleteElection removes an election and its votes
func (h *Handlers) handleDeleteElection(w http.ResponseWriter, r *http.Request) {
	if err := h.Elections.DeleteElection(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondSuccess(w, "Election deleted successfully", nil)
}

// handleVotingQR serves a PNG QR code of the election's voting link
func (h *Handlers) handleVotingQR(w http.ResponseWriter, r *http.Request) {
	png, err := h.Elections.VotingQR(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}

// handleListVotes returns the raw votes of an election
func (h *Handlers) handleListVotes(w http.ResponseWriter, r *http.Request) {
	votes, err := h.Voting.ListVotes(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if votes == nil {
		votes = []models.Vote{}
	}
	respondOK(w, votes)
}

// handleGetResults computes results; managers may see them before completion
func (h *Handlers) handleGetResults(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.UserFromContext(r.Context())
	isManager := ok && claims.Role == models.RoleManager

	results, err := h.Results.GetResults(r.Context(), chi.URLParam(r, "id"), isManager)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondOK(w, results)
}
