package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/abrezinsky/electora/internal/auth"
	"github.com/abrezinsky/electora/internal/models"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// cors allows cross-origin requests from browser clients without credentials
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors)
	r.Use(middleware.RedirectSlashes)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", h.handleHealth)

	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	managerOnly := auth.RequireRole(models.RoleManager)

	r.Route("/api", func(r chi.Router) {
		// Auth
		r.Post("/auth/login", h.handleLogin)
		r.Post("/auth/register", h.handleRegister)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuth)
			r.Post("/auth/logout", h.handleLogout)
			r.Get("/auth/profile", h.handleProfile)
			r.With(managerOnly).Get("/users", h.handleListUsers)
		})

		// Elections (public)
		r.Get("/elections", h.handleListElections)
		r.Get("/elections/{id}", h.handleGetElection)
		r.Get("/elections/{id}/qr", h.handleVotingQR)
		r.Post("/elections/{id}/vote", h.handleSubmitVote)
		r.With(h.Auth.OptionalAuth).Get("/elections/{id}/results", h.handleGetResults)

		// Elections (managers)
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireAuth)
			r.Use(managerOnly)
			r.Post("/elections", h.handleCreateElection)
			r.Patch("/elections/{id}/status", h.handleUpdateStatus)
			r.Delete("/elections/{id}", h.handleDeleteElection)
			r.Get("/elections/{id}/votes", h.handleListVotes)
		})
	})

	return r
}

// handleHealth reports that the server is up
func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{Status: "OK", Message: "Electora server is running"})
}
