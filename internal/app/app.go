package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/electora/internal/auth"
	"github.com/abrezinsky/electora/internal/config"
	"github.com/abrezinsky/electora/internal/handlers"
	"github.com/abrezinsky/electora/internal/logger"
	"github.com/abrezinsky/electora/internal/repository"
	"github.com/abrezinsky/electora/internal/services"
	"github.com/abrezinsky/electora/internal/websocket"
)

const shutdownTimeout = 10 * time.Second

// App holds all application dependencies
type App struct {
	log       logger.Logger
	handlers  *handlers.Handlers
	repo      *repository.Repository
	baseURL   string
	cancelHub context.CancelFunc
}

// New creates and initializes a new application instance
func New(log logger.Logger, cfg config.Config) (*App, error) {
	repo, err := repository.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://%s:%d", getPreferredIP(realNetworkProvider{}), cfg.Port)
	}

	// Initialize services
	electionService := services.NewElectionService(log, repo, baseURL)
	votingService := services.NewVotingService(log, repo)
	resultsService := services.NewResultsService(log, repo)
	userService := services.NewUserService(log, repo)

	// Initialize WebSocket hub, stopped by Close
	ctx, cancel := context.WithCancel(context.Background())
	hub := websocket.New(log)
	hub.Start(ctx)
	electionService.SetBroadcaster(hub)
	votingService.SetBroadcaster(hub)

	if err := seed(context.Background(), log, cfg, electionService, userService); err != nil {
		cancel()
		repo.Close()
		return nil, err
	}

	h := handlers.New(
		electionService,
		votingService,
		resultsService,
		userService,
		auth.New(cfg.JWTSecret),
		hub,
		log,
	)

	return &App{
		log:       log,
		handlers:  h,
		repo:      repo,
		baseURL:   baseURL,
		cancelHub: cancel,
	}, nil
}

// seed creates the manager accounts and, when asked, the sample election
// on a database that has no elections yet
func seed(ctx context.Context, log logger.Logger, cfg config.Config, elections *services.ElectionService, users *services.UserService) error {
	var accounts []services.SeedAccount
	if cfg.AdminPassword != "" {
		accounts = append(accounts, services.SeedAccount{Username: "admin", Email: "admin@electora.com", Password: cfg.AdminPassword})
	}
	if cfg.ManagerPassword != "" {
		accounts = append(accounts, services.SeedAccount{Username: "manager", Email: "manager@electora.com", Password: cfg.ManagerPassword})
	}
	if err := users.SeedManagers(ctx, accounts); err != nil {
		return fmt.Errorf("failed to seed manager accounts: %w", err)
	}

	if !cfg.SeedSample {
		return nil
	}
	existing, err := elections.ListElections(ctx)
	if err != nil {
		return fmt.Errorf("failed to check elections: %w", err)
	}
	if len(existing) > 0 {
		log.Debug("Skipping sample election, database not empty", "elections", len(existing))
		return nil
	}
	e, err := elections.SeedSampleElection(ctx)
	if err != nil {
		return fmt.Errorf("failed to seed sample election: %w", err)
	}
	log.Info("Sample election created", "id", e.ID, "title", e.Title)
	return nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// BaseURL returns the public URL used in voting links
func (a *App) BaseURL() string {
	return a.baseURL
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	if a.cancelHub != nil {
		a.cancelHub()
	}
	if a.repo != nil {
		if err := a.repo.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}
}

// Run serves HTTP on addr until ctx is cancelled, then shuts the server down
func (a *App) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Server starting", "addr", addr, "url", a.baseURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	a.log.Info("Server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the address voters on the LAN should use to reach
// the server. Private ranges win; localhost when nothing usable is up.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP
	for _, iface := range ifaces {
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.To4() == nil || ip.IsLoopback() {
				continue
			}
			candidates = append(candidates, ip)
		}
	}

	for _, ip := range candidates {
		ipStr := ip.String()
		if strings.HasPrefix(ipStr, "192.168.") ||
			strings.HasPrefix(ipStr, "10.") ||
			isPrivate172(ip) {
			return ipStr
		}
	}
	if len(candidates) > 0 {
		return candidates[0].String()
	}
	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12 range
func isPrivate172(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
	}
	return false
}
