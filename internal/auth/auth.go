package auth

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/abrezinsky/electora/internal/models"
)

// TokenExpiry is how long an issued token stays valid
const TokenExpiry = 24 * time.Hour

// Election-themed words for password generation
var electionWords = []string{
	"ballot", "quorum", "caucus", "tally", "motion",
	"senate", "council", "precinct", "mandate", "ranked",
	"chair", "delegate", "forum", "second", "veto",
	"civic", "agenda", "runoff", "plural",
}

var (
	// ErrInvalidToken is returned for malformed, badly signed, expired or revoked tokens
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Claims are the token claims identifying a user
type Claims struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type contextKey struct{}

// Auth issues and checks signed bearer tokens
type Auth struct {
	secret []byte
	now    func() time.Time

	// revoked maps logged-out tokens to their expiry
	revoked map[string]time.Time
	mu      sync.RWMutex
}

// New creates a new Auth signing tokens with secret
func New(secret string) *Auth {
	return &Auth{
		secret:  []byte(secret),
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

// SetClock replaces the time source (for testing)
func (a *Auth) SetClock(now func() time.Time) {
	a.now = now
}

// GeneratePassword creates a random 3-word password
func GeneratePassword() string {
	words := make([]string, 3)
	for i := range words {
		idx := randomInt(len(electionWords))
		words[i] = electionWords[idx]
	}
	return strings.Join(words, "-")
}

// Issue signs a token for u
func (a *Auth) Issue(u *models.User) (string, error) {
	now := a.now()
	claims := Claims{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenExpiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Parse verifies a token and returns its claims
func (a *Auth) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now), jwt.WithExpirationRequired())
	if err != nil {
		return nil, ErrInvalidToken
	}

	a.mu.RLock()
	_, revoked := a.revoked[token]
	a.mu.RUnlock()
	if revoked {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Logout revokes a token until it would have expired anyway
func (a *Auth) Logout(token string) {
	claims, err := a.Parse(token)
	if err != nil {
		return
	}

	now := a.now()
	a.mu.Lock()
	defer a.mu.Unlock()
	for t, exp := range a.revoked {
		if now.After(exp) {
			delete(a.revoked, t)
		}
	}
	a.revoked[token] = claims.ExpiresAt.Time
}

// TokenFromRequest extracts the bearer token from the Authorization header
func TokenFromRequest(r *http.Request) string {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

// UserFromContext returns the claims stored by RequireAuth or OptionalAuth
func UserFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(contextKey{}).(*Claims)
	return claims, ok
}

// WithUser returns a copy of ctx carrying claims
func WithUser(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, contextKey{}, claims)
}

// RequireAuth middleware for API endpoints. A missing token is 401,
// an unusable one 403.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := TokenFromRequest(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Access token required")
			return
		}
		claims, err := a.Parse(token)
		if err != nil {
			writeError(w, http.StatusForbidden, "Invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), claims)))
	})
}

// OptionalAuth attaches the user when a valid token is present and
// otherwise lets the request through anonymously
func (a *Auth) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := TokenFromRequest(r); token != "" {
			if claims, err := a.Parse(token); err == nil {
				r = r.WithContext(WithUser(r.Context(), claims))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole middleware rejects users without one of roles. It must run
// after RequireAuth.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := UserFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Access token required")
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			writeError(w, http.StatusForbidden, "Access denied")
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": message})
}

// randomInt returns a random int in [0, max)
func randomInt(max int) int {
	bytes := make([]byte, 1)
	rand.Read(bytes)
	return int(bytes[0]) % max
}
