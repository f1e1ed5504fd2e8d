package testutil

import (
	"path/filepath"
	"testing"

	"github.com/abrezinsky/electora/internal/repository"
)

// NewTestRepository creates a fresh in-memory repository with the schema
// applied. It is closed when the test ends.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()
	return open(t, ":memory:")
}

// TempDBPath returns a database file path inside a per-test temp dir, for
// tests that need state to survive closing and reopening the store
func TempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "electora.db")
}

// OpenRepository opens the repository at path and closes it on cleanup
func OpenRepository(t *testing.T, path string) *repository.Repository {
	t.Helper()
	return open(t, path)
}

func open(t *testing.T, path string) *repository.Repository {
	t.Helper()
	repo, err := repository.New(path)
	if err != nil {
		t.Fatalf("failed to open test repository %s: %v", path, err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}
