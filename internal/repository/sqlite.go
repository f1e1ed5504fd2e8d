package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/abrezinsky/electora/internal/models"
)

// Repository provides data access methods
type Repository struct {
	db *sql.DB
}

// New creates a new Repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Enable foreign key constraints
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}

	// A single connection keeps a :memory: database alive and serialises writes
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	repo := &Repository{db: db}

	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

// DB returns the underlying database connection (for transactions)
func (r *Repository) DB() *sql.DB {
	return r.db
}

// Close closes the database connection
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks if the database connection is alive
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// migrate runs database migrations
func (r *Repository) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS elections (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'draft',
			contest_type TEXT NOT NULL,
			voter_count INTEGER NOT NULL DEFAULT 0,
			allowed_voters TEXT,
			end_date TEXT,
			is_private BOOLEAN DEFAULT 0,
			created_by TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			election_id TEXT NOT NULL,
			id TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			candidates TEXT NOT NULL,
			num_winners INTEGER NOT NULL DEFAULT 1,
			PRIMARY KEY (election_id, id),
			FOREIGN KEY (election_id) REFERENCES elections(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS votes (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT UNIQUE NOT NULL,
			election_id TEXT NOT NULL,
			voter_id TEXT,
			voter_name TEXT NOT NULL,
			ballots TEXT NOT NULL,
			ip_address TEXT,
			submitted_at TEXT NOT NULL,
			FOREIGN KEY (election_id) REFERENCES elections(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			username TEXT UNIQUE NOT NULL,
			email TEXT,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_votes_election ON votes(election_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_votes_voter ON votes(election_id, voter_id) WHERE voter_id IS NOT NULL`,
	}

	for _, migration := range migrations {
		if _, err := r.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY failure
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !stderrors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// timeLayout is fixed-width so stored timestamps sort as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}

// ==================== Election Methods ====================

// CreateElection stores an election and its categories in one transaction
func (r *Repository) CreateElection(ctx context.Context, e *models.Election) error {
	allowed, err := json.Marshal(e.AllowedVoters)
	if err != nil {
		return err
	}
	var endDate sql.NullString
	if e.EndDate != nil {
		endDate = sql.NullString{String: formatTime(*e.EndDate), Valid: true}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO elections (id, title, status, contest_type, voter_count, allowed_voters, end_date, is_private, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.Title, e.Status, e.ContestType, e.VoterCount, string(allowed), endDate, e.IsPrivate, e.CreatedBy, formatTime(e.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}

	for i, cat := range e.Categories {
		candidates, err := json.Marshal(cat.Candidates)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO categories (election_id, id, position, name, candidates, num_winners)
			VALUES (?, ?, ?, ?, ?, ?)
		`, e.ID, cat.ID, i, cat.Name, string(candidates), cat.NumWinners)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return err
		}
	}

	return tx.Commit()
}

const electionColumns = `id, title, status, contest_type, voter_count, allowed_voters, end_date, is_private, created_by, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanElection(row rowScanner) (*models.Election, error) {
	var e models.Election
	var allowed, endDate, createdBy sql.NullString
	var createdAt string
	if err := row.Scan(&e.ID, &e.Title, &e.Status, &e.ContestType, &e.VoterCount,
		&allowed, &endDate, &e.IsPrivate, &createdBy, &createdAt); err != nil {
		return nil, err
	}

	e.AllowedVoters = []string{}
	if allowed.Valid && allowed.String != "" && allowed.String != "null" {
		if err := json.Unmarshal([]byte(allowed.String), &e.AllowedVoters); err != nil {
			return nil, err
		}
	}
	if endDate.Valid {
		t, err := parseTime(endDate.String)
		if err != nil {
			return nil, err
		}
		e.EndDate = &t
	}
	e.CreatedBy = createdBy.String

	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	e.CreatedAt = t
	return &e, nil
}

// GetElection returns an election with its categories
func (r *Repository) GetElection(ctx context.Context, id string) (*models.Election, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+electionColumns+` FROM elections WHERE id = ?`, id)
	e, err := scanElection(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	e.Categories, err = r.ListCategories(ctx, id)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// ListElections returns every election in creation order
func (r *Repository) ListElections(ctx context.Context) ([]models.Election, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+electionColumns+` FROM elections ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}

	elections := []models.Election{}
	for rows.Next() {
		e, err := scanElection(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		elections = append(elections, *e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	// Release the only connection before loading categories
	rows.Close()

	for i := range elections {
		elections[i].Categories, err = r.ListCategories(ctx, elections[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return elections, nil
}

// ElectionExists checks if an election with the given id exists
func (r *Repository) ElectionExists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM elections WHERE id = ?`, id).Scan(&count)
	return count > 0, err
}

// UpdateElectionStatus sets an election's status
func (r *Repository) UpdateElectionStatus(ctx context.Context, id, status string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE elections SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteElection removes an election together with its categories and votes
func (r *Repository) DeleteElection(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM votes WHERE election_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE election_id = ?`, id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM elections WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// ==================== Category Methods ====================

// ListCategories returns an election's categories in their original order
func (r *Repository) ListCategories(ctx context.Context, electionID string) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, candidates, num_winners
		FROM categories
		WHERE election_id = ?
		ORDER BY position
	`, electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []models.Category{}
	for rows.Next() {
		var cat models.Category
		var candidates string
		if err := rows.Scan(&cat.ID, &cat.Name, &candidates, &cat.NumWinners); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(candidates), &cat.Candidates); err != nil {
			return nil, err
		}
		if cat.Candidates == nil {
			cat.Candidates = []models.Candidate{}
		}
		categories = append(categories, cat)
	}
	return categories, rows.Err()
}

// ==================== Vote Methods ====================

// InsertVote appends a vote and refreshes the election's voter count.
// It returns the new count. A second vote with the same voter id for the
// same election fails with ErrDuplicate.
func (r *Repository) InsertVote(ctx context.Context, v *models.Vote) (int, error) {
	ballots, err := json.Marshal(v.Votes)
	if err != nil {
		return 0, err
	}
	var voterID sql.NullString
	if v.VoterID != "" {
		voterID = sql.NullString{String: v.VoterID, Valid: true}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO votes (id, election_id, voter_id, voter_name, ballots, ip_address, submitted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, v.ID, v.ElectionID, voterID, v.VoterName, string(ballots), v.IPAddress, formatTime(v.SubmittedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, ErrDuplicate
		}
		return 0, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE elections SET voter_count = (SELECT COUNT(*) FROM votes WHERE election_id = ?)
		WHERE id = ?
	`, v.ElectionID, v.ElectionID)
	if err != nil {
		return 0, err
	}

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT voter_count FROM elections WHERE id = ?`, v.ElectionID).Scan(&count); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrNotFound
		}
		return 0, err
	}

	return count, tx.Commit()
}

// ListVotes returns an election's votes in submission order
func (r *Repository) ListVotes(ctx context.Context, electionID string) ([]models.Vote, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, election_id, voter_id, voter_name, ballots, ip_address, submitted_at
		FROM votes
		WHERE election_id = ?
		ORDER BY seq
	`, electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		var voterID, ipAddress sql.NullString
		var ballots, submittedAt string
		if err := rows.Scan(&v.ID, &v.ElectionID, &voterID, &v.VoterName, &ballots, &ipAddress, &submittedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(ballots), &v.Votes); err != nil {
			return nil, err
		}
		t, err := parseTime(submittedAt)
		if err != nil {
			return nil, err
		}
		v.SubmittedAt = t
		v.VoterID = voterID.String
		v.IPAddress = ipAddress.String
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// ListVotesForCategory returns every stored ballot for one category of an
// election, in submission order
func (r *Repository) ListVotesForCategory(ctx context.Context, electionID, categoryID string) ([]models.CategoryBallot, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ballots FROM votes WHERE election_id = ? ORDER BY seq`, electionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.CategoryBallot{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		var ballots []models.CategoryBallot
		if err := json.Unmarshal([]byte(raw), &ballots); err != nil {
			return nil, err
		}
		for _, b := range ballots {
			if b.CategoryID == categoryID {
				out = append(out, b)
			}
		}
	}
	return out, rows.Err()
}

// CountVotes returns the number of votes cast in an election
func (r *Repository) CountVotes(ctx context.Context, electionID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM votes WHERE election_id = ?`, electionID).Scan(&count)
	return count, err
}

// HasVoterVoted checks whether a voter id already has a vote in the election
func (r *Repository) HasVoterVoted(ctx context.Context, electionID, voterID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM votes WHERE election_id = ? AND voter_id = ?`, electionID, voterID).Scan(&count)
	return count > 0, err
}

// ==================== User Methods ====================

// CreateUser stores a new user. A taken username fails with ErrDuplicate.
func (r *Repository) CreateUser(ctx context.Context, u *models.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, username, email, password_hash, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, u.ID, u.Username, u.Email, u.PasswordHash, u.Role, formatTime(u.CreatedAt))
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

const userColumns = `id, username, email, password_hash, role, created_at`

func scanUser(row rowScanner) (*models.User, error) {
	var u models.User
	var email sql.NullString
	var createdAt string
	if err := row.Scan(&u.ID, &u.Username, &email, &u.PasswordHash, &u.Role, &createdAt); err != nil {
		return nil, err
	}
	u.Email = email.String
	t, err := parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.CreatedAt = t
	return &u, nil
}

// GetUserByUsername looks a user up by username
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return u, err
}

// GetUserByID looks a user up by id
func (r *Repository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return u, err
}

// GetUserByEmail looks a user up by email address
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return u, err
}

// ListUsers returns all users ordered by username
func (r *Repository) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}
