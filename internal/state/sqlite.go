// Package state provides the SQLite invocation journal for gigit.
package state

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jayteealao/gigit/internal/git"
	"github.com/jayteealao/gigit/internal/tree"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/001_initial.sql
var initialMigration string

// DBFile is the journal file name inside the data directory.
const DBFile = "gigit.db"

// maxStderr bounds the stderr excerpt kept per invocation.
const maxStderr = 512

// Store journals git invocations using SQLite.
type Store struct {
	db        *sql.DB
	dataDir   string
	sessionID string
}

// Session represents one gigit process.
type Session struct {
	ID           string
	Argv         string
	BackendPath  string
	FrontendPath string
	StartedAt    time.Time
}

// Invocation represents one git command run in one tree.
type Invocation struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	Argv       string    `json:"gigit"`
	Command    string    `json:"command"`
	Verb       string    `json:"verb"`
	Tree       string    `json:"tree"`
	Args       []string  `json:"args"`
	Success    bool      `json:"success"`
	ExitCode   int       `json:"exit_code"`
	Stderr     string    `json:"stderr,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMS int64     `json:"duration_ms"`
}

// ListOptions filters ListInvocations.
type ListOptions struct {
	// Limit caps the number of rows; zero or less means no limit.
	Limit int

	// FailedOnly keeps only invocations that did not succeed.
	FailedOnly bool

	// Tree keeps only invocations in the tree with this label when set.
	Tree string
}

// New creates a new Store with the given data directory.
// The database file will be created at <dataDir>/gigit.db.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DBFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	store := &Store{
		db:      db,
		dataDir: dataDir,
	}

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DataDir returns the data directory path.
func (s *Store) DataDir() string {
	return s.dataDir
}

// SessionID returns the active session, or "" before BeginSession.
func (s *Store) SessionID() string {
	return s.sessionID
}

// migrate runs database migrations.
func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		// Table doesn't exist yet
		version = 0
	}

	if version < 1 {
		if _, err := s.db.Exec(initialMigration); err != nil {
			return fmt.Errorf("failed to run initial migration: %w", err)
		}
	}

	return nil
}

// --- Session Operations ---

// BeginSession records the current gigit process. Invocations recorded
// afterwards belong to it.
func (s *Store) BeginSession(ctx context.Context, argv []string, pair tree.Pair) (*Session, error) {
	sess := &Session{
		ID:           uuid.New().String(),
		Argv:         strings.Join(argv, " "),
		BackendPath:  pair.Backend.Path,
		FrontendPath: pair.Frontend.Path,
		StartedAt:    time.Now().UTC(),
	}

	query := `
		INSERT INTO sessions (id, argv, backend_path, frontend_path, started_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		sess.ID, sess.Argv, sess.BackendPath, sess.FrontendPath, sess.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.sessionID = sess.ID
	return sess, nil
}

// --- Invocation Operations ---

// Record journals one git invocation in the active session.
func (s *Store) Record(ctx context.Context, t tree.Tree, cmd git.Command, res git.Result, elapsed time.Duration) error {
	if s.sessionID == "" {
		return fmt.Errorf("failed to record invocation: no active session")
	}

	args := cmd.Args()
	if args == nil {
		args = []string{}
	}
	argsJSON, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to marshal args: %w", err)
	}

	query := `
		INSERT INTO invocations (id, session_id, command, verb, tree, args, success, exit_code, stderr, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		uuid.New().String(), s.sessionID, cmd.String(), cmd.Verb(), t.Label.String(),
		string(argsJSON), res.Success, res.ExitCode, nullString(excerpt(res.Stderr)),
		time.Now().Add(-elapsed).UTC(), elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to record invocation: %w", err)
	}

	return nil
}

// ListInvocations returns invocations, most recent first.
func (s *Store) ListInvocations(ctx context.Context, opts ListOptions) ([]*Invocation, error) {
	query := `
		SELECT i.id, i.session_id, s.argv, i.command, i.verb, i.tree, i.args,
		       i.success, i.exit_code, i.stderr, i.started_at, i.duration_ms
		FROM invocations i
		JOIN sessions s ON s.id = i.session_id
	`
	var (
		where []string
		args  []interface{}
	)
	if opts.FailedOnly {
		where = append(where, "i.success = 0")
	}
	if opts.Tree != "" {
		where = append(where, "i.tree = ?")
		args = append(args, opts.Tree)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY i.started_at DESC, i.rowid DESC"
	if opts.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list invocations: %w", err)
	}
	defer rows.Close()

	var invocations []*Invocation
	for rows.Next() {
		var inv Invocation
		var argsJSON string
		var stderr sql.NullString
		if err := rows.Scan(
			&inv.ID, &inv.SessionID, &inv.Argv, &inv.Command, &inv.Verb, &inv.Tree, &argsJSON,
			&inv.Success, &inv.ExitCode, &stderr, &inv.StartedAt, &inv.DurationMS,
		); err != nil {
			return nil, fmt.Errorf("failed to scan invocation: %w", err)
		}
		if err := json.Unmarshal([]byte(argsJSON), &inv.Args); err != nil {
			return nil, fmt.Errorf("failed to parse invocation args: %w", err)
		}
		inv.Stderr = stderr.String
		invocations = append(invocations, &inv)
	}

	return invocations, rows.Err()
}

// Clear deletes all sessions and invocations and returns how many
// invocations were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM invocations`)
	if err != nil {
		return 0, fmt.Errorf("failed to clear invocations: %w", err)
	}
	n, _ := res.RowsAffected()

	// keep the active session so later records still satisfy the foreign key
	if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id != ?`, s.sessionID); err != nil {
		return 0, fmt.Errorf("failed to clear sessions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}
	return n, nil
}

// --- Helper Functions ---

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// excerpt trims captured stderr to its first maxStderr bytes.
func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= maxStderr {
		return s
	}
	return s[:maxStderr]
}
