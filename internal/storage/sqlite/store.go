// Package sqlite provides the SQLite-backed session and character stores.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const timeFormat = time.RFC3339Nano

// ErrSessionNotFound indicates the session id has no row.
var ErrSessionNotFound = errors.New("session not found")

// ErrCharacterNotFound indicates no character exists with the given name.
var ErrCharacterNotFound = errors.New("character not found")

// ErrDuplicateName indicates a character with the same name already exists.
var ErrDuplicateName = errors.New("character name already exists")

var tableNameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Character is a persisted character record.
type Character struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Race      string `json:"race"`
	Class     string `json:"character_class"`
	Level     int    `json:"level"`
	CreatedAt string `json:"created_at"`
}

// Store provides session and character persistence over a single SQLite file.
type Store struct {
	db           *sql.DB
	sessionTable string
	charTable    string
}

// Open opens the store at path, creating the configured tables when absent.
func Open(path, sessionTable, charTable string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if !tableNameRE.MatchString(sessionTable) {
		return nil, fmt.Errorf("invalid session table name %q", sessionTable)
	}
	if !tableNameRE.MatchString(charTable) {
		return nil, fmt.Errorf("invalid character table name %q", charTable)
	}

	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	s := &Store{db: db, sessionTable: sessionTable, charTable: charTable}
	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) createTables() error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL,
			last_used_at TEXT NOT NULL
		)`, s.sessionTable),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			race TEXT NOT NULL,
			class TEXT NOT NULL,
			level INTEGER NOT NULL,
			created_at TEXT NOT NULL
		)`, s.charTable),
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// CreateSession persists a new session id.
func (s *Store) CreateSession(ctx context.Context, id string, now time.Time) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("session id is required")
	}
	ts := now.UTC().Format(timeFormat)
	query := fmt.Sprintf(`INSERT INTO %s (id, created_at, last_used_at) VALUES (?, ?, ?)`, s.sessionTable)
	if _, err := s.db.ExecContext(ctx, query, id, ts, ts); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// TouchSession updates a session's last-used time, reporting
// ErrSessionNotFound for unknown ids.
func (s *Store) TouchSession(ctx context.Context, id string, now time.Time) error {
	query := fmt.Sprintf(`UPDATE %s SET last_used_at = ? WHERE id = ?`, s.sessionTable)
	res, err := s.db.ExecContext(ctx, query, now.UTC().Format(timeFormat), id)
	if err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("touch session rows: %w", err)
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// CreateCharacter persists a character record, rejecting duplicate names.
func (s *Store) CreateCharacter(ctx context.Context, c Character) error {
	if strings.TrimSpace(c.ID) == "" || strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("character id and name are required")
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, name, race, class, level, created_at) VALUES (?, ?, ?, ?, ?, ?)`, s.charTable)
	_, err := s.db.ExecContext(ctx, query, c.ID, c.Name, c.Race, c.Class, c.Level, c.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateName
		}
		return fmt.Errorf("insert character: %w", err)
	}
	return nil
}

// GetCharacterByName fetches a character record by its unique name.
func (s *Store) GetCharacterByName(ctx context.Context, name string) (Character, error) {
	query := fmt.Sprintf(`SELECT id, name, race, class, level, created_at FROM %s WHERE name = ?`, s.charTable)
	row := s.db.QueryRowContext(ctx, query, name)

	var c Character
	err := row.Scan(&c.ID, &c.Name, &c.Race, &c.Class, &c.Level, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Character{}, ErrCharacterNotFound
	}
	if err != nil {
		return Character{}, fmt.Errorf("select character: %w", err)
	}
	return c, nil
}
