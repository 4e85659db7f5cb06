package whitelist

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/texbuddy/texbuddy/internal/problem"
)

// Entry is one whitelisted fingerprint.
type Entry struct {
	// Fingerprint is the matching key, unique across the store.
	Fingerprint string

	// Literal is the flagged text the fingerprint was derived from.
	// May be empty for entries added by key.
	Literal string

	// AddedAt records when the entry was stored, in UTC.
	AddedAt time.Time
}

// Store is the SQLite-backed whitelist.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the whitelist database at path.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create whitelist directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?mode=rwc")
	if err != nil {
		return nil, fmt.Errorf("failed to open whitelist database: %w", err)
	}

	// SQLite supports a single writer; one connection avoids lock
	// contention entirely.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS whitelist_entries (
		fingerprint TEXT PRIMARY KEY,
		literal     TEXT NOT NULL DEFAULT '',
		added_at    TEXT NOT NULL
	)`
	if _, err := db.ExecContext(context.Background(), schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create whitelist schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Add stores a fingerprint. Adding an existing fingerprint is a no-op;
// the stored literal and timestamp are kept.
func (s *Store) Add(ctx context.Context, fingerprint, literal string) error {
	if fingerprint == "" {
		return errors.New("whitelist: empty fingerprint")
	}

	const query = `
	INSERT INTO whitelist_entries (fingerprint, literal, added_at)
	VALUES (?, ?, ?)
	ON CONFLICT(fingerprint) DO NOTHING`

	addedAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := s.db.ExecContext(ctx, query, fingerprint, literal, addedAt); err != nil {
		return fmt.Errorf("failed to add whitelist entry: %w", err)
	}
	return nil
}

// Remove deletes a fingerprint and reports whether it existed.
func (s *Store) Remove(ctx context.Context, fingerprint string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM whitelist_entries WHERE fingerprint = ?", fingerprint)
	if err != nil {
		return false, fmt.Errorf("failed to remove whitelist entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return affected > 0, nil
}

// Contains reports whether the fingerprint is stored.
func (s *Store) Contains(ctx context.Context, fingerprint string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM whitelist_entries WHERE fingerprint = ?", fingerprint).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query whitelist entry: %w", err)
	}
	return true, nil
}

// Entries returns all stored entries ordered by fingerprint.
func (s *Store) Entries(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT fingerprint, literal, added_at FROM whitelist_entries ORDER BY fingerprint")
	if err != nil {
		return nil, fmt.Errorf("failed to list whitelist entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var addedAt string
		if err := rows.Scan(&e.Fingerprint, &e.Literal, &addedAt); err != nil {
			return nil, fmt.Errorf("failed to scan whitelist entry: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, addedAt); err == nil {
			e.AddedAt = t
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate whitelist entries: %w", err)
	}
	return entries, nil
}

// LoadAll reads every fingerprint into an in-memory matcher. The
// matcher is a snapshot; later Add or Remove calls do not affect it.
func (s *Store) LoadAll(ctx context.Context) (problem.Matcher, error) {
	entries, err := s.Entries(ctx)
	if err != nil {
		return nil, err
	}

	m := make(memoryMatcher, len(entries))
	for _, e := range entries {
		m[e.Fingerprint] = struct{}{}
	}
	return m, nil
}

// ImportWordlist reads a plain wordlist file, one word per line, and
// stores a spelling fingerprint for each word in the given language.
// Blank lines and lines starting with "#" are skipped. It returns the
// number of words processed.
func (s *Store) ImportWordlist(ctx context.Context, path, lang string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open wordlist: %w", err)
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		fingerprint := problem.WordlistFingerprint(lang, word)
		if err := s.Add(ctx, fingerprint, word); err != nil {
			return count, err
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("failed to read wordlist: %w", err)
	}
	return count, nil
}

// memoryMatcher implements problem.Matcher over a loaded snapshot.
type memoryMatcher map[string]struct{}

// Contains implements problem.Matcher.
func (m memoryMatcher) Contains(key string) bool {
	_, ok := m[key]
	return ok
}
