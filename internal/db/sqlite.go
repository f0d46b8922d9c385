package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrExclusionNotFound is returned when no exclusion exists for an index
var ErrExclusionNotFound = errors.New("exclusion not found")

// Database represents a SQLite database connection
type Database struct {
	conn *sql.DB
	now  func() time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS excluded_words (
    word_index INTEGER PRIMARY KEY,
    german_word TEXT NOT NULL,
    english_word TEXT NOT NULL,
    excluded_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_excluded_at ON excluded_words(excluded_at);
`

// Option customises a Database
type Option func(*Database)

// WithClock overrides the time source used for excluded_at
func WithClock(now func() time.Time) Option {
	return func(db *Database) { db.now = now }
}

// NewDatabase creates a new database connection and initializes the schema
func NewDatabase(dbPath string, opts ...Option) (*Database, error) {
	memory := dbPath == ":memory:"

	dsn := dbPath
	if !memory {
		dsn = fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate", dbPath)
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if memory {
		// Every connection to :memory: is a separate database.
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(25)
		conn.SetMaxIdleConns(5)

		if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	db := &Database{conn: conn, now: time.Now}
	for _, opt := range opts {
		opt(db)
	}
	return db, nil
}

// Close closes the database connection
func (db *Database) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Exclude inserts or replaces the exclusion for index, refreshing the
// snapshot and timestamp. The upsert is a single statement, so
// concurrent writers to the same index never leave a mixed record.
func (db *Database) Exclude(ctx context.Context, index int, snap Snapshot) (*Exclusion, error) {
	if index < 0 {
		return nil, fmt.Errorf("invalid word index %d", index)
	}

	excludedAt := db.now().UTC()
	query := `INSERT INTO excluded_words (word_index, german_word, english_word, excluded_at)
	          VALUES (?, ?, ?, ?)
	          ON CONFLICT(word_index) DO UPDATE SET
	            german_word = excluded.german_word,
	            english_word = excluded.english_word,
	            excluded_at = excluded.excluded_at`

	if _, err := db.conn.ExecContext(ctx, query, index, snap.GermanWord, snap.EnglishWord, excludedAt.UnixNano()); err != nil {
		return nil, fmt.Errorf("failed to exclude word %d: %w", index, err)
	}

	return &Exclusion{
		WordIndex:  index,
		Snapshot:   snap,
		ExcludedAt: excludedAt,
	}, nil
}

// Restore removes the exclusion for index
func (db *Database) Restore(ctx context.Context, index int) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM excluded_words WHERE word_index = ?`, index)
	if err != nil {
		return fmt.Errorf("failed to restore word %d: %w", index, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: word %d", ErrExclusionNotFound, index)
	}

	return nil
}

// GetExclusion retrieves the exclusion for index
func (db *Database) GetExclusion(ctx context.Context, index int) (*Exclusion, error) {
	query := `SELECT word_index, german_word, english_word, excluded_at FROM excluded_words WHERE word_index = ?`

	ex, err := scanExclusion(db.conn.QueryRowContext(ctx, query, index))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: word %d", ErrExclusionNotFound, index)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get exclusion: %w", err)
	}

	return ex, nil
}

// IsExcluded reports whether index has an exclusion
func (db *Database) IsExcluded(ctx context.Context, index int) (bool, error) {
	var one int
	err := db.conn.QueryRowContext(ctx, `SELECT 1 FROM excluded_words WHERE word_index = ?`, index).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check exclusion: %w", err)
	}
	return true, nil
}

// ExcludedIndices returns the set of excluded indices in one query
func (db *Database) ExcludedIndices(ctx context.Context) (map[int]struct{}, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT word_index FROM excluded_words`)
	if err != nil {
		return nil, fmt.Errorf("failed to list excluded indices: %w", err)
	}
	defer rows.Close()

	indices := make(map[int]struct{})
	for rows.Next() {
		var index int
		if err := rows.Scan(&index); err != nil {
			return nil, fmt.Errorf("failed to scan index: %w", err)
		}
		indices[index] = struct{}{}
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return indices, nil
}

// ListExclusions retrieves all exclusions, most recently excluded first
func (db *Database) ListExclusions(ctx context.Context) ([]*Exclusion, error) {
	query := `SELECT word_index, german_word, english_word, excluded_at FROM excluded_words
	          ORDER BY excluded_at DESC, word_index DESC`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list exclusions: %w", err)
	}
	defer rows.Close()

	items := []*Exclusion{}
	for rows.Next() {
		ex, err := scanExclusion(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exclusion: %w", err)
		}
		items = append(items, ex)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, nil
}

// CountExclusions returns the number of excluded words
func (db *Database) CountExclusions(ctx context.Context) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM excluded_words`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count exclusions: %w", err)
	}

	return count, nil
}

// ExportToJSON exports all exclusions to a JSON file
func (db *Database) ExportToJSON(ctx context.Context, filePath string) error {
	items, err := db.ListExclusions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list exclusions for export: %w", err)
	}

	// Create file with secure permissions (0600 - owner read/write only)
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(items); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExclusion(s scanner) (*Exclusion, error) {
	var (
		ex Exclusion
		ns int64
	)
	if err := s.Scan(&ex.WordIndex, &ex.GermanWord, &ex.EnglishWord, &ns); err != nil {
		return nil, err
	}
	ex.ExcludedAt = time.Unix(0, ns).UTC()
	return &ex, nil
}
