// Package journal keeps a local SQLite record of every hand an agent saw to
// showdown.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded hand together with the running totals after it
type Entry struct {
	HandID     string
	AccountID  string
	Won        bool
	Bluffed    bool
	Wins       int
	Losses     int
	TotalHands int
	RecordedAt time.Time
}

// Store is a hand journal backed by a single SQLite file
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS hands (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    hand_id     TEXT    NOT NULL,
    account_id  TEXT    NOT NULL,
    won         INTEGER NOT NULL,
    bluffed     INTEGER NOT NULL,
    wins        INTEGER NOT NULL,
    losses      INTEGER NOT NULL,
    total_hands INTEGER NOT NULL,
    recorded_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS hands_account ON hands (account_id, id);
`

// Open opens or creates the journal at path. ":memory:" gives a throwaway
// journal.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("journal: empty database path")
	}
	if path != ":memory:" {
		if parent := filepath.Dir(path); parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, fmt.Errorf("journal: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, stmt := range []string{`PRAGMA busy_timeout = 5000;`, `PRAGMA journal_mode = WAL;`, schema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("journal: init: %w", err)
		}
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordHand appends one entry. A zero RecordedAt is stamped with the
// current time.
func (s *Store) RecordHand(ctx context.Context, e Entry) error {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO hands (hand_id, account_id, won, bluffed, wins, losses, total_hands, recorded_ms)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, e.HandID, e.AccountID, e.Won, e.Bluffed, e.Wins, e.Losses, e.TotalHands, e.RecordedAt.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("journal: record hand %q: %w", e.HandID, err)
	}
	return nil
}

// Recent returns up to n of the account's latest entries, newest first
func (s *Store) Recent(ctx context.Context, accountID string, n int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT hand_id, account_id, won, bluffed, wins, losses, total_hands, recorded_ms
FROM hands
WHERE account_id = ?
ORDER BY id DESC
LIMIT ?
`, accountID, n)
	if err != nil {
		return nil, fmt.Errorf("journal: query: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e  Entry
			ms int64
		)
		if err := rows.Scan(&e.HandID, &e.AccountID, &e.Won, &e.Bluffed, &e.Wins, &e.Losses, &e.TotalHands, &ms); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		e.RecordedAt = time.UnixMilli(ms).UTC()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
