package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hirewatch-dev/hirewatch/internal/model"
)

// Ensure SQLitePersister implements model.Persister.
var _ model.Persister = (*SQLitePersister)(nil)

// SQLitePersister keeps the accumulated posting set in a SQLite database so
// dedup state survives process restarts. Save replaces the stored rows for
// the IDs it is given; Load returns everything for pre-populating the
// in-memory store at startup.
type SQLitePersister struct {
	db *sql.DB
}

// NewSQLitePersister opens (or creates) a SQLite database at dbPath and
// ensures the postings table exists.
func NewSQLitePersister(dbPath string) (*SQLitePersister, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}

	// Verify the connection is alive.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging sqlite db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS postings (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		location    TEXT,
		url         TEXT,
		description TEXT,
		posted_date TEXT,
		first_seen  DATETIME NOT NULL,
		last_seen   DATETIME NOT NULL
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating postings table: %w", err)
	}

	return &SQLitePersister{db: db}, nil
}

// Save upserts each posting. FirstSeen is written once and kept on conflict;
// LastSeen always advances to the saved value.
func (s *SQLitePersister) Save(ctx context.Context, postings []model.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("saving postings: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO postings
		(id, title, location, url, description, posted_date, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET last_seen = excluded.last_seen`)
	if err != nil {
		return fmt.Errorf("saving postings: %w", err)
	}
	defer stmt.Close()

	for _, p := range postings {
		_, err := stmt.ExecContext(ctx, p.ID, p.Title, p.Location, p.URL,
			p.Description, p.PostedDate, p.FirstSeen.UTC(), p.LastSeen.UTC())
		if err != nil {
			return fmt.Errorf("saving posting %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// Load returns all persisted postings.
func (s *SQLitePersister) Load(ctx context.Context) ([]model.Posting, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, location, url,
		description, posted_date, first_seen, last_seen FROM postings`)
	if err != nil {
		return nil, fmt.Errorf("loading postings: %w", err)
	}
	defer rows.Close()

	var out []model.Posting
	for rows.Next() {
		var p model.Posting
		err := rows.Scan(&p.ID, &p.Title, &p.Location, &p.URL,
			&p.Description, &p.PostedDate, &p.FirstSeen, &p.LastSeen)
		if err != nil {
			return nil, fmt.Errorf("scanning posting row: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Cleanup deletes persisted postings whose last_seen is older than the given
// duration. Mirrors the in-memory store's eviction.
func (s *SQLitePersister) Cleanup(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan).UTC()
	_, err := s.db.ExecContext(ctx, "DELETE FROM postings WHERE last_seen < ?", cutoff)
	if err != nil {
		return fmt.Errorf("cleaning up postings older than %v: %w", olderThan, err)
	}
	return nil
}

// Clear deletes all persisted postings.
func (s *SQLitePersister) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM postings"); err != nil {
		return fmt.Errorf("clearing postings: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLitePersister) Close() error {
	return s.db.Close()
}
