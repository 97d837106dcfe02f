package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jfmyers9/threadplay/pkg/enqueue"
	_ "modernc.org/sqlite"
)

// Cache stores thread responses in SQLite for conditional requests
type Cache struct {
	db *sql.DB
}

var _ enqueue.Cache = (*Cache)(nil)

// New opens (or creates) a response cache at dbPath.
// Use ":memory:" for a cache that lives as long as the process.
func New(dbPath string) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps in-memory databases consistent
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS responses (
			key TEXT PRIMARY KEY,
			etag TEXT,
			last_modified TEXT,
			body BLOB NOT NULL,
			fetched_at INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_fetched_at ON responses(fetched_at);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the database connection
func (c *Cache) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Get returns the cached response for key, or nil if there is none
func (c *Cache) Get(ctx context.Context, key string) (*enqueue.CachedResponse, error) {
	query := `
		SELECT etag, last_modified, body, fetched_at
		FROM responses
		WHERE key = ?
	`

	var (
		etag, lastModified sql.NullString
		body               []byte
		fetchedAt          int64
	)
	err := c.db.QueryRowContext(ctx, query, key).Scan(&etag, &lastModified, &body, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query response: %w", err)
	}

	return &enqueue.CachedResponse{
		ETag:         etag.String,
		LastModified: lastModified.String,
		Body:         body,
		FetchedAt:    time.Unix(fetchedAt, 0),
	}, nil
}

// Put stores resp under key, replacing any previous entry
func (c *Cache) Put(ctx context.Context, key string, resp enqueue.CachedResponse) error {
	query := `
		INSERT INTO responses (key, etag, last_modified, body, fetched_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			etag = excluded.etag,
			last_modified = excluded.last_modified,
			body = excluded.body,
			fetched_at = excluded.fetched_at
	`

	fetchedAt := resp.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	_, err := c.db.ExecContext(ctx, query,
		key,
		nullString(resp.ETag),
		nullString(resp.LastModified),
		resp.Body,
		fetchedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to store response: %w", err)
	}

	return nil
}

// Count returns the number of cached responses
func (c *Cache) Count(ctx context.Context) (int, error) {
	var count int
	if err := c.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM responses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count responses: %w", err)
	}
	return count, nil
}

// Cleanup removes responses fetched more than olderThan ago
func (c *Cache) Cleanup(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).Unix()

	result, err := c.db.ExecContext(ctx, `DELETE FROM responses WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup responses: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
