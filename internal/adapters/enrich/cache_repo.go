package enrich

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lcalzada-xor/vulnmap/internal/core/domain"
	"github.com/lcalzada-xor/vulnmap/internal/core/ports"
	"github.com/lcalzada-xor/vulnmap/internal/telemetry"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// DefaultCacheTTL is how long a cached enrichment record stays valid.
const DefaultCacheTTL = 24 * time.Hour

// Ensure interface compliance
var _ ports.EnrichmentCache = (*SQLiteCache)(nil)

// SQLiteCache persists enrichment records in a standalone SQLite database,
// separate from the main store so a cache wipe never touches findings.
type SQLiteCache struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSQLiteCache opens the cache database at dbPath, creating the schema
// when missing. A non-positive ttl selects DefaultCacheTTL.
func NewSQLiteCache(dbPath string, ttl time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &SQLiteCache{db: db, ttl: ttl}, nil
}

// Get returns the cached record for a CVE, or nil when absent or expired.
// Expired rows are treated as misses; Put overwrites them in place.
func (c *SQLiteCache) Get(ctx context.Context, cve string) (*domain.Enrichment, error) {
	var payload, fetchedAt string
	err := c.db.QueryRowContext(ctx,
		"SELECT payload, fetched_at FROM enrichment_records WHERE cve = ?", cve,
	).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache lookup failed: %w", err)
	}

	fetched, err := time.Parse(time.RFC3339, fetchedAt)
	if err != nil || time.Since(fetched) > c.ttl {
		return nil, nil
	}

	var record domain.Enrichment
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, fmt.Errorf("failed to decode cached record for %s: %w", cve, err)
	}

	telemetry.EnrichmentCacheHits.Inc()
	return &record, nil
}

// Put inserts or replaces the cached record for a CVE.
func (c *SQLiteCache) Put(ctx context.Context, record domain.Enrichment) error {
	if record.CVE == "" {
		return errors.New("enrichment record requires a cve")
	}
	if record.FetchedAt.IsZero() {
		record.FetchedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record for %s: %w", record.CVE, err)
	}

	query := `
		INSERT INTO enrichment_records (cve, payload, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(cve) DO UPDATE SET
			payload = excluded.payload,
			fetched_at = excluded.fetched_at,
			updated_at = CURRENT_TIMESTAMP
	`
	_, err = c.db.ExecContext(ctx, query,
		record.CVE, string(payload), record.FetchedAt.Format(time.RFC3339))
	return err
}

// UpdateSyncStatus records the outcome of an enrichment pass.
func (c *SQLiteCache) UpdateSyncStatus(ctx context.Context, count int, syncErr error) error {
	msg := ""
	if syncErr != nil {
		msg = syncErr.Error()
	}
	query := `
		UPDATE enrichment_sync_status
		SET last_sync_time = ?,
		    record_count = ?,
		    error_message = ?,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`
	_, err := c.db.ExecContext(ctx, query,
		time.Now().UTC().Format(time.RFC3339), count, msg)
	return err
}

// LastSyncTime returns the timestamp of the last completed enrichment pass,
// or the zero time when none has run.
func (c *SQLiteCache) LastSyncTime(ctx context.Context) (time.Time, error) {
	var lastSync sql.NullString
	err := c.db.QueryRowContext(ctx,
		"SELECT last_sync_time FROM enrichment_sync_status WHERE id = 1",
	).Scan(&lastSync)
	if err != nil {
		return time.Time{}, err
	}
	if !lastSync.Valid || lastSync.String == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, lastSync.String)
}

// Close closes the cache database connection.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
