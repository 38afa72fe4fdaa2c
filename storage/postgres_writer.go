package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"property-recommender/models"
)

// PostgresWriter persists crawled search-result rows to PostgreSQL. The pool
// is owned by the crawl run and closed with it.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(ctx context.Context, dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.PingContext(ctx); err == nil {
			break
		}
		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, fmt.Errorf("postgres: ping: %w", ctx.Err())
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}
	return pw, nil
}

func (pw *PostgresWriter) migrate(ctx context.Context) error {
	_, err := pw.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS scraped_properties (
			id         SERIAL PRIMARY KEY,
			address    TEXT        NOT NULL DEFAULT '',
			price      TEXT        NOT NULL DEFAULT '',
			url        TEXT        UNIQUE NOT NULL,
			scraped_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_scraped_properties_address ON scraped_properties(address);
	`)
	return err
}

// WriteRaw batch-upserts rows keyed by URL; a re-crawled URL refreshes its
// address, price and scrape time.
func (pw *PostgresWriter) WriteRaw(listings []*models.RawListing) error {
	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := min(i+batchSize, len(listings))
		if err := pw.insertBatch(listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(batch []*models.RawListing) error {
	query, args := buildUpsert(batch)
	if _, err := pw.db.Exec(query, args...); err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

func buildUpsert(batch []*models.RawListing) (string, []any) {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]any, 0, len(batch)*4)

	for idx, l := range batch {
		base := idx * 4
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4))
		valueArgs = append(valueArgs, l.Address, l.Price, l.URL, l.ScrapedAt)
	}

	query := fmt.Sprintf(`
		INSERT INTO scraped_properties (address, price, url, scraped_at)
		VALUES %s
		ON CONFLICT (url) DO UPDATE
		SET address = EXCLUDED.address, price = EXCLUDED.price, scraped_at = EXCLUDED.scraped_at
	`, strings.Join(valueStrings, ","))
	return query, valueArgs
}

// FetchAll retrieves all stored rows ordered by insertion.
func (pw *PostgresWriter) FetchAll(ctx context.Context) ([]*models.RawListing, error) {
	rows, err := pw.db.QueryContext(ctx, `
		SELECT address, price, url, scraped_at
		FROM scraped_properties
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("postgres: fetch all: %w", err)
	}
	defer rows.Close()

	var listings []*models.RawListing
	for rows.Next() {
		l := &models.RawListing{}
		if err := rows.Scan(&l.Address, &l.Price, &l.URL, &l.ScrapedAt); err != nil {
			return nil, fmt.Errorf("postgres: scan row: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}
