package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"cogconverter/models"

	_ "github.com/lib/pq"
)

const conversionsSchema = `CREATE TABLE IF NOT EXISTS cog_conversions (
	id            BIGSERIAL PRIMARY KEY,
	source        TEXT NOT NULL,
	date_time     TEXT,
	status        TEXT NOT NULL,
	stage         TEXT NOT NULL,
	destination   TEXT,
	url           TEXT,
	error_message TEXT,
	started_at    TIMESTAMPTZ NOT NULL,
	completed_at  TIMESTAMPTZ NOT NULL,
	duration_ms   BIGINT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL
)`

type execCloser interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	Close() error
}

// DatabaseService keeps one cog_conversions row per processed image.
type DatabaseService struct {
	db execCloser
}

func NewDatabaseService(ctx context.Context, databaseURL string) (*DatabaseService, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseService{db: db}, nil
}

func (d *DatabaseService) EnsureSchema(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, conversionsSchema); err != nil {
		return fmt.Errorf("failed to create cog_conversions: %w", err)
	}
	return nil
}

func (d *DatabaseService) RecordOutcome(ctx context.Context, o *models.Outcome) error {
	query := `INSERT INTO cog_conversions
		(source, date_time, status, stage, destination, url, error_message, started_at, completed_at, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := d.db.ExecContext(ctx, query,
		o.Source,
		nullString(o.Timestamp),
		string(o.Status),
		string(o.Stage),
		nullString(o.Destination),
		nullString(o.URL),
		nullString(o.ErrorMessage()),
		o.StartedAt,
		o.FinishedAt,
		o.Duration().Milliseconds(),
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to record conversion of %s: %w", o.Source, err)
	}
	return nil
}

func (d *DatabaseService) Close() error {
	return d.db.Close()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
