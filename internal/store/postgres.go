package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"

	"github.com/BTreeMap/JourneyMap/internal/models"
)

// Database connection pool configuration constants.
const (
	// DefaultMaxOpenConns is the maximum number of open connections to the database.
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the maximum number of idle connections in the pool.
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the maximum amount of time a connection may be reused.
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore persists journey history in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore connects to PostgreSQL using the DSN and applies migrations.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run Postgres migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")

	return &PostgresStore{db: db}, nil
}

// SaveJourney appends one generation result for a session.
func (s *PostgresStore) SaveJourney(ctx context.Context, sessionID string, p models.Provider, journey *models.JourneyData) error {
	rec, err := newJourneyRecord(sessionID, p, journey)
	if err != nil {
		slog.Error("PostgresStore SaveJourney encode failed", "error", err, "sessionID", sessionID)
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO journeys (id, session_id, provider, title, persona_name, data_json, is_fallback, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID, rec.SessionID, string(rec.Provider), rec.Title, rec.PersonaName, rec.DataJSON, rec.IsFallback, rec.CreatedAt)
	if err != nil {
		slog.Error("PostgresStore SaveJourney failed", "error", err, "sessionID", sessionID)
		return fmt.Errorf("failed to insert journey for session %s: %w", sessionID, err)
	}
	slog.Debug("PostgresStore SaveJourney succeeded", "sessionID", sessionID, "id", rec.ID)
	return nil
}

// ListJourneys returns records for a session, most recent first.
func (s *PostgresStore) ListJourneys(ctx context.Context, sessionID string, limit int) ([]JourneyRecord, error) {
	query := `SELECT id, session_id, provider, title, persona_name, data_json, is_fallback, created_at
			  FROM journeys WHERE session_id = $1 ORDER BY created_at DESC`
	args := []interface{}{sessionID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Error("PostgresStore ListJourneys query failed", "error", err, "sessionID", sessionID)
		return nil, fmt.Errorf("failed to query journeys: %w", err)
	}
	defer rows.Close()

	var records []JourneyRecord
	for rows.Next() {
		var rec JourneyRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Provider, &rec.Title, &rec.PersonaName, &rec.DataJSON, &rec.IsFallback, &rec.CreatedAt); err != nil {
			slog.Error("PostgresStore ListJourneys scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan journey row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		slog.Error("PostgresStore ListJourneys rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate journey rows: %w", err)
	}
	slog.Debug("PostgresStore ListJourneys succeeded", "sessionID", sessionID, "count", len(records))
	return records, nil
}

// Close closes the PostgreSQL connection pool.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	return s.db.Close()
}
