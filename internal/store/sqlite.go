package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"

	"github.com/BTreeMap/JourneyMap/internal/models"
)

// DefaultDirPermissions defines the permissions for created database directories.
const DefaultDirPermissions = 0755

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteStore persists journey history in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if necessary) the SQLite database at the
// DSN path and applies migrations.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DSN)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run SQLite migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// SaveJourney appends one generation result for a session.
func (s *SQLiteStore) SaveJourney(ctx context.Context, sessionID string, p models.Provider, journey *models.JourneyData) error {
	rec, err := newJourneyRecord(sessionID, p, journey)
	if err != nil {
		slog.Error("SQLiteStore SaveJourney encode failed", "error", err, "sessionID", sessionID)
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO journeys (id, session_id, provider, title, persona_name, data_json, is_fallback, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionID, string(rec.Provider), rec.Title, rec.PersonaName, rec.DataJSON, rec.IsFallback, rec.CreatedAt)
	if err != nil {
		slog.Error("SQLiteStore SaveJourney failed", "error", err, "sessionID", sessionID)
		return fmt.Errorf("failed to insert journey for session %s: %w", sessionID, err)
	}
	slog.Debug("SQLiteStore SaveJourney succeeded", "sessionID", sessionID, "id", rec.ID)
	return nil
}

// ListJourneys returns records for a session, most recent first.
func (s *SQLiteStore) ListJourneys(ctx context.Context, sessionID string, limit int) ([]JourneyRecord, error) {
	query := `SELECT id, session_id, provider, title, persona_name, data_json, is_fallback, created_at
			  FROM journeys WHERE session_id = ? ORDER BY created_at DESC`
	args := []interface{}{sessionID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Error("SQLiteStore ListJourneys query failed", "error", err, "sessionID", sessionID)
		return nil, fmt.Errorf("failed to query journeys: %w", err)
	}
	defer rows.Close()

	var records []JourneyRecord
	for rows.Next() {
		var rec JourneyRecord
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Provider, &rec.Title, &rec.PersonaName, &rec.DataJSON, &rec.IsFallback, &rec.CreatedAt); err != nil {
			slog.Error("SQLiteStore ListJourneys scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan journey row: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		slog.Error("SQLiteStore ListJourneys rows iteration failed", "error", err)
		return nil, fmt.Errorf("failed to iterate journey rows: %w", err)
	}
	slog.Debug("SQLiteStore ListJourneys succeeded", "sessionID", sessionID, "count", len(records))
	return records, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	return s.db.Close()
}
