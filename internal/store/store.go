// Package store provides journey history persistence for JourneyMap.
//
// Successful generations are appended as immutable records keyed by
// session. Three backends share one interface: in-memory for tests and
// keyless demo runs, SQLite for single-node deployments and PostgreSQL for
// shared ones. The backend is picked from the DSN shape.
package store

import (
	"context"
	"time"

	"github.com/BTreeMap/JourneyMap/internal/models"
)

// JourneyRecord is one persisted generation result.
type JourneyRecord struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"sessionId"`
	Provider    models.Provider `json:"provider"`
	Title       string          `json:"title"`
	PersonaName string          `json:"personaName"`
	DataJSON    string          `json:"dataJson"`
	IsFallback  bool            `json:"isFallback"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Journey decodes the stored journey payload.
func (r JourneyRecord) Journey() (*models.JourneyData, error) {
	return decodeJourneyJSON(r.DataJSON)
}

// Store persists journey history.
type Store interface {
	// SaveJourney appends one generation result for a session.
	SaveJourney(ctx context.Context, sessionID string, p models.Provider, journey *models.JourneyData) error
	// ListJourneys returns records for a session, most recent first.
	// limit <= 0 means no limit.
	ListJourneys(ctx context.Context, sessionID string, limit int) ([]JourneyRecord, error)
	// Close releases backend resources.
	Close() error
}

// Opts holds configuration for store backends.
type Opts struct {
	// DSN is the backend connection string: a PostgreSQL URL or key-value
	// DSN, or a SQLite file path.
	DSN string
}

// Option configures Opts.
type Option func(*Opts)

// WithDSN sets the backend connection string.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}
